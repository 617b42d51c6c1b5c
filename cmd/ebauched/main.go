// Command ebauched listens for update-RPC connections and serves them
// against a badger-backed, family-scoped store.
package main

import (
	"context"
	"net"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/canvasmirror/viewcache"
	"github.com/canvasmirror/viewcache/fetch"
	logzap "github.com/canvasmirror/viewcache/log/zap"
	"github.com/canvasmirror/viewcache/rpc/throttle"
	"github.com/canvasmirror/viewcache/server"
	"github.com/canvasmirror/viewcache/store/badger"
)

func main() {
	zl, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer zl.Sync()
	log := logzap.ZapLogger{L: zl}

	listenAddr := viewcache.Coalesce(os.Getenv("EBAUCHED_ADDR"), "0.0.0.0:4211")
	baseDir := viewcache.Coalesce(os.Getenv("EBAUCHED_DATA_DIR"), "./data")

	opener := &badger.Opener{BaseDir: baseDir}
	fetcher := fetch.New(fetch.Options{Logger: log})
	budget := throttle.NewLocalBudget(720, time.Minute)
	defer budget.Close(context.Background())

	h := &server.Handler{
		Opener:  opener,
		Fetcher: fetcher,
		Locker:  viewcache.NewViewLocker(),
		Budget:  budget,
		Logger:  log,
	}

	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		zl.Fatal("listen", zap.Error(err))
	}
	zl.Info("listening", zap.String("addr", listenAddr), zap.String("data_dir", baseDir))

	for {
		conn, err := listener.Accept()
		if err != nil {
			zl.Error("accept", zap.Error(err))
			continue
		}
		go serveConn(h, conn, zl)
	}
}

func serveConn(h *server.Handler, conn net.Conn, zl *zap.Logger) {
	defer conn.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := h.HandleConn(ctx, conn); err != nil {
		zl.Warn("connection handled with error", zap.String("remote", conn.RemoteAddr().String()), zap.Error(err))
	}
}
