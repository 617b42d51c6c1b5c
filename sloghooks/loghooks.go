// Package sloghooks logs viewcache.Hooks events through log/slog, with
// optional sampling on the high-frequency ones so a busy view doesn't
// flood the log with an orphan-removal or page-error line per
// reconciliation pass.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/canvasmirror/viewcache"
)

// Options configures sampling and redaction.
type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	OrphansRemovedEvery uint64
	PageErrorEvery      uint64
	// Optional view/canvas redactor. Defaults to a SHA-256 prefix, since
	// a view's Canvas base URL and viewer id can identify an institution
	// or person.
	Redact func(string) string
}

// Hooks logs every viewcache.Hooks event through l.
type Hooks struct {
	l    *slog.Logger
	opts Options

	orphansCtr   atomic.Uint64
	pageErrorCtr atomic.Uint64
}

var _ viewcache.Hooks = (*Hooks)(nil)

// New builds a Hooks that logs through l.
func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(s string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(s)
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) ReplaceOrphansRemoved(view string, count int) {
	if h.l == nil || count == 0 || !sample(h.opts.OrphansRemovedEvery, &h.orphansCtr) {
		return
	}
	h.l.Debug("viewcache.replace_orphans_removed",
		"view", h.redact(view),
		"count", count)
}

func (h *Hooks) ReplaceStoreError(view string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("viewcache.replace_store_error",
		"view", h.redact(view),
		"err", err)
}

func (h *Hooks) FetchThrottled(canvas string, retryAfter time.Duration) {
	if h.l == nil {
		return
	}
	h.l.Warn("viewcache.fetch_throttled",
		"canvas", h.redact(canvas),
		"retry_after", retryAfter.String())
}

func (h *Hooks) FetchPageError(canvas string, page int, err error) {
	if h.l == nil || !sample(h.opts.PageErrorEvery, &h.pageErrorCtr) {
		return
	}
	h.l.Warn("viewcache.fetch_page_error",
		"canvas", h.redact(canvas),
		"page", page,
		"err", err)
}

func (h *Hooks) RPCRequestRejected(reason string) {
	if h.l == nil {
		return
	}
	h.l.Warn("viewcache.rpc_request_rejected", "reason", reason)
}

func (h *Hooks) RPCConnectionClosed(err error) {
	if h.l == nil {
		return
	}
	if err == nil {
		h.l.Debug("viewcache.rpc_connection_closed")
		return
	}
	h.l.Warn("viewcache.rpc_connection_closed", "err", err)
}
