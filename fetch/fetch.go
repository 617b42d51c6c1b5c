// Package fetch implements a pagination-aware HTTP client for the
// Canvas LMS API: Link-header-driven paging, per_page/include[]/
// arbitrary query parameters, and the throttling headers Canvas uses
// to signal backoff (X-Request-Cost, X-Rate-Limit-Remaining, and a
// plain HTTP 403 as a harder throttle signal).
//
// There is no third-party HTTP client anywhere in the retrieval pack
// this codebase draws on, so this package is built directly on
// net/http rather than adapting one; see DESIGN.md for the
// justification. Retries for transient (network/5xx) errors use
// github.com/cenkalti/backoff/v4, matching the retry-with-backoff
// idiom of the rest of this module's dependency stack.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/canvasmirror/viewcache"
)

// PageResult is one page of an upstream response: its raw JSON body,
// the parsed pagination links, and the throttling signals Canvas sent
// alongside it.
type PageResult struct {
	Body               []byte
	Links              Links
	RequestCost        float64
	RateLimitRemaining float64
	HasRateLimit       bool
}

// Options configures a Fetcher.
type Options struct {
	HTTPClient *http.Client
	Token      string
	Logger     viewcache.Logger
	Hooks      viewcache.Hooks
	// RateLimitFloor is the X-Rate-Limit-Remaining value at or below
	// which the fetcher treats the response as a throttle signal even
	// though the request itself succeeded.
	RateLimitFloor float64
	// MaxElapsedTime bounds how long FetchPage will retry a transient
	// failure before giving up. Zero uses backoff's default (15m).
	MaxElapsedTime time.Duration
}

// Fetcher issues paginated, throttle-aware requests against a Canvas
// instance.
type Fetcher struct {
	http           *http.Client
	token          string
	log            viewcache.Logger
	hooks          viewcache.Hooks
	rateLimitFloor float64
	maxElapsed     time.Duration
}

// New constructs a Fetcher.
func New(opts Options) *Fetcher {
	return &Fetcher{
		http:           coalesceClient(opts.HTTPClient),
		token:          opts.Token,
		log:            coalesceLogger(opts.Logger),
		hooks:          coalesceHooks(opts.Hooks),
		rateLimitFloor: opts.RateLimitFloor,
		maxElapsed:     opts.MaxElapsedTime,
	}
}

// WithToken returns a shallow copy of f authenticating as token instead
// of f's configured token. Callers use this to fetch on behalf of
// whichever Canvas user's token arrived with a single request, while
// sharing f's underlying *http.Client, logger, and hooks.
func (f *Fetcher) WithToken(token string) *Fetcher {
	clone := *f
	clone.token = token
	return &clone
}

func coalesceClient(c *http.Client) *http.Client {
	return viewcache.Coalesce(c, &http.Client{Timeout: 30 * time.Second})
}

func coalesceLogger(l viewcache.Logger) viewcache.Logger {
	return viewcache.Coalesce(l, viewcache.Logger(viewcache.NopLogger{}))
}

func coalesceHooks(h viewcache.Hooks) viewcache.Hooks {
	return viewcache.Coalesce(h, viewcache.Hooks(viewcache.NopHooks{}))
}

// ThrottledError indicates Canvas rejected the request with a
// throttling response (HTTP 403). Callers should wait at least
// RetryAfter before retrying.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("fetch: throttled by upstream, retry after %s", e.RetryAfter)
}

// FetchPage issues a single HTTP GET for req against canvasBaseURL,
// retrying transient (network or 5xx) failures with exponential
// backoff. A 403 response is never retried automatically; it is
// surfaced as a *ThrottledError after notifying Hooks.FetchThrottled,
// since only the caller knows whether to wait, switch tokens, or give
// up on the whole sync.
func (f *Fetcher) FetchPage(ctx context.Context, canvasBaseURL string, req Request) (PageResult, error) {
	url := req.URL(canvasBaseURL)

	var result PageResult
	operation := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		httpReq.Header.Set("Accept", "application/json")
		if f.token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+f.token)
		}

		resp, err := f.http.Do(httpReq)
		if err != nil {
			f.hooks.FetchPageError(canvasBaseURL, 0, err)
			return err // transient: retry
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			f.hooks.FetchPageError(canvasBaseURL, 0, err)
			return err
		}

		if resp.StatusCode == http.StatusForbidden {
			retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
			f.hooks.FetchThrottled(canvasBaseURL, retryAfter)
			return backoff.Permanent(&ThrottledError{RetryAfter: retryAfter})
		}
		if resp.StatusCode >= 500 {
			err := fmt.Errorf("fetch: upstream returned %d", resp.StatusCode)
			f.hooks.FetchPageError(canvasBaseURL, 0, err)
			return err // transient: retry
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("fetch: upstream returned %d", resp.StatusCode))
		}

		links, err := ParseLinksHeader(resp.Header.Get("Link"))
		if err != nil {
			return backoff.Permanent(err)
		}

		result = PageResult{Body: body, Links: links}
		if cost := resp.Header.Get("X-Request-Cost"); cost != "" {
			if v, err := strconv.ParseFloat(cost, 64); err == nil {
				result.RequestCost = v
			}
		}
		if remaining := resp.Header.Get("X-Rate-Limit-Remaining"); remaining != "" {
			if v, err := strconv.ParseFloat(remaining, 64); err == nil {
				result.RateLimitRemaining = v
				result.HasRateLimit = true
				if v <= f.rateLimitFloor {
					f.hooks.FetchThrottled(canvasBaseURL, 0)
				}
			}
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	if f.maxElapsed > 0 {
		bo.MaxElapsedTime = f.maxElapsed
	}
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return PageResult{}, err
	}
	return result, nil
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil {
		return time.Duration(secs) * time.Second
	}
	return 0
}

// PageStream pulls successive pages of req, following the Link
// header's "next" rel until it is absent.
type PageStream struct {
	fetcher       *Fetcher
	canvasBaseURL string
	nextURL       string
	started       bool
}

// Paginate returns a PageStream that starts at req and follows "next"
// links until the upstream stops sending one.
func (f *Fetcher) Paginate(canvasBaseURL string, req Request) *PageStream {
	return &PageStream{fetcher: f, canvasBaseURL: canvasBaseURL, nextURL: req.URL(canvasBaseURL)}
}

// Next fetches the next page, or returns ok=false once pagination is
// exhausted (the prior page had no "next" link).
func (s *PageStream) Next(ctx context.Context) (PageResult, bool, error) {
	if s.started && s.nextURL == "" {
		return PageResult{}, false, nil
	}
	s.started = true

	page, err := s.fetcher.FetchPage(ctx, "", Request{Path: s.nextURL})
	if err != nil {
		return PageResult{}, false, err
	}
	s.nextURL = page.Links.Next
	return page, true, nil
}

// DecodeItems unmarshals a page's JSON array body into a slice of T,
// wrapping any decode failure in a *MalformedJSONError with a bounded
// context window around the failure offset.
func DecodeItems[T any](body []byte) ([]T, error) {
	var items []T
	if err := json.Unmarshal(body, &items); err != nil {
		offset := 0
		if se, ok := err.(*json.SyntaxError); ok {
			offset = int(se.Offset)
		} else if te, ok := err.(*json.UnmarshalTypeError); ok {
			offset = int(te.Offset)
		}
		return nil, NewMalformedJSONError(err, body, offset)
	}
	return items, nil
}
