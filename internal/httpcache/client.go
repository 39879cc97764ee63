// Package httpcache fetches remote modules for the duration of a single
// build. Every requested URL is fetched at most once; concurrent requests for
// the same URL share the in-flight fetch instead of hitting the network
// twice. Nothing is persisted across builds.
package httpcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"remap.dev/internal/log"
)

var logger = log.New("httpcache")

// DefaultTimeout bounds a single fetch when the caller does not configure one.
const DefaultTimeout = 30 * time.Second

// StatusError is returned for non-2xx responses. The URL and numeric status
// both appear in the message so a failed build names the module that broke it.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

// Response is the completed result of fetching one requested URL.
type Response struct {
	// URL is the requested URL, exactly as the resolver computed it. It is
	// the cache key.
	URL string

	// FinalURL is the URL the transport actually landed on after following
	// redirects. Relative imports inside the module body are anchored here.
	FinalURL string

	StatusCode int
	Header     http.Header
	Body       []byte
}

type entry struct {
	done chan struct{}
	res  Response
	err  error
}

// Client deduplicates and performs HTTP(S) fetches for one build invocation.
type Client struct {
	mux     sync.Mutex
	entries map[string]*entry

	client  *http.Client
	timeout time.Duration
}

// NewClient creates a fetch client for a single build. A zero timeout selects
// DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		entries: make(map[string]*entry),
		client:  &http.Client{},
		timeout: timeout,
	}
}

// Get fetches the given URL, or returns the cached or in-flight result if the
// URL was already requested during this build. The first caller claims the
// entry and performs the network fetch; everyone else waits on it.
func (client *Client) Get(targetUrl string) (Response, error) {
	client.mux.Lock()
	if existing, ok := client.entries[targetUrl]; ok {
		client.mux.Unlock()
		<-existing.done
		return existing.res, existing.err
	}

	claimed := &entry{done: make(chan struct{})}
	client.entries[targetUrl] = claimed
	client.mux.Unlock()

	claimed.res, claimed.err = client.fetch(targetUrl)
	close(claimed.done)

	return claimed.res, claimed.err
}

// FinalURL returns the post-redirect URL for a previously completed fetch of
// the requested URL. It reports false if the URL was never fetched, or if the
// fetch has not finished yet.
func (client *Client) FinalURL(requestedUrl string) (string, bool) {
	client.mux.Lock()
	existing, ok := client.entries[requestedUrl]
	client.mux.Unlock()

	if !ok {
		return "", false
	}
	select {
	case <-existing.done:
	default:
		return "", false
	}
	if existing.err != nil {
		return "", false
	}
	return existing.res.FinalURL, true
}

func (client *Client) fetch(targetUrl string) (Response, error) {
	ctx, cancel := context.WithTimeout(context.Background(), client.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetUrl, nil)
	if err != nil {
		return Response{}, fmt.Errorf("failed to request %s: %w", targetUrl, err)
	}

	start := time.Now()
	resp, err := client.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Response{}, fmt.Errorf("fetch of %s timed out after %s: %w", targetUrl, client.timeout, err)
		}
		return Response{}, fmt.Errorf("failed to fetch %s: %w", targetUrl, err)
	}
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Response{}, fmt.Errorf("fetch of %s timed out after %s: %w", targetUrl, client.timeout, err)
		}
		return Response{}, fmt.Errorf("failed to read %s: %w", targetUrl, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Response{}, &StatusError{URL: targetUrl, StatusCode: resp.StatusCode}
	}

	res := Response{
		URL:        targetUrl,
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       buf,
	}

	logger.Debug("Fetched remote module", log.Ctx{
		"url":      targetUrl,
		"finalUrl": res.FinalURL,
		"size":     len(buf),
		"duration": time.Since(start).String(),
	})
	return res, nil
}
