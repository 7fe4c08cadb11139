// Package treeclient is the request layer for the document tree backend.
//
// The client holds no view state. Lookup operations (GetItem, GetChildIDs,
// GetBatch, Search) normalize every failure to an empty result so callers
// decide what "empty" means; operations whose callers branch on the failure
// kind (Generation, ProbeModified, DownloadArchive) return errors wrapping
// tree.ErrNotFound or tree.ErrUnavailable.
//
// No operation retries on its own. Requests are optionally throttled by a
// token bucket and tagged with an X-Request-ID for log correlation.
package treeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/dittoview/internal/logger"
	"github.com/marmos91/dittoview/internal/ratelimiter"
	"github.com/marmos91/dittoview/pkg/tree"
)

// Config holds client configuration.
type Config struct {
	// BaseURL is the backend origin, e.g. http://127.0.0.1:5000
	BaseURL string

	// Timeout bounds each request. Defaults to 10s.
	Timeout time.Duration

	// RequestsPerSecond throttles outgoing requests. 0 means unlimited.
	RequestsPerSecond float64

	// Burst is the throttle burst size. 0 defaults to RequestsPerSecond.
	Burst int

	// HTTPClient overrides the default tuned client (tests).
	HTTPClient *http.Client

	// Metrics receives per-request observations. nil disables collection.
	Metrics Metrics
}

// Client talks to the tree backend over HTTP/JSON.
//
// Thread safety:
// Client is stateless apart from its throttle and is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimiter.RateLimiter
	metrics    Metrics
}

// New creates a new tree client.
//
// Parameters:
//   - cfg: Client configuration. BaseURL is required; zero values elsewhere
//     select defaults.
//
// Returns:
//   - *Client: Ready-to-use client
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        32,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		}
	}

	m := cfg.Metrics
	if m == nil {
		m = noopMetrics{}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		limiter:    ratelimiter.New(cfg.RequestsPerSecond, cfg.Burst),
		metrics:    m,
	}
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetItem fetches an item's metadata, including its breadcrumb path.
//
// Returns nil if the item does not exist or the request fails.
func (c *Client) GetItem(ctx context.Context, id string) *tree.Item {
	var item tree.Item
	if err := c.getJSON(ctx, "get_item", "/api/tree/"+url.PathEscape(id), &item); err != nil {
		logger.Debug("tree: get item %s: %v", id, err)
		return nil
	}
	return &item
}

// GetChildIDs fetches the ordered child ids of a folder.
//
// Returns an empty slice on any failure.
func (c *Client) GetChildIDs(ctx context.Context, id string) []string {
	var ids []string
	if err := c.getJSON(ctx, "get_children", "/api/tree/"+url.PathEscape(id)+"/children", &ids); err != nil {
		logger.Debug("tree: get children %s: %v", id, err)
		return []string{}
	}
	if ids == nil {
		ids = []string{}
	}
	return ids
}

// GetBatch fetches metadata for many ids in one request.
//
// Ids with no corresponding item are omitted from the result. An empty id
// list returns an empty map without issuing a request. Any failure yields
// an empty map.
func (c *Client) GetBatch(ctx context.Context, ids []string) map[string]*tree.Item {
	result := make(map[string]*tree.Item)
	if len(ids) == 0 {
		return result
	}

	body, err := json.Marshal(ids)
	if err != nil {
		return result
	}

	var decoded map[string]*tree.Item
	if err := c.doJSON(ctx, "get_batch", http.MethodPost, "/api/tree/batch", bytes.NewReader(body), &decoded); err != nil {
		logger.Debug("tree: batch of %d ids: %v", len(ids), err)
		return result
	}

	for id, item := range decoded {
		if item != nil {
			result[id] = item
		}
	}
	return result
}

// Search runs a free-text query.
//
// Returns a response with an empty query and no results on any failure.
func (c *Client) Search(ctx context.Context, query string) tree.SearchResponse {
	empty := tree.SearchResponse{Query: "", Results: []tree.SearchResult{}}

	var resp tree.SearchResponse
	if err := c.getJSON(ctx, "search", "/api/search?q="+url.QueryEscape(query), &resp); err != nil {
		logger.Debug("tree: search %q: %v", query, err)
		return empty
	}
	if resp.Results == nil {
		resp.Results = []tree.SearchResult{}
	}
	return resp
}

// Generation fetches the backend change counter.
func (c *Client) Generation(ctx context.Context) (tree.Generation, error) {
	var body struct {
		Generation *tree.Generation `json:"generation"`
	}
	if err := c.getJSON(ctx, "generation", "/api/generation", &body); err != nil {
		return 0, err
	}
	if body.Generation == nil {
		return 0, fmt.Errorf("generation missing from response: %w", tree.ErrUnavailable)
	}
	return *body.Generation, nil
}

// ProbeModified issues a metadata-only request for a document url and
// returns its modification token (Last-Modified, falling back to ETag).
//
// Returns an error wrapping tree.ErrNotFound when the document is gone and
// tree.ErrUnavailable for transport failures and other statuses.
func (c *Client) ProbeModified(ctx context.Context, docURL string) (string, error) {
	resp, err := c.send(ctx, "probe", http.MethodHead, c.resolve(docURL), nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus("probe", resp); err != nil {
		return "", err
	}

	if token := resp.Header.Get("Last-Modified"); token != "" {
		return token, nil
	}
	return resp.Header.Get("ETag"), nil
}

// DownloadArchive streams the bulk archive of the whole tree into w.
//
// Returns the number of bytes copied.
func (c *Client) DownloadArchive(ctx context.Context, w io.Writer) (int64, error) {
	resp, err := c.send(ctx, "archive", http.MethodGet, c.baseURL+"/api/archive", nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := checkStatus("archive", resp); err != nil {
		return 0, err
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("archive copy failed after %d bytes: %w", n, err)
	}
	return n, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	return c.doJSON(ctx, op, http.MethodGet, path, nil, out)
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, body io.Reader, out any) error {
	resp, err := c.send(ctx, op, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(op, resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %v: %w", op, err, tree.ErrUnavailable)
	}
	return nil
}

// send performs one throttled request and records its outcome.
func (c *Client) send(ctx context.Context, op, method, target string, body io.Reader) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: throttle: %v: %w", op, err, tree.ErrUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(op, 0, time.Since(start))
		logger.Debug("tree: %s %s [%s] failed: %v", method, target, requestID, err)
		return nil, fmt.Errorf("%s: %v: %w", op, err, tree.ErrUnavailable)
	}

	c.metrics.ObserveRequest(op, resp.StatusCode, time.Since(start))
	logger.Debug("tree: %s %s [%s] -> %d", method, target, requestID, resp.StatusCode)
	return resp, nil
}

// resolve turns a relative document url into an absolute one.
func (c *Client) resolve(docURL string) string {
	if strings.HasPrefix(docURL, "http://") || strings.HasPrefix(docURL, "https://") {
		return docURL
	}
	if !strings.HasPrefix(docURL, "/") {
		docURL = "/" + docURL
	}
	return c.baseURL + docURL
}

func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return &StatusError{Op: op, StatusCode: resp.StatusCode}
}
