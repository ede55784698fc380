package hits

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"golang.org/x/time/rate"

	"github.com/mgomes/wikisearch/internal/logging"
)

// Path is the single query endpoint of the search service.
const Path = "/api/v1/hits/"

const (
	defaultTimeout   = 10 * time.Second
	defaultRateLimit = 10
	defaultRateBurst = 5
)

var log = logging.ForComponent(logging.CompHits)

// StatusError reports a non-2xx reply from the endpoint.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// IsStatus reports whether err wraps a *StatusError.
func IsStatus(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

type Options struct {
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
	Transport http.RoundTripper
}

type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = defaultRateBurst
	}
	parent := opts.Transport
	if parent == nil {
		parent = http.DefaultTransport
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: gzhttp.Transport(parent),
		},
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst),
	}
}

// Suggest runs a bounded lookup returning at most k hits.
func (c *Client) Suggest(ctx context.Context, query string, k int) (*Response, error) {
	if k <= 0 {
		return nil, fmt.Errorf("suggestion limit must be positive, got %d", k)
	}
	return c.query(ctx, query, k)
}

// Search runs the full, unbounded query.
func (c *Client) Search(ctx context.Context, query string) (*Response, error) {
	return c.query(ctx, query, 0)
}

// Ping checks that the endpoint answers a minimal lookup.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.query(ctx, "ping", 1); err != nil {
		return fmt.Errorf("endpoint unreachable: %w", err)
	}
	return nil
}

func (c *Client) URL(query string, k int) string {
	params := url.Values{}
	params.Set("q", query)
	if k > 0 {
		params.Set("k", strconv.Itoa(k))
	}
	return c.baseURL + Path + "?" + params.Encode()
}

func (c *Client) query(ctx context.Context, query string, k int) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := c.URL(query, k)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hits request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	log.Debug("hits_request",
		slog.String("url", endpoint),
		slog.Int("status", resp.StatusCode),
		slog.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode hits response: %w", err)
	}
	if out.Results == nil {
		out.Results = []Hit{}
	}

	return &out, nil
}
