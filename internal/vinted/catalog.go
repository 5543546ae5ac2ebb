package vinted

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/donaldgifford/vinted-notifier/internal/metrics"
)

const (
	catalogPath          = "/api/v2/catalog/items"
	defaultPerPage       = 96
	defaultMaxRetries    = 3
	defaultMaxRetryAfter = time.Minute
)

// CatalogClient implements Catalog against the Vinted catalog API. Requests
// to a locale are paced, carry that locale's session cookies, and are
// retried with exponential backoff on transient failures.
type CatalogClient struct {
	session       SessionProvider
	pacer         *Pacer
	client        *http.Client
	origin        string
	userAgent     string
	maxRetries    int
	maxRetryAfter time.Duration
	newBackOff    func() backoff.BackOff
	log           *slog.Logger
	nowFunc       func() time.Time
}

// CatalogOption configures the CatalogClient.
type CatalogOption func(*CatalogClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) CatalogOption {
	return func(c *CatalogClient) {
		c.client = hc
	}
}

// WithOrigin replaces the per-locale marketplace origin for every request.
func WithOrigin(origin string) CatalogOption {
	return func(c *CatalogClient) {
		c.origin = origin
	}
}

// WithPacer sets the per-locale request pacer.
func WithPacer(p *Pacer) CatalogOption {
	return func(c *CatalogClient) {
		c.pacer = p
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) CatalogOption {
	return func(c *CatalogClient) {
		c.userAgent = ua
	}
}

// WithMaxRetries caps the retries after the first attempt.
func WithMaxRetries(n int) CatalogOption {
	return func(c *CatalogClient) {
		c.maxRetries = n
	}
}

// WithMaxRetryAfter sets the longest Retry-After the client is willing to
// wait. Longer throttles end the request immediately.
func WithMaxRetryAfter(d time.Duration) CatalogOption {
	return func(c *CatalogClient) {
		c.maxRetryAfter = d
	}
}

// WithBackOff overrides the retry delay policy.
func WithBackOff(f func() backoff.BackOff) CatalogOption {
	return func(c *CatalogClient) {
		c.newBackOff = f
	}
}

// WithCatalogLogger sets the logger.
func WithCatalogLogger(l *slog.Logger) CatalogOption {
	return func(c *CatalogClient) {
		c.log = l
	}
}

// NewCatalogClient creates a new catalog client.
func NewCatalogClient(session SessionProvider, opts ...CatalogOption) *CatalogClient {
	c := &CatalogClient{
		session:       session,
		pacer:         NewPacer(0),
		client:        &http.Client{Timeout: 15 * time.Second},
		maxRetries:    defaultMaxRetries,
		maxRetryAfter: defaultMaxRetryAfter,
		newBackOff:    defaultBackOff,
		log:           slog.Default(),
		nowFunc:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.RandomizationFactor = 0.5
	b.Multiplier = 2
	b.MaxInterval = 30 * time.Second
	return b
}

// Search implements Catalog.Search. After the retries are exhausted the last
// error is returned unchanged, so callers can inspect it with errors.As.
func (c *CatalogClient) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	var (
		lastErr error
		attempt int
	)

	op := func() (*SearchResponse, error) {
		attempt++
		if attempt > 1 {
			metrics.VintedRetriesTotal.WithLabelValues(req.Locale).Inc()
		}

		if err := c.pacer.Wait(ctx, req.Locale); err != nil {
			return nil, backoff.Permanent(err)
		}

		resp, err := c.searchOnce(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		return nil, c.retryDecision(req.Locale, err)
	}

	resp, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(uint(max(c.maxRetries, 0))+1), //nolint:gosec // non-negative
		backoff.WithNotify(func(err error, next time.Duration) {
			c.log.Warn("catalog request failed, retrying",
				"locale", req.Locale,
				"page", req.Page,
				"attempt", attempt,
				"next", next,
				"error", err,
			)
		}),
	)
	if err == nil {
		return resp, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, &UpstreamError{Kind: Transient, Locale: req.Locale, Err: ctxErr}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, err
}

// retryDecision wraps err for the backoff loop: permanent errors stop it and
// throttles set the next delay.
func (c *CatalogClient) retryDecision(locale string, err error) error {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		metrics.VintedRateLimitedTotal.WithLabelValues(locale).Inc()
		if rl.RetryAfter > c.maxRetryAfter {
			return backoff.Permanent(err)
		}
		if rl.RetryAfter > 0 {
			return backoff.RetryAfter(int(math.Ceil(rl.RetryAfter.Seconds())))
		}
		return err
	}

	var up *UpstreamError
	if errors.As(err, &up) {
		if up.StatusCode == http.StatusUnauthorized || up.StatusCode == http.StatusForbidden {
			c.session.Invalidate(locale)
		}
		if up.Kind == Permanent {
			return backoff.Permanent(err)
		}
	}
	return err
}

func (c *CatalogClient) searchOnce(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	cookies, err := c.session.Cookies(ctx, req.Locale)
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}

	u := c.buildSearchURL(req)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, &UpstreamError{Kind: Permanent, Locale: req.Locale, Err: fmt.Errorf("creating HTTP request: %w", err)}
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	for _, ck := range cookies {
		httpReq.AddCookie(ck)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	metrics.VintedRequestDuration.WithLabelValues(req.Locale).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.VintedRequestsTotal.WithLabelValues(req.Locale, "error").Inc()
		return nil, &UpstreamError{Kind: Transient, Locale: req.Locale, Err: fmt.Errorf("executing search request: %w", err)}
	}
	defer resp.Body.Close()
	metrics.VintedRequestsTotal.WithLabelValues(req.Locale, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Kind: Transient, Locale: req.Locale, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(req.Locale, resp, body, c.nowFunc())
	}

	var apiResp catalogResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, &UpstreamError{
			Kind:       Permanent,
			Locale:     req.Locale,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("parsing search response: %w", err),
		}
	}

	out := &SearchResponse{Items: apiResp.Items, Page: req.Page}
	if p := apiResp.Pagination; p != nil && p.TotalPages > 0 {
		out.TotalPages = p.TotalPages
		out.HasMore = p.CurrentPage < p.TotalPages
	} else {
		out.HasMore = len(apiResp.Items) >= perPage(req)
	}
	return out, nil
}

func (c *CatalogClient) buildSearchURL(req SearchRequest) string {
	params := url.Values{}
	params.Set("search_text", req.Query)
	params.Set("order", "newest_first")
	params.Set("per_page", strconv.Itoa(perPage(req)))

	page := req.Page
	if page < 1 {
		page = 1
	}
	params.Set("page", strconv.Itoa(page))

	if req.PriceFrom != nil {
		params.Set("price_from", strconv.FormatFloat(*req.PriceFrom, 'f', -1, 64))
	}
	if req.PriceTo != nil {
		params.Set("price_to", strconv.FormatFloat(*req.PriceTo, 'f', -1, 64))
	}

	origin := c.origin
	if origin == "" {
		origin = BaseURL(req.Locale)
	}
	return origin + catalogPath + "?" + params.Encode()
}

func perPage(req SearchRequest) int {
	if req.PerPage > 0 {
		return req.PerPage
	}
	return defaultPerPage
}
