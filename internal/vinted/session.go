package vinted

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/donaldgifford/vinted-notifier/internal/metrics"
)

const defaultSessionTTL = 30 * time.Minute

// CookieSession implements SessionProvider by visiting the locale homepage
// and keeping the cookies it sets. Cookies are cached per locale until the
// TTL passes or Invalidate is called. Refreshes of one locale are shared by
// concurrent callers and never block other locales.
type CookieSession struct {
	client    *http.Client
	userAgent string
	ttl       time.Duration
	originFor func(locale string) string

	refresh  singleflight.Group
	mu       sync.Mutex // guards sessions only
	sessions map[string]session
	nowFunc  func() time.Time // for testing
}

type session struct {
	cookies []*http.Cookie
	expiry  time.Time
}

// SessionOption configures the CookieSession.
type SessionOption func(*CookieSession)

// WithSessionHTTPClient overrides the default HTTP client.
func WithSessionHTTPClient(c *http.Client) SessionOption {
	return func(s *CookieSession) {
		s.client = c
	}
}

// WithSessionTTL overrides how long cookies are reused.
func WithSessionTTL(d time.Duration) SessionOption {
	return func(s *CookieSession) {
		s.ttl = d
	}
}

// WithSessionOrigin overrides the homepage visited for every locale.
func WithSessionOrigin(origin string) SessionOption {
	return func(s *CookieSession) {
		s.originFor = func(string) string { return origin }
	}
}

// WithSessionUserAgent sets the User-Agent header.
func WithSessionUserAgent(ua string) SessionOption {
	return func(s *CookieSession) {
		s.userAgent = ua
	}
}

// WithSessionNowFunc overrides the time function for testing.
func WithSessionNowFunc(f func() time.Time) SessionOption {
	return func(s *CookieSession) {
		s.nowFunc = f
	}
}

// NewCookieSession creates a session provider.
func NewCookieSession(opts ...SessionOption) *CookieSession {
	s := &CookieSession{
		client:    &http.Client{Timeout: 15 * time.Second},
		ttl:       defaultSessionTTL,
		originFor: BaseURL,
		sessions:  make(map[string]session),
		nowFunc:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cookies returns valid session cookies for the locale, fetching new ones if
// needed.
func (s *CookieSession) Cookies(ctx context.Context, locale string) ([]*http.Cookie, error) {
	if cookies, ok := s.cached(locale); ok {
		return cookies, nil
	}

	// The shared refresh outlives a caller that gives up; the client timeout
	// bounds it.
	ch := s.refresh.DoChan(locale, func() (any, error) {
		if cookies, ok := s.cached(locale); ok {
			return cookies, nil
		}
		return s.fetch(context.WithoutCancel(ctx), locale)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		cookies, _ := res.Val.([]*http.Cookie)
		return cookies, nil
	}
}

func (s *CookieSession) cached(locale string) ([]*http.Cookie, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[locale]
	if !ok || !s.nowFunc().Before(sess.expiry) {
		return nil, false
	}
	return sess.cookies, true
}

// Invalidate drops the cached cookies of a locale.
func (s *CookieSession) Invalidate(locale string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, locale)
}

func (s *CookieSession) fetch(ctx context.Context, locale string) ([]*http.Cookie, error) {
	origin := s.originFor(locale)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating session request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Kind: Transient, Locale: locale, Err: fmt.Errorf("executing session request: %w", err)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &UpstreamError{
			Kind:       Transient,
			Locale:     locale,
			StatusCode: resp.StatusCode,
			Err:        errors.New("session request failed"),
		}
	}

	metrics.VintedSessionRefreshesTotal.WithLabelValues(locale).Inc()

	cookies := resp.Cookies()
	s.mu.Lock()
	s.sessions[locale] = session{
		cookies: cookies,
		expiry:  s.nowFunc().Add(s.ttl),
	}
	s.mu.Unlock()
	return cookies, nil
}
