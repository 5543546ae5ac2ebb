package vinted

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrorKind says whether an upstream failure is worth retrying.
type ErrorKind int

// Error kinds.
const (
	Transient ErrorKind = iota
	Permanent
)

func (k ErrorKind) String() string {
	if k == Permanent {
		return "permanent"
	}
	return "transient"
}

// UpstreamError is a failed catalog request.
type UpstreamError struct {
	Kind       ErrorKind
	Locale     string
	StatusCode int // 0 for network and decode failures
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("vinted %s (%s): status %d: %v", e.Locale, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("vinted %s (%s): %v", e.Locale, e.Kind, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// RateLimitedError is returned when the marketplace throttles a locale.
// It is always transient.
type RateLimitedError struct {
	Locale     string
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("vinted %s: rate limited, retry after %s", e.Locale, e.RetryAfter)
}

// IsTransient reports whether err is a failure that may succeed next cycle.
// Unknown errors are treated as transient.
func IsTransient(err error) bool {
	var up *UpstreamError
	if errors.As(err, &up) {
		return up.Kind == Transient
	}
	return true
}

// Kind names the error class for metrics labels.
func Kind(err error) string {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return "rate_limited"
	}
	var up *UpstreamError
	if errors.As(err, &up) {
		return up.Kind.String()
	}
	return "unknown"
}

// classifyStatus maps a non-200 response to an error.
func classifyStatus(locale string, resp *http.Response, body []byte, now time.Time) error {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitedError{Locale: locale, RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), now)}
	case resp.StatusCode >= http.StatusInternalServerError,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusRequestTimeout:
		return &UpstreamError{Kind: Transient, Locale: locale, StatusCode: resp.StatusCode, Err: bodyError(body)}
	default:
		return &UpstreamError{Kind: Permanent, Locale: locale, StatusCode: resp.StatusCode, Err: bodyError(body)}
	}
}

func bodyError(body []byte) error {
	const maxLen = 200
	if len(body) > maxLen {
		body = body[:maxLen]
	}
	return errors.New(string(body))
}

// parseRetryAfter accepts delta seconds or an HTTP date. Missing or invalid
// values yield zero, leaving the delay to the backoff policy.
func parseRetryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
