package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/vinted-notifier/internal/metrics"
	domain "github.com/donaldgifford/vinted-notifier/pkg/types"
)

const (
	defaultMaxAttempts   = 3
	defaultTimeout       = 10 * time.Second
	defaultMaxRetryAfter = 30 * time.Second
	maxErrorBody         = 512
)

var tracer = otel.Tracer("github.com/donaldgifford/vinted-notifier/internal/notify")

// Sender delivers one message to one webhook target.
type Sender interface {
	Send(ctx context.Context, target domain.Webhook, msg *Message) error
}

// DeliveryError is returned when a webhook did not acknowledge a message
// after every attempt.
type DeliveryError struct {
	Platform   domain.Platform
	Attempts   int
	StatusCode int // last HTTP status, 0 if none was received
	Err        error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s delivery failed after %d attempt(s): %v", e.Platform, e.Attempts, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Dispatcher implements Sender over HTTP. Each attempt has its own timeout;
// failed attempts are retried with capped exponential backoff, and a 429
// waits for the delay the platform asks for.
type Dispatcher struct {
	client        *http.Client
	platforms     Platforms
	maxAttempts   int
	timeout       time.Duration
	maxRetryAfter time.Duration
	newBackOff    func() backoff.BackOff
	log           *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DispatcherOption {
	return func(d *Dispatcher) {
		d.client = c
	}
}

// WithMaxAttempts sets the total number of delivery attempts per target.
func WithMaxAttempts(n int) DispatcherOption {
	return func(d *Dispatcher) {
		d.maxAttempts = n
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(t time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.timeout = t
	}
}

// WithMaxRetryAfter sets the longest throttle delay worth waiting for.
func WithMaxRetryAfter(t time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.maxRetryAfter = t
	}
}

// WithBackOff overrides the retry delay policy.
func WithBackOff(f func() backoff.BackOff) DispatcherOption {
	return func(d *Dispatcher) {
		d.newBackOff = f
	}
}

// WithPlatforms overrides the formatter registry.
func WithPlatforms(p Platforms) DispatcherOption {
	return func(d *Dispatcher) {
		d.platforms = p
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.log = l
	}
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		client:        http.DefaultClient,
		platforms:     DefaultPlatforms(),
		maxAttempts:   defaultMaxAttempts,
		timeout:       defaultTimeout,
		maxRetryAfter: defaultMaxRetryAfter,
		newBackOff:    defaultBackOff,
		log:           slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.RandomizationFactor = 0.5
	b.Multiplier = 2
	b.MaxInterval = 10 * time.Second
	return b
}

// Send implements Sender.
func (d *Dispatcher) Send(ctx context.Context, target domain.Webhook, msg *Message) error {
	ctx, span := tracer.Start(ctx, "notify.Send", trace.WithAttributes(
		attribute.String("platform", string(target.Platform)),
		attribute.String("rule", msg.Rule),
		attribute.Int("items", len(msg.Items)),
	))
	defer span.End()

	start := time.Now()
	err := d.send(ctx, target, msg)
	metrics.NotificationDuration.WithLabelValues(string(target.Platform)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.NotificationFailuresTotal.WithLabelValues(string(target.Platform)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
		return err
	}

	metrics.NotificationsSentTotal.WithLabelValues(string(target.Platform)).Inc()
	return nil
}

func (d *Dispatcher) send(ctx context.Context, target domain.Webhook, msg *Message) error {
	platform, err := d.platforms.Lookup(target.Platform)
	if err != nil {
		return &DeliveryError{Platform: target.Platform, Err: err}
	}

	payload, err := platform.Format(msg)
	if err != nil {
		return &DeliveryError{Platform: target.Platform, Err: fmt.Errorf("formatting message: %w", err)}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &DeliveryError{Platform: target.Platform, Err: fmt.Errorf("marshaling %s payload: %w", target.Platform, err)}
	}

	endpoint, err := platform.Endpoint(target.URL)
	if err != nil {
		return &DeliveryError{Platform: target.Platform, Err: err}
	}

	var (
		attempts   int
		lastStatus int
		lastErr    error
	)

	op := func() (struct{}, error) {
		attempts++
		if attempts > 1 {
			metrics.NotificationRetriesTotal.WithLabelValues(string(target.Platform)).Inc()
		}

		status, retryAfter, err := d.post(ctx, target.Platform, endpoint, body)
		lastStatus = status
		if err == nil {
			return struct{}{}, nil
		}
		lastErr = err

		if retryAfter > 0 {
			if retryAfter > d.maxRetryAfter {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, backoff.RetryAfter(int(math.Ceil(retryAfter.Seconds())))
		}
		return struct{}{}, err
	}

	_, err = backoff.Retry(ctx, op,
		backoff.WithBackOff(d.newBackOff()),
		backoff.WithMaxTries(uint(max(d.maxAttempts, 1))), //nolint:gosec // positive
		backoff.WithNotify(func(err error, next time.Duration) {
			d.log.Warn("webhook delivery failed, retrying",
				"platform", target.Platform,
				"rule", msg.Rule,
				"attempt", attempts,
				"next", next,
				"error", err,
			)
		}),
	)
	if err == nil {
		return nil
	}
	if lastErr == nil {
		lastErr = err
	}
	return &DeliveryError{
		Platform:   target.Platform,
		Attempts:   attempts,
		StatusCode: lastStatus,
		Err:        lastErr,
	}
}

// post performs one attempt. retryAfter is non-zero when the platform asked
// for a delay.
func (d *Dispatcher) post(
	ctx context.Context,
	platform domain.Platform,
	endpoint string,
	body []byte,
) (status int, retryAfter time.Duration, err error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("creating %s request: %w", platform, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("sending %s webhook: %w", platform, err)
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode == http.StatusTooManyRequests {
		return resp.StatusCode, throttleDelay(resp.Header.Get("Retry-After"), respBody),
			fmt.Errorf("%s rate limited (429)", platform)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if readErr != nil {
			return resp.StatusCode, 0, fmt.Errorf("%s returned %d (body unreadable)", platform, resp.StatusCode)
		}
		return resp.StatusCode, 0, fmt.Errorf("%s returned %d: %s", platform, resp.StatusCode, respBody)
	}

	return resp.StatusCode, 0, nil
}

// throttleDelay reads the Retry-After header (seconds, possibly fractional)
// or Discord's JSON retry_after field.
func throttleDelay(header string, body []byte) time.Duration {
	if header != "" {
		if secs, err := strconv.ParseFloat(header, 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
		if t, err := http.ParseTime(header); err == nil {
			if d := time.Until(t); d > 0 {
				return d
			}
		}
	}

	var discord struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(body, &discord); err == nil && discord.RetryAfter > 0 {
		return time.Duration(discord.RetryAfter * float64(time.Second))
	}
	return 0
}

// Outcome is the delivery result for one target.
type Outcome struct {
	Target domain.Webhook
	Err    error
}

// Result collects the outcomes of one message sent to several targets.
type Result struct {
	Outcomes []Outcome
}

// Acked returns how many targets acknowledged the message.
func (r Result) Acked() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns how many targets did not acknowledge the message.
func (r Result) Failed() int {
	return len(r.Outcomes) - r.Acked()
}

// Confirmed reports whether at least one target acknowledged the message.
func (r Result) Confirmed() bool {
	return r.Acked() > 0
}

// Broadcast sends msg to every target concurrently. Each target gets an
// independent delivery, so one failing webhook never blocks the others.
func Broadcast(ctx context.Context, s Sender, targets []domain.Webhook, msg *Message) Result {
	res := Result{Outcomes: make([]Outcome, len(targets))}

	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Go(func() {
			res.Outcomes[i] = Outcome{Target: target, Err: s.Send(ctx, target, msg)}
		})
	}
	wg.Wait()

	return res
}
