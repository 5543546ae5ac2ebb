package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/vinted-notifier/internal/metrics"
	"github.com/donaldgifford/vinted-notifier/internal/notify"
	"github.com/donaldgifford/vinted-notifier/internal/notify/mocks"
	"github.com/donaldgifford/vinted-notifier/pkg/logger"
	domain "github.com/donaldgifford/vinted-notifier/pkg/types"
)

func testMessage() *notify.Message {
	return notify.NewMessage("sneakers", []domain.Candidate{{
		Listing: domain.Listing{
			ID:     "4242",
			Locale: "fr",
			Title:  "Nike Air Max 90",
			Price:  domain.Money{Amount: 45, Currency: "EUR"},
			URL:    "https://www.vinted.fr/items/4242",
		},
		Classification: domain.Classification{Kind: domain.MatchNew},
	}})
}

func newDispatcher(opts ...notify.DispatcherOption) *notify.Dispatcher {
	base := []notify.DispatcherOption{
		notify.WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
		notify.WithLogger(logger.Discard()),
	}
	return notify.NewDispatcher(append(base, opts...)...)
}

// scriptedServer answers each request with the next status in statuses,
// repeating the last one.
func scriptedServer(t *testing.T, statuses ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		n := int(calls.Add(1)) - 1
		w.WriteHeader(statuses[min(n, len(statuses)-1)])
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestDispatcher_Send(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		platform    domain.Platform
		statuses    []int
		maxAttempts int
		wantCalls   int32
		wantErr     bool
		wantStatus  int
	}{
		{
			name:        "slack 200",
			platform:    domain.PlatformSlack,
			statuses:    []int{http.StatusOK},
			maxAttempts: 3,
			wantCalls:   1,
		},
		{
			name:        "discord 204",
			platform:    domain.PlatformDiscord,
			statuses:    []int{http.StatusNoContent},
			maxAttempts: 3,
			wantCalls:   1,
		},
		{
			name:        "server error then success",
			platform:    domain.PlatformSlack,
			statuses:    []int{http.StatusBadGateway, http.StatusInternalServerError, http.StatusOK},
			maxAttempts: 3,
			wantCalls:   3,
		},
		{
			name:        "exhausts attempts",
			platform:    domain.PlatformDiscord,
			statuses:    []int{http.StatusInternalServerError},
			maxAttempts: 3,
			wantCalls:   3,
			wantErr:     true,
			wantStatus:  http.StatusInternalServerError,
		},
		{
			name:        "client error retried too",
			platform:    domain.PlatformSlack,
			statuses:    []int{http.StatusBadRequest},
			maxAttempts: 2,
			wantCalls:   2,
			wantErr:     true,
			wantStatus:  http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv, calls := scriptedServer(t, tt.statuses...)
			d := newDispatcher(notify.WithMaxAttempts(tt.maxAttempts))

			err := d.Send(context.Background(), domain.Webhook{Platform: tt.platform, URL: srv.URL}, testMessage())
			assert.Equal(t, tt.wantCalls, calls.Load())

			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			var de *notify.DeliveryError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.platform, de.Platform)
			assert.Equal(t, int(tt.wantCalls), de.Attempts)
			assert.Equal(t, tt.wantStatus, de.StatusCode)
		})
	}
}

func TestDispatcher_Send_DiscordWaitsForMessage(t *testing.T) {
	t.Parallel()

	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newDispatcher().Send(context.Background(),
		domain.Webhook{Platform: domain.PlatformDiscord, URL: srv.URL + "/api/webhooks/1/x"}, testMessage())
	require.NoError(t, err)
	assert.Equal(t, "wait=true", query)
}

func TestDispatcher_Send_RateLimited(t *testing.T) {
	t.Parallel()

	t.Run("short retry-after is honored", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) == 1 {
				w.Header().Set("Retry-After", "0.01")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		err := newDispatcher().Send(context.Background(),
			domain.Webhook{Platform: domain.PlatformSlack, URL: srv.URL}, testMessage())
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("long retry-after gives up", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"message":"You are being rate limited.","retry_after":120.5}`))
		}))
		defer srv.Close()

		err := newDispatcher().Send(context.Background(),
			domain.Webhook{Platform: domain.PlatformDiscord, URL: srv.URL}, testMessage())

		var de *notify.DeliveryError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, http.StatusTooManyRequests, de.StatusCode)
		assert.Contains(t, err.Error(), "rate limited")
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestDispatcher_Send_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	d := newDispatcher(notify.WithTimeout(20*time.Millisecond), notify.WithMaxAttempts(2))
	err := d.Send(context.Background(), domain.Webhook{Platform: domain.PlatformSlack, URL: srv.URL}, testMessage())

	var de *notify.DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 2, de.Attempts)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDispatcher_Send_NetworkError(t *testing.T) {
	t.Parallel()

	d := newDispatcher(notify.WithMaxAttempts(1))
	err := d.Send(context.Background(),
		domain.Webhook{Platform: domain.PlatformSlack, URL: "http://127.0.0.1:1"}, testMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sending slack webhook")
}

func TestDispatcher_Send_UnsupportedPlatform(t *testing.T) {
	t.Parallel()

	err := newDispatcher().Send(context.Background(),
		domain.Webhook{Platform: "teams", URL: "https://example.com"}, testMessage())

	var de *notify.DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 0, de.Attempts)
	assert.Contains(t, err.Error(), "unsupported platform")
}

func TestDispatcher_Send_Metrics(t *testing.T) {
	t.Parallel()

	srv, _ := scriptedServer(t, http.StatusServiceUnavailable, http.StatusOK)

	sentBefore := testutil.ToFloat64(metrics.NotificationsSentTotal.WithLabelValues("slack"))
	retriesBefore := testutil.ToFloat64(metrics.NotificationRetriesTotal.WithLabelValues("slack"))

	err := newDispatcher().Send(context.Background(),
		domain.Webhook{Platform: domain.PlatformSlack, URL: srv.URL}, testMessage())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, testutil.ToFloat64(metrics.NotificationsSentTotal.WithLabelValues("slack")), sentBefore+1)
	assert.GreaterOrEqual(t, testutil.ToFloat64(metrics.NotificationRetriesTotal.WithLabelValues("slack")), retriesBefore+1)
}

func TestBroadcast(t *testing.T) {
	t.Parallel()

	slack := domain.Webhook{Platform: domain.PlatformSlack, URL: "https://hooks.slack.com/services/T/B/X"}
	discord := domain.Webhook{Platform: domain.PlatformDiscord, URL: "https://discord.com/api/webhooks/1/y"}
	msg := testMessage()

	tests := []struct {
		name          string
		slackErr      error
		discordErr    error
		wantAcked     int
		wantFailed    int
		wantConfirmed bool
	}{
		{name: "both ack", wantAcked: 2, wantConfirmed: true},
		{name: "one fails", discordErr: errors.New("boom"), wantAcked: 1, wantFailed: 1, wantConfirmed: true},
		{
			name:       "both fail",
			slackErr:   errors.New("boom"),
			discordErr: errors.New("boom"),
			wantFailed: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := mocks.NewMockSender(t)
			s.EXPECT().Send(mock.Anything, slack, msg).Return(tt.slackErr).Once()
			s.EXPECT().Send(mock.Anything, discord, msg).Return(tt.discordErr).Once()

			res := notify.Broadcast(context.Background(), s, []domain.Webhook{slack, discord}, msg)

			assert.Equal(t, tt.wantAcked, res.Acked())
			assert.Equal(t, tt.wantFailed, res.Failed())
			assert.Equal(t, tt.wantConfirmed, res.Confirmed())
			require.Len(t, res.Outcomes, 2)
			assert.Equal(t, slack, res.Outcomes[0].Target)
			assert.Equal(t, discord, res.Outcomes[1].Target)
		})
	}
}

func TestBroadcast_NoTargets(t *testing.T) {
	t.Parallel()

	res := notify.Broadcast(context.Background(), mocks.NewMockSender(t), nil, testMessage())
	assert.False(t, res.Confirmed())
	assert.Zero(t, res.Failed())
}
