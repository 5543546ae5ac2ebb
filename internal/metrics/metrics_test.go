package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistered(t *testing.T) {
	t.Parallel()

	// Verify all metrics are non-nil (registered via promauto on package init).
	assert.NotNil(t, HTTPRequestDuration)
	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, CyclesTotal)
	assert.NotNil(t, CycleDuration)
	assert.NotNil(t, LastCycleTimestamp)
	assert.NotNil(t, UnitErrorsTotal)
	assert.NotNil(t, ListingsFoundTotal)
	assert.NotNil(t, ListingsFilteredTotal)
	assert.NotNil(t, ListingsClassifiedTotal)
	assert.NotNil(t, ListingsDeferredTotal)
	assert.NotNil(t, VintedRequestsTotal)
	assert.NotNil(t, VintedRetriesTotal)
	assert.NotNil(t, NotificationsSentTotal)
	assert.NotNil(t, NotificationFailuresTotal)
	assert.NotNil(t, StateRecords)
	assert.NotNil(t, StateEvictionsTotal)
}

func TestPush(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		path   string
		method string
		body   []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		path = r.URL.Path
		method = r.Method
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "vn_test_pushed_total", Help: "test"})
	reg.MustRegister(c)
	c.Add(3)
	assert.InDelta(t, 3.0, testutil.ToFloat64(c), 1e-9)

	require.NoError(t, Push(context.Background(), srv.URL, "vinted_notifier", "host-a", reg))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/vinted_notifier/instance/host-a", path)
	assert.NotEmpty(t, body)
}

func TestPush_GatewayError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := Push(context.Background(), srv.URL, "job", "", prometheus.NewRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pushing metrics")
}
