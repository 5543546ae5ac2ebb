package cmd

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/vinted-notifier/internal/engine"
	"github.com/donaldgifford/vinted-notifier/internal/notify"
	"github.com/donaldgifford/vinted-notifier/internal/store"
	"github.com/donaldgifford/vinted-notifier/internal/vinted/mocks"
	"github.com/donaldgifford/vinted-notifier/pkg/logger"
	domain "github.com/donaldgifford/vinted-notifier/pkg/types"
)

func TestNewServer(t *testing.T) {
	t.Parallel()

	log := logger.Discard()
	st := store.NewFileStore(filepath.Join(t.TempDir(), "state.json"), store.WithLogger(log))
	rules := []domain.Rule{{Name: "switch", Keywords: []string{"switch"}, Locales: []string{"fr"}}}
	eng := engine.NewEngine(st, mocks.NewMockListingSource(t), notify.NewNoOpSender(log), rules,
		engine.WithLogger(log))

	srv := httptest.NewServer(newServer(eng, st, log))
	t.Cleanup(srv.Close)

	do := func(method, path string) (int, string) {
		t.Helper()
		req, err := http.NewRequestWithContext(t.Context(), method, srv.URL+path, http.NoBody)
		require.NoError(t, err)
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(b)
	}

	code, body := do(http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	code, _ = do(http.MethodGet, "/api/v1/runs/last")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = do(http.MethodPost, "/api/v1/run?dry_run=true")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"dry_run":true`)
	assert.Contains(t, body, `"skipped_rules":["switch"]`)

	code, body = do(http.MethodGet, "/api/v1/runs/last")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"result":"success"`)

	code, _ = do(http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, code)

	code, body = do(http.MethodGet, "/api/v1/rules")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"name":"switch"`)

	code, body = do(http.MethodGet, "/api/v1/state")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"rules":[]`)

	code, body = do(http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "vn_cycles_total")

	code, _ = do(http.MethodGet, "/openapi.json")
	assert.Equal(t, http.StatusOK, code)
}
