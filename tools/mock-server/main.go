// Package main implements a mock Vinted server for local development. It
// serves the session homepage and the catalog search API from a JSON fixture,
// and accepts Slack and Discord webhook posts so a full cycle can run without
// touching real services.
package main

import (
	_ "embed"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

const sessionCookie = "access_token_web"

//go:embed testdata/catalog.json
var defaultFixture []byte

type catalogResponse struct {
	Items      []json.RawMessage `json:"items"`
	Pagination pagination        `json:"pagination"`
}

type pagination struct {
	CurrentPage  int `json:"current_page"`
	TotalPages   int `json:"total_pages"`
	TotalEntries int `json:"total_entries"`
	PerPage      int `json:"per_page"`
}

type itemSummary struct {
	Title string `json:"title"`
}

type server struct {
	log           *slog.Logger
	items         []indexedItem
	throttleEvery int64
	searches      atomic.Int64
	webhooks      atomic.Int64
}

type indexedItem struct {
	raw   json.RawMessage
	title string
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "", "path to a catalog response fixture (default: built-in)")
	throttleEvery := flag.Int64("throttle-every", 0, "answer every Nth search with 429 (0 disables)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	data := defaultFixture
	if *fixtureFile != "" {
		var err error
		data, err = os.ReadFile(*fixtureFile) //nolint:gosec // fixture path from trusted CLI flag
		if err != nil {
			logger.Error("failed to read fixture", "path", *fixtureFile, "error", err)
			os.Exit(1)
		}
	}

	s, err := newServer(logger, data, *throttleEvery)
	if err != nil {
		logger.Error("failed to load fixture", "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "items", len(s.items))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock vinted server", "addr", addr,
		"base_url", fmt.Sprintf("http://localhost:%d", *port),
		"slack_webhook", fmt.Sprintf("http://localhost:%d/webhooks/slack/dev", *port),
		"discord_webhook", fmt.Sprintf("http://localhost:%d/webhooks/discord/dev", *port),
	)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, s.routes()),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newServer(logger *slog.Logger, fixture []byte, throttleEvery int64) (*server, error) {
	var resp struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(fixture, &resp); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}

	items := make([]indexedItem, 0, len(resp.Items))
	for _, raw := range resp.Items {
		var s itemSummary
		//nolint:errcheck,gosec // fixture data is trusted; title extraction is best-effort
		json.Unmarshal(raw, &s)
		items = append(items, indexedItem{raw: raw, title: strings.ToLower(s.Title)})
	}
	return &server{log: logger, items: items, throttleEvery: throttleEvery}, nil
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.homeHandler)
	mux.HandleFunc("GET /api/v2/catalog/items", s.searchHandler)
	mux.HandleFunc("POST /webhooks/{platform}/{name}", s.webhookHandler)
	mux.HandleFunc("GET /webhooks/stats", s.statsHandler)
	return mux
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

// homeHandler issues the anonymous session cookie the catalog API requires.
func (s *server) homeHandler(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "mock-session-" + strconv.FormatInt(time.Now().UnixNano(), 36),
		Path:     "/",
		HttpOnly: true,
	})
	w.Header().Set("Content-Type", "text/html")
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	io.WriteString(w, "<html><body>mock vinted</body></html>")
	s.log.Info("issued session cookie")
}

func (s *server) searchHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(sessionCookie); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"code": 100, "message": "invalid authentication token"})
		return
	}

	n := s.searches.Add(1)
	if s.throttleEvery > 0 && n%s.throttleEvery == 0 {
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusTooManyRequests, map[string]any{"code": 106, "message": "too many requests"})
		s.log.Warn("throttled search", "request", n)
		return
	}

	q := r.URL.Query()
	terms := strings.Fields(strings.ToLower(q.Get("search_text")))
	perPage := intParam(q.Get("per_page"), 96)
	page := intParam(q.Get("page"), 1)

	var matched []json.RawMessage
	for _, item := range s.items {
		if matchesAll(item.title, terms) {
			matched = append(matched, item.raw)
		}
	}

	total := len(matched)
	totalPages := (total + perPage - 1) / perPage
	start := (page - 1) * perPage
	if start >= total {
		matched = []json.RawMessage{}
	} else {
		matched = matched[start:min(start+perPage, total)]
	}

	writeJSON(w, http.StatusOK, catalogResponse{
		Items: matched,
		Pagination: pagination{
			CurrentPage:  page,
			TotalPages:   totalPages,
			TotalEntries: total,
			PerPage:      perPage,
		},
	})
	s.log.Info("search", "query", strings.Join(terms, " "), "matched", total, "returned", len(matched), "page", page)
}

// webhookHandler acknowledges a post the way the real platform does: Slack
// answers "ok", Discord answers 204, or the created message with wait=true.
func (s *server) webhookHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(body) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
		return
	}
	s.webhooks.Add(1)

	platform := r.PathValue("platform")
	s.log.Info("webhook received", "platform", platform, "name", r.PathValue("name"), "bytes", len(body))

	switch platform {
	case "slack":
		w.Header().Set("Content-Type", "text/plain")
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		io.WriteString(w, "ok")
	case "discord":
		if r.URL.Query().Get("wait") == "true" {
			writeJSON(w, http.StatusOK, map[string]string{"id": strconv.FormatInt(s.webhooks.Load(), 10)})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func (s *server) statsHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int64{
		"searches": s.searches.Load(),
		"webhooks": s.webhooks.Load(),
	})
}

func matchesAll(title string, terms []string) bool {
	for _, t := range terms {
		if !strings.Contains(title, t) {
			return false
		}
	}
	return true
}

func intParam(v string, def int) int {
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return n
	}
	return def
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}
