package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/bookrec/catalog"
	"github.com/rushteam/bookrec/conf"
	"github.com/rushteam/bookrec/recommend"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	engine, err := recommend.New(context.Background(), recommend.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	cfg := conf.Default().Server
	cfg.RateLimitRequests = 0
	ts := httptest.NewServer(New(engine, cfg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestBooks(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, ts, http.MethodGet, "/api/books", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]catalog.Book](t, resp), 25)

	resp = do(t, ts, http.MethodGet, "/api/books?category=Python&search=fluent", nil)
	books := decode[[]catalog.Book](t, resp)
	require.Len(t, books, 1)
	assert.Equal(t, 17, books[0].ID)

	resp = do(t, ts, http.MethodGet, "/api/books?where=book.year%20%3E%3D", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBook(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, ts, http.MethodGet, "/api/book/3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Python Machine Learning", decode[catalog.Book](t, resp).Title)

	resp = do(t, ts, http.MethodGet, "/api/book/404", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, errorBody{Error: "Book not found"}, decode[errorBody](t, resp))

	resp = do(t, ts, http.MethodGet, "/api/book/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRecommend(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, ts, http.MethodPost, "/api/recommend", map[string]any{
		"ratings": map[string]int{"1": 5},
		"method":  "heuristic",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	recs := decode[[]recommend.Recommendation](t, resp)
	require.Len(t, recs, 6)
	assert.Equal(t, 9, recs[0].ID)
	assert.InDelta(t, 121, recs[0].Score, 1e-9)

	resp = do(t, ts, http.MethodPost, "/api/recommend", map[string]any{"method": "magic"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, ts, http.MethodPost, "/api/recommend", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSimilar(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, ts, http.MethodGet, "/api/similar/2?n=3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]recommend.Recommendation](t, resp), 3)

	resp = do(t, ts, http.MethodGet, "/api/similar/999", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]recommend.Recommendation](t, resp))

	resp = do(t, ts, http.MethodGet, "/api/similar/2?n=x", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCategoriesAndStats(t *testing.T) {
	ts := newTestServer(t)

	cats := decode[[]string](t, do(t, ts, http.MethodGet, "/api/categories", nil))
	require.NotEmpty(t, cats)
	assert.Equal(t, "All", cats[0])

	stats := decode[catalog.Stats](t, do(t, ts, http.MethodGet, "/api/stats", nil))
	assert.Equal(t, 25, stats.TotalBooks)
	assert.Len(t, stats.TopRated, 5)

	methods := decode[methodsBody](t, do(t, ts, http.MethodGet, "/api/methods", nil))
	assert.Equal(t, "hybrid", methods.Default)
	assert.Contains(t, methods.Methods, "heuristic")
}

func TestRatingsLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, ts, http.MethodPost, "/api/ratings", map[string]any{"user_id": "alice", "book_id": 1, "rating": 5})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, ts, http.MethodPost, "/api/ratings", map[string]any{"user_id": "alice", "book_id": 2, "rating": 6})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, ts, http.MethodPost, "/api/ratings", map[string]any{"user_id": "alice", "book_id": 404, "rating": 3})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	got := decode[map[string]int](t, do(t, ts, http.MethodGet, "/api/ratings/alice", nil))
	assert.Equal(t, map[string]int{"1": 5}, got)

	resp = do(t, ts, http.MethodPost, "/api/recommend", map[string]any{"user_id": "alice", "method": "heuristic"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 9, decode[[]recommend.Recommendation](t, resp)[0].ID)

	resp = do(t, ts, http.MethodDelete, "/api/ratings/alice/1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	got = decode[map[string]int](t, do(t, ts, http.MethodGet, "/api/ratings/alice", nil))
	assert.Empty(t, got)
}

func TestHealthMetricsAndRequestID(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(headerRequestID, "req-123")
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-123", resp.Header.Get(headerRequestID))

	resp = do(t, ts, http.MethodGet, "/api/categories", nil)
	assert.NotEmpty(t, resp.Header.Get(headerRequestID))

	resp = do(t, ts, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, ts, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	engine, err := recommend.New(context.Background(), recommend.Options{})
	require.NoError(t, err)
	defer engine.Close()

	cfg := conf.Default().Server
	cfg.RateLimitRequests = 2
	h := New(engine, cfg).Handler()

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, http.StatusTooManyRequests}, codes)
}
