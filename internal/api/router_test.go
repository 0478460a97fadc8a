package api

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-creator/internal/backends/generation"
	"content-creator/internal/backends/retrieval"
	apperrors "content-creator/internal/common/errors"
	"content-creator/internal/common/logger"
	"content-creator/internal/content/pipeline"
	"content-creator/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGenerator struct {
	out    pipeline.Outcome
	panics bool
	calls  int
}

func (s *stubGenerator) Handle(ctx context.Context, body []byte) pipeline.Outcome {
	s.calls++
	if s.panics {
		panic("generator exploded")
	}
	return s.out
}

type stubHistory struct {
	records []models.HistoryRecord
	err     error
	limit   int
}

func (s *stubHistory) List(ctx context.Context, limit int) ([]models.HistoryRecord, error) {
	s.limit = limit
	return s.records, s.err
}

func localServer(t *testing.T, opts ...Option) *Server {
	p := pipeline.New(retrieval.NewLocal(nil), generation.NewLocal(rand.New(rand.NewSource(1))))
	return NewServer(p, append([]Option{WithLogger(logger.NewTestLogger(t))}, opts...)...)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func assertEnvelopeHeaders(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestGenerate_Success(t *testing.T) {
	router := localServer(t).Router()

	w := do(t, router, http.MethodPost, "/api/generate", `{"title":"Acme","description":"A widget for teams"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assertEnvelopeHeaders(t, w)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	for _, key := range []string{"hero_section", "features", "benefits", "seo_meta", "cta", "faqs", "html_content", "markdown_content"} {
		assert.Contains(t, body, key)
	}
	assert.Contains(t, w.Body.String(), "<!DOCTYPE html>", "html must not be unicode-escaped")
}

func TestGenerate_Validation(t *testing.T) {
	gen := &stubGenerator{out: pipeline.Outcome{
		Kind: pipeline.KindValidation,
		Err:  apperrors.NewValidationError(pipeline.ValidationMessage),
	}}
	router := NewServer(gen).Router()

	w := do(t, router, http.MethodPost, "/api/generate", `{"title":"Acme"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assertEnvelopeHeaders(t, w)
	assert.JSONEq(t, `{"error":"Title and description are required"}`, w.Body.String())
}

func TestGenerate_ValidationThroughPipeline(t *testing.T) {
	router := localServer(t).Router()

	for _, body := range []string{`{}`, `{"title":"","description":"x"}`, `{"description":"x"}`} {
		w := do(t, router, http.MethodPost, "/api/generate", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, `{"error":"Title and description are required"}`, w.Body.String(), body)
	}
}

func TestGenerate_BackendFailure(t *testing.T) {
	gen := &stubGenerator{out: pipeline.Outcome{
		Kind: pipeline.KindBackendFailure,
		Err:  apperrors.NewGenerationFailedError("bedrock", errors.New("Bedrock API error: AccessDenied")),
	}}
	router := NewServer(gen).Router()

	w := do(t, router, http.MethodPost, "/api/generate", `{"title":"Acme","description":"A widget"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assertEnvelopeHeaders(t, w)
	assert.Equal(t, `{"error":"Internal server error","detail":"Bedrock API error: AccessDenied"}`, w.Body.String())
}

func TestGenerate_MalformedBodyIsInternalError(t *testing.T) {
	router := localServer(t).Router()

	w := do(t, router, http.MethodPost, "/api/generate", `not json`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assertEnvelopeHeaders(t, w)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Internal server error", body["error"])
	assert.NotEmpty(t, body["detail"])
}

func TestGenerate_PanicRecovered(t *testing.T) {
	router := NewServer(&stubGenerator{panics: true}).Router()

	w := do(t, router, http.MethodPost, "/api/generate", `{}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assertEnvelopeHeaders(t, w)
	assert.Equal(t, `{"error":"Internal server error","detail":"generator exploded"}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	router := localServer(t).Router()

	req := httptest.NewRequest(http.MethodOptions, "/api/generate", nil)
	req.Header.Set("Origin", "https://frontend.test")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthAndReady(t *testing.T) {
	failing := ReadinessCheck{Name: "postgres", Check: func(ctx context.Context) error { return errors.New("connection refused") }}
	passing := ReadinessCheck{Name: "redis", Check: func(ctx context.Context) error { return nil }}

	router := localServer(t, WithReadinessChecks(passing)).Router()
	w := do(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)

	w = do(t, router, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)

	router = localServer(t, WithReadinessChecks(passing, failing)).Router()
	w = do(t, router, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"failed":"postgres"`)
}

func TestMetricsEndpoint(t *testing.T) {
	router := localServer(t).Router()
	do(t, router, http.MethodPost, "/api/generate", `{}`)

	w := do(t, router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "content_requests_total")
}

func TestHistory(t *testing.T) {
	h := &stubHistory{records: []models.HistoryRecord{{Title: "Acme"}}}
	router := localServer(t, WithHistory(h)).Router()

	w := do(t, router, http.MethodGet, "/api/history?limit=500", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 100, h.limit)
	assert.Contains(t, w.Body.String(), `"title":"Acme"`)

	w = do(t, router, http.MethodGet, "/api/history", "")
	assert.Equal(t, 20, h.limit)

	w = do(t, router, http.MethodGet, "/api/history?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	h.err = apperrors.NewHistoryReadFailedError(errors.New("relation does not exist"))
	w = do(t, router, http.MethodGet, "/api/history", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "relation does not exist")
}

func TestHistoryRouteAbsentWhenDisabled(t *testing.T) {
	router := localServer(t).Router()
	w := do(t, router, http.MethodGet, "/api/history", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestIDPropagated(t *testing.T) {
	router := localServer(t).Router()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))

	w = do(t, router, http.MethodGet, "/health", "")
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}
