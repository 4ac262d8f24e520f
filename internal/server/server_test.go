package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/cozy-creator/greenlens/internal/app"
	"github.com/cozy-creator/greenlens/internal/config"
	"github.com/cozy-creator/greenlens/internal/inference"
	"github.com/cozy-creator/greenlens/internal/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeModel struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (m *fakeModel) Name() string             { return "facebook/bart-large-mnli" }
func (m *fakeModel) Device() inference.Device { return inference.DeviceCPU }

func (m *fakeModel) Classify(_ context.Context, text string, labels []string, _ bool) (inference.Result, error) {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	res := make(inference.Result, len(labels))
	for i, l := range labels {
		res[i] = inference.Score{Label: l, Score: 0.6 / float64(i+1)}
	}
	return res, nil
}

func (m *fakeModel) seen() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

type fakeBackend struct {
	model   *fakeModel
	openErr error
}

func (b *fakeBackend) Name() string                { return "fake" }
func (b *fakeBackend) Devices() []inference.Device { return []inference.Device{inference.DeviceCPU} }

func (b *fakeBackend) Open(context.Context, inference.Device) (inference.Model, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	return b.model, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Host:        "127.0.0.1",
		Port:        8881,
		Environment: "test",
		Model: &config.ModelConfig{
			Backend: inference.BackendHuggingFace,
			Name:    inference.DefaultModelName,
			Device:  string(inference.DeviceAuto),
		},
	}
}

// newTestServer returns a server over a fake backend. With load set the model
// is loaded before the first request.
func newTestServer(t *testing.T, backend *fakeBackend, load bool) (*Server, *app.App) {
	t.Helper()

	cfg := testConfig()
	a, err := app.NewApp(cfg, app.WithBackend(backend), app.WithLogger(zap.NewNop()))
	require.NoError(t, err)
	t.Cleanup(a.Close)

	if load {
		_ = a.LoadModel(context.Background())
	}

	s, err := NewServer(cfg)
	require.NoError(t, err)
	s.SetupRoutes(a)

	return s, a
}

func postForm(s *Server, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestShowPage(t *testing.T) {
	s, _ := newTestServer(t, &fakeBackend{model: &fakeModel{}}, true)

	rec := get(s, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Greenwashing Claim Classifier")
	for _, c := range taxonomy.Categories() {
		assert.Contains(t, body, c.Label())
	}
	for _, ex := range taxonomy.Examples() {
		assert.Contains(t, body, ex.Name)
	}
	assert.Contains(t, body, "facebook/bart-large-mnli")
	assert.Contains(t, body, "Ingredients analysis")
	assert.NotContains(t, body, "Analysis results")
}

func TestAnalyzeClaim(t *testing.T) {
	m := &fakeModel{}
	s, _ := newTestServer(t, &fakeBackend{model: m}, true)

	rec := postForm(s, url.Values{"claim": {"Our packaging is 100% recycled."}})
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Prediction: Greenwashing")
	assert.Contains(t, body, "Confidence: 60.00%")
	assert.Contains(t, body, "Detailed analysis")
	assert.Contains(t, body, "Tips")
	assert.Equal(t, []string{"Our packaging is 100% recycled.", "Our packaging is 100% recycled."}, m.seen())
}

func TestAnalyzeExampleOverridesText(t *testing.T) {
	m := &fakeModel{}
	s, _ := newTestServer(t, &fakeBackend{model: m}, true)

	ex := taxonomy.Examples()[1]
	rec := postForm(s, url.Values{"claim": {"ignored"}, "example": {ex.Name}})
	require.Equal(t, http.StatusOK, rec.Code)

	seen := m.seen()
	require.Len(t, seen, 2)
	assert.Equal(t, ex.Text, seen[0])
}

func TestAnalyzeEmptyClaim(t *testing.T) {
	m := &fakeModel{}
	s, _ := newTestServer(t, &fakeBackend{model: m}, true)

	for _, claim := range []string{"", "   \n\t"} {
		rec := postForm(s, url.Values{"claim": {claim}})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Please enter a claim to analyze.")
	}
	assert.Empty(t, m.seen())
}

func TestAnalyzeClaimTooLong(t *testing.T) {
	m := &fakeModel{}
	s, _ := newTestServer(t, &fakeBackend{model: m}, true)

	rec := postForm(s, url.Values{"claim": {strings.Repeat("a", MaxClaimLength+1)}})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, m.seen())

	body := get(s, "/metrics").Body.String()
	assert.Contains(t, body, `greenlens_submissions_total{outcome="too_long"} 1`)
	assert.NotContains(t, body, `greenlens_submissions_total{outcome="empty"}`)
}

func TestAnalyzeWhileLoading(t *testing.T) {
	s, _ := newTestServer(t, &fakeBackend{model: &fakeModel{}}, false)

	rec := postForm(s, url.Values{"claim": {"Eco-friendly!"}})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "still loading")
}

func TestAnalyzeModelFailedToLoad(t *testing.T) {
	s, _ := newTestServer(t, &fakeBackend{openErr: errors.New("no route to host")}, true)

	rec := postForm(s, url.Values{"claim": {"Eco-friendly!"}})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Model not loaded")

	health := get(s, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, health.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(health.Body.Bytes(), &payload))
	assert.Equal(t, "failed", payload["status"])
	assert.Equal(t, "failed", payload["model"])
}

func TestAnalyzeClassificationError(t *testing.T) {
	m := &fakeModel{err: errors.New("inference endpoint returned 503")}
	s, _ := newTestServer(t, &fakeBackend{model: m}, true)

	rec := postForm(s, url.Values{"claim": {"Eco-friendly!"}})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error during analysis")
	assert.NotContains(t, rec.Body.String(), "Prediction:")
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t, &fakeBackend{model: &fakeModel{}}, true)

	rec := get(s, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Status string `json:"status"`
		Model  string `json:"model"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload.Status)
	assert.Equal(t, "ready", payload.Model)
}

func TestMetricsCountSubmissions(t *testing.T) {
	s, _ := newTestServer(t, &fakeBackend{model: &fakeModel{}}, true)

	postForm(s, url.Values{"claim": {""}})
	postForm(s, url.Values{"claim": {"Carbon neutral by 2030."}})

	body := get(s, "/metrics").Body.String()
	assert.Contains(t, body, `greenlens_submissions_total{outcome="empty"} 1`)
	assert.Contains(t, body, `greenlens_submissions_total{outcome="analyzed"} 1`)
	assert.Contains(t, body, `greenlens_model_state{state="ready"} 1`)
}

func TestStaticAssets(t *testing.T) {
	s, _ := newTestServer(t, &fakeBackend{model: &fakeModel{}}, true)

	rec := get(s, "/static/styles.css")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".progress")
}

func TestRequestID(t *testing.T) {
	s, _ := newTestServer(t, &fakeBackend{model: &fakeModel{}}, true)

	rec := get(s, "/healthz")
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	const id = "8d4e6f8a-3c1b-4b4e-9a55-0b7f2f1c2d3e"
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))
}
