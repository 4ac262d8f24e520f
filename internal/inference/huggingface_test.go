package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// zeroShotServer answers like the hosted zero-shot pipeline: every candidate
// label scored, sorted by descending score.
func zeroShotServer(t *testing.T, gpuAvailable bool, calls *atomic.Int32) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/facebook/bart-large-mnli", r.URL.Path)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))

		var req hfRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Options.UseGPU && !gpuAvailable {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"GPU not available"}`))
			return
		}

		labels := req.Parameters.CandidateLabels
		scores := make([]float64, len(labels))
		remaining := 1.0
		for i := range labels {
			if i == len(labels)-1 {
				scores[i] = remaining
				break
			}
			scores[i] = remaining / 2
			remaining -= scores[i]
		}

		_ = json.NewEncoder(w).Encode(hfResponse{
			Sequence: req.Inputs,
			Labels:   labels,
			Scores:   scores,
		})
	}))
}

func newTestHuggingFace(t *testing.T, url string) *HuggingFace {
	t.Helper()
	hf, err := NewHuggingFace(HuggingFaceConfig{
		Endpoint: url,
		Model:    DefaultModelName,
		Token:    "hf_test",
	})
	require.NoError(t, err)
	return hf
}

func TestHuggingFaceClassify(t *testing.T) {
	srv := zeroShotServer(t, true, nil)
	defer srv.Close()

	m, err := newTestHuggingFace(t, srv.URL).Open(context.Background(), DeviceGPU)
	require.NoError(t, err)
	assert.Equal(t, DeviceGPU, m.Device())
	assert.Equal(t, DefaultModelName, m.Name())

	labels := []string{"Greenwashing", "Genuine Sustainability", "Marketing Hype"}
	res, err := m.Classify(context.Background(), "Our product is eco-friendly.", labels, false)
	require.NoError(t, err)

	require.Len(t, res, 3)
	assert.ElementsMatch(t, labels, res.Labels())

	var sum float64
	for i, s := range res {
		sum += s.Score
		if i > 0 {
			assert.GreaterOrEqual(t, res[i-1].Score, s.Score)
		}
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestHuggingFaceOpenRejectsUnavailableDevice(t *testing.T) {
	var calls atomic.Int32
	srv := zeroShotServer(t, false, &calls)
	defer srv.Close()

	hf := newTestHuggingFace(t, srv.URL)

	_, err := hf.Open(context.Background(), DeviceGPU)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GPU not available")

	m, err := hf.Open(context.Background(), DeviceCPU)
	require.NoError(t, err)
	assert.Equal(t, DeviceCPU, m.Device())
	assert.EqualValues(t, 2, calls.Load())

	_, err = hf.Open(context.Background(), DeviceAuto)
	assert.Error(t, err)
}

func TestHuggingFaceRejectsIncompleteResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"sequence":"x","labels":["a"],"scores":[0.9]}`))
	}))
	defer srv.Close()

	m := &hfModel{backend: newTestHuggingFace(t, srv.URL), device: DeviceCPU}
	_, err := m.Classify(context.Background(), "x", []string{"a", "b"}, false)
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestHuggingFaceErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := &hfModel{backend: newTestHuggingFace(t, srv.URL), device: DeviceCPU}
	_, err := m.Classify(context.Background(), "x", []string{"a"}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestHuggingFaceRequiresLabels(t *testing.T) {
	m := &hfModel{backend: newTestHuggingFace(t, "http://unused"), device: DeviceCPU}
	_, err := m.Classify(context.Background(), "x", nil, false)
	assert.ErrorIs(t, err, ErrNoLabels)
}

func TestCheckResult(t *testing.T) {
	labels := []string{"a", "b", "c"}

	res, err := checkResult(Result{{Label: "b", Score: 0.2}, {Label: "a", Score: 0.5}, {Label: "c", Score: 0.2}}, labels)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, res.Labels(), "ties keep received order")

	_, err = checkResult(Result{{Label: "a", Score: 0.5}, {Label: "a", Score: 0.5}, {Label: "c", Score: 0}}, labels)
	assert.ErrorIs(t, err, ErrUnexpectedResponse)

	_, err = checkResult(Result{{Label: "a", Score: 1.5}, {Label: "b", Score: 0}, {Label: "c", Score: 0}}, labels)
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestParseDevice(t *testing.T) {
	d, err := ParseDevice("")
	require.NoError(t, err)
	assert.Equal(t, DeviceAuto, d)

	d, err = ParseDevice("gpu")
	require.NoError(t, err)
	assert.Equal(t, DeviceGPU, d)

	_, err = ParseDevice("tpu")
	assert.Error(t, err)

	// Hosted follows from the backend and cannot be requested.
	_, err = ParseDevice(string(DeviceHosted))
	assert.Error(t, err)
}
