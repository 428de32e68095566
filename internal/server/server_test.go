package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/baditaflorin/go_cyberbullying/internal/adapters/models"
	"github.com/baditaflorin/go_cyberbullying/internal/core/cleaning"
	"github.com/baditaflorin/go_cyberbullying/internal/core/domain"
	"github.com/baditaflorin/go_cyberbullying/internal/metrics"
)

type stubPredictor struct {
	result *domain.PredictionResult
	err    error
	phrase string
}

func (s *stubPredictor) Predict(_ context.Context, phrase string) (*domain.PredictionResult, error) {
	s.phrase = phrase
	return s.result, s.err
}

func newTestServer(t *testing.T, predictor Predictor) (*Server, *metrics.Metrics) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	s, err := New(Config{
		Cleaning:     cleaning.DefaultOptions(),
		MaxBatchSize: 3,
		Predictor:    predictor,
		Metrics:      m,
		Gatherer:     reg,
	})
	require.NoError(t, err)
	return s, m
}

func do(s *Server, method, path, body string, headers ...string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(path)
	if body != "" {
		req.SetBodyString(body)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	s.Handler(ctx)
	return ctx
}

func decode(t *testing.T, ctx *fasthttp.RequestCtx) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &out), string(ctx.Response.Body()))
	return out
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)

	ctx := do(s, fasthttp.MethodGet, PathHealth, "")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "ok", decode(t, ctx)["status"])
	assert.NotEmpty(t, ctx.Response.Header.Peek(HeaderRequestID))
}

func TestRequestIDIsEchoed(t *testing.T) {
	s, _ := newTestServer(t, nil)

	ctx := do(s, fasthttp.MethodGet, PathHealth, "", HeaderRequestID, "req-42")
	assert.Equal(t, "req-42", string(ctx.Response.Header.Peek(HeaderRequestID)))
}

func TestRouting(t *testing.T) {
	s, _ := newTestServer(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{name: "unknown path", method: fasthttp.MethodGet, path: "/nope", status: fasthttp.StatusNotFound},
		{name: "get clean", method: fasthttp.MethodGet, path: PathClean, status: fasthttp.StatusMethodNotAllowed},
		{name: "post health", method: fasthttp.MethodPost, path: PathHealth, status: fasthttp.StatusMethodNotAllowed},
		{name: "predict without predictor", method: fasthttp.MethodPost, path: PathPredict, status: fasthttp.StatusServiceUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := do(s, tc.method, tc.path, "{}")
			assert.Equal(t, tc.status, ctx.Response.StatusCode())
			assert.NotEmpty(t, decode(t, ctx)["error"])
		})
	}
}

func TestClean(t *testing.T) {
	s, m := newTestServer(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{name: "default options", body: `{"text":"RT @user1 I HATE you!!! 123"}`, status: fasthttp.StatusOK, want: "user hate"},
		{name: "null text", body: `{"text":null}`, status: fasthttp.StatusOK, want: "none"},
		{name: "number", body: `{"text":42}`, status: fasthttp.StatusOK, want: ""},
		{
			name:   "options override defaults",
			body:   `{"text":"Hey YOU","options":{"lower_text":false,"remove_stopwords":false}}`,
			status: fasthttp.StatusOK,
			want:   "Hey YOU",
		},
		{name: "missing text", body: `{}`, status: fasthttp.StatusBadRequest},
		{name: "malformed body", body: `{"text":`, status: fasthttp.StatusBadRequest},
		{name: "unsupported language", body: `{"text":"hi","options":{"language":"klingon"}}`, status: fasthttp.StatusBadRequest},
		{
			name:   "unsupported language without stopwords",
			body:   `{"text":"hi","options":{"remove_stopwords":false,"language":"lang-1"}}`,
			status: fasthttp.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := do(s, fasthttp.MethodPost, PathClean, tc.body)
			require.Equal(t, tc.status, ctx.Response.StatusCode(), string(ctx.Response.Body()))
			if tc.status == fasthttp.StatusOK {
				assert.Equal(t, tc.want, decode(t, ctx)["text"])
			}
		})
	}

	assert.Equal(t, 4.0, testutil.ToFloat64(m.Normalizations))
	assert.Equal(t, 2, s.Registry().Len())
}

func TestCleanBatch(t *testing.T) {
	s, m := newTestServer(t, nil)

	ctx := do(s, fasthttp.MethodPost, PathCleanBatch, `{"texts":["You LOSER!!", null, "the"]}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp BatchResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, []string{"loser", "none", cleaning.Placeholder}, resp.Texts)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Normalizations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Placeholders))

	ctx = do(s, fasthttp.MethodPost, PathCleanBatch, `{"texts":["a","b","c","d"]}`)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = do(s, fasthttp.MethodPost, PathCleanBatch, `{}`)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestPredict(t *testing.T) {
	result := &domain.PredictionResult{Prediction: 1, Extra: map[string]interface{}{"probability": 0.8}}
	result.SetType(domain.TypeAggression)
	predictor := &stubPredictor{result: result}
	s, _ := newTestServer(t, predictor)

	ctx := do(s, fasthttp.MethodPost, PathPredict, `{"text":"you idiot"}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "you idiot", predictor.phrase)

	body := decode(t, ctx)
	assert.Equal(t, 1.0, body["prediction"])
	assert.Equal(t, domain.TypeAggression, body["type"])
	assert.Equal(t, 0.8, body["probability"])

	ctx = do(s, fasthttp.MethodPost, PathPredict, `{}`)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestPredictErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "missing model", err: fmt.Errorf("load: %w", domain.ErrModelNotFound), status: fasthttp.StatusServiceUnavailable},
		{name: "bad artifact", err: domain.ErrInvalidArtifact, status: fasthttp.StatusServiceUnavailable},
		{name: "sidecar down", err: fmt.Errorf("%w: dial", models.ErrUnavailable), status: fasthttp.StatusServiceUnavailable},
		{name: "timeout", err: context.DeadlineExceeded, status: fasthttp.StatusServiceUnavailable},
		{name: "bad prediction", err: domain.ErrInvalidPrediction, status: fasthttp.StatusInternalServerError},
		{name: "other", err: errors.New("boom"), status: fasthttp.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, _ := newTestServer(t, &stubPredictor{err: tc.err})
			ctx := do(s, fasthttp.MethodPost, PathPredict, `{"text":"x"}`)
			assert.Equal(t, tc.status, ctx.Response.StatusCode())
			assert.Contains(t, decode(t, ctx)["error"], tc.err.Error())
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, nil)

	do(s, fasthttp.MethodPost, PathClean, `{"text":"hello"}`)
	ctx := do(s, fasthttp.MethodGet, PathMetrics, "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.True(t, strings.Contains(string(ctx.Response.Body()), "cb_normalizations_total 1"))
	assert.Contains(t, string(ctx.Response.Body()), `cb_request_duration_seconds_count{path="/clean"} 1`)
}

func TestNewRejectsInvalidDefaults(t *testing.T) {
	options := cleaning.DefaultOptions()
	options.Language = "klingon"
	_, err := New(Config{Cleaning: options, RequestTimeout: time.Second})
	assert.ErrorIs(t, err, domain.ErrUnsupportedLanguage)
}
