// Package server exposes the cleaner and the predictor as a JSON API over
// fasthttp.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/baditaflorin/go_cyberbullying/internal/adapters/logger"
	"github.com/baditaflorin/go_cyberbullying/internal/adapters/models"
	"github.com/baditaflorin/go_cyberbullying/internal/adapters/normalizer"
	"github.com/baditaflorin/go_cyberbullying/internal/core/cleaning"
	"github.com/baditaflorin/go_cyberbullying/internal/core/domain"
	"github.com/baditaflorin/go_cyberbullying/internal/metrics"
	"github.com/baditaflorin/go_cyberbullying/internal/ports"
)

// Routes served by the handler.
const (
	PathHealth     = "/health"
	PathClean      = "/clean"
	PathCleanBatch = "/clean/batch"
	PathPredict    = "/predict"
	PathMetrics    = "/metrics"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

// Defaults applied to zero Config fields.
const (
	DefaultMaxBatchSize   = 10000
	DefaultRequestTimeout = 30 * time.Second
)

// Predictor classifies a phrase.
type Predictor interface {
	Predict(ctx context.Context, phrase string) (*domain.PredictionResult, error)
}

// Config wires the server to its collaborators.
type Config struct {
	// Cleaning holds the options used when a request sends none.
	Cleaning       cleaning.Options
	MaxBatchSize   int
	RequestTimeout time.Duration
	// Predictor is optional; without it /predict answers 503.
	Predictor Predictor
	Metrics   *metrics.Metrics
	// Gatherer backs /metrics, prometheus.DefaultGatherer when nil.
	Gatherer prometheus.Gatherer
	Logger   ports.Logger
}

// Server handles API requests.
type Server struct {
	registry       *normalizer.Registry
	defaults       cleaning.Options
	maxBatchSize   int
	requestTimeout time.Duration
	predictor      Predictor
	metrics        *metrics.Metrics
	metricsHandler fasthttp.RequestHandler
	logger         ports.Logger
	started        time.Time
}

// New creates a Server. The default cleaning pipeline is built eagerly so
// invalid options fail here instead of on the first request.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNopLogger()
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = DefaultMaxBatchSize
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	registry, err := normalizer.NewRegistry(cfg.Logger)
	if err != nil {
		return nil, err
	}
	if _, err := registry.Pipeline(cfg.Cleaning); err != nil {
		return nil, fmt.Errorf("default cleaning options: %w", err)
	}

	return &Server{
		registry:       registry,
		defaults:       cfg.Cleaning,
		maxBatchSize:   cfg.MaxBatchSize,
		requestTimeout: cfg.RequestTimeout,
		predictor:      cfg.Predictor,
		metrics:        cfg.Metrics,
		metricsHandler: fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})),
		logger:         cfg.Logger,
		started:        time.Now(),
	}, nil
}

// Registry returns the pipeline registry, shared with warm-up.
func (s *Server) Registry() *normalizer.Registry {
	return s.registry
}

// Handler is the fasthttp request handler.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()

	requestID := string(ctx.Request.Header.Peek(HeaderRequestID))
	if requestID == "" {
		requestID = uuid.NewString()
	}
	ctx.Response.Header.Set(HeaderRequestID, requestID)
	ctx.Response.Header.Set("Server", "CyberbullyingServer")

	path := string(ctx.Path())
	switch path {
	case PathHealth:
		if s.allow(ctx, fasthttp.MethodGet) {
			s.handleHealth(ctx)
		}
	case PathClean:
		if s.allow(ctx, fasthttp.MethodPost) {
			s.handleClean(ctx)
		}
	case PathCleanBatch:
		if s.allow(ctx, fasthttp.MethodPost) {
			s.handleCleanBatch(ctx)
		}
	case PathPredict:
		if s.allow(ctx, fasthttp.MethodPost) {
			s.handlePredict(ctx)
		}
	case PathMetrics:
		if s.allow(ctx, fasthttp.MethodGet) {
			s.metricsHandler(ctx)
		}
	default:
		path = "other"
		writeError(ctx, fasthttp.StatusNotFound, "Not found")
	}

	if s.metrics != nil {
		s.metrics.ObserveRequest(path, startTime)
	}
	s.logger.Info("Request processed",
		"request_id", requestID,
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"ip", ctx.RemoteIP().String(),
		"duration", time.Since(startTime),
	)
}

func (s *Server) allow(ctx *fasthttp.RequestCtx, method string) bool {
	if string(ctx.Method()) == method {
		return true
	}
	ctx.Response.Header.Set(fasthttp.HeaderAllow, method)
	writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
	return false
}

type healthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
	Uptime string `json:"uptime"`
}

func (s *Server) handleHealth(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, healthResponse{
		Status: "ok",
		Time:   time.Now().Format(time.RFC3339),
		Uptime: time.Since(s.started).Round(time.Second).String(),
	})
}

// CleanRequest is the body of /clean. Text may be any JSON value; null is
// cleaned as the string "None".
type CleanRequest struct {
	Text    json.RawMessage `json:"text"`
	Options json.RawMessage `json:"options,omitempty"`
}

// CleanResponse is the body returned by /clean.
type CleanResponse struct {
	Text string `json:"text"`
}

// BatchRequest is the body of /clean/batch.
type BatchRequest struct {
	Texts   []any           `json:"texts"`
	Options json.RawMessage `json:"options,omitempty"`
}

// BatchResponse is the body returned by /clean/batch. Empty results are
// replaced by the placeholder.
type BatchResponse struct {
	Texts []string `json:"texts"`
}

func (s *Server) handleClean(ctx *fasthttp.RequestCtx) {
	var req CleanRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if len(req.Text) == 0 {
		writeError(ctx, fasthttp.StatusBadRequest, "Field text is required")
		return
	}

	var text any
	if err := json.Unmarshal(req.Text, &text); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid text: "+err.Error())
		return
	}

	pipeline, err := s.pipeline(req.Options)
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid options: "+err.Error())
		return
	}

	cleaned := pipeline.Clean(text)
	if s.metrics != nil {
		s.metrics.Normalizations.Inc()
	}
	writeJSON(ctx, fasthttp.StatusOK, CleanResponse{Text: cleaned})
}

func (s *Server) handleCleanBatch(ctx *fasthttp.RequestCtx) {
	var req BatchRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if req.Texts == nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Field texts is required")
		return
	}
	if len(req.Texts) > s.maxBatchSize {
		writeError(ctx, fasthttp.StatusBadRequest,
			fmt.Sprintf("Batch of %d texts exceeds the limit of %d", len(req.Texts), s.maxBatchSize))
		return
	}

	pipeline, err := s.pipeline(req.Options)
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid options: "+err.Error())
		return
	}

	table, replaced, err := pipeline.CleanTableCount(req.Texts)
	if err != nil {
		s.logger.Error("Batch cleaning failed", "error", err)
		writeError(ctx, fasthttp.StatusInternalServerError, "Internal server error")
		return
	}

	texts := table.Texts()
	if s.metrics != nil {
		s.metrics.Normalizations.Add(float64(len(texts)))
		s.metrics.Placeholders.Add(float64(replaced))
	}
	writeJSON(ctx, fasthttp.StatusOK, BatchResponse{Texts: texts})
}

// PredictRequest is the body of /predict.
type PredictRequest struct {
	Text *string `json:"text"`
}

func (s *Server) handlePredict(ctx *fasthttp.RequestCtx) {
	if s.predictor == nil {
		writeError(ctx, fasthttp.StatusServiceUnavailable, "Predictor not configured")
		return
	}

	var req PredictRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if req.Text == nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Field text is required")
		return
	}

	c, cancel := context.WithTimeout(context.Background(), s.requestTimeout)
	defer cancel()

	result, err := s.predictor.Predict(c, *req.Text)
	if err != nil {
		status := predictStatus(err)
		s.logger.Error("Prediction failed", "error", err, "status", status)
		writeError(ctx, status, err.Error())
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, result)
}

// predictStatus maps prediction errors to HTTP statuses. Missing or broken
// artifacts, an unreachable sidecar and timeouts answer 503.
func predictStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrModelNotFound),
		errors.Is(err, domain.ErrModelKind),
		errors.Is(err, domain.ErrInvalidArtifact),
		errors.Is(err, models.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return fasthttp.StatusServiceUnavailable
	default:
		return fasthttp.StatusInternalServerError
	}
}

// pipeline returns the pipeline for the request options decoded over the
// server defaults.
func (s *Server) pipeline(raw json.RawMessage) (*cleaning.Pipeline, error) {
	options := s.defaults
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &options); err != nil {
			return nil, err
		}
	}
	return s.registry.Pipeline(options)
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response to the context.
func writeJSON(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, "Internal server error")
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

// writeError writes a JSON error response to the context.
func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, err := json.Marshal(ErrorResponse{Error: message})
	if err != nil {
		ctx.SetBodyString(`{"error":"Internal server error"}`)
		return
	}
	ctx.SetBody(body)
}
