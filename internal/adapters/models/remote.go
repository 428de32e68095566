package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/baditaflorin/go_cyberbullying/internal/core/domain"
)

// ErrUnavailable indicates the remote model service is unreachable or unhealthy.
var ErrUnavailable = errors.New("remote model service unavailable")

// DefaultRemoteTimeout bounds a remote call when the context has no deadline.
const DefaultRemoteTimeout = 5 * time.Second

// Remote endpoint paths.
const (
	PathPredictPhrase = "/predict_phrase"
	PathPredict       = "/predict"
	PathHealth        = "/health"
)

// textRequest is the request body of both endpoints.
type textRequest struct {
	Text string `json:"text"`
}

// labelsResponse is the response body of PathPredict.
type labelsResponse struct {
	Labels []string `json:"labels"`
}

// remoteClient posts JSON to a model sidecar.
type remoteClient struct {
	baseURL string
	timeout time.Duration
	client  *fasthttp.Client
}

func newRemoteClient(baseURL string, timeout time.Duration) (*remoteClient, error) {
	if baseURL == "" {
		return nil, errors.New("remote model needs a url")
	}
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	return &remoteClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client: &fasthttp.Client{
			Name:                "go_cyberbullying",
			MaxIdleConnDuration: 30 * time.Second,
		},
	}, nil
}

// deadline picks the earlier of the context deadline and the client timeout.
func (c *remoteClient) deadline(ctx context.Context) time.Time {
	d := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}
	return d
}

// post sends body to path and decodes the JSON response into out.
func (c *remoteClient) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	if err := c.client.DoDeadline(req, resp, c.deadline(ctx)); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("%w: %s returned %d", ErrUnavailable, path, resp.StatusCode())
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// health calls GET PathHealth.
func (c *remoteClient) health(ctx context.Context) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + PathHealth)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := c.client.DoDeadline(req, resp, c.deadline(ctx)); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("%w: unhealthy status %d", ErrUnavailable, resp.StatusCode())
	}
	return nil
}

// RemoteBinary is a binary predictor served by a model sidecar.
type RemoteBinary struct {
	client *remoteClient
}

// NewRemoteBinary creates a remote binary predictor.
func NewRemoteBinary(baseURL string, timeout time.Duration) (*RemoteBinary, error) {
	c, err := newRemoteClient(baseURL, timeout)
	if err != nil {
		return nil, err
	}
	return &RemoteBinary{client: c}, nil
}

// PredictPhrase posts the phrase to the sidecar.
func (m *RemoteBinary) PredictPhrase(ctx context.Context, text string) (*domain.PredictionResult, error) {
	var result domain.PredictionResult
	if err := m.client.post(ctx, PathPredictPhrase, textRequest{Text: text}, &result); err != nil {
		return nil, fmt.Errorf("predict phrase: %w", err)
	}
	return &result, nil
}

// Health checks if the sidecar is healthy.
func (m *RemoteBinary) Health(ctx context.Context) error {
	return m.client.health(ctx)
}

// RemoteClassifier is a type classifier served by a model sidecar.
type RemoteClassifier struct {
	client *remoteClient
}

// NewRemoteClassifier creates a remote type classifier.
func NewRemoteClassifier(baseURL string, timeout time.Duration) (*RemoteClassifier, error) {
	c, err := newRemoteClient(baseURL, timeout)
	if err != nil {
		return nil, err
	}
	return &RemoteClassifier{client: c}, nil
}

// Predict posts the phrase to the sidecar and returns its ordered labels.
func (m *RemoteClassifier) Predict(ctx context.Context, text string) ([]string, error) {
	var resp labelsResponse
	if err := m.client.post(ctx, PathPredict, textRequest{Text: text}, &resp); err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	return resp.Labels, nil
}

// Health checks if the sidecar is healthy.
func (m *RemoteClassifier) Health(ctx context.Context) error {
	return m.client.health(ctx)
}
