// Package executor is the HTTP client for the external workflow-execution service.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dukex/stateflow/pkg/models"
	"github.com/dukex/stateflow/pkg/otelhelper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// APIKeyHeader carries the credential expected by the execution service.
const APIKeyHeader = "x-api-key"

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 4 << 10
)

// Workflow is a workflow resource as stored by the execution service.
type Workflow struct {
	ID string `json:"id"`
	models.WorkflowDocument
}

// Client calls the workflow-execution service. Requests are never retried.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	tracer     trace.Tracer
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTracer sets the tracer used for per-call spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the service rooted at baseURL.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		tracer:     otelhelper.NoopTracer(),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.With("module", "executor")

	return c
}

// Fetch returns the workflow stored under id.
func (c *Client) Fetch(ctx context.Context, id string) (*Workflow, error) {
	var workflow Workflow

	err := c.do(ctx, "Fetch", http.MethodGet, "/workflows/"+url.PathEscape(id), nil, &workflow)
	if err != nil {
		return nil, err
	}

	return &workflow, nil
}

// FetchMap returns the step-name map of the workflow stored under id.
func (c *Client) FetchMap(ctx context.Context, id string) (*models.WorkflowMap, error) {
	var workflowMap models.WorkflowMap

	err := c.do(ctx, "FetchMap", http.MethodGet, "/workflows/"+url.PathEscape(id)+"/map", nil, &workflowMap)
	if err != nil {
		return nil, err
	}

	return &workflowMap, nil
}

// Submit creates a workflow from doc and returns the stored resource with its id.
func (c *Client) Submit(ctx context.Context, doc models.WorkflowDocument) (*Workflow, error) {
	var workflow Workflow

	err := c.do(ctx, "Submit", http.MethodPost, "/workflows", doc, &workflow)
	if err != nil {
		return nil, err
	}

	return &workflow, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "executor."+op,
		attribute.String(otelhelper.ExecutorOperationKey, op),
	)
	defer span.End()

	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			otelhelper.SetError(span, err)

			return &Error{Op: op, Err: fmt.Errorf("failed to encode request: %w", err)}
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		otelhelper.SetError(span, err)

		return &Error{Op: op, Err: fmt.Errorf("failed to create http request: %w", err)}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(APIKeyHeader, c.apiKey)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	otelhelper.InjectHeaders(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		otelhelper.SetError(span, err)

		return &Error{Op: op, Err: fmt.Errorf("http request failed: %w", err)}
	}

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			c.logger.ErrorContext(ctx, "failed to close response body", "error", err)
		}
	}()

	span.SetAttributes(attribute.Int(otelhelper.HTTPStatusKey, resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		callErr := statusError(op, resp.StatusCode, strings.TrimSpace(string(raw)))

		otelhelper.SetError(span, callErr)
		c.logger.WarnContext(ctx, "executor call failed", "op", op, "status", resp.StatusCode)

		return callErr
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		otelhelper.SetError(span, err)

		return &Error{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	c.logger.DebugContext(ctx, "executor call completed", "op", op, "status", resp.StatusCode)

	return nil
}
