package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"LegalChat/internal/session"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// DefaultCSRFHeader is the header the anti-forgery token travels in
const DefaultCSRFHeader = "X-CSRFToken"

// TokenSource supplies the anti-forgery token for each request
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a token read once at startup
type StaticToken string

// Token returns the token itself
func (s StaticToken) Token() (string, error) {
	return string(s), nil
}

// FileToken re-reads the token from a file on every request, so the
// hosting process can rotate it.
type FileToken string

// Token reads the file and returns its trimmed contents
func (f FileToken) Token() (string, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Options configures a Client
type Options struct {
	Endpoint   string
	Tokens     TokenSource
	CSRFHeader string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
	Tracer     trace.Tracer
	Meter      metric.Meter
}

// Client talks to the knowledge base chat endpoint
type Client struct {
	endpoint   string
	tokens     TokenSource
	csrfHeader string
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
	duration   metric.Float64Histogram
}

// NewClient creates a new chat endpoint client
func NewClient(opts Options) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("endpoint cannot be empty")
	}

	c := &Client{
		endpoint:   opts.Endpoint,
		tokens:     opts.Tokens,
		csrfHeader: opts.CSRFHeader,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		tracer:     opts.Tracer,
	}
	if c.tokens == nil {
		c.tokens = StaticToken("")
	}
	if c.csrfHeader == "" {
		c.csrfHeader = DefaultCSRFHeader
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: opts.Timeout}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer("legalchat/backend")
	}

	meter := opts.Meter
	if meter == nil {
		meter = otel.Meter("legalchat/backend")
	}
	histogram, err := meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram: %w", err)
	}
	c.duration = histogram

	return c, nil
}

// Send posts the current message with the prior history and returns the
// reply text. Failures are *NetworkError, *ServiceError or *LogicalError.
func (c *Client) Send(ctx context.Context, message string, history []session.Message) (string, error) {
	ctx, span := c.tracer.Start(ctx, "chat_api_call")
	defer span.End()

	reply, err := c.send(ctx, message, history)
	span.SetAttributes(
		attribute.String("chat.outcome", Kind(err)),
		attribute.Int("chat.history_length", len(history)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, Kind(err))
	}
	return reply, err
}

func (c *Client) send(ctx context.Context, message string, history []session.Message) (string, error) {
	start := time.Now()

	if history == nil {
		history = []session.Message{}
	}
	jsonData, err := json.Marshal(ChatRequest{
		Message:     message,
		ChatHistory: history,
	})
	if err != nil {
		return "", &NetworkError{Op: "marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &NetworkError{Op: "create request", Err: err}
	}

	token, err := c.tokens.Token()
	if err != nil {
		return "", &NetworkError{Op: "read token", Err: err}
	}

	req.Header.Set("content-type", "application/json")
	req.Header.Set("accept", "application/json")
	if token != "" {
		req.Header.Set(c.csrfHeader, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &NetworkError{Op: "send request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Op: "read response", Err: err}
	}

	c.duration.Record(ctx, float64(time.Since(start).Milliseconds()),
		metric.WithAttributes(attribute.Int("http.status_code", resp.StatusCode)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ServiceError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var apiResp ChatResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", &LogicalError{Message: GenericFailure, Err: fmt.Errorf("failed to unmarshal response: %w", err)}
	}

	if !apiResp.Success {
		msg := apiResp.Error
		if msg == "" {
			msg = GenericFailure
		}
		return "", &LogicalError{Message: msg}
	}

	c.logger.Debug("chat reply received", "status", resp.StatusCode, "bytes", len(body))
	return apiResp.Response, nil
}
