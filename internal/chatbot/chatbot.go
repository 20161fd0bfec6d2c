package chatbot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"LegalChat/internal/backend"
	"LegalChat/internal/session"
	"LegalChat/internal/telemetry"
	"LegalChat/internal/transcript"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Fixed texts shown by the controller
const (
	WelcomeMessage  = "Hello! I am a legal assistant with knowledge of the Law Reform (Marriage and Divorce) Act 1976. How can I help you?"
	ClearedMessage  = "Chat cleared. How can I assist you further?"
	FallbackMessage = "I apologize, but I'm having trouble connecting to the legal knowledge base. Please try again later."
)

var (
	// ErrEmptyInput is returned when the input is blank
	ErrEmptyInput = errors.New("empty input")
	// ErrBusy is returned while another exchange is awaiting its response
	ErrBusy = errors.New("an exchange is already awaiting a response")
)

// State of the controller
type State int

const (
	StateIdle State = iota
	StateAwaitingResponse
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingResponse:
		return "awaiting_response"
	default:
		return "unknown"
	}
}

// Transport sends a message with its prior history and returns the reply
type Transport interface {
	Send(ctx context.Context, message string, history []session.Message) (string, error)
}

// Input is the host's text field
type Input interface {
	// Reset clears the text and its auto-grow sizing
	Reset()
}

// Journal records finished exchanges
type Journal interface {
	Record(ctx context.Context, e telemetry.Entry) error
	Recent(ctx context.Context, limit int) ([]telemetry.Entry, error)
}

type nopInput struct{}

func (nopInput) Reset() {}

// Options wires a ChatBot to its collaborators
type Options struct {
	Transport Transport
	Container transcript.Container
	Renderer  *transcript.Renderer
	Input     Input
	Journal   Journal // optional
	Logger    *slog.Logger
	Tracer    trace.Tracer
	Meter     metric.Meter
}

// Exchange is one request in flight
type Exchange struct {
	Message string
	History []session.Message

	ctx         context.Context
	cancel      context.CancelFunc
	placeholder transcript.Handle
	epoch       uint64
	started     time.Time
	span        trace.Span
}

// Context is cancelled when the conversation is cleared mid-flight
func (e *Exchange) Context() context.Context {
	return e.ctx
}

// ChatBot is the session controller. It owns the History and is the only
// writer of the transcript container.
type ChatBot struct {
	transport Transport
	container transcript.Container
	renderer  *transcript.Renderer
	input     Input
	journal   Journal
	logger    *slog.Logger
	tracer    trace.Tracer

	exchanges metric.Int64Counter
	latency   metric.Float64Histogram

	mu      sync.Mutex
	session *session.Session
	state   State
	pending *Exchange
	epoch   uint64
}

// New creates a controller with a fresh session
func New(opts Options) (*ChatBot, error) {
	if opts.Transport == nil {
		return nil, errors.New("transport cannot be nil")
	}
	if opts.Container == nil {
		return nil, errors.New("container cannot be nil")
	}

	cb := &ChatBot{
		transport: opts.Transport,
		container: opts.Container,
		renderer:  opts.Renderer,
		input:     opts.Input,
		journal:   opts.Journal,
		logger:    opts.Logger,
		tracer:    opts.Tracer,
		session:   session.New(),
	}
	if cb.renderer == nil {
		cb.renderer = &transcript.Renderer{}
	}
	if cb.input == nil {
		cb.input = nopInput{}
	}
	if cb.logger == nil {
		cb.logger = slog.Default()
	}
	if cb.tracer == nil {
		cb.tracer = otel.Tracer("legalchat/chatbot")
	}

	meter := opts.Meter
	if meter == nil {
		meter = otel.Meter("legalchat/chatbot")
	}
	var err error
	cb.exchanges, err = meter.Int64Counter(
		"chat.exchanges",
		metric.WithDescription("Completed chat exchanges by outcome"),
	)
	if err != nil {
		return nil, err
	}
	cb.latency, err = meter.Float64Histogram(
		"chat.exchange.duration",
		metric.WithDescription("Time from send to completion in milliseconds"),
	)
	if err != nil {
		return nil, err
	}

	cb.logger.Info("created new session", "session_id", cb.session.ID)
	return cb, nil
}

// Greet renders the welcome message. It is not part of the history.
func (cb *ChatBot) Greet() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.renderer.Render(cb.container, session.RoleSystem, WelcomeMessage, false)
}

// Begin starts an exchange: the user turn is recorded and shown, a loading
// placeholder is shown and the outgoing payload is captured. The caller
// must hand the transport result to Complete.
func (cb *ChatBot) Begin(ctx context.Context, raw string) (*Exchange, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, ErrEmptyInput
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateAwaitingResponse {
		cb.logger.Debug("send ignored while awaiting response", "session_id", cb.session.ID)
		return nil, ErrBusy
	}

	cb.session.History.Append(session.Message{Role: session.RoleUser, Text: text})
	cb.renderer.Render(cb.container, session.RoleUser, text, false)
	placeholder := cb.renderer.Render(cb.container, session.RoleSystem, "", true)
	cb.input.Reset()

	ctx, cancel := context.WithCancel(ctx)
	ctx, span := cb.tracer.Start(ctx, "chat_exchange",
		trace.WithAttributes(attribute.String("session.id", cb.session.ID)))

	ex := &Exchange{
		Message:     text,
		History:     cb.session.History.Snapshot(true),
		ctx:         ctx,
		cancel:      cancel,
		placeholder: placeholder,
		epoch:       cb.epoch,
		started:     time.Now(),
		span:        span,
	}
	cb.pending = ex
	cb.state = StateAwaitingResponse

	cb.logger.Info("exchange started", "session_id", cb.session.ID, "history_length", len(ex.History))
	return ex, nil
}

// Complete finishes an exchange with the transport result. Completions of
// exchanges that were cleared in the meantime are dropped.
func (cb *ChatBot) Complete(ex *Exchange, reply string, err error) {
	defer ex.cancel()
	defer ex.span.End()

	cb.mu.Lock()
	if ex.epoch != cb.epoch || cb.pending != ex {
		cb.mu.Unlock()
		cb.logger.Info("dropping completion of cleared exchange", "kind", backend.Kind(err))
		ex.span.SetStatus(codes.Error, "cleared")
		return
	}

	ex.placeholder.Remove()
	if err == nil {
		cb.renderer.Render(cb.container, session.RoleSystem, reply, false)
		cb.session.History.Append(session.Message{Role: session.RoleSystem, Text: reply})
	} else {
		cb.renderer.Render(cb.container, session.RoleSystem, FallbackMessage, false)
	}
	cb.pending = nil
	cb.state = StateIdle
	sessionID := cb.session.ID
	cb.mu.Unlock()

	elapsed := time.Since(ex.started)
	outcome := backend.Kind(err)

	if err != nil {
		attrs := append([]any{"session_id", sessionID}, backend.LogAttrs(err)...)
		cb.logger.Error("exchange failed", attrs...)
		ex.span.RecordError(err)
		ex.span.SetStatus(codes.Error, outcome)
	} else {
		cb.logger.Info("exchange completed", "session_id", sessionID, "duration_ms", elapsed.Milliseconds())
	}

	ctx := context.WithoutCancel(ex.ctx)
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	cb.exchanges.Add(ctx, 1, attrs)
	cb.latency.Record(ctx, float64(elapsed.Milliseconds()), attrs)

	cb.record(ctx, telemetry.Entry{
		SessionID:  sessionID,
		StartedAt:  ex.started,
		Duration:   elapsed,
		Outcome:    outcome,
		StatusCode: backend.StatusCode(err),
		Detail:     errorDetail(err),
	})
}

// Send runs a whole exchange and blocks until it completes. Only the guard
// errors ErrEmptyInput and ErrBusy are returned; transport failures are
// rendered as the fallback message.
func (cb *ChatBot) Send(ctx context.Context, raw string) error {
	ex, err := cb.Begin(ctx, raw)
	if err != nil {
		return err
	}
	reply, err := cb.Dispatch(ex)
	cb.Complete(ex, reply, err)
	return nil
}

// Dispatch performs the transport call of an exchange and blocks until it
// returns. Event-loop hosts run it off the loop and feed the result to
// Complete.
func (cb *ChatBot) Dispatch(ex *Exchange) (string, error) {
	return cb.transport.Send(ex.ctx, ex.Message, ex.History)
}

// Clear empties the transcript and the history and shows the cleared
// greeting. An exchange still in flight is cancelled and its completion
// ignored.
func (cb *ChatBot) Clear() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.pending != nil {
		cb.pending.cancel()
		cb.pending = nil
		cb.logger.Info("cancelled pending exchange", "session_id", cb.session.ID)
	}
	cb.epoch++
	cb.state = StateIdle

	cb.renderer.Clear(cb.container)
	cb.session.History.Reset()
	cb.renderer.Render(cb.container, session.RoleSystem, ClearedMessage, false)

	cb.logger.Info("conversation cleared", "session_id", cb.session.ID)
}

// State returns the current controller state
func (cb *ChatBot) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// History returns a copy of the conversation history
func (cb *ChatBot) History() []session.Message {
	return cb.session.History.Snapshot(false)
}

// SessionID returns the current session ID
func (cb *ChatBot) SessionID() string {
	return cb.session.ID
}

func (cb *ChatBot) record(ctx context.Context, e telemetry.Entry) {
	if cb.journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := cb.journal.Record(ctx, e); err != nil {
		cb.logger.Warn("failed to record exchange", "error", err)
	}
}

func errorDetail(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
