// Package commands exposes translation maintenance as go-command messages so
// hosts can dispatch them through their command bus.
package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-translatable/internal/logging"
	"github.com/goliatone/go-translatable/pkg/interfaces"
)

// DefaultTimeout bounds a single command execution.
const DefaultTimeout = 30 * time.Second

// HandlerOption configures a Handler.
type HandlerOption[T command.Message] func(*Handler[T])

// Outcome describes a finished execution, passed to the observer.
type Outcome struct {
	Command   string
	Operation string
	Duration  time.Duration
	Err       error
}

// Handler wraps a command function with validation, a timeout, logging and
// error categorisation. It satisfies command.Commander[T].
type Handler[T command.Message] struct {
	exec      command.CommandFunc[T]
	logger    interfaces.Logger
	timeout   time.Duration
	operation string
	observe   func(ctx context.Context, msg T, outcome Outcome)
	now       func() time.Time
}

// NewHandler returns a handler around fn. It panics when fn is nil.
func NewHandler[T command.Message](fn command.CommandFunc[T], opts ...HandlerOption[T]) *Handler[T] {
	if fn == nil {
		panic("commands: handler function cannot be nil")
	}
	h := &Handler[T]{
		exec:    fn,
		logger:  logging.NoOp(),
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Execute validates msg, runs the wrapped function under the handler timeout
// and categorises the returned error.
func (h *Handler[T]) Execute(ctx context.Context, msg T) error {
	if err := command.ValidateMessage(msg); err != nil {
		return wrapValidationError(err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return wrapContextError(err)
	}

	outcome := Outcome{Command: command.GetMessageType(msg), Operation: h.operation}
	fields := map[string]any{"command": outcome.Command}
	if h.operation != "" {
		fields["operation"] = h.operation
	}
	logger := logging.WithFields(h.logger, fields)
	logger.Debug("command.execute.start")

	started := h.now()
	err := h.exec(ctx, msg)
	if err == nil {
		err = ctx.Err()
		if err != nil {
			err = wrapContextError(err)
		}
	} else {
		err = wrapExecuteError(err)
	}
	outcome.Duration = h.now().Sub(started)
	outcome.Err = err

	if err != nil {
		logger.Error("command.execute.failed", "error", err, "duration_ms", outcome.Duration.Milliseconds())
	} else {
		logger.Info("command.execute.success", "duration_ms", outcome.Duration.Milliseconds())
	}
	if h.observe != nil {
		h.observe(ctx, msg, outcome)
	}
	return err
}

// WithTimeout overrides DefaultTimeout. Zero or negative disables it.
func WithTimeout[T command.Message](timeout time.Duration) HandlerOption[T] {
	return func(h *Handler[T]) {
		if timeout < 0 {
			timeout = 0
		}
		h.timeout = timeout
	}
}

// WithLogger sets the execution logger.
func WithLogger[T command.Message](logger interfaces.Logger) HandlerOption[T] {
	return func(h *Handler[T]) {
		if logger == nil {
			logger = logging.NoOp()
		}
		h.logger = logger
	}
}

// WithOperation names the operation in every log entry.
func WithOperation[T command.Message](operation string) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.operation = operation
	}
}

// WithObserver registers a callback run after every execution that passed
// validation.
func WithObserver[T command.Message](fn func(ctx context.Context, msg T, outcome Outcome)) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.observe = fn
	}
}
