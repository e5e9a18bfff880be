package regtrain

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	_ "embed"

	"github.com/aretw0/regtrain/pkg/alert"
	"github.com/aretw0/regtrain/pkg/trainer"
	"github.com/pkg/errors"
)

// Version is the release of this module.
//
//go:embed VERSION
var Version string

// notifyTimeout bounds the alert so a hung relay can't hold the failing process open.
const notifyTimeout = 30 * time.Second

// Trainer is the training step guarded by Run.
type Trainer interface {
	Train(ctx context.Context) (*trainer.Result, error)
}

// TrainerFunc adapts a function to the Trainer interface.
type TrainerFunc func(ctx context.Context) (*trainer.Result, error)

// Train calls f(ctx).
func (f TrainerFunc) Train(ctx context.Context) (*trainer.Result, error) {
	return f(ctx)
}

// Notifier receives the failure report. *alert.Alerter implements it.
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

type guard struct {
	notifier Notifier
	subject  string
	out      io.Writer
	logger   *slog.Logger
}

// Option configures Run.
type Option func(*guard)

// WithNotifier sets who is told about failures. Without one, failures are only printed.
func WithNotifier(n Notifier) Option {
	return func(g *guard) {
		g.notifier = n
	}
}

// WithSubject overrides the notification subject.
func WithSubject(subject string) Option {
	return func(g *guard) {
		g.subject = subject
	}
}

// WithOutput sets where results and failure traces are printed (default stdout).
func WithOutput(w io.Writer) Option {
	return func(g *guard) {
		g.out = w
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *guard) {
		g.logger = logger
	}
}

// Run trains once. On failure it prints the trace, notifies, and returns the
// training error unchanged. Panics inside the trainer are converted to errors.
func Run(ctx context.Context, t Trainer, opts ...Option) (*trainer.Result, error) {
	g := &guard{
		subject: alert.DefaultSubject,
		out:     os.Stdout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}

	res, err := train(ctx, t)
	if err == nil {
		fmt.Fprintln(g.out, "Training completed successfully")
		fmt.Fprintln(g.out, "MSE:", res.MSE)
		return res, nil
	}

	trace := Trace(err)
	fmt.Fprintf(g.out, "ERROR: Training failed\n %s\n", trace)

	if g.notifier != nil {
		// The alert must go out even if ctx was canceled, which is often why training failed.
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()

		body := "Training failed.\n\nError:\n" + trace
		if alertErr := g.notifier.Notify(nctx, g.subject, body); alertErr != nil {
			g.logger.Error("failure notification failed", "error", alertErr)
		}
	}

	return nil, err
}

func train(ctx context.Context, t Trainer) (res *trainer.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = errors.Errorf("panic during training: %v", r)
		}
	}()
	return t.Train(ctx)
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Trace renders err with its stack trace. Errors that carry no stack get the
// caller's stack so the report always says where it surfaced.
func Trace(err error) string {
	var st stackTracer
	if !stderrors.As(err, &st) {
		err = errors.WithStack(err)
	}
	return fmt.Sprintf("%+v", err)
}
