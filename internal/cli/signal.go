package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	pkgerrors "github.com/pkg/errors"
)

// InterruptedError is the cancellation cause of a SignalContext stopped by a signal.
type InterruptedError struct {
	Signal os.Signal
}

func (e *InterruptedError) Error() string {
	return "interrupted by signal: " + e.Signal.String()
}

// SignalContext is cancelled on SIGINT or SIGTERM with an *InterruptedError as its cause.
type SignalContext struct {
	context.Context
	cancel context.CancelCauseFunc
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancelCause(parent)
	sc := &SignalContext{Context: ctx, cancel: cancel}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			sc.interrupt(sig)
		case <-ctx.Done():
		}
	}()

	return sc
}

func (sc *SignalContext) interrupt(sig os.Signal) {
	sc.cancel(&InterruptedError{Signal: sig})
}

// Cancel releases the context without recording a signal.
func (sc *SignalContext) Cancel() {
	sc.cancel(nil)
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	return interruptedBy(sc.Context)
}

func interruptedBy(ctx context.Context) os.Signal {
	var ie *InterruptedError
	if errors.As(context.Cause(ctx), &ie) {
		return ie.Signal
	}
	return nil
}

// withInterruption names the signal in err when one stopped ctx.
func withInterruption(ctx context.Context, err error) error {
	if err == nil || interruptedBy(ctx) == nil {
		return err
	}
	return pkgerrors.WithMessage(err, context.Cause(ctx).Error())
}
