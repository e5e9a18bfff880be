package cli

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalContext_InterruptRecordsSignal(t *testing.T) {
	sc := NewSignalContext(context.Background())
	defer sc.Cancel()

	sc.interrupt(syscall.SIGTERM)

	select {
	case <-sc.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled")
	}
	assert.Equal(t, syscall.SIGTERM, sc.Signal())

	var ie *InterruptedError
	require.True(t, errors.As(context.Cause(sc), &ie))
	assert.Equal(t, "interrupted by signal: terminated", ie.Error())
}

func TestSignalContext_CancelRecordsNoSignal(t *testing.T) {
	sc := NewSignalContext(context.Background())
	sc.Cancel()

	<-sc.Done()
	assert.Nil(t, sc.Signal())
	assert.ErrorIs(t, context.Cause(sc), context.Canceled)
}

func TestWithInterruption(t *testing.T) {
	base := errors.New("context canceled")

	assert.NoError(t, withInterruption(context.Background(), nil))
	assert.Same(t, base, withInterruption(context.Background(), base))

	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(&InterruptedError{Signal: syscall.SIGINT})

	err := withInterruption(ctx, base)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "interrupted by signal: interrupt: context canceled", err.Error())
}
