package testutils

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aretw0/regtrain/pkg/domain"
	"github.com/stretchr/testify/require"
)

// WriteDataset writes content to a CSV file in a fresh temp dir and returns its path.
// It fails the test immediately on error.
func WriteDataset(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data", "dataset.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755), "Failed to create data dir")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644), "Failed to write dataset")

	return path
}

// Env returns a lookup function over a fixed map, for mail configuration tests.
func Env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

// RecordingMailer is a ports.Mailer that keeps every message instead of sending it.
type RecordingMailer struct {
	mu       sync.Mutex
	Messages []domain.Message
	Err      error
}

// Send records msg and returns Err.
func (m *RecordingMailer) Send(ctx context.Context, msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, msg)
	return m.Err
}

// Sent returns a copy of the recorded messages.
func (m *RecordingMailer) Sent() []domain.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Message(nil), m.Messages...)
}
