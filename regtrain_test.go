package regtrain_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/regtrain"
	"github.com/aretw0/regtrain/internal/logging"
	"github.com/aretw0/regtrain/internal/testutils"
	"github.com/aretw0/regtrain/pkg/adapters/file"
	"github.com/aretw0/regtrain/pkg/adapters/memory"
	"github.com/aretw0/regtrain/pkg/alert"
	"github.com/aretw0/regtrain/pkg/domain"
	"github.com/aretw0/regtrain/pkg/ports"
	"github.com/aretw0/regtrain/pkg/trainer"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	subject string
	body    string
	calls   int
	err     error
}

func (n *recordingNotifier) Notify(ctx context.Context, subject, body string) error {
	n.calls++
	n.subject = subject
	n.body = body
	return n.err
}

type panickingTrainer struct{}

func (panickingTrainer) Train(ctx context.Context) (*trainer.Result, error) {
	panic("boom")
}

func TestRun_Success(t *testing.T) {
	path := testutils.WriteDataset(t, "feature,label\n1,2\n2,4\n3,6\n")
	tr := trainer.New(trainer.Config{DatasetPath: path}, memory.NewStore(), file.New(t.TempDir()))
	notifier := &recordingNotifier{}
	var out bytes.Buffer

	res, err := regtrain.Run(context.Background(), tr, regtrain.WithNotifier(notifier), regtrain.WithOutput(&out))
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Contains(t, out.String(), "Training completed successfully")
	assert.Contains(t, out.String(), "MSE: ")
	assert.Zero(t, notifier.calls, "success must not notify")
}

func TestRun_MissingFileNotifiesAndReturnsError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "data", "dataset.csv")
	tr := trainer.New(trainer.Config{DatasetPath: missing}, memory.NewStore(), file.New(t.TempDir()))
	notifier := &recordingNotifier{}
	var out bytes.Buffer

	res, err := regtrain.Run(context.Background(), tr, regtrain.WithNotifier(notifier), regtrain.WithOutput(&out))
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, os.ErrNotExist), "original I/O error must be returned, got %v", err)

	assert.True(t, strings.HasPrefix(out.String(), "ERROR: Training failed\n"))
	assert.Contains(t, out.String(), "dataset.csv")

	require.Equal(t, 1, notifier.calls)
	assert.Equal(t, alert.DefaultSubject, notifier.subject)
	assert.True(t, strings.HasPrefix(notifier.body, "Training failed.\n\nError:\n"))
	assert.Contains(t, notifier.body, "dataset.csv")
}

func TestRun_AlertFailureIsShielded(t *testing.T) {
	path := testutils.WriteDataset(t, "X,Y\n1,2\n")
	tr := trainer.New(trainer.Config{DatasetPath: path}, memory.NewStore(), file.New(t.TempDir()))
	notifier := &recordingNotifier{err: errors.New("relay refused")}

	_, err := regtrain.Run(context.Background(), tr,
		regtrain.WithNotifier(notifier),
		regtrain.WithOutput(&bytes.Buffer{}),
		regtrain.WithLogger(logging.NewNop()),
	)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "training error must survive alert failure, got %v", err)
	assert.NotContains(t, err.Error(), "relay refused")
	assert.Equal(t, 1, notifier.calls)
}

func TestRun_IncompleteMailConfigSkipsDelivery(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.csv")
	tr := trainer.New(trainer.Config{DatasetPath: missing}, memory.NewStore(), file.New(t.TempDir()))
	mailer := &testutils.RecordingMailer{}
	var diag bytes.Buffer

	a := alert.New(
		alert.WithLookup(testutils.Env(map[string]string{})),
		alert.WithEnvFiles(),
		alert.WithMailerFactory(func(alert.Config) (ports.Mailer, error) { return mailer, nil }),
		alert.WithOutput(&diag),
	)

	_, err := regtrain.Run(context.Background(), tr, regtrain.WithNotifier(a), regtrain.WithOutput(&bytes.Buffer{}))
	require.Error(t, err)
	assert.Empty(t, mailer.Sent())
	assert.Contains(t, diag.String(), alert.SkippedMessage)
}

func TestRun_PanicBecomesError(t *testing.T) {
	notifier := &recordingNotifier{}

	_, err := regtrain.Run(context.Background(), panickingTrainer{},
		regtrain.WithNotifier(notifier),
		regtrain.WithOutput(&bytes.Buffer{}),
		regtrain.WithSubject("custom"),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, "custom", notifier.subject)
}

func TestTrace_AddsStackToPlainErrors(t *testing.T) {
	trace := regtrain.Trace(fmt.Errorf("plain"))
	assert.Contains(t, trace, "plain")
	assert.Contains(t, trace, "regtrain_test.TestTrace_AddsStackToPlainErrors")
}
