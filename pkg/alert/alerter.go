package alert

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/regtrain/pkg/adapters/smtp"
	"github.com/aretw0/regtrain/pkg/domain"
	"github.com/aretw0/regtrain/pkg/metrics"
	"github.com/aretw0/regtrain/pkg/ports"
	"github.com/pkg/errors"
)

// DefaultSubject is used for failure notifications.
const DefaultSubject = "DevOps-MLOps Lab FAILED: training error"

// SkippedMessage is printed when the mail settings are incomplete.
const SkippedMessage = "Email not sent: EMAIL_USER/EMAIL_PASS/EMAIL_TO not set in .env"

// MailerFactory builds the transport for a complete Config.
type MailerFactory func(cfg Config) (ports.Mailer, error)

// SMTPMailer is the default MailerFactory.
func SMTPMailer(cfg Config) (ports.Mailer, error) {
	c, err := smtp.NewClient(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Alerter delivers failure notifications.
type Alerter struct {
	envFiles  []string
	lookup    LookupFunc
	newMailer MailerFactory
	out       io.Writer
	logger    *slog.Logger
	metrics   *metrics.Recorder
}

// Option configures an Alerter.
type Option func(*Alerter)

// WithEnvFiles replaces the dotenv files merged before each notification.
func WithEnvFiles(files ...string) Option {
	return func(a *Alerter) {
		a.envFiles = files
	}
}

// WithLookup reads settings from lookup instead of the process environment.
func WithLookup(lookup LookupFunc) Option {
	return func(a *Alerter) {
		a.lookup = lookup
	}
}

// WithMailerFactory injects the transport (tests use a recording fake).
func WithMailerFactory(f MailerFactory) Option {
	return func(a *Alerter) {
		a.newMailer = f
	}
}

// WithOutput sets where the skip diagnostic is printed (default stdout).
func WithOutput(w io.Writer) Option {
	return func(a *Alerter) {
		a.out = w
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Alerter) {
		a.logger = logger
	}
}

// WithMetrics records alert outcomes.
func WithMetrics(m *metrics.Recorder) Option {
	return func(a *Alerter) {
		a.metrics = m
	}
}

// New creates an Alerter that reads .env and the process environment and sends over SMTP.
func New(opts ...Option) *Alerter {
	a := &Alerter{
		envFiles:  []string{DefaultEnvFile},
		lookup:    os.LookupEnv,
		newMailer: SMTPMailer,
		out:       os.Stdout,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	return a
}

// Notify sends one message with subject and body to the configured recipient.
// Incomplete settings are not an error: a diagnostic is printed and nil is returned.
func (a *Alerter) Notify(ctx context.Context, subject, body string) error {
	if err := LoadEnvFiles(a.envFiles...); err != nil {
		a.metrics.ObserveAlert(metrics.AlertFailed)
		return err
	}

	cfg, err := ConfigFromEnv(a.lookup)
	if err != nil {
		a.metrics.ObserveAlert(metrics.AlertFailed)
		return err
	}

	if !cfg.Complete() {
		fmt.Fprintln(a.out, SkippedMessage)
		a.logger.Warn("failure notification skipped", "reason", "incomplete mail configuration")
		a.metrics.ObserveAlert(metrics.AlertSkipped)
		return nil
	}

	mailer, err := a.newMailer(cfg)
	if err != nil {
		a.metrics.ObserveAlert(metrics.AlertFailed)
		return errors.Wrap(err, "failed to create mailer")
	}

	msg := domain.Message{
		From:    cfg.User,
		To:      []string{cfg.To},
		Subject: subject,
		Body:    body,
	}
	if err := mailer.Send(ctx, msg); err != nil {
		a.metrics.ObserveAlert(metrics.AlertFailed)
		return errors.Wrapf(err, "failed to send notification via %s:%d", cfg.Host, cfg.Port)
	}

	a.logger.Info("failure notification sent", "to", cfg.To, "host", cfg.Host)
	a.metrics.ObserveAlert(metrics.AlertSent)
	return nil
}
