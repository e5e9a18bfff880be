// Package middleware decorates tracking stores.
package middleware

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/aretw0/regtrain/pkg/domain"
	"github.com/aretw0/regtrain/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

// DefaultSensitiveKeys matches param names whose values are never stored.
var DefaultSensitiveKeys = []string{`(?i)pass(word)?`, `(?i)secret`, `(?i)token`}

type redactMiddleware struct {
	ports.TrackingStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks run params before they are stored.
// Values of keys matching a pattern become Mask; URL values lose their password.
func NewRedactMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.TrackingStore) ports.TrackingStore {
		return &redactMiddleware{TrackingStore: next, patterns: patterns}
	}
}

func (m *redactMiddleware) CreateRun(ctx context.Context, run *domain.Run) error {
	// The trainer keeps using its own run, so mask a copy.
	cloned := *run
	cloned.Params = make(map[string]string, len(run.Params))
	for k, v := range run.Params {
		cloned.Params[k] = m.redact(k, v)
	}
	return m.TrackingStore.CreateRun(ctx, &cloned)
}

func (m *redactMiddleware) LogParam(ctx context.Context, runID, key, value string) error {
	return m.TrackingStore.LogParam(ctx, runID, key, m.redact(key, value))
}

func (m *redactMiddleware) redact(key, value string) string {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return Mask
		}
	}
	return redactURL(value)
}

func redactURL(value string) string {
	if !strings.Contains(value, "://") {
		return value
	}
	u, err := url.Parse(value)
	if err != nil || u.User == nil {
		return value
	}
	if _, ok := u.User.Password(); !ok {
		return value
	}
	u.User = url.UserPassword(u.User.Username(), Mask)
	return u.String()
}
