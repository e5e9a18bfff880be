package ports

import (
	"context"

	"github.com/aretw0/regtrain/pkg/domain"
)

// Mailer delivers one message per call.
type Mailer interface {
	Send(ctx context.Context, msg domain.Message) error
}
