package session

import (
	"context"
	"errors"

	domain "jobapply/internal/domain/jobform"
)

// ErrNotFound is returned for unknown or expired tokens.
var ErrNotFound = errors.New("application session not found")

// Store keeps one Draft per browser session.
// Calls on the same token are serialized so a draft never sees two events at once.
type Store interface {
	Create(ctx context.Context, d *domain.Draft) (string, error)
	With(ctx context.Context, token string, fn func(*domain.Draft) error) error
	Delete(ctx context.Context, token string)
}
