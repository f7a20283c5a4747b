package projections

import (
	"context"

	"jobapply/internal/domain/jobform"
)

// DraftReader interface for application queries.
type DraftReader interface {
	With(ctx context.Context, token string, fn func(*jobform.Draft) error) error
}
