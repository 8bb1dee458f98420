package driven

import (
	"context"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
)

// RunStore persists the audit trail of pipeline runs.
type RunStore interface {
	// Save stores a run record, including its per-entity lines.
	Save(ctx context.Context, run *domain.RunRecord) error

	// Get retrieves a run by ID.
	// Returns domain.ErrNotFound if the run does not exist.
	Get(ctx context.Context, id string) (*domain.RunRecord, error)

	// List returns the most recent runs, newest first.
	// A limit of zero or less returns every run.
	List(ctx context.Context, limit int) ([]domain.RunRecord, error)
}
