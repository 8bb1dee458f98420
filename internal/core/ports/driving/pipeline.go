package driving

import (
	"context"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
)

// Pipeline runs documentation, export, audit and commit in order.
type Pipeline interface {
	// Run executes one full synchronisation. The returned record is never nil,
	// even on failure, so callers can report how far the run got.
	Run(ctx context.Context, opts RunOptions) (*domain.RunRecord, error)

	// Document connects, documents and exports without auditing.
	Document(ctx context.Context, opts RunOptions) (*domain.RunRecord, error)

	// Audit diffs, backs up and commits without touching the model server.
	Audit(ctx context.Context, opts AuditOptions) (*domain.RunRecord, error)
}

// RunOptions tunes a pipeline run.
type RunOptions struct {
	// Document configures the documentation phase.
	Document DocumentOptions

	// OnProgress receives phase-level progress.
	OnProgress ProgressFunc
}

// AuditOptions tunes an audit-only run.
type AuditOptions struct {
	// Prior overrides the configured prior ref when set.
	Prior string

	// Current overrides the configured current ref when set.
	Current string

	// NoCommit materialises the backup but skips the commit.
	NoCommit bool

	// OnProgress receives phase-level progress.
	OnProgress ProgressFunc
}

// HistoryService reads the audit trail of past runs.
type HistoryService interface {
	// Recent returns the latest runs, newest first.
	Recent(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// Get returns one run with its per-entity lines.
	Get(ctx context.Context, id string) (*domain.RunRecord, error)
}
