package driven

import (
	"context"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
)

// VersionControl is the version-control layer holding the definition tree.
type VersionControl interface {
	// Diff returns the change set for path between prior and current.
	// An empty current means the working tree.
	Diff(ctx context.Context, prior, current, path string) (*domain.ChangeSet, error)

	// StageAll stages every changed path in the working tree.
	StageAll(ctx context.Context) error

	// Commit records the staged changes with message and returns the commit id.
	// Fails with domain.ErrCommit when nothing is staged or the commit is rejected.
	Commit(ctx context.Context, message string) (string, error)
}
