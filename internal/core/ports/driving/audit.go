package driving

import (
	"context"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
)

// ChangeAuditor turns the diff of the definition tree into a backup snapshot.
type ChangeAuditor interface {
	// Run diffs definitionPath between prior and current. An empty diff
	// returns a nil snapshot and touches nothing. Otherwise it analyses the
	// change and materialises a timestamped backup with its changelog.
	Run(ctx context.Context, prior, current, definitionPath string) (*domain.BackupSnapshot, error)
}

// CommitOrchestrator commits backup snapshots to version control.
type CommitOrchestrator interface {
	// Commit stages everything and commits with the snapshot's message.
	// A nil snapshot is a no-op and returns an empty id.
	Commit(ctx context.Context, snapshot *domain.BackupSnapshot) (string, error)
}
