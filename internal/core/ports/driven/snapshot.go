package driven

import (
	"context"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
)

// SnapshotWriter materialises backup snapshots.
type SnapshotWriter interface {
	// Write creates a new snapshot directory named after snapshot.ID, copies
	// the definition tree at sourceDir into it and writes the changelog.
	// Existing snapshots are never overwritten. It fills in snapshot.Dir and
	// snapshot.ChangelogPath. Failures wrap domain.ErrIO.
	Write(ctx context.Context, snapshot *domain.BackupSnapshot, sourceDir string) error
}
