package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driven"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driving"
	"github.com/custodia-labs/modeldoc/internal/logger"
)

// Ensure the audit services implement the interfaces.
var (
	_ driving.ChangeAuditor      = (*ChangeAuditor)(nil)
	_ driving.CommitOrchestrator = (*CommitOrchestrator)(nil)
)

// ChangeAuditor turns the diff of the definition tree into a backup snapshot.
type ChangeAuditor struct {
	vcs      driven.VersionControl
	analyser driven.Analyser
	writer   driven.SnapshotWriter
	now      func() time.Time
}

// NewChangeAuditor creates a new change auditor.
func NewChangeAuditor(vcs driven.VersionControl, analyser driven.Analyser, writer driven.SnapshotWriter) *ChangeAuditor {
	return &ChangeAuditor{
		vcs:      vcs,
		analyser: analyser,
		writer:   writer,
		now:      time.Now,
	}
}

// Run diffs definitionPath between prior and current and, when anything
// changed, backs up the definition tree with an analysed changelog.
// An empty diff returns a nil snapshot without touching the filesystem.
func (a *ChangeAuditor) Run(ctx context.Context, prior, current, definitionPath string) (*domain.BackupSnapshot, error) {
	changes, err := a.vcs.Diff(ctx, prior, current, definitionPath)
	if err != nil {
		return nil, fmt.Errorf("diff %s: %w", revRange(prior, current), err)
	}
	if changes.IsEmpty() {
		logger.Info("No changes to document in %s", revRange(prior, current))
		return nil, nil
	}
	logger.Info("Diff %s touches %d files", revRange(prior, current), len(changes.Files))

	analysis, err := a.analyser.AnalyzeChange(ctx, changes)
	if err != nil {
		return nil, fmt.Errorf("analyse changes: %w", err)
	}

	createdAt := a.now()
	snapshot := &domain.BackupSnapshot{
		ID:            domain.SnapshotID(createdAt),
		CreatedAt:     createdAt,
		CommitMessage: analysis.CommitMessage,
		Analysis:      *analysis,
		ChangeSet:     *changes,
	}
	if err := a.writer.Write(ctx, snapshot, definitionPath); err != nil {
		return nil, fmt.Errorf("write snapshot %s: %w", snapshot.ID, err)
	}

	logger.Info("Backup created: %s", snapshot.Dir)
	return snapshot, nil
}

func revRange(prior, current string) string {
	if current == "" {
		current = "working tree"
	}
	return prior + ".." + current
}

// CommitOrchestrator commits snapshots to version control.
// A rejected commit is reported, never retried: the message describes a
// state that may no longer hold.
type CommitOrchestrator struct {
	vcs driven.VersionControl
}

// NewCommitOrchestrator creates a new commit orchestrator.
func NewCommitOrchestrator(vcs driven.VersionControl) *CommitOrchestrator {
	return &CommitOrchestrator{vcs: vcs}
}

// Commit stages everything and commits with the snapshot's message verbatim.
func (c *CommitOrchestrator) Commit(ctx context.Context, snapshot *domain.BackupSnapshot) (string, error) {
	if snapshot == nil {
		return "", nil
	}
	if strings.TrimSpace(snapshot.CommitMessage) == "" {
		return "", fmt.Errorf("%w: snapshot %s has no commit message", domain.ErrCommit, snapshot.ID)
	}

	if err := c.vcs.StageAll(ctx); err != nil {
		return "", commitError("stage", err)
	}
	id, err := c.vcs.Commit(ctx, snapshot.CommitMessage)
	if err != nil {
		return "", commitError("commit", err)
	}

	logger.Info("Committed snapshot %s as %s", snapshot.ID, id)
	return id, nil
}

func commitError(op string, err error) error {
	if errors.Is(err, domain.ErrCommit) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrCommit, err)
}
