package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driven"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driving"
	"github.com/custodia-labs/modeldoc/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.Pipeline = (*Pipeline)(nil)

// Pipeline runs one synchronisation: document, export, audit, commit.
//
// The session is opened at the start of a run and closed when it ends,
// whatever the outcome. The version-control working tree is only touched by
// the commit, after the backup has been fully written.
type Pipeline struct {
	cfg        domain.RunConfig
	server     driven.ModelServer
	documenter driving.DocumentationController
	auditor    driving.ChangeAuditor
	committer  driving.CommitOrchestrator
	runs       driven.RunStore
	retry      RetryPolicy
	now        func() time.Time
}

// PipelineDeps bundles the collaborators of a pipeline.
type PipelineDeps struct {
	Server     driven.ModelServer
	Documenter driving.DocumentationController
	Auditor    driving.ChangeAuditor
	Committer  driving.CommitOrchestrator

	// Runs is optional; without it runs are not recorded.
	Runs driven.RunStore

	// Retry bounds connection retries. Defaults to cfg.MaxAttempts tries.
	Retry *RetryPolicy
}

// NewPipeline creates a new pipeline for cfg.
func NewPipeline(cfg domain.RunConfig, deps PipelineDeps) (*Pipeline, error) {
	if deps.Server == nil || deps.Documenter == nil || deps.Auditor == nil || deps.Committer == nil {
		return nil, fmt.Errorf("%w: pipeline requires a model server, documenter, auditor and committer",
			domain.ErrInvalidInput)
	}

	retry := RetryPolicy{MaxAttempts: cfg.MaxAttempts}
	if deps.Retry != nil {
		retry = *deps.Retry
	}

	return &Pipeline{
		cfg:        cfg,
		server:     deps.Server,
		documenter: deps.Documenter,
		auditor:    deps.Auditor,
		committer:  deps.Committer,
		runs:       deps.Runs,
		retry:      retry,
		now:        time.Now,
	}, nil
}

// Run executes the full pipeline.
func (p *Pipeline) Run(ctx context.Context, opts driving.RunOptions) (*domain.RunRecord, error) {
	record := p.newRecord()

	err := p.document(ctx, record, opts)
	if err == nil && !opts.Document.DryRun {
		err = p.audit(ctx, record, p.cfg.Git.PriorRef, p.cfg.Git.CurrentRef, false, opts.OnProgress)
	}
	return p.finish(ctx, record, err)
}

// Document connects, documents and exports without auditing.
func (p *Pipeline) Document(ctx context.Context, opts driving.RunOptions) (*domain.RunRecord, error) {
	record := p.newRecord()
	err := p.document(ctx, record, opts)
	if err == nil && record.Documented == 0 {
		record.Status = domain.RunStatusNoChanges
	}
	return p.finish(ctx, record, err)
}

// Audit diffs, backs up and commits without touching the model server.
func (p *Pipeline) Audit(ctx context.Context, opts driving.AuditOptions) (*domain.RunRecord, error) {
	record := p.newRecord()

	prior, current := p.cfg.Git.PriorRef, p.cfg.Git.CurrentRef
	if opts.Prior != "" {
		prior = opts.Prior
	}
	if opts.Current != "" {
		current = opts.Current
	}

	err := p.audit(ctx, record, prior, current, opts.NoCommit, opts.OnProgress)
	return p.finish(ctx, record, err)
}

// document runs the connect, document and export phases on one session.
func (p *Pipeline) document(ctx context.Context, record *domain.RunRecord, opts driving.RunOptions) error {
	logger.Section("Connect")
	session, err := retryTransient(ctx, p.retry, "connect", func() (driven.ModelSession, error) {
		return p.server.Connect(ctx, p.cfg.Model.Path)
	})
	if err != nil {
		return &domain.PhaseError{Phase: domain.PhaseConnect, Target: p.cfg.Model.Path, Err: err}
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			logger.Warn("Closing model session: %v", cerr)
		}
	}()
	notify(opts.OnProgress, domain.PhaseConnect, "Connected to "+p.cfg.Model.Path)

	logger.Section("Document")
	docOpts := opts.Document
	if docOpts.OnProgress == nil {
		docOpts.OnProgress = opts.OnProgress
	}
	result, err := p.documenter.Run(ctx, session, p.cfg.Model.Connection, docOpts)
	record.RecordDocumentation(result)
	if err != nil {
		return &domain.PhaseError{Phase: domain.PhaseDocument, Target: p.cfg.Model.Connection, Err: err}
	}

	if docOpts.DryRun {
		notify(opts.OnProgress, domain.PhaseExport, "Dry run: model not exported")
		return nil
	}

	logger.Section("Export")
	if err := session.ExportModel(ctx, p.cfg.Model.DefinitionPath); err != nil {
		return &domain.PhaseError{Phase: domain.PhaseExport, Target: p.cfg.Model.DefinitionPath, Err: err}
	}
	notify(opts.OnProgress, domain.PhaseExport, "Exported model to "+p.cfg.Model.DefinitionPath)
	return nil
}

// audit runs the audit phase and, when it produced a snapshot, the commit phase.
func (p *Pipeline) audit(
	ctx context.Context,
	record *domain.RunRecord,
	prior, current string,
	noCommit bool,
	progress driving.ProgressFunc,
) error {
	logger.Section("Audit")
	snapshot, err := p.auditor.Run(ctx, prior, current, p.cfg.Model.DefinitionPath)
	if err != nil {
		return &domain.PhaseError{Phase: domain.PhaseAudit, Target: p.cfg.Model.DefinitionPath, Err: err}
	}
	if snapshot == nil {
		record.Status = domain.RunStatusNoChanges
		notify(progress, domain.PhaseAudit, "No changes to document")
		return nil
	}
	record.SnapshotDir = snapshot.Dir
	notify(progress, domain.PhaseAudit, "Backup created: "+snapshot.Dir)
	notify(progress, domain.PhaseAudit, "Changelog: "+snapshot.ChangelogPath)

	if noCommit {
		return nil
	}

	logger.Section("Commit")
	id, err := p.committer.Commit(ctx, snapshot)
	if err != nil {
		return &domain.PhaseError{Phase: domain.PhaseCommit, Target: p.cfg.Git.Repo, Err: err}
	}
	record.CommitID = id
	notify(progress, domain.PhaseCommit, "Committed "+shortID(id)+": "+firstLine(snapshot.CommitMessage))
	return nil
}

func (p *Pipeline) newRecord() *domain.RunRecord {
	return &domain.RunRecord{
		ID:        uuid.NewString(),
		StartedAt: p.now(),
		ModelPath: p.cfg.Model.Path,
		Status:    domain.RunStatusSucceeded,
	}
}

// finish stamps the record, stores it and returns the run error.
// Failing to store the record is logged but never fails the run.
func (p *Pipeline) finish(ctx context.Context, record *domain.RunRecord, runErr error) (*domain.RunRecord, error) {
	record.FinishedAt = p.now()
	if runErr != nil {
		record.Status = domain.RunStatusFailed
		record.Error = runErr.Error()
		if phase, ok := domain.FailedPhase(runErr); ok {
			record.Phase = phase
		}
	}

	if p.runs != nil {
		// Store even when the run context was cancelled.
		storeCtx := context.WithoutCancel(ctx)
		if err := p.runs.Save(storeCtx, record); err != nil {
			logger.Warn("Recording run %s: %v", record.ID, err)
		}
	}

	if runErr != nil && errors.Is(runErr, context.Canceled) {
		logger.Warn("Run %s cancelled", record.ID)
	}
	return record, runErr
}

func notify(fn driving.ProgressFunc, phase domain.Phase, msg string) {
	if fn != nil {
		fn(driving.ProgressEvent{Phase: phase, Message: msg})
	}
}

func shortID(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
