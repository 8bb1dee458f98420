package main

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/modeldoc/internal/adapters/driven/ai"
	"github.com/custodia-labs/modeldoc/internal/adapters/driven/modelserver"
	"github.com/custodia-labs/modeldoc/internal/adapters/driven/storage/backup"
	"github.com/custodia-labs/modeldoc/internal/adapters/driven/vcs/git"
	"github.com/custodia-labs/modeldoc/internal/core/domain"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driven"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driving"
	"github.com/custodia-labs/modeldoc/internal/core/services"
)

// lazyPipeline builds the pipeline on first use, so commands that never run
// it (settings, history, version) work without a model or credentials.
type lazyPipeline struct {
	settings driving.SettingsService
	prompts  driven.PromptStore
	runs     driven.RunStore

	once     sync.Once
	pipeline driving.Pipeline
	llm      driven.LLMService
	err      error
}

var _ driving.Pipeline = (*lazyPipeline)(nil)

func newLazyPipeline(settings driving.SettingsService, prompts driven.PromptStore, runs driven.RunStore) *lazyPipeline {
	return &lazyPipeline{settings: settings, prompts: prompts, runs: runs}
}

func (l *lazyPipeline) Run(ctx context.Context, opts driving.RunOptions) (*domain.RunRecord, error) {
	p, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, opts)
}

func (l *lazyPipeline) Document(ctx context.Context, opts driving.RunOptions) (*domain.RunRecord, error) {
	p, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return p.Document(ctx, opts)
}

func (l *lazyPipeline) Audit(ctx context.Context, opts driving.AuditOptions) (*domain.RunRecord, error) {
	p, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return p.Audit(ctx, opts)
}

// Close releases the reasoning service if one was created.
func (l *lazyPipeline) Close() {
	if l.llm != nil {
		_ = l.llm.Close()
	}
}

func (l *lazyPipeline) get(ctx context.Context) (driving.Pipeline, error) {
	l.once.Do(func() {
		l.pipeline, l.err = l.build(ctx)
	})
	return l.pipeline, l.err
}

func (l *lazyPipeline) build(ctx context.Context) (driving.Pipeline, error) {
	cfg, err := l.settings.RunConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	llm, err := ai.CreateAndValidateLLMService(ctx, &cfg.LLM)
	if err != nil {
		return nil, err
	}
	l.llm = llm

	retry := services.RetryPolicy{MaxAttempts: cfg.MaxAttempts}
	analyser, err := services.NewAnalyser(llm, l.prompts, services.AnalyserConfig{
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
		Retry:             retry,
	})
	if err != nil {
		return nil, err
	}

	// A relative backup root lives inside the repository, so the commit picks it up.
	backupRoot := cfg.BackupRoot
	if !filepath.IsAbs(backupRoot) {
		backupRoot = filepath.Join(cfg.Git.Repo, backupRoot)
	}

	vcs := git.New(cfg.Git.Repo, git.DefaultTimeout)
	server := modelserver.NewClient(modelserver.CommandTransport(cfg.Model.ServerCommand, cfg.Model.ServerArgs...))

	return services.NewPipeline(cfg, services.PipelineDeps{
		Server:     server,
		Documenter: services.NewDocumentationController(analyser),
		Auditor:    services.NewChangeAuditor(vcs, analyser, backup.NewOsWriter(backupRoot)),
		Committer:  services.NewCommitOrchestrator(vcs),
		Runs:       l.runs,
		Retry:      &retry,
	})
}
