package driving

import (
	"context"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driven"
)

// DocumentationController documents the undocumented entities of a model.
type DocumentationController interface {
	// Run lists the entities of container and documents each one without a
	// description. Per-entity failures are recorded in the result and do not
	// fail the run; only a failed listing or a cancelled context does.
	Run(ctx context.Context, session driven.ModelSession, container string, opts DocumentOptions) (*domain.DocumentationResult, error)
}

// DocumentOptions tunes a documentation pass.
type DocumentOptions struct {
	// Limit caps how many entities are documented. Zero means no limit.
	Limit int

	// DryRun analyses entities but writes nothing back.
	DryRun bool

	// OnProgress is called once per successfully documented entity.
	OnProgress ProgressFunc
}

// ProgressFunc receives progress notifications.
type ProgressFunc func(event ProgressEvent)

// ProgressEvent describes one step of a run.
type ProgressEvent struct {
	// Phase is the pipeline phase the event belongs to.
	Phase domain.Phase

	// Entity is set for per-entity events.
	Entity *domain.DocumentedEntity

	// Message is a short human-readable summary.
	Message string
}
