package driven

import (
	"context"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
)

// ModelServer establishes sessions with the remote model store.
type ModelServer interface {
	// Connect opens exactly one session to the model at modelPath.
	// Fails with domain.ErrConnection if the server cannot be reached or
	// the path does not resolve to a valid model.
	Connect(ctx context.Context, modelPath string) (ModelSession, error)
}

// ModelSession is a live, stateful connection to the model store.
//
// The remote store is single-threaded per session. Implementations
// serialise calls internally, so callers need no locking of their own.
// A session is owned by the run that created it and must be closed
// when the run ends.
type ModelSession interface {
	// ListEntities returns the entities of a container. Identity and
	// description are populated; detail fields may be partial.
	ListEntities(ctx context.Context, container string) ([]domain.Entity, error)

	// GetEntity returns the full entity, including its expression.
	// Fails with domain.ErrNotFound if the entity no longer exists.
	GetEntity(ctx context.Context, container string, ref domain.EntityRef) (*domain.Entity, error)

	// UpdateEntity writes only the supplied fields.
	// Fails with domain.ErrUpdate if the server rejects the write.
	UpdateEntity(ctx context.Context, container string, ref domain.EntityRef, update domain.EntityUpdate) error

	// ExportModel serialises the live model to its on-disk form,
	// overwriting targetPath.
	ExportModel(ctx context.Context, targetPath string) error

	// Close releases the session.
	Close() error
}
