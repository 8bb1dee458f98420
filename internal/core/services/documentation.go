package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driven"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driving"
	"github.com/custodia-labs/modeldoc/internal/logger"
)

// Ensure DocumentationController implements the interface.
var _ driving.DocumentationController = (*DocumentationController)(nil)

// DocumentationController documents undocumented entities one at a time.
//
// Entities that already carry a description are never touched, so repeated
// runs converge. Each entity's fetch, analyse and update finish before the
// next entity starts.
type DocumentationController struct {
	analyser driven.Analyser
}

// NewDocumentationController creates a new documentation controller.
func NewDocumentationController(analyser driven.Analyser) *DocumentationController {
	return &DocumentationController{analyser: analyser}
}

// Run lists the entities of container and documents the undocumented ones.
func (c *DocumentationController) Run(
	ctx context.Context,
	session driven.ModelSession,
	container string,
	opts driving.DocumentOptions,
) (*domain.DocumentationResult, error) {
	entities, err := session.ListEntities(ctx, container)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}

	result := &domain.DocumentationResult{}
	logger.Info("Listed %d entities in %s", len(entities), container)

	attempted := 0
	for i := range entities {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		entity := &entities[i]
		if entity.IsDocumented() {
			result.Skipped++
			continue
		}
		if opts.Limit > 0 && attempted >= opts.Limit {
			result.Pending++
			continue
		}

		documented, err := c.documentOne(ctx, session, container, entity.Ref, opts.DryRun)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Failed = append(result.Failed, toFailure(entity.Ref, err))
			if abortsPass(err) {
				return result, err
			}
			logger.Warn("Skipping %s: %v", entity.Ref, err)
			continue
		}
		attempted++

		if opts.DryRun {
			result.Pending++
			logger.Info("Dry run: would document %s as %q", entity.Ref, documented.Description)
			continue
		}

		result.Documented = append(result.Documented, *documented)
		if opts.OnProgress != nil {
			opts.OnProgress(driving.ProgressEvent{
				Phase:   domain.PhaseDocument,
				Entity:  documented,
				Message: "Documented: " + entity.Ref.Name,
			})
		}
	}

	logger.Info("Documentation pass: %d documented, %d failed, %d already documented",
		len(result.Documented), len(result.Failed), result.Skipped)
	return result, nil
}

// documentOne runs the fetch, analyse and update sequence for one entity.
func (c *DocumentationController) documentOne(
	ctx context.Context,
	session driven.ModelSession,
	container string,
	ref domain.EntityRef,
	dryRun bool,
) (*domain.DocumentedEntity, error) {
	detail, err := session.GetEntity(ctx, container, ref)
	if err != nil {
		return nil, &domain.EntityError{Ref: ref, Stage: domain.StageFetch, Err: err}
	}

	analysis, err := c.analyser.AnalyzeEntity(ctx, ref.Name, detail.Expression)
	if err != nil {
		return nil, &domain.EntityError{Ref: ref, Stage: domain.StageAnalyse, Err: err}
	}

	documented := &domain.DocumentedEntity{Ref: ref, Description: analysis.Description}
	if dryRun {
		return documented, nil
	}

	if err := session.UpdateEntity(ctx, container, ref, domain.DocumentationUpdate(analysis)); err != nil {
		return nil, &domain.EntityError{Ref: ref, Stage: domain.StageUpdate, Err: err}
	}
	return documented, nil
}

// abortsPass reports whether err affects every remaining entity: the
// session is gone or the reasoning service refuses all requests.
func abortsPass(err error) bool {
	return errors.Is(err, domain.ErrConnection) ||
		errors.Is(err, domain.ErrSessionClosed) ||
		errors.Is(err, domain.ErrLLMUnavailable)
}

func toFailure(ref domain.EntityRef, err error) domain.EntityFailure {
	failure := domain.EntityFailure{Ref: ref, Err: err}
	var ee *domain.EntityError
	if errors.As(err, &ee) {
		failure.Stage = ee.Stage
		failure.Err = ee.Err
	}
	return failure
}
