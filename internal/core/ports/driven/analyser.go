package driven

import (
	"context"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
)

// Analyser turns content into structured, validated analyses using the
// reasoning service. A reply that does not match the expected structure
// fails with domain.ErrAnalysisParse; it is never defaulted.
type Analyser interface {
	// AnalyzeEntity documents one entity from its name and expression.
	AnalyzeEntity(ctx context.Context, name, expression string) (*domain.EntityAnalysis, error)

	// AnalyzeChange summarises a change set and derives a commit message.
	AnalyzeChange(ctx context.Context, changes *domain.ChangeSet) (*domain.ChangeAnalysis, error)
}
