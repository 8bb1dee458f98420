package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driven"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// defaultHistoryLimit is used when no positive limit is given.
const defaultHistoryLimit = 20

// HistoryService reads the run audit trail.
type HistoryService struct {
	runs driven.RunStore
}

// NewHistoryService creates a new history service.
func NewHistoryService(runs driven.RunStore) *HistoryService {
	return &HistoryService{runs: runs}
}

// Recent returns the latest runs, newest first.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	runs, err := s.runs.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Get returns one run with its per-entity lines.
func (s *HistoryService) Get(ctx context.Context, id string) (*domain.RunRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: run id is required", domain.ErrInvalidInput)
	}
	return s.runs.Get(ctx, id)
}
