package mcp

import (
	"context"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driving"
)

// mockPipeline is a mock implementation of driving.Pipeline.
type mockPipeline struct {
	run        *domain.RunRecord
	err        error
	runOpts    []driving.RunOptions
	auditOpts  []driving.AuditOptions
	lastMethod string
}

func (m *mockPipeline) Run(_ context.Context, opts driving.RunOptions) (*domain.RunRecord, error) {
	m.lastMethod = "run"
	m.runOpts = append(m.runOpts, opts)
	return m.run, m.err
}

func (m *mockPipeline) Document(_ context.Context, opts driving.RunOptions) (*domain.RunRecord, error) {
	m.lastMethod = "document"
	m.runOpts = append(m.runOpts, opts)
	return m.run, m.err
}

func (m *mockPipeline) Audit(_ context.Context, opts driving.AuditOptions) (*domain.RunRecord, error) {
	m.lastMethod = "audit"
	m.auditOpts = append(m.auditOpts, opts)
	return m.run, m.err
}

// mockHistory is a mock implementation of driving.HistoryService.
type mockHistory struct {
	runs  []domain.RunRecord
	err   error
	limit int
}

func (m *mockHistory) Recent(_ context.Context, limit int) ([]domain.RunRecord, error) {
	m.limit = limit
	return m.runs, m.err
}

func (m *mockHistory) Get(_ context.Context, id string) (*domain.RunRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.runs {
		if m.runs[i].ID == id {
			return &m.runs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}
