package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driving"
)

func completedRun() *domain.RunRecord {
	started := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	return &domain.RunRecord{
		ID:          "run-1",
		StartedAt:   started,
		FinishedAt:  started.Add(time.Minute),
		ModelPath:   "/models/sales",
		Status:      domain.RunStatusSucceeded,
		Documented:  1,
		Skipped:     2,
		SnapshotDir: "backups/20250314_092653",
		CommitID:    "0123456789abcdef",
		Entities: []domain.RunEntity{{
			Ref:     domain.EntityRef{Table: "Sales", Name: "Order Count"},
			Outcome: domain.OutcomeDocumented,
			Detail:  "Number of sales orders.",
		}},
	}
}

func TestServer_handleRun(t *testing.T) {
	ctx := context.Background()

	t.Run("returns run summary", func(t *testing.T) {
		pipeline := &mockPipeline{run: completedRun()}
		server, err := NewServer(&Ports{Pipeline: pipeline})
		require.NoError(t, err)

		_, out, err := server.handleRun(ctx, nil, DocumentInput{DryRun: true, Limit: 5})
		require.NoError(t, err)

		assert.Equal(t, "run", pipeline.lastMethod)
		assert.Equal(t, driving.DocumentOptions{Limit: 5, DryRun: true}, pipeline.runOpts[0].Document)
		assert.Equal(t, "run-1", out.ID)
		assert.Equal(t, "succeeded", out.Status)
		assert.Equal(t, "2025-03-14T09:26:53Z", out.StartedAt)
		assert.Equal(t, "0123456789abcdef", out.CommitID)
		require.Len(t, out.Entities, 1)
		assert.Equal(t, EntityOutput{
			Table: "Sales", Name: "Order Count", Outcome: "documented", Detail: "Number of sales orders.",
		}, out.Entities[0])
	})

	t.Run("negative limit means no limit", func(t *testing.T) {
		pipeline := &mockPipeline{run: completedRun()}
		server, err := NewServer(&Ports{Pipeline: pipeline})
		require.NoError(t, err)

		_, _, err = server.handleRun(ctx, nil, DocumentInput{Limit: -3})
		require.NoError(t, err)
		assert.Zero(t, pipeline.runOpts[0].Document.Limit)
	})

	t.Run("returns pipeline error", func(t *testing.T) {
		pipeline := &mockPipeline{
			run: &domain.RunRecord{ID: "run-2", Status: domain.RunStatusFailed},
			err: &domain.PhaseError{Phase: domain.PhaseConnect, Target: "/models/sales", Err: domain.ErrConnection},
		}
		server, err := NewServer(&Ports{Pipeline: pipeline})
		require.NoError(t, err)

		_, _, err = server.handleRun(ctx, nil, DocumentInput{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connect phase failed")
	})
}

func TestServer_handleDocument(t *testing.T) {
	pipeline := &mockPipeline{run: completedRun()}
	server, err := NewServer(&Ports{Pipeline: pipeline})
	require.NoError(t, err)

	_, out, err := server.handleDocument(context.Background(), nil, DocumentInput{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, "document", pipeline.lastMethod)
	assert.Equal(t, 1, pipeline.runOpts[0].Document.Limit)
	assert.Equal(t, 1, out.Documented)
}

func TestServer_handleAudit(t *testing.T) {
	pipeline := &mockPipeline{run: &domain.RunRecord{ID: "run-3", Status: domain.RunStatusNoChanges}}
	server, err := NewServer(&Ports{Pipeline: pipeline})
	require.NoError(t, err)

	_, out, err := server.handleAudit(context.Background(), nil, AuditInput{
		Prior: "HEAD~1", Current: "HEAD", NoCommit: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "audit", pipeline.lastMethod)
	assert.Equal(t, "HEAD~1", pipeline.auditOpts[0].Prior)
	assert.Equal(t, "HEAD", pipeline.auditOpts[0].Current)
	assert.True(t, pipeline.auditOpts[0].NoCommit)
	assert.Equal(t, "no_changes", out.Status)
	assert.Empty(t, out.FinishedAt)
}

func TestServer_CallToolOverSession(t *testing.T) {
	pipeline := &mockPipeline{run: completedRun()}
	server, err := NewServer(&Ports{Pipeline: pipeline})
	require.NoError(t, err)
	cs := connectClient(t, server)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "document_model",
		Arguments: map[string]any{"limit": 2},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, 2, pipeline.runOpts[0].Document.Limit)

	pipeline.err = errors.New("model server unreachable")
	res, err = cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "run_pipeline",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
