package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driving"
)

// DocumentInput is the input schema for the run and document tools.
type DocumentInput struct {
	DryRun bool `json:"dry_run,omitempty" jsonschema:"analyse measures without writing documentation back"`
	Limit  int  `json:"limit,omitempty" jsonschema:"maximum number of measures to document (0 for all)"`
}

// AuditInput is the input schema for the audit tool.
type AuditInput struct {
	Prior    string `json:"prior,omitempty" jsonschema:"older revision of the diff (default: configured prior ref)"`
	Current  string `json:"current,omitempty" jsonschema:"newer revision of the diff (default: working tree)"`
	NoCommit bool   `json:"no_commit,omitempty" jsonschema:"write the backup but do not commit"`
}

// RunOutput summarises a pipeline run.
type RunOutput struct {
	ID          string         `json:"id"`
	Status      string         `json:"status"`
	Phase       string         `json:"phase,omitempty"`
	StartedAt   string         `json:"started_at"`
	FinishedAt  string         `json:"finished_at,omitempty"`
	ModelPath   string         `json:"model_path,omitempty"`
	Documented  int            `json:"documented"`
	Failed      int            `json:"failed"`
	Skipped     int            `json:"skipped"`
	SnapshotDir string         `json:"snapshot_dir,omitempty"`
	CommitID    string         `json:"commit_id,omitempty"`
	Error       string         `json:"error,omitempty"`
	Entities    []EntityOutput `json:"entities,omitempty"`
}

// EntityOutput is one per-entity line of a run.
type EntityOutput struct {
	Table   string `json:"table"`
	Name    string `json:"name"`
	Outcome string `json:"outcome"`
	Stage   string `json:"stage,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "run_pipeline",
		Description: "Document undocumented measures, export the model, back up the changes and commit them",
	}, s.handleRun)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "document_model",
		Description: "Document undocumented measures and export the model without auditing",
	}, s.handleDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "audit_changes",
		Description: "Back up and commit changes to the exported model definition",
	}, s.handleAudit)
}

func (s *Server) handleRun(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, RunOutput, error) {
	run, err := s.ports.Pipeline.Run(ctx, driving.RunOptions{Document: documentOptions(input)})
	if err != nil {
		return nil, RunOutput{}, err
	}
	return nil, toRunOutput(run), nil
}

func (s *Server) handleDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, RunOutput, error) {
	run, err := s.ports.Pipeline.Document(ctx, driving.RunOptions{Document: documentOptions(input)})
	if err != nil {
		return nil, RunOutput{}, err
	}
	return nil, toRunOutput(run), nil
}

func (s *Server) handleAudit(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AuditInput,
) (*mcp.CallToolResult, RunOutput, error) {
	run, err := s.ports.Pipeline.Audit(ctx, driving.AuditOptions{
		Prior:    input.Prior,
		Current:  input.Current,
		NoCommit: input.NoCommit,
	})
	if err != nil {
		return nil, RunOutput{}, err
	}
	return nil, toRunOutput(run), nil
}

func documentOptions(input DocumentInput) driving.DocumentOptions {
	limit := input.Limit
	if limit < 0 {
		limit = 0
	}
	return driving.DocumentOptions{Limit: limit, DryRun: input.DryRun}
}

func toRunOutput(run *domain.RunRecord) RunOutput {
	if run == nil {
		return RunOutput{}
	}
	out := RunOutput{
		ID:          run.ID,
		Status:      string(run.Status),
		Phase:       string(run.Phase),
		StartedAt:   formatTime(run.StartedAt),
		FinishedAt:  formatTime(run.FinishedAt),
		ModelPath:   run.ModelPath,
		Documented:  run.Documented,
		Failed:      run.Failed,
		Skipped:     run.Skipped,
		SnapshotDir: run.SnapshotDir,
		CommitID:    run.CommitID,
		Error:       run.Error,
	}
	for _, e := range run.Entities {
		out.Entities = append(out.Entities, EntityOutput{
			Table:   e.Ref.Table,
			Name:    e.Ref.Name,
			Outcome: string(e.Outcome),
			Stage:   e.Stage,
			Detail:  e.Detail,
		})
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
