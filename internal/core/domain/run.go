package domain

import "time"

// Stages of the per-entity documentation sequence.
const (
	StageFetch   = "fetch"
	StageAnalyse = "analyse"
	StageUpdate  = "update"
)

// DocumentedEntity is an entity that received generated documentation.
type DocumentedEntity struct {
	Ref         EntityRef
	Description string
}

// EntityFailure records why an entity could not be documented.
type EntityFailure struct {
	Ref   EntityRef
	Stage string
	Err   error
}

// DocumentationResult is the outcome of one documentation pass.
type DocumentationResult struct {
	// Documented holds the successfully documented entities, in list order.
	Documented []DocumentedEntity

	// Failed holds per-entity failures. They do not fail the run.
	Failed []EntityFailure

	// Skipped counts entities that already had a description.
	Skipped int

	// Pending counts undocumented entities left alone because of a limit or dry run.
	Pending int
}

// RunStatus is the terminal state of a pipeline run.
type RunStatus string

// Run statuses.
const (
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusNoChanges RunStatus = "no_changes"
	RunStatusFailed    RunStatus = "failed"
)

// RunEntityOutcome describes what happened to one entity during a run.
type RunEntityOutcome string

// Entity outcomes.
const (
	OutcomeDocumented RunEntityOutcome = "documented"
	OutcomeFailed     RunEntityOutcome = "failed"
)

// RunEntity is the persisted per-entity line of a run record.
type RunEntity struct {
	Ref     EntityRef
	Outcome RunEntityOutcome
	Stage   string
	Detail  string
}

// RunRecord is the audit-trail entry for one pipeline run.
type RunRecord struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	ModelPath   string
	Status      RunStatus
	Phase       Phase
	Documented  int
	Failed      int
	Skipped     int
	SnapshotDir string
	CommitID    string
	Error       string
	Entities    []RunEntity
}

// Duration returns how long the run took.
func (r *RunRecord) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// RecordDocumentation copies the outcome of a documentation pass into the record.
func (r *RunRecord) RecordDocumentation(res *DocumentationResult) {
	if res == nil {
		return
	}
	r.Documented = len(res.Documented)
	r.Failed = len(res.Failed)
	r.Skipped = res.Skipped
	for _, d := range res.Documented {
		r.Entities = append(r.Entities, RunEntity{
			Ref:     d.Ref,
			Outcome: OutcomeDocumented,
			Detail:  d.Description,
		})
	}
	for _, f := range res.Failed {
		detail := ""
		if f.Err != nil {
			detail = f.Err.Error()
		}
		r.Entities = append(r.Entities, RunEntity{
			Ref:     f.Ref,
			Outcome: OutcomeFailed,
			Stage:   f.Stage,
			Detail:  detail,
		})
	}
}
