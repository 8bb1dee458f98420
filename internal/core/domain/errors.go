package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent pipeline failures by category.
// Adapters wrap their underlying causes with one of these so that
// services can decide between isolating, retrying and aborting.
var (
	// ErrConnection indicates the model server could not be reached or the
	// model path did not resolve to a valid model.
	ErrConnection = errors.New("model connection failed")

	// ErrNotFound indicates a requested entity does not exist.
	// Usually an entity removed between listing and fetching.
	ErrNotFound = errors.New("not found")

	// ErrAnalysisParse indicates the reasoning service replied with output
	// that does not match the expected structure.
	ErrAnalysisParse = errors.New("analysis output malformed")

	// ErrAnalysisTransport indicates the reasoning service could not be reached
	// or returned a transport-level error.
	ErrAnalysisTransport = errors.New("analysis service request failed")

	// ErrUpdate indicates the model server rejected a write.
	ErrUpdate = errors.New("update rejected")

	// ErrExport indicates the model could not be exported to disk.
	ErrExport = errors.New("model export failed")

	// ErrDiff indicates the change set could not be computed.
	ErrDiff = errors.New("diff failed")

	// ErrCommit indicates version control rejected staging or committing.
	ErrCommit = errors.New("commit rejected")

	// ErrIO indicates a filesystem failure while materialising a backup.
	ErrIO = errors.New("backup i/o failed")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLLMUnavailable indicates the reasoning service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrSessionClosed indicates an operation on a released session.
	ErrSessionClosed = errors.New("session closed")
)

// IsTransient reports whether err is worth retrying: only transport-level
// failures qualify. Content and logic errors never do.
func IsTransient(err error) bool {
	if errors.Is(err, ErrAnalysisParse) || errors.Is(err, ErrUpdate) {
		return false
	}
	return errors.Is(err, ErrConnection) || errors.Is(err, ErrAnalysisTransport)
}

// EntityError ties a failure to the entity and stage it happened in.
type EntityError struct {
	Ref   EntityRef
	Stage string
	Err   error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Ref, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}

// Phase names a step of the pipeline.
type Phase string

// Pipeline phases, in execution order.
const (
	PhaseConnect  Phase = "connect"
	PhaseDocument Phase = "document"
	PhaseExport   Phase = "export"
	PhaseAudit    Phase = "audit"
	PhaseCommit   Phase = "commit"
)

// PhaseError is a fatal pipeline failure with enough context to diagnose it.
type PhaseError struct {
	Phase  Phase
	Target string
	Err    error
}

func (e *PhaseError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s phase failed: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("%s phase failed (%s): %v", e.Phase, e.Target, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// FailedPhase returns the phase of the first PhaseError in err's chain.
func FailedPhase(err error) (Phase, bool) {
	var pe *PhaseError
	if errors.As(err, &pe) {
		return pe.Phase, true
	}
	return "", false
}
