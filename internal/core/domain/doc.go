// Package domain defines the core types of modeldoc.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Entity: A unit of the semantic model (e.g. a measure) and its metadata
//   - EntityAnalysis, ChangeAnalysis: Structured output of the reasoning service
//   - ChangeSet: A diff between two captures of the model definition tree
//   - BackupSnapshot: A timestamped, immutable backup with its changelog
//   - RunRecord: The audit trail of one pipeline run
//   - RunConfig: The explicit configuration passed to every component
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
