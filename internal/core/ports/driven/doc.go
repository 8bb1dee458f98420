// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ModelServer / ModelSession: The remote model store (MCP model server)
//   - LLMService: The reasoning service
//   - PromptStore: Prompt templates for the reasoning service
//   - VersionControl: Diff, stage and commit of the definition tree (git)
//   - SnapshotWriter: Backup materialisation
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RunStore: Run history. Without it, runs are not recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
