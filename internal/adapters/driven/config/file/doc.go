// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML configuration at <home>/config.toml
//   - PromptStore: editable prompt templates at <home>/prompts
//
// The home directory is $MODELDOC_HOME, or ~/.modeldoc.
package file
