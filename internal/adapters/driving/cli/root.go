// Package cli provides the modeldoc command-line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driving"
	"github.com/custodia-labs/modeldoc/internal/logger"
)

// Services injected by the entry point.
var (
	pipelineService driving.Pipeline
	historyService  driving.HistoryService
	settingsService driving.SettingsService

	// llmValidator checks credentials before they are stored. Nil skips the check.
	llmValidator func(ctx context.Context, settings *domain.LLMSettings) error
)

// Services bundles the driving ports the commands use.
type Services struct {
	Pipeline    driving.Pipeline
	History     driving.HistoryService
	Settings    driving.SettingsService
	ValidateLLM func(ctx context.Context, settings *domain.LLMSettings) error
}

// Configure injects the services. Commands whose service is missing fail
// with a "not configured" error.
func Configure(s Services) {
	pipelineService = s.Pipeline
	historyService = s.History
	settingsService = s.Settings
	llmValidator = s.ValidateLLM
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "modeldoc",
	Short: "Document semantic model measures and audit model changes",
	Long: `modeldoc documents the undocumented measures of a semantic model with an
AI reasoning service, exports the model definition, backs up every change
with a generated changelog and commits it to version control.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs to stderr")
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
