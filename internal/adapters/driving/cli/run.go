package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driving"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Document measures, export, back up and commit",
	Long: `Runs the full pipeline against the configured model:

  1. connect to the model server
  2. document every measure that has no description
  3. export the model definition to disk
  4. diff the definition, write a backup with a changelog
  5. commit the backup to version control

A measure that cannot be documented is reported and skipped; any other
failure stops the run and names the phase that failed.`,
	Args: cobra.NoArgs,
	RunE: runPipeline,
}

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Document measures and export the model",
	Long:  `Connects, documents undocumented measures and exports the definition without auditing or committing.`,
	Args:  cobra.NoArgs,
	RunE:  runDocument,
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Back up and commit changes to the exported definition",
	Long: `Diffs the exported definition between two revisions, writes a backup with a
generated changelog and commits it. Nothing happens when there are no changes.`,
	Args: cobra.NoArgs,
	RunE: runAudit,
}

var (
	dryRun        bool
	documentLimit int
	priorRef      string
	currentRef    string
	noCommit      bool
)

func init() {
	for _, cmd := range []*cobra.Command{runCmd, documentCmd} {
		cmd.Flags().BoolVar(&dryRun, "dry-run", false, "analyse measures without writing documentation or committing")
		cmd.Flags().IntVarP(&documentLimit, "limit", "n", 0, "document at most N measures (0 = all)")
	}
	auditCmd.Flags().StringVar(&priorRef, "prior", "", "older revision (default: git.prior_ref)")
	auditCmd.Flags().StringVar(&currentRef, "current", "", "newer revision (default: working tree)")
	auditCmd.Flags().BoolVar(&noCommit, "no-commit", false, "write the backup but do not commit")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(documentCmd)
	rootCmd.AddCommand(auditCmd)
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	if pipelineService == nil {
		return errors.New("pipeline not configured")
	}
	if documentLimit < 0 {
		return fmt.Errorf("%w: --limit must not be negative", domain.ErrInvalidInput)
	}

	run, err := pipelineService.Run(cmd.Context(), driving.RunOptions{
		Document:   driving.DocumentOptions{Limit: documentLimit, DryRun: dryRun},
		OnProgress: progressPrinter(cmd),
	})
	printRun(cmd, run)
	return err
}

func runDocument(cmd *cobra.Command, _ []string) error {
	if pipelineService == nil {
		return errors.New("pipeline not configured")
	}
	if documentLimit < 0 {
		return fmt.Errorf("%w: --limit must not be negative", domain.ErrInvalidInput)
	}

	run, err := pipelineService.Document(cmd.Context(), driving.RunOptions{
		Document:   driving.DocumentOptions{Limit: documentLimit, DryRun: dryRun},
		OnProgress: progressPrinter(cmd),
	})
	printRun(cmd, run)
	return err
}

func runAudit(cmd *cobra.Command, _ []string) error {
	if pipelineService == nil {
		return errors.New("pipeline not configured")
	}

	run, err := pipelineService.Audit(cmd.Context(), driving.AuditOptions{
		Prior:      priorRef,
		Current:    currentRef,
		NoCommit:   noCommit,
		OnProgress: progressPrinter(cmd),
	})
	printRun(cmd, run)
	return err
}

// progressPrinter writes one line per progress event. Entity events come
// from the documentation pass, the rest from the pipeline phases.
func progressPrinter(cmd *cobra.Command) driving.ProgressFunc {
	return func(event driving.ProgressEvent) {
		if event.Entity != nil {
			cmd.Printf("  %s %s\n", markOK, event.Entity.Ref)
			return
		}
		if event.Message != "" {
			cmd.Printf("%s %s\n", markPhase, event.Message)
		}
	}
}

// printRun summarises a finished run. A failed run still reports how far
// it got.
func printRun(cmd *cobra.Command, run *domain.RunRecord) {
	if run == nil {
		return
	}
	cmd.Println()

	if run.Status == domain.RunStatusNoChanges {
		cmd.Println(mutedStyle.Render("No changes to the model definition."))
	}
	if run.Documented+run.Failed+run.Skipped > 0 {
		cmd.Printf("Documented: %d  Failed: %d  Already documented: %d\n",
			run.Documented, run.Failed, run.Skipped)
	}
	for _, e := range run.Entities {
		if e.Outcome == domain.OutcomeFailed {
			cmd.Printf("  %s %s (%s): %s\n", markFail, e.Ref, e.Stage, e.Detail)
		}
	}
	if run.SnapshotDir != "" {
		cmd.Printf("Backup: %s\n", run.SnapshotDir)
	}
	if run.CommitID != "" {
		cmd.Printf("Commit: %s\n", shortID(run.CommitID))
	}

	switch run.Status {
	case domain.RunStatusSucceeded:
		cmd.Printf("%s Run %s completed in %s\n", markOK, shortID(run.ID), run.Duration().Round(time.Millisecond))
	case domain.RunStatusFailed:
		cmd.Printf("%s Run %s failed in the %s phase\n", markFail, shortID(run.ID), run.Phase)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
