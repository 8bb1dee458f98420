package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show past runs",
	Long:  `Lists recent runs, newest first. With a run ID, shows that run's per-measure outcomes.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of runs to list (0 = all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}
	if len(args) == 1 {
		return showRun(cmd, args[0])
	}

	runs, err := historyService.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No runs recorded yet.")
		return nil
	}

	cmd.Println(titleStyle.Render("Recent runs"))
	for i := range runs {
		run := &runs[i]
		cmd.Printf("%s %s  %-10s  documented %d, failed %d",
			statusMark(run.Status), run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Status, run.Documented, run.Failed)
		if run.CommitID != "" {
			cmd.Printf(", commit %s", shortID(run.CommitID))
		}
		cmd.Printf("  %s\n", mutedStyle.Render(run.ID))
	}
	return nil
}

func showRun(cmd *cobra.Command, id string) error {
	run, err := historyService.Get(cmd.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	cmd.Println(titleStyle.Render("Run " + run.ID))
	cmd.Printf("  Started:  %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	cmd.Printf("  Duration: %s\n", run.Duration().Round(time.Millisecond))
	cmd.Printf("  Model:    %s\n", run.ModelPath)
	cmd.Printf("  Status:   %s %s\n", statusMark(run.Status), run.Status)
	if run.Error != "" {
		cmd.Printf("  Error:    %s\n", run.Error)
	}
	if run.SnapshotDir != "" {
		cmd.Printf("  Backup:   %s\n", run.SnapshotDir)
	}
	if run.CommitID != "" {
		cmd.Printf("  Commit:   %s\n", run.CommitID)
	}
	cmd.Printf("  Already documented: %d\n", run.Skipped)

	if len(run.Entities) > 0 {
		cmd.Println()
		for _, e := range run.Entities {
			if e.Outcome == domain.OutcomeFailed {
				cmd.Printf("  %s %s (%s): %s\n", markFail, e.Ref, e.Stage, e.Detail)
				continue
			}
			cmd.Printf("  %s %s: %s\n", markOK, e.Ref, e.Detail)
		}
	}
	return nil
}

func statusMark(status domain.RunStatus) string {
	switch status {
	case domain.RunStatusSucceeded:
		return markOK
	case domain.RunStatusFailed:
		return markFail
	default:
		return markNone
	}
}
