package cli

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build information, set with
//
//	-ldflags "-X github.com/custodia-labs/modeldoc/internal/adapters/driving/cli.version=1.2.0
//	          -X github.com/custodia-labs/modeldoc/internal/adapters/driving/cli.commit=abc1234
//	          -X github.com/custodia-labs/modeldoc/internal/adapters/driving/cli.buildDate=2026-01-02"
var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the modeldoc version and build details",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("modeldoc version %s\n", version)
		rev, date := buildDetails()
		if rev != "" {
			cmd.Printf("  commit: %s\n", rev)
		}
		if date != "" {
			cmd.Printf("  built:  %s\n", date)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// buildDetails returns the linked commit and date, falling back to the VCS
// stamp the go tool embeds when building from a checkout.
func buildDetails() (rev, date string) {
	rev, date = commit, buildDate
	if rev != "" {
		return rev, date
	}
	info, ok := readBuildInfo()
	if !ok {
		return "", date
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = shortID(s.Value)
		case "vcs.time":
			if date == "" {
				date = s.Value
			}
		}
	}
	return rev, date
}
