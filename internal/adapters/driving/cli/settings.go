package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the configuration used by run, document and audit.

Settings are stored in config.toml in the modeldoc home directory
($MODELDOC_HOME, or ~/.modeldoc).`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change one setting",
	Long: `Stores one setting. Run 'modeldoc settings keys' for the recognised keys.

Examples:
  modeldoc settings set model.path /models/sales
  modeldoc settings set llm.provider openai
  modeldoc settings set model.server_args "--stdio --readonly"`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List recognised setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsAPIKeyCmd = &cobra.Command{
	Use:   "api-key",
	Short: "Store the API key for the configured provider",
	Long: `Prompts for the API key without echoing it, checks it against the provider
and stores it. The key can also be supplied through ANTHROPIC_API_KEY or
OPENAI_API_KEY, in the environment or a .env file.`,
	Args: cobra.NoArgs,
	RunE: runSettingsAPIKey,
}

var skipValidation bool

func init() {
	settingsAPIKeyCmd.Flags().BoolVar(&skipValidation, "no-check", false, "store the key without contacting the provider")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsAPIKeyCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cfg, err := settingsService.RunConfig()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println(titleStyle.Render("Current Settings"))
	cmd.Println(mutedStyle.Render(settingsService.ConfigPath()))
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", cfg.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", orDefault(cfg.LLM.Model))
	cmd.Printf("  Base URL: %s\n", orDefault(cfg.LLM.BaseURL))
	if cfg.LLM.Provider.RequiresAPIKey() {
		if cfg.LLM.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(cfg.LLM.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	cmd.Printf("  Requests per minute: %d\n", cfg.LLM.RequestsPerMinute)
	cmd.Println()

	cmd.Println("[Model]")
	cmd.Printf("  Path: %s\n", orUnset(cfg.Model.Path))
	cmd.Printf("  Connection: %s\n", orUnset(cfg.Model.Connection))
	cmd.Printf("  Definition path: %s\n", orUnset(cfg.Model.DefinitionPath))
	cmd.Printf("  Server: %s\n", strings.TrimSpace(cfg.Model.ServerCommand+" "+strings.Join(cfg.Model.ServerArgs, " ")))
	cmd.Println()

	cmd.Println("[Backup]")
	cmd.Printf("  Root: %s\n", cfg.BackupRoot)
	cmd.Println()

	cmd.Println("[Git]")
	cmd.Printf("  Repository: %s\n", cfg.Git.Repo)
	cmd.Printf("  Prior ref: %s\n", cfg.Git.PriorRef)
	cmd.Printf("  Current ref: %s\n", orValue(cfg.Git.CurrentRef, "(working tree)"))
	cmd.Println()

	cmd.Println("[Retry]")
	cmd.Printf("  Max attempts: %d\n", cfg.MaxAttempts)
	cmd.Println()

	if err := cfg.Validate(); err != nil {
		cmd.Printf("%s %v\n", markWarn, err)
		cmd.Println("Run 'modeldoc settings set KEY VALUE' to complete the configuration.")
	} else {
		cmd.Printf("%s Configuration is complete.\n", markOK)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return err
	}

	shown := value
	if strings.HasSuffix(key, "api_key") {
		shown = maskAPIKey(value)
	}
	cmd.Printf("%s %s = %s\n", markOK, key, shown)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsAPIKey(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cfg, err := settingsService.RunConfig()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if !cfg.LLM.Provider.RequiresAPIKey() {
		cmd.Printf("%s does not use an API key.\n", cfg.LLM.Provider.Description())
		return nil
	}

	cmd.Printf("API key for %s: ", cfg.LLM.Provider.Description())
	key := readPassword(cmd.InOrStdin())
	cmd.Println()
	if key == "" {
		return fmt.Errorf("%w: no API key entered", domain.ErrInvalidInput)
	}

	if llmValidator != nil && !skipValidation {
		cmd.Print("Checking key... ")
		llm := cfg.LLM
		llm.APIKey = key
		if err := llmValidator(cmd.Context(), &llm); err != nil {
			cmd.Println(errorStyle.Render("FAILED"))
			return fmt.Errorf("API key rejected: %w", err)
		}
		cmd.Println(successStyle.Render("OK"))
	}

	if err := settingsService.SetAPIKey(key); err != nil {
		return err
	}
	cmd.Printf("%s API key saved for %s\n", markOK, cfg.LLM.Provider)
	return nil
}

// readPassword reads a line without echo when in is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func orDefault(s string) string {
	return orValue(s, "(provider default)")
}

func orUnset(s string) string {
	return orValue(s, "(not set)")
}

func orValue(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
