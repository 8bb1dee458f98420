// Command modeldoc documents semantic model measures and audits model changes.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/modeldoc/internal/adapters/driven/ai"
	"github.com/custodia-labs/modeldoc/internal/adapters/driven/config/file"
	"github.com/custodia-labs/modeldoc/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/modeldoc/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/modeldoc/internal/adapters/driving/cli"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driven"
	"github.com/custodia-labs/modeldoc/internal/core/services"
	"github.com/custodia-labs/modeldoc/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrorText(err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Credentials may live in a .env file next to the model.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	home, err := file.DefaultHome()
	if err != nil {
		return err
	}

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	prompts, err := file.NewPromptStore(filepath.Join(home, "prompts"))
	if err != nil {
		return err
	}
	settings := services.NewSettingsService(configStore, os.Getenv)

	runs, closeRuns := openRunStore(home)
	defer closeRuns()

	pipeline := newLazyPipeline(settings, prompts, runs)
	defer pipeline.Close()

	cli.Configure(cli.Services{
		Pipeline:    pipeline,
		History:     services.NewHistoryService(runs),
		Settings:    settings,
		ValidateLLM: ai.ValidateLLMConfig,
	})
	return cli.Execute(ctx)
}

// openRunStore opens the SQLite history. When it cannot be opened runs are
// kept in memory for this process only.
func openRunStore(home string) (driven.RunStore, func()) {
	store, err := sqlite.NewStore(filepath.Join(home, "data"))
	if err != nil {
		logger.Warn("Run history unavailable, not persisting runs: %v", err)
		return memory.NewRunStore(), func() {}
	}
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("Closing run history: %v", err)
		}
	}
}
