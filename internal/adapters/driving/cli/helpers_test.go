package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driving"
)

// executeCommand runs rootCmd with args and returns everything it printed.
// Flags are reset first, since the command tree is shared between tests.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// withServices swaps in services for the duration of a test.
func withServices(t *testing.T, s Services) {
	t.Helper()
	oldPipeline, oldHistory, oldSettings, oldValidator := pipelineService, historyService, settingsService, llmValidator
	Configure(s)
	t.Cleanup(func() {
		pipelineService, historyService, settingsService, llmValidator = oldPipeline, oldHistory, oldSettings, oldValidator
	})
}

// mockPipeline implements driving.Pipeline for testing.
type mockPipeline struct {
	run       *domain.RunRecord
	err       error
	events    []driving.ProgressEvent
	runOpts   []driving.RunOptions
	auditOpts []driving.AuditOptions
	called    string
}

func (m *mockPipeline) emit(fn driving.ProgressFunc) {
	for _, e := range m.events {
		if fn != nil {
			fn(e)
		}
	}
}

func (m *mockPipeline) Run(_ context.Context, opts driving.RunOptions) (*domain.RunRecord, error) {
	m.called = "run"
	m.runOpts = append(m.runOpts, opts)
	m.emit(opts.OnProgress)
	return m.run, m.err
}

func (m *mockPipeline) Document(_ context.Context, opts driving.RunOptions) (*domain.RunRecord, error) {
	m.called = "document"
	m.runOpts = append(m.runOpts, opts)
	m.emit(opts.OnProgress)
	return m.run, m.err
}

func (m *mockPipeline) Audit(_ context.Context, opts driving.AuditOptions) (*domain.RunRecord, error) {
	m.called = "audit"
	m.auditOpts = append(m.auditOpts, opts)
	m.emit(opts.OnProgress)
	return m.run, m.err
}

// mockHistory implements driving.HistoryService for testing.
type mockHistory struct {
	runs  []domain.RunRecord
	err   error
	limit int
}

func (m *mockHistory) Recent(_ context.Context, limit int) ([]domain.RunRecord, error) {
	m.limit = limit
	return m.runs, m.err
}

func (m *mockHistory) Get(_ context.Context, id string) (*domain.RunRecord, error) {
	for i := range m.runs {
		if m.runs[i].ID == id {
			return &m.runs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// mockSettings implements driving.SettingsService for testing.
type mockSettings struct {
	cfg    domain.RunConfig
	set    map[string]string
	apiKey string
	setErr error
}

func (m *mockSettings) RunConfig() (domain.RunConfig, error) {
	return m.cfg, nil
}

func (m *mockSettings) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.set == nil {
		m.set = make(map[string]string)
	}
	m.set[key] = value
	return nil
}

func (m *mockSettings) SetAPIKey(apiKey string) error {
	m.apiKey = apiKey
	return nil
}

func (m *mockSettings) Keys() []string {
	return []string{"llm.api_key", "llm.provider", "model.path"}
}

func (m *mockSettings) ConfigPath() string {
	return "/home/test/.modeldoc/config.toml"
}
