package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cenkalti/backoff/v5"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driven"
)

// --- Mock implementations shared by the service tests ---

// noWaitRetry retries without sleeping.
func noWaitRetry(attempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: attempts,
		NewBackOff:  func() backoff.BackOff { return backoff.NewConstantBackOff(0) },
	}
}

// mockSession implements driven.ModelSession over an in-memory entity list.
// Updates are applied to the stored entities so repeated runs see them.
type mockSession struct {
	mu        sync.Mutex
	entities  []domain.Entity
	listErr   error
	getErr    map[string]error
	updateErr map[string]error
	exportErr error

	updates  map[string]domain.EntityUpdate
	exported []string
	closed   bool
}

var _ driven.ModelSession = (*mockSession)(nil)

func newMockSession(entities ...domain.Entity) *mockSession {
	return &mockSession{
		entities:  entities,
		getErr:    map[string]error{},
		updateErr: map[string]error{},
		updates:   map[string]domain.EntityUpdate{},
	}
}

func (m *mockSession) ListEntities(_ context.Context, _ string) ([]domain.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.Entity, len(m.entities))
	for i, e := range m.entities {
		// List responses carry identity and description only.
		out[i] = domain.Entity{Ref: e.Ref, Description: e.Description}
	}
	return out, nil
}

func (m *mockSession) GetEntity(_ context.Context, _ string, ref domain.EntityRef) (*domain.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.getErr[ref.Name]; err != nil {
		return nil, err
	}
	for i := range m.entities {
		if m.entities[i].Ref == ref {
			e := m.entities[i]
			return &e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ref)
}

func (m *mockSession) UpdateEntity(_ context.Context, _ string, ref domain.EntityRef, update domain.EntityUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.updateErr[ref.Name]; err != nil {
		return err
	}
	for i := range m.entities {
		if m.entities[i].Ref == ref {
			update.Apply(&m.entities[i])
			m.updates[ref.Name] = update
			return nil
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrUpdate, ref)
}

func (m *mockSession) ExportModel(_ context.Context, targetPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.exportErr != nil {
		return m.exportErr
	}
	m.exported = append(m.exported, targetPath)
	return nil
}

func (m *mockSession) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// mockServer implements driven.ModelServer. Each Connect consumes the next
// error in connectErrs; once exhausted it hands out the session.
type mockServer struct {
	session     *mockSession
	connectErrs []error
	calls       int
}

var _ driven.ModelServer = (*mockServer)(nil)

func (m *mockServer) Connect(_ context.Context, _ string) (driven.ModelSession, error) {
	m.calls++
	if len(m.connectErrs) > 0 {
		err := m.connectErrs[0]
		m.connectErrs = m.connectErrs[1:]
		return nil, err
	}
	return m.session, nil
}

// mockLLM implements driven.LLMService with scripted replies.
type mockLLM struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	calls   int
	prompts []string
	opts    []driven.GenerateOptions
}

var _ driven.LLMService = (*mockLLM)(nil)

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.calls
	m.calls++
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	if i < len(m.replies) {
		return m.replies[i], nil
	}
	if len(m.replies) > 0 {
		return m.replies[len(m.replies)-1], nil
	}
	return "", errors.New("no scripted reply")
}

func (m *mockLLM) ModelName() string            { return "mock-model" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockAnalyser implements driven.Analyser with per-name results.
type mockAnalyser struct {
	mu          sync.Mutex
	entityErr   map[string]error
	change      *domain.ChangeAnalysis
	changeErr   error
	entityCalls []string
	changeCalls int
}

var _ driven.Analyser = (*mockAnalyser)(nil)

func newMockAnalyser() *mockAnalyser {
	return &mockAnalyser{
		entityErr: map[string]error{},
		change: &domain.ChangeAnalysis{
			Changelog:     "Documented revenue measures.",
			Impact:        "Descriptions only; no calculation changes.",
			CommitMessage: "docs: describe revenue measures",
		},
	}
}

func (m *mockAnalyser) AnalyzeEntity(_ context.Context, name, expression string) (*domain.EntityAnalysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entityCalls = append(m.entityCalls, name)
	if err := m.entityErr[name]; err != nil {
		return nil, err
	}
	return &domain.EntityAnalysis{
		Description:    "Describes " + name,
		TechnicalNotes: "Evaluates " + expression,
		Issues:         []string{},
		DisplayFolder:  "Generated",
	}, nil
}

func (m *mockAnalyser) AnalyzeChange(_ context.Context, _ *domain.ChangeSet) (*domain.ChangeAnalysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changeCalls++
	if m.changeErr != nil {
		return nil, m.changeErr
	}
	return m.change, nil
}

// mockVCS implements driven.VersionControl.
type mockVCS struct {
	changes   *domain.ChangeSet
	diffErr   error
	stageErr  error
	commitErr error
	commitID  string

	diffs    [][3]string
	staged   int
	messages []string
}

var _ driven.VersionControl = (*mockVCS)(nil)

func (m *mockVCS) Diff(_ context.Context, prior, current, path string) (*domain.ChangeSet, error) {
	m.diffs = append(m.diffs, [3]string{prior, current, path})
	if m.diffErr != nil {
		return nil, m.diffErr
	}
	if m.changes == nil {
		return &domain.ChangeSet{Prior: prior, Current: current}, nil
	}
	return m.changes, nil
}

func (m *mockVCS) StageAll(_ context.Context) error {
	m.staged++
	return m.stageErr
}

func (m *mockVCS) Commit(_ context.Context, message string) (string, error) {
	m.messages = append(m.messages, message)
	if m.commitErr != nil {
		return "", m.commitErr
	}
	if m.commitID == "" {
		return "0123456789abcdef", nil
	}
	return m.commitID, nil
}

// mockWriter implements driven.SnapshotWriter.
type mockWriter struct {
	err     error
	written []*domain.BackupSnapshot
	sources []string
}

var _ driven.SnapshotWriter = (*mockWriter)(nil)

func (m *mockWriter) Write(_ context.Context, snapshot *domain.BackupSnapshot, sourceDir string) error {
	if m.err != nil {
		return m.err
	}
	snapshot.Dir = "backups/" + snapshot.ID
	snapshot.ChangelogPath = snapshot.Dir + "/CHANGELOG.md"
	m.written = append(m.written, snapshot)
	m.sources = append(m.sources, sourceDir)
	return nil
}

// mockPromptStore implements driven.PromptStore.
type mockPromptStore struct {
	prompts map[string]string
}

var _ driven.PromptStore = (*mockPromptStore)(nil)

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Reload() {}

// measure builds an entity in the Sales table.
func measure(name, expression, description string) domain.Entity {
	return domain.Entity{
		Ref:         domain.EntityRef{Table: "Sales", Name: name},
		Expression:  expression,
		Description: description,
	}
}

func sampleChanges() *domain.ChangeSet {
	return &domain.ChangeSet{
		Prior: "HEAD",
		Text:  "diff --git a/definition/tables/Sales.tmdl b/definition/tables/Sales.tmdl\n+\t\tdescription: Total revenue\n",
		Files: []string{"definition/tables/Sales.tmdl"},
	}
}
