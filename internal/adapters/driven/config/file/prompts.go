package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/modeldoc/internal/core/ports/driven"
	"github.com/custodia-labs/modeldoc/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads prompt templates from user-editable files, falling back
// to the built-in templates.
//
// Nothing touches the disk until the first Load, when the directory is
// created and seeded with the defaults.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// NewPromptStore creates a file-based prompt store.
// If promptDir is empty, <DefaultHome>/prompts is used.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := DefaultHome()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(home, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the template for name. A file whose placeholders no longer
// match the built-in template is ignored in favour of the default.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)

	fallback, known := driven.DefaultPrompt(name)
	if s.initErr != nil {
		if known {
			return fallback, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	switch {
	case err != nil && known:
		prompt = fallback
	case err != nil:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	case known && placeholders(prompt) != placeholders(fallback):
		logger.Warn("Prompt %s.txt has %d placeholders, want %d; using built-in template",
			name, placeholders(prompt), placeholders(fallback))
		prompt = fallback
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the directory and writes any missing default files.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0o700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for _, name := range driven.PromptNames() {
		content, _ := driven.DefaultPrompt(name)
		path := s.path(name)
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
			return
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.promptDir, name+".txt")
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// placeholders counts fmt verbs in a template, ignoring escaped percent signs.
func placeholders(template string) int {
	return strings.Count(strings.ReplaceAll(template, "%%", ""), "%s")
}

func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	content := `# modeldoc prompts

Templates sent to the reasoning service. Edit them to change how measures
and model changes are described.

- ` + "`entity_analysis.txt`" + ` documents one measure. Two ` + "`%s`" + ` placeholders:
  the measure name, then its expression.
- ` + "`change_analysis.txt`" + ` summarises a diff of the definition tree. One
  ` + "`%s`" + ` placeholder: the diff.

Replies must stay single JSON objects with the keys listed at the end of
each template. A file that drops or adds placeholders is ignored and the
built-in template is used instead. Delete a file to restore its default.
`
	return os.WriteFile(path, []byte(content), 0o600)
}
