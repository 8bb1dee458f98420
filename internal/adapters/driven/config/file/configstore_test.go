package file

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Path(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ConfigFile), store.Path())
}

func TestNewConfigStore_HomeFromEnvironment(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "home")
	t.Setenv("MODELDOC_HOME", dir)

	store, err := NewConfigStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ConfigFile), store.Path())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.provider", "openai"))
	require.NoError(t, store.Set("retry.max_attempts", int64(5)))
	require.NoError(t, store.Set("model.server_args", []string{"--stdio", "--quiet"}))

	assert.Equal(t, "openai", store.GetString("llm.provider"))
	assert.Equal(t, 5, store.GetInt("retry.max_attempts"))
	assert.Equal(t, []string{"--stdio", "--quiet"}, store.GetStringSlice("model.server_args"))

	// Missing keys and wrong types yield zero values.
	assert.Empty(t, store.GetString("retry.max_attempts"))
	assert.Zero(t, store.GetInt("llm.provider"))
	assert.Nil(t, store.GetStringSlice("llm.provider"))
}

func TestConfigStore_Persistence(t *testing.T) {
	dir := t.TempDir()
	first, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, first.Set("llm.provider", "ollama"))
	require.NoError(t, first.Set("llm.requests_per_minute", 12))
	require.NoError(t, first.Set("model.server_args", []string{"--stdio"}))
	require.NoError(t, first.Set("backup.root", "/var/backups/model"))

	second, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "ollama", second.GetString("llm.provider"))
	assert.Equal(t, 12, second.GetInt("llm.requests_per_minute"))
	assert.Equal(t, []string{"--stdio"}, second.GetStringSlice("model.server_args"))
	assert.Equal(t, "/var/backups/model", second.GetString("backup.root"))
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.provider", "anthropic"))
	require.NoError(t, store.Set("git.prior_ref", "HEAD~1"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "[llm]")
	assert.Contains(t, text, "[git]")
	assert.NotContains(t, text, `'llm.provider'`)
	assert.NotContains(t, text, `"llm.provider"`)
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[llm]
provider = "openai"
requests_per_minute = 20

[model]
path = "/models/sales"
server_args = ["--stdio"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(content), 0o600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "openai", store.GetString("llm.provider"))
	assert.Equal(t, 20, store.GetInt("llm.requests_per_minute"))
	assert.Equal(t, "/models/sales", store.GetString("model.path"))
	assert.Equal(t, []string{"--stdio"}, store.GetStringSlice("model.server_args"))
}

func TestConfigStore_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("[llm\nprovider ="), 0o600))

	_, err := NewConfigStore(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestConfigStore_RejectsConflictingKeys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm", "plain"))
	assert.Error(t, store.Set("llm.provider", "openai"))
	assert.Error(t, store.Set("", "x"))
	assert.Error(t, store.Set("llm.", "x"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.api_key", "sk-secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".config-"), "temporary file left behind: %s", e.Name())
	}
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Set("llm.model", "gpt-4o"))
		}()
		go func() {
			defer wg.Done()
			_ = store.GetString("llm.model")
		}()
	}
	wg.Wait()

	assert.Equal(t, "gpt-4o", store.GetString("llm.model"))
}

func TestNest(t *testing.T) {
	tree, err := nest(map[string]any{
		"a.b.c": 1,
		"a.d":   "x",
		"e":     true,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": 1},
			"d": "x",
		},
		"e": true,
	}, tree)

	assert.Equal(t, map[string]any{"a.b.c": 1, "a.d": "x", "e": true}, flatten(tree, ""))
}
