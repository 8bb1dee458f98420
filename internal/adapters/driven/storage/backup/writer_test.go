package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
)

func testSnapshot() *domain.BackupSnapshot {
	created := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	return &domain.BackupSnapshot{
		ID:            domain.SnapshotID(created),
		CreatedAt:     created,
		CommitMessage: "docs: describe revenue",
		Analysis: domain.ChangeAnalysis{
			Changelog:     "Described revenue.",
			Impact:        "None.",
			CommitMessage: "docs: describe revenue",
		},
		ChangeSet: domain.ChangeSet{
			Prior: "HEAD",
			Text:  "+description: Total revenue",
			Files: []string{"definition/tables/Sales.tmdl"},
		},
	}
}

func seedDefinition(t *testing.T, fs afero.Fs) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, "/model/definition/model.tmdl", []byte("model Model\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/model/definition/tables/Sales.tmdl",
		[]byte("table Sales\n\tmeasure 'Total Revenue' = SUM(Sales[Amount])\n"), 0o644))
	require.NoError(t, fs.MkdirAll("/model/definition/cultures", 0o755))
}

func TestWriter_Write(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedDefinition(t, fs)
	w := NewWriter(fs, "/model/backups")
	snapshot := testSnapshot()

	require.NoError(t, w.Write(context.Background(), snapshot, "/model/definition"))

	assert.Equal(t, "/model/backups/20250314_092653", snapshot.Dir)
	assert.Equal(t, "/model/backups/20250314_092653/CHANGELOG.md", snapshot.ChangelogPath)

	for _, name := range []string{"model.tmdl", "tables/Sales.tmdl"} {
		want, err := afero.ReadFile(fs, filepath.Join("/model/definition", name))
		require.NoError(t, err)
		got, err := afero.ReadFile(fs, filepath.Join(snapshot.Dir, DefinitionDir, name))
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
	isDir, err := afero.IsDir(fs, filepath.Join(snapshot.Dir, DefinitionDir, "cultures"))
	require.NoError(t, err)
	assert.True(t, isDir)

	changelog, err := afero.ReadFile(fs, snapshot.ChangelogPath)
	require.NoError(t, err)
	assert.Equal(t, snapshot.Changelog(), string(changelog))
}

func TestWriter_NeverOverwrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedDefinition(t, fs)
	w := NewWriter(fs, "/backups")

	require.NoError(t, w.Write(context.Background(), testSnapshot(), "/model/definition"))
	require.NoError(t, afero.WriteFile(fs, "/backups/20250314_092653/CHANGELOG.md", []byte("kept"), 0o644))

	err := w.Write(context.Background(), testSnapshot(), "/model/definition")
	assert.ErrorIs(t, err, domain.ErrIO)

	kept, err := afero.ReadFile(fs, "/backups/20250314_092653/CHANGELOG.md")
	require.NoError(t, err)
	assert.Equal(t, "kept", string(kept))
}

func TestWriter_MissingSourceLeavesNothing(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewWriter(fs, "/backups")
	snapshot := testSnapshot()

	err := w.Write(context.Background(), snapshot, "/model/definition")
	assert.ErrorIs(t, err, domain.ErrIO)
	assert.Empty(t, snapshot.Dir)

	exists, err := afero.DirExists(fs, "/backups/20250314_092653")
	require.NoError(t, err)
	assert.False(t, exists, "incomplete snapshot removed")
}

func TestWriter_SkipsBackupRootInsideSource(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedDefinition(t, fs)
	require.NoError(t, afero.WriteFile(fs, "/model/definition/.backups/20240101_000000/CHANGELOG.md",
		[]byte("old"), 0o644))
	w := NewWriter(fs, "/model/definition/.backups")
	snapshot := testSnapshot()

	require.NoError(t, w.Write(context.Background(), snapshot, "/model/definition"))

	exists, err := afero.Exists(fs, filepath.Join(snapshot.Dir, DefinitionDir, ".backups"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWriter_RejectsMissingID(t *testing.T) {
	w := NewWriter(afero.NewMemMapFs(), "/backups")
	assert.ErrorIs(t, w.Write(context.Background(), &domain.BackupSnapshot{}, "/src"), domain.ErrIO)
	assert.ErrorIs(t, w.Write(context.Background(), nil, "/src"), domain.ErrIO)
}

func TestWriter_ReadOnlyFilesystem(t *testing.T) {
	base := afero.NewMemMapFs()
	seedDefinition(t, base)
	w := NewWriter(afero.NewReadOnlyFs(base), "/backups")

	err := w.Write(context.Background(), testSnapshot(), "/model/definition")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIO)
}

func TestWriter_Cancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	seedDefinition(t, fs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewWriter(fs, "/backups").Write(ctx, testSnapshot(), "/model/definition")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	_, statErr := fs.Stat("/backups/20250314_092653")
	assert.True(t, os.IsNotExist(statErr))
}

func TestWithin(t *testing.T) {
	assert.True(t, within("/a/b", "/a/b"))
	assert.True(t, within("/a/b/c", "/a/b"))
	assert.False(t, within("/a/bc", "/a/b"))
	assert.False(t, within("/a", "/a/b"))
}
