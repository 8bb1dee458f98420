package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
)

func TestHistoryCmd_ListsRuns(t *testing.T) {
	history := &mockHistory{runs: []domain.RunRecord{
		*succeededRun(),
		{ID: "run-quiet", Status: domain.RunStatusNoChanges},
	}}
	withServices(t, Services{History: history})

	out, err := executeCommand(t, "history")
	require.NoError(t, err)

	assert.Equal(t, 10, history.limit)
	assert.Contains(t, out, "Recent runs")
	assert.Contains(t, out, "documented 1, failed 1, commit 01234567")
	assert.Contains(t, out, "3f2a9c1e-5b7d-4e8f-9a0b-1c2d3e4f5a6b")
	assert.Contains(t, out, "no_changes")
}

func TestHistoryCmd_Limit(t *testing.T) {
	history := &mockHistory{}
	withServices(t, Services{History: history})

	out, err := executeCommand(t, "history", "--limit", "3")
	require.NoError(t, err)
	assert.Equal(t, 3, history.limit)
	assert.Contains(t, out, "No runs recorded yet.")
}

func TestHistoryCmd_ShowRun(t *testing.T) {
	withServices(t, Services{History: &mockHistory{runs: []domain.RunRecord{*succeededRun()}}})

	out, err := executeCommand(t, "history", "3f2a9c1e-5b7d-4e8f-9a0b-1c2d3e4f5a6b")
	require.NoError(t, err)

	assert.Contains(t, out, "Duration: 1.5s")
	assert.Contains(t, out, "Commit:   0123456789abcdef")
	assert.Contains(t, out, "'Sales'[Margin] (analyse): reply is not JSON")
}

func TestHistoryCmd_UnknownRun(t *testing.T) {
	withServices(t, Services{History: &mockHistory{}})

	_, err := executeCommand(t, "history", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run missing not found")
}

func TestHistoryCmd_Errors(t *testing.T) {
	withServices(t, Services{History: &mockHistory{err: errors.New("database is locked")}})

	_, err := executeCommand(t, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")

	withServices(t, Services{})
	_, err = executeCommand(t, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history service not configured")
}
