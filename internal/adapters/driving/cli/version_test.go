package cli

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withBuild sets the linked build variables and the embedded build info
// for one test.
func withBuild(t *testing.T, v, rev, date string, info *debug.BuildInfo) {
	t.Helper()
	origVersion, origCommit, origDate, origRead := version, commit, buildDate, readBuildInfo
	t.Cleanup(func() {
		version, commit, buildDate, readBuildInfo = origVersion, origCommit, origDate, origRead
	})

	version, commit, buildDate = v, rev, date
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, info != nil }
}

func TestVersionCmd_LinkedBuildInfo(t *testing.T) {
	withBuild(t, "1.2.0", "abc1234", "2026-01-02", nil)

	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "modeldoc version 1.2.0\n  commit: abc1234\n  built:  2026-01-02\n", out)
}

func TestVersionCmd_FallsBackToVCSStamp(t *testing.T) {
	withBuild(t, "dev", "", "", &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs", Value: "git"},
		{Key: "vcs.revision", Value: "0f3c9a71d2e84b5c"},
		{Key: "vcs.time", Value: "2026-10-01T09:30:00Z"},
	}})

	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "modeldoc version dev\n")
	assert.Contains(t, out, "commit: 0f3c9a71\n")
	assert.Contains(t, out, "built:  2026-10-01T09:30:00Z\n")
}

func TestVersionCmd_DevWithoutBuildInfo(t *testing.T) {
	withBuild(t, "dev", "", "", nil)

	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "modeldoc version dev\n", out)
}
