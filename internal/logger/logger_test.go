package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// capture redirects output for one test and restores the defaults after.
func capture(t *testing.T, v bool) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	SetOutput(buf)
	SetVerbose(v)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetVerbose(false)
	})
	return buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())
}

func TestVerboseOnlyLines(t *testing.T) {
	tests := []struct {
		name string
		log  func()
		want string
	}{
		{name: "debug", log: func() { Debug("calling %s", "measure_operations") }, want: "[DEBUG] calling measure_operations\n"},
		{name: "info", log: func() { Info("%d measures", 3) }, want: "[INFO] 3 measures\n"},
		{name: "section", log: func() { Section("audit") }, want: "\n=== audit ===\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quiet := capture(t, false)
			tt.log()
			assert.Empty(t, quiet.String())

			loud := capture(t, true)
			tt.log()
			assert.Equal(t, tt.want, loud.String())
		})
	}
}

func TestWarn_AlwaysWritten(t *testing.T) {
	buf := capture(t, false)

	Warn("history unavailable: %s", "disk full")

	assert.Equal(t, "[WARN] history unavailable: disk full\n", buf.String())
}

func TestConcurrentAccess(t *testing.T) {
	capture(t, true)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			Debug("message %d", n)
		}(i)
		go func(v bool) {
			defer wg.Done()
			SetVerbose(v)
			_ = IsVerbose()
		}(i%2 == 0)
	}
	wg.Wait()
}
