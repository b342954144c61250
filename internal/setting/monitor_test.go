package setting_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsundberg/fakeloc/internal/setting"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMonitor_InitialValueFromChecker(t *testing.T) {
	m := setting.NewMonitor(setting.CheckerFunc(func() bool { return true }), discardLogger())
	assert.True(t, m.Enabled())

	m = setting.NewMonitor(setting.CheckerFunc(func() bool { return false }), discardLogger())
	assert.False(t, m.Enabled())
}

func TestMonitor_RefreshPublishesChanges(t *testing.T) {
	enabled := true
	m := setting.NewMonitor(setting.CheckerFunc(func() bool { return enabled }), discardLogger())

	var seen []bool
	m.Subscribe(func(v bool) { seen = append(seen, v) })

	m.Refresh() // unchanged: no notification
	enabled = false
	m.Refresh()
	m.Refresh() // unchanged again
	enabled = true
	m.Refresh()

	assert.Equal(t, []bool{false, true}, seen)
	assert.True(t, m.Enabled())
}

func TestFileChecker(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "allow_mock")
	c := setting.NewFileChecker(path)

	assert.False(t, c.Enabled(), "missing file means disabled")

	write := func(content string) {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	write("")
	assert.False(t, c.Enabled(), "empty file means disabled")

	write("0")
	assert.False(t, c.Enabled())

	write("0\n")
	assert.False(t, c.Enabled(), "whitespace is trimmed before comparison")

	write("1")
	assert.True(t, c.Enabled())

	write("yes")
	assert.True(t, c.Enabled(), "any non-zero content enables")
}
