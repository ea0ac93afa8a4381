package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnvOverrides(t *testing.T) {
	t.Helper()
	t.Setenv("ENGINEWATCH_CONFIG", "")
	t.Setenv("ENGINEWATCH_NOTIFY_WEBHOOK", "")
	t.Setenv("ENGINEWATCH_LOG_WEBHOOK", "")
}

func TestRunMissingSettingsFile(t *testing.T) {
	clearEnvOverrides(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Settings: filepath.Join(t.TempDir(), "absent.yaml")}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunIncompleteSettings(t *testing.T) {
	clearEnvOverrides(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "E110")
}

func TestRunUnknownSettingsKey(t *testing.T) {
	clearEnvOverrides(t)

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("poll_intervall: 30s\n"), 0o644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Settings: path}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunMissingWatchConfig(t *testing.T) {
	clearEnvOverrides(t)

	dir := t.TempDir()
	settings := filepath.Join(dir, "settings.yaml")
	content := "config: " + filepath.Join(dir, "absent.json") + "\n" +
		"notify_webhook: https://discord.test/webhook\n" +
		"state_db: " + filepath.Join(dir, "state.db") + "\n"
	require.NoError(t, os.WriteFile(settings, []byte(content), 0o644))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Settings: settings}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestIsRemote(t *testing.T) {
	assert.True(t, isRemote("https://example.com/watch.json"))
	assert.True(t, isRemote("http://example.com/watch.json"))
	assert.False(t, isRemote("watch.json"))
	assert.False(t, isRemote("/etc/enginewatch/watch.json"))
}
