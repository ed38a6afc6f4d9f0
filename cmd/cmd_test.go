package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/inboxsummary/internal/config"
	"github.com/teemow/inboxsummary/internal/formatter"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestFormatCommand(t *testing.T) {
	out, err := execute(t, "## Points\n\n- **one**\n- two\n", "format")
	require.NoError(t, err)
	assert.Equal(t, "<h2>Points</h2><ul><li><strong>one</strong></li><li>two</li></ul>\n", out)
}

func TestFormatCommandFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.md")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o600))

	out, err := execute(t, "", "format", path)
	require.NoError(t, err)
	assert.Equal(t, "<p>plain text</p>\n", out)

	_, err = execute(t, "", "format", filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}

func TestFormatCommandStages(t *testing.T) {
	out, err := execute(t, "", "format", "--stages")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(formatter.Stages))
	assert.Equal(t, "1. "+formatter.StageHeadings, lines[0])
	assert.Equal(t, "8. "+formatter.StageLineBreaks, lines[7])
}

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "inboxsummary version 1.2.3\n", out)

	out, err = execute(t, "", "--version")
	require.NoError(t, err)
	assert.Equal(t, "inboxsummary version 1.2.3\n", out)
}

func TestLoadConfigFlags(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("INBOXSUMMARY_ACCOUNT", "")
	t.Setenv("INBOXSUMMARY_TRIGGER", "")
	t.Setenv("INBOXSUMMARY_POLL_INTERVAL", "")

	cmd, _, err := newRootCmd().Find([]string{"watch"})
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags([]string{"--account", "work", "--trigger", "star", "--interval", "90s"}))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "work", cfg.Account)
	assert.Equal(t, config.TriggerStar, cfg.Trigger)
	assert.Equal(t, "1m30s", cfg.PollInterval.String())
	assert.Equal(t, config.DefaultLabel, cfg.Label, "unset flags keep the config default")
}

func TestRunRequiresSecrets(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("RESPONSE_EMAIL", "")
	t.Setenv("INBOXSUMMARY_GEMINI_API_KEY", "")
	t.Setenv("INBOXSUMMARY_RESPONSE_EMAIL", "")

	_, err := execute(t, "", "run")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
	assert.ErrorIs(t, err, config.ErrMissingResponseEmail)
}
