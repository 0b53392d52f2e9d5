package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rally/internal/config"
)

// execute runs cmd with args and stdin, returning stdout.
func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func clearRallyEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{config.EnvRules, config.EnvFormat, config.EnvLogLevel} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "rally", cmd.Use)
	assert.Contains(t, cmd.Long, "rally notation")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"parse", "validate", "replay", "session", "test"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err, "Command %s should exist", name)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("rules"))
}

func TestRootRejectsBadFormat(t *testing.T) {
	clearRallyEnv(t)
	_, err := execute(t, NewRootCommand(), "", "parse", "4s.", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootFormatFromEnvironment(t *testing.T) {
	clearRallyEnv(t)
	t.Setenv(config.EnvFormat, "json")

	out, err := execute(t, NewRootCommand(), "", "parse", "4s.")
	require.NoError(t, err)
	assert.Contains(t, out, `"Ok"`)

	// the flag wins
	out, err = execute(t, NewRootCommand(), "", "parse", "4s.", "--format", "text")
	require.NoError(t, err)
	assert.NotContains(t, out, `"Ok"`)
}

func TestRootBadEnvironment(t *testing.T) {
	clearRallyEnv(t)
	t.Setenv(config.EnvLogLevel, "shouting")

	_, err := execute(t, NewRootCommand(), "", "parse", "4s.")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootRulesFlag(t *testing.T) {
	clearRallyEnv(t)
	path := filepath.Join(t.TempDir(), "beach.cue")
	require.NoError(t, os.WriteFile(path, []byte("home_prefix: \"+\"\naway_prefix: \"-\"\n"), 0o644))

	_, err := execute(t, NewRootCommand(), "", "parse", "+4S.", "--rules", path)
	require.NoError(t, err)

	_, err = execute(t, NewRootCommand(), "", "parse", "!4S.", "--rules", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestRootMissingRulesFile(t *testing.T) {
	clearRallyEnv(t)
	_, err := execute(t, NewRootCommand(), "", "parse", "4s.", "--rules", filepath.Join(t.TempDir(), "nope.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf, log.InfoLevel, "text")
	logger.Debug("hidden")
	logger.Info("rally accepted", "winner", "home")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "rally accepted")
	assert.Contains(t, out, "winner=home")

	buf.Reset()
	NewLogger(buf, log.InfoLevel, "json").Info("set won", "set", 1)
	assert.Contains(t, buf.String(), `"msg":"set won"`)
}
