package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rally/internal/ir"
)

func writeRallies(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "match.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleMatch = `# set 1
4s.
!4S @7R

  !4S @7R @8E @9H
@7S !4R !5E !6H
`

func TestReplayText(t *testing.T) {
	out, err := execute(t, NewReplayCommand(&RootOptions{Format: "text"}), "", writeRallies(t, sampleMatch))
	require.NoError(t, err)
	assert.Contains(t, out, "4 rallies applied")
	assert.Contains(t, out, "home      0      3")
	assert.Contains(t, out, "away      0      1")
	assert.Contains(t, out, "state hash: ")
}

func TestReplayVerifyJSON(t *testing.T) {
	out, err := execute(t, NewReplayCommand(&RootOptions{Format: "json"}), "", writeRallies(t, sampleMatch), "--verify")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 4, resp.Data.Rallies)
	require.NotNil(t, resp.Data.Deterministic)
	assert.True(t, *resp.Data.Deterministic)
	assert.Equal(t, ir.MustStateHash(resp.Data.State), resp.Data.StateHash)
	assert.Nil(t, resp.Data.Failure)
}

func TestReplayStopsAtFirstFailure(t *testing.T) {
	path := writeRallies(t, "4s.\n\n   !4S5 @7R ~\n4s.\n")

	out, err := execute(t, NewReplayCommand(&RootOptions{Format: "text"}), "", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "line 3, column 13")

	assert.Contains(t, out, "✗ line 3, column 13")
	assert.Contains(t, out, "  !4S5 @7R ~\n           ^\nWhoScored:")
	assert.Contains(t, out, "1 rallies applied before the failure")
}

func TestReplayFailureJSON(t *testing.T) {
	path := writeRallies(t, "9k/\n")

	out, err := execute(t, NewReplayCommand(&RootOptions{Format: "json"}), "", path, "--verify")
	require.Error(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
		Error  *CLIError    `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Data.Failure)
	assert.Equal(t, 1, resp.Data.Failure.Line)
	assert.Equal(t, 1, resp.Data.Failure.Column)
	assert.Nil(t, resp.Data.Deterministic, "verification is skipped after a failure")
	require.NotNil(t, resp.Error)
	assert.Equal(t, "InvalidInput", resp.Error.Code)
}

func TestReplayMissingFile(t *testing.T) {
	_, err := execute(t, NewReplayCommand(&RootOptions{Format: "text"}), "", filepath.Join(t.TempDir(), "none.txt"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReadRallyLines(t *testing.T) {
	lines, err := readRallyLines(stringsReader("# c\n\n  4s.  \n\t@7S0\n"))
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, rallyLine{number: 3, indent: 2, rally: "4s."}, lines[0])
	assert.Equal(t, rallyLine{number: 4, indent: 1, rally: "@7S0"}, lines[1])
}
