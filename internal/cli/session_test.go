package cli

import (
	"bufio"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionText(t *testing.T) {
	stdin := strings.Join([]string{
		"4s.",
		"",
		"!4S @7R",
		":history",
		":undo",
		":state",
		":bogus",
		"9k/",
		":quit",
		"4s.",
	}, "\n")

	out, err := execute(t, NewSessionCommand(&RootOptions{Format: "text"}), stdin)
	require.NoError(t, err)

	assert.Contains(t, out, "home 1-0 away (sets 0-0), home serving\n")
	assert.Contains(t, out, "home 2-0 away (sets 0-0), home serving\n")
	assert.Contains(t, out, "   1  4s.")
	assert.Contains(t, out, "   2  !4S @7R")
	assert.Contains(t, out, "undone: home 1-0 away (sets 0-0), home serving\n")
	assert.Contains(t, out, "home      0      1\n")
	assert.Contains(t, out, `unknown command ":bogus" (try :undo, :history, :state or :quit)`)
	assert.Contains(t, out, "9k/\n^\nInvalidInput: player 9 is not followed by an action code\n")

	// nothing after :quit is read
	assert.Equal(t, 1, strings.Count(out, "home 2-0 away"))
}

func TestSessionHistoryBySide(t *testing.T) {
	out, err := execute(t, NewSessionCommand(&RootOptions{Format: "text"}), "4s.\n!4S @7H\n:history away\n")
	require.NoError(t, err)
	assert.Contains(t, out, "   2  !4S @7H")
	assert.NotContains(t, out, "   1  4s.")
}

func TestSessionHistoryRange(t *testing.T) {
	out, err := execute(t, NewSessionCommand(&RootOptions{Format: "text"}),
		"4s.\n!4S @7H\n!4S @7R\n:history 2..\n:history 5..2\n")
	require.NoError(t, err)
	assert.NotContains(t, out, "   1  4s.")
	assert.Contains(t, out, "   2  !4S @7H")
	assert.Contains(t, out, "   3  !4S @7R")
	assert.Contains(t, out, `unknown command ":history 5..2"`)
}

func TestParseSeqRange(t *testing.T) {
	tests := []struct {
		in       string
		from, to int64
		ok       bool
	}{
		{"2..5", 2, 5, true},
		{"3..", 3, 0, true},
		{"4..4", 4, 4, true},
		{"0..3", 0, 0, false},
		{"5..2", 0, 0, false},
		{"..3", 0, 0, false},
		{"3", 0, 0, false},
		{"a..b", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			from, to, ok := parseSeqRange(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.from, from)
				assert.Equal(t, tt.to, to)
			}
		})
	}
}

func TestSessionUndoEmpty(t *testing.T) {
	out, err := execute(t, NewSessionCommand(&RootOptions{Format: "text"}), ":undo\n:history\n")
	require.NoError(t, err)
	assert.Equal(t, "nothing to undo\nno rallies yet\n", out)
}

func TestSessionJSONLines(t *testing.T) {
	out, err := execute(t, NewSessionCommand(&RootOptions{Format: "json"}), "4s.\n~\n:undo\n:history\n")
	require.NoError(t, err)

	var docs []map[string]json.RawMessage
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var doc map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &doc), scanner.Text())
		docs = append(docs, doc)
	}
	require.Len(t, docs, 4)

	assert.Contains(t, docs[0], "Ok")
	assert.Contains(t, docs[1], "Fail")
	assert.JSONEq(t, "true", string(docs[2]["undone"]))
	assert.JSONEq(t, `[]`, string(docs[3]["history"]))
}

func TestSessionMetrics(t *testing.T) {
	out, err := execute(t, NewSessionCommand(&RootOptions{Format: "text"}), "4s.\n!4S @7R\n9k/\n", "--metrics")
	require.NoError(t, err)
	assert.Contains(t, out, `rally_accepted_total{winner="home"} 2`)
	assert.Contains(t, out, `rally_rejected_total{reason="InvalidInput"} 1`)
	assert.Contains(t, out, "rally_actions_per_rally_count 2")
}

func TestSessionRejectsStdinState(t *testing.T) {
	_, err := execute(t, NewSessionCommand(&RootOptions{Format: "text"}), "", "--state", "-")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
