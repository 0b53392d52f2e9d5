package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"facette.io/natsort"

	"github.com/roach88/rally/internal/ir"
)

// decodeState accepts a bare match record or a ParseResult with an Ok
// record, so the JSON output of one command can feed the next.
func decodeState(data []byte) (ir.MatchState, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return ir.MatchState{}, err
	}

	if raw, ok := probe["Ok"]; ok {
		data = raw
	} else if _, ok := probe["Fail"]; ok {
		return ir.MatchState{}, fmt.Errorf("input is a failed result, not a match record")
	}

	var state ir.MatchState
	if err := json.Unmarshal(data, &state); err != nil {
		return ir.MatchState{}, err
	}
	return state.Clone(), nil
}

// renderScoreboard writes the score and per-player statistics.
func renderScoreboard(w io.Writer, state ir.MatchState) {
	fmt.Fprintf(w, "%-6s %4s %6s\n", "", "sets", "points")
	fmt.Fprintf(w, "%-6s %4d %6d\n", ir.Home, state.HomeTeam.Sets, state.HomeTeam.Points)
	fmt.Fprintf(w, "%-6s %4d %6d\n", ir.Away, state.AwayTeam.Sets, state.AwayTeam.Points)

	status := state.Status
	if status == "" {
		status = ir.InProgress
	}
	fmt.Fprintf(w, "status: %s", status)
	if state.Serving != "" {
		fmt.Fprintf(w, "  serving: %s", state.Serving)
	}
	fmt.Fprintln(w)

	for _, side := range []ir.Side{ir.Home, ir.Away} {
		renderPlayers(w, side, state.Team(side))
	}
}

// renderPlayers lists a team's players in natural number order, with the
// buckets that saw any action as scored/faults/all.
func renderPlayers(w io.Writer, side ir.Side, team ir.TeamState) {
	if len(team.PlayerStats) == 0 {
		return
	}

	numbers := make([]string, 0, len(team.PlayerStats))
	for n := range team.PlayerStats {
		numbers = append(numbers, strconv.Itoa(n))
	}
	natsort.Sort(numbers)

	fmt.Fprintf(w, "\n%s players\n", side)
	for _, s := range numbers {
		n, _ := strconv.Atoi(s)
		ps := team.PlayerStats[n]

		var parts []string
		for _, c := range ir.Categories {
			b := ps.Bucket(c)
			if b.All == 0 {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s %d/%d/%d", c, b.Scored, b.Faults, b.All))
		}
		if len(parts) == 0 {
			parts = append(parts, "-")
		}
		fmt.Fprintf(w, "  #%-3d %s\n", n, strings.Join(parts, "  "))
	}
}

// scoreLine is the one-line score used by the session command.
func scoreLine(state ir.MatchState) string {
	line := fmt.Sprintf("home %d-%d away (sets %d-%d)",
		state.HomeTeam.Points, state.AwayTeam.Points,
		state.HomeTeam.Sets, state.AwayTeam.Sets)
	if state.IsFinished() {
		line += " final"
	} else if state.Serving != "" {
		line += ", " + string(state.Serving) + " serving"
	}
	return line
}

// renderReason writes the rally with a caret under the failing offset.
// indent is the number of columns before the rally text.
func renderReason(w io.Writer, rally string, r *ir.Reason, indent int) {
	fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", indent), rally)
	fmt.Fprintf(w, "%s^\n", strings.Repeat(" ", indent+caretColumn(rally, r.Location)))
	fmt.Fprintf(w, "%s: %s\n", r.Key, r.ErrorMsg)
}

// caretColumn clamps a byte offset to the rally; offsets at the end point
// one past the last character.
func caretColumn(rally string, location int) int {
	switch {
	case location < 0:
		return 0
	case location > len(rally):
		return len(rally)
	default:
		return location
	}
}

// reasonError converts a rally rejection to the JSON error shape.
func reasonError(r *ir.Reason) CLIError {
	loc := r.Location
	return CLIError{
		Code:     string(r.Key),
		Message:  r.ErrorMsg,
		Location: &loc,
	}
}
