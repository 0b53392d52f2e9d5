package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/rally/internal/ir"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
	Final        FinalState   `json:"final"`
}

// NewSnapshot builds the snapshot of a scenario result.
func NewSnapshot(name string, result *Result) TraceSnapshot {
	return TraceSnapshot{
		ScenarioName: name,
		Trace:        result.Trace,
		Final:        result.Final,
	}
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles IR types and primitives.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"step": event.Step,
			"case": event.Case,
			"home": scoreMap(event.Home),
			"away": scoreMap(event.Away),
		}
		if event.Rally != "" {
			eventMap["rally"] = event.Rally
		}
		if event.Undo {
			eventMap["undo"] = true
		}
		if event.Case == string(ir.InvalidInput) || event.Case == string(ir.WhoScored) {
			eventMap["location"] = event.Location
		}
		traceList[i] = eventMap
	}

	final := map[string]any{
		"home":     scoreMap(s.Final.Home),
		"away":     scoreMap(s.Final.Away),
		"status":   s.Final.Status,
		"journal":  s.Final.Journal,
		"rejected": s.Final.Rejected,
	}
	if s.Final.Serving != "" {
		final["serving"] = s.Final.Serving
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
		"final":         final,
	}
}

func scoreMap(s Score) map[string]any {
	return map[string]any{"sets": s.Sets, "points": s.Points}
}

// Canonical returns the snapshot as canonical JSON.
func (s *TraceSnapshot) Canonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := NewSnapshot(scenarioName, result)
	traceJSON, err := snapshot.Canonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
