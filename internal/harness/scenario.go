package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/rally/internal/ir"
)

// Scenario defines a conformance test scenario: a match record, a list of
// rallies fed to a session one by one, and assertions on the outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Rules is CUE source overriding the default match rules, e.g.
	// "points_per_set: 15". Empty means the defaults.
	Rules string `yaml:"rules,omitempty"`

	// Start is the record the session begins with. Nil means a new match.
	Start *StartState `yaml:"start,omitempty"`

	// Flow contains the rallies (or undos) to submit, in order.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final record and the journal.
	Assertions []Assertion `yaml:"assertions"`

	// SessionID is an optional fixed session id. Defaults to
	// "test-session-default" so journal entry ids are reproducible.
	SessionID string `yaml:"session_id,omitempty"`
}

// StartState describes the initial record of a scenario.
type StartState struct {
	Home    TeamStart `yaml:"home"`
	Away    TeamStart `yaml:"away"`
	Serving string    `yaml:"serving,omitempty"`
	Status  string    `yaml:"status,omitempty"`
}

// TeamStart describes one team of the initial record. Players are
// registered with zero statistics.
type TeamStart struct {
	Sets    int   `yaml:"sets"`
	Points  int   `yaml:"points"`
	Players []int `yaml:"players,omitempty"`
}

// FlowStep is one submission to the session: either a rally or an undo.
type FlowStep struct {
	// Rally is the notation to submit.
	Rally string `yaml:"rally,omitempty"`

	// Undo reverts the newest accepted rally instead.
	Undo bool `yaml:"undo,omitempty"`

	// Expect specifies the expected result. If nil, no validation is
	// performed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected result of a step.
type ExpectClause struct {
	// Case is "Ok", "InvalidInput" or "WhoScored" for rallies, and
	// "Undone" or "Nothing" for undo steps.
	Case string `yaml:"case"`

	// Location is the expected failure offset. Checked only when set.
	Location *int `yaml:"location,omitempty"`
}

// Assertion validates the final record or the journal.
type Assertion struct {
	// Type specifies the assertion type:
	// - "score": points and/or sets of one side
	// - "status": match status
	// - "serving": side serving the next rally
	// - "player_stat": one statistics bucket of one player
	// - "journal_count": number of accepted rallies in the journal
	// - "rejection_count": number of refused rallies in the journal
	Type string `yaml:"type"`

	// Side is "home" or "away" (score, serving, player_stat).
	Side string `yaml:"side,omitempty"`

	// Points and Sets are the expected score (score).
	Points *int `yaml:"points,omitempty"`
	Sets   *int `yaml:"sets,omitempty"`

	// Status is the expected match status (status).
	Status string `yaml:"status,omitempty"`

	// Player and Category select the bucket (player_stat).
	Player   int    `yaml:"player,omitempty"`
	Category string `yaml:"category,omitempty"`

	// Expect contains expected bucket counters (player_stat).
	// Subset match: only "scored", "faults" and "all" keys that are
	// present are compared.
	Expect map[string]int `yaml:"expect,omitempty"`

	// Count is the expected number of journal rows (journal_count,
	// rejection_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertScore          = "score"
	AssertStatus         = "status"
	AssertServing        = "serving"
	AssertPlayerStat     = "player_stat"
	AssertJournalCount   = "journal_count"
	AssertRejectionCount = "rejection_count"
)

var (
	rallyCases = map[string]bool{CaseOk: true, string(ir.InvalidInput): true, string(ir.WhoScored): true}
	undoCases  = map[string]bool{CaseUndone: true, CaseNothing: true}
	bucketKeys = map[string]bool{"scored": true, "faults": true, "all": true}
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.Start != nil {
		if s.Start.Serving != "" && !ir.Side(s.Start.Serving).Valid() {
			return fmt.Errorf("start.serving: unknown side %q", s.Start.Serving)
		}
		if st := ir.Status(s.Start.Status); st != "" && st != ir.InProgress && st != ir.Finished {
			return fmt.Errorf("start.status: unknown status %q", s.Start.Status)
		}
	}

	for i, step := range s.Flow {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(i int, step FlowStep) error {
	switch {
	case step.Rally == "" && !step.Undo:
		return fmt.Errorf("flow[%d]: rally or undo is required", i)
	case step.Rally != "" && step.Undo:
		return fmt.Errorf("flow[%d]: rally and undo are mutually exclusive", i)
	}

	if step.Expect == nil {
		return nil
	}
	if step.Expect.Case == "" {
		return fmt.Errorf("flow[%d].expect: case is required", i)
	}
	if step.Undo && !undoCases[step.Expect.Case] {
		return fmt.Errorf("flow[%d].expect: unknown undo case %q", i, step.Expect.Case)
	}
	if !step.Undo && !rallyCases[step.Expect.Case] {
		return fmt.Errorf("flow[%d].expect: unknown rally case %q", i, step.Expect.Case)
	}
	if step.Expect.Location != nil && step.Expect.Case == CaseOk {
		return fmt.Errorf("flow[%d].expect: location only applies to failures", i)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	needSide := func() error {
		if !ir.Side(a.Side).Valid() {
			return fmt.Errorf("assertions[%d]: side must be home or away for %s", index, a.Type)
		}
		return nil
	}

	switch a.Type {
	case AssertScore:
		if err := needSide(); err != nil {
			return err
		}
		if a.Points == nil && a.Sets == nil {
			return fmt.Errorf("assertions[%d]: points or sets is required for score", index)
		}
	case AssertStatus:
		if a.Status == "" {
			return fmt.Errorf("assertions[%d]: status is required for status", index)
		}
	case AssertServing:
		return needSide()
	case AssertPlayerStat:
		if err := needSide(); err != nil {
			return err
		}
		if a.Player < 0 || a.Player > 99 {
			return fmt.Errorf("assertions[%d]: player must be 0-99", index)
		}
		if (&ir.PlayerStats{}).Bucket(ir.Category(a.Category)) == nil {
			return fmt.Errorf("assertions[%d]: unknown category %q", index, a.Category)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for player_stat", index)
		}
		for k := range a.Expect {
			if !bucketKeys[k] {
				return fmt.Errorf("assertions[%d]: unknown counter %q", index, k)
			}
		}
	case AssertJournalCount, AssertRejectionCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
