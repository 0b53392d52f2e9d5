package harness

// TraceEvent records one scenario step as the session saw it.
type TraceEvent struct {
	Step     int    `json:"step"`
	Rally    string `json:"rally,omitempty"`
	Undo     bool   `json:"undo,omitempty"`
	Case     string `json:"case"` // "Ok", "InvalidInput", "WhoScored" or "Undone"/"Nothing"
	Location int    `json:"location,omitempty"`
	Home     Score  `json:"home"`
	Away     Score  `json:"away"`
}

// Score is one team's standing after a step.
type Score struct {
	Sets   int `json:"sets"`
	Points int `json:"points"`
}

// Trace event cases besides the ir.ReasonKey values.
const (
	CaseOk      = "Ok"
	CaseUndone  = "Undone"
	CaseNothing = "Nothing"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per flow step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains the failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the match record after the last step.
	Final FinalState `json:"final"`
}

// FinalState summarizes the record a scenario ended with.
type FinalState struct {
	Home     Score  `json:"home"`
	Away     Score  `json:"away"`
	Status   string `json:"status"`
	Serving  string `json:"serving,omitempty"`
	Journal  int    `json:"journal"`
	Rejected int    `json:"rejected"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step to the trace.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
