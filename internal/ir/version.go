package ir

// Version constants for the state shape and the engine.
const (
	// StateVersion is the MatchState shape version. A state without a
	// version is read as this one.
	StateVersion = "1"

	// EngineVersion is the rally engine version.
	EngineVersion = "0.1.0"
)
