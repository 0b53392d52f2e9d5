// Package harness runs rally scenarios: YAML files that feed rallies to a
// session and assert on the resulting match record.
//
// # Scenario Format
//
//	name: deciding_set_point
//	description: "14-13 in the fifth set ends the match"
//	rules: |
//	  deciding_set_points: 15
//	start:
//	  home: { sets: 2, points: 14, players: [4] }
//	  away: { sets: 2, points: 13 }
//	  serving: home
//	flow:
//	  - rally: "!4S."
//	    expect: { case: Ok }
//	  - rally: "@9R~"
//	    expect: { case: InvalidInput, location: 0 }
//	  - undo: true
//	    expect: { case: Undone }
//	assertions:
//	  - type: status
//	    status: Finished
//	  - type: player_stat
//	    side: home
//	    player: 4
//	    category: serve
//	    expect: { scored: 1, all: 1 }
//
// # Assertion Types
//
//   - score: points and/or sets of one side
//   - status: match status
//   - serving: side serving the next rally
//   - player_stat: counters of one statistics bucket (subset match)
//   - journal_count / rejection_count: rows in the session journal
//
// # Deterministic Testing
//
// Every scenario runs with a fixed session id, a deterministic clock and
// a fresh in-memory journal, so its trace is byte-identical across runs
// and can be compared with a golden snapshot. After the flow the journal
// is replayed and every recorded state hash is checked.
package harness
