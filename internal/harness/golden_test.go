package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoldenFixtures(t *testing.T) {
	for _, name := range []string{"basic_rallies", "deciding_set", "beach_rules"} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, loadFixture(t, name)))
		})
	}
}

func TestSnapshotCanonical(t *testing.T) {
	result := NewResult()
	result.AddTrace(TraceEvent{Step: 1, Rally: "9k/", Case: "InvalidInput", Location: 0})
	result.AddTrace(TraceEvent{Step: 2, Undo: true, Case: CaseNothing})
	result.Final = FinalState{Status: "InProgress"}

	snap := NewSnapshot("tiny", result)
	data, err := snap.Canonical()
	require.NoError(t, err)

	zero := `{"points":0,"sets":0}`
	expected := `{"final":{"away":` + zero + `,"home":` + zero + `,"journal":0,"rejected":0,"status":"InProgress"},` +
		`"scenario_name":"tiny","trace":[` +
		`{"away":` + zero + `,"case":"InvalidInput","home":` + zero + `,"location":0,"rally":"9k/","step":1},` +
		`{"away":` + zero + `,"case":"Nothing","home":` + zero + `,"step":2,"undo":true}]}`
	assert.Equal(t, expected, string(data))
}

func TestSnapshotStable(t *testing.T) {
	result, err := Run(loadFixture(t, "beach_rules"))
	require.NoError(t, err)

	snap := NewSnapshot("beach_rules", result)
	a, err := snap.Canonical()
	require.NoError(t, err)
	b, err := snap.Canonical()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
