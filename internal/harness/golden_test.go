package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/doclog/internal/ir"
)

// Regenerate golden files with:
//
//	go test ./internal/harness -run TestScenarios_Golden -update
func TestScenarios_Golden(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestSnapshot_Shape(t *testing.T) {
	result := NewResult()
	result.Outcomes = append(result.Outcomes,
		Outcome{
			Name:    "found",
			QueryID: "q1",
			Count:   1,
			Records: []ir.IRValue{ir.Partial{ir.O("z", ir.IRInt(1)), ir.O("a", ir.IRString("x"))}},
		},
		Outcome{Name: "failed", ErrorCode: "DECODE_FAILURE", ErrorLine: 4},
	)

	got, err := Snapshot("shape", result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"pass":true,"queries":[{"count":1,"name":"found","query_id":"q1","records":[{"z":1,"a":"x"}]},{"count":0,"error":"DECODE_FAILURE","line":4,"name":"failed"}],"scenario":"shape"}`,
		string(got))
}

func TestSnapshot_Deterministic(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/people.yaml")
	require.NoError(t, err)

	first, err := Run(context.Background(), s)
	require.NoError(t, err)
	second, err := Run(context.Background(), s)
	require.NoError(t, err)

	a, err := Snapshot(s.Name, first)
	require.NoError(t, err)
	b, err := Snapshot(s.Name, second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
