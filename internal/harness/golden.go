package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/doclog/internal/ir"
)

// Snapshot renders a result as canonical JSON for golden comparison.
//
// Records keep their result order and partial records keep their projected
// field order, so a golden file pins down sort and projection behavior that
// an expect clause cannot express. Failed steps record their error code and,
// for decode failures, the offending line.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	queries := make(ir.IRArray, len(result.Outcomes))
	for i, o := range result.Outcomes {
		entry := ir.IRObject{
			"name":  ir.IRString(o.Name),
			"count": ir.IRInt(o.Count),
		}
		if o.QueryID != "" {
			entry["query_id"] = ir.IRString(o.QueryID)
		}
		if o.Records != nil {
			entry["records"] = ir.IRArray(o.Records)
		}
		if o.ErrorCode != "" {
			entry["error"] = ir.IRString(o.ErrorCode)
		}
		if o.ErrorLine != 0 {
			entry["line"] = ir.IRInt(o.ErrorLine)
		}
		queries[i] = entry
	}

	return ir.MarshalCanonical(ir.IRObject{
		"scenario": ir.IRString(scenarioName),
		"pass":     ir.IRBool(result.Pass),
		"queries":  queries,
	})
}

// RunWithGolden runs scenario and compares its snapshot against
// testdata/golden/<name>.golden.
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match the golden
// file. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already computed result against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, snapshot)
	return nil
}
