package harness

import (
	"fmt"

	"github.com/roach88/doclog/internal/ir"
)

// ExpectError describes one mismatch between an expect clause and an outcome.
type ExpectError struct {
	// Field is the expect clause field that failed: records, count, error or line.
	Field    string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *ExpectError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Field, e.Expected, e.Actual)
}

// checkExpect returns a message for every way outcome differs from e.
func checkExpect(e *ExpectClause, outcome Outcome) []string {
	var errs []error
	if e.Error != "" {
		if outcome.ErrorCode != e.Error {
			errs = append(errs, &ExpectError{Field: "error", Expected: e.Error, Actual: describeCode(outcome.ErrorCode)})
		}
		if e.Line != 0 && outcome.ErrorLine != e.Line {
			errs = append(errs, &ExpectError{
				Field:    "line",
				Expected: fmt.Sprintf("%d", e.Line),
				Actual:   fmt.Sprintf("%d", outcome.ErrorLine),
			})
		}
		return messages(errs)
	}

	if outcome.ErrorCode != "" {
		errs = append(errs, &ExpectError{Field: "error", Expected: "success", Actual: outcome.ErrorCode})
		return messages(errs)
	}
	if e.Count != nil && outcome.Count != *e.Count {
		errs = append(errs, &ExpectError{
			Field:    "count",
			Expected: fmt.Sprintf("%d", *e.Count),
			Actual:   fmt.Sprintf("%d", outcome.Count),
		})
	}
	if e.Records != nil {
		if err := checkRecords(e.Records, outcome.Records); err != nil {
			errs = append(errs, err)
		}
	}
	return messages(errs)
}

// checkRecords compares expected and actual records in order. Partial
// records compare by content; field order is covered by golden files.
func checkRecords(expected []any, actual []ir.IRValue) error {
	want := make(ir.IRArray, len(expected))
	for i, raw := range expected {
		v, err := ir.FromGo(raw)
		if err != nil {
			return &ExpectError{Field: fmt.Sprintf("records[%d]", i), Expected: "a valid value", Actual: err.Error()}
		}
		want[i] = v
	}

	got := make(ir.IRArray, len(actual))
	for i, rec := range actual {
		if p, ok := rec.(ir.Partial); ok {
			got[i] = p.Object()
			continue
		}
		got[i] = rec
	}

	if ir.Equal(want, got) {
		return nil
	}
	return &ExpectError{Field: "records", Expected: render(want), Actual: render(got)}
}

func messages(errs []error) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}

func describeCode(code string) string {
	if code == "" {
		return "success"
	}
	return code
}

func render(v ir.IRValue) string {
	b, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(b)
}
