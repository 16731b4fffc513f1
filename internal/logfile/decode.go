package logfile

import (
	"bytes"
	"fmt"
)

// Exists is the marker byte of a visible line.
const Exists byte = 'E'

// Line is one visible log line.
type Line struct {
	// Number is the 1-based physical line number.
	Number int

	// Payload is every byte after the marker. It aliases the content
	// passed to Lines.
	Payload []byte
}

// DecodeError reports a visible line whose payload could not be decoded.
type DecodeError struct {
	Line int
	Err  error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode line %d: %v", e.Line, e.Err)
}

// Unwrap returns the codec error.
func (e *DecodeError) Unwrap() error { return e.Err }

// Stats counts what a decode pass saw.
type Stats struct {
	// Lines is the number of physical lines, including skipped ones.
	Lines int

	// Visible is the number of lines carrying the Exists marker.
	Visible int
}

// Lines splits content on '\n' and returns the visible lines in log order.
// A final line without a trailing newline is still read.
func Lines(content []byte) ([]Line, Stats) {
	var (
		lines []Line
		stats Stats
	)
	for len(content) > 0 {
		stats.Lines++
		raw := content
		if i := bytes.IndexByte(content, '\n'); i >= 0 {
			raw, content = content[:i], content[i+1:]
		} else {
			content = nil
		}
		if len(raw) == 0 || raw[0] != Exists {
			continue
		}
		stats.Visible++
		lines = append(lines, Line{Number: stats.Lines, Payload: raw[1:]})
	}
	return lines, stats
}

// Decode returns the visible records of content in log order. The first
// payload that fails to decode aborts the pass; no partial result is
// returned.
func Decode[T any](content []byte, decode func([]byte) (T, error)) ([]T, Stats, error) {
	lines, stats := Lines(content)

	records := make([]T, 0, len(lines))
	for _, line := range lines {
		rec, err := decode(line.Payload)
		if err != nil {
			return nil, stats, &DecodeError{Line: line.Number, Err: err}
		}
		records = append(records, rec)
	}
	return records, stats, nil
}
