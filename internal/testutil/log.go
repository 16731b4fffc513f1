// Package testutil builds document log fixtures for tests.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/doclog/internal/logfile"
)

// TombstoneMarker is the marker fixtures use for invisible lines. Any byte
// other than logfile.Exists behaves the same.
const TombstoneMarker byte = 'X'

// LogBuilder assembles log content line by line.
//
//	log := testutil.NewLog().
//		Live(`{"name":"Ann","age":30}`).
//		Dead(`{"name":"Bob","age":25}`)
type LogBuilder struct {
	buf bytes.Buffer
}

// NewLog creates an empty log.
func NewLog() *LogBuilder {
	return &LogBuilder{}
}

// Live appends a visible record.
func (b *LogBuilder) Live(payload string) *LogBuilder {
	return b.Marked(logfile.Exists, payload)
}

// Dead appends a tombstoned record.
func (b *LogBuilder) Dead(payload string) *LogBuilder {
	return b.Marked(TombstoneMarker, payload)
}

// Marked appends a record with an explicit marker byte.
func (b *LogBuilder) Marked(marker byte, payload string) *LogBuilder {
	b.buf.WriteByte(marker)
	b.buf.WriteString(payload)
	b.buf.WriteByte('\n')
	return b
}

// Blank appends an empty line.
func (b *LogBuilder) Blank() *LogBuilder {
	b.buf.WriteByte('\n')
	return b
}

// Raw appends text verbatim, with no newline added.
func (b *LogBuilder) Raw(text string) *LogBuilder {
	b.buf.WriteString(text)
	return b
}

// Bytes returns a copy of the content.
func (b *LogBuilder) Bytes() []byte {
	return bytes.Clone(b.buf.Bytes())
}

// String returns the content.
func (b *LogBuilder) String() string {
	return b.buf.String()
}

// Source returns an in-memory source over a snapshot of the content.
func (b *LogBuilder) Source() logfile.BytesSource {
	return logfile.BytesSource{Label: "fixture", Data: b.Bytes()}
}

// WriteFile writes the content to name inside a fresh t.TempDir and returns
// the path.
func (b *LogBuilder) WriteFile(t testing.TB, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, b.buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write log fixture: %v", err)
	}
	return path
}

// People is the three-line log used across query tests: Ann and Cid are
// visible, Bob is tombstoned.
func People() *LogBuilder {
	return NewLog().
		Live(`{"name":"Ann","age":30}`).
		Dead(`{"name":"Bob","age":25}`).
		Live(`{"name":"Cid","age":25}`)
}
