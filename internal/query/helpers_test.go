package query

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/doclog/internal/filter"
	"github.com/roach88/doclog/internal/ir"
	"github.com/roach88/doclog/internal/logfile"
	"github.com/roach88/doclog/internal/testutil"
)

func newDocEngine(t *testing.T, log *testutil.LogBuilder, opts ...Option) *Engine[ir.IRObject] {
	t.Helper()
	e, err := NewDocumentEngine(log.Source(), opts...)
	require.NoError(t, err)
	return e
}

func mustParse(t *testing.T, js string) filter.Filter {
	t.Helper()
	f, err := filter.ParseJSON([]byte(js))
	require.NoError(t, err)
	return f
}

func mustDoc(t *testing.T, js string) ir.IRObject {
	t.Helper()
	doc, err := DecodeDocument([]byte(js))
	require.NoError(t, err)
	return doc
}

// canonical renders each value as one canonical JSON string.
func canonical[V ir.IRValue](t *testing.T, values []V) []string {
	t.Helper()
	out := make([]string, len(values))
	for i, v := range values {
		b, err := ir.MarshalCanonical(v)
		require.NoError(t, err)
		out[i] = string(b)
	}
	return out
}

// findCanonical runs a document query and returns canonical records.
func findCanonical(t *testing.T, e *Engine[ir.IRObject], js string, opts ...FindOption) []string {
	t.Helper()
	res, err := e.Find(context.Background(), mustParse(t, js), opts...)
	require.NoError(t, err)
	if res.Projected() {
		return canonical(t, res.Partials)
	}
	return canonical(t, res.Records)
}

// countingSource counts reads of the wrapped source.
type countingSource struct {
	logfile.Source
	reads int
}

func (c *countingSource) ReadAll(ctx context.Context) ([]byte, error) {
	c.reads++
	return c.Source.ReadAll(ctx)
}

type person struct {
	Name string  `json:"name"`
	Age  int     `json:"age"`
	Bio  string  `json:"bio"`
	Nick *string `json:"nick"`
}

// mustSchema is NewSchema for package-level test schemas.
func mustSchema[T any](fields ...Field[T]) *Schema[T] {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

var personSchema = mustSchema(
	String("name", func(p person) string { return p.Name }),
	Int("age", func(p person) int64 { return int64(p.Age) }),
	String("bio", func(p person) string { return p.Bio }),
	Value("nick", func(p person) ir.IRValue {
		if p.Nick == nil {
			return nil
		}
		return ir.IRString(*p.Nick)
	}),
)

func newPersonEngine(t *testing.T, log *testutil.LogBuilder, opts ...Option) *Engine[person] {
	t.Helper()
	e, err := New(log.Source(), personSchema, JSONDecoder[person](), opts...)
	require.NoError(t, err)
	return e
}

func names(people []person) []string {
	out := make([]string, len(people))
	for i, p := range people {
		out[i] = p.Name
	}
	return out
}

type fakeRecorder struct {
	completed []string
	failed    []string
	matched   int
}

func (r *fakeRecorder) QueryCompleted(shape string, _, _, matched int, _ time.Duration) {
	r.completed = append(r.completed, shape)
	r.matched += matched
}

func (r *fakeRecorder) QueryFailed(shape, code string) {
	r.failed = append(r.failed, shape+":"+code)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
