package testutil

// FixedIDGenerator returns the same query id every time.
//
// This keeps golden output byte-identical across runs. Unlike
// query.FixedGenerator, which returns ids in sequence and panics when they
// run out, it can serve any number of queries.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a generator for id. If id is empty, Generate
// returns "test-query-default".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-query-default"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed id.
//
// Implements query.IDGenerator.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
