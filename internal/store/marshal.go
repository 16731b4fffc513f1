package store

import (
	"fmt"

	"github.com/roach88/doclog/internal/ir"
)

// marshalDoc converts an exported record to canonical JSON TEXT, so that
// re-exporting the same query yields byte-identical rows.
func marshalDoc(doc ir.IRValue) (string, error) {
	data, err := ir.MarshalCanonical(doc)
	if err != nil {
		return "", fmt.Errorf("marshal doc: %w", err)
	}
	return string(data), nil
}
