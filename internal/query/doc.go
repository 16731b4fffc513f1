// Package query evaluates filters against the document log.
//
// An Engine is built once per record type T from a log Source, a Schema
// describing the addressable fields of T and a payload decoder. Every call to
// Find or Count is an independent full scan:
//
//	read log → decode visible records → filter → sort? → project?
//
// The engine holds no state between calls, so concurrent queries never
// interfere; each one pays the full read and scan.
//
// Filters are compiled once per query. Field accessors are resolved through
// the schema and text-search patterns are built before the scan begins, so the
// per-record loop does no lookups or regexp compilation.
//
// # Operand presence
//
// By default an operator applies whenever it is present in the filter, so
// {"count": {"$eq": 0}} selects records whose count is zero. WithOperandMode
// (OperandTruthy) restores the compatibility behavior where operators whose
// operand is falsy (0, "", false, null) are skipped entirely.
package query
