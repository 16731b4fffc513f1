// Package filter defines the query expression language evaluated against
// document log records.
//
// A Filter is exactly one of three shapes:
//
//	Conditional   {"age": {"$gt": 20, "$lt": 40}, "name": {"$in": ["Ann", "Cid"]}}
//	Multi         {"$or": [{"age": {"$lt": 18}}, {"age": {"$gt": 65}}]}
//	Text          {"$text": "cat dog"}
//
// SEALED INTERFACE:
//
// Filter is sealed with a marker method so evaluators can switch over the
// three variants exhaustively. The variant is decided once, by Parse, using
// the detection order Multi ($and/$or) → Text ($text) → Conditional.
//
// Parse is strict: overlapping shapes ({"$and": ..., "$or": ...}), unknown
// reserved keys, unknown operators and operands of the wrong shape are
// rejected with *Error before any record is scanned.
//
// Conditional semantics:
//   - multiple fields are ANDed; multiple operators on one field are ANDed
//   - $eq strict equality, $gt/$lt natural ordering, $in membership
//   - an operator is "present" when its operand is non-nil
//
// SortSpec and Projection are the optional post-processing stages of a
// query. Both are ordered: a sort key list is a tie-break chain, and a
// projection emits fields in the order it names them.
package filter
