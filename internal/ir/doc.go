// Package ir provides the value model records are decoded into.
//
// This package contains value types only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - IRValue is sealed: exactly the types in value.go and partial.go implement it
//   - A nil IRValue means "field absent", IRNull means an explicit JSON null
//   - Integral numbers decode to IRInt; everything else numeric to IRFloat
//   - Order/Equal define the comparison semantics every query operator uses
package ir
