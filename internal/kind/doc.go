// Package kind classifies error values for expectation matching.
//
// A Kind is a named node in a single-parent tree held by a Hierarchy. A
// raised kind satisfies a declared kind when it is the same kind or a
// descendant of it, so declaring Index also accepts ArrayIndex:
//
//	Error
//	└── Runtime
//	    ├── Arithmetic
//	    ├── Index
//	    │   └── ArrayIndex
//	    ├── Null
//	    ├── IllegalArgument
//	    └── IllegalState
//
// Matching never relies on Go type identity or string equality of error
// messages; the hierarchy table is the single source of subtype truth.
//
// # Kind Extraction
//
// Of returns the most specific kind available for an error:
//
//   - an error in the Unwrap chain implementing ErrorKind() Kind
//   - Go runtime errors, mapped by their message (divide by zero,
//     bounds checks, nil dereference)
//   - Error for everything else
//
// OfPanic does the same for recovered panic values; non-error panic
// values are classified as Runtime.
package kind
