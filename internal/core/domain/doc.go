// Package domain defines the core entities of the docchat conversation pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Source: A tagged web/pdf/word input before normalisation
//   - Document: The common plain-text form every source is normalised into
//   - Chunk: A bounded, overlapping slice of a document used for embedding
//   - History: The ordered turns of one conversation, seeded with a greeting
//   - RetrievalResult: Ranked chunks returned for a search query
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
