package domain

import "time"

// Document is the plain-text form of a source after normalisation.
// It is the only representation passed on to the chunker.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Kind is the source kind the document came from.
	Kind SourceKind

	// URI is the original location (URL or file name).
	URI string

	// Title is the human-readable title, if one could be extracted.
	Title string

	// Content is the full extracted text.
	Content string

	// Metadata contains normaliser-specific key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was normalised.
	CreatedAt time.Time
}

// Chunk is a bounded slice of a document used as the unit of
// embedding and retrieval.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Start and End are byte offsets of Content within the document text.
	Start int
	End   int

	// Embedding is the vector representation, set when indexed.
	Embedding []float32
}
