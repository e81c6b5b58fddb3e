package domain

// ScoredChunk is a chunk paired with its similarity to the query.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// RetrievalResult holds the chunks returned for a query, ranked by
// descending similarity and bounded to top-k.
type RetrievalResult struct {
	// Query is the search text that was embedded.
	Query string

	// Chunks are ranked best first.
	Chunks []ScoredChunk
}

// IsEmpty returns true if nothing was retrieved.
func (r RetrievalResult) IsEmpty() bool {
	return len(r.Chunks) == 0
}

// Texts returns the chunk contents in ranked order.
func (r RetrievalResult) Texts() []string {
	out := make([]string, len(r.Chunks))
	for i, c := range r.Chunks {
		out[i] = c.Chunk.Content
	}
	return out
}

// Exchange is the outcome of one successful question.
type Exchange struct {
	// Question is the user's text as asked.
	Question string

	// Query is the standalone search query it was reformulated into.
	Query string

	// Answer is the synthesised response.
	Answer string

	// Context is what the answer was grounded on.
	Context RetrievalResult
}
