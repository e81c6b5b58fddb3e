package domain

import "errors"

// Pipeline errors. Each is terminal for the interaction that raised it.
var (
	// ErrFetch indicates a web source was unreachable or not text.
	ErrFetch = errors.New("fetch failed")

	// ErrParse indicates a malformed, corrupt or encrypted document.
	ErrParse = errors.New("parse failed")

	// ErrEmbedding indicates the embedding provider failed or returned
	// malformed vectors.
	ErrEmbedding = errors.New("embedding failed")

	// ErrGeneration indicates the language model call failed or
	// returned an empty completion.
	ErrGeneration = errors.New("generation failed")

	// ErrContextOverflow indicates the assembled prompt exceeds the
	// provider's input limit. Context is never truncated.
	ErrContextOverflow = errors.New("context exceeds model input limit")
)

// Domain errors represent business logic failures.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedKind indicates an unknown source kind.
	ErrUnsupportedKind = errors.New("unsupported source kind")

	// ErrSessionNotReady indicates a question for a key whose index is
	// not the active one.
	ErrSessionNotReady = errors.New("no document loaded for this session")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrConfigNotFound indicates no configuration store is available.
	ErrConfigNotFound = errors.New("configuration not found")
)

// UserMessage renders err as the single line shown to a user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrFetch):
		return "Could not load the web page: " + err.Error()
	case errors.Is(err, ErrParse):
		return "Could not read the document: " + err.Error()
	case errors.Is(err, ErrEmbedding):
		return "The embedding provider failed: " + err.Error()
	case errors.Is(err, ErrContextOverflow):
		return "The question and retrieved context are too long for the model. Lower top_k or chunk_size."
	case errors.Is(err, ErrGeneration):
		return "The language model failed: " + err.Error()
	case errors.Is(err, ErrSessionNotReady):
		return "Load a document for this source before asking questions."
	case errors.Is(err, ErrConfigNotFound):
		return "No configuration is available. Check that ~/.docchat is readable and writable."
	default:
		return "Error: " + err.Error()
	}
}
