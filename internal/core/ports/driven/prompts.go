package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptQueryReformulate is the instruction appended after the history
	// and question to request a standalone search query. No placeholders.
	PromptQueryReformulate = "query_reformulate"

	// PromptAnswerSystem is the system turn for answer synthesis.
	// It expects a single {context} placeholder.
	PromptAnswerSystem = "answer_system"
)

// ContextPlaceholder is replaced with the retrieved context in PromptAnswerSystem.
const ContextPlaceholder = "{context}"

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service uses its built-in defaults.
	SetPromptStore(store PromptStore)
}
