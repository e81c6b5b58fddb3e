package domain

// SeedGreeting is the assistant turn every history starts with.
const SeedGreeting = "Hello, I am a bot. How can I help you?"

// Role tags the speaker of a turn.
type Role string

// Conversation roles.
const (
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
)

// String returns the string representation.
func (r Role) String() string {
	return string(r)
}

// Turn is a single message in a conversation.
type Turn struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// History is the chronological sequence of turns for one session key.
// A History always begins with exactly one seed greeting.
type History struct {
	turns []Turn
}

// NewHistory returns a history holding only the seed greeting.
func NewHistory() *History {
	h := &History{}
	h.Reset()
	return h
}

// Reset truncates the history back to the seed greeting.
func (h *History) Reset() {
	h.turns = []Turn{{Role: RoleAssistant, Content: SeedGreeting}}
}

// Len returns the number of turns.
func (h *History) Len() int {
	return len(h.turns)
}

// Turns returns a copy of the turns in order.
func (h *History) Turns() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// AppendExchange appends a human turn followed by an assistant turn.
func (h *History) AppendExchange(question, answer string) {
	h.turns = append(h.turns,
		Turn{Role: RoleHuman, Content: question},
		Turn{Role: RoleAssistant, Content: answer},
	)
}

// Clone returns an independent copy.
func (h *History) Clone() *History {
	return &History{turns: h.Turns()}
}
