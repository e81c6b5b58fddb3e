package driven

// SessionStore keeps caller-owned sessions addressable by ID for front ends
// that outlive a single request. The type parameter avoids a dependency on
// the services package.
type SessionStore[T any] interface {
	// Put stores a session under id.
	Put(id string, session T)

	// Get returns the session for id, or false.
	Get(id string) (T, bool)

	// Delete removes the session, returning whether it existed.
	Delete(id string) bool

	// IDs returns the stored session IDs in creation order.
	IDs() []string
}
