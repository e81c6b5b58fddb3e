package domain

// SessionState is the lifecycle state of one session key.
type SessionState string

// Session states.
const (
	// SessionUninitialized means no index has been built for the key.
	SessionUninitialized SessionState = "UNINITIALIZED"

	// SessionIndexReady means the key's index is the active one and
	// questions can be answered.
	SessionIndexReady SessionState = "INDEX_READY"
)

// String returns the string representation.
func (s SessionState) String() string {
	return string(s)
}

// SessionSnapshot is a read-only view of a session for presentation.
type SessionSnapshot struct {
	ID        string
	Active    SourceKind
	Source    string
	Chunks    int
	States    map[SourceKind]SessionState
	Histories map[SourceKind][]Turn
}
