package driving

import (
	"context"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// Session is a caller-owned conversation handle. It holds one history per
// source kind and at most one active index. Sessions share no state.
type Session interface {
	// ID returns the session identifier.
	ID() string

	// Active returns the kind whose index is loaded, or "" if none.
	Active() domain.SourceKind

	// State returns the lifecycle state of the kind's session key.
	State(kind domain.SourceKind) domain.SessionState

	// History returns a copy of the kind's turns.
	History(kind domain.SourceKind) []domain.Turn

	// Snapshot returns a read-only view of the whole session.
	Snapshot() domain.SessionSnapshot
}

// ConversationService orchestrates source loading and question answering.
type ConversationService interface {
	// NewSession creates an empty session with seeded histories.
	NewSession() Session

	// SelectSource resets the kind's history, then normalises, chunks and
	// indexes src. On success the new index becomes the active one.
	SelectSource(ctx context.Context, session Session, src domain.Source) error

	// Ask answers question against the active index of kind and appends the
	// exchange to its history. On error the history is unchanged.
	Ask(ctx context.Context, session Session, kind domain.SourceKind, question string) (*domain.Exchange, error)

	// ResetHistory truncates the kind's history to the seed greeting.
	ResetHistory(session Session, kind domain.SourceKind) error

	// CloseSession releases the session's index.
	CloseSession(session Session) error
}
