package mcp

import (
	"context"
	"strconv"

	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

// mockSession is an in-memory session with one history per kind.
type mockSession struct {
	id        string
	active    domain.SourceKind
	source    string
	histories map[domain.SourceKind]*domain.History
}

func (s *mockSession) ID() string                { return s.id }
func (s *mockSession) Active() domain.SourceKind { return s.active }

func (s *mockSession) State(k domain.SourceKind) domain.SessionState {
	if k != "" && k == s.active {
		return domain.SessionIndexReady
	}
	return domain.SessionUninitialized
}

func (s *mockSession) History(k domain.SourceKind) []domain.Turn { return s.histories[k].Turns() }

func (s *mockSession) Snapshot() domain.SessionSnapshot {
	snap := domain.SessionSnapshot{
		ID:        s.id,
		Active:    s.active,
		Source:    s.source,
		States:    map[domain.SourceKind]domain.SessionState{},
		Histories: map[domain.SourceKind][]domain.Turn{},
	}
	if s.active != "" {
		snap.Chunks = 3
	}
	for k, h := range s.histories {
		snap.States[k] = s.State(k)
		snap.Histories[k] = h.Turns()
	}
	return snap
}

// mockConversation is a scripted conversation service.
type mockConversation struct {
	created   int
	closed    int
	selectErr error
	askErr    error
	loaded    []domain.Source
}

func (m *mockConversation) NewSession() driving.Session {
	m.created++
	s := &mockSession{
		id:        "session-" + strconv.Itoa(m.created),
		histories: map[domain.SourceKind]*domain.History{},
	}
	for _, k := range domain.AllSourceKinds() {
		s.histories[k] = domain.NewHistory()
	}
	return s
}

func (m *mockConversation) SelectSource(_ context.Context, s driving.Session, src domain.Source) error {
	m.loaded = append(m.loaded, src)
	if m.selectErr != nil {
		return m.selectErr
	}
	sess := s.(*mockSession)
	sess.histories[src.Kind].Reset()
	sess.active = src.Kind
	sess.source = src.Name
	return nil
}

func (m *mockConversation) Ask(
	_ context.Context, s driving.Session, kind domain.SourceKind, q string,
) (*domain.Exchange, error) {
	if m.askErr != nil {
		return nil, m.askErr
	}
	sess := s.(*mockSession)
	if kind != sess.active {
		return nil, domain.ErrSessionNotReady
	}
	sess.histories[kind].AppendExchange(q, "Paris")
	return &domain.Exchange{
		Question: q,
		Query:    q,
		Answer:   "Paris",
		Context: domain.RetrievalResult{
			Query:  q,
			Chunks: []domain.ScoredChunk{{Chunk: domain.Chunk{Content: "Paris is the capital."}, Score: 0.9}},
		},
	}, nil
}

func (m *mockConversation) ResetHistory(s driving.Session, kind domain.SourceKind) error {
	s.(*mockSession).histories[kind].Reset()
	return nil
}

func (m *mockConversation) CloseSession(driving.Session) error {
	m.closed++
	return nil
}

func newTestServer(conv *mockConversation) (*Server, error) {
	return NewServer(&Ports{
		Conversation: conv,
		Sessions:     memory.NewSessionStore[driving.Session](),
	})
}
