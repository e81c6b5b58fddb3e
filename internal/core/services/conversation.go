package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/logger"
)

// Ensure ConversationService implements the interface.
var _ driving.ConversationService = (*ConversationService)(nil)

// Ensure Session implements the interface.
var _ driving.Session = (*Session)(nil)

// ConversationService wires normalisation, chunking, indexing, retrieval
// and synthesis into question answering over one loaded source.
type ConversationService struct {
	normalisers driven.NormaliserRegistry
	pipeline    driven.PostProcessorPipeline
	indexer     *Indexer
	retriever   *Retriever
	synthesizer *Synthesizer
	reformer    *Reformulator
	topK        int
}

// NewConversationService creates the orchestrator from its providers and
// the retrieval and LLM settings.
func NewConversationService(
	normalisers driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	stores driven.VectorStoreFactory,
	settings domain.AppSettings,
) *ConversationService {
	timeout := settings.Retrieval.ProviderTimeout
	reformer := NewReformulator(llm, timeout)

	return &ConversationService{
		normalisers: normalisers,
		pipeline:    pipeline,
		indexer: NewIndexer(embedder, stores, IndexerConfig{
			DefaultK: settings.Retrieval.TopK,
			Timeout:  timeout,
		}),
		retriever: NewRetriever(reformer),
		synthesizer: NewSynthesizer(llm, SynthesizerConfig{
			MaxContextTokens: settings.Retrieval.MaxContextTokens,
			Temperature:      settings.LLM.Temperature,
			Timeout:          timeout,
		}),
		reformer: reformer,
		topK:     settings.Retrieval.TopK,
	}
}

// SetPromptStore routes prompt loading through store.
func (c *ConversationService) SetPromptStore(store driven.PromptStore) {
	c.reformer.SetPromptStore(store)
	c.synthesizer.SetPromptStore(store)
}

// NewSession creates a session with a seeded history for every source kind.
func (c *ConversationService) NewSession() driving.Session {
	return newSession()
}

// SelectSource loads src as the session's active source.
func (c *ConversationService) SelectSource(ctx context.Context, s driving.Session, src domain.Source) error {
	sess, err := asSession(s)
	if err != nil {
		return err
	}
	if err := src.Validate(); err != nil {
		return err
	}

	sess.op.Lock()
	defer sess.op.Unlock()

	logger.Section("Load Source")
	logger.Info("loading %s source %q", src.Kind, src.Name)

	sess.mu.Lock()
	sess.histories[src.Kind].Reset()
	sess.mu.Unlock()

	index, name, err := c.build(ctx, src)
	if err != nil {
		logger.Warn("load %s failed: %v", src.Kind, err)
		return err
	}

	sess.mu.Lock()
	old := sess.index
	for k, state := range sess.states {
		if state == domain.SessionIndexReady {
			sess.states[k] = domain.SessionUninitialized
		}
	}
	sess.index = index
	sess.active = src.Kind
	sess.source = name
	sess.states[src.Kind] = domain.SessionIndexReady
	sess.mu.Unlock()

	if err := old.Close(); err != nil {
		logger.Warn("close previous index: %v", err)
	}
	logger.Info("%s ready: %d chunks", src.Kind, index.Len())
	return nil
}

func (c *ConversationService) build(ctx context.Context, src domain.Source) (*Index, string, error) {
	result, err := c.normalisers.Normalise(ctx, src)
	if err != nil {
		return nil, "", err
	}
	doc := result.Document

	chunks, err := c.pipeline.Process(ctx, &doc)
	if err != nil {
		return nil, "", fmt.Errorf("chunk document: %w", err)
	}
	logger.Debug("chunked %q into %d chunks", src.Name, len(chunks))

	index, err := c.indexer.Build(ctx, chunks)
	if err != nil {
		return nil, "", err
	}

	name := doc.Title
	if name == "" {
		name = src.Name
	}
	return index, name, nil
}

// Ask answers question against the session's index for kind.
func (c *ConversationService) Ask(
	ctx context.Context, s driving.Session, kind domain.SourceKind, question string,
) (*domain.Exchange, error) {
	sess, err := asSession(s)
	if err != nil {
		return nil, err
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	sess.op.Lock()
	defer sess.op.Unlock()

	sess.mu.RLock()
	ready := sess.active == kind && sess.states[kind] == domain.SessionIndexReady && sess.index != nil
	index := sess.index
	var history []domain.Turn
	if h, ok := sess.histories[kind]; ok {
		history = h.Turns()
	}
	sess.mu.RUnlock()
	if !ready {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotReady, kind.SessionKey())
	}

	logger.Section("Answer Question")
	defer logger.Timed("ask " + kind.String())()

	retrieved, err := c.retriever.Retrieve(ctx, index, history, question, c.topK)
	if err != nil {
		return nil, err
	}
	logger.Debug("retrieved %d chunks for %q", len(retrieved.Chunks), retrieved.Query)

	answer, err := c.synthesizer.Synthesize(ctx, history, question, retrieved)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	sess.histories[kind].AppendExchange(question, answer)
	sess.mu.Unlock()

	return &domain.Exchange{
		Question: question,
		Query:    retrieved.Query,
		Answer:   answer,
		Context:  retrieved,
	}, nil
}

// ResetHistory truncates the kind's history to the seed greeting.
func (c *ConversationService) ResetHistory(s driving.Session, kind domain.SourceKind) error {
	sess, err := asSession(s)
	if err != nil {
		return err
	}
	if !kind.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedKind, kind)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.histories[kind].Reset()
	return nil
}

// CloseSession releases the session's index. Histories are kept.
func (c *ConversationService) CloseSession(s driving.Session) error {
	sess, err := asSession(s)
	if err != nil {
		return err
	}

	sess.op.Lock()
	defer sess.op.Unlock()
	sess.mu.Lock()
	defer sess.mu.Unlock()

	for k := range sess.states {
		sess.states[k] = domain.SessionUninitialized
	}
	err = sess.index.Close()
	sess.index = nil
	sess.active = ""
	sess.source = ""
	return err
}

func asSession(s driving.Session) (*Session, error) {
	sess, ok := s.(*Session)
	if !ok || sess == nil {
		return nil, fmt.Errorf("%w: session not created by this service", domain.ErrInvalidInput)
	}
	return sess, nil
}

// Session holds the per-kind histories and the active index of one user.
// op serialises loads and questions; mu guards the fields below it.
type Session struct {
	id string
	op sync.Mutex

	mu        sync.RWMutex
	histories map[domain.SourceKind]*domain.History
	states    map[domain.SourceKind]domain.SessionState
	active    domain.SourceKind
	source    string
	index     *Index
}

func newSession() *Session {
	s := &Session{
		id:        uuid.NewString(),
		histories: make(map[domain.SourceKind]*domain.History),
		states:    make(map[domain.SourceKind]domain.SessionState),
	}
	for _, k := range domain.AllSourceKinds() {
		s.histories[k] = domain.NewHistory()
		s.states[k] = domain.SessionUninitialized
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Active returns the kind whose index is loaded, or "".
func (s *Session) Active() domain.SourceKind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// State returns the lifecycle state of kind.
func (s *Session) State(kind domain.SourceKind) domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if state, ok := s.states[kind]; ok {
		return state
	}
	return domain.SessionUninitialized
}

// History returns a copy of kind's turns.
func (s *Session) History(kind domain.SourceKind) []domain.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if h, ok := s.histories[kind]; ok {
		return h.Turns()
	}
	return nil
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() domain.SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := domain.SessionSnapshot{
		ID:        s.id,
		Active:    s.active,
		Source:    s.source,
		Chunks:    s.index.Len(),
		States:    make(map[domain.SourceKind]domain.SessionState, len(s.states)),
		Histories: make(map[domain.SourceKind][]domain.Turn, len(s.histories)),
	}
	for k, state := range s.states {
		snap.States[k] = state
	}
	for k, h := range s.histories {
		snap.Histories[k] = h.Turns()
	}
	return snap
}
