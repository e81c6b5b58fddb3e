package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

// mockSettings is an in-memory settings service.
type mockSettings struct {
	settings domain.AppSettings
	set      map[string]string
	setErr   error
	embedErr error
	llmErr   error
}

func newMockSettings() *mockSettings {
	return &mockSettings{settings: domain.DefaultAppSettings(), set: map[string]string{}}
}

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettings) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettings) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.set[key] = value
	return nil
}

func (m *mockSettings) Keys() []string {
	return []string{"llm.provider", "retrieval.top_k"}
}

func (m *mockSettings) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettings) ValidateEmbeddingConfig() error  { return m.embedErr }
func (m *mockSettings) ValidateLLMConfig() error        { return m.llmErr }

// mockSession is an in-memory session.
type mockSession struct {
	active    domain.SourceKind
	source    string
	histories map[domain.SourceKind]*domain.History
}

func (s *mockSession) ID() string                { return "cli-session" }
func (s *mockSession) Active() domain.SourceKind { return s.active }

func (s *mockSession) State(k domain.SourceKind) domain.SessionState {
	if k != "" && k == s.active {
		return domain.SessionIndexReady
	}
	return domain.SessionUninitialized
}

func (s *mockSession) History(k domain.SourceKind) []domain.Turn { return s.histories[k].Turns() }

func (s *mockSession) Snapshot() domain.SessionSnapshot {
	return domain.SessionSnapshot{ID: "cli-session", Active: s.active, Source: s.source, Chunks: 2}
}

// mockConversation answers every question with "Paris".
type mockConversation struct {
	selectErr error
	askErr    error
	loaded    []domain.Source
	asked     []string
	closed    int
}

func (m *mockConversation) NewSession() driving.Session {
	s := &mockSession{histories: map[domain.SourceKind]*domain.History{}}
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
	m.asked = append(m.asked, q)
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
		Query:    "standalone: " + q,
		Answer:   "Paris",
		Context: domain.RetrievalResult{
			Chunks: []domain.ScoredChunk{{Chunk: domain.Chunk{Content: "Paris is the capital."}, Score: 0.75}},
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

// useServices installs mocks and returns a pointer to the settings the
// factory was last called with.
func useServices(t *testing.T, settings *mockSettings, conv *mockConversation) *domain.AppSettings {
	t.Helper()
	oldSettings, oldFactory := settingsService, conversationFactory
	t.Cleanup(func() { SetServices(oldSettings, oldFactory) })

	captured := &domain.AppSettings{}
	SetServices(settings, func(_ context.Context, s domain.AppSettings) (driving.ConversationService, error) {
		*captured = s
		return conv, nil
	})
	return captured
}

// resetFlags restores every flag to its default so runs do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and stdin, returning stdout and
// stderr combined.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	var in io.Reader = strings.NewReader(stdin)
	rootCmd.SetIn(in)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
