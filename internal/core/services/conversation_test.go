package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docchat/internal/core/domain"
)

const franceDoc = "Paris is the capital of France.\n\nApples grow in Normandy.\n\nRocket launches happen in French Guiana."

type harness struct {
	svc      *ConversationService
	llm      *scriptedLLM
	embedder *topicEmbedder
}

func newHarness(t *testing.T, docs map[string]string, opts ...func(*domain.AppSettings)) *harness {
	t.Helper()
	h := &harness{
		llm: &scriptedLLM{answer: func(system, question string) (string, error) {
			if strings.Contains(system, "Paris") && strings.Contains(strings.ToLower(question), "capital") {
				return "Paris", nil
			}
			return "I don't know.", nil
		}},
		embedder: &topicEmbedder{},
	}
	settings := domain.DefaultAppSettings()
	settings.Retrieval.TopK = 1
	for _, opt := range opts {
		opt(&settings)
	}
	h.svc = NewConversationService(&stubNormalisers{docs: docs}, paragraphPipeline{}, h.embedder, h.llm,
		memory.NewVectorStoreFactory(), settings)
	return h
}

func TestConversation_AnswersFromDocument(t *testing.T) {
	h := newHarness(t, map[string]string{"https://example.com/fr": franceDoc})
	sess := h.svc.NewSession()

	require.NoError(t, h.svc.SelectSource(t.Context(), sess, domain.WebSource("https://example.com/fr")))
	assert.Equal(t, domain.SessionIndexReady, sess.State(domain.SourceKindWeb))
	assert.Equal(t, domain.SourceKindWeb, sess.Active())

	ex, err := h.svc.Ask(t.Context(), sess, domain.SourceKindWeb, "What is the capital of France? Paris?")
	require.NoError(t, err)
	assert.Equal(t, "Paris", ex.Answer)
	require.Len(t, ex.Context.Chunks, 1)
	assert.Contains(t, ex.Context.Chunks[0].Chunk.Content, "Paris")

	hist := sess.History(domain.SourceKindWeb)
	require.Len(t, hist, 3)
	assert.Equal(t, domain.Turn{Role: domain.RoleAssistant, Content: domain.SeedGreeting}, hist[0])
	assert.Equal(t, domain.Turn{Role: domain.RoleHuman, Content: "What is the capital of France? Paris?"}, hist[1])
	assert.Equal(t, domain.Turn{Role: domain.RoleAssistant, Content: "Paris"}, hist[2])
}

func TestConversation_NewSessionSeeded(t *testing.T) {
	h := newHarness(t, nil)
	sess := h.svc.NewSession()
	assert.NotEmpty(t, sess.ID())
	assert.NotEqual(t, sess.ID(), h.svc.NewSession().ID())

	for _, k := range domain.AllSourceKinds() {
		assert.Equal(t, domain.SessionUninitialized, sess.State(k))
		assert.Len(t, sess.History(k), 1)
	}
	assert.Equal(t, domain.SourceKind(""), sess.Active())
}

func TestConversation_AskRequiresReadyKey(t *testing.T) {
	h := newHarness(t, map[string]string{"a.pdf": "apple pie"})
	sess := h.svc.NewSession()

	_, err := h.svc.Ask(t.Context(), sess, domain.SourceKindPDF, "anything?")
	assert.ErrorIs(t, err, domain.ErrSessionNotReady)

	require.NoError(t, h.svc.SelectSource(t.Context(), sess, domain.PDFSource("a.pdf", []byte("%PDF-"))))
	_, err = h.svc.Ask(t.Context(), sess, domain.SourceKindWord, "anything?")
	assert.ErrorIs(t, err, domain.ErrSessionNotReady)

	_, err = h.svc.Ask(t.Context(), sess, domain.SourceKindPDF, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, h.llm.callCount())
}

func TestConversation_ReselectResetsHistory(t *testing.T) {
	h := newHarness(t, map[string]string{"a.pdf": "apple pie", "b.pdf": "rocket fuel"})
	sess := h.svc.NewSession()

	require.NoError(t, h.svc.SelectSource(t.Context(), sess, domain.PDFSource("a.pdf", []byte("x"))))
	_, err := h.svc.Ask(t.Context(), sess, domain.SourceKindPDF, "apples?")
	require.NoError(t, err)
	assert.Len(t, sess.History(domain.SourceKindPDF), 3)

	require.NoError(t, h.svc.SelectSource(t.Context(), sess, domain.PDFSource("b.pdf", []byte("x"))))
	assert.Len(t, sess.History(domain.SourceKindPDF), 1)
	assert.Equal(t, "b.pdf", sess.Snapshot().Source)
}

func TestConversation_SwitchKindKeepsOtherHistory(t *testing.T) {
	h := newHarness(t, map[string]string{"https://a.test": "apple pie", "b.docx": "rocket fuel"})
	sess := h.svc.NewSession()

	require.NoError(t, h.svc.SelectSource(t.Context(), sess, domain.WebSource("https://a.test")))
	_, err := h.svc.Ask(t.Context(), sess, domain.SourceKindWeb, "apples?")
	require.NoError(t, err)

	require.NoError(t, h.svc.SelectSource(t.Context(), sess, domain.WordSource("b.docx", []byte("x"))))
	assert.Equal(t, domain.SourceKindWord, sess.Active())
	assert.Equal(t, domain.SessionIndexReady, sess.State(domain.SourceKindWord))
	assert.Equal(t, domain.SessionUninitialized, sess.State(domain.SourceKindWeb))
	assert.Len(t, sess.History(domain.SourceKindWeb), 3)

	_, err = h.svc.Ask(t.Context(), sess, domain.SourceKindWeb, "apples again?")
	assert.ErrorIs(t, err, domain.ErrSessionNotReady)
}

func TestConversation_FailedLoadKeepsPreviousIndex(t *testing.T) {
	h := newHarness(t, map[string]string{"https://a.test": "apple pie"})
	sess := h.svc.NewSession()

	require.NoError(t, h.svc.SelectSource(t.Context(), sess, domain.WebSource("https://a.test")))

	err := h.svc.SelectSource(t.Context(), sess, domain.WebSource("https://missing.test"))
	assert.ErrorIs(t, err, domain.ErrFetch)
	assert.Equal(t, domain.SourceKindWeb, sess.Active())
	assert.Equal(t, domain.SessionIndexReady, sess.State(domain.SourceKindWeb))
	assert.Equal(t, 1, sess.Snapshot().Chunks)

	err = h.svc.SelectSource(t.Context(), sess, domain.PDFSource("broken.pdf", []byte("x")))
	assert.ErrorIs(t, err, domain.ErrParse)
	assert.Equal(t, domain.SessionUninitialized, sess.State(domain.SourceKindPDF))

	_, err = h.svc.Ask(t.Context(), sess, domain.SourceKindWeb, "apples?")
	assert.NoError(t, err)
}

func TestConversation_GenerationErrorLeavesHistory(t *testing.T) {
	h := newHarness(t, map[string]string{"https://a.test": "apple pie"})
	sess := h.svc.NewSession()
	require.NoError(t, h.svc.SelectSource(t.Context(), sess, domain.WebSource("https://a.test")))

	h.llm.failAll = errors.New("service unavailable")
	_, err := h.svc.Ask(t.Context(), sess, domain.SourceKindWeb, "apples?")
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.Len(t, sess.History(domain.SourceKindWeb), 1)
}

func TestConversation_FailedAnswerLeavesHistory(t *testing.T) {
	tests := []struct {
		name    string
		opts    []func(*domain.AppSettings)
		fail    func(h *harness)
		cold    bool
		wantErr error
	}{
		{
			name: "answer generation fails",
			fail: func(h *harness) {
				h.llm.answer = func(string, string) (string, error) {
					return "", errors.New("status 401: invalid api key")
				}
			},
			wantErr: domain.ErrGeneration,
		},
		{
			name:    "query embedding fails",
			fail:    func(h *harness) { h.embedder.failQuery = errors.New("embedding endpoint down") },
			wantErr: domain.ErrEmbedding,
		},
		{
			name: "prompt exceeds context budget",
			opts: []func(*domain.AppSettings){func(s *domain.AppSettings) {
				s.Retrieval.MaxContextTokens = 5
			}},
			fail:    func(*harness) {},
			cold:    true,
			wantErr: domain.ErrContextOverflow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, map[string]string{"https://a.test": "apple pie"}, tt.opts...)
			sess := h.svc.NewSession()
			require.NoError(t, h.svc.SelectSource(t.Context(), sess, domain.WebSource("https://a.test")))

			if !tt.cold {
				_, err := h.svc.Ask(t.Context(), sess, domain.SourceKindWeb, "apples?")
				require.NoError(t, err)
			}
			before := sess.History(domain.SourceKindWeb)
			callsBefore := h.llm.callCount()

			tt.fail(h)
			_, err := h.svc.Ask(t.Context(), sess, domain.SourceKindWeb, "any apple desserts?")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, sess.History(domain.SourceKindWeb))

			// the rewrite call always succeeds, so the failure happened downstream of it
			assert.Greater(t, h.llm.callCount(), callsBefore)
		})
	}
}

func TestConversation_InvalidSourceKeepsHistory(t *testing.T) {
	h := newHarness(t, map[string]string{"a.pdf": "apple pie"})
	sess := h.svc.NewSession()
	require.NoError(t, h.svc.SelectSource(t.Context(), sess, domain.PDFSource("a.pdf", []byte("x"))))
	_, err := h.svc.Ask(t.Context(), sess, domain.SourceKindPDF, "apples?")
	require.NoError(t, err)
	before := sess.History(domain.SourceKindPDF)
	require.Len(t, before, 3)

	err = h.svc.SelectSource(t.Context(), sess, domain.PDFSource("b.pdf", nil))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, before, sess.History(domain.SourceKindPDF))
	assert.Equal(t, domain.SessionIndexReady, sess.State(domain.SourceKindPDF))

	err = h.svc.SelectSource(t.Context(), sess, domain.Source{Kind: "fax", Name: "x"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedKind)
}

func TestConversation_EmptyDocument(t *testing.T) {
	h := newHarness(t, map[string]string{"empty.docx": "  "})
	sess := h.svc.NewSession()

	require.NoError(t, h.svc.SelectSource(t.Context(), sess, domain.WordSource("empty.docx", []byte("x"))))
	ex, err := h.svc.Ask(t.Context(), sess, domain.SourceKindWord, "anything?")
	require.NoError(t, err)
	assert.True(t, ex.Context.IsEmpty())
	assert.Zero(t, h.embedder.queries)
}

func TestConversation_ResetAndClose(t *testing.T) {
	h := newHarness(t, map[string]string{"https://a.test": "apple pie"})
	sess := h.svc.NewSession()
	require.NoError(t, h.svc.SelectSource(t.Context(), sess, domain.WebSource("https://a.test")))
	_, err := h.svc.Ask(t.Context(), sess, domain.SourceKindWeb, "apples?")
	require.NoError(t, err)

	require.NoError(t, h.svc.ResetHistory(sess, domain.SourceKindWeb))
	assert.Len(t, sess.History(domain.SourceKindWeb), 1)
	assert.ErrorIs(t, h.svc.ResetHistory(sess, "fax"), domain.ErrUnsupportedKind)

	require.NoError(t, h.svc.CloseSession(sess))
	assert.Equal(t, domain.SessionUninitialized, sess.State(domain.SourceKindWeb))
	_, err = h.svc.Ask(t.Context(), sess, domain.SourceKindWeb, "apples?")
	assert.ErrorIs(t, err, domain.ErrSessionNotReady)
}

func TestConversation_SessionsAreIndependent(t *testing.T) {
	h := newHarness(t, map[string]string{"https://a.test": "apple pie"})
	a, b := h.svc.NewSession(), h.svc.NewSession()

	require.NoError(t, h.svc.SelectSource(t.Context(), a, domain.WebSource("https://a.test")))
	assert.Equal(t, domain.SessionUninitialized, b.State(domain.SourceKindWeb))

	_, err := h.svc.Ask(t.Context(), b, domain.SourceKindWeb, "apples?")
	assert.ErrorIs(t, err, domain.ErrSessionNotReady)
}
