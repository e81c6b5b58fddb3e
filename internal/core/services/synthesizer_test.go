package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

func retrieved(texts ...string) domain.RetrievalResult {
	r := domain.RetrievalResult{Query: "q"}
	for i, c := range chunksOf(texts...) {
		r.Chunks = append(r.Chunks, domain.ScoredChunk{Chunk: c, Score: 1 - float64(i)/10})
	}
	return r
}

func TestSynthesizer_BuildsPrompt(t *testing.T) {
	llm := &scriptedLLM{answer: func(string, string) (string, error) { return " Paris. ", nil }}
	s := NewSynthesizer(llm, SynthesizerConfig{})

	got, err := s.Synthesize(t.Context(), domain.NewHistory().Turns(), "What is the capital?", retrieved("first", "second", "first"))
	require.NoError(t, err)
	assert.Equal(t, "Paris.", got)

	msgs := llm.calls[0]
	require.Len(t, msgs, 3)
	assert.Equal(t, driven.ChatMessage{
		Role:    driven.RoleSystem,
		Content: "Answer the user's questions based on the below context:\n\nfirst\n\nsecond\n\nfirst",
	}, msgs[0])
	assert.Equal(t, domain.SeedGreeting, msgs[1].Content)
	assert.Equal(t, driven.ChatMessage{Role: driven.RoleUser, Content: "What is the capital?"}, msgs[2])
}

func TestSynthesizer_EmptyContext(t *testing.T) {
	llm := &scriptedLLM{}
	_, err := NewSynthesizer(llm, SynthesizerConfig{}).Synthesize(t.Context(), nil, "q", domain.RetrievalResult{})
	require.NoError(t, err)
	assert.Equal(t, "Answer the user's questions based on the below context:\n\n", llm.calls[0][0].Content)
}

func TestSynthesizer_CustomPrompt(t *testing.T) {
	llm := &scriptedLLM{}
	s := NewSynthesizer(llm, SynthesizerConfig{})
	s.SetPromptStore(mapPrompts{driven.PromptAnswerSystem: "Use only: {context}"})

	_, err := s.Synthesize(t.Context(), nil, "q", retrieved("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, "Use only: a\n\nb", llm.calls[0][0].Content)
}

func TestSynthesizer_ContextOverflow(t *testing.T) {
	llm := &scriptedLLM{}
	s := NewSynthesizer(llm, SynthesizerConfig{MaxContextTokens: 50})

	_, err := s.Synthesize(t.Context(), nil, "q", retrieved(strings.Repeat("x", 400)))
	assert.ErrorIs(t, err, domain.ErrContextOverflow)
	assert.Zero(t, llm.callCount())
}

func TestSynthesizer_Errors(t *testing.T) {
	_, err := NewSynthesizer(&scriptedLLM{failAll: errors.New("503")}, SynthesizerConfig{}).
		Synthesize(t.Context(), nil, "q", retrieved("a"))
	assert.ErrorIs(t, err, domain.ErrGeneration)

	empty := &scriptedLLM{answer: func(string, string) (string, error) { return "", nil }}
	_, err = NewSynthesizer(empty, SynthesizerConfig{}).Synthesize(t.Context(), nil, "q", retrieved("a"))
	assert.ErrorIs(t, err, domain.ErrGeneration)
}

func TestEstimateTokens(t *testing.T) {
	msgs := []driven.ChatMessage{{Content: "abcd"}, {Content: "éé"}}
	assert.Equal(t, 2, estimateTokens(msgs))
}
