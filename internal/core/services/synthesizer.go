package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/logger"
)

// Ensure Synthesizer can use custom prompts.
var _ driven.PromptStoreAware = (*Synthesizer)(nil)

// contextSeparator joins retrieved chunk texts.
const contextSeparator = "\n\n"

// SynthesizerConfig tunes answer generation.
type SynthesizerConfig struct {
	// MaxContextTokens is the estimated prompt budget. Zero disables the check.
	MaxContextTokens int

	// Temperature is passed to the provider. Zero uses the provider default.
	Temperature float64

	// Timeout bounds the model call. Zero means no extra bound.
	Timeout time.Duration
}

// Synthesizer answers a question from retrieved context and history.
type Synthesizer struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	cfg     SynthesizerConfig
}

// NewSynthesizer creates a synthesizer backed by llm.
func NewSynthesizer(llm driven.LLMService, cfg SynthesizerConfig) *Synthesizer {
	return &Synthesizer{llm: llm, cfg: cfg}
}

// SetPromptStore sets the store the system prompt is loaded from.
func (s *Synthesizer) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Synthesize produces an answer grounded on retrieved.
// Context is never truncated; an oversized prompt fails with ErrContextOverflow.
func (s *Synthesizer) Synthesize(
	ctx context.Context, history []domain.Turn, question string, retrieved domain.RetrievalResult,
) (string, error) {
	messages := s.messages(history, question, retrieved)

	if s.cfg.MaxContextTokens > 0 {
		if est := estimateTokens(messages); est > s.cfg.MaxContextTokens {
			return "", fmt.Errorf("%w: about %d tokens, limit %d", domain.ErrContextOverflow, est, s.cfg.MaxContextTokens)
		}
	}

	callCtx, cancel := withProviderTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	out, err := s.llm.Chat(callCtx, messages, driven.ChatOptions{Temperature: s.cfg.Temperature})
	if err != nil {
		return "", generationError(err)
	}

	answer := strings.TrimSpace(out)
	if answer == "" {
		return "", fmt.Errorf("%w: empty answer", domain.ErrGeneration)
	}
	logger.Debug("answer: %d chars from %d chunks", len(answer), len(retrieved.Chunks))
	return answer, nil
}

func (s *Synthesizer) messages(history []domain.Turn, question string, retrieved domain.RetrievalResult) []driven.ChatMessage {
	prompt := loadPrompt(s.prompts, driven.PromptAnswerSystem, defaultAnswerPrompt)
	system := strings.ReplaceAll(prompt, driven.ContextPlaceholder, strings.Join(retrieved.Texts(), contextSeparator))

	messages := make([]driven.ChatMessage, 0, len(history)+2)
	messages = append(messages, driven.ChatMessage{Role: driven.RoleSystem, Content: system})
	messages = append(messages, historyMessages(history)...)
	messages = append(messages, driven.ChatMessage{Role: driven.RoleUser, Content: question})
	return messages
}

// estimateTokens approximates the prompt size at four characters per token.
func estimateTokens(messages []driven.ChatMessage) int {
	n := 0
	for _, m := range messages {
		n += utf8.RuneCountInString(m.Content)
	}
	return (n + 3) / 4
}
