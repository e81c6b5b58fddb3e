package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/logger"
)

// Built-in prompts used when no PromptStore is set or a load fails.
const (
	defaultReformulatePrompt = "Given the above conversation, generate a search query to look up in order to get information relevant to the conversation"
	defaultAnswerPrompt      = "Answer the user's questions based on the below context:\n\n" + driven.ContextPlaceholder
)

// Ensure Reformulator can use custom prompts.
var _ driven.PromptStoreAware = (*Reformulator)(nil)

// Reformulator rewrites a follow-up question into a standalone search query.
type Reformulator struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	timeout time.Duration
}

// NewReformulator creates a reformulator backed by llm. Each model call is
// bounded by timeout when it is positive.
func NewReformulator(llm driven.LLMService, timeout time.Duration) *Reformulator {
	return &Reformulator{llm: llm, timeout: timeout}
}

// SetPromptStore sets the store the instruction prompt is loaded from.
func (r *Reformulator) SetPromptStore(store driven.PromptStore) {
	r.prompts = store
}

// Reformulate returns a query for question that stands on its own.
// With no history the question is returned unchanged without a model call.
func (r *Reformulator) Reformulate(ctx context.Context, history []domain.Turn, question string) (string, error) {
	if len(history) == 0 {
		return question, nil
	}

	messages := make([]driven.ChatMessage, 0, len(history)+2)
	messages = append(messages, historyMessages(history)...)
	messages = append(messages,
		driven.ChatMessage{Role: driven.RoleUser, Content: question},
		driven.ChatMessage{Role: driven.RoleUser, Content: loadPrompt(r.prompts, driven.PromptQueryReformulate, defaultReformulatePrompt)},
	)

	callCtx, cancel := withProviderTimeout(ctx, r.timeout)
	defer cancel()
	out, err := r.llm.Chat(callCtx, messages, driven.ChatOptions{})
	if err != nil {
		return "", generationError(err)
	}

	query := strings.TrimSpace(out)
	if query == "" {
		return "", fmt.Errorf("%w: empty search query", domain.ErrGeneration)
	}
	logger.Debug("reformulated %q -> %q", question, query)
	return query, nil
}

func historyMessages(turns []domain.Turn) []driven.ChatMessage {
	out := make([]driven.ChatMessage, len(turns))
	for i, t := range turns {
		role := driven.RoleAssistant
		if t.Role == domain.RoleHuman {
			role = driven.RoleUser
		}
		out[i] = driven.ChatMessage{Role: role, Content: t.Content}
	}
	return out
}

func loadPrompt(store driven.PromptStore, name, fallback string) string {
	if store == nil {
		return fallback
	}
	p, err := store.Load(name)
	if err != nil || strings.TrimSpace(p) == "" {
		if err != nil {
			logger.Warn("prompt %s unavailable, using built-in: %v", name, err)
		}
		return fallback
	}
	return p
}

func generationError(err error) error {
	if errors.Is(err, domain.ErrGeneration) || errors.Is(err, domain.ErrContextOverflow) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrGeneration, err)
}
