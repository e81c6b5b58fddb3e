package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// topicEmbedder maps text onto one axis per topic keyword so similarity
// is predictable.
type topicEmbedder struct {
	mu         sync.Mutex
	batches    int
	queries    int
	failBatch  error
	failQuery  error
	badVectors bool
}

var topics = []string{"apple", "rocket", "bak", "paris"}

func (e *topicEmbedder) vector(text string) []float32 {
	v := make([]float32, len(topics)+1)
	lower := strings.ToLower(text)
	hit := false
	for i, t := range topics {
		if strings.Contains(lower, t) {
			v[i] = 1
			hit = true
		}
	}
	if !hit {
		v[len(topics)] = 1
	}
	return v
}

func (e *topicEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queries++
	if e.failQuery != nil {
		return nil, e.failQuery
	}
	return e.vector(text), nil
}

func (e *topicEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.batches++
	if e.failBatch != nil {
		return nil, e.failBatch
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
		if e.badVectors {
			out[i] = out[i][:2]
		}
	}
	return out, nil
}

func (e *topicEmbedder) Dimensions() int           { return len(topics) + 1 }
func (e *topicEmbedder) ModelName() string         { return "topics" }
func (e *topicEmbedder) Ping(context.Context) error { return nil }
func (e *topicEmbedder) Close() error              { return nil }

// scriptedLLM answers reformulation requests by echoing the question and
// answer requests through answer.
type scriptedLLM struct {
	mu      sync.Mutex
	calls   [][]driven.ChatMessage
	rewrite func(question string) string
	answer  func(system, question string) (string, error)
	failAll error
}

func (l *scriptedLLM) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	l.mu.Lock()
	l.calls = append(l.calls, messages)
	l.mu.Unlock()

	if l.failAll != nil {
		return "", l.failAll
	}
	if messages[0].Role == driven.RoleSystem {
		question := messages[len(messages)-1].Content
		if l.answer == nil {
			return "answer: " + question, nil
		}
		return l.answer(messages[0].Content, question)
	}
	question := messages[len(messages)-2].Content
	if l.rewrite != nil {
		return l.rewrite(question), nil
	}
	return question, nil
}

func (l *scriptedLLM) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

func (l *scriptedLLM) ModelName() string         { return "scripted" }
func (l *scriptedLLM) Ping(context.Context) error { return nil }
func (l *scriptedLLM) Close() error              { return nil }

// stubNormalisers returns documents keyed by source name.
type stubNormalisers struct {
	docs map[string]string
}

func (n *stubNormalisers) Normalise(_ context.Context, src domain.Source) (*driven.NormaliseResult, error) {
	content, ok := n.docs[src.Name]
	if !ok {
		if src.Kind == domain.SourceKindWeb {
			return nil, fmt.Errorf("%w: %s: status 404", domain.ErrFetch, src.Name)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrParse, src.Name)
	}
	return &driven.NormaliseResult{Document: domain.Document{
		ID:      src.Name,
		Kind:    src.Kind,
		URI:     src.Name,
		Content: content,
	}}, nil
}

func (n *stubNormalisers) Register(driven.Normaliser) {}

func (n *stubNormalisers) SupportedKinds() []domain.SourceKind { return domain.AllSourceKinds() }

// paragraphPipeline makes one chunk per paragraph.
type paragraphPipeline struct{}

func (paragraphPipeline) Process(_ context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for i, p := range strings.Split(doc.Content, "\n\n") {
		if strings.TrimSpace(p) == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			ID:         fmt.Sprintf("%s-%d", doc.ID, i),
			DocumentID: doc.ID,
			Content:    p,
			Position:   i,
		})
	}
	return chunks, nil
}

// mapPrompts serves prompts from a map.
type mapPrompts map[string]string

func (m mapPrompts) Load(name string) (string, error) {
	if p, ok := m[name]; ok {
		return p, nil
	}
	return "", errors.New("no such prompt")
}

func (m mapPrompts) Reload() {}

func chunksOf(texts ...string) []domain.Chunk {
	out := make([]domain.Chunk, len(texts))
	for i, t := range texts {
		out[i] = domain.Chunk{ID: fmt.Sprintf("c%d", i), Content: t, Position: i}
	}
	return out
}
