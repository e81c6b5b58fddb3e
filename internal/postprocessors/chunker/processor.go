// Package chunker provides a recursive character text splitter.
//
// Text is split on the coarsest separator that occurs in it (paragraph break,
// line break, sentence end, space, then single characters). Pieces that are
// still longer than the chunk size are split again with the next separator.
// Adjacent small pieces are merged back up to the chunk size, and each new
// chunk starts with up to overlap characters of the previous one.
package chunker

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// DefaultSeparators are tried in order, coarsest first.
// The empty separator splits into single characters.
var DefaultSeparators = []string{"\n\n", "\n", ". ", "? ", "! ", " ", ""}

// chunkNamespace scopes deterministic chunk IDs.
var chunkNamespace = uuid.MustParse("5b0f6a9e-3f57-4c1e-9a56-0d1c0de3c4a1")

// Processor splits document content into overlapping chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparators replaces the separator hierarchy. The empty separator is
// appended if missing so every piece can be brought under the chunk size.
func WithSeparators(seps ...string) Option {
	return func(p *Processor) {
		if len(seps) == 0 {
			return
		}
		p.separators = append([]string(nil), seps...)
		if p.separators[len(p.separators)-1] != "" {
			p.separators = append(p.separators, "")
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't reach chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured maximum chunk length.
func (p *Processor) ChunkSize() int { return p.chunkSize }

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int { return p.overlap }

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
// Chunk IDs are derived from the document ID and position, so the same input
// always yields the same chunks.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc.Content == "" {
		return nil, nil
	}

	spans := p.split(doc.Content, span{0, len(doc.Content), utf8.RuneCountInString(doc.Content)}, p.separators)

	chunks := make([]domain.Chunk, 0, len(spans))
	for _, s := range spans {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start, end := trimSpan(doc.Content, s.start, s.end)
		if start == end {
			continue
		}
		position := len(chunks)
		chunks = append(chunks, domain.Chunk{
			ID:         uuid.NewSHA1(chunkNamespace, []byte(fmt.Sprintf("%s/%d", doc.ID, position))).String(),
			DocumentID: doc.ID,
			Content:    doc.Content[start:end],
			Position:   position,
			Start:      start,
			End:        end,
		})
	}

	return chunks, nil
}

// span is a byte range of the text with its length in runes.
type span struct {
	start, end int
	runes      int
}

// split breaks s into spans of at most chunkSize runes.
func (p *Processor) split(text string, s span, seps []string) []span {
	if s.runes <= p.chunkSize {
		return []span{s}
	}

	sep, rest := seps[len(seps)-1], []string(nil)
	for i, candidate := range seps {
		if candidate == "" || strings.Contains(text[s.start:s.end], candidate) {
			sep, rest = candidate, seps[i+1:]
			break
		}
	}

	var (
		out  []span
		good []span
	)
	for _, piece := range cut(text, s, sep) {
		if piece.runes <= p.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			out = append(out, p.merge(good)...)
			good = nil
		}
		out = append(out, p.split(text, piece, rest)...)
	}
	if len(good) > 0 {
		out = append(out, p.merge(good)...)
	}
	return out
}

// merge joins contiguous pieces into spans of at most chunkSize runes.
// Each new span starts with trailing pieces of the previous one totalling
// at most overlap runes.
func (p *Processor) merge(pieces []span) []span {
	var (
		out    []span
		window []span
		total  int
	)
	for _, piece := range pieces {
		if total+piece.runes > p.chunkSize && len(window) > 0 {
			out = append(out, join(window, total))
			for len(window) > 0 && (total > p.overlap || total+piece.runes > p.chunkSize) {
				total -= window[0].runes
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += piece.runes
	}
	if len(window) > 0 {
		out = append(out, join(window, total))
	}
	return out
}

func join(window []span, runes int) span {
	return span{start: window[0].start, end: window[len(window)-1].end, runes: runes}
}

// cut splits s at every occurrence of sep, keeping the separator at the end
// of the preceding piece so the pieces tile s exactly.
func cut(text string, s span, sep string) []span {
	var out []span
	if sep == "" {
		start := s.start
		for i := s.start; i < s.end; {
			_, size := utf8.DecodeRuneInString(text[i:])
			out = append(out, span{start: start, end: i + size, runes: 1})
			i += size
			start = i
		}
		return out
	}

	start := s.start
	for start < s.end {
		idx := strings.Index(text[start:s.end], sep)
		end := s.end
		if idx >= 0 {
			end = start + idx + len(sep)
		}
		out = append(out, span{start: start, end: end, runes: utf8.RuneCountInString(text[start:end])})
		start = end
	}
	return out
}

// trimSpan narrows [start, end) to exclude leading and trailing whitespace.
func trimSpan(text string, start, end int) (int, int) {
	for start < end {
		r, size := utf8.DecodeRuneInString(text[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRuneInString(text[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		end -= size
	}
	return start, end
}
