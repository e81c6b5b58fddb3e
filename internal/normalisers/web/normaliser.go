// Package web normalises web pages: it fetches a URL and extracts the
// page's readable text.
package web

import (
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles web sources.
type Normaliser struct {
	fetcher driven.Fetcher
}

// New creates a web normaliser that retrieves pages with fetcher.
func New(fetcher driven.Fetcher) *Normaliser {
	return &Normaliser{fetcher: fetcher}
}

// Kind returns domain.SourceKindWeb.
func (n *Normaliser) Kind() domain.SourceKind {
	return domain.SourceKindWeb
}

// Normalise fetches src.URL and strips markup from the body. Unreachable
// pages and non-text content fail with domain.ErrFetch.
func (n *Normaliser) Normalise(ctx context.Context, src domain.Source) (*driven.NormaliseResult, error) {
	if src.Kind != domain.SourceKindWeb {
		return nil, fmt.Errorf("%w: web normaliser got %s source", domain.ErrInvalidInput, src.Kind)
	}

	page, err := n.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return nil, err
	}

	mediaType, _, err := mime.ParseMediaType(page.ContentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(page.ContentType))
	}

	var content, title string
	body := string(page.Body)
	switch {
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		title, content = extractPage(body)
	case strings.HasPrefix(mediaType, "text/"):
		content = tidyLines(body, "\n")
	default:
		return nil, fmt.Errorf("%w: %s is not text (content type %q)", domain.ErrFetch, src.URL, page.ContentType)
	}

	if title == "" {
		title = page.URL
	}

	doc := domain.Document{
		ID:        uuid.New().String(),
		Kind:      domain.SourceKindWeb,
		URI:       page.URL,
		Title:     title,
		Content:   content,
		Metadata:  map[string]any{"format": "html", "content_type": mediaType, "requested_url": src.URL},
		CreatedAt: time.Now(),
	}

	return &driven.NormaliseResult{Document: doc}, nil
}
