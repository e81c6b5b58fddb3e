// Package docx extracts paragraph text from word-processing (.docx) containers.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const (
	documentPart = "word/document.xml"
	corePart     = "docProps/core.xml"
)

// Normaliser handles word sources.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Kind returns domain.SourceKindWord.
func (n *Normaliser) Kind() domain.SourceKind {
	return domain.SourceKindWord
}

// Normalise joins the body paragraphs of the document with "\n", in
// document order. A malformed container fails with domain.ErrParse.
func (n *Normaliser) Normalise(_ context.Context, src domain.Source) (*driven.NormaliseResult, error) {
	if src.Kind != domain.SourceKindWord {
		return nil, fmt.Errorf("%w: docx normaliser got %s source", domain.ErrInvalidInput, src.Kind)
	}

	reader, err := zip.NewReader(bytes.NewReader(src.Content), int64(len(src.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a docx container: %v", domain.ErrParse, err)
	}

	body, err := readPart(reader, documentPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}

	paragraphs, err := parseParagraphs(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrParse, documentPart, err)
	}

	doc := domain.Document{
		ID:        uuid.New().String(),
		Kind:      domain.SourceKindWord,
		URI:       src.Name,
		Title:     extractTitle(reader, src.Name),
		Content:   strings.Join(paragraphs, "\n"),
		Metadata:  map[string]any{"format": "docx", "paragraphs": len(paragraphs)},
		CreatedAt: time.Now(),
	}

	return &driven.NormaliseResult{Document: doc}, nil
}

var errPartMissing = errors.New("part missing")

// readPart returns the bytes of a named part of the container.
func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		content, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return content, nil
	}
	return nil, fmt.Errorf("%s: %w", name, errPartMissing)
}

// documentXML mirrors word/document.xml down to the body paragraphs.
// Paragraphs nested in tables are not direct body children and are skipped.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

// paragraph collects the text of every run inside it, including runs
// nested in hyperlinks, in document order.
type paragraph struct {
	text string
}

// UnmarshalXML walks the paragraph's tokens: w:t contributes its text,
// w:tab a tab and w:br/w:cr a line break.
func (p *paragraph) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	var b strings.Builder
	depth := 1
	inText := false
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			depth--
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	p.text = b.String()
	return nil
}

// parseParagraphs returns the text of each body paragraph.
func parseParagraphs(content []byte) ([]string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}
	out := make([]string, len(doc.Body.Paragraphs))
	for i, para := range doc.Body.Paragraphs {
		out[i] = para.text
	}
	return out, nil
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

// extractTitle reads the title from docProps/core.xml or falls back to the file name.
func extractTitle(reader *zip.Reader, name string) string {
	if content, err := readPart(reader, corePart); err == nil {
		var core coreXML
		if err := xml.Unmarshal(content, &core); err == nil && strings.TrimSpace(core.Title) != "" {
			return strings.TrimSpace(core.Title)
		}
	}

	filename := filepath.Base(name)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	return strings.NewReplacer("_", " ", "-", " ").Replace(filename)
}
