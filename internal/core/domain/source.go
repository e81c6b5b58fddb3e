package domain

import (
	"fmt"
	"strings"
)

// SourceKind discriminates the three supported document sources.
type SourceKind string

// Available source kinds.
const (
	// SourceKindWeb is a page fetched from a URL.
	SourceKindWeb SourceKind = "web"

	// SourceKindPDF is a PDF byte stream.
	SourceKindPDF SourceKind = "pdf"

	// SourceKindWord is a word-processing (.docx) container.
	SourceKindWord SourceKind = "word"
)

// AllSourceKinds returns every source kind in display order.
func AllSourceKinds() []SourceKind {
	return []SourceKind{SourceKindWeb, SourceKindPDF, SourceKindWord}
}

// IsValid returns true if the kind is recognised.
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceKindWeb, SourceKindPDF, SourceKindWord:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k SourceKind) String() string {
	return string(k)
}

// SessionKey returns the key that partitions conversation history
// for this kind: "website", "pdf" or "word".
func (k SourceKind) SessionKey() string {
	switch k {
	case SourceKindWeb:
		return "website"
	case SourceKindPDF:
		return "pdf"
	case SourceKindWord:
		return "word"
	default:
		return ""
	}
}

// Description returns a human-readable label.
func (k SourceKind) Description() string {
	switch k {
	case SourceKindWeb:
		return "Website (URL)"
	case SourceKindPDF:
		return "PDF document"
	case SourceKindWord:
		return "Word document (.docx)"
	default:
		return "Unknown"
	}
}

// ParseSourceKind resolves user input such as "website", "url" or "docx".
func ParseSourceKind(s string) (SourceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "web", "website", "url":
		return SourceKindWeb, nil
	case "pdf":
		return SourceKindPDF, nil
	case "word", "docx":
		return SourceKindWord, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
	}
}

// Source is a tagged variant: Web carries URL, Pdf and Word carry Content.
// It is consumed once by a normaliser and never retained afterwards.
type Source struct {
	// Kind selects the active arm.
	Kind SourceKind

	// Name is a display name (file name or URL).
	Name string

	// URL is set for web sources.
	URL string

	// Content holds the raw bytes for pdf and word sources.
	Content []byte
}

// WebSource creates a web source for the given URL.
func WebSource(url string) Source {
	return Source{Kind: SourceKindWeb, Name: url, URL: url}
}

// PDFSource creates a pdf source from raw bytes.
func PDFSource(name string, data []byte) Source {
	return Source{Kind: SourceKindPDF, Name: name, Content: data}
}

// WordSource creates a word source from raw bytes.
func WordSource(name string, data []byte) Source {
	return Source{Kind: SourceKindWord, Name: name, Content: data}
}

// Validate checks that the active arm carries its payload.
func (s Source) Validate() error {
	switch s.Kind {
	case SourceKindWeb:
		if strings.TrimSpace(s.URL) == "" {
			return fmt.Errorf("%w: web source requires a URL", ErrInvalidInput)
		}
	case SourceKindPDF, SourceKindWord:
		if len(s.Content) == 0 {
			return fmt.Errorf("%w: %s source has no content", ErrInvalidInput, s.Kind)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedKind, s.Kind)
	}
	return nil
}
