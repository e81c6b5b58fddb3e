package normalisers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// OpenSource builds a Source for kind from a URL (web) or a file path
// (pdf, word). File contents are read eagerly.
func OpenSource(kind domain.SourceKind, target string) (domain.Source, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return domain.Source{}, fmt.Errorf("%w: no %s given", domain.ErrInvalidInput, targetNoun(kind))
	}

	switch kind {
	case domain.SourceKindWeb:
		if !strings.Contains(target, "://") {
			target = "https://" + target
		}
		return domain.WebSource(target), nil
	case domain.SourceKindPDF, domain.SourceKindWord:
		data, err := os.ReadFile(target)
		if err != nil {
			return domain.Source{}, fmt.Errorf("read %s: %w", target, err)
		}
		name := filepath.Base(target)
		if kind == domain.SourceKindPDF {
			return domain.PDFSource(name, data), nil
		}
		return domain.WordSource(name, data), nil
	default:
		return domain.Source{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedKind, kind)
	}
}

func targetNoun(kind domain.SourceKind) string {
	if kind == domain.SourceKindWeb {
		return "URL"
	}
	return "file path"
}
