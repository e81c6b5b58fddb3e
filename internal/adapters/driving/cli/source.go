package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/normalisers"
)

// sourceFlags selects a document with one of --url, --pdf or --word.
type sourceFlags struct {
	url  string
	pdf  string
	word string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "url", "", "web page to load")
	cmd.Flags().StringVar(&f.pdf, "pdf", "", "PDF file to load")
	cmd.Flags().StringVar(&f.word, "word", "", "Word (.docx) file to load")
	cmd.MarkFlagsMutuallyExclusive("url", "pdf", "word")
}

func (f *sourceFlags) reset() {
	*f = sourceFlags{}
}

// source opens the selected document. ok is false when no flag was given.
func (f *sourceFlags) source() (src domain.Source, ok bool, err error) {
	var kind domain.SourceKind
	var target string
	set := 0
	for _, c := range []struct {
		kind  domain.SourceKind
		value string
	}{
		{domain.SourceKindWeb, f.url},
		{domain.SourceKindPDF, f.pdf},
		{domain.SourceKindWord, f.word},
	} {
		if c.value != "" {
			kind, target = c.kind, c.value
			set++
		}
	}

	switch set {
	case 0:
		return domain.Source{}, false, nil
	case 1:
		src, err = normalisers.OpenSource(kind, target)
		return src, err == nil, err
	default:
		return domain.Source{}, false, fmt.Errorf("%w: only one of --url, --pdf or --word may be given", domain.ErrInvalidInput)
	}
}
