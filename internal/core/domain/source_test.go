package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceKind_SessionKey(t *testing.T) {
	assert.Equal(t, "website", SourceKindWeb.SessionKey())
	assert.Equal(t, "pdf", SourceKindPDF.SessionKey())
	assert.Equal(t, "word", SourceKindWord.SessionKey())
	assert.Empty(t, SourceKind("zip").SessionKey())
}

func TestParseSourceKind(t *testing.T) {
	tests := []struct {
		in   string
		want SourceKind
	}{
		{"web", SourceKindWeb},
		{"Website", SourceKindWeb},
		{"url", SourceKindWeb},
		{"pdf", SourceKindPDF},
		{" docx ", SourceKindWord},
		{"word", SourceKindWord},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSourceKind(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseSourceKind("odt")
	assert.True(t, errors.Is(err, ErrUnsupportedKind))
}

func TestSource_Validate(t *testing.T) {
	assert.NoError(t, WebSource("https://example.com").Validate())
	assert.NoError(t, PDFSource("a.pdf", []byte("%PDF-1.7")).Validate())
	assert.NoError(t, WordSource("a.docx", []byte("PK")).Validate())

	assert.ErrorIs(t, WebSource(" ").Validate(), ErrInvalidInput)
	assert.ErrorIs(t, PDFSource("a.pdf", nil).Validate(), ErrInvalidInput)
	assert.ErrorIs(t, Source{Kind: "zip"}.Validate(), ErrUnsupportedKind)
}
