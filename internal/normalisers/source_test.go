package normalisers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

func TestOpenSource_Web(t *testing.T) {
	src, err := OpenSource(domain.SourceKindWeb, " example.com/page ")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/page", src.URL)

	src, err = OpenSource(domain.SourceKindWeb, "http://localhost:8080")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", src.URL)
}

func TestOpenSource_Files(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))

	src, err := OpenSource(domain.SourceKindPDF, path)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceKindPDF, src.Kind)
	assert.Equal(t, "report.pdf", src.Name)
	assert.Equal(t, []byte("%PDF-1.4"), src.Content)

	src, err = OpenSource(domain.SourceKindWord, path)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceKindWord, src.Kind)
}

func TestOpenSource_Errors(t *testing.T) {
	_, err := OpenSource(domain.SourceKindWeb, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = OpenSource(domain.SourceKindPDF, filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = OpenSource("fax", "x")
	assert.ErrorIs(t, err, domain.ErrUnsupportedKind)
}
