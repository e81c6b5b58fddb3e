package postprocessors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/postprocessors/chunker"
)

func TestRegistry_RegisterAndBuild(t *testing.T) {
	r := NewRegistry()
	r.Register("stub", func(_ map[string]any) (driven.PostProcessor, error) {
		return &stubProcessor{name: "stub"}, nil
	})

	assert.True(t, r.Has("stub"))
	assert.False(t, r.Has("missing"))

	proc, err := r.Build("stub", nil)
	require.NoError(t, err)
	assert.Equal(t, "stub", proc.Name())

	_, err = r.Build("missing", nil)
	assert.Error(t, err)
}

func TestDefaultRegistry_Chunker(t *testing.T) {
	r := NewDefaultRegistry()
	assert.Equal(t, []string{"chunker"}, r.Names())

	proc, err := r.Build("chunker", map[string]any{"chunk_size": int64(300), "overlap": float64(30)})
	require.NoError(t, err)
	c, ok := proc.(*chunker.Processor)
	require.True(t, ok)
	assert.Equal(t, 300, c.ChunkSize())
	assert.Equal(t, 30, c.Overlap())

	proc, err = r.Build("chunker", nil)
	require.NoError(t, err)
	assert.Equal(t, chunker.DefaultChunkSize, proc.(*chunker.Processor).ChunkSize())
}

func TestDefaultRegistry_ChunkerRejectsBadConfig(t *testing.T) {
	r := NewDefaultRegistry()
	_, err := r.Build("chunker", map[string]any{"chunk_size": 0})
	assert.Error(t, err)
	_, err = r.Build("chunker", map[string]any{"overlap": -5})
	assert.Error(t, err)
}

func TestRegistry_BuildPipeline(t *testing.T) {
	r := NewDefaultRegistry()
	cfg := domain.PipelineConfigFor(domain.ChunkingSettings{ChunkSize: 20, ChunkOverlap: 0})

	p, err := r.BuildPipeline(cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Len())

	chunks, err := p.Process(context.Background(), &domain.Document{ID: "d", Content: "alpha beta gamma delta epsilon"})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Content), 20)
	}

	_, err = r.BuildPipeline(domain.PipelineConfig{Processors: []string{"unknown"}})
	assert.Error(t, err)
}
