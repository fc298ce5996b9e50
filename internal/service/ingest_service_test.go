package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	ragodomain "github.com/liliang-cn/rago/v2/pkg/domain"
)

type stubIngester struct {
	files []string
	texts []string
}

func (s *stubIngester) IngestFile(ctx context.Context, path string, metadata map[string]any) (*ragodomain.IngestResponse, error) {
	s.files = append(s.files, path)
	return &ragodomain.IngestResponse{ChunkCount: 3}, nil
}

func (s *stubIngester) IngestText(ctx context.Context, text, source string, metadata map[string]any) (*ragodomain.IngestResponse, error) {
	s.texts = append(s.texts, source)
	return &ragodomain.IngestResponse{ChunkCount: 1}, nil
}

func TestIngestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chaos.md")
	require.NoError(t, os.WriteFile(path, []byte("# Chaos\ntext"), 0644))

	ingester := &stubIngester{}
	svc := NewIngestService(ingester, zap.NewNop())

	res, err := svc.IngestFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "chaos.md", res.Source)
	assert.Equal(t, 3, res.ChunkCount)
	assert.Equal(t, []string{path}, ingester.files)
}

func TestIngestFileRejectsUnsupportedType(t *testing.T) {
	svc := NewIngestService(&stubIngester{}, zap.NewNop())

	_, err := svc.IngestFile(context.Background(), "paper.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestIngestText(t *testing.T) {
	svc := NewIngestService(&stubIngester{}, zap.NewNop())

	res, err := svc.IngestText(context.Background(), "the lorenz system", "notes")
	require.NoError(t, err)
	assert.Equal(t, "notes", res.Source)
	assert.Equal(t, 1, res.ChunkCount)
}

func TestIngestTextRejectsEmpty(t *testing.T) {
	svc := NewIngestService(&stubIngester{}, zap.NewNop())

	_, err := svc.IngestText(context.Background(), "   ", "notes")
	assert.Error(t, err)
}

func TestIngestWithoutKnowledgeBase(t *testing.T) {
	svc := NewIngestService(nil, zap.NewNop())

	_, err := svc.IngestText(context.Background(), "text", "s")
	assert.Error(t, err)
}
