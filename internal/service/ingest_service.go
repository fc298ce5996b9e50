package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	ragodomain "github.com/liliang-cn/rago/v2/pkg/domain"
)

// Ingester is the slice of the knowledge base the ingest surface needs.
type Ingester interface {
	IngestFile(ctx context.Context, path string, metadata map[string]any) (*ragodomain.IngestResponse, error)
	IngestText(ctx context.Context, text, source string, metadata map[string]any) (*ragodomain.IngestResponse, error)
}

// IngestService feeds cleaned literature into the vector index. The heavy
// corpus preparation (PDF to Markdown conversion) happens offline; this
// service only indexes the cleaned output.
type IngestService struct {
	ingester Ingester
	logger   *zap.Logger
}

// NewIngestService creates an ingest service.
func NewIngestService(ingester Ingester, logger *zap.Logger) *IngestService {
	return &IngestService{ingester: ingester, logger: logger}
}

// supported cleaned-corpus formats
var supportedExts = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
}

// IngestResult summarizes one ingestion.
type IngestResult struct {
	Source     string `json:"source"`
	ChunkCount int    `json:"chunk_count"`
}

// IngestFile chunks and indexes one cleaned corpus file.
func (s *IngestService) IngestFile(ctx context.Context, path string) (*IngestResult, error) {
	if s.ingester == nil {
		return nil, fmt.Errorf("knowledge base not available")
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExts[ext] {
		return nil, fmt.Errorf("unsupported file type %q: corpus files must be cleaned markdown or text", ext)
	}

	resp, err := s.ingester.IngestFile(ctx, path, map[string]any{
		"filename": filepath.Base(path),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ingest %s: %w", path, err)
	}

	s.logger.Info("file ingested",
		zap.String("path", path),
		zap.Int("chunks", resp.ChunkCount),
	)
	return &IngestResult{Source: filepath.Base(path), ChunkCount: resp.ChunkCount}, nil
}

// IngestText indexes raw text under a source label.
func (s *IngestService) IngestText(ctx context.Context, text, source string) (*IngestResult, error) {
	if s.ingester == nil {
		return nil, fmt.Errorf("knowledge base not available")
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text must not be empty")
	}
	if source == "" {
		source = "inline"
	}

	resp, err := s.ingester.IngestText(ctx, text, source, map[string]any{
		"filename": source,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ingest text: %w", err)
	}

	s.logger.Info("text ingested",
		zap.String("source", source),
		zap.Int("chunks", resp.ChunkCount),
	)
	return &IngestResult{Source: source, ChunkCount: resp.ChunkCount}, nil
}
