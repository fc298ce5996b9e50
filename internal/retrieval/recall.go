package retrieval

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/liliang-cn/chaosagent/internal/config"
	"github.com/liliang-cn/chaosagent/internal/domain"
	ragoconfig "github.com/liliang-cn/rago/v2/pkg/config"
	ragodomain "github.com/liliang-cn/rago/v2/pkg/domain"
	"github.com/liliang-cn/rago/v2/pkg/providers"
	"github.com/liliang-cn/rago/v2/pkg/rag"
	ragstore "github.com/liliang-cn/rago/v2/pkg/rag/store"
)

// Recaller is the first-stage retrieval contract: broad, cheap, imprecise.
// Results are ordered by descending vector similarity and never filtered;
// relevance filtering belongs to the rerank stage.
type Recaller interface {
	Recall(ctx context.Context, query string, k int) ([]domain.Candidate, error)
}

// KnowledgeBase wraps the rago vector store and embedding provider behind
// the Recaller contract, and owns corpus ingestion. The store and the
// embedder are constructed once at startup and are read-only on the query
// path, so concurrent recalls need no locking.
type KnowledgeBase struct {
	cfg           *config.Config
	ragClient     *rag.Client
	sqliteStore   *ragstore.SQLiteStore
	documentStore *ragstore.DocumentStore

	// existedAtOpen records whether the vector DB file was already on disk
	// when the process started. An absent index means the offline build step
	// never ran, which is a different condition from an index that exists
	// but holds nothing relevant.
	existedAtOpen bool
	ingested      atomic.Int64
}

// NewKnowledgeBase opens the vector store and wires rago's embedding
// provider against the configured OpenAI-compatible endpoint.
func NewKnowledgeBase(cfg *config.Config) (*KnowledgeBase, error) {
	_, statErr := os.Stat(cfg.RAG.DBPath)
	existed := statErr == nil

	ragoCfg := &ragoconfig.Config{
		Sqvect: ragoconfig.SqvectConfig{
			DBPath:    cfg.RAG.DBPath,
			IndexType: cfg.RAG.IndexType,
		},
		Chunker: ragoconfig.ChunkerConfig{
			ChunkSize: cfg.RAG.ChunkSize,
			Overlap:   cfg.RAG.ChunkOverlap,
		},
		Ingest: ragoconfig.IngestConfig{
			MetadataExtraction: ragoconfig.MetadataExtractionConfig{
				Enable: false,
			},
		},
	}

	factory := providers.NewFactory()
	providerCfg := &ragodomain.OpenAIProviderConfig{
		BaseURL:        cfg.LLM.BaseURL,
		APIKey:         cfg.LLM.APIKey,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		LLMModel:       cfg.LLM.LLMModel,
	}

	ctx := context.Background()

	embedder, err := factory.CreateEmbedderProvider(ctx, providerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	llmProvider, err := factory.CreateLLMProvider(ctx, providerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	ragClient, err := rag.NewClient(ragoCfg, embedder, llmProvider, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create RAG client: %w", err)
	}

	sqliteStore, err := ragstore.NewSQLiteStore(cfg.RAG.DBPath, cfg.RAG.IndexType)
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite store: %w", err)
	}

	documentStore := ragstore.NewDocumentStore(sqliteStore.GetSqvectStore())

	return &KnowledgeBase{
		cfg:           cfg,
		ragClient:     ragClient,
		sqliteStore:   sqliteStore,
		documentStore: documentStore,
		existedAtOpen: existed,
	}, nil
}

// Initialized reports whether a usable index exists: either it was built
// offline before startup or something was ingested since.
func (kb *KnowledgeBase) Initialized() bool {
	return kb.existedAtOpen || kb.ingested.Load() > 0
}

// Recall implements Recaller via pure vector search, no generation.
func (kb *KnowledgeBase) Recall(ctx context.Context, query string, k int) ([]domain.Candidate, error) {
	if k <= 0 {
		return nil, fmt.Errorf("recall k must be positive, got %d", k)
	}
	if query == "" {
		return nil, fmt.Errorf("recall query must not be empty")
	}
	if !kb.Initialized() {
		return nil, domain.ErrIndexUnavailable
	}

	opts := &rag.QueryOptions{
		TopK:        k,
		Temperature: 0,
		MaxTokens:   0,
		ShowSources: true,
	}

	resp, err := kb.ragClient.Query(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	candidates := make([]domain.Candidate, len(resp.Sources))
	for i, src := range resp.Sources {
		candidates[i] = domain.Candidate{
			DocumentID: src.DocumentID,
			Content:    src.Content,
			Score:      src.Score,
		}
	}

	return candidates, nil
}

// IngestFile chunks and indexes a file into the vector store.
func (kb *KnowledgeBase) IngestFile(ctx context.Context, path string, metadata map[string]any) (*ragodomain.IngestResponse, error) {
	opts := &rag.IngestOptions{
		ChunkSize: kb.cfg.RAG.ChunkSize,
		Overlap:   kb.cfg.RAG.ChunkOverlap,
		Metadata:  metadata,
	}
	resp, err := kb.ragClient.IngestFile(ctx, path, opts)
	if err == nil {
		kb.ingested.Add(1)
	}
	return resp, err
}

// IngestText chunks and indexes raw text into the vector store.
func (kb *KnowledgeBase) IngestText(ctx context.Context, text, source string, metadata map[string]any) (*ragodomain.IngestResponse, error) {
	opts := &rag.IngestOptions{
		ChunkSize: kb.cfg.RAG.ChunkSize,
		Overlap:   kb.cfg.RAG.ChunkOverlap,
		Metadata:  metadata,
	}
	resp, err := kb.ragClient.IngestText(ctx, text, source, opts)
	if err == nil {
		kb.ingested.Add(1)
	}
	return resp, err
}

// DocumentCount returns the number of indexed documents.
func (kb *KnowledgeBase) DocumentCount(ctx context.Context) (int, error) {
	docs, err := kb.documentStore.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list documents: %w", err)
	}
	return len(docs), nil
}

// Close closes the underlying store.
func (kb *KnowledgeBase) Close() error {
	if kb.sqliteStore != nil {
		return kb.sqliteStore.Close()
	}
	return nil
}
