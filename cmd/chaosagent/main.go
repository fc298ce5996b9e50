package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/liliang-cn/chaosagent/internal/api"
	"github.com/liliang-cn/chaosagent/internal/config"
	"github.com/liliang-cn/chaosagent/internal/domain"
	"github.com/liliang-cn/chaosagent/internal/llm/ollama"
	"github.com/liliang-cn/chaosagent/internal/repository"
	"github.com/liliang-cn/chaosagent/internal/rerank/jina"
	"github.com/liliang-cn/chaosagent/internal/retrieval"
	"github.com/liliang-cn/chaosagent/internal/router"
	"github.com/liliang-cn/chaosagent/internal/service"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

// unavailableRetriever stands in when the knowledge base failed to start, so
// RAG turns report the index as unavailable instead of crashing.
type unavailableRetriever struct{}

func (unavailableRetriever) Retrieve(ctx context.Context, query string) domain.Retrieval {
	return domain.Retrieval{State: domain.RetrievalError, Err: domain.ErrIndexUnavailable}
}

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Initialize session database
	db, err := repository.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	sessionRepo := repository.NewSessionRepository(db)

	// Initialize the knowledge base (vector store + embedder). A failure here
	// leaves the agent running degraded: compute and chat still work, RAG
	// turns report the index as unavailable.
	kb, err := retrieval.NewKnowledgeBase(cfg)
	if err != nil {
		logger.Warn("Failed to initialize knowledge base, running without retrieval", zap.Error(err))
		kb = nil
	}

	// LLM provider for generation, classification and rewriting
	provider := ollama.New(
		cfg.LLM.OllamaURL,
		cfg.LLM.LLMModel,
		time.Duration(cfg.LLM.TimeoutSeconds)*time.Second,
	)

	// Cross-encoder reranker
	reranker := jina.New(
		cfg.Rerank.BaseURL,
		cfg.Rerank.APIKey,
		cfg.Rerank.Model,
		time.Duration(cfg.Rerank.TimeoutSeconds)*time.Second,
	)

	// Retrieval pipeline
	var retriever service.Retriever
	if kb != nil {
		var rewriter *retrieval.Rewriter
		if cfg.RAG.RewriteQuery {
			rewriter = retrieval.NewRewriter(provider, logger)
		}
		retriever = retrieval.NewEngine(kb, reranker, rewriter, retrieval.Params{
			RecallK:        cfg.RAG.RecallK,
			TopN:           cfg.RAG.TopN,
			ScoreThreshold: cfg.RAG.ScoreThreshold,
			RewriteQuery:   cfg.RAG.RewriteQuery,
		}, logger)
	} else {
		retriever = unavailableRetriever{}
	}

	// Intent classifier
	classifier := router.New(
		router.Rules(cfg.Router.ComputeKeywords, cfg.Router.ChatKeywords),
		provider,
		logger,
	)

	// Initialize services
	chatService := service.NewChatService(cfg, sessionRepo, classifier, retriever, provider, logger)

	var adminKB service.KnowledgeBase
	var ingester service.Ingester
	if kb != nil {
		adminKB = kb
		ingester = kb
	}
	adminService := service.NewAdminService(sessionRepo, adminKB, logger)
	ingestService := service.NewIngestService(ingester, logger)

	// Setup router
	engine := api.SetupRouter(chatService, adminService, ingestService, api.RouterConfig{
		APIKey:       cfg.Admin.APIKey,
		AllowOrigins: []string{"*"},
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting chaos agent server",
			zap.String("address", cfg.Address()),
			zap.Bool("retrieval_enabled", kb != nil),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	// Close knowledge base
	if kb != nil {
		kb.Close()
	}

	logger.Info("Server exited")
}
