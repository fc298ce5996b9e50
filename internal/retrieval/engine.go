// Package retrieval implements the two-stage retrieval pipeline: broad
// vector recall followed by cross-encoder reranking with threshold
// filtering. Separating the stages bounds reranker cost to a fixed small
// batch while keeping recall wide.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/liliang-cn/chaosagent/internal/domain"
	"github.com/liliang-cn/chaosagent/internal/rerank"
)

// Params are the retrieval policy knobs.
type Params struct {
	// RecallK is the first-stage fan-out.
	RecallK int
	// TopN caps how many reranked candidates are considered for acceptance.
	TopN int
	// ScoreThreshold is the minimum (exclusive) cross-encoder score a
	// candidate needs to be accepted. The precision/recall trade-off knob.
	ScoreThreshold float64
	// RewriteQuery enables the LLM pre-rewrite step.
	RewriteQuery bool
}

// DefaultParams mirrors the tuned production values.
func DefaultParams() Params {
	return Params{
		RecallK:        30,
		TopN:           5,
		ScoreThreshold: 0.3,
	}
}

// Engine composes recall, rerank, filtering and the fallback decision into
// a single retrieval call.
type Engine struct {
	recaller Recaller
	reranker rerank.Reranker
	rewriter *Rewriter // nil when rewriting is disabled
	params   Params
	logger   *zap.Logger
}

// NewEngine creates a retrieval engine. rewriter may be nil.
func NewEngine(recaller Recaller, reranker rerank.Reranker, rewriter *Rewriter, params Params, logger *zap.Logger) *Engine {
	if params.RecallK <= 0 {
		params.RecallK = DefaultParams().RecallK
	}
	if params.TopN <= 0 {
		params.TopN = DefaultParams().TopN
	}
	return &Engine{
		recaller: recaller,
		reranker: reranker,
		rewriter: rewriter,
		params:   params,
		logger:   logger,
	}
}

// Retrieve runs the full pipeline and returns a tagged outcome. It never
// returns a Go error: stage failures become the ERROR state so the caller
// branches on structured state rather than inspecting text.
func (e *Engine) Retrieve(ctx context.Context, query string) domain.Retrieval {
	effective := query
	if e.params.RewriteQuery && e.rewriter != nil {
		effective = e.rewriter.Rewrite(ctx, query)
	}

	candidates, err := e.recaller.Recall(ctx, effective, e.params.RecallK)
	if err != nil {
		if errors.Is(err, domain.ErrIndexUnavailable) {
			return domain.Retrieval{State: domain.RetrievalError, Err: domain.ErrIndexUnavailable}
		}
		return domain.Retrieval{
			State: domain.RetrievalError,
			Err:   fmt.Errorf("recall failed: %w", err),
		}
	}

	e.logger.Debug("recall complete",
		zap.String("query", effective),
		zap.Int("candidates", len(candidates)),
	)

	// An initialized index that returns nothing has simply never been fed
	// anything relevant; that is insufficiency, not an error.
	if len(candidates) == 0 {
		return domain.Retrieval{State: domain.RetrievalInsufficient}
	}

	docs := make([]string, len(candidates))
	for i, c := range candidates {
		docs[i] = c.Content
	}

	scores, err := e.reranker.Rerank(ctx, effective, docs)
	if err != nil {
		return domain.Retrieval{
			State: domain.RetrievalError,
			Err:   fmt.Errorf("rerank failed: %w", err),
		}
	}

	scored := make([]domain.Candidate, len(candidates))
	for i, c := range candidates {
		scored[i] = domain.Candidate{
			DocumentID: c.DocumentID,
			Content:    c.Content,
			Score:      scores[i],
		}
	}

	// Descending by rerank score; stable so ties keep their recall rank.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > e.params.TopN {
		scored = scored[:e.params.TopN]
	}

	var accepted []domain.Candidate
	for _, c := range scored {
		if c.Score > e.params.ScoreThreshold {
			accepted = append(accepted, c)
			e.logger.Debug("candidate accepted", zap.Float64("score", c.Score))
		} else {
			e.logger.Debug("candidate rejected", zap.Float64("score", c.Score))
		}
	}

	if len(accepted) == 0 {
		return domain.Retrieval{State: domain.RetrievalInsufficient}
	}

	texts := make([]string, len(accepted))
	for i, c := range accepted {
		texts[i] = c.Content
	}

	return domain.Retrieval{
		State:   domain.RetrievalResult,
		Context: strings.Join(texts, "\n\n"),
		Sources: accepted,
	}
}
