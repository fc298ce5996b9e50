package retrieval

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/liliang-cn/chaosagent/internal/llm"
	"github.com/liliang-cn/chaosagent/internal/prompt"
)

// Rewriter normalizes a conversational query into retrieval keywords,
// expanding abbreviations and dropping filler. Rewriting is best-effort:
// any failure falls back to the original query so it can never abort a
// retrieval call.
type Rewriter struct {
	provider llm.Provider
	logger   *zap.Logger
}

// NewRewriter creates a query rewriter.
func NewRewriter(provider llm.Provider, logger *zap.Logger) *Rewriter {
	return &Rewriter{provider: provider, logger: logger}
}

// Rewrite returns the normalized query, or the original on any failure.
func (r *Rewriter) Rewrite(ctx context.Context, query string) string {
	p, err := prompt.Rewrite.Render(map[string]string{"query": query})
	if err != nil {
		return query
	}

	out, err := r.provider.Generate(ctx, p, llm.WithTemperature(0.1))
	if err != nil {
		r.logger.Warn("query rewrite failed, using original query", zap.Error(err))
		return query
	}

	rewritten := cleanRewrite(out)
	if rewritten == "" {
		return query
	}

	r.logger.Debug("query rewritten",
		zap.String("original", query),
		zap.String("rewritten", rewritten),
	)
	return rewritten
}

// cleanRewrite strips explanatory filler some models prepend, e.g.
// "Optimized query: ...". Everything up to the last colon goes.
func cleanRewrite(out string) string {
	out = strings.TrimSpace(out)
	if i := strings.LastIndex(out, ":"); i >= 0 {
		out = out[i+1:]
	}
	return strings.TrimSpace(out)
}
