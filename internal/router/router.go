// Package router classifies user turns into an intent label that selects
// the downstream handler. Classification is two-tier: an ordered list of
// deterministic keyword rules runs first, then a few-shot LLM classifier
// decides whatever the rules abstained on.
package router

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/liliang-cn/chaosagent/internal/domain"
	"github.com/liliang-cn/chaosagent/internal/llm"
	"github.com/liliang-cn/chaosagent/internal/prompt"
)

// Rule is a deterministic fast-path predicate: if any keyword is a
// substring of the query, the rule's label wins and no further processing
// happens. Rules are configuration data so their precedence is testable.
type Rule struct {
	Label    domain.Intent
	Keywords []string
}

// Rules builds the ordered rule list. Compute keywords are checked before
// chat keywords; order matters and first match wins.
func Rules(computeKeywords, chatKeywords []string) []Rule {
	return []Rule{
		{Label: domain.IntentCompute, Keywords: computeKeywords},
		{Label: domain.IntentChat, Keywords: chatKeywords},
	}
}

// Router classifies queries.
type Router struct {
	rules    []Rule
	provider llm.Provider
	logger   *zap.Logger
}

// New creates a Router with the given rule order and classifier fallback.
func New(rules []Rule, provider llm.Provider, logger *zap.Logger) *Router {
	return &Router{
		rules:    rules,
		provider: provider,
		logger:   logger,
	}
}

// Classify returns the intent label for a query. It never fails: when the
// rules abstain and the classifier errors or answers garbage, the label
// degrades to CHAT, the least destructive misroute, since no computation
// or retrieval is attempted on it.
func (r *Router) Classify(ctx context.Context, query string) domain.Intent {
	lower := strings.ToLower(query)

	for _, rule := range r.rules {
		for _, kw := range rule.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(kw)) {
				r.logger.Debug("intent matched by keyword rule",
					zap.String("label", rule.Label.String()),
					zap.String("keyword", kw),
				)
				return rule.Label
			}
		}
	}

	p, err := prompt.Classify.Render(map[string]string{"query": query})
	if err != nil {
		return domain.IntentChat
	}

	raw, err := r.provider.Generate(ctx, p, llm.WithTemperature(0))
	if err != nil {
		r.logger.Warn("intent classifier failed, defaulting to CHAT", zap.Error(err))
		return domain.IntentChat
	}

	label := normalize(raw)
	r.logger.Debug("intent classified by model",
		zap.String("raw", raw),
		zap.String("label", label.String()),
	)
	return label
}

// normalize maps raw classifier output to a label by substring containment.
// Models pad their answers; containment is more robust than equality.
func normalize(raw string) domain.Intent {
	upper := strings.ToUpper(raw)
	switch {
	case strings.Contains(upper, "COMPUTE"):
		return domain.IntentCompute
	case strings.Contains(upper, "RAG"):
		return domain.IntentRAG
	default:
		return domain.IntentChat
	}
}
