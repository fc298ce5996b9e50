package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/liliang-cn/chaosagent/internal/config"
	"github.com/liliang-cn/chaosagent/internal/domain"
	"github.com/liliang-cn/chaosagent/internal/dynamics"
	"github.com/liliang-cn/chaosagent/internal/llm"
	"github.com/liliang-cn/chaosagent/internal/prompt"
	"github.com/liliang-cn/chaosagent/internal/repository"
)

// Classifier labels a query with the handler that should process it.
type Classifier interface {
	Classify(ctx context.Context, query string) domain.Intent
}

// Retriever runs the two-stage retrieval pipeline.
type Retriever interface {
	Retrieve(ctx context.Context, query string) domain.Retrieval
}

const maxTitleRunes = 40

// rParamRe extracts the control parameter from queries like "r=3.5" or
// "r: 3.5".
var rParamRe = regexp.MustCompile(`r\s*[=:]\s*([0-9]+\.?[0-9]*)`)

// ChatService is the conversation orchestrator: it classifies a turn,
// dispatches to the matching handler and persists the transcript.
type ChatService struct {
	cfg        *config.Config
	repo       *repository.SessionRepository
	classifier Classifier
	retriever  Retriever
	provider   llm.Provider
	logger     *zap.Logger

	// sessionLocks serializes turns per session so concurrent writes to one
	// transcript cannot interleave.
	sessionLocks sync.Map // session id -> *sync.Mutex
}

// NewChatService creates a chat service.
func NewChatService(
	cfg *config.Config,
	repo *repository.SessionRepository,
	classifier Classifier,
	retriever Retriever,
	provider llm.Provider,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		cfg:        cfg,
		repo:       repo,
		classifier: classifier,
		retriever:  retriever,
		provider:   provider,
		logger:     logger,
	}
}

// Chat processes one user turn end to end.
func (s *ChatService) Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, domain.ErrInvalidRequest
	}

	session, err := s.resolveSession(req.SessionID)
	if err != nil {
		return nil, err
	}

	lock := s.lockFor(session.ID)
	lock.Lock()
	defer lock.Unlock()

	label := s.classifier.Classify(ctx, message)
	s.logger.Info("turn classified",
		zap.String("session_id", session.ID),
		zap.String("intent", label.String()),
	)

	resp := &domain.ChatResponse{
		SessionID: session.ID,
		Intent:    label.String(),
	}

	switch label {
	case domain.IntentCompute:
		s.handleCompute(message, resp)
	case domain.IntentRAG:
		s.handleRAG(ctx, message, resp)
	default:
		s.handleChat(ctx, message, resp)
	}

	s.persistTurn(session.ID, message, resp)
	return resp, nil
}

func (s *ChatService) resolveSession(id string) (*domain.Session, error) {
	if id == "" {
		session := &domain.Session{}
		if err := s.repo.Create(session); err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
		return session, nil
	}

	session, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNotFound
	}
	return session, nil
}

func (s *ChatService) lockFor(sessionID string) *sync.Mutex {
	v, _ := s.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// handleCompute parses simulation parameters from the query and runs the
// matching tool. Unparseable parameters fall back to documented defaults;
// parameter trouble is never fatal for the turn.
func (s *ChatService) handleCompute(message string, resp *domain.ChatResponse) {
	lower := strings.ToLower(message)

	if strings.Contains(lower, "lorenz") || strings.Contains(message, "洛伦兹") {
		res, err := dynamics.Lorenz(
			dynamics.DefaultSigma, dynamics.DefaultRho, dynamics.DefaultBeta,
			s.lorenzDuration(),
		)
		if err != nil {
			resp.Answer = fmt.Sprintf("Simulation failed: %v", err)
			return
		}
		resp.Answer = res.Status
		resp.Artifact = &domain.Artifact{Kind: "lorenz_trajectory", Points: res.Trajectory}
		return
	}

	r := s.extractR(message)
	var preamble string
	if !strings.Contains(lower, "logistic") && !strings.Contains(message, "映射") && !strings.Contains(message, "方程") {
		preamble = "No specific model recognized; defaulting to the logistic map.\n"
	}

	res, err := dynamics.LogisticMap(r, s.logisticSteps(), dynamics.DefaultLogisticX0)
	if err != nil {
		resp.Answer = fmt.Sprintf("Simulation failed: %v", err)
		return
	}
	resp.Answer = preamble + res.Status
	resp.Artifact = &domain.Artifact{Kind: "logistic_series", Series: res.Series}
}

// Simulate runs a simulation directly from explicit parameters, without a
// session or intent routing.
func (s *ChatService) Simulate(req *domain.SimulateRequest) (*domain.SimulateResponse, error) {
	switch strings.ToLower(req.Model) {
	case "lorenz":
		duration := req.Duration
		if duration <= 0 {
			duration = s.lorenzDuration()
		}
		res, err := dynamics.Lorenz(dynamics.DefaultSigma, dynamics.DefaultRho, dynamics.DefaultBeta, duration)
		if err != nil {
			return nil, err
		}
		return &domain.SimulateResponse{
			Summary:  res.Status,
			Artifact: &domain.Artifact{Kind: "lorenz_trajectory", Points: res.Trajectory},
		}, nil

	case "logistic":
		r := s.cfg.Sim.DefaultR
		if r == 0 {
			r = 3.5
		}
		if req.R != nil {
			r = *req.R
		}
		steps := req.Steps
		if steps <= 0 {
			steps = s.logisticSteps()
		}
		res, err := dynamics.LogisticMap(r, steps, dynamics.DefaultLogisticX0)
		if err != nil {
			return nil, err
		}
		return &domain.SimulateResponse{
			Summary:  res.Status,
			Artifact: &domain.Artifact{Kind: "logistic_series", Series: res.Series},
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown model %q", domain.ErrInvalidRequest, req.Model)
	}
}

// extractR pulls an r value out of the query, substituting the configured
// default when absent or unparseable.
func (s *ChatService) extractR(message string) float64 {
	fallback := s.cfg.Sim.DefaultR
	if fallback == 0 {
		fallback = 3.5
	}

	m := rParamRe.FindStringSubmatch(strings.ToLower(message))
	if m == nil {
		return fallback
	}
	r, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return fallback
	}
	return r
}

func (s *ChatService) logisticSteps() int {
	if s.cfg.Sim.LogisticSteps > 0 {
		return s.cfg.Sim.LogisticSteps
	}
	return dynamics.DefaultLogisticSteps
}

func (s *ChatService) lorenzDuration() float64 {
	if s.cfg.Sim.LorenzDuration > 0 {
		return s.cfg.Sim.LorenzDuration
	}
	return dynamics.DefaultDuration
}

// handleRAG retrieves local literature and synthesizes an answer from it,
// degrading to general knowledge with a visible disclaimer when the corpus
// has nothing relevant enough.
func (s *ChatService) handleRAG(ctx context.Context, message string, resp *domain.ChatResponse) {
	outcome := s.retriever.Retrieve(ctx, message)

	switch outcome.State {
	case domain.RetrievalResult:
		p, err := prompt.GroundedAnswer.Render(map[string]string{
			"context":  outcome.Context,
			"question": message,
		})
		if err != nil {
			resp.Answer = fmt.Sprintf("Internal error building prompt: %v", err)
			return
		}
		answer, err := s.provider.Generate(ctx, p, llm.WithTemperature(0.3))
		if err != nil {
			resp.Answer = fmt.Sprintf("Answer synthesis failed: %v", err)
			return
		}
		resp.Answer = answer
		for _, c := range outcome.Sources {
			resp.Sources = append(resp.Sources, domain.Source{
				DocumentID: c.DocumentID,
				Content:    c.Content,
				Score:      c.Score,
			})
		}

	case domain.RetrievalInsufficient:
		p, err := prompt.FallbackAnswer.Render(map[string]string{"question": message})
		if err != nil {
			resp.Answer = fmt.Sprintf("Internal error building prompt: %v", err)
			return
		}
		answer, err := s.provider.Generate(ctx, p, llm.WithTemperature(0.3))
		if err != nil {
			resp.Answer = fmt.Sprintf("Answer synthesis failed: %v", err)
			return
		}
		resp.Answer = answer + prompt.FallbackDisclaimer

	case domain.RetrievalError:
		if errors.Is(outcome.Err, domain.ErrIndexUnavailable) {
			resp.Answer = "The knowledge base is not initialized. Build the index first, then ask again."
			return
		}
		s.logger.Error("retrieval failed", zap.Error(outcome.Err))
		resp.Answer = fmt.Sprintf("Retrieval failed for this turn: %v", outcome.Err)
	}
}

func (s *ChatService) handleChat(ctx context.Context, message string, resp *domain.ChatResponse) {
	p, err := prompt.CasualChat.Render(map[string]string{"question": message})
	if err != nil {
		resp.Answer = fmt.Sprintf("Internal error building prompt: %v", err)
		return
	}
	answer, err := s.provider.Generate(ctx, p, llm.WithTemperature(0.7))
	if err != nil {
		resp.Answer = fmt.Sprintf("Answer synthesis failed: %v", err)
		return
	}
	resp.Answer = answer
}

// persistTurn appends the user and assistant messages and refreshes session
// metadata. A persistence failure must not lose the produced answer: it is
// logged and surfaced on the response instead.
func (s *ChatService) persistTurn(sessionID, userMessage string, resp *domain.ChatResponse) {
	userMsg := &domain.Message{
		SessionID: sessionID,
		Role:      "user",
		Content:   userMessage,
		Intent:    resp.Intent,
	}
	assistantMsg := &domain.Message{
		SessionID: sessionID,
		Role:      "assistant",
		Content:   resp.Answer,
		Intent:    resp.Intent,
		Sources:   resp.Sources,
	}

	var failed error
	if err := s.repo.CreateMessage(userMsg); err != nil {
		failed = err
	} else if err := s.repo.CreateMessage(assistantMsg); err != nil {
		failed = err
	} else if err := s.repo.SetTitleIfEmpty(sessionID, truncateTitle(userMessage)); err != nil {
		failed = err
	} else if err := s.repo.Touch(sessionID); err != nil {
		failed = err
	}

	if failed != nil {
		s.logger.Error("failed to persist turn",
			zap.String("session_id", sessionID),
			zap.Error(failed),
		)
		resp.Warning = "this turn could not be saved to history"
	}
}

func truncateTitle(s string) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) > maxTitleRunes {
		return string(runes[:maxTitleRunes])
	}
	return string(runes)
}
