package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/liliang-cn/chaosagent/internal/domain"
	"github.com/liliang-cn/chaosagent/internal/repository"
)

// KnowledgeBase is the slice of the retrieval store the admin surface needs.
type KnowledgeBase interface {
	Initialized() bool
	DocumentCount(ctx context.Context) (int, error)
}

// AdminService handles session administration and system stats.
type AdminService struct {
	repo   *repository.SessionRepository
	kb     KnowledgeBase // nil when the knowledge base failed to start
	logger *zap.Logger
}

// NewAdminService creates an admin service.
func NewAdminService(repo *repository.SessionRepository, kb KnowledgeBase, logger *zap.Logger) *AdminService {
	return &AdminService{repo: repo, kb: kb, logger: logger}
}

// ListSessions returns all sessions, most recently active first.
func (s *AdminService) ListSessions() ([]*domain.Session, error) {
	return s.repo.List()
}

// GetTranscript returns the full ordered transcript of a session.
func (s *AdminService) GetTranscript(id string) (*domain.Session, []*domain.Message, error) {
	session, err := s.repo.Get(id)
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, domain.ErrNotFound
	}

	messages, err := s.repo.GetMessages(id)
	if err != nil {
		return nil, nil, err
	}
	return session, messages, nil
}

// DeleteSession removes a session and its transcript.
func (s *AdminService) DeleteSession(id string) error {
	session, err := s.repo.Get(id)
	if err != nil {
		return err
	}
	if session == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(id)
}

// Stats reports system-level counters.
func (s *AdminService) Stats(ctx context.Context) (*domain.Stats, error) {
	sessions, err := s.repo.CountSessions()
	if err != nil {
		return nil, err
	}
	messages, err := s.repo.CountMessages()
	if err != nil {
		return nil, err
	}

	stats := &domain.Stats{
		TotalSessions: sessions,
		TotalMessages: messages,
	}

	if s.kb != nil {
		stats.IndexReady = s.kb.Initialized()
		if docs, err := s.kb.DocumentCount(ctx); err == nil {
			stats.TotalDocuments = docs
		} else {
			s.logger.Warn("failed to count indexed documents", zap.Error(err))
		}
	}

	return stats, nil
}
