package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/liliang-cn/chaosagent/internal/domain"
	"github.com/liliang-cn/chaosagent/internal/repository"
)

type stubKB struct {
	initialized bool
	docs        int
}

func (s *stubKB) Initialized() bool { return s.initialized }

func (s *stubKB) DocumentCount(ctx context.Context) (int, error) { return s.docs, nil }

func newTestAdmin(t *testing.T, kb KnowledgeBase) (*AdminService, *repository.SessionRepository) {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "admin.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := repository.NewSessionRepository(db)
	return NewAdminService(repo, kb, zap.NewNop()), repo
}

func TestGetTranscript(t *testing.T) {
	svc, repo := newTestAdmin(t, nil)

	session := &domain.Session{Title: "t"}
	require.NoError(t, repo.Create(session))
	require.NoError(t, repo.CreateMessage(&domain.Message{
		SessionID: session.ID, Role: "user", Content: "q",
	}))

	got, messages, err := svc.GetTranscript(session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	require.Len(t, messages, 1)
	assert.Equal(t, "q", messages[0].Content)
}

func TestGetTranscriptNotFound(t *testing.T) {
	svc, _ := newTestAdmin(t, nil)

	_, _, err := svc.GetTranscript("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteSession(t *testing.T) {
	svc, repo := newTestAdmin(t, nil)

	session := &domain.Session{}
	require.NoError(t, repo.Create(session))

	require.NoError(t, svc.DeleteSession(session.ID))
	assert.ErrorIs(t, svc.DeleteSession(session.ID), domain.ErrNotFound)
}

func TestStats(t *testing.T) {
	svc, repo := newTestAdmin(t, &stubKB{initialized: true, docs: 12})

	s := &domain.Session{}
	require.NoError(t, repo.Create(s))
	require.NoError(t, repo.CreateMessage(&domain.Message{SessionID: s.ID, Role: "user", Content: "q"}))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSessions)
	assert.Equal(t, 1, stats.TotalMessages)
	assert.Equal(t, 12, stats.TotalDocuments)
	assert.True(t, stats.IndexReady)
}

func TestStatsWithoutKnowledgeBase(t *testing.T) {
	svc, _ := newTestAdmin(t, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.False(t, stats.IndexReady)
	assert.Zero(t, stats.TotalDocuments)
}
