package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/liliang-cn/chaosagent/internal/config"
	"github.com/liliang-cn/chaosagent/internal/domain"
	"github.com/liliang-cn/chaosagent/internal/llm"
	"github.com/liliang-cn/chaosagent/internal/repository"
	"github.com/liliang-cn/chaosagent/internal/service"
)

type stubClassifier struct {
	label domain.Intent
}

func (s *stubClassifier) Classify(ctx context.Context, query string) domain.Intent {
	return s.label
}

type stubRetriever struct{}

func (s *stubRetriever) Retrieve(ctx context.Context, query string) domain.Retrieval {
	return domain.Retrieval{State: domain.RetrievalInsufficient}
}

type stubProvider struct {
	response string
}

func (s *stubProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return s.response, nil
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.response, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := repository.NewSessionRepository(db)

	cfg := &config.Config{
		Sim: config.SimConfig{DefaultR: 3.5, LogisticSteps: 100, LorenzDuration: 2},
	}
	chatService := service.NewChatService(cfg, repo,
		&stubClassifier{label: domain.IntentChat}, &stubRetriever{},
		&stubProvider{response: "hello from the agent"}, zap.NewNop())
	adminService := service.NewAdminService(repo, nil, zap.NewNop())

	r := gin.New()
	handler := NewHandler(chatService, adminService)
	handler.RegisterRoutes(r.Group("/api"))
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/chat", `{"message": "hi"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp domain.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "hello from the agent", resp.Answer)
}

func TestChatEndpointRejectsMissingMessage(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/chat", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatEndpointUnknownSession(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/chat", `{"session_id": "nope", "message": "hi"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSimulateEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/simulate", `{"model": "logistic", "r": 3.2}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp domain.SimulateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Summary, "Period-2")
	require.NotNil(t, resp.Artifact)
	assert.Len(t, resp.Artifact.Series, 100)
}

func TestSimulateEndpointUnknownModel(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/simulate", `{"model": "henon"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionLifecycle(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/chat", `{"message": "first turn"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var chatResp domain.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &chatResp))

	w = doJSON(r, http.MethodGet, "/api/sessions", "")
	require.Equal(t, http.StatusOK, w.Code)
	var listResp struct {
		Sessions []*domain.Session `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	require.Len(t, listResp.Sessions, 1)
	assert.Equal(t, "first turn", listResp.Sessions[0].Title)

	w = doJSON(r, http.MethodGet, "/api/sessions/"+chatResp.SessionID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var getResp struct {
		Session  *domain.Session   `json:"session"`
		Messages []*domain.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &getResp))
	assert.Len(t, getResp.Messages, 2)

	w = doJSON(r, http.MethodDelete, "/api/sessions/"+chatResp.SessionID, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/sessions/"+chatResp.SessionID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
