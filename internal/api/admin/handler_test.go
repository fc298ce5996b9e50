package admin

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

	ragodomain "github.com/liliang-cn/rago/v2/pkg/domain"

	"github.com/liliang-cn/chaosagent/internal/api/middleware"
	"github.com/liliang-cn/chaosagent/internal/domain"
	"github.com/liliang-cn/chaosagent/internal/repository"
	"github.com/liliang-cn/chaosagent/internal/service"
)

type stubIngester struct {
	texts []string
}

func (s *stubIngester) IngestFile(ctx context.Context, path string, metadata map[string]any) (*ragodomain.IngestResponse, error) {
	return &ragodomain.IngestResponse{ChunkCount: 2}, nil
}

func (s *stubIngester) IngestText(ctx context.Context, text, source string, metadata map[string]any) (*ragodomain.IngestResponse, error) {
	s.texts = append(s.texts, text)
	return &ragodomain.IngestResponse{ChunkCount: 1}, nil
}

func newTestRouter(t *testing.T, apiKey string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "admin-api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := repository.NewSessionRepository(db)

	adminService := service.NewAdminService(repo, nil, zap.NewNop())
	ingestService := service.NewIngestService(&stubIngester{}, zap.NewNop())

	r := gin.New()
	group := r.Group("/api/admin")
	group.Use(middleware.Auth(apiKey))
	NewHandler(adminService, ingestService).RegisterRoutes(group)
	return r
}

func doJSON(r *gin.Engine, method, path, body, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIngestTextEndpoint(t *testing.T) {
	r := newTestRouter(t, "")

	w := doJSON(r, http.MethodPost, "/api/admin/ingest/text",
		`{"text": "the lorenz attractor", "source": "notes"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var result service.IngestResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "notes", result.Source)
	assert.Equal(t, 1, result.ChunkCount)
}

func TestIngestTextEndpointRejectsEmptyBody(t *testing.T) {
	r := newTestRouter(t, "")

	w := doJSON(r, http.MethodPost, "/api/admin/ingest/text", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	r := newTestRouter(t, "")

	w := doJSON(r, http.MethodGet, "/api/admin/stats", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var stats domain.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Zero(t, stats.TotalSessions)
	assert.False(t, stats.IndexReady)
}

func TestAdminRequiresAPIKey(t *testing.T) {
	r := newTestRouter(t, "secret")

	w := doJSON(r, http.MethodGet, "/api/admin/stats", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/admin/stats", "", "secret")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminAcceptsBearerToken(t *testing.T) {
	r := newTestRouter(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
