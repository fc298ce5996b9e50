package admin

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/liliang-cn/chaosagent/internal/service"
)

// Handler handles admin API requests
type Handler struct {
	adminService  *service.AdminService
	ingestService *service.IngestService
}

// NewHandler creates a new admin handler
func NewHandler(adminService *service.AdminService, ingestService *service.IngestService) *Handler {
	return &Handler{
		adminService:  adminService,
		ingestService: ingestService,
	}
}

// RegisterRoutes registers admin routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/ingest", h.IngestFile)
	r.POST("/ingest/text", h.IngestText)
	r.GET("/stats", h.GetStats)
}

// IngestFile accepts a cleaned corpus file upload and indexes it
func (h *Handler) IngestFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	// Stage the upload on disk so the chunker can read it.
	tmpDir, err := os.MkdirTemp("", "chaosagent-ingest-*")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, path); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	result, err := h.ingestService.IngestFile(c.Request.Context(), path)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, result)
}

type ingestTextRequest struct {
	Text   string `json:"text" binding:"required"`
	Source string `json:"source"`
}

// IngestText indexes raw text under a source label
func (h *Handler) IngestText(c *gin.Context) {
	var req ingestTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.ingestService.IngestText(c.Request.Context(), req.Text, req.Source)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetStats reports system-level counters
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.adminService.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}
