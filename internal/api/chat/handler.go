package chat

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/liliang-cn/chaosagent/internal/domain"
	"github.com/liliang-cn/chaosagent/internal/service"
)

// Handler handles the public chat API
type Handler struct {
	chatService  *service.ChatService
	adminService *service.AdminService
}

// NewHandler creates a new chat handler
func NewHandler(chatService *service.ChatService, adminService *service.AdminService) *Handler {
	return &Handler{
		chatService:  chatService,
		adminService: adminService,
	}
}

// RegisterRoutes registers chat routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/chat", h.Chat)
	r.POST("/simulate", h.Simulate)

	sessions := r.Group("/sessions")
	{
		sessions.GET("", h.ListSessions)
		sessions.GET("/:id", h.GetSession)
		sessions.DELETE("/:id", h.DeleteSession)
	}
}

// Chat handles one conversational turn
func (h *Handler) Chat(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.chatService.Chat(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Simulate runs a simulation directly from explicit parameters
func (h *Handler) Simulate(c *gin.Context) {
	var req domain.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.chatService.Simulate(&req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListSessions returns all sessions, most recently active first
func (h *Handler) ListSessions(c *gin.Context) {
	sessions, err := h.adminService.ListSessions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// GetSession returns a session with its full transcript
func (h *Handler) GetSession(c *gin.Context) {
	id := c.Param("id")
	session, messages, err := h.adminService.GetTranscript(id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": session, "messages": messages})
}

// DeleteSession removes a session and its transcript
func (h *Handler) DeleteSession(c *gin.Context) {
	id := c.Param("id")
	if err := h.adminService.DeleteSession(id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "session deleted"})
}
