package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/service/session"
)

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Session returns the current authentication state.
func (h *Handler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// Login opens a session.
func (h *Handler) Login(c *gin.Context) {
	h.authenticate(c, h.session.Login)
}

// Register creates an account and opens a session.
func (h *Handler) Register(c *gin.Context) {
	h.authenticate(c, h.session.Register)
}

func (h *Handler) authenticate(c *gin.Context, submit func(ctx context.Context, creds models.Credentials) bool) {
	var creds models.Credentials
	// Missing fields are rejected by the session manager with its own message.
	_ = c.ShouldBind(&creds)

	if !submit(c.Request.Context(), creds) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": h.session.Snapshot().LastError})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": h.session.Snapshot(), "redirect": session.RouteRoot})
}

// Logout closes the session and empties every cache.
func (h *Handler) Logout(c *gin.Context) {
	h.session.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"redirect": session.RouteLogin})
}

type apiKeyRequest struct {
	APIKey string `json:"api_key" form:"api_key"`
}

// SaveAPIKey checks and stores the advisory API key.
func (h *Handler) SaveAPIKey(c *gin.Context) {
	var req apiKeyRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	status := h.session.TestAndSaveAPIKey(c.Request.Context(), req.APIKey)
	code := http.StatusOK
	if !status.Valid {
		code = http.StatusUnprocessableEntity
	}
	c.JSON(code, status)
}
