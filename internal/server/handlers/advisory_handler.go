package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Message string `json:"message"`
	EarNum  string `json:"ear_num"`
}

// Chat sends one advisory chat turn.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	reply, err := h.advisory.Chat(c.Request.Context(), req.Message, req.EarNum)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// Recommend requests a recommendation for the posted animal profile.
func (h *Handler) Recommend(c *gin.Context) {
	var data map[string]any
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	rec, err := h.advisory.Recommend(c.Request.Context(), data)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
