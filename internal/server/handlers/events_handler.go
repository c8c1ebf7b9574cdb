package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

// SheepEvents returns the event log of one animal.
func (h *Handler) SheepEvents(c *gin.Context) {
	list, err := h.events.Events(c.Request.Context(), c.Param("earNum"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": list})
}

// AddSheepEvent records an event for one animal.
func (h *Handler) AddSheepEvent(c *gin.Context) {
	var ev models.SheepEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	created, err := h.events.AddEvent(c.Request.Context(), c.Param("earNum"), ev)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateEvent rewrites an event.
func (h *Handler) UpdateEvent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var ev models.SheepEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	updated, err := h.events.UpdateEvent(c.Request.Context(), id, ev)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteEvent removes an event.
func (h *Handler) DeleteEvent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.events.DeleteEvent(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SheepHistory returns the measurement history of one animal.
func (h *Handler) SheepHistory(c *gin.Context) {
	list, err := h.events.History(c.Request.Context(), c.Param("earNum"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": list})
}

// DeleteHistory removes a measurement.
func (h *Handler) DeleteHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.events.DeleteHistory(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// EventOptions returns the event type presets.
func (h *Handler) EventOptions(c *gin.Context) {
	list, err := h.events.Options(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"types": list})
}

// AddEventType creates an event type.
func (h *Handler) AddEventType(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	created, err := h.events.AddEventType(c.Request.Context(), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// DeleteEventType removes an event type.
func (h *Handler) DeleteEventType(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.events.DeleteEventType(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddEventDescription adds a description preset.
func (h *Handler) AddEventDescription(c *gin.Context) {
	var req struct {
		TypeID      int64  `json:"event_type_option_id"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	created, err := h.events.AddEventDescription(c.Request.Context(), req.TypeID, req.Description)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// DeleteEventDescription removes a description preset.
func (h *Handler) DeleteEventDescription(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.events.DeleteEventDescription(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
