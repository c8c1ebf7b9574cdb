package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/herdbook/pkg/clients/herd"
)

// Dashboard returns the aggregate metrics, loading them on the first visit.
func (h *Handler) Dashboard(c *gin.Context) {
	h.dashboard.FetchDashboardDataIfNeeded(c.Request.Context())
	h.renderDashboard(c)
}

// RefreshDashboard discards the cached metrics and loads them again.
func (h *Handler) RefreshDashboard(c *gin.Context) {
	h.dashboard.Reset()
	h.dashboard.FetchDashboardDataIfNeeded(c.Request.Context())
	h.renderDashboard(c)
}

func (h *Handler) renderDashboard(c *gin.Context) {
	snap := h.dashboard.Snapshot()
	if herd.IsUnauthorized(snap.Err) {
		// Let the next visit after logging in try again.
		h.dashboard.Reset()
		h.fail(c, snap.Err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// AgentTip returns the advisory tip, fetching it at most once per session.
func (h *Handler) AgentTip(c *gin.Context) {
	h.dashboard.FetchAgentTipIfNeeded(c.Request.Context())
	snap := h.dashboard.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"tipHtml":      snap.TipHTML,
		"tipError":     snap.TipError,
		"isTipLoading": snap.IsTipLoading,
	})
}
