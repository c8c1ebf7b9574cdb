package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

type rosterView struct {
	Records   []models.AnimalRecord `json:"records"`
	Total     int                   `json:"total"`
	Filters   models.FilterSpec     `json:"filters"`
	Sort      models.SortSpec       `json:"sort"`
	IsLoading bool                  `json:"isLoading"`
	Error     string                `json:"error,omitempty"`
}

// Roster returns the filtered and sorted listing. Filter query parameters
// replace the active filters; reset=true clears them first.
func (h *Handler) Roster(c *gin.Context) {
	ctx := c.Request.Context()

	if c.Query("reset") == "true" {
		h.roster.ResetFilters()
	}
	if len(c.Request.URL.Query()) > 0 {
		var filters models.FilterSpec
		if err := c.ShouldBindQuery(&filters); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filters"})
			return
		}
		if filters != (models.FilterSpec{}) {
			h.roster.SetFilters(filters)
		}
	}

	if snap := h.roster.Snapshot(); snap.IsLoading && len(snap.Records) == 0 {
		if err := h.roster.FetchSheep(ctx); err != nil {
			h.fail(c, err)
			return
		}
	}

	h.renderRoster(c)
}

func (h *Handler) renderRoster(c *gin.Context) {
	snap := h.roster.Snapshot()
	c.JSON(http.StatusOK, rosterView{
		Records:   h.roster.FilteredAndSorted(),
		Total:     len(snap.Records),
		Filters:   snap.Filters,
		Sort:      snap.Sort,
		IsLoading: snap.IsLoading,
		Error:     snap.Error,
	})
}

// RefreshRoster reloads the roster from the herd service.
func (h *Handler) RefreshRoster(c *gin.Context) {
	if err := h.roster.FetchSheep(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	h.renderRoster(c)
}

// SortRoster cycles the sort on the given column.
func (h *Handler) SortRoster(c *gin.Context) {
	h.roster.SetSort(c.Param("key"))
	h.renderRoster(c)
}

// RosterOptions returns the values for the filter selectors.
func (h *Handler) RosterOptions(c *gin.Context) {
	c.JSON(http.StatusOK, h.roster.FilterOptions())
}

// Sheep returns one cached animal.
func (h *Handler) Sheep(c *gin.Context) {
	rec, ok := h.roster.GetSheepByEarNum(c.Param("earNum"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "sheep not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// CreateSheep adds an animal.
func (h *Handler) CreateSheep(c *gin.Context) {
	var rec models.AnimalRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	created, err := h.roster.CreateSheep(c.Request.Context(), rec)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateSheep overwrites an animal's attributes.
func (h *Handler) UpdateSheep(c *gin.Context) {
	var rec models.AnimalRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	updated, err := h.roster.UpdateSheep(c.Request.Context(), c.Param("earNum"), rec)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteSheep removes an animal.
func (h *Handler) DeleteSheep(c *gin.Context) {
	if err := h.roster.DeleteSheep(c.Request.Context(), c.Param("earNum")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
