package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/herdbook/internal/service/imports"
)

const maxWorkbookBytes = 32 << 20

type purposeSchema struct {
	imports.PurposeOption
	Fields []imports.FieldDef `json:"fields"`
}

// ImportSchema lists the sheet purposes and their field definitions.
func (h *Handler) ImportSchema(c *gin.Context) {
	opts := imports.Purposes()
	out := make([]purposeSchema, 0, len(opts))
	for _, opt := range opts {
		out = append(out, purposeSchema{PurposeOption: opt, Fields: imports.Fields(opt.Value)})
	}
	c.JSON(http.StatusOK, gin.H{"purposes": out, "default_mapping": imports.DefaultMapping()})
}

// AnalyzeWorkbook describes the sheets of an uploaded workbook.
func (h *Handler) AnalyzeWorkbook(c *gin.Context) {
	name, data, ok := h.readWorkbook(c)
	if !ok {
		return
	}
	analysis, err := h.imports.Analyze(c.Request.Context(), name, data)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// SuggestMapping proposes a mapping for an uploaded workbook without contacting the herd service.
func (h *Handler) SuggestMapping(c *gin.Context) {
	_, data, ok := h.readWorkbook(c)
	if !ok {
		return
	}
	mapping, err := h.imports.Suggest(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, mapping)
}

// SubmitImport imports an uploaded workbook. The form carries the file,
// default_mode and, for manual imports, a JSON mapping document.
func (h *Handler) SubmitImport(c *gin.Context) {
	name, data, ok := h.readWorkbook(c)
	if !ok {
		return
	}
	defaultMode, mapping, ok := h.readMode(c)
	if !ok {
		return
	}

	report, err := h.imports.Submit(c.Request.Context(), imports.Request{
		Filename:    name,
		Data:        data,
		DefaultMode: defaultMode,
		Mapping:     mapping,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

type spreadsheetImportRequest struct {
	SpreadsheetID string                 `json:"spreadsheet_id" binding:"required"`
	DefaultMode   bool                   `json:"default_mode"`
	Mapping       *imports.MappingConfig `json:"mapping"`
}

// SubmitSpreadsheetImport imports a hosted Google spreadsheet.
func (h *Handler) SubmitSpreadsheetImport(c *gin.Context) {
	var req spreadsheetImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "spreadsheet_id is required"})
		return
	}
	report, err := h.imports.SubmitSpreadsheet(c.Request.Context(), req.SpreadsheetID, req.DefaultMode, req.Mapping)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) readWorkbook(c *gin.Context) (string, []byte, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a workbook file is required"})
		return "", nil, false
	}
	if header.Size > maxWorkbookBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "workbook is too large"})
		return "", nil, false
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read workbook"})
		return "", nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read workbook"})
		return "", nil, false
	}
	return header.Filename, data, true
}

func (h *Handler) readMode(c *gin.Context) (bool, *imports.MappingConfig, bool) {
	defaultMode := false
	if raw := c.PostForm("default_mode"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "default_mode must be a boolean"})
			return false, nil, false
		}
		defaultMode = v
	}

	raw := c.PostForm("mapping")
	if defaultMode || raw == "" {
		return defaultMode, nil, true
	}
	var mapping imports.MappingConfig
	if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mapping must be a JSON mapping document"})
		return false, nil, false
	}
	return false, &mapping, true
}
