package models

// SheetAnalysis describes one sheet of an uploaded workbook as seen by the service.
type SheetAnalysis struct {
	Columns []string            `json:"columns"`
	Rows    int                 `json:"rows"`
	Preview []map[string]string `json:"preview"`
}

// WorkbookAnalysis maps sheet names to their analysis.
type WorkbookAnalysis struct {
	Success bool                     `json:"success"`
	Sheets  map[string]SheetAnalysis `json:"sheets"`
}

// ImportSheetReport is the per-sheet outcome of an import run.
type ImportSheetReport struct {
	Sheet   string `json:"sheet"`
	Message string `json:"message"`
}

// ImportReport is the outcome of an import submission.
type ImportReport struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Details []ImportSheetReport `json:"details"`
}
