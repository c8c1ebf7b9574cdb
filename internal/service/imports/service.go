package imports

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/pkg/clients/herd"
)

var (
	// ErrEmptyWorkbook rejects an upload with no bytes.
	ErrEmptyWorkbook = errors.New("workbook is empty")
	// ErrNoWorkbookSource is returned when no spreadsheet source is configured.
	ErrNoWorkbookSource = errors.New("no spreadsheet source configured")
)

// Client is the slice of the herd service used by the import workflow.
type Client interface {
	AnalyzeWorkbook(ctx context.Context, upload herd.Upload) (models.WorkbookAnalysis, error)
	ProcessImport(ctx context.Context, upload herd.Upload, defaultMode bool, mapping any) (models.ImportReport, error)
}

// WorkbookSource exports a hosted spreadsheet as xlsx bytes.
type WorkbookSource interface {
	ExportWorkbook(ctx context.Context, spreadsheetID string) ([]byte, error)
}

// Request is one import submission. In default mode the service applies its
// own layout and Mapping is ignored.
type Request struct {
	Filename    string
	Data        []byte
	DefaultMode bool
	Mapping     *MappingConfig
}

// Service drives workbook analysis and import submission.
type Service struct {
	client   Client
	source   WorkbookSource
	fallback *MappingConfig
	logger   *zap.Logger
}

// NewService builds the import workflow. source and fallback are optional;
// fallback is used for manual imports that carry no mapping.
func NewService(client Client, source WorkbookSource, fallback *MappingConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, source: source, fallback: fallback, logger: logger}
}

// Analyze asks the herd service to describe the workbook's sheets.
func (s *Service) Analyze(ctx context.Context, filename string, data []byte) (models.WorkbookAnalysis, error) {
	if len(data) == 0 {
		return models.WorkbookAnalysis{}, ErrEmptyWorkbook
	}
	analysis, err := s.client.AnalyzeWorkbook(ctx, herd.Upload{Filename: filename, Data: data})
	if err != nil {
		return models.WorkbookAnalysis{}, fmt.Errorf("analyze workbook: %w", err)
	}
	return analysis, nil
}

// Suggest proposes a mapping from the workbook's own sheet names and headers.
func (s *Service) Suggest(data []byte) (MappingConfig, error) {
	if len(data) == 0 {
		return MappingConfig{}, ErrEmptyWorkbook
	}
	return SuggestMapping(data)
}

// Submit validates the request and hands it to the herd service. Nothing is
// sent when validation fails.
func (s *Service) Submit(ctx context.Context, req Request) (models.ImportReport, error) {
	if len(req.Data) == 0 {
		return models.ImportReport{}, ErrEmptyWorkbook
	}
	upload := herd.Upload{Filename: req.Filename, Data: req.Data}

	if req.DefaultMode {
		return s.process(ctx, upload, true, nil)
	}

	mapping := req.Mapping
	if mapping == nil {
		mapping = s.fallback
	}
	if mapping == nil {
		return models.ImportReport{}, ErrEmptyMapping
	}
	if err := mapping.Validate(); err != nil {
		return models.ImportReport{}, err
	}
	return s.process(ctx, upload, false, mapping)
}

// SubmitSpreadsheet exports a hosted spreadsheet and submits it like an upload.
func (s *Service) SubmitSpreadsheet(ctx context.Context, spreadsheetID string, defaultMode bool, mapping *MappingConfig) (models.ImportReport, error) {
	if s.source == nil {
		return models.ImportReport{}, ErrNoWorkbookSource
	}
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return models.ImportReport{}, errors.New("spreadsheet id is required")
	}

	data, err := s.source.ExportWorkbook(ctx, spreadsheetID)
	if err != nil {
		return models.ImportReport{}, fmt.Errorf("export spreadsheet %s: %w", spreadsheetID, err)
	}
	return s.Submit(ctx, Request{
		Filename:    spreadsheetID + ".xlsx",
		Data:        data,
		DefaultMode: defaultMode,
		Mapping:     mapping,
	})
}

func (s *Service) process(ctx context.Context, upload herd.Upload, defaultMode bool, mapping *MappingConfig) (models.ImportReport, error) {
	var doc any
	if mapping != nil {
		doc = mapping
	}

	report, err := s.client.ProcessImport(ctx, upload, defaultMode, doc)
	if err != nil {
		return models.ImportReport{}, fmt.Errorf("process import: %w", err)
	}
	s.logger.Info("import processed",
		zap.String("file", upload.Filename),
		zap.Bool("default_mode", defaultMode),
		zap.Int("sheets", len(report.Details)),
	)
	return report, nil
}
