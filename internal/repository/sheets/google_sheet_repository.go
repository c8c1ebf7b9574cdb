package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/herdbook/internal/config"
)

// GoogleSheetRepository reads hosted spreadsheets through the official Google Sheets API.
type GoogleSheetRepository struct {
	service *sheetsapi.Service
	logger  *zap.Logger
}

// NewGoogleSheetRepository builds a read-only Google Sheets client from a
// service-account credentials file.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}
	return newRepository(service, logger), nil
}

func newRepository(service *sheetsapi.Service, logger *zap.Logger) *GoogleSheetRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoogleSheetRepository{service: service, logger: logger}
}

// SheetTitles lists the worksheet titles of a spreadsheet in tab order.
func (r *GoogleSheetRepository) SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	resp, err := r.service.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet %s: %w", spreadsheetID, err)
	}

	titles := make([]string, 0, len(resp.Sheets))
	for _, sheet := range resp.Sheets {
		if sheet.Properties != nil {
			titles = append(titles, sheet.Properties.Title)
		}
	}
	return titles, nil
}

// ReadRange fetches a rectangular data range from the spreadsheet.
func (r *GoogleSheetRepository) ReadRange(ctx context.Context, spreadsheetID, sheetRange string) ([][]interface{}, error) {
	if sheetRange == "" {
		return nil, fmt.Errorf("sheetRange must not be empty")
	}

	resp, err := r.service.Spreadsheets.Values.Get(spreadsheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}

	return resp.Values, nil
}

// ExportWorkbook copies every worksheet's values into an xlsx workbook so the
// spreadsheet can go through the same import path as an uploaded file.
func (r *GoogleSheetRepository) ExportWorkbook(ctx context.Context, spreadsheetID string) ([]byte, error) {
	titles, err := r.SheetTitles(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		return nil, fmt.Errorf("spreadsheet %s has no sheets", spreadsheetID)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, title := range titles {
		values, err := r.ReadRange(ctx, spreadsheetID, quoteSheet(title))
		if err != nil {
			return nil, err
		}

		if i == 0 {
			if err := f.SetSheetName("Sheet1", title); err != nil {
				return nil, fmt.Errorf("name sheet %s: %w", title, err)
			}
		} else if _, err := f.NewSheet(title); err != nil {
			return nil, fmt.Errorf("add sheet %s: %w", title, err)
		}

		for rowIdx, row := range values {
			cell, err := excelize.CoordinatesToCellName(1, rowIdx+1)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(title, cell, &row); err != nil {
				return nil, fmt.Errorf("write sheet %s row %d: %w", title, rowIdx+1, err)
			}
		}
		r.logger.Debug("sheet exported", zap.String("sheet", title), zap.Int("rows", len(values)))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// quoteSheet turns a sheet title into an A1 range covering the whole sheet.
func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
