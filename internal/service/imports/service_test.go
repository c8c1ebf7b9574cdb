package imports_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/mocks"
	"github.com/mamadbah2/herdbook/internal/service/imports"
	"github.com/mamadbah2/herdbook/pkg/clients/herd"
)

type stubSource struct {
	data []byte
	err  error
	ids  []string
}

func (s *stubSource) ExportWorkbook(_ context.Context, id string) ([]byte, error) {
	s.ids = append(s.ids, id)
	return s.data, s.err
}

var workbook = []byte("PK\x03\x04 fake xlsx")

func TestSubmit_DefaultModeSendsNoMapping(t *testing.T) {
	ctx := context.Background()
	client := &mocks.HerdClient{}
	upload := herd.Upload{Filename: "flock.xlsx", Data: workbook}
	client.On("ProcessImport", ctx, upload, true, nil).
		Return(models.ImportReport{Success: true, Message: "imported", Details: []models.ImportSheetReport{{Sheet: "0009-0013A1_Basic"}}}, nil)

	svc := imports.NewService(client, nil, nil, nil)
	report, err := svc.Submit(ctx, imports.Request{Filename: "flock.xlsx", Data: workbook, DefaultMode: true, Mapping: &imports.MappingConfig{}})
	require.NoError(t, err)
	assert.True(t, report.Success)
	client.AssertExpectations(t)
}

func TestSubmit_ManualModeValidatesBeforeSending(t *testing.T) {
	ctx := context.Background()
	client := &mocks.HerdClient{}
	svc := imports.NewService(client, nil, nil, nil)

	bad := &imports.MappingConfig{Sheets: map[string]imports.SheetMapping{
		"Weights": {Purpose: imports.PurposeWeightRecord, Columns: map[string]string{"EarNum": "Tag"}},
	}}
	_, err := svc.Submit(ctx, imports.Request{Filename: "w.xlsx", Data: workbook, Mapping: bad})
	require.ErrorIs(t, err, imports.ErrMissingRequiredField)

	unknown := &imports.MappingConfig{Sheets: map[string]imports.SheetMapping{"Feed": {Purpose: "feed_record"}}}
	_, err = svc.Submit(ctx, imports.Request{Filename: "w.xlsx", Data: workbook, Mapping: unknown})
	require.ErrorIs(t, err, imports.ErrUnknownPurpose)

	_, err = svc.Submit(ctx, imports.Request{Filename: "w.xlsx", Data: workbook})
	require.ErrorIs(t, err, imports.ErrEmptyMapping)

	_, err = svc.Submit(ctx, imports.Request{Filename: "w.xlsx", DefaultMode: true})
	require.ErrorIs(t, err, imports.ErrEmptyWorkbook)

	client.AssertNotCalled(t, "ProcessImport", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_ManualModeUsesFallbackMapping(t *testing.T) {
	ctx := context.Background()
	fallback := &imports.MappingConfig{Sheets: map[string]imports.SheetMapping{
		"Weights": {Purpose: imports.PurposeWeightRecord, Columns: map[string]string{"EarNum": "Tag", "MeaDate": "Date", "Weight": "Kg"}},
	}}
	client := &mocks.HerdClient{}
	client.On("ProcessImport", ctx, herd.Upload{Filename: "w.xlsx", Data: workbook}, false, fallback).
		Return(models.ImportReport{Success: true}, nil).Once()

	svc := imports.NewService(client, nil, fallback, nil)
	_, err := svc.Submit(ctx, imports.Request{Filename: "w.xlsx", Data: workbook})
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestSubmit_RemoteFailure(t *testing.T) {
	ctx := context.Background()
	client := &mocks.HerdClient{}
	client.On("ProcessImport", ctx, mock.Anything, true, nil).
		Return(models.ImportReport{}, &herd.APIError{StatusCode: 400, Message: "sheet 0009-0013A1_Basic missing"})

	svc := imports.NewService(client, nil, nil, nil)
	_, err := svc.Submit(ctx, imports.Request{Filename: "w.xlsx", Data: workbook, DefaultMode: true})
	require.ErrorContains(t, err, "sheet 0009-0013A1_Basic missing")
}

func TestAnalyze(t *testing.T) {
	ctx := context.Background()
	client := &mocks.HerdClient{}
	analysis := models.WorkbookAnalysis{Success: true, Sheets: map[string]models.SheetAnalysis{"Weights": {Columns: []string{"Tag"}, Rows: 4}}}
	client.On("AnalyzeWorkbook", ctx, herd.Upload{Filename: "w.xlsx", Data: workbook}).Return(analysis, nil)

	svc := imports.NewService(client, nil, nil, nil)
	got, err := svc.Analyze(ctx, "w.xlsx", workbook)
	require.NoError(t, err)
	assert.Equal(t, analysis, got)

	_, err = svc.Analyze(ctx, "w.xlsx", nil)
	require.ErrorIs(t, err, imports.ErrEmptyWorkbook)
}

func TestSubmitSpreadsheet(t *testing.T) {
	ctx := context.Background()

	t.Run("without source", func(t *testing.T) {
		svc := imports.NewService(&mocks.HerdClient{}, nil, nil, nil)
		_, err := svc.SubmitSpreadsheet(ctx, "sheet-1", true, nil)
		require.ErrorIs(t, err, imports.ErrNoWorkbookSource)
	})

	t.Run("exports then submits", func(t *testing.T) {
		client := &mocks.HerdClient{}
		client.On("ProcessImport", ctx, herd.Upload{Filename: "sheet-1.xlsx", Data: workbook}, true, nil).
			Return(models.ImportReport{Success: true}, nil).Once()
		source := &stubSource{data: workbook}

		svc := imports.NewService(client, source, nil, nil)
		_, err := svc.SubmitSpreadsheet(ctx, " sheet-1 ", true, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"sheet-1"}, source.ids)
		client.AssertExpectations(t)
	})

	t.Run("export failure", func(t *testing.T) {
		source := &stubSource{err: errors.New("403 forbidden")}
		svc := imports.NewService(&mocks.HerdClient{}, source, nil, nil)
		_, err := svc.SubmitSpreadsheet(ctx, "sheet-1", true, nil)
		require.ErrorContains(t, err, "403 forbidden")
	})
}
