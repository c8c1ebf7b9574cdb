package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

func TestQuoteSheet(t *testing.T) {
	require.Equal(t, "'Weights'", quoteSheet("Weights"))
	require.Equal(t, "'Ewe''s milk'", quoteSheet("Ewe's milk"))
}

func TestExportWorkbook(t *testing.T) {
	values := map[string][][]string{
		"Weights":  {{"EarNum", "MeaDate", "Weight"}, {"A-01", "2024/1/1", "42.5"}},
		"S2_Breed": {{"Symbol", "Breed"}, {"AL", "Alpine"}},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		const base = "/v4/spreadsheets/sheet-1"
		switch {
		case r.URL.Path == base:
			_ = json.NewEncoder(w).Encode(map[string]any{"sheets": []any{
				map[string]any{"properties": map[string]any{"title": "Weights"}},
				map[string]any{"properties": map[string]any{"title": "S2_Breed"}},
			}})
		case strings.HasPrefix(r.URL.Path, base+"/values/"):
			title := strings.Trim(strings.TrimPrefix(r.URL.Path, base+"/values/"), "'")
			_ = json.NewEncoder(w).Encode(map[string]any{"range": title, "values": values[title]})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	service, err := sheetsapi.NewService(ctx, option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)

	data, err := newRepository(service, nil).ExportWorkbook(ctx, "sheet-1")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"Weights", "S2_Breed"}, f.GetSheetList())
	rows, err := f.GetRows("Weights")
	require.NoError(t, err)
	require.Equal(t, values["Weights"], rows)
}
