package imports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, sheets map[string][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, header := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		row := header
		require.NoError(t, f.SetSheetRow(name, "A1", &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestSuggestMapping(t *testing.T) {
	data := buildWorkbook(t, map[string][]any{
		"S2_Breed": {"Symbol", "Breed"},
		"Weighing": {"earnum", "MEADATE", "Weight", "Notes"},
		"Milk":     {"EarNum", "MeaDate", "Milk"},
		"Notes":    {"Comment"},
	})

	cfg, err := SuggestMapping(data)
	require.NoError(t, err)
	require.Len(t, cfg.Sheets, 4)

	assert.Equal(t, DefaultMapping().Sheets["S2_Breed"], cfg.Sheets["S2_Breed"])

	weighing := cfg.Sheets["Weighing"]
	assert.Equal(t, PurposeWeightRecord, weighing.Purpose)
	assert.Equal(t, map[string]string{"EarNum": "earnum", "MeaDate": "MEADATE", "Weight": "Weight"}, weighing.Columns)

	assert.Equal(t, PurposeMilkYieldRecord, cfg.Sheets["Milk"].Purpose)
	assert.Equal(t, PurposeIgnore, cfg.Sheets["Notes"].Purpose)

	require.NoError(t, cfg.Validate())
}

func TestSuggestMapping_NotAWorkbook(t *testing.T) {
	_, err := SuggestMapping([]byte("EarNum,Breed\n"))
	require.ErrorContains(t, err, "open workbook")
}
