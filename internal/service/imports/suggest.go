package imports

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SuggestMapping inspects an xlsx workbook and proposes a mapping for each
// sheet. Sheets named like the default layout take the default mapping; any
// other sheet takes the purpose whose fields best match its header row, or
// ignore when no purpose has all its required fields present.
func SuggestMapping(workbook []byte) (MappingConfig, error) {
	f, err := excelize.OpenReader(bytes.NewReader(workbook))
	if err != nil {
		return MappingConfig{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	defaults := DefaultMapping().Sheets
	out := MappingConfig{Sheets: map[string]SheetMapping{}}

	for _, name := range f.GetSheetList() {
		if mapping, ok := defaults[name]; ok {
			out.Sheets[name] = mapping
			continue
		}

		rows, err := f.GetRows(name)
		if err != nil {
			return MappingConfig{}, fmt.Errorf("read sheet %s: %w", name, err)
		}
		var header []string
		if len(rows) > 0 {
			header = rows[0]
		}
		out.Sheets[name] = guessSheet(header)
	}
	return out, nil
}

func guessSheet(header []string) SheetMapping {
	byKey := make(map[string]string, len(header))
	for _, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, seen := byKey[strings.ToLower(h)]; !seen {
			byKey[strings.ToLower(h)] = h
		}
	}

	best := SheetMapping{Purpose: PurposeIgnore, Columns: map[string]string{}}
	bestScore := 0
	for _, opt := range purposeOptions {
		if opt.Value == PurposeIgnore {
			continue
		}
		cols, complete := matchFields(fieldsByPurpose[opt.Value], byKey)
		if complete && len(cols) > bestScore {
			best = SheetMapping{Purpose: opt.Value, Columns: cols}
			bestScore = len(cols)
		}
	}
	return best
}

// matchFields maps each field whose key equals a header, ignoring case.
// complete is false when a required field found no header.
func matchFields(fields []FieldDef, byKey map[string]string) (map[string]string, bool) {
	cols := map[string]string{}
	complete := true
	for _, field := range fields {
		header, ok := byKey[strings.ToLower(field.Key)]
		if !ok {
			if field.Required {
				complete = false
			}
			continue
		}
		cols[field.Key] = header
	}
	return cols, complete
}
