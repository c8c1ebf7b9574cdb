package imports

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyMapping rejects a manual import that maps no sheet at all.
	ErrEmptyMapping = errors.New("mapping configuration has no sheets")
	// ErrUnknownPurpose rejects a sheet tagged with a purpose outside the schema.
	ErrUnknownPurpose = errors.New("unknown sheet purpose")
	// ErrMissingRequiredField rejects a sheet that leaves a required field unmapped.
	ErrMissingRequiredField = errors.New("required field not mapped")
)

// SheetMapping assigns a purpose to a sheet and maps system field keys to the
// sheet's column headers.
type SheetMapping struct {
	Purpose SheetPurpose      `json:"purpose" yaml:"purpose"`
	Columns map[string]string `json:"columns" yaml:"columns"`
}

// MappingConfig is the document submitted with a manual import.
type MappingConfig struct {
	Sheets map[string]SheetMapping `json:"sheets" yaml:"sheets"`
}

// Validate reports every unknown purpose and unmapped required field at once.
func (c MappingConfig) Validate() error {
	if len(c.Sheets) == 0 {
		return ErrEmptyMapping
	}

	names := make([]string, 0, len(c.Sheets))
	for name := range c.Sheets {
		names = append(names, name)
	}
	slices.Sort(names)

	var errs error
	for _, name := range names {
		sheet := c.Sheets[name]
		if !IsKnown(sheet.Purpose) {
			errs = multierr.Append(errs, fmt.Errorf("sheet %q: %w %q", name, ErrUnknownPurpose, sheet.Purpose))
			continue
		}
		for _, field := range fieldsByPurpose[sheet.Purpose] {
			if field.Required && strings.TrimSpace(sheet.Columns[field.Key]) == "" {
				errs = multierr.Append(errs, fmt.Errorf("sheet %q: %w %s (%s)", name, ErrMissingRequiredField, field.Key, field.Label))
			}
		}
	}
	return errs
}

// DefaultMapping is the layout the herd service applies in default mode.
func DefaultMapping() MappingConfig {
	same := func(keys ...string) map[string]string {
		cols := make(map[string]string, len(keys))
		for _, k := range keys {
			cols[k] = k
		}
		return cols
	}

	return MappingConfig{Sheets: map[string]SheetMapping{
		"0009-0013A1_Basic": {Purpose: PurposeBasicInfo, Columns: same(
			"EarNum", "Breed", "Sex", "BirthDate", "Sire", "Dam", "BirWei", "SireBre", "DamBre",
			"MoveCau", "MoveDate", "Class", "LittleSize", "Lactation", "ManaClas", "FarmNum", "RUni",
		)},
		"0009-0013A4_Kidding":       {Purpose: PurposeKiddingRecord, Columns: same("EarNum", "YeanDate", "KidNum", "KidSex")},
		"0009-0013A2_PubMat":        {Purpose: PurposeMatingRecord, Columns: same("EarNum", "Mat_date", "Mat_grouM_Sire")},
		"0009-0013A3_Yean":          {Purpose: PurposeYeanRecord, Columns: same("EarNum", "YeanDate", "DryOffDate", "Lactation")},
		"0009-0013A9_Milk":          {Purpose: PurposeMilkYieldRecord, Columns: same("EarNum", "MeaDate", "Milk")},
		"0009-0013A11_MilkAnalysis": {Purpose: PurposeMilkAnalysisRecord, Columns: same("EarNum", "MeaDate", "AMFat")},
		"S2_Breed":                  {Purpose: PurposeBreedMapping, Columns: map[string]string{"Code": "Symbol", "Name": "Breed"}},
		"S7_Sex":                    {Purpose: PurposeSexMapping, Columns: map[string]string{"Code": "Num", "Name": "Sex"}},
	}}
}

// LoadMappingConfig reads a mapping document from disk. YAML and JSON are
// both accepted.
func LoadMappingConfig(path string) (MappingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MappingConfig{}, fmt.Errorf("read mapping file: %w", err)
	}
	var cfg MappingConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return MappingConfig{}, fmt.Errorf("parse mapping file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return MappingConfig{}, fmt.Errorf("validate mapping file %s: %w", path, err)
	}
	return cfg, nil
}
