package imports

import "slices"

// SheetPurpose tags what one worksheet of an uploaded workbook contains.
type SheetPurpose string

const (
	PurposeIgnore             SheetPurpose = "ignore"
	PurposeBasicInfo          SheetPurpose = "basic_info"
	PurposeKiddingRecord      SheetPurpose = "kidding_record"
	PurposeMatingRecord       SheetPurpose = "mating_record"
	PurposeYeanRecord         SheetPurpose = "yean_record"
	PurposeWeightRecord       SheetPurpose = "weight_record"
	PurposeMilkYieldRecord    SheetPurpose = "milk_yield_record"
	PurposeMilkAnalysisRecord SheetPurpose = "milk_analysis_record"
	PurposeBreedMapping       SheetPurpose = "breed_mapping"
	PurposeSexMapping         SheetPurpose = "sex_mapping"
)

// FieldDef describes one system field a worksheet column can feed.
type FieldDef struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
	Example  string `json:"example"`
}

// PurposeOption pairs a purpose with its display text.
type PurposeOption struct {
	Value SheetPurpose `json:"value"`
	Label string       `json:"label"`
}

var purposeOptions = []PurposeOption{
	{PurposeIgnore, "Ignore this sheet"},
	{PurposeBasicInfo, "Animal basic information"},
	{PurposeKiddingRecord, "Kidding records"},
	{PurposeMatingRecord, "Mating records"},
	{PurposeYeanRecord, "Lactation / dry-off records"},
	{PurposeWeightRecord, "Weight records"},
	{PurposeMilkYieldRecord, "Milk yield records"},
	{PurposeMilkAnalysisRecord, "Milk composition analysis"},
	{PurposeBreedMapping, "Breed code table"},
	{PurposeSexMapping, "Sex code table"},
}

var fieldsByPurpose = map[SheetPurpose][]FieldDef{
	PurposeIgnore: {},
	PurposeBasicInfo: {
		{Key: "EarNum", Label: "Ear number", Required: true, Example: "0009AL088089"},
		{Key: "Breed", Label: "Breed (code)", Example: "AL"},
		{Key: "Sex", Label: "Sex (code)", Example: "1"},
		{Key: "BirthDate", Label: "Birth date", Example: "2008/7/23"},
		{Key: "Sire", Label: "Sire", Example: "sire ear number"},
		{Key: "Dam", Label: "Dam", Example: "dam ear number"},
		{Key: "BirWei", Label: "Birth weight (kg)", Example: "3.5"},
		{Key: "FarmNum", Label: "Farm number", Example: "0009"},
	},
	PurposeKiddingRecord: {
		{Key: "EarNum", Label: "Ewe ear number", Required: true, Example: "0009AL077032"},
		{Key: "YeanDate", Label: "Kidding date", Required: true, Example: "2009/4/19"},
		{Key: "KidNum", Label: "Kid ear number", Example: "0009AL099027"},
	},
	PurposeMatingRecord: {
		{Key: "EarNum", Label: "Ewe ear number", Required: true, Example: "0009FX10K706"},
		{Key: "Mat_date", Label: "Mating date", Required: true, Example: "2012/1/18"},
		{Key: "Mat_grouM_Sire", Label: "Mating sire ear number", Example: "0009AL070351"},
	},
	PurposeYeanRecord: {
		{Key: "EarNum", Label: "Ewe ear number", Required: true, Example: "0009FX10K706"},
		{Key: "YeanDate", Label: "Lactation start date", Required: true, Example: "2012/6/12"},
		{Key: "DryOffDate", Label: "Dry-off date", Example: "1900/1/1"},
		{Key: "Lactation", Label: "Lactation number", Example: "2"},
	},
	PurposeWeightRecord: {
		{Key: "EarNum", Label: "Ear number", Required: true, Example: "0007NU15..."},
		{Key: "MeaDate", Label: "Measurement date", Required: true, Example: "2015/8/11"},
		{Key: "Weight", Label: "Weight (kg)", Required: true, Example: "27.2"},
	},
	PurposeMilkYieldRecord: {
		{Key: "EarNum", Label: "Ear number", Required: true, Example: "0009AL071268"},
		{Key: "MeaDate", Label: "Measurement date", Required: true, Example: "2010/11/10"},
		{Key: "Milk", Label: "Milk yield (kg)", Required: true, Example: "4.1"},
	},
	PurposeMilkAnalysisRecord: {
		{Key: "EarNum", Label: "Ear number", Required: true, Example: "0009AL077032"},
		{Key: "MeaDate", Label: "Measurement date", Required: true, Example: "2019/1/1"},
		{Key: "AMFat", Label: "Milk fat (%)", Example: "3.29"},
	},
	PurposeBreedMapping: {
		{Key: "Code", Label: "Breed code", Required: true, Example: "AL"},
		{Key: "Name", Label: "Breed name", Required: true, Example: "Alpine"},
	},
	PurposeSexMapping: {
		{Key: "Code", Label: "Sex code", Required: true, Example: "2"},
		{Key: "Name", Label: "Sex name", Required: true, Example: "female"},
	},
}

// Fields returns the ordered field definitions for purpose, or nil when the
// purpose is unknown. Callers own the returned slice.
func Fields(purpose SheetPurpose) []FieldDef {
	defs, ok := fieldsByPurpose[purpose]
	if !ok {
		return nil
	}
	return slices.Clone(defs)
}

// Purposes lists every selectable purpose in display order.
func Purposes() []PurposeOption {
	return slices.Clone(purposeOptions)
}

// IsKnown reports whether purpose has a schema.
func IsKnown(purpose SheetPurpose) bool {
	_, ok := fieldsByPurpose[purpose]
	return ok
}
