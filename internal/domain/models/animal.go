package models

import (
	"encoding/json"
	"fmt"
)

// Record field names as the herd service spells them. They double as sort keys.
const (
	FieldEarNum        = "EarNum"
	FieldFarmNum       = "FarmNum"
	FieldBreed         = "Breed"
	FieldSex           = "Sex"
	FieldBreedCategory = "breed_category"
	FieldStatus        = "status"
	FieldBirthDate     = "BirthDate"
)

// AnimalRecord is one tracked animal. EarNum is the identity key and is never
// reassigned; every attribute the service sends beyond the indexed ones is kept
// in Attributes so round-trips do not lose data.
type AnimalRecord struct {
	EarNum        string
	FarmNum       string
	Breed         string
	BreedCategory string
	Sex           string
	Status        string
	// BirthDate is the raw locale date string ("2020/3/1", "2020-03-01"); empty when unknown.
	BirthDate  string
	Attributes map[string]any
}

// Value returns the value stored under key, or nil when the record has none.
func (a AnimalRecord) Value(key string) any {
	switch key {
	case FieldEarNum:
		return a.EarNum
	case FieldFarmNum:
		return a.FarmNum
	case FieldBreed:
		return a.Breed
	case FieldBreedCategory:
		return a.BreedCategory
	case FieldSex:
		return a.Sex
	case FieldStatus:
		return a.Status
	case FieldBirthDate:
		return a.BirthDate
	}
	if a.Attributes == nil {
		return nil
	}
	return a.Attributes[key]
}

// Clone returns a copy whose Attributes map can be mutated independently.
func (a AnimalRecord) Clone() AnimalRecord {
	out := a
	if a.Attributes != nil {
		out.Attributes = make(map[string]any, len(a.Attributes))
		for k, v := range a.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}

// UnmarshalJSON splits the flat service payload into indexed fields and Attributes.
func (a *AnimalRecord) UnmarshalJSON(data []byte) error {
	raw := map[string]any{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode animal record: %w", err)
	}

	*a = AnimalRecord{}
	targets := map[string]*string{
		FieldEarNum:        &a.EarNum,
		FieldFarmNum:       &a.FarmNum,
		FieldBreed:         &a.Breed,
		FieldBreedCategory: &a.BreedCategory,
		FieldSex:           &a.Sex,
		FieldStatus:        &a.Status,
		FieldBirthDate:     &a.BirthDate,
	}

	for key, value := range raw {
		if dst, ok := targets[key]; ok {
			*dst = stringValue(value)
			continue
		}
		if a.Attributes == nil {
			a.Attributes = make(map[string]any)
		}
		a.Attributes[key] = value
	}
	return nil
}

// MarshalJSON flattens the record back into the service's shape.
func (a AnimalRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Attributes)+7)
	for k, v := range a.Attributes {
		out[k] = v
	}
	out[FieldEarNum] = a.EarNum
	setIfNotEmpty(out, FieldFarmNum, a.FarmNum)
	setIfNotEmpty(out, FieldBreed, a.Breed)
	setIfNotEmpty(out, FieldBreedCategory, a.BreedCategory)
	setIfNotEmpty(out, FieldSex, a.Sex)
	setIfNotEmpty(out, FieldStatus, a.Status)
	setIfNotEmpty(out, FieldBirthDate, a.BirthDate)
	return json.Marshal(out)
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func setIfNotEmpty(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}
