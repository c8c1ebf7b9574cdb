package roster

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

const dateLayout = "2006/1/2"

// ParseDate reads the locale date strings the herd service stores
// ("2020/3/1", "2020-03-01", "2020-03-01T00:00:00", "2020/03/01 08:00").
// It reports false instead of failing on anything it cannot read.
func ParseDate(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	if i := strings.IndexAny(value, " T"); i >= 0 {
		value = value[:i]
	}
	value = strings.ReplaceAll(value, "-", "/")

	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Apply derives the listing view from records. The input slice and its
// records are left untouched.
func Apply(records []models.AnimalRecord, filters models.FilterSpec, sort models.SortSpec) []models.AnimalRecord {
	window := newDateWindow(filters)

	out := make([]models.AnimalRecord, 0, len(records))
	for _, rec := range records {
		if matches(rec, filters, window) {
			out = append(out, rec.Clone())
		}
	}

	if sort.Key == "" {
		return out
	}

	slices.SortStableFunc(out, func(a, b models.AnimalRecord) int {
		c := compareField(a, b, sort.Key)
		if sort.Direction == models.SortDesc {
			return -c
		}
		return c
	})
	return out
}

// BuildFilterOptions collects the distinct non-empty farm numbers and breeds,
// each sorted lexically.
func BuildFilterOptions(records []models.AnimalRecord) models.FilterOptions {
	farms := map[string]struct{}{}
	breeds := map[string]struct{}{}
	for _, rec := range records {
		if rec.FarmNum != "" {
			farms[rec.FarmNum] = struct{}{}
		}
		if rec.Breed != "" {
			breeds[rec.Breed] = struct{}{}
		}
	}
	return models.FilterOptions{
		FarmNums: sortedKeys(farms),
		Breeds:   sortedKeys(breeds),
	}
}

type dateWindow struct {
	active     bool
	invalid    bool
	start, end time.Time
	hasStart   bool
	hasEnd     bool
}

func newDateWindow(filters models.FilterSpec) dateWindow {
	w := dateWindow{active: filters.HasDateRange()}
	if filters.StartDate != "" {
		t, ok := ParseDate(filters.StartDate)
		w.start, w.hasStart = t, ok
		w.invalid = w.invalid || !ok
	}
	if filters.EndDate != "" {
		t, ok := ParseDate(filters.EndDate)
		w.end, w.hasEnd = t, ok
		w.invalid = w.invalid || !ok
	}
	return w
}

func (w dateWindow) contains(birthDate string) bool {
	if !w.active {
		return true
	}
	if w.invalid {
		return false
	}
	born, ok := ParseDate(birthDate)
	if !ok {
		return false
	}
	if w.hasStart && born.Before(w.start) {
		return false
	}
	if w.hasEnd && born.After(w.end) {
		return false
	}
	return true
}

func matches(rec models.AnimalRecord, f models.FilterSpec, window dateWindow) bool {
	switch {
	case f.FarmNum != "" && rec.FarmNum != f.FarmNum:
		return false
	case f.Breed != "" && rec.Breed != f.Breed:
		return false
	case f.Sex != "" && rec.Sex != f.Sex:
		return false
	case f.BreedCategory != "" && rec.BreedCategory != f.BreedCategory:
		return false
	case f.Status != "" && rec.Status != f.Status:
		return false
	}
	return window.contains(rec.BirthDate)
}

func compareField(a, b models.AnimalRecord, key string) int {
	if key == models.FieldBirthDate {
		return cmp.Compare(birthMillis(a.BirthDate), birthMillis(b.BirthDate))
	}
	return compareValues(a.Value(key), b.Value(key))
}

func birthMillis(raw string) int64 {
	t, ok := ParseDate(raw)
	if !ok {
		return 0
	}
	return t.UnixMilli()
}

// compareValues orders numbers numerically and everything else as text.
// A missing value stands in for the zero value of the other side's type.
func compareValues(a, b any) int {
	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	if (aNum || a == nil) && (bNum || b == nil) && (aNum || bNum) {
		return cmp.Compare(af, bf)
	}
	return strings.Compare(toText(a), toText(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func toText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
