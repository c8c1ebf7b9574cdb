package models

// SortDirection orders the derived roster view.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// FilterSpec narrows the roster view. An empty field means "no constraint".
type FilterSpec struct {
	FarmNum       string `json:"farmNum" form:"farmNum"`
	Breed         string `json:"breed" form:"breed"`
	Sex           string `json:"sex" form:"sex"`
	BreedCategory string `json:"breedCategory" form:"breedCategory"`
	Status        string `json:"status" form:"status"`
	StartDate     string `json:"startDate" form:"startDate"`
	EndDate       string `json:"endDate" form:"endDate"`
}

// HasDateRange reports whether a start or end bound is active.
func (f FilterSpec) HasDateRange() bool {
	return f.StartDate != "" || f.EndDate != ""
}

// SortSpec selects the ordering of the roster view.
type SortSpec struct {
	Key       string        `json:"key"`
	Direction SortDirection `json:"direction"`
}

// FilterOptions lists the distinct values available to the filter selectors.
type FilterOptions struct {
	FarmNums []string `json:"farmNums"`
	Breeds   []string `json:"breeds"`
}

// RosterSnapshot is a consistent copy of the roster cache state.
type RosterSnapshot struct {
	Records   []AnimalRecord `json:"records"`
	Filters   FilterSpec     `json:"filters"`
	Sort      SortSpec       `json:"sort"`
	IsLoading bool           `json:"isLoading"`
	Error     string         `json:"error,omitempty"`
	Err       error          `json:"-"`
}
