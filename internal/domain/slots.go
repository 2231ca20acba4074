package domain

// Capacity is the closed size vocabulary slots extract from phrases like
// "small tumbler" or "large mug".
type Capacity string

const (
	CapacityUnspecified Capacity = ""
	CapacitySmall       Capacity = "small"
	CapacityMedium      Capacity = "medium"
	CapacityLarge       Capacity = "large"
)

// TimeQuery is the closed vocabulary of outlet time questions.
type TimeQuery string

const (
	TimeQueryNone      TimeQuery = ""
	TimeQueryOpening   TimeQuery = "opening"
	TimeQueryClosing   TimeQuery = "closing"
	TimeQueryFullHours TimeQuery = "full_hours"
)

// Superlative is the closed vocabulary of extreme-value queries recognised
// by the product retriever's ordering contract.
type Superlative string

const (
	SuperlativeNone     Superlative = ""
	SuperlativeCheapest Superlative = "cheapest"
	SuperlativeDearest  Superlative = "most_expensive"
)

// BudgetRange carries an optional min/max currency bound. Either bound may
// be nil; a nil Max means "no upper bound", a nil Min means "no lower bound".
type BudgetRange struct {
	Min *float64
	Max *float64
}

// Slots is a configuration-style record carrying every recognised option
// extracted from one utterance. All fields are optional; absence is not a
// wildcard, the planner decides per-intent whether to broaden the search.
type Slots struct {
	Locations   []string
	Services    []string
	Materials   []string
	Features    []string
	Collections []string
	Capacity    Capacity
	Budget      BudgetRange
	TimeQuery   TimeQuery
	Keywords    []string
	Superlative Superlative
	// Singular marks a request for exactly one result ("the cheapest")
	// rather than the top-N ("cheapest ones").
	Singular bool
	// ShowAll is the planner-level override recognised from phrases like
	// "show all products"; it suppresses filters for that turn only.
	ShowAll bool
	// CountQuery marks a "how many ..." question; the outlet engine then
	// reports the exact filtered-set size instead of a truncated list.
	CountQuery bool
}

// IsEmpty reports whether no slot carries a value, used by the planner to
// decide whether to ask a clarifying follow-up.
func (s Slots) IsEmpty() bool {
	return len(s.Locations) == 0 &&
		len(s.Services) == 0 &&
		len(s.Materials) == 0 &&
		len(s.Features) == 0 &&
		len(s.Collections) == 0 &&
		s.Capacity == CapacityUnspecified &&
		s.Budget.Min == nil &&
		s.Budget.Max == nil &&
		s.TimeQuery == TimeQueryNone &&
		len(s.Keywords) == 0 &&
		s.Superlative == SuperlativeNone &&
		!s.CountQuery
}

// HasProductNouns reports whether the keyword list contains any recognised
// catalogue noun, used by the planner's product-search handler to decide
// whether an otherwise empty request asks a follow-up question.
func (s Slots) HasProductNouns() bool {
	for _, kw := range s.Keywords {
		if IsCatalogNoun(kw) {
			return true
		}
	}
	return false
}
