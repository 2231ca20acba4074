package outlets

import (
	"fmt"
	"strings"
	"time"

	"zuscore/internal/domain"
)

// defaultK mirrors catalog's general-query cap; outlet lists are usually
// shorter than product lists but the same ceiling keeps behaviour uniform.
const defaultK = 15

// Engine answers outlet questions over the registry snapshot.
type Engine struct {
	registry OutletRegistry
	now      func() time.Time
}

// New wires an Engine against an OutletRegistry.
func New(registry OutletRegistry) *Engine {
	return &Engine{registry: registry, now: time.Now}
}

// WithClock overrides the engine's notion of "now", for deterministic tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Search applies the conjunctive filter cascade to the full registry,
// capped at k (or defaultK when k<=0).
func (e *Engine) Search(query string, filters domain.Slots, k int) []domain.Outlet {
	_ = query // keyword matching already folds free-text keywords into filters.Keywords
	matches := applyFilters(e.registry.All(), filters)

	cap := k
	if cap <= 0 {
		cap = defaultK
	}
	if len(matches) > cap {
		matches = matches[:cap]
	}
	return matches
}

// SearchWithin applies the same conjunctive filter cascade as Search, but
// scoped to a caller-supplied candidate set instead of the full registry.
// A pronoun follow-up ("Do they have dine-in?") narrows last_shown_outlets
// this way rather than re-querying the whole registry.
func (e *Engine) SearchWithin(candidates []domain.Outlet, filters domain.Slots, k int) []domain.Outlet {
	matches := applyFilters(candidates, filters)

	cap := k
	if cap <= 0 {
		cap = defaultK
	}
	if len(matches) > cap {
		matches = matches[:cap]
	}
	return matches
}

// Count reports the exact size of the filtered set: callers asking "how
// many outlets in X" must never see a truncated display-list count.
func (e *Engine) Count(filters domain.Slots) int {
	return len(applyFilters(e.registry.All(), filters))
}

// CountWithin is Count scoped to a prior result set.
func (e *Engine) CountWithin(candidates []domain.Outlet, filters domain.Slots) int {
	return len(applyFilters(candidates, filters))
}

// Answer handles time-query turns: it applies the same filters to narrow
// to the outlet(s) in question, then reports today's hours for each,
// falling back to the raw hours string when the structured clock didn't
// parse.
func (e *Engine) Answer(filters domain.Slots) string {
	return e.answer(e.registry.All(), filters)
}

// AnswerWithin is Answer scoped to a prior result set, for time-query
// follow-ups ("when do they open?") over last_shown_outlets.
func (e *Engine) AnswerWithin(candidates []domain.Outlet, filters domain.Slots) string {
	return e.answer(candidates, filters)
}

func (e *Engine) answer(all []domain.Outlet, filters domain.Slots) string {
	matches := applyFilters(all, filters)
	if len(matches) == 0 {
		return noMatchMessage(filters)
	}

	today := Today(e.now())
	lines := make([]string, 0, len(matches))
	for _, o := range matches {
		lines = append(lines, TimeQueryAnswer(o, filters.TimeQuery, today))
	}
	return strings.Join(lines, "\n")
}

// noMatchMessage echoes the filters back rather than silently reporting
// zero results, so the user can see which constraint emptied the set.
func noMatchMessage(filters domain.Slots) string {
	var parts []string
	if len(filters.Locations) > 0 {
		parts = append(parts, fmt.Sprintf("location: %s", strings.Join(filters.Locations, ", ")))
	}
	if len(filters.Services) > 0 {
		parts = append(parts, fmt.Sprintf("service: %s", strings.Join(filters.Services, ", ")))
	}
	if landmark := landmarkFromKeywords(filters.Keywords); landmark != "" {
		parts = append(parts, fmt.Sprintf("landmark: %s", landmark))
	}
	if len(parts) == 0 {
		return "No outlets match your request."
	}
	return fmt.Sprintf("No outlets match (%s).", strings.Join(parts, "; "))
}
