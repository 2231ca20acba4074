package outlets

import (
	"strings"

	"zuscore/internal/domain"
	"zuscore/internal/locations"
)

// applyFilters applies the conjunctive filter order city -> service ->
// landmark -> keyword. Each step narrows the previous step's result; an
// empty intersection at any step is never widened back out (no silent
// fallback to the full set), so the composer can honestly report "no
// outlets match" with the filters echoed.
func applyFilters(all []domain.Outlet, filters domain.Slots) []domain.Outlet {
	out := all

	if len(filters.Locations) > 0 {
		out = filterByCity(out, filters.Locations)
	}
	if len(filters.Services) > 0 {
		out = filterByService(out, filters.Services)
	}
	if landmark := landmarkFromKeywords(filters.Keywords); landmark != "" {
		out = filterByLandmark(out, landmark)
	}
	if kws := nameAddressKeywords(filters.Keywords); len(kws) > 0 {
		out = filterByKeyword(out, kws)
	}
	return out
}

// nameAddressKeywords drops keywords that name the entity type rather than
// a particular outlet ("outlets", "store"); matching those against names
// and addresses would empty the set for perfectly ordinary phrasings.
func nameAddressKeywords(keywords []string) []string {
	var out []string
	for _, kw := range keywords {
		if domain.IsCatalogNoun(kw) {
			continue
		}
		out = append(out, kw)
	}
	return out
}

func filterByCity(outlets []domain.Outlet, wanted []string) []domain.Outlet {
	var out []domain.Outlet
	for _, o := range outlets {
		addr := strings.ToLower(o.Address)
		for _, w := range wanted {
			canon := locations.Canonicalize(w)
			if strings.Contains(addr, canon) {
				out = append(out, o)
				break
			}
		}
	}
	return out
}

func filterByService(outlets []domain.Outlet, wanted []string) []domain.Outlet {
	var out []domain.Outlet
	for _, o := range outlets {
		matchesAll := true
		for _, w := range wanted {
			if !o.HasService(domain.Service(w)) {
				matchesAll = false
				break
			}
		}
		if matchesAll {
			out = append(out, o)
		}
	}
	return out
}

// knownLandmarks is the fixed list of mall names the engine recognises
// inside free-text keywords and matches against addresses.
var knownLandmarks = []string{
	"klcc", "pavilion", "mid valley", "sunway pyramid", "ioi city mall",
	"one utama", "paradigm mall", "queensbay mall", "gurney plaza",
}

func landmarkFromKeywords(keywords []string) string {
	joined := strings.ToLower(strings.Join(keywords, " "))
	for _, lm := range knownLandmarks {
		if strings.Contains(joined, lm) {
			return lm
		}
	}
	return ""
}

func filterByLandmark(outlets []domain.Outlet, landmark string) []domain.Outlet {
	var out []domain.Outlet
	for _, o := range outlets {
		if strings.Contains(strings.ToLower(o.Address), landmark) {
			out = append(out, o)
		}
	}
	return out
}

func filterByKeyword(outlets []domain.Outlet, keywords []string) []domain.Outlet {
	var out []domain.Outlet
	for _, o := range outlets {
		haystack := strings.ToLower(o.Name + " " + o.Address)
		for _, kw := range keywords {
			if strings.Contains(haystack, kw) {
				out = append(out, o)
				break
			}
		}
	}
	return out
}
