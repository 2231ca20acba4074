package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"zuscore/internal/domain"
)

// defaultK is the result cap for general category queries that name no
// explicit limit.
const defaultK = 15

// Retriever owns no state beyond its collaborators: the product snapshot
// comes from ProductIndex, semantic ranking is an optional injected
// capability.
type Retriever struct {
	index    ProductIndex
	semantic SemanticIndex
}

// New wires a Retriever. semantic may be nil; the cascade then runs
// structured filter -> lexical -> fuzzy only.
func New(index ProductIndex, semantic SemanticIndex) *Retriever {
	return &Retriever{index: index, semantic: semantic}
}

// Search implements the four-stage retrieval cascade: structured filter,
// optional semantic rank, lexical fallback, fuzzy match.
// The free-text stages narrow within the structured-filter result, never
// around it, so adding a slot can only shrink the set (filter monotonicity).
// Results are de-duplicated by name (first occurrence wins) and ordered per
// the ordering contract before being capped at k (or defaultK when k<=0,
// unless filters.ShowAll is set).
func (r *Retriever) Search(ctx context.Context, query string, filters domain.Slots, k int) []domain.Product {
	all := r.index.All()

	if filters.ShowAll {
		return orderResults(dedupe(all), filters)
	}

	filtered := applyStructuredFilters(all, filters)
	results := filtered

	// Generic nouns ("products", "drinkware") name the whole catalogue, not
	// a narrower subset; a query left empty after stripping them means the
	// structured filters alone decide the result.
	query = stripGenericNouns(query)

	if strings.TrimSpace(query) != "" {
		var narrowed []domain.Product
		if r.semantic != nil {
			if hits, err := r.semantic.Semantic(ctx, query, cappedK(k)); err == nil && len(hits) > 0 {
				narrowed = intersectByName(hits, filtered)
			}
		}
		if len(narrowed) == 0 {
			narrowed = lexicalMatch(query, filtered)
		}
		if len(narrowed) == 0 {
			narrowed = fuzzyMatch(query, filtered, fuzzyMatchThreshold)
		}

		if len(narrowed) > 0 {
			results = narrowed
		} else if hasStructuredFilters(filters) {
			// The structured slots did match; keep their result even though
			// the leftover free text found nothing to narrow by.
			results = filtered
		} else {
			// No structured filter and no free-text stage recovered
			// anything: an empty result, which the composer renders as a
			// valid no-match outcome.
			results = nil
		}
	}

	results = dedupe(results)
	results = orderResults(results, filters)

	cap := cappedK(k)
	if len(results) > cap {
		results = results[:cap]
	}
	return results
}

// genericNouns are query words that denote the catalogue as a whole rather
// than any category or attribute within it.
var genericNouns = map[string]struct{}{
	"product": {}, "products": {}, "item": {}, "items": {}, "drinkware": {},
}

func stripGenericNouns(query string) string {
	var kept []string
	for _, tok := range strings.Fields(query) {
		if _, generic := genericNouns[strings.ToLower(tok)]; generic {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// intersectByName keeps the semantic hits (in their ranked order) that also
// survived the structured filters.
func intersectByName(hits, filtered []domain.Product) []domain.Product {
	allowed := make(map[string]bool, len(filtered))
	for _, p := range filtered {
		allowed[p.Name] = true
	}
	var out []domain.Product
	for _, h := range hits {
		if allowed[h.Name] {
			out = append(out, h)
		}
	}
	return out
}

// SearchWithin scopes the structured-filter stage to a caller-supplied
// candidate set (e.g. last_shown_products) instead of the full index, for
// pronoun follow-ups over a prior result. It skips
// the semantic/lexical/fuzzy cascade stages: a follow-up over an already-
// narrowed set is expected to match structurally or not at all.
func (r *Retriever) SearchWithin(candidates []domain.Product, filters domain.Slots, k int) []domain.Product {
	results := dedupe(applyStructuredFilters(candidates, filters))
	results = orderResults(results, filters)
	cap := cappedK(k)
	if len(results) > cap {
		results = results[:cap]
	}
	return results
}

func cappedK(k int) int {
	if k <= 0 {
		return defaultK
	}
	return k
}

// superlativeTopN is the result cap for a non-singular superlative query
// ("cheapest tumblers"). A singular phrasing ("the cheapest") returns
// exactly one instead.
const superlativeTopN = 3

// orderResults applies the superlative + singular ordering contract: when a
// superlative is present, sort ascending/descending by price within
// whatever set survived filtering, then truncate to exactly one result if
// Singular, else to the top 3. Absent a superlative, catalogue order (the
// order ProductIndex returned) is preserved.
func orderResults(results []domain.Product, filters domain.Slots) []domain.Product {
	if filters.Superlative == domain.SuperlativeNone {
		return results
	}

	sorted := make([]domain.Product, len(results))
	copy(sorted, results)
	switch filters.Superlative {
	case domain.SuperlativeCheapest:
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].NumericPrice < sorted[j].NumericPrice })
	case domain.SuperlativeDearest:
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].NumericPrice > sorted[j].NumericPrice })
	}

	if filters.Singular {
		if len(sorted) > 1 {
			sorted = sorted[:1]
		}
	} else if len(sorted) > superlativeTopN {
		sorted = sorted[:superlativeTopN]
	}
	return sorted
}

func dedupe(products []domain.Product) []domain.Product {
	seen := make(map[string]bool, len(products))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		out = append(out, p)
	}
	return out
}

// Summarise is the companion operation to Search: a deterministic,
// side-effect-free textual summary the composer can fall back to or embed.
// It never fabricates details not present on the products.
func Summarise(query string, results []domain.Product) string {
	if len(results) == 0 {
		return fmt.Sprintf("No products matched %q.", query)
	}

	names := make([]string, 0, len(results))
	for _, p := range results {
		names = append(names, p.Name)
	}
	return fmt.Sprintf("%d product(s) matched %q: %s", len(results), query, strings.Join(names, ", "))
}
