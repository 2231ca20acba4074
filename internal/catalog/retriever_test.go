package catalog

import (
	"context"
	"strings"
	"testing"

	"zuscore/internal/domain"
)

func sampleProducts() []domain.Product {
	return []domain.Product{
		{Name: "All-Day Tumbler", NumericPrice: 79, Material: domain.MaterialStainlessSteel, Category: "tumbler"},
		{Name: "Frozee Tumbler", NumericPrice: 55, Material: domain.MaterialAcrylic, Category: "tumbler"},
		{Name: "Ceramic Mug", NumericPrice: 39, Material: domain.MaterialCeramic, Category: "mug"},
		{Name: "Glass Cold Cup", NumericPrice: 45, Material: domain.MaterialGlass, Category: "cup"},
		{Name: "Sundowner Flask", NumericPrice: 99, Material: domain.MaterialStainlessSteel, Category: "flask"},
		{Name: "Mini Tumbler", NumericPrice: 35, Material: domain.MaterialStainlessSteel, Category: "tumbler"},
	}
}

func TestSearch_StructuredFilterByMaterial(t *testing.T) {
	r := New(NewStaticIndex(sampleProducts()), nil)
	results := r.Search(context.Background(), "", domain.Slots{Materials: []string{"ceramic"}}, 0)
	if len(results) != 1 || results[0].Name != "Ceramic Mug" {
		t.Fatalf("got %+v, want exactly the Ceramic Mug", results)
	}
}

func TestSearch_CheapestCeramicMug(t *testing.T) {
	// "cheapest ceramic mug" is unambiguous here since exactly one ceramic
	// product exists in the seed catalogue.
	r := New(NewStaticIndex(sampleProducts()), nil)
	results := r.Search(context.Background(), "ceramic mug", domain.Slots{
		Materials:   []string{"ceramic"},
		Superlative: domain.SuperlativeCheapest,
		Singular:    true,
	}, 0)
	if len(results) != 1 {
		t.Fatalf("got %d results, want exactly 1", len(results))
	}
	if results[0].Name != "Ceramic Mug" {
		t.Errorf("got %q, want Ceramic Mug", results[0].Name)
	}
}

func TestSearch_BudgetRange(t *testing.T) {
	min, max := 40.0, 60.0
	r := New(NewStaticIndex(sampleProducts()), nil)
	results := r.Search(context.Background(), "", domain.Slots{Budget: domain.BudgetRange{Min: &min, Max: &max}}, 0)
	for _, p := range results {
		if p.NumericPrice < min || p.NumericPrice > max {
			t.Errorf("product %q price %v out of requested range [%v,%v]", p.Name, p.NumericPrice, min, max)
		}
	}
	if len(results) != 2 { // Frozee Tumbler (55), Glass Cold Cup (45)
		t.Errorf("got %d results, want 2", len(results))
	}
}

func TestSearch_EmptyRangeYieldsEmptyNotError(t *testing.T) {
	// max < min never errors, always returns empty.
	min, max := 1000.0, 1.0
	r := New(NewStaticIndex(sampleProducts()), nil)
	results := r.Search(context.Background(), "", domain.Slots{Budget: domain.BudgetRange{Min: &min, Max: &max}}, 0)
	if len(results) != 0 {
		t.Errorf("got %d results, want 0 for an unsatisfiable range", len(results))
	}
}

func TestSearch_FilterMonotonicity(t *testing.T) {
	// Adding a filter never grows the result set.
	r := New(NewStaticIndex(sampleProducts()), nil)
	broader := r.Search(context.Background(), "", domain.Slots{}, 0)
	narrower := r.Search(context.Background(), "", domain.Slots{Materials: []string{"stainless-steel"}}, 0)
	if len(narrower) > len(broader) {
		t.Errorf("narrower filter produced more results (%d) than broader (%d)", len(narrower), len(broader))
	}
}

func TestSearch_Idempotent(t *testing.T) {
	// Identical inputs return identical output.
	r := New(NewStaticIndex(sampleProducts()), nil)
	filters := domain.Slots{Materials: []string{"stainless-steel"}}
	first := r.Search(context.Background(), "tumbler", filters, 5)
	second := r.Search(context.Background(), "tumbler", filters, 5)
	if len(first) != len(second) {
		t.Fatalf("non-idempotent result lengths: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Name != second[i].Name {
			t.Fatalf("non-idempotent ordering at index %d: %q vs %q", i, first[i].Name, second[i].Name)
		}
	}
}

func TestSearch_LexicalFallback(t *testing.T) {
	r := New(NewStaticIndex(sampleProducts()), nil)
	results := r.Search(context.Background(), "flask", domain.Slots{}, 0)
	found := false
	for _, p := range results {
		if p.Name == "Sundowner Flask" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected lexical match to surface Sundowner Flask, got %+v", results)
	}
}

func TestSearch_FuzzyFallback(t *testing.T) {
	// A typo'd query with no structured/lexical match should still surface
	// results via the fuzzy stage.
	r := New(NewStaticIndex(sampleProducts()), nil)
	results := r.Search(context.Background(), "tumblr", domain.Slots{}, 0)
	if len(results) == 0 {
		t.Error("expected fuzzy match to recover at least one result for a typo'd query")
	}
}

func TestSearchWithin_NarrowsPriorResultSet(t *testing.T) {
	r := New(NewStaticIndex(sampleProducts()), nil)
	prior := []domain.Product{
		{Name: "All-Day Tumbler", NumericPrice: 79, Material: domain.MaterialStainlessSteel},
		{Name: "Mini Tumbler", NumericPrice: 35, Material: domain.MaterialStainlessSteel},
		{Name: "Ceramic Mug", NumericPrice: 39, Material: domain.MaterialCeramic},
	}
	results := r.SearchWithin(prior, domain.Slots{Materials: []string{"stainless-steel"}}, 0)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (the two stainless-steel items from prior)", len(results))
	}
}

func TestSummarise_NamesEveryResult(t *testing.T) {
	summary := Summarise("tumbler", sampleProducts()[:2])
	if !strings.Contains(summary, "All-Day Tumbler") || !strings.Contains(summary, "Frozee Tumbler") {
		t.Errorf("summary %q missing result names", summary)
	}

	empty := Summarise("flying carpet", nil)
	if !strings.Contains(empty, "flying carpet") {
		t.Errorf("empty summary %q should echo the query", empty)
	}
}

func TestSearch_ShowAllBypassesFilters(t *testing.T) {
	r := New(NewStaticIndex(sampleProducts()), nil)
	results := r.Search(context.Background(), "", domain.Slots{ShowAll: true, Materials: []string{"ceramic"}}, 0)
	if len(results) != len(sampleProducts()) {
		t.Errorf("got %d results, want the full catalogue of %d", len(results), len(sampleProducts()))
	}
}
