package slots

import (
	"testing"

	"zuscore/internal/domain"
)

func TestExtract_BudgetSynonyms(t *testing.T) {
	cases := []struct {
		in       string
		wantMin  float64
		wantMax  float64
		openMin  bool
		openMax  bool
	}{
		{"tumblers under RM50", 0, 50, true, false},
		{"anything below 30", 0, 30, true, false},
		{"mugs above RM40", 40, 0, false, true},
		{"more than 25", 25, 0, false, true},
		{"between RM30 and RM60", 30, 60, false, false},
		{"between 60 and 30", 30, 60, false, false},
		{"RM20 to RM45", 20, 45, false, false},
	}
	for _, c := range cases {
		s := Extract(c.in)
		if c.openMin {
			if s.Budget.Min != nil {
				t.Errorf("%q: Min = %v, want unset", c.in, *s.Budget.Min)
			}
		} else if s.Budget.Min == nil || *s.Budget.Min != c.wantMin {
			t.Errorf("%q: Min = %v, want %v", c.in, s.Budget.Min, c.wantMin)
		}
		if c.openMax {
			if s.Budget.Max != nil {
				t.Errorf("%q: Max = %v, want unset", c.in, *s.Budget.Max)
			}
		} else if s.Budget.Max == nil || *s.Budget.Max != c.wantMax {
			t.Errorf("%q: Max = %v, want %v", c.in, s.Budget.Max, c.wantMax)
		}
	}
}

func TestExtract_LocationAliases(t *testing.T) {
	s := Extract("any outlets in PJ?")
	if len(s.Locations) != 1 || s.Locations[0] != "petaling jaya" {
		t.Errorf("Locations = %v, want [petaling jaya]", s.Locations)
	}

	s = Extract("outlets in georgetown")
	if len(s.Locations) != 1 || s.Locations[0] != "penang" {
		t.Errorf("Locations = %v, want [penang]", s.Locations)
	}
}

func TestExtract_ShortAliasNeedsWordBoundary(t *testing.T) {
	// "kl" must not fire inside an unrelated word.
	s := Extract("what are your weekly promotions?")
	for _, loc := range s.Locations {
		if loc == "kuala lumpur" {
			t.Errorf("extracted kuala lumpur from %q", "what are your weekly promotions?")
		}
	}
}

func TestExtract_LocationWordsAreNotKeywords(t *testing.T) {
	s := Extract("outlets in georgetown")
	for _, kw := range s.Keywords {
		if kw == "georgetown" {
			t.Error("location surface form leaked into keywords")
		}
	}
}

func TestExtract_ServicesAndMaterials(t *testing.T) {
	s := Extract("a stainless steel tumbler that's dishwasher safe")
	if len(s.Materials) != 1 || s.Materials[0] != "stainless-steel" {
		t.Errorf("Materials = %v, want [stainless-steel]", s.Materials)
	}
	if len(s.Features) != 1 || s.Features[0] != "dishwasher-safe" {
		t.Errorf("Features = %v, want [dishwasher-safe]", s.Features)
	}

	s = Extract("outlets with drive-thru and wifi")
	if len(s.Services) != 2 {
		t.Errorf("Services = %v, want drive-thru and wifi", s.Services)
	}
}

func TestExtract_TimeQuery(t *testing.T) {
	cases := map[string]domain.TimeQuery{
		"when does the KLCC outlet close?":  domain.TimeQueryClosing,
		"what time do you open tomorrow?":   domain.TimeQueryOpening,
		"what are the hours for Bangsar?":   domain.TimeQueryFullHours,
		"do you have any ceramic mugs?":     domain.TimeQueryNone,
	}
	for in, want := range cases {
		if got := Extract(in).TimeQuery; got != want {
			t.Errorf("%q: TimeQuery = %v, want %v", in, got, want)
		}
	}
}

func TestExtract_SuperlativeSingularVsPlural(t *testing.T) {
	s := Extract("the cheapest ceramic mug")
	if s.Superlative != domain.SuperlativeCheapest || !s.Singular {
		t.Errorf("got superlative=%v singular=%v, want cheapest singular", s.Superlative, s.Singular)
	}

	s = Extract("show me some cheapest tumblers, top 3")
	if s.Superlative != domain.SuperlativeCheapest || s.Singular {
		t.Errorf("got superlative=%v singular=%v, want cheapest plural", s.Superlative, s.Singular)
	}

	s = Extract("most expensive flask")
	if s.Superlative != domain.SuperlativeDearest {
		t.Errorf("got superlative=%v, want most_expensive", s.Superlative)
	}
}

func TestExtract_CountQuery(t *testing.T) {
	s := Extract("how many outlets are there in KL?")
	if !s.CountQuery {
		t.Error("expected CountQuery for a how-many question")
	}
	if s.IsEmpty() {
		t.Error("a count query must not read as an empty slot set")
	}
}

func TestExtract_ShowAllOverride(t *testing.T) {
	if !Extract("show me all products").ShowAll {
		t.Error("expected ShowAll for \"show me all products\"")
	}
	if Extract("show me tumblers").ShowAll {
		t.Error("ShowAll must not fire for an ordinary category query")
	}
}

func TestExtract_Capacity(t *testing.T) {
	if Extract("a small cup").Capacity != domain.CapacitySmall {
		t.Error("expected small capacity")
	}
	if Extract("large tumbler please").Capacity != domain.CapacityLarge {
		t.Error("expected large capacity")
	}
	if Extract("a tumbler").Capacity != domain.CapacityUnspecified {
		t.Error("expected unspecified capacity")
	}
}

func TestExtract_PronounsExcludedFromKeywords(t *testing.T) {
	s := Extract("do they have dine-in?")
	if len(s.Keywords) != 0 {
		t.Errorf("Keywords = %v, want none for a bare pronoun follow-up", s.Keywords)
	}
	if len(s.Services) != 1 || s.Services[0] != "dine-in" {
		t.Errorf("Services = %v, want [dine-in]", s.Services)
	}
}
