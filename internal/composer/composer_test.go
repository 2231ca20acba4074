package composer

import (
	"strings"
	"testing"
	"time"

	"zuscore/internal/domain"
	"zuscore/platform/apperr"
)

func TestProducts_EmptyResultMessage(t *testing.T) {
	msg := Products("ceramic mug", nil)
	if !strings.Contains(msg, "ceramic mug") {
		t.Errorf("expected the empty-result message to echo the query, got %q", msg)
	}
}

func TestProducts_SingleResultUsesDenseBlock(t *testing.T) {
	p := domain.Product{
		Name: "Ceramic Mug", DisplayPrice: "RM 39.00", Material: domain.MaterialCeramic,
		Capacity: "350ml",
	}
	msg := Products("", []domain.Product{p})
	if !strings.Contains(msg, "Ceramic Mug") || !strings.Contains(msg, "RM 39.00") {
		t.Errorf("single-result block missing name/price: %q", msg)
	}
	if !strings.Contains(msg, "recommend") {
		t.Errorf("single-result block missing recommendation sentence: %q", msg)
	}
}

func TestProducts_MultipleResultsAreNumbered(t *testing.T) {
	results := []domain.Product{
		{Name: "All-Day Tumbler", DisplayPrice: "RM 79.00"},
		{Name: "Frozee Tumbler", DisplayPrice: "RM 55.00"},
	}
	msg := Products("tumbler", results)
	if !strings.HasPrefix(msg, "1. ") {
		t.Errorf("expected a numbered list, got %q", msg)
	}
	if !strings.Contains(msg, "2. Frozee Tumbler") {
		t.Errorf("expected the second item numbered, got %q", msg)
	}
}

func TestProducts_TruncatesLongAttributeLists(t *testing.T) {
	p := domain.Product{
		Name: "All-Day Tumbler", DisplayPrice: "RM 79.00",
		Colors: []string{"black", "white", "pink", "blue", "green"},
	}
	msg := Products("", []domain.Product{p})
	if !strings.Contains(msg, "+2 more") {
		t.Errorf("expected a truncated color list with '+2 more', got %q", msg)
	}
}

func TestOutlets_EmptyResultEchoesLocationFilter(t *testing.T) {
	msg := Outlets(domain.Slots{Locations: []string{"johor bahru"}}, nil, time.Now())
	if !strings.Contains(msg, "johor bahru") {
		t.Errorf("expected the no-match message to echo the location, got %q", msg)
	}
}

func TestOutlets_ListsServicesAndHours(t *testing.T) {
	now := time.Date(2026, time.July, 27, 9, 0, 0, 0, time.UTC) // Monday
	o := domain.Outlet{
		Name: "ZUS Coffee Sunway Pyramid", Address: "Sunway Pyramid, Petaling Jaya",
		Services: []domain.Service{domain.ServiceDineIn, domain.ServiceTakeaway},
		Hours:    map[string]domain.DayHours{"monday": {Raw: "10:00 - 22:00"}},
	}
	msg := Outlets(domain.Slots{}, []domain.Outlet{o}, now)
	if !strings.Contains(msg, "Sunway Pyramid") {
		t.Errorf("missing outlet name: %q", msg)
	}
	if !strings.Contains(msg, "10:00 - 22:00") {
		t.Errorf("missing today's hours: %q", msg)
	}
	if !strings.Contains(msg, "dine-in") {
		t.Errorf("missing service icon text: %q", msg)
	}
}

func TestCalculation_DiscountBreakdown(t *testing.T) {
	msg := Calculation(CalcResult{
		Value:                63.20,
		NormalizedExpression: "20% discount on 79.00",
		IsCurrency:           true,
		Breakdown:            map[string]float64{"discount": 15.80, "final_price": 63.20},
	})
	if !strings.Contains(msg, "RM 63.20") {
		t.Errorf("expected formatted currency total, got %q", msg)
	}
	if !strings.Contains(msg, "RM 15.80") {
		t.Errorf("expected formatted discount breakdown, got %q", msg)
	}
}

func TestCalculation_NonCurrencyNoRMPrefix(t *testing.T) {
	msg := Calculation(CalcResult{Value: 30, NormalizedExpression: "15% of 200", IsCurrency: false})
	if strings.Contains(msg, "RM") {
		t.Errorf("non-currency result must not carry an RM prefix, got %q", msg)
	}
}

func TestErrorReply_NeverLeaksRawException(t *testing.T) {
	underlying := apperr.Internal("panic: runtime error: index out of range [3] with length 2")
	msg := ErrorReply(underlying)
	if strings.Contains(msg, "runtime error") || strings.Contains(msg, "index out of range") {
		t.Errorf("ErrorReply leaked raw exception text: %q", msg)
	}
}

func TestErrorReply_MapsEveryKnownKind(t *testing.T) {
	kinds := []apperr.Kind{
		apperr.KindNotACalculation, apperr.KindCalculation, apperr.KindMalicious,
		apperr.KindEmptyResult, apperr.KindToolTimeout, apperr.KindToolUnavailable,
		apperr.KindInvalidInput, apperr.KindInternal,
	}
	seen := map[string]bool{}
	for _, k := range kinds {
		msg := ErrorReply(apperr.New(k, "x"))
		if msg == "" {
			t.Errorf("kind %v produced an empty reply", k)
		}
		if seen[msg] {
			t.Errorf("kind %v produced a reply identical to an earlier kind: %q", k, msg)
		}
		seen[msg] = true
	}
}

func TestJoin_SkipsEmptyFragments(t *testing.T) {
	joined := Join("first", "", "  ", "second")
	if joined != "first\n\nsecond" {
		t.Errorf("got %q, want empty fragments skipped", joined)
	}
}
