package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"zuscore/internal/catalog"
	"zuscore/internal/domain"
	"zuscore/internal/outlets"
	"zuscore/internal/session"
)

func testProducts() []domain.Product {
	return []domain.Product{
		{Name: "All-Day Tumbler", NumericPrice: 79, Material: domain.MaterialStainlessSteel, Category: "tumbler"},
		{Name: "Frozee Tumbler", NumericPrice: 55, Material: domain.MaterialAcrylic, Category: "tumbler"},
		{Name: "Ceramic Mug", NumericPrice: 39, Material: domain.MaterialCeramic, Category: "mug"},
	}
}

func testOutlets() []domain.Outlet {
	return []domain.Outlet{
		{
			Name:     "ZUS Coffee Sunway Pyramid",
			Address:  "Sunway Pyramid, Petaling Jaya",
			Services: []domain.Service{domain.ServiceDineIn, domain.ServiceTakeaway},
		},
		{
			Name:     "ZUS Coffee KLCC",
			Address:  "KLCC, Kuala Lumpur",
			Services: []domain.Service{domain.ServiceTakeaway},
		},
	}
}

func newTestEngine() *Engine {
	store := session.NewInMemoryStore(time.Hour, nil)
	products := catalog.New(catalog.NewStaticIndex(testProducts()), nil)
	outletEngine := outlets.New(outlets.NewStaticRegistry(testOutlets()))
	return New(store, products, outletEngine, Config{}, nil)
}

func TestProcess_AssignsSessionIDWhenOmitted(t *testing.T) {
	e := newTestEngine()
	result, err := e.Process(context.Background(), "", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SessionID == "" {
		t.Error("expected a generated session id when the caller omitted one")
	}
}

func TestProcess_OutletSearchThenDineInFollowUp(t *testing.T) {
	// A PJ outlet search, followed by a pronoun follow-up about
	// dine-in that must narrow to the first turn's result set.
	e := newTestEngine()

	first, err := e.Process(context.Background(), "", "What outlets do you have in Petaling Jaya?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Intent != domain.IntentOutletSearch {
		t.Fatalf("intent = %v, want OUTLET_SEARCH", first.Intent)
	}
	if !strings.Contains(first.Reply, "Sunway Pyramid") {
		t.Errorf("reply %q does not mention Sunway Pyramid", first.Reply)
	}

	second, err := e.Process(context.Background(), first.SessionID, "Do they have dine-in?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(second.Reply, "Sunway Pyramid") {
		t.Errorf("follow-up reply %q should still be about Sunway Pyramid, not re-query the full registry", second.Reply)
	}
}

func TestProcess_CalculationTurn(t *testing.T) {
	e := newTestEngine()
	result, err := e.Process(context.Background(), "", "What's a 20% discount on RM79?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Intent != domain.IntentCalculation {
		t.Fatalf("intent = %v, want CALCULATION", result.Intent)
	}
	if !strings.Contains(result.Reply, "63.20") {
		t.Errorf("reply %q does not contain the expected final price 63.20", result.Reply)
	}
}

func TestProcess_MaliciousInputRejected(t *testing.T) {
	e := newTestEngine()
	result, err := e.Process(context.Background(), "", "'; DROP TABLE products; --")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Intent == domain.IntentProductSearch || result.Intent == domain.IntentOutletSearch {
		t.Errorf("malicious input must never dispatch to a retriever, got intent %v", result.Intent)
	}
}

func TestProcess_SessionIsolation(t *testing.T) {
	e := newTestEngine()
	r1, err := e.Process(context.Background(), "", "What outlets do you have in KL?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2, err := e.Process(context.Background(), "", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1.SessionID == r2.SessionID {
		t.Fatal("two turns with no shared session id must not collide")
	}

	snapA, err := e.store.WithSession(context.Background(), r1.SessionID, func(s *domain.Session) error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snapB, err := e.store.WithSession(context.Background(), r2.SessionID, func(s *domain.Session) error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapA.LastShownOutlets) == 0 {
		t.Fatal("expected session a to have last-shown outlets recorded")
	}
	if len(snapB.LastShownOutlets) != 0 {
		t.Error("session b must not see session a's last-shown outlets")
	}
}

func TestProcess_OutletCountIsExact(t *testing.T) {
	e := newTestEngine()
	result, err := e.Process(context.Background(), "", "How many outlets are there in Kuala Lumpur?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Intent != domain.IntentOutletSearch {
		t.Fatalf("intent = %v, want OUTLET_SEARCH", result.Intent)
	}
	if !strings.Contains(result.Reply, "1 outlet") {
		t.Errorf("reply %q does not report the exact KL outlet count", result.Reply)
	}
}

func TestProcess_EmptyMessageStillReturnsAResult(t *testing.T) {
	e := newTestEngine()
	result, err := e.Process(context.Background(), "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reply == "" {
		t.Error("expected a non-empty reply even for an empty message")
	}
}

func TestProcess_AbortOnDeadlineRollsBack(t *testing.T) {
	e := newTestEngine()
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	result, err := e.Process(ctx, "s-deadline", "What outlets do you have?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Intent != domain.IntentUnclear {
		t.Errorf("intent = %v, want UNCLEAR on an aborted turn", result.Intent)
	}
}

func TestProcess_Deterministic(t *testing.T) {
	e := newTestEngine()
	r1, err := e.Process(context.Background(), "", "Do you have ceramic mugs?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2, err := e.Process(context.Background(), "", "Do you have ceramic mugs?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1.Intent != r2.Intent {
		t.Errorf("intent differs across identical turns in fresh sessions: %v vs %v", r1.Intent, r2.Intent)
	}
}
