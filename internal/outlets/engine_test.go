package outlets

import (
	"strings"
	"testing"
	"time"

	"zuscore/internal/domain"
)

func mondayAt(hour, min int) time.Time {
	// 2026-07-27 is a Monday; only the weekday and clock matter here.
	return time.Date(2026, time.July, 27, hour, min, 0, 0, time.UTC)
}

func sampleOutlets() []domain.Outlet {
	return []domain.Outlet{
		{
			Name:     "ZUS Coffee KLCC",
			Address:  "Kuala Lumpur City Centre, Kuala Lumpur",
			Services: []domain.Service{domain.ServiceDineIn, domain.ServiceTakeaway},
			Hours: map[string]domain.DayHours{
				"monday": ParseHours("08:00 - 22:00"),
			},
		},
		{
			Name:    "ZUS Coffee Sunway Pyramid",
			Address: "Sunway Pyramid, Petaling Jaya",
			Services: []domain.Service{
				domain.ServiceDineIn, domain.ServiceTakeaway, domain.ServiceDelivery, domain.ServiceWifi,
			},
			Hours: map[string]domain.DayHours{
				"monday": ParseHours("10:00 - 22:00"),
			},
		},
		{
			Name:    "ZUS Coffee Subang Jaya Drive-Thru",
			Address: "Subang Jaya",
			Services: []domain.Service{
				domain.ServiceDriveThru, domain.ServiceTakeaway, domain.Service24Hour,
			},
			Hours: map[string]domain.DayHours{
				"monday": {Raw: "24 hours"},
			},
		},
	}
}

func TestSearch_ByService(t *testing.T) {
	// Outlets in Petaling Jaya with dine-in.
	e := New(NewStaticRegistry(sampleOutlets()))
	results := e.Search("", domain.Slots{
		Locations: []string{"petaling jaya"},
		Services:  []string{"dine-in"},
	}, 0)
	if len(results) != 1 || results[0].Name != "ZUS Coffee Sunway Pyramid" {
		t.Fatalf("got %+v, want exactly Sunway Pyramid", results)
	}
}

func TestSearch_ConjunctiveNeverWidens(t *testing.T) {
	// Adding a second filter must never increase the result count.
	e := New(NewStaticRegistry(sampleOutlets()))
	byService := e.Search("", domain.Slots{Services: []string{"takeaway"}}, 0)
	byServiceAndLocation := e.Search("", domain.Slots{
		Services:  []string{"takeaway"},
		Locations: []string{"subang jaya"},
	}, 0)
	if len(byServiceAndLocation) > len(byService) {
		t.Errorf("adding a location filter widened results: %d > %d", len(byServiceAndLocation), len(byService))
	}
}

func TestSearch_NoMatchIsEmptyNotError(t *testing.T) {
	e := New(NewStaticRegistry(sampleOutlets()))
	results := e.Search("", domain.Slots{Locations: []string{"johor bahru"}}, 0)
	if results == nil {
		// nil slice is fine; this just documents "no panic, no error value".
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestCount_NeverTruncated(t *testing.T) {
	e := New(NewStaticRegistry(sampleOutlets()))
	count := e.Count(domain.Slots{Services: []string{"takeaway"}})
	if count != 3 {
		t.Errorf("count = %d, want 3 (all three outlets offer takeaway)", count)
	}
}

func TestAnswer_FallsBackToRawWhenUnstructured(t *testing.T) {
	e := New(NewStaticRegistry(sampleOutlets())).WithClock(func() time.Time { return mondayAt(9, 0) })
	answer := e.Answer(domain.Slots{
		Locations: []string{"subang jaya"},
		TimeQuery: domain.TimeQueryFullHours,
	})
	if answer == "" {
		t.Fatal("expected a non-empty answer")
	}
	if !strings.Contains(answer, "24 hours") {
		t.Errorf("answer = %q, want the raw hours string %q", answer, "24 hours")
	}
}

func TestAnswer_NoMatchEchoesFilters(t *testing.T) {
	e := New(NewStaticRegistry(sampleOutlets()))
	answer := e.Answer(domain.Slots{Locations: []string{"penang"}})
	if answer == "" {
		t.Fatal("expected a non-empty no-match message")
	}
	if !strings.Contains(answer, "penang") {
		t.Errorf("answer = %q, want it to echo the location filter %q", answer, "penang")
	}
}

func TestSearchWithin_NarrowsPriorResultSet(t *testing.T) {
	e := New(NewStaticRegistry(sampleOutlets()))
	prior := sampleOutlets()[:2] // KLCC, Sunway Pyramid
	results := e.SearchWithin(prior, domain.Slots{Services: []string{"dine-in"}}, 0)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (both KLCC and Sunway offer dine-in)", len(results))
	}
}
