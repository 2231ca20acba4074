package domain

import "time"

// Role identifies who produced a Turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is an immutable record of one message within a session.
type Turn struct {
	Role      Role
	Text      string
	Intent    Intent // zero value ("") when not applicable
	Timestamp time.Time
	Metadata  map[string]string
}

// Preferences is the structured subset of Slots the session remembers
// across turns (material, capacity, features last expressed).
type Preferences struct {
	Materials []Material
	Capacity  Capacity
	Features  []Feature
}

// ContextSnapshot is a point-in-time copy of the context-dependent fields
// of a Session, captured on a topic switch and restored only on an
// explicit CONTEXT_RECALL referencing "earlier" / "back to" / "before".
type ContextSnapshot struct {
	LastIntent             Intent
	LastShownProducts      []Product
	LastShownOutlets       []Outlet
	PreferredLocation      string
	CurrentContextLocation string
	Budget                 BudgetRange
	Preferences            Preferences
}

// Session is the per-conversation state holding history and derived
// context across turns. A Session is created lazily on first use, mutated
// only by the Controller, and evicted after an idle timeout measured
// against UpdatedAt.
//
// Session is a plain data value; per-session serialisation is enforced by
// the Store that owns it, not by the struct itself.
type Session struct {
	ID string

	Turns []Turn

	LastIntent Intent

	LastShownProducts []Product
	LastShownOutlets  []Outlet

	PreferredLocation      string
	CurrentContextLocation string

	Budget      BudgetRange
	Preferences Preferences

	ContextEntities []string

	SavedContext *ContextSnapshot

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession creates an empty session with the given id.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Turns:     make([]Turn, 0, 4),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Snapshot captures the context-dependent fields for later recall.
func (s *Session) Snapshot() ContextSnapshot {
	return ContextSnapshot{
		LastIntent:             s.LastIntent,
		LastShownProducts:      append([]Product(nil), s.LastShownProducts...),
		LastShownOutlets:       append([]Outlet(nil), s.LastShownOutlets...),
		PreferredLocation:      s.PreferredLocation,
		CurrentContextLocation: s.CurrentContextLocation,
		Budget:                 s.Budget,
		Preferences:            s.Preferences,
	}
}

// Restore applies a previously captured snapshot back onto the session.
func (s *Session) Restore(snap ContextSnapshot) {
	s.LastIntent = snap.LastIntent
	s.LastShownProducts = snap.LastShownProducts
	s.LastShownOutlets = snap.LastShownOutlets
	s.PreferredLocation = snap.PreferredLocation
	s.CurrentContextLocation = snap.CurrentContextLocation
	s.Budget = snap.Budget
	s.Preferences = snap.Preferences
}

// AppendTurn appends a turn, capping history at historyCap (oldest dropped).
func (s *Session) AppendTurn(t Turn, historyCap int) {
	s.Turns = append(s.Turns, t)
	if historyCap > 0 && len(s.Turns) > historyCap {
		s.Turns = s.Turns[len(s.Turns)-historyCap:]
	}
}

// AppendContextEntities appends new entity strings, capping at entityCap
// (oldest dropped).
func (s *Session) AppendContextEntities(entities []string, entityCap int) {
	s.ContextEntities = append(s.ContextEntities, entities...)
	if entityCap > 0 && len(s.ContextEntities) > entityCap {
		s.ContextEntities = s.ContextEntities[len(s.ContextEntities)-entityCap:]
	}
}

// SetLastShownProducts stores the most recent product results, bounded at
// lastShownCap, most-recent-wins (i.e. truncated to the first lastShownCap
// entries of results, which callers pass in ranked order).
func (s *Session) SetLastShownProducts(results []Product, lastShownCap int) {
	if lastShownCap > 0 && len(results) > lastShownCap {
		results = results[:lastShownCap]
	}
	s.LastShownProducts = results
}

// SetLastShownOutlets stores the most recent outlet results, bounded at
// lastShownCap.
func (s *Session) SetLastShownOutlets(results []Outlet, lastShownCap int) {
	if lastShownCap > 0 && len(results) > lastShownCap {
		results = results[:lastShownCap]
	}
	s.LastShownOutlets = results
}
