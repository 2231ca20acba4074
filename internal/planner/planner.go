// Package planner implements the agentic planner: it maps (intent, slots,
// session context) to one or more Actions through a data table of
// (Intent -> handler) rather than a branch chain, so adding an intent is
// one table entry plus one handler.
package planner

import (
	"regexp"
	"strings"

	"zuscore/internal/domain"
)

// defaultProductK and defaultOutletK are the result caps handed to
// CALL_PRODUCT_SEARCH / CALL_OUTLET_SEARCH when the slots name no explicit
// limit; the retrievers themselves fall back to their own default when
// given 0, this just documents the planner's intent.
const (
	defaultProductK = 15
	defaultOutletK  = 15
)

// multiIntentConfidenceCeiling and multiIntentRunnerUpFloor gate the
// multi-intent fan-out: the runner-up handler also runs only when it
// scored above 0.5 and the winner stayed below 0.9.
const (
	multiIntentConfidenceCeiling = 0.9
	multiIntentRunnerUpFloor     = 0.5
)

var reRecallEarlier = regexp.MustCompile(`(?i)\bearlier\b|\bback to\b|\bbefore\b`)

// rePronounFollowUp and reServiceOrTime mirror the classifier's context-
// aware follow-up boost: a bare pronoun plus a service/time
// keyword (or, symmetrically, a product keyword) signals that the turn
// should narrow the PRIOR result set rather than re-query the full index.
var (
	rePronounFollowUp = regexp.MustCompile(`(?i)\b(they|them|it|those)\b`)
	reServiceOrTime    = regexp.MustCompile(`(?i)\b(dine[- ]in|takeaway|delivery|drive[- ]thru|wifi|24[- ]hour|open|close|hours?)\b`)
	reProductKeyword   = regexp.MustCompile(`(?i)\b(cheap|price|material|color|feature|size)\b`)
)

// handler builds the Action(s) for one ranked classification given slots
// and session context. Returning more than one Action implements the
// multi-intent fan-out; the Controller executes them and the composer
// joins their outputs with a blank line.
type handler func(utterance string, slots domain.Slots, ctx SessionContext) []domain.Action

// SessionContext is the read-only session state the planner consults. It
// mirrors the subset of domain.Session the planner needs without importing
// the session package (avoiding an import cycle with internal/session).
type SessionContext struct {
	LastIntent       domain.Intent
	HasLastShown     bool
	HasSavedContext  bool
	LastShownSummary string
	SavedContextText string

	// LastShownProducts / LastShownOutlets carry the actual prior result
	// entities (not just their rendered summary) so a follow-up turn can
	// be narrowed against them rather than the full index.
	LastShownProducts []domain.Product
	LastShownOutlets  []domain.Outlet
}

// Planner is stateless; everything turn-specific arrives as arguments.
type Planner struct {
	table map[domain.Intent]handler
}

// New wires the (Intent -> handler) dispatch table.
func New() *Planner {
	p := &Planner{}
	p.table = map[domain.Intent]handler{
		domain.IntentGreeting:         p.handleGreeting,
		domain.IntentFarewell:         p.handleFarewell,
		domain.IntentProductSearch:    p.handleProductSearch,
		domain.IntentOutletSearch:     p.handleOutletSearch,
		domain.IntentCalculation:      p.handleCalculation,
		domain.IntentPromotionInquiry: p.handlePromotionInquiry,
		domain.IntentContextRecall:    p.handleContextRecall,
		domain.IntentAbout:            p.handleAbout,
		domain.IntentMalicious:        p.handleMalicious,
		domain.IntentUnclear:          p.handleUnclear,
	}
	return p
}

// Plan decides the turn's actions. ranked is the classifier's full ranking
// (Rank, not just Classify's top pick) so the multi-intent rule can
// inspect the runner-up. utterance is the raw turn text, needed verbatim
// for CALL_CALCULATOR's expression field.
func (p *Planner) Plan(utterance string, ranked []domain.Classification, slots domain.Slots, ctx SessionContext) domain.Plan {
	top := ranked[0]

	topicSwitched := topicSwitch(ctx.LastIntent, top.Intent)

	actions := p.dispatch(top.Intent, utterance, slots, ctx)

	if len(ranked) > 1 && top.Confidence < multiIntentConfidenceCeiling && ranked[1].Confidence > multiIntentRunnerUpFloor {
		actions = append(actions, p.dispatch(ranked[1].Intent, utterance, slots, ctx)...)
	}

	return domain.Plan{
		Actions:        actions,
		Classification: top,
		TopicSwitched:  topicSwitched,
	}
}

func (p *Planner) dispatch(intent domain.Intent, utterance string, slots domain.Slots, ctx SessionContext) []domain.Action {
	h, ok := p.table[intent]
	if !ok {
		return p.handleUnclear(utterance, slots, ctx)
	}
	return h(utterance, slots, ctx)
}

// topicSwitch reports a previous last_intent in one family and a new
// intent in the other.
func topicSwitch(prev, next domain.Intent) bool {
	if prev == "" {
		return false
	}
	return (prev.IsOutletFamily() && next.IsProductFamily()) ||
		(prev.IsProductFamily() && next.IsOutletFamily())
}

func (p *Planner) handleGreeting(_ string, _ domain.Slots, _ SessionContext) []domain.Action {
	return []domain.Action{domain.ProvideAnswer(welcomeMessage)}
}

func (p *Planner) handleFarewell(_ string, _ domain.Slots, _ SessionContext) []domain.Action {
	return []domain.Action{domain.ProvideAnswer(farewellMessage)}
}

func (p *Planner) handleProductSearch(utterance string, slots domain.Slots, ctx SessionContext) []domain.Action {
	if isProductFollowUp(utterance) && len(ctx.LastShownProducts) > 0 {
		return []domain.Action{domain.CallProductSearchWithin(strings.Join(slots.Keywords, " "), slots, defaultProductK, ctx.LastShownProducts)}
	}
	if slots.IsEmpty() && !slots.HasProductNouns() {
		return []domain.Action{domain.AskFollowup(askProductTypeMessage)}
	}
	k := defaultProductK
	if slots.Singular {
		k = 1
	}
	return []domain.Action{domain.CallProductSearch(strings.Join(slots.Keywords, " "), slots, k)}
}

func (p *Planner) handleOutletSearch(utterance string, slots domain.Slots, ctx SessionContext) []domain.Action {
	if isOutletFollowUp(utterance) && len(ctx.LastShownOutlets) > 0 {
		return []domain.Action{domain.CallOutletSearchWithin(strings.Join(slots.Keywords, " "), slots, defaultOutletK, ctx.LastShownOutlets)}
	}
	if slots.IsEmpty() {
		return []domain.Action{domain.AskFollowup(askAreaMessage)}
	}
	return []domain.Action{domain.CallOutletSearch(strings.Join(slots.Keywords, " "), slots, defaultOutletK)}
}

// isOutletFollowUp / isProductFollowUp mirror the classifier's context-aware
// boost condition, reused here to decide whether to narrow against the
// prior result set.
func isOutletFollowUp(utterance string) bool {
	return rePronounFollowUp.MatchString(utterance) && reServiceOrTime.MatchString(utterance)
}

func isProductFollowUp(utterance string) bool {
	return rePronounFollowUp.MatchString(utterance) && reProductKeyword.MatchString(utterance)
}

func (p *Planner) handleCalculation(utterance string, _ domain.Slots, _ SessionContext) []domain.Action {
	// Expression extraction failure (NotACalculation) is discovered only
	// when the Controller actually calls the calculator; the planner
	// always issues CALL_CALCULATOR with the raw utterance and lets the
	// Controller fall back to ASK_FOLLOWUP on that specific error kind
	// (see internal/engine).
	return []domain.Action{domain.CallCalculator(utterance, utterance)}
}

func (p *Planner) handlePromotionInquiry(utterance string, slots domain.Slots, ctx SessionContext) []domain.Action {
	// Downgrade to PRODUCT_SEARCH if a superlative price slot is present
	// ("what's the cheapest promo item" is a product query, not a summary
	// request).
	if slots.Superlative != domain.SuperlativeNone {
		return p.handleProductSearch(utterance, slots, ctx)
	}
	return []domain.Action{domain.ProvideAnswer(promoSummaryMessage)}
}

func (p *Planner) handleContextRecall(_ string, _ domain.Slots, ctx SessionContext) []domain.Action {
	if ctx.HasSavedContext {
		return []domain.Action{domain.ProvideAnswer(ctx.SavedContextText)}
	}
	if ctx.HasLastShown {
		return []domain.Action{domain.ProvideAnswer(ctx.LastShownSummary)}
	}
	return []domain.Action{domain.RequestClarification(recallEmptyMessage)}
}

func (p *Planner) handleAbout(_ string, _ domain.Slots, _ SessionContext) []domain.Action {
	return []domain.Action{domain.ProvideAnswer(aboutMessage)}
}

func (p *Planner) handleMalicious(_ string, _ domain.Slots, _ SessionContext) []domain.Action {
	return []domain.Action{domain.Reject(rejectMessage)}
}

func (p *Planner) handleUnclear(_ string, _ domain.Slots, _ SessionContext) []domain.Action {
	return []domain.Action{domain.RequestClarification(unclearMessage)}
}

// ReferencesEarlierContext reports whether a CONTEXT_RECALL utterance named
// "earlier", "back to", or "before" explicitly, the one condition under
// which saved_context (rather than last_shown_*) is read.
func ReferencesEarlierContext(utterance string) bool {
	return reRecallEarlier.MatchString(utterance)
}

const (
	welcomeMessage        = "Hi there! I'm the ZUS Coffee assistant. Ask me about our drinkware, outlets, or run a quick calculation."
	farewellMessage       = "Thanks for stopping by! Have a great day."
	askProductTypeMessage = "Sure — are you looking for a tumbler, mug, cup, or bottle?"
	askAreaMessage        = "Which area or city should I look in?"
	promoSummaryMessage   = "We regularly run promotions on selected drinkware — ask about a specific product for its current price and any discount."
	recallEmptyMessage    = "I don't have anything earlier in this conversation to refer back to — what would you like to know?"
	aboutMessage          = "I'm a ZUS Coffee assistant: I can help with product info, outlet details, and quick price calculations."
	rejectMessage         = "I can't help with that request."
	unclearMessage        = "I didn't quite catch that — I can help with ZUS Coffee products, outlets, or a quick calculation."
)
