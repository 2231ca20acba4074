package domain

// ActionKind is the closed tagged variant of everything the planner can
// decide to do next.
type ActionKind string

const (
	ActionProvideAnswer        ActionKind = "PROVIDE_ANSWER"
	ActionCallProductSearch    ActionKind = "CALL_PRODUCT_SEARCH"
	ActionCallOutletSearch     ActionKind = "CALL_OUTLET_SEARCH"
	ActionCallCalculator       ActionKind = "CALL_CALCULATOR"
	ActionAskFollowup          ActionKind = "ASK_FOLLOWUP"
	ActionRequestClarification ActionKind = "REQUEST_CLARIFICATION"
	ActionReject               ActionKind = "REJECT"
)

// Action is a closed tagged variant carrying whatever parameters its kind
// needs. Unused fields for a given Kind are left at their zero value; the
// planner and controller only read the fields relevant to Kind.
type Action struct {
	Kind ActionKind

	// PROVIDE_ANSWER / ASK_FOLLOWUP / REQUEST_CLARIFICATION / REJECT
	Text string

	// CALL_PRODUCT_SEARCH / CALL_OUTLET_SEARCH
	Query   string
	Filters Slots
	K       int

	// RestrictProducts / RestrictOutlets scope the search to a prior
	// result set (last_shown_products / last_shown_outlets) instead of the
	// full index, for pronoun follow-ups ("Do they have dine-in?"). Nil
	// means search the full index as usual.
	RestrictProducts []Product
	RestrictOutlets  []Outlet

	// CALL_CALCULATOR
	Expression    string
	OriginalQuery string
}

// ProvideAnswer builds a PROVIDE_ANSWER action.
func ProvideAnswer(text string) Action {
	return Action{Kind: ActionProvideAnswer, Text: text}
}

// AskFollowup builds an ASK_FOLLOWUP action.
func AskFollowup(prompt string) Action {
	return Action{Kind: ActionAskFollowup, Text: prompt}
}

// RequestClarification builds a REQUEST_CLARIFICATION action.
func RequestClarification(prompt string) Action {
	return Action{Kind: ActionRequestClarification, Text: prompt}
}

// Reject builds a REJECT action.
func Reject(reason string) Action {
	return Action{Kind: ActionReject, Text: reason}
}

// CallProductSearch builds a CALL_PRODUCT_SEARCH action.
func CallProductSearch(query string, filters Slots, k int) Action {
	return Action{Kind: ActionCallProductSearch, Query: query, Filters: filters, K: k}
}

// CallOutletSearch builds a CALL_OUTLET_SEARCH action.
func CallOutletSearch(query string, filters Slots, k int) Action {
	return Action{Kind: ActionCallOutletSearch, Query: query, Filters: filters, K: k}
}

// CallProductSearchWithin builds a CALL_PRODUCT_SEARCH action restricted to
// a prior result set.
func CallProductSearchWithin(query string, filters Slots, k int, candidates []Product) Action {
	a := CallProductSearch(query, filters, k)
	a.RestrictProducts = candidates
	return a
}

// CallOutletSearchWithin builds a CALL_OUTLET_SEARCH action restricted to
// a prior result set.
func CallOutletSearchWithin(query string, filters Slots, k int, candidates []Outlet) Action {
	a := CallOutletSearch(query, filters, k)
	a.RestrictOutlets = candidates
	return a
}

// CallCalculator builds a CALL_CALCULATOR action.
func CallCalculator(expression, originalQuery string) Action {
	return Action{Kind: ActionCallCalculator, Expression: expression, OriginalQuery: originalQuery}
}

// Plan is the planner's full output for a turn: one or more actions to
// execute (several on a multi-intent turn) plus the classification that
// produced it.
type Plan struct {
	Actions        []Action
	Classification Classification
	TopicSwitched  bool
}
