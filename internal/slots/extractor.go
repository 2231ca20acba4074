// Package slots implements the slot extractor: it runs after
// classification and pulls the structured fields of domain.Slots out of
// one utterance. Each slot family has its own regex table, consulted in a
// defined order; aliases (location, service, material) live in separate
// lookup tables (internal/locations, domain.AllServices/AllMaterials/
// AllFeatures).
package slots

import (
	"regexp"
	"strconv"
	"strings"

	"zuscore/internal/domain"
	"zuscore/internal/locations"
)

var (
	reUnder      = regexp.MustCompile(`(?i)\b(?:under|below|less\s*than)\s*(?:rm)?\s*(\d+(?:\.\d+)?)`)
	reOver       = regexp.MustCompile(`(?i)\b(?:above|over|more\s*than)\s*(?:rm)?\s*(\d+(?:\.\d+)?)`)
	reBetween    = regexp.MustCompile(`(?i)\bbetween\s*(?:rm)?\s*(\d+(?:\.\d+)?)\s*(?:and|to|-)\s*(?:rm)?\s*(\d+(?:\.\d+)?)`)
	reXToY       = regexp.MustCompile(`(?i)\brm\s*(\d+(?:\.\d+)?)\s*to\s*(?:rm)?\s*(\d+(?:\.\d+)?)`)
	reCheapest   = regexp.MustCompile(`(?i)\bcheapest\b`)
	reMostExpensive = regexp.MustCompile(`(?i)\bmost\s*expensive\b|\bpriciest\b|\bdearest\b`)
	rePluralHint = regexp.MustCompile(`(?i)\b(top\s*\d+|a\s*few|some|ones)\b`)
	reShowAll    = regexp.MustCompile(`(?i)\bshow\s*(me\s*)?all\b|\bentire\s*(catalogue|catalog)\b|\ball\s*products?\b`)
	reCountQuery = regexp.MustCompile(`(?i)\bhow\s*many\b`)
	reClosing    = regexp.MustCompile(`(?i)\bclos(e|ed|ing|es)\b|\bshut\b`)
	reOpening    = regexp.MustCompile(`(?i)\bopen(s|ing)?\b|\bstart(s)?\b`)
	reFullHours  = regexp.MustCompile(`(?i)\bhours?\b|\bschedule\b`)
	reSmall      = regexp.MustCompile(`(?i)\bsmall\b`)
	reMedium     = regexp.MustCompile(`(?i)\bmedium\b`)
	reLarge      = regexp.MustCompile(`(?i)\blarge\b`)
	reCollection = regexp.MustCompile(`(?i)\b([a-z]+)\s*collection\b`)

	stopwords = map[string]struct{}{
		"the": {}, "a": {}, "an": {}, "is": {}, "are": {}, "do": {}, "you": {},
		"have": {}, "i": {}, "me": {}, "my": {}, "for": {}, "of": {}, "in": {},
		"to": {}, "and": {}, "with": {}, "show": {}, "please": {}, "can": {},
		"want": {}, "need": {}, "looking": {}, "it": {}, "at": {}, "on": {},
		"what": {}, "where": {}, "when": {}, "which": {}, "who": {}, "how": {},
		"there": {}, "any": {}, "near": {}, "nearby": {}, "does": {}, "your": {},
		"our": {}, "under": {}, "over": {}, "below": {}, "above": {},
		"between": {}, "than": {}, "less": {}, "more": {}, "many": {},
	}

	tokenRe = regexp.MustCompile(`[a-zA-Z]+`)
)

// Extract pulls every recognisable slot out of one utterance. Extraction
// never errors; absence of a slot is a valid outcome and the planner
// decides per-intent which families matter.
func Extract(utterance string) domain.Slots {
	lower := strings.ToLower(utterance)

	s := domain.Slots{
		Locations: extractLocations(lower),
		Services:  extractServices(lower),
		Materials: extractMaterials(lower),
		Features:  extractFeatures(lower),
	}

	if m := reCollection.FindStringSubmatch(lower); m != nil {
		s.Collections = []string{m[1]}
	}

	s.Capacity = extractCapacity(lower)
	s.Budget = extractBudget(lower)
	s.TimeQuery = extractTimeQuery(lower)
	s.Superlative, s.Singular = extractSuperlative(lower)
	s.ShowAll = reShowAll.MatchString(lower)
	s.CountQuery = reCountQuery.MatchString(lower)
	s.Keywords = extractKeywords(lower, claimedWords(s))

	return s
}

// pronouns are bare referents ("do THEY have dine-in?") that name no
// catalogue entity of their own; extractKeywords excludes them so a
// follow-up turn's keyword stage doesn't try to match "they" against an
// outlet's name or address.
var pronouns = map[string]struct{}{
	"they": {}, "them": {}, "it": {}, "those": {}, "this": {}, "these": {}, "that": {},
}

// claimedWords flattens every slot family a utterance already matched
// (services, materials, features, collections) into a set of individual
// word tokens, splitting on "-" the same way extractServices/Materials/
// Features do when matching the space-joined variant of a closed-
// vocabulary token (e.g. "dine-in" -> "dine", "in"). extractKeywords uses
// this to avoid re-deriving a weaker, already-claimed token like "dine"
// as a free keyword that then fails to match anything on its own.
func claimedWords(s domain.Slots) map[string]struct{} {
	claimed := make(map[string]struct{})
	add := func(values []string) {
		for _, v := range values {
			for _, part := range strings.Split(v, "-") {
				claimed[part] = struct{}{}
			}
		}
	}
	add(s.Services)
	add(s.Materials)
	add(s.Features)
	add(s.Collections)
	return claimed
}

// ContextEntities flattens the recognised slot values into the flat entity
// list the Controller appends to Session.ContextEntities for future
// pronoun resolution.
func ContextEntities(s domain.Slots) []string {
	var entities []string
	entities = append(entities, s.Locations...)
	entities = append(entities, s.Services...)
	entities = append(entities, s.Materials...)
	entities = append(entities, s.Features...)
	entities = append(entities, s.Collections...)
	return entities
}

func extractLocations(lower string) []string {
	var found []string
	seen := map[string]bool{}
	for _, alias := range locations.AllAliases() {
		if containsPhrase(lower, alias) {
			canonical := locations.Canonicalize(alias)
			if !seen[canonical] {
				seen[canonical] = true
				found = append(found, canonical)
			}
		}
	}
	return found
}

// containsPhrase is a word-boundary-aware substring check, so a two-letter
// alias like "kl" does not fire inside an unrelated word ("weekly").
func containsPhrase(lower, phrase string) bool {
	idx := 0
	for {
		i := strings.Index(lower[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		beforeOK := start == 0 || !isWordByte(lower[start-1])
		afterOK := end == len(lower) || !isWordByte(lower[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

func extractServices(lower string) []string {
	var found []string
	for _, svc := range domain.AllServices {
		variant := strings.ReplaceAll(string(svc), "-", " ")
		if strings.Contains(lower, string(svc)) || strings.Contains(lower, variant) {
			found = append(found, string(svc))
		}
	}
	return found
}

func extractMaterials(lower string) []string {
	var found []string
	for _, mat := range domain.AllMaterials {
		if mat == domain.MaterialOther {
			continue
		}
		variant := strings.ReplaceAll(string(mat), "-", " ")
		if strings.Contains(lower, string(mat)) || strings.Contains(lower, variant) {
			found = append(found, string(mat))
		}
	}
	return found
}

func extractFeatures(lower string) []string {
	var found []string
	for _, feat := range domain.AllFeatures {
		variant := strings.ReplaceAll(string(feat), "-", " ")
		if strings.Contains(lower, string(feat)) || strings.Contains(lower, variant) {
			found = append(found, string(feat))
		}
	}
	return found
}

func extractCapacity(lower string) domain.Capacity {
	switch {
	case reLarge.MatchString(lower):
		return domain.CapacityLarge
	case reMedium.MatchString(lower):
		return domain.CapacityMedium
	case reSmall.MatchString(lower):
		return domain.CapacitySmall
	default:
		return domain.CapacityUnspecified
	}
}

func extractBudget(lower string) domain.BudgetRange {
	if m := reBetween.FindStringSubmatch(lower); m != nil {
		return minMaxRange(m[1], m[2])
	}
	if m := reXToY.FindStringSubmatch(lower); m != nil {
		return minMaxRange(m[1], m[2])
	}
	if m := reUnder.FindStringSubmatch(lower); m != nil {
		if v, ok := parseFloat(m[1]); ok {
			return domain.BudgetRange{Max: &v}
		}
	}
	if m := reOver.FindStringSubmatch(lower); m != nil {
		if v, ok := parseFloat(m[1]); ok {
			return domain.BudgetRange{Min: &v}
		}
	}
	return domain.BudgetRange{}
}

func minMaxRange(aStr, bStr string) domain.BudgetRange {
	a, okA := parseFloat(aStr)
	b, okB := parseFloat(bStr)
	if !okA || !okB {
		return domain.BudgetRange{}
	}
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	return domain.BudgetRange{Min: &lo, Max: &hi}
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func extractTimeQuery(lower string) domain.TimeQuery {
	switch {
	case reClosing.MatchString(lower):
		return domain.TimeQueryClosing
	case reOpening.MatchString(lower):
		return domain.TimeQueryOpening
	case reFullHours.MatchString(lower):
		return domain.TimeQueryFullHours
	default:
		return domain.TimeQueryNone
	}
}

func extractSuperlative(lower string) (domain.Superlative, bool) {
	switch {
	case reMostExpensive.MatchString(lower):
		return domain.SuperlativeDearest, !pluralHinted(lower)
	case reCheapest.MatchString(lower):
		return domain.SuperlativeCheapest, !pluralHinted(lower)
	default:
		return domain.SuperlativeNone, false
	}
}

func pluralHinted(lower string) bool {
	return rePluralHint.MatchString(lower)
}

// extractKeywords tokenises the leftover free text for the lexical/fuzzy
// retrieval fallback and the outlet keyword filter stage. claimed excludes
// tokens another slot family already matched (so a service word like
// "dine-in" doesn't also surface its half-token "dine" as an unmatchable
// keyword) and bare pronouns, which name no entity of their own.
func extractKeywords(lower string, claimed map[string]struct{}) []string {
	var keywords []string
	for _, tok := range tokenRe.FindAllString(lower, -1) {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		if _, pronoun := pronouns[tok]; pronoun {
			continue
		}
		if _, taken := claimed[tok]; taken {
			continue
		}
		if locations.KnownWord(tok) {
			// Recognised city/area words already became a location slot in
			// canonical form; keeping the surface form ("georgetown", "pj")
			// as a free keyword would fail to match addresses that only
			// carry the canonical name.
			continue
		}
		if len(tok) < 3 {
			continue
		}
		keywords = append(keywords, tok)
	}
	return keywords
}
