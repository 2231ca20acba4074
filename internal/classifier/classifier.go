// Package classifier implements the intent classifier: a deterministic,
// ordered-predicate-cascade classifier (no learned model, no RNG) mapping
// an utterance plus recent intent history to an Intent and a confidence in
// [0,1]. Each intent carries one ordered regex table; tables are scored,
// not short-circuited, so every input gets a total verdict.
package classifier

import (
	"sort"
	"strings"
	"unicode"

	"zuscore/internal/domain"
	"zuscore/platform/sanitize"
)

// Classifier carries no mutable state of its own; session context is
// passed in explicitly per call.
type Classifier struct{}

// New creates a Classifier.
func New() *Classifier {
	return &Classifier{}
}

const unclearThreshold = 0.3

// rankOrder is the stable ordering scored intents are ranked in.
var rankOrder = []domain.Intent{
	domain.IntentProductSearch,
	domain.IntentOutletSearch,
	domain.IntentCalculation,
	domain.IntentPromotionInquiry,
	domain.IntentContextRecall,
	domain.IntentGreeting,
	domain.IntentFarewell,
	domain.IntentAbout,
}

// Classify returns the top-ranked intent. prevIntent is the session's
// last recognised intent (zero value if none), used only for the
// context-aware follow-up boost.
func (c *Classifier) Classify(utterance string, prevIntent domain.Intent) domain.Classification {
	ranked := c.Rank(utterance, prevIntent)
	return ranked[0]
}

// Rank scores every intent and returns them sorted by descending
// confidence, always with at least one element (UNCLEAR as a floor). The
// planner's multi-intent rule reads the second entry, not just the winner
// Classify returns.
func (c *Classifier) Rank(utterance string, prevIntent domain.Intent) []domain.Classification {
	trimmed := strings.TrimSpace(utterance)

	// 1. Malicious check, priority 0.
	if isMalicious(trimmed) {
		return []domain.Classification{{Intent: domain.IntentMalicious, Confidence: 1.0}}
	}

	// 2. Garbage input.
	if isGarbage(trimmed) {
		return []domain.Classification{{Intent: domain.IntentUnclear, Confidence: 0}}
	}

	scores := map[domain.Intent]float64{
		domain.IntentGreeting:         scorePatterns(trimmed, greeting),
		domain.IntentFarewell:         scorePatterns(trimmed, farewell),
		domain.IntentProductSearch:    scorePatterns(trimmed, productSearch),
		domain.IntentOutletSearch:     scorePatterns(trimmed, outletSearch),
		domain.IntentCalculation:      scorePatterns(trimmed, calculationPatterns),
		domain.IntentPromotionInquiry: scorePatterns(trimmed, promotionInquiry),
		domain.IntentContextRecall:    scorePatterns(trimmed, contextRecall),
		domain.IntentAbout:            scorePatterns(trimmed, about),
	}

	// 3. Context-aware follow-up boost.
	if pronounFollowUp.MatchString(trimmed) {
		switch {
		case prevIntent == domain.IntentOutletSearch && serviceOrTimeKeyword.MatchString(trimmed):
			scores[domain.IntentOutletSearch] += 0.3
		case prevIntent == domain.IntentProductSearch && productKeyword.MatchString(trimmed):
			scores[domain.IntentProductSearch] += 0.3
		}
	}

	// 5. Conflict resolution.
	hasOperator := calculationHasOperator(trimmed)
	hasCatalogNoun := mentionsCatalogNoun(trimmed)

	if scores[domain.IntentCalculation] > 0 {
		// A specific calculation pattern outranks PROMOTION_INQUIRY even
		// when the word "discount" appears in both tables.
		scores[domain.IntentPromotionInquiry] = 0
	}
	if hasCatalogNoun && !hasOperator {
		// Explicit catalogue nouns with no operator suppress CALCULATION.
		scores[domain.IntentCalculation] = 0
	}
	if scores[domain.IntentOutletSearch] > 0 && serviceOrTimeKeyword.MatchString(trimmed) {
		// Outlet service keywords outrank generic product keywords.
		scores[domain.IntentProductSearch] -= 0.15
	}

	// rankOrder fixes the tie-break: with equal confidence the earlier
	// intent wins, keeping Rank a pure function of its inputs rather than
	// of map iteration order.
	ranked := make([]domain.Classification, 0, len(scores))
	for _, intent := range rankOrder {
		score := scores[intent]
		if score <= 0 {
			continue
		}
		if score > 1.0 {
			score = 1.0
		}
		ranked = append(ranked, domain.Classification{Intent: intent, Confidence: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Confidence > ranked[j].Confidence })

	// 6. Threshold.
	if len(ranked) == 0 || ranked[0].Confidence < unclearThreshold {
		top := 0.0
		if len(ranked) > 0 {
			top = ranked[0].Confidence
		}
		return []domain.Classification{{Intent: domain.IntentUnclear, Confidence: top}}
	}

	return ranked
}

func isMalicious(utterance string) bool {
	if sanitize.ContainsDangerousPatterns(utterance) {
		return true
	}
	for _, re := range malicious {
		if re.MatchString(utterance) {
			return true
		}
	}
	return false
}

// isGarbage flags input with an alphanumeric ratio under 0.3, or any
// character repeating 5+ times consecutively.
func isGarbage(utterance string) bool {
	if utterance == "" {
		return false // empty input is InvalidInput, handled upstream, not UNCLEAR
	}

	var alnum, total int
	var lastRune rune
	var run int
	for _, r := range utterance {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
		if r == lastRune {
			run++
			if run >= 5 {
				return true
			}
		} else {
			run = 1
			lastRune = r
		}
	}

	if total == 0 {
		return false
	}
	ratio := float64(alnum) / float64(total)
	return ratio < 0.3
}

// scorePatterns scores one intent's table: each match adds 0.3, a full-
// utterance match adds an additional 0.4, and a partial match scales by
// match length over utterance length.
func scorePatterns(utterance string, table []scoredPattern) float64 {
	if utterance == "" {
		return 0
	}
	var score float64
	utterLen := float64(len([]rune(utterance)))

	for _, sp := range table {
		loc := sp.re.FindStringIndex(utterance)
		if loc == nil {
			continue
		}
		score += 0.3

		matchLen := float64(loc[1] - loc[0])
		if matchLen >= utterLen*0.9 {
			score += 0.4
		} else {
			score += 0.3 * (matchLen / utterLen)
		}
	}
	return score
}

func calculationHasOperator(utterance string) bool {
	for _, sp := range calculationPatterns {
		if sp.re.MatchString(utterance) {
			return true
		}
	}
	return false
}

func mentionsCatalogNoun(utterance string) bool {
	lower := strings.ToLower(utterance)
	for _, noun := range domain.CatalogNouns() {
		if strings.Contains(lower, noun) {
			return true
		}
	}
	return false
}
