package catalog

import (
	"sort"
	"strings"

	"zuscore/internal/domain"
)

// fuzzyMatchThreshold is the token-sort-ratio cutoff for typo-tolerant
// matching.
const fuzzyMatchThreshold = 60

// fuzzyMatch is cascade stage 4: typo tolerance via a token-sort ratio, a
// variant of Levenshtein similarity insensitive to word order.
func fuzzyMatch(query string, products []domain.Product, threshold int) []domain.Product {
	queryKey := sortedTokenKey(query)
	if queryKey == "" {
		return nil
	}

	type scored struct {
		product domain.Product
		score   int
	}
	var candidates []scored
	for _, p := range products {
		best := 0
		for _, field := range productFields(p) {
			key := sortedTokenKey(field)
			if key == "" {
				continue
			}
			if r := tokenSortRatio(queryKey, key); r > best {
				best = r
			}
		}
		if best >= threshold {
			candidates = append(candidates, scored{product: p, score: best})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	out := make([]domain.Product, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.product)
	}
	return out
}

// sortedTokenKey lowercases, tokenizes, sorts tokens, and rejoins: the
// "token sort" half of a token-sort ratio.
func sortedTokenKey(s string) string {
	tokens := strings.Fields(strings.ToLower(s))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// tokenSortRatio returns an integer similarity in [0,100] between two
// already token-sorted strings, based on normalized Levenshtein distance.
func tokenSortRatio(a, b string) int {
	if a == b {
		return 100
	}
	dist := levenshtein(a, b)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 100
	}
	ratio := 1.0 - float64(dist)/float64(maxLen)
	if ratio < 0 {
		ratio = 0
	}
	return int(ratio * 100)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min3(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
