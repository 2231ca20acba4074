package catalog

import (
	"strings"

	"zuscore/internal/domain"
)

// lexicalMatch is cascade stage 3: substring matching of the query's
// tokens against name, category, material, collection, colors, and
// features. A product matches if any token appears in any of those
// fields.
func lexicalMatch(query string, products []domain.Product) []domain.Product {
	tokens := queryTokens(query)
	if len(tokens) == 0 {
		return nil
	}

	var out []domain.Product
	for _, p := range products {
		haystack := strings.ToLower(strings.Join(productFields(p), " "))
		for _, tok := range tokens {
			// A trailing plural "s" should not defeat a substring match
			// ("tumblers" still finds the "tumbler" category).
			singular := strings.TrimSuffix(tok, "s")
			if strings.Contains(haystack, tok) || (len(singular) >= 3 && strings.Contains(haystack, singular)) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

func productFields(p domain.Product) []string {
	fields := []string{p.Name, p.Category, string(p.Material), p.Collection}
	fields = append(fields, p.Colors...)
	for _, f := range p.Features {
		fields = append(fields, string(f))
	}
	return fields
}

func queryTokens(query string) []string {
	lower := strings.ToLower(query)
	raw := strings.FieldsFunc(lower, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})
	var tokens []string
	for _, t := range raw {
		if len(t) >= 3 {
			tokens = append(tokens, t)
		}
	}
	return tokens
}
