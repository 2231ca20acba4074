// Package locations holds the city/area alias table shared by the slot
// extractor and the outlet query engine, so a short form resolves to the
// same canonical name wherever it appears.
package locations

import "strings"

// aliases maps short forms and common misspellings to their canonical
// outlet-registry city/area name (klcc/kl/kuala lumpur, pj/petaling
// jaya, ...).
var aliases = map[string]string{
	"kl":               "kuala lumpur",
	"klcc":             "kuala lumpur",
	"kuala lumpur":     "kuala lumpur",
	"pj":               "petaling jaya",
	"petaling jaya":    "petaling jaya",
	"sj":               "subang jaya",
	"subang jaya":      "subang jaya",
	"subang":           "subang jaya",
	"oug":              "old klang road",
	"shah alam":        "shah alam",
	"puchong":          "puchong",
	"cheras":           "cheras",
	"bangsar":          "bangsar",
	"mont kiara":       "mont kiara",
	"damansara":        "damansara",
	"selangor":         "selangor",
	"penang":           "penang",
	"georgetown":       "penang",
	"johor bahru":      "johor bahru",
	"jb":               "johor bahru",
	"ipoh":             "ipoh",
	"melaka":           "melaka",
	"malacca":          "melaka",
}

// Canonicalize resolves raw (already lowercase-trimmed by the caller) to
// its canonical outlet-registry name. Unknown locations pass through
// unchanged so they can still be used as keyword filters.
func Canonicalize(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := aliases[key]; ok {
		return canonical
	}
	return key
}

// aliasWords is the set of individual words appearing in any alias key or
// canonical name, used by the slot extractor to keep recognised location
// tokens out of the free-keyword list.
var aliasWords = func() map[string]struct{} {
	words := make(map[string]struct{})
	for alias, canonical := range aliases {
		for _, w := range strings.Fields(alias) {
			words[w] = struct{}{}
		}
		for _, w := range strings.Fields(canonical) {
			words[w] = struct{}{}
		}
	}
	return words
}()

// KnownWord reports whether tok (lowercase) is a word of any recognised
// alias or canonical city/area name.
func KnownWord(tok string) bool {
	_, ok := aliasWords[tok]
	return ok
}

// AllAliases returns the alias keys, longest first, so greedy substring
// scans (the slot extractor) match "kuala lumpur" before the
// shorter "kl" would otherwise shadow it.
func AllAliases() []string {
	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	// simple insertion sort by length descending; the table is small.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && len(keys[j]) > len(keys[j-1]); j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}
