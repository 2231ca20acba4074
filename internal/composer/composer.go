// Package composer implements the response composer: a deterministic,
// side-effect-free formatter that turns tool results into the reply text
// returned to the user. One function per result shape; it never executes a
// tool itself and never surfaces raw exception text.
package composer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"zuscore/internal/domain"
	"zuscore/platform/apperr"
)

const maxListedAttributes = 3

// Products renders a retrieval result. A single product uses a denser
// block format with a recommendation sentence; multiple products render a
// numbered list.
func Products(query string, results []domain.Product) string {
	if len(results) == 0 {
		return noProductsMessage(query)
	}
	if len(results) == 1 {
		return productBlock(results[0])
	}

	var b strings.Builder
	for i, p := range results {
		fmt.Fprintf(&b, "%d. %s\n", i+1, productLine(p))
	}
	return strings.TrimRight(b.String(), "\n")
}

func productBlock(p domain.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s — %s\n", p.Name, p.DisplayPrice)
	if p.OnSale {
		b.WriteString("On sale")
		if p.Promotion != "" {
			fmt.Fprintf(&b, " (%s)", p.Promotion)
		}
		b.WriteString("\n")
	}
	if p.Capacity != "" {
		fmt.Fprintf(&b, "Capacity: %s\n", p.Capacity)
	}
	if p.Material != "" {
		fmt.Fprintf(&b, "Material: %s\n", p.Material)
	}
	if p.Collection != "" {
		fmt.Fprintf(&b, "Collection: %s\n", p.Collection)
	}
	if list := truncatedList(p.Colors); list != "" {
		fmt.Fprintf(&b, "Colors: %s\n", list)
	}
	if list := truncatedFeatureList(p.Features); list != "" {
		fmt.Fprintf(&b, "Features: %s\n", list)
	}
	fmt.Fprintf(&b, "I'd recommend this if you're after a %s option.", recommendationHook(p))
	return b.String()
}

func productLine(p domain.Product) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%s — %s", p.Name, p.DisplayPrice))
	if p.OnSale {
		parts = append(parts, "on sale")
	}
	if p.Capacity != "" {
		parts = append(parts, p.Capacity)
	}
	if p.Material != "" {
		parts = append(parts, string(p.Material))
	}
	if p.Collection != "" {
		parts = append(parts, p.Collection+" collection")
	}
	if list := truncatedList(p.Colors); list != "" {
		parts = append(parts, "colors: "+list)
	}
	if list := truncatedFeatureList(p.Features); list != "" {
		parts = append(parts, list)
	}
	return strings.Join(parts, ", ")
}

func recommendationHook(p domain.Product) string {
	switch {
	case p.Material == domain.MaterialStainlessSteel:
		return "durable, insulated"
	case p.OnSale:
		return "good-value"
	default:
		return "reliable everyday"
	}
}

func truncatedList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	if len(items) <= maxListedAttributes {
		return strings.Join(items, ", ")
	}
	shown := items[:maxListedAttributes]
	return fmt.Sprintf("%s +%d more", strings.Join(shown, ", "), len(items)-maxListedAttributes)
}

func truncatedFeatureList(features []domain.Feature) string {
	strs := make([]string, len(features))
	for i, f := range features {
		strs[i] = string(f)
	}
	return truncatedList(strs)
}

func noProductsMessage(query string) string {
	if query == "" {
		return "I couldn't find any products matching that. Try asking about tumblers, mugs, cups, or bottles."
	}
	return fmt.Sprintf("I couldn't find any products matching %q. Try a different material, capacity, or collection.", query)
}

// Outlets renders an outlet search result: name, address, today's hours,
// and service icons.
func Outlets(filters domain.Slots, results []domain.Outlet, now time.Time) string {
	if len(results) == 0 {
		return noOutletsMessage(filters)
	}

	today := strings.ToLower(now.Weekday().String())
	var b strings.Builder
	for i, o := range results {
		fmt.Fprintf(&b, "%d. %s — %s\n", i+1, o.Name, o.Address)
		if dh, ok := o.Hours[today]; ok && dh.Raw != "" {
			fmt.Fprintf(&b, "   Today: %s\n", dh.Raw)
		}
		if icons := serviceIcons(o.Services); icons != "" {
			fmt.Fprintf(&b, "   %s\n", icons)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func serviceIcons(services []domain.Service) string {
	if len(services) == 0 {
		return ""
	}
	icons := map[domain.Service]string{
		domain.ServiceDineIn:    "🍽 dine-in",
		domain.ServiceTakeaway:  "🥤 takeaway",
		domain.ServiceDelivery:  "🚚 delivery",
		domain.ServiceDriveThru: "🚗 drive-thru",
		domain.ServiceWifi:      "📶 wifi",
		domain.Service24Hour:    "🕐 24-hour",
	}
	var parts []string
	for _, s := range services {
		if icon, ok := icons[s]; ok {
			parts = append(parts, icon)
		}
	}
	return strings.Join(parts, "  ")
}

func noOutletsMessage(filters domain.Slots) string {
	if len(filters.Locations) == 0 {
		return "I couldn't find any outlets matching that. Try naming a city or area."
	}
	return fmt.Sprintf("No outlets match (location: %s).", strings.Join(filters.Locations, ", "))
}

// Count renders the counting contract's reply: the exact filtered-set size.
func Count(filters domain.Slots, n int) string {
	if len(filters.Locations) > 0 {
		return fmt.Sprintf("There are %d outlet(s) in %s.", n, strings.Join(filters.Locations, ", "))
	}
	return fmt.Sprintf("There are %d outlet(s) matching that.", n)
}

// Calculation renders a calculator result: the normalized expression plus
// the formatted value, using the currency format only when the input
// actually mentioned a currency tag.
func Calculation(r CalcResult) string {
	if r.Text != "" {
		return r.Text
	}
	formatted := formatValue(r.Value, r.IsCurrency)
	if len(r.Breakdown) > 0 {
		keys := make([]string, 0, len(r.Breakdown))
		for k := range r.Breakdown {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, formatValue(r.Breakdown[k], r.IsCurrency)))
		}
		return fmt.Sprintf("%s = %s (%s)", r.NormalizedExpression, formatted, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("%s = %s", r.NormalizedExpression, formatted)
}

// CalcResult is the subset of calculator.Result the composer needs,
// duplicated here so the composer stays a pure formatting layer with no
// dependency on the calculator package.
type CalcResult struct {
	Value                float64
	NormalizedExpression string
	IsCurrency           bool
	Text                 string
	Breakdown            map[string]float64
}

func formatValue(v float64, isCurrency bool) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if isCurrency {
		return "RM " + s
	}
	return s
}

// ErrorReply maps an error kind to a user-facing template with domain-
// appropriate examples, never the underlying exception text.
func ErrorReply(err error) string {
	switch apperr.GetKind(err) {
	case apperr.KindNotACalculation:
		return "That doesn't look like a calculation I can run. Try something like \"15% discount on RM50\" or \"6% SST on RM120\"."
	case apperr.KindCalculation:
		return "I couldn't complete that calculation — double check the numbers (e.g. no division by zero) and try again."
	case apperr.KindMalicious:
		return "I can't process that request."
	case apperr.KindEmptyResult:
		return "I didn't find anything matching that."
	case apperr.KindToolTimeout:
		return "That's taking longer than expected — please try again in a moment."
	case apperr.KindToolUnavailable:
		return "One of my tools is temporarily unavailable, so this answer might be less precise than usual."
	case apperr.KindInvalidInput:
		return "Could you rephrase that? Messages need to be between 1 and 1000 characters."
	default:
		return "Something went wrong on my end — please try again."
	}
}

// Join combines multiple action outputs for a multi-intent turn,
// separated by a blank line.
func Join(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}
