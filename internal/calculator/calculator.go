// Package calculator implements the safe calculator: a pattern cascade
// over natural language that recognises arithmetic, percentages, tax, and
// time-deltas, then evaluates them over a whitelisted character class
// rather than calling eval on user text. Patterns are consulted in a fixed
// precedence order; the first that matches wins.
package calculator

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"zuscore/internal/domain"
	"zuscore/platform/apperr"
)

// ErrKind classifies a calculation failure for the response composer's
// templated help.
type ErrKind string

const (
	ErrDivisionByZero    ErrKind = "division_by_zero"
	ErrInvalidExpression ErrKind = "invalid_expression"
	ErrInvalidResult     ErrKind = "invalid_result"
	ErrNotACalculation   ErrKind = "not_a_calculation"
	ErrOutOfRange        ErrKind = "out_of_range"
)

// Result is the successful outcome of Evaluate.
type Result struct {
	Value                float64
	NormalizedExpression string
	IsCurrency           bool
	IsTime               bool
	// Text is the fully rendered reply fragment for time-arithmetic results
	// ("You need to wait 1 hour 20 minutes." / "The time will be 9:45 AM.");
	// empty for numeric results, which the composer formats itself.
	Text string
	// Breakdown carries labelled sub-amounts for multi-part replies, e.g.
	// {"discount": 15.80, "final_price": 63.20} or {"tax": 3.30, "total": 58.30}.
	Breakdown map[string]float64
}

// CalcError is returned (wrapped in *apperr.Error) when evaluation fails.
type CalcError struct {
	Kind    ErrKind
	Message string
}

func (e *CalcError) Error() string { return e.Message }

// whitelisted is the character class a pure arithmetic sub-expression is
// restricted to, after surface-form normalization.
var whitelisted = regexp.MustCompile(`^[0-9+\-*/().% \t]+$`)

var (
	reDiscount     = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*%\s*discount\s*(?:on)?\s*(?:rm|\$)?\s*(\d+(?:\.\d+)?)`)
	reMultiplyX    = regexp.MustCompile(`(?i)total\s*for\s*(\d+(?:\.\d+)?)\s*[x×]\s*(?:rm|\$)?\s*(\d+(?:\.\d+)?)`)
	reUnitsOf      = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*units?\s*of\s*(?:rm|\$)?\s*(\d+(?:\.\d+)?)`)
	reItemsAtEach  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*items?\s*at\s*(?:rm|\$)?\s*(\d+(?:\.\d+)?)\s*each`)
	reSumAddUp     = regexp.MustCompile(`(?i)add\s*up\s*(.+)`)
	reSumSum       = regexp.MustCompile(`(?i)^sum\s*(?:of)?\s*(.+)`)
	reSSTExplicit  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*%\s*sst\s*on\s*(?:rm|\$)?\s*(\d+(?:\.\d+)?)`)
	reSSTDefault   = regexp.MustCompile(`(?i)\bsst\s*on\s*(?:rm|\$)?\s*(\d+(?:\.\d+)?)`)
	rePercentOf    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*%\s*of\s*(\d+(?:\.\d+)?)`)
	reSqrtWord     = regexp.MustCompile(`(?i)square\s*root\s*of\s*(\d+(?:\.\d+)?)`)
	reSqrtFn       = regexp.MustCompile(`(?i)sqrt\s*\(\s*(\d+(?:\.\d+)?)\s*\)`)
	reSqrtSymbol   = regexp.MustCompile(`√\s*(\d+(?:\.\d+)?)`)
	rePowerWord    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*to\s*the\s*power\s*of\s*(\d+(?:\.\d+)?)`)
	rePowerCaret   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*\^\s*(\d+(?:\.\d+)?)`)
	rePowerStars   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*\*\*\s*(\d+(?:\.\d+)?)`)
	reSplitAmong   = regexp.MustCompile(`(?i)split\s*(?:rm|\$)?\s*(\d+(?:\.\d+)?)\s*(?:between|among)\s*(\d+(?:\.\d+)?)`)
	reAverageOf    = regexp.MustCompile(`(?i)average\s*of\s*(.+)`)
	reCurrencyAmt  = regexp.MustCompile(`(?i)(?:rm|\$)\s*(\d+(?:\.\d+)?)`)
	reHasOperator  = regexp.MustCompile(`[+\-*/×÷]|\bplus\b|\bminus\b|\btimes\b|\bdivided by\b|\bmultiplied by\b`)
)

var wordOperators = []struct {
	pattern *regexp.Regexp
	replace string
}{
	{regexp.MustCompile(`(?i)\bmultiplied by\b`), "*"},
	{regexp.MustCompile(`(?i)\bdivided by\b`), "/"},
	{regexp.MustCompile(`(?i)\bplus\b`), "+"},
	{regexp.MustCompile(`(?i)\bminus\b`), "-"},
	{regexp.MustCompile(`(?i)\btimes\b`), "*"},
}

// normalizeSurface applies the fixed up-front surface-form replacements:
// ×→*, ÷→/, currency tags stripped, word operators mapped. Anything else
// outside the whitelist is an error, never silently dropped.
func normalizeSurface(s string) string {
	s = strings.ReplaceAll(s, "×", "*")
	s = strings.ReplaceAll(s, "÷", "/")
	for _, wo := range wordOperators {
		s = wo.pattern.ReplaceAllString(s, wo.replace)
	}
	s = regexp.MustCompile(`(?i)\brm\b`).ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "$", "")
	return s
}

func mentionsCurrency(s string) bool {
	return regexp.MustCompile(`(?i)\brm\b|\$`).MatchString(s)
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Evaluate runs the pattern cascade with the default SST rate.
// It returns a Result on success or a *apperr.Error (wrapping a *CalcError
// for the sub-kind) on failure.
func Evaluate(utterance string) (Result, error) {
	return EvaluateWithRate(utterance, DefaultSSTRate)
}

// EvaluateWithRate is Evaluate parameterised by the SST rate to apply when
// the utterance's SST pattern names no explicit rate; callers wire
// platform/config.SSTConfig's configured rate through here.
func EvaluateWithRate(utterance string, sstRate float64) (Result, error) {
	trimmed := strings.TrimSpace(utterance)
	isCurrency := mentionsCurrency(trimmed)

	// 1. Percentage discount.
	if m := reDiscount.FindStringSubmatch(trimmed); m != nil {
		pct, ok1 := parseFloat(m[1])
		amt, ok2 := parseFloat(m[2])
		if ok1 && ok2 {
			discount := (pct / 100) * amt
			final := amt - discount
			return Result{
				Value:                round2(final),
				NormalizedExpression: fmt.Sprintf("%s%% discount on %.2f", m[1], amt),
				IsCurrency:           true,
				Breakdown:            map[string]float64{"discount": round2(discount), "final_price": round2(final)},
			}, nil
		}
	}

	// 2. Multiplicative total: "total for N x M", "N units of M", "N items at M each".
	if m := reMultiplyX.FindStringSubmatch(trimmed); m != nil {
		if r, err := multiplyResult(m[1], m[2]); err == nil {
			return r, nil
		} else {
			return Result{}, err
		}
	}
	if m := reUnitsOf.FindStringSubmatch(trimmed); m != nil {
		if r, err := multiplyResult(m[1], m[2]); err == nil {
			return r, nil
		} else {
			return Result{}, err
		}
	}
	if m := reItemsAtEach.FindStringSubmatch(trimmed); m != nil {
		if r, err := multiplyResult(m[1], m[2]); err == nil {
			return r, nil
		} else {
			return Result{}, err
		}
	}

	// 3. Sum of currency amounts.
	if m := reSumAddUp.FindStringSubmatch(trimmed); m != nil {
		if r, err := sumResult(m[1]); err == nil {
			return r, nil
		}
	}
	if m := reSumSum.FindStringSubmatch(trimmed); m != nil {
		if r, err := sumResult(m[1]); err == nil {
			return r, nil
		}
	}

	// 4. SST/tax on an amount (default rate 6%).
	if m := reSSTExplicit.FindStringSubmatch(trimmed); m != nil {
		rate, ok1 := parseFloat(m[1])
		amt, ok2 := parseFloat(m[2])
		if ok1 && ok2 {
			return sstResult(rate, amt), nil
		}
	}
	if m := reSSTDefault.FindStringSubmatch(trimmed); m != nil {
		amt, ok := parseFloat(m[1])
		if ok {
			return sstResult(sstRate*100, amt), nil
		}
	}

	// 5. Percentage-of.
	if m := rePercentOf.FindStringSubmatch(trimmed); m != nil {
		pct, ok1 := parseFloat(m[1])
		amt, ok2 := parseFloat(m[2])
		if ok1 && ok2 {
			value := (pct / 100) * amt
			return Result{
				Value:                round2(value),
				NormalizedExpression: fmt.Sprintf("%s%% of %s", m[1], m[2]),
				IsCurrency:           isCurrency,
			}, nil
		}
	}

	// 6. Square root.
	if m := firstMatchIn(trimmed, reSqrtWord, reSqrtFn, reSqrtSymbol); m != nil {
		n, ok := parseFloat(m[1])
		if ok {
			if n < 0 {
				return Result{}, apperr.Calculation(string(ErrOutOfRange)).
					WithDetails(&CalcError{Kind: ErrOutOfRange, Message: "cannot take the square root of a negative number"})
			}
			return Result{
				Value:                round2(math.Sqrt(n)),
				NormalizedExpression: fmt.Sprintf("sqrt(%s)", m[1]),
			}, nil
		}
	}

	// 7. Power.
	if m := firstMatchIn(trimmed, rePowerWord, rePowerCaret, rePowerStars); m != nil {
		base, ok1 := parseFloat(m[1])
		exp, ok2 := parseFloat(m[2])
		if ok1 && ok2 {
			value := math.Pow(base, exp)
			if math.IsInf(value, 0) || math.IsNaN(value) {
				return Result{}, apperr.Calculation(string(ErrInvalidResult)).
					WithDetails(&CalcError{Kind: ErrInvalidResult, Message: "result is too large or undefined"})
			}
			return Result{
				Value:                round2(value),
				NormalizedExpression: fmt.Sprintf("%s^%s", m[1], m[2]),
			}, nil
		}
	}

	// Split and average phrasings, consulted after the numbered patterns.
	if m := reSplitAmong.FindStringSubmatch(trimmed); m != nil {
		amt, ok1 := parseFloat(m[1])
		n, ok2 := parseFloat(m[2])
		if ok1 && ok2 {
			if n == 0 {
				return Result{}, divisionByZeroErr()
			}
			return Result{
				Value:                round2(amt / n),
				NormalizedExpression: fmt.Sprintf("%s / %s", m[1], m[2]),
				IsCurrency:           true,
			}, nil
		}
	}
	if m := reAverageOf.FindStringSubmatch(trimmed); m != nil {
		if sum, err := sumResult(m[1]); err == nil {
			count := strings.Count(sum.NormalizedExpression, ",") + 1
			return Result{
				Value:                round2(sum.Value / float64(count)),
				NormalizedExpression: "average" + strings.TrimPrefix(sum.NormalizedExpression, "sum"),
				IsCurrency:           isCurrency,
			}, nil
		}
	}

	// Time arithmetic is checked before the pure-expression fallback, since
	// a clock phrase rarely survives the whitelist intact.
	if r, ok, err := evaluateTimeArithmetic(trimmed); ok {
		if err != nil {
			return Result{}, err
		}
		return r, nil
	}

	// 8. Pure arithmetic sub-expression. Only an utterance that carries an
	// operator counts as an expression attempt; anything operator-free falls
	// through to the NotACalculation outcome so the planner can re-route it,
	// while a malformed attempt (operator plus non-whitelisted characters)
	// is a hard InvalidExpression rather than silently stripped.
	normalized := strings.TrimSpace(normalizeSurface(trimmed))
	if normalized != "" && (reHasOperator.MatchString(normalized) || strings.Contains(normalized, "%")) {
		if !whitelisted.MatchString(normalized) {
			return Result{}, invalidExpressionErr()
		}
		value, err := evalArithmetic(normalized)
		if err != nil {
			return Result{}, err
		}
		return Result{
			Value:                round2(value),
			NormalizedExpression: strings.TrimSpace(normalized),
			IsCurrency:           isCurrency,
		}, nil
	}

	// Explicit rejection: catalogue nouns with no operator route back to
	// retrieval instead of failing as a malformed calculation.
	lower := strings.ToLower(trimmed)
	for _, noun := range domain.CatalogNouns() {
		if strings.Contains(lower, noun) && !reHasOperator.MatchString(trimmed) {
			return Result{}, apperr.NotACalculation(string(ErrNotACalculation)).
				WithDetails(&CalcError{Kind: ErrNotACalculation, Message: "no arithmetic operator found"})
		}
	}

	return Result{}, apperr.NotACalculation(string(ErrNotACalculation)).
		WithDetails(&CalcError{Kind: ErrNotACalculation, Message: "utterance does not denote arithmetic"})
}

// firstMatchIn returns the first pattern's match against s, or nil.
func firstMatchIn(s string, patterns ...*regexp.Regexp) []string {
	for _, p := range patterns {
		if m := p.FindStringSubmatch(s); m != nil {
			return m
		}
	}
	return nil
}

func multiplyResult(nStr, mStr string) (Result, error) {
	n, ok1 := parseFloat(nStr)
	m, ok2 := parseFloat(mStr)
	if !ok1 || !ok2 {
		return Result{}, invalidExpressionErr()
	}
	value := n * m
	return Result{
		Value:                round2(value),
		NormalizedExpression: fmt.Sprintf("%s x %s", nStr, mStr),
		IsCurrency:           true,
	}, nil
}

func sumResult(rest string) (Result, error) {
	amounts := reCurrencyAmt.FindAllStringSubmatch(rest, -1)
	var nums []string
	if len(amounts) > 0 {
		for _, a := range amounts {
			nums = append(nums, a[1])
		}
	} else {
		for _, part := range regexp.MustCompile(`[,&]|\band\b`).Split(rest, -1) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, ok := parseFloat(strings.TrimSpace(normalizeSurface(part))); ok {
				nums = append(nums, strings.TrimSpace(normalizeSurface(part)))
			}
		}
	}
	if len(nums) == 0 {
		return Result{}, invalidExpressionErr()
	}
	var total float64
	for _, n := range nums {
		v, ok := parseFloat(n)
		if !ok {
			return Result{}, invalidExpressionErr()
		}
		total += v
	}
	return Result{
		Value:                round2(total),
		NormalizedExpression: "sum(" + strings.Join(nums, ", ") + ")",
		IsCurrency:           true,
	}, nil
}

// DefaultSSTRate is the local sales-and-services tax rate applied when the
// utterance does not specify one explicitly. The engine may override this
// via platform/config.SSTConfig.
const DefaultSSTRate = 0.06

func sstResult(ratePercent, amount float64) Result {
	tax := (ratePercent / 100) * amount
	total := amount + tax
	return Result{
		Value:                round2(total),
		NormalizedExpression: fmt.Sprintf("%.0f%% SST on %.2f", ratePercent, amount),
		IsCurrency:           true,
		Breakdown:            map[string]float64{"tax": round2(tax), "total": round2(total)},
	}
}

func invalidExpressionErr() error {
	return apperr.Calculation(string(ErrInvalidExpression)).
		WithDetails(&CalcError{Kind: ErrInvalidExpression, Message: "expression uses characters outside the supported set"})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
