package calculator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"zuscore/platform/apperr"
)

// Clock-time parsing: "8:30", "9am", "14:00", "9:15 pm".
var reClock = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)

// parseClock converts a clock-time token to minutes-since-midnight. ok is
// false if s does not look like a time at all.
func parseClock(s string) (minutes int, ok bool) {
	m := reClock.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil || hour > 23 {
		return 0, false
	}
	min := 0
	if m[2] != "" {
		min, err = strconv.Atoi(m[2])
		if err != nil || min > 59 {
			return 0, false
		}
	}
	ampm := strings.ToLower(m[3])
	switch ampm {
	case "am":
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour != 12 {
			hour += 12
		}
	default:
		// 24-hour input ("14:00") is left as-is; a bare hour with no
		// am/pm and no minutes (e.g. a stray "5" in the sentence) is
		// still accepted as a clock reference by callers that already
		// know they're looking at a time phrase.
	}
	return hour*60 + min, true
}

// renderClock formats minutes-since-midnight as "H:MM AM/PM".
func renderClock(minutes int) string {
	minutes = ((minutes % 1440) + 1440) % 1440
	hour := minutes / 60
	min := minutes % 60
	suffix := "AM"
	display := hour
	if hour == 0 {
		display = 12
	} else if hour == 12 {
		suffix = "PM"
	} else if hour > 12 {
		display = hour - 12
		suffix = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", display, min, suffix)
}

// renderDuration formats a minute count as "X hours Y minutes".
func renderDuration(totalMinutes int) string {
	if totalMinutes < 0 {
		totalMinutes = -totalMinutes
	}
	hours := totalMinutes / 60
	mins := totalMinutes % 60
	switch {
	case hours > 0 && mins > 0:
		return fmt.Sprintf("%d hour%s %d minute%s", hours, plural(hours), mins, plural(mins))
	case hours > 0:
		return fmt.Sprintf("%d hour%s", hours, plural(hours))
	default:
		return fmt.Sprintf("%d minute%s", mins, plural(mins))
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

var (
	reDurationBetween = regexp.MustCompile(`(?i)how\s*(?:long|much\s*time)\s*(?:is\s*it\s*)?(?:from|between)\s*(.+?)\s*(?:to|and)\s*(.+)`)
	reMinutesAfter    = regexp.MustCompile(`(?i)(\d+)\s*minutes?\s*after\s*(.+)`)
	reMinutesBefore   = regexp.MustCompile(`(?i)(\d+)\s*minutes?\s*before\s*(.+)`)
	rePlusMinutes     = regexp.MustCompile(`(?i)(.+?)\s*plus\s*(\d+)\s*minutes?`)
	reWaitQuestion    = regexp.MustCompile(`(?i)\bwait\b|\bclose[sd]?\b|\bopen[s]?\b|\barriv`)
)

// evaluateTimeArithmetic recognises clock-time questions. The first return
// value carries the result, the second reports whether a time pattern
// matched at all (so the caller can fall through to the generic arithmetic
// cascade when it did not), and the third is a non-nil error when the
// utterance reads as a time question with a clock token but none of the
// duration/minutes-after/minutes-before/plus-minutes forms produced a result.
func evaluateTimeArithmetic(utterance string) (Result, bool, error) {
	lower := strings.ToLower(utterance)
	looksLikeTimeQuestion := reWaitQuestion.MatchString(utterance) ||
		strings.Contains(lower, "what time") || strings.Contains(lower, "how long")
	if !looksLikeTimeQuestion || !reClock.MatchString(utterance) {
		return Result{}, false, nil
	}

	if m := reDurationBetween.FindStringSubmatch(utterance); m != nil {
		from, ok1 := parseClock(m[1])
		to, ok2 := parseClock(m[2])
		if ok1 && ok2 {
			delta := ((to-from)%1440 + 1440) % 1440
			return Result{
				IsTime: true,
				Text:   "You need to wait " + renderDuration(delta) + ".",
			}, true, nil
		}
	}

	if m := reMinutesAfter.FindStringSubmatch(utterance); m != nil {
		n, ok1 := strconvAtoi(m[1])
		base, ok2 := parseClock(m[2])
		if ok1 && ok2 {
			return Result{
				IsTime: true,
				Text:   "The time will be " + renderClock(base+n) + ".",
			}, true, nil
		}
	}

	if m := reMinutesBefore.FindStringSubmatch(utterance); m != nil {
		n, ok1 := strconvAtoi(m[1])
		base, ok2 := parseClock(m[2])
		if ok1 && ok2 {
			return Result{
				IsTime: true,
				Text:   "The time will be " + renderClock(base-n) + ".",
			}, true, nil
		}
	}

	if m := rePlusMinutes.FindStringSubmatch(utterance); m != nil {
		base, ok1 := parseClock(m[1])
		n, ok2 := strconvAtoi(m[2])
		if ok1 && ok2 {
			return Result{
				IsTime: true,
				Text:   "The time will be " + renderClock(base+n) + ".",
			}, true, nil
		}
	}

	// A time question with a clock token matched none of the forms above:
	// this is a time question the cascade can't answer, not a fallthrough
	// to generic arithmetic.
	return Result{}, true, apperr.Calculation(string(ErrInvalidExpression)).
		WithDetails(&CalcError{Kind: ErrInvalidExpression, Message: "could not parse a clock time from the question"})
}

func strconvAtoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
