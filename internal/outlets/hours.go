package outlets

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"zuscore/internal/domain"
)

// reHoursRange matches the canonical "HH:MM - HH:MM" hours format. When an
// outlet's DayHours.Raw doesn't match, TimeQueryAnswer falls back to the
// raw string verbatim rather than fabricating a time.
var reHoursRange = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*-\s*(\d{1,2}):(\d{2})`)

// TimeQueryAnswer extracts the opening or closing clock time (or full
// hours) for today from an outlet's hours table, per the requested
// TimeQuery. today is the weekday key used to look up o.Hours, lowercase
// (e.g. "monday").
func TimeQueryAnswer(o domain.Outlet, query domain.TimeQuery, today string) string {
	dh, ok := o.Hours[strings.ToLower(today)]
	if !ok {
		return fmt.Sprintf("%s's hours for %s are not available.", o.Name, today)
	}

	switch query {
	case domain.TimeQueryOpening:
		if dh.OpenMin != nil {
			return fmt.Sprintf("%s opens at %s.", o.Name, renderClock(*dh.OpenMin))
		}
	case domain.TimeQueryClosing:
		if dh.CloseMin != nil {
			return fmt.Sprintf("%s closes at %s.", o.Name, renderClock(*dh.CloseMin))
		}
	}
	if dh.Raw == "" {
		return fmt.Sprintf("%s's hours for %s are not available.", o.Name, today)
	}
	return fmt.Sprintf("%s's hours for %s: %s.", o.Name, today, dh.Raw)
}

// ParseHours parses a raw "HH:MM - HH:MM" string into a DayHours, keeping
// Raw populated unconditionally and OpenMin/CloseMin populated only when
// parsing succeeds.
func ParseHours(raw string) domain.DayHours {
	dh := domain.DayHours{Raw: raw}
	m := reHoursRange.FindStringSubmatch(raw)
	if m == nil {
		return dh
	}
	openMin, ok1 := clockToMinutes(m[1], m[2])
	closeMin, ok2 := clockToMinutes(m[3], m[4])
	if ok1 {
		dh.OpenMin = &openMin
	}
	if ok2 {
		dh.CloseMin = &closeMin
	}
	return dh
}

func clockToMinutes(hStr, mStr string) (int, bool) {
	h, err1 := strconv.Atoi(hStr)
	m, err2 := strconv.Atoi(mStr)
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func renderClock(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	suffix := "AM"
	display := h
	if h == 0 {
		display = 12
	} else if h == 12 {
		suffix = "PM"
	} else if h > 12 {
		display = h - 12
		suffix = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", display, m, suffix)
}

// Today returns the lowercase weekday name for the given time, the key
// convention DayHours maps use.
func Today(now time.Time) string {
	return strings.ToLower(now.Weekday().String())
}
