// Package dates resolves relative date expressions ("friday the 20th",
// "tomorrow", "next week") against a reference time. Resolution is a pure
// function: same text and reference always give the same answer.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Resolution is a resolved date plus the text span that produced it.
type Resolution struct {
	Date    string `json:"date"` // ISO-8601 (2006-01-02)
	Matched string `json:"matched_text"`
}

// How far ahead "friday the 20th" style expressions are searched.
const lookaheadDays = 60

var (
	weekdayNames = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

	weekdayTheDayRe = regexp.MustCompile(`(monday|tuesday|wednesday|thursday|friday|saturday|sunday) the (\d{1,2})(?:st|nd|rd|th)?`)
	theDayRe        = regexp.MustCompile(`the (\d{1,2})(?:st|nd|rd|th)?`)
)

// weekdayIndex maps to Monday=0..Sunday=6.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Resolve finds the first date expression in text and resolves it against
// now. Patterns are tried in a fixed order; a pattern that matches text but
// resolves to no valid calendar date falls through to the later patterns
// rather than aborting. Returns false when nothing resolves.
func Resolve(text string, now time.Time) (Resolution, bool) {
	lower := strings.ToLower(text)

	// "friday the 20th": scan forward for a date where weekday and day
	// number agree
	if m := weekdayTheDayRe.FindStringSubmatch(lower); m != nil {
		target := indexOf(weekdayNames, m[1])
		day, _ := strconv.Atoi(m[2])
		for i := 0; i < lookaheadDays; i++ {
			check := now.AddDate(0, 0, i)
			if check.Day() == day && weekdayIndex(check) == target {
				return Resolution{Date: check.Format("2006-01-02"), Matched: m[0]}, true
			}
		}
		// no such date in the window; fall through
	}

	// "the 20th": this month, or next month if the day already passed.
	// A day the target month does not have (the 31st in February) is a
	// silent no-match, not a clamped date.
	if m := theDayRe.FindStringSubmatch(lower); m != nil {
		day, _ := strconv.Atoi(m[1])
		if target, ok := dayInMonth(now.Year(), now.Month(), day); ok {
			if day < now.Day() {
				next, ok := dayInMonth(now.Year(), now.Month()+1, day)
				if ok {
					return Resolution{Date: next.Format("2006-01-02"), Matched: m[0]}, true
				}
			} else {
				return Resolution{Date: target.Format("2006-01-02"), Matched: m[0]}, true
			}
		}
	}

	// Bare weekday name: next occurrence, never today
	for i, name := range weekdayNames {
		if strings.Contains(lower, name) {
			ahead := i - weekdayIndex(now)
			if ahead <= 0 {
				ahead += 7
			}
			target := now.AddDate(0, 0, ahead)
			return Resolution{Date: target.Format("2006-01-02"), Matched: name}, true
		}
	}

	if strings.Contains(lower, "tomorrow") {
		return Resolution{Date: now.AddDate(0, 0, 1).Format("2006-01-02"), Matched: "tomorrow"}, true
	}

	if strings.Contains(lower, "next week") {
		return Resolution{Date: now.AddDate(0, 0, 7).Format("2006-01-02"), Matched: "next week"}, true
	}

	// "this week" means the coming Friday; on a Friday it means the next one
	if strings.Contains(lower, "this week") {
		ahead := (4 - weekdayIndex(now)) % 7
		if ahead < 0 {
			ahead += 7
		}
		if ahead == 0 {
			ahead = 7
		}
		return Resolution{Date: now.AddDate(0, 0, ahead).Format("2006-01-02"), Matched: "this week"}, true
	}

	return Resolution{}, false
}

// dayInMonth builds year/month/day and reports whether that day actually
// exists in the month. time.Date normalizes overflow (Feb 31 becomes Mar 2),
// which is exactly what is NOT wanted here.
func dayInMonth(year int, month time.Month, day int) (time.Time, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.Local)
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}
