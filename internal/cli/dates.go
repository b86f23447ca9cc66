package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the date_of_birth format sent to the API.
const DateLayout = "2006-01-02"

// Matches: "30y ago", "18y ago"
var yearsAgoRegex = regexp.MustCompile(`^(\d+)\s*y(?:ears?)?\s*ago$`)

var dateLayouts = []string{
	DateLayout,
	"02/01/2006",
	"2/1/2006",
	"02 January 2006",
	"2 January 2006",
	"02 Jan 2006",
	"January 2, 2006",
}

// Two-digit-year layouts, as entered on the mobile form ("DD/MM/YY").
var shortYearLayouts = []string{
	"02/01/06",
	"2/1/06",
}

// ParseDate parses a calendar date in any accepted layout.
// Supports: "2006-01-02", "DD/MM/YYYY", "DD/MM/YY", "02 January 2006",
// RFC3339 timestamps, "today", "yesterday", and "Ny ago".
func ParseDate(s string, now time.Time) (time.Time, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	input := strings.ToLower(raw)

	switch input {
	case "today":
		return startOfDay(now), nil
	case "yesterday":
		return startOfDay(now).AddDate(0, 0, -1), nil
	}

	if matches := yearsAgoRegex.FindStringSubmatch(input); len(matches) == 2 {
		value, err := strconv.Atoi(matches[1])
		if err != nil || value < 1 {
			return time.Time{}, fmt.Errorf("invalid relative date %q", raw)
		}
		return startOfDay(now).AddDate(-value, 0, 0), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, now.Location()); err == nil {
			return startOfDay(t), nil
		}
	}

	for _, layout := range shortYearLayouts {
		if t, err := time.ParseInLocation(layout, raw, now.Location()); err == nil {
			// Two-digit years resolve into the past.
			if t.After(now) {
				t = t.AddDate(-100, 0, 0)
			}
			return startOfDay(t), nil
		}
	}

	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return startOfDay(t.In(now.Location())), nil
	}

	return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD or DD/MM/YYYY)", raw)
}

// ParseBirthDate parses s with ParseDate and rejects dates after now.
// The result is formatted with DateLayout.
func ParseBirthDate(s string, now time.Time) (string, error) {
	t, err := ParseDate(s, now)
	if err != nil {
		return "", err
	}
	if t.After(now) {
		return "", fmt.Errorf("date of birth %s is in the future", t.Format(DateLayout))
	}
	return t.Format(DateLayout), nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
