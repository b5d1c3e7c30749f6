package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// German month abbreviations as printed in the timetable header
var germanMonths = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mär": time.March,
	"mar": time.March,
	"apr": time.April,
	"mai": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"okt": time.October,
	"nov": time.November,
	"dez": time.December,
}

var (
	clockRe   = regexp.MustCompile(`^(\d{1,2})[.:](\d{2})$`)
	dayNameRe = regexp.MustCompile(`(?i)^(Mo|Di|Mi|Do|Fr|Sa|So)\.?,?\s+`)
)

// CleanCell normalizes a raw table cell: PDF artifacts like non-breaking
// spaces and typographic hyphens are replaced, and wrapped lines collapse
// into a single whitespace-separated string
func CleanCell(text string) string {
	text = strings.ReplaceAll(text, " ", " ")
	text = strings.ReplaceAll(text, "‐", "-")
	return strings.Join(strings.Fields(text), " ")
}

// ParseTimeRange parses a free-text time range like "09:00-10:30" or
// "09.00 - 10.30 Uhr" into start and end clock times on the given date
func ParseTimeRange(text string, date time.Time) (time.Time, time.Time, error) {
	cleaned := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "Uhr"))
	parts := strings.SplitN(cleaned, "-", 2)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("time range %q has no start-end separator", text)
	}

	start, err := clockOn(date, strings.TrimSpace(parts[0]))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start of range %q: %w", text, err)
	}
	end, err := clockOn(date, strings.TrimSpace(parts[1]))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end of range %q: %w", text, err)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("time range %q ends before it starts", text)
	}
	return start, end, nil
}

func clockOn(date time.Time, text string) (time.Time, error) {
	m := clockRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, fmt.Errorf("unparseable clock time %q", text)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return time.Time{}, fmt.Errorf("clock time %q out of range", text)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location()), nil
}

// ParseDate resolves a date cell into midnight in loc. Handles the layouts
// the PDF actually prints: "14. Okt" (German month, year supplied from the
// version stamp), an optional weekday prefix like "Mo, 14. Okt", and fully
// numeric "14.10.2024".
func ParseDate(text string, year int, loc *time.Location) (time.Time, error) {
	cleaned := dayNameRe.ReplaceAllString(CleanCell(text), "")

	if t, err := time.ParseInLocation(DATE_LAYOUT, cleaned, loc); err == nil {
		return t, nil
	}

	parts := strings.Fields(strings.TrimSuffix(cleaned, "."))
	if len(parts) >= 2 {
		dayText := strings.TrimSuffix(parts[0], ".")
		day, err := strconv.Atoi(dayText)
		if err == nil {
			if month, ok := germanMonths[strings.ToLower(parts[1])]; ok {
				y := year
				if len(parts) >= 3 {
					if parsed, err := strconv.Atoi(parts[2]); err == nil {
						y = parsed
					}
				}
				if y == 0 {
					return time.Time{}, fmt.Errorf("date %q has no year and none was supplied", text)
				}
				parsed := time.Date(y, month, day, 0, 0, 0, 0, loc)
				// time.Date normalizes overflow, so "32. Okt" would roll
				// into November without this check
				if parsed.Day() != day || parsed.Month() != month {
					return time.Time{}, fmt.Errorf("impossible date %q", text)
				}
				return parsed, nil
			}
		}
	}

	return time.Time{}, fmt.Errorf("unparseable date %q", text)
}

// ContainsKeyword reports whether any cell of the row carries the keyword,
// matched as a case-insensitive substring
func ContainsKeyword(cells []string, keyword string) bool {
	needle := strings.ToLower(keyword)
	for _, cell := range cells {
		if strings.Contains(strings.ToLower(cell), needle) {
			return true
		}
	}
	return false
}
