package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// monthAbbrev maps the three-letter month codes used by the bilateral
// trade file's wide columns (IJAN..IDEC, EJAN..EDEC).
var monthAbbrev = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// MonthKey truncates t to the first day of its month in UTC. All joins and
// rolling windows operate at this granularity; no finer resolution is
// modeled.
func MonthKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Month builds a month-start key directly from a year and month.
func Month(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths returns the month key n months after m.
func AddMonths(m time.Time, n int) time.Time {
	return m.AddDate(0, n, 0)
}

// parsePeriodColumn parses an IMF-style "YYYY-Mnn" period header.
func parsePeriodColumn(s string) (time.Time, bool) {
	parts := strings.SplitN(strings.TrimSpace(s), "-M", 2)
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false
	}
	mon, err := strconv.Atoi(parts[1])
	if err != nil || mon < 1 || mon > 12 {
		return time.Time{}, false
	}
	return Month(year, time.Month(mon)), true
}

// parseYearColumn parses the manufacturing file's period formats:
// "2025 M01" (monthly), "2025 Q1" (quarterly, first month of quarter) and
// "2025" (annual, January).
func parseYearColumn(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, ok := parseSpacedMonth(s); ok {
		return t, true
	}
	if len(s) == 7 && s[4] == ' ' && s[5] == 'Q' {
		year, err := strconv.Atoi(s[:4])
		if err != nil {
			return time.Time{}, false
		}
		q := int(s[6] - '0')
		if q < 1 || q > 4 {
			return time.Time{}, false
		}
		return Month(year, time.Month((q-1)*3+1)), true
	}
	if len(s) == 4 {
		year, err := strconv.Atoi(s)
		if err != nil {
			return time.Time{}, false
		}
		return Month(year, time.January), true
	}
	return time.Time{}, false
}

func parseSpacedMonth(s string) (time.Time, bool) {
	if len(s) != 8 || s[4] != ' ' || s[5] != 'M' {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil {
		return time.Time{}, false
	}
	mon, err := strconv.Atoi(s[6:])
	if err != nil || mon < 1 || mon > 12 {
		return time.Time{}, false
	}
	return Month(year, time.Month(mon)), true
}

// parseDayDate parses "31-Jan-1998" style dates used by the GSCPI export.
func parseDayDate(s string) (time.Time, error) {
	for _, layout := range []string{"2-Jan-2006", "02-Jan-2006"} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseUSDate parses "MM/DD/YYYY" dates used by the tariff tracker.
// "TBD" and empty cells return a zero time without error.
func parseUSDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(strings.ToUpper(s), "TBD") {
		return time.Time{}, nil
	}
	for _, layout := range []string{"1/2/2006", "01/02/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
