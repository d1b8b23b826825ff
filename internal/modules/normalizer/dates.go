package normalizer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

var (
	isoDateRe   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	slashDateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	monthYearRe = regexp.MustCompile(`\b(enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|octubre|noviembre|diciembre)\b(?:\s+(?:de\s+)?(\d{4}))?`)
)

var spanishMonths = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

// genericLayouts are attempted after the two precise formats, in order.
var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"02-01-2006",
	"2 January 2006",
	"January 2, 2006",
}

// ParseDate normalizes a raw date representation to YYYY-MM-DD.
//
// The fallback chain is ordered policy: exact ISO, then DD/MM/YYYY,
// then generic layouts, then a free-text scan (ISO date, DD/MM/YYYY,
// Spanish month name with optional year), then today's UTC date.
func ParseDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return todayUTC()
	}

	if t, err := time.Parse(isoDate, raw); err == nil {
		return t.Format(isoDate)
	}

	if t, err := time.Parse("02/01/2006", raw); err == nil {
		return t.Format(isoDate)
	}

	for _, layout := range genericLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(isoDate)
		}
	}

	if date, ok := ScanTextForDate(raw); ok {
		return date
	}

	return todayUTC()
}

// ScanTextForDate searches free text for a recognizable date. An ISO
// date wins over DD/MM/YYYY, which wins over a Spanish month name.
// A bare month name defaults to the 1st, current year.
func ScanTextForDate(text string) (string, bool) {
	if m := isoDateRe.FindStringSubmatch(text); m != nil {
		candidate := fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3])
		if t, err := time.Parse(isoDate, candidate); err == nil {
			return t.Format(isoDate), true
		}
	}

	if m := slashDateRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if t, ok := buildDate(year, time.Month(month), day); ok {
			return t, true
		}
	}

	lowered := strings.ToLower(StripDiacritics(text))
	if m := monthYearRe.FindStringSubmatch(lowered); m != nil {
		month := spanishMonths[m[1]]
		year := time.Now().UTC().Year()
		if m[2] != "" {
			year, _ = strconv.Atoi(m[2])
		}
		if t, ok := buildDate(year, month, 1); ok {
			return t, true
		}
	}

	return "", false
}

// ParseImportDate parses dates from tabular imports. In addition to
// every textual format ParseDate accepts, it handles spreadsheet
// serial-day numbers (epoch 1899-12-30).
func ParseImportDate(raw interface{}) (string, bool) {
	switch v := raw.(type) {
	case float64:
		return serialToDate(v)
	case int:
		return serialToDate(float64(v))
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return "", false
		}
		if serial, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return serialToDate(serial)
		}
		if t, err := time.Parse(isoDate, trimmed); err == nil {
			return t.Format(isoDate), true
		}
		if t, err := time.Parse("02/01/2006", trimmed); err == nil {
			return t.Format(isoDate), true
		}
		for _, layout := range genericLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return t.Format(isoDate), true
			}
		}
		return ScanTextForDate(trimmed)
	default:
		return "", false
	}
}

// serialToDate converts a spreadsheet serial-day number. Day 1 is
// 1899-12-31; plausible ledger dates only (1950-2100).
func serialToDate(serial float64) (string, bool) {
	if serial < 18264 || serial > 73415 { // 1950-01-01 .. 2100-12-31
		return "", false
	}
	epoch := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	t := epoch.AddDate(0, 0, int(serial))
	return t.Format(isoDate), true
}

func buildDate(year int, month time.Month, day int) (string, bool) {
	if year < 1950 || year > 2100 || month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// Reject overflowed dates like 40/13/2024
	if t.Day() != day || t.Month() != month {
		return "", false
	}
	return t.Format(isoDate), true
}

func todayUTC() string {
	return time.Now().UTC().Format(isoDate)
}
