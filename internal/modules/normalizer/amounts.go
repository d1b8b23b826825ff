package normalizer

import (
	"math"
	"strconv"
	"strings"
)

// ParseSignedAmount parses a locale-ambiguous monetary value. Raw may
// be a number or free text ("$ 1.234,56", "1,234.56", "-50").
//
// When both separators are present the rightmost one is the decimal
// point and the other a thousands separator. A lone comma is a decimal
// comma. Zero is rejected: zero-value rows are noise in extracted
// statements, not amounts.
func ParseSignedAmount(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return checkAmount(v)
	case float32:
		return checkAmount(float64(v))
	case int:
		return checkAmount(float64(v))
	case int64:
		return checkAmount(float64(v))
	case string:
		return parseAmountText(v)
	case nil:
		return 0, false
	default:
		return 0, false
	}
}

func parseAmountText(raw string) (float64, bool) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// "1.234,56" -> comma is decimal
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			// "1,234.56" -> dot is decimal
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		// "1234,56" -> decimal comma
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return checkAmount(value)
}

func checkAmount(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v == 0 {
		return 0, false
	}
	return v, true
}

// Round2 rounds a monetary value to 2 decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
