package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Normalizers convert raw extracted text into typed values. They are pure
// and total: malformed input yields (zero, false), never an error that could
// abort a pipeline run.

var asinPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/dp/([A-Z0-9]{10})(?:[/?]|$)`),
	regexp.MustCompile(`/product/([A-Z0-9]{10})(?:[/?]|$)`),
	regexp.MustCompile(`/deal/([A-Z0-9]{10})(?:[/?]|$)`),
	regexp.MustCompile(`/([A-Z0-9]{10})(?:[/?]|$)`),
}

// ASIN extracts the canonical 10-character product identifier from any of
// the URL shapes the retailer uses. Patterns are tried in order; the bare
// trailing-segment pattern comes last because it is the least specific.
func ASIN(url string) (string, bool) {
	for _, pattern := range asinPatterns {
		if m := pattern.FindStringSubmatch(url); len(m) > 1 {
			return m[1], true
		}
	}
	return "", false
}

var (
	priceStripRe  = regexp.MustCompile(`[^\d.,]`)
	ratingRe      = regexp.MustCompile(`\d+(?:\.\d+)?`)
	digitsStripRe = regexp.MustCompile(`\D`)
)

// Price normalizes a raw price string into a fixed "$N.NN" form. When both
// separators appear the comma is a thousands separator; a lone comma is a
// decimal point ("12,99" -> "$12.99").
func Price(raw string) (string, bool) {
	cleaned := priceStripRe.ReplaceAllString(raw, "")
	if cleaned == "" {
		return "", false
	}

	switch {
	case strings.Contains(cleaned, ",") && strings.Contains(cleaned, "."):
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case strings.Contains(cleaned, ","):
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("$%.2f", value), true
}

// Rating extracts the leading number from free text such as
// "4.5 out of 5 stars".
func Rating(raw string) (float64, bool) {
	m := ratingRe.FindString(raw)
	if m == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// ReviewCount parses a count like "1,234 ratings" by keeping digits only.
func ReviewCount(raw string) (int, bool) {
	cleaned := digitsStripRe.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0, false
	}
	value, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, false
	}
	return value, true
}
