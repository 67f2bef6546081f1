package extraction

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// currencyCodes are stripped from either end of an amount, longest first.
var currencyCodes = []string{"rs.", "inr", "usd", "eur", "gbp", "rs"}

// maxAmount is the first value that no longer fits NUMERIC(14,2).
var maxAmount = decimal.New(1, 12)

// NormalizeAmount parses a raw amount string. Currency symbols and codes,
// thousands separators and whitespace are removed before parsing. Anything
// that is not a positive decimal with at most two significant fraction
// digits below maxAmount yields nil; such values are never rounded.
func NormalizeAmount(raw string) *decimal.Decimal {
	s := strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Sc, r) || unicode.IsSpace(r) || r == ',' {
			return -1
		}
		return r
	}, raw)
	s = strings.TrimSuffix(s, "/-")
	s = trimCurrencyCodes(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() || !d.Equal(d.Round(2)) || d.GreaterThanOrEqual(maxAmount) {
		return nil
	}
	return &d
}

func trimCurrencyCodes(s string) string {
	lower := strings.ToLower(s)
	for _, code := range currencyCodes {
		if strings.HasPrefix(lower, code) {
			s, lower = s[len(code):], lower[len(code):]
			break
		}
	}
	for _, code := range currencyCodes {
		if strings.HasSuffix(lower, code) {
			s = s[:len(s)-len(code)]
			break
		}
	}
	return s
}

// NormalizeDate parses raw with the first matching layout and returns the
// calendar date at UTC midnight. ok is false when no layout matches.
func NormalizeDate(raw string, layouts []string) (time.Time, bool) {
	s := strings.Join(strings.Fields(raw), " ")
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return calendarDate(t), true
		}
	}
	return time.Time{}, false
}

// NormalizeMerchant trims whitespace. A blank merchant is absent.
func NormalizeMerchant(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return &s
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
