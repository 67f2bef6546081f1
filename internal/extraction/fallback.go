package extraction

import (
	"regexp"
	"strings"
	"unicode"
)

// numberPattern captures the whole numeric token, separators included, so a
// value NormalizeAmount cannot read (12.345, 1.234,50) is rejected there
// rather than cut down to a plausible prefix.
const numberPattern = `(\d[\d,.]*\d|\d)`

const monthPattern = `(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?`

// textRule recovers a raw value from free text. The first capture group is the value.
type textRule struct {
	name string
	re   *regexp.Regexp
}

// Amount rules in priority order: currency-prefixed, "Total:", "Amount:".
var amountRules = []textRule{
	{name: "currency", re: regexp.MustCompile(`(?i)(?:₹|\brs\.?|\binr\b|\$|€|£)\s*` + numberPattern)},
	{name: "total", re: regexp.MustCompile(`(?i)\btotal\b\s*:?\s*(?:₹|rs\.?|inr|\$|€|£)?\s*` + numberPattern)},
	{name: "amount", re: regexp.MustCompile(`(?i)\bamount\b\s*:?\s*(?:₹|rs\.?|inr|\$|€|£)?\s*` + numberPattern)},
}

// Date rules: numeric forms before named-month forms.
var dateRules = []textRule{
	{name: "day_first", re: regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\b`)},
	{name: "iso", re: regexp.MustCompile(`\b(\d{4}[/-]\d{1,2}[/-]\d{1,2})\b`)},
	{name: "day_month_name", re: regexp.MustCompile(`(?i)\b(\d{1,2}[\s-]+` + monthPattern + `[\s-]+\d{2,4})\b`)},
	{name: "month_name_day", re: regexp.MustCompile(`(?i)\b(` + monthPattern + `\s+\d{1,2},?\s+\d{2,4})\b`)},
}

// merchantLineLimit is how many leading lines are considered merchant candidates.
const merchantLineLimit = 5

// fallbackExtractor recovers unresolved fields from the raw document text.
type fallbackExtractor struct {
	confidence float64
}

// Fill sets every unresolved amount, date and merchant field it can recover
// from text. Recovered fields carry the fallback confidence, not any entity
// confidence. Fields that stay unmatched remain nil.
func (x *fallbackExtractor) Fill(res *Resolution, text string) {
	for _, f := range requiredFields {
		if res.Field(f).Resolved() {
			continue
		}
		var value string
		var ok bool
		switch f {
		case FieldAmount:
			value, ok = firstMatch(amountRules, text)
		case FieldDate:
			value, ok = firstMatch(dateRules, text)
		case FieldMerchant:
			value, ok = merchantLine(text)
		}
		if !ok {
			continue
		}
		res.Fields[f] = CanonicalField{
			Name:       f,
			RawValue:   &value,
			Confidence: x.confidence,
			Source:     ValueSourceText,
		}
	}
}

// firstMatch returns the first match in document order of the first rule that matches.
func firstMatch(rules []textRule, text string) (string, bool) {
	for _, r := range rules {
		if m := r.re.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// merchantLine returns the first of the leading lines that is longer than
// three characters and has no digits. Address and phone lines are skipped.
func merchantLine(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	if len(lines) > merchantLineLimit {
		lines = lines[:merchantLineLimit]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len([]rune(line)) <= 3 {
			continue
		}
		if strings.IndexFunc(line, unicode.IsDigit) >= 0 {
			continue
		}
		return line, true
	}
	return "", false
}
