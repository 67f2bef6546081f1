package extraction

import (
	"fmt"
	"strings"
)

// Field is one of the canonical receipt attributes the pipeline populates.
type Field string

const (
	FieldAmount    Field = "amount"
	FieldDate      Field = "date"
	FieldMerchant  Field = "merchant"
	FieldCategory  Field = "category"
	FieldLineItems Field = "line_items"
)

// scalarFields are resolved first-match-wins, in this order when reporting.
var scalarFields = []Field{FieldAmount, FieldDate, FieldMerchant, FieldCategory}

// requiredFields are reported in ExtractedReceipt.MissingFields when no stage recovers them.
var requiredFields = []Field{FieldAmount, FieldDate, FieldMerchant}

// Defaults used by DefaultRules.
const (
	DefaultMinConfidence      = 0.7
	DefaultFallbackConfidence = 0.5
	DefaultCategoryName       = "General"
)

// CategoryRule maps a category to the merchant keywords that select it.
type CategoryRule struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// Rules is the complete configuration of a pipeline. It is an explicit value:
// two pipelines built from different Rules never influence each other.
type Rules struct {
	// Aliases maps each canonical field to the entity type labels that may
	// resolve it. Labels are matched case-insensitively after trimming.
	Aliases map[Field][]string `json:"aliases"`

	// MinConfidence is the eligibility threshold for structured resolution.
	// Thresholds overrides it per field.
	MinConfidence float64           `json:"min_confidence"`
	Thresholds    map[Field]float64 `json:"thresholds,omitempty"`

	// FallbackConfidence is assigned to every field recovered from raw text.
	FallbackConfidence float64 `json:"fallback_confidence"`

	// DateLayouts are Go time layouts tried in order when normalizing dates.
	DateLayouts []string `json:"date_layouts"`

	// DateFallbackToday substitutes today's date when no date can be parsed.
	DateFallbackToday bool `json:"date_fallback_today"`

	// Categories is evaluated in declaration order; the first rule with a
	// keyword contained in the merchant name wins. A merchant containing both
	// "mart" and "cafe" is therefore Food, because Food is declared first.
	Categories      []CategoryRule `json:"categories"`
	DefaultCategory string         `json:"default_category"`
}

// DefaultRules returns a fresh copy of the built-in configuration.
//
// Alias table. Extraction services name the same concept differently; every
// label observed from Document AI's receipt and invoice processors and from the
// Gemini extraction prompt is listed here:
//
//	amount     total_amount, amount, net_amount, total, invoice_total, amount_due,
//	           grand_total, total_price, amount_paid
//	date       receipt_date, date, invoice_date, purchase_date, transaction_date
//	merchant   supplier_name, merchant_name, vendor_name, store_name, merchant, supplier
//	category   category, expense_category, purchase_category
//	line_items line_item, item, line_items
//
// Category keywords are matched as substrings, so short brand names are
// spelled out ("ola cabs", "bus ticket") to keep them out of unrelated words
// such as "Coca-Cola" or "Business".
func DefaultRules() Rules {
	return Rules{
		Aliases: map[Field][]string{
			FieldAmount: {
				"total_amount", "amount", "net_amount", "total", "invoice_total",
				"amount_due", "grand_total", "total_price", "amount_paid",
			},
			FieldDate: {
				"receipt_date", "date", "invoice_date", "purchase_date", "transaction_date",
			},
			FieldMerchant: {
				"supplier_name", "merchant_name", "vendor_name", "store_name", "merchant", "supplier",
			},
			FieldCategory:  {"category", "expense_category", "purchase_category"},
			FieldLineItems: {"line_item", "item", "line_items"},
		},
		MinConfidence:      DefaultMinConfidence,
		FallbackConfidence: DefaultFallbackConfidence,
		DateLayouts: []string{
			"2006-01-02",
			"2/1/2006",
			"2-1-2006",
			"2.1.2006",
			"2/1/06",
			"2-1-06",
			"2006/1/2",
			"2006-1-2",
			"2 Jan 2006",
			"2 January 2006",
			"2-Jan-2006",
			"Jan 2 2006",
			"January 2 2006",
			"Jan 2, 2006",
			"January 2, 2006",
			"2006-01-02T15:04:05Z07:00",
		},
		DateFallbackToday: true,
		Categories: []CategoryRule{
			{Name: "Food", Keywords: []string{"restaurant", "cafe", "food", "pizza", "burger", "kitchen", "dining", "swiggy", "zomato", "coffee", "bakery"}},
			{Name: "Transport", Keywords: []string{"uber", "ola cabs", "olacabs", "taxi", "metro", "redbus", "bus ticket", "bus stand", "transport", "fuel", "petrol"}},
			{Name: "Groceries", Keywords: []string{"supermarket", "grocery", "mart", "store", "reliance", "dmart", "bigbasket"}},
			{Name: "Entertainment", Keywords: []string{"cinema", "movie", "pvr", "inox", "game", "entertainment"}},
			{Name: "Shopping", Keywords: []string{"shop", "mall", "amazon", "flipkart", "myntra", "fashion"}},
			{Name: "Health", Keywords: []string{"pharmacy", "medical", "hospital", "clinic", "doctor", "apollo"}},
			{Name: "Education", Keywords: []string{"book", "stationery", "college", "university", "course"}},
		},
		DefaultCategory: DefaultCategoryName,
	}
}

// Threshold returns the eligibility threshold for f.
func (r *Rules) Threshold(f Field) float64 {
	if t, ok := r.Thresholds[f]; ok {
		return t
	}
	return r.MinConfidence
}

// Validate reports configuration that would make the pipeline misbehave.
func (r *Rules) Validate() error {
	if r.MinConfidence < 0 || r.MinConfidence > 1 {
		return fmt.Errorf("%w: min_confidence %v outside [0,1]", ErrInvalidRules, r.MinConfidence)
	}
	for f, t := range r.Thresholds {
		if !knownField(f) {
			return fmt.Errorf("%w: threshold for unknown field %q", ErrInvalidRules, f)
		}
		if t < 0 || t > 1 {
			return fmt.Errorf("%w: threshold for %s %v outside [0,1]", ErrInvalidRules, f, t)
		}
	}
	if r.FallbackConfidence < 0 || r.FallbackConfidence > 1 {
		return fmt.Errorf("%w: fallback_confidence %v outside [0,1]", ErrInvalidRules, r.FallbackConfidence)
	}
	if len(r.DateLayouts) == 0 {
		return fmt.Errorf("%w: date_layouts is empty", ErrInvalidRules)
	}
	if strings.TrimSpace(r.DefaultCategory) == "" {
		return fmt.Errorf("%w: default_category is empty", ErrInvalidRules)
	}
	for i, c := range r.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%w: category %d has no name", ErrInvalidRules, i)
		}
	}

	seen := make(map[string]Field)
	for f, labels := range r.Aliases {
		if !knownField(f) {
			return fmt.Errorf("%w: aliases for unknown field %q", ErrInvalidRules, f)
		}
		for _, l := range labels {
			key := normalizeKind(l)
			if key == "" {
				return fmt.Errorf("%w: empty alias for %s", ErrInvalidRules, f)
			}
			if other, dup := seen[key]; dup && other != f {
				return fmt.Errorf("%w: alias %q maps to both %s and %s", ErrInvalidRules, l, other, f)
			}
			seen[key] = f
		}
	}
	return nil
}

// aliasIndex builds the label → field lookup used by the resolver.
func (r *Rules) aliasIndex() map[string]Field {
	idx := make(map[string]Field)
	for f, labels := range r.Aliases {
		for _, l := range labels {
			idx[normalizeKind(l)] = f
		}
	}
	return idx
}

func knownField(f Field) bool {
	switch f {
	case FieldAmount, FieldDate, FieldMerchant, FieldCategory, FieldLineItems:
		return true
	}
	return false
}

func normalizeKind(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}
