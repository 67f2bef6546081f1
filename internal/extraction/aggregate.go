package extraction

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExtractedReceipt is the pipeline's output for one document.
type ExtractedReceipt struct {
	Amount        *decimal.Decimal      `json:"amount"`
	Date          *time.Time            `json:"date"`
	Merchant      *string               `json:"merchant"`
	Category      string                `json:"category"`
	LineItems     []string              `json:"line_items"`
	Confidence    float64               `json:"confidence"`
	MissingFields []Field               `json:"missing_fields"`
	DateDefaulted bool                  `json:"date_defaulted"`
	FieldSources  map[Field]ValueSource `json:"field_sources"`
}

// IsValid reports whether the receipt can be saved as an expense: a positive
// amount and a merchant are both required.
func (r *ExtractedReceipt) IsValid() bool {
	return r.Amount != nil && r.Amount.IsPositive() && r.Merchant != nil
}

// contribution is one field value that made it into the receipt.
type contribution struct {
	field      Field
	confidence float64
	source     ValueSource
}

// aggregate computes the overall confidence, missing fields and provenance.
// Only fields that produced a value contribute; a defaulted date does not.
func aggregate(r *ExtractedReceipt, contributions []contribution) {
	r.FieldSources = make(map[Field]ValueSource, len(contributions))
	if len(contributions) > 0 {
		var sum float64
		for _, c := range contributions {
			sum += c.confidence
			r.FieldSources[c.field] = c.source
		}
		r.Confidence = sum / float64(len(contributions))
	}

	r.MissingFields = []Field{}
	if r.Amount == nil {
		r.MissingFields = append(r.MissingFields, FieldAmount)
	}
	if r.Date == nil || r.DateDefaulted {
		r.MissingFields = append(r.MissingFields, FieldDate)
	}
	if r.Merchant == nil {
		r.MissingFields = append(r.MissingFields, FieldMerchant)
	}
}
