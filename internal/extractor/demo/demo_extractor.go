// Package demo provides an offline extraction provider for local development
// and demos. It never calls a network service.
package demo

import (
	"context"
	"fmt"
	"hash/fnv"

	"pocketpilot/internal/config"
	"pocketpilot/internal/extraction"
	"pocketpilot/internal/port"
)

const providerName = "demo"

var merchants = []struct {
	name     string
	category string
}{
	{"Amazon", "Shopping"},
	{"Starbucks Coffee", "Food"},
	{"Walmart Supermarket", "Groceries"},
	{"Zomato", "Food"},
	{"Uber", "Transport"},
}

// Extractor fabricates a plausible receipt from a hash of the file bytes, so
// the same upload always yields the same entities.
type Extractor struct {
	receiptDate string
}

// NewExtractor creates the demo extractor. The config is accepted for factory
// symmetry and ignored.
func NewExtractor(_ *config.ExtractorProviderConfig) *Extractor {
	return &Extractor{receiptDate: "2025-01-05"}
}

func (x *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h := fnv.New64a()
	_, _ = h.Write(input.FileBytes)
	sum := h.Sum64()

	m := merchants[sum%uint64(len(merchants))]
	// 10.00 to 149.99
	cents := 1000 + sum%14000
	amount := fmt.Sprintf("$%d.%02d", cents/100, cents%100)

	src := &extraction.Source{
		Entities: []extraction.SourceEntity{
			{Type: "supplier_name", MentionText: m.name, Confidence: 0.9},
			{Type: "receipt_date", MentionText: x.receiptDate, Confidence: 0.9},
			{Type: "total_amount", MentionText: amount, Confidence: 0.9},
			{Type: "category", MentionText: m.category, Confidence: 0.9},
		},
		Text: fmt.Sprintf("%s\nDate: %s\nTotal: %s\nDemo receipt text", m.name, x.receiptDate, amount),
	}
	return &port.ExtractOutput{Source: src, Provider: providerName}, nil
}
