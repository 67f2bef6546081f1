package extraction

import (
	"fmt"
	"time"
)

// Pipeline turns extraction service output into an ExtractedReceipt.
// A Pipeline holds no mutable state and is safe for concurrent use.
type Pipeline struct {
	rules       Rules
	resolver    *resolver
	fallback    *fallbackExtractor
	categorizer *Categorizer
	now         func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock sets the clock used when a receipt date falls back to today.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPipeline validates rules and builds a pipeline from them.
func NewPipeline(rules Rules, opts ...Option) (*Pipeline, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{
		rules:       cloneRules(rules),
		fallback:    &fallbackExtractor{confidence: rules.FallbackConfidence},
		categorizer: NewCategorizer(rules),
		now:         time.Now,
	}
	p.resolver = newResolver(&p.rules)
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Rules returns a copy of the pipeline configuration.
func (p *Pipeline) Rules() Rules { return cloneRules(p.rules) }

// Categorizer returns the categorizer built from the pipeline's category table.
func (p *Pipeline) Categorizer() *Categorizer { return p.categorizer }

// Run executes every stage for one document. Missing or unparseable fields
// are reported on the receipt; the only error is ErrMalformedExtractionResult.
func (p *Pipeline) Run(src *Source) (*ExtractedReceipt, error) {
	entities, err := Collect(src)
	if err != nil {
		return nil, fmt.Errorf("pipeline.Run: %w", err)
	}

	res := p.resolver.Resolve(entities)
	p.fallback.Fill(res, src.Text)

	out := &ExtractedReceipt{LineItems: res.LineItems}
	var contributions []contribution

	if f := res.Field(FieldAmount); f.Resolved() {
		if amt := NormalizeAmount(*f.RawValue); amt != nil {
			out.Amount = amt
			contributions = append(contributions, contribution{FieldAmount, f.Confidence, f.Source})
		}
	}

	if f := res.Field(FieldDate); f.Resolved() {
		if d, ok := NormalizeDate(*f.RawValue, p.rules.DateLayouts); ok {
			out.Date = &d
			contributions = append(contributions, contribution{FieldDate, f.Confidence, f.Source})
		}
	}
	if out.Date == nil && p.rules.DateFallbackToday {
		today := calendarDate(p.now())
		out.Date = &today
		out.DateDefaulted = true
	}

	if f := res.Field(FieldMerchant); f.Resolved() {
		if m := NormalizeMerchant(*f.RawValue); m != nil {
			out.Merchant = m
			contributions = append(contributions, contribution{FieldMerchant, f.Confidence, f.Source})
		}
	}

	out.Category = p.categorizer.Categorize(deref(out.Merchant))
	if f := res.Field(FieldCategory); f.Resolved() {
		if name, ok := p.categorizer.Known(*f.RawValue); ok {
			out.Category = name
			contributions = append(contributions, contribution{FieldCategory, f.Confidence, f.Source})
		}
	}

	aggregate(out, contributions)
	return out, nil
}

// TextSource wraps raw text as a document with no recognized entities.
func TextSource(text string) *Source {
	return &Source{Entities: []SourceEntity{}, Text: text}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func cloneRules(r Rules) Rules {
	out := r
	out.Aliases = make(map[Field][]string, len(r.Aliases))
	for f, labels := range r.Aliases {
		out.Aliases[f] = append([]string(nil), labels...)
	}
	if r.Thresholds != nil {
		out.Thresholds = make(map[Field]float64, len(r.Thresholds))
		for f, t := range r.Thresholds {
			out.Thresholds[f] = t
		}
	}
	out.DateLayouts = append([]string(nil), r.DateLayouts...)
	out.Categories = make([]CategoryRule, len(r.Categories))
	for i, c := range r.Categories {
		out.Categories[i] = CategoryRule{Name: c.Name, Keywords: append([]string(nil), c.Keywords...)}
	}
	return out
}
