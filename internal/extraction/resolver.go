package extraction

import "iter"

// Source of a resolved value.
type ValueSource string

const (
	ValueSourceEntity ValueSource = "entity"
	ValueSourceText   ValueSource = "text"
)

// CanonicalField is the resolved raw value of one canonical field.
// RawValue is nil and Confidence is 0 when the field is unresolved.
type CanonicalField struct {
	Name       Field
	RawValue   *string
	Confidence float64
	Source     ValueSource
}

// Resolved reports whether a raw value was found.
func (f CanonicalField) Resolved() bool { return f.RawValue != nil }

// Resolution is the output of the resolver stage.
type Resolution struct {
	Fields    map[Field]CanonicalField
	LineItems []string
}

// Field returns the resolution of f, unresolved if nothing matched.
func (r *Resolution) Field(f Field) CanonicalField {
	if cf, ok := r.Fields[f]; ok {
		return cf
	}
	return CanonicalField{Name: f}
}

// resolver maps entity labels onto canonical fields.
type resolver struct {
	index      map[string]Field
	thresholds map[Field]float64
}

func newResolver(rules *Rules) *resolver {
	th := make(map[Field]float64, len(scalarFields)+1)
	for _, f := range append(append([]Field{}, scalarFields...), FieldLineItems) {
		th[f] = rules.Threshold(f)
	}
	return &resolver{index: rules.aliasIndex(), thresholds: th}
}

// Resolve walks entities once. An entity is eligible only when its confidence
// reaches the field threshold; ineligible entities are skipped entirely. For
// scalar fields the first eligible entity in sequence order wins and later
// candidates are dropped, regardless of their confidence.
func (r *resolver) Resolve(entities iter.Seq[RawEntity]) *Resolution {
	res := &Resolution{
		Fields:    make(map[Field]CanonicalField, len(scalarFields)),
		LineItems: []string{},
	}
	for e := range entities {
		field, ok := r.index[normalizeKind(e.Kind)]
		if !ok {
			continue
		}
		if e.Confidence < r.thresholds[field] {
			continue
		}
		if field == FieldLineItems {
			res.LineItems = append(res.LineItems, e.Text)
			continue
		}
		if _, taken := res.Fields[field]; taken {
			continue
		}
		text := e.Text
		res.Fields[field] = CanonicalField{
			Name:       field,
			RawValue:   &text,
			Confidence: e.Confidence,
			Source:     ValueSourceEntity,
		}
	}
	return res
}
