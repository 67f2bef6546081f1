package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"math"
)

// Source is the structured output of an extraction service for one document:
// the recognized entities in service order plus the full recognized text.
//
// A nil Entities slice means the service returned no entity list at all and
// is rejected by Collect. An empty, non-nil slice is a valid "nothing found".
type Source struct {
	Entities []SourceEntity `json:"entities"`
	Text     string         `json:"text"`
}

// SourceEntity is the wire shape of one recognized span. Field names follow
// Document AI's JSON encoding.
type SourceEntity struct {
	Type        string  `json:"type"`
	MentionText string  `json:"mentionText"`
	Confidence  float64 `json:"confidence"`
}

// RawEntity is the pipeline's internal view of a recognized span.
type RawEntity struct {
	Kind       string
	Text       string
	Confidence float64
}

// Collect adapts src into a lazy sequence of RawEntity values. The sequence
// can be ranged over any number of times and always yields the entities in
// the order the service reported them. A confidence outside [0,1] (including
// percentage-style values such as 95) makes the whole source malformed.
func Collect(src *Source) (iter.Seq[RawEntity], error) {
	if src == nil || src.Entities == nil {
		return nil, ErrMalformedExtractionResult
	}
	for i, e := range src.Entities {
		if math.IsNaN(e.Confidence) || e.Confidence < 0 || e.Confidence > 1 {
			return nil, fmt.Errorf("%w: entity %d (%s) has confidence %v outside [0,1]",
				ErrMalformedExtractionResult, i, e.Type, e.Confidence)
		}
	}
	entities := src.Entities
	return func(yield func(RawEntity) bool) {
		for _, e := range entities {
			if !yield(RawEntity{Kind: e.Type, Text: e.MentionText, Confidence: e.Confidence}) {
				return
			}
		}
	}, nil
}

// DecodeSource decodes a JSON extraction document. The document must carry an
// "entities" array; an absent, null or non-array value is malformed.
func DecodeSource(data []byte) (*Source, error) {
	var envelope struct {
		Entities json.RawMessage `json:"entities"`
		Text     string          `json:"text"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedExtractionResult, err)
	}

	raw := bytes.TrimSpace(envelope.Entities)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("%w: entities is not a list", ErrMalformedExtractionResult)
	}

	entities := []SourceEntity{}
	if err := json.Unmarshal(raw, &entities); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedExtractionResult, err)
	}
	return &Source{Entities: entities, Text: envelope.Text}, nil
}
