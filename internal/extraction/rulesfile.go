package extraction

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed rules.schema.json
var rulesSchemaJSON []byte

var (
	rulesSchemaOnce sync.Once
	rulesSchema     *jsonschema.Schema
	rulesSchemaErr  error
)

func compiledRulesSchema() (*jsonschema.Schema, error) {
	rulesSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("rules.schema.json", bytes.NewReader(rulesSchemaJSON)); err != nil {
			rulesSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		rulesSchema, rulesSchemaErr = compiler.Compile("rules.schema.json")
	})
	return rulesSchema, rulesSchemaErr
}

// rulesOverlay mirrors Rules with every key optional.
type rulesOverlay struct {
	Aliases            map[Field][]string `json:"aliases"`
	MinConfidence      *float64           `json:"min_confidence"`
	Thresholds         map[Field]float64  `json:"thresholds"`
	FallbackConfidence *float64           `json:"fallback_confidence"`
	DateLayouts        []string           `json:"date_layouts"`
	DateFallbackToday  *bool              `json:"date_fallback_today"`
	Categories         []CategoryRule     `json:"categories"`
	DefaultCategory    *string            `json:"default_category"`
}

// LoadRules reads a JSON rules file and overlays it on DefaultRules.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("extraction.LoadRules: %w", err)
	}
	return ParseRules(data)
}

// ParseRules validates data against the rules schema and overlays the keys it
// sets on DefaultRules. A key that is present replaces the default wholesale;
// aliases and thresholds are replaced per field.
func ParseRules(data []byte) (Rules, error) {
	schema, err := compiledRulesSchema()
	if err != nil {
		return Rules{}, fmt.Errorf("extraction.ParseRules: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Rules{}, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	if err := schema.Validate(doc); err != nil {
		return Rules{}, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}

	var ov rulesOverlay
	if err := json.Unmarshal(data, &ov); err != nil {
		return Rules{}, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}

	rules := DefaultRules()
	for f, labels := range ov.Aliases {
		rules.Aliases[f] = labels
	}
	if ov.MinConfidence != nil {
		rules.MinConfidence = *ov.MinConfidence
	}
	if len(ov.Thresholds) > 0 {
		rules.Thresholds = make(map[Field]float64, len(ov.Thresholds))
		for f, t := range ov.Thresholds {
			rules.Thresholds[f] = t
		}
	}
	if ov.FallbackConfidence != nil {
		rules.FallbackConfidence = *ov.FallbackConfidence
	}
	if ov.DateLayouts != nil {
		rules.DateLayouts = ov.DateLayouts
	}
	if ov.DateFallbackToday != nil {
		rules.DateFallbackToday = *ov.DateFallbackToday
	}
	if ov.Categories != nil {
		rules.Categories = ov.Categories
	}
	if ov.DefaultCategory != nil {
		rules.DefaultCategory = *ov.DefaultCategory
	}

	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}
