package extraction

import "strings"

// Categorizer maps merchant names to categories using an ordered keyword table.
type Categorizer struct {
	rules    []CategoryRule
	fallback string
}

// NewCategorizer builds a categorizer from the category table in rules.
// Keywords are lowercased once here.
func NewCategorizer(rules Rules) *Categorizer {
	table := make([]CategoryRule, 0, len(rules.Categories))
	for _, c := range rules.Categories {
		kws := make([]string, 0, len(c.Keywords))
		for _, k := range c.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				kws = append(kws, k)
			}
		}
		table = append(table, CategoryRule{Name: c.Name, Keywords: kws})
	}
	return &Categorizer{rules: table, fallback: rules.DefaultCategory}
}

// Categorize returns the first category, in table order, with a keyword
// contained in merchant. An empty merchant gets the default category.
func (c *Categorizer) Categorize(merchant string) string {
	m := strings.ToLower(merchant)
	if strings.TrimSpace(m) == "" {
		return c.fallback
	}
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(m, kw) {
				return rule.Name
			}
		}
	}
	return c.fallback
}

// Known returns the table spelling of name when it names a category.
func (c *Categorizer) Known(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, c.fallback) {
		return c.fallback, true
	}
	for _, rule := range c.rules {
		if strings.EqualFold(name, rule.Name) {
			return rule.Name, true
		}
	}
	return "", false
}

// Categories lists the table names in declaration order followed by the default.
func (c *Categorizer) Categories() []string {
	out := make([]string, 0, len(c.rules)+1)
	for _, rule := range c.rules {
		out = append(out, rule.Name)
	}
	return append(out, c.fallback)
}
