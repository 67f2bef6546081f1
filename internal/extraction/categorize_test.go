package extraction_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pocketpilot/internal/extraction"
)

func TestCategorizer_Categorize(t *testing.T) {
	c := extraction.NewCategorizer(extraction.DefaultRules())

	tests := []struct {
		merchant string
		want     string
	}{
		{"Campus Cafe", "Food"},
		{"DOMINO'S PIZZA", "Food"},
		{"Uber Trip", "Transport"},
		{"DMart", "Groceries"},
		{"PVR Cinemas", "Entertainment"},
		{"Apollo Pharmacy", "Health"},
		{"City Book House", "Education"},
		{"Campus Mart Cafe", "Food"},
		{"Zzz Holdings", "General"},
		{"Ola Cabs", "Transport"},
		{"redBus Travels", "Transport"},
		{"Coca-Cola Depot", "General"},
		{"Business Hotel", "General"},
		{"", "General"},
		{"   ", "General"},
	}
	for _, tt := range tests {
		t.Run(tt.merchant, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Categorize(tt.merchant))
		})
	}
}

func TestCategorizer_DeclarationOrder(t *testing.T) {
	rules := extraction.DefaultRules()
	rules.Categories = []extraction.CategoryRule{
		{Name: "Groceries", Keywords: []string{"mart"}},
		{Name: "Food", Keywords: []string{"cafe"}},
	}
	c := extraction.NewCategorizer(rules)

	assert.Equal(t, "Groceries", c.Categorize("Campus Mart Cafe"))
}

func TestCategorizer_CustomDefault(t *testing.T) {
	rules := extraction.DefaultRules()
	rules.DefaultCategory = "Other"
	rules.Categories = nil
	c := extraction.NewCategorizer(rules)

	assert.Equal(t, "Other", c.Categorize("Campus Cafe"))
	assert.Equal(t, []string{"Other"}, c.Categories())
}

func TestCategorizer_Known(t *testing.T) {
	c := extraction.NewCategorizer(extraction.DefaultRules())

	name, ok := c.Known(" food ")
	assert.True(t, ok)
	assert.Equal(t, "Food", name)

	name, ok = c.Known("general")
	assert.True(t, ok)
	assert.Equal(t, "General", name)

	_, ok = c.Known("Travel")
	assert.False(t, ok)
}
