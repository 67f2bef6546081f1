package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstMatch_Amount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"rupee symbol", "Paid ₹450.00 cash", "450.00", true},
		{"rs prefix", "Grand total Rs. 1,299", "1,299", true},
		{"inr code", "INR 75", "75", true},
		{"dollar", "Subtotal 4.00\nTip $2.50", "2.50", true},
		{"currency beats total label", "Total: 99.00\nPaid ₹100", "100", true},
		{"total label", "CAMPUS CAFE\nTotal: 120.50\n05/01/2025", "120.50", true},
		{"total without colon", "TOTAL 64.2", "64.2", true},
		{"amount label", "Amount: 15", "15", true},
		{"total beats amount", "Amount: 10\nTotal: 12", "12", true},
		{"first in document order", "₹5 then ₹7", "5", true},
		{"extra decimals kept whole", "SHOP\nTotal: 12.345", "12.345", true},
		{"comma decimal kept whole", "SHOP\nTotal: 1.234,50", "1.234,50", true},
		{"sentence period dropped", "Total 45.50.", "45.50", true},
		{"no match", "Thank you for visiting", "", false},
		{"word boundary", "Customers 42", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := firstMatch(amountRules, tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFirstMatch_Date(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"day first slash", "Date 05/01/2025 10:42", "05/01/2025", true},
		{"day first dash", "05-01-2025", "05-01-2025", true},
		{"iso", "Printed 2025-01-05", "2025-01-05", true},
		{"iso slash", "Date: 2025/01/05", "2025/01/05", true},
		{"numeric beats named month", "05 Jan 2025 / 06/01/2025", "06/01/2025", true},
		{"day month name", "Dated 5 January 2025", "5 January 2025", true},
		{"month name day", "jan 05, 2025", "jan 05, 2025", true},
		{"none", "no date at all", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := firstMatch(dateRules, tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMerchantLine(t *testing.T) {
	got, ok := merchantLine("12 MG Road\n  \nabc\n  Blue Tokai Coffee  \nTotal: 5")
	assert.True(t, ok)
	assert.Equal(t, "Blue Tokai Coffee", got)

	_, ok = merchantLine("1\n2\n3\n4\n5\nLate Merchant")
	assert.False(t, ok, "only the first five lines are scanned")

	_, ok = merchantLine("")
	assert.False(t, ok)

	got, ok = merchantLine("Café")
	assert.True(t, ok)
	assert.Equal(t, "Café", got)
}

func TestFallbackFill_OnlyUnresolved(t *testing.T) {
	existing := "Header Store"
	res := &Resolution{
		Fields: map[Field]CanonicalField{
			FieldMerchant: {Name: FieldMerchant, RawValue: &existing, Confidence: 0.9, Source: ValueSourceEntity},
		},
		LineItems: []string{},
	}
	x := &fallbackExtractor{confidence: 0.6}
	x.Fill(res, "OTHER SHOP\nTotal: 9")

	assert.Equal(t, "Header Store", *res.Field(FieldMerchant).RawValue)
	assert.Equal(t, 0.9, res.Field(FieldMerchant).Confidence)

	amount := res.Field(FieldAmount)
	assert.True(t, amount.Resolved())
	assert.Equal(t, "9", *amount.RawValue)
	assert.Equal(t, 0.6, amount.Confidence)
	assert.Equal(t, ValueSourceText, amount.Source)

	assert.False(t, res.Field(FieldDate).Resolved())
	assert.Equal(t, 0.0, res.Field(FieldDate).Confidence)
}
