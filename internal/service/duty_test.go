package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func TestComputeDuty(t *testing.T) {
	tests := []struct {
		name      string
		adValorem *decimal.Decimal
		specific  *decimal.Decimal
		value     string
		quantity  int
		want      string
	}{
		{"ad valorem and specific", d("0.10"), d("5.00"), "1000.00", 10, "150.00"},
		{"preferential", d("0.03"), d("1.50"), "1000.00", 10, "45.00"},
		{"nil components contribute zero", nil, nil, "1000.00", 10, "0"},
		{"specific only", nil, d("0.25"), "1.00", 3, "0.75"},
		{"rounds half up", d("0.005"), nil, "1.00", 1, "0.01"},
		{"rounds down below half", d("0.0049"), nil, "1.00", 1, "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDuty(tt.adValorem, tt.specific, decimal.RequireFromString(tt.value), tt.quantity)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParsePercentFromLabel(t *testing.T) {
	assert.True(t, decimal.RequireFromString("0.10").Equal(parsePercentFromLabel("10%")))
	assert.True(t, decimal.RequireFromString("0.025").Equal(parsePercentFromLabel(" 2.5 % + 3¢/kg")))
	assert.True(t, parsePercentFromLabel("Free").IsZero())
	assert.True(t, parsePercentFromLabel("about%").IsZero())
	assert.True(t, parsePercentFromLabel("").IsZero())
}

func TestFormatRateLabel(t *testing.T) {
	assert.Equal(t, "Free", formatRateLabel(decimal.Zero, decimal.Zero))
	assert.Equal(t, "10%", formatRateLabel(decimal.RequireFromString("0.10"), decimal.Zero))
	assert.Equal(t, "5 per unit", formatRateLabel(decimal.Zero, decimal.RequireFromString("5.00")))
	assert.Equal(t, "3% + 1.5 per unit", formatRateLabel(decimal.RequireFromString("0.03"), decimal.RequireFromString("1.50")))
}

func TestFormatParseRoundTrip(t *testing.T) {
	rate := decimal.RequireFromString("0.125")
	label := formatRateLabel(rate, decimal.Zero)
	assert.Equal(t, "12.5%", label)
	assert.True(t, rate.Equal(parsePercentFromLabel(label)))
}

func TestCleanHTSCode(t *testing.T) {
	assert.Equal(t, "12345678", cleanHTSCode("1234.56.78"))
	assert.Equal(t, "12345678", cleanHTSCode(" 1234-5678 "))
	assert.Equal(t, "", cleanHTSCode("abc"))
}
