package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var hundred = decimal.NewFromInt(100)

// ComputeDuty returns adValorem*unitValue + specific*quantity rounded half-up to cents.
// adValorem is a fraction (0.10 = 10%); a nil component contributes nothing.
func ComputeDuty(adValorem, specific *decimal.Decimal, unitValue decimal.Decimal, quantity int) decimal.Decimal {
	duty := decimal.Zero
	if adValorem != nil {
		duty = duty.Add(adValorem.Mul(unitValue))
	}
	if specific != nil {
		duty = duty.Add(specific.Mul(decimal.NewFromInt(int64(quantity))))
	}
	return roundMoney(duty)
}

// roundMoney rounds half away from zero, which is half-up for the non-negative amounts handled here.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// parsePercentFromLabel reads the number in front of the first '%' of a rate label such as "10%" or "2.5% + 3¢/kg".
// The result is a fraction: "10%" yields 0.10. Labels without a parsable percentage yield zero.
func parsePercentFromLabel(label string) decimal.Decimal {
	idx := strings.IndexByte(label, '%')
	if idx < 0 {
		return decimal.Zero
	}
	pct, err := decimal.NewFromString(strings.TrimSpace(label[:idx]))
	if err != nil {
		return decimal.Zero
	}
	return pct.Div(hundred)
}

// formatRateLabel renders rate components: "Free" when both are zero, else "10%", "5 per unit" or "10% + 5 per unit".
func formatRateLabel(adValorem, specific decimal.Decimal) string {
	if adValorem.IsZero() && specific.IsZero() {
		return "Free"
	}
	var parts []string
	if adValorem.IsPositive() {
		parts = append(parts, adValorem.Mul(hundred).String()+"%")
	}
	if specific.IsPositive() {
		parts = append(parts, specific.String()+" per unit")
	}
	return strings.Join(parts, " + ")
}

// cleanHTSCode strips everything but digits: "1234.56.78" becomes "12345678".
func cleanHTSCode(code string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, code)
}

func parseOptionalDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// today truncates now to a UTC calendar day so it compares cleanly with DATE columns.
func today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// normalizeCode upper-cases a country or currency code.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
