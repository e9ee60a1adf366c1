package invoice

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

var maxGroupable = decimal.NewFromInt(math.MaxInt64)

// Money formats d to two decimals with thousands grouping: 1234.5 → "1,234.50".
// Digits come from the exact decimal; only the integer part is grouped.
func Money(d decimal.Decimal) string {
	d = d.Round(2)
	abs := d.Abs()

	whole, frac, _ := strings.Cut(abs.StringFixed(2), ".")
	if abs.LessThanOrEqual(maxGroupable) {
		whole = printer.Sprintf("%d", abs.IntPart())
	}

	if d.IsNegative() {
		return "-" + whole + "." + frac
	}
	return whole + "." + frac
}

// Quantity formats a quantity without trailing zeros: 2 → "2", 1.5 → "1.5".
func Quantity(d decimal.Decimal) string {
	return d.String()
}

// CurrencySymbol returns the printable symbol for the currencies the service
// quotes in emails. Unknown codes are returned unchanged with a trailing space.
func CurrencySymbol(code string) string {
	switch code {
	case "INR":
		return "₹"
	case "USD":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	default:
		return code + " "
	}
}

func decimalFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
