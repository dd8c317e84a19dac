package renderer

import (
	"fmt"
	"strings"

	money "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/carteira/internal/models"
)

const na = "N/A"

// Amount formats v in currency code with its symbol and separators.
// Unknown codes fall back to two decimals followed by the code.
func Amount(v decimal.Decimal, code string) string {
	c := money.GetCurrency(code)
	if c == nil {
		return v.StringFixed(2) + " " + code
	}
	return money.New(v.Shift(int32(c.Fraction)).Round(0).IntPart(), c.Code).Display()
}

// AmountFloat formats a float amount like Amount
func AmountFloat(v float64, code string) string {
	return Amount(decimal.NewFromFloat(v), code)
}

func optAmount(o models.Optional, code string) string {
	v, ok := o.Get()
	if !ok {
		return na
	}
	return AmountFloat(v, code)
}

// Percent formats a fraction as a percentage with two decimals
func Percent(o models.Optional) string {
	v, ok := o.Get()
	if !ok {
		return na
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

func decimalPercent(d decimal.Decimal) string {
	return d.Shift(2).StringFixed(2) + "%"
}

func ratio(o models.Optional) string {
	v, ok := o.Get()
	if !ok {
		return na
	}
	return fmt.Sprintf("%.2f", v)
}

func number(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func statusText(s models.Status, reason string) string {
	if s == models.StatusOK || s == "" {
		if reason != "" {
			return "ok (" + escape(reason) + ")"
		}
		return "ok"
	}
	if reason == "" {
		return string(s)
	}
	return string(s) + ": " + escape(reason)
}

func uintString(v uint64) string {
	return fmt.Sprintf("%d", v)
}
