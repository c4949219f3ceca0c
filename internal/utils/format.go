package utils

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// LakhINR is the number of rupees in one prediction unit
const LakhINR = 100000.0

var printer = message.NewPrinter(language.English)

// FormatINR renders an amount in rupees with thousands grouping, e.g. "₹ 4,523,000.00"
func FormatINR(rupees float64) string {
	return "₹ " + printer.Sprintf("%.2f", rupees)
}

// FormatLakhs converts a value in 100,000 INR units to rupees and formats it
func FormatLakhs(lakhs float64) string {
	return FormatINR(lakhs * LakhINR)
}

// FormatR2 renders a coefficient of determination with four decimals
func FormatR2(r2 float64) string {
	return printer.Sprintf("%.4f", r2)
}
