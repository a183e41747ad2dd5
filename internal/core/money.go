// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts typed by users
// into decimals and deriving percentages from them.
package core

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)

	// groupedAmount is the only form allowed to mix separators: 1.234.567,89
	groupedAmount = regexp.MustCompile(`^\d{1,3}(\.\d{3})+,\d+$`)
)

// ParseAmount converts a user-typed amount to a decimal rounded to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators, and a
// dot-grouped thousands form with a comma decimal (1.234,56). Any other mix
// of dots and commas, such as 1,234.56, is rejected. Rounding is
// half-up on the third decimal place. Negative values are rejected; zero is
// allowed since a transaction amount is non-negative.
//
// Examples:
//
//	ParseAmount("12.34")    -> 12.34
//	ParseAmount("1.234,56") -> 1234.56
//	ParseAmount("12.345")   -> 12.35
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Contains(s, ",") {
		if strings.Count(s, ",") > 1 {
			return decimal.Zero, ErrInvalidAmount
		}
		if strings.Contains(s, ".") && !groupedAmount.MatchString(s) {
			return decimal.Zero, ErrInvalidAmount
		}
		// Comma is the decimal separator, dots group thousands
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d.Round(2), nil
}

// Percent returns part/whole × 100, or zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}
