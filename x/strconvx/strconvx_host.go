//go:build !tinygo

// Package strconvx renders and parses measurement values. Host builds use
// strconv; TinyGo builds use a small implementation that avoids fmt.
package strconvx

import "strconv"

func Itoa(i int) string { return strconv.Itoa(i) }

// FormatFixed renders f with prec digits after the decimal point, prec
// clamped to [0, MaxPrec].
func FormatFixed(f float64, prec int) string {
	return strconv.FormatFloat(f, 'f', clampPrec(prec), 64)
}

func ParseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
