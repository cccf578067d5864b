//go:build tinygo

package strconvx

import "math"

type syntaxError struct{ s string }

func (e syntaxError) Error() string { return "strconvx: invalid syntax: " + e.s }

func Itoa(i int) string {
	if i < 0 {
		return "-" + utoa(uint64(-int64(i)))
	}
	return utoa(uint64(i))
}

func utoa(u uint64) string {
	if u == 0 {
		return "0"
	}
	var buf [20]byte
	n := len(buf)
	for u > 0 {
		n--
		buf[n] = byte('0' + u%10)
		u /= 10
	}
	return string(buf[n:])
}

// FormatFixed renders f with prec digits after the decimal point, rounding
// the last digit half up on the magnitude. prec is clamped to [0, MaxPrec].
// Values too large for the scaled integer path fall back to whole units.
func FormatFixed(f float64, prec int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	prec = clampPrec(prec)
	sign := ""
	if math.Signbit(f) {
		sign = "-"
		f = -f
	}
	pow := math.Pow10(prec)
	if f*pow >= 1<<63 {
		prec, pow = 0, 1
	}
	scaled := uint64(f*pow + 0.5)
	whole := utoa(scaled / uint64(pow))
	if prec == 0 {
		return sign + whole
	}
	frac := utoa(scaled % uint64(pow))
	for len(frac) < prec {
		frac = "0" + frac
	}
	return sign + whole + "." + frac
}

// ParseFloat accepts an optional sign, digits, an optional fraction and an
// optional decimal exponent.
func ParseFloat(s string) (float64, error) {
	in := s
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	var v float64
	digits := 0
	i := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		v = v*10 + float64(s[i]-'0')
		digits++
	}
	if i < len(s) && s[i] == '.' {
		scale := 1.0
		for i++; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
			scale /= 10
			v += float64(s[i]-'0') * scale
			digits++
		}
	}
	if digits == 0 {
		return 0, syntaxError{in}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		exp, err := parseExp(s[i+1:])
		if err != nil {
			return 0, syntaxError{in}
		}
		v *= math.Pow10(exp)
		i = len(s)
	}
	if i != len(s) {
		return 0, syntaxError{in}
	}
	if neg {
		v = -v
	}
	return v, nil
}

func parseExp(s string) (int, error) {
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	if len(s) == 0 {
		return 0, syntaxError{s}
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' || n > 400 {
			return 0, syntaxError{s}
		}
		n = n*10 + int(s[i]-'0')
	}
	if neg {
		n = -n
	}
	return n, nil
}
