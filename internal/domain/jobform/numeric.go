package jobform

import (
	"errors"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

var (
	decimalLiteral = regexp.MustCompile(`^[+-]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)
	radixLiteral   = regexp.MustCompile(`^0(?:[xX][0-9a-fA-F]+|[oO][0-7]+|[bB][01]+)$`)
)

// looseNumber coerces s to a number the way a browser does for a numeric
// string: surrounding whitespace is ignored, blank means 0, and decimal,
// exponent, Infinity and 0x/0o/0b forms are accepted.
// POST: ok is false when the coercion yields NaN
func looseNumber(s string) (n float64, ok bool) {
	t := strings.TrimFunc(s, isSpace)
	switch t {
	case "":
		return 0, true
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}

	if radixLiteral.MatchString(t) {
		base := 16
		switch t[1] {
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		i, ok := new(big.Int).SetString(t[2:], base)
		if !ok {
			return 0, false
		}
		f, _ := new(big.Float).SetInt(i).Float64()
		return f, true
	}

	if !decimalLiteral.MatchString(t) {
		return 0, false
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

// isSpace matches the whitespace and line terminators a browser trims
// before numeric coercion.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		'\u00a0', '\u1680', '\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}
