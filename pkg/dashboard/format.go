package dashboard

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FormatNumber shortens big counts: 2500000 -> "2.5M", 1500 -> "1.5k", 999 -> "999"
func FormatNumber(n int64) string {
	switch {
	case n >= 1000000:
		return toFixed1(float64(n)/1000000) + "M"
	case n >= 1000:
		return toFixed1(float64(n)/1000) + "k"
	}
	return strconv.FormatInt(n, 10)
}

// toFixed1 formats with a single decimal, rounding exact halves up
func toFixed1(x float64) string {
	// only .25 and .75 can be exact ties at one decimal
	if q := x * 4; q == math.Trunc(q) && math.Mod(q, 2) == 1 {
		x += 0.05
	}
	return strconv.FormatFloat(x, 'f', 1, 64)
}

var combiningMarks = runes.Predicate(func(r rune) bool {
	return r >= 0x0300 && r <= 0x036f
})

// Normalize drops diacritics and lowercases: "Ceará" -> "ceara"
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(combiningMarks))
	res, _, err := transform.String(t, s)
	if err != nil {
		res = s
	}
	return strings.ToLower(res)
}
