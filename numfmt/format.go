// Package numfmt renders numbers for PRINT, PRINT USING and str$.
//
// Two template families share one entry point. A spec containing '%' is a
// C-style conversion ("%8.3f"); anything else is a BASIC fixed-width
// template built from '#' digit placeholders and an optional '.'.
package numfmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatError reports a malformed format spec.
type FormatError struct {
	Spec   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid format %q: %s", e.Spec, e.Reason)
}

// Format renders x according to spec.
func Format(x float64, spec string) (string, error) {
	if strings.ContainsRune(spec, '%') {
		return formatC(x, spec)
	}
	return formatBasic(x, spec)
}

// Default renders x the way PRINT does without a template: integral
// values below 1e15 in plain integer form, everything else as %.10g.
func Default(x float64) string {
	if x == math.Trunc(x) && math.Abs(x) < 1e15 {
		if x == 0 {
			return "0"
		}
		return strconv.FormatFloat(x, 'f', 0, 64)
	}
	s, _ := formatC(x, "%.10g")
	return s
}
