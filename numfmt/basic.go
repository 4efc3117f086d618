package numfmt

import (
	"math"
	"strconv"
	"strings"
)

// formatBasic applies a '#'/'.' template. The result always has the
// template's width; values that do not fit become a run of '*'.
func formatBasic(x float64, tmpl string) (string, error) {
	if tmpl == "" {
		return "", &FormatError{Spec: tmpl, Reason: "empty template"}
	}
	intPlaces, fracPlaces := 0, 0
	dot := false
	for _, r := range tmpl {
		switch r {
		case '#':
			if dot {
				fracPlaces++
			} else {
				intPlaces++
			}
		case '.':
			if dot {
				return "", &FormatError{Spec: tmpl, Reason: "more than one decimal point"}
			}
			dot = true
		default:
			return "", &FormatError{Spec: tmpl, Reason: "unexpected character " + strconv.QuoteRune(r)}
		}
	}
	if intPlaces+fracPlaces == 0 {
		return "", &FormatError{Spec: tmpl, Reason: "no digit placeholders"}
	}

	width := len(tmpl)
	overflow := strings.Repeat("*", width)
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return overflow, nil
	}

	digits := strconv.FormatFloat(math.Abs(x), 'f', fracPlaces, 64)
	intPart, fracPart := digits, ""
	if i := strings.IndexByte(digits, '.'); i >= 0 {
		intPart, fracPart = digits[:i], digits[i+1:]
	}
	if x < 0 && strings.Trim(digits, "0.") != "" {
		intPart = "-" + intPart
	}
	if intPart == "0" && intPlaces == 0 {
		intPart = ""
	}
	if len(intPart) > intPlaces {
		return overflow, nil
	}

	var sb strings.Builder
	sb.Grow(width)
	// Zero-padding the integer positions and then blanking leading zeros
	// is the same as padding with spaces.
	sb.WriteString(strings.Repeat(" ", intPlaces-len(intPart)))
	sb.WriteString(intPart)
	if dot {
		sb.WriteByte('.')
		sb.WriteString(fracPart)
	}
	return sb.String(), nil
}
