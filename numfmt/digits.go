package numfmt

import (
	"strconv"
	"strings"
)

// maxNativePrecision is the largest %f precision handed to strconv.
const maxNativePrecision = 100

// roundFixed renders abs with prec fractional digits by rounding the
// shortest decimal representation of abs half-up, digit by digit.
func roundFixed(abs float64, prec int) string {
	if abs == 0 {
		return zeros(prec)
	}
	e := strconv.FormatFloat(abs, 'e', -1, 64)
	i := strings.IndexByte(e, 'e')
	mant, exp := e[:i], e[i+1:]
	x, _ := strconv.Atoi(exp)
	d := []byte(strings.Replace(mant, ".", "", 1))

	point := x + 1 // digits before the decimal point
	keep := point + prec
	if keep < 0 {
		return zeros(prec)
	}
	if len(d) > keep {
		up := d[keep] >= '5'
		d = d[:keep]
		if up {
			j := keep - 1
			for ; j >= 0; j-- {
				if d[j] == '9' {
					d[j] = '0'
					continue
				}
				d[j]++
				break
			}
			if j < 0 {
				d = append([]byte{'1'}, d...)
				point++
			}
		}
	} else {
		d = append(d, strings.Repeat("0", keep-len(d))...)
	}

	var intPart, frac string
	if point <= 0 {
		intPart = "0"
		frac = strings.Repeat("0", -point) + string(d)
	} else {
		intPart = string(d[:point])
		frac = string(d[point:])
	}
	if prec == 0 {
		return intPart
	}
	return intPart + "." + frac
}

func zeros(prec int) string {
	if prec == 0 {
		return "0"
	}
	return "0." + strings.Repeat("0", prec)
}
