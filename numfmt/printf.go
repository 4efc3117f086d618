package numfmt

import (
	"math"
	"strconv"
	"strings"
)

// conversion is a parsed %[flags][width][.precision]type directive.
type conversion struct {
	left, plus, space, zero, alt bool

	width     int
	precision int // -1 when absent
	verb      byte

	prefix, suffix string
}

// parseC splits spec into literal text around exactly one conversion.
func parseC(spec string) (*conversion, error) {
	c := &conversion{precision: -1}
	var lit strings.Builder
	i := 0
	found := false
	for i < len(spec) {
		ch := spec[i]
		if ch != '%' {
			lit.WriteByte(ch)
			i++
			continue
		}
		if i+1 < len(spec) && spec[i+1] == '%' {
			lit.WriteByte('%')
			i += 2
			continue
		}
		if found {
			return nil, &FormatError{Spec: spec, Reason: "more than one conversion"}
		}
		found = true
		c.prefix = lit.String()
		lit.Reset()

		n, err := c.parseDirective(spec, i+1)
		if err != nil {
			return nil, err
		}
		i = n
	}
	if !found {
		return nil, &FormatError{Spec: spec, Reason: "no conversion"}
	}
	c.suffix = lit.String()
	return c, nil
}

// parseDirective parses the directive starting after '%' and returns the
// index just past the verb.
func (c *conversion) parseDirective(spec string, i int) (int, error) {
flags:
	for i < len(spec) {
		switch spec[i] {
		case '-':
			c.left = true
		case '+':
			c.plus = true
		case ' ':
			c.space = true
		case '0':
			c.zero = true
		case '#':
			c.alt = true
		default:
			break flags
		}
		i++
	}

	start := i
	for i < len(spec) && isDigit(spec[i]) {
		i++
	}
	if i > start {
		c.width, _ = strconv.Atoi(spec[start:i])
	}

	if i < len(spec) && spec[i] == '.' {
		i++
		sign := byte(0)
		if i < len(spec) && (spec[i] == '-' || spec[i] == '+') {
			sign = spec[i]
			i++
		}
		start = i
		for i < len(spec) && isDigit(spec[i]) {
			i++
		}
		n := 0
		if i > start {
			n, _ = strconv.Atoi(spec[start:i])
		} else if sign != 0 {
			return 0, &FormatError{Spec: spec, Reason: "sign without precision digits"}
		}
		if sign != 0 {
			// A signed precision is taken as the field width.
			c.width = n
			if sign == '-' {
				c.left = true
			}
		} else {
			c.precision = n
		}
	}

	if i >= len(spec) {
		return 0, &FormatError{Spec: spec, Reason: "missing conversion type"}
	}
	switch spec[i] {
	case 'e', 'E', 'f', 'g', 'G':
		c.verb = spec[i]
	default:
		return 0, &FormatError{Spec: spec, Reason: "unsupported conversion type " + strconv.Quote(spec[i:i+1])}
	}
	return i + 1, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func formatC(x float64, spec string) (string, error) {
	c, err := parseC(spec)
	if err != nil {
		return "", err
	}
	return c.prefix + c.render(x) + c.suffix, nil
}

func (c *conversion) render(x float64) string {
	prec := c.precision
	if prec < 0 {
		prec = 6
	}

	neg := x < 0
	abs := math.Abs(x)
	finite := !math.IsNaN(x) && !math.IsInf(x, 0)

	var body string
	switch {
	case math.IsNaN(x):
		body = "nan"
		neg = false
	case math.IsInf(x, 0):
		body = "inf"
	default:
		switch c.verb {
		case 'f':
			body = fixed(abs, prec, c.alt)
		case 'e', 'E':
			body = exponent(abs, prec, c.alt)
		case 'g', 'G':
			body = general(abs, prec, c.alt)
		}
	}
	if c.verb == 'E' || c.verb == 'G' {
		body = strings.ToUpper(body)
	}

	sign := ""
	switch {
	case neg:
		sign = "-"
	case c.plus:
		sign = "+"
	case c.space:
		sign = " "
	}

	pad := c.width - len(sign) - len(body)
	if pad <= 0 {
		return sign + body
	}
	switch {
	case c.left:
		return sign + body + strings.Repeat(" ", pad)
	case c.zero && finite:
		return sign + strings.Repeat("0", pad) + body
	default:
		return strings.Repeat(" ", pad) + sign + body
	}
}

// fixed renders abs with prec fractional digits. Precisions beyond what
// the native formatter is trusted with go through manual rounding.
func fixed(abs float64, prec int, alt bool) string {
	var s string
	if prec > maxNativePrecision {
		s = roundFixed(abs, prec)
	} else {
		s = strconv.FormatFloat(abs, 'f', prec, 64)
	}
	if alt && prec == 0 {
		s += "."
	}
	return s
}

func exponent(abs float64, prec int, alt bool) string {
	s := strconv.FormatFloat(abs, 'e', prec, 64)
	if alt && prec == 0 {
		i := strings.IndexByte(s, 'e')
		s = s[:i] + "." + s[i:]
	}
	return s
}

// general implements %g: exponential form when the decimal exponent is
// below -4 or not below the precision, fixed otherwise. Trailing
// fractional zeros are dropped unless alt is set.
func general(abs float64, prec int, alt bool) string {
	if prec == 0 {
		prec = 1
	}
	e := strconv.FormatFloat(abs, 'e', prec-1, 64)
	x := 0
	if abs != 0 {
		x, _ = strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
	}

	var s string
	if x < -4 || x >= prec {
		s = e
		if !alt {
			i := strings.IndexByte(s, 'e')
			s = trimZeros(s[:i]) + s[i:]
		} else if !strings.Contains(s, ".") {
			i := strings.IndexByte(s, 'e')
			s = s[:i] + "." + s[i:]
		}
		return s
	}
	s = fixed(abs, prec-1-x, false)
	if !alt {
		s = trimZeros(s)
	} else if !strings.Contains(s, ".") {
		s += "."
	}
	return s
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
