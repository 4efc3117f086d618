// Package charset maps program text onto an 8-bit code page.
//
// Strings inside the VM are code page bytes, one byte per character.
// Host text is UTF-8: Encode converts it on the way in, and Decode,
// ConsoleSafe and GraphicsSafe convert back on the way out.
package charset

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Replacement stands in for runes the code page cannot represent.
const Replacement = '?'

// Charset implements vm.Charset over a single-byte code page.
type Charset struct {
	name string
	cm   *charmap.Charmap
}

var (
	// Latin1 is ISO 8859-1. It is the default.
	Latin1 = &Charset{name: "latin1", cm: charmap.ISO8859_1}
	// CP437 is the original IBM PC code page, box drawing included.
	CP437 = &Charset{name: "cp437", cm: charmap.CodePage437}
	// Latin9 is ISO 8859-15, Latin-1 with the euro sign.
	Latin9 = &Charset{name: "latin9", cm: charmap.ISO8859_15}
)

var byName = map[string]*Charset{
	"latin1":      Latin1,
	"iso-8859-1":  Latin1,
	"cp437":       CP437,
	"latin9":      Latin9,
	"iso-8859-15": Latin9,
}

// Lookup returns the named charset. Names are case-insensitive.
func Lookup(name string) (*Charset, bool) {
	cs, ok := byName[strings.ToLower(name)]
	return cs, ok
}

// Name returns the canonical name.
func (c *Charset) Name() string { return c.name }

// Has reports whether r exists in the code page.
func (c *Charset) Has(r rune) bool {
	_, ok := c.cm.EncodeRune(r)
	return ok
}

// ToUpper upper-cases an encoded string. Characters whose capital is not
// in the code page stay as they are: ß and ÿ have no Latin-1 capital.
func (c *Charset) ToUpper(s string) string {
	return c.mapCase(s, unicode.ToUpper)
}

// ToLower is the inverse of ToUpper.
func (c *Charset) ToLower(s string) string {
	return c.mapCase(s, unicode.ToLower)
}

func (c *Charset) mapCase(s string, f func(rune) rune) string {
	out := []byte(s)
	for i, b := range out {
		r := c.cm.DecodeByte(b)
		m := f(r)
		if m == r {
			continue
		}
		if e, ok := c.cm.EncodeRune(m); ok {
			out[i] = e
		}
	}
	return string(out)
}

// TrimStart removes leading blanks and tabs.
func (c *Charset) TrimStart(s string) string { return strings.TrimLeft(s, " \t") }

// TrimEnd removes trailing blanks and tabs.
func (c *Charset) TrimEnd(s string) string { return strings.TrimRight(s, " \t") }

// Encode returns the code page bytes for s.
func (c *Charset) Encode(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		b, ok := c.cm.EncodeRune(r)
		if !ok {
			b = Replacement
		}
		out = append(out, b)
	}
	return out
}

// Decode maps code page bytes back to a UTF-8 string.
func (c *Charset) Decode(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, x := range b {
		sb.WriteRune(c.cm.DecodeByte(x))
	}
	return sb.String()
}

// ConsoleSafe decodes an encoded string for a text console. Control
// characters other than newline, tab and carriage return become '?'.
func (c *Charset) ConsoleSafe(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		r := c.cm.DecodeByte(s[i])
		switch {
		case r == '\n' || r == '\t' || r == '\r':
		case unicode.IsControl(r) || r == utf8.RuneError:
			r = Replacement
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// GraphicsSafe is for text drawn into a window: line breaks and tabs become
// spaces and other control characters are dropped.
func (c *Charset) GraphicsSafe(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		r := c.cm.DecodeByte(s[i])
		switch {
		case r == '\n' || r == '\t' || r == '\r':
			r = ' '
		case unicode.IsControl(r):
			continue
		case r == utf8.RuneError:
			r = Replacement
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
