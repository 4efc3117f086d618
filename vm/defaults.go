package vm

import (
	"fmt"
	"strings"
)

// Inert collaborators used when a Host leaves a slot empty.

type nullConsole struct{}

func (nullConsole) Write(string)             {}
func (nullConsole) ReadLine() (string, bool) { return "", false }
func (nullConsole) Clear()                   {}

type nullInput struct{}

func (nullInput) Held() uint32            { return 0 }
func (nullInput) Pressed() (string, bool) { return "", false }

type nullDisplay struct{}

func (nullDisplay) Open(int, int)                                      {}
func (nullDisplay) Close()                                             {}
func (nullDisplay) Clear()                                             {}
func (nullDisplay) Dot(int, int, Color)                                {}
func (nullDisplay) Line(int, int, int, int, Color)                     {}
func (nullDisplay) Rect(int, int, int, int, Color, bool)               {}
func (nullDisplay) Triangle(int, int, int, int, int, int, Color, bool) {}
func (nullDisplay) ShadedTriangle(int, int, int, int, int, int, Color, Color, Color) {
}
func (nullDisplay) Circle(int, int, int, Color, bool) {}
func (nullDisplay) Text(int, int, string, Color)      {}
func (nullDisplay) SelectBuffer(int)                  {}
func (nullDisplay) ShowBuffer(int)                    {}
func (nullDisplay) Flip()                             {}
func (nullDisplay) SetPalette(int, Color)             {}

// plainCharset treats bytes as the first 256 code points and maps case
// for ASCII letters only.
type plainCharset struct{}

func (plainCharset) ToUpper(s string) string {
	return mapBytes(s, func(b byte) byte {
		if 'a' <= b && b <= 'z' {
			return b - 'a' + 'A'
		}
		return b
	})
}

func (plainCharset) ToLower(s string) string {
	return mapBytes(s, func(b byte) byte {
		if 'A' <= b && b <= 'Z' {
			return b - 'A' + 'a'
		}
		return b
	})
}

func (plainCharset) TrimStart(s string) string { return strings.TrimLeft(s, " \t") }
func (plainCharset) TrimEnd(s string) string   { return strings.TrimRight(s, " \t") }

func (plainCharset) Encode(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xff {
			r = '?'
		}
		out = append(out, byte(r))
	}
	return out
}

func (plainCharset) Decode(b []byte) string {
	rs := make([]rune, len(b))
	for i, x := range b {
		rs[i] = rune(x)
	}
	return string(rs)
}

func (c plainCharset) ConsoleSafe(s string) string  { return c.Decode([]byte(s)) }
func (c plainCharset) GraphicsSafe(s string) string { return c.Decode([]byte(s)) }

func mapBytes(s string, f func(byte) byte) string {
	out := []byte(s)
	for i, b := range out {
		out[i] = f(b)
	}
	return string(out)
}

// keyCatalog renders "Key: arg, arg". It keeps the VM usable without a
// real catalog and makes test expectations independent of wording.
type keyCatalog struct{}

func (keyCatalog) Get(key string, args ...any) string {
	if len(args) == 0 {
		return key
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	return key + ": " + strings.Join(parts, ", ")
}

// defaultPalette is the 16-color base palette repeated across 256 slots.
func defaultPalette(i int) Color {
	base := [16]Color{
		{0, 0, 0}, {255, 255, 255}, {255, 0, 0}, {0, 255, 0},
		{0, 0, 255}, {255, 255, 0}, {0, 255, 255}, {255, 0, 255},
		{128, 128, 128}, {192, 192, 192}, {128, 0, 0}, {0, 128, 0},
		{0, 0, 128}, {128, 128, 0}, {0, 128, 128}, {128, 0, 128},
	}
	return base[i%16]
}
