package vm

import "time"

// ---------------------------------------------------------------------------
// Host collaborators
// ---------------------------------------------------------------------------

// Color is a resolved RGB color.
type Color struct {
	R, G, B uint8
}

// Display receives drawing primitives with device coordinates and resolved
// colors. The VM owns pen and palette state; implementations only draw.
type Display interface {
	Open(width, height int)
	Close()
	Clear()
	Dot(x, y int, c Color)
	Line(x1, y1, x2, y2 int, c Color)
	Rect(x1, y1, x2, y2 int, c Color, fill bool)
	Triangle(x1, y1, x2, y2, x3, y3 int, c Color, fill bool)
	ShadedTriangle(x1, y1, x2, y2, x3, y3 int, c1, c2, c3 Color)
	Circle(x, y, r int, c Color, fill bool)
	Text(x, y int, s string, c Color)
	SelectBuffer(n int)
	ShowBuffer(n int)
	Flip()
	SetPalette(index int, c Color)
}

// Input exposes polled controller state.
type Input interface {
	// Held returns the bitmask of directions and buttons currently held.
	Held() uint32
	// Pressed returns the most recent newly pressed key or button name,
	// consuming it.
	Pressed() (string, bool)
}

// Console is the text channel. ReadLine never blocks; it reports false
// while no complete line is available.
type Console interface {
	Write(s string)
	ReadLine() (string, bool)
	Clear()
}

// Charset maps between host text and the language's 8-bit character set.
// VM strings hold one code page byte per character. Encode and Decode
// convert from and to the host's UTF-8; ConsoleSafe and GraphicsSafe
// decode for output.
type Charset interface {
	ToUpper(s string) string
	ToLower(s string) string
	TrimStart(s string) string
	TrimEnd(s string) string
	Encode(s string) []byte
	Decode(b []byte) string
	ConsoleSafe(s string) string
	GraphicsSafe(s string) string
}

// Catalog renders a message key and its positional arguments.
type Catalog interface {
	Get(key string, args ...any) string
}

// Clock supplies wall-clock time to the VM and scheduler.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock is the real wall clock.
var SystemClock Clock = systemClock{}

// Host bundles the collaborators a VM talks to. Display and Input may be
// nil; graphics statements then raise NoWindow and input polls see nothing.
type Host struct {
	Console  Console
	Display  Display
	Input    Input
	Charset  Charset
	Catalog  Catalog
	Compiler CompileService
	Clock    Clock
}
