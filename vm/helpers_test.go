package vm

import (
	"strings"
	"testing"
	"time"
)

type fakeConsole struct {
	out   strings.Builder
	lines []string
}

func (c *fakeConsole) Write(s string) { c.out.WriteString(s) }
func (c *fakeConsole) Clear()         {}
func (c *fakeConsole) ReadLine() (string, bool) {
	if len(c.lines) == 0 {
		return "", false
	}
	l := c.lines[0]
	c.lines = c.lines[1:]
	return l, true
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time        { return c.now }
func (c *fakeClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

// asm builds a program from instructions. Instructions on a new line
// number start a statement.
func asm(ins ...Instruction) *Program {
	p := NewProgram()
	last := 0
	for i := range ins {
		if ins[i].Line == 0 {
			ins[i].Line = last
		}
		if ins[i].Line != last {
			ins[i].Stmt = true
			last = ins[i].Line
		}
	}
	p.Instructions = ins
	p.Version = 2
	return p
}

func newTestVM(t *testing.T, p *Program, opts Options) (*VM, *fakeConsole, *fakeClock) {
	t.Helper()
	con := &fakeConsole{}
	clk := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(p, Host{Console: con, Clock: clk}, opts), con, clk
}

func keys(ds []Diagnostic) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Key
	}
	return out
}
