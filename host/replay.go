package host

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Script drives a non-interactive run. It is written by hand as TOML:
//
//	seed = 7
//	input = ["5", "hello"]
//	expect = """
//	n? 10
//	"""
//
// or derived from a recorded trace.
type Script struct {
	Seed   int64    `toml:"seed"`
	Input  []string `toml:"input"`
	Expect string   `toml:"expect"`
}

// LoadScript reads a TOML replay script.
func LoadScript(path string) (*Script, error) {
	var s Script
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return nil, fmt.Errorf("replay script %s: %w", path, err)
	}
	return &s, nil
}

// ScriptFromTrace turns a recording into a script that expects the same
// output.
func ScriptFromTrace(t *Trace) *Script {
	return &Script{Seed: t.Seed, Input: t.Inputs(), Expect: t.Output()}
}

// LoadReplay reads a .toml script or a recorded trace.
func LoadReplay(path string) (*Script, error) {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return LoadScript(path)
	}
	t, err := LoadTrace(path)
	if err != nil {
		return nil, err
	}
	return ScriptFromTrace(t), nil
}

// Console returns a console fed from the script's inputs.
func (s *Script) Console() *ReplayConsole {
	return &ReplayConsole{inputs: append([]string(nil), s.Input...)}
}

// Check compares output against Expect. An empty Expect accepts anything.
func (s *Script) Check(output string) error {
	if s.Expect == "" || output == s.Expect {
		return nil
	}
	got := strings.Split(output, "\n")
	want := strings.Split(s.Expect, "\n")
	for i := 0; i < len(got) || i < len(want); i++ {
		var g, w string
		if i < len(got) {
			g = got[i]
		}
		if i < len(want) {
			w = want[i]
		}
		if g != w {
			return fmt.Errorf("output differs at line %d: got %q, want %q", i+1, g, w)
		}
	}
	return errors.New("output differs")
}

// ReplayConsole is a vm.Console with scripted input. Once the inputs run
// out every read yields an empty line.
type ReplayConsole struct {
	inputs []string
	out    strings.Builder
}

// Write implements vm.Console.
func (c *ReplayConsole) Write(s string) { c.out.WriteString(s) }

// ReadLine implements vm.Console.
func (c *ReplayConsole) ReadLine() (string, bool) {
	if len(c.inputs) == 0 {
		return "", true
	}
	l := c.inputs[0]
	c.inputs = c.inputs[1:]
	return l, true
}

// Clear implements vm.Console.
func (c *ReplayConsole) Clear() {}

// Output returns everything written so far.
func (c *ReplayConsole) Output() string { return c.out.String() }
