package compiler

import (
	"testing"
	"time"

	"github.com/chazu/basil/vm"
)

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time        { return c.now }
func (c *stepClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

type keyInput struct{ keys []string }

func (k *keyInput) Held() uint32 { return 5 }
func (k *keyInput) Pressed() (string, bool) {
	if len(k.keys) == 0 {
		return "", false
	}
	key := k.keys[0]
	k.keys = k.keys[1:]
	return key, true
}

// runWithHost is run with a fake clock and input.
func runWithHost(t *testing.T, src string, input vm.Input) (string, *vm.VM, *stepClock) {
	t.Helper()
	prog, err := CompileSource(src, DefaultVersion)
	if err != nil {
		t.Fatalf("compile %q: %v", src, err)
	}
	con := &testConsole{}
	clk := &stepClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	v := vm.New(prog, vm.Host{Console: con, Input: input, Clock: clk, Compiler: Service{}}, vm.Options{})
	if err := v.RunToEnd(1_000_000); err != nil {
		t.Fatalf("run %q: %v", src, err)
	}
	return con.out.String(), v, clk
}

func TestBuiltins(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"abs(-2.5)", "2.5"},
		{"sgn(-3)", "-1"},
		{"sgn(0)", "0"},
		{"int(-2.5)", "-2"},
		{"frac(2.25)", "0.25"},
		{"sqrt(16)", "4"},
		{"sqr(3)", "9"},
		{"exp(0)", "1"},
		{"log(1)", "0"},
		{"log(8, 2)", "3"},
		{"sin(0)", "0"},
		{"cos(0)", "1"},
		{"tan(0)", "0"},
		{"asin(1) * 2", "3.141592654"},
		{"acos(1)", "0"},
		{"atan(1, 1) * 4", "3.141592654"},
		{"min(3, 2)", "2"},
		{"max(3, 2)", "3"},
		{"len(\"abc\")", "3"},
		{"len(\"\")", "0"},
		{"val(\"12.5abc\")", "12.5"},
		{"val(\"abc\")", "0"},
		{"asc(\"A\")", "65"},
		{"asc(\"\")", "0"},
		{"instr(\"hello\", \"l\")", "3"},
		{"instr(\"hello\", \"l\", 4)", "4"},
		{"instr(\"hello\", \"z\")", "0"},
		{"instr(\"hello\", \"l\", 9)", "0"},
		{"rinstr(\"hello\", \"l\")", "4"},
		{"rinstr(\"hello\", \"l\", 3)", "3"},
		{"dec(\"ff\")", "255"},
		{"dec(\"101\", 2)", "5"},
		{"and_bits(12, 10)", "8"},
		{"or_bits(12, 10)", "14"},
		{"xor_bits(12, 10)", "6"},
		{"pi", "3.141592654"},
		{"joy(0)", "5"},
		{"left$(\"hello\", 2)", "he"},
		{"left$(\"hello\", 99)", "hello"},
		{"right$(\"hello\", 3)", "llo"},
		{"mid$(\"hello\", 2, 3)", "ell"},
		{"mid$(\"hello\", 4)", "lo"},
		{"mid$(\"hello\", 9, 2)", ""},
		{"str$(3.5)", "3.5"},
		{"str$(3.14159, \"%.2f\")", "3.14"},
		{"str$(7, \"###\")", "  7"},
		{"chr$(65)", "A"},
		{"upper$(\"abc\")", "ABC"},
		{"lower$(\"ABC\")", "abc"},
		{"\"[\" + ltrim$(\"  a \") + \"]\"", "[a ]"},
		{"\"[\" + rtrim$(\" a  \") + \"]\"", "[ a]"},
		{"\"[\" + trim$(\"\ta \") + \"]\"", "[a]"},
		{"hex$(255)", "ff"},
		{"bin$(5)", "101"},
		{"repeat$(\"ab\", 3)", "ababab"},
		{"repeat$(\"ab\", 0)", ""},
		{"time$", "00-00-00"},
		{"date$", "Mon-01-01-2024"},
	}

	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			got, v, _ := runWithHost(t, "print "+tc.expr, &keyInput{})
			if got != tc.want+"\n" {
				t.Errorf("print %s = %q, want %q", tc.expr, got, tc.want+"\n")
			}
			if keys := diagKeys(v); len(keys) != 0 {
				t.Errorf("diagnostics %v", keys)
			}
		})
	}
}

func TestBuiltinBadArguments(t *testing.T) {
	tests := []struct {
		expr string
		key  string
	}{
		{"sqrt(-1)", vm.MsgBadArgument},
		{"sqr(-1)", vm.MsgBadArgument},
		{"log(0)", vm.MsgBadArgument},
		{"log(8, 1)", vm.MsgBadArgument},
		{"asin(2)", vm.MsgBadArgument},
		{"acos(-2)", vm.MsgBadArgument},
		{"dec(\"zz\", 2)", vm.MsgBadArgument},
		{"dec(\"1\", 40)", vm.MsgBadArgument},
		{"chr$(300)", vm.MsgBadArgument},
		{"chr$(-1)", vm.MsgBadArgument},
		{"repeat$(\"ab\", -1)", vm.MsgBadArgument},
		{"str$(1, \"%q\")", vm.MsgFormatError},
	}

	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			got, v, _ := runWithHost(t, "print "+tc.expr+"\nprint \"next\"", &keyInput{})
			if got != "next\n" {
				t.Errorf("output = %q, want the statement abandoned", got)
			}
			keys := diagKeys(v)
			if len(keys) != 1 || keys[0] != tc.key {
				t.Errorf("diagnostics = %v, want %s", keys, tc.key)
			}
		})
	}
}

func TestBuiltinArrays(t *testing.T) {
	src := `dim a(2, 3)
print arraydim(a()); arraysize(a(), 1); arraysize(a(), 2)
dim w$(1)
n = split("one two  three", w$())
print n; arraysize(w$(), 1); w$(1); w$(3)
n = split("x,,y", w$(), ",")
print n; w$(2)
print arraysize(a(), 3)`
	got, v, _ := runWithHost(t, src, &keyInput{})
	want := "223\n33onethree\n2y\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	keys := diagKeys(v)
	if len(keys) != 1 || keys[0] != vm.MsgBadArgument {
		t.Errorf("diagnostics = %v, want one %s", keys, vm.MsgBadArgument)
	}
}

func TestBuiltinNumParams(t *testing.T) {
	src := `sub f(a, b$)
  print numparams
end sub
f(1, "x")`
	got, _, _ := runWithHost(t, src, &keyInput{})
	if got != "2\n" {
		t.Errorf("output = %q, want 2", got)
	}
}

func TestBuiltinCharacterRoundTrip(t *testing.T) {
	got, _, _ := runWithHost(t, "a$ = chr$(200)\nprint asc(a$); len(a$); asc(upper$(\"q\"))", &keyInput{})
	if got != "200181\n" {
		t.Errorf("output = %q", got)
	}
}

func TestBuiltinRan(t *testing.T) {
	src := `for i = 1 to 50
  x = ran(10)
  if x < 0 or x >= 10 then print "out of range"
  y = ran()
  if y < 0 or y >= 1 then print "out of range"
next`
	got, _, _ := runWithHost(t, src, &keyInput{})
	if got != "" {
		t.Errorf("output = %q", got)
	}
}

func TestInkey(t *testing.T) {
	got, _, _ := runWithHost(t, "print inkey$", &keyInput{keys: []string{"up"}})
	if got != "up\n" {
		t.Errorf("pressed key: output = %q", got)
	}

	got, _, clk := runWithHost(t, "print \"[\" + inkey$(0.5) + \"]\"", &keyInput{})
	if got != "[]\n" {
		t.Errorf("timeout: output = %q", got)
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if waited := clk.now.Sub(start); waited < 500*time.Millisecond {
		t.Errorf("inkey$ gave up after %s, want 0.5s", waited)
	}
}
