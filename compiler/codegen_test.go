package compiler

import (
	"errors"
	"strings"
	"testing"

	"github.com/chazu/basil/vm"
)

type testConsole struct {
	out   strings.Builder
	lines []string
}

func (c *testConsole) Write(s string) { c.out.WriteString(s) }
func (c *testConsole) Clear()         {}
func (c *testConsole) ReadLine() (string, bool) {
	if len(c.lines) == 0 {
		return "", false
	}
	l := c.lines[0]
	c.lines = c.lines[1:]
	return l, true
}

// run compiles and runs src, feeding lines to INPUT.
func run(t *testing.T, src string, lines ...string) (string, *vm.VM) {
	t.Helper()
	prog, err := CompileSource(src, DefaultVersion)
	if err != nil {
		t.Fatalf("compile %q: %v", src, err)
	}
	con := &testConsole{lines: lines}
	v := vm.New(prog, vm.Host{Console: con, Compiler: Service{}}, vm.Options{})
	if err := v.RunToEnd(1_000_000); err != nil {
		t.Fatalf("run %q: %v", src, err)
	}
	return con.out.String(), v
}

func diagKeys(v *vm.VM) []string {
	var keys []string
	for _, d := range v.Diagnostics() {
		keys = append(keys, d.Key)
	}
	return keys
}

func TestCompileAndRun(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		input []string
		want  string
	}{
		{"for", "for i = 1 to 3: print i;: next: print", nil, "123\n"},
		{"for negative step", "for i = 3 to 1 step -1: print i;: next", nil, "321"},
		{"for skipped", "for i = 5 to 1: print i: next: print i", nil, "5\n"},
		{"for final value", "for i = 1 to 3: next: print i", nil, "4\n"},
		{"while", "x = 0\nwhile x < 3\n  x = x + 1\nwend\nprint x", nil, "3\n"},
		{"repeat", "repeat\n  x = x + 2\nuntil x >= 5\nprint x", nil, "6\n"},
		{"do break", "do\n  x = x + 1\n  if x = 4 then break\nloop\nprint x", nil, "4\n"},
		{"continue", "for i = 1 to 5\n  if i = 3 then continue\n  print i;\nnext", nil, "1245"},
		{"elseif", "a = 2\nif a = 1 then\n print \"one\"\nelseif a = 2 then\n print \"two\"\nelse\n print \"other\"\nendif", nil, "two\n"},
		{"else", "if 0 then print \"a\" else print \"b\"", nil, "b\n"},
		{"gosub", "gosub 100\nprint \"b\"\nend\n100 print \"a\"\nreturn", nil, "a\nb\n"},
		{"on goto", "x = 2\non x goto 10, 20\n10 print \"ten\"\nend\n20 print \"twenty\"", nil, "twenty\n"},
		{"on out of range", "on 7 goto 10\nprint \"fell through\"\n10 end", nil, "fell through\n"},
		{"recursion", "sub fact(n)\n  if n <= 1 then return 1\n  return n * fact(n - 1)\nend sub\nprint fact(5)", nil, "120\n"},
		{"string sub", "sub greet$(n$)\n  return \"hi \" + n$\nend sub\nprint greet$(\"bob\")", nil, "hi bob\n"},
		{"local", "x = 1\nsub f()\n  local x\n  x = 5\nend sub\nf()\nprint x", nil, "1\n"},
		{"global from sub", "x = 1\nsub f()\n  x = 5\nend sub\nf()\nprint x", nil, "5\n"},
		{"static", "sub counter()\n  static n\n  n = n + 1\n  return n\nend sub\ncounter()\ncounter()\nprint counter()", nil, "3\n"},
		{"array param", "dim a(3)\nsub setit(b())\n  b(2) = 7\nend sub\nsetit(a())\nprint a(2)", nil, "7\n"},
		{"data", "data 1, \"x\"\nlabel more\ndata 3\nread a, b$, c\nprint a; b$; c\nrestore more\nread d\nprint d", nil, "1x3\n3\n"},
		{"input", "input \"n? \"; a, b$\nprint a * 2; b$", []string{"4, hello"}, "n? 8hello\n"},
		{"line input", "line input \"> \"; l$\nprint l$", []string{"a, b"}, "> a, b\n"},
		{"concat", "a$ = \"a\" + \"b\": if a$ = \"ab\" then print \"yes\"", nil, "yes\n"},
		{"builtins", "print left$(\"hello\", 2); len(\"abc\")", nil, "he3\n"},
		{"print tab", "print 1, 2", nil, "1\t2\n"},
		{"using", "print 3.14159 using \"#.##\"", nil, "3.14\n"},
		{"compile", "compile \"sub late():print 42:end sub\"\nlate()", nil, "42\n"},
		{"compile sees globals", "x = 5\ncompile \"sub show():print x:end sub\"\nshow()", nil, "5\n"},
		{"compile redefines", "compile \"sub f():print 1:end sub\"\nf()\ncompile \"sub f():print 2:end sub\"\nf()", nil, "1\n2\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, v := run(t, tc.src, tc.input...)
			if got != tc.want {
				t.Errorf("output = %q, want %q", got, tc.want)
			}
			if v.State() != vm.StateComplete {
				t.Errorf("state = %s, diagnostics %v", v.State(), diagKeys(v))
			}
		})
	}
}

func TestRuntimeErrorRecovery(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
		key  string
	}{
		{"division", "print 1/0: print \"next\"", "next\n", vm.MsgDivisionByZero},
		{"condition", "if 1/0 then print \"bad\"\nprint \"ok\"", "ok\n", vm.MsgDivisionByZero},
		{"return", "return\nprint \"x\"", "x\n", vm.MsgReturnWithoutGosub},
		{"compile error", "compile \"print (\": print \"after\"", "after\n", vm.MsgCompileFailed},
		{"out of data", "read a\nprint \"done\"", "done\n", vm.MsgOutOfData},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, v := run(t, tc.src)
			if got != tc.want {
				t.Errorf("output = %q, want %q", got, tc.want)
			}
			keys := diagKeys(v)
			if len(keys) == 0 || keys[0] != tc.key {
				t.Errorf("diagnostics = %v, want %s", keys, tc.key)
			}
		})
	}
}

func TestCompileForLayout(t *testing.T) {
	prog, err := CompileSource("for i = 1 to 2: next", DefaultVersion)
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		op   vm.Opcode
		stmt bool
		arg2 int
	}{
		{vm.OpPushNum, true, 0},
		{vm.OpStoreNum, false, 0},
		{vm.OpPushNum, false, 0},
		{vm.OpPushNum, false, 0},
		{vm.OpPushNum, false, 0},
		{vm.OpForCheck, false, 10},
		{vm.OpPushNum, true, 0},
		{vm.OpPushNum, false, 0},
		{vm.OpPushNum, false, 0},
		{vm.OpForNext, false, 6},
		{vm.OpEnd, true, 0},
	}
	if len(prog.Instructions) != len(want) {
		t.Fatalf("got %d instructions:\n%s", len(prog.Instructions), prog.Disassemble())
	}
	for i, w := range want {
		in := prog.Instructions[i]
		if in.Op != w.op || in.Stmt != w.stmt || in.Arg2 != w.arg2 {
			t.Errorf("%d: got %s stmt=%v arg2=%d, want %s stmt=%v arg2=%d",
				i, in.Op, in.Stmt, in.Arg2, w.op, w.stmt, w.arg2)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		src string
		msg string
	}{
		{"a$ = 1", "type mismatch"},
		{"x = \"a\" + 1", "type mismatch"},
		{"print left$(1, 2)", "type mismatch"},
		{"goto nowhere", "label nowhere not found"},
		{"restore nowhere", "label nowhere not found"},
		{"return 1", "outside of a subroutine"},
		{"sub f$()\n  return 1\nend sub", "type mismatch"},
		{"x = arraydim(5)", "expected an array"},
		{"dim a(2)\nprint a()", "missing array index"},
	}

	for _, tc := range tests {
		_, err := CompileSource(tc.src, DefaultVersion)
		var se *SyntaxError
		if !errors.As(err, &se) || !strings.Contains(se.Msg, tc.msg) {
			t.Errorf("%q: err = %v, want %q", tc.src, err, tc.msg)
		}
	}
}

func TestBuildRelocates(t *testing.T) {
	resp := Build(vm.CompileRequest{
		Version:         2,
		Source:          "goto 10\n10 gosub old\nrestore old",
		InstructionBase: 100,
		DataBase:        4,
		KnownLabels:     []string{"old"},
		LabelTargets:    []int{7},
		DataTargets:     []int{2},
	})
	if resp.Err != nil {
		t.Fatal(resp.Err)
	}
	ins := resp.Program.Instructions
	if ins[0].Arg != 101 {
		t.Errorf("goto 10 -> %d, want 101", ins[0].Arg)
	}
	if ins[1].Arg != 7 {
		t.Errorf("gosub old -> %d, want 7", ins[1].Arg)
	}
	if ins[2].Arg != 2 {
		t.Errorf("restore old -> %d, want 2", ins[2].Arg)
	}
	if got := resp.Program.InstructionLabels["10"]; got != 101 {
		t.Errorf("label 10 at %d, want 101", got)
	}
	if got := resp.Program.DataLabels["10"]; got != 4 {
		t.Errorf("data label 10 at %d, want 4", got)
	}
}

func TestBuildReportsSyntaxError(t *testing.T) {
	resp := Build(vm.CompileRequest{ID: "r1", Version: 2, Source: "print\nwend"})
	if resp.ID != "r1" {
		t.Errorf("id = %q, want r1", resp.ID)
	}
	if resp.Err == nil || resp.Err.Line != 2 {
		t.Errorf("err = %v, want an error on line 2", resp.Err)
	}
	if resp.Program != nil {
		t.Error("program set alongside an error")
	}
}

func TestCompileDocs(t *testing.T) {
	prog, err := CompileSource("docu draws things\nprint 1", DefaultVersion)
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.Docs) != 1 || prog.Docs[0] != "draws things" {
		t.Errorf("docs = %q", prog.Docs)
	}
}
