package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/chazu/basil/manifest"
	"github.com/chazu/basil/vm"
)

// fakeClock only moves when slept on.
type fakeClock struct {
	now   time.Time
	slept time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Sleep(d time.Duration) {
	c.now = c.now.Add(d)
	c.slept += d
}

type scriptConsole struct {
	out   strings.Builder
	lines []string
}

func (c *scriptConsole) Write(s string) { c.out.WriteString(s) }
func (c *scriptConsole) Clear()         {}
func (c *scriptConsole) ReadLine() (string, bool) {
	if len(c.lines) == 0 {
		return "", false
	}
	l := c.lines[0]
	c.lines = c.lines[1:]
	return l, true
}

type runOutput struct {
	console string
	report  string
	res     *Result
}

func runSession(t *testing.T, src string, input ...string) runOutput {
	t.Helper()
	con := &scriptConsole{lines: input}
	var report strings.Builder
	s := &Session{
		Version: 2,
		Host:    vm.Host{Console: con, Clock: newFakeClock()},
		Report:  func(r Report) { report.WriteString(r.Text) },
	}
	res, err := s.RunSource(context.Background(), src)
	if err != nil {
		t.Fatalf("run %q: %v", src, err)
	}
	return runOutput{console: con.out.String(), report: report.String(), res: res}
}

func TestScenarioForLoop(t *testing.T) {
	out := runSession(t, "for i = 1 to 3 : print i : next i")
	if out.console != "1\n2\n3\n" {
		t.Errorf("output = %q, want 1 2 3 on separate lines", out.console)
	}
	if out.res.State != vm.StateComplete {
		t.Errorf("state = %s", out.res.State)
	}
	if !strings.Contains(out.report, "---Program done") {
		t.Errorf("report = %q", out.report)
	}
}

func TestScenarioReturnWithoutGosub(t *testing.T) {
	out := runSession(t, "print \"a\"\nreturn\nprint \"b\"")
	if out.console != "a\nb\n" {
		t.Errorf("output = %q, want execution to continue", out.console)
	}
	if len(out.res.Diagnostics) != 1 || out.res.Diagnostics[0].Key != vm.MsgReturnWithoutGosub {
		t.Fatalf("diagnostics = %+v", out.res.Diagnostics)
	}
	if !strings.Contains(out.report, "---Error in line 2: return without gosub") {
		t.Errorf("report = %q", out.report)
	}
}

func TestScenarioRecompileRedefinesSub(t *testing.T) {
	src := `total = 10
sub show()
  print "old"; total
end sub
show()
compile "sub show():print \"new\"; total:end sub"
total = total + 1
show()`
	out := runSession(t, src)
	if out.console != "old10\nnew11\n" {
		t.Errorf("output = %q", out.console)
	}
}

func TestScopeIsolation(t *testing.T) {
	src := `x = 7
sub a()
  local x
  x = 99
  print x
end sub
a()
print x`
	out := runSession(t, src)
	if out.console != "99\n7\n" {
		t.Errorf("output = %q", out.console)
	}
}

func TestStaticPersistsUnderRecursion(t *testing.T) {
	src := `sub walk(depth)
  static calls
  calls = calls + 1
  if depth > 0 then walk(depth - 1)
  return calls
end sub
print walk(3)
print walk(0)
calls = 100
print walk(0)`
	out := runSession(t, src)
	if out.console != "4\n5\n6\n" {
		t.Errorf("output = %q, want 4 5 6", out.console)
	}
}

func TestArrayGrowPreservesData(t *testing.T) {
	src := `dim a(3)
a(0) = 1: a(1) = 2: a(2) = 3
dim a(5)
for i = 0 to 4: print a(i);: next`
	out := runSession(t, src)
	if out.console != "12300" {
		t.Errorf("output = %q", out.console)
	}
}

func TestArrayShrinkRejected(t *testing.T) {
	tests := []struct {
		redim string
		key   string
	}{
		{"dim a(2)", vm.MsgArrayShrink},
		{"dim a(3, 3)", vm.MsgDimCountChanged},
	}

	for _, tc := range tests {
		out := runSession(t, "dim a(3)\na(3) = 5\n"+tc.redim+"\nprint a(3)")
		if out.console != "5\n" {
			t.Errorf("%s: output = %q, want the array untouched", tc.redim, out.console)
		}
		diags := out.res.Diagnostics
		if len(diags) != 1 || diags[0].Key != tc.key || diags[0].Severity != vm.SeverityError {
			t.Errorf("%s: diagnostics = %+v, want %s", tc.redim, diags, tc.key)
		}
	}
}

func TestDeterministicReplay(t *testing.T) {
	src := `randomize 42
input "n? "; n
for i = 1 to n
  print int(ran(100)); " ";
next
print
print str$(ran(), "%.4f")`
	first := runSession(t, src, "5")
	second := runSession(t, src, "5")
	if first.console != second.console {
		t.Errorf("runs differ:\n%q\n%q", first.console, second.console)
	}
}

func TestFatalErrorReport(t *testing.T) {
	out := runSession(t, "print 1\nerror \"gave up\"\nprint 2")
	if out.console != "1\n" {
		t.Errorf("output = %q", out.console)
	}
	for _, want := range []string{"---Fatal in line 2: gave up", "---Program cannot continue", "---Program stopped"} {
		if !strings.Contains(out.report, want) {
			t.Errorf("report missing %q:\n%s", want, out.report)
		}
	}
}

func TestSyntaxErrorStopsBeforeRunning(t *testing.T) {
	s := &Session{Version: 2}
	_, err := s.RunSource(context.Background(), "print (")
	var se *vm.SyntaxError
	if err == nil || !strings.Contains(err.Error(), "compile") {
		t.Fatalf("err = %v", err)
	}
	if !errors.As(err, &se) || se.Line != 1 {
		t.Errorf("err = %v, want a line 1 syntax error", err)
	}
}

func TestFromManifest(t *testing.T) {
	m := manifest.Default()
	m.Scheduler.FPS = 30
	m.Random.Seed = 9
	s := FromManifest(m, vm.Host{})
	if s.Config.FPS != 30 || s.VMOptions.Seed != 9 || s.Version != 2 {
		t.Errorf("session = %+v", s)
	}
}

func TestStringsUseTheCodePage(t *testing.T) {
	src := `print chr$(233)
print asc("é")
print len("é")
print upper$(chr$(233))
input a$
print len(a$); " "; upper$(a$); " "; asc(mid$(a$, 2, 1))`
	out := runSession(t, src, "été")
	want := "é\n233\n1\nÉ\n3 ÉTÉ 116\n"
	if out.console != want {
		t.Errorf("output = %q, want %q", out.console, want)
	}
}

func TestUserErrorTextIsDecoded(t *testing.T) {
	out := runSession(t, "error \"échec\"")
	if !strings.Contains(out.report, "in line 1: échec") {
		t.Errorf("report = %q", out.report)
	}
}

func TestSameLineDiagnosticsCollapseAcrossFrames(t *testing.T) {
	out := runSession(t, "open window 10, 10: print 1/0: flip: print 1/0: flip\nprint \"end\"")
	if len(out.res.Diagnostics) != 2 {
		t.Fatalf("diagnostics = %v", out.res.Diagnostics)
	}
	if n := strings.Count(out.report, "---Error in line 1"); n != 1 {
		t.Errorf("line 1 reported %d times:\n%s", n, out.report)
	}
}

func TestOversizedValuesAreFatal(t *testing.T) {
	tests := []struct {
		name string
		src  string
		key  string
	}{
		{"array product", "dim a(3, 2^62)\nprint a(0, 5)", vm.MsgArrayTooLarge},
		{"repeat$", "a$ = repeat$(\"ab\", 2^62)", vm.MsgStringTooLong},
		{"concatenation", "a$ = repeat$(\"x\", 6000000)\nb$ = a$ + a$", vm.MsgStringTooLong},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := runSession(t, tc.src)
			if out.res.State != vm.StateError {
				t.Errorf("state = %s", out.res.State)
			}
			d := out.res.Diagnostics
			if len(d) != 1 || d[0].Key != tc.key || d[0].Severity != vm.SeverityFatal {
				t.Errorf("diagnostics = %+v, want fatal %s", d, tc.key)
			}
		})
	}
}
