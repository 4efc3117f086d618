package host

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/basil/compiler"
	"github.com/chazu/basil/vm"
)

const guessProgram = `randomize 3
secret = int(ran(10))
input "name? "; n$
print "hi "; n$
input "guess? "; g
if g = secret then print "yes" else print "no, "; secret`

func runConsole(t *testing.T, con vm.Console) {
	t.Helper()
	prog, err := compiler.CompileSource(guessProgram, compiler.DefaultVersion)
	if err != nil {
		t.Fatal(err)
	}
	v := vm.New(prog, vm.Host{Console: con}, vm.Options{Seed: 11})
	if err := v.RunToEnd(100_000); err != nil {
		t.Fatal(err)
	}
}

func TestRecordAndReplay(t *testing.T) {
	rec := NewRecorder(&ReplayConsole{inputs: []string{"ann", "4"}}, 2, 11, guessProgram)
	runConsole(t, rec)
	trace := rec.Trace()

	if got := trace.Inputs(); len(got) != 2 || got[0] != "ann" || got[1] != "4" {
		t.Errorf("inputs = %q", got)
	}
	if !strings.HasPrefix(trace.Output(), "name? hi ann\nguess? ") {
		t.Errorf("output = %q", trace.Output())
	}

	path := filepath.Join(t.TempDir(), "run.trace")
	if err := SaveTrace(path, trace); err != nil {
		t.Fatal(err)
	}
	script, err := LoadReplay(path)
	if err != nil {
		t.Fatal(err)
	}
	con := script.Console()
	runConsole(t, con)
	if err := script.Check(con.Output()); err != nil {
		t.Error(err)
	}
}

func TestRecorderMergesWrites(t *testing.T) {
	rec := NewRecorder(&ReplayConsole{}, 2, 0, "")
	rec.Write("a")
	rec.Write("b")
	rec.ReadLine()
	rec.Write("c")
	rec.Clear()

	kinds := []string{EventOutput, EventInput, EventOutput, EventClear}
	tr := rec.Trace()
	if len(tr.Events) != len(kinds) {
		t.Fatalf("events = %+v", tr.Events)
	}
	for i, k := range kinds {
		if tr.Events[i].Kind != k {
			t.Errorf("event %d = %s, want %s", i, tr.Events[i].Kind, k)
		}
	}
	if tr.Events[0].Text != "ab" {
		t.Errorf("merged output = %q", tr.Events[0].Text)
	}
}

func TestReadTraceRejectsGarbage(t *testing.T) {
	if _, err := ReadTrace(bytes.NewReader([]byte("not cbor"))); err == nil {
		t.Error("expected an error")
	}
}

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.toml")
	src := "seed = 7\ninput = [\"5\", \"x\"]\nexpect = \"\"\"\nn? 10\n\"\"\"\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadReplay(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Seed != 7 || len(s.Input) != 2 || s.Expect != "n? 10\n" {
		t.Errorf("script = %+v", s)
	}
	if err := s.Check("n? 10\n"); err != nil {
		t.Error(err)
	}
	if err := s.Check("n? 11\n"); err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Errorf("Check = %v, want a line 1 mismatch", err)
	}
}
