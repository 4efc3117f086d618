package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadProject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "basil.toml"), "[project]\nname = \"demo\"\nentry = \"prog.bas\"\n\n[random]\nseed = 5\n")
	writeFile(t, filepath.Join(dir, "prog.bas"), "print 1\n")

	m, err := loadProject(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Project.Name != "demo" || m.Random.Seed != 5 {
		t.Errorf("manifest = %+v", m)
	}
	abs, _ := filepath.Abs(dir)
	if got := sourcePath(dir, m); got != filepath.Join(abs, "prog.bas") {
		t.Errorf("sourcePath(dir) = %q", got)
	}
	other := filepath.Join(dir, "other.bas")
	if got := sourcePath(other, m); got != other {
		t.Errorf("sourcePath(file) = %q", got)
	}
}

func TestLoadProjectWithoutManifest(t *testing.T) {
	m, err := loadProject(filepath.Join(t.TempDir(), "x.bas"))
	if err != nil {
		t.Fatal(err)
	}
	if m.Project.Entry != "main.bas" || m.Language.Version != 2 {
		t.Errorf("defaults not applied: %+v", m)
	}
}

func TestRunReplayScript(t *testing.T) {
	dir := t.TempDir()
	m, _ := loadProject(dir)
	src := "input \"n? \"; n\nprint n * 2"

	ok := filepath.Join(dir, "ok.toml")
	writeFile(t, ok, "input = [\"5\"]\nexpect = \"n? 10\\n\"\n")
	if code := run(src, m, "", ok); code != 0 {
		t.Errorf("matching replay exit code = %d, want 0", code)
	}

	bad := filepath.Join(dir, "bad.toml")
	writeFile(t, bad, "input = [\"5\"]\nexpect = \"n? 11\\n\"\n")
	if code := run(src, m, "", bad); code != 2 {
		t.Errorf("mismatching replay exit code = %d, want 2", code)
	}
}

func TestRunRecordsTrace(t *testing.T) {
	dir := t.TempDir()
	m, _ := loadProject(dir)
	src := "for i = 1 to 3: print i;: next"

	trace := filepath.Join(dir, "run.trace")
	script := filepath.Join(dir, "in.toml")
	writeFile(t, script, "input = []\n")
	if code := run(src, m, trace, script); code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if code := run(src, m, "", trace); code != 0 {
		t.Errorf("replaying the trace exit code = %d, want 0", code)
	}
}

func TestInspect(t *testing.T) {
	if code := inspect("print 1", 2, true, true, false); code != 0 {
		t.Errorf("inspect valid program = %d", code)
	}
	if code := inspect("print (", 2, true, false, false); code != 1 {
		t.Errorf("inspect invalid program = %d, want 1", code)
	}
}
