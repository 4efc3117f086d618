package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/chazu/basil/catalog"
	"github.com/chazu/basil/charset"
	"github.com/chazu/basil/host"
	"github.com/chazu/basil/manifest"
	"github.com/chazu/basil/session"
	"github.com/chazu/basil/vm"
)

// loadProject finds the manifest governing arg, a .bas file or a project
// directory. Without one the defaults apply.
func loadProject(arg string) (*manifest.Manifest, error) {
	dir := "."
	if arg != "" {
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			dir = arg
		} else {
			dir = filepath.Dir(arg)
		}
	}
	m, err := manifest.FindAndLoad(dir)
	if err != nil {
		return manifest.Default(), err
	}
	if m == nil {
		m = manifest.Default()
	}
	return m, nil
}

// sourcePath picks the program to run: arg itself when it names a file,
// otherwise the manifest entry.
func sourcePath(arg string, m *manifest.Manifest) string {
	if arg != "" && strings.EqualFold(filepath.Ext(arg), ".bas") {
		return arg
	}
	if arg != "" {
		if info, err := os.Stat(arg); err == nil && !info.IsDir() {
			return arg
		}
	}
	return m.EntryPath()
}

// run executes src and returns the process exit code.
func run(src string, m *manifest.Manifest, tracePath, replayPath string) int {
	var (
		script  *host.Script
		replay  *host.ReplayConsole
		console vm.Console
		styler  *host.Styler
		term    *host.Console
	)
	if replayPath != "" {
		var err error
		script, err = host.LoadReplay(replayPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if script.Seed != 0 {
			m.Random.Seed = script.Seed
		}
		replay = script.Console()
		console = replay
		styler = host.PlainStyler()
	} else {
		term = host.NewConsole()
		defer term.Close()
		console = term
		styler = host.NewStyler(os.Stderr, host.Width(os.Stderr))
	}

	var rec *host.Recorder
	if tracePath != "" {
		rec = host.NewRecorder(console, m.Language.Version, m.Random.Seed, src)
		console = rec
	}

	compileSvc, release, err := session.NewCompileService(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer release()

	s := session.FromManifest(m, vm.Host{
		Console:  console,
		Charset:  charset.Latin1,
		Catalog:  catalog.English,
		Compiler: compileSvc,
	})
	s.Report = func(r session.Report) {
		if term != nil {
			term.Flush()
		}
		if r.Status {
			fmt.Fprint(os.Stderr, styler.Status(r.Text))
			return
		}
		fmt.Fprint(os.Stderr, styler.Diagnostics(r.Text, r.Worst))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if term != nil {
		term.OnInterrupt = stop
	}

	res, err := s.RunSource(ctx, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	if rec != nil {
		if err := host.SaveTrace(tracePath, rec.Trace()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: saving trace: %v\n", err)
			return 1
		}
	}
	if replay != nil {
		fmt.Print(replay.Output())
		if err := script.Check(replay.Output()); err != nil {
			fmt.Fprintf(os.Stderr, "Replay mismatch: %v\n", err)
			return 2
		}
	}

	if res.State != vm.StateComplete {
		return 1
	}
	return 0
}
