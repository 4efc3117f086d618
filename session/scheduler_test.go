package session

import (
	"context"
	"testing"
	"time"

	"github.com/chazu/basil/compiler"
	"github.com/chazu/basil/vm"
)

func newVM(t *testing.T, src string, clock vm.Clock) (*vm.VM, *scriptConsole) {
	t.Helper()
	prog, err := compiler.CompileSource(src, compiler.DefaultVersion)
	if err != nil {
		t.Fatal(err)
	}
	con := &scriptConsole{}
	return vm.New(prog, vm.Host{Console: con, Clock: clock}, vm.Options{}), con
}

func TestSchedulerFlipEndsFrame(t *testing.T) {
	clock := newFakeClock()
	v, _ := newVM(t, "open window 10, 10\nfor i = 1 to 3\n  flip\nnext", clock)
	s := NewScheduler(v, Config{FPS: 50}, clock)

	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.Frames() != 4 {
		t.Errorf("frames = %d, want 4", s.Frames())
	}
	if v.State() != vm.StateComplete {
		t.Errorf("state = %s", v.State())
	}
	// Three full periods were slept out between frames.
	if clock.slept != 3*20*time.Millisecond {
		t.Errorf("slept %s, want 60ms", clock.slept)
	}
}

func TestSchedulerWaitSuspends(t *testing.T) {
	clock := newFakeClock()
	v, con := newVM(t, "wait 0.1\nprint \"done\"", clock)
	s := NewScheduler(v, Config{FPS: 100}, clock)

	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if con.out.String() != "done\n" {
		t.Errorf("output = %q", con.out.String())
	}
	if s.Frames() < 10 || s.Frames() > 12 {
		t.Errorf("frames = %d, want about 11", s.Frames())
	}
}

func TestSchedulerInstructionCap(t *testing.T) {
	clock := newFakeClock()
	v, _ := newVM(t, "do\nloop", clock)
	s := NewScheduler(v, Config{FPS: 60, BatchSize: 7, MaxInstructions: 50}, clock)

	st, err := s.Frame()
	if err != nil {
		t.Fatal(err)
	}
	if st.Instructions != 50 || st.Stop != vm.StopBudget {
		t.Errorf("frame = %+v, want 50 instructions", st)
	}
}

func TestSchedulerAbort(t *testing.T) {
	clock := newFakeClock()
	v, _ := newVM(t, "do\nloop", clock)
	s := NewScheduler(v, Config{MaxInstructions: 100}, clock)

	ctx, cancel := context.WithCancel(context.Background())
	frames := 0
	s.OnFrame = func(FrameStats) {
		frames++
		if frames == 3 {
			cancel()
		}
	}
	if err := s.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if v.State() != vm.StateAbort {
		t.Errorf("state = %s, want aborted", v.State())
	}
	if s.Frames() != 3 {
		t.Errorf("frames = %d, want 3", s.Frames())
	}
}

func TestNewSchedulerDefaults(t *testing.T) {
	v, _ := newVM(t, "end", nil)
	s := NewScheduler(v, Config{CPUFraction: 3}, nil)
	def := DefaultConfig()
	if s.cfg != def {
		t.Errorf("config = %+v, want %+v", s.cfg, def)
	}
}
