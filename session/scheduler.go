package session

import (
	"context"
	"time"

	"github.com/tliron/commonlog"

	"github.com/chazu/basil/manifest"
	"github.com/chazu/basil/vm"
)

var log = commonlog.GetLogger("basil.session")

// Config paces the scheduler.
type Config struct {
	FPS             int     // frames per second
	CPUFraction     float64 // share of each frame the VM may use, in (0, 1]
	BatchSize       int     // instructions between clock checks
	MaxInstructions int     // hard cap per frame
}

// DefaultConfig matches the manifest defaults.
func DefaultConfig() Config {
	return ConfigFromManifest(manifest.Default())
}

// ConfigFromManifest reads the [scheduler] section.
func ConfigFromManifest(m *manifest.Manifest) Config {
	return Config{
		FPS:             m.Scheduler.FPS,
		CPUFraction:     m.Scheduler.CPUFraction,
		BatchSize:       m.Scheduler.BatchSize,
		MaxInstructions: m.Scheduler.MaxInstructions,
	}
}

func (c Config) period() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

// FrameStats describes one frame.
type FrameStats struct {
	Instructions int
	Elapsed      time.Duration
	Stop         vm.StopReason
}

// Scheduler drives a VM in fixed-rate frames.
type Scheduler struct {
	vm    *vm.VM
	cfg   Config
	clock vm.Clock

	frames       int
	instructions int

	// OnFrame, when set, runs after every frame.
	OnFrame func(FrameStats)
}

// NewScheduler returns a scheduler for v. Zero config fields take their
// defaults; a nil clock uses the VM's.
func NewScheduler(v *vm.VM, cfg Config, clock vm.Clock) *Scheduler {
	def := DefaultConfig()
	if cfg.FPS <= 0 {
		cfg.FPS = def.FPS
	}
	if cfg.CPUFraction <= 0 || cfg.CPUFraction > 1 {
		cfg.CPUFraction = def.CPUFraction
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.MaxInstructions <= 0 {
		cfg.MaxInstructions = def.MaxInstructions
	}
	if clock == nil {
		clock = v.Host().Clock
	}
	return &Scheduler{vm: v, cfg: cfg, clock: clock}
}

// Frames returns the number of frames run so far.
func (s *Scheduler) Frames() int { return s.frames }

// Instructions returns the number of instructions dispatched so far.
func (s *Scheduler) Instructions() int { return s.instructions }

// Frame runs one frame. It dispatches in batches, checking the clock
// between batches, and stops early when the VM halts, suspends or asks
// for the frame to end.
func (s *Scheduler) Frame() (FrameStats, error) {
	start := s.clock.Now()
	deadline := start.Add(time.Duration(float64(s.cfg.period()) * s.cfg.CPUFraction))

	st := FrameStats{Stop: vm.StopBudget}
	for st.Instructions < s.cfg.MaxInstructions {
		n := s.cfg.BatchSize
		if left := s.cfg.MaxInstructions - st.Instructions; n > left {
			n = left
		}
		ran, why, err := s.vm.Run(n)
		st.Instructions += ran
		st.Stop = why
		if err != nil {
			s.finishFrame(&st, start)
			return st, err
		}
		if why != vm.StopBudget {
			break
		}
		if !s.clock.Now().Before(deadline) {
			break
		}
	}
	s.finishFrame(&st, start)
	return st, nil
}

func (s *Scheduler) finishFrame(st *FrameStats, start time.Time) {
	st.Elapsed = s.clock.Now().Sub(start)
	s.frames++
	s.instructions += st.Instructions
	log.Debugf("frame %d: %d instructions in %s (%s)", s.frames, st.Instructions, st.Elapsed, st.Stop)
	if s.OnFrame != nil {
		s.OnFrame(*st)
	}
}

// Run runs frames until the VM halts or ctx is done. Cancellation is
// checked at frame boundaries and moves the VM to the aborted state. The
// returned error is non-nil only for interpreter defects.
func (s *Scheduler) Run(ctx context.Context) error {
	period := s.cfg.period()
	for !s.vm.Halted() {
		select {
		case <-ctx.Done():
			log.Infof("run aborted after %d frames", s.frames)
			s.vm.Abort()
			return nil
		default:
		}

		st, err := s.Frame()
		if err != nil {
			return err
		}
		if s.vm.Halted() {
			break
		}
		if rest := period - st.Elapsed; rest > 0 {
			s.clock.Sleep(rest)
		}
	}
	log.Infof("run finished (%s) after %d frames, %d instructions", s.vm.State(), s.frames, s.instructions)
	return nil
}
