// Package manifest handles basil.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the project file.
const FileName = "basil.toml"

// Compiler modes.
const (
	CompilerDirect  = "direct"
	CompilerWorker  = "worker"
	CompilerGRPC    = "grpc"
	CompilerConnect = "connect"
)

// Manifest represents a basil.toml project configuration.
type Manifest struct {
	Project     Project     `toml:"project"`
	Language    Language    `toml:"language"`
	Scheduler   Scheduler   `toml:"scheduler"`
	Diagnostics Diagnostics `toml:"diagnostics"`
	Compiler    Compiler    `toml:"compiler"`
	Random      Random      `toml:"random"`

	// Dir is the directory containing the basil.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Entry   string `toml:"entry"`
}

// Language selects the dialect.
type Language struct {
	Version int `toml:"version"`
}

// Scheduler configures frame pacing.
type Scheduler struct {
	FPS             int     `toml:"fps"`
	CPUFraction     float64 `toml:"cpu-fraction"`
	BatchSize       int     `toml:"batch-size"`
	MaxInstructions int     `toml:"max-instructions"`
}

// Diagnostics configures runtime error reporting.
type Diagnostics struct {
	MaxMessageLength int `toml:"max-message-length"`
	MaxErrors        int `toml:"max-errors"`
}

// Compiler selects where runtime compile requests go.
type Compiler struct {
	Mode    string `toml:"mode"`
	Addr    string `toml:"addr"`
	Timeout string `toml:"timeout"`
}

// Random seeds the random source.
type Random struct {
	Seed int64 `toml:"seed"`
}

// Default returns a manifest with every default applied.
func Default() *Manifest {
	m := &Manifest{}
	m.applyDefaults()
	return m
}

func (m *Manifest) applyDefaults() {
	if m.Project.Entry == "" {
		m.Project.Entry = "main.bas"
	}
	if m.Language.Version == 0 {
		m.Language.Version = 2
	}
	if m.Scheduler.FPS == 0 {
		m.Scheduler.FPS = 60
	}
	if m.Scheduler.CPUFraction == 0 {
		m.Scheduler.CPUFraction = 0.8
	}
	if m.Scheduler.BatchSize == 0 {
		m.Scheduler.BatchSize = 1000
	}
	if m.Scheduler.MaxInstructions == 0 {
		m.Scheduler.MaxInstructions = 5_000_000
	}
	if m.Diagnostics.MaxMessageLength == 0 {
		m.Diagnostics.MaxMessageLength = 200
	}
	if m.Diagnostics.MaxErrors == 0 {
		m.Diagnostics.MaxErrors = 20
	}
	if m.Compiler.Mode == "" {
		m.Compiler.Mode = CompilerDirect
	}
	if m.Compiler.Timeout == "" {
		m.Compiler.Timeout = "10s"
	}
}

// Validate reports settings that cannot work.
func (m *Manifest) Validate() error {
	if m.Language.Version < 1 || m.Language.Version > 2 {
		return fmt.Errorf("language version %d not supported", m.Language.Version)
	}
	if m.Scheduler.CPUFraction <= 0 || m.Scheduler.CPUFraction > 1 {
		return fmt.Errorf("cpu-fraction must be in (0, 1], got %g", m.Scheduler.CPUFraction)
	}
	switch m.Compiler.Mode {
	case CompilerDirect, CompilerWorker:
	case CompilerGRPC, CompilerConnect:
		if m.Compiler.Addr == "" {
			return fmt.Errorf("compiler mode %s needs an addr", m.Compiler.Mode)
		}
	default:
		return fmt.Errorf("unknown compiler mode %q", m.Compiler.Mode)
	}
	if _, err := time.ParseDuration(m.Compiler.Timeout); err != nil {
		return fmt.Errorf("compiler timeout: %w", err)
	}
	return nil
}

// CompileTimeout returns the parsed compiler timeout.
func (m *Manifest) CompileTimeout() time.Duration {
	d, err := time.ParseDuration(m.Compiler.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// Load parses a basil.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	m.applyDefaults()
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find a basil.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// EntryPath returns the absolute path of the entry program.
func (m *Manifest) EntryPath() string {
	if filepath.IsAbs(m.Project.Entry) {
		return m.Project.Entry
	}
	return filepath.Join(m.Dir, m.Project.Entry)
}
