package host

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/basil/vm"
)

// Trace event kinds.
const (
	EventOutput = "out"
	EventInput  = "in"
	EventClear  = "clear"
)

// Event is one console interaction.
type Event struct {
	Kind string `cbor:"k"`
	Text string `cbor:"t,omitempty"`
}

// Trace is a recorded run. Replaying its inputs against the same program
// and seed reproduces its output.
type Trace struct {
	Language int     `cbor:"language"`
	Seed     int64   `cbor:"seed"`
	Source   string  `cbor:"source,omitempty"`
	Events   []Event `cbor:"events"`
}

// Inputs returns the recorded input lines in order.
func (t *Trace) Inputs() []string {
	var out []string
	for _, e := range t.Events {
		if e.Kind == EventInput {
			out = append(out, e.Text)
		}
	}
	return out
}

// Output returns everything the program wrote.
func (t *Trace) Output() string {
	var n int
	for _, e := range t.Events {
		if e.Kind == EventOutput {
			n += len(e.Text)
		}
	}
	b := make([]byte, 0, n)
	for _, e := range t.Events {
		if e.Kind == EventOutput {
			b = append(b, e.Text...)
		}
	}
	return string(b)
}

var traceEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("host: failed to create CBOR enc mode: %v", err))
	}
	traceEncMode = em
}

// WriteTrace encodes t to w.
func WriteTrace(w io.Writer, t *Trace) error {
	return traceEncMode.NewEncoder(w).Encode(t)
}

// ReadTrace decodes one trace from r.
func ReadTrace(r io.Reader) (*Trace, error) {
	var t Trace
	if err := cbor.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("host: read trace: %w", err)
	}
	return &t, nil
}

// SaveTrace writes t to path.
func SaveTrace(path string, t *Trace) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteTrace(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadTrace reads a trace file.
func LoadTrace(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadTrace(f)
}

// Recorder is a vm.Console that passes everything through to another
// console and records it.
type Recorder struct {
	inner vm.Console

	mu    sync.Mutex
	trace Trace
}

// NewRecorder wraps inner.
func NewRecorder(inner vm.Console, language int, seed int64, source string) *Recorder {
	return &Recorder{
		inner: inner,
		trace: Trace{Language: language, Seed: seed, Source: source},
	}
}

// Write implements vm.Console. Consecutive writes merge into one event.
func (r *Recorder) Write(s string) {
	r.inner.Write(s)
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.trace.Events); n > 0 && r.trace.Events[n-1].Kind == EventOutput {
		r.trace.Events[n-1].Text += s
		return
	}
	r.trace.Events = append(r.trace.Events, Event{Kind: EventOutput, Text: s})
}

// ReadLine implements vm.Console.
func (r *Recorder) ReadLine() (string, bool) {
	l, ok := r.inner.ReadLine()
	if ok {
		r.mu.Lock()
		r.trace.Events = append(r.trace.Events, Event{Kind: EventInput, Text: l})
		r.mu.Unlock()
	}
	return l, ok
}

// Clear implements vm.Console.
func (r *Recorder) Clear() {
	r.inner.Clear()
	r.mu.Lock()
	r.trace.Events = append(r.trace.Events, Event{Kind: EventClear})
	r.mu.Unlock()
}

// Trace returns a copy of what has been recorded so far.
func (r *Recorder) Trace() *Trace {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.trace
	t.Events = append([]Event(nil), r.trace.Events...)
	return &t
}
