package vm

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Diagnostics and the unwind signal
// ---------------------------------------------------------------------------

// Severity classifies a runtime diagnostic.
type Severity uint8

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	}
	return "?"
}

// Diagnostic is one queued runtime message. Message is already rendered
// through the catalog; Key and Args are kept for tests and tooling.
type Diagnostic struct {
	Severity Severity
	Line     int
	Key      string
	Args     []any
	Message  string
}

// Unwind is returned by an instruction that raised a runtime error. The
// diagnostic has already been queued when an Unwind is seen; the batch
// loop only needs to decide how to resume.
type Unwind struct {
	Diagnostic Diagnostic
}

func (u *Unwind) Error() string {
	return fmt.Sprintf("%s in line %d: %s", u.Diagnostic.Severity, u.Diagnostic.Line, u.Diagnostic.Message)
}

// Fatal reports whether the run cannot resume.
func (u *Unwind) Fatal() bool {
	return u.Diagnostic.Severity == SeverityFatal
}

// warn queues a warning. Execution continues.
func (v *VM) warn(key string, args ...any) {
	v.queue(SeverityWarning, key, args)
}

// raise queues an error and returns the unwind signal for the loop.
func (v *VM) raise(key string, args ...any) error {
	return &Unwind{Diagnostic: v.queue(SeverityError, key, args)}
}

// fatal queues a fatal error and returns the unwind signal for the loop.
func (v *VM) fatal(key string, args ...any) error {
	return &Unwind{Diagnostic: v.queue(SeverityFatal, key, args)}
}

// raiseArray converts an array failure to the matching severity.
func (v *VM) raiseArray(err error) error {
	if ae, ok := err.(*ArrayError); ok {
		if ae.Fatal {
			return v.fatal(ae.Key, ae.Args...)
		}
		return v.raise(ae.Key, ae.Args...)
	}
	return err
}

func (v *VM) queue(sev Severity, key string, args []any) Diagnostic {
	d := Diagnostic{
		Severity: sev,
		Line:     v.line,
		Key:      key,
		Args:     args,
		Message:  v.host.Catalog.Get(key, args...),
	}
	v.diagnostics = append(v.diagnostics, d)
	return d
}

// Diagnostics returns everything queued so far.
func (v *VM) Diagnostics() []Diagnostic {
	return v.diagnostics
}

// TakeDiagnostics returns and clears the queue.
func (v *VM) TakeDiagnostics() []Diagnostic {
	d := v.diagnostics
	v.diagnostics = nil
	return d
}

// RenderDiagnostics formats a batch of diagnostics. Consecutive entries
// on the same line collapse to the last one. Messages longer than maxLen
// are cut with "...". A fatal entry appends the cannot-continue sentence
// and the exit notice once, at the end.
func RenderDiagnostics(cat Catalog, diags []Diagnostic, maxLen int) string {
	var sb strings.Builder
	fatal := false
	for i, d := range diags {
		if d.Severity == SeverityFatal {
			fatal = true
		}
		if i+1 < len(diags) && diags[i+1].Line == d.Line && diags[i+1].Severity >= d.Severity {
			continue
		}
		msg := truncate(d.Message, maxLen)
		switch d.Severity {
		case SeverityWarning:
			sb.WriteString(cat.Get(MsgWarningHeader, d.Line, msg))
		case SeverityError:
			sb.WriteString(cat.Get(MsgErrorHeader, d.Line, msg))
		case SeverityFatal:
			sb.WriteString(cat.Get(MsgFatalHeader, d.Line, msg))
		}
		sb.WriteByte('\n')
	}
	if fatal {
		sb.WriteString(cat.Get(MsgCannotContinue))
		sb.WriteByte('\n')
		sb.WriteString(cat.Get(MsgImmediateExit))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// truncate cuts s to maxLen characters, counting runes.
func truncate(s string, maxLen int) string {
	if maxLen <= 3 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen-3]) + "..."
}
