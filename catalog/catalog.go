// Package catalog renders VM message keys as English text.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chazu/basil/vm"
)

// english maps message keys to fmt templates. Argument order follows the
// VM's calls.
var english = map[string]string{
	vm.MsgErrorHeader:   "---Error in line %d: %s",
	vm.MsgWarningHeader: "---Warning in line %d: %s",
	vm.MsgFatalHeader:   "---Fatal in line %d: %s",

	vm.MsgCannotContinue: "---Program cannot continue after a fatal error",
	vm.MsgImmediateExit:  "---Immediate exit to system",

	vm.MsgProgramDone:   "---Program done",
	vm.MsgProgramAbort:  "---Program aborted",
	vm.MsgProgramFailed: "---Program stopped due to an error",

	vm.MsgReturnWithoutGosub:    "return without gosub",
	vm.MsgReturnValueOutsideSub: "return with a value outside of a subroutine",
	vm.MsgGosubPendingAtEndSub:  "end of subroutine %s reached with a gosub pending",
	vm.MsgLabelNotFound:         "label %s not found",
	vm.MsgStackOverflow:         "stack overflow after %d nested calls",

	vm.MsgSubNotDefined:    "subroutine %s() not defined",
	vm.MsgTooManyArguments: "%s() takes at most %d arguments, got %d",
	vm.MsgArgumentType:     "argument %[2]d of %[1]s() has the wrong type (%[3]s)",
	vm.MsgNotAnArray:       "%s is not an array",

	vm.MsgTypeMismatch:   "type mismatch: expected %s, got %s",
	vm.MsgDivisionByZero: "division by zero",
	vm.MsgBadArgument:    "bad argument to %s()",
	vm.MsgFormatError:    "invalid format %q",
	vm.MsgStringTooLong:  "string longer than %d characters",

	vm.MsgTooManyDimensions:   "array %s: %d dimensions, at most %d allowed",
	vm.MsgBadDimension:        "array %s: invalid upper bound %d",
	vm.MsgArrayTooLarge:       "array %s: more than %d elements",
	vm.MsgDimCountChanged:     "array %s: cannot change from %d to %d dimensions",
	vm.MsgArrayShrink:         "array %s: dimension %d cannot shrink",
	vm.MsgArrayNotDimensioned: "array %s has not been dimensioned",
	vm.MsgWrongIndexCount:     "array %s: expected %d indices, got %d",
	vm.MsgIndexOutOfRange:     "array %s: index %d out of range 0..%d",

	vm.MsgOutOfData:        "run out of data items",
	vm.MsgReadTypeMismatch: "data item is a %s and does not match the variable",

	vm.MsgNoWindow:          "no graphics window open",
	vm.MsgWindowAlreadyOpen: "graphics window already open",
	vm.MsgBadPaletteIndex:   "palette index %d out of range",

	vm.MsgCompileFailed: "compile failed: %s",

	vm.MsgUserError:     "%s",
	vm.MsgTooManyErrors: "more than %d errors, giving up",
}

// Catalog is a vm.Catalog backed by templates. The zero value is not
// usable; use English or New.
type Catalog struct {
	templates map[string]string
}

// English is the default catalog.
var English = New(nil)

// New returns the English catalog with overrides applied on top.
func New(overrides map[string]string) *Catalog {
	t := make(map[string]string, len(english)+len(overrides))
	for k, v := range english {
		t[k] = v
	}
	for k, v := range overrides {
		t[k] = v
	}
	return &Catalog{templates: t}
}

// Get implements vm.Catalog. Unknown keys render as the key followed by
// the arguments so nothing is lost.
func (c *Catalog) Get(key string, args ...any) string {
	tmpl, ok := c.templates[key]
	if !ok {
		if len(args) == 0 {
			return key
		}
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = fmt.Sprint(a)
		}
		return key + ": " + strings.Join(parts, ", ")
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// Has reports whether key has a template.
func (c *Catalog) Has(key string) bool {
	_, ok := c.templates[key]
	return ok
}

// Keys returns all keys, sorted.
func (c *Catalog) Keys() []string {
	out := make([]string, 0, len(c.templates))
	for k := range c.templates {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
