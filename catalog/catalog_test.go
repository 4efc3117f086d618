package catalog

import (
	"strings"
	"testing"

	"github.com/chazu/basil/vm"
)

func TestEveryKeyHasATemplate(t *testing.T) {
	keys := []string{
		vm.MsgErrorHeader, vm.MsgWarningHeader, vm.MsgFatalHeader,
		vm.MsgCannotContinue, vm.MsgImmediateExit,
		vm.MsgProgramDone, vm.MsgProgramAbort, vm.MsgProgramFailed,
		vm.MsgReturnWithoutGosub, vm.MsgReturnValueOutsideSub, vm.MsgGosubPendingAtEndSub,
		vm.MsgLabelNotFound, vm.MsgStackOverflow,
		vm.MsgSubNotDefined, vm.MsgTooManyArguments, vm.MsgArgumentType, vm.MsgNotAnArray,
		vm.MsgTypeMismatch, vm.MsgDivisionByZero, vm.MsgBadArgument, vm.MsgFormatError, vm.MsgStringTooLong,
		vm.MsgTooManyDimensions, vm.MsgBadDimension, vm.MsgArrayTooLarge, vm.MsgDimCountChanged,
		vm.MsgArrayShrink, vm.MsgArrayNotDimensioned, vm.MsgWrongIndexCount, vm.MsgIndexOutOfRange,
		vm.MsgOutOfData, vm.MsgReadTypeMismatch,
		vm.MsgNoWindow, vm.MsgWindowAlreadyOpen, vm.MsgBadPaletteIndex,
		vm.MsgCompileFailed, vm.MsgUserError, vm.MsgTooManyErrors,
	}
	for _, k := range keys {
		if !English.Has(k) {
			t.Errorf("no template for %s", k)
		}
	}
	if len(English.Keys()) != len(keys) {
		t.Errorf("catalog has %d keys, test knows %d", len(English.Keys()), len(keys))
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		key  string
		args []any
		want string
	}{
		{vm.MsgErrorHeader, []any{12, "division by zero"}, "---Error in line 12: division by zero"},
		{vm.MsgDivisionByZero, nil, "division by zero"},
		{vm.MsgArgumentType, []any{"left$", 2, "string"}, "argument 2 of left$() has the wrong type (string)"},
		{vm.MsgIndexOutOfRange, []any{"a", 5, 3}, "array a: index 5 out of range 0..3"},
		{vm.MsgUserError, []any{"boom"}, "boom"},
		{"Unknown", []any{1, "x"}, "Unknown: 1, x"},
		{"Unknown", nil, "Unknown"},
	}

	for _, tc := range tests {
		if got := English.Get(tc.key, tc.args...); got != tc.want {
			t.Errorf("Get(%s, %v) = %q, want %q", tc.key, tc.args, got, tc.want)
		}
	}
}

func TestOverrides(t *testing.T) {
	c := New(map[string]string{vm.MsgDivisionByZero: "nope"})
	if got := c.Get(vm.MsgDivisionByZero); got != "nope" {
		t.Errorf("override = %q, want nope", got)
	}
	if got := English.Get(vm.MsgDivisionByZero); got != "division by zero" {
		t.Errorf("override leaked into English: %q", got)
	}
}

func TestRenderWithCatalog(t *testing.T) {
	diags := []vm.Diagnostic{
		{Severity: vm.SeverityError, Line: 3, Message: "division by zero"},
		{Severity: vm.SeverityFatal, Line: 7, Message: "stack overflow after 10 nested calls"},
	}
	out := vm.RenderDiagnostics(English, diags, 80)
	for _, want := range []string{
		"---Error in line 3: division by zero",
		"---Fatal in line 7: stack overflow",
		"---Program cannot continue",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered output missing %q:\n%s", want, out)
		}
	}
}
