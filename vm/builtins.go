package vm

import (
	"math"
	"strconv"
	"strings"

	"github.com/chazu/basil/numfmt"
)

// MaxStringLength bounds the characters in one string value.
const MaxStringLength = 10_000_000

// Builtin identifies a built-in function.
type Builtin uint8

const (
	BuiltinAbs Builtin = iota
	BuiltinSgn
	BuiltinInt
	BuiltinFrac
	BuiltinSqrt
	BuiltinSqr
	BuiltinExp
	BuiltinLog
	BuiltinSin
	BuiltinCos
	BuiltinTan
	BuiltinAsin
	BuiltinAcos
	BuiltinAtan
	BuiltinMin
	BuiltinMax
	BuiltinRan
	BuiltinLen
	BuiltinVal
	BuiltinAsc
	BuiltinInstr
	BuiltinRinstr
	BuiltinDec
	BuiltinAndBits
	BuiltinOrBits
	BuiltinXorBits
	BuiltinPi
	BuiltinNumParams
	BuiltinArrayDim
	BuiltinArraySize
	BuiltinSplit
	BuiltinJoy

	BuiltinLeft
	BuiltinRight
	BuiltinMid
	BuiltinStr
	BuiltinChr
	BuiltinUpper
	BuiltinLower
	BuiltinLtrim
	BuiltinRtrim
	BuiltinTrim
	BuiltinHex
	BuiltinBin
	BuiltinInkey
	BuiltinTime
	BuiltinDate
	BuiltinRepeat

	builtinCount
)

// BuiltinInfo describes the call shape of a built-in. Args lists the
// parameter types: 'n' number, 's' string, 'N' numeric array, 'S' string
// array. Only the first MinArgs are required.
type BuiltinInfo struct {
	Name    string
	Args    string
	MinArgs int
	String  bool // returns a string
}

var builtinTable = [builtinCount]BuiltinInfo{
	BuiltinAbs:       {"abs", "n", 1, false},
	BuiltinSgn:       {"sgn", "n", 1, false},
	BuiltinInt:       {"int", "n", 1, false},
	BuiltinFrac:      {"frac", "n", 1, false},
	BuiltinSqrt:      {"sqrt", "n", 1, false},
	BuiltinSqr:       {"sqr", "n", 1, false},
	BuiltinExp:       {"exp", "n", 1, false},
	BuiltinLog:       {"log", "nn", 1, false},
	BuiltinSin:       {"sin", "n", 1, false},
	BuiltinCos:       {"cos", "n", 1, false},
	BuiltinTan:       {"tan", "n", 1, false},
	BuiltinAsin:      {"asin", "n", 1, false},
	BuiltinAcos:      {"acos", "n", 1, false},
	BuiltinAtan:      {"atan", "nn", 1, false},
	BuiltinMin:       {"min", "nn", 2, false},
	BuiltinMax:       {"max", "nn", 2, false},
	BuiltinRan:       {"ran", "n", 0, false},
	BuiltinLen:       {"len", "s", 1, false},
	BuiltinVal:       {"val", "s", 1, false},
	BuiltinAsc:       {"asc", "s", 1, false},
	BuiltinInstr:     {"instr", "ssn", 2, false},
	BuiltinRinstr:    {"rinstr", "ssn", 2, false},
	BuiltinDec:       {"dec", "sn", 1, false},
	BuiltinAndBits:   {"and_bits", "nn", 2, false},
	BuiltinOrBits:    {"or_bits", "nn", 2, false},
	BuiltinXorBits:   {"xor_bits", "nn", 2, false},
	BuiltinPi:        {"pi", "", 0, false},
	BuiltinNumParams: {"numparams", "", 0, false},
	BuiltinArrayDim:  {"arraydim", "A", 1, false},
	BuiltinArraySize: {"arraysize", "An", 2, false},
	BuiltinSplit:     {"split", "sSs", 2, false},
	BuiltinJoy:       {"joy", "n", 0, false},

	BuiltinLeft:   {"left$", "sn", 2, true},
	BuiltinRight:  {"right$", "sn", 2, true},
	BuiltinMid:    {"mid$", "snn", 2, true},
	BuiltinStr:    {"str$", "ns", 1, true},
	BuiltinChr:    {"chr$", "n", 1, true},
	BuiltinUpper:  {"upper$", "s", 1, true},
	BuiltinLower:  {"lower$", "s", 1, true},
	BuiltinLtrim:  {"ltrim$", "s", 1, true},
	BuiltinRtrim:  {"rtrim$", "s", 1, true},
	BuiltinTrim:   {"trim$", "s", 1, true},
	BuiltinHex:    {"hex$", "n", 1, true},
	BuiltinBin:    {"bin$", "n", 1, true},
	BuiltinInkey:  {"inkey$", "n", 0, true},
	BuiltinTime:   {"time$", "", 0, true},
	BuiltinDate:   {"date$", "", 0, true},
	BuiltinRepeat: {"repeat$", "sn", 2, true},
}

var builtinByName = func() map[string]Builtin {
	m := make(map[string]Builtin, builtinCount)
	for i, info := range builtinTable {
		m[info.Name] = Builtin(i)
	}
	return m
}()

// LookupBuiltin finds a built-in by its lower-case name.
func LookupBuiltin(name string) (Builtin, bool) {
	b, ok := builtinByName[name]
	return b, ok
}

// BuiltinNames returns every built-in name in table order.
func BuiltinNames() []string {
	out := make([]string, len(builtinTable))
	for i, info := range builtinTable {
		out[i] = info.Name
	}
	return out
}

// Info returns the call shape of b.
func (b Builtin) Info() BuiltinInfo {
	if int(b) < len(builtinTable) {
		return builtinTable[b]
	}
	return BuiltinInfo{Name: "?"}
}

func (b Builtin) String() string { return b.Info().Name }

// MaxArgs is the number of parameters b accepts.
func (i BuiltinInfo) MaxArgs() int { return len(i.Args) }

// builtin runs b with argc arguments on the stack.
func (v *VM) builtin(b Builtin, argc int) (stepResult, error) {
	if b == BuiltinInkey {
		return v.inkey(argc)
	}
	args := v.popN(argc)
	info := b.Info()
	for i, a := range args {
		if !builtinAccepts(info.Args[i], a) {
			return stepNext, v.raise(MsgArgumentType, info.Name, i+1, a.Kind.String())
		}
	}
	x, err := v.callBuiltin(b, args)
	if err != nil {
		return stepNext, err
	}
	v.push(x)
	return stepNext, nil
}

func builtinAccepts(t byte, a Value) bool {
	switch t {
	case 'n':
		return a.Numeric()
	case 's':
		return a.Kind == KindString
	case 'N':
		return a.Kind == KindNumArrayRef
	case 'S':
		return a.Kind == KindStrArrayRef
	case 'A':
		return a.IsArray()
	}
	return false
}

func (v *VM) callBuiltin(b Builtin, args []Value) (Value, error) {
	n := func(i int) float64 { return args[i].Num }
	s := func(i int) string { return args[i].Str }
	bad := func() (Value, error) { return Value{}, v.raise(MsgBadArgument, b.String()) }

	switch b {
	case BuiltinAbs:
		return Num(math.Abs(n(0))), nil
	case BuiltinSgn:
		switch {
		case n(0) > 0:
			return Num(1), nil
		case n(0) < 0:
			return Num(-1), nil
		}
		return Num(0), nil
	case BuiltinInt:
		return Num(math.Trunc(n(0))), nil
	case BuiltinFrac:
		_, f := math.Modf(n(0))
		return Num(f), nil
	case BuiltinSqrt, BuiltinSqr:
		if n(0) < 0 {
			return bad()
		}
		if b == BuiltinSqr {
			return Num(n(0) * n(0)), nil
		}
		return Num(math.Sqrt(n(0))), nil
	case BuiltinExp:
		return Num(math.Exp(n(0))), nil
	case BuiltinLog:
		if n(0) <= 0 {
			return bad()
		}
		if len(args) == 2 {
			if n(1) <= 0 || n(1) == 1 {
				return bad()
			}
			return Num(math.Log(n(0)) / math.Log(n(1))), nil
		}
		return Num(math.Log(n(0))), nil
	case BuiltinSin:
		return Num(math.Sin(n(0))), nil
	case BuiltinCos:
		return Num(math.Cos(n(0))), nil
	case BuiltinTan:
		return Num(math.Tan(n(0))), nil
	case BuiltinAsin:
		if n(0) < -1 || n(0) > 1 {
			return bad()
		}
		return Num(math.Asin(n(0))), nil
	case BuiltinAcos:
		if n(0) < -1 || n(0) > 1 {
			return bad()
		}
		return Num(math.Acos(n(0))), nil
	case BuiltinAtan:
		if len(args) == 2 {
			return Num(math.Atan2(n(0), n(1))), nil
		}
		return Num(math.Atan(n(0))), nil
	case BuiltinMin:
		return Num(math.Min(n(0), n(1))), nil
	case BuiltinMax:
		return Num(math.Max(n(0), n(1))), nil
	case BuiltinRan:
		if len(args) == 1 {
			return Num(v.rng.Float64() * n(0)), nil
		}
		return Num(v.rng.Float64()), nil
	case BuiltinLen:
		return Num(float64(len(s(0)))), nil
	case BuiltinVal:
		return Num(parseNumber(s(0))), nil
	case BuiltinAsc:
		if s(0) == "" {
			return Num(0), nil
		}
		return Num(float64(s(0)[0])), nil
	case BuiltinInstr:
		start := 1
		if len(args) == 3 {
			start = int(n(2))
		}
		if start < 1 {
			start = 1
		}
		if start > len(s(0)) {
			return Num(0), nil
		}
		i := strings.Index(s(0)[start-1:], s(1))
		if i < 0 {
			return Num(0), nil
		}
		return Num(float64(i + start)), nil
	case BuiltinRinstr:
		hay := s(0)
		if len(args) == 3 {
			end := int(n(2)) - 1 + len(s(1))
			if end < 0 {
				return Num(0), nil
			}
			if end < len(hay) {
				hay = hay[:end]
			}
		}
		return Num(float64(strings.LastIndex(hay, s(1)) + 1)), nil
	case BuiltinDec:
		base := 16
		if len(args) == 2 {
			base = int(n(1))
		}
		if base < 2 || base > 36 {
			return bad()
		}
		x, err := strconv.ParseInt(strings.TrimSpace(s(0)), base, 64)
		if err != nil {
			return bad()
		}
		return Num(float64(x)), nil
	case BuiltinAndBits:
		return Num(float64(int64(n(0)) & int64(n(1)))), nil
	case BuiltinOrBits:
		return Num(float64(int64(n(0)) | int64(n(1)))), nil
	case BuiltinXorBits:
		return Num(float64(int64(n(0)) ^ int64(n(1)))), nil
	case BuiltinPi:
		return Num(math.Pi), nil
	case BuiltinNumParams:
		return Num(float64(v.frames[len(v.frames)-1].ArgCount)), nil
	case BuiltinArrayDim:
		return Num(float64(len(args[0].Array().Dims))), nil
	case BuiltinArraySize:
		a := args[0].Array()
		d := int(n(1))
		if d < 1 || d > len(a.Dims) {
			return bad()
		}
		return Num(float64(a.Dims[d-1] - 1)), nil
	case BuiltinSplit:
		return v.split(args)
	case BuiltinJoy:
		return Num(float64(v.host.Input.Held())), nil

	case BuiltinLeft:
		return Str(s(0)[:clamp(int(n(1)), 0, len(s(0)))]), nil
	case BuiltinRight:
		k := clamp(int(n(1)), 0, len(s(0)))
		return Str(s(0)[len(s(0))-k:]), nil
	case BuiltinMid:
		str := s(0)
		start := clamp(int(n(1))-1, 0, len(str))
		end := len(str)
		if len(args) == 3 {
			end = clamp(start+int(n(2)), start, len(str))
		}
		return Str(str[start:end]), nil
	case BuiltinStr:
		if len(args) == 2 {
			out, err := numfmt.Format(n(0), s(1))
			if err != nil {
				return Value{}, v.raise(MsgFormatError, v.decode(s(1)))
			}
			return Str(out), nil
		}
		return Str(numfmt.Default(n(0))), nil
	case BuiltinChr:
		c := int(n(0))
		if c < 0 || c > 255 {
			return bad()
		}
		return Str(string([]byte{byte(c)})), nil
	case BuiltinUpper:
		return Str(v.host.Charset.ToUpper(s(0))), nil
	case BuiltinLower:
		return Str(v.host.Charset.ToLower(s(0))), nil
	case BuiltinLtrim:
		return Str(v.host.Charset.TrimStart(s(0))), nil
	case BuiltinRtrim:
		return Str(v.host.Charset.TrimEnd(s(0))), nil
	case BuiltinTrim:
		return Str(v.host.Charset.TrimEnd(v.host.Charset.TrimStart(s(0)))), nil
	case BuiltinHex:
		return Str(strconv.FormatInt(int64(n(0)), 16)), nil
	case BuiltinBin:
		return Str(strconv.FormatInt(int64(n(0)), 2)), nil
	case BuiltinTime:
		return Str(v.host.Clock.Now().Format("15-04-05")), nil
	case BuiltinDate:
		return Str(v.host.Clock.Now().Format("Mon-01-02-2006")), nil
	case BuiltinRepeat:
		k := n(1)
		if k < 0 || math.IsNaN(k) {
			return bad()
		}
		if s(0) == "" {
			return Str(""), nil
		}
		if k > float64(MaxStringLength/len(s(0))) {
			return Value{}, v.fatal(MsgStringTooLong, MaxStringLength)
		}
		return Str(strings.Repeat(s(0), int(k))), nil
	}
	panic("vm: unknown builtin " + b.String())
}

// split breaks s into the string array, one token per element starting at
// index 1, growing the array as needed. It returns the token count.
func (v *VM) split(args []Value) (Value, error) {
	text, a := args[0].Str, args[1].Array()
	seps := " \t\n\r"
	if len(args) == 3 && args[2].Str != "" {
		seps = args[2].Str
	}
	parts := fields(text, seps)
	size := len(parts) + 1
	if a.Dimensioned() {
		if len(a.Dims) != 1 {
			return Value{}, v.raise(MsgWrongIndexCount, a.Name, len(a.Dims), 1)
		}
		if a.Dims[0] > size {
			size = a.Dims[0]
		}
	}
	if err := a.Dim([]int{size}); err != nil {
		return Value{}, v.raiseArray(err)
	}
	for i, p := range parts {
		if err := a.Set([]int{i + 1}, Str(p)); err != nil {
			return Value{}, v.raiseArray(err)
		}
	}
	return Num(float64(len(parts))), nil
}

// inkey waits for a key press. With an argument it gives up after that
// many seconds and yields "".
func (v *VM) inkey(argc int) (stepResult, error) {
	if key, ok := v.host.Input.Pressed(); ok {
		v.popN(argc)
		v.keyWaiting = false
		v.push(Str(v.encode(key)))
		return stepNext, nil
	}
	if argc == 0 {
		v.keyWaiting = true
		return stepSuspend, nil
	}
	now := v.host.Clock.Now()
	if !v.keyWaiting {
		secs := v.stack[len(v.stack)-1]
		if !secs.Numeric() {
			v.pop()
			return stepNext, v.raise(MsgArgumentType, "inkey$", 1, secs.Kind.String())
		}
		v.keyWaiting = true
		v.keyDeadline = now.Add(seconds(secs.Num))
		return stepSuspend, nil
	}
	if !now.Before(v.keyDeadline) {
		v.pop()
		v.keyWaiting = false
		v.push(Str(""))
		return stepNext, nil
	}
	return stepSuspend, nil
}

// fields splits s around runs of bytes from seps, dropping empty fields.
func fields(s, seps string) []string {
	var out []string
	start := -1
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(seps, s[i]) >= 0 {
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// parseNumber reads the longest numeric prefix of s, or 0.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	for end := len(s); end > 0; end-- {
		if x, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return x
		}
	}
	return 0
}
