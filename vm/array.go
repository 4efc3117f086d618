package vm

import (
	"fmt"
	"strings"
)

// Limits on array geometry.
const (
	MaxArrayDims        = 10
	MaxNumArrayElements = 10_000_000
	MaxStrArrayElements = 1_000_000
)

// ArrayError describes a rejected dimension or index operation.
// Fatal is set when the request exceeds the element bounds.
type ArrayError struct {
	Key   string
	Args  []any
	Fatal bool
}

func (e *ArrayError) Error() string {
	return fmt.Sprintf("%s %v", e.Key, e.Args)
}

// Array is a row-major multi-dimensional array. A nil Dims means the
// array is known by name but has not been dimensioned yet.
type Array struct {
	Name string
	Dims []int

	nums []float64
	strs []string
	str  bool
}

// NewArray creates an undimensioned array. Names ending in "$" hold strings.
func NewArray(name string) *Array {
	return &Array{Name: name, str: strings.HasSuffix(name, "$")}
}

// IsString reports whether elements are strings.
func (a *Array) IsString() bool { return a.str }

// Dimensioned reports whether Dim has been called.
func (a *Array) Dimensioned() bool { return a.Dims != nil }

// Len returns the total element count.
func (a *Array) Len() int {
	if a.str {
		return len(a.strs)
	}
	return len(a.nums)
}

// Dim sets the array geometry. sizes are element counts per dimension.
// Redimensioning keeps every stored value at its logical index; it must
// keep the dimension count and may not shrink any dimension.
func (a *Array) Dim(sizes []int) error {
	if len(sizes) == 0 || len(sizes) > MaxArrayDims {
		return &ArrayError{Key: MsgTooManyDimensions, Args: []any{a.Name, len(sizes), MaxArrayDims}}
	}
	total := 1
	limit := MaxNumArrayElements
	if a.str {
		limit = MaxStrArrayElements
	}
	for _, s := range sizes {
		if s < 1 {
			return &ArrayError{Key: MsgBadDimension, Args: []any{a.Name, s - 1}}
		}
		if s > limit/total {
			return &ArrayError{Key: MsgArrayTooLarge, Args: []any{a.Name, limit}, Fatal: true}
		}
		total *= s
	}

	if a.Dims == nil {
		a.Dims = append([]int(nil), sizes...)
		if a.str {
			a.strs = make([]string, total)
		} else {
			a.nums = make([]float64, total)
		}
		return nil
	}

	if len(sizes) != len(a.Dims) {
		return &ArrayError{Key: MsgDimCountChanged, Args: []any{a.Name, len(a.Dims), len(sizes)}}
	}
	grow := false
	for i, s := range sizes {
		if s < a.Dims[i] {
			return &ArrayError{Key: MsgArrayShrink, Args: []any{a.Name, i + 1}}
		}
		if s > a.Dims[i] {
			grow = true
		}
	}
	if !grow {
		return nil
	}

	old := a.Dims
	next := append([]int(nil), sizes...)
	idx := make([]int, len(old))
	if a.str {
		vals := make([]string, total)
		for off, v := range a.strs {
			unflatten(off, old, idx)
			vals[flatten(idx, next)] = v
		}
		a.strs = vals
	} else {
		vals := make([]float64, total)
		for off, v := range a.nums {
			unflatten(off, old, idx)
			vals[flatten(idx, next)] = v
		}
		a.nums = vals
	}
	a.Dims = next
	return nil
}

// offset validates a multi-index and returns its flat position.
func (a *Array) offset(index []int) (int, error) {
	if a.Dims == nil {
		return 0, &ArrayError{Key: MsgArrayNotDimensioned, Args: []any{a.Name}}
	}
	if len(index) != len(a.Dims) {
		return 0, &ArrayError{Key: MsgWrongIndexCount, Args: []any{a.Name, len(a.Dims), len(index)}}
	}
	for i, n := range index {
		if n < 0 || n >= a.Dims[i] {
			return 0, &ArrayError{Key: MsgIndexOutOfRange, Args: []any{a.Name, n, a.Dims[i] - 1}}
		}
	}
	return flatten(index, a.Dims), nil
}

// Get returns the element at index.
func (a *Array) Get(index []int) (Value, error) {
	off, err := a.offset(index)
	if err != nil {
		return Value{}, err
	}
	if a.str {
		return Str(a.strs[off]), nil
	}
	return Num(a.nums[off]), nil
}

// Set stores v at index. v must match the element kind.
func (a *Array) Set(index []int, v Value) error {
	off, err := a.offset(index)
	if err != nil {
		return err
	}
	if a.str {
		a.strs[off] = v.Str
	} else {
		a.nums[off] = v.Float()
	}
	return nil
}

func flatten(index, dims []int) int {
	off := 0
	for i, n := range index {
		off = off*dims[i] + n
	}
	return off
}

func unflatten(off int, dims, out []int) {
	for i := len(dims) - 1; i >= 0; i-- {
		out[i] = off % dims[i]
		off /= dims[i]
	}
}
