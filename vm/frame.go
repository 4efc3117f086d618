package vm

// ---------------------------------------------------------------------------
// StackFrame: Scoped variable and array storage
// ---------------------------------------------------------------------------

// StackFrame is the storage of one subroutine activation, or of the top
// level for the bottom (global) frame. Stores grow on demand because a
// runtime recompile can extend the id space.
type StackFrame struct {
	nums     []float64
	numScope []uint8
	strs     []string
	strScope []uint8
	arrays   map[string]*Array

	// Sub is the subroutine this frame belongs to ("" for the global frame).
	Sub string
	// ArgCount is how many arguments the caller actually passed.
	ArgCount int

	args []Value
}

func newFrame(sub string, numIDs, strIDs int) *StackFrame {
	return &StackFrame{
		nums:     make([]float64, numIDs),
		numScope: make([]uint8, numIDs),
		strs:     make([]string, strIDs),
		strScope: make([]uint8, strIDs),
		arrays:   make(map[string]*Array),
		Sub:      sub,
	}
}

func (f *StackFrame) growNums(id int) {
	if id < len(f.nums) {
		return
	}
	n := id + 1
	f.nums = append(f.nums, make([]float64, n-len(f.nums))...)
	f.numScope = append(f.numScope, make([]uint8, n-len(f.numScope))...)
}

func (f *StackFrame) growStrs(id int) {
	if id < len(f.strs) {
		return
	}
	n := id + 1
	f.strs = append(f.strs, make([]string, n-len(f.strs))...)
	f.strScope = append(f.strScope, make([]uint8, n-len(f.strScope))...)
}

// NumScope returns the scope tag of numeric id in this frame.
func (f *StackFrame) NumScope(id int) int {
	if id < len(f.numScope) {
		return int(f.numScope[id])
	}
	return ScopeGlobal
}

// StrScope returns the scope tag of string id in this frame.
func (f *StackFrame) StrScope(id int) int {
	if id < len(f.strScope) {
		return int(f.strScope[id])
	}
	return ScopeGlobal
}

// declareNum tags id with scope. A LOCAL declaration starts from zero.
func (f *StackFrame) declareNum(id, scope int) {
	f.growNums(id)
	f.numScope[id] = uint8(scope)
	if scope == ScopeLocal {
		f.nums[id] = 0
	}
}

func (f *StackFrame) declareStr(id, scope int) {
	f.growStrs(id)
	f.strScope[id] = uint8(scope)
	if scope == ScopeLocal {
		f.strs[id] = ""
	}
}

// Array returns the array registered under name in this frame only.
func (f *StackFrame) Array(name string) (*Array, bool) {
	a, ok := f.arrays[name]
	return a, ok
}

// ---------------------------------------------------------------------------
// Scope resolution
// ---------------------------------------------------------------------------

// numFrame returns the frame whose store holds numeric id: the current
// frame if it declared the id LOCAL, otherwise the global frame.
func (v *VM) numFrame(id int) *StackFrame {
	cur := v.frames[len(v.frames)-1]
	if cur.NumScope(id) == ScopeLocal {
		return cur
	}
	return v.frames[0]
}

func (v *VM) strFrame(id int) *StackFrame {
	cur := v.frames[len(v.frames)-1]
	if cur.StrScope(id) == ScopeLocal {
		return cur
	}
	return v.frames[0]
}

// LoadNum reads numeric variable id. Unset variables read as 0.
func (v *VM) LoadNum(id int) float64 {
	f := v.numFrame(id)
	if id < len(f.nums) {
		return f.nums[id]
	}
	return 0
}

// StoreNum writes numeric variable id.
func (v *VM) StoreNum(id int, x float64) {
	f := v.numFrame(id)
	f.growNums(id)
	f.nums[id] = x
}

// LoadStr reads string variable id. Unset variables read as "".
func (v *VM) LoadStr(id int) string {
	f := v.strFrame(id)
	if id < len(f.strs) {
		return f.strs[id]
	}
	return ""
}

// StoreStr writes string variable id.
func (v *VM) StoreStr(id int, s string) {
	f := v.strFrame(id)
	f.growStrs(id)
	f.strs[id] = s
}

// lookupArray finds name in the current frame, then the global frame.
func (v *VM) lookupArray(name string) (*Array, bool) {
	if a, ok := v.frames[len(v.frames)-1].arrays[name]; ok {
		return a, true
	}
	a, ok := v.frames[0].arrays[name]
	return a, ok
}

// arrayFor returns the array for name, registering an undimensioned one in
// the global frame when it does not exist yet.
func (v *VM) arrayFor(name string) *Array {
	if a, ok := v.lookupArray(name); ok {
		return a
	}
	a := NewArray(name)
	v.frames[0].arrays[name] = a
	return a
}

// GlobalArray returns a global array by name.
func (v *VM) GlobalArray(name string) (*Array, bool) {
	a, ok := v.frames[0].arrays[name]
	return a, ok
}

// Depth returns the number of active frames, including the global frame.
func (v *VM) Depth() int { return len(v.frames) }
