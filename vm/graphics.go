package vm

// ---------------------------------------------------------------------------
// Graphics
// ---------------------------------------------------------------------------

// graphics runs a drawing instruction. Coordinates are truncated to ints
// and colors resolved from the pen or palette before the Display sees them.
func (v *VM) graphics(in *Instruction) (stepResult, error) {
	d := v.host.Display
	switch in.Op {
	case OpOpenWindow:
		wh, err := v.popInts(2)
		if err != nil {
			return stepNext, err
		}
		if v.windowOpen {
			v.warn(MsgWindowAlreadyOpen)
			return stepNext, nil
		}
		d.Open(wh[0], wh[1])
		v.windowOpen = true
		return stepNext, nil

	case OpSetRGB:
		c, err := v.popInts(4)
		if err != nil {
			return stepNext, err
		}
		if c[0] < 0 || c[0] >= len(v.palette) {
			return stepNext, v.raise(MsgBadPaletteIndex, c[0])
		}
		col := rgb(c[1], c[2], c[3])
		v.palette[c[0]] = col
		d.SetPalette(c[0], col)
		return stepNext, nil

	case OpColor:
		c, err := v.popInts(in.Arg)
		if err != nil {
			return stepNext, err
		}
		if len(c) == 1 {
			if c[0] < 0 || c[0] >= len(v.palette) {
				return stepNext, v.raise(MsgBadPaletteIndex, c[0])
			}
			v.pen = v.palette[c[0]]
		} else {
			v.pen = rgb(c[0], c[1], c[2])
		}
		return stepNext, nil
	}

	// Everything below draws and needs an open window. Operands are popped
	// first so the stack stays balanced when the window is missing.
	var (
		p   []int
		s   string
		err error
	)
	switch in.Op {
	case OpText:
		if s, err = v.popStr(); err != nil {
			return stepNext, err
		}
		p, err = v.popInts(2)
	case OpDot, OpSetDrawBuf, OpSetDispBuf:
		n := 2
		if in.Op != OpDot {
			n = 1
		}
		p, err = v.popInts(n)
	case OpLine, OpRect:
		p, err = v.popInts(4)
	case OpTriangle:
		p, err = v.popInts(6)
	case OpGTriangle:
		p, err = v.popInts(9)
	case OpCircle:
		p, err = v.popInts(3)
	}
	if err != nil {
		return stepNext, err
	}
	if !v.windowOpen {
		return stepNext, v.raise(MsgNoWindow)
	}

	fill := in.Arg == 1
	switch in.Op {
	case OpCloseWindow:
		d.Close()
		v.windowOpen = false
	case OpClearWindow:
		d.Clear()
	case OpDot:
		d.Dot(p[0], p[1], v.pen)
	case OpLine:
		d.Line(p[0], p[1], p[2], p[3], v.pen)
	case OpRect:
		d.Rect(p[0], p[1], p[2], p[3], v.pen, fill)
	case OpTriangle:
		d.Triangle(p[0], p[1], p[2], p[3], p[4], p[5], v.pen, fill)
	case OpGTriangle:
		var cols [3]Color
		for i, idx := range p[6:] {
			if idx < 0 || idx >= len(v.palette) {
				return stepNext, v.raise(MsgBadPaletteIndex, idx)
			}
			cols[i] = v.palette[idx]
		}
		d.ShadedTriangle(p[0], p[1], p[2], p[3], p[4], p[5], cols[0], cols[1], cols[2])
	case OpCircle:
		d.Circle(p[0], p[1], p[2], v.pen, fill)
	case OpText:
		d.Text(p[0], p[1], v.host.Charset.GraphicsSafe(s), v.pen)
	case OpSetDrawBuf:
		d.SelectBuffer(p[0])
	case OpSetDispBuf:
		d.ShowBuffer(p[0])
	case OpFlip:
		d.Flip()
		return stepEndFrame, nil
	}
	return stepNext, nil
}

func rgb(r, g, b int) Color {
	return Color{uint8(clamp(r, 0, 255)), uint8(clamp(g, 0, 255)), uint8(clamp(b, 0, 255))}
}
