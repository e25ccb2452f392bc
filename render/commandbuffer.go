// render/commandbuffer.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package render

import (
	"fmt"
	gomath "math"
	"sync"
)

// The command buffer stores a series of drawing commands, represented by
// the following values. Each one is followed in the buffer by a number of
// command arguments, after which the next command follows. Comments after
// each command briefly describe its arguments.
const (
	RendererSetRGB        = iota // 3 float32: RGB
	RendererLineWidth            // float32
	RendererDrawLine             // 4 float32: x0, y0, x1, y1
	RendererDrawEllipse          // 4 float32: cx, cy, rx, ry
	RendererFillEllipse          // 4 float32: cx, cy, rx, ry
	RendererFillTriangles        // int32 count, then count*6 float32 vertex coordinates
)

// CommandBuffer is a Surface that encodes the primitives it's given in an
// API-agnostic manner so that they can be replayed later, possibly on
// another Surface and possibly over multiple frames.
//
// Color and line width are stateful: a RendererSetRGB or RendererLineWidth
// command is only emitted when the value changes.
type CommandBuffer struct {
	Buf []uint32

	rgb      RGB
	width    float32
	rgbSet   bool
	widthSet bool
}

// CommandBuffers are managed using a sync.Pool so that their buf slice
// allocations persist across multiple uses.
var commandBufferPool = sync.Pool{New: func() any { return &CommandBuffer{} }}

func GetCommandBuffer() *CommandBuffer {
	return commandBufferPool.Get().(*CommandBuffer)
}

func ReturnCommandBuffer(cb *CommandBuffer) {
	cb.Reset()
	commandBufferPool.Put(cb)
}

// Reset resets the command buffer's length to zero so that it can be
// reused.
func (cb *CommandBuffer) Reset() {
	cb.Buf = cb.Buf[:0]
	cb.rgbSet, cb.widthSet = false, false
}

// growFor ensures that at least n more values can be added to the end of
// the buffer without going past its capacity.
func (cb *CommandBuffer) growFor(n int) {
	if len(cb.Buf)+n > cap(cb.Buf) {
		sz := 2 * cap(cb.Buf)
		if sz < 1024 {
			sz = 1024
		}
		if sz < len(cb.Buf)+n {
			sz = 2 * (len(cb.Buf) + n)
		}
		b := make([]uint32, len(cb.Buf), sz)
		copy(b, cb.Buf)
		cb.Buf = b
	}
}

func (cb *CommandBuffer) appendFloats(floats ...float32) {
	for _, f := range floats {
		// Convert each one to a uint32 since that's the type that is
		// actually stored...
		cb.Buf = append(cb.Buf, gomath.Float32bits(f))
	}
}

func (cb *CommandBuffer) appendInts(ints ...int) {
	for _, i := range ints {
		if i != int(uint32(i)) {
			panic(fmt.Sprintf("%d: attempting to add non-32-bit value to CommandBuffer", i))
		}
		cb.Buf = append(cb.Buf, uint32(i))
	}
}

// SetRGB adds a command to the command buffer to set the current RGB
// color. Subsequent draw commands will inherit this color.
func (cb *CommandBuffer) SetRGB(rgb RGB) {
	if cb.rgbSet && cb.rgb.Equals(rgb) {
		return
	}
	cb.rgb, cb.rgbSet = rgb, true
	cb.appendInts(RendererSetRGB)
	cb.appendFloats(rgb.R, rgb.G, rgb.B)
}

// LineWidth adds a command to the command buffer that sets the width in
// pixels of subsequent lines and outlines that are drawn.
func (cb *CommandBuffer) LineWidth(w float32) {
	if cb.widthSet && cb.width == w {
		return
	}
	cb.width, cb.widthSet = w, true
	cb.appendInts(RendererLineWidth)
	cb.appendFloats(w)
}

func (cb *CommandBuffer) DrawLine(p0, p1 [2]float64, color RGB, width float64) {
	cb.SetRGB(color)
	cb.LineWidth(float32(width))
	cb.appendInts(RendererDrawLine)
	cb.appendFloats(float32(p0[0]), float32(p0[1]), float32(p1[0]), float32(p1[1]))
}

func (cb *CommandBuffer) DrawEllipse(center [2]float64, rx, ry float64, color RGB, width float64, filled bool) {
	cb.SetRGB(color)
	if filled {
		cb.appendInts(RendererFillEllipse)
	} else {
		cb.LineWidth(float32(width))
		cb.appendInts(RendererDrawEllipse)
	}
	cb.appendFloats(float32(center[0]), float32(center[1]), float32(rx), float32(ry))
}

func (cb *CommandBuffer) FillTriangles(tris [][3][2]float64, color RGB) {
	if len(tris) == 0 {
		return
	}
	cb.SetRGB(color)
	cb.appendInts(RendererFillTriangles, len(tris))
	cb.growFor(6 * len(tris))
	for _, tri := range tris {
		for _, v := range tri {
			cb.appendFloats(float32(v[0]), float32(v[1]))
		}
	}
}

// Replay decodes the commands in the buffer and issues the corresponding
// calls to s. It returns an error if the buffer is malformed.
func (cb *CommandBuffer) Replay(s Surface) error {
	var rgb RGB
	var width float64
	i := 0

	float := func() float64 {
		f := gomath.Float32frombits(cb.Buf[i])
		i++
		return float64(f)
	}
	need := func(n int) error {
		if i+n > len(cb.Buf) {
			return fmt.Errorf("command buffer truncated at offset %d", i)
		}
		return nil
	}

	for i < len(cb.Buf) {
		cmd := cb.Buf[i]
		i++

		switch cmd {
		case RendererSetRGB:
			if err := need(3); err != nil {
				return err
			}
			rgb = RGB{R: float32(float()), G: float32(float()), B: float32(float())}

		case RendererLineWidth:
			if err := need(1); err != nil {
				return err
			}
			width = float()

		case RendererDrawLine:
			if err := need(4); err != nil {
				return err
			}
			p0 := [2]float64{float(), float()}
			p1 := [2]float64{float(), float()}
			s.DrawLine(p0, p1, rgb, width)

		case RendererDrawEllipse, RendererFillEllipse:
			if err := need(4); err != nil {
				return err
			}
			c := [2]float64{float(), float()}
			rx, ry := float(), float()
			s.DrawEllipse(c, rx, ry, rgb, width, cmd == RendererFillEllipse)

		case RendererFillTriangles:
			if err := need(1); err != nil {
				return err
			}
			n := int(cb.Buf[i])
			i++
			if err := need(6 * n); err != nil {
				return err
			}
			tris := make([][3][2]float64, n)
			for t := range tris {
				for v := range 3 {
					tris[t][v] = [2]float64{float(), float()}
				}
			}
			s.FillTriangles(tris, rgb)

		default:
			return fmt.Errorf("%d: unknown command at offset %d", cmd, i-1)
		}
	}
	return nil
}
