// render/rgb.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package render

import (
	"github.com/platecad/platecad/scene"
)

///////////////////////////////////////////////////////////////////////////
// RGB

type RGB struct {
	R, G, B float32
}

func (r RGB) Equals(other RGB) bool {
	return r.R == other.R && r.G == other.G && r.B == other.B
}

func (r RGB) Scale(v float32) RGB {
	return RGB{R: r.R * v, G: r.G * v, B: r.B * v}
}

// RGBFromHex converts a packed integer color value to an RGB where the low
// 8 bits give blue, the next 8 give green, and then the next 8 give red.
func RGBFromHex(c int) RGB {
	r, g, b := (c>>16)&255, (c>>8)&255, c&255
	return RGB{R: float32(r) / 255, G: float32(g) / 255, B: float32(b) / 255}
}

var palette = [scene.NumColors]RGB{
	scene.Black:  RGBFromHex(0x000000),
	scene.Red:    RGBFromHex(0xff0000),
	scene.Green:  RGBFromHex(0x00ff00),
	scene.Yellow: RGBFromHex(0xffff00),
	scene.Blue:   RGBFromHex(0x0000ff),
}

// ColorRGB returns the display color for an entity color. Invalid colors
// are drawn in magenta so they stand out.
func ColorRGB(c scene.Color) RGB {
	if !c.Valid() {
		return RGBFromHex(0xff00ff)
	}
	return palette[c]
}
