// view/projector.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package view maps between world space and the pixels of the viewport
// window.
package view

import (
	"fmt"

	"github.com/platecad/platecad/math"
	"github.com/platecad/platecad/scene"
)

const (
	MinZoom = 0.05
	MaxZoom = 50
)

// Viewport holds the 2D part of the screen mapping: a pixel offset for the
// plate origin and a zoom factor (pixels per world unit).
type Viewport struct {
	Offset [2]float64
	Zoom   float64
}

// DefaultViewport centers the plate origin in a 1280x720 window.
func DefaultViewport() Viewport {
	return Viewport{Offset: [2]float64{640, 360}, Zoom: 1}
}

// Pan moves the viewport by the given screen-space delta. As with the
// mouse drag that drives it, the delta is divided by the zoom.
func (vp *Viewport) Pan(dx, dy float64) {
	vp.Offset[0] += dx / vp.Zoom
	vp.Offset[1] += dy / vp.Zoom
}

// ZoomBy scales the zoom factor, keeping it within [MinZoom, MaxZoom].
func (vp *Viewport) ZoomBy(f float64) {
	vp.Zoom = math.Clamp(vp.Zoom*f, MinZoom, MaxZoom)
}

func (vp Viewport) String() string {
	return fmt.Sprintf("offset (%.1f, %.1f) zoom %.2f", vp.Offset[0], vp.Offset[1], vp.Zoom)
}

// ToScreenF returns the window position of the world-space point p
// without rounding.
func (vp Viewport) ToScreenF(sc *scene.Scene, p math.Vector3) [2]float64 {
	pp := sc.Project(p)
	return [2]float64{pp[0]*vp.Zoom + vp.Offset[0], pp[1]*vp.Zoom + vp.Offset[1]}
}

// ToScreen returns the pixel that p projects to; coordinates are
// truncated toward zero.
func (vp Viewport) ToScreen(sc *scene.Scene, p math.Vector3) [2]int {
	s := vp.ToScreenF(sc, p)
	return [2]int{int(s[0]), int(s[1])}
}

// ToWorld maps a window position back to the point on the working plane
// that projects to it. The working plane is spanned by the first two
// display basis vectors.
func (vp Viewport) ToWorld(sc *scene.Scene, s [2]float64) math.Vector3 {
	u := (s[0] - vp.Offset[0]) / vp.Zoom
	v := (s[1] - vp.Offset[1]) / vp.Zoom
	return math.Add(math.Scale(sc.DisplayBasis[0], u), math.Scale(sc.DisplayBasis[1], v))
}

// ToWorldV maps a window-space displacement to a world-space one along
// the working plane.
func (vp Viewport) ToWorldV(sc *scene.Scene, d [2]float64) math.Vector3 {
	return math.Add(math.Scale(sc.DisplayBasis[0], d[0]/vp.Zoom), math.Scale(sc.DisplayBasis[1], d[1]/vp.Zoom))
}
