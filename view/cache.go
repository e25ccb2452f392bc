// view/cache.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package view

import (
	"github.com/platecad/platecad/math"
	"github.com/platecad/platecad/scene"
)

// ScreenCache holds the window coordinates of each point as of the most
// recent draw pass. Points are keyed by position, so coincident points
// share an entry. A point that's missing hasn't been projected in the
// current pass (or was culled) and should be treated as not visible.
type ScreenCache struct {
	coords map[math.Vector3][2]float64
}

func NewScreenCache() *ScreenCache {
	return &ScreenCache{coords: make(map[math.Vector3][2]float64)}
}

// Reset empties the cache; it should be called at the start of each pass.
func (c *ScreenCache) Reset() {
	clear(c.coords)
}

func (c *ScreenCache) Set(pos math.Vector3, s [2]float64) {
	c.coords[pos] = s
}

func (c *ScreenCache) Lookup(pos math.Vector3) ([2]float64, bool) {
	s, ok := c.coords[pos]
	return s, ok
}

func (c *ScreenCache) Len() int {
	return len(c.coords)
}

// Refresh rebuilds the cache for the current scene and viewport, storing
// the pixel coordinates returned by Viewport.ToScreen. Every
// point referenced by an entity is projected, along with the corners of
// the auxiliary ellipses. If cull is set, points behind the display plate
// are left out.
func (c *ScreenCache) Refresh(sc *scene.Scene, vp Viewport, cull bool) {
	c.Reset()

	add := func(pos math.Vector3) {
		if cull && sc.DistanceToPlane(pos) < 0 {
			return
		}
		s := vp.ToScreen(sc, pos)
		c.Set(pos, [2]float64{float64(s[0]), float64(s[1])})
	}

	for _, e := range sc.Entities {
		for _, id := range e.PointIDs() {
			add(sc.Pos(id))
		}
		if el, ok := e.(*scene.Ellipse); ok {
			for _, aux := range sc.AuxEllipses(el) {
				add(aux.TopLeft)
				add(aux.BottomRight)
			}
		}
	}
}
