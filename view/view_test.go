// view/view_test.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package view

import (
	"testing"

	"github.com/platecad/platecad/math"
	"github.com/platecad/platecad/scene"
)

func TestToScreenConcrete(t *testing.T) {
	sc := scene.New()
	id := sc.AddPoint(math.Vector3{10, 0, 0}, scene.Red)
	vp := Viewport{Zoom: 1}

	// Row 0 of the display matrix is (0,0,1) and row 1 is (0,1,0), so a
	// point on the world x axis lands on the plate origin.
	if s := vp.ToScreen(sc, sc.Pos(id)); s != [2]int{0, 0} {
		t.Errorf("got %v, expected [0 0]", s)
	}
	if d := sc.Project(sc.Pos(id))[2]; d != 10 {
		t.Errorf("depth got %f, expected 10", d)
	}

	vp = Viewport{Offset: [2]float64{100, 50}, Zoom: 2}
	if s := vp.ToScreen(sc, math.Vector3{0, 3, 4}); s != [2]int{108, 56} {
		t.Errorf("got %v, expected [108 56]", s)
	}
}

func TestToScreenTruncates(t *testing.T) {
	sc := scene.New()
	vp := Viewport{Zoom: 1}
	if s := vp.ToScreen(sc, math.Vector3{0, 1.9, 2.7}); s != [2]int{2, 1} {
		t.Errorf("got %v, expected [2 1]", s)
	}
	if s := vp.ToScreenF(sc, math.Vector3{0, 1.5, 2.5}); s != [2]float64{2.5, 1.5} {
		t.Errorf("got %v, expected [2.5 1.5]", s)
	}
}

func TestScreenRoundTrip(t *testing.T) {
	ops := math.MakeRotationOperators(math.DefaultRotationStep)

	for _, vp := range []Viewport{
		{Offset: [2]float64{0, 0}, Zoom: 1},
		DefaultViewport(),
		{Offset: [2]float64{-30, 200}, Zoom: 4},
		{Offset: [2]float64{12, 7}, Zoom: 0.5},
	} {
		sc := scene.New()
		for _, a := range []math.Axis{math.XPlus, math.YMinus, math.ZPlus, math.YMinus} {
			sc.RotateAxis(a, &ops)
		}

		for _, px := range [][2]float64{{0, 0}, {640, 360}, {13, -27}, {1000, 3}} {
			w := vp.ToWorld(sc, px)
			if d := sc.DistanceToPlane(w); math.Abs(d) > 1e-9 {
				t.Errorf("%v: ToWorld(%v) is %f off the plate", vp, px, d)
			}
			s := vp.ToScreenF(sc, w)
			if math.Abs(s[0]-px[0]) > 1e-6 || math.Abs(s[1]-px[1]) > 1e-6 {
				t.Errorf("%v: round trip of %v gave %v", vp, px, s)
			}

			// And the other direction, for a point on the plate.
			w2 := vp.ToWorld(sc, vp.ToScreenF(sc, w))
			if !math.ApproxEqual(w, w2, 1e-6) {
				t.Errorf("%v: world round trip of %v gave %v", vp, w, w2)
			}
		}
	}
}

func TestPanZoom(t *testing.T) {
	vp := DefaultViewport()
	vp.Pan(10, -20)
	if vp.Offset != [2]float64{650, 340} {
		t.Errorf("got offset %v, expected [650 340]", vp.Offset)
	}

	vp.Zoom = 2
	vp.Pan(10, 10)
	if vp.Offset != [2]float64{655, 345} {
		t.Errorf("got offset %v, expected [655 345]", vp.Offset)
	}

	vp.ZoomBy(1000)
	if vp.Zoom != MaxZoom {
		t.Errorf("zoom got %f, expected clamp to %f", vp.Zoom, float64(MaxZoom))
	}
	vp.ZoomBy(1e-6)
	if vp.Zoom != MinZoom {
		t.Errorf("zoom got %f, expected clamp to %f", vp.Zoom, MinZoom)
	}
}

func TestScreenCache(t *testing.T) {
	sc := scene.New()
	front := sc.AddPoint(math.Vector3{1, 2, 3}, scene.Green)
	behind := sc.AddPoint(math.Vector3{-1, 5, 5}, scene.Green)
	// Allocated but never added; it shouldn't be cached.
	loose := sc.NewPoint(math.Vector3{0, 9, 9}, scene.Green, scene.DefaultPointWidth)

	c := NewScreenCache()
	vp := Viewport{Zoom: 1}
	c.Refresh(sc, vp, false)
	if s, ok := c.Lookup(sc.Pos(front)); !ok || s != [2]float64{3, 2} {
		t.Errorf("front: got %v %v, expected [3 2] true", s, ok)
	}
	if _, ok := c.Lookup(sc.Pos(behind)); !ok {
		t.Errorf("behind should be cached without culling")
	}
	if _, ok := c.Lookup(sc.Pos(loose)); ok {
		t.Errorf("point without an entity was cached")
	}

	c.Refresh(sc, vp, true)
	if _, ok := c.Lookup(sc.Pos(behind)); ok {
		t.Errorf("point behind the plate should be culled")
	}
	if _, ok := c.Lookup(sc.Pos(front)); !ok {
		t.Errorf("front point missing after culling refresh")
	}

	// Coincident points share an entry.
	sc.AddPoint(math.Vector3{1, 2, 3}, scene.Red)
	c.Refresh(sc, vp, true)
	if c.Len() != 1 {
		t.Errorf("got %d entries, expected 1", c.Len())
	}

	c.Reset()
	if _, ok := c.Lookup(sc.Pos(front)); ok {
		t.Errorf("Reset left entries behind")
	}
}

func TestScreenCacheEllipse(t *testing.T) {
	sc := scene.New()
	a := sc.NewPoint(math.Vector3{0, 0, 0}, scene.Blue, scene.DefaultPointWidth)
	b := sc.NewPoint(math.Vector3{2, 4, 6}, scene.Blue, scene.DefaultPointWidth)
	sc.AddEllipse(a, b, scene.Blue)

	c := NewScreenCache()
	c.Refresh(sc, Viewport{Zoom: 1}, false)
	// Two corners and two for each of the three auxiliary ellipses.
	if c.Len() != 8 {
		t.Errorf("got %d entries, expected 8", c.Len())
	}
	if _, ok := c.Lookup(math.Vector3{0, 0, 3}); !ok {
		t.Errorf("auxiliary ellipse corner missing")
	}
}
