// pick/pick.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package pick finds the entity under a mouse click.
package pick

import (
	"fmt"

	"github.com/platecad/platecad/math"
	"github.com/platecad/platecad/scene"
)

// Coords provides the window coordinates of points as of the last draw
// pass; *view.ScreenCache implements it. Points without coordinates
// aren't visible and can't be picked.
type Coords interface {
	Lookup(pos math.Vector3) ([2]float64, bool)
}

// Hit is a picked entity along with its index in the scene's entity list.
type Hit struct {
	Index  int
	Entity scene.Entity
}

// Pick returns the first entity in insertion order that contains the
// click. Entities that are drawn later aren't preferred; the first match
// always wins. It returns false if nothing was hit.
func Pick(click [2]float64, sc *scene.Scene, coords Coords) (Hit, bool) {
	for i, e := range sc.Entities {
		if Test(click, sc, e, coords) {
			return Hit{Index: i, Entity: e}, true
		}
	}
	return Hit{}, false
}

// PickPoint is like Pick but only considers point entities. It returns
// the arena id of the point that was hit.
func PickPoint(click [2]float64, sc *scene.Scene, coords Coords) (scene.PointID, bool) {
	for _, e := range sc.Entities {
		if pe, ok := e.(*scene.PointEntity); ok && Test(click, sc, e, coords) {
			return pe.ID, true
		}
	}
	return 0, false
}

// Test reports whether the click lands on e.
func Test(click [2]float64, sc *scene.Scene, e scene.Entity, coords Coords) bool {
	width := float64(sc.EntityWidth(e))

	switch e := e.(type) {
	case *scene.PointEntity:
		p, ok := coords.Lookup(sc.Pos(e.ID))
		return ok && math.Distance2(click, p) < width

	case *scene.Line:
		p0, ok0 := coords.Lookup(sc.Pos(e.Start))
		p1, ok1 := coords.Lookup(sc.Pos(e.End))
		return ok0 && ok1 && math.SegmentProximity(click, p0, p1) < width

	case *scene.Place:
		pts := make([][2]float64, 0, len(e.Points))
		for _, id := range e.Points {
			p, ok := coords.Lookup(sc.Pos(id))
			if !ok {
				return false
			}
			pts = append(pts, p)
		}
		return math.PointInConvexPolygon(click, pts)

	case *scene.Ellipse:
		if insideEllipse(click, sc.Pos(e.TopLeft), sc.Pos(e.BottomRight), coords) {
			return true
		}
		for _, aux := range sc.AuxEllipses(e) {
			if insideEllipse(click, aux.TopLeft, aux.BottomRight, coords) {
				return true
			}
		}
		return false

	default:
		panic(fmt.Sprintf("%T: unhandled entity type", e))
	}
}

func insideEllipse(click [2]float64, tl, br math.Vector3, coords Coords) bool {
	p0, ok0 := coords.Lookup(tl)
	p1, ok1 := coords.Lookup(br)
	return ok0 && ok1 && math.PointInEllipse(click, p0, p1)
}
