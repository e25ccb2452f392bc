// render/draw.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package render draws a scene by issuing 2D primitives in window
// coordinates to a Surface.
package render

import (
	"fmt"

	"github.com/mmp/earcut-go"
	"github.com/platecad/platecad/log"
	"github.com/platecad/platecad/math"
	"github.com/platecad/platecad/scene"
	"github.com/platecad/platecad/view"
)

// Surface is the window system side of drawing. All positions are in
// window pixels.
type Surface interface {
	DrawLine(p0, p1 [2]float64, color RGB, width float64)
	DrawEllipse(center [2]float64, rx, ry float64, color RGB, width float64, filled bool)
	FillTriangles(tris [][3][2]float64, color RGB)
}

// Settings control how scenes are drawn.
type Settings struct {
	// Cull leaves out points that are behind the display plate; entities
	// with a culled point are neither drawn nor pickable.
	Cull bool

	ShowGizmo bool
	// GizmoAnchor is the window position of the world origin in the axes
	// gizmo, and GizmoSize the length of its axes in pixels.
	GizmoAnchor [2]float64
	GizmoSize   float64
}

func DefaultSettings() Settings {
	return Settings{
		Cull:        true,
		ShowGizmo:   true,
		GizmoAnchor: [2]float64{1200, 60},
		GizmoSize:   50,
	}
}

const (
	gizmoWidth    = 3
	gizmoDotWidth = 5
	auxWidth      = 1
)

// The gizmo draws the world x, y, and z axes in these colors.
var gizmoColors = [3]RGB{ColorRGB(scene.Green), ColorRGB(scene.Blue), ColorRGB(scene.Red)}

// Stats summarizes a draw pass.
type Stats struct {
	Drawn   [scene.NumKinds]int
	Skipped int // entities with a point that wasn't visible
}

func (s Stats) String() string {
	return fmt.Sprintf("points %d lines %d places %d ellipses %d skipped %d",
		s.Drawn[scene.KindPoint], s.Drawn[scene.KindLine], s.Drawn[scene.KindPlace],
		s.Drawn[scene.KindEllipse], s.Skipped)
}

// Drawer runs draw passes. Its Cache holds the window coordinates from the
// most recent pass and is what picking should be done against.
type Drawer struct {
	Settings Settings
	Cache    *view.ScreenCache

	lg *log.Logger
}

func NewDrawer(settings Settings, lg *log.Logger) *Drawer {
	return &Drawer{
		Settings: settings,
		Cache:    view.NewScreenCache(),
		lg:       lg,
	}
}

// Draw refreshes the screen cache for sc and vp and then issues the
// primitives for the gizmo and each of the entities, in order, to s.
func (d *Drawer) Draw(s Surface, sc *scene.Scene, vp view.Viewport) Stats {
	d.Cache.Refresh(sc, vp, d.Settings.Cull)

	if d.Settings.ShowGizmo {
		d.drawGizmo(s, sc)
	}

	var stats Stats
	for _, e := range sc.Entities {
		if d.drawEntity(s, sc, vp, e) {
			stats.Drawn[e.Kind()]++
		} else {
			stats.Skipped++
		}
	}

	d.lg.Debug("draw pass", "viewport", vp, "stats", stats)

	return stats
}

// drawGizmo draws the world basis vectors as seen through the current
// display basis, anchored at a fixed window position that doesn't pan or
// zoom.
func (d *Drawer) drawGizmo(s Surface, sc *scene.Scene) {
	anchor := func(v math.Vector3) [2]float64 {
		p := sc.Project(v)
		return math.Add2([2]float64{p[0], p[1]}, d.Settings.GizmoAnchor)
	}
	dot := func(p [2]float64, c RGB) {
		s.DrawEllipse(p, gizmoDotWidth/2., gizmoDotWidth/2., c, 1, true)
	}

	o := anchor(sc.Origin.Pos)
	dot(o, ColorRGB(sc.Origin.Color))
	for i, b := range sc.WorldBasis {
		p := anchor(math.Add(sc.Origin.Pos, math.Scale(b, d.Settings.GizmoSize)))
		s.DrawLine(o, p, gizmoColors[i], gizmoWidth)
		dot(p, gizmoColors[i])
	}
}

// lookup returns the cached window positions of the given points; it
// returns false if any of them isn't visible.
func (d *Drawer) lookup(sc *scene.Scene, ids ...scene.PointID) ([][2]float64, bool) {
	pts := make([][2]float64, len(ids))
	for i, id := range ids {
		p, ok := d.Cache.Lookup(sc.Pos(id))
		if !ok {
			return nil, false
		}
		pts[i] = p
	}
	return pts, true
}

func (d *Drawer) drawEntity(s Surface, sc *scene.Scene, vp view.Viewport, e scene.Entity) bool {
	pts, ok := d.lookup(sc, e.PointIDs()...)
	if !ok {
		return false
	}
	color := ColorRGB(sc.EntityColor(e))
	width := float64(sc.EntityWidth(e))

	switch e := e.(type) {
	case *scene.PointEntity:
		s.DrawEllipse(pts[0], width/2, width/2, color, 1, true)

	case *scene.Line:
		s.DrawLine(pts[0], pts[1], color, width)

	case *scene.Place:
		s.FillTriangles(Triangulate(pts), color)
		for i := range pts {
			s.DrawLine(pts[i], pts[(i+1)%len(pts)], color, width)
		}

	case *scene.Ellipse:
		r := sc.EllipseRadii(e)
		s.DrawEllipse(math.Mid2(pts[0], pts[1]), r.RX*vp.Zoom, r.RY*vp.Zoom, color, width, false)

		for _, aux := range sc.AuxEllipses(e) {
			p0, ok0 := d.Cache.Lookup(aux.TopLeft)
			p1, ok1 := d.Cache.Lookup(aux.BottomRight)
			if !ok0 || !ok1 {
				continue
			}
			ext := math.Extent2DFromPoints(p0, p1)
			s.DrawEllipse(ext.Center(), ext.Width()/2, ext.Height()/2, color, auxWidth, false)
		}

	default:
		panic(fmt.Sprintf("%T: unhandled entity type", e))
	}

	return true
}

// Triangulate returns triangles that cover the polygon with the given
// vertices. Polygons with fewer than three vertices give no triangles.
func Triangulate(pts [][2]float64) [][3][2]float64 {
	if len(pts) < 3 {
		return nil
	}

	vertices := make([]earcut.Vertex, len(pts))
	for i, p := range pts {
		vertices[i].P = p
	}

	var tris [][3][2]float64
	for _, tri := range earcut.Triangulate(earcut.Polygon{Rings: [][]earcut.Vertex{vertices}}) {
		var t [3][2]float64
		for i, v := range tri.Vertices {
			t[i] = v.P
		}
		tris = append(tris, t)
	}
	return tris
}
