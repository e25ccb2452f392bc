// scene/scene.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package scene holds the editable 3D content: the point arena, the
// entities that refer to it, and the display basis that determines how
// the content is projected onto the 2D display plate.
//
// A Scene is single-owner state. It does no locking; concurrent mutation
// from multiple goroutines is undefined behavior.
package scene

import (
	"fmt"

	"github.com/brunoga/deep"

	"github.com/platecad/platecad/math"
)

type Scene struct {
	// WorldBasis gives the world coordinate axes; it's only used for
	// drawing the axes gizmo.
	WorldBasis [3]math.Vector3
	// Origin is the plate origin. New points are authored on the plane
	// through it spanned by the first two display basis vectors.
	Origin Point
	// DisplayBasis is the current orthonormal projection frame; the third
	// vector is the plate normal.
	DisplayBasis [3]math.Vector3

	Points   []Point
	Entities []Entity

	// Derived from DisplayBasis; never set directly.
	displayMatrix math.Matrix3
}

// DefaultDisplayBasis is the display basis of a new scene: looking down the
// world x axis.
var DefaultDisplayBasis = [3]math.Vector3{{0, 0, 1}, {0, 1, 0}, {1, 0, 0}}

func New() *Scene {
	sc := &Scene{
		WorldBasis:   [3]math.Vector3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		Origin:       Point{Color: Black, Width: DefaultPointWidth},
		DisplayBasis: DefaultDisplayBasis,
	}
	sc.updateDisplayMatrix()
	return sc
}

// SetDisplayBasis replaces the display basis; it's used when a scene is
// loaded. The caller is responsible for the basis being orthonormal.
func (sc *Scene) SetDisplayBasis(b [3]math.Vector3) {
	sc.DisplayBasis = b
	sc.updateDisplayMatrix()
}

func (sc *Scene) updateDisplayMatrix() {
	sc.displayMatrix = math.MatrixFromRows(sc.DisplayBasis)
	for _, e := range sc.Entities {
		if el, ok := e.(*Ellipse); ok {
			// Radii are measured on the plate.
			el.Radii = nil
		}
	}
}

// DisplayMatrix returns the matrix with the display basis vectors as its
// rows.
func (sc *Scene) DisplayMatrix() math.Matrix3 {
	return sc.displayMatrix
}

///////////////////////////////////////////////////////////////////////////
// Points

// NewPoint allocates a point in the arena without adding an entity for it.
// Gestures use it to build up the points of a line, place, or ellipse
// before the entity is added.
func (sc *Scene) NewPoint(pos math.Vector3, color Color, width int) PointID {
	sc.Points = append(sc.Points, Point{Pos: pos, Color: color, Width: width})
	return PointID(len(sc.Points) - 1)
}

// Point returns the arena point with the given id. It panics if the id is
// out of range.
func (sc *Scene) Point(id PointID) Point {
	return sc.Points[id]
}

func (sc *Scene) Pos(id PointID) math.Vector3 {
	return sc.Points[id].Pos
}

// FindPoint returns the first arena point at the given position, if any.
func (sc *Scene) FindPoint(pos math.Vector3) (PointID, bool) {
	for i, p := range sc.Points {
		if p.Pos == pos {
			return PointID(i), true
		}
	}
	return 0, false
}

///////////////////////////////////////////////////////////////////////////
// Adding entities

// AddPoint creates a new point with the default width and appends it to
// the entity list.
func (sc *Scene) AddPoint(pos math.Vector3, color Color) PointID {
	return sc.AddPointWidth(pos, color, DefaultPointWidth)
}

func (sc *Scene) AddPointWidth(pos math.Vector3, color Color, width int) PointID {
	id := sc.NewPoint(pos, color, width)
	sc.AddExistingPoint(id)
	return id
}

// AddExistingPoint appends a point that's already in the arena to the
// entity list. The same point may be added more than once.
func (sc *Scene) AddExistingPoint(id PointID) *PointEntity {
	pe := &PointEntity{ID: id}
	sc.Entities = append(sc.Entities, pe)
	return pe
}

// AddLine appends a line between two arena points. The points don't need
// to have been added as entities.
func (sc *Scene) AddLine(p1, p2 PointID, color Color) *Line {
	return sc.AddLineWidth(p1, p2, color, DefaultLineWidth)
}

func (sc *Scene) AddLineWidth(p1, p2 PointID, color Color, width int) *Line {
	l := &Line{Start: p1, End: p2, Color: color, Width: width}
	sc.Entities = append(sc.Entities, l)
	return l
}

// AddPlace appends a polygon with the given vertices. With fewer than
// three points nothing is added and false is returned; that's the normal
// state partway through authoring a place, not an error.
func (sc *Scene) AddPlace(ids []PointID, color Color) (*Place, bool) {
	return sc.AddPlaceWidth(ids, color, DefaultPlaceWidth)
}

func (sc *Scene) AddPlaceWidth(ids []PointID, color Color, width int) (*Place, bool) {
	if len(ids) < 3 {
		return nil, false
	}
	p := &Place{Points: append([]PointID(nil), ids...), Color: color, Width: width}
	sc.Entities = append(sc.Entities, p)
	return p, true
}

// AddEllipse appends the ellipse inscribed in the bounding box with the
// given corners.
func (sc *Scene) AddEllipse(p1, p2 PointID, color Color) *Ellipse {
	return sc.AddEllipseWidth(p1, p2, color, DefaultEllipseWidth)
}

func (sc *Scene) AddEllipseWidth(p1, p2 PointID, color Color, width int) *Ellipse {
	e := &Ellipse{TopLeft: p1, BottomRight: p2, Color: color, Width: width}
	sc.Entities = append(sc.Entities, e)
	return e
}

// EntityColor returns the color e is drawn with; point entities take
// theirs from the arena point.
func (sc *Scene) EntityColor(e Entity) Color {
	switch e := e.(type) {
	case *PointEntity:
		return sc.Points[e.ID].Color
	case *Line:
		return e.Color
	case *Place:
		return e.Color
	case *Ellipse:
		return e.Color
	default:
		panic(fmt.Sprintf("%T: unhandled entity type", e))
	}
}

// EntityWidth returns e's hit radius in pixels.
func (sc *Scene) EntityWidth(e Entity) int {
	switch e := e.(type) {
	case *PointEntity:
		return sc.Points[e.ID].Width
	case *Line:
		return e.Width
	case *Place:
		return e.Width
	case *Ellipse:
		return e.Width
	default:
		panic(fmt.Sprintf("%T: unhandled entity type", e))
	}
}

// Counts returns the number of entities of each kind.
func (sc *Scene) Counts() map[Kind]int {
	m := make(map[Kind]int)
	for _, e := range sc.Entities {
		m[e.Kind()]++
	}
	return m
}

///////////////////////////////////////////////////////////////////////////
// Projection

// Rotate applies the rotation op to each of the display basis vectors.
func (sc *Scene) Rotate(op math.Matrix3) {
	for i := range sc.DisplayBasis {
		sc.DisplayBasis[i] = math.Multiply(op, sc.DisplayBasis[i])
	}
	sc.updateDisplayMatrix()
}

func (sc *Scene) RotateAxis(a math.Axis, ops *math.RotationOperators) {
	sc.Rotate(ops.Get(a))
}

// Project returns v in display-plate coordinates. The third component is
// only meaningful as a depth for ordering.
func (sc *Scene) Project(v math.Vector3) math.Vector3 {
	return math.Multiply(sc.displayMatrix, v)
}

// DistanceToPlane returns the signed distance from v to the display plate
// along its normal. Non-negative values are in front of or on the plate.
func (sc *Scene) DistanceToPlane(v math.Vector3) float64 {
	return math.Dot(math.Sub(v, sc.Origin.Pos), sc.DisplayBasis[2])
}

///////////////////////////////////////////////////////////////////////////
// Editing

// MovePoint translates an arena point. Every entity that refers to it
// moves along with it.
func (sc *Scene) MovePoint(id PointID, delta math.Vector3) {
	sc.Points[id].Pos = math.Add(sc.Points[id].Pos, delta)
	sc.invalidateEllipses(map[PointID]bool{id: true})
}

// MoveEntity translates all of the points of the entity at the given index
// in the entity list. Points that the entity refers to more than once are
// only moved once.
func (sc *Scene) MoveEntity(index int, delta math.Vector3) {
	moved := make(map[PointID]bool)
	for _, id := range sc.Entities[index].PointIDs() {
		if !moved[id] {
			sc.Points[id].Pos = math.Add(sc.Points[id].Pos, delta)
			moved[id] = true
		}
	}
	sc.invalidateEllipses(moved)
}

func (sc *Scene) invalidateEllipses(moved map[PointID]bool) {
	for _, e := range sc.Entities {
		if el, ok := e.(*Ellipse); ok && (moved[el.TopLeft] || moved[el.BottomRight]) {
			el.invalidate()
		}
	}
}

///////////////////////////////////////////////////////////////////////////
// Ellipses

// EllipseRadii returns the half-extents of e's bounding box on the display
// plate, computing and caching them if needed.
func (sc *Scene) EllipseRadii(e *Ellipse) Radii {
	if e.Radii == nil {
		p0, p1 := sc.Project(sc.Pos(e.TopLeft)), sc.Project(sc.Pos(e.BottomRight))
		e.Radii = &Radii{
			RX: math.Abs(p1[0]-p0[0]) / 2,
			RY: math.Abs(p1[1]-p0[1]) / 2,
		}
	}
	return *e.Radii
}

// AuxEllipses returns e's auxiliary ellipses, deriving them from the
// corner positions if needed.
func (sc *Scene) AuxEllipses(e *Ellipse) []AuxEllipse {
	if e.Aux == nil {
		e.Aux = MakeAuxEllipses(sc.Pos(e.TopLeft), sc.Pos(e.BottomRight))
	}
	return e.Aux
}

///////////////////////////////////////////////////////////////////////////

// Clone returns a deep copy of the scene; entities in the copy refer to
// the copy's own arena.
func (sc *Scene) Clone() *Scene {
	c := deep.MustCopy(sc)
	c.updateDisplayMatrix()
	return c
}

func (sc *Scene) String() string {
	c := sc.Counts()
	return fmt.Sprintf("%d points, %d lines, %d places, %d ellipses",
		c[KindPoint], c[KindLine], c[KindPlace], c[KindEllipse])
}
