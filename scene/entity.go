// scene/entity.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scene

import (
	"fmt"

	"github.com/platecad/platecad/math"
)

// Point is a position in world space along with how it's drawn. Two points
// are the same point if they are at the same position; color and width
// don't participate.
type Point struct {
	Pos   math.Vector3
	Color Color
	Width int
}

func (p Point) Equal(q Point) bool {
	return p.Pos == q.Pos
}

func (p Point) String() string {
	return fmt.Sprintf("pt(%g, %g, %g)", p.Pos[0], p.Pos[1], p.Pos[2])
}

// PointID identifies a point in a Scene's point arena. Entities refer to
// their points by ID so that a single point may be shared by multiple
// lines, places, and ellipses.
type PointID int

// Kind discriminates the entity types.
type Kind int

const (
	KindPoint Kind = iota
	KindLine
	KindPlace
	KindEllipse
	NumKinds
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "Point"
	case KindLine:
		return "Line"
	case KindPlace:
		return "Place"
	case KindEllipse:
		return "Ellipse"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{KindPoint, KindLine, KindPlace, KindEllipse} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%q: unknown entity kind", s)
}

// Entity is one of *PointEntity, *Line, *Place, or *Ellipse. The set is
// closed; code that switches on the concrete type should panic on anything
// else.
type Entity interface {
	Kind() Kind
	// PointIDs returns the arena points that the entity refers to, in
	// order, possibly with repeats.
	PointIDs() []PointID

	isEntity()
}

// PointEntity is a point that's been added to the scene as an entity in
// its own right; the point itself lives in the arena.
type PointEntity struct {
	ID PointID
}

func (p *PointEntity) Kind() Kind          { return KindPoint }
func (p *PointEntity) PointIDs() []PointID { return []PointID{p.ID} }
func (p *PointEntity) isEntity()           {}

type Line struct {
	Start, End PointID
	Color      Color
	Width      int
}

func (l *Line) Kind() Kind          { return KindLine }
func (l *Line) PointIDs() []PointID { return []PointID{l.Start, l.End} }
func (l *Line) isEntity()           {}

// Place is a planar polygon. Places in a Scene always have at least three
// points.
type Place struct {
	Points []PointID
	Color  Color
	Width  int
}

func (p *Place) Kind() Kind          { return KindPlace }
func (p *Place) PointIDs() []PointID { return p.Points }
func (p *Place) isEntity()           {}

// Radii holds the half-extents of an ellipse's bounding box, measured on
// the display plate when they were computed.
type Radii struct {
	RX, RY float64
}

// AuxEllipse is one of the auxiliary ellipses that give an Ellipse some
// sense of depth. Its corners are world-space positions rather than arena
// points since they are derived from the parent's corners.
type AuxEllipse struct {
	TopLeft, BottomRight math.Vector3
}

// Ellipse is the ellipse inscribed in the bounding box given by two
// corner points.
type Ellipse struct {
	TopLeft, BottomRight PointID
	Color                Color
	Width                int

	// Radii and Aux are caches derived from the corner positions; nil
	// means they need to be (re)computed. The Scene clears them whenever
	// either corner moves.
	Radii *Radii
	Aux   []AuxEllipse
}

func (e *Ellipse) Kind() Kind          { return KindEllipse }
func (e *Ellipse) PointIDs() []PointID { return []PointID{e.TopLeft, e.BottomRight} }
func (e *Ellipse) isEntity()           {}

func (e *Ellipse) invalidate() {
	e.Radii = nil
	e.Aux = nil
}

// MakeAuxEllipses returns the three auxiliary ellipses for an ellipse with
// the given world-space corners. Each lies in a plane parallel to one of
// the world coordinate planes (XY, YZ, XZ) through the center of the
// bounding box.
func MakeAuxEllipses(tl, br math.Vector3) []AuxEllipse {
	c := math.Scale(math.Add(tl, br), 0.5)
	return []AuxEllipse{
		{TopLeft: math.Vector3{tl[0], tl[1], c[2]}, BottomRight: math.Vector3{br[0], br[1], c[2]}},
		{TopLeft: math.Vector3{c[0], tl[1], tl[2]}, BottomRight: math.Vector3{c[0], br[1], br[2]}},
		{TopLeft: math.Vector3{tl[0], c[1], tl[2]}, BottomRight: math.Vector3{br[0], c[1], br[2]}},
	}
}
