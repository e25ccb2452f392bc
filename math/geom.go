// math/geom.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

///////////////////////////////////////////////////////////////////////////
// Extent2D

// Extent2D represents a 2D bounding box with the two vertices at its
// opposite minimum and maximum corners.
type Extent2D struct {
	P0, P1 [2]float64
}

// EmptyExtent2D returns an Extent2D representing an empty bounding box.
func EmptyExtent2D() Extent2D {
	// Degenerate bounds
	return Extent2D{P0: [2]float64{1e30, 1e30}, P1: [2]float64{-1e30, -1e30}}
}

// Extent2DFromPoints returns an Extent2D that bounds all of the provided
// points.
func Extent2DFromPoints(pts ...[2]float64) Extent2D {
	e := EmptyExtent2D()
	for _, p := range pts {
		for d := 0; d < 2; d++ {
			if p[d] < e.P0[d] {
				e.P0[d] = p[d]
			}
			if p[d] > e.P1[d] {
				e.P1[d] = p[d]
			}
		}
	}
	return e
}

func (e Extent2D) Width() float64 {
	return e.P1[0] - e.P0[0]
}

func (e Extent2D) Height() float64 {
	return e.P1[1] - e.P0[1]
}

func (e Extent2D) Center() [2]float64 {
	return [2]float64{(e.P0[0] + e.P1[0]) / 2, (e.P0[1] + e.P1[1]) / 2}
}

///////////////////////////////////////////////////////////////////////////
// Hit tests

// SegmentProximity returns the "near-segment" measure used for picking
// lines: the sum of the distances from p to both endpoints minus the
// length of the segment. It's zero on the segment and grows as p moves
// away, though it's not the perpendicular distance. For a zero-length
// segment it is the distance from p to that point.
func SegmentProximity(p, p0, p1 [2]float64) float64 {
	l := Distance2(p0, p1)
	if l == 0 {
		return Distance2(p, p0)
	}
	return Distance2(p, p0) + Distance2(p, p1) - l
}

// PointInConvexPolygon checks whether p is inside the convex polygon with
// the given vertices, which may be in either winding order. The edge from
// the last vertex back to the first is included. Points exactly on an edge
// (zero cross product) are not rejected.
func PointInConvexPolygon(p [2]float64, pts [][2]float64) bool {
	if len(pts) < 3 {
		return false
	}

	var sign float64
	for i := range pts {
		p0, p1 := pts[i], pts[(i+1)%len(pts)]
		c := Cross2(Sub2(p1, p0), Sub2(p, p0))
		if c == 0 {
			continue
		}
		if sign == 0 {
			sign = c
		} else if c*sign < 0 {
			return false
		}
	}
	return true
}

// PointInEllipse reports whether p is strictly inside the axis-aligned
// ellipse inscribed in the box with corners c0 and c1. Degenerate boxes
// with zero width or height contain nothing.
func PointInEllipse(p, c0, c1 [2]float64) bool {
	a := (c1[0] - c0[0]) / 2
	b := (c1[1] - c0[1]) / 2
	if a == 0 || b == 0 {
		return false
	}
	c := Mid2(c0, c1)
	return Sqr((p[0]-c[0])/a)+Sqr((p[1]-c[1])/b) < 1
}
