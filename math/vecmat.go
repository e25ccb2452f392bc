// math/vecmat.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"github.com/go-gl/mathgl/mgl64"
)

///////////////////////////////////////////////////////////////////////////
// Vector3

// Vector3 is a point or offset in world space; it's also used for the
// vectors of the world and display bases.
type Vector3 = mgl64.Vec3

// Names are brief in order to avoid clutter when they're used.

// a+b
func Add(a, b Vector3) Vector3 {
	return a.Add(b)
}

// a-b
func Sub(a, b Vector3) Vector3 {
	return a.Sub(b)
}

// v*s
func Scale(v Vector3, s float64) Vector3 {
	return v.Mul(s)
}

func Dot(a, b Vector3) float64 {
	return a.Dot(b)
}

// Length of v
func Length(v Vector3) float64 {
	return v.Len()
}

// ApproxEqual reports whether each component of a and b differs by no
// more than eps.
func ApproxEqual(a, b Vector3, eps float64) bool {
	for i := range a {
		if Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

///////////////////////////////////////////////////////////////////////////
// 3x3 matrix

// Matrix3 is a 3x3 matrix. mgl64 stores it column-major; all of the
// constructors here take their arguments row by row so that callers never
// need to care.
type Matrix3 = mgl64.Mat3

func MakeMatrix3(m00, m01, m02, m10, m11, m12, m20, m21, m22 float64) Matrix3 {
	return mgl64.Mat3FromRows(
		Vector3{m00, m01, m02},
		Vector3{m10, m11, m12},
		Vector3{m20, m21, m22})
}

// MatrixFromRows returns the matrix that has the three given vectors as
// its rows. Multiplying a world-space vector by the matrix built from the
// display basis gives its coordinates on the display plate.
func MatrixFromRows(rows [3]Vector3) Matrix3 {
	return mgl64.Mat3FromRows(rows[0], rows[1], rows[2])
}

// Rows returns the rows of m.
func Rows(m Matrix3) [3]Vector3 {
	r0, r1, r2 := m.Rows()
	return [3]Vector3{r0, r1, r2}
}

func Identity3x3() Matrix3 {
	return mgl64.Ident3()
}

// Multiply returns m*v.
func Multiply(m Matrix3, v Vector3) Vector3 {
	return m.Mul3x1(v)
}

// Compose returns the matrix product a*b; applying the result to a vector
// applies b first and then a.
func Compose(a, b Matrix3) Matrix3 {
	return a.Mul3(b)
}

// Transpose returns the transpose of m, which is also its inverse when m
// is a rotation.
func Transpose(m Matrix3) Matrix3 {
	return m.Transpose()
}

// Orthonormal reports whether the three vectors are unit length and
// mutually perpendicular to within eps.
func Orthonormal(basis [3]Vector3, eps float64) bool {
	for i := range 3 {
		if Abs(basis[i].Len()-1) > eps {
			return false
		}
		for j := i + 1; j < 3; j++ {
			if Abs(basis[i].Dot(basis[j])) > eps {
				return false
			}
		}
	}
	return true
}

///////////////////////////////////////////////////////////////////////////
// point 2

// Screen-space helpers. Screen coordinates stay in float64 so that picking
// matches the truncated pixel positions exactly.

// a-b
func Sub2(a, b [2]float64) [2]float64 {
	return [2]float64{a[0] - b[0], a[1] - b[1]}
}

// a+b
func Add2(a, b [2]float64) [2]float64 {
	return [2]float64{a[0] + b[0], a[1] + b[1]}
}

// midpoint of a and b
func Mid2(a, b [2]float64) [2]float64 {
	return [2]float64{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2}
}

func Length2(v [2]float64) float64 {
	return Sqrt(v[0]*v[0] + v[1]*v[1])
}

// Distance between two points
func Distance2(a, b [2]float64) float64 {
	return Length2(Sub2(a, b))
}

// Cross2 returns the z component of the cross product of a and b.
func Cross2(a, b [2]float64) float64 {
	return a[0]*b[1] - a[1]*b[0]
}
