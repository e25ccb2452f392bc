// math/rotate.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"fmt"
	gomath "math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultRotationStep is the angle (in radians) that a single rotation
// command turns the display basis: 2 degrees.
const DefaultRotationStep = gomath.Pi / 90

// Axis identifies one of the six canonical incremental rotations.
type Axis int

const (
	XPlus Axis = iota
	XMinus
	YPlus
	YMinus
	ZPlus
	ZMinus
	NumAxes
)

func (a Axis) String() string {
	switch a {
	case XPlus:
		return "X+"
	case XMinus:
		return "X-"
	case YPlus:
		return "Y+"
	case YMinus:
		return "Y-"
	case ZPlus:
		return "Z+"
	case ZMinus:
		return "Z-"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Inverse returns the axis whose rotation undoes a's.
func (a Axis) Inverse() Axis {
	return a ^ 1
}

// ParseAxis parses the strings produced by Axis.String, ignoring case.
func ParseAxis(s string) (Axis, error) {
	for a := range NumAxes {
		if strings.EqualFold(a.String(), s) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%q: invalid rotation axis", s)
}

// RotationOperators holds precomputed rotation matrices for each Axis.
type RotationOperators [NumAxes]Matrix3

// MakeRotationOperators returns the six rotation matrices for the given
// step angle (in radians). The axis names are the editor's, not the world
// axes the matrices turn about: X+ rotates about world z, Z+ about world
// x, and Y+ turns backward about world y. Each is a proper rotation, so
// the operators for an axis and its inverse are transposes of each other.
func MakeRotationOperators(step float64) RotationOperators {
	var ops RotationOperators
	ops[XPlus] = mgl64.Rotate3DZ(step)
	ops[XMinus] = mgl64.Rotate3DZ(-step)
	ops[YPlus] = mgl64.Rotate3DY(-step)
	ops[YMinus] = mgl64.Rotate3DY(step)
	ops[ZPlus] = mgl64.Rotate3DX(step)
	ops[ZMinus] = mgl64.Rotate3DX(-step)
	return ops
}

func (r *RotationOperators) Get(a Axis) Matrix3 {
	return r[a]
}
