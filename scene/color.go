// scene/color.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scene

import (
	"fmt"
	"strings"
)

// Color is the small palette that entities may be drawn with. The integer
// values are what's stored in saved scenes.
type Color int

const (
	Black Color = iota
	Red
	Green
	Yellow
	Blue
	NumColors
)

var colorNames = [...]string{"BLACK", "RED", "GREEN", "YELLOW", "BLUE"}

func (c Color) Valid() bool {
	return c >= 0 && c < NumColors
}

func (c Color) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Color(%d)", int(c))
	}
	return colorNames[c]
}

func ParseColor(s string) (Color, error) {
	for i, n := range colorNames {
		if strings.EqualFold(n, s) {
			return Color(i), nil
		}
	}
	return 0, fmt.Errorf("%q: unknown color", s)
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Style gives the color used for each kind of newly authored entity. It's
// passed explicitly to the Add* methods by the caller rather than living
// on the Scene.
type Style struct {
	Point   Color
	Line    Color
	Place   Color
	Ellipse Color
}

func DefaultStyle() Style {
	return Style{
		Point:   Green,
		Line:    Black,
		Place:   Yellow,
		Ellipse: Blue,
	}
}

// Default hit radii, in pixels.
const (
	DefaultPointWidth   = 10
	DefaultLineWidth    = 5
	DefaultPlaceWidth   = 5
	DefaultEllipseWidth = 5
)

// Widths gives the hit radius (and stroke width) for each kind of newly
// authored entity.
type Widths struct {
	Point   int
	Line    int
	Place   int
	Ellipse int
}

func DefaultWidths() Widths {
	return Widths{
		Point:   DefaultPointWidth,
		Line:    DefaultLineWidth,
		Place:   DefaultPlaceWidth,
		Ellipse: DefaultEllipseWidth,
	}
}
