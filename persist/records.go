// persist/records.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package persist

import (
	"fmt"

	"github.com/platecad/platecad/math"
	"github.com/platecad/platecad/scene"
)

// The records below mirror the JSON objects in the text format. Fields
// are pointers so that missing fields can be told apart from zero values
// when reading.

type vectorRecord struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
	Z *float64 `json:"z"`
}

type pointRecord struct {
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
	Z     *float64 `json:"z"`
	Color *int     `json:"color"`
	Width *int     `json:"width"`
}

// originRecord is a pointRecord that may carry a name, which is ignored.
type originRecord struct {
	pointRecord
	Name string `json:"name,omitempty"`
}

// kindRecord is decoded first to find out how to decode the rest of an
// entity line.
type kindRecord struct {
	Kind *string `json:"kind"`
}

type pointEntityRecord struct {
	Kind string `json:"kind"`
	pointRecord
}

type lineRecord struct {
	Kind  string       `json:"kind"`
	Start *pointRecord `json:"start"`
	End   *pointRecord `json:"end"`
	Color *int         `json:"color"`
	Width *int         `json:"width"`
}

type placeRecord struct {
	Kind   string        `json:"kind"`
	Points []pointRecord `json:"points"`
	Color  *int          `json:"color"`
	Width  *int          `json:"width"`
}

type ellipseRecord struct {
	Kind        string       `json:"kind"`
	TopLeft     *pointRecord `json:"topLeft"`
	BottomRight *pointRecord `json:"bottomRight"`
	// Null unless the radii had been computed when the scene was saved.
	RX    *float64 `json:"rx"`
	RY    *float64 `json:"ry"`
	Color *int     `json:"color"`
	Width *int     `json:"width"`
}

func ptr[T any](v T) *T { return &v }

func makeVectorRecord(v math.Vector3) vectorRecord {
	return vectorRecord{X: ptr(v[0]), Y: ptr(v[1]), Z: ptr(v[2])}
}

func makePointRecord(p scene.Point) pointRecord {
	return pointRecord{
		X:     ptr(p.Pos[0]),
		Y:     ptr(p.Pos[1]),
		Z:     ptr(p.Pos[2]),
		Color: ptr(int(p.Color)),
		Width: ptr(p.Width),
	}
}

func requireFloat(v *float64, name string) (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("%w %q", ErrMissingField, name)
	}
	if !math.IsFinite(*v) {
		return 0, fmt.Errorf("%q: %v is not a finite number", name, *v)
	}
	return *v, nil
}

func (r vectorRecord) vector() (math.Vector3, error) {
	var v math.Vector3
	var err error
	if v[0], err = requireFloat(r.X, "x"); err != nil {
		return v, err
	}
	if v[1], err = requireFloat(r.Y, "y"); err != nil {
		return v, err
	}
	if v[2], err = requireFloat(r.Z, "z"); err != nil {
		return v, err
	}
	return v, nil
}

func (r pointRecord) point() (scene.Point, error) {
	pos, err := vectorRecord{X: r.X, Y: r.Y, Z: r.Z}.vector()
	if err != nil {
		return scene.Point{}, err
	}
	color, width, err := style(r.Color, r.Width)
	if err != nil {
		return scene.Point{}, err
	}
	return scene.Point{Pos: pos, Color: color, Width: width}, nil
}

// style validates the color and width fields common to all records.
func style(c *int, w *int) (scene.Color, int, error) {
	if c == nil {
		return 0, 0, fmt.Errorf("%w %q", ErrMissingField, "color")
	}
	if w == nil {
		return 0, 0, fmt.Errorf("%w %q", ErrMissingField, "width")
	}
	color := scene.Color(*c)
	if !color.Valid() {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidColor, *c)
	}
	if *w <= 0 {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidWidth, *w)
	}
	return color, *w, nil
}

func nestedPoint(r *pointRecord, name string) (scene.Point, error) {
	if r == nil {
		return scene.Point{}, fmt.Errorf("%w %q", ErrMissingField, name)
	}
	p, err := r.point()
	if err != nil {
		return p, fmt.Errorf("%s: %w", name, err)
	}
	return p, nil
}

// entityRecord returns the record that's written for the entity e.
func entityRecord(sc *scene.Scene, e scene.Entity) any {
	switch e := e.(type) {
	case *scene.PointEntity:
		return pointEntityRecord{
			Kind:        scene.KindPoint.String(),
			pointRecord: makePointRecord(sc.Point(e.ID)),
		}

	case *scene.Line:
		start, end := makePointRecord(sc.Point(e.Start)), makePointRecord(sc.Point(e.End))
		return lineRecord{
			Kind:  scene.KindLine.String(),
			Start: &start,
			End:   &end,
			Color: ptr(int(e.Color)),
			Width: ptr(e.Width),
		}

	case *scene.Place:
		r := placeRecord{
			Kind:  scene.KindPlace.String(),
			Color: ptr(int(e.Color)),
			Width: ptr(e.Width),
		}
		for _, id := range e.Points {
			r.Points = append(r.Points, makePointRecord(sc.Point(id)))
		}
		return r

	case *scene.Ellipse:
		tl, br := makePointRecord(sc.Point(e.TopLeft)), makePointRecord(sc.Point(e.BottomRight))
		r := ellipseRecord{
			Kind:        scene.KindEllipse.String(),
			TopLeft:     &tl,
			BottomRight: &br,
			Color:       ptr(int(e.Color)),
			Width:       ptr(e.Width),
		}
		if e.Radii != nil {
			r.RX, r.RY = ptr(e.Radii.RX), ptr(e.Radii.RY)
		}
		return r

	default:
		panic(fmt.Sprintf("%T: unhandled entity type", e))
	}
}
