// persist/text.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package persist saves and loads scenes. The primary format is line
// oriented text with one JSON value per line: the world basis, the origin
// point, and the display basis, followed by one record per entity. Points
// are written inline in each entity that refers to them, so shared points
// are written more than once and come back as distinct points at the same
// position.
package persist

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/platecad/platecad/math"
	"github.com/platecad/platecad/scene"
	"github.com/platecad/platecad/util"
)

// Save writes sc to w in the text format.
func Save(w io.Writer, sc *scene.Scene) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	basis := func(b [3]math.Vector3) []vectorRecord {
		return []vectorRecord{makeVectorRecord(b[0]), makeVectorRecord(b[1]), makeVectorRecord(b[2])}
	}

	// json.Encoder terminates each value with a newline.
	records := []any{
		basis(sc.WorldBasis),
		originRecord{pointRecord: makePointRecord(sc.Origin)},
		basis(sc.DisplayBasis),
	}
	for _, e := range sc.Entities {
		records = append(records, entityRecord(sc, e))
	}

	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			var uerr *json.UnsupportedValueError
			if errors.As(err, &uerr) {
				// NaN or infinite coordinates.
				return &FormatError{Err: err}
			}
			return &IOError{Op: "save", Err: err}
		}
	}
	if err := bw.Flush(); err != nil {
		return &IOError{Op: "save", Err: err}
	}
	return nil
}

// line is a non-blank line of input along with its 1-based line number.
type line struct {
	n    int
	text []byte
}

// readLines returns the non-blank lines of r.
func readLines(r io.Reader) ([]line, error) {
	var lines []line
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 64*1024*1024)
	n := 0
	for s.Scan() {
		n++
		if t := bytes.TrimSpace(s.Bytes()); len(t) > 0 {
			lines = append(lines, line{n: n, text: bytes.Clone(t)})
		}
	}
	if err := s.Err(); err != nil {
		return nil, &IOError{Op: "open", Err: err}
	}
	return lines, nil
}

var headerNames = [3]string{"world basis", "origin", "display basis"}

// Open reads a scene in the text format. Either the entire scene is
// returned or an error is; a *FormatError for problems with the contents
// or an *IOError if reading failed.
func Open(r io.Reader) (*scene.Scene, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	if len(lines) < 3 {
		return nil, &FormatError{Line: len(lines) + 1,
			Err: fmt.Errorf("%w: %s", ErrMissingHeader, headerNames[len(lines)])}
	}

	sc := scene.New()

	wb, err := decodeBasis(lines[0])
	if err != nil {
		return nil, err
	}
	sc.WorldBasis = wb

	var or originRecord
	if err := decodeLine(lines[1], &or); err != nil {
		return nil, err
	}
	if sc.Origin, err = or.point(); err != nil {
		return nil, &FormatError{Line: lines[1].n, Err: fmt.Errorf("origin: %w", err)}
	}

	db, err := decodeBasis(lines[2])
	if err != nil {
		return nil, err
	}
	sc.SetDisplayBasis(db)

	for _, l := range lines[3:] {
		if err := decodeEntity(sc, l); err != nil {
			return nil, err
		}
	}

	return sc, nil
}

func decodeLine[T any](l line, out *T) error {
	if err := util.UnmarshalJSONBytes(l.text, out); err != nil {
		return &FormatError{Line: l.n, Err: err}
	}
	return nil
}

func decodeBasis(l line) ([3]math.Vector3, error) {
	var b [3]math.Vector3
	var recs []vectorRecord
	if err := decodeLine(l, &recs); err != nil {
		return b, err
	}
	if len(recs) != 3 {
		return b, formatErrorf(l.n, "expected 3 basis vectors, got %d", len(recs))
	}
	for i, r := range recs {
		v, err := r.vector()
		if err != nil {
			return b, formatErrorf(l.n, "basis vector %d: %w", i, err)
		}
		b[i] = v
	}
	return b, nil
}

// decodeEntity parses one entity line and adds it to the scene. Every
// point record allocates a new point in the arena.
func decodeEntity(sc *scene.Scene, l line) error {
	var kr kindRecord
	if err := decodeLine(l, &kr); err != nil {
		return err
	}
	if kr.Kind == nil {
		return formatErrorf(l.n, "%w %q", ErrMissingField, "kind")
	}
	kind, err := scene.ParseKind(*kr.Kind)
	if err != nil {
		return formatErrorf(l.n, "%w: %q", ErrUnknownKind, *kr.Kind)
	}

	newPoint := func(p scene.Point) scene.PointID {
		return sc.NewPoint(p.Pos, p.Color, p.Width)
	}
	fail := func(err error) error {
		return &FormatError{Line: l.n, Err: fmt.Errorf("%s: %w", kind, err)}
	}

	switch kind {
	case scene.KindPoint:
		var r pointEntityRecord
		if err := decodeLine(l, &r); err != nil {
			return err
		}
		p, err := r.point()
		if err != nil {
			return fail(err)
		}
		sc.AddExistingPoint(newPoint(p))

	case scene.KindLine:
		var r lineRecord
		if err := decodeLine(l, &r); err != nil {
			return err
		}
		start, err := nestedPoint(r.Start, "start")
		if err != nil {
			return fail(err)
		}
		end, err := nestedPoint(r.End, "end")
		if err != nil {
			return fail(err)
		}
		color, width, err := style(r.Color, r.Width)
		if err != nil {
			return fail(err)
		}
		sc.AddLineWidth(newPoint(start), newPoint(end), color, width)

	case scene.KindPlace:
		var r placeRecord
		if err := decodeLine(l, &r); err != nil {
			return err
		}
		if r.Points == nil {
			return fail(fmt.Errorf("%w %q", ErrMissingField, "points"))
		}
		if len(r.Points) < 3 {
			return fail(fmt.Errorf("%w: got %d", ErrTooFewPoints, len(r.Points)))
		}
		pts := make([]scene.Point, len(r.Points))
		for i := range r.Points {
			if pts[i], err = nestedPoint(&r.Points[i], fmt.Sprintf("points[%d]", i)); err != nil {
				return fail(err)
			}
		}
		color, width, err := style(r.Color, r.Width)
		if err != nil {
			return fail(err)
		}
		ids := make([]scene.PointID, len(pts))
		for i, p := range pts {
			ids[i] = newPoint(p)
		}
		sc.AddPlaceWidth(ids, color, width)

	case scene.KindEllipse:
		var r ellipseRecord
		if err := decodeLine(l, &r); err != nil {
			return err
		}
		tl, err := nestedPoint(r.TopLeft, "topLeft")
		if err != nil {
			return fail(err)
		}
		br, err := nestedPoint(r.BottomRight, "bottomRight")
		if err != nil {
			return fail(err)
		}
		color, width, err := style(r.Color, r.Width)
		if err != nil {
			return fail(err)
		}
		e := sc.AddEllipseWidth(newPoint(tl), newPoint(br), color, width)
		if r.RX != nil && r.RY != nil {
			e.Radii = &scene.Radii{RX: *r.RX, RY: *r.RY}
		}

	default:
		panic(fmt.Sprintf("%s: unhandled entity kind", kind))
	}

	return nil
}
