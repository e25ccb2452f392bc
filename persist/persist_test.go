// persist/persist_test.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package persist

import (
	"bytes"
	"errors"
	gomath "math"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/platecad/platecad/math"
	"github.com/platecad/platecad/scene"
)

// makeTestScene returns a scene with one of each kind of entity and a
// point shared between a line and a place.
func makeTestScene() *scene.Scene {
	sc := scene.New()
	ops := math.MakeRotationOperators(math.DefaultRotationStep)
	sc.RotateAxis(math.YPlus, &ops)
	sc.RotateAxis(math.XMinus, &ops)

	shared := sc.AddPoint(math.Vector3{1, 2, 3}, scene.Red)
	b := sc.NewPoint(math.Vector3{0, 5, 0}, scene.Green, 8)
	c := sc.NewPoint(math.Vector3{0, 5, 5}, scene.Green, scene.DefaultPointWidth)
	sc.AddLine(shared, b, scene.Black)
	sc.AddPlaceWidth([]scene.PointID{shared, b, c}, scene.Yellow, 3)
	e := sc.AddEllipse(b, c, scene.Blue)
	sc.EllipseRadii(e)
	sc.AddEllipse(shared, c, scene.Blue)
	return sc
}

type entitySummary struct {
	kind   scene.Kind
	color  scene.Color
	width  int
	points []scene.Point
}

func summarize(sc *scene.Scene) []entitySummary {
	var s []entitySummary
	for _, e := range sc.Entities {
		es := entitySummary{kind: e.Kind(), color: sc.EntityColor(e), width: sc.EntityWidth(e)}
		for _, id := range e.PointIDs() {
			es.points = append(es.points, sc.Point(id))
		}
		s = append(s, es)
	}
	return s
}

func checkSameEntities(t *testing.T, a, b *scene.Scene) {
	t.Helper()
	sa, sb := summarize(a), summarize(b)
	if len(sa) != len(sb) {
		t.Fatalf("got %d entities, expected %d", len(sb), len(sa))
	}
	for i := range sa {
		if sa[i].kind != sb[i].kind || sa[i].color != sb[i].color || sa[i].width != sb[i].width {
			t.Errorf("entity %d: got %v %v %d, expected %v %v %d", i, sb[i].kind, sb[i].color, sb[i].width,
				sa[i].kind, sa[i].color, sa[i].width)
		}
		if len(sa[i].points) != len(sb[i].points) {
			t.Errorf("entity %d: got %d points, expected %d", i, len(sb[i].points), len(sa[i].points))
			continue
		}
		for j := range sa[i].points {
			pa, pb := sa[i].points[j], sb[i].points[j]
			if !pa.Equal(pb) || pa.Color != pb.Color || pa.Width != pb.Width {
				t.Errorf("entity %d point %d: got %+v, expected %+v", i, j, pb, pa)
			}
		}
	}
}

func TestSaveOpenRoundTrip(t *testing.T) {
	sc := makeTestScene()

	var buf bytes.Buffer
	if err := Save(&buf, sc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if n := strings.Count(buf.String(), "\n"); n != 3+len(sc.Entities) {
		t.Errorf("got %d lines, expected %d", n, 3+len(sc.Entities))
	}

	sc2, err := Open(&buf)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	checkSameEntities(t, sc, sc2)

	if sc2.DisplayBasis != sc.DisplayBasis || sc2.WorldBasis != sc.WorldBasis {
		t.Errorf("bases not preserved")
	}
	if sc2.DisplayMatrix() != sc.DisplayMatrix() {
		t.Errorf("display matrix not recomputed from the loaded basis")
	}
	if !sc2.Origin.Equal(sc.Origin) || sc2.Origin.Width != sc.Origin.Width {
		t.Errorf("origin got %+v, expected %+v", sc2.Origin, sc.Origin)
	}

	// Cached radii come back; uncached ones stay uncached.
	e1, e2 := sc2.Entities[3].(*scene.Ellipse), sc2.Entities[4].(*scene.Ellipse)
	if e1.Radii == nil || *e1.Radii != *sc.Entities[3].(*scene.Ellipse).Radii {
		t.Errorf("ellipse radii not restored")
	}
	if e2.Radii != nil {
		t.Errorf("uncached radii should load as nil")
	}

	// Shared points are written once per reference and come back as
	// separate arena points at the same position.
	line, place := sc2.Entities[1].(*scene.Line), sc2.Entities[2].(*scene.Place)
	if line.Start == place.Points[0] {
		t.Errorf("expected distinct arena points after reload")
	}
	if sc2.Pos(line.Start) != sc2.Pos(place.Points[0]) {
		t.Errorf("reloaded points should be equal by position")
	}
}

func TestSaveReopenPointAndLine(t *testing.T) {
	sc := scene.New()
	sc.AddPoint(math.Vector3{1, 2, 3}, scene.Red)
	a := sc.NewPoint(math.Vector3{4, 5, 6}, scene.Green, scene.DefaultPointWidth)
	b := sc.NewPoint(math.Vector3{-1, 0, 2.5}, scene.Green, scene.DefaultPointWidth)
	sc.AddLine(a, b, scene.Black)

	var buf bytes.Buffer
	if err := Save(&buf, sc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	sc2, err := Open(&buf)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if c := sc2.Counts(); len(sc2.Entities) != 2 || c[scene.KindPoint] != 1 || c[scene.KindLine] != 1 {
		t.Fatalf("got %v, expected 1 point and 1 line", c)
	}
	pe := sc2.Entities[0].(*scene.PointEntity)
	if p := sc2.Point(pe.ID); p.Pos != (math.Vector3{1, 2, 3}) || p.Color != scene.Red {
		t.Errorf("got point %+v", p)
	}
	l := sc2.Entities[1].(*scene.Line)
	if sc2.Pos(l.Start) != (math.Vector3{4, 5, 6}) || sc2.Pos(l.End) != (math.Vector3{-1, 0, 2.5}) {
		t.Errorf("got line %v-%v", sc2.Pos(l.Start), sc2.Pos(l.End))
	}
}

func TestTextFormat(t *testing.T) {
	sc := scene.New()
	a := sc.NewPoint(math.Vector3{0, 0, 0}, scene.Blue, 10)
	b := sc.NewPoint(math.Vector3{0, 2, 4}, scene.Blue, 10)
	sc.AddEllipse(a, b, scene.Blue)

	var buf bytes.Buffer
	if err := Save(&buf, sc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	expected := []string{
		`[{"x":1,"y":0,"z":0},{"x":0,"y":1,"z":0},{"x":0,"y":0,"z":1}]`,
		`{"x":0,"y":0,"z":0,"color":0,"width":10}`,
		`[{"x":0,"y":0,"z":1},{"x":0,"y":1,"z":0},{"x":1,"y":0,"z":0}]`,
		`{"kind":"Ellipse","topLeft":{"x":0,"y":0,"z":0,"color":4,"width":10},"bottomRight":{"x":0,"y":2,"z":4,"color":4,"width":10},"rx":null,"ry":null,"color":4,"width":5}`,
	}
	if len(lines) != len(expected) {
		t.Fatalf("got %d lines, expected %d:\n%s", len(lines), len(expected), buf.String())
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("line %d:\ngot      %s\nexpected %s", i+1, lines[i], expected[i])
		}
	}
}

const validHeader = `[{"x":1,"y":0,"z":0},{"x":0,"y":1,"z":0},{"x":0,"y":0,"z":1}]
{"x":0,"y":0,"z":0,"color":0,"width":10,"name":"origin"}
[{"x":0,"y":0,"z":1},{"x":0,"y":1,"z":0},{"x":1,"y":0,"z":0}]
`

func TestOpenBlankLinesAndName(t *testing.T) {
	text := "\n" + validHeader + "\n   \n" +
		`{"kind":"Point","x":1,"y":1,"z":1,"color":2,"width":10}` + "\n\n"
	sc, err := Open(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(sc.Entities) != 1 {
		t.Errorf("got %d entities, expected 1", len(sc.Entities))
	}
}

func TestOpenErrors(t *testing.T) {
	type testCase struct {
		name   string
		text   string
		line   int
		target error
	}
	for _, tc := range []testCase{
		{name: "Empty", text: "", line: 1, target: ErrMissingHeader},
		{name: "ShortHeader", text: "[]\n", line: 2, target: ErrMissingHeader},
		{name: "BadBasisCount", text: `[{"x":1,"y":0,"z":0}]` + "\n{}\n[]\n", line: 1},
		{name: "MissingOriginField", text: strings.Replace(validHeader, `"y":0,"z":0,"color"`, `"z":0,"color"`, 1), line: 2, target: ErrMissingField},
		{name: "UnknownKind", text: validHeader + `{"kind":"Circle","x":0}`, line: 4, target: ErrUnknownKind},
		{name: "MissingKind", text: validHeader + `{"x":0}`, line: 4, target: ErrMissingField},
		{name: "BadJSON", text: validHeader + `{"kind":"Point","x":}`, line: 4},
		{name: "MissingNested", text: validHeader + `{"kind":"Line","start":{"x":0,"y":0,"z":0,"color":0,"width":10},"color":0,"width":5}`, line: 4, target: ErrMissingField},
		{name: "InvalidColor", text: validHeader + `{"kind":"Point","x":0,"y":0,"z":0,"color":9,"width":10}`, line: 4, target: ErrInvalidColor},
		{name: "ZeroWidth", text: validHeader + `{"kind":"Point","x":0,"y":0,"z":0,"color":1,"width":0}`, line: 4, target: ErrInvalidWidth},
		{name: "ShortPlace", text: validHeader + `{"kind":"Place","points":[{"x":0,"y":0,"z":0,"color":0,"width":10}],"color":3,"width":5}`, line: 4, target: ErrTooFewPoints},
		{name: "WrongType", text: validHeader + `{"kind":"Point","x":"zero","y":0,"z":0,"color":1,"width":10}`, line: 4},
	} {
		t.Run(tc.name, func(t *testing.T) {
			sc, err := Open(strings.NewReader(tc.text))
			if sc != nil {
				t.Errorf("got a scene despite the error")
			}
			var ferr *FormatError
			if !errors.As(err, &ferr) {
				t.Fatalf("expected *FormatError, got %v", err)
			}
			if !errors.Is(err, ErrFormat) || errors.Is(err, ErrIO) {
				t.Errorf("error kind is wrong: %v", err)
			}
			if ferr.Line != tc.line {
				t.Errorf("got line %d, expected %d (%v)", ferr.Line, tc.line, err)
			}
			if tc.target != nil && !errors.Is(err, tc.target) {
				t.Errorf("expected %v, got %v", tc.target, err)
			}
		})
	}
}

func TestOpenReadError(t *testing.T) {
	_, err := Open(iotest.ErrReader(errors.New("disk on fire")))
	if !errors.Is(err, ErrIO) || errors.Is(err, ErrFormat) {
		t.Errorf("expected an I/O error, got %v", err)
	}

	var fw failingWriter
	if err := Save(&fw, makeTestScene()); !errors.Is(err, ErrIO) {
		t.Errorf("expected an I/O error from Save, got %v", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write(b []byte) (int, error) { return 0, errors.New("disk full") }

func TestSnapshotRoundTrip(t *testing.T) {
	sc := makeTestScene()

	var buf bytes.Buffer
	if err := SaveSnapshot(&buf, sc); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	sc2, err := OpenSnapshot(&buf)
	if err != nil {
		t.Fatalf("OpenSnapshot: %v", err)
	}
	checkSameEntities(t, sc, sc2)

	if len(sc2.Points) != len(sc.Points) {
		t.Errorf("got %d arena points, expected %d", len(sc2.Points), len(sc.Points))
	}
	// Unlike the text format, sharing is preserved.
	line, place := sc2.Entities[1].(*scene.Line), sc2.Entities[2].(*scene.Place)
	if line.Start != place.Points[0] {
		t.Errorf("shared point was not preserved")
	}
	if sc2.DisplayBasis != sc.DisplayBasis {
		t.Errorf("display basis not preserved")
	}
	if e := sc2.Entities[3].(*scene.Ellipse); e.Radii == nil {
		t.Errorf("ellipse radii not restored")
	}
}

func TestSnapshotErrors(t *testing.T) {
	if _, err := OpenSnapshot(strings.NewReader("this is not zstd")); !errors.Is(err, ErrFormat) {
		t.Errorf("expected format error, got %v", err)
	}

	sc := makeTestScene()
	s := makeSnapshot(sc)
	s.Entities[1].Points[1] = 99
	if _, err := s.scene(); !errors.Is(err, ErrBadPointIndex) {
		t.Errorf("expected bad index error, got %v", err)
	}

	s = makeSnapshot(sc)
	s.Entities[2].Color = 12
	if _, err := s.scene(); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("expected invalid color error, got %v", err)
	}

	s = makeSnapshot(sc)
	s.Version = 7
	if _, err := s.scene(); !errors.Is(err, ErrVersion) {
		t.Errorf("expected version error, got %v", err)
	}

	s = makeSnapshot(sc)
	s.Entities[0].Kind = 9
	if _, err := s.scene(); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected unknown kind error, got %v", err)
	}

	s = makeSnapshot(sc)
	s.DisplayBasis[1][2] = gomath.NaN()
	if _, err := s.scene(); !errors.Is(err, ErrFormat) {
		t.Errorf("expected format error for a NaN display basis, got %v", err)
	}

	s = makeSnapshot(sc)
	s.WorldBasis[0][0] = gomath.Inf(1)
	if _, err := s.scene(); !errors.Is(err, ErrFormat) {
		t.Errorf("expected format error for an infinite world basis, got %v", err)
	}
}

func TestSnapshotWideValues(t *testing.T) {
	// Widths and colors that don't fit in narrow integers must survive
	// or be rejected, not wrap around.
	sc := scene.New()
	a := sc.AddPointWidth(math.Vector3{1, 2, 3}, scene.Red, 1<<20)
	b := sc.NewPoint(math.Vector3{4, 5, 6}, scene.Green, 300)
	sc.AddLineWidth(a, b, scene.Black, 1<<17)

	var buf bytes.Buffer
	if err := SaveSnapshot(&buf, sc); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	sc2, err := OpenSnapshot(&buf)
	if err != nil {
		t.Fatalf("OpenSnapshot: %v", err)
	}
	checkSameEntities(t, sc, sc2)

	s := makeSnapshot(sc)
	s.Entities[1].Color = 256 + int(scene.Red)
	if _, err := s.scene(); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("expected invalid color error, got %v", err)
	}
}

func TestEncodeByExtension(t *testing.T) {
	sc := makeTestScene()
	for _, path := range []string{"a.txt", "b.pcz", "C.PCZ", "noext"} {
		var buf bytes.Buffer
		if err := Encode(&buf, sc, path); err != nil {
			t.Fatalf("%s: Encode: %v", path, err)
		}
		isText := bytes.HasPrefix(buf.Bytes(), []byte("[{"))
		if isText == IsSnapshot(path) {
			t.Errorf("%s: wrong format written", path)
		}
		sc2, err := Decode(&buf, path)
		if err != nil {
			t.Fatalf("%s: Decode: %v", path, err)
		}
		checkSameEntities(t, sc, sc2)
	}
}
