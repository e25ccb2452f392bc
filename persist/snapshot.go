// persist/snapshot.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package persist

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/platecad/platecad/math"
	"github.com/platecad/platecad/scene"
)

// SnapshotExtension is the filename extension of the binary snapshot
// format: the scene's point arena and entities, msgpack-encoded and zstd
// compressed. Unlike the text format, snapshots preserve points that are
// shared between entities.
const SnapshotExtension = ".pcz"

const snapshotVersion = 1

type snapshotPoint struct {
	Pos   [3]float64 `msgpack:"p"`
	Color int        `msgpack:"c"`
	Width int        `msgpack:"w"`
}

type snapshotEntity struct {
	Kind   int8      `msgpack:"k"`
	Points []int     `msgpack:"i"`
	Color  int       `msgpack:"c"`
	Width  int       `msgpack:"w"`
	Radii  []float64 `msgpack:"r,omitempty"`
}

type snapshot struct {
	Version      int              `msgpack:"version"`
	WorldBasis   [3][3]float64    `msgpack:"world"`
	Origin       snapshotPoint    `msgpack:"origin"`
	DisplayBasis [3][3]float64    `msgpack:"display"`
	Points       []snapshotPoint  `msgpack:"points"`
	Entities     []snapshotEntity `msgpack:"entities"`
}

// IsSnapshot reports whether the named file should be read and written
// as a snapshot rather than as text.
func IsSnapshot(path string) bool {
	return strings.EqualFold(filepath.Ext(path), SnapshotExtension)
}

func makeSnapshotPoint(p scene.Point) snapshotPoint {
	return snapshotPoint{Pos: p.Pos, Color: int(p.Color), Width: p.Width}
}

func makeSnapshot(sc *scene.Scene) snapshot {
	s := snapshot{
		Version: snapshotVersion,
		Origin:  makeSnapshotPoint(sc.Origin),
	}
	for i := range 3 {
		s.WorldBasis[i] = sc.WorldBasis[i]
		s.DisplayBasis[i] = sc.DisplayBasis[i]
	}
	for _, p := range sc.Points {
		s.Points = append(s.Points, makeSnapshotPoint(p))
	}

	for _, e := range sc.Entities {
		se := snapshotEntity{
			Kind:  int8(e.Kind()),
			Color: int(sc.EntityColor(e)),
			Width: sc.EntityWidth(e),
		}
		for _, id := range e.PointIDs() {
			se.Points = append(se.Points, int(id))
		}
		if el, ok := e.(*scene.Ellipse); ok && el.Radii != nil {
			se.Radii = []float64{el.Radii.RX, el.Radii.RY}
		}
		s.Entities = append(s.Entities, se)
	}
	return s
}

// SaveSnapshot writes sc to w in the snapshot format.
func SaveSnapshot(w io.Writer, sc *scene.Scene) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return &IOError{Op: "save", Err: fmt.Errorf("failed to create zstd writer: %w", err)}
	}
	defer zw.Close()

	if err := msgpack.NewEncoder(zw).Encode(makeSnapshot(sc)); err != nil {
		return &IOError{Op: "save", Err: fmt.Errorf("failed to encode snapshot: %w", err)}
	}
	if err := zw.Close(); err != nil {
		return &IOError{Op: "save", Err: fmt.Errorf("failed to close zstd writer: %w", err)}
	}
	return nil
}

// OpenSnapshot reads a scene in the snapshot format.
func OpenSnapshot(r io.Reader) (*scene.Scene, error) {
	// Read everything first so that failures of the underlying reader
	// aren't mistaken for corrupt data.
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, &IOError{Op: "open", Err: err}
	}

	zr, err := zstd.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, &FormatError{Err: fmt.Errorf("failed to create zstd reader: %w", err)}
	}
	defer zr.Close()

	var s snapshot
	if err := msgpack.NewDecoder(zr).Decode(&s); err != nil {
		return nil, &FormatError{Err: fmt.Errorf("failed to decode snapshot: %w", err)}
	}

	return s.scene()
}

func (s snapshot) scene() (*scene.Scene, error) {
	if s.Version != snapshotVersion {
		return nil, &FormatError{Err: fmt.Errorf("%w %d", ErrVersion, s.Version)}
	}

	point := func(p snapshotPoint) (scene.Point, error) {
		color, width, err := style(&p.Color, &p.Width)
		for _, v := range p.Pos {
			if err == nil && !math.IsFinite(v) {
				err = fmt.Errorf("%v is not a finite number", v)
			}
		}
		return scene.Point{Pos: p.Pos, Color: color, Width: width}, err
	}

	sc := scene.New()
	var err error
	if sc.Origin, err = point(s.Origin); err != nil {
		return nil, &FormatError{Err: fmt.Errorf("origin: %w", err)}
	}
	var wb, db [3]math.Vector3
	for i := range 3 {
		wb[i], db[i] = s.WorldBasis[i], s.DisplayBasis[i]
		for j := range 3 {
			if !math.IsFinite(wb[i][j]) || !math.IsFinite(db[i][j]) {
				return nil, &FormatError{Err: fmt.Errorf("basis vector %d is not finite", i)}
			}
		}
	}
	sc.WorldBasis = wb
	sc.SetDisplayBasis(db)

	for i, sp := range s.Points {
		p, err := point(sp)
		if err != nil {
			return nil, &FormatError{Err: fmt.Errorf("point %d: %w", i, err)}
		}
		sc.NewPoint(p.Pos, p.Color, p.Width)
	}

	for i, se := range s.Entities {
		if err := addSnapshotEntity(sc, se); err != nil {
			return nil, &FormatError{Err: fmt.Errorf("entity %d: %w", i, err)}
		}
	}
	return sc, nil
}

func addSnapshotEntity(sc *scene.Scene, se snapshotEntity) error {
	ids := make([]scene.PointID, len(se.Points))
	for i, id := range se.Points {
		if id < 0 || id >= len(sc.Points) {
			return fmt.Errorf("%w: %d", ErrBadPointIndex, id)
		}
		ids[i] = scene.PointID(id)
	}

	kind := scene.Kind(se.Kind)
	want := map[scene.Kind]int{scene.KindPoint: 1, scene.KindLine: 2, scene.KindEllipse: 2}
	if n, ok := want[kind]; ok && len(ids) != n {
		return fmt.Errorf("%s: expected %d points, got %d", kind, n, len(ids))
	}

	if kind == scene.KindPoint {
		sc.AddExistingPoint(ids[0])
		return nil
	}

	color, width, err := style(&se.Color, &se.Width)
	if err != nil {
		return err
	}

	switch kind {
	case scene.KindLine:
		sc.AddLineWidth(ids[0], ids[1], color, width)
	case scene.KindPlace:
		if _, ok := sc.AddPlaceWidth(ids, color, width); !ok {
			return fmt.Errorf("%w: got %d", ErrTooFewPoints, len(ids))
		}
	case scene.KindEllipse:
		e := sc.AddEllipseWidth(ids[0], ids[1], color, width)
		if len(se.Radii) == 2 {
			e.Radii = &scene.Radii{RX: se.Radii[0], RY: se.Radii[1]}
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownKind, se.Kind)
	}
	return nil
}
