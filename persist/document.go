// persist/document.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package persist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/platecad/platecad/log"
	"github.com/platecad/platecad/scene"
	"github.com/platecad/platecad/store"
)

// Decode reads a scene from r, choosing the format from path's extension.
func Decode(r io.Reader, path string) (*scene.Scene, error) {
	if IsSnapshot(path) {
		return OpenSnapshot(r)
	}
	return Open(r)
}

// Encode writes sc to w, choosing the format from path's extension.
func Encode(w io.Writer, sc *scene.Scene, path string) error {
	if IsSnapshot(path) {
		return SaveSnapshot(w, sc)
	}
	return Save(w, sc)
}

type State int

const (
	// Idle: the scene hasn't been loaded from or saved to anywhere.
	Idle State = iota
	// Loaded: the scene was last opened from or saved to Location.
	Loaded
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Loaded:
		return "Loaded"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var ErrNoLocation = errors.New("Document has no location; use SaveAs")

// Document is the scene being edited along with where it lives.
type Document struct {
	Scene    *scene.Scene
	Location string
	State    State

	// If Backend is set, it's used for all I/O with Location as the
	// object path; otherwise the backend is chosen from Location.
	Backend store.Backend

	// saved is a copy of the scene as of the last open or save.
	saved *scene.Scene
	lg    *log.Logger
}

func NewDocument(lg *log.Logger) *Document {
	d := &Document{lg: lg}
	d.New()
	return d
}

// New replaces the scene with an empty one.
func (d *Document) New() {
	d.Scene = scene.New()
	d.saved = d.Scene.Clone()
	d.Location = ""
	d.State = Idle
	d.lg.Info("new document")
}

func (d *Document) backend(ctx context.Context, loc string) (store.Backend, string, error) {
	if d.Backend != nil {
		return nopCloseBackend{d.Backend}, loc, nil
	}
	return store.Open(ctx, loc)
}

// Open replaces the scene with the one at loc. If there's any error, the
// document is left unchanged.
func (d *Document) Open(ctx context.Context, loc string) error {
	b, path, err := d.backend(ctx, loc)
	if err != nil {
		return &IOError{Op: "open", Path: loc, Err: err}
	}
	defer b.Close()

	r, err := b.OpenRead(ctx, path)
	if err != nil {
		return &IOError{Op: "open", Path: loc, Err: err}
	}
	defer r.Close()

	sc, err := Decode(r, path)
	if err != nil {
		var ioerr *IOError
		if errors.As(err, &ioerr) {
			ioerr.Op, ioerr.Path = "open", loc
		}
		d.lg.Warn("open failed", slog.String("location", loc), slog.Any("error", err))
		return err
	}

	d.Scene = sc
	d.saved = sc.Clone()
	d.Location = loc
	d.State = Loaded
	d.lg.Info("opened document", slog.String("location", loc), slog.String("scene", sc.String()))
	return nil
}

// Save writes the scene to the document's location.
func (d *Document) Save(ctx context.Context) error {
	if d.Location == "" {
		return ErrNoLocation
	}
	return d.SaveAs(ctx, d.Location)
}

// SaveAs writes the scene to loc, which becomes the document's location
// if the save succeeds.
func (d *Document) SaveAs(ctx context.Context, loc string) error {
	b, path, err := d.backend(ctx, loc)
	if err != nil {
		return &IOError{Op: "save", Path: loc, Err: err}
	}
	defer b.Close()

	// Encode fully before writing anything so that a scene that can't be
	// encoded doesn't truncate an existing file.
	var buf bytes.Buffer
	if err := Encode(&buf, d.Scene, path); err != nil {
		return err
	}
	if _, err := b.Store(ctx, path, &buf); err != nil {
		d.lg.Warn("save failed", slog.String("location", loc), slog.Any("error", err))
		return &IOError{Op: "save", Path: loc, Err: err}
	}

	d.saved = d.Scene.Clone()
	d.Location = loc
	d.State = Loaded
	d.lg.Info("saved document", slog.String("location", loc), slog.String("scene", d.Scene.String()))
	return nil
}

// Revert discards changes made since the last open or save.
func (d *Document) Revert() {
	d.Scene = d.saved.Clone()
	d.lg.Info("reverted document", slog.String("location", d.Location))
}

type nopCloseBackend struct {
	store.Backend
}

func (nopCloseBackend) Close() error { return nil }
