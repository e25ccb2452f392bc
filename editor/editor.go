// editor/editor.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package editor turns pointer and keyboard input into edits of a scene.
// It has no window system dependencies: the caller delivers events in
// window coordinates and provides a render.Surface to draw to.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/platecad/platecad/log"
	"github.com/platecad/platecad/math"
	"github.com/platecad/platecad/persist"
	"github.com/platecad/platecad/pick"
	"github.com/platecad/platecad/render"
	"github.com/platecad/platecad/scene"
	"github.com/platecad/platecad/view"
)

// Clock provides the current time for telling drags apart from separate
// pointer movements.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Editor is an editing session for a single document. It is not safe for
// concurrent use.
type Editor struct {
	Doc      *persist.Document
	Viewport view.Viewport
	Mode     Mode
	Settings Settings

	drawer *render.Drawer
	ops    math.RotationOperators

	// Points picked so far in the current Line, Place, or Ellipse
	// gesture.
	buffer []scene.PointID
	// Index of the entity being dragged in EditMode, or -1.
	target int

	// Position and time of the last pointer event.
	last     [2]float64
	lastTime time.Time

	clock Clock
	lg    *log.Logger
}

// New returns an editor with an empty document. If clock is nil, the
// system clock is used.
func New(settings Settings, clock Clock, lg *log.Logger) *Editor {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Editor{
		Doc:      persist.NewDocument(lg),
		Viewport: settings.Viewport,
		Settings: settings,
		drawer:   render.NewDrawer(settings.Render, lg),
		ops:      math.MakeRotationOperators(math.Radians(settings.RotationStep)),
		target:   -1,
		clock:    clock,
		lg:       lg,
	}
}

func (ed *Editor) Scene() *scene.Scene {
	return ed.Doc.Scene
}

// Buffer returns the points picked so far in the current gesture.
func (ed *Editor) Buffer() []scene.PointID {
	return slices.Clone(ed.buffer)
}

// Target returns the entity that pointer drags currently move, if any.
func (ed *Editor) Target() (scene.Entity, bool) {
	if ed.target < 0 || ed.target >= len(ed.Doc.Scene.Entities) {
		return nil, false
	}
	return ed.Doc.Scene.Entities[ed.target], true
}

// SetMode switches modes, abandoning any gesture in progress. A Place
// gesture with more than two points is completed rather than abandoned.
func (ed *Editor) SetMode(m Mode) {
	if ed.Mode == PlaceMode && len(ed.buffer) > 2 {
		ed.addPlace()
	}
	ed.buffer = nil
	ed.target = -1
	if m != ed.Mode {
		ed.lg.Debug("mode change", slog.String("from", ed.Mode.String()), slog.String("to", m.String()))
	}
	ed.Mode = m
}

// Key runs the command bound to the keyboard shortcut k and reports
// whether there was one.
func (ed *Editor) Key(k string) bool {
	if cmd, ok := keyCommands[k]; ok {
		cmd(ed)
		return true
	}
	return false
}

func (ed *Editor) Rotate(a math.Axis) {
	ed.Doc.Scene.RotateAxis(a, &ed.ops)
	ed.lg.Debug("rotate", slog.String("axis", a.String()))
}

func (ed *Editor) ZoomIn() {
	ed.Viewport.ZoomBy(ed.Settings.ZoomFactor)
}

func (ed *Editor) ZoomOut() {
	ed.Viewport.ZoomBy(1 / ed.Settings.ZoomFactor)
}

// Draw draws the scene to s; the window coordinates computed along the way
// are the ones subsequent picking is done against.
func (ed *Editor) Draw(s render.Surface) render.Stats {
	return ed.drawer.Draw(s, ed.Doc.Scene, ed.Viewport)
}

// refreshCache brings the screen cache up to date without drawing, so
// that picking sees edits made since the last draw.
func (ed *Editor) refreshCache() *view.ScreenCache {
	ed.drawer.Cache.Refresh(ed.Doc.Scene, ed.Viewport, ed.Settings.Render.Cull)
	return ed.drawer.Cache
}

// Status returns a one-line summary of the editor state for display in a
// status bar; cursor is the pointer position in window coordinates.
func (ed *Editor) Status(cursor [2]float64) string {
	w := ed.Viewport.ToWorld(ed.Doc.Scene, cursor)
	return fmt.Sprintf("Mode: %s; x=%.1f y=%.1f z=%.1f; Zoom: %.2f", ed.Mode, w[0], w[1], w[2], ed.Viewport.Zoom)
}

///////////////////////////////////////////////////////////////////////////
// Pointer events

// Press handles a pointer button press at window position (x, y).
func (ed *Editor) Press(x, y float64) {
	click := [2]float64{x, y}
	sc := ed.Doc.Scene
	style, widths := ed.Settings.Style, ed.Settings.Widths

	switch ed.Mode {
	case PointMode:
		id := sc.AddPointWidth(ed.Viewport.ToWorld(sc, click), style.Point, widths.Point)
		ed.lg.Info("added point", slog.Any("position", sc.Pos(id)))

	case LineMode:
		if ed.bufferPoint(click) && len(ed.buffer) == 2 {
			sc.AddLineWidth(ed.buffer[0], ed.buffer[1], style.Line, widths.Line)
			ed.lg.Info("added line", slog.Any("start", sc.Pos(ed.buffer[0])), slog.Any("end", sc.Pos(ed.buffer[1])))
			ed.buffer = nil
		}

	case PlaceMode:
		// Clicking a point that's already part of the gesture closes the
		// polygon.
		if id, ok := pick.PickPoint(click, sc, ed.refreshCache()); ok {
			if !slices.Contains(ed.buffer, id) {
				ed.buffer = append(ed.buffer, id)
			} else if len(ed.buffer) >= 3 {
				ed.addPlace()
				ed.buffer = nil
			}
		}

	case EllipseMode:
		if ed.bufferPoint(click) && len(ed.buffer) == 2 {
			sc.AddEllipseWidth(ed.buffer[0], ed.buffer[1], style.Ellipse, widths.Ellipse)
			ed.lg.Info("added ellipse", slog.Any("top_left", sc.Pos(ed.buffer[0])),
				slog.Any("bottom_right", sc.Pos(ed.buffer[1])))
			ed.buffer = nil
		}
	}

	ed.target = -1
	ed.last, ed.lastTime = click, ed.clock.Now()
}

// Move handles the pointer moving to (x, y) while a button is held.
func (ed *Editor) Move(x, y float64) {
	p := [2]float64{x, y}
	now := ed.clock.Now()
	sc := ed.Doc.Scene

	switch ed.Mode {
	case ViewMode:
		ed.Viewport.Pan(p[0]-ed.last[0], p[1]-ed.last[1])

	case EditMode:
		if ed.target >= 0 && now.Sub(ed.lastTime) < ed.Settings.Debounce() {
			sc.MoveEntity(ed.target, ed.Viewport.ToWorldV(sc, math.Sub2(p, ed.last)))
		} else {
			// Either nothing is being dragged or the pointer paused for
			// long enough that this is a new drag.
			ed.target = -1
			if hit, ok := pick.Pick(p, sc, ed.refreshCache()); ok {
				ed.target = hit.Index
				ed.lg.Debug("drag target", slog.Int("index", hit.Index), slog.String("kind", hit.Entity.Kind().String()))
			}
		}
	}

	ed.last, ed.lastTime = p, now
}

// bufferPoint adds the point entity under the click, if any, to the
// gesture buffer.
func (ed *Editor) bufferPoint(click [2]float64) bool {
	id, ok := pick.PickPoint(click, ed.Doc.Scene, ed.refreshCache())
	if ok {
		ed.buffer = append(ed.buffer, id)
	}
	return ok
}

func (ed *Editor) addPlace() {
	if _, ok := ed.Doc.Scene.AddPlaceWidth(ed.buffer, ed.Settings.Style.Place, ed.Settings.Widths.Place); ok {
		ed.lg.Info("added place", slog.Int("points", len(ed.buffer)))
	}
}

///////////////////////////////////////////////////////////////////////////
// Document commands

// reset abandons any in-progress interaction; it's used when the scene is
// replaced.
func (ed *Editor) reset() {
	ed.buffer = nil
	ed.target = -1
}

// NewScene replaces the document with an empty one and returns to
// ViewMode at unit zoom.
func (ed *Editor) NewScene() {
	ed.reset()
	ed.Doc.New()
	ed.Viewport.Zoom = 1
	ed.SetMode(ViewMode)
}

// Open opens the scene at loc, which may be a path or a storage URL. On
// failure the current scene is kept.
func (ed *Editor) Open(ctx context.Context, loc string) error {
	if err := ed.Doc.Open(ctx, loc); err != nil {
		ed.lg.Errorf("%s: %v", loc, err)
		return err
	}
	ed.reset()
	return nil
}

func (ed *Editor) Save(ctx context.Context) error {
	if err := ed.Doc.Save(ctx); err != nil {
		ed.lg.Errorf("%s: %v", ed.Doc.Location, err)
		return err
	}
	return nil
}

func (ed *Editor) SaveAs(ctx context.Context, loc string) error {
	if err := ed.Doc.SaveAs(ctx, loc); err != nil {
		ed.lg.Errorf("%s: %v", loc, err)
		return err
	}
	return nil
}

// Revert discards changes made since the scene was last opened or saved.
func (ed *Editor) Revert() {
	ed.reset()
	ed.Doc.Revert()
}
