// editor/settings.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package editor

import (
	"fmt"
	"time"

	"github.com/platecad/platecad/math"
	"github.com/platecad/platecad/render"
	"github.com/platecad/platecad/scene"
	"github.com/platecad/platecad/view"
)

// Settings are the user-configurable parts of the editor. They're saved
// as part of the configuration file, so fields need JSON tags.
type Settings struct {
	Style  scene.Style  `json:"style"`
	Widths scene.Widths `json:"widths"`

	// RotationStep is the angle in degrees that each rotation command
	// turns the display basis.
	RotationStep float64 `json:"rotation_step"`
	// ZoomFactor is how much each zoom in or out command scales the zoom.
	ZoomFactor float64 `json:"zoom_factor"`
	// DebounceMS is the longest gap between pointer moves, in
	// milliseconds, for them to be treated as a single drag.
	DebounceMS int `json:"debounce_ms"`

	Viewport view.Viewport   `json:"viewport"`
	Render   render.Settings `json:"render"`
}

func DefaultSettings() Settings {
	return Settings{
		Style:        scene.DefaultStyle(),
		Widths:       scene.DefaultWidths(),
		RotationStep: math.Degrees(math.DefaultRotationStep),
		ZoomFactor:   1.1,
		DebounceMS:   50,
		Viewport:     view.DefaultViewport(),
		Render:       render.DefaultSettings(),
	}
}

func (s Settings) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// Sanitize replaces settings that the editor can't work with, such as
// non-positive widths, with their defaults. It returns a description of
// each one that was replaced.
func (s *Settings) Sanitize() []string {
	var fixed []string
	def := DefaultSettings()

	widths := []struct {
		name string
		w    *int
		d    int
	}{
		{"point", &s.Widths.Point, def.Widths.Point},
		{"line", &s.Widths.Line, def.Widths.Line},
		{"place", &s.Widths.Place, def.Widths.Place},
		{"ellipse", &s.Widths.Ellipse, def.Widths.Ellipse},
	}
	for _, w := range widths {
		if *w.w <= 0 {
			fixed = append(fixed, fmt.Sprintf("%s width %d must be positive; using %d", w.name, *w.w, w.d))
			*w.w = w.d
		}
	}

	colors := []struct {
		name string
		c    *scene.Color
		d    scene.Color
	}{
		{"point", &s.Style.Point, def.Style.Point},
		{"line", &s.Style.Line, def.Style.Line},
		{"place", &s.Style.Place, def.Style.Place},
		{"ellipse", &s.Style.Ellipse, def.Style.Ellipse},
	}
	for _, c := range colors {
		if !c.c.Valid() {
			fixed = append(fixed, fmt.Sprintf("%s color %d is invalid; using %s", c.name, int(*c.c), c.d))
			*c.c = c.d
		}
	}

	if s.ZoomFactor <= 1 || !math.IsFinite(s.ZoomFactor) {
		fixed = append(fixed, fmt.Sprintf("zoom factor %g must be greater than 1; using %g", s.ZoomFactor, def.ZoomFactor))
		s.ZoomFactor = def.ZoomFactor
	}
	if s.RotationStep <= 0 || !math.IsFinite(s.RotationStep) {
		fixed = append(fixed, fmt.Sprintf("rotation step %g must be positive; using %g", s.RotationStep, def.RotationStep))
		s.RotationStep = def.RotationStep
	}
	if s.DebounceMS < 0 {
		fixed = append(fixed, fmt.Sprintf("debounce %dms is negative; using %dms", s.DebounceMS, def.DebounceMS))
		s.DebounceMS = def.DebounceMS
	}
	if !math.IsFinite(s.Viewport.Zoom) || s.Viewport.Zoom < view.MinZoom || s.Viewport.Zoom > view.MaxZoom {
		fixed = append(fixed, fmt.Sprintf("viewport zoom %g is out of range; using %g", s.Viewport.Zoom, def.Viewport.Zoom))
		s.Viewport.Zoom = def.Viewport.Zoom
	}

	return fixed
}
