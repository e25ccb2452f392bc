// editor/settings_test.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package editor

import (
	"reflect"
	"testing"

	"github.com/platecad/platecad/scene"
)

func TestSanitizeDefaults(t *testing.T) {
	s := DefaultSettings()
	if fixed := s.Sanitize(); len(fixed) != 0 {
		t.Errorf("default settings were changed: %q", fixed)
	}
	if !reflect.DeepEqual(s, DefaultSettings()) {
		t.Errorf("got %+v, expected the defaults", s)
	}
}

func TestSanitize(t *testing.T) {
	s := DefaultSettings()
	s.Widths.Point = 0
	s.Widths.Ellipse = -3
	s.Widths.Line = 7
	s.Style.Place = scene.Color(99)
	s.DebounceMS = -10
	s.ZoomFactor = 0.5
	s.RotationStep = 0
	s.Viewport.Zoom = 0

	fixed := s.Sanitize()
	if len(fixed) != 7 {
		t.Errorf("got %d fixes, expected 7: %q", len(fixed), fixed)
	}

	def := DefaultSettings()
	if s.Widths.Point != def.Widths.Point || s.Widths.Ellipse != def.Widths.Ellipse {
		t.Errorf("non-positive widths not replaced: %+v", s.Widths)
	}
	if s.Widths.Line != 7 {
		t.Errorf("valid width was changed to %d", s.Widths.Line)
	}
	if s.Style.Place != def.Style.Place {
		t.Errorf("invalid color not replaced: %v", s.Style.Place)
	}
	if s.DebounceMS != def.DebounceMS || s.ZoomFactor != def.ZoomFactor ||
		s.RotationStep != def.RotationStep || s.Viewport.Zoom != def.Viewport.Zoom {
		t.Errorf("got %+v", s)
	}
}

// Points authored with sanitized settings can be picked again.
func TestSanitizedWidthsPickable(t *testing.T) {
	settings := DefaultSettings()
	settings.Widths.Point = 0
	settings.Sanitize()

	ed := New(settings, &fakeClock{}, nil)
	ed.SetMode(PointMode)
	ed.Press(700, 400)

	ed.SetMode(LineMode)
	ed.Press(700, 400)
	if len(ed.Buffer()) != 1 {
		t.Errorf("point authored with sanitized width couldn't be picked")
	}
}
