// editor/mode.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package editor

import (
	"fmt"
	"strings"

	"github.com/platecad/platecad/math"
)

// Mode determines what pointer events do.
type Mode int

const (
	// ViewMode pans the viewport when the pointer is dragged.
	ViewMode Mode = iota
	// EditMode drags entities along the display plate.
	EditMode
	// PointMode adds a point on the display plate at each click.
	PointMode
	// LineMode, PlaceMode, and EllipseMode build entities from existing
	// points picked with successive clicks.
	LineMode
	PlaceMode
	EllipseMode
	NumModes
)

var modeNames = [...]string{"VIEW", "EDIT", "POINT", "LINE", "PLACE", "ELLIPSE"}

func (m Mode) String() string {
	if m < 0 || m >= NumModes {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

func ParseMode(s string) (Mode, error) {
	for m := range NumModes {
		if strings.EqualFold(m.String(), s) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%q: unknown editor mode", s)
}

// keyCommands maps keyboard shortcuts to editor commands.
var keyCommands = map[string]func(ed *Editor){
	"S":       func(ed *Editor) { ed.Rotate(math.XPlus) },
	"W":       func(ed *Editor) { ed.Rotate(math.XMinus) },
	"A":       func(ed *Editor) { ed.Rotate(math.YPlus) },
	"D":       func(ed *Editor) { ed.Rotate(math.YMinus) },
	"R":       func(ed *Editor) { ed.Rotate(math.ZPlus) },
	"Shift+R": func(ed *Editor) { ed.Rotate(math.ZMinus) },
	"V":       func(ed *Editor) { ed.SetMode(ViewMode) },
	"E":       func(ed *Editor) { ed.SetMode(EditMode) },
	"1":       func(ed *Editor) { ed.SetMode(PointMode) },
	"2":       func(ed *Editor) { ed.SetMode(LineMode) },
	"3":       func(ed *Editor) { ed.SetMode(PlaceMode) },
	"4":       func(ed *Editor) { ed.SetMode(EllipseMode) },
	"+":       func(ed *Editor) { ed.ZoomIn() },
	"-":       func(ed *Editor) { ed.ZoomOut() },
}
