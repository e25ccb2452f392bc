// persist/lint.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package persist

import (
	"errors"
	"fmt"
	"io"

	"github.com/platecad/platecad/scene"
	"github.com/platecad/platecad/util"
)

// Lint checks a text-format scene, reporting every problem it finds to e
// rather than stopping at the first one as Open does. Duplicate JSON keys,
// which Open silently accepts, are reported as warnings. The returned
// error is only non-nil if r couldn't be read.
func Lint(r io.Reader, e *util.ErrorLogger) error {
	defer e.CheckDepth(e.CurrentDepth())

	lines, err := readLines(r)
	if err != nil {
		return err
	}
	if len(lines) < 3 {
		e.ErrorString("%v: %s", ErrMissingHeader, headerNames[len(lines)])
	}

	// Entities are decoded into a scratch scene so that the checks match
	// what Open does.
	sc := scene.New()

	for i, l := range lines {
		e.Push(fmt.Sprintf("line %d", l.n))

		for _, dup := range util.FindDuplicateJSONKeys(l.text) {
			if dup.Path == "" {
				e.Warning("duplicate key %q", dup.Key)
			} else {
				e.Warning("duplicate key %q in %q", dup.Key, dup.Path)
			}
		}

		nerr := len(e.Errors())
		switch i {
		case 0, 2:
			util.CheckJSON[[]vectorRecord](l.text, e)
			if len(e.Errors()) == nerr {
				_, err = decodeBasis(l)
				lintError(e, err)
			}

		case 1:
			util.CheckJSON[originRecord](l.text, e)
			if len(e.Errors()) == nerr {
				var or originRecord
				if err = decodeLine(l, &or); err == nil {
					_, err = or.point()
				}
				lintError(e, err)
			}

		default:
			lintEntity(sc, l, e)
		}

		e.Pop()
	}

	return nil
}

func lintEntity(sc *scene.Scene, l line, e *util.ErrorLogger) {
	var kr kindRecord
	if err := decodeLine(l, &kr); err != nil {
		lintError(e, err)
		return
	}
	if kr.Kind == nil {
		e.ErrorString("%v %q", ErrMissingField, "kind")
		return
	}
	kind, err := scene.ParseKind(*kr.Kind)
	if err != nil {
		e.ErrorString("%v: %q", ErrUnknownKind, *kr.Kind)
		return
	}

	nerr := len(e.Errors())
	switch kind {
	case scene.KindPoint:
		util.CheckJSON[pointEntityRecord](l.text, e)
	case scene.KindLine:
		util.CheckJSON[lineRecord](l.text, e)
	case scene.KindPlace:
		util.CheckJSON[placeRecord](l.text, e)
	case scene.KindEllipse:
		util.CheckJSON[ellipseRecord](l.text, e)
	}
	if len(e.Errors()) == nerr {
		lintError(e, decodeEntity(sc, l))
	}
}

// lintError reports err without the line number that a FormatError
// carries, since the ErrorLogger hierarchy already has it.
func lintError(e *util.ErrorLogger, err error) {
	var ferr *FormatError
	if errors.As(err, &ferr) {
		e.Error(ferr.Err)
	} else if err != nil {
		e.Error(err)
	}
}
