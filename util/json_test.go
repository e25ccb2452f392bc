// util/json_test.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"errors"
	"strings"
	"testing"
)

func TestFindDuplicateJSONKeys(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected []DuplicateJSONKey
	}{
		{
			name:     "no duplicates",
			json:     `{"kind": "Point", "x": 1, "y": 2, "z": 3}`,
			expected: nil,
		},
		{
			name: "duplicate at root",
			json: `{"kind": "Point", "x": 1, "x": 3}`,
			expected: []DuplicateJSONKey{
				{Path: "", Key: "x"},
			},
		},
		{
			name: "duplicate in nested object",
			json: `{"kind": "Line", "start": {"x": 1, "x": 2}, "end": {"x": 0}}`,
			expected: []DuplicateJSONKey{
				{Path: "start", Key: "x"},
			},
		},
		{
			name: "multiple duplicates at different levels",
			json: `{"color": 1, "color": 2, "end": {"y": 1, "y": 2}}`,
			expected: []DuplicateJSONKey{
				{Path: "", Key: "color"},
				{Path: "end", Key: "y"},
			},
		},
		{
			name:     "array with objects no duplicates",
			json:     `{"points": [{"x": 1}, {"x": 2}]}`,
			expected: nil,
		},
		{
			name: "duplicate inside array element",
			json: `{"points": [{"x": 1, "x": 2}], "width": 5}`,
			expected: []DuplicateJSONKey{
				{Path: "points", Key: "x"},
			},
		},
		{
			name:     "top-level array",
			json:     `[{"x": 1, "y": 0}, {"x": 0, "y": 1}]`,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindDuplicateJSONKeys([]byte(tt.json))

			if len(result) != len(tt.expected) {
				t.Errorf("expected %d duplicates, got %d: %v", len(tt.expected), len(result), result)
				return
			}

			for i, exp := range tt.expected {
				if result[i] != exp {
					t.Errorf("duplicate %d: expected %+v, got %+v", i, exp, result[i])
				}
			}
		})
	}
}

type testRecord struct {
	Kind  string   `json:"kind"`
	X     *float64 `json:"x"`
	Color *int     `json:"color"`
	Tags  []string `json:"tags"`
}

func TestUnmarshalJSONBytes(t *testing.T) {
	var r testRecord
	if err := UnmarshalJSONBytes([]byte(`{"kind": "Point", "x": 2.5}`), &r); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if r.Kind != "Point" || r.X == nil || *r.X != 2.5 || r.Color != nil {
		t.Errorf("unexpected result %+v", r)
	}

	err := UnmarshalJSONBytes([]byte("{\"kind\": \"Point\",\n  \"x\": }"), &r)
	var jerr *JSONError
	if !errors.As(err, &jerr) {
		t.Fatalf("expected *JSONError, got %v", err)
	}
	if jerr.Line != 2 {
		t.Errorf("got line %d, expected 2", jerr.Line)
	}

	err = UnmarshalJSONBytes([]byte(`{"kind": 12}`), &r)
	if !errors.As(err, &jerr) || !strings.Contains(err.Error(), "kind") {
		t.Errorf("expected type error mentioning the field, got %v", err)
	}

	err = UnmarshalJSONBytes([]byte(`{"color": 3}`), &r)
	if err != nil || r.Color == nil || *r.Color != 3 {
		t.Errorf("got %+v %v", r, err)
	}
}

func TestCheckJSON(t *testing.T) {
	var e ErrorLogger
	CheckJSON[testRecord]([]byte(`{"kind": "Point", "x": 1, "color": null, "tags": ["a"]}`), &e)
	if e.HaveErrors() {
		t.Errorf("unexpected errors: %s", e.String())
	}

	e = ErrorLogger{}
	CheckJSON[testRecord]([]byte(`{"kind": "Point", "colour": 1, "x": "one", "tags": [1]}`), &e)
	if len(e.Errors()) != 3 {
		t.Errorf("expected 3 errors, got %d: %s", len(e.Errors()), e.String())
	}
	if !strings.Contains(e.String(), `"colour"`) {
		t.Errorf("misspelled field not reported: %s", e.String())
	}

	e = ErrorLogger{}
	CheckJSON[testRecord]([]byte(`{"kind": `), &e)
	if !e.HaveErrors() {
		t.Errorf("expected syntax error")
	}

	if !TypeCheckJSON[[]testRecord]([]any{map[string]any{"kind": "Line"}}) {
		t.Errorf("TypeCheckJSON rejected valid input")
	}
	if TypeCheckJSON[[]testRecord](map[string]any{}) {
		t.Errorf("TypeCheckJSON accepted an object for a slice")
	}
}

func TestErrorLogger(t *testing.T) {
	var e ErrorLogger
	e.Push("line 4")
	e.Push("start")
	e.ErrorString("missing %q", "x")
	e.Pop()
	e.Warning("duplicate key %q", "y")
	e.Pop()
	e.Error(errors.New("bad"))

	errs := e.Errors()
	if len(errs) != 2 || errs[0] != `line 4 / start: missing "x"` || errs[1] != "bad" {
		t.Errorf("unexpected errors %q", errs)
	}
	if w := e.Warnings(); len(w) != 1 || w[0] != `line 4: duplicate key "y"` {
		t.Errorf("unexpected warnings %q", w)
	}

	var sb strings.Builder
	e.PrintErrors(&sb, nil)
	if !strings.HasPrefix(sb.String(), "warning: line 4") {
		t.Errorf("unexpected output %q", sb.String())
	}
	if e.CurrentDepth() != 0 {
		t.Errorf("depth got %d, expected 0", e.CurrentDepth())
	}
}

func TestCheckDepth(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic for unbalanced Push")
		}
	}()

	var e ErrorLogger
	func() {
		defer e.CheckDepth(e.CurrentDepth())
		e.Push("unbalanced")
	}()
}
