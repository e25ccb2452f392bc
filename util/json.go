// util/json.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

///////////////////////////////////////////////////////////////////////////
// JSON

// DuplicateJSONKey represents a duplicate key found in JSON.
type DuplicateJSONKey struct {
	Path string // JSON path to the object holding the duplicate (e.g., "start")
	Key  string // The duplicate key name
}

// FindDuplicateJSONKeys scans JSON content and returns all duplicate keys
// found. encoding/json silently keeps the last value for a repeated key,
// so this walks the token stream tracking the keys seen in each object.
func FindDuplicateJSONKeys(data []byte) []DuplicateJSONKey {
	dec := json.NewDecoder(bytes.NewReader(data))

	type level struct {
		object    bool
		seen      map[string]bool
		expectKey bool
		keyed     bool // the container is the value of a key in its parent
	}
	var stack []level
	var path []string
	var dups []DuplicateJSONKey

	// A value has been consumed in the current container.
	valueDone := func() {
		if n := len(stack); n > 0 && stack[n-1].object {
			stack[n-1].expectKey = true
			if len(path) > 0 {
				path = path[:len(path)-1]
			}
		}
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}

		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{', '[':
				n := len(stack)
				keyed := n > 0 && stack[n-1].object && !stack[n-1].expectKey
				l := level{object: v == '{', keyed: keyed, expectKey: v == '{'}
				if l.object {
					l.seen = make(map[string]bool)
				}
				stack = append(stack, l)
			case '}', ']':
				if len(stack) > 0 {
					keyed := stack[len(stack)-1].keyed
					stack = stack[:len(stack)-1]
					if keyed {
						valueDone()
					}
				}
			}
		case string:
			if n := len(stack); n > 0 && stack[n-1].object && stack[n-1].expectKey {
				top := &stack[n-1]
				if top.seen[v] {
					dups = append(dups, DuplicateJSONKey{Path: strings.Join(path, "."), Key: v})
				}
				top.seen[v] = true
				top.expectKey = false
				path = append(path, v)
			} else {
				valueDone()
			}
		default:
			valueDone()
		}
	}

	return dups
}

// JSONError is returned by UnmarshalJSONBytes when the JSON is invalid; it
// records where in the input the problem was found.
type JSONError struct {
	Line, Char int
	Err        error
}

func (e *JSONError) Error() string {
	return fmt.Sprintf("Error at line %d, character %d: %v", e.Line, e.Char, e.Err)
}

func (e *JSONError) Unwrap() error {
	return e.Err
}

// UnmarshalJSONBytes unmarshals the bytes into the given type but goes
// through some efforts to return useful error messages when the JSON is
// invalid.
func UnmarshalJSONBytes[T any](b []byte, out *T) error {
	err := json.Unmarshal(b, out)
	if err == nil {
		return nil
	}

	decodeOffset := func(offset int64) (line, char int) {
		line, char = 1, 1
		for i := 0; i < int(offset) && i < len(b); i++ {
			if b[i] == '\n' {
				line++
				char = 1
			} else {
				char++
			}
		}
		return
	}

	var serr *json.SyntaxError
	var terr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &serr):
		line, char := decodeOffset(serr.Offset)
		return &JSONError{Line: line, Char: char, Err: serr}

	case errors.As(err, &terr):
		line, char := decodeOffset(terr.Offset)
		field := terr.Field
		if terr.Struct != "" {
			field = terr.Struct + "." + field
		}
		return &JSONError{Line: line, Char: char,
			Err: fmt.Errorf("%s value for %s invalid for type %s", terr.Value, field, terr.Type)}

	default:
		return err
	}
}

///////////////////////////////////////////////////////////////////////////

// CheckJSON checks whether the provided JSON is syntactically valid and
// then typechecks it with respect to the provided type T, reporting
// mismatches and unexpected object keys to e.
func CheckJSON[T any](contents []byte, e *ErrorLogger) {
	defer e.CheckDepth(e.CurrentDepth())

	var items any
	if err := UnmarshalJSONBytes(contents, &items); err != nil {
		e.Error(err)
		return
	}

	ty := reflect.TypeOf((*T)(nil)).Elem()
	typeCheckJSON(items, ty, make(map[reflect.Type]map[string]reflect.Type), e)
}

// TypeCheckJSON returns a Boolean indicating whether the provided raw
// unmarshaled JSON values are type-compatible with the given type T.
func TypeCheckJSON[T any](json any) bool {
	var e ErrorLogger
	ty := reflect.TypeOf((*T)(nil)).Elem()
	typeCheckJSON(json, ty, make(map[reflect.Type]map[string]reflect.Type), &e)
	return !e.HaveErrors()
}

func typeCheckJSON(json any, ty reflect.Type, structTypes map[reflect.Type]map[string]reflect.Type, e *ErrorLogger) {
	for ty.Kind() == reflect.Ptr {
		ty = ty.Elem()
	}
	if json == nil {
		// null is acceptable for anything; required fields are checked
		// when the record is decoded.
		return
	}

	mismatch := func() {
		e.ErrorString("unexpected %s value for %s", jsonTypeName(json), ty)
	}

	switch ty.Kind() {
	case reflect.Bool:
		if _, ok := json.(bool); !ok {
			mismatch()
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Float32, reflect.Float64:
		if _, ok := json.(float64); !ok {
			mismatch()
		}

	case reflect.String:
		if _, ok := json.(string); !ok {
			mismatch()
		}

	case reflect.Array, reflect.Slice:
		if array, ok := json.([]any); ok {
			for i, item := range array {
				e.Push(fmt.Sprintf("[%d]", i))
				typeCheckJSON(item, ty.Elem(), structTypes, e)
				e.Pop()
			}
		} else {
			mismatch()
		}

	case reflect.Map:
		if m, ok := json.(map[string]any); ok {
			for k, v := range m {
				e.Push(k)
				typeCheckJSON(v, ty.Elem(), structTypes, e)
				e.Pop()
			}
		} else {
			mismatch()
		}

	case reflect.Struct:
		items, ok := json.(map[string]any)
		if !ok {
			mismatch()
			return
		}

		// Cache the map from JSON names to field types for each struct
		// type so that reflect.VisibleFields is only called once per type.
		types, ok := structTypes[ty]
		if !ok {
			types = make(map[string]reflect.Type)
			for _, field := range reflect.VisibleFields(ty) {
				if jtag, ok := field.Tag.Lookup("json"); ok {
					name, _, _ := strings.Cut(jtag, ",")
					types[name] = field.Type
				}
			}
			structTypes[ty] = types
		}

		for item, value := range items {
			if fty, ok := types[item]; ok {
				e.Push(item)
				typeCheckJSON(value, fty, structTypes, e)
				e.Pop()
			} else {
				e.ErrorString("The entry %q is not an expected JSON field. Is it misspelled?", item)
			}
		}
	}
}

func jsonTypeName(v any) string {
	switch v.(type) {
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
