// log/stack.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
)

const modulePrefix = "github.com/platecad/platecad/"

type StackFrame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

func (f StackFrame) String() string {
	return fmt.Sprintf("%s:%d %s", f.File, f.Line, f.Function)
}

// Stack is a call stack, innermost frame first.
type Stack []StackFrame

// maxFrames bounds how much of the stack is recorded with each message.
const maxFrames = 12

// Callstack returns the call stack starting at the caller of the function
// that calls Callstack, skipping a further skip frames. Recording stops at
// the entry point of the program or of a test.
func Callstack(skip int) Stack {
	var pcs [maxFrames]uintptr
	n := runtime.Callers(3+skip, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var s Stack
	for {
		frame, more := frames.Next()
		if frame.Function == "testing.tRunner" || frame.Function == "runtime.goexit" {
			break
		}

		fn := strings.TrimPrefix(frame.Function, modulePrefix)
		s = append(s, StackFrame{
			File:     filepath.Base(frame.File),
			Line:     frame.Line,
			Function: strings.TrimPrefix(fn, "main."),
		})

		if !more || frame.Function == "main.main" {
			break
		}
	}
	return s
}

func (s Stack) String() string {
	var sb strings.Builder
	for i, f := range s {
		if i > 0 {
			sb.WriteString(" <- ")
		}
		sb.WriteString(f.String())
	}
	return sb.String()
}

// LogValue logs the stack as a single string rather than as a list of
// frame objects.
func (s Stack) LogValue() slog.Value {
	return slog.StringValue(s.String())
}

// callstackAttr is the attribute the Logger methods attach to each
// message; it starts at the caller of the Logger method.
func callstackAttr() slog.Attr {
	return slog.Any("callstack", Callstack(1))
}
