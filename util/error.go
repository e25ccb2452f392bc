// util/error.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"fmt"
	"io"
	"strings"

	"github.com/platecad/platecad/log"
)

// ErrorLogger accumulates errors found while validating input so that
// validation can continue past the first problem. Push and Pop maintain
// a description of what's currently being checked, which is prepended to
// each error.
type ErrorLogger struct {
	hierarchy []string
	errors    []string
	warnings  []string
}

func (e *ErrorLogger) Push(s string) {
	e.hierarchy = append(e.hierarchy, s)
}

func (e *ErrorLogger) Pop() {
	e.hierarchy = e.hierarchy[:len(e.hierarchy)-1]
}

func (e *ErrorLogger) prefix() string {
	if len(e.hierarchy) == 0 {
		return ""
	}
	return strings.Join(e.hierarchy, " / ") + ": "
}

func (e *ErrorLogger) ErrorString(s string, args ...any) {
	e.errors = append(e.errors, e.prefix()+fmt.Sprintf(s, args...))
}

func (e *ErrorLogger) Error(err error) {
	e.errors = append(e.errors, e.prefix()+err.Error())
}

// Warning records a problem that doesn't make the input invalid.
func (e *ErrorLogger) Warning(s string, args ...any) {
	e.warnings = append(e.warnings, e.prefix()+fmt.Sprintf(s, args...))
}

func (e *ErrorLogger) HaveErrors() bool {
	return len(e.errors) > 0
}

func (e *ErrorLogger) Errors() []string {
	return e.errors
}

func (e *ErrorLogger) Warnings() []string {
	return e.warnings
}

// PrintErrors writes the warnings and errors to w and also logs them.
func (e *ErrorLogger) PrintErrors(w io.Writer, lg *log.Logger) {
	// Two loops so they aren't interleaved with the output to w.
	for _, warn := range e.warnings {
		lg.Warnf("%s", warn)
	}
	for _, err := range e.errors {
		lg.Errorf("%s", err)
	}

	for _, warn := range e.warnings {
		fmt.Fprintln(w, "warning: "+warn)
	}
	for _, err := range e.errors {
		fmt.Fprintln(w, err)
	}
}

func (e *ErrorLogger) String() string {
	return strings.Join(e.errors, "\n")
}

// CheckDepth panics if the hierarchy depth isn't d; deferring it with the
// depth at entry catches unbalanced Push/Pop calls.
func (e *ErrorLogger) CheckDepth(d int) {
	if e == nil || e.CurrentDepth() == d {
		return
	}

	if r := recover(); r != nil {
		// Don't mask the original panic.
		panic(r)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Initial ErrorLogger depth %d, final %d\n", d, e.CurrentDepth())
	for _, f := range log.Callstack(0) {
		fmt.Fprintf(&sb, "    %s\n", f)
	}
	panic(sb.String())
}

func (e *ErrorLogger) CurrentDepth() int {
	if e == nil {
		return 0
	}
	return len(e.hierarchy)
}
