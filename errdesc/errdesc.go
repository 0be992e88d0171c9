// Copyright 2026 The xhrxray Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package errdesc normalizes error values into the structured
// attributes carried by telemetry events.
package errdesc

import (
	"fmt"
	"runtime"
	"strings"
)

// Descriptor is the JSON shape of an error inside a telemetry event.
type Descriptor struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// Normalize converts a raw error into a Descriptor. The type is the
// error's dynamic Go type, the message its Error text. A call stack is
// captured at the call site and truncated to stackDepth frames; a
// depth of zero or less omits the stack. A nil error yields nil.
func Normalize(err error, stackDepth int) *Descriptor {
	if err == nil {
		return nil
	}
	d := &Descriptor{
		Type:    typeName(err),
		Message: err.Error(),
	}
	if stackDepth > 0 {
		d.Stack = capture(stackDepth)
	}
	return d
}

// Category builds a Descriptor for a failure the platform reports by
// category rather than as an error value. No stack is attached.
func Category(category, message string) *Descriptor {
	return &Descriptor{
		Type:    category,
		Message: message,
	}
}

func typeName(err error) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
}

func capture(depth int) string {
	pcs := make([]uintptr, depth)
	// Skip runtime.Callers, capture, and Normalize.
	n := runtime.Callers(3, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var b strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
