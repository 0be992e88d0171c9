// Copyright 2026 The xhrxray Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package seam intercepts replaceable operations. An operation is a
// function value held in a variable or struct field owned by another
// component; Install swaps it for a wrapper that falls through to the
// original, and Patches.Restore puts every original back.
package seam

import (
	"errors"
	"fmt"
	"reflect"
)

const nilPatchesMsg = "seam: nil patch set"

var (
	// ErrNilTarget is returned when the pointer to the operation is nil.
	ErrNilTarget = errors.New("seam: nil target")
	// ErrMissingOp is returned when the operation to intercept is a nil
	// function. Installation fails loudly rather than silently leaving
	// the operation unobserved.
	ErrMissingOp = errors.New("seam: target operation is nil")
	// ErrNilWrapper is returned when no wrapper factory is supplied.
	ErrNilWrapper = errors.New("seam: nil wrapper")
)

// Patches tracks installed interceptions so they can be reverted as a
// unit. The zero value is ready to use. Patches is not safe for
// concurrent use.
type Patches struct {
	restores []func()
}

// Len reports the number of interceptions currently installed.
func (p *Patches) Len() int {
	return len(p.restores)
}

// Restore reverts every installed interception, newest first, and is
// idempotent.
func (p *Patches) Restore() {
	for i := len(p.restores) - 1; i >= 0; i-- {
		p.restores[i]()
	}
	p.restores = nil
}

// Install replaces the operation at target with wrap(original). The
// wrapper must invoke the original with the arguments it received and
// return the original's result so interception stays transparent to
// callers. The replacement is recorded in p for later Restore.
func Install[F any](p *Patches, target *F, wrap func(F) F) error {
	if p == nil {
		panic(nilPatchesMsg)
	}
	if target == nil {
		return ErrNilTarget
	}
	if wrap == nil {
		return ErrNilWrapper
	}
	orig := *target
	v := reflect.ValueOf(orig)
	if v.Kind() != reflect.Func {
		return fmt.Errorf("seam: target is %v, not a function", v.Kind())
	}
	if v.IsNil() {
		return ErrMissingOp
	}
	*target = wrap(orig)
	p.restores = append(p.restores, func() {
		*target = orig
	})
	return nil
}
