// Copyright 2026 The xhrxray Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package xhrxray

import (
	"sync"

	"github.com/asyncmon/xhrxray/xhr"
)

// tracking is the per-request record held between Open and the
// terminal outcome. trace stays nil until Send starts a trace.
type tracking struct {
	method string
	url    string
	async  bool
	trace  *XRayTraceEvent
}

// store correlates live request handles with their tracking records.
// Open and Send run on caller goroutines while terminal callbacks run
// on the facility's dispatcher goroutine, hence the mutex.
type store struct {
	mu sync.Mutex
	m  map[*xhr.Request]*tracking
}

func newStore() *store {
	return &store{m: make(map[*xhr.Request]*tracking)}
}

// put records rec for handle, replacing any existing record: a request
// reconfigured by a later Open is tracked per its latest Open.
func (s *store) put(handle *xhr.Request, rec *tracking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[handle] = rec
}

// get returns the record for handle, or nil.
func (s *store) get(handle *xhr.Request) *tracking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[handle]
}

// take removes and returns the record for handle, or nil. Terminal
// processing takes the record, so a duplicate terminal callback for
// the same handle misses and becomes a no-op, and completed entries do
// not accumulate for the life of the process.
func (s *store) take(handle *xhr.Request) *tracking {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.m[handle]
	if rec != nil {
		delete(s.m, handle)
	}
	return rec
}

// size reports the number of live records.
func (s *store) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
