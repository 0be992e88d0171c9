// Copyright 2026 The xhrxray Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package urlfilter decides which request URLs are eligible for
// telemetry collection, using allowlist and denylist patterns.
package urlfilter

import (
	"fmt"
	"regexp"
)

// Filter matches URLs against compiled allow and deny patterns. A nil
// *Filter allows every URL.
type Filter struct {
	allow []*regexp.Regexp
	deny  []*regexp.Regexp
}

// New compiles the given patterns. An empty allow list means every URL
// is allowed unless denied.
func New(allow, deny []string) (*Filter, error) {
	f := &Filter{}
	var err error
	if f.allow, err = compile(allow); err != nil {
		return nil, err
	}
	if f.deny, err = compile(deny); err != nil {
		return nil, err
	}
	return f, nil
}

// MustNew is New, panicking on an invalid pattern. Intended for
// patterns fixed at program start.
func MustNew(allow, deny []string) *Filter {
	f, err := New(allow, deny)
	if err != nil {
		panic(err)
	}
	return f
}

// Allowed reports whether url is eligible: it must match at least one
// allow pattern (or the allow list must be empty) and no deny pattern.
func (f *Filter) Allowed(url string) bool {
	if f == nil {
		return true
	}
	for _, re := range f.deny {
		if re.MatchString(url) {
			return false
		}
	}
	if len(f.allow) == 0 {
		return true
	}
	for _, re := range f.allow {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}

func compile(patterns []string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("urlfilter: bad pattern %q: %w", p, err)
		}
		res = append(res, re)
	}
	return res, nil
}
