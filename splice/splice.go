//
// Copyright 2022 Nestybox, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

// Package splice locates a fixed byte pattern within a captured syscall
// buffer and cuts it out, shifting the trailing bytes left.
package splice

import (
	"errors"
	"fmt"
)

// DefaultNeedle is the NUL-terminated argv entry removed when no pattern is
// configured.
const DefaultNeedle = "--unshare-pid\x00"

var ErrInvalidPattern = errors.New("invalid pattern")

// Find returns the offset of the leftmost occurrence of needle within
// haystack, or -1. An empty needle never matches.
func Find(haystack, needle []byte) int {

	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}

	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i] != needle[0] {
			continue
		}
		if string(haystack[i:i+len(needle)]) == string(needle) {
			return i
		}
	}

	return -1
}

// RemoveRegion deletes the half-open range [start, end) from buf in place
// and returns the shortened slice. The range must lie within buf.
func RemoveRegion(buf []byte, start, end int) []byte {
	n := copy(buf[start:], buf[end:])
	return buf[:start+n]
}

type Policy int

const (
	// PolicyRemove cuts the whole needle out of the buffer.
	PolicyRemove Policy = iota

	// PolicyReplace overwrites the needle with Replacement and cuts out what
	// is left of it.
	PolicyReplace
)

func (p Policy) String() string {
	if p == PolicyReplace {
		return "replace"
	}
	return "remove"
}

// Pattern is the immutable byte sequence to scrub plus the action taken on a
// match. The buffer can only shrink: the tracee owns the memory beyond the
// claimed length, so a replacement longer than the needle is rejected.
type Pattern struct {
	needle      []byte
	replacement []byte
	policy      Policy
}

// NewPattern builds a pattern. A nil or empty replacement selects
// PolicyRemove.
func NewPattern(needle, replacement []byte) (*Pattern, error) {

	if len(needle) == 0 {
		return nil, fmt.Errorf("%w: empty needle", ErrInvalidPattern)
	}
	if len(replacement) > len(needle) {
		return nil, fmt.Errorf("%w: replacement (%d bytes) longer than needle (%d bytes)",
			ErrInvalidPattern, len(replacement), len(needle))
	}

	p := &Pattern{
		needle: append([]byte(nil), needle...),
		policy: PolicyRemove,
	}
	if len(replacement) > 0 {
		p.replacement = append([]byte(nil), replacement...)
		p.policy = PolicyReplace
	}

	return p, nil
}

// DefaultPattern returns the stock "--unshare-pid\0" removal pattern.
func DefaultPattern() *Pattern {
	p, _ := NewPattern([]byte(DefaultNeedle), nil)
	return p
}

func (p *Pattern) Needle() []byte {
	return p.needle
}

func (p *Pattern) Policy() Policy {
	return p.policy
}

func (p *Pattern) String() string {
	if p.policy == PolicyReplace {
		return fmt.Sprintf("%q -> %q", p.needle, p.replacement)
	}
	return fmt.Sprintf("%q", p.needle)
}

// Apply scrubs the needle from buf and returns the resulting slice (aliasing
// buf) along with the number of splices performed.
//
// With PolicyRemove the scan restarts from the beginning after every splice,
// so no occurrence survives, including one formed by joining the bytes around
// a removed region. With PolicyReplace the scan resumes right after the
// inserted replacement, which is never rescanned.
func (p *Pattern) Apply(buf []byte) ([]byte, int) {

	var count, from int

	for {
		idx := Find(buf[from:], p.needle)
		if idx < 0 {
			return buf, count
		}
		idx += from

		start := idx
		if p.policy == PolicyReplace {
			copy(buf[idx:], p.replacement)
			start = idx + len(p.replacement)
			from = start
		}

		buf = RemoveRegion(buf, start, idx+len(p.needle))
		count++
	}
}
