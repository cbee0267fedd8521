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

package splice

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFind(t *testing.T) {

	needle := []byte(DefaultNeedle)

	tests := []struct {
		name     string
		haystack []byte
		needle   []byte
		want     int
	}{
		// Pattern at the very start.
		{"1", []byte("--unshare-pid\x00bwrap\x00"), needle, 0},

		// Pattern at the last possible offset.
		{"2", []byte("bwrap\x00--unshare-pid\x00"), needle, 6},

		// Leftmost occurrence wins.
		{"3", []byte("a\x00--unshare-pid\x00--unshare-pid\x00"), needle, 2},

		// Prefix without the NUL terminator does not match.
		{"4", []byte("hello --unshare-pid world\x00"), needle, -1},

		// Haystack shorter than needle.
		{"5", []byte("--unshare"), needle, -1},

		// Empty needle never matches.
		{"6", []byte("abc"), []byte{}, -1},

		// Overlapping candidates: first full window is chosen.
		{"7", []byte("aaab"), []byte("aab"), 1},

		// Exact match.
		{"8", needle, needle, 0},

		// Empty haystack.
		{"9", nil, needle, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Find(tt.haystack, tt.needle); got != tt.want {
				t.Errorf("Find() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Find must agree with the leftmost-match semantics of bytes.Index on
// arbitrary inputs drawn from a tiny alphabet (so that matches are frequent).
func TestFind_Random(t *testing.T) {

	r := rand.New(rand.NewSource(1))
	alphabet := []byte("ab\x00")

	gen := func(n int) []byte {
		b := make([]byte, n)
		for i := range b {
			b[i] = alphabet[r.Intn(len(alphabet))]
		}
		return b
	}

	for i := 0; i < 2000; i++ {
		haystack := gen(r.Intn(24))
		needle := gen(1 + r.Intn(4))

		assert.Equal(t, bytes.Index(haystack, needle), Find(haystack, needle),
			"haystack %q needle %q", haystack, needle)
	}
}

func TestRemoveRegion(t *testing.T) {

	tests := []struct {
		name       string
		buf        string
		start, end int
		want       string
	}{
		{"1", "hello\x00--unshare-pid\x00world\x00", 6, 20, "hello\x00world\x00"},
		{"2", "abcdef", 0, 2, "cdef"},
		{"3", "abcdef", 4, 6, "abcd"},
		{"4", "abcdef", 0, 6, ""},
		{"5", "abcdef", 3, 3, "abcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := []byte(tt.buf)
			got := RemoveRegion(buf, tt.start, tt.end)

			assert.Equal(t, tt.want, string(got))
			assert.Equal(t, len(tt.buf)-(tt.end-tt.start), len(got))

			// Operates in place.
			if len(got) > 0 {
				assert.Equal(t, &buf[0], &got[0])
			}
		})
	}
}

func TestRemoveRegion_Random(t *testing.T) {

	r := rand.New(rand.NewSource(2))

	for i := 0; i < 500; i++ {
		orig := make([]byte, r.Intn(40))
		r.Read(orig)

		start := r.Intn(len(orig) + 1)
		end := start + r.Intn(len(orig)-start+1)

		want := append(append([]byte{}, orig[:start]...), orig[end:]...)
		got := RemoveRegion(append([]byte(nil), orig...), start, end)

		require.Equal(t, string(want), string(got))
	}
}

func TestNewPattern(t *testing.T) {

	tests := []struct {
		name        string
		needle      []byte
		replacement []byte
		wantPolicy  Policy
		wantErr     bool
	}{
		{"1", []byte("--unshare-pid\x00"), nil, PolicyRemove, false},
		{"2", []byte("--unshare-pid\x00"), []byte("--share\x00"), PolicyReplace, false},
		{"3", []byte("--unshare-pid\x00"), []byte{}, PolicyRemove, false},
		{"4", []byte{}, nil, PolicyRemove, true},
		{"5", []byte("ab"), []byte("abc"), PolicyRemove, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPattern(tt.needle, tt.replacement)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidPattern))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPolicy, p.Policy())
			assert.Equal(t, tt.needle, p.Needle())
		})
	}
}

func TestNewPattern_CopiesInput(t *testing.T) {

	needle := []byte("abc")
	p, err := NewPattern(needle, nil)
	require.NoError(t, err)

	needle[0] = 'x'
	assert.Equal(t, []byte("abc"), p.Needle())
}

func TestPattern_Apply(t *testing.T) {

	replace, err := NewPattern([]byte("--unshare-pid\x00"), []byte("-q\x00"))
	require.NoError(t, err)

	tests := []struct {
		name      string
		p         *Pattern
		buf       string
		want      string
		wantCount int
	}{
		// Argv-style buffer with the flag in the middle.
		{"1", DefaultPattern(), "hello\x00--unshare-pid\x00world\x00", "hello\x00world\x00", 1},

		// No occurrence: buffer untouched.
		{"2", DefaultPattern(), "hello\x00world\x00", "hello\x00world\x00", 0},

		// At offset 0.
		{"3", DefaultPattern(), "--unshare-pid\x00bwrap\x00", "bwrap\x00", 1},

		// At the last possible offset.
		{"4", DefaultPattern(), "bwrap\x00--unshare-pid\x00", "bwrap\x00", 1},

		// Repeated occurrences are all removed.
		{"5", DefaultPattern(), "a\x00--unshare-pid\x00b\x00--unshare-pid\x00", "a\x00b\x00", 2},

		// Removal that joins two halves into a new occurrence.
		{"6", DefaultPattern(), "--unshare---unshare-pid\x00pid\x00", "", 2},

		// Whole buffer is the pattern.
		{"7", DefaultPattern(), "--unshare-pid\x00", "", 1},

		// Replacement policy.
		{"8", replace, "bwrap\x00--unshare-pid\x00sh\x00", "bwrap\x00-q\x00sh\x00", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := tt.p.Apply([]byte(tt.buf))
			assert.Equal(t, tt.want, string(got))
			assert.Equal(t, tt.wantCount, n)
		})
	}
}

// Once scrubbed, a buffer never contains the needle again.
func TestPattern_ApplyIdempotent(t *testing.T) {

	r := rand.New(rand.NewSource(3))
	p, err := NewPattern([]byte("ab\x00"), nil)
	require.NoError(t, err)

	alphabet := []byte("ab\x00")
	for i := 0; i < 1000; i++ {
		buf := make([]byte, r.Intn(32))
		for j := range buf {
			buf[j] = alphabet[r.Intn(len(alphabet))]
		}

		once, _ := p.Apply(buf)
		assert.Equal(t, -1, Find(once, p.Needle()))

		twice, n := p.Apply(append([]byte(nil), once...))
		assert.Equal(t, 0, n)
		assert.Equal(t, string(once), string(twice))
	}
}

// A replacement equal to the needle must not loop forever.
func TestPattern_ApplyReplaceTerminates(t *testing.T) {

	p, err := NewPattern([]byte("ab"), []byte("ab"))
	require.NoError(t, err)

	got, n := p.Apply([]byte("abab"))
	assert.Equal(t, "abab", string(got))
	assert.Equal(t, 2, n)
}
