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

package memory

import (
	"errors"
	"fmt"
	"math"
	"unsafe"

	"github.com/nestybox/sysbox-scrub/domain"
)

// WordSize is the transfer unit of every tracee memory access.
const WordSize = int(unsafe.Sizeof(uintptr(0)))

// ErrWordAccess is matched (errors.Is) by every WordAccessError.
var ErrWordAccess = errors.New("tracee word access failed")

// WordAccessError reports the word that could not be transferred.
type WordAccessError struct {
	Op   string  // "peek" or "poke"
	Addr uintptr // word address in tracee's address space
	Err  error
}

func (e *WordAccessError) Error() string {
	return fmt.Sprintf("%s of word at 0x%x failed: %v", e.Op, e.Addr, e.Err)
}

func (e *WordAccessError) Unwrap() error {
	return e.Err
}

func (e *WordAccessError) Is(target error) bool {
	return target == ErrWordAccess
}

// memParser moves arbitrary byte ranges in and out of the tracee on top of a
// word-granular transport. Partial trailing words are read back and merged
// before being written so that bytes beyond the requested range survive.
type memParser struct {
	wio    domain.WordIOIface
	closer func() error
}

func NewMemParser(wio domain.WordIOIface) domain.MemParserIface {
	return &memParser{wio: wio}
}

// Largest buffer allocated ahead of a read; longer reads grow as words come
// in, so a bogus length fails at the first unmapped word instead of
// exhausting memory.
const readPrealloc = 64 * 1024

// Read returns exactly length bytes starting at addr.
func (mp *memParser) Read(addr uintptr, length int) ([]byte, error) {

	if length < 0 || length > math.MaxInt-WordSize {
		return nil, fmt.Errorf("invalid read length %d at 0x%x", length, addr)
	}

	words := (length + WordSize - 1) / WordSize
	span := uintptr(words * WordSize)
	if span > 0 && addr > ^uintptr(0)-(span-1) {
		return nil, fmt.Errorf("read of %d bytes at 0x%x wraps the address space", length, addr)
	}

	prealloc := words * WordSize
	if prealloc > readPrealloc {
		prealloc = readPrealloc
	}
	buf := make([]byte, 0, prealloc)
	word := make([]byte, WordSize)

	for i := 0; i < words; i++ {
		waddr := addr + uintptr(i*WordSize)

		if err := mp.wio.PeekWord(waddr, word); err != nil {
			return nil, &WordAccessError{Op: "peek", Addr: waddr, Err: err}
		}
		buf = append(buf, word...)
	}

	return buf[:length], nil
}

// Write stores data at addr.
func (mp *memParser) Write(addr uintptr, data []byte) error {

	word := make([]byte, WordSize)

	for off := 0; off < len(data); off += WordSize {
		waddr := addr + uintptr(off)

		end := off + WordSize
		if end > len(data) {
			end = len(data)
		}
		chunk := data[off:end]

		if len(chunk) < WordSize {
			if err := mp.wio.PeekWord(waddr, word); err != nil {
				return &WordAccessError{Op: "peek", Addr: waddr, Err: err}
			}
		}
		copy(word, chunk)

		if err := mp.wio.PokeWord(waddr, word); err != nil {
			return &WordAccessError{Op: "poke", Addr: waddr, Err: err}
		}
	}

	return nil
}

func (mp *memParser) Close() error {
	if mp.closer == nil {
		return nil
	}

	return mp.closer()
}
