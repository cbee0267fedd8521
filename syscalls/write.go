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

package syscalls

import (
	"errors"
	"fmt"

	"github.com/nestybox/sysbox-scrub/domain"
	"github.com/nestybox/sysbox-scrub/splice"
	"golang.org/x/sys/unix"
)

// ErrBufferTooLarge is returned for write calls whose claimed length exceeds
// the inspection cap. Such calls are left alone.
var ErrBufferTooLarge = errors.New("write buffer exceeds inspection limit")

// MaxRWCount is the kernel's MAX_RW_COUNT: no single write transfers more.
// Larger counts are never inspected.
const MaxRWCount = 0x7ffff000

// WriteCallArgs holds the arguments of an intercepted write(2) call along with
// a local copy of the buffer and of the registers at the time of the stop.
//
//	ssize_t write(int fd, const void *buf, size_t count)
type WriteCallArgs struct {
	Fd     int
	Addr   uintptr
	Length int // count claimed by the tracee
	Buf    []byte
	Regs   unix.PtraceRegs
}

// ParseWriteCall returns nil, nil unless regs describe a write call. maxBuffer
// caps the number of bytes pulled out of the tracee (0: no cap).
func ParseWriteCall(
	mem domain.MemParserIface,
	regs *unix.PtraceRegs,
	maxBuffer int) (*WriteCallArgs, error) {

	if !archSupported {
		return nil, ErrUnsupportedArch
	}

	if sysno(regs) != WriteNr {
		return nil, nil
	}

	count := arg2(regs)

	w := &WriteCallArgs{
		Fd:     int(int32(arg0(regs))),
		Addr:   uintptr(arg1(regs)),
		Length: int(count),
		Regs:   *regs,
	}

	if count > MaxRWCount || (maxBuffer > 0 && w.Length > maxBuffer) {
		return w, fmt.Errorf("%w: fd %d, %d bytes at 0x%x",
			ErrBufferTooLarge, w.Fd, count, w.Addr)
	}

	buf, err := mem.Read(w.Addr, w.Length)
	if err != nil {
		return nil, err
	}
	w.Buf = buf

	return w, nil
}

// Contents returns the current (possibly spliced) buffer.
func (w *WriteCallArgs) Contents() []byte {
	return w.Buf
}

// RemoveRegion cuts [start, end) out of the local buffer copy.
func (w *WriteCallArgs) RemoveRegion(start, end int) {
	w.Buf = splice.RemoveRegion(w.Buf, start, end)
}

// Scrub applies p to the local buffer copy and returns the number of
// occurrences it rewrote.
func (w *WriteCallArgs) Scrub(p *splice.Pattern) int {
	buf, n := p.Apply(w.Buf)
	w.Buf = buf
	return n
}

// Removed returns the number of bytes spliced out so far.
func (w *WriteCallArgs) Removed() int {
	return w.Length - len(w.Buf)
}

// WriteOut commits the buffer to the tracee at its original address, then
// patches the count argument with the new length and applies the full
// register set so that the kernel performs the shortened write.
func (w *WriteCallArgs) WriteOut(mem domain.MemParserIface, rs domain.RegsSetterIface) error {

	if err := mem.Write(w.Addr, w.Buf); err != nil {
		return err
	}

	regs := w.Regs
	setArg2(&regs, uint64(len(w.Buf)))

	if err := rs.SetRegs(&regs); err != nil {
		return fmt.Errorf("failed to set registers: %w", err)
	}

	return nil
}
