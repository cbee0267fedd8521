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

// Package syscalls decodes the register snapshot of a syscall-stopped tracee
// and materializes the arguments of the write call.
package syscalls

import (
	"errors"
	"fmt"
	"sync"

	libseccomp "github.com/seccomp/libseccomp-golang"
	"golang.org/x/sys/unix"
)

// WriteNr is the number of the only syscall whose arguments are extracted.
const WriteNr = unix.SYS_WRITE

var ErrUnsupportedArch = errors.New("unsupported architecture")

// Sysno returns the number of the syscall the tracee is stopped at.
func Sysno(regs *unix.PtraceRegs) uint64 {
	return sysno(regs)
}

// Retval returns the syscall return value; only meaningful at syscall exit.
func Retval(regs *unix.PtraceRegs) int64 {
	return int64(retval(regs))
}

// EntryHint reports whether the registers look like a syscall-entry stop.
// known is false on architectures where the registers carry no such hint.
func EntryHint(regs *unix.PtraceRegs) (entry bool, known bool) {
	return entryHint(regs)
}

var (
	namesMu sync.RWMutex
	names   = make(map[uint64]string)
)

// Name resolves a syscall number of the native architecture through
// libseccomp. Unknown numbers are rendered as "syscall_<nr>".
func Name(nr uint64) string {

	namesMu.RLock()
	name, ok := names[nr]
	namesMu.RUnlock()
	if ok {
		return name
	}

	name, err := libseccomp.ScmpSyscall(nr).GetName()
	if err != nil || name == "" {
		name = fmt.Sprintf("syscall_%d", nr)
	}

	namesMu.Lock()
	names[nr] = name
	namesMu.Unlock()

	return name
}
