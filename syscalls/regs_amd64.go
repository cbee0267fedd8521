//go:build linux && amd64

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

import "golang.org/x/sys/unix"

// https://man7.org/linux/man-pages/man2/syscall.2.html
//   Arch/ABI    arg1  arg2  arg3  arg4  arg5  arg6  arg7   Notes
//   ────────────────────────────────────────────────────────────
//   x86-64      rdi   rsi   rdx   r10   r8    r9    -
//
//   Arch/ABI    Instruction       System  Ret  Ret  Error  Notes
//                                 call #  val  val2
//   ────────────────────────────────────────────────────────────
//   x86-64      syscall           rax     rax  rdx  -      5

const archSupported = true

func sysno(regs *unix.PtraceRegs) uint64      { return regs.Orig_rax }
func arg0(regs *unix.PtraceRegs) uint64       { return regs.Rdi }
func arg1(regs *unix.PtraceRegs) uint64       { return regs.Rsi }
func arg2(regs *unix.PtraceRegs) uint64       { return regs.Rdx }
func setArg2(regs *unix.PtraceRegs, v uint64) { regs.Rdx = v }
func retval(regs *unix.PtraceRegs) uint64     { return regs.Rax }

// The kernel preloads rax with -ENOSYS before stopping the tracee at
// syscall entry.
func entryHint(regs *unix.PtraceRegs) (entry bool, known bool) {
	return regs.Rax == ^uint64(unix.ENOSYS)+1, true
}
