//go:build linux && arm64

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
//   arm64       x0    x1    x2    x3    x4    x5    -
//
//   Arch/ABI    Instruction       System  Ret  Ret  Error  Notes
//                                 call #  val  val2
//   ────────────────────────────────────────────────────────────
//   arm64       svc #0            w8      x0   x1   -

const archSupported = true

func sysno(regs *unix.PtraceRegs) uint64      { return regs.Regs[8] }
func arg0(regs *unix.PtraceRegs) uint64       { return regs.Regs[0] }
func arg1(regs *unix.PtraceRegs) uint64       { return regs.Regs[1] }
func arg2(regs *unix.PtraceRegs) uint64       { return regs.Regs[2] }
func setArg2(regs *unix.PtraceRegs, v uint64) { regs.Regs[2] = v }
func retval(regs *unix.PtraceRegs) uint64     { return regs.Regs[0] }

// x0 doubles as first argument and return value, so registers alone cannot
// tell entry from exit on arm64.
func entryHint(regs *unix.PtraceRegs) (entry bool, known bool) {
	return false, false
}
