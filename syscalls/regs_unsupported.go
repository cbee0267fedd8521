//go:build linux && !amd64 && !arm64

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

const archSupported = false

func sysno(regs *unix.PtraceRegs) uint64                       { return ^uint64(0) }
func arg0(regs *unix.PtraceRegs) uint64                        { return 0 }
func arg1(regs *unix.PtraceRegs) uint64                        { return 0 }
func arg2(regs *unix.PtraceRegs) uint64                        { return 0 }
func setArg2(regs *unix.PtraceRegs, v uint64)                  {}
func retval(regs *unix.PtraceRegs) uint64                      { return 0 }
func entryHint(regs *unix.PtraceRegs) (entry bool, known bool) { return false, false }
