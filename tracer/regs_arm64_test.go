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

package tracer

import "golang.org/x/sys/unix"

func entryRegs(nr, a0, a1, a2 uint64) unix.PtraceRegs {
	var regs unix.PtraceRegs
	regs.Regs[8] = nr
	regs.Regs[0] = a0
	regs.Regs[1] = a1
	regs.Regs[2] = a2
	return regs
}

func exitRegs(nr, a0, a1, a2, ret uint64) unix.PtraceRegs {
	regs := entryRegs(nr, a0, a1, a2)
	regs.Regs[0] = ret
	return regs
}

func countArg(regs *unix.PtraceRegs) uint64 { return regs.Regs[2] }
