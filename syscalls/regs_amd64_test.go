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

func newRegs(nr, a0, a1, a2 uint64) unix.PtraceRegs {
	return unix.PtraceRegs{Orig_rax: nr, Rdi: a0, Rsi: a1, Rdx: a2, Rax: ^uint64(unix.ENOSYS) + 1}
}
