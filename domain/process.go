//
// Copyright 2019-2020 Nestybox, Inc.
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

package domain

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// StopKind classifies the state changes reported by wait4() for a tracee.
type StopKind int

const (
	StopUnknown     StopKind = iota
	StopExited               // tracee exited normally
	StopKilled               // tracee was terminated by a signal
	StopSyscall              // syscall-enter or syscall-exit stop (SIGTRAP|0x80)
	StopPtraceEvent          // PTRACE_EVENT_* stop (e.g. exec)
	StopSignal               // signal-delivery stop
)

func (k StopKind) String() string {
	switch k {
	case StopExited:
		return "exited"
	case StopKilled:
		return "killed"
	case StopSyscall:
		return "syscall-stop"
	case StopPtraceEvent:
		return "event-stop"
	case StopSignal:
		return "signal-stop"
	}

	return "unknown"
}

// TraceStop is the decoded result of a single wait on the tracee.
type TraceStop struct {
	Kind     StopKind
	Signal   syscall.Signal // StopKilled, StopSignal
	Event    int            // StopPtraceEvent
	ExitCode int            // StopExited
}

// WordIOIface exchanges exactly one machine word with the tracee's address
// space per call. The word slice must be WordSize bytes long.
type WordIOIface interface {
	PeekWord(addr uintptr, word []byte) error
	PokeWord(addr uintptr, word []byte) error
}

// RegsSetterIface applies a full register set to a stopped tracee.
type RegsSetterIface interface {
	SetRegs(regs *unix.PtraceRegs) error
}

// TraceeIface represents the single process being traced. All methods other
// than Pid/Comm/Alive require the tracee to be in a ptrace-stop.
type TraceeIface interface {
	WordIOIface
	RegsSetterIface

	Pid() int
	Comm() string
	TracerPid() (int, error) // tracer thread id reported by the kernel
	Alive() bool
	GetRegs(regs *unix.PtraceRegs) error
	Resume(sig syscall.Signal) error
	Wait() (TraceStop, error)
	Detach() error
	WaitExit() (int, error)
}

type ProcessServiceIface interface {
	ProcessCreate(path string, args []string) (TraceeIface, error)
}
