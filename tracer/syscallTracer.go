//
// Copyright 2019-2022 Nestybox, Inc.
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

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/nestybox/sysbox-scrub/domain"
	"github.com/nestybox/sysbox-scrub/splice"
	"github.com/nestybox/sysbox-scrub/syscalls"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// syscallPhase tracks whether the next syscall stop is an entry or an exit.
// Ptrace reports both with the same stop, so the phase is positional.
type syscallPhase int

const (
	phaseEntry syscallPhase = iota
	phaseExit
)

func (p syscallPhase) toggle() syscallPhase {
	if p == phaseEntry {
		return phaseExit
	}
	return phaseEntry
}

func (p syscallPhase) String() string {
	if p == phaseEntry {
		return "entry"
	}
	return "exit"
}

// syscallTracer holds the state of a single trace session.
type syscallTracer struct {
	tracee      domain.TraceeIface
	mem         domain.MemParserIface
	pattern     *splice.Pattern
	keepTracing bool
	maxBuffer   int
	phase       syscallPhase   // phase of the next syscall stop
	pendingSig  syscall.Signal // signal to deliver on the next resume
	log         *logrus.Entry
	report      *Report
}

func newSyscallTracer(
	sms *SyscallMonitorService,
	tracee domain.TraceeIface,
	mem domain.MemParserIface) *syscallTracer {

	session := newSessionID()

	return &syscallTracer{
		tracee:      tracee,
		mem:         mem,
		pattern:     sms.cfg.Pattern,
		keepTracing: sms.cfg.KeepTracing,
		maxBuffer:   sms.cfg.MaxBuffer,
		phase:       phaseEntry,
		log: logrus.WithFields(logrus.Fields{
			"session": session,
			"pid":     tracee.Pid(),
		}),
		report: &Report{
			Session: session,
			Pid:     tracee.Pid(),
		},
	}
}

// trace runs the stop loop. A nil return means the loop ended normally,
// report.Outcome says why.
func (t *syscallTracer) trace() error {

	t.log.Infof("Tracing %s for %s", t.tracee.Comm(), t.pattern)
	t.checkTracer()

	for {
		if err := t.tracee.Resume(t.pendingSig); err != nil {
			t.log.Warnf("End of trace with pattern not found: unable to resume tracee: %v", err)
			t.report.Outcome = OutcomeTraceEnded
			return nil
		}
		t.pendingSig = 0

		stop, err := t.tracee.Wait()
		if err != nil {
			t.log.Warnf("End of trace with pattern not found: wait failed: %v", err)
			t.report.Outcome = OutcomeTraceEnded
			return nil
		}

		switch stop.Kind {

		case domain.StopExited:
			t.log.Infof("Tracee exited with status %d", stop.ExitCode)
			t.report.Outcome = OutcomeTraceeExited
			return nil

		case domain.StopKilled:
			t.log.Infof("Tracee killed by signal %v", stop.Signal)
			t.report.Outcome = OutcomeTraceeExited
			return nil

		case domain.StopPtraceEvent:
			if stop.Event == unix.PTRACE_EVENT_EXEC {
				t.log.Debugf("Tracee exec'd %s", t.tracee.Comm())
			} else {
				t.log.Debugf("Ptrace event %d", stop.Event)
			}

		case domain.StopSignal:
			t.log.Debugf("Signal %v delivered to tracee", stop.Signal)
			t.pendingSig = stop.Signal

		case domain.StopSyscall:
			done, err := t.processSyscallStop()
			if err != nil {
				return err
			}
			if done {
				return nil
			}

		default:
			t.log.Warnf("Unexpected stop %v", stop.Kind)
		}
	}
}

// processSyscallStop handles one syscall stop and returns true once the
// session is over.
func (t *syscallTracer) processSyscallStop() (bool, error) {
	var regs unix.PtraceRegs

	if err := t.tracee.GetRegs(&regs); err != nil {
		t.log.Warnf("End of trace with pattern not found: unable to read registers: %v", err)
		t.report.Outcome = OutcomeTraceEnded
		return true, nil
	}

	t.report.Stops++

	phase := t.phase
	t.phase = t.phase.toggle()
	t.checkPhase(phase, &regs)

	if phase == phaseExit {
		t.log.Debugf("%s(...) = %d",
			syscalls.Name(syscalls.Sysno(&regs)), syscalls.Retval(&regs))
		return false, nil
	}

	return t.processSyscallEntry(&regs)
}

func (t *syscallTracer) processSyscallEntry(regs *unix.PtraceRegs) (bool, error) {

	w, err := syscalls.ParseWriteCall(t.mem, regs, t.maxBuffer)
	if errors.Is(err, syscalls.ErrBufferTooLarge) {
		t.log.Debugf("Skipping write: %v", err)
		t.report.Skipped++
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: unable to read write buffer: %v", ErrTraceDesync, err)
	}
	if w == nil {
		t.log.Debugf("%s(...)", syscalls.Name(syscalls.Sysno(regs)))
		return false, nil
	}

	t.report.WriteCalls++
	t.log.Infof("write(%d, %s, %d)", w.Fd, shortString(w.Contents()), w.Length)

	n := w.Scrub(t.pattern)
	if n == 0 {
		return false, nil
	}

	if err := w.WriteOut(t.mem, t.tracee); err != nil {
		return false, fmt.Errorf("%w: %v", ErrTraceDesync, err)
	}

	t.report.Scrubs++
	t.report.BytesRemoved += w.Removed()

	t.log.Infof("Bingo: scrubbed %d occurrence(s) of %s, write(%d, %s, %d)",
		n, t.pattern, w.Fd, shortString(w.Contents()), len(w.Contents()))

	if t.keepTracing {
		return false, nil
	}

	t.report.Outcome = OutcomeScrubbed
	return true, nil
}

// checkPhase compares the positional phase against what the registers say,
// where the architecture can tell. Mismatches are only reported.
func (t *syscallTracer) checkPhase(phase syscallPhase, regs *unix.PtraceRegs) {
	entry, known := syscalls.EntryHint(regs)
	if !known || entry == (phase == phaseEntry) {
		return
	}

	t.report.PhaseMismatch++
	if t.report.PhaseMismatch == 1 {
		t.log.Warnf("Syscall %s stop looks like %v, expected %v",
			syscalls.Name(syscalls.Sysno(regs)), phase.toggle(), phase)
	}
}

// checkTracer verifies that the kernel reports the calling thread as the
// tracer. Subsequent ptrace requests fail with ESRCH otherwise.
func (t *syscallTracer) checkTracer() {
	tracer, err := t.tracee.TracerPid()
	if err != nil {
		t.log.Debugf("Unable to read tracer of tracee: %v", err)
		return
	}

	if tid := unix.Gettid(); tracer != tid {
		t.log.Warnf("Tracee reports tracer %d, expected %d", tracer, tid)
	}
}

// release lets the tracee go and waits for it to finish.
func (t *syscallTracer) release() {

	if t.tracee.Alive() {
		if err := t.tracee.Detach(); err != nil {
			t.log.Warnf("Unable to detach from tracee: %v", err)
		}
	}

	code, err := t.tracee.WaitExit()
	if err != nil {
		t.log.Errorf("Unable to collect tracee exit status: %v", err)
		code = 1
	}
	t.report.ExitCode = code
}
