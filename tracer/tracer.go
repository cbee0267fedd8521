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
	"runtime"

	"github.com/google/uuid"
	"github.com/nestybox/sysbox-scrub/domain"
	"github.com/nestybox/sysbox-scrub/splice"
	"github.com/sirupsen/logrus"
)

var (
	// ErrSpawn is returned when the tracee can't be started or attached to.
	ErrSpawn = errors.New("failed to spawn tracee")

	// ErrTraceDesync is returned when the tracee's memory or registers can't
	// be updated after a confirmed syscall stop. Past that point the tracee
	// state no longer matches what the tracer believes it to be.
	ErrTraceDesync = errors.New("tracee state update failed")
)

// Outcome describes why a trace session ended.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeScrubbed
	OutcomeTraceeExited
	OutcomeTraceEnded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeScrubbed:
		return "scrubbed"
	case OutcomeTraceeExited:
		return "tracee-exited"
	case OutcomeTraceEnded:
		return "trace-ended"
	}
	return "unknown"
}

// Config holds the knobs of a trace session.
type Config struct {
	Pattern     *splice.Pattern // defaults to splice.DefaultPattern()
	KeepTracing bool            // keep scrubbing after the first hit
	MaxBuffer   int             // largest write buffer inspected (0: no limit)
}

// Report summarizes a trace session.
type Report struct {
	Session       string
	Pid           int
	Outcome       Outcome
	Stops         int // syscall stops observed
	WriteCalls    int // write calls inspected
	Skipped       int // write calls above the inspection limit
	Scrubs        int // write calls rewritten
	BytesRemoved  int
	PhaseMismatch int // stops where the entry hint disagreed with the phase
	ExitCode      int
}

// SyscallMonitorService spawns a program under ptrace and scrubs the
// configured pattern out of the buffers it hands to write(2).
type SyscallMonitorService struct {
	prs domain.ProcessServiceIface // for tracee creation
	mms domain.MemServiceIface     // for tracee memory access
	cfg Config
}

func NewSyscallMonitorService() *SyscallMonitorService {
	return &SyscallMonitorService{}
}

func (sms *SyscallMonitorService) Setup(
	prs domain.ProcessServiceIface,
	mms domain.MemServiceIface,
	cfg Config) {

	sms.prs = prs
	sms.mms = mms
	sms.cfg = cfg

	if sms.cfg.Pattern == nil {
		sms.cfg.Pattern = splice.DefaultPattern()
	}
}

// Run launches path with args as a traced child and supervises it until the
// pattern is scrubbed (or, with KeepTracing, until the child is gone). The
// child is then released and waited for. A non-nil error wrapping
// ErrTraceDesync leaves the child attached; callers are expected to exit,
// which kills it.
func (sms *SyscallMonitorService) Run(path string, args []string) (*Report, error) {

	// All ptrace requests must be issued from the thread that attached.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	tracee, err := sms.prs.ProcessCreate(path, args)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	mem, err := sms.mms.MemParserCreate(tracee)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}
	defer mem.Close()

	t := newSyscallTracer(sms, tracee, mem)

	if err := t.trace(); err != nil {
		t.log.Errorf("Trace aborted: %v", err)
		return t.report, err
	}

	t.release()

	if t.report.Scrubs == 0 {
		t.log.Infof("Pattern %s not found in %d write call(s)",
			t.pattern, t.report.WriteCalls)
	}

	t.log.WithFields(logrus.Fields{
		"outcome":  t.report.Outcome,
		"stops":    t.report.Stops,
		"writes":   t.report.WriteCalls,
		"scrubs":   t.report.Scrubs,
		"removed":  t.report.BytesRemoved,
		"exitCode": t.report.ExitCode,
	}).Info("Trace session done")

	return t.report, nil
}

// shortString quotes buf for logging, eliding the middle of long buffers.
func shortString(buf []byte) string {
	s := fmt.Sprintf("%q", buf)
	if len(s) > 40 {
		s = s[0:18] + `"..."` + s[len(s)-19:]
	}
	return s
}

// LogFormatter returns the formatter trace sessions are logged with.
func LogFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		ForceColors:     true,
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	}
}

func newSessionID() string {
	return uuid.New().String()
}
