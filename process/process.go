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

package process

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"github.com/nestybox/sysbox-scrub/domain"
	"github.com/spf13/afero"

	"golang.org/x/sys/unix"
)

var AppFs = afero.NewOsFs()

// Options set on the tracee right after its initial stop. TRACESYSGOOD marks
// syscall stops with bit 0x80 in the stop signal; EXITKILL takes the tracee
// down if the tracer dies before detaching.
const traceOptions = unix.PTRACE_O_TRACESYSGOOD |
	unix.PTRACE_O_TRACEEXEC |
	unix.PTRACE_O_EXITKILL

const traceSysGoodStatusBit = 0x80

type processService struct {
	stdin  *os.File
	stdout *os.File
	stderr *os.File
}

func NewProcessService() domain.ProcessServiceIface {
	return NewProcessServiceWithStdio(os.Stdin, os.Stdout, os.Stderr)
}

// NewProcessServiceWithStdio creates a service whose children inherit the
// given files as stdin, stdout and stderr.
func NewProcessServiceWithStdio(stdin, stdout, stderr *os.File) domain.ProcessServiceIface {
	return &processService{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}
}

// ProcessCreate spawns the given program with PTRACE_TRACEME requested before
// execve(), waits for the post-exec stop and configures the trace options.
// The caller's OS thread becomes the tracer; it must stay locked for as long
// as the tracee is attached.
func (ps *processService) ProcessCreate(path string, args []string) (domain.TraceeIface, error) {

	cmd := exec.Command(path, args...)
	cmd.Stdin = ps.stdin
	cmd.Stdout = ps.stdout
	cmd.Stderr = ps.stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Ptrace: true,
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", path, err)
	}

	p := &process{
		pid: cmd.Process.Pid,
		cmd: cmd,
	}

	stop, err := p.Wait()
	if err != nil {
		p.kill()
		return nil, fmt.Errorf("failed to wait for initial stop of pid %d: %w", p.pid, err)
	}
	if stop.Kind != domain.StopSignal || stop.Signal != unix.SIGTRAP {
		p.kill()
		return nil, fmt.Errorf("unexpected initial state of pid %d: %v (signal %v)",
			p.pid, stop.Kind, stop.Signal)
	}

	if err := unix.PtraceSetOptions(p.pid, traceOptions); err != nil {
		p.kill()
		return nil, fmt.Errorf("failed to set ptrace options on pid %d: %w", p.pid, err)
	}

	return p, nil
}

type process struct {
	pid      int               // process id
	cmd      *exec.Cmd         // spawning handle
	exited   bool              // exit status already collected
	exitCode int               // exit code, 128+signo if killed
	comm     string            // cached command name
	status   map[string]string // process status fields
}

func (p *process) Pid() int {
	return p.pid
}

func (p *process) Alive() bool {
	return !p.exited
}

// Comm returns the command name of the tracee. The value is cached until the
// tracee execs a new image.
func (p *process) Comm() string {

	if p.comm == "" {
		if err := p.getStatus([]string{"Name"}); err == nil {
			p.comm = strings.TrimSpace(p.status["Name"])
		}
	}

	return p.comm
}

func (p *process) GetRegs(regs *unix.PtraceRegs) error {
	return unix.PtraceGetRegs(p.pid, regs)
}

func (p *process) SetRegs(regs *unix.PtraceRegs) error {
	return unix.PtraceSetRegs(p.pid, regs)
}

func (p *process) PeekWord(addr uintptr, word []byte) error {

	n, err := unix.PtracePeekData(p.pid, addr, word)
	if err != nil {
		return err
	}
	if n != len(word) {
		return fmt.Errorf("short peek at 0x%x: %d of %d bytes", addr, n, len(word))
	}

	return nil
}

func (p *process) PokeWord(addr uintptr, word []byte) error {

	n, err := unix.PtracePokeData(p.pid, addr, word)
	if err != nil {
		return err
	}
	if n != len(word) {
		return fmt.Errorf("short poke at 0x%x: %d of %d bytes", addr, n, len(word))
	}

	return nil
}

// Resume restarts the tracee until the next syscall entry or exit, delivering
// sig (0 for none).
func (p *process) Resume(sig syscall.Signal) error {
	return unix.PtraceSyscall(p.pid, int(sig))
}

// Wait blocks until the tracee changes state.
func (p *process) Wait() (domain.TraceStop, error) {

	var ws unix.WaitStatus

	for {
		_, err := unix.Wait4(p.pid, &ws, 0, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return domain.TraceStop{}, err
		}
		break
	}

	stop := classifyWaitStatus(ws)

	switch stop.Kind {
	case domain.StopExited:
		p.setExited(stop.ExitCode)
	case domain.StopKilled:
		p.setExited(128 + int(stop.Signal))
	case domain.StopPtraceEvent:
		if stop.Event == unix.PTRACE_EVENT_EXEC {
			p.comm = ""
		}
	}

	return stop, nil
}

func (p *process) Detach() error {
	return unix.PtraceDetach(p.pid)
}

// WaitExit reaps the process and returns its exit code. Any ptrace-stop still
// reported (the tracee is expected to be detached by now) is resumed.
func (p *process) WaitExit() (int, error) {

	for !p.exited {
		stop, err := p.Wait()
		if err != nil {
			return -1, err
		}
		if p.exited {
			break
		}
		sig := 0
		if stop.Kind == domain.StopSignal {
			sig = int(stop.Signal)
		}
		if err := unix.PtraceCont(p.pid, sig); err != nil {
			return -1, err
		}
	}

	return p.exitCode, nil
}

func (p *process) setExited(code int) {
	if p.exited {
		return
	}
	p.exited = true
	p.exitCode = code

	// Status was collected through wait4() directly; only release the handle.
	if p.cmd != nil && p.cmd.Process != nil {
		p.cmd.Process.Release()
	}
}

func (p *process) kill() {
	if p.exited {
		return
	}
	unix.Kill(p.pid, unix.SIGKILL)
	p.WaitExit()
}

// TracerPid returns the id of the thread tracing the process, as found in
// its status file.
func (p *process) TracerPid() (int, error) {

	if err := p.getStatus([]string{"TracerPid"}); err != nil {
		return 0, err
	}

	return strconv.Atoi(strings.TrimSpace(p.status["TracerPid"]))
}

// getStatus retrieves process status info obtained from the
// /proc/[pid]/status file.
func (p *process) getStatus(fields []string) error {

	filename := fmt.Sprintf("/proc/%d/status", p.pid)
	f, err := AppFs.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	s := bufio.NewScanner(f)

	status := make(map[string]string)
	for s.Scan() {
		text := s.Text()
		parts := strings.SplitN(text, ":", 2)

		if len(parts) < 1 {
			continue
		}

		for _, f := range fields {
			if parts[0] == f {
				if len(parts) > 1 {
					status[f] = parts[1]
				} else {
					status[f] = ""
				}
			}
		}
	}

	if err := s.Err(); err != nil {
		return err
	}

	p.status = status

	return nil
}

// classifyWaitStatus decodes a wait4() status reported for a tracee.
func classifyWaitStatus(ws unix.WaitStatus) domain.TraceStop {

	switch {
	case ws.Exited():
		return domain.TraceStop{Kind: domain.StopExited, ExitCode: ws.ExitStatus()}

	case ws.Signaled():
		return domain.TraceStop{Kind: domain.StopKilled, Signal: ws.Signal()}

	case ws.Stopped():
		sig := ws.StopSignal()
		switch {
		case sig == unix.SIGTRAP|traceSysGoodStatusBit:
			return domain.TraceStop{Kind: domain.StopSyscall}
		case sig == unix.SIGTRAP && ws.TrapCause() > 0:
			return domain.TraceStop{Kind: domain.StopPtraceEvent, Event: ws.TrapCause()}
		default:
			return domain.TraceStop{Kind: domain.StopSignal, Signal: sig}
		}
	}

	return domain.TraceStop{Kind: domain.StopUnknown}
}
