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

package memory

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// File hosts the word transport that goes through the tracee's /proc/pid/mem
// file instead of PTRACE_PEEKDATA/POKEDATA. The kernel only grants access to
// this file to the tracer, so the tracee must be attached and stopped.

var AppFs = afero.NewOsFs()

type procfsWordIO struct {
	name string
	f    afero.File
}

func newProcfsWordIO(pid int) (*procfsWordIO, error) {

	name := fmt.Sprintf("/proc/%d/mem", pid)
	f, err := AppFs.OpenFile(name, os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %s", name, err)
	}

	return &procfsWordIO{name: name, f: f}, nil
}

func (w *procfsWordIO) PeekWord(addr uintptr, word []byte) error {

	n, err := w.f.ReadAt(word[:WordSize], int64(addr))
	if err != nil {
		return fmt.Errorf("read of %s at offset 0x%x failed: %s", w.name, addr, err)
	}
	if n != WordSize {
		return fmt.Errorf("short read of %s at offset 0x%x: %d bytes", w.name, addr, n)
	}

	return nil
}

func (w *procfsWordIO) PokeWord(addr uintptr, word []byte) error {

	n, err := w.f.WriteAt(word[:WordSize], int64(addr))
	if err != nil {
		return fmt.Errorf("write of %s at offset 0x%x failed: %s", w.name, addr, err)
	}
	if n != WordSize {
		return fmt.Errorf("short write of %s at offset 0x%x: %d bytes", w.name, addr, n)
	}

	return nil
}

func (w *procfsWordIO) Close() error {
	return w.f.Close()
}
