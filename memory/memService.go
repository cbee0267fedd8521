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

	"github.com/nestybox/sysbox-scrub/domain"
)

// Supported word transports.
const (
	BackendPtrace = "ptrace"
	BackendProcfs = "procfs"
)

type memService struct {
	backend string
}

func NewMemService(backend string) (domain.MemServiceIface, error) {

	switch backend {
	case BackendPtrace, BackendProcfs:
	case "":
		backend = BackendPtrace
	default:
		return nil, fmt.Errorf("unknown memory backend %q", backend)
	}

	return &memService{backend: backend}, nil
}

// MemParserCreate elects the word transport for the given tracee.
func (ms *memService) MemParserCreate(t domain.TraceeIface) (domain.MemParserIface, error) {

	if ms.backend == BackendProcfs {
		wio, err := newProcfsWordIO(t.Pid())
		if err != nil {
			return nil, err
		}
		return &memParser{wio: wio, closer: wio.Close}, nil
	}

	return &memParser{wio: t}, nil
}
