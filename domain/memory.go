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

package domain

// MemParserIface reads and writes arbitrary byte ranges of the tracee's
// address space on top of a word-granular transport.
type MemParserIface interface {
	Read(addr uintptr, length int) ([]byte, error)
	Write(addr uintptr, data []byte) error
	Close() error
}

type MemServiceIface interface {
	MemParserCreate(t TraceeIface) (MemParserIface, error)
}
