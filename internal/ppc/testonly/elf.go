// Copyright 2026 Google LLC. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package testonly builds ELF images for loader tests.
package testonly

import (
	"bytes"
	"encoding/binary"
)

// Segment is a PT_LOAD program header and its file contents. A zero Memsz
// means len(Data).
type Segment struct {
	Paddr uint32
	Data  []byte
	Memsz uint32
}

// Opts overrides header fields of a test image. Zero values give a 32-bit
// big endian PowerPC executable.
type Opts struct {
	Class   byte
	Data    byte
	Machine uint16
}

// BuildELF assembles a minimal ELF32 executable with the given segments.
func BuildELF(entry uint32, segs []Segment, o Opts) []byte {
	if o.Class == 0 {
		o.Class = 1 // ELFCLASS32
	}
	if o.Data == 0 {
		o.Data = 2 // ELFDATA2MSB
	}
	if o.Machine == 0 {
		o.Machine = 20 // EM_PPC
	}
	var bo binary.ByteOrder = binary.BigEndian
	if o.Data == 1 {
		bo = binary.LittleEndian
	}

	const ehsize, phentsize = 52, 32
	phoff := uint32(ehsize)
	dataOff := phoff + uint32(len(segs))*phentsize

	var b bytes.Buffer
	b.Write([]byte{0x7f, 'E', 'L', 'F', o.Class, o.Data, 1, 0})
	b.Write(make([]byte, 8))
	put16 := func(v uint16) { _ = binary.Write(&b, bo, v) }
	put32 := func(v uint32) { _ = binary.Write(&b, bo, v) }
	put16(2) // ET_EXEC
	put16(o.Machine)
	put32(1)
	put32(entry)
	put32(phoff)
	put32(0) // shoff
	put32(0) // flags
	put16(ehsize)
	put16(phentsize)
	put16(uint16(len(segs)))
	put16(40) // shentsize
	put16(0)  // shnum
	put16(0)  // shstrndx

	off := dataOff
	for _, s := range segs {
		memsz := s.Memsz
		if memsz == 0 {
			memsz = uint32(len(s.Data))
		}
		put32(1) // PT_LOAD
		put32(off)
		put32(s.Paddr)
		put32(s.Paddr)
		put32(uint32(len(s.Data)))
		put32(memsz)
		put32(7)
		put32(4)
		off += uint32(len(s.Data))
	}
	for _, s := range segs {
		b.Write(s.Data)
	}
	return b.Bytes()
}

