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

// Package ppc loads an ELF image into RAM and starts the Broadway on it.
package ppc

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/google/starlet-mini/internal/hollywood"
	"github.com/google/starlet-mini/internal/storage"
	"golang.org/x/mod/sumdb/note"
)

// SignatureSuffix is appended to an image path to find its signature note.
const SignatureSuffix = ".sig"

// StubAddr is where the Broadway starts executing when released from reset.
const StubAddr = 0x100

// Reset line bits in hollywood.Resets.
const (
	resetHard = 1 << hollywood.ResetsPPCHardBit
	resetSoft = 1 << hollywood.ResetsPPCSoftBit
)

// ErrBadSignature is returned when an image does not match its signature.
var ErrBadSignature = errors.New("image signature does not verify")

// Loader boots the Broadway from files on storage.
type Loader struct {
	hw       hollywood.Hardware
	fs       storage.FS
	verifier note.Verifier
	sleep    func(time.Duration)
}

// NewLoader returns a Loader which reads images from fs. If v is not nil,
// every image must come with a signature note verifiable by v. The sleep
// function is used for reset line timing; nil means time.Sleep.
func NewLoader(hw hollywood.Hardware, fs storage.FS, v note.Verifier, sleep func(time.Duration)) *Loader {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Loader{hw: hw, fs: fs, verifier: v, sleep: sleep}
}

// Boot loads the ELF image at path and releases the Broadway to run it.
func (l *Loader) Boot(path string) error {
	img, err := l.fs.ReadAll(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if l.verifier != nil {
		sig, err := l.fs.ReadAll(path + SignatureSuffix)
		if err != nil {
			return fmt.Errorf("failed to read signature: %w", err)
		}
		if err := VerifyImage(img, sig, l.verifier); err != nil {
			return err
		}
	} else {
		glog.Warning("No image public key, skipping signature verification")
	}

	// Keep the Broadway in reset while its memory is rewritten.
	hollywood.Clear32(l.hw, hollywood.Resets, resetHard|resetSoft)

	entry, err := LoadELF(l.hw, img)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	if err := WriteStub(l.hw, entry); err != nil {
		return err
	}
	glog.Infof("Starting PPC at 0x%08x", entry)
	l.Reset()
	return nil
}

// Reset cycles the Broadway's reset lines.
func (l *Loader) Reset() {
	hollywood.Clear32(l.hw, hollywood.Resets, resetHard|resetSoft)
	l.sleep(100 * time.Microsecond)
	hollywood.Set32(l.hw, hollywood.Resets, resetSoft)
	l.sleep(100 * time.Microsecond)
	hollywood.Set32(l.hw, hollywood.Resets, resetHard)
	l.sleep(100 * time.Millisecond)
}

// LoadELF copies the loadable segments of a 32-bit big endian PowerPC ELF
// image into memory and returns its entry point.
func LoadELF(hw hollywood.Hardware, img []byte) (uint32, error) {
	f, err := elf.NewFile(bytes.NewReader(img))
	if err != nil {
		return 0, err
	}
	if f.Class != elf.ELFCLASS32 {
		return 0, fmt.Errorf("unsupported class %v", f.Class)
	}
	if f.Data != elf.ELFDATA2MSB {
		return 0, fmt.Errorf("unsupported byte order %v", f.Data)
	}
	if f.Machine != elf.EM_PPC {
		return 0, fmt.Errorf("unsupported machine %v", f.Machine)
	}

	loaded := 0
	for idx, prg := range f.Progs {
		if prg.Type != elf.PT_LOAD || prg.Memsz == 0 {
			continue
		}
		if prg.Filesz > prg.Memsz {
			return 0, fmt.Errorf("LOAD segment %d has filesz 0x%x > memsz 0x%x", idx, prg.Filesz, prg.Memsz)
		}
		if prg.Paddr+prg.Memsz > 1<<32 {
			return 0, fmt.Errorf("LOAD segment %d at 0x%x+0x%x does not fit 32 bits", idx, prg.Paddr, prg.Memsz)
		}
		addr, size := uint32(prg.Paddr), uint32(prg.Memsz)

		b, err := hw.View(addr, size)
		if err != nil {
			return 0, fmt.Errorf("LOAD segment %d: %w", idx, err)
		}
		if _, err := prg.ReadAt(b[:prg.Filesz], 0); err != nil {
			return 0, fmt.Errorf("failed to read LOAD segment %d: %w", idx, err)
		}
		clear(b[prg.Filesz:])
		hw.Flush(addr, size)

		glog.V(1).Infof("Loaded segment %d at 0x%08x (0x%x bytes)", idx, addr, size)
		loaded++
	}
	if loaded == 0 {
		return 0, errors.New("no LOAD segments")
	}
	return uint32(f.Entry), nil
}

// Stub returns the instructions placed at StubAddr: load the entry point into
// SRR0, clear SRR1 and rfi to it.
func Stub(entry uint32) []uint32 {
	return []uint32{
		0x3c600000 | entry>>16,    // lis r3, entry@h
		0x60630000 | entry&0xffff, // ori r3, r3, entry@l
		0x7c7a03a6,                // mtsrr0 r3
		0x38800000,                // li r4, 0
		0x7c9b03a6,                // mtsrr1 r4
		0x4c000064,                // rfi
	}
}

// WriteStub writes the entry stub for entry and flushes it to memory.
func WriteStub(hw hollywood.Hardware, entry uint32) error {
	s := Stub(entry)
	n := uint32(4 * len(s))
	b, err := hw.View(StubAddr, n)
	if err != nil {
		return fmt.Errorf("entry stub: %w", err)
	}
	for i, w := range s {
		binary.BigEndian.PutUint32(b[4*i:], w)
	}
	hw.Flush(StubAddr, n)
	return nil
}
