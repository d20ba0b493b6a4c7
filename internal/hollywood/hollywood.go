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

// Package hollywood describes the Hollywood chipset as seen from the Starlet
// ARM core: the register map, and the small set of seams (register bus, data
// cache maintenance and bounded memory views) through which the rest of the
// kernel touches hardware.
//
// Nothing outside this package (and its build-tagged MMIO binding) is allowed
// to dereference a physical address directly.
package hollywood

import (
	"errors"
	"fmt"

	"github.com/usbarmory/tamago/bits"
)

// Bus gives 32-bit access to memory-mapped control registers.
type Bus interface {
	Read32(addr uint32) uint32
	Write32(addr uint32, val uint32)
}

// Cache performs data cache maintenance over physical address ranges.
type Cache interface {
	// Invalidate discards cached lines covering [addr, addr+n) so that
	// subsequent reads observe what other bus masters wrote to memory.
	Invalidate(addr uint32, n uint32)
	// Flush writes back dirty lines covering [addr, addr+n) so that other
	// bus masters observe what this core wrote.
	Flush(addr uint32, n uint32)
}

// Memory resolves physical address ranges into bounded byte views.
type Memory interface {
	// View returns a slice of exactly n bytes backed by physical memory at
	// addr, or an error if the range is not valid RAM.
	View(addr uint32, n uint32) ([]byte, error)
}

// Hardware is everything the control core needs from the chipset.
type Hardware interface {
	Bus
	Cache
	Memory
}

var (
	// ErrNullAddress is returned for views starting at physical address 0.
	ErrNullAddress = errors.New("null address")
	// ErrOutOfRange is returned for views that are not entirely backed by RAM.
	ErrOutOfRange = errors.New("address range not backed by RAM")
)

// Region is a contiguous range of physical RAM.
type Region struct {
	Start uint32
	Size  uint32
}

// Contains returns true if [addr, addr+n) lies entirely within the region.
func (r Region) Contains(addr, n uint32) bool {
	if addr < r.Start {
		return false
	}
	off := uint64(addr - r.Start)
	return off+uint64(n) <= uint64(r.Size)
}

// CheckRange validates a view request against the given RAM regions and
// returns the region which backs it.
func CheckRange(regions []Region, addr, n uint32) (Region, error) {
	if addr == 0 {
		return Region{}, ErrNullAddress
	}
	for _, r := range regions {
		if r.Contains(addr, n) {
			return r, nil
		}
	}
	return Region{}, fmt.Errorf("0x%08x+0x%x: %w", addr, n, ErrOutOfRange)
}

// Set32 sets the bits in mask in the register at addr.
func Set32(b Bus, addr, mask uint32) {
	b.Write32(addr, b.Read32(addr)|mask)
}

// Clear32 clears the bits in mask in the register at addr.
func Clear32(b Bus, addr, mask uint32) {
	b.Write32(addr, b.Read32(addr)&^mask)
}

// SetBit sets the single bit at pos in the register at addr.
func SetBit(b Bus, addr uint32, pos int) {
	v := b.Read32(addr)
	bits.Set(&v, pos)
	b.Write32(addr, v)
}

// ClearBit clears the single bit at pos in the register at addr.
func ClearBit(b Bus, addr uint32, pos int) {
	v := b.Read32(addr)
	bits.Clear(&v, pos)
	b.Write32(addr, v)
}

// BitSet reports whether the bit at pos is set in the register at addr.
func BitSet(b Bus, addr uint32, pos int) bool {
	v := b.Read32(addr)
	return bits.Get(&v, pos, 1) == 1
}
