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

//go:build starlet && arm
// +build starlet,arm

package hollywood

import (
	"sync/atomic"
	"unsafe"
)

// defined in cache_starlet.s
func invalidateDCacheRange(addr uint32, n uint32)
func flushDCacheRange(addr uint32, n uint32)
func drainWriteBuffer()

// MMIO is the Hardware implementation backed by the real chipset.
type MMIO struct {
	// RAM lists the regions View may hand out.
	RAM []Region
}

// NewMMIO returns a Hardware which accesses MEM1 and MEM2 directly.
func NewMMIO() *MMIO {
	return &MMIO{RAM: []Region{MEM1, MEM2}}
}

// Read32 implements Bus.
func (*MMIO) Read32(addr uint32) uint32 {
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(uintptr(addr))))
}

// Write32 implements Bus.
func (*MMIO) Write32(addr uint32, val uint32) {
	atomic.StoreUint32((*uint32)(unsafe.Pointer(uintptr(addr))), val)
}

// Invalidate implements Cache.
func (*MMIO) Invalidate(addr uint32, n uint32) {
	if n == 0 {
		return
	}
	invalidateDCacheRange(addr, n)
}

// Flush implements Cache.
func (*MMIO) Flush(addr uint32, n uint32) {
	if n == 0 {
		return
	}
	flushDCacheRange(addr, n)
	drainWriteBuffer()
}

// View implements Memory.
func (m *MMIO) View(addr uint32, n uint32) ([]byte, error) {
	if _, err := CheckRange(m.RAM, addr, n); err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), n), nil
}
