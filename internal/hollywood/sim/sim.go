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

// Package sim provides an in-memory Hollywood for tests and the emulator.
//
// The Starlet's data cache is modelled as a separate copy of RAM: views
// handed out through Memory.View are backed by the cache copy, while the peer
// processor reads and writes the physical copy. Data only moves between the
// two on Invalidate (physical to cache) and Flush (cache to physical), so a
// missing cache maintenance call is observable from tests.
package sim

import (
	"fmt"
	"sync"

	"github.com/google/starlet-mini/internal/hollywood"
)

// HaltReason says why the simulated system stopped executing.
type HaltReason int

const (
	// Running means the system has not halted.
	Running HaltReason = iota
	// PoweredOff means the shutdown GPIO was asserted.
	PoweredOff
	// Reset means the system reset line was asserted.
	Reset
)

func (r HaltReason) String() string {
	switch r {
	case Running:
		return "running"
	case PoweredOff:
		return "powered off"
	case Reset:
		return "reset"
	}
	return fmt.Sprintf("HaltReason(%d)", int(r))
}

// OpKind is a kind of cache maintenance operation.
type OpKind int

const (
	Invalidate OpKind = iota
	Flush
)

// CacheOp records a cache maintenance call.
type CacheOp struct {
	Kind OpKind
	Addr uint32
	Len  uint32
}

// maxOps bounds the cache operation log.
const maxOps = 64

type bank struct {
	hollywood.Region
	phys  []byte
	cache []byte
}

// Hollywood is a simulated chipset. It is safe for concurrent use by the
// Starlet side (the Hollywood itself) and the peer side (Peer()).
type Hollywood struct {
	mu    sync.Mutex
	regs  map[uint32]uint32
	last  map[uint32]uint32
	banks []*bank
	ops   []CacheOp
	nOps  [2]int

	reason     HaltReason
	halted     chan struct{}
	ppcStarted chan struct{}
	started    bool
}

var _ hollywood.Hardware = &Hollywood{}

// New creates a simulated chipset with the given RAM regions. With no
// regions, MEM1 is simulated.
func New(regions ...hollywood.Region) *Hollywood {
	if len(regions) == 0 {
		regions = []hollywood.Region{hollywood.MEM1}
	}
	h := &Hollywood{
		regs:       make(map[uint32]uint32),
		last:       make(map[uint32]uint32),
		halted:     make(chan struct{}),
		ppcStarted: make(chan struct{}),
	}
	for _, r := range regions {
		h.banks = append(h.banks, &bank{
			Region: r,
			phys:   make([]byte, r.Size),
			cache:  make([]byte, r.Size),
		})
	}
	h.regs[hollywood.Resets] = 1 << hollywood.ResetsSysBit
	return h
}

// Read32 implements hollywood.Bus for the Starlet side.
func (h *Hollywood) Read32(addr uint32) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.regs[addr]
}

// Write32 implements hollywood.Bus for the Starlet side.
func (h *Hollywood) Write32(addr uint32, val uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last[addr] = val
	old := h.regs[addr]
	switch addr {
	case hollywood.IPCARMCtrl, hollywood.IPCPPCCtrl:
		h.regs[addr] = writeToClear(old, val)
	case hollywood.GPIO1Out:
		h.regs[addr] = val
		if rising(old, val, hollywood.GPIO1ShutdownBit) {
			h.halt(PoweredOff)
		}
	case hollywood.Resets:
		h.regs[addr] = val
		if falling(old, val, hollywood.ResetsSysBit) {
			h.halt(Reset)
		}
		if rising(old, val, hollywood.ResetsPPCHardBit) && !h.started {
			h.started = true
			close(h.ppcStarted)
		}
	case hollywood.ARMIRQFlag:
		// Write one to acknowledge.
		h.regs[addr] = old &^ val
	default:
		h.regs[addr] = val
	}
}

func writeToClear(old, val uint32) uint32 {
	const w1c = hollywood.IPCCtrlX1 | hollywood.IPCCtrlX2
	return (old & w1c &^ val) | (val &^ w1c)
}

func rising(old, val uint32, pos int) bool {
	return old&(1<<pos) == 0 && val&(1<<pos) != 0
}

func falling(old, val uint32, pos int) bool {
	return old&(1<<pos) != 0 && val&(1<<pos) == 0
}

// halt must be called with h.mu held.
func (h *Hollywood) halt(r HaltReason) {
	if h.reason != Running {
		return
	}
	h.reason = r
	close(h.halted)
}

// Halted is closed once the system powers off or resets.
func (h *Hollywood) Halted() <-chan struct{} {
	return h.halted
}

// HaltReason returns why the system halted, or Running.
func (h *Hollywood) HaltReason() HaltReason {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reason
}

// PPCStarted is closed once the Broadway is released from hard reset.
func (h *Hollywood) PPCStarted() <-chan struct{} {
	return h.ppcStarted
}

// SetReg sets a register without any write side effects.
func (h *Hollywood) SetReg(addr, val uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.regs[addr] = val
}

// Reg returns a register value without any read side effects.
func (h *Hollywood) Reg(addr uint32) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.regs[addr]
}

// LastWrite returns the last value the Starlet side wrote to addr.
func (h *Hollywood) LastWrite(addr uint32) (uint32, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.last[addr]
	return v, ok
}

func (h *Hollywood) bankFor(addr, n uint32) (*bank, uint32, error) {
	if addr == 0 {
		return nil, 0, hollywood.ErrNullAddress
	}
	for _, b := range h.banks {
		if b.Contains(addr, n) {
			return b, addr - b.Start, nil
		}
	}
	return nil, 0, fmt.Errorf("0x%08x+0x%x: %w", addr, n, hollywood.ErrOutOfRange)
}

// View implements hollywood.Memory. The returned slice is backed by the
// Starlet's cached copy of RAM.
func (h *Hollywood) View(addr uint32, n uint32) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	b, off, err := h.bankFor(addr, n)
	if err != nil {
		return nil, err
	}
	return b.cache[off : off+n : off+n], nil
}

// Invalidate implements hollywood.Cache.
func (h *Hollywood) Invalidate(addr uint32, n uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(Invalidate, addr, n)
	if b, off, err := h.bankFor(addr, n); err == nil {
		copy(b.cache[off:off+n], b.phys[off:off+n])
	}
}

// Flush implements hollywood.Cache.
func (h *Hollywood) Flush(addr uint32, n uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(Flush, addr, n)
	if b, off, err := h.bankFor(addr, n); err == nil {
		copy(b.phys[off:off+n], b.cache[off:off+n])
	}
}

func (h *Hollywood) record(k OpKind, addr, n uint32) {
	h.nOps[k]++
	h.ops = append(h.ops, CacheOp{Kind: k, Addr: addr, Len: n})
	if len(h.ops) > maxOps {
		h.ops = h.ops[len(h.ops)-maxOps:]
	}
}

// CacheOps returns the most recent cache maintenance calls, oldest first.
func (h *Hollywood) CacheOps() []CacheOp {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]CacheOp(nil), h.ops...)
}

// CacheOpCount returns how many operations of kind k have been performed.
func (h *Hollywood) CacheOpCount(k OpKind) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.nOps[k]
}

// Peer returns the Broadway's view of the chipset.
func (h *Hollywood) Peer() *Peer {
	return &Peer{h: h}
}

// Peer is the Broadway side of a simulated Hollywood. Its memory accesses
// bypass the Starlet's data cache.
type Peer struct {
	h *Hollywood
}

var _ hollywood.Bus = &Peer{}

// Read32 implements hollywood.Bus.
func (p *Peer) Read32(addr uint32) uint32 {
	return p.h.Reg(addr)
}

// Write32 implements hollywood.Bus. Setting X1 in the Broadway's control
// register raises X1 in the Starlet's.
func (p *Peer) Write32(addr uint32, val uint32) {
	h := p.h
	h.mu.Lock()
	defer h.mu.Unlock()
	if addr == hollywood.IPCPPCCtrl {
		if val&hollywood.IPCCtrlX1 != 0 {
			h.regs[hollywood.IPCARMCtrl] |= hollywood.IPCCtrlX1
		}
		h.regs[addr] = writeToClear(h.regs[addr], val&^hollywood.IPCCtrlX1)
		return
	}
	h.regs[addr] = val
}

// ReadMem copies physical memory at addr into b.
func (p *Peer) ReadMem(addr uint32, b []byte) error {
	h := p.h
	h.mu.Lock()
	defer h.mu.Unlock()
	bk, off, err := h.bankFor(addr, uint32(len(b)))
	if err != nil {
		return err
	}
	copy(b, bk.phys[off:])
	return nil
}

// WriteMem copies b into physical memory at addr.
func (p *Peer) WriteMem(addr uint32, b []byte) error {
	h := p.h
	h.mu.Lock()
	defer h.mu.Unlock()
	bk, off, err := h.bankFor(addr, uint32(len(b)))
	if err != nil {
		return err
	}
	copy(bk.phys[off:], b)
	return nil
}
