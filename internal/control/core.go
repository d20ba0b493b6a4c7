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

// Package control holds the Starlet's permanent service loop: it services
// commands posted by the Broadway and, whenever the mailbox is idle, runs a
// framebuffer conversion pass.
//
// The loop is a single threaded busy poll. The only concurrency is with the
// Broadway, which may post to the mailbox at any time, and ordering with it
// relies on the mailbox protocol alone.
package control

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
	"github.com/google/starlet-mini/internal/framebuffer"
	"github.com/google/starlet-mini/internal/hollywood"
	"github.com/google/starlet-mini/internal/ipc"
)

// Stats counts loop activity. The counters may be read from other
// goroutines while the loop runs.
type Stats struct {
	Iterations  atomic.Uint64
	Commands    atomic.Uint64
	Conversions atomic.Uint64
}

// Core is the state of the service loop. There is one per boot, created
// after the boot sequencer decides to stay resident.
type Core struct {
	hw      hollywood.Hardware
	mailbox *ipc.Mailbox
	// mu guards fb against readers outside the loop.
	mu sync.Mutex
	fb *framebuffer.Service

	Stats Stats
}

// New creates the service loop state on top of the given hardware.
func New(hw hollywood.Hardware) *Core {
	return &Core{
		hw:      hw,
		mailbox: ipc.NewMailbox(hw),
		fb:      framebuffer.NewService(hw),
	}
}

// Framebuffer returns the current conversion service configuration.
func (c *Core) Framebuffer() framebuffer.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fb.State()
}

// PollIPC services at most one pending message: it reads and decodes the
// message, applies it, and then acknowledges it. It returns false if nothing
// was pending.
func (c *Core) PollIPC() (ipc.Command, bool) {
	msg, ok := c.mailbox.Poll()
	if !ok {
		return ipc.Command{}, false
	}
	cmd := ipc.Decode(msg.Word)
	c.Dispatch(cmd)
	c.mailbox.Ack(msg)
	c.Stats.Commands.Add(1)
	return cmd, true
}

// Dispatch applies the side effects of cmd.
func (c *Core) Dispatch(cmd ipc.Command) {
	glog.V(1).Infof("ipc: %v", cmd)
	switch cmd.Kind {
	case ipc.PowerOff:
		glog.Info("Powering off...")
		hollywood.SetBit(c.hw, hollywood.GPIO1Out, hollywood.GPIO1ShutdownBit)
	case ipc.Reboot:
		glog.Info("Rebooting...")
		hollywood.ClearBit(c.hw, hollywood.Resets, hollywood.ResetsSysBit)
	case ipc.StartFramebuffer:
		c.withFB(c.fb.Start)
	case ipc.StopFramebuffer:
		c.withFB(c.fb.Stop)
	case ipc.SetDestAddress:
		c.withFB(func() { c.fb.SetDest(cmd.Addr) })
	case ipc.SetSourceAddress:
		c.withFB(func() { c.fb.SetSource(cmd.Addr) })
	default:
		glog.V(1).Infof("ipc: ignoring 0x%08x", cmd.Raw)
	}
}

func (c *Core) withFB(f func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f()
}

// TickFramebuffer runs one conversion pass if the service is enabled.
func (c *Core) TickFramebuffer() bool {
	c.mu.Lock()
	ok := c.fb.Tick()
	c.mu.Unlock()
	if !ok {
		return false
	}
	c.Stats.Conversions.Add(1)
	return true
}

// Step runs one iteration of the loop. Command handling and conversion are
// mutually exclusive within an iteration.
func (c *Core) Step() {
	c.Stats.Iterations.Add(1)
	if _, ok := c.PollIPC(); ok {
		return
	}
	c.TickFramebuffer()
}

// Run steps the loop without ever blocking. On hardware ctx is never
// cancelled and Run only stops when a power off or reset command takes
// effect.
func (c *Core) Run(ctx context.Context) error {
	glog.Info("Entering IPC loop")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		c.Step()
	}
}
