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

// Package irq drives the Starlet side of the Hollywood interrupt controller.
//
// Interrupts are only used during bring-up: the timer bounds how long boot
// stages can wedge without anyone noticing, and the reset line is reported.
// The lines are serviced by the vendor exception vector installed by the
// exceptions stage, which acknowledges them and re-arms the alarm. This
// package only configures the controller, and shuts it down before the
// service loop starts.
package irq

import (
	"github.com/golang/glog"
	"github.com/google/starlet-mini/internal/hollywood"
)

// Interrupt lines.
const (
	Timer   = 0
	NAND    = 1
	AES     = 2
	SHA1    = 3
	GPIO1B  = 10
	GPIO1   = 11
	Reset   = 17
	PPCIPC  = 30
	IPC     = 31
)

// TicksPerMs is the rate of the Hollywood timer.
const TicksPerMs = 1898

// AlarmPeriodMs is the timer period used while booting.
const AlarmPeriodMs = 20

// Controller is the ARM interrupt controller.
type Controller struct {
	bus hollywood.Bus
}

// New returns a Controller using the given register bus.
func New(bus hollywood.Bus) *Controller {
	return &Controller{bus: bus}
}

// Initialize masks and acknowledges every line and stops the alarm.
func (c *Controller) Initialize() {
	c.bus.Write32(hollywood.Alarm, 0)
	c.bus.Write32(hollywood.ARMIRQMask, 0)
	c.bus.Write32(hollywood.ARMIRQFlag, 0xffffffff)
}

// Setup initializes the controller, unmasks the lines used while booting and
// arms the first alarm.
func (c *Controller) Setup() error {
	c.Initialize()
	c.Enable(GPIO1)
	c.Enable(Reset)
	c.Enable(Timer)
	c.SetAlarm(AlarmPeriodMs)
	glog.Info("Interrupts initialized")
	return nil
}

// Enable unmasks interrupt line n.
func (c *Controller) Enable(n int) {
	hollywood.SetBit(c.bus, hollywood.ARMIRQMask, n)
}

// Disable masks interrupt line n.
func (c *Controller) Disable(n int) {
	hollywood.ClearBit(c.bus, hollywood.ARMIRQMask, n)
}

// SetAlarm schedules the next timer interrupt ms milliseconds from now.
func (c *Controller) SetAlarm(ms uint32) {
	c.bus.Write32(hollywood.Alarm, c.bus.Read32(hollywood.Timer)+ms*TicksPerMs)
}

// Shutdown masks and acknowledges every line.
func (c *Controller) Shutdown() {
	c.bus.Write32(hollywood.ARMIRQMask, 0)
	c.bus.Write32(hollywood.ARMIRQFlag, 0xffffffff)
}
