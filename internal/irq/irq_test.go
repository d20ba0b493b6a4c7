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

package irq

import (
	"testing"

	"github.com/google/starlet-mini/internal/hollywood"
	"github.com/google/starlet-mini/internal/hollywood/sim"
)

func newSim() *sim.Hollywood {
	return sim.New(hollywood.Region{Start: 0, Size: 4096})
}

func TestInitialize(t *testing.T) {
	h := newSim()
	h.SetReg(hollywood.Alarm, 1234)
	h.SetReg(hollywood.ARMIRQMask, 0xffff)
	h.SetReg(hollywood.ARMIRQFlag, 1<<Timer|1<<Reset)

	New(h).Initialize()

	for _, r := range []struct {
		name string
		addr uint32
	}{
		{name: "alarm", addr: hollywood.Alarm},
		{name: "mask", addr: hollywood.ARMIRQMask},
		{name: "flag", addr: hollywood.ARMIRQFlag},
	} {
		if got := h.Reg(r.addr); got != 0 {
			t.Errorf("%s = 0x%x, want 0", r.name, got)
		}
	}
	if got, _ := h.LastWrite(hollywood.ARMIRQFlag); got != 0xffffffff {
		t.Errorf("flag register written with 0x%x, want all ones", got)
	}
}

func TestEnableDisable(t *testing.T) {
	h := newSim()
	c := New(h)
	c.Initialize()
	c.Enable(GPIO1)
	c.Enable(Reset)
	c.Enable(Timer)
	if got, want := h.Reg(hollywood.ARMIRQMask), uint32(1<<GPIO1|1<<Reset|1<<Timer); got != want {
		t.Errorf("mask = 0x%x, want 0x%x", got, want)
	}
	c.Disable(Reset)
	if got, want := h.Reg(hollywood.ARMIRQMask), uint32(1<<GPIO1|1<<Timer); got != want {
		t.Errorf("mask = 0x%x, want 0x%x", got, want)
	}
}

func TestSetAlarm(t *testing.T) {
	for _, test := range []struct {
		name      string
		timer     uint32
		ms        uint32
		wantAlarm uint32
	}{
		{name: "boot period", timer: 1000, ms: AlarmPeriodMs, wantAlarm: 1000 + 20*TicksPerMs},
		{name: "one tick short of wrapping", timer: 0xffffffff, ms: 1, wantAlarm: TicksPerMs - 1},
	} {
		t.Run(test.name, func(t *testing.T) {
			h := newSim()
			c := New(h)
			c.Initialize()
			h.SetReg(hollywood.Timer, test.timer)
			c.SetAlarm(test.ms)
			if got := h.Reg(hollywood.Alarm); got != test.wantAlarm {
				t.Errorf("alarm = %d, want %d", got, test.wantAlarm)
			}
		})
	}
}

func TestShutdown(t *testing.T) {
	h := newSim()
	c := New(h)
	c.Initialize()
	c.Enable(Timer)
	c.Enable(Reset)
	h.SetReg(hollywood.ARMIRQFlag, 1<<Timer)

	c.Shutdown()
	if got := h.Reg(hollywood.ARMIRQMask); got != 0 {
		t.Errorf("mask = 0x%x after Shutdown()", got)
	}
	if got := h.Reg(hollywood.ARMIRQFlag); got != 0 {
		t.Errorf("flags = 0x%x after Shutdown()", got)
	}
}

func TestSetup(t *testing.T) {
	h := newSim()
	h.SetReg(hollywood.Timer, 7)
	if err := New(h).Setup(); err != nil {
		t.Fatalf("Setup(): %v", err)
	}
	if got, want := h.Reg(hollywood.ARMIRQMask), uint32(1<<GPIO1|1<<Reset|1<<Timer); got != want {
		t.Errorf("mask = 0x%x, want 0x%x", got, want)
	}
	if got, want := h.Reg(hollywood.Alarm), uint32(7+AlarmPeriodMs*TicksPerMs); got != want {
		t.Errorf("alarm = %d, want %d", got, want)
	}
}
