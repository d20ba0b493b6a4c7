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

package halt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/starlet-mini/internal/hollywood"
	"github.com/google/starlet-mini/internal/hollywood/sim"
)

func newSim() *sim.Hollywood {
	return sim.New(hollywood.Region{Start: 0, Size: 4096})
}

// event is an LED transition or a delay.
type event struct {
	LED   bool
	Sleep time.Duration
}

// recorder logs the LED state at every delay.
type recorder struct {
	h       *sim.Hollywood
	events  []event
	onSleep func()
}

func (r *recorder) sleep(d time.Duration) {
	led := r.h.Reg(hollywood.GPIO1Out)&(1<<hollywood.GPIO1SlotLEDBit) != 0
	r.events = append(r.events, event{LED: led, Sleep: d})
	if r.onSleep != nil {
		r.onSleep()
	}
}

func TestBlink(t *testing.T) {
	for _, test := range []struct {
		name string
		p    Pattern
		want []event
	}{
		{
			name: "mount",
			p:    PanicMount,
			want: []event{
				{LED: true, Sleep: PulseOn},
				{LED: false, Sleep: PulseOff},
				{LED: true, Sleep: PulseOn},
				{LED: false, Sleep: PulseOff},
				{LED: false, Sleep: Interval},
			},
		}, {
			name: "long pulse",
			p:    Pattern{1, 3, 1},
			want: []event{
				{LED: true, Sleep: PulseOn},
				{LED: false, Sleep: PulseOff},
				{LED: true, Sleep: 3 * PulseOn},
				{LED: false, Sleep: PulseOff},
				{LED: true, Sleep: PulseOn},
				{LED: false, Sleep: PulseOff},
				{LED: false, Sleep: Interval},
			},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			h := newSim()
			r := &recorder{h: h}
			New(h, r.sleep).Blink(test.p)
			if diff := cmp.Diff(test.want, r.events); diff != "" {
				t.Errorf("Blink(%v) diff (-want +got):\n%s", test.p, diff)
			}
		})
	}
}

func TestBlinkLeavesOtherOutputsAlone(t *testing.T) {
	h := newSim()
	h.SetReg(hollywood.GPIO1Out, 1<<hollywood.GPIO1PowerBit)
	r := &recorder{h: h}
	New(h, r.sleep).Blink(PanicBootstrap)
	if got, want := h.Reg(hollywood.GPIO1Out), uint32(1<<hollywood.GPIO1PowerBit); got != want {
		t.Errorf("GPIO1OUT = 0x%x, want 0x%x", got, want)
	}
	if r := h.HaltReason(); r != sim.Running {
		t.Errorf("blinking halted the system: %v", r)
	}
}

func TestCatchFireRepeats(t *testing.T) {
	h := newSim()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rounds := 0
	r := &recorder{h: h}
	r.onSleep = func() {
		if r.events[len(r.events)-1].Sleep == Interval {
			rounds++
			if rounds == 3 {
				cancel()
			}
		}
	}

	err := New(h, r.sleep).CatchFire(ctx, PanicMount)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("CatchFire() = %v, want context.Canceled", err)
	}
	if rounds != 3 {
		t.Errorf("pattern shown %d times, want 3", rounds)
	}
}

func TestPatternString(t *testing.T) {
	if got, want := (Pattern{1, 3, 1}).String(), "1,3,1"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
