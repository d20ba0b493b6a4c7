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

// Package halt is the panic path: once entered, the Starlet does nothing but
// blink the disc slot LED in a pattern identifying what went wrong.
package halt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/google/starlet-mini/internal/hollywood"
)

// Pattern is a blink code. Each element is the length of one LED pulse, in
// units of PulseOn.
type Pattern []int

func (p Pattern) String() string {
	s := make([]string, len(p))
	for i, n := range p {
		s[i] = fmt.Sprint(n)
	}
	return strings.Join(s, ",")
}

// Known blink codes.
var (
	PanicMount     = Pattern{1, 1}
	PanicBootstrap = Pattern{1, 2}
)

// Timings of a blink code.
const (
	PulseOn  = 200 * time.Millisecond
	PulseOff = 300 * time.Millisecond
	Interval = time.Second
)

// Halter drives the slot LED.
type Halter struct {
	bus   hollywood.Bus
	sleep func(time.Duration)
}

// New returns a Halter which blinks the LED through bus. The sleep function
// is used for all delays; nil means time.Sleep.
func New(bus hollywood.Bus, sleep func(time.Duration)) *Halter {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Halter{bus: bus, sleep: sleep}
}

// Blink shows p once, followed by the inter-code gap.
func (h *Halter) Blink(p Pattern) {
	for _, n := range p {
		hollywood.SetBit(h.bus, hollywood.GPIO1Out, hollywood.GPIO1SlotLEDBit)
		h.sleep(time.Duration(n) * PulseOn)
		hollywood.ClearBit(h.bus, hollywood.GPIO1Out, hollywood.GPIO1SlotLEDBit)
		h.sleep(PulseOff)
	}
	h.sleep(Interval)
}

// CatchFire blinks p until ctx is done.
func (h *Halter) CatchFire(ctx context.Context, p Pattern) error {
	glog.Errorf("Panic: %v", p)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		h.Blink(p)
	}
}

// Panic signals for help and never returns.
func (h *Halter) Panic(p Pattern) {
	_ = h.CatchFire(context.Background(), p)
	select {}
}
