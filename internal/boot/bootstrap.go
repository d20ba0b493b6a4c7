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

package boot

import (
	"github.com/golang/glog"
	"github.com/google/starlet-mini/internal/halt"
	"github.com/google/starlet-mini/internal/hollywood"
)

// Stage is a one-shot subsystem initializer.
type Stage struct {
	Name string
	Init func() error
}

// Drivers are the subsystem initializers which run before the boot decision.
// A nil initializer is skipped.
type Drivers struct {
	Exceptions func()
	Memory     func()
	Interrupts func() error
	Crypto     func()
	NAND       func()
	// Boot2 readies the chainloader, which loads its titles from NAND.
	Boot2 func()
}

// Stages returns the driver bring-up in the order the hardware needs it.
func (d Drivers) Stages() []Stage {
	return []Stage{
		{Name: "exceptions", Init: infallible(d.Exceptions)},
		{Name: "caches and MMU", Init: infallible(d.Memory)},
		{Name: "interrupts", Init: d.Interrupts},
		{Name: "crypto", Init: infallible(d.Crypto)},
		{Name: "NAND", Init: infallible(d.NAND)},
		{Name: "boot2", Init: infallible(d.Boot2)},
	}
}

func infallible(f func()) func() error {
	if f == nil {
		return nil
	}
	return func() error {
		f()
		return nil
	}
}

// Bootstrap runs stages in order and stops at the first failure, which is
// returned as a *FatalError carrying halt.PanicBootstrap.
func Bootstrap(stages []Stage) error {
	for _, st := range stages {
		if st.Init == nil {
			continue
		}
		glog.Infof("Initializing %s...", st.Name)
		if err := st.Init(); err != nil {
			glog.Errorf("%s initialization failed: %v", st.Name, err)
			return &FatalError{Stage: st.Name, Pattern: halt.PanicBootstrap, Err: err}
		}
	}
	return nil
}

// IOSFlags reads the flag words left behind by boot1 and boot2.
func IOSFlags(b hollywood.Bus) []uint32 {
	f := make([]uint32, hollywood.IOSFlagsCount)
	for i := range f {
		f[i] = b.Read32(hollywood.IOSFlags + uint32(4*i))
	}
	return f
}

// LogIOSFlags logs the IOS flag words.
func LogIOSFlags(b hollywood.Bus) {
	f := IOSFlags(b)
	glog.Infof("IOSflags: %08x %08x %08x", f[0], f[1], f[2])
	glog.Infof("          %08x %08x %08x", f[3], f[4], f[5])
}

// PrepareVector shuts down interrupts and memory management before the
// Starlet leaves for vector, and returns vector.
func PrepareVector(irq Interrupts, memShutdown func(), vector uint32) uint32 {
	glog.Info("Shutting down interrupts...")
	irq.Shutdown()
	glog.Info("Shutting down caches and MMU...")
	memShutdown()
	glog.Infof("Vectoring to 0x%08x...", vector)
	return vector
}
