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

// Package boot decides what the Starlet does once the core subsystems are up:
// hand the machine back to boot2, or start the Broadway on an image from the
// SD card and stay resident to serve it.
package boot

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/google/starlet-mini/internal/halt"
	"github.com/google/starlet-mini/internal/hollywood"
	"github.com/google/starlet-mini/internal/ipc"
)

// DefaultImagePath is the Broadway image loaded from the SD card.
const DefaultImagePath = "/openbios.elf"

// Title is a boot2 title ID, written as major-minor.
type Title struct {
	Major, Minor uint32
}

func (t Title) String() string {
	return fmt.Sprintf("%d-%x", t.Major, t.Minor)
}

var (
	// TitleBC is the GameCube compatibility loader.
	TitleBC = Title{Major: 1, Minor: 0x101}
	// TitleSystemMenu is the normal system menu.
	TitleSystemMenu = Title{Major: 1, Minor: 2}
)

// Storage is the SD card.
type Storage interface {
	// Init brings up the card controller.
	Init() error
	// Mount mounts the card's filesystem.
	Mount() error
}

// ImageLoader starts the Broadway on an image.
type ImageLoader interface {
	Boot(path string) error
}

// SecondaryLoader is boot2. Run prepares the given title and returns the
// address the Starlet must vector to; it does not fail.
type SecondaryLoader interface {
	Run(t Title) uint32
}

// Interrupts is the interrupt controller.
type Interrupts interface {
	Shutdown()
}

// Outcome is the decision made by the Sequencer.
type Outcome struct {
	// Vector is true if the Starlet should leave for Addr instead of
	// entering the service loop.
	Vector bool
	Addr   uint32
}

// Continue is the outcome which enters the service loop.
var Continue = Outcome{}

// VectorTo returns the outcome which leaves for addr.
func VectorTo(addr uint32) Outcome {
	return Outcome{Vector: true, Addr: addr}
}

func (o Outcome) String() string {
	if !o.Vector {
		return "continue"
	}
	return fmt.Sprintf("vector to 0x%08x", o.Addr)
}

// Sequencer runs the boot path decision once.
type Sequencer struct {
	HW        hollywood.Bus
	Storage   Storage
	Loader    ImageLoader
	Boot2     SecondaryLoader
	IRQ       Interrupts
	ImagePath string
}

// Run decides between the GameCube compatibility loader, the SD card image
// and the system menu. The only error it returns is a *FatalError, which the
// caller must hand to the panic path.
func (s *Sequencer) Run() (Outcome, error) {
	glog.Info("Initializing IPC...")
	ipc.NewMailbox(s.HW).Reset()

	glog.Info("Initializing SDHC...")
	mountErr := s.Storage.Init()
	if mountErr == nil {
		glog.Info("Mounting SD...")
		mountErr = s.Storage.Mount()
	}

	if hollywood.BitSet(s.HW, hollywood.Straps, hollywood.StrapsCompatBit) {
		glog.Info("GameCube compatibility mode detected...")
		return VectorTo(s.Boot2.Run(TitleBC)), nil
	}

	if mountErr != nil {
		glog.Errorf("Error while trying to mount SD: %v", mountErr)
		return Outcome{}, &FatalError{Stage: "mount", Pattern: halt.PanicMount, Err: mountErr}
	}

	path := s.ImagePath
	if path == "" {
		path = DefaultImagePath
	}
	glog.Infof("Trying to boot: %s", path)
	if err := s.Loader.Boot(path); err != nil {
		glog.Warningf("Failed to boot PPC: %v", err)
		glog.Info("Booting System Menu")
		return VectorTo(s.Boot2.Run(TitleSystemMenu)), nil
	}

	glog.Info("Shutting down interrupts...")
	s.IRQ.Shutdown()
	return Continue, nil
}
