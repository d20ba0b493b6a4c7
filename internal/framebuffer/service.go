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

// Package framebuffer converts the Broadway's ARGB framebuffer into the
// packed 4:2:2 format scanned out by the video interface.
//
// The Broadway writes pixels through its own cache domain, so every pass
// invalidates the source range before reading it and flushes the
// destination range after writing it.
package framebuffer

import (
	"errors"
	"fmt"

	"github.com/golang/glog"
	"github.com/google/starlet-mini/internal/hollywood"
)

// ErrUnset is returned when a buffer address has not been provided yet.
var ErrUnset = errors.New("buffer address not set")

// Buffer is a physical address range registered by the Broadway.
type Buffer struct {
	Addr uint32
	Size uint32
	set  bool
}

// IsSet returns true once an address has been registered.
func (b Buffer) IsSet() bool {
	return b.set
}

func (b Buffer) String() string {
	if !b.set {
		return "unset"
	}
	return fmt.Sprintf("0x%08x+0x%x", b.Addr, b.Size)
}

// view resolves the buffer into a bounded slice of memory.
func (b Buffer) view(m hollywood.Memory) ([]byte, error) {
	if !b.set {
		return nil, ErrUnset
	}
	v, err := m.View(b.Addr, b.Size)
	if err != nil {
		return nil, err
	}
	if uint32(len(v)) != b.Size {
		return nil, fmt.Errorf("view of %v has %d bytes", b, len(v))
	}
	return v, nil
}

// State is the conversion service configuration. It is written by the
// command dispatcher and read by Service.Tick, both on the control loop.
type State struct {
	Running bool
	Source  Buffer
	Dest    Buffer
}

// Service runs conversion passes against the Starlet's view of memory.
type Service struct {
	hw    hollywood.Hardware
	state State

	// warned suppresses repeated log lines while the configuration is bad.
	warned bool
}

// NewService returns a stopped service with no buffers registered.
func NewService(hw hollywood.Hardware) *Service {
	return &Service{hw: hw}
}

// State returns a copy of the current configuration.
func (s *Service) State() State {
	return s.state
}

// Start enables conversion. Starting a running service has no effect.
func (s *Service) Start() {
	s.state.Running = true
}

// Stop disables conversion. Stopping a stopped service has no effect.
func (s *Service) Stop() {
	s.state.Running = false
}

// SetSource registers the ARGB source frame address.
func (s *Service) SetSource(addr uint32) {
	s.state.Source = Buffer{Addr: addr, Size: SourceSize, set: true}
	s.warned = false
}

// SetDest registers the packed destination frame address.
func (s *Service) SetDest(addr uint32) {
	s.state.Dest = Buffer{Addr: addr, Size: DestSize, set: true}
	s.warned = false
}

// Tick performs one conversion pass if the service is running and both
// buffers resolve to valid memory. It returns true if a pass was made.
func (s *Service) Tick() bool {
	if !s.state.Running {
		return false
	}
	src, dst, err := s.views()
	if err != nil {
		if !s.warned {
			glog.Warningf("framebuffer: skipping conversion: %v", err)
			s.warned = true
		}
		return false
	}

	s.hw.Invalidate(s.state.Source.Addr, s.state.Source.Size)
	Convert(dst, src)
	s.hw.Flush(s.state.Dest.Addr, s.state.Dest.Size)
	return true
}

func (s *Service) views() ([]byte, []byte, error) {
	src, err := s.state.Source.view(s.hw)
	if err != nil {
		return nil, nil, fmt.Errorf("source %v: %w", s.state.Source, err)
	}
	dst, err := s.state.Dest.view(s.hw)
	if err != nil {
		return nil, nil, fmt.Errorf("destination %v: %w", s.state.Dest, err)
	}
	return src, dst, nil
}
