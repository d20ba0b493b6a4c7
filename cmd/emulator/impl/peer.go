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

package impl

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fogleman/gg"
	"github.com/golang/glog"
	"github.com/google/starlet-mini/internal/framebuffer"
	"github.com/google/starlet-mini/internal/hollywood/sim"
	"github.com/google/starlet-mini/internal/ipc"
	"gopkg.in/yaml.v2"
)

// Script is a sequence of actions performed by the emulated Broadway.
type Script struct {
	Steps []Step `yaml:"Steps"`
}

// Step is one action. Exactly one of its fields is set.
type Step struct {
	// Send posts a command in the form accepted by ipc.ParseCommand.
	Send string `yaml:"Send,omitempty"`
	// Wait pauses the script.
	Wait time.Duration `yaml:"Wait,omitempty"`
	// Pattern draws a test pattern into an ARGB frame at the given address.
	Pattern *PatternStep `yaml:"Pattern,omitempty"`
	// Dump writes the packed frame at the given address to a file.
	Dump *DumpStep `yaml:"Dump,omitempty"`
}

// PatternStep is a Step which draws a test pattern.
type PatternStep struct {
	Addr uint32 `yaml:"Addr"`
	// Frame varies the pattern so consecutive frames differ.
	Frame int `yaml:"Frame"`
}

// DumpStep is a Step which saves a converted frame.
type DumpStep struct {
	Addr uint32 `yaml:"Addr"`
	Path string `yaml:"Path"`
}

// ParseScript parses a YAML peer script.
func ParseScript(b []byte) (*Script, error) {
	s := &Script{}
	if err := yaml.UnmarshalStrict(b, s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	for i, st := range s.Steps {
		n := 0
		if st.Send != "" {
			n++
			if _, err := ipc.ParseCommand(st.Send); err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
		}
		if st.Wait != 0 {
			n++
		}
		if st.Pattern != nil {
			n++
		}
		if st.Dump != nil {
			n++
		}
		if n != 1 {
			return nil, fmt.Errorf("step %d: want exactly one action, got %d", i, n)
		}
	}
	return s, nil
}

// Peer plays the part of the Broadway against a simulated Hollywood.
type Peer struct {
	hw *sim.Hollywood
	// mu serializes posts, which are a check of the busy flag followed by
	// the message write.
	mu      sync.Mutex
	mailbox *ipc.Peer
	// newBackOff returns the retry policy used while the mailbox is busy.
	newBackOff func() backoff.BackOff
}

// NewPeer returns a Peer driving hw.
func NewPeer(hw *sim.Hollywood) *Peer {
	return &Peer{
		hw:      hw,
		mailbox: ipc.NewPeer(hw.Peer()),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Millisecond
			b.MaxInterval = 100 * time.Millisecond
			b.MaxElapsedTime = 10 * time.Second
			return b
		},
	}
}

// Post posts w without waiting. It fails with ipc.ErrBusy if the previous
// message has not been acknowledged.
func (p *Peer) Post(w uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mailbox.Post(w)
}

// Send posts w, retrying while the mailbox is busy, and waits for the
// Starlet to acknowledge it.
func (p *Peer) Send(ctx context.Context, w uint32) error {
	post := func() error {
		err := p.Post(w)
		if err != nil && !errors.Is(err, ipc.ErrBusy) {
			return backoff.Permanent(err)
		}
		return err
	}
	if err := backoff.Retry(post, backoff.WithContext(p.newBackOff(), ctx)); err != nil {
		return fmt.Errorf("failed to post 0x%08x: %w", w, err)
	}
	acked := func() error {
		if p.mailbox.Pending() {
			return ipc.ErrBusy
		}
		return nil
	}
	if err := backoff.Retry(acked, backoff.WithContext(p.newBackOff(), ctx)); err != nil {
		return fmt.Errorf("0x%08x not acknowledged: %w", w, err)
	}
	return nil
}

// Run performs the steps of s in order.
func (p *Peer) Run(ctx context.Context, s *Script) error {
	for i, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.step(ctx, st); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	glog.Info("Peer script done")
	return nil
}

func (p *Peer) step(ctx context.Context, st Step) error {
	switch {
	case st.Send != "":
		c, err := ipc.ParseCommand(st.Send)
		if err != nil {
			return err
		}
		glog.V(1).Infof("peer: sending %v", c)
		return p.Send(ctx, c.Raw)
	case st.Wait != 0:
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(st.Wait):
		}
		return nil
	case st.Pattern != nil:
		return p.WriteFrame(st.Pattern.Addr, TestPattern(st.Pattern.Frame))
	case st.Dump != nil:
		b, err := p.ReadFrame(st.Dump.Addr)
		if err != nil {
			return err
		}
		return os.WriteFile(st.Dump.Path, b, 0o644)
	}
	return errors.New("empty step")
}

// TestPattern draws colour bars with a moving marker.
func TestPattern(frame int) image.Image {
	const w, h = framebuffer.Width, framebuffer.Height
	dc := gg.NewContext(w, h)
	bars := [][3]float64{
		{1, 1, 1}, {1, 1, 0}, {0, 1, 1}, {0, 1, 0},
		{1, 0, 1}, {1, 0, 0}, {0, 0, 1}, {0, 0, 0},
	}
	bw := float64(w) / float64(len(bars))
	for i, c := range bars {
		dc.SetRGB(c[0], c[1], c[2])
		dc.DrawRectangle(float64(i)*bw, 0, bw, h)
		dc.Fill()
	}
	dc.SetRGB(0.5, 0.5, 0.5)
	dc.DrawCircle(float64(frame*16%w), h/2, 32)
	dc.Fill()
	return dc.Image()
}

// ARGB encodes img as a frame of big-endian ARGB8888 words.
func ARGB(img image.Image) []byte {
	b := make([]byte, framebuffer.SourceSize)
	bounds := img.Bounds()
	for y := 0; y < framebuffer.Height; y++ {
		for x := 0; x < framebuffer.Width; x++ {
			r, g, bl, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			px := 0xff000000 | (r>>8)<<16 | (g>>8)<<8 | bl>>8
			binary.BigEndian.PutUint32(b[4*(y*framebuffer.Width+x):], px)
		}
	}
	return b
}

// WriteFrame stores img as an ARGB frame at addr.
func (p *Peer) WriteFrame(addr uint32, img image.Image) error {
	return p.hw.Peer().WriteMem(addr, ARGB(img))
}

// ReadFrame returns the packed frame at addr.
func (p *Peer) ReadFrame(addr uint32) ([]byte, error) {
	b := make([]byte, framebuffer.DestSize)
	if err := p.hw.Peer().ReadMem(addr, b); err != nil {
		return nil, err
	}
	return b, nil
}
