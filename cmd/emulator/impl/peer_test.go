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
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/starlet-mini/internal/control"
	"github.com/google/starlet-mini/internal/framebuffer"
	"github.com/google/starlet-mini/internal/hollywood"
	"github.com/google/starlet-mini/internal/ipc"
	"golang.org/x/sync/errgroup"
)

func TestParseScript(t *testing.T) {
	for _, test := range []struct {
		desc    string
		yaml    string
		want    *Script
		wantErr bool
	}{
		{
			desc: "all actions",
			yaml: `
Steps:
  - Pattern:
      Addr: 0x00100000
      Frame: 3
  - Send: fb_source 0x00100000
  - Wait: 250ms
  - Dump:
      Addr: 0x00300000
      Path: /tmp/frame.bin
`,
			want: &Script{Steps: []Step{
				{Pattern: &PatternStep{Addr: 0x00100000, Frame: 3}},
				{Send: "fb_source 0x00100000"},
				{Wait: 250 * time.Millisecond},
				{Dump: &DumpStep{Addr: 0x00300000, Path: "/tmp/frame.bin"}},
			}},
		}, {
			desc: "empty",
			yaml: "Steps: []\n",
			want: &Script{Steps: []Step{}},
		}, {
			desc:    "two actions in one step",
			yaml:    "Steps:\n  - Send: fb_start\n    Wait: 1s\n",
			wantErr: true,
		}, {
			desc:    "no action",
			yaml:    "Steps:\n  - {}\n",
			wantErr: true,
		}, {
			desc:    "bad command",
			yaml:    "Steps:\n  - Send: fb_source\n",
			wantErr: true,
		}, {
			desc:    "unknown field",
			yaml:    "Steps:\n  - Sleep: 1s\n",
			wantErr: true,
		},
	} {
		t.Run(test.desc, func(t *testing.T) {
			got, err := ParseScript([]byte(test.yaml))
			if gotErr := err != nil; gotErr != test.wantErr {
				t.Fatalf("ParseScript() = %v, want error %t", err, test.wantErr)
			}
			if diff := cmp.Diff(test.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("ParseScript() diff (-want +got):\n%s", diff)
			}
		})
	}
}

func fastPeer(t *testing.T) *Peer {
	t.Helper()
	p := NewPeer(newSim())
	p.newBackOff = func() backoff.BackOff {
		return backoff.NewConstantBackOff(time.Millisecond)
	}
	return p
}

func TestSendRetriesWhileBusy(t *testing.T) {
	p := fastPeer(t)
	if err := p.Post(ipc.CmdFBStop); err != nil {
		t.Fatalf("Post(): %v", err)
	}

	got := make(chan []uint32)
	go func() {
		m := ipc.NewMailbox(p.hw)
		var words []uint32
		for len(words) < 2 {
			time.Sleep(5 * time.Millisecond)
			if msg, ok := m.Poll(); ok {
				words = append(words, msg.Word)
				m.Ack(msg)
			}
		}
		got <- words
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Send(ctx, ipc.CmdFBStart); err != nil {
		t.Fatalf("Send(): %v", err)
	}
	if diff := cmp.Diff([]uint32{ipc.CmdFBStop, ipc.CmdFBStart}, <-got); diff != "" {
		t.Errorf("words seen by the Starlet diff (-want +got):\n%s", diff)
	}
}

func TestSendGivesUp(t *testing.T) {
	p := fastPeer(t)
	if err := p.Post(ipc.CmdFBStop); err != nil {
		t.Fatalf("Post(): %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := p.Send(ctx, ipc.CmdFBStart); err == nil {
		t.Fatal("Send() succeeded with nobody acknowledging")
	}
	if err := p.Post(ipc.CmdReboot); !errors.Is(err, ipc.ErrBusy) {
		t.Error("first message was lost")
	}
}

func TestConcurrentPostsAcceptOne(t *testing.T) {
	for trial := 0; trial < 100; trial++ {
		hw := newSim()
		p := NewPeer(hw)

		var mu sync.Mutex
		var accepted []uint32
		var g errgroup.Group
		for i := uint32(0); i < 8; i++ {
			w := 0xA1000000 | i
			g.Go(func() error {
				err := p.Post(w)
				if errors.Is(err, ipc.ErrBusy) {
					return nil
				}
				if err != nil {
					return err
				}
				mu.Lock()
				accepted = append(accepted, w)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			t.Fatalf("Post(): %v", err)
		}
		if len(accepted) != 1 {
			t.Fatalf("trial %d: %d posts accepted, want 1", trial, len(accepted))
		}
		if got := hw.Reg(hollywood.IPCPPCMsg); got != accepted[0] {
			t.Fatalf("trial %d: PPCMSG = 0x%08x, want accepted word 0x%08x", trial, got, accepted[0])
		}
	}
}

func TestTestPattern(t *testing.T) {
	img := TestPattern(0)
	if got, want := img.Bounds().Dx(), framebuffer.Width; got != want {
		t.Errorf("width = %d, want %d", got, want)
	}
	if got, want := img.Bounds().Dy(), framebuffer.Height; got != want {
		t.Errorf("height = %d, want %d", got, want)
	}

	b := ARGB(img)
	if len(b) != framebuffer.SourceSize {
		t.Fatalf("ARGB() returned %d bytes, want %d", len(b), framebuffer.SourceSize)
	}
	for _, test := range []struct {
		desc string
		x, y int
		want uint32
	}{
		{desc: "white bar", x: 0, y: 0, want: 0xFFFFFFFF},
		{desc: "yellow bar", x: 100, y: 0, want: 0xFFFFFF00},
		{desc: "black bar", x: framebuffer.Width - 1, y: framebuffer.Height - 1, want: 0xFF000000},
	} {
		off := 4 * (test.y*framebuffer.Width + test.x)
		if got := binary.BigEndian.Uint32(b[off:]); got != test.want {
			t.Errorf("%s: pixel (%d, %d) = 0x%08x, want 0x%08x", test.desc, test.x, test.y, got, test.want)
		}
	}

	if cmp.Equal(b, ARGB(TestPattern(5))) {
		t.Error("consecutive frames are identical")
	}
}

func TestRunScript(t *testing.T) {
	p := fastPeer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	core := control.New(p.hw)
	done := make(chan error)
	go func() { done <- core.Run(ctx) }()

	out := filepath.Join(t.TempDir(), "frame.bin")
	s := &Script{Steps: []Step{
		{Pattern: &PatternStep{Addr: testSource}},
		{Send: "fb_source 0x00100000"},
		{Send: "fb_dest 0x00300000"},
		{Send: "fb_start"},
		{Wait: 200 * time.Millisecond},
		{Dump: &DumpStep{Addr: testDest, Path: out}},
	}}
	if err := p.Run(ctx, s); err != nil {
		t.Fatalf("Run(): %v", err)
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("core.Run() = %v", err)
	}

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != framebuffer.DestSize {
		t.Fatalf("dump has %d bytes, want %d", len(b), framebuffer.DestSize)
	}
	if got := binary.BigEndian.Uint32(b); got != 0xFF80FF80 {
		t.Errorf("first packed word = 0x%08x, want white", got)
	}
	if got := core.Stats.Commands.Load(); got != 3 {
		t.Errorf("Starlet handled %d commands, want 3", got)
	}
}
