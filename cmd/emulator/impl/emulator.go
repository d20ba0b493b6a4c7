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

// Package impl is the implementation of the Starlet emulator.
package impl

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/golang/glog"
	"github.com/google/starlet-mini/internal/boot"
	"github.com/google/starlet-mini/internal/control"
	"github.com/google/starlet-mini/internal/halt"
	"github.com/google/starlet-mini/internal/hollywood"
	"github.com/google/starlet-mini/internal/hollywood/sim"
	"github.com/google/starlet-mini/internal/irq"
	"github.com/google/starlet-mini/internal/keys"
	"github.com/google/starlet-mini/internal/ppc"
	"github.com/google/starlet-mini/internal/storage"
	"github.com/gorilla/mux"
	"golang.org/x/mod/sumdb/note"
	"golang.org/x/sync/errgroup"
)

// Opts contains the options for the emulator.
type Opts struct {
	// SDDir serves the SD card from a directory on the host.
	SDDir string
	// SDImage serves the SD card from an ext4 image on the host.
	SDImage string
	// PartitionOffset is the byte offset of the filesystem in SDImage. If
	// negative, the first partition in the image's MBR is used.
	PartitionOffset int64

	// Compat sets the GameCube compatibility strap.
	Compat bool
	// Boot2Vector is the address boot2 hands back when asked to run a title.
	Boot2Vector uint32
	// PublicKey, if set, is the verifier key images must be signed with.
	PublicKey string
	// KeyType is the type of PublicKey, see package keys.
	KeyType string

	// ScriptPath is the YAML script run by the emulated Broadway.
	ScriptPath string
	// Listen is the address to serve the HTTP debug interface on.
	Listen string
}

// Result describes how the emulated Starlet stopped.
type Result struct {
	Outcome boot.Outcome
	Halt    sim.HaltReason
}

// boot2 stands in for the boot2 chainloader.
type boot2 struct {
	vector uint32
	ready  bool
}

func (b *boot2) Init() {
	b.ready = true
}

// Run returns the vector to launch t, or 0 if Init has not run.
func (b *boot2) Run(t boot.Title) uint32 {
	if !b.ready {
		glog.Errorf("boot2: asked to launch %v before initialization", t)
		return 0
	}
	glog.Infof("boot2: launching title %v", t)
	return b.vector
}

// card is the emulated SD card.
type card interface {
	boot.Storage
	storage.FS
}

// newCard returns the SD card described by opts, and a function which
// releases it.
func newCard(opts Opts) (card, func() error, error) {
	nop := func() error { return nil }
	switch {
	case opts.SDDir != "" && opts.SDImage != "":
		return nil, nil, errors.New("only one of SDDir and SDImage may be set")
	case opts.SDDir != "":
		return &storage.Dir{Root: opts.SDDir}, nop, nil
	case opts.SDImage != "":
		d, err := storage.OpenFileDevice(opts.SDImage, 512)
		if err != nil {
			return nil, nil, err
		}
		if opts.PartitionOffset >= 0 {
			return &storage.Partition{Dev: d, Offset: opts.PartitionOffset}, d.Close, nil
		}
		p, err := storage.FirstPartition(d)
		if err != nil {
			d.Close()
			return nil, nil, err
		}
		return p, d.Close, nil
	}
	return noCard{}, nop, nil
}

// noCard is an empty SD slot.
type noCard struct{}

var errNoCard = errors.New("no card inserted")

func (noCard) Init() error                    { return errNoCard }
func (noCard) Mount() error                   { return errNoCard }
func (noCard) ReadAll(string) ([]byte, error) { return nil, storage.ErrNotMounted }

// Main boots the emulated Starlet and, if it stays resident, runs the service
// loop until the machine powers off, resets or ctx is cancelled.
func Main(ctx context.Context, opts Opts) (Result, error) {
	hw := sim.New(hollywood.MEM1, hollywood.MEM2)
	if opts.Compat {
		hw.SetReg(hollywood.Straps, 1<<hollywood.StrapsCompatBit)
	}
	return Run(ctx, hw, opts)
}

// Run is Main on a caller provided Hollywood.
func Run(ctx context.Context, hw *sim.Hollywood, opts Opts) (Result, error) {
	sd, closeCard, err := newCard(opts)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := closeCard(); err != nil {
			glog.Warningf("failed to close SD card: %v", err)
		}
	}()
	var v note.Verifier
	if opts.PublicKey != "" {
		if v, err = keys.NewVerifier(opts.KeyType, opts.PublicKey); err != nil {
			return Result{}, fmt.Errorf("invalid public key: %w", err)
		}
	}

	intc := irq.New(hw)
	h := halt.New(hw, nil)

	glog.Info("mini emulator loading")
	boot.LogIOSFlags(hw)
	b2 := &boot2{vector: opts.Boot2Vector}
	drivers := boot.Drivers{
		Interrupts: intc.Setup,
		Boot2:      b2.Init,
	}
	if err := boot.Bootstrap(drivers.Stages()); err != nil {
		return Result{}, fatal(ctx, h, err)
	}

	seq := &boot.Sequencer{
		HW:      hw,
		Storage: sd,
		Loader:  ppc.NewLoader(hw, sd, v, nil),
		Boot2:   b2,
		IRQ:     intc,
	}
	out, err := seq.Run()
	if err != nil {
		return Result{}, fatal(ctx, h, err)
	}
	if out.Vector {
		boot.PrepareVector(intc, func() {}, out.Addr)
		return Result{Outcome: out}, nil
	}

	if err := serve(ctx, hw, opts); err != nil {
		return Result{Outcome: out}, err
	}
	return Result{Outcome: out, Halt: hw.HaltReason()}, nil
}

// fatal shows the panic pattern until ctx is done.
func fatal(ctx context.Context, h *halt.Halter, err error) error {
	var fe *boot.FatalError
	if !errors.As(err, &fe) {
		return err
	}
	_ = h.CatchFire(ctx, fe.Pattern)
	return err
}

// serve runs the service loop alongside the emulated Broadway and the HTTP
// interface.
func serve(ctx context.Context, hw *sim.Hollywood, opts Opts) error {
	var script *Script
	if opts.ScriptPath != "" {
		b, err := os.ReadFile(opts.ScriptPath)
		if err != nil {
			return fmt.Errorf("failed to read script: %w", err)
		}
		if script, err = ParseScript(b); err != nil {
			return err
		}
	}

	var l net.Listener
	if opts.Listen != "" {
		var err error
		if l, err = net.Listen("tcp", opts.Listen); err != nil {
			return fmt.Errorf("failed to listen on %q: %w", opts.Listen, err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	core := control.New(hw)
	peer := NewPeer(hw)

	// If any process dies, then all of them will be stopped via context cancellation.
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := core.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-hw.Halted():
			glog.Infof("Hollywood %v", hw.HaltReason())
			cancel()
		case <-ctx.Done():
		}
		return nil
	})
	if script != nil {
		g.Go(func() error {
			if err := peer.Run(ctx, script); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		})
	}
	if l != nil {
		r := mux.NewRouter()
		NewServer(hw, core, peer).RegisterHandlers(r)
		srv := http.Server{Handler: r}
		g.Go(func() error {
			glog.Infof("HTTP server listening on %s", l.Addr())
			if err := srv.Serve(l); err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			// This goroutine brings down the HTTP server when ctx is done.
			<-ctx.Done()
			return srv.Shutdown(context.Background())
		})
	}
	return g.Wait()
}
