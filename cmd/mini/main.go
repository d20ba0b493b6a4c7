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

//go:build starlet && arm
// +build starlet,arm

// mini is the Starlet control core. It is linked against the vendor's
// exception, memory, crypto, NAND and SD drivers and boots from the
// Starlet's reset vector.
//
// Build with:
//   GOOS=tamago GOARCH=arm GOARM=5 go build -tags starlet \
//     -ldflags "-X main.Build=$(date -u +%Y%m%d) -X main.Revision=$(git rev-parse --short HEAD)" ./cmd/mini
package main

import (
	"context"
	"errors"
	"flag"

	"github.com/golang/glog"
	"github.com/google/starlet-mini/internal/boot"
	"github.com/google/starlet-mini/internal/control"
	"github.com/google/starlet-mini/internal/halt"
	"github.com/google/starlet-mini/internal/hollywood"
	"github.com/google/starlet-mini/internal/irq"
	"github.com/google/starlet-mini/internal/keys"
	"github.com/google/starlet-mini/internal/ppc"
	"github.com/google/starlet-mini/internal/storage"
	"golang.org/x/mod/sumdb/note"
)

var (
	Build    string
	Revision string

	// PublicKey, if set at link time, is the verifier key which
	// /openbios.elf must be signed with.
	PublicKey     string
	PublicKeyType string
)

// card is the front SD slot, mounted from its first MBR partition.
type card struct {
	p *storage.Partition
}

func (c *card) Init() error {
	if rc := sdhcInit(); rc != 0 {
		return errSDHC
	}
	p, err := storage.FirstPartition(sdhc{})
	if errors.Is(err, storage.ErrNoMBR) {
		p, err = &storage.Partition{Dev: sdhc{}}, nil
	}
	if err != nil {
		return err
	}
	c.p = p
	return p.Init()
}

func (c *card) Mount() error {
	if c.p == nil {
		return storage.ErrNotMounted
	}
	return c.p.Mount()
}

func (c *card) ReadAll(path string) ([]byte, error) {
	if c.p == nil {
		return nil, storage.ErrNotMounted
	}
	return c.p.ReadAll(path)
}

func main() {
	flag.Set("logtostderr", "true")
	flag.Parse()

	hw := hollywood.NewMMIO()
	h := halt.New(hw, nil)
	glog.Infof("MINI Starlet %s (%s) loading", Build, Revision)
	boot.LogIOSFlags(hw)

	intc := irq.New(hw)
	drivers := boot.Drivers{
		Exceptions: exceptionInitialize,
		Memory:     memInitialize,
		Interrupts: intc.Setup,
		Crypto:     cryptoInitialize,
		NAND:       nandInitialize,
		Boot2:      boot2Init,
	}
	if err := boot.Bootstrap(drivers.Stages()); err != nil {
		fatal(h, err)
	}

	var v note.Verifier
	if PublicKey != "" {
		var err error
		if v, err = keys.NewVerifier(PublicKeyType, PublicKey); err != nil {
			fatal(h, &boot.FatalError{Stage: "keys", Pattern: halt.PanicBootstrap, Err: err})
		}
	}

	sd := &card{}
	seq := &boot.Sequencer{
		HW:      hw,
		Storage: sd,
		Loader:  ppc.NewLoader(hw, sd, v, nil),
		Boot2:   boot2{},
		IRQ:     intc,
	}
	out, err := seq.Run()
	if err != nil {
		fatal(h, err)
	}
	if out.Vector {
		jumpTo(boot.PrepareVector(intc, memShutdown, out.Addr))
	}

	// Only power off and reset leave the loop, and both take the chip down.
	_ = control.New(hw).Run(context.Background())
	select {}
}

// fatal shows the panic pattern for err forever.
func fatal(h *halt.Halter, err error) {
	p := halt.PanicBootstrap
	var fe *boot.FatalError
	if errors.As(err, &fe) {
		p = fe.Pattern
	}
	glog.Errorf("%v", err)
	h.Panic(p)
}
