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

// Package ipc implements the single slot mailbox shared between the Starlet
// and the Broadway, and the command words carried over it.
//
// See http://wiibrew.org/wiki/Hardware/IPC
package ipc

import (
	"errors"

	"github.com/google/starlet-mini/internal/hollywood"
)

// ErrBusy is returned by Peer.Post while the previous message is still
// waiting to be acknowledged.
var ErrBusy = errors.New("mailbox busy")

// Message is a pending inbound message along with the control flags which
// were observed when it was picked up.
type Message struct {
	Ctrl uint32
	Word uint32
}

// Mailbox is the Starlet side of the IPC registers.
type Mailbox struct {
	bus hollywood.Bus
}

// NewMailbox returns a Mailbox using the given register bus.
func NewMailbox(bus hollywood.Bus) *Mailbox {
	return &Mailbox{bus: bus}
}

// Reset zeroes both message registers and clears any stale flags left behind
// by an earlier boot stage.
func (m *Mailbox) Reset() {
	m.bus.Write32(hollywood.IPCARMMsg, 0)
	m.bus.Write32(hollywood.IPCPPCMsg, 0)
	m.bus.Write32(hollywood.IPCPPCCtrl, hollywood.IPCCtrlReset)
	m.bus.Write32(hollywood.IPCARMCtrl, hollywood.IPCCtrlReset)
}

// Poll checks for a message from the Broadway. The message register is only
// read if the pending flag is set.
func (m *Mailbox) Poll() (Message, bool) {
	ctrl := m.bus.Read32(hollywood.IPCARMCtrl)
	if ctrl&hollywood.IPCCtrlX1 == 0 {
		return Message{}, false
	}
	return Message{Ctrl: ctrl, Word: m.bus.Read32(hollywood.IPCPPCMsg)}, true
}

// Ack acknowledges msg by writing back the control flags it was picked up
// with, which clears the pending flag and lets the Broadway post again.
func (m *Mailbox) Ack(msg Message) {
	m.bus.Write32(hollywood.IPCARMCtrl, msg.Ctrl)
}

// Peer is the Broadway side of the IPC registers, used by the emulator to
// drive the Starlet.
type Peer struct {
	bus hollywood.Bus
}

// NewPeer returns a Peer using the Broadway's view of the registers.
func NewPeer(bus hollywood.Bus) *Peer {
	return &Peer{bus: bus}
}

// Pending reports whether the last posted message is still unacknowledged.
func (p *Peer) Pending() bool {
	return p.bus.Read32(hollywood.IPCARMCtrl)&hollywood.IPCCtrlX1 != 0
}

// Post writes w to the message register and raises the pending flag. There
// is no queue: Post fails with ErrBusy until the previous message has been
// acknowledged.
func (p *Peer) Post(w uint32) error {
	if p.Pending() {
		return ErrBusy
	}
	p.bus.Write32(hollywood.IPCPPCMsg, w)
	p.bus.Write32(hollywood.IPCPPCCtrl, hollywood.IPCCtrlX1)
	return nil
}
