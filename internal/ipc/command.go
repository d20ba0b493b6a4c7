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

package ipc

import (
	"fmt"
	"strconv"
	"strings"
)

// Raw command words sent by the Broadway.
const (
	CmdPowerOff = 0xCAFE0001
	CmdReboot   = 0xCAFE0002
	CmdFBStart  = 0xCAFE0010
	CmdFBStop   = 0xCAFE0011

	// Address commands carry a 256 byte aligned address in their low 24
	// bits, shifted right by 8.
	TagSetDest   = 0xA2
	TagSetSource = 0xA1
)

// Kind identifies a decoded command.
type Kind int

const (
	Unknown Kind = iota
	PowerOff
	Reboot
	StartFramebuffer
	StopFramebuffer
	SetSourceAddress
	SetDestAddress
)

var kindNames = map[Kind]string{
	Unknown:          "unknown",
	PowerOff:         "power_off",
	Reboot:           "reboot",
	StartFramebuffer: "fb_start",
	StopFramebuffer:  "fb_stop",
	SetSourceAddress: "fb_source",
	SetDestAddress:   "fb_dest",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, n := range kindNames {
		if n == s && k != Unknown {
			return k, nil
		}
	}
	return Unknown, fmt.Errorf("unknown command %q", s)
}

// Command is a decoded mailbox word.
type Command struct {
	Kind Kind
	// Addr is the buffer address for SetSourceAddress and SetDestAddress.
	Addr uint32
	// Raw is the word the command was decoded from.
	Raw uint32
}

func (c Command) String() string {
	switch c.Kind {
	case SetSourceAddress, SetDestAddress:
		return fmt.Sprintf("%s(0x%08x)", c.Kind, c.Addr)
	case Unknown:
		return fmt.Sprintf("unknown(0x%08x)", c.Raw)
	}
	return c.Kind.String()
}

// Decode interprets a raw mailbox word. Exact matches are checked before
// tagged address commands; anything else decodes as Unknown.
func Decode(w uint32) Command {
	c := Command{Raw: w}
	switch w {
	case CmdPowerOff:
		c.Kind = PowerOff
		return c
	case CmdReboot:
		c.Kind = Reboot
		return c
	case CmdFBStart:
		c.Kind = StartFramebuffer
		return c
	case CmdFBStop:
		c.Kind = StopFramebuffer
		return c
	}
	switch w >> 24 {
	case TagSetDest:
		c.Kind = SetDestAddress
		c.Addr = (w & 0x00ffffff) << 8
	case TagSetSource:
		c.Kind = SetSourceAddress
		c.Addr = (w & 0x00ffffff) << 8
	}
	return c
}

// Encode returns the mailbox word for a command. Address commands drop the
// low 8 bits of Addr.
func Encode(c Command) (uint32, error) {
	switch c.Kind {
	case PowerOff:
		return CmdPowerOff, nil
	case Reboot:
		return CmdReboot, nil
	case StartFramebuffer:
		return CmdFBStart, nil
	case StopFramebuffer:
		return CmdFBStop, nil
	case SetDestAddress:
		return TagSetDest<<24 | c.Addr>>8, nil
	case SetSourceAddress:
		return TagSetSource<<24 | c.Addr>>8, nil
	}
	return 0, fmt.Errorf("cannot encode %v", c)
}

// ParseCommand parses the textual form used by the emulator, e.g.
// "fb_start" or "fb_source 0x00100000".
func ParseCommand(s string) (Command, error) {
	f := strings.Fields(s)
	if len(f) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}
	k, err := ParseKind(f[0])
	if err != nil {
		return Command{}, err
	}
	c := Command{Kind: k}
	switch k {
	case SetSourceAddress, SetDestAddress:
		if len(f) != 2 {
			return Command{}, fmt.Errorf("%s needs one address argument", k)
		}
		a, err := strconv.ParseUint(f[1], 0, 32)
		if err != nil {
			return Command{}, fmt.Errorf("invalid address %q: %w", f[1], err)
		}
		if a&0xff != 0 {
			return Command{}, fmt.Errorf("address 0x%08x is not 256 byte aligned", a)
		}
		c.Addr = uint32(a)
	default:
		if len(f) != 1 {
			return Command{}, fmt.Errorf("%s takes no arguments", k)
		}
	}
	c.Raw, err = Encode(c)
	return c, err
}
