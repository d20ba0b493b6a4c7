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

package hollywood

// See http://wiibrew.org/wiki/Hardware/Hollywood_Registers
const (
	RegBase = 0x0d800000

	IPCPPCMsg  = RegBase + 0x000
	IPCPPCCtrl = RegBase + 0x004
	IPCARMMsg  = RegBase + 0x008
	IPCARMCtrl = RegBase + 0x00c

	Timer = RegBase + 0x010
	Alarm = RegBase + 0x014

	PPCIRQFlag = RegBase + 0x030
	PPCIRQMask = RegBase + 0x034
	ARMIRQFlag = RegBase + 0x038
	ARMIRQMask = RegBase + 0x03c

	GPIO1Out = RegBase + 0x0e0
	GPIO1Dir = RegBase + 0x0e4
	GPIO1In  = RegBase + 0x0e8

	// Straps holds the boot mode straps; bit 1 is set when the console was
	// started in GameCube compatibility mode.
	Straps = RegBase + 0x190
	Resets = RegBase + 0x194
)

// IPC control flags. The X flags are raised by the Broadway towards the
// Starlet and the Y flags in the other direction; X1 and X2 are write to
// clear in the Starlet's control register.
const (
	IPCCtrlY1 = 0x01
	IPCCtrlX2 = 0x02
	IPCCtrlX1 = 0x04
	IPCCtrlY2 = 0x08

	// IPCCtrlReset clears both X flags.
	IPCCtrlReset = IPCCtrlX1 | IPCCtrlX2
)

// Bit positions.
const (
	GPIO1PowerBit    = 0
	GPIO1ShutdownBit = 1
	GPIO1SlotLEDBit  = 5

	StrapsCompatBit = 1

	// ResetsSysBit is RSTBINB, the active low system reset.
	ResetsSysBit = 0
	// ResetsPPCHardBit and ResetsPPCSoftBit hold the Broadway in reset
	// while clear.
	ResetsPPCHardBit = 4
	ResetsPPCSoftBit = 5
)

// IOSFlags is where boot1/boot2 leave their flag words.
const (
	IOSFlags      = 0xffffff00
	IOSFlagsCount = 6
)

// RAM layout.
var (
	MEM1 = Region{Start: 0x00000000, Size: 24 << 20}
	MEM2 = Region{Start: 0x10000000, Size: 64 << 20}
)
