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

package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	mbrSize         = 512
	mbrTableOffset  = 0x1be
	mbrEntrySize    = 16
	mbrEntries      = 4
	mbrSignatureOff = 0x1fe
)

// ErrNoMBR is returned by FirstPartition for devices without a partition
// table, which may hold a filesystem at offset 0.
var ErrNoMBR = errors.New("no MBR partition table")

// FirstPartition returns the first used primary partition listed in the
// device's MBR.
func FirstPartition(dev BlockDevice) (*Partition, error) {
	bs := dev.BlockSize()
	if bs == 0 || bs > mbrSize || mbrSize%bs != 0 {
		return nil, fmt.Errorf("unsupported block size %d", bs)
	}
	b := make([]byte, mbrSize)
	if err := dev.ReadBlocks(0, b); err != nil {
		return nil, fmt.Errorf("failed to read MBR: %w", err)
	}
	if b[mbrSignatureOff] != 0x55 || b[mbrSignatureOff+1] != 0xaa {
		return nil, ErrNoMBR
	}
	for i := 0; i < mbrEntries; i++ {
		e := b[mbrTableOffset+i*mbrEntrySize:][:mbrEntrySize]
		if e[4] == 0 {
			continue
		}
		start := binary.LittleEndian.Uint32(e[8:])
		n := binary.LittleEndian.Uint32(e[12:])
		if start == 0 || n == 0 {
			continue
		}
		return &Partition{
			Dev:    dev,
			Offset: int64(start) * mbrSize,
			Size:   int64(n) * mbrSize,
		}, nil
	}
	return nil, errors.New("MBR lists no partitions")
}
