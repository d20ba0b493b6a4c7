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

package storage_test

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/starlet-mini/internal/storage"
	"github.com/google/starlet-mini/internal/storage/testonly"
)

type mbrEntry struct {
	typ         byte
	start, size uint32
}

func writeMBR(dev testonly.MemDev, entries ...mbrEntry) {
	b := make([]byte, 512)
	for i, e := range entries {
		off := 0x1be + 16*i
		b[off+4] = e.typ
		binary.LittleEndian.PutUint32(b[off+8:], e.start)
		binary.LittleEndian.PutUint32(b[off+12:], e.size)
	}
	b[510], b[511] = 0x55, 0xaa
	dev.Write(0, b)
}

func TestFirstPartition(t *testing.T) {
	for _, test := range []struct {
		desc       string
		entries    []mbrEntry
		noSig      bool
		wantErr    bool
		wantNoMBR  bool
		wantOffset int64
		wantSize   int64
	}{
		{
			desc:       "single partition",
			entries:    []mbrEntry{{typ: 0x83, start: 8, size: 24}},
			wantOffset: 8 * 512,
			wantSize:   24 * 512,
		}, {
			desc:       "first slot unused",
			entries:    []mbrEntry{{}, {typ: 0x83, start: 2048, size: 100}},
			wantOffset: 2048 * 512,
			wantSize:   100 * 512,
		}, {
			desc:    "empty table",
			wantErr: true,
		}, {
			desc:      "unpartitioned",
			noSig:     true,
			wantErr:   true,
			wantNoMBR: true,
		},
	} {
		t.Run(test.desc, func(t *testing.T) {
			dev := testonly.NewMemDev(t, 4)
			if !test.noSig {
				writeMBR(dev, test.entries...)
			}
			p, err := storage.FirstPartition(dev)
			if gotErr := err != nil; gotErr != test.wantErr {
				t.Fatalf("FirstPartition() = %v, want error %t", err, test.wantErr)
			}
			if got := errors.Is(err, storage.ErrNoMBR); got != test.wantNoMBR {
				t.Errorf("FirstPartition() = %v, want ErrNoMBR %t", err, test.wantNoMBR)
			}
			if err != nil {
				return
			}
			if p.Offset != test.wantOffset || p.Size != test.wantSize {
				t.Errorf("partition at %d+%d, want %d+%d", p.Offset, p.Size, test.wantOffset, test.wantSize)
			}
		})
	}
}
