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

// Package storage provides read access to the files on the front SD slot.
//
// The SD host controller driver itself lives outside of this module; all it
// needs to provide is a BlockDevice.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// BlockDevice is a block addressed storage device.
type BlockDevice interface {
	// BlockSize returns the size in bytes of each block.
	BlockSize() uint
	// ReadBlocks reads len(b) bytes starting at block lba into b. The length
	// of b must be a multiple of the block size.
	ReadBlocks(lba uint, b []byte) error
}

// FS is a mounted filesystem.
type FS interface {
	// ReadAll returns the contents of the file at the given absolute path.
	ReadAll(path string) ([]byte, error)
}

// ErrNotMounted is returned when reading before a successful Mount.
var ErrNotMounted = errors.New("filesystem not mounted")

// FileDevice is a BlockDevice backed by a disk image on the host.
type FileDevice struct {
	f         *os.File
	blockSize uint
	size      int64
}

// OpenFileDevice opens the disk image at path. The caller must Close the
// returned device.
func OpenFileDevice(path string, blockSize uint) (*FileDevice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open disk image: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat disk image: %w", err)
	}
	return &FileDevice{f: f, blockSize: blockSize, size: fi.Size()}, nil
}

// Close releases the image file.
func (d *FileDevice) Close() error {
	return d.f.Close()
}

// BlockSize implements BlockDevice.
func (d *FileDevice) BlockSize() uint {
	return d.blockSize
}

// ReadBlocks implements BlockDevice. Reads past the end of the image return
// zeroes.
func (d *FileDevice) ReadBlocks(lba uint, b []byte) error {
	if uint(len(b))%d.blockSize != 0 {
		return fmt.Errorf("read of %d bytes is not a multiple of the block size %d", len(b), d.blockSize)
	}
	off := int64(lba) * int64(d.blockSize)
	n, err := d.f.ReadAt(b, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	for i := n; i < len(b); i++ {
		b[i] = 0
	}
	return nil
}

// Blocks returns the number of whole blocks in the image.
func (d *FileDevice) Blocks() uint {
	return uint(d.size / int64(d.blockSize))
}
