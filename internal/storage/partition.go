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
	"io"
	"os"
	"strings"

	"github.com/dsoprea/go-ext4"
	"github.com/golang/glog"
)

const (
	// ext4Magic is s_magic, found 0x38 bytes into the superblock.
	ext4Magic       = 0xef53
	ext4MagicOffset = 0x38
)

// Partition is an ext4 filesystem stored on a BlockDevice. It implements
// io.ReadSeeker over the partition's bytes.
type Partition struct {
	Dev BlockDevice
	// Offset is the byte offset of the partition on the device.
	Offset int64
	// Size is the length of the partition in bytes, or 0 if it runs to the
	// end of the device.
	Size int64

	pos     int64
	mounted bool
}

var _ io.ReadSeeker = &Partition{}

// Init checks that the device answers reads.
func (p *Partition) Init() error {
	if p.Dev == nil {
		return errors.New("no storage device")
	}
	bs := p.Dev.BlockSize()
	if bs == 0 {
		return errors.New("device reports a zero block size")
	}
	if err := p.Dev.ReadBlocks(uint(p.Offset/int64(bs)), make([]byte, bs)); err != nil {
		return fmt.Errorf("card not responding: %w", err)
	}
	return nil
}

// Mount checks that the partition holds an ext4 filesystem.
func (p *Partition) Mount() error {
	if err := p.checkMagic(); err != nil {
		return err
	}
	bgd, err := p.getBlockGroupDescriptor(ext4.InodeRootDirectory)
	if err != nil {
		return fmt.Errorf("failed to read block group descriptors: %w", err)
	}
	if _, err := ext4.NewInodeWithReadSeeker(bgd, p, ext4.InodeRootDirectory); err != nil {
		return fmt.Errorf("failed to read root directory inode: %w", err)
	}
	p.mounted = true
	glog.V(1).Infof("Mounted ext4 partition at offset %d", p.Offset)
	return nil
}

func (p *Partition) checkMagic() error {
	sb := make([]byte, ext4MagicOffset+2)
	if _, err := p.Seek(ext4.Superblock0Offset, io.SeekStart); err != nil {
		return err
	}
	if _, err := io.ReadFull(p, sb); err != nil {
		return fmt.Errorf("failed to read superblock: %w", err)
	}
	if m := binary.LittleEndian.Uint16(sb[ext4MagicOffset:]); m != ext4Magic {
		return fmt.Errorf("bad superblock magic 0x%04x", m)
	}
	return nil
}

func (p *Partition) getBlockGroupDescriptor(inode int) (*ext4.BlockGroupDescriptor, error) {
	if _, err := p.Seek(ext4.Superblock0Offset, io.SeekStart); err != nil {
		return nil, err
	}
	sb, err := ext4.NewSuperblockWithReader(p)
	if err != nil {
		return nil, err
	}
	bgdl, err := ext4.NewBlockGroupDescriptorListWithReadSeeker(p, sb)
	if err != nil {
		return nil, err
	}
	return bgdl.GetWithAbsoluteInode(inode)
}

func (p *Partition) end() int64 {
	if p.Size == 0 {
		return -1
	}
	return p.Offset + p.Size
}

// Read implements io.Reader.
func (p *Partition) Read(b []byte) (int, error) {
	if end := p.end(); end >= 0 {
		if p.pos >= end {
			return 0, io.EOF
		}
		if rem := end - p.pos; int64(len(b)) > rem {
			b = b[:rem]
		}
	}
	if len(b) == 0 {
		return 0, nil
	}

	bs := int64(p.Dev.BlockSize())
	start := p.pos / bs * bs
	stop := (p.pos + int64(len(b)) + bs - 1) / bs * bs
	buf := make([]byte, stop-start)
	if err := p.Dev.ReadBlocks(uint(start/bs), buf); err != nil {
		return 0, err
	}

	n := copy(b, buf[p.pos-start:])
	p.pos += int64(n)
	return n, nil
}

// Seek implements io.Seeker. Offsets are relative to the partition start.
func (p *Partition) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = p.Offset + offset
	case io.SeekCurrent:
		pos = p.pos + offset
	case io.SeekEnd:
		end := p.end()
		if end < 0 {
			return 0, errors.New("partition size unknown")
		}
		pos = end + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}

	if pos < p.Offset {
		return 0, fmt.Errorf("invalid offset %d (%d)", pos, offset)
	}
	if end := p.end(); end >= 0 && pos > end {
		return 0, fmt.Errorf("invalid offset %d (%d)", pos, offset)
	}
	p.pos = pos
	return pos - p.Offset, nil
}

// ReadAll implements FS.
func (p *Partition) ReadAll(fullPath string) ([]byte, error) {
	if !p.mounted {
		return nil, ErrNotMounted
	}
	fullPath = strings.TrimPrefix(fullPath, "/")

	bgd, err := p.getBlockGroupDescriptor(ext4.InodeRootDirectory)
	if err != nil {
		return nil, err
	}
	dw, err := ext4.NewDirectoryWalk(p, bgd, ext4.InodeRootDirectory)
	if err != nil {
		return nil, err
	}

	var inodeNumber int
	for {
		name, de, err := dw.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		if name == fullPath {
			inodeNumber = int(de.Data().Inode)
			break
		}
	}
	if inodeNumber == 0 {
		return nil, fmt.Errorf("%s: %w", fullPath, os.ErrNotExist)
	}

	bgd, err = p.getBlockGroupDescriptor(inodeNumber)
	if err != nil {
		return nil, err
	}
	inode, err := ext4.NewInodeWithReadSeeker(bgd, p, inodeNumber)
	if err != nil {
		return nil, err
	}

	en := ext4.NewExtentNavigatorWithReadSeeker(p, inode)
	r := ext4.NewInodeReader(en)
	return io.ReadAll(r)
}
