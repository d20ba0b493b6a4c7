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

package main

import (
	"errors"
	"unsafe"

	"github.com/google/starlet-mini/internal/boot"
)

// defined in externs.s, which calls into the C drivers linked alongside.
func exceptionInitialize()
func memInitialize()
func memShutdown()
func cryptoInitialize()
func nandInitialize()
func boot2Init()
func sdhcInit() int32
func sdhcRead(lba uint32, n uint32, buf uintptr) int32
func boot2Run(hi uint32, lo uint32) uint32
func jumpTo(addr uint32)

// sdhc is the front SD slot.
type sdhc struct{}

const sdBlockSize = 512

var errSDHC = errors.New("SDHC request failed")

func (sdhc) BlockSize() uint {
	return sdBlockSize
}

func (sdhc) ReadBlocks(lba uint, b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if len(b)%sdBlockSize != 0 {
		return errors.New("unaligned read")
	}
	if sdhcRead(uint32(lba), uint32(len(b)/sdBlockSize), uintptr(unsafe.Pointer(&b[0]))) != 0 {
		return errSDHC
	}
	return nil
}

// boot2 asks the chainloader to launch a title.
type boot2 struct{}

func (boot2) Run(t boot.Title) uint32 {
	return boot2Run(t.Major, t.Minor)
}
