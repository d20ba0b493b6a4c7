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

package framebuffer

import (
	"encoding/binary"

	"github.com/usbarmory/tamago/bits"
)

// Frame geometry.
const (
	Width  = 640
	Height = 480

	// SourceSize is the size in bytes of an ARGB8888 frame.
	SourceSize = Width * Height * 4
	// DestSize is the size in bytes of a packed 4:2:2 frame.
	DestSize = Width * Height * 2
	// Words is the number of macro-pixels in a frame.
	Words = DestSize / 4
)

// YCbCr returns the fixed point luma and chroma for an ARGB8888 pixel.
//
// All arithmetic is integer and each component is truncated once, after
// summation. The terms are ordered so that no intermediate goes negative.
func YCbCr(argb uint32) (y, cb, cr uint32) {
	r := bits.Get(&argb, 16, 0xff)
	g := bits.Get(&argb, 8, 0xff)
	b := bits.Get(&argb, 0, 0xff)

	y = (299*r + 587*g + 114*b) / 1000
	cb = (50000*b + 12800000 - 16874*r - 33126*g) / 100000
	cr = (50000*r + 12800000 - 41869*g - 8131*b) / 100000
	return
}

// PackPair converts two horizontally adjacent ARGB8888 pixels into a single
// Y1 Cb Y2 Cr macro-pixel, averaging the chroma of both pixels.
func PackPair(p1, p2 uint32) uint32 {
	y1, cb1, cr1 := YCbCr(p1)
	y2, cb2, cr2 := YCbCr(p2)

	var w uint32
	bits.SetN(&w, 24, 0xff, y1)
	bits.SetN(&w, 16, 0xff, (cb1+cb2)>>1)
	bits.SetN(&w, 8, 0xff, y2)
	bits.SetN(&w, 0, 0xff, (cr1+cr2)>>1)
	return w
}

// Convert fills dst with macro-pixels made from consecutive pixel pairs of
// src. Both buffers hold big-endian words. It converts as many words as fit
// in both buffers and returns that count.
func Convert(dst, src []byte) int {
	n := len(dst) / 4
	if m := len(src) / 8; m < n {
		n = m
	}
	for i := 0; i < n; i++ {
		p1 := binary.BigEndian.Uint32(src[i*8:])
		p2 := binary.BigEndian.Uint32(src[i*8+4:])
		binary.BigEndian.PutUint32(dst[i*4:], PackPair(p1, p2))
	}
	return n
}
