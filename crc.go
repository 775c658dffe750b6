// Copyright 2023 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arc

import "hash"

// crcGeneration holds the data the 256-entry CRC table is generated from.
var crcGeneration = [8]uint32{
	0xEC1A5A3E, 0x5975F5D7, 0xB2EBEBAE, 0xE49696F7,
	0x486C6C45, 0x90D8D88A, 0xA0F0F0BF, 0xC0A0A0D5,
}

var crcTable [256]uint32

func init() {
	for k := 0; k < 8; k++ {
		s, g := uint32(1)<<k, crcGeneration[k]
		for n := uint32(0); n < s; n++ {
			crcTable[n+s] = crcTable[n] ^ g
		}
	}
}

// crcUpdate feeds p into the checksum.
func crcUpdate(crc uint32, p []byte) uint32 {
	for _, b := range p {
		crc = crc>>8 ^ crcTable[byte(crc)^b]
	}
	return crc
}

// crc32Hash implements the arc checksum as a hash.Hash32. The file
// checksum is the XOR of the per-block checksums, folded in with Combine.
type crc32Hash struct {
	crc uint32
}

func newCRC32() *crc32Hash { return new(crc32Hash) }

func (h *crc32Hash) Write(p []byte) (n int, err error) {
	h.crc = crcUpdate(h.crc, p)
	return len(p), nil
}

func (h *crc32Hash) Sum(b []byte) []byte {
	var p [4]byte
	putUint32LE(p[:], h.crc)
	return append(b, p[:]...)
}

func (h *crc32Hash) Sum32() uint32  { return h.crc }
func (h *crc32Hash) Reset()         { h.crc = 0 }
func (h *crc32Hash) Size() int      { return 4 }
func (h *crc32Hash) BlockSize() int { return 1 }

// Combine folds the checksum of another block into h.
func (h *crc32Hash) Combine(crc uint32) { h.crc ^= crc }

var _ hash.Hash32 = (*crc32Hash)(nil)
