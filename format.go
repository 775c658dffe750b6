// Copyright 2023 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arc

import "errors"

// fileID identifies an arc file. It is stored little-endian as the first
// four header bytes.
const fileID = 0xA8BC3B39

// headerLen is the length of the file header in bytes.
const headerLen = 12

// ErrFormat indicates that the file doesn't start with a valid arc
// header.
var ErrFormat = errors.New("arc: invalid file header")

func putUint32LE(p []byte, u uint32) {
	p[0] = byte(u)
	p[1] = byte(u >> 8)
	p[2] = byte(u >> 16)
	p[3] = byte(u >> 24)
}

func uint32LE(p []byte) uint32 {
	return uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16 |
		uint32(p[3])<<24
}

// header represents the 12-byte arc file header: the file magic, the
// CRC-32 of the uncompressed data and its byte count.
type header struct {
	crc  uint32
	size uint32
}

// MarshalBinary encodes the header.
func (h *header) MarshalBinary() (data []byte, err error) {
	data = make([]byte, headerLen)
	putUint32LE(data, fileID)
	putUint32LE(data[4:], h.crc)
	putUint32LE(data[8:], h.size)
	return data, nil
}

// UnmarshalBinary decodes the header and verifies the file magic.
func (h *header) UnmarshalBinary(data []byte) error {
	if len(data) != headerLen {
		return errors.New("arc: wrong header length")
	}
	if uint32LE(data) != fileID {
		return ErrFormat
	}
	h.crc = uint32LE(data[4:])
	h.size = uint32LE(data[8:])
	return nil
}
