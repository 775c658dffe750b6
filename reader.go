// Copyright 2023 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arc

import (
	"io"

	"github.com/pkg/errors"

	"github.com/ulikunitz/arc/rangecoder"
)

// ErrCRC indicates that the decompressed data doesn't match the checksum
// stored in the file header. The range coder cannot detect corruption
// itself; it surfaces here after the last block has been decoded.
var ErrCRC = errors.New("arc: checksum mismatch")

// Reader decompresses arc files block by block.
type Reader struct {
	arc    io.Reader
	h      header
	models []*rangecoder.AdaptiveModel
	coder  *rangecoder.Coder
	crc    *crc32Hash

	block     []byte
	pos, n    int
	remaining uint32

	err error
}

// NewReader creates a reader decompressing the arc file read from arc.
// It consumes and verifies the file header.
func NewReader(arc io.Reader) (r *Reader, err error) {
	r = &Reader{arc: arc, crc: newCRC32()}
	p := make([]byte, headerLen)
	if _, err = io.ReadFull(arc, p); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, errors.Wrap(err, "arc: read file header")
	}
	if err = r.h.UnmarshalBinary(p); err != nil {
		return nil, err
	}
	r.models = newContextModels()
	if r.coder, err = rangecoder.NewCoder(codeBufferSize, nil); err != nil {
		return nil, err
	}
	r.block = make([]byte, blockSize)
	r.remaining = r.h.size
	return r, nil
}

// Size returns the uncompressed size stored in the file header.
func (r *Reader) Size() int64 { return int64(r.h.size) }

// nextBlock reads and decodes the next compressed block into the block
// buffer.
func (r *Reader) nextBlock() error {
	if err := r.coder.ReadBlock(r.arc); err != nil {
		return err
	}
	nb := r.remaining
	if nb > blockSize {
		nb = blockSize
	}
	block := r.block[:nb]
	context := 0
	for i := range block {
		b := byte(r.coder.DecodeAdaptive(r.models[context]))
		block[i] = b
		context = int(b) & contextMask
	}
	r.coder.StopDecoder()

	r.crc.Combine(crcUpdate(0, block))
	r.remaining -= nb
	r.pos, r.n = 0, int(nb)
	return nil
}

// Read returns decompressed data. After the size given in the header has
// been delivered, Read verifies the checksum and returns io.EOF or
// ErrCRC.
func (r *Reader) Read(p []byte) (n int, err error) {
	if r.err != nil {
		return 0, r.err
	}
	for n < len(p) {
		if r.pos == r.n {
			if r.remaining == 0 {
				if r.crc.Sum32() != r.h.crc {
					r.err = ErrCRC
				} else {
					r.err = io.EOF
				}
				return n, r.err
			}
			if err = r.nextBlock(); err != nil {
				r.err = err
				return n, err
			}
		}
		k := copy(p[n:], r.block[r.pos:r.n])
		r.pos += k
		n += k
	}
	return n, nil
}
