// Copyright 2023 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arc

import (
	"bytes"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/ulikunitz/arc/rangecoder"
)

// blockSize is the maximum number of uncompressed bytes covered by a
// single range-coded block.
const blockSize = 65536

// codeBufferSize is the capacity of the code buffer for a single block. A
// byte coded with the minimum adaptive model probability costs about 15
// bits, so twice the block size holds the code of any block.
const codeBufferSize = 2 * blockSize

// numModels is the number of adaptive context models. It must be a power
// of two; the model for a byte is selected by the low bits of the
// previous byte.
const (
	numModels   = 16
	contextMask = numModels - 1
)

var errWriterClosed = errors.New("arc: writer is closed")

// ErrTooLarge indicates that the uncompressed data doesn't fit the
// 32-bit size field of the file header.
var ErrTooLarge = errors.New("arc: data exceeds 4 GiB - 1 bytes")

// newContextModels creates the sixteen byte-alphabet models shared by all
// blocks of a file.
func newContextModels() []*rangecoder.AdaptiveModel {
	models := make([]*rangecoder.AdaptiveModel, numModels)
	for i := range models {
		m, err := rangecoder.NewAdaptiveModel(256)
		if err != nil {
			panic(err)
		}
		models[i] = m
	}
	return models
}

// Writer compresses data into the arc file format. Because the file
// header carries the checksum and size of the whole uncompressed data,
// the writer buffers everything written to it; the output is produced by
// Close.
type Writer struct {
	arc io.Writer
	buf bytes.Buffer
	err error
}

// NewWriter creates a writer compressing data into the arc format.
func NewWriter(arc io.Writer) *Writer {
	return &Writer{arc: arc}
}

// Write buffers p for compression at Close time.
func (w *Writer) Write(p []byte) (n int, err error) {
	if w.err != nil {
		return 0, w.err
	}
	if uint64(w.buf.Len())+uint64(len(p)) > math.MaxUint32 {
		w.err = ErrTooLarge
		return 0, w.err
	}
	return w.buf.Write(p)
}

// Close compresses the buffered data and writes the complete arc file:
// the header followed by one block per 64 KiB of data. The sixteen
// context models carry their statistics from block to block; only the
// context index restarts at zero for each block.
func (w *Writer) Close() error {
	if w.err != nil {
		return w.err
	}
	data := w.buf.Bytes()

	h := header{size: uint32(len(data))}
	crc := newCRC32()
	for p := data; len(p) > 0; {
		nb := blockSize
		if len(p) < nb {
			nb = len(p)
		}
		crc.Combine(crcUpdate(0, p[:nb]))
		p = p[nb:]
	}
	h.crc = crc.Sum32()

	p, err := h.MarshalBinary()
	if err != nil {
		w.err = err
		return err
	}
	if _, err = w.arc.Write(p); err != nil {
		w.err = errors.Wrap(err, "arc: write file header")
		return w.err
	}

	models := newContextModels()
	coder, err := rangecoder.NewCoder(codeBufferSize, nil)
	if err != nil {
		w.err = err
		return err
	}
	for off := 0; off < len(data); off += blockSize {
		end := off + blockSize
		if end > len(data) {
			end = len(data)
		}
		coder.StartEncoder()
		context := 0
		for _, b := range data[off:end] {
			coder.EncodeAdaptive(uint32(b), models[context])
			context = int(b) & contextMask
		}
		if _, err = coder.WriteBlock(w.arc); err != nil {
			w.err = err
			return err
		}
	}

	w.err = errWriterClosed
	return nil
}
