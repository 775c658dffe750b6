// Copyright 2023 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rangecoder

import (
	"io"

	"github.com/pkg/errors"
)

// maxHeaderLen bounds the variable-length block header. Four 7-bit chunks
// cover every block size the coder buffer can hold.
const maxHeaderLen = 4

// ErrBlockSize reports a declared block length exceeding the capacity of
// the code buffer.
var ErrBlockSize = errors.New("rangecoder: block length exceeds code buffer")

// bReader converts an io.Reader into an io.ByteReader.
type bReader struct {
	io.Reader
	a []byte
}

func newByteReader(r io.Reader) io.ByteReader {
	if b, ok := r.(io.ByteReader); ok {
		return b
	}
	return &bReader{r, make([]byte, 1)}
}

func (b *bReader) ReadByte() (byte, error) {
	n, err := b.Read(b.a)
	if n == 1 {
		return b.a[0], nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return 0, err
}

// WriteBlock stops the encoder and writes the block to w: a
// variable-length header holding the code byte count in 7-bit
// little-endian chunks with 0x80 as continuation bit, followed by the code
// bytes. It returns the total number of bytes written.
func (c *Coder) WriteBlock(w io.Writer) (n int, err error) {
	codeBytes := c.StopEncoder()

	var header [maxHeaderLen]byte
	k := 0
	nb := uint32(codeBytes)
	for {
		b := byte(nb & 0x7F)
		if nb >>= 7; nb > 0 {
			b |= 0x80
		}
		header[k] = b
		k++
		if nb == 0 {
			break
		}
	}
	if _, err = w.Write(header[:k]); err != nil {
		return 0, errors.Wrap(err, "rangecoder: write block header")
	}
	if _, err = w.Write(c.buf[:codeBytes]); err != nil {
		return k, errors.Wrap(err, "rangecoder: write block")
	}
	return k + codeBytes, nil
}

// ReadBlock reads the block header and the declared number of code bytes
// from r into the code buffer and starts the decoder. A length beyond the
// code buffer capacity is a protocol error.
func (c *Coder) ReadBlock(r io.Reader) error {
	br := newByteReader(r)
	var codeBytes, shift uint32
	for k := 0; ; k++ {
		if k == maxHeaderLen {
			return errors.New("rangecoder: block header too long")
		}
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return errors.Wrap(err, "rangecoder: read block header")
		}
		codeBytes |= uint32(b&0x7F) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	if int(codeBytes) > c.bufferSize {
		return ErrBlockSize
	}
	if _, err := io.ReadFull(r, c.buf[:codeBytes]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return errors.Wrap(err, "rangecoder: read block")
	}
	// The decoder reads up to three bytes past the code; keep those
	// deterministic.
	for k := int(codeBytes); k < int(codeBytes)+4 && k < len(c.buf); k++ {
		c.buf[k] = 0
	}
	c.StartDecoder()
	return nil
}
