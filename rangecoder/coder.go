// Copyright 2023 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rangecoder

import "errors"

// Interval bounds of the coder. Whenever length falls below minLength a
// byte is shifted out of base (encoding) or into value (decoding).
const (
	minLength = 0x01000000
	maxLength = 0xFFFFFFFF
)

// Buffer size bounds accepted by SetBuffer.
const (
	MinBufferSize = 16
	MaxBufferSize = 1 << 24
)

// slack is the number of spare bytes kept behind the code buffer. The
// encoder may spill a few renormalization bytes past the nominal buffer
// size before StopEncoder detects the overflow.
const slack = 16

type coderMode int

const (
	modeIdle coderMode = iota
	modeEncoding
	modeDecoding
)

var (
	errBufferSize = errors.New("rangecoder: invalid code buffer size")
	errUserBuffer = errors.New("rangecoder: user buffer too small")
	errCoderBusy  = errors.New(
		"rangecoder: cannot set buffer while encoding or decoding")
)

// Coder is the encoder/decoder state machine. It owns the interval state
// and a code buffer holding the compressed form of a single block. A coder
// runs encode or decode sessions, never both at once; a session is opened
// with StartEncoder or StartDecoder and closed with the matching stop
// call.
//
// A Coder must not be used concurrently from multiple goroutines.
type Coder struct {
	buf        []byte
	p          int
	bufferSize int
	base       uint32
	value      uint32
	length     uint32
	mode       coderMode
}

// NewCoder creates a coder for code blocks of up to maxEncodedBytes
// bytes. If userBuffer is nil a buffer is allocated.
func NewCoder(maxEncodedBytes int, userBuffer []byte) (*Coder, error) {
	c := new(Coder)
	if err := c.SetBuffer(maxEncodedBytes, userBuffer); err != nil {
		return nil, err
	}
	return c, nil
}

// Buffer returns the code buffer. After StopEncoder the first byte count
// bytes hold the compressed block.
func (c *Coder) Buffer() []byte { return c.buf }

// SetBuffer binds the coder to a code buffer of maxEncodedBytes bytes,
// which must lie in [MinBufferSize, MaxBufferSize]. A nil userBuffer
// allocates a new buffer with slack for renormalization spill; an existing
// allocation is kept if it is large enough. The coder must be idle.
func (c *Coder) SetBuffer(maxEncodedBytes int, userBuffer []byte) error {
	if maxEncodedBytes < MinBufferSize || maxEncodedBytes > MaxBufferSize {
		return errBufferSize
	}
	if c.mode != modeIdle {
		return errCoderBusy
	}
	if userBuffer != nil {
		if len(userBuffer) < maxEncodedBytes {
			return errUserBuffer
		}
		c.bufferSize = maxEncodedBytes
		c.buf = userBuffer
		return nil
	}
	if maxEncodedBytes <= c.bufferSize && c.buf != nil {
		return nil
	}
	c.bufferSize = maxEncodedBytes
	c.buf = make([]byte, maxEncodedBytes+slack)
	return nil
}

// propagateCarry applies a deferred carry out of base to the bytes already
// emitted. A run of 0xFF bytes turns into zeros and the first byte below
// 0xFF is incremented. The overflow cannot reach beyond the first emitted
// byte.
func (c *Coder) propagateCarry() {
	p := c.p - 1
	for c.buf[p] == 0xFF {
		c.buf[p] = 0
		p--
	}
	c.buf[p]++
}

// renormEncode shifts the top byte out of base into the code buffer until
// length is at least minLength again. The loop body runs at least once.
func (c *Coder) renormEncode() {
	for {
		c.buf[c.p] = byte(c.base >> 24)
		c.p++
		c.base <<= 8
		c.length <<= 8
		if c.length >= minLength {
			return
		}
	}
}

// renormDecode shifts buffer bytes into value until length is at least
// minLength again. Reads past the buffer end yield zero bytes; the final
// bytes written by StopEncoder guarantee that such bits can no longer
// change a decoded symbol.
func (c *Coder) renormDecode() {
	for {
		c.p++
		var b byte
		if c.p < len(c.buf) {
			b = c.buf[c.p]
		}
		c.value = c.value<<8 | uint32(b)
		c.length <<= 8
		if c.length >= minLength {
			return
		}
	}
}

// encode narrows the interval to the subdivision of symbol s under the
// model distribution.
func (c *Coder) encode(s uint32, m *model) {
	initBase := c.base
	var x uint32
	if s == m.lastSymbol {
		// The total mass 1<<lengthShift is implicit; the last
		// symbol takes the rest of the interval.
		x = m.distribution[s] * (c.length >> lengthShift)
		c.base += x
		c.length -= x
	} else {
		c.length >>= lengthShift
		x = m.distribution[s] * c.length
		c.base += x
		c.length = m.distribution[s+1]*c.length - x
	}
	if initBase > c.base {
		c.propagateCarry()
	}
	if c.length < minLength {
		c.renormEncode()
	}
}

// decode finds the symbol whose subdivision contains value and narrows
// the interval to it.
func (c *Coder) decode(m *model) uint32 {
	var n, s, x uint32
	y := c.length

	if m.decoderTable != nil {
		c.length >>= lengthShift
		dv := c.value / c.length
		t := dv >> m.tableShift

		s = m.decoderTable[t]
		n = m.decoderTable[t+1] + 1
		for n > s+1 {
			k := (s + n) >> 1
			if m.distribution[k] > dv {
				n = k
			} else {
				s = k
			}
		}
		x = m.distribution[s] * c.length
		if s != m.lastSymbol {
			y = m.distribution[s+1] * c.length
		}
	} else {
		// Small alphabet: plain bisection on products.
		c.length >>= lengthShift
		n = m.dataSymbols
		k := n >> 1
		for {
			z := c.length * m.distribution[k]
			if z > c.value {
				n, y = k, z
			} else {
				s, x = k, z
			}
			k = (s + n) >> 1
			if k == s {
				break
			}
		}
	}

	c.value -= x
	c.length = y - x
	if c.length < minLength {
		c.renormDecode()
	}
	return s
}

// EncodeStatic encodes symbol s with a static model.
func (c *Coder) EncodeStatic(s uint32, m *StaticModel) {
	c.encode(s, &m.model)
}

// DecodeStatic decodes the next symbol with a static model.
func (c *Coder) DecodeStatic(m *StaticModel) uint32 {
	return c.decode(&m.model)
}

// EncodeAdaptive encodes symbol s and updates the adaptive model the same
// way DecodeAdaptive will on the other side.
func (c *Coder) EncodeAdaptive(s uint32, m *AdaptiveModel) {
	c.encode(s, &m.model)
	m.symbolCount[s]++
	m.symbolsUntilUpdate--
	if m.symbolsUntilUpdate == 0 {
		m.update(true)
	}
}

// DecodeAdaptive decodes the next symbol and updates the adaptive model.
func (c *Coder) DecodeAdaptive(m *AdaptiveModel) uint32 {
	s := c.decode(&m.model)
	m.symbolCount[s]++
	m.symbolsUntilUpdate--
	if m.symbolsUntilUpdate == 0 {
		m.update(false)
	}
	return s
}

// StartEncoder opens an encode session on an idle coder.
func (c *Coder) StartEncoder() {
	if c.mode != modeIdle {
		panic("rangecoder: cannot start encoder")
	}
	if c.bufferSize == 0 {
		panic("rangecoder: no code buffer set")
	}
	c.mode = modeEncoding
	c.base = 0
	c.length = maxLength
	c.p = 0
}

// StartDecoder opens a decode session. The code buffer must already hold
// the compressed block; the first four bytes initialize the code value.
func (c *Coder) StartDecoder() {
	if c.mode != modeIdle {
		panic("rangecoder: cannot start decoder")
	}
	if c.bufferSize == 0 {
		panic("rangecoder: no code buffer set")
	}
	c.mode = modeDecoding
	c.length = maxLength
	c.p = 3
	c.value = uint32(c.buf[0])<<24 | uint32(c.buf[1])<<16 |
		uint32(c.buf[2])<<8 | uint32(c.buf[3])
}

// StopEncoder closes the encode session and flushes the final interval so
// the decoder has enough precision to converge. It returns the number of
// meaningful bytes in the code buffer.
func (c *Coder) StopEncoder() int {
	if c.mode != modeEncoding {
		panic("rangecoder: invalid to stop encoder")
	}
	c.mode = modeIdle

	initBase := c.base
	if c.length > 2*minLength {
		c.base += minLength
		c.length = minLength >> 1 // one more output byte
	} else {
		c.base += minLength >> 1
		c.length = minLength >> 9 // two more output bytes
	}
	if initBase > c.base {
		c.propagateCarry()
	}
	c.renormEncode()

	if c.p > c.bufferSize {
		panic("rangecoder: code buffer overflow")
	}
	return c.p
}

// StopDecoder closes the decode session. No finalization is needed.
func (c *Coder) StopDecoder() {
	if c.mode != modeDecoding {
		panic("rangecoder: invalid to stop decoder")
	}
	c.mode = modeIdle
}
