// Copyright 2023 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arc

import (
	"bytes"
	"io"
	"math/rand"
	"testing"
)

func roundTrip(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(&buf)
	n, err := w.Write(data)
	if err != nil {
		t.Fatalf("Write error %s", err)
	}
	if n != len(data) {
		t.Fatalf("Write wrote %d bytes; want %d", n, len(data))
	}
	if err = w.Close(); err != nil {
		t.Fatalf("w.Close error %s", err)
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader error %s", err)
	}
	if r.Size() != int64(len(data)) {
		t.Fatalf("Size is %d; want %d", r.Size(), len(data))
	}
	var out bytes.Buffer
	if _, err = io.Copy(&out, r); err != nil {
		t.Fatalf("io.Copy error %s", err)
	}
	if !bytes.Equal(out.Bytes(), data) {
		t.Fatalf("decompressed data differs from input")
	}
	return out.Bytes()
}

func TestWriter(t *testing.T) {
	const text = "The quick brown fox jumps over the lazy dog."
	roundTrip(t, []byte(text))
}

func TestWriterEmpty(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.Close(); err != nil {
		t.Fatalf("w.Close error %s", err)
	}
	// An empty file is the bare header; no block follows.
	if buf.Len() != headerLen {
		t.Fatalf("empty archive has %d bytes; want %d",
			buf.Len(), headerLen)
	}
	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader error %s", err)
	}
	p := make([]byte, 16)
	n, err := r.Read(p)
	if n != 0 || err != io.EOF {
		t.Fatalf("Read returned %d, %v; want 0, io.EOF", n, err)
	}
}

func TestWriterZeros(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if _, err := w.Write(make([]byte, 10000)); err != nil {
		t.Fatalf("Write error %s", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("w.Close error %s", err)
	}
	if buf.Len() >= 100 {
		t.Fatalf("10000 zero bytes compressed to %d bytes;"+
			" want < 100", buf.Len())
	}
	roundTripBuf := buf.Bytes()
	r, err := NewReader(bytes.NewReader(roundTripBuf))
	if err != nil {
		t.Fatalf("NewReader error %s", err)
	}
	var out bytes.Buffer
	if _, err = io.Copy(&out, r); err != nil {
		t.Fatalf("io.Copy error %s", err)
	}
	if out.Len() != 10000 {
		t.Fatalf("decompressed %d bytes; want 10000", out.Len())
	}
	for i, b := range out.Bytes() {
		if b != 0 {
			t.Fatalf("byte %d is %d; want 0", i, b)
		}
	}
}

func TestWriterByteRange(t *testing.T) {
	data := make([]byte, 0, 256*100)
	for i := 0; i < 100; i++ {
		for b := 0; b < 256; b++ {
			data = append(data, byte(b))
		}
	}
	roundTrip(t, data)
}

func TestWriterMultiBlock(t *testing.T) {
	// More than a megabyte spans several blocks; mixing text-like runs
	// with random bytes exercises model adaptation across blocks.
	rnd := rand.New(rand.NewSource(47))
	data := make([]byte, 1<<20+12345)
	for i := range data {
		if rnd.Intn(3) == 0 {
			data[i] = byte(rnd.Intn(256))
		} else {
			data[i] = byte('a' + rnd.Intn(16))
		}
	}
	roundTrip(t, data)
}

func TestWriterRandom64K(t *testing.T) {
	rnd := rand.New(rand.NewSource(51))
	data := make([]byte, 1<<16)
	rnd.Read(data)

	var buf bytes.Buffer
	w := NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Write error %s", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("w.Close error %s", err)
	}
	// Random data cannot compress below its own size.
	if buf.Len() < len(data) {
		t.Fatalf("random data compressed to %d bytes; want >= %d",
			buf.Len(), len(data))
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader error %s", err)
	}
	var out bytes.Buffer
	if _, err = io.Copy(&out, r); err != nil {
		t.Fatalf("io.Copy error %s", err)
	}
	if !bytes.Equal(out.Bytes(), data) {
		t.Fatalf("decompressed data differs from input")
	}
}

func TestWriterBlockBoundaries(t *testing.T) {
	for _, n := range []int{blockSize - 1, blockSize, blockSize + 1,
		2 * blockSize} {
		data := bytes.Repeat([]byte{'x'}, n)
		roundTrip(t, data)
	}
}

func TestWriterAfterClose(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.Close(); err != nil {
		t.Fatalf("w.Close error %s", err)
	}
	if _, err := w.Write([]byte("late")); err == nil {
		t.Fatalf("Write after Close returned no error")
	}
	if err := w.Close(); err == nil {
		t.Fatalf("second Close returned no error")
	}
}
