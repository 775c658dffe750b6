// Copyright 2023 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rangecoder_test

import (
	"bytes"
	"crypto/sha256"
	"io/fs"
	"testing"

	"github.com/ulikunitz/arc/rangecoder"
	"github.com/ulikunitz/zdata"
)

type file struct {
	Name string
	Data []byte
}

func loadFiles(corpus fs.FS) (files []file, err error) {
	err = fs.WalkDir(corpus, ".",
		func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				return nil
			}
			data, err := fs.ReadFile(corpus, path)
			if err != nil {
				return err
			}
			files = append(files, file{Name: path, Data: data})
			return nil
		})
	return files, err
}

// chunkSize is the number of bytes encoded per block. The code buffer
// holds twice that, since a symbol coded with the minimum model
// probability costs 15 bits.
const chunkSize = 1 << 16

func TestSilesia(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping corpus test in short mode")
	}
	files, err := loadFiles(zdata.Silesia)
	if err != nil {
		t.Fatalf("loadFiles(zdata.Silesia) error %s", err)
	}
	if len(files) == 0 {
		t.Fatalf("Silesia corpus is empty")
	}

	for _, f := range files {
		f := f
		t.Run(f.Name, func(t *testing.T) {
			hsum := sha256.Sum256(f.Data)

			em, err := rangecoder.NewAdaptiveModel(256)
			if err != nil {
				t.Fatalf("NewAdaptiveModel error %s", err)
			}
			c, err := rangecoder.NewCoder(2*chunkSize, nil)
			if err != nil {
				t.Fatalf("NewCoder error %s", err)
			}
			buf := new(bytes.Buffer)
			for p := f.Data; len(p) > 0; {
				nb := chunkSize
				if len(p) < nb {
					nb = len(p)
				}
				c.StartEncoder()
				for _, b := range p[:nb] {
					c.EncodeAdaptive(uint32(b), em)
				}
				if _, err = c.WriteBlock(buf); err != nil {
					t.Fatalf("%s: WriteBlock error %s",
						f.Name, err)
				}
				p = p[nb:]
			}
			t.Logf("%s: %d bytes encoded to %d bytes",
				f.Name, len(f.Data), buf.Len())

			dm, err := rangecoder.NewAdaptiveModel(256)
			if err != nil {
				t.Fatalf("NewAdaptiveModel error %s", err)
			}
			d, err := rangecoder.NewCoder(2*chunkSize, nil)
			if err != nil {
				t.Fatalf("NewCoder error %s", err)
			}
			h := sha256.New()
			out := make([]byte, chunkSize)
			for remaining := len(f.Data); remaining > 0; {
				nb := chunkSize
				if remaining < nb {
					nb = remaining
				}
				if err = d.ReadBlock(buf); err != nil {
					t.Fatalf("%s: ReadBlock error %s",
						f.Name, err)
				}
				for i := 0; i < nb; i++ {
					out[i] = byte(d.DecodeAdaptive(dm))
				}
				d.StopDecoder()
				h.Write(out[:nb])
				remaining -= nb
			}
			gsum := h.Sum(nil)
			if !bytes.Equal(gsum, hsum[:]) {
				t.Errorf("%s: got %x; want %x",
					f.Name, gsum, hsum)
			}
		})
	}
}
