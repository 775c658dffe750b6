// Copyright 2023 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/ulikunitz/arc"
)

// countWriter counts the bytes written through it.
type countWriter struct {
	w io.Writer
	n int64
}

func (cw *countWriter) Write(p []byte) (n int, err error) {
	n, err = cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// openOutput creates the output file. An existing file is only
// overwritten after confirmation on the terminal, unless force is set.
func openOutput(name string, force bool) (f *os.File, err error) {
	if !force {
		if _, err = os.Stat(name); err == nil {
			fmt.Printf("overwrite %s? (y = yes, else quit) ", name)
			sc := bufio.NewScanner(os.Stdin)
			sc.Buffer(make([]byte, 64), 64)
			if !sc.Scan() ||
				!strings.HasPrefix(sc.Text(), "y") {
				os.Exit(0)
			}
		}
	}
	f, err = os.Create(name)
	return f, errors.Wrapf(err, "cannot open output file %s", name)
}

// compressFile compresses the data file into an arc file.
func compressFile(dataName, arcName string, opts *options) error {
	in, err := os.Open(dataName)
	if err != nil {
		return errors.Wrapf(err, "cannot open input file %s", dataName)
	}
	defer in.Close()
	out, err := openOutput(arcName, opts.force)
	if err != nil {
		return err
	}
	defer out.Close()

	cw := &countWriter{w: out}
	w := arc.NewWriter(cw)
	dataBytes, err := io.Copy(w, in)
	if err != nil {
		return errors.Wrapf(err, "cannot read input file %s", dataName)
	}
	if err = w.Close(); err != nil {
		return errors.Wrapf(err, "cannot write arc file %s", arcName)
	}
	if err = out.Close(); err != nil {
		return errors.Wrapf(err, "cannot write arc file %s", arcName)
	}

	if !opts.quiet {
		ratio := 0.0
		if cw.n > 0 {
			ratio = float64(dataBytes) / float64(cw.n)
		}
		fmt.Printf(" compressed file size = %d bytes"+
			" (%.3f:1 compression)\n", cw.n, ratio)
	}
	return nil
}

// decompressFile restores the data file from an arc file.
func decompressFile(arcName, dataName string, opts *options) error {
	in, err := os.Open(arcName)
	if err != nil {
		return errors.Wrapf(err, "cannot open input file %s", arcName)
	}
	defer in.Close()
	r, err := arc.NewReader(bufio.NewReader(in))
	if err != nil {
		return err
	}
	out, err := openOutput(dataName, opts.force)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err = io.Copy(out, r); err != nil {
		return errors.Wrapf(err, "cannot decompress %s", arcName)
	}
	if err = out.Close(); err != nil {
		return errors.Wrapf(err, "cannot write output file %s", dataName)
	}
	return nil
}
