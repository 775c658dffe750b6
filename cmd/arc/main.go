// Copyright 2023 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command arc compresses and decompresses arc files.
//
//	arc -c data_file compressed_file
//	arc -d compressed_file new_file
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type options struct {
	compress   bool
	decompress bool
	force      bool
	quiet      bool
}

var opts options

var cmd = &cobra.Command{
	Use:           "arc {-c|-d} input output",
	Short:         "compress and decompress files with an adaptive range coder",
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if opts.compress == opts.decompress {
			return errors.New("exactly one of -c and -d must be given")
		}
		start := time.Now()
		var err error
		if opts.compress {
			err = compressFile(args[0], args[1], &opts)
		} else {
			err = decompressFile(args[0], args[1], &opts)
		}
		if err != nil {
			return err
		}
		if !opts.quiet {
			d := time.Since(start)
			fmt.Printf(" execution time: %.3f ms\n",
				float64(d.Microseconds())/1000)
		}
		return nil
	},
}

func init() {
	f := cmd.Flags()
	f.BoolVarP(&opts.compress, "compress", "c", false,
		"compress input to output")
	f.BoolVarP(&opts.decompress, "decompress", "d", false,
		"decompress input to output")
	f.BoolVarP(&opts.force, "force", "f", false,
		"overwrite the output file without asking")
	f.BoolVarP(&opts.quiet, "quiet", "q", false,
		"don't print the summary")
}

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "arc: %s\n", err)
		os.Exit(1)
	}
}
