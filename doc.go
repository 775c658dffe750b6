// Copyright 2023 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package arc supports the compression and decompression of arc files.
//
// An arc file consists of a 12-byte header carrying a magic number, the
// CRC-32 of the uncompressed data and its byte count, followed by a
// sequence of range-coded blocks covering up to 64 KiB of uncompressed
// data each. Every byte is coded with one of sixteen adaptive models
// selected by the low nibble of the previous byte; the models keep their
// learned statistics across block boundaries.
package arc
