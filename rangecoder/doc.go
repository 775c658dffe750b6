// Copyright 2023 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rangecoder implements a byte-oriented range coder over finite
// discrete alphabets. It supports static models with a fixed probability
// distribution and adaptive models that learn symbol statistics while
// coding.
//
// The coder keeps a 32-bit interval (base, length) and writes or reads
// compressed data through a memory buffer. Encoder and decoder follow the
// same renormalization and carry-propagation protocol, so matching call
// sequences with matching model states produce bit-exact results.
package rangecoder
