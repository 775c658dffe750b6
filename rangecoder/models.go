// Copyright 2023 Ulrich Kunitz. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rangecoder

import (
	"errors"
	"fmt"
)

// Model probabilities are 15-bit fixed-point values. The cumulative
// distribution stores for every symbol the mass strictly below it; the
// total mass 1<<lengthShift is implicit and never stored.
const (
	lengthShift = 15
	maxCount    = 1 << lengthShift
)

// MaxSymbols is the largest supported alphabet size.
const MaxSymbols = 1 << 11

var (
	errSymbols = errors.New("rangecoder: invalid number of data symbols")
	errProbSum = errors.New("rangecoder: invalid probabilities")
)

// model carries the fields shared by static and adaptive models: the
// alphabet size, the cumulative distribution and the optional decoder
// lookup table used to narrow the bisection search while decoding.
type model struct {
	dataSymbols  uint32
	lastSymbol   uint32
	distribution []uint32
	decoderTable []uint32
	tableSize    uint32
	tableShift   uint32
}

// initAlphabet sets the alphabet size and allocates the distribution and,
// for alphabets larger than 16 symbols, the decoder lookup table.
func (m *model) initAlphabet(n uint32) error {
	if n < 2 || n > MaxSymbols {
		return errSymbols
	}
	if m.dataSymbols == n {
		return nil
	}
	m.dataSymbols = n
	m.lastSymbol = n - 1
	m.distribution = make([]uint32, n)
	if n > 16 {
		tableBits := uint32(3)
		for n > 1<<(tableBits+2) {
			tableBits++
		}
		m.tableSize = 1<<tableBits + 4
		m.tableShift = lengthShift - tableBits
		// The fill loop writes slots up to tableSize+1.
		m.decoderTable = make([]uint32, m.tableSize+2)
	} else {
		m.decoderTable = nil
		m.tableSize = 0
		m.tableShift = 0
	}
	return nil
}

// StaticModel provides a fixed cumulative distribution to the coder. It is
// immutable after SetDistribution.
type StaticModel struct {
	model
}

// NewStaticModel creates a static model for an alphabet of n symbols. If
// probs is nil all symbols are equiprobable; otherwise probs must contain
// one probability per symbol.
func NewStaticModel(n uint32, probs []float64) (*StaticModel, error) {
	m := new(StaticModel)
	if err := m.SetDistribution(n, probs); err != nil {
		return nil, err
	}
	return m, nil
}

// ModelSymbols returns the alphabet size.
func (m *StaticModel) ModelSymbols() uint32 { return m.dataSymbols }

// SetDistribution configures the alphabet and the symbol probabilities.
// Each probability must lie in [0.0001, 0.9999] and the sum over all
// symbols must be 1 within a tolerance of 0.0001. On error the model must
// not be used for coding.
func (m *StaticModel) SetDistribution(n uint32, probs []float64) error {
	if err := m.initAlphabet(n); err != nil {
		return err
	}
	if probs != nil && uint32(len(probs)) != n {
		return fmt.Errorf(
			"rangecoder: %d probabilities for %d symbols",
			len(probs), n)
	}

	var s uint32
	sum, p := 0.0, 1.0/float64(n)
	for k := uint32(0); k < n; k++ {
		if probs != nil {
			p = probs[k]
		}
		if p < 0.0001 || p > 0.9999 {
			return fmt.Errorf(
				"rangecoder: invalid symbol probability %g", p)
		}
		m.distribution[k] = uint32(sum * (1 << lengthShift))
		sum += p
		if m.tableSize == 0 {
			continue
		}
		w := m.distribution[k] >> m.tableShift
		for s < w {
			s++
			m.decoderTable[s] = k - 1
		}
	}
	if m.tableSize != 0 {
		m.decoderTable[0] = 0
		for s <= m.tableSize {
			s++
			m.decoderTable[s] = n - 1
		}
	}
	if sum < 0.9999 || sum > 1.0001 {
		return errProbSum
	}
	return nil
}

// AdaptiveModel learns the symbol distribution while coding. The coder
// bumps the count of every coded symbol and triggers a model update after
// updateCycle symbols. Encoder and decoder perform identical updates, so
// both sides stay in lockstep without transmitting model state.
type AdaptiveModel struct {
	model
	symbolCount        []uint32
	totalCount         uint32
	updateCycle        uint32
	symbolsUntilUpdate uint32
}

// NewAdaptiveModel creates an adaptive model for an alphabet of n symbols
// with a uniform initial distribution.
func NewAdaptiveModel(n uint32) (*AdaptiveModel, error) {
	m := new(AdaptiveModel)
	if err := m.SetAlphabet(n); err != nil {
		return nil, err
	}
	return m, nil
}

// ModelSymbols returns the alphabet size.
func (m *AdaptiveModel) ModelSymbols() uint32 { return m.dataSymbols }

// SetAlphabet configures the alphabet size and resets the model to the
// uniform distribution.
func (m *AdaptiveModel) SetAlphabet(n uint32) error {
	if err := m.initAlphabet(n); err != nil {
		return err
	}
	if uint32(len(m.symbolCount)) != n {
		m.symbolCount = make([]uint32, n)
	}
	m.Reset()
	return nil
}

// Reset restores the uniform distribution and restarts the update
// schedule.
func (m *AdaptiveModel) Reset() {
	if m.dataSymbols == 0 {
		return
	}
	m.totalCount = 0
	m.updateCycle = m.dataSymbols
	for k := range m.symbolCount {
		m.symbolCount[k] = 1
	}
	m.update(false)
	m.updateCycle = (m.dataSymbols + 6) >> 1
	m.symbolsUntilUpdate = m.updateCycle
}

// update recomputes the cumulative distribution from the symbol counts.
// When the total count exceeds maxCount all counts are halved with an
// upward bias, so no count ever drops to zero. Encoders don't search
// symbols, so the decoder table rebuild is skipped for them. The update
// period grows by a factor of 5/4 up to (dataSymbols+6)<<3.
func (m *AdaptiveModel) update(fromEncoder bool) {
	m.totalCount += m.updateCycle
	if m.totalCount > maxCount {
		m.totalCount = 0
		for k := range m.symbolCount {
			m.symbolCount[k] = (m.symbolCount[k] + 1) >> 1
			m.totalCount += m.symbolCount[k]
		}
	}

	var sum, s uint32
	scale := uint32(0x80000000 / m.totalCount)

	if fromEncoder || m.tableSize == 0 {
		for k := uint32(0); k < m.dataSymbols; k++ {
			m.distribution[k] = (scale * sum) >> (31 - lengthShift)
			sum += m.symbolCount[k]
		}
	} else {
		for k := uint32(0); k < m.dataSymbols; k++ {
			m.distribution[k] = (scale * sum) >> (31 - lengthShift)
			sum += m.symbolCount[k]
			w := m.distribution[k] >> m.tableShift
			for s < w {
				s++
				m.decoderTable[s] = k - 1
			}
		}
		m.decoderTable[0] = 0
		for s <= m.tableSize {
			s++
			m.decoderTable[s] = m.dataSymbols - 1
		}
	}

	m.updateCycle = (5 * m.updateCycle) >> 2
	if maxCycle := (m.dataSymbols + 6) << 3; m.updateCycle > maxCycle {
		m.updateCycle = maxCycle
	}
	m.symbolsUntilUpdate = m.updateCycle
}
