// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package matrix implements the row-strobed 8×8 key matrix scan and its
// per-cell debouncer.
package matrix

import (
	"time"

	"periph.io/x/periph/conn/gpio"

	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/hal"
	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/keymap"
	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/ringbuf"
)

// DebounceTicks is the fixed number of scan passes a candidate transition
// must survive before it is committed.
const DebounceTicks = 20

// RowSettle is how long a row strobe is held low before the column port
// is sampled.
const RowSettle = 10 * time.Microsecond

// keyCell is the per-cell debounce state.
type keyCell struct {
	released bool
	debounce uint8
}

// Scanner periodically samples the 8×8 matrix and pushes confirmed
// key-transition scan codes into an outbound ringbuf.Buffer.
//
// Scanner is not safe for concurrent ScanOnce calls; it is meant to be
// driven from a single foreground goroutine.
type Scanner struct {
	km   keymap.Keymap
	rows [keymap.Rows]hal.RowPin
	cols hal.ColumnPort
	out  *ringbuf.Buffer

	cells [keymap.Rows][keymap.Cols]keyCell

	// settle overrides RowSettle in tests; zero means use RowSettle.
	settle time.Duration
}

// New returns a Scanner wired to the given keymap, row strobe pins, column
// port, and outbound buffer. All cells initialize to released = true.
func New(km keymap.Keymap, rows [keymap.Rows]hal.RowPin, cols hal.ColumnPort, out *ringbuf.Buffer) *Scanner {
	s := &Scanner{km: km, rows: rows, cols: cols, out: out}
	for r := range s.cells {
		for c := range s.cells[r] {
			s.cells[r][c].released = true
		}
	}
	return s
}

func (s *Scanner) settleDelay() time.Duration {
	if s.settle > 0 {
		return s.settle
	}
	return RowSettle
}

// ScanOnce strobes every row once, samples the column port after the
// row-settle delay, runs the debouncer over every cell, and pushes any
// confirmed transitions to the outbound buffer. Call this in a tight loop
// from the foreground goroutine.
func (s *Scanner) ScanOnce() {
	for r := 0; r < keymap.Rows; r++ {
		row := s.rows[r]
		if row == nil {
			continue
		}
		_ = row.Out(gpio.Low)
		time.Sleep(s.settleDelay())
		colByte := s.cols.Read()
		_ = row.In(gpio.PullUp, gpio.NoEdge)

		for c := 0; c < keymap.Cols; c++ {
			sample := colByte&(1<<uint(c)) != 0
			s.debounce(r, c, sample)
		}
	}
}

// debounce runs the per-cell algorithm for one (row, col) cell given this
// pass's sampled level, and emits on confirmation.
//
// The "believe the first edge" quirk is intentional: released is updated
// the instant a candidate transition is armed, not when it is confirmed.
// If the level reverts before the countdown completes, the flip still
// stands; only the emission is suppressed.
func (s *Scanner) debounce(row, col int, sample bool) {
	cell := &s.cells[row][col]
	switch {
	case cell.debounce > 1:
		cell.debounce--
	case cell.debounce == 1:
		cell.debounce = 0
		if sample == cell.released {
			s.emit(row, col, cell.released)
		}
	default: // cell.debounce == 0
		if sample != cell.released {
			cell.released = sample
			cell.debounce = DebounceTicks
		}
	}
}

// Pressed returns a snapshot of which cells are currently committed as
// pressed. It exists for diagnostics (monitor's matrix display); it is not
// synchronized with ScanOnce and is meant to be read from a different
// goroutine than the one driving the scan loop.
func (s *Scanner) Pressed() [keymap.Rows][keymap.Cols]bool {
	var out [keymap.Rows][keymap.Cols]bool
	for r := range s.cells {
		for c := range s.cells[r] {
			out[r][c] = !s.cells[r][c].released
		}
	}
	return out
}

// emit pushes the scan-code sequence for a confirmed transition of the
// cell at (row, col) to released.
func (s *Scanner) emit(row, col int, released bool) {
	code := s.km.At(row, col)
	if code == 0 {
		return
	}
	seq := make([]byte, 0, 3)
	if keymap.Extended(code) {
		seq = append(seq, 0xE0)
	}
	if released {
		seq = append(seq, 0xF0)
	}
	seq = append(seq, code)
	s.out.PushAll(seq...)
}
