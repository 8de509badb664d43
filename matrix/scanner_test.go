// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package matrix

import (
	"testing"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/physic"

	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/hal"
	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/keymap"
	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/ringbuf"
)

// scriptedColumnPort returns byRow[active] on Read, where active tracks
// whichever row pin was most recently driven low — letting a test script
// a distinct column byte per row.
type scriptedColumnPort struct {
	byRow  [keymap.Rows]byte
	active int
}

func (s *scriptedColumnPort) Read() byte { return s.byRow[s.active] }

// trackingRowPin is a minimal gpio.PinIO double that tells the shared
// scriptedColumnPort which row is currently strobed low.
type trackingRowPin struct {
	idx int
	col *scriptedColumnPort
}

func (t *trackingRowPin) String() string              { return "row" }
func (t *trackingRowPin) Halt() error                 { return nil }
func (t *trackingRowPin) Name() string                { return "row" }
func (t *trackingRowPin) Number() int                 { return t.idx }
func (t *trackingRowPin) Function() string            { return "" }
func (t *trackingRowPin) In(gpio.Pull, gpio.Edge) error { return nil }
func (t *trackingRowPin) Read() gpio.Level            { return gpio.High }
func (t *trackingRowPin) WaitForEdge(time.Duration) bool { return false }
func (t *trackingRowPin) DefaultPull() gpio.Pull      { return gpio.PullUp }
func (t *trackingRowPin) Pull() gpio.Pull             { return gpio.PullUp }
func (t *trackingRowPin) PWM(gpio.Duty, physic.Frequency) error { return nil }
func (t *trackingRowPin) Out(l gpio.Level) error {
	if l == gpio.Low {
		t.col.active = t.idx
	}
	return nil
}

var _ gpio.PinIO = (*trackingRowPin)(nil)

type harness struct {
	s   *Scanner
	col *scriptedColumnPort
	out *ringbuf.Buffer
}

func newHarness(km keymap.Keymap) *harness {
	h := &harness{out: ringbuf.New(), col: &scriptedColumnPort{}}
	for i := range h.col.byRow {
		h.col.byRow[i] = 0xFF // every column released by default
	}
	var rows [keymap.Rows]hal.RowPin
	for i := range rows {
		rows[i] = &trackingRowPin{idx: i, col: h.col}
	}
	h.s = New(km, rows, h.col, h.out)
	return h
}

func drain(b *ringbuf.Buffer) []byte {
	var out []byte
	for {
		v, ok := b.Pop()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

func assertBytes(t *testing.T, got, want []byte) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %#v, want %#v", got, want)
		}
	}
}

func TestSimplePress(t *testing.T) {
	var km keymap.Keymap
	km[0][0] = 0x16
	h := newHarness(km)
	h.s.settle = time.Nanosecond

	h.col.byRow[0] = 0xFE // column 0 pressed on row 0

	// The first pass arms the transition; confirmation fires DebounceTicks
	// passes later.
	for i := 0; i < DebounceTicks+1; i++ {
		h.s.ScanOnce()
	}
	assertBytes(t, drain(h.out), []byte{0x16})

	// Holding steady must not re-emit.
	for i := 0; i < 5; i++ {
		h.s.ScanOnce()
	}
	if got := drain(h.out); len(got) != 0 {
		t.Fatalf("unexpected emission while held: %#v", got)
	}
}

func TestRelease(t *testing.T) {
	var km keymap.Keymap
	km[0][0] = 0x16
	h := newHarness(km)
	h.s.settle = time.Nanosecond

	h.col.byRow[0] = 0xFE
	for i := 0; i < DebounceTicks+1; i++ {
		h.s.ScanOnce()
	}
	drain(h.out)

	h.col.byRow[0] = 0xFF
	for i := 0; i < DebounceTicks+1; i++ {
		h.s.ScanOnce()
	}
	assertBytes(t, drain(h.out), []byte{0xF0, 0x16})
}

func TestExtendedPressRelease(t *testing.T) {
	var km keymap.Keymap
	km[2][0] = keymap.LeftArrow
	h := newHarness(km)
	h.s.settle = time.Nanosecond

	h.col.byRow[2] = 0xFE
	for i := 0; i < DebounceTicks+1; i++ {
		h.s.ScanOnce()
	}
	assertBytes(t, drain(h.out), []byte{0xE0, keymap.LeftArrow})

	h.col.byRow[2] = 0xFF
	for i := 0; i < DebounceTicks+1; i++ {
		h.s.ScanOnce()
	}
	assertBytes(t, drain(h.out), []byte{0xE0, 0xF0, keymap.LeftArrow})
}

func TestChatterShorterThanDebounceIsSuppressed(t *testing.T) {
	var km keymap.Keymap
	km[0][0] = 0x16
	h := newHarness(km)
	h.s.settle = time.Nanosecond

	h.col.byRow[0] = 0xFE
	for i := 0; i < DebounceTicks-1; i++ {
		h.s.ScanOnce()
	}
	if got := drain(h.out); len(got) != 0 {
		t.Fatalf("a countdown that has not yet reached confirmation must not emit, got %#v", got)
	}
}

// TestDebounceCommitsFlipDespiteRevert exercises the edge case where
// released is updated the instant a candidate transition is armed. If the
// physical level reverts before the DebounceTicks countdown completes, the
// flip still stands (no emission fires for it, but the state is not rolled
// back either), biasing the debouncer toward "believe the first edge."
func TestDebounceCommitsFlipDespiteRevert(t *testing.T) {
	var km keymap.Keymap
	km[0][0] = 0x16
	h := newHarness(km)
	h.s.settle = time.Nanosecond

	h.col.byRow[0] = 0xFE // press: arms the transition, released -> false
	h.s.ScanOnce()
	for i := 0; i < DebounceTicks-1; i++ {
		h.s.ScanOnce() // pure countdown, debounce: 20 -> 1
	}
	h.col.byRow[0] = 0xFF // bounced back to released right at confirmation
	h.s.ScanOnce()        // debounce == 1: sample disagrees with released, no emission

	if got := drain(h.out); len(got) != 0 {
		t.Fatalf("mismatched confirmation sample must not emit, got %#v", got)
	}

	// released is still committed to false (pressed) from the arm step: a
	// fresh press sample agrees with it and does not re-arm a new cycle.
	h.col.byRow[0] = 0xFE
	h.s.ScanOnce()
	if got := drain(h.out); len(got) != 0 {
		t.Fatalf("committed state should not re-arm on a matching sample, got %#v", got)
	}
}

func TestPressedReflectsCommittedState(t *testing.T) {
	var km keymap.Keymap
	km[0][0] = 0x16
	h := newHarness(km)
	h.s.settle = time.Nanosecond

	h.col.byRow[0] = 0xFE
	for i := 0; i < DebounceTicks; i++ {
		h.s.ScanOnce()
	}
	if !h.s.Pressed()[0][0] {
		t.Fatal("Pressed()[0][0] should be true after a committed press")
	}
	if h.s.Pressed()[0][1] {
		t.Fatal("Pressed()[0][1] should remain false")
	}
}

func TestUnusedCellIgnored(t *testing.T) {
	var km keymap.Keymap // all zero
	h := newHarness(km)
	h.s.settle = time.Nanosecond

	h.col.byRow[3] = 0x00 // every column of row 3 "pressed"
	for i := 0; i < DebounceTicks; i++ {
		h.s.ScanOnce()
	}
	if got := drain(h.out); len(got) != 0 {
		t.Fatalf("zero-value keymap cells must never emit, got %#v", got)
	}
}
