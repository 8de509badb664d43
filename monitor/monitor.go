// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package monitor implements a terminal visualizer for a running
// device.Dev: ring-buffer occupancy and the 8x8 key matrix are rendered
// as ANSI color blocks.
package monitor

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"

	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/keymap"
	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/ringbuf"
)

// Source is the subset of device.Dev's diagnostics monitor needs. Declared
// narrowly here, the way hal declares ColumnPort narrowly, rather than
// importing device directly, so monitor can be driven by a fake in tests.
type Source interface {
	OutboundLen() int
	InboundLen() int
	Pressed() [keymap.Rows][keymap.Cols]bool
	String() string
}

var (
	idle     = color.NRGBA{0x20, 0x20, 0x20, 0xff}
	pressed  = color.NRGBA{0xe0, 0x20, 0x20, 0xff}
	occupied = color.NRGBA{0x20, 0xa0, 0xe0, 0xff}
)

// Dev renders a Source's state to a terminal using 256-color ANSI blocks.
// It is a passive sink: nothing in ringbuf, matrix or lineengine ever
// calls into it.
type Dev struct {
	w   io.Writer
	buf bytes.Buffer
}

// New returns a Dev that writes to the terminal via go-colorable, the same
// way screen.New wires up colorable.NewColorableStdout for cross-platform
// ANSI support on Windows consoles.
func New() *Dev {
	return &Dev{w: colorable.NewColorableStdout()}
}

// String implements conn.Resource.
func (d *Dev) String() string { return "Monitor" }

// Halt implements conn.Resource. It resets the terminal's color state.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// Refresh renders one frame of src's current state: outbound and inbound
// buffer occupancy as a 16-block bar each, followed by the 8x8 matrix.
func (d *Dev) Refresh(src Source) (int, error) {
	d.buf.Reset()
	_, _ = fmt.Fprintf(&d.buf, "\r\033[0m%s  out:", src.String())
	d.occupancyBar(src.OutboundLen())
	_, _ = d.buf.WriteString(" in:")
	d.occupancyBar(src.InboundLen())
	_, _ = d.buf.WriteString("\n")

	grid := src.Pressed()
	for r := 0; r < keymap.Rows; r++ {
		for c := 0; c < keymap.Cols; c++ {
			col := idle
			if grid[r][c] {
				col = pressed
			}
			_, _ = io.WriteString(&d.buf, ansi256.Default.Block(col))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	n, err := d.buf.WriteTo(d.w)
	return int(n), err
}

// occupancyBar renders n of ringbuf.Capacity slots as a bar of
// Capacity/8 = 16 ANSI blocks, one block filled per whole 8 queued bytes.
// A full buffer holds Capacity-1 = 127 bytes and so fills 15 blocks.
func (d *Dev) occupancyBar(n int) {
	const slots = ringbuf.Capacity / 8
	filled := n / 8
	if filled > slots {
		filled = slots
	}
	for i := 0; i < slots; i++ {
		col := idle
		if i < filled {
			col = occupied
		}
		_, _ = io.WriteString(&d.buf, ansi256.Default.Block(col))
	}
}
