// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package device composes the ring buffers, matrix scanner, line engine
// and command processor into one runnable keyboard core.
package device

import (
	"context"
	"time"

	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/command"
	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/hal"
	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/keymap"
	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/lineengine"
	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/matrix"
	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/ringbuf"
)

// Pins groups the GPIO collaborators a board-bringup caller must supply.
// Board bring-up itself (clock configuration, pin muxing, pull-up
// enabling) happens entirely before these are handed to New; this package
// only ever calls In/Out/Read on them.
type Pins struct {
	Clock   hal.LinePin
	Data    hal.LinePin
	Rows    [keymap.Rows]hal.RowPin
	Columns hal.ColumnPort
}

// Dev is the assembled PS/2 keyboard core: two ring buffers, a matrix
// scanner, a line engine and a command processor, wired into one data
// flow from key press to scan code and from host command to reply.
//
// Dev implements conn.Resource (String/Halt) the way every periph.io
// device does.
type Dev struct {
	out *ringbuf.Buffer
	in  *ringbuf.Buffer

	scanner   *matrix.Scanner
	engine    *lineengine.Engine
	processor *command.Processor

	ticker hal.Ticker

	name string
}

// New assembles a Dev from the supplied pins and keymap.
//
// Board bring-up order expected of the caller: configure the system
// clock, mux the row/column/Clock/Data pins for GPIO function, enable the
// external pull-ups on Clock and Data, instantiate (but do not yet start)
// the periodic timer, and only then call New followed by Run.
//
// New enqueues a single 0xAA into the outbound buffer before returning,
// standing in for the power-on self-test announcement the original
// firmware's main() performs once at boot — independent of, and prior to,
// any host-issued 0xFF reset command handled later by the command
// processor.
func New(name string, km keymap.Keymap, pins Pins, ticker hal.Ticker) *Dev {
	out := ringbuf.New()
	in := ringbuf.New()
	d := &Dev{
		out:       out,
		in:        in,
		scanner:   matrix.New(km, pins.Rows, pins.Columns, out),
		engine:    lineengine.New(pins.Clock, pins.Data, out, in),
		processor: command.New(in, out),
		ticker:    ticker,
		name:      name,
	}
	out.Push(0xAA) // power-on self-test pass
	ticker.Register(d.Tick)
	return d
}

// String implements conn.Resource.
func (d *Dev) String() string { return d.name }

// Halt implements conn.Resource. It stops the timer but leaves any queued
// bytes in place; there is no hardware state to quiesce beyond that.
func (d *Dev) Halt() error {
	d.ticker.Stop()
	return nil
}

// Tick is the hal.Ticker callback: it advances the line engine by one
// tick. Registered automatically by New.
func (d *Dev) Tick() { d.engine.Tick() }

// OutboundLen reports how many scan-code bytes are queued for transmit.
// Diagnostics only; grounded on the same "expose depth for a host-side
// viewer" shape monitor needs, never read by any core component.
func (d *Dev) OutboundLen() int { return d.out.Len() }

// InboundLen reports how many host-command bytes are queued for the
// command processor. Diagnostics only.
func (d *Dev) InboundLen() int { return d.in.Len() }

// Pressed returns a snapshot of which matrix cells are currently committed
// as pressed. Diagnostics only.
func (d *Dev) Pressed() [keymap.Rows][keymap.Cols]bool { return d.scanner.Pressed() }

// Run starts the foreground loop: it scans the matrix and drains host
// commands forever, until ctx is canceled. This is the software stand-in
// for a bare-metal firmware's infinite foreground loop; unlike firmware it
// can be canceled because it runs as a goroutine rather than as the
// entire program.
func (d *Dev) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		d.scanner.ScanOnce()
		for d.processor.ProcessOne() {
		}
	}
}

// Start begins the timer driving the line engine at period. It does not
// return until the ticker is stopped; run it in its own goroutine
// alongside Run.
func (d *Dev) Start(period time.Duration) {
	d.ticker.Start(period)
}
