// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lineengine implements the PS/2 line-level protocol state
// machine: a tick-driven engine that arbitrates between transmit and
// receive, bit-bangs Clock and Data, and produces/verifies odd parity.
package lineengine

import (
	"time"

	"periph.io/x/periph/conn/gpio"

	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/hal"
	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/ringbuf"
)

// Skew is the fixed data-to-clock setup/hold margin.
const Skew = 10 * time.Microsecond

// TickPeriod is half of a PS/2 bit cell: the nominal period at which Tick
// should be invoked.
const TickPeriod = 40 * time.Microsecond

// phase names which half of the current bit cell the engine is driving.
type phase int

const (
	// phaseHigh is the half where the engine decides the bit's value and
	// drives Clock low at the end of it.
	phaseHigh phase = iota
	// phaseLow is the half where the engine releases Clock back high and
	// advances to the next tick_ix.
	phaseLow
)

// direction selects which side of the link is currently sending.
type direction int

const (
	dirSend direction = iota
	dirRecv
)

// frameLen is the last valid tick_ix (stop/ack); anything past it is the
// inter-frame gap and resets to 0 on the next tick.
const frameLen = 11

// Engine is the tick-driven PS/2 line-level state machine. It owns the
// Clock and Data GPIOs and the outbound/inbound ring buffers,
// and is meant to be invoked once per tick from a hal.Ticker callback —
// the software stand-in for the original firmware's timer ISR.
//
// Engine is not safe for concurrent Tick calls; exactly one context
// (the registered ticker callback) may call Tick.
type Engine struct {
	clock hal.LinePin
	data  hal.LinePin

	out *ringbuf.Buffer // outbound: consumed here, produced by matrix.Scanner
	in  *ringbuf.Buffer // inbound: produced here, consumed by command.Processor

	tickIx      int
	ph          phase
	dir         direction
	shift       byte
	parityOnes  int

	// skew overrides Skew in tests; zero means use Skew.
	skew time.Duration
}

// New returns an Engine driving clock/data and moving bytes between out
// (outbound, scanner → host) and in (inbound, host → command processor).
func New(clock, data hal.LinePin, out, in *ringbuf.Buffer) *Engine {
	return &Engine{clock: clock, data: data, out: out, in: in, dir: dirSend}
}

func (e *Engine) skewDelay() time.Duration {
	if e.skew > 0 {
		return e.skew
	}
	return Skew
}

func (e *Engine) driveLow(pin hal.LinePin) { _ = pin.Out(gpio.Low) }

// release floats a line high via the external pull-up by switching the
// pin back to input. The engine never drives a line high itself.
func (e *Engine) release(pin hal.LinePin) { _ = pin.In(gpio.PullNoChange, gpio.NoEdge) }

func (e *Engine) sample(pin hal.LinePin) bool { return pin.Read() == gpio.High }

// Tick advances the state machine by one tick, i.e. one half of a PS/2 bit
// cell. Register this as the hal.Ticker callback.
func (e *Engine) Tick() {
	if e.tickIx > frameLen {
		e.tickIx = 0
		e.ph = phaseHigh
	}

	clk := e.sample(e.clock)
	dat := e.sample(e.data)

	if e.tickIx == 0 {
		e.arbitrate(clk, dat)
		return
	}

	if e.dir == dirSend && e.ph == phaseHigh && e.tickIx >= 1 && e.tickIx <= 10 && !clk {
		// Host inhibit mid-frame: abort without consuming the buffer.
		e.release(e.data)
		e.tickIx = 0
		e.ph = phaseHigh
		return
	}

	switch {
	case e.tickIx == 1:
		e.frameStart()
	case e.tickIx >= 2 && e.tickIx <= 9:
		e.dataBit(dat)
	case e.tickIx == 10:
		e.parityTick(dat)
	case e.tickIx == frameLen:
		e.stopAck()
	}
}

// arbitrate runs at tick_ix == 0: it samples Clock and Data to decide
// whether the bus is idle, host-inhibited, or under host request-to-send.
func (e *Engine) arbitrate(clk, dat bool) {
	switch {
	case !clk:
		// Host holds Clock low: bus inhibited, stay at tick_ix 0.
		if dat {
			e.dir = dirSend
		} else {
			e.dir = dirRecv
		}
	case clk && !dat:
		// Host RTS.
		e.dir = dirRecv
		e.tickIx = 1
		e.ph = phaseHigh
	default:
		// Bus idle.
		e.dir = dirSend
		e.tickIx = 1
		e.ph = phaseHigh
	}
}

// frameStart runs at tick_ix == 1: it drives the start bit (SEND) or
// primes the shift register (RECV).
func (e *Engine) frameStart() {
	switch e.ph {
	case phaseHigh:
		if e.dir == dirSend {
			v, ok := e.out.Peek()
			if !ok {
				e.tickIx = 0
				return
			}
			e.shift = v
			e.parityOnes = 0
			e.driveLow(e.data) // start bit
			time.Sleep(e.skewDelay())
			e.driveLow(e.clock)
		} else {
			e.shift = 0
			e.parityOnes = 0
			time.Sleep(e.skewDelay())
			e.driveLow(e.clock)
		}
		e.ph = phaseLow
	case phaseLow:
		time.Sleep(e.skewDelay())
		e.release(e.clock)
		e.ph = phaseHigh
		e.tickIx++
	}
}

// dataBit runs at tick_ix in [2,9]: the 8 data bits, LSB-first.
func (e *Engine) dataBit(dat bool) {
	switch e.ph {
	case phaseHigh:
		if e.dir == dirSend {
			bit := e.shift&1 != 0
			if bit {
				e.release(e.data)
				e.parityOnes++
			} else {
				e.driveLow(e.data)
			}
			e.shift >>= 1
		} else {
			var bit byte
			if dat {
				bit = 1
				e.parityOnes++
			}
			e.shift = (e.shift >> 1) | (bit << 7)
		}
		time.Sleep(e.skewDelay())
		e.driveLow(e.clock)
		e.ph = phaseLow
	case phaseLow:
		time.Sleep(e.skewDelay())
		e.release(e.clock)
		e.ph = phaseHigh
		e.tickIx++
	}
}

// parityTick runs at tick_ix == 10: the odd parity bit.
func (e *Engine) parityTick(dat bool) {
	switch e.ph {
	case phaseHigh:
		if e.dir == dirSend {
			// Odd parity: set the bit so the total one-count is odd.
			if e.parityOnes%2 == 0 {
				e.release(e.data) // parity bit = 1
			} else {
				e.driveLow(e.data) // parity bit = 0
			}
		} else {
			total := e.parityOnes
			if dat {
				total++
			}
			if total%2 == 1 {
				e.out.Clear() // clear-on-accept
				e.in.Push(e.shift)
			}
			// Invalid parity: silently discard, nothing is pushed.
		}
		time.Sleep(e.skewDelay())
		e.driveLow(e.clock)
		e.ph = phaseLow
	case phaseLow:
		time.Sleep(e.skewDelay())
		e.release(e.clock)
		e.ph = phaseHigh
		e.tickIx++
	}
}

// stopAck runs at tick_ix == 11: the stop bit (SEND) or device
// acknowledge (RECV), and the SEND commit point.
func (e *Engine) stopAck() {
	switch e.ph {
	case phaseHigh:
		if e.dir == dirSend {
			e.release(e.data) // stop bit: idle high
		} else {
			e.driveLow(e.data) // device acknowledge
		}
		time.Sleep(e.skewDelay())
		e.driveLow(e.clock)
		e.ph = phaseLow
	case phaseLow:
		time.Sleep(e.skewDelay())
		e.release(e.clock)
		e.release(e.data)
		if e.dir == dirSend {
			// Commit point: the byte survived without a mid-frame abort.
			e.out.Pop()
		}
		e.ph = phaseHigh
		e.tickIx++
	}
}
