// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package command implements the stateless host-command dispatch table.
package command

import "github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/ringbuf"

// Host command bytes recognized by the dispatch table.
const (
	ResetBAT byte = 0xFF
	ReadID   byte = 0xF2
)

// Response bytes.
const (
	Ack          byte = 0xFA
	SelfTestPass byte = 0xAA
	IDByte1      byte = 0xAB
	IDByte2      byte = 0x83
)

// Processor drains one inbound host-command byte at a time and pushes the
// canonical reply sequence to the outbound buffer. It carries no state of
// its own: multi-byte host commands (e.g. Set-LEDs followed by its data
// byte) are each acknowledged individually, with no payload interpreted.
// This is a known limitation, not a bug.
type Processor struct {
	in  *ringbuf.Buffer
	out *ringbuf.Buffer
}

// New returns a Processor that drains in and replies into out.
func New(in, out *ringbuf.Buffer) *Processor {
	return &Processor{in: in, out: out}
}

// ProcessOne drains a single byte from the inbound buffer, if any, and
// pushes the dispatch table's reply for it. It reports whether a byte was
// available to process.
func (p *Processor) ProcessOne() bool {
	cmd, ok := p.in.Pop()
	if !ok {
		return false
	}
	switch cmd {
	case ResetBAT:
		p.out.PushAll(Ack, SelfTestPass)
	case ReadID:
		p.out.PushAll(Ack, IDByte1, IDByte2)
	default:
		p.out.PushAll(Ack)
	}
	return true
}
