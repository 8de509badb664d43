// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hal names the external-collaborator boundary: the GPIO and
// timer contract the core consumes but never implements. Board bring-up
// (clock configuration, pin muxing, pull-up enabling, timer instantiation)
// lives entirely on the other side of this boundary.
package hal

import (
	"time"

	"periph.io/x/periph/conn/gpio"
)

// LinePin is the shape Clock and Data need: set-as-output, set-as-input,
// read-level. periph.io/x/periph/conn/gpio.PinIO already provides exactly
// this, so the core speaks PinIO directly rather than inventing a
// narrower interface.
//
// Both lines are open-collector: a caller implementing LinePin for real
// hardware must treat Out(gpio.Low) as "drive low" and In(...) as
// "release to float high via the external pull-up." The core never calls
// Out(gpio.High); it only ever drives low or releases.
type LinePin = gpio.PinIO

// RowPin is the shape each matrix row pin needs: set-as-output-low,
// set-as-input-pullup. Again this is exactly gpio.PinIO's In/Out pair.
type RowPin = gpio.PinIO

// ColumnPort is the shape the column port needs: a single 8-bit read.
// periph has no native "read 8 pins as one byte" primitive, so this is
// the one place the core defines its own narrow interface instead of
// reusing a periph.io type.
type ColumnPort interface {
	// Read samples all eight column pins at once. Bit i is 1 when
	// column i is released (pulled high), 0 when it is pressed (pulled
	// low).
	Read() byte
}

// Ticker is the timer contract: a periodic interrupt with a
// callback-registration hook. Register must be called exactly once
// before the ticker is started; fn is invoked once per tick, synchronously,
// from whatever context the Ticker implementation drives its period from.
type Ticker interface {
	// Register installs fn as the per-tick callback.
	Register(fn func())
	// Start begins invoking the registered callback every period.
	// It does not return until Stop is called.
	Start(period time.Duration)
	// Stop halts the ticker. Safe to call even if Start was never called.
	Stop()
}
