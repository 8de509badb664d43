// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package creativisionkbd is the firmware core of a PS/2 keyboard
// controller for the CreatiVision Mechanical Keyboard project, ported to
// run as a hosted Go program against periph.io GPIO pins instead of
// bare-metal registers.
//
// Package ringbuf implements the outbound and inbound byte FIFOs. Package
// matrix scans the 8x8 key matrix and debounces it into Set-2 scan codes.
// Package command answers host commands. Package lineengine bit-bangs
// those bytes over the PS/2 Clock/Data pair. Package device composes
// these four into one conn.Resource, and package driver registers it as a
// periph.Driver named "ps2kbd".
//
// Package monitor and package simulator are host-side development aids:
// the former renders a running device's state to a terminal, the latter
// lets a developer exercise the matrix and command processor
// interactively without any GPIO hardware at all.
package creativisionkbd
