// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package keymap describes the immutable 8×8 table that maps a matrix
// (row, col) cell to a PS/2 Set-2 scan code.
package keymap

// Rows and Cols are the matrix dimensions. A larger keyboard would need a
// wider Keymap type; 8×8 is what the reference board wires.
const (
	Rows = 8
	Cols = 8
)

// Extended scan codes that require an 0xE0 prefix on every emission. Only
// these two are extended on the reference 48-key layout.
const (
	LeftArrow  byte = 0x6B
	RightArrow byte = 0x74
)

// Keymap is an 8x8 table of Set-2 scan codes. The zero value of a cell,
// 0x00, means "no key at this cell; ignore."
type Keymap [Rows][Cols]byte

// At returns the scan code programmed at (row, col), or 0x00 if row/col is
// outside the matrix or the cell is unused.
func (k Keymap) At(row, col int) byte {
	if row < 0 || row >= Rows || col < 0 || col >= Cols {
		return 0
	}
	return k[row][col]
}

// Extended reports whether code requires an 0xE0 prefix on every
// emission.
func Extended(code byte) bool {
	return code == LeftArrow || code == RightArrow
}

// CreatiVision48 is the reference 48-key layout: a subset of PS/2 Set 2
// covering the CreatiVision mechanical keyboard's physical matrix. Cells
// outside the 48 populated positions are left at 0x00.
var CreatiVision48 = Keymap{
	// row 0
	{0x16, 0x1E, 0x26, 0x25, 0x2E, 0x36, 0x3D, 0x3E},
	// row 1
	{0x46, 0x45, 0x4E, 0x55, 0x66, 0x0D, 0x15, 0x1D},
	// row 2
	{LeftArrow, 0x24, 0x2D, 0x2C, 0x35, 0x3C, 0x43, 0x44},
	// row 3
	{0x4D, 0x54, 0x5B, 0x5A, 0x76, 0x14, 0x1C, 0x1B},
	// row 4
	{0x23, 0x2B, 0x34, 0x33, 0x3B, 0x42, 0x4B, 0x4C},
	// row 5
	{RightArrow, 0x1A, 0x22, 0x21, 0x2A, 0x32, 0x31, 0x3A},
	// row 6
	{0x41, 0x49, 0x4A, 0x29, 0x72, 0x75, 0x00, 0x00},
	// row 7
	{0x12, 0x59, 0x11, 0x58, 0x05, 0x06, 0x04, 0x0C},
}
