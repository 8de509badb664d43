// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package keymap

import "testing"

func TestAtOutOfRange(t *testing.T) {
	var k Keymap
	k[0][0] = 0x16
	cases := []struct{ row, col int }{
		{-1, 0}, {0, -1}, {Rows, 0}, {0, Cols}, {8, 8},
	}
	for _, c := range cases {
		if got := k.At(c.row, c.col); got != 0 {
			t.Errorf("At(%d,%d) = %#02x, want 0", c.row, c.col, got)
		}
	}
	if got := k.At(0, 0); got != 0x16 {
		t.Errorf("At(0,0) = %#02x, want 0x16", got)
	}
}

func TestExtended(t *testing.T) {
	for _, code := range []byte{LeftArrow, RightArrow} {
		if !Extended(code) {
			t.Errorf("Extended(%#02x) = false, want true", code)
		}
	}
	for _, code := range []byte{0x00, 0x16, 0xF0, 0xAA} {
		if Extended(code) {
			t.Errorf("Extended(%#02x) = true, want false", code)
		}
	}
}

func TestCreatiVision48HasArrowsPlaced(t *testing.T) {
	if CreatiVision48.At(2, 0) != LeftArrow {
		t.Errorf("expected left arrow at (2,0)")
	}
	if CreatiVision48.At(5, 0) != RightArrow {
		t.Errorf("expected right arrow at (5,0)")
	}
}

func TestCreatiVision48NoDuplicateNonZeroCodes(t *testing.T) {
	seen := map[byte][2]int{}
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			code := CreatiVision48.At(r, c)
			if code == 0 {
				continue
			}
			if prev, ok := seen[code]; ok {
				t.Errorf("scan code %#02x assigned to both (%d,%d) and (%d,%d)", code, prev[0], prev[1], r, c)
			}
			seen[code] = [2]int{r, c}
		}
	}
}
