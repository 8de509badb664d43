// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package monitor

import (
	"bytes"
	"strings"
	"testing"

	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/keymap"
)

type fakeSource struct {
	name       string
	outLen     int
	inLen      int
	pressedMap [keymap.Rows][keymap.Cols]bool
}

func (f fakeSource) String() string                                 { return f.name }
func (f fakeSource) OutboundLen() int                                { return f.outLen }
func (f fakeSource) InboundLen() int                                 { return f.inLen }
func (f fakeSource) Pressed() [keymap.Rows][keymap.Cols]bool         { return f.pressedMap }

func TestRefreshWritesNonEmptyFrame(t *testing.T) {
	var buf bytes.Buffer
	d := &Dev{w: &buf}
	src := fakeSource{name: "ps2kbd", outLen: 40, inLen: 0}

	n, err := d.Refresh(src)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if n == 0 {
		t.Fatal("Refresh() wrote zero bytes")
	}
	if !strings.Contains(buf.String(), "ps2kbd") {
		t.Fatal("Refresh() output should include the source's name")
	}
}

func TestHaltResetsTerminalColor(t *testing.T) {
	var buf bytes.Buffer
	d := &Dev{w: &buf}
	if err := d.Halt(); err != nil {
		t.Fatalf("Halt() error = %v", err)
	}
	if !strings.Contains(buf.String(), "\033[0m") {
		t.Fatal("Halt() should emit a color reset")
	}
}

func TestOccupancyBarReflectsFillLevel(t *testing.T) {
	var emptyBuf, fullBuf bytes.Buffer
	var src fakeSource

	src.outLen = 0
	(&Dev{w: &emptyBuf}).Refresh(src)

	src.outLen = 128
	(&Dev{w: &fullBuf}).Refresh(src)

	if emptyBuf.String() == fullBuf.String() {
		t.Fatal("an empty and a full outbound buffer should render different frames")
	}
}
