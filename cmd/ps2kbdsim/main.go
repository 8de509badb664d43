// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ps2kbdsim launches the interactive, host-free matrix/command simulator.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/keymap"
	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/simulator"
)

func mainImpl() error {
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}
	return simulator.Run(keymap.CreatiVision48)
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "ps2kbdsim: %s.\n", err)
		os.Exit(1)
	}
}
