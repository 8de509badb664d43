// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ps2kbd runs the PS/2 keyboard controller core against real GPIO pins.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"strings"

	"periph.io/x/periph/host"

	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/driver"
	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/keymap"
)

func parsePinList(s string, n int) ([]string, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma-separated pin names, got %d", n, len(parts))
	}
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts, nil
}

func mainImpl() error {
	verbose := flag.Bool("v", false, "verbose mode")
	name := flag.String("name", "ps2kbd", "device name reported by String()")
	clock := flag.String("clock", "", "Clock line pin name (required)")
	data := flag.String("data", "", "Data line pin name (required)")
	rows := flag.String("rows", "", fmt.Sprintf("comma-separated list of %d row pin names (required)", keymap.Rows))
	cols := flag.String("cols", "", fmt.Sprintf("comma-separated list of %d column pin names (required)", keymap.Cols))
	period := flag.Duration("tick", 0, "line engine tick period, defaults to the protocol's nominal bit-cell half-period")
	flag.Parse()
	if !*verbose {
		log.SetOutput(ioutil.Discard)
	}
	log.SetFlags(log.Lmicroseconds)
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}
	if *clock == "" || *data == "" || *rows == "" || *cols == "" {
		return errors.New("-clock, -data, -rows and -cols are all required, try -help")
	}

	rowNames, err := parsePinList(*rows, keymap.Rows)
	if err != nil {
		return fmt.Errorf("-rows: %w", err)
	}
	colNames, err := parsePinList(*cols, keymap.Cols)
	if err != nil {
		return fmt.Errorf("-cols: %w", err)
	}

	var rowArr [keymap.Rows]string
	copy(rowArr[:], rowNames)
	var colArr [keymap.Cols]string
	copy(colArr[:], colNames)

	driver.SetConfig(driver.Config{
		Name:       *name,
		Clock:      *clock,
		Data:       *data,
		Rows:       rowArr,
		Columns:    colArr,
		Keymap:     keymap.CreatiVision48,
		TickPeriod: *period,
	})

	// host.Init() walks the periph.Driver registry, which includes the
	// "ps2kbd" driver registered by this program's import of the driver
	// package; this is where that driver's Init() actually runs.
	if _, err := host.Init(); err != nil {
		return err
	}
	if driver.Dev() == nil {
		return errors.New("ps2kbd driver did not register a device; check -clock/-data/-rows/-cols pin names")
	}
	log.Printf("%s running", driver.Dev())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
	return driver.Dev().Halt()
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "ps2kbd: %s.\n", err)
		os.Exit(1)
	}
}
