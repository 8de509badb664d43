// Copyright 2018 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package driver registers the "ps2kbd" periph.Driver: it resolves the
// board's pins by name out of gpioreg, assembles a device.Dev, starts it,
// and registers its pins back into pinreg as a named header for other
// periph-aware tooling to discover.
package driver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"periph.io/x/periph"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/conn/pin"
	"periph.io/x/periph/conn/pin/pinreg"

	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/device"
	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/hal"
	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/keymap"
	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/lineengine"
)

// Config names, by gpioreg pin name, the board wiring a caller must supply
// before periph.Init() runs. Resolution happens inside Init, late-bound
// against whatever pins gpioreg has registered by the time periph.Init()
// is called.
type Config struct {
	Name       string
	Clock      string
	Data       string
	Rows       [keymap.Rows]string
	Columns    [keymap.Cols]string
	Keymap     keymap.Keymap
	TickPeriod time.Duration
}

// SetConfig installs cfg for the next periph.Init() to pick up. Must be
// called before periph.Init(); calling it after Init() has already run has
// no effect on the already-registered device.
func SetConfig(cfg Config) {
	drv.mu.Lock()
	defer drv.mu.Unlock()
	drv.cfg = cfg
}

// Dev returns the device assembled by the most recent successful Init, or
// nil if Init has not run or was not configured.
func Dev() *device.Dev {
	drv.mu.Lock()
	defer drv.mu.Unlock()
	return drv.dev
}

// multiColumnPort reads eight named gpio.PinIO values as one byte, bit i
// from pins[i]. It is the one place this module builds a hal.ColumnPort
// from individually-registered periph pins rather than taking one already
// built.
type multiColumnPort [keymap.Cols]gpio.PinIO

func (m multiColumnPort) Read() byte {
	var b byte
	for i, p := range m {
		if p.Read() == gpio.High {
			b |= 1 << uint(i)
		}
	}
	return b
}

// systemTicker is the production hal.Ticker: a real time.Ticker driving
// the registered callback until Stop is called.
type systemTicker struct {
	mu   sync.Mutex
	fn   func()
	stop chan struct{}
}

func (t *systemTicker) Register(fn func()) { t.fn = fn }

func (t *systemTicker) Start(period time.Duration) {
	t.mu.Lock()
	t.stop = make(chan struct{})
	stop := t.stop
	t.mu.Unlock()

	tk := time.NewTicker(period)
	defer tk.Stop()
	for {
		select {
		case <-stop:
			return
		case <-tk.C:
			t.fn()
		}
	}
}

func (t *systemTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

// driver implements periph.Driver.
type driver struct {
	mu  sync.Mutex
	cfg Config
	dev *device.Dev

	// resolve is overridden in tests to avoid depending on gpioreg's
	// process-global registry.
	resolve func(name string) gpio.PinIO
}

func (d *driver) String() string { return "ps2kbd" }

func (d *driver) Prerequisites() []string { return nil }

func (d *driver) After() []string { return nil }

func (d *driver) Init() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cfg.Clock == "" && d.cfg.Data == "" {
		// Not configured: nothing to do, and not an error.
		return false, nil
	}

	clock := d.resolve(d.cfg.Clock)
	if clock == nil {
		return true, fmt.Errorf("ps2kbd: unknown clock pin %q", d.cfg.Clock)
	}
	data := d.resolve(d.cfg.Data)
	if data == nil {
		return true, fmt.Errorf("ps2kbd: unknown data pin %q", d.cfg.Data)
	}
	var rows [keymap.Rows]gpio.PinIO
	for i, name := range d.cfg.Rows {
		p := d.resolve(name)
		if p == nil {
			return true, fmt.Errorf("ps2kbd: unknown row pin %q", name)
		}
		rows[i] = p
	}
	var cols multiColumnPort
	for i, name := range d.cfg.Columns {
		p := d.resolve(name)
		if p == nil {
			return true, fmt.Errorf("ps2kbd: unknown column pin %q", name)
		}
		cols[i] = p
	}

	name := d.cfg.Name
	if name == "" {
		name = "ps2kbd"
	}
	ticker := &systemTicker{}
	dv := device.New(name, d.cfg.Keymap, device.Pins{
		Clock:   clock,
		Data:    data,
		Rows:    rows,
		Columns: cols,
	}, ticker)

	if err := registerHeader(dv, clock, data, rows[:], cols[:]); err != nil {
		return true, err
	}

	period := d.cfg.TickPeriod
	if period == 0 {
		period = lineengine.TickPeriod
	}
	go ticker.Start(period)
	go dv.Run(context.Background())

	d.dev = dv
	return true, nil
}

// registerHeader groups every pin the device uses under one named header
// in pinreg. These pins are not newly minted by this package — they
// already exist in gpioreg under the host's native names — so only the
// grouping alias is registered here, not the pins themselves.
func registerHeader(dv *device.Dev, clock, data hal.LinePin, rows []gpio.PinIO, cols []gpio.PinIO) error {
	raw := [][]pin.Pin{{clock}, {data}}
	for _, r := range rows {
		raw = append(raw, []pin.Pin{r})
	}
	for _, c := range cols {
		raw = append(raw, []pin.Pin{c})
	}
	return pinreg.Register(dv.String(), raw)
}

func (d *driver) reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cfg = Config{}
	d.dev = nil
	d.resolve = func(name string) gpio.PinIO { return gpioreg.ByName(name) }
}

func init() {
	drv.reset()
	periph.MustRegister(&drv)
}

var drv driver
