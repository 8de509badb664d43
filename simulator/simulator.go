// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package simulator provides an interactive host-free test harness for the
// matrix scanner and command processor, grounded on cpu/debugger.go's
// bubbletea/lipgloss model: arrow keys move a cursor over the 8x8 matrix,
// enter toggles a cell pressed/released, and two shortcut keys enqueue a
// host command the way a real PS/2 host would.
//
// It deliberately stops short of lineengine: there is no real electrical
// host to bit-bang against in a terminal, and building one would mean
// inventing an unspecified second protocol state machine. Instead it reads
// the outbound/inbound ring buffers directly, the same buffers
// matrix.Scanner and command.Processor already operate on, so it reuses
// real protocol logic instead of reimplementing any.
package simulator

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/physic"

	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/command"
	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/keymap"
	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/matrix"
	"github.com/DigicoolThings/CreatiVisionMechanicalKeyboard/ringbuf"
)

// grid is the fake physical matrix: pressed[r][c] is true when that cell
// is held down. rowPin and columnPort both read from it.
type grid struct {
	pressed [keymap.Rows][keymap.Cols]bool
	active  int
}

// columnPort implements hal.ColumnPort over grid.
type columnPort struct{ g *grid }

func (c columnPort) Read() byte {
	var b byte
	for col := 0; col < keymap.Cols; col++ {
		if !c.g.pressed[c.g.active][col] {
			b |= 1 << uint(col)
		}
	}
	return b
}

// rowPin implements the narrow slice of gpio.PinIO matrix.Scanner uses:
// Out(Low) marks this row active; In is a no-op, so the row stays active
// until another row is driven low.
type rowPin struct {
	idx int
	g   *grid
}

func (p *rowPin) String() string   { return "row" }
func (p *rowPin) Halt() error      { return nil }
func (p *rowPin) Name() string     { return "row" }
func (p *rowPin) Number() int      { return p.idx }
func (p *rowPin) Function() string { return "" }
func (p *rowPin) In(gpio.Pull, gpio.Edge) error {
	return nil
}
func (p *rowPin) Read() gpio.Level                       { return gpio.High }
func (p *rowPin) WaitForEdge(time.Duration) bool         { return false }
func (p *rowPin) DefaultPull() gpio.Pull                 { return gpio.PullUp }
func (p *rowPin) Pull() gpio.Pull                        { return gpio.PullUp }
func (p *rowPin) PWM(gpio.Duty, physic.Frequency) error  { return nil }
func (p *rowPin) Out(l gpio.Level) error {
	if l == gpio.Low {
		p.g.active = p.idx
	}
	return nil
}

var _ gpio.PinIO = (*rowPin)(nil)

const logDepth = 32

// tickMsg drives the simulated scan loop; sent on a fixed wall-clock
// cadence via tea.Tick, since a terminal has no hardware timer to borrow.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(5*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model is a tea.Model driving an in-memory matrix scanner and command
// processor. The zero value is not ready for use; construct one with New.
type Model struct {
	km keymap.Keymap

	g *grid

	scanner *matrix.Scanner
	proc    *command.Processor
	out     *ringbuf.Buffer
	in      *ringbuf.Buffer

	cursorRow, cursorCol int

	outLog, inLog []byte

	quitErr error
}

// New returns a Model driving km over an in-memory matrix and command
// pipeline, with every cell initially released.
func New(km keymap.Keymap) Model {
	g := &grid{}
	var rows [keymap.Rows]gpio.PinIO
	for i := range rows {
		rows[i] = &rowPin{idx: i, g: g}
	}
	out := ringbuf.New()
	in := ringbuf.New()
	return Model{
		km:      km,
		g:       g,
		scanner: matrix.New(km, rows, columnPort{g: g}, out),
		proc:    command.New(in, out),
		out:     out,
		in:      in,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return tick() }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up":
			if m.cursorRow > 0 {
				m.cursorRow--
			}
		case "down":
			if m.cursorRow < keymap.Rows-1 {
				m.cursorRow++
			}
		case "left":
			if m.cursorCol > 0 {
				m.cursorCol--
			}
		case "right":
			if m.cursorCol < keymap.Cols-1 {
				m.cursorCol++
			}
		case "enter", " ":
			m.g.pressed[m.cursorRow][m.cursorCol] = !m.g.pressed[m.cursorRow][m.cursorCol]
		case "r":
			m.in.Push(command.ResetBAT)
			m.inLog = append(m.inLog, command.ResetBAT)
		case "i":
			m.in.Push(command.ReadID)
			m.inLog = append(m.inLog, command.ReadID)
		}
		if len(m.inLog) > logDepth {
			m.inLog = m.inLog[len(m.inLog)-logDepth:]
		}
		return m, nil
	case tickMsg:
		m.scanner.ScanOnce()
		for m.proc.ProcessOne() {
		}
		for {
			v, ok := m.out.Pop()
			if !ok {
				break
			}
			m.outLog = append(m.outLog, v)
		}
		if len(m.outLog) > logDepth {
			m.outLog = m.outLog[len(m.outLog)-logDepth:]
		}
		return m, tick()
	}
	return m, nil
}

func hexLog(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02x", v)
	}
	return strings.Join(parts, " ")
}

var (
	cursorStyle  = lipgloss.NewStyle().Reverse(true)
	pressedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

func (m Model) matrixView() string {
	var rows []string
	for r := 0; r < keymap.Rows; r++ {
		var cells []string
		for c := 0; c < keymap.Cols; c++ {
			code := m.km.At(r, c)
			label := fmt.Sprintf("%02x", code)
			if code == 0 {
				label = "--"
			}
			switch {
			case r == m.cursorRow && c == m.cursorCol:
				label = cursorStyle.Render(label)
			case m.g.pressed[r][c]:
				label = pressedStyle.Render(label)
			}
			cells = append(cells, label)
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	return strings.Join(rows, "\n")
}

// View implements tea.Model.
func (m Model) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.matrixView(),
		"",
		"out (scan codes + command replies): "+hexLog(m.outLog),
		"in (host commands sent):            "+hexLog(m.inLog),
		"",
		"arrows move, enter toggles a cell, r sends reset (0xFF), i sends read-id (0xF2), q quits",
	)
}

// Run starts the interactive simulator with km loaded, blocking until the
// user quits.
func Run(km keymap.Keymap) error {
	_, err := tea.NewProgram(New(km)).Run()
	return err
}
