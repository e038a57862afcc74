// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package emulator

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"
	"time"

	"github.com/GermanBionicSystems/tft/ili9341"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

// Commands understood by the decoder. Others only have their parameters
// stored, see Register.
const (
	swReset       byte = 0x01
	sleepIn       byte = 0x10
	sleepOut      byte = 0x11
	invertOff     byte = 0x20
	invertOn      byte = 0x21
	displayOff    byte = 0x28
	displayOn     byte = 0x29
	columnAddrSet byte = 0x2A
	pageAddrSet   byte = 0x2B
	memoryWrite   byte = 0x2C
)

var (
	errDeselected = errors.New("emulator: send while chip select is high")
	errInReset    = errors.New("emulator: send while reset is low")
)

// Opts defines the options of a Panel.
type Opts struct {
	// Width and Height of the panel memory in pixels.
	Width, Height int
	// Record keeps a copy of every transfer, see Transfers.
	Record bool
	// RealTime makes Delay sleep. By default delays are only accounted.
	RealTime bool

	// Format of the images sent by ServeHTTP when the client does not ask.
	Format ImageFormat
	// PNGCompression and JPEGQuality tune the encoders of ServeHTTP.
	PNGCompression png.CompressionLevel
	JPEGQuality    int
}

// Transfer is one Send on the panel port.
type Transfer struct {
	// DC is gpio.Low for a command, gpio.High for data.
	DC   gpio.Level
	Data []byte
}

// State is the power and display state decoded from the commands.
type State struct {
	// Asleep is true after reset and SLPIN, until SLPOUT.
	Asleep bool
	// On is true after DISPON, until DISPOFF or reset.
	On bool
	// Inverted is set by INVON.
	Inverted  bool
	Backlight gpio.Level
	// Frames counts the data transfers written to the panel memory.
	Frames int
}

// Panel emulates an ILI9341 panel behind an ili9341.Port.
//
// It decodes the stream sent by the driver into an in-memory image that can
// be looked at with Snapshot, rendered on a terminal or served over HTTP.
//
// It is safe for concurrent use.
type Panel struct {
	sink *sink
	opts Opts

	mu    sync.Mutex
	mem   *image.RGBA
	dc    gpio.Level
	cs    gpio.Level
	rst   gpio.Level
	state State
	slept time.Duration

	cmd  byte
	args []byte
	regs map[byte][]byte

	// Address window, ends included, and the next pixel written.
	win     image.Rectangle
	cur     image.Point
	writing bool
	// Odd byte of a pixel split across two transfers.
	half    byte
	hasHalf bool

	transfers []Transfer
}

// New returns a Panel in its power on state: asleep, display off, memory
// black.
func New(opts *Opts) (*Panel, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("emulator: invalid size %dx%d", opts.Width, opts.Height)
	}
	p := &Panel{
		opts: *opts,
		mem:  image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height)),
		rst:  gpio.High,
		regs: map[byte][]byte{},
	}
	draw.Draw(p.mem, p.mem.Bounds(), image.Black, image.Point{}, draw.Src)
	p.state.Backlight = gpio.High
	p.resetLocked()
	p.sink = newSink(p.opts.Format, p.opts.PNGCompression, p.opts.JPEGQuality, p.Snapshot)
	return p, nil
}

func (p *Panel) String() string {
	return fmt.Sprintf("emulator.Panel{%dx%d}", p.opts.Width, p.opts.Height)
}

// Bounds returns the panel memory size.
func (p *Panel) Bounds() image.Rectangle {
	return p.mem.Bounds()
}

// Halt implements conn.Resource. It ends the running ServeHTTP streams.
func (p *Panel) Halt() error {
	p.sink.halt()
	return nil
}

// resetLocked returns the controller to its default state. The memory is kept.
func (p *Panel) resetLocked() {
	p.state.Asleep = true
	p.state.On = false
	p.state.Inverted = false
	p.win = image.Rect(0, 0, p.opts.Width-1, p.opts.Height-1)
	p.cmd = 0
	p.args = nil
	p.writing = false
	p.hasHalf = false
}

// Send implements ili9341.Port.
func (p *Panel) Send(b []byte) error {
	p.mu.Lock()
	changed, err := p.sendLocked(b)
	p.mu.Unlock()
	if changed {
		p.sink.changed()
	}
	return err
}

func (p *Panel) sendLocked(b []byte) (bool, error) {
	if p.cs == gpio.High {
		return false, errDeselected
	}
	if p.rst == gpio.Low {
		return false, errInReset
	}
	if p.opts.Record {
		p.transfers = append(p.transfers, Transfer{DC: p.dc, Data: append([]byte(nil), b...)})
	}
	if p.dc == gpio.Low {
		changed := false
		for _, c := range b {
			if p.command(c) {
				changed = true
			}
		}
		return changed, nil
	}
	if p.writing {
		p.pixels(b)
		p.state.Frames++
		return true, nil
	}
	p.args = append(p.args, b...)
	p.regs[p.cmd] = append([]byte(nil), p.args...)
	switch p.cmd {
	case columnAddrSet:
		if len(p.args) >= 4 {
			p.win.Min.X, p.win.Max.X = p.clamp(p.args, p.opts.Width)
		}
	case pageAddrSet:
		if len(p.args) >= 4 {
			p.win.Min.Y, p.win.Max.Y = p.clamp(p.args, p.opts.Height)
		}
	}
	return false, nil
}

// clamp decodes a start and end address, ends limited to the panel.
func (p *Panel) clamp(args []byte, size int) (int, int) {
	start := int(args[0])<<8 | int(args[1])
	end := int(args[2])<<8 | int(args[3])
	if end >= size {
		end = size - 1
	}
	if start > end {
		start = end
	}
	return start, end
}

// command decodes one opcode and reports whether the visible image changed.
func (p *Panel) command(c byte) bool {
	p.cmd = c
	p.args = nil
	p.writing = false
	p.hasHalf = false
	switch c {
	case swReset:
		p.resetLocked()
		return true
	case sleepIn:
		p.state.Asleep = true
		return true
	case sleepOut:
		p.state.Asleep = false
		return true
	case invertOff:
		p.state.Inverted = false
		return true
	case invertOn:
		p.state.Inverted = true
		return true
	case displayOff:
		p.state.On = false
		return true
	case displayOn:
		p.state.On = true
		return true
	case memoryWrite:
		p.writing = true
		p.cur = p.win.Min
	}
	return false
}

// pixels writes big endian RGB565 cells at the write pointer. The pointer
// wraps inside the window like the controller does.
func (p *Panel) pixels(b []byte) {
	if p.hasHalf && len(b) != 0 {
		p.pixel(uint16(p.half)<<8 | uint16(b[0]))
		b = b[1:]
		p.hasHalf = false
	}
	for ; len(b) >= 2; b = b[2:] {
		p.pixel(uint16(b[0])<<8 | uint16(b[1]))
	}
	if len(b) == 1 {
		p.half = b[0]
		p.hasHalf = true
	}
}

func (p *Panel) pixel(v uint16) {
	p.mem.SetRGBA(p.cur.X, p.cur.Y, FromRGB565(v))
	p.cur.X++
	if p.cur.X > p.win.Max.X {
		p.cur.X = p.win.Min.X
		p.cur.Y++
		if p.cur.Y > p.win.Max.Y {
			p.cur.Y = p.win.Min.Y
		}
	}
}

// FromRGB565 expands a RGB565 cell to 8 bits channels. The high bits are
// replicated into the low bits so 0xFFFF is white.
func FromRGB565(v uint16) color.RGBA {
	r := uint8(v >> 11 & 0x1F)
	g := uint8(v >> 5 & 0x3F)
	b := uint8(v & 0x1F)
	return color.RGBA{R: r<<3 | r>>2, G: g<<2 | g>>4, B: b<<3 | b>>2, A: 0xFF}
}

// SetDataCommand implements ili9341.Port.
func (p *Panel) SetDataCommand(l gpio.Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dc = l
	return nil
}

// SetReset implements ili9341.Port. The controller is held in its default
// state while l is low.
func (p *Panel) SetReset(l gpio.Level) error {
	p.mu.Lock()
	p.rst = l
	if l == gpio.Low {
		p.resetLocked()
	}
	p.mu.Unlock()
	p.sink.changed()
	return nil
}

// SetChipSelect implements ili9341.ChipSelecter. Sends are refused while l
// is high.
func (p *Panel) SetChipSelect(l gpio.Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cs = l
	return nil
}

// SetBacklight implements ili9341.Backlighter.
func (p *Panel) SetBacklight(l gpio.Level) error {
	p.mu.Lock()
	p.state.Backlight = l
	p.mu.Unlock()
	p.sink.changed()
	return nil
}

// Delay implements ili9341.Port.
func (p *Panel) Delay(d time.Duration) {
	p.mu.Lock()
	p.slept += d
	p.mu.Unlock()
	if p.opts.RealTime {
		time.Sleep(d)
	}
}

// Slept returns the sum of the delays requested.
func (p *Panel) Slept() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.slept
}

// State returns the decoded power and display state.
func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Register returns the last parameters sent with command c.
func (p *Panel) Register(c byte) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.regs[c]...)
}

// Transfers returns the recorded transfers. It is empty unless Opts.Record is
// set.
func (p *Panel) Transfers() []Transfer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Transfer(nil), p.transfers...)
}

// Memory returns a copy of the panel memory.
func (p *Panel) Memory() *image.RGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := image.NewRGBA(p.mem.Rect)
	copy(out.Pix, p.mem.Pix)
	return out
}

// Snapshot returns what the panel shows: the memory, inverted when INVON is
// active, or black when the display is off, asleep, in reset or without
// backlight.
func (p *Panel) Snapshot() *image.RGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := image.NewRGBA(p.mem.Rect)
	if !p.state.On || p.state.Asleep || p.rst == gpio.Low || p.state.Backlight == gpio.Low {
		draw.Draw(out, out.Rect, image.Black, image.Point{}, draw.Src)
		return out
	}
	copy(out.Pix, p.mem.Pix)
	if p.state.Inverted {
		for i := 0; i < len(out.Pix); i += 4 {
			out.Pix[i] ^= 0xFF
			out.Pix[i+1] ^= 0xFF
			out.Pix[i+2] ^= 0xFF
		}
	}
	return out
}

var (
	_ ili9341.Port         = &Panel{}
	_ ili9341.ChipSelecter = &Panel{}
	_ ili9341.Backlighter  = &Panel{}
	_ conn.Resource        = &Panel{}
)
