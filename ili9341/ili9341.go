// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ili9341

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/GermanBionicSystems/tft/glyph"
	"github.com/GermanBionicSystems/tft/rgb888"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

var (
	// ErrNotConfigured is returned by operations called before Configure.
	ErrNotConfigured = errors.New("ili9341: not configured")
	// ErrNotInitialized is returned by device operations called before Init.
	ErrNotInitialized = errors.New("ili9341: not initialized")
	// ErrOutOfBounds is returned when drawing outside the framebuffer.
	ErrOutOfBounds = errors.New("ili9341: out of bounds")
)

// maxDim is the largest dimension the 16 bits address registers can hold.
const maxDim = 0xFFFF

type state int

const (
	unconfigured state = iota
	configured
	ready
)

func (s state) String() string {
	switch s {
	case unconfigured:
		return "unconfigured"
	case configured:
		return "configured"
	case ready:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Opts defines the options for the device.
type Opts struct {
	// Width and Height of the panel in pixels, in the orientation set by the
	// initialization table (landscape, 320x240 on the reference module).
	Width  int
	Height int
	// Buffer is the RGB888 framebuffer, Width*Height*3 bytes, owned by the
	// caller. NewSPI allocates one when nil.
	Buffer []byte
	// Port is the hardware link.
	Port Port
	// Font provides glyphs to WriteChar and WriteString. glyph.Default() is
	// used when nil.
	Font glyph.Lookup
}

// DefaultOpts is the configuration of the common 2.4" and 2.8" modules.
var DefaultOpts = Opts{
	Width:  320,
	Height: 240,
}

// Dev is an open handle to the display controller.
//
// It is not safe for concurrent use. Drawing while Refresh is running shows
// a mix of old and new rows on the panel.
type Dev struct {
	port Port
	bl   Backlighter

	rect image.Rectangle
	// fb wraps the caller's buffer.
	fb   *rgb888.Image
	font glyph.Lookup

	// lines holds ParallelLines rows of RGB565 cells, converted from fb before
	// each band is sent.
	lines  []byte
	cursor image.Point
	// pos is the start of the last SetPosition window.
	pos   image.Point
	state state
}

// New returns an unconfigured device. Call Configure then Init.
func New() *Dev {
	return &Dev{}
}

// NewSPI returns an initialized Dev that communicates over SPI to an
// ILI9341 controller.
//
// opts.Port is ignored and replaced by a SPIPort built from p and the pins.
// See NewSPIPort for wiring.
func NewSPI(p spi.Port, dc, rst, cs, bl gpio.PinOut, opts *Opts) (*Dev, error) {
	if opts == nil {
		o := DefaultOpts
		opts = &o
	}
	port, err := NewSPIPort(p, dc, rst, cs, bl)
	if err != nil {
		return nil, err
	}
	o := *opts
	o.Port = port
	if o.Buffer == nil && o.Width > 0 && o.Height > 0 {
		o.Buffer = make([]byte, o.Width*o.Height*3)
	}
	d := New()
	if err := d.Configure(&o); err != nil {
		return nil, err
	}
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

// Configure binds the panel geometry, framebuffer and port.
//
// It can be called again to replace them; the device then has to be
// initialized again.
func (d *Dev) Configure(opts *Opts) error {
	if opts == nil {
		return errors.New("ili9341: nil options")
	}
	if opts.Port == nil {
		return errors.New("ili9341: nil port")
	}
	if fp, ok := opts.Port.(*FuncPort); ok {
		if err := fp.validate(); err != nil {
			return err
		}
	}
	if opts.Width <= 0 || opts.Width > maxDim {
		return fmt.Errorf("ili9341: invalid width %d", opts.Width)
	}
	if opts.Height <= 0 || opts.Height > maxDim {
		return fmt.Errorf("ili9341: invalid height %d", opts.Height)
	}
	rect := image.Rect(0, 0, opts.Width, opts.Height)
	fb, err := rgb888.Wrap(rect, opts.Buffer)
	if err != nil {
		return fmt.Errorf("ili9341: %w", err)
	}
	d.port = opts.Port
	d.bl, _ = opts.Port.(Backlighter)
	d.rect = rect
	d.fb = fb
	d.font = opts.Font
	if d.font == nil {
		d.font = glyph.Default()
	}
	d.lines = nil
	d.state = configured
	return nil
}

// Init resets the panel, plays the initialization table and allocates the
// line buffer used by Refresh.
//
// Calling it again replays the whole sequence.
func (d *Dev) Init() error {
	if d.state == unconfigured {
		return ErrNotConfigured
	}
	eh := newErrorHandler(d.port)
	eh.reset()
	playCommands(eh, initCmds[:])
	if eh.err != nil {
		return eh.err
	}
	if d.lines == nil {
		d.lines = make([]byte, d.rect.Dx()*ParallelLines*2)
	}
	d.state = ready
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("ili9341.Dev{%dx%d, %s}", d.rect.Dx(), d.rect.Dy(), d.state)
}

func (d *Dev) isConfigured() error {
	if d.state == unconfigured {
		return ErrNotConfigured
	}
	return nil
}

func (d *Dev) isReady() error {
	switch d.state {
	case unconfigured:
		return ErrNotConfigured
	case configured:
		return ErrNotInitialized
	}
	return nil
}

// Buffer returns the framebuffer bound by Configure.
func (d *Dev) Buffer() ([]byte, error) {
	if err := d.isConfigured(); err != nil {
		return nil, err
	}
	return d.fb.Pix, nil
}

// Image returns the framebuffer as an image. It shares memory with the
// buffer passed to Configure.
func (d *Dev) Image() (*rgb888.Image, error) {
	if err := d.isConfigured(); err != nil {
		return nil, err
	}
	return d.fb, nil
}

// SetBacklight turns the backlight on or off. It does nothing when the port
// has no backlight control.
func (d *Dev) SetBacklight(on bool) error {
	if err := d.isConfigured(); err != nil {
		return err
	}
	if d.bl == nil {
		return nil
	}
	return d.bl.SetBacklight(gpio.Level(on))
}

// SetPosition sets the address window from (x, y) to the bottom right
// corner of the panel and starts a memory write. Following data transfers
// on the port are written to the panel memory.
func (d *Dev) SetPosition(x, y int) error {
	if err := d.isReady(); err != nil {
		return err
	}
	if !(image.Point{X: x, Y: y}).In(d.rect) {
		return fmt.Errorf("%w: position (%d, %d) outside %v", ErrOutOfBounds, x, y, d.rect)
	}
	eh := newErrorHandler(d.port)
	setWindow(eh, x, y, d.rect.Dx()-1, d.rect.Dy()-1)
	eh.sendCommand(memoryWrite)
	eh.dcOut(gpio.High)
	if eh.err != nil {
		return eh.err
	}
	d.pos = image.Pt(x, y)
	return nil
}

// Position returns the start of the window set by the last successful
// SetPosition.
func (d *Dev) Position() (x, y int) {
	return d.pos.X, d.pos.Y
}

// Invert the display colors.
func (d *Dev) Invert(on bool) error {
	if err := d.isReady(); err != nil {
		return err
	}
	cmd := invertOff
	if on {
		cmd = invertOn
	}
	eh := newErrorHandler(d.port)
	eh.sendCommand(cmd)
	return eh.err
}

// Halt implements conn.Resource.
//
// It turns the display off and enters sleep mode. Wake resumes.
func (d *Dev) Halt() error {
	if err := d.isReady(); err != nil {
		return err
	}
	eh := newErrorHandler(d.port)
	eh.sendCommand(displayOff)
	eh.sendCommand(sleepIn)
	eh.delay(cmdDelay)
	return eh.err
}

// Wake leaves sleep mode and turns the display on.
func (d *Dev) Wake() error {
	if err := d.isReady(); err != nil {
		return err
	}
	eh := newErrorHandler(d.port)
	eh.sendCommand(sleepOut)
	eh.delay(cmdDelay)
	eh.sendCommand(displayOn)
	return eh.err
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return rgb888.Model
}

// Bounds implements display.Drawer. Min is guaranteed to be {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Draw implements display.Drawer.
//
// It copies src into the framebuffer and refreshes the whole panel.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if err := d.isReady(); err != nil {
		return err
	}
	draw.Src.Draw(d.fb, r, src, sp)
	return d.Refresh()
}

var (
	_ conn.Resource  = &Dev{}
	_ display.Drawer = &Dev{}
)
