// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package emulator

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
)

// TerminalOpts represents the options of a Terminal.
type TerminalOpts struct {
	// Width and Height of the image drawn.
	Width, Height int
	// Columns is the width of the output in characters. The image is scaled
	// down to fit, keeping its aspect ratio with cells twice as high as
	// wide. Defaults to 80.
	Columns int
	Palette *ansi256.Palette

	_ struct{}
}

// Terminal is a display.Drawer that outputs to the console using ANSI color
// codes.
//
// Each Draw repaints the whole image from the top left corner of the
// terminal, so a sequence of Panel snapshots shows as an animation.
type Terminal struct {
	w       io.Writer
	cols    int
	palette ansi256.Palette

	img *image.RGBA
	buf bytes.Buffer
}

// NewTerminal returns a Terminal that displays at the console.
func NewTerminal(opts *TerminalOpts) *Terminal {
	return newTerminal(colorable.NewColorableStdout(), opts)
}

func newTerminal(w io.Writer, opts *TerminalOpts) *Terminal {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	cols := opts.Columns
	if cols <= 0 {
		cols = 80
	}
	if cols > opts.Width {
		cols = opts.Width
	}
	return &Terminal{
		w:       w,
		cols:    cols,
		palette: *p,
		img:     image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height)),
	}
}

func (t *Terminal) String() string {
	return fmt.Sprintf("Terminal{%dx%d, %d columns}", t.img.Rect.Dx(), t.img.Rect.Dy(), t.cols)
}

// Halt implements conn.Resource.
//
// It resets the colors so the terminal is not corrupted.
func (t *Terminal) Halt() error {
	_, err := t.w.Write([]byte("\033[0m\n"))
	return err
}

// ColorModel implements display.Drawer.
func (t *Terminal) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements display.Drawer.
func (t *Terminal) Bounds() image.Rectangle {
	return t.img.Rect
}

// Draw implements display.Drawer.
func (t *Terminal) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	draw.Draw(t.img, r, src, sp, draw.Src)
	return t.refresh()
}

// rows returns the number of output lines.
func (t *Terminal) rows() int {
	w, h := t.img.Rect.Dx(), t.img.Rect.Dy()
	if w == 0 || h == 0 {
		return 0
	}
	if n := h * t.cols / w / 2; n > 0 {
		return n
	}
	return 1
}

func (t *Terminal) refresh() error {
	w, h := t.img.Rect.Dx(), t.img.Rect.Dy()
	rows := t.rows()
	t.buf.Reset()
	_, _ = t.buf.WriteString("\033[H")
	for row := 0; row < rows; row++ {
		_, _ = t.buf.WriteString("\033[0m")
		y := row * h / rows
		for col := 0; col < t.cols; col++ {
			c := t.img.RGBAAt(col*w/t.cols, y)
			_, _ = io.WriteString(&t.buf, t.palette.Block(color.NRGBA{c.R, c.G, c.B, 255}))
		}
		_, _ = t.buf.WriteString("\033[0m\n")
	}
	_, err := t.buf.WriteTo(t.w)
	return err
}

var _ display.Drawer = &Terminal{}
var _ fmt.Stringer = &Terminal{}
