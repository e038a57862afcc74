// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ili9341

import (
	"fmt"
	"image"

	"github.com/GermanBionicSystems/tft/glyph"
	"github.com/GermanBionicSystems/tft/rgb888"
)

// charGap is the number of blank columns between two characters.
const charGap = 1

// SetCursor sets the top left corner of the next character. It is not
// checked against the panel size.
func (d *Dev) SetCursor(x, y int) {
	d.cursor = image.Pt(x, y)
}

// Cursor returns the top left corner of the next character.
func (d *Dev) Cursor() (x, y int) {
	return d.cursor.X, d.cursor.Y
}

// WriteChar draws r at the cursor and moves the cursor right by the glyph
// width plus one column.
//
// The error wraps glyph.ErrNotFound when the font has no glyph for r; the
// cursor is not moved then. Parts of the glyph outside the panel are clipped
// and reported as ErrOutOfBounds, the cursor still advances.
func (d *Dev) WriteChar(size glyph.Size, r rune, c rgb888.Color) error {
	if err := d.isConfigured(); err != nil {
		return err
	}
	cl := clipper{fb: d.fb, c: c}
	if err := d.writeChar(&cl, size, r); err != nil {
		return err
	}
	return cl.err()
}

// WriteString draws s from the cursor, one character after the other, on a
// single line.
//
// It stops at the first character missing from the font. Characters drawn
// before stay in the framebuffer and the cursor is left after the last one.
func (d *Dev) WriteString(size glyph.Size, s string, c rgb888.Color) error {
	if err := d.isConfigured(); err != nil {
		return err
	}
	cl := clipper{fb: d.fb, c: c}
	for _, r := range s {
		if err := d.writeChar(&cl, size, r); err != nil {
			return err
		}
	}
	return cl.err()
}

func (d *Dev) writeChar(cl *clipper, size glyph.Size, r rune) error {
	g, err := d.font.Glyph(r, size)
	if err != nil {
		return fmt.Errorf("ili9341: %q: %w", r, err)
	}
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.Bit(x, y) {
				cl.plot(d.cursor.X+x, d.cursor.Y+y)
			}
		}
	}
	d.cursor.X += g.Width + charGap
	return nil
}
