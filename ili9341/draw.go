// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ili9341

import (
	"fmt"
	"image"

	"github.com/GermanBionicSystems/tft/rgb888"
)

// The drawing primitives only modify the framebuffer. Call Refresh to send
// it to the panel.

// clipper plots into the framebuffer and counts the points falling outside.
type clipper struct {
	fb    *rgb888.Image
	c     rgb888.Color
	out   int
	first image.Point
}

func (cl *clipper) plot(x, y int) {
	if !cl.fb.In(x, y) {
		if cl.out == 0 {
			cl.first = image.Pt(x, y)
		}
		cl.out++
		return
	}
	cl.fb.SetRGB(x, y, cl.c)
}

func (cl *clipper) err() error {
	if cl.out == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d points outside %v, first at %v", ErrOutOfBounds, cl.out, cl.fb.Rect, cl.first)
}

// SetPixel sets the pixel at (x, y). Nothing is written when the point is
// outside the panel.
func (d *Dev) SetPixel(x, y int, c rgb888.Color) error {
	if err := d.isConfigured(); err != nil {
		return err
	}
	cl := clipper{fb: d.fb, c: c}
	cl.plot(x, y)
	return cl.err()
}

// Fill sets the whole framebuffer to c.
func (d *Dev) Fill(c rgb888.Color) error {
	if err := d.isConfigured(); err != nil {
		return err
	}
	d.fb.Fill(c)
	return nil
}

// DrawLine draws a line from (x1, y1) to (x2, y2), both ends included.
//
// Points outside the panel are skipped and reported as ErrOutOfBounds once
// the line is drawn.
func (d *Dev) DrawLine(x1, y1, x2, y2 int, c rgb888.Color) error {
	if err := d.isConfigured(); err != nil {
		return err
	}
	cl := clipper{fb: d.fb, c: c}
	line(x1, y1, x2, y2, cl.plot)
	return cl.err()
}

// DrawRectangle draws the outline of the w by h rectangle whose top left
// corner is (x, y).
func (d *Dev) DrawRectangle(x, y, w, h int, c rgb888.Color) error {
	if err := d.isConfigured(); err != nil {
		return err
	}
	if w <= 0 || h <= 0 {
		return nil
	}
	cl := clipper{fb: d.fb, c: c}
	x2, y2 := x+w-1, y+h-1
	line(x, y, x2, y, cl.plot)
	line(x2, y, x2, y2, cl.plot)
	line(x2, y2, x, y2, cl.plot)
	line(x, y2, x, y, cl.plot)
	return cl.err()
}

// DrawCircle draws the outline of a circle centered on (x0, y0).
func (d *Dev) DrawCircle(x0, y0, r int, c rgb888.Color) error {
	if err := d.isConfigured(); err != nil {
		return err
	}
	if r < 0 {
		return fmt.Errorf("ili9341: invalid radius %d", r)
	}
	cl := clipper{fb: d.fb, c: c}
	circle(x0, y0, r, cl.plot)
	return cl.err()
}

// line is Bresenham's algorithm. The ends are ordered first so the same
// points are produced in both directions.
func line(x1, y1, x2, y2 int, plot func(x, y int)) {
	if x1 > x2 || (x1 == x2 && y1 > y2) {
		x1, y1, x2, y2 = x2, y2, x1, y1
	}
	dx, dy := abs(x2-x1), abs(y2-y1)
	sx, sy := -1, -1
	if x1 < x2 {
		sx = 1
	}
	if y1 < y2 {
		sy = 1
	}
	e := dx - dy

	plot(x2, y2)
	for x1 != x2 || y1 != y2 {
		plot(x1, y1)
		e2 := e * 2
		if e2 > -dy {
			e -= dy
			x1 += sx
		}
		if e2 < dx {
			e += dx
			y1 += sy
		}
	}
}

// circle is the midpoint circle algorithm, plotting the four quadrants at
// once.
func circle(x0, y0, r int, plot func(x, y int)) {
	x, y := -r, 0
	e := 2 - 2*r
	for {
		plot(x0-x, y0+y)
		plot(x0+x, y0+y)
		plot(x0+x, y0-y)
		plot(x0-x, y0-y)
		e2 := e
		if e2 <= y {
			y++
			e += y*2 + 1
			if -x == y && e2 <= x {
				e2 = 0
			}
		}
		if e2 > x {
			x++
			e += x*2 + 1
		}
		if x > 0 {
			return
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
