// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package rgb888 implements an image type storing 24 bits per pixel, 3 bytes
// in R, G, B order, rows packed without padding.
//
// This is the layout expected by the ili9341 framebuffer. The backing slice
// may be owned by the caller, see Wrap.
package rgb888

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Color is a 24 bits RGB color.
type Color struct {
	R, G, B uint8
}

// FromUint32 returns the Color encoded as 0xRRGGBB.
func FromUint32(v uint32) Color {
	return Color{R: byte(v >> 16), G: byte(v >> 8), B: byte(v)}
}

// Uint32 returns the color encoded as 0xRRGGBB.
func (c Color) Uint32() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// RGBA implements color.Color. The color is always opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xFFFF
}

func (c Color) String() string {
	return fmt.Sprintf("#%06x", c.Uint32())
}

// Common colors.
var (
	Black = Color{}
	White = Color{0xFF, 0xFF, 0xFF}
	Red   = Color{R: 0xFF}
	Green = Color{G: 0xFF}
	Blue  = Color{B: 0xFF}
)

func convert(c color.Color) color.Color {
	if v, ok := c.(Color); ok {
		return v
	}
	// Alpha is ignored; the panel has no notion of transparency.
	r, g, b, _ := c.RGBA()
	return Color{R: byte(r >> 8), G: byte(g >> 8), B: byte(b >> 8)}
}

// Model converts any color.Color to Color.
var Model = color.ModelFunc(convert)

// Image is an in-memory image whose At method returns Color values.
type Image struct {
	// Pix holds the image's pixels, 3 bytes per pixel. The pixel at (x, y)
	// starts at Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)*3].
	Pix []byte
	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int
	// Rect is the image's bounds.
	Rect image.Rectangle
}

// New returns an Image with the given bounds, all pixels black.
func New(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return &Image{Rect: r}
	}
	return &Image{Pix: make([]byte, 3*w*h), Stride: 3 * w, Rect: r}
}

// Wrap returns an Image using pix as backing storage. The slice is not
// copied; writes to the image are visible to the caller and vice versa.
func Wrap(r image.Rectangle, pix []byte) (*Image, error) {
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return nil, errors.New("rgb888: empty rectangle")
	}
	if len(pix) != 3*w*h {
		return nil, fmt.Errorf("rgb888: invalid buffer length; expected %d bytes, got %d bytes", 3*w*h, len(pix))
	}
	return &Image{Pix: pix, Stride: 3 * w, Rect: r}, nil
}

// ColorModel implements image.Image.
func (i *Image) ColorModel() color.Model {
	return Model
}

// Bounds implements image.Image.
func (i *Image) Bounds() image.Rectangle {
	return i.Rect
}

// In reports whether (x, y) is inside the image.
func (i *Image) In(x, y int) bool {
	return image.Point{X: x, Y: y}.In(i.Rect)
}

// PixOffset returns the index of the first element of Pix that corresponds
// to the pixel at (x, y).
func (i *Image) PixOffset(x, y int) int {
	return (y-i.Rect.Min.Y)*i.Stride + (x-i.Rect.Min.X)*3
}

// At implements image.Image.
func (i *Image) At(x, y int) color.Color {
	return i.RGBAt(x, y)
}

// RGBAt returns the Color of the pixel at (x, y), Black outside the image.
func (i *Image) RGBAt(x, y int) Color {
	if !i.In(x, y) {
		return Color{}
	}
	o := i.PixOffset(x, y)
	p := i.Pix[o : o+3 : o+3]
	return Color{R: p[0], G: p[1], B: p[2]}
}

// Set implements draw.Image.
func (i *Image) Set(x, y int, c color.Color) {
	i.SetRGB(x, y, Model.Convert(c).(Color))
}

// SetRGB sets the pixel at (x, y). Points outside the image are ignored.
func (i *Image) SetRGB(x, y int, c Color) {
	if !i.In(x, y) {
		return
	}
	o := i.PixOffset(x, y)
	p := i.Pix[o : o+3 : o+3]
	p[0] = c.R
	p[1] = c.G
	p[2] = c.B
}

// Fill sets every pixel of the image to c.
func (i *Image) Fill(c Color) {
	w, h := i.Rect.Dx(), i.Rect.Dy()
	if w <= 0 || h <= 0 {
		return
	}
	row := i.Pix[:3*w]
	row[0], row[1], row[2] = c.R, c.G, c.B
	// Double the filled prefix on each round.
	for n := 3; n < len(row); n *= 2 {
		copy(row[n:], row[:n])
	}
	for y := 1; y < h; y++ {
		copy(i.Pix[y*i.Stride:y*i.Stride+3*w], row)
	}
}

// SubImage returns an image representing the portion of the image visible
// through r. The returned image shares pixels with the original.
func (i *Image) SubImage(r image.Rectangle) image.Image {
	r = r.Intersect(i.Rect)
	if r.Empty() {
		return &Image{}
	}
	o := i.PixOffset(r.Min.X, r.Min.Y)
	return &Image{Pix: i.Pix[o:], Stride: i.Stride, Rect: r}
}

// Opaque reports whether the image is fully opaque, which is always true.
func (i *Image) Opaque() bool {
	return true
}

var _ draw.Image = &Image{}
