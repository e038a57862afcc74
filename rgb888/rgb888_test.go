// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package rgb888

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestColor(t *testing.T) {
	c := FromUint32(0x123456)
	if diff := cmp.Diff(c, Color{0x12, 0x34, 0x56}); diff != "" {
		t.Errorf("FromUint32() difference (-got +want):\n%s", diff)
	}
	if got := c.Uint32(); got != 0x123456 {
		t.Errorf("Uint32() = %#x, want 0x123456", got)
	}
	if got := c.String(); got != "#123456" {
		t.Errorf("String() = %q", got)
	}
	r, g, b, a := White.RGBA()
	if r != 0xFFFF || g != 0xFFFF || b != 0xFFFF || a != 0xFFFF {
		t.Errorf("White.RGBA() = %#x %#x %#x %#x", r, g, b, a)
	}
}

func TestModel(t *testing.T) {
	for _, tc := range []struct {
		in   color.Color
		want Color
	}{
		{Color{1, 2, 3}, Color{1, 2, 3}},
		{color.RGBA{0x10, 0x20, 0x30, 0xFF}, Color{0x10, 0x20, 0x30}},
		{color.Gray{0x80}, Color{0x80, 0x80, 0x80}},
		{color.Black, Black},
		{color.White, White},
	} {
		if diff := cmp.Diff(Model.Convert(tc.in), color.Color(tc.want)); diff != "" {
			t.Errorf("Convert(%v) difference (-got +want):\n%s", tc.in, diff)
		}
	}
}

func TestWrap(t *testing.T) {
	pix := make([]byte, 4*2*3)
	img, err := Wrap(image.Rect(0, 0, 4, 2), pix)
	if err != nil {
		t.Fatal(err)
	}
	img.SetRGB(3, 1, Color{9, 8, 7})
	if diff := cmp.Diff(pix[len(pix)-3:], []byte{9, 8, 7}); diff != "" {
		t.Errorf("Wrap() does not share storage (-got +want):\n%s", diff)
	}

	if _, err := Wrap(image.Rect(0, 0, 4, 2), make([]byte, 23)); err == nil {
		t.Error("Wrap() with short buffer should fail")
	}
	if _, err := Wrap(image.Rectangle{}, nil); err == nil {
		t.Error("Wrap() with empty rectangle should fail")
	}
}

func TestSetAt(t *testing.T) {
	img := New(image.Rect(0, 0, 5, 5))
	img.Set(2, 3, color.RGBA{0xAA, 0xBB, 0xCC, 0xFF})
	if got := img.RGBAt(2, 3); got != (Color{0xAA, 0xBB, 0xCC}) {
		t.Errorf("RGBAt(2, 3) = %v", got)
	}
	if got := img.PixOffset(2, 3); got != (3*5+2)*3 {
		t.Errorf("PixOffset(2, 3) = %d", got)
	}
	// Out of range accesses are ignored.
	img.SetRGB(5, 0, White)
	img.SetRGB(-1, 0, White)
	if got := img.RGBAt(-1, 0); got != Black {
		t.Errorf("RGBAt(-1, 0) = %v", got)
	}
	for i, v := range img.Pix {
		if v != 0 && (i < (3*5+2)*3 || i >= (3*5+3)*3) {
			t.Fatalf("unexpected write at %d", i)
		}
	}
}

func TestFill(t *testing.T) {
	for _, r := range []image.Rectangle{
		image.Rect(0, 0, 1, 1),
		image.Rect(0, 0, 7, 3),
		image.Rect(0, 0, 320, 240),
	} {
		img := New(r)
		c := Color{0x12, 0x34, 0x56}
		img.Fill(c)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				if got := img.RGBAt(x, y); got != c {
					t.Fatalf("%v: RGBAt(%d, %d) = %v, want %v", r, x, y, got, c)
				}
			}
		}
	}
}

func TestSubImageFill(t *testing.T) {
	img := New(image.Rect(0, 0, 6, 6))
	sub := img.SubImage(image.Rect(2, 2, 4, 4)).(*Image)
	sub.Fill(Red)
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			want := Black
			if x >= 2 && x < 4 && y >= 2 && y < 4 {
				want = Red
			}
			if got := img.RGBAt(x, y); got != want {
				t.Errorf("RGBAt(%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestDraw(t *testing.T) {
	img := New(image.Rect(0, 0, 4, 4))
	draw.Draw(img, image.Rect(1, 1, 3, 3), &image.Uniform{color.RGBA{0, 0xFF, 0, 0xFF}}, image.Point{}, draw.Src)
	if got := img.RGBAt(1, 1); got != Green {
		t.Errorf("RGBAt(1, 1) = %v", got)
	}
	if got := img.RGBAt(3, 3); got != Black {
		t.Errorf("RGBAt(3, 3) = %v", got)
	}
}
