// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package emulator

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/maruel/ansi256"
)

func TestTerminal(t *testing.T) {
	var out bytes.Buffer
	term := newTerminal(&out, &TerminalOpts{Width: 4, Height: 4, Columns: 2})
	if got, want := term.String(), "Terminal{4x4, 2 columns}"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	red := color.RGBA{R: 0xFF, A: 0xFF}
	blue := color.RGBA{B: 0xFF, A: 0xFF}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if x < 2 {
				img.SetRGBA(x, y, red)
			} else {
				img.SetRGBA(x, y, blue)
			}
		}
	}
	if err := term.Draw(term.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	p := ansi256.Default
	want := "\033[H" +
		"\033[0m" + p.Block(color.NRGBA{0xFF, 0, 0, 0xFF}) + p.Block(color.NRGBA{0, 0, 0xFF, 0xFF}) + "\033[0m\n"
	if diff := cmp.Diff(out.String(), want); diff != "" {
		t.Errorf("Draw() difference (-got +want):\n%s", diff)
	}

	out.Reset()
	if err := term.Halt(); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "\033[0m\n" {
		t.Errorf("Halt() wrote %q", got)
	}
}

func TestTerminalScale(t *testing.T) {
	var out bytes.Buffer
	term := newTerminal(&out, &TerminalOpts{Width: 320, Height: 240})
	if err := term.Draw(term.Bounds(), image.Black, image.Point{}); err != nil {
		t.Fatal(err)
	}
	// 80 columns, 240*80/320/2 rows.
	if got := strings.Count(out.String(), "\n"); got != 30 {
		t.Errorf("%d rows, want 30", got)
	}

	out.Reset()
	term = newTerminal(&out, &TerminalOpts{Width: 3, Height: 1, Columns: 100})
	if err := term.Draw(term.Bounds(), image.Black, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(out.String(), "\n"); got != 1 {
		t.Errorf("%d rows, want 1", got)
	}
	if term.cols != 3 {
		t.Errorf("%d columns, want 3", term.cols)
	}
}
