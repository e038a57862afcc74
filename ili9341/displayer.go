// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ili9341

import (
	"image/color"

	"github.com/GermanBionicSystems/tft/rgb888"
	"tinygo.org/x/drivers"
)

// Displayer returns d as a TinyGo drivers.Displayer, for use with libraries
// written against that interface such as tinyfont or tinydraw.
func (d *Dev) Displayer() drivers.Displayer {
	return displayer{d}
}

type displayer struct {
	d *Dev
}

// Size implements drivers.Displayer.
func (t displayer) Size() (x, y int16) {
	return int16(t.d.rect.Dx()), int16(t.d.rect.Dy())
}

// SetPixel implements drivers.Displayer. The interface has no error return,
// points outside the panel are ignored.
func (t displayer) SetPixel(x, y int16, c color.RGBA) {
	if t.d.fb == nil {
		return
	}
	t.d.fb.SetRGB(int(x), int(y), rgb888.Color{R: c.R, G: c.G, B: c.B})
}

// Display implements drivers.Displayer.
func (t displayer) Display() error {
	return t.d.Refresh()
}
