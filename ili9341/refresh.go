// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ili9341

import (
	"encoding/binary"
	"math/bits"
)

// ParallelLines is the number of rows converted and sent per band.
const ParallelLines = 16

// toRGB565 packs 8 bits channels into 5-6-5.
func toRGB565(r, g, b byte) uint16 {
	return uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b>>3)
}

// swap16 exchanges the two bytes of v.
func swap16(v uint16) uint16 {
	return bits.ReverseBytes16(v)
}

// convertBand converts RGB888 pixels from src into byte swapped RGB565
// cells in dst. dst cells are stored in memory order, low byte first, so
// the controller receives the high byte first.
func convertBand(dst, src []byte) {
	for i, j := 0, 0; j+2 < len(src) && i+1 < len(dst); i, j = i+2, j+3 {
		binary.LittleEndian.PutUint16(dst[i:], swap16(toRGB565(src[j], src[j+1], src[j+2])))
	}
}

// setWindow sets the column and page address ranges. Ends are sent as is.
func setWindow(ctrl controller, x0, y0, x1, y1 int) {
	ctrl.sendCommand(columnAddrSet)
	ctrl.sendData([]byte{byte(x0 >> 8), byte(x0), byte(x1 >> 8), byte(x1)})
	ctrl.sendCommand(pageAddrSet)
	ctrl.sendData([]byte{byte(y0 >> 8), byte(y0), byte(y1 >> 8), byte(y1)})
}

// sendBand addresses a band of h rows starting at row y and streams cells.
//
// The end column and page are width and y+h: the memory write stops with
// the data, so the extra row and column are never written.
func sendBand(ctrl controller, width, y, h int, cells []byte) {
	setWindow(ctrl, 0, y, width, y+h)
	ctrl.sendCommand(memoryWrite)
	ctrl.sendData(cells)
}

// Refresh converts the framebuffer band by band and sends it to the panel.
//
// The last band is shortened when the height is not a multiple of
// ParallelLines. On error the remaining bands are not sent; the panel keeps
// a mix of old and new content.
func (d *Dev) Refresh() error {
	if err := d.isReady(); err != nil {
		return err
	}
	w, h := d.rect.Dx(), d.rect.Dy()
	eh := newErrorHandler(d.port)
	for y := 0; y < h; y += ParallelLines {
		n := ParallelLines
		if y+n > h {
			n = h - y
		}
		cells := d.lines[:w*n*2]
		src := d.fb.Pix[d.fb.PixOffset(0, y):d.fb.PixOffset(0, y+n)]
		convertBand(cells, src)
		sendBand(eh, w, y, n, cells)
		if eh.err != nil {
			return eh.err
		}
	}
	return nil
}
