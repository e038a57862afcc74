// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ili9341

import (
	"bytes"
	"errors"
	"testing"

	"github.com/GermanBionicSystems/tft/rgb888"
	"github.com/google/go-cmp/cmp"
)

func TestToRGB565(t *testing.T) {
	for _, tc := range []struct {
		r, g, b byte
		want    uint16
	}{
		{0xF8, 0xFC, 0xF8, 0xFFFF},
		{0xFF, 0xFF, 0xFF, 0xFFFF},
		{0xF8, 0x00, 0x00, 0xF800},
		{0x00, 0xFC, 0x00, 0x07E0},
		{0x00, 0x00, 0xF8, 0x001F},
		{0x07, 0x03, 0x07, 0x0000},
		{0x80, 0x80, 0x80, 0x8410},
	} {
		if got := toRGB565(tc.r, tc.g, tc.b); got != tc.want {
			t.Errorf("toRGB565(%#02x, %#02x, %#02x) = %#04x, want %#04x", tc.r, tc.g, tc.b, got, tc.want)
		}
	}
}

func TestSwap16(t *testing.T) {
	if got := swap16(0xF800); got != 0x00F8 {
		t.Errorf("swap16(0xF800) = %#04x", got)
	}
	if got := swap16(swap16(0x1234)); got != 0x1234 {
		t.Errorf("swap16 twice = %#04x", got)
	}
}

func TestConvertBand(t *testing.T) {
	src := []byte{
		0xF8, 0x00, 0x00,
		0x00, 0xFC, 0x00,
		0x00, 0x00, 0xF8,
		0xF8, 0xFC, 0xF8,
	}
	dst := make([]byte, 8)
	convertBand(dst, src)
	// The high byte of each RGB565 cell goes first on the wire.
	want := []byte{0xF8, 0x00, 0x07, 0xE0, 0x00, 0x1F, 0xFF, 0xFF}
	if diff := cmp.Diff(dst, want); diff != "" {
		t.Errorf("convertBand() difference (-got +want):\n%s", diff)
	}
}

func TestRefresh(t *testing.T) {
	for _, tc := range []struct {
		name  string
		w, h  int
		bands [][2]int
	}{
		{"one row", 3, 1, [][2]int{{0, 1}}},
		{"exact", 5, 32, [][2]int{{0, 16}, {16, 16}}},
		{"partial band", 4, 20, [][2]int{{0, 16}, {16, 4}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d, p := newTestDev(t, tc.w, tc.h)
			if err := d.Fill(rgb888.Red); err != nil {
				t.Fatal(err)
			}
			if err := d.Refresh(); err != nil {
				t.Fatal(err)
			}
			var want []record
			for _, b := range tc.bands {
				y, n := b[0], b[1]
				want = append(want,
					record{cmd: columnAddrSet, data: []byte{0, 0, byte(tc.w >> 8), byte(tc.w)}},
					record{cmd: pageAddrSet, data: []byte{byte(y >> 8), byte(y), byte((y + n) >> 8), byte(y + n)}},
					record{cmd: memoryWrite, data: bytes.Repeat([]byte{0xF8, 0x00}, tc.w*n)},
				)
			}
			if diff := diffRecords(p.records, want); diff != "" {
				t.Errorf("Refresh() difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestRefreshFullPanel(t *testing.T) {
	d, p := newTestDev(t, 320, 240)
	if err := d.Refresh(); err != nil {
		t.Fatal(err)
	}
	// 240/16 bands, each a window command pair and a memory write.
	if got, want := len(p.records), 15*3; got != want {
		t.Fatalf("%d commands, want %d", got, want)
	}
	for i := 2; i < len(p.records); i += 3 {
		if got, want := len(p.records[i].data), 320*ParallelLines*2; got != want {
			t.Errorf("band %d: %d bytes, want %d", i/3, got, want)
		}
	}
	last := p.records[len(p.records)-2]
	if diff := cmp.Diff(last.data, []byte{0x00, 0xE0, 0x00, 0xF0}); diff != "" {
		t.Errorf("last page window difference (-got +want):\n%s", diff)
	}
}

func TestRefreshRows(t *testing.T) {
	d, p := newTestDev(t, 2, 18)
	if err := d.SetPixel(1, 17, rgb888.Blue); err != nil {
		t.Fatal(err)
	}
	if err := d.Refresh(); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x1F}
	if diff := cmp.Diff(p.records[5].data, want); diff != "" {
		t.Errorf("last band difference (-got +want):\n%s", diff)
	}
}

func TestRefreshError(t *testing.T) {
	d, p := newTestDev(t, 2, 40)
	// Fail the memory write of the second band.
	p.failAt = 6 + 6
	if err := d.Refresh(); !errors.Is(err, errSend) {
		t.Fatalf("Refresh() = %v, want %v", err, errSend)
	}
	if p.sends != 12 {
		t.Errorf("%d sends, want 12", p.sends)
	}
}
