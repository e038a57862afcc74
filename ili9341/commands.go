// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ili9341

import "time"

// Commands
const (
	swReset            byte = 0x01
	sleepIn            byte = 0x10
	sleepOut           byte = 0x11
	invertOff          byte = 0x20
	invertOn           byte = 0x21
	gammaSet           byte = 0x26
	displayOff         byte = 0x28
	displayOn          byte = 0x29
	columnAddrSet      byte = 0x2A
	pageAddrSet        byte = 0x2B
	memoryWrite        byte = 0x2C
	memoryAccessCtl    byte = 0x36
	pixelFormatSet     byte = 0x3A
	frameRateCtl       byte = 0xB1
	displayFunctionCtl byte = 0xB6
	entryModeSet       byte = 0xB7
	powerCtl1          byte = 0xC0
	powerCtl2          byte = 0xC1
	vcomCtl1           byte = 0xC5
	vcomCtl2           byte = 0xC7
	powerCtlA          byte = 0xCB
	powerCtlB          byte = 0xCF
	positiveGamma      byte = 0xE0
	negativeGamma      byte = 0xE1
	driverTimingCtlA   byte = 0xE8
	driverTimingCtlB   byte = 0xEA
	powerOnSeqCtl      byte = 0xED
	enable3Gamma       byte = 0xF2
	pumpRatioCtl       byte = 0xF7
)

// Descriptor bits of a command table entry.
const (
	descLenMask byte = 0x1F
	descDelay   byte = 0x80
	descEnd     byte = 0xFF
)

// cmdDelay is the wait after a command flagged with descDelay, and each half
// of the reset pulse.
const cmdDelay = 100 * time.Millisecond

// command is one register write of an initialization table.
type command struct {
	opcode byte
	data   [16]byte
	// Low 5 bits are the payload length, bit 7 requests a delay instead of a
	// payload, 0xFF terminates the table.
	descriptor byte
}

func (c *command) length() int {
	return int(c.descriptor & descLenMask)
}

func (c *command) delay() bool {
	return c.descriptor != descEnd && c.descriptor&descDelay != 0
}

func (c *command) end() bool {
	return c.descriptor == descEnd
}

func (c *command) payload() []byte {
	return c.data[:c.length()]
}

// initCmds is the register initialization sequence. The values are vendor
// settings and must be kept byte for byte.
var initCmds = [...]command{
	// Power control B, power control = 0, DC_ENA = 1
	{powerCtlB, [16]byte{0x00, 0x83, 0x30}, 3},
	// Power on sequence control: cp1 keeps 1 frame, 1st frame enable,
	// vcl = 0, ddvdh = 3, vgh = 1, vgl = 2, DDVDH_ENH = 1
	{powerOnSeqCtl, [16]byte{0x64, 0x03, 0x12, 0x81}, 4},
	// Driver timing control A: non-overlap = default + 1, EQ = default - 1,
	// CR = default, pre-charge = default - 1
	{driverTimingCtlA, [16]byte{0x85, 0x01, 0x79}, 3},
	// Power control A, Vcore = 1.6V, DDVDH = 5.6V
	{powerCtlA, [16]byte{0x39, 0x2C, 0x00, 0x34, 0x02}, 5},
	// Pump ratio control, DDVDH = 2xVCl
	{pumpRatioCtl, [16]byte{0x20}, 1},
	// Driver timing control, all = 0 unit
	{driverTimingCtlB, [16]byte{0x00, 0x00}, 2},
	// Power control 1, GVDD = 4.75V
	{powerCtl1, [16]byte{0x26}, 1},
	// Power control 2, DDVDH = VCl*2, VGH = VCl*7, VGL = -VCl*3
	{powerCtl2, [16]byte{0x11}, 1},
	// VCOM control 1, VCOMH = 4.025V, VCOML = -0.950V
	{vcomCtl1, [16]byte{0x35, 0x3E}, 2},
	// VCOM control 2, VCOMH = VMH-2, VCOML = VML-2
	{vcomCtl2, [16]byte{0xBE}, 1},
	// Memory access control, MX = MY = 0, MV = 1, ML = 0, BGR = 1, MH = 0
	{memoryAccessCtl, [16]byte{0x28}, 1},
	// Pixel format, 16 bits/pixel for RGB/MCU interface
	{pixelFormatSet, [16]byte{0x55}, 1},
	// Frame rate control, f = fosc, 70Hz
	{frameRateCtl, [16]byte{0x00, 0x1B}, 2},
	// Enable 3G, disabled
	{enable3Gamma, [16]byte{0x08}, 1},
	// Gamma set, curve 1
	{gammaSet, [16]byte{0x01}, 1},
	{positiveGamma, [16]byte{0x1F, 0x1A, 0x18, 0x0A, 0x0F, 0x06, 0x45, 0x87, 0x32, 0x0A, 0x07, 0x02, 0x07, 0x05, 0x00}, 15},
	{negativeGamma, [16]byte{0x00, 0x25, 0x27, 0x05, 0x10, 0x09, 0x3A, 0x78, 0x4D, 0x05, 0x18, 0x0D, 0x38, 0x3A, 0x1F}, 15},
	// Column address set, SC = 0, EC = 0xEF
	{columnAddrSet, [16]byte{0x00, 0x00, 0x00, 0xEF}, 4},
	// Page address set, SP = 0, EP = 0x013F
	{pageAddrSet, [16]byte{0x00, 0x00, 0x01, 0x3F}, 4},
	{memoryWrite, [16]byte{}, 0},
	// Entry mode set, low voltage detection disabled, normal display
	{entryModeSet, [16]byte{0x07}, 1},
	{displayFunctionCtl, [16]byte{0x0A, 0x82, 0x27, 0x00}, 4},
	{sleepOut, [16]byte{}, descDelay},
	{displayOn, [16]byte{}, descDelay},
	{0, [16]byte{}, descEnd},
}

// playCommands sends cmds up to the terminator.
func playCommands(ctrl controller, cmds []command) {
	for i := range cmds {
		c := &cmds[i]
		if c.end() {
			return
		}
		ctrl.sendCommand(c.opcode)
		if c.delay() {
			ctrl.delay(cmdDelay)
		} else if c.length() != 0 {
			ctrl.sendData(c.payload())
		}
	}
}
