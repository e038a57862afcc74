// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ili9341

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"tinygo.org/x/drivers"
)

// Port is the hardware link to the controller.
//
// Every call blocks until completed. Errors are returned to the caller of the
// Dev method unchanged.
type Port interface {
	// Send transmits raw bytes.
	Send(b []byte) error
	// SetDataCommand drives the D/C line: gpio.Low for commands, gpio.High
	// for data.
	SetDataCommand(l gpio.Level) error
	// SetReset drives the reset line, active low.
	SetReset(l gpio.Level) error
	// Delay blocks for d.
	Delay(d time.Duration)
}

// ChipSelecter is implemented by a Port that drives the chip select line,
// active low. Without it, chip select is left to the bus.
type ChipSelecter interface {
	SetChipSelect(l gpio.Level) error
}

// Backlighter is implemented by a Port that controls the backlight.
type Backlighter interface {
	SetBacklight(l gpio.Level) error
}

// SPIPort is a Port over a periph SPI connection and GPIO pins.
type SPIPort struct {
	c     conn.Conn
	dc    gpio.PinOut
	rst   gpio.PinOut
	cs    gpio.PinOut
	bl    gpio.PinOut
	maxTx int
}

// NewSPIPort connects to p and returns a Port driving the given pins.
//
// # Wiring
//
// Connect SDI to SPI_MOSI, SCK to SPI_CLK. dc and rst are required. Pass nil
// for cs when the chip select is handled by the SPI controller and nil for bl
// when the backlight is hard wired.
func NewSPIPort(p spi.Port, dc, rst, cs, bl gpio.PinOut) (*SPIPort, error) {
	if dc == nil || dc == gpio.INVALID {
		return nil, errors.New("ili9341: dc pin is required")
	}
	if rst == nil || rst == gpio.INVALID {
		return nil, errors.New("ili9341: rst pin is required")
	}
	// The controller accepts writes with a 100ns cycle, 10MHz. Most modules
	// are fine well above.
	c, err := p.Connect(40*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, err
	}
	if cs == gpio.INVALID {
		cs = nil
	}
	if bl == gpio.INVALID {
		bl = nil
	}
	return newSPIPort(c, dc, rst, cs, bl), nil
}

func newSPIPort(c conn.Conn, dc, rst, cs, bl gpio.PinOut) *SPIPort {
	s := &SPIPort{c: c, dc: dc, rst: rst, cs: cs, bl: bl}
	if l, ok := c.(conn.Limits); ok {
		s.maxTx = l.MaxTxSize()
	}
	return s
}

func (s *SPIPort) String() string {
	return fmt.Sprintf("SPIPort{%s, dc=%s, rst=%s}", s.c, s.dc, s.rst)
}

// Send implements Port.
//
// Writes larger than the connection transaction limit are split.
func (s *SPIPort) Send(b []byte) error {
	for len(b) != 0 {
		n := len(b)
		if s.maxTx > 0 && n > s.maxTx {
			n = s.maxTx
		}
		if err := s.c.Tx(b[:n], nil); err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

// SetDataCommand implements Port.
func (s *SPIPort) SetDataCommand(l gpio.Level) error {
	return s.dc.Out(l)
}

// SetReset implements Port.
func (s *SPIPort) SetReset(l gpio.Level) error {
	return s.rst.Out(l)
}

// SetChipSelect implements ChipSelecter. It is a no-op without a cs pin.
func (s *SPIPort) SetChipSelect(l gpio.Level) error {
	if s.cs == nil {
		return nil
	}
	return s.cs.Out(l)
}

// SetBacklight implements Backlighter. It is a no-op without a bl pin.
func (s *SPIPort) SetBacklight(l gpio.Level) error {
	if s.bl == nil {
		return nil
	}
	return s.bl.Out(l)
}

// Delay implements Port.
func (s *SPIPort) Delay(d time.Duration) {
	time.Sleep(d)
}

// FuncPort is a Port made of plain functions, for buses and pins that are not
// exposed through periph.
//
// Tx, DC and RST are required. CS, BL and Sleep are optional; when nil the
// corresponding operation does nothing, except Sleep which defaults to
// time.Sleep.
type FuncPort struct {
	Tx    func(b []byte) error
	DC    func(l gpio.Level) error
	RST   func(l gpio.Level) error
	CS    func(l gpio.Level) error
	BL    func(l gpio.Level) error
	Sleep func(d time.Duration)
}

func (f *FuncPort) validate() error {
	if f.Tx == nil || f.DC == nil || f.RST == nil {
		return errors.New("ili9341: FuncPort requires Tx, DC and RST")
	}
	return nil
}

// Send implements Port.
func (f *FuncPort) Send(b []byte) error {
	return f.Tx(b)
}

// SetDataCommand implements Port.
func (f *FuncPort) SetDataCommand(l gpio.Level) error {
	return f.DC(l)
}

// SetReset implements Port.
func (f *FuncPort) SetReset(l gpio.Level) error {
	return f.RST(l)
}

// SetChipSelect implements ChipSelecter.
func (f *FuncPort) SetChipSelect(l gpio.Level) error {
	if f.CS == nil {
		return nil
	}
	return f.CS(l)
}

// SetBacklight implements Backlighter.
func (f *FuncPort) SetBacklight(l gpio.Level) error {
	if f.BL == nil {
		return nil
	}
	return f.BL(l)
}

// Delay implements Port.
func (f *FuncPort) Delay(d time.Duration) {
	if f.Sleep == nil {
		time.Sleep(d)
		return
	}
	f.Sleep(d)
}

// BusPort returns a FuncPort.Tx function writing to a TinyGo SPI bus.
func BusPort(bus drivers.SPI) func(b []byte) error {
	return func(b []byte) error {
		return bus.Tx(b, nil)
	}
}

var (
	_ Port         = &SPIPort{}
	_ ChipSelecter = &SPIPort{}
	_ Backlighter  = &SPIPort{}
	_ Port         = &FuncPort{}
	_ ChipSelecter = &FuncPort{}
	_ Backlighter  = &FuncPort{}
)
