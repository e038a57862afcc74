// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ili9341

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

type controller interface {
	sendCommand(byte)
	sendData([]byte)
	delay(time.Duration)
}

// errorHandler is a wrapper for error management. Once an operation fails,
// every following operation is skipped and err keeps the first failure.
type errorHandler struct {
	p   Port
	cs  ChipSelecter
	err error
}

func newErrorHandler(p Port) *errorHandler {
	eh := &errorHandler{p: p}
	eh.cs, _ = p.(ChipSelecter)
	return eh
}

func (eh *errorHandler) rstOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = eh.p.SetReset(l)
}

func (eh *errorHandler) dcOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = eh.p.SetDataCommand(l)
}

func (eh *errorHandler) csOut(l gpio.Level) {
	if eh.err != nil || eh.cs == nil {
		return
	}
	eh.err = eh.cs.SetChipSelect(l)
}

func (eh *errorHandler) send(b []byte) {
	if eh.err != nil {
		return
	}
	eh.err = eh.p.Send(b)
}

func (eh *errorHandler) delay(d time.Duration) {
	if eh.err != nil {
		return
	}
	eh.p.Delay(d)
}

// write frames one transfer: select, D/C level, bytes, deselect. Chip select
// is released even when the transfer failed.
func (eh *errorHandler) write(dc gpio.Level, b []byte) {
	if eh.err != nil {
		return
	}
	eh.csOut(gpio.Low)
	eh.dcOut(dc)
	eh.send(b)
	if eh.cs != nil {
		if err := eh.cs.SetChipSelect(gpio.High); eh.err == nil {
			eh.err = err
		}
	}
}

func (eh *errorHandler) sendCommand(cmd byte) {
	eh.write(gpio.Low, []byte{cmd})
}

func (eh *errorHandler) sendData(data []byte) {
	eh.write(gpio.High, data)
}

// reset pulses the reset line.
func (eh *errorHandler) reset() {
	eh.rstOut(gpio.Low)
	eh.delay(cmdDelay)
	eh.rstOut(gpio.High)
	eh.delay(cmdDelay)
}
