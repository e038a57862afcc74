// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ili9341 controls a TFT color display via an ILI9341 controller over
// a 4 wire SPI bus.
//
// The driver keeps a 24 bits RGB framebuffer in memory supplied by the
// caller. Drawing functions only change the framebuffer. Refresh converts it
// to the 16 bits RGB565 format of the panel and sends it in bands of
// ParallelLines rows, so the conversion buffer stays small whatever the
// panel size.
//
// The hardware is reached through a Port. SPIPort uses a periph SPI port and
// GPIO pins, FuncPort accepts plain functions for other buses, for example a
// TinyGo SPI bus through BusPort.
//
// # Lifecycle
//
// New returns an unconfigured Dev. Configure binds the geometry, the
// framebuffer and the Port; drawing is possible from then on. Init resets
// the panel and plays the initialization sequence; Refresh and the other
// commands are possible from then on. NewSPI does the three steps.
//
// # Datasheets
//
// https://cdn-shop.adafruit.com/datasheets/ILI9341.pdf
//
// https://www.displayfuture.com/Display/datasheet/controller/ILI9341.pdf
package ili9341
