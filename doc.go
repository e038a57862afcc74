// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tft is a container for the ILI9341 TFT display pipeline.
//
// The driver lives in ili9341, its framebuffer pixel format in rgb888 and the
// text glyphs in glyph. emulator provides a software panel to run the driver
// without hardware, used by cmd/tftdemo.
package tft
