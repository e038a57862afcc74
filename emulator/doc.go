// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package emulator implements an ILI9341 panel in software.
//
// A Panel is an ili9341.Port: it decodes the command and data stream sent by
// the driver into an image of the panel memory. The image can be checked in
// tests, printed on a terminal with a Terminal or watched from a browser
// since Panel is an http.Handler streaming a new frame on every change.
//
// Only the commands changing what is displayed are decoded. The parameters of
// the others are kept, see Panel.Register.
package emulator
