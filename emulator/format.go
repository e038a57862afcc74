// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package emulator

import (
	"flag"
	"fmt"
	"strings"
)

// ImageFormat is the encoding of the images served by a Panel.
type ImageFormat int

const (
	PNG ImageFormat = iota
	JPEG

	// DefaultFormat is the format used when not set explicitly in options or
	// as a URL parameter. PNG keeps the edges of drawn shapes and text sharp.
	DefaultFormat = PNG
)

func (f ImageFormat) String() string {
	switch f {
	case PNG:
		return "png"
	case JPEG:
		return "jpeg"
	default:
		return fmt.Sprint(int(f))
	}
}

// Set implements flag.Value.
func (f *ImageFormat) Set(value string) error {
	v, err := ImageFormatFromString(value)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func (f ImageFormat) mimeType() string {
	switch f {
	case PNG:
		return "image/png"
	case JPEG:
		return "image/jpeg"
	}
	return "application/octet-stream"
}

// ImageFormatFromString returns the ImageFormat value for the given format
// abbreviation, case insensitive.
func ImageFormatFromString(value string) (ImageFormat, error) {
	switch strings.ToLower(value) {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	}
	return DefaultFormat, fmt.Errorf("emulator: unrecognized image format %q", value)
}

var _ flag.Value = (*ImageFormat)(nil)
