// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// tftdemo draws a test scene on an ILI9341 panel.
//
// With -emulate the scene is drawn on a software panel instead, which can be
// printed on the terminal with -terminal or watched in a browser with -http.
//
// Wiring for a Raspberry Pi, the default:
//
//	Panel      Raspberry Pi
//	SDI/MOSI   GPIO10 (SPI0 MOSI)
//	SCK        GPIO11 (SPI0 CLK)
//	CS         GPIO8 (SPI0 CE0)
//	D/C        GPIO24
//	RESET      GPIO25
//	LED        GPIO18
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/draw"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/GermanBionicSystems/tft/emulator"
	"github.com/GermanBionicSystems/tft/glyph"
	"github.com/GermanBionicSystems/tft/ili9341"
	"github.com/GermanBionicSystems/tft/rgb888"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// pin returns the pin named name, nil when name is empty.
func pin(name string, required bool) (gpio.PinOut, error) {
	if name == "" {
		if required {
			return nil, errors.New("pin name is required")
		}
		return nil, nil
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("pin %q not found", name)
	}
	return p, nil
}

func openHardware(spiName, dcName, rstName, csName, blName string, opts *ili9341.Opts) (*ili9341.Dev, func() error, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}
	p, err := spireg.Open(spiName)
	if err != nil {
		return nil, nil, err
	}
	var pins [4]gpio.PinOut
	for i, n := range []string{dcName, rstName, csName, blName} {
		if pins[i], err = pin(n, i < 2); err != nil {
			p.Close()
			return nil, nil, err
		}
	}
	dev, err := ili9341.NewSPI(p, pins[0], pins[1], pins[2], pins[3], opts)
	if err != nil {
		p.Close()
		return nil, nil, err
	}
	return dev, p.Close, nil
}

func openEmulator(opts *ili9341.Opts, format emulator.ImageFormat) (*ili9341.Dev, *emulator.Panel, error) {
	panel, err := emulator.New(&emulator.Opts{Width: opts.Width, Height: opts.Height, RealTime: true, Format: format})
	if err != nil {
		return nil, nil, err
	}
	o := *opts
	o.Port = panel
	o.Buffer = make([]byte, o.Width*o.Height*3)
	dev := ili9341.New()
	if err := dev.Configure(&o); err != nil {
		return nil, nil, err
	}
	if err := dev.Init(); err != nil {
		return nil, nil, err
	}
	return dev, panel, nil
}

// background renders the antialiased part of the scene.
func background(w, h int) (image.Image, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	dc := gg.NewContext(w, h)
	grad := gg.NewLinearGradient(0, 0, float64(w), float64(h))
	grad.AddColorStop(0, rgb888.FromUint32(0x102040))
	grad.AddColorStop(1, rgb888.FromUint32(0x401020))
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: 24}))
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored("ILI9341", float64(w)/2, float64(h)/4, 0.5, 0.5)
	for i := 0; i < 10; i++ {
		dc.DrawCircle(float64(w)/2-90+float64(20*i), float64(h)*3/4, 6)
	}
	dc.SetRGB(1, 0.8, 0)
	dc.Fill()
	return dc.Image(), nil
}

// scene draws the primitives over the framebuffer.
func scene(dev *ili9341.Dev, ball image.Point) error {
	r := dev.Bounds()
	w, h := r.Dx(), r.Dy()
	for _, err := range []error{
		dev.DrawRectangle(0, 0, w, h, rgb888.White),
		dev.DrawLine(0, 0, w-1, h-1, rgb888.Green),
		dev.DrawLine(w-1, 0, 0, h-1, rgb888.Green),
		dev.DrawCircle(ball.X, ball.Y, 20, rgb888.Red),
	} {
		// Off panel pixels are clipped, the rest is drawn.
		if err != nil && !errors.Is(err, ili9341.ErrOutOfBounds) {
			return err
		}
	}
	dev.SetCursor(8, h/2-8)
	if err := dev.WriteString(glyph.Size16, "Hello from periph!", rgb888.White); err != nil && !errors.Is(err, ili9341.ErrOutOfBounds) {
		return err
	}
	dev.SetCursor(8, h-20)
	if err := dev.WriteString(glyph.Size7x13, dev.String(), rgb888.FromUint32(0xC0C0C0)); err != nil && !errors.Is(err, ili9341.ErrOutOfBounds) {
		return err
	}
	return dev.Refresh()
}

func mainImpl() error {
	spiName := flag.String("spi", "", "SPI port to use")
	dcName := flag.String("dc", "GPIO24", "D/C pin")
	rstName := flag.String("rst", "GPIO25", "reset pin")
	csName := flag.String("cs", "", "chip select pin, empty when driven by the SPI port")
	blName := flag.String("bl", "GPIO18", "backlight pin, empty when hard wired")
	width := flag.Int("width", ili9341.DefaultOpts.Width, "panel width")
	height := flag.Int("height", ili9341.DefaultOpts.Height, "panel height")
	emulate := flag.Bool("emulate", false, "draw on a software panel")
	term := flag.Bool("terminal", false, "print the software panel on the terminal")
	columns := flag.Int("columns", 80, "terminal width")
	addr := flag.String("http", "", "serve the software panel at this address, e.g. :8080")
	frames := flag.Int("frames", 1, "number of frames to animate, 0 runs forever")
	format := emulator.DefaultFormat
	flag.Var(&format, "format", "image format served by -http: png or jpeg")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
	}
	log.SetFlags(log.Lmicroseconds)
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}
	if (*term || *addr != "") && !*emulate {
		return errors.New("-terminal and -http require -emulate")
	}

	opts := ili9341.DefaultOpts
	opts.Width = *width
	opts.Height = *height
	var dev *ili9341.Dev
	var panel *emulator.Panel
	var err error
	if *emulate {
		dev, panel, err = openEmulator(&opts, format)
	} else {
		var closer func() error
		dev, closer, err = openHardware(*spiName, *dcName, *rstName, *csName, *blName, &opts)
		if closer != nil {
			defer closer()
		}
	}
	if err != nil {
		return err
	}
	defer dev.Halt()
	log.Printf("%s", dev)
	if err := dev.SetBacklight(true); err != nil {
		return err
	}

	var terminal *emulator.Terminal
	if *term {
		terminal = emulator.NewTerminal(&emulator.TerminalOpts{Width: *width, Height: *height, Columns: *columns})
		defer terminal.Halt()
	}
	if *addr != "" {
		defer panel.Halt()
		go func() {
			log.Printf("serving on %s", *addr)
			if err := http.ListenAndServe(*addr, panel); err != nil {
				fmt.Fprintf(os.Stderr, "tftdemo: %s.\n", err)
				os.Exit(1)
			}
		}()
	}

	bg, err := background(*width, *height)
	if err != nil {
		return err
	}
	fb, err := dev.Image()
	if err != nil {
		return err
	}
	ball := image.Pt(*width/2, *height/2)
	step := image.Pt(4, 3)
	for i := 0; *frames == 0 || i < *frames; i++ {
		start := time.Now()
		draw.Draw(fb, fb.Bounds(), bg, image.Point{}, draw.Src)
		if err := scene(dev, ball); err != nil {
			return err
		}
		log.Printf("frame %d in %s", i, time.Since(start))
		if terminal != nil {
			if err := terminal.Draw(terminal.Bounds(), panel.Snapshot(), image.Point{}); err != nil {
				return err
			}
		}
		ball = ball.Add(step)
		if ball.X < 0 || ball.X >= *width {
			step.X = -step.X
		}
		if ball.Y < 0 || ball.Y >= *height {
			step.Y = -step.Y
		}
		time.Sleep(50 * time.Millisecond)
	}
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "tftdemo: %s.\n", err)
		os.Exit(1)
	}
}
