// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package glyph provides monochrome glyph bitmaps for the text primitives of
// the display drivers.
//
// Glyphs are rendered once from a font.Face, thresholded to one bit per pixel
// and cached. Bitmaps are row-major, most significant bit first, each row
// padded to a whole byte.
package glyph

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"unicode"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// ErrNotFound is returned when a font has no glyph for a code point or no
// face for the requested size.
var ErrNotFound = errors.New("glyph: not found")

// Size is the nominal height of a font in pixels.
type Size int

// Sizes provided by Default.
const (
	Size7x13 Size = 13
	Size16   Size = 16
	Size24   Size = 24
)

// Glyph is a one bit per pixel glyph bitmap.
type Glyph struct {
	Width  int
	Height int
	// Stride is the number of bytes per bitmap row.
	Stride int
	Bitmap []byte
}

// Bit reports whether the pixel at (x, y) of the glyph is set.
func (g *Glyph) Bit(x, y int) bool {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return false
	}
	return g.Bitmap[y*g.Stride+x/8]&(0x80>>uint(x&7)) != 0
}

// Lookup returns glyph bitmaps.
type Lookup interface {
	Glyph(code rune, size Size) (Glyph, error)
}

type face struct {
	font.Face
	has func(r rune) bool
}

type key struct {
	code rune
	size Size
}

// Faces is a Lookup backed by one font.Face per Size.
//
// It is safe for concurrent use.
type Faces struct {
	mu    sync.Mutex
	faces map[Size]face
	cache map[key]Glyph
}

// NewFaces returns an empty set of faces.
func NewFaces() *Faces {
	return &Faces{faces: map[Size]face{}, cache: map[key]Glyph{}}
}

// Add registers f for size, replacing any previous face.
func (f *Faces) Add(size Size, ff font.Face) {
	f.add(size, face{Face: ff, has: func(r rune) bool {
		_, ok := ff.GlyphAdvance(r)
		return ok
	}})
}

func (f *Faces) add(size Size, ff face) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.faces[size] = ff
	for k := range f.cache {
		if k.size == size {
			delete(f.cache, k)
		}
	}
}

// Sizes returns the number of registered sizes.
func (f *Faces) Sizes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.faces)
}

// Glyph implements Lookup.
func (f *Faces) Glyph(code rune, size Size) (Glyph, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key{code, size}
	if g, ok := f.cache[k]; ok {
		return g, nil
	}
	ff, ok := f.faces[size]
	if !ok {
		return Glyph{}, fmt.Errorf("%w: no face of size %d", ErrNotFound, size)
	}
	if code != ' ' && (!unicode.IsPrint(code) || !ff.has(code)) {
		return Glyph{}, fmt.Errorf("%w: %q at size %d", ErrNotFound, code, size)
	}
	g, err := render(ff.Face, code)
	if err != nil {
		return Glyph{}, err
	}
	f.cache[k] = g
	return g, nil
}

// render rasterizes code into a cell as wide as its advance and as high as
// the face ascent plus descent.
func render(ff font.Face, code rune) (Glyph, error) {
	m := ff.Metrics()
	ascent := m.Ascent.Ceil()
	g := Glyph{Height: ascent + m.Descent.Ceil()}
	dr, mask, maskp, advance, ok := ff.Glyph(fixed.P(0, ascent), code)
	if !ok {
		return Glyph{}, fmt.Errorf("%w: %q", ErrNotFound, code)
	}
	g.Width = advance.Ceil()
	g.Stride = (g.Width + 7) / 8
	g.Bitmap = make([]byte, g.Stride*g.Height)
	if mask == nil {
		return g, nil
	}
	cell := image.Rect(0, 0, g.Width, g.Height).Intersect(dr)
	for y := cell.Min.Y; y < cell.Max.Y; y++ {
		for x := cell.Min.X; x < cell.Max.X; x++ {
			_, _, _, a := mask.At(maskp.X+x-dr.Min.X, maskp.Y+y-dr.Min.Y).RGBA()
			if a >= 0x8000 {
				g.Bitmap[y*g.Stride+x/8] |= 0x80 >> uint(x&7)
			}
		}
	}
	return g, nil
}

// NewTrueType parses a TrueType font and returns faces for each size.
func NewTrueType(ttf []byte, sizes ...Size) (*Faces, error) {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("glyph: %w", err)
	}
	faces := NewFaces()
	faces.addTrueType(f, sizes...)
	return faces, nil
}

func (f *Faces) addTrueType(ft *truetype.Font, sizes ...Size) {
	for _, s := range sizes {
		ff := truetype.NewFace(ft, &truetype.Options{
			Size:    float64(s),
			DPI:     72,
			Hinting: font.HintingFull,
		})
		f.add(s, face{Face: ff, has: func(r rune) bool {
			return ft.Index(r) != 0
		}})
	}
}

var (
	goRegularOnce sync.Once
	goRegular     *truetype.Font
)

// Default returns a Lookup with basicfont.Face7x13 at Size7x13 and Go Regular
// at Size16 and Size24.
func Default() *Faces {
	goRegularOnce.Do(func() {
		f, err := truetype.Parse(goregular.TTF)
		if err != nil {
			panic(fmt.Sprintf("glyph: parsing goregular failed: %v", err))
		}
		goRegular = f
	})
	faces := NewFaces()
	faces.add(Size7x13, face{Face: basicfont.Face7x13, has: func(r rune) bool {
		return inRanges(basicfont.Face7x13, r)
	}})
	faces.addTrueType(goRegular, Size16, Size24)
	return faces
}

// inRanges ignores the U+FFFD fallback basicfont applies to missing runes.
func inRanges(f *basicfont.Face, r rune) bool {
	for _, rng := range f.Ranges {
		if rng.Low <= r && r < rng.High {
			return true
		}
	}
	return false
}

var _ Lookup = &Faces{}
