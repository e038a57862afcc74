// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package emulator

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log"
	"mime"
	"net/http"
	"net/textproto"
	"net/url"
	"sync"
)

// bufferPool stores reusable []byte instances.
var bufferPool = sync.Pool{
	New: func() interface{} {
		return []byte(nil)
	},
}

// pngBufferPool lets the PNG encoder of a sink reuse its buffers between
// frames.
type pngBufferPool struct {
	p sync.Pool
}

func (b *pngBufferPool) Get() *png.EncoderBuffer {
	buf, _ := b.p.Get().(*png.EncoderBuffer)
	return buf
}

func (b *pngBufferPool) Put(buf *png.EncoderBuffer) {
	b.p.Put(buf)
}

type imageConfig struct {
	format ImageFormat
}

type client struct {
	refresh   chan struct{}
	terminate chan struct{}
}

// sink streams the images returned by render to HTTP clients, a new one each
// time changed is called.
type sink struct {
	defaultFormat ImageFormat
	pngEncoder    png.Encoder
	jpegOptions   jpeg.Options
	render        func() *image.RGBA

	mu       sync.Mutex
	clients  map[*client]struct{}
	snapshot map[imageConfig][]byte
}

func newSink(format ImageFormat, level png.CompressionLevel, quality int, render func() *image.RGBA) *sink {
	if quality <= 0 {
		quality = jpeg.DefaultQuality
	}
	return &sink{
		defaultFormat: format,
		pngEncoder:    png.Encoder{CompressionLevel: level, BufferPool: &pngBufferPool{}},
		jpegOptions:   jpeg.Options{Quality: quality},
		render:        render,
		clients:       map[*client]struct{}{},
		snapshot:      map[imageConfig][]byte{},
	}
}

func (s *sink) configFromQuery(values url.Values) (imageConfig, error) {
	cfg := imageConfig{
		format: s.defaultFormat,
	}
	if value := values.Get("format"); value != "" {
		format, err := ImageFormatFromString(value)
		if err != nil {
			return imageConfig{}, err
		}
		cfg.format = format
	}
	return cfg, nil
}

// changed drops the cached images and wakes up the clients.
func (s *sink) changed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for cfg, buffer := range s.snapshot {
		if buffer != nil {
			//lint:ignore SA6002 buffer is []byte and thus pointer-like
			bufferPool.Put(buffer)
		}
		delete(s.snapshot, cfg)
	}
	for c := range s.clients {
		select {
		case c.refresh <- struct{}{}:
		default:
		}
	}
}

// halt terminates all running client requests asynchronously.
func (s *sink) halt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.terminate <- struct{}{}:
		default:
		}
	}
}

func (s *sink) encodeLocked(format ImageFormat) ([]byte, error) {
	buf := bytes.NewBuffer(bufferPool.Get().([]byte)[:0])
	img := s.render()
	switch format {
	case PNG:
		if err := s.pngEncoder.Encode(buf, img); err != nil {
			return nil, err
		}
	case JPEG:
		if err := jpeg.Encode(buf, img, &s.jpegOptions); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("emulator: unhandled image format %s", format)
	}
	return buf.Bytes(), nil
}

func (s *sink) grabSnapshot(cfg imageConfig) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	encoded, ok := s.snapshot[cfg]
	if !ok {
		var err error
		if encoded, err = s.encodeLocked(cfg.format); err != nil {
			return nil, err
		}
		s.snapshot[cfg] = encoded
	}
	return append(bufferPool.Get().([]byte)[:0], encoded...), nil
}

func (s *sink) serveHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.Body.Close(); err != nil {
		log.Printf("emulator: closing request body failed: %v", err)
	}
	if r.Method != http.MethodGet {
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}
	cfg, err := s.configFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	pw := makePartWriter(w)
	w.Header().Set("Content-Type",
		mime.FormatMediaType("multipart/x-mixed-replace", map[string]string{
			"boundary": pw.boundary,
		}))

	c := &client{
		refresh:   make(chan struct{}, 1),
		terminate: make(chan struct{}, 1),
	}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
	}()

	partHeaders := make(textproto.MIMEHeader)
	partHeaders.Set("Content-Type", mime.FormatMediaType(cfg.format.mimeType(), nil))
	partHeaders.Set("Content-Transfer-Encoding", "binary")

	for {
		payload, err := s.grabSnapshot(cfg)
		if err != nil {
			log.Printf("emulator: encoding %s failed: %v", cfg.format, err)
			return
		}
		err = pw.writeFrame(partHeaders, payload)
		//lint:ignore SA6002 buffer is []byte and thus pointer-like
		bufferPool.Put(payload)
		if err != nil {
			// The client went away. There's no way to report an error within
			// an image stream.
			return
		}
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
		select {
		case <-c.refresh:
		case <-c.terminate:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// ServeHTTP handles HTTP GET requests and sends a stream of images showing
// the panel, a new one each time it changes. The protocol is MJPEG as used
// by IP cameras, a multipart/x-mixed-replace response. Opts.Format is the
// default format; clients can explicitly request PNG or JPEG images using
// the "format" parameter ("?format=png", "?format=jpeg").
func (p *Panel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.sink.serveHTTP(w, r)
}

var _ http.Handler = (*Panel)(nil)
