// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package emulator

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/GermanBionicSystems/tft/rgb888"
)

func serve(t *testing.T, h http.Handler) *httptest.Server {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	t.Cleanup(srv.CloseClientConnections)
	return srv
}

// get starts a stream and returns its part reader.
func get(t *testing.T, ctx context.Context, url string) (*http.Response, *multipart.Reader) {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want %d", resp.StatusCode, http.StatusOK)
	}
	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		t.Fatal(err)
	}
	if mediaType != "multipart/x-mixed-replace" {
		t.Fatalf("Content-Type %q", mediaType)
	}
	if len(params["boundary"]) < 50 {
		t.Fatalf("short boundary %q", params["boundary"])
	}
	return resp, multipart.NewReader(resp.Body, params["boundary"])
}

// readFrame decodes the next part and checks its headers.
func readFrame(t *testing.T, mr *multipart.Reader, wantType string) image.Image {
	t.Helper()
	part, err := mr.NextPart()
	if err != nil {
		t.Fatal(err)
	}
	defer part.Close()
	mediaType, _, err := mime.ParseMediaType(part.Header.Get("Content-Type"))
	if err != nil {
		t.Fatal(err)
	}
	if mediaType != wantType {
		t.Fatalf("part Content-Type %q, want %q", mediaType, wantType)
	}
	b, err := io.ReadAll(part)
	if err != nil {
		t.Fatal(err)
	}
	if l, err := strconv.Atoi(part.Header.Get("Content-Length")); err != nil || l != len(b) {
		t.Fatalf("Content-Length %q for %d bytes", part.Header.Get("Content-Length"), len(b))
	}
	decode := png.Decode
	if mediaType == "image/jpeg" {
		decode = jpeg.Decode
	}
	img, err := decode(bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestServeHTTP(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	d, p := newDev(t, 8, 4)
	srv := serve(t, p)
	_, mr := get(t, ctx, srv.URL)

	red := color.RGBA{R: 0xFF, A: 0xFF}
	img := readFrame(t, mr, "image/png")
	if got := img.Bounds().Size(); got != (image.Point{8, 4}) {
		t.Fatalf("frame size %v", got)
	}
	if err := d.Fill(rgb888.Red); err != nil {
		t.Fatal(err)
	}
	if err := d.Refresh(); err != nil {
		t.Fatal(err)
	}
	// Frames may be coalesced, the last one shows the refresh.
	for color.RGBAModel.Convert(img.At(7, 3)) != red {
		img = readFrame(t, mr, "image/png")
	}

	if err := p.Halt(); err != nil {
		t.Fatal(err)
	}
	for {
		if _, err := mr.NextPart(); err != nil {
			break
		}
	}
}

func TestServeHTTPFormat(t *testing.T) {
	for _, tc := range []struct {
		format ImageFormat
		target string
		want   string
	}{
		{DefaultFormat, "/", "image/png"},
		{JPEG, "/", "image/jpeg"},
		{JPEG, "/?format=png", "image/png"},
		{PNG, "/?format=JPEG", "image/jpeg"},
		{JPEG, "/?format=", "image/jpeg"},
	} {
		t.Run(tc.format.String()+tc.target, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			p, err := New(&Opts{Width: 12, Height: 7, Format: tc.format})
			if err != nil {
				t.Fatal(err)
			}
			srv := serve(t, p)
			_, mr := get(t, ctx, srv.URL+tc.target)
			if got := readFrame(t, mr, tc.want).Bounds().Size(); got != (image.Point{12, 7}) {
				t.Errorf("frame size %v", got)
			}
		})
	}
}

func TestServeHTTPStatus(t *testing.T) {
	p := newPanel(t, 4, 4)
	srv := serve(t, p)
	for _, tc := range []struct {
		method string
		target string
		want   int
	}{
		{http.MethodGet, "/?format=bmp", http.StatusBadRequest},
		{http.MethodPost, "/", http.StatusMethodNotAllowed},
	} {
		req, err := http.NewRequest(tc.method, srv.URL+tc.target, nil)
		if err != nil {
			t.Fatal(err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != tc.want {
			t.Errorf("%s %s: status %d, want %d", tc.method, tc.target, resp.StatusCode, tc.want)
		}
	}
}
