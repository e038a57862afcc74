// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package emulator

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"io"
	"net/textproto"
	"sort"
	"strconv"
)

// randomBoundary generates a MIME multipart boundary compatible with RFC 2046
// (section 5.1.1): at most 70 characters.
func randomBoundary() string {
	var buf [34]byte
	if _, err := io.ReadFull(rand.Reader, buf[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf[:])
}

// partWriter writes a never ending multipart entity. Each part is closed by
// the next boundary as soon as it is written so the client can show it
// without waiting for the following one; "mime/multipart".Writer only writes
// the boundary when the next part starts.
type partWriter struct {
	u        io.Writer
	boundary string
	started  bool
}

func makePartWriter(u io.Writer) partWriter {
	return partWriter{
		u:        u,
		boundary: randomBoundary(),
	}
}

// writeFrame sends one part. A Content-Length header is added to header.
func (w *partWriter) writeFrame(header textproto.MIMEHeader, body []byte) error {
	header.Set("Content-Length", strconv.Itoa(len(body)))
	b := bufio.NewWriterSize(w.u, 512)
	if !w.started {
		writeStrings(b, "--", w.boundary, "\r\n")
		w.started = true
	}
	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, value := range header[name] {
			writeStrings(b, name, ": ", value, "\r\n")
		}
	}
	writeStrings(b, "\r\n")
	_, _ = b.Write(body)
	writeStrings(b, "\r\n--", w.boundary, "\r\n")
	return b.Flush()
}

// writeStrings appends to b. Errors are sticky in a bufio.Writer and
// returned by Flush.
func writeStrings(b *bufio.Writer, s ...string) {
	for _, v := range s {
		_, _ = b.WriteString(v)
	}
}
