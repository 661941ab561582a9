package core

// reader.go handles the single blocking step of ingestion: pulling the file
// bytes into memory.
//
// Reads are bounded by the size cap (so a client that under-reports the size
// still cannot exhaust memory) and observe context cancellation between
// chunks. Delimited text is then cleaned of the artifacts Windows tools
// commonly leave behind:
//
//   - UTF-8 BOM (0xEF 0xBB 0xBF) at the start of the file
//   - Invalid UTF-8 sequences, replaced with U+FFFD

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// utf8BOM is the byte order mark Excel prepends to "CSV UTF-8" exports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// contextReader aborts reads once its context is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// ReadLimited reads all of r, failing with FileTooLarge if more than limit
// bytes are available.
func ReadLimited(ctx context.Context, r io.Reader, limit int64) ([]byte, error) {
	if r == nil {
		return nil, ErrNoFile
	}

	data, err := io.ReadAll(io.LimitReader(&contextReader{ctx: ctx, r: r}, limit+1))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("read file: %w", err)
	}

	if int64(len(data)) > limit {
		return nil, newIngestError(KindFileTooLarge, nil,
			"file too large: exceeds the %s limit", formatBytes(limit))
	}

	return data, nil
}

// stripBOM removes a leading UTF-8 byte order mark.
func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}

// sanitizeUTF8 replaces invalid UTF-8 sequences with the replacement
// character. Valid input is returned unchanged without copying.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
