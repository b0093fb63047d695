package core

// streaming.go provides the readers the snapshot decoder sits on:
//
//   - BOMSkippingReader: drops a leading UTF-8 BOM (0xEF 0xBB 0xBF)
//   - LimitedReader: fails with ErrInputTooLarge past a byte limit
//   - CountingReader: tracks bytes read, reported by DecodeSnapshot
//
// Use WrapForDecoding to apply all of them in the correct order.

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader wraps an io.Reader and skips the UTF-8 BOM if present.
type BOMSkippingReader struct {
	reader  *bufio.Reader
	checked bool
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{reader: bufio.NewReader(r)}
}

// Read implements io.Reader. The first call discards the BOM.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		head, err := r.reader.Peek(len(utf8BOM))
		if err != nil && err != io.EOF {
			return 0, err
		}
		if bytes.Equal(head, utf8BOM) {
			if _, err := r.reader.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return r.reader.Read(p)
}

// LimitedReader reads at most Limit bytes and reports ErrInputTooLarge
// instead of silently truncating. A Limit of zero or less disables the check.
type LimitedReader struct {
	reader io.Reader
	Limit  int64
	read   int64
}

// NewLimitedReader creates a reader that fails after limit bytes.
func NewLimitedReader(r io.Reader, limit int64) *LimitedReader {
	return &LimitedReader{reader: r, Limit: limit}
}

// Read implements io.Reader.
func (r *LimitedReader) Read(p []byte) (int, error) {
	if r.Limit <= 0 {
		return r.reader.Read(p)
	}
	if r.read > r.Limit {
		return 0, fmt.Errorf("%w: exceeds %d bytes", ErrInputTooLarge, r.Limit)
	}
	// Read one byte past the limit so an input of exactly Limit bytes passes.
	if max := r.Limit - r.read + 1; int64(len(p)) > max {
		p = p[:max]
	}
	n, err := r.reader.Read(p)
	r.read += int64(n)
	if r.read > r.Limit {
		return n, fmt.Errorf("%w: exceeds %d bytes", ErrInputTooLarge, r.Limit)
	}
	return n, err
}

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader creates a counting reader.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// WrapForDecoding wraps a reader with BOM skipping, the size limit, and
// byte counting.
//
// The order matters:
// 1. the limit applies to the raw bytes, BOM included
// 2. the BOM is stripped before the decoder sees anything
// 3. counting wraps everything
func WrapForDecoding(r io.Reader, maxBytes int64) *CountingReader {
	limited := NewLimitedReader(r, maxBytes)
	return NewCountingReader(NewBOMSkippingReader(limited))
}
