// Package codec wraps the byte-transform collaborators the archive layer
// consumes: DEFLATE compression, INFLATE decompression, and CRC-32.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"
)

// ErrDecompression is returned when an entry's deflate stream is corrupt.
var ErrDecompression = errors.New("ziparc: decompression failed")

// Deflate compresses src as a raw deflate stream at the default level.
func Deflate(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("create deflate writer: %w", err)
	}
	if _, err := w.Write(src); err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close deflate writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Inflate decompresses a raw deflate stream. A corrupt stream is reported
// as ErrDecompression.
func Inflate(src []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(src))
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompression, err)
	}
	return out, nil
}

// Checksum returns the CRC-32 (IEEE polynomial) of b, the checksum the
// ZIP format stores for uncompressed entry contents.
func Checksum(b []byte) uint32 {
	return crc32.ChecksumIEEE(b)
}
