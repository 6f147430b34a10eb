package ziparc

import (
	"errors"

	"github.com/meigma/ziparc/internal/codec"
	"github.com/meigma/ziparc/internal/record"
)

// Sentinel errors. Decode failures wrap one of these; test with errors.Is.
var (
	// ErrSignature is returned when an expected record signature is not
	// found at the expected position.
	ErrSignature = record.ErrSignature

	// ErrTruncated is returned when a declared length exceeds the
	// remaining bytes in the buffer.
	ErrTruncated = record.ErrTruncated

	// ErrUnsupportedMethod is returned when an operation requires a
	// compression method other than store or deflate.
	ErrUnsupportedMethod = errors.New("ziparc: unsupported compression method")

	// ErrDecompression is returned when an entry's deflate stream is corrupt.
	ErrDecompression = codec.ErrDecompression

	// ErrTextDecode is returned when bytes requested as text are not
	// valid UTF-8.
	ErrTextDecode = errors.New("ziparc: content is not valid UTF-8")
)
