package ziparc

import "github.com/meigma/ziparc/internal/record"

// --- Re-exports from internal/record ---

// LocalFileHeader is the per-entry metadata stored before payload bytes.
type LocalFileHeader = record.LocalFileHeader

// CentralDirectoryHeader is the central directory's per-entry record.
type CentralDirectoryHeader = record.CentralDirectoryHeader

// EndOfCentralDirectory is the fixed-size trailer record anchoring the archive.
type EndOfCentralDirectory = record.EndOfCentralDirectory

// DataDescriptor carries deferred CRC-32 and sizes for streamed entries.
type DataDescriptor = record.DataDescriptor

// Method identifies the compression method of an entry.
type Method uint16

// Supported compression method codes. Any other code decodes but is
// treated as unsupported by the extraction engine.
const (
	MethodStore   Method = 0
	MethodDeflate Method = 8
)

// Supported reports whether the extraction engine can process entries
// using this method.
func (m Method) Supported() bool {
	return m == MethodStore || m == MethodDeflate
}

func (m Method) String() string {
	switch m {
	case MethodStore:
		return "store"
	case MethodDeflate:
		return "deflate"
	default:
		return "unsupported"
	}
}

// Entry is a logical file to add to an archive. The caller owns Data until
// the entry is passed to the encoder.
type Entry struct {
	Name string
	Data []byte
}

// TextEntry creates an entry from string content.
func TextEntry(name, content string) Entry {
	return Entry{Name: name, Data: []byte(content)}
}

// RawEntry creates an entry from raw bytes.
func RawEntry(name string, content []byte) Entry {
	return Entry{Name: name, Data: content}
}

// EncodedFile is the result of compressing one entry: the payload bytes
// that will be written after the entry's local header, plus the sizes,
// method, and checksum recorded in the headers.
//
// CompressedSize never exceeds UncompressedSize; when the two are equal
// the method is MethodStore.
type EncodedFile struct {
	Name             string
	Payload          []byte
	UncompressedSize uint32
	CompressedSize   uint32
	Method           Method
	CRC32            uint32
}

// ContentKind tags the result of fully processing one entry.
type ContentKind int

const (
	// ContentText marks an entry decoded as valid UTF-8 text.
	ContentText ContentKind = iota

	// ContentBinary marks an entry returned as raw bytes.
	ContentBinary

	// ContentFailed marks an entry whose bytes were requested as text but
	// are not valid UTF-8; Data carries the raw decompressed bytes.
	ContentFailed
)

func (k ContentKind) String() string {
	switch k {
	case ContentText:
		return "text"
	case ContentBinary:
		return "binary"
	case ContentFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Content is the tagged result of processing one entry. Text is set only
// for ContentText; Data is set for ContentBinary and ContentFailed.
type Content struct {
	Kind ContentKind
	Text string
	Data []byte
}

// Bytes returns the content as raw bytes regardless of kind.
func (c Content) Bytes() []byte {
	if c.Kind == ContentText {
		return []byte(c.Text)
	}
	return c.Data
}

// Extracted pairs an entry name with its fully processed content.
type Extracted struct {
	Name    string
	Content Content
}
