package record

import (
	"encoding/binary"
	"fmt"
)

// Record signatures. All begin with the two-byte marker 0x4b50 ("PK").
const (
	SigLocalFile      uint32 = 0x04034b50
	SigCentralDir     uint32 = 0x02014b50
	SigEndCentralDir  uint32 = 0x06054b50
	SigDataDescriptor uint32 = 0x08074b50
)

// Fixed record sizes, signature included.
const (
	localFileFixedSize  = 30 // 4-byte signature + 26-byte body
	centralDirFixedSize = 46 // 4-byte signature + 42-byte body

	// EndRecordSize is the full size of an end-of-central-directory record
	// with an empty comment. Anchored decoding slices exactly this many
	// bytes from the buffer tail.
	EndRecordSize = 22 // 4-byte signature + 18-byte body
)

// FlagDeferredSizes is general-purpose bit 3: CRC-32 and sizes are written
// after the payload in a trailing data descriptor.
const FlagDeferredSizes uint16 = 0x0008

// LocalFileHeader is the per-entry metadata stored immediately before the
// entry's payload bytes.
type LocalFileHeader struct {
	VersionNeeded    uint16
	Flags            uint16
	Method           uint16
	ModTime          uint16
	ModDate          uint16
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
	Name             string
	Extra            []byte
}

// EncodedSize returns the number of bytes Encode will produce.
func (h *LocalFileHeader) EncodedSize() int {
	return localFileFixedSize + len(h.Name) + len(h.Extra)
}

// Encode serializes the header, signature first. Callers are responsible
// for field values that fit their wire widths.
func (h *LocalFileHeader) Encode() []byte {
	buf := make([]byte, h.EncodedSize())

	binary.LittleEndian.PutUint32(buf[0:4], SigLocalFile)
	binary.LittleEndian.PutUint16(buf[4:6], h.VersionNeeded)
	binary.LittleEndian.PutUint16(buf[6:8], h.Flags)
	binary.LittleEndian.PutUint16(buf[8:10], h.Method)
	binary.LittleEndian.PutUint16(buf[10:12], h.ModTime)
	binary.LittleEndian.PutUint16(buf[12:14], h.ModDate)
	binary.LittleEndian.PutUint32(buf[14:18], h.CRC32)
	binary.LittleEndian.PutUint32(buf[18:22], h.CompressedSize)
	binary.LittleEndian.PutUint32(buf[22:26], h.UncompressedSize)
	binary.LittleEndian.PutUint16(buf[26:28], uint16(len(h.Name)))
	binary.LittleEndian.PutUint16(buf[28:30], uint16(len(h.Extra)))

	copy(buf[localFileFixedSize:], h.Name)
	copy(buf[localFileFixedSize+len(h.Name):], h.Extra)

	return buf
}

// DecodeLocalFileHeader decodes a local file header at the cursor position.
//
// The name and extra length fields gate the two variable-length reads that
// follow the fixed body, so they are parsed before either read.
func DecodeLocalFileHeader(c *Cursor) (LocalFileHeader, error) {
	if err := c.Expect(SigLocalFile); err != nil {
		return LocalFileHeader{}, fmt.Errorf("local file header: %w", err)
	}

	body, err := c.Bytes(localFileFixedSize - 4)
	if err != nil {
		return LocalFileHeader{}, fmt.Errorf("local file header: %w", err)
	}

	h := LocalFileHeader{
		VersionNeeded:    binary.LittleEndian.Uint16(body[0:2]),
		Flags:            binary.LittleEndian.Uint16(body[2:4]),
		Method:           binary.LittleEndian.Uint16(body[4:6]),
		ModTime:          binary.LittleEndian.Uint16(body[6:8]),
		ModDate:          binary.LittleEndian.Uint16(body[8:10]),
		CRC32:            binary.LittleEndian.Uint32(body[10:14]),
		CompressedSize:   binary.LittleEndian.Uint32(body[14:18]),
		UncompressedSize: binary.LittleEndian.Uint32(body[18:22]),
	}
	nameLen := int(binary.LittleEndian.Uint16(body[22:24]))
	extraLen := int(binary.LittleEndian.Uint16(body[24:26]))

	name, err := c.Bytes(nameLen)
	if err != nil {
		return LocalFileHeader{}, fmt.Errorf("local file name: %w", err)
	}
	h.Name = string(name)

	if extraLen > 0 {
		extra, err := c.Bytes(extraLen)
		if err != nil {
			return LocalFileHeader{}, fmt.Errorf("local file extra field: %w", err)
		}
		h.Extra = extra
	}

	return h, nil
}

// CentralDirectoryHeader is the central directory's per-entry record. It
// carries a superset of the local header fields plus the byte offset of
// the entry's local header from archive start.
type CentralDirectoryHeader struct {
	VersionMadeBy     uint16
	VersionNeeded     uint16
	Flags             uint16
	Method            uint16
	ModTime           uint16
	ModDate           uint16
	CRC32             uint32
	CompressedSize    uint32
	UncompressedSize  uint32
	DiskNumberStart   uint16
	InternalAttrs     uint16
	ExternalAttrs     uint32
	LocalHeaderOffset uint32
	Name              string
	Extra             []byte
	Comment           string
}

// EncodedSize returns the number of bytes Encode will produce.
func (h *CentralDirectoryHeader) EncodedSize() int {
	return centralDirFixedSize + len(h.Name) + len(h.Extra) + len(h.Comment)
}

// Encode serializes the header, signature first.
func (h *CentralDirectoryHeader) Encode() []byte {
	buf := make([]byte, h.EncodedSize())

	binary.LittleEndian.PutUint32(buf[0:4], SigCentralDir)
	binary.LittleEndian.PutUint16(buf[4:6], h.VersionMadeBy)
	binary.LittleEndian.PutUint16(buf[6:8], h.VersionNeeded)
	binary.LittleEndian.PutUint16(buf[8:10], h.Flags)
	binary.LittleEndian.PutUint16(buf[10:12], h.Method)
	binary.LittleEndian.PutUint16(buf[12:14], h.ModTime)
	binary.LittleEndian.PutUint16(buf[14:16], h.ModDate)
	binary.LittleEndian.PutUint32(buf[16:20], h.CRC32)
	binary.LittleEndian.PutUint32(buf[20:24], h.CompressedSize)
	binary.LittleEndian.PutUint32(buf[24:28], h.UncompressedSize)
	binary.LittleEndian.PutUint16(buf[28:30], uint16(len(h.Name)))
	binary.LittleEndian.PutUint16(buf[30:32], uint16(len(h.Extra)))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(len(h.Comment)))
	binary.LittleEndian.PutUint16(buf[34:36], h.DiskNumberStart)
	binary.LittleEndian.PutUint16(buf[36:38], h.InternalAttrs)
	binary.LittleEndian.PutUint32(buf[38:42], h.ExternalAttrs)
	binary.LittleEndian.PutUint32(buf[42:46], h.LocalHeaderOffset)

	off := centralDirFixedSize
	off += copy(buf[off:], h.Name)
	off += copy(buf[off:], h.Extra)
	copy(buf[off:], h.Comment)

	return buf
}

// DecodeCentralDirectoryHeader decodes a central directory header at the
// cursor position. The three length fields in the fixed body gate the
// name, extra, and comment reads, in that order.
func DecodeCentralDirectoryHeader(c *Cursor) (CentralDirectoryHeader, error) {
	if err := c.Expect(SigCentralDir); err != nil {
		return CentralDirectoryHeader{}, fmt.Errorf("central directory header: %w", err)
	}

	body, err := c.Bytes(centralDirFixedSize - 4)
	if err != nil {
		return CentralDirectoryHeader{}, fmt.Errorf("central directory header: %w", err)
	}

	h := CentralDirectoryHeader{
		VersionMadeBy:     binary.LittleEndian.Uint16(body[0:2]),
		VersionNeeded:     binary.LittleEndian.Uint16(body[2:4]),
		Flags:             binary.LittleEndian.Uint16(body[4:6]),
		Method:            binary.LittleEndian.Uint16(body[6:8]),
		ModTime:           binary.LittleEndian.Uint16(body[8:10]),
		ModDate:           binary.LittleEndian.Uint16(body[10:12]),
		CRC32:             binary.LittleEndian.Uint32(body[12:16]),
		CompressedSize:    binary.LittleEndian.Uint32(body[16:20]),
		UncompressedSize:  binary.LittleEndian.Uint32(body[20:24]),
		DiskNumberStart:   binary.LittleEndian.Uint16(body[30:32]),
		InternalAttrs:     binary.LittleEndian.Uint16(body[32:34]),
		ExternalAttrs:     binary.LittleEndian.Uint32(body[34:38]),
		LocalHeaderOffset: binary.LittleEndian.Uint32(body[38:42]),
	}
	nameLen := int(binary.LittleEndian.Uint16(body[24:26]))
	extraLen := int(binary.LittleEndian.Uint16(body[26:28]))
	commentLen := int(binary.LittleEndian.Uint16(body[28:30]))

	name, err := c.Bytes(nameLen)
	if err != nil {
		return CentralDirectoryHeader{}, fmt.Errorf("central directory name: %w", err)
	}
	h.Name = string(name)

	if extraLen > 0 {
		extra, err := c.Bytes(extraLen)
		if err != nil {
			return CentralDirectoryHeader{}, fmt.Errorf("central directory extra field: %w", err)
		}
		h.Extra = extra
	}

	if commentLen > 0 {
		comment, err := c.Bytes(commentLen)
		if err != nil {
			return CentralDirectoryHeader{}, fmt.Errorf("central directory comment: %w", err)
		}
		h.Comment = string(comment)
	}

	return h, nil
}

// EndOfCentralDirectory is the fixed-size trailer record anchoring the
// archive. It is the canonical starting point for random-access decoding.
type EndOfCentralDirectory struct {
	DiskNumber       uint16
	CentralDirDisk   uint16
	EntriesOnDisk    uint16
	TotalEntries     uint16
	CentralDirSize   uint32
	CentralDirOffset uint32
	Comment          string
}

// Encode serializes the record, signature first.
func (e *EndOfCentralDirectory) Encode() []byte {
	buf := make([]byte, EndRecordSize+len(e.Comment))

	binary.LittleEndian.PutUint32(buf[0:4], SigEndCentralDir)
	binary.LittleEndian.PutUint16(buf[4:6], e.DiskNumber)
	binary.LittleEndian.PutUint16(buf[6:8], e.CentralDirDisk)
	binary.LittleEndian.PutUint16(buf[8:10], e.EntriesOnDisk)
	binary.LittleEndian.PutUint16(buf[10:12], e.TotalEntries)
	binary.LittleEndian.PutUint32(buf[12:16], e.CentralDirSize)
	binary.LittleEndian.PutUint32(buf[16:20], e.CentralDirOffset)
	binary.LittleEndian.PutUint16(buf[20:22], uint16(len(e.Comment)))

	copy(buf[EndRecordSize:], e.Comment)

	return buf
}

// DecodeEndOfCentralDirectory decodes the end record at the cursor
// position, including its length-prefixed trailing comment.
func DecodeEndOfCentralDirectory(c *Cursor) (EndOfCentralDirectory, error) {
	if err := c.Expect(SigEndCentralDir); err != nil {
		return EndOfCentralDirectory{}, fmt.Errorf("end of central directory: %w", err)
	}

	body, err := c.Bytes(EndRecordSize - 4)
	if err != nil {
		return EndOfCentralDirectory{}, fmt.Errorf("end of central directory: %w", err)
	}

	e := EndOfCentralDirectory{
		DiskNumber:       binary.LittleEndian.Uint16(body[0:2]),
		CentralDirDisk:   binary.LittleEndian.Uint16(body[2:4]),
		EntriesOnDisk:    binary.LittleEndian.Uint16(body[4:6]),
		TotalEntries:     binary.LittleEndian.Uint16(body[6:8]),
		CentralDirSize:   binary.LittleEndian.Uint32(body[8:12]),
		CentralDirOffset: binary.LittleEndian.Uint32(body[12:16]),
	}

	if commentLen := int(binary.LittleEndian.Uint16(body[16:18])); commentLen > 0 {
		comment, err := c.Bytes(commentLen)
		if err != nil {
			return EndOfCentralDirectory{}, fmt.Errorf("end of central directory comment: %w", err)
		}
		e.Comment = string(comment)
	}

	return e, nil
}

// DataDescriptor carries CRC-32 and sizes for entries whose local header
// deferred them (general-purpose bit 3).
type DataDescriptor struct {
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
}

// Encode serializes the descriptor with its optional signature, the form
// most producers emit.
func (d *DataDescriptor) Encode() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], SigDataDescriptor)
	binary.LittleEndian.PutUint32(buf[4:8], d.CRC32)
	binary.LittleEndian.PutUint32(buf[8:12], d.CompressedSize)
	binary.LittleEndian.PutUint32(buf[12:16], d.UncompressedSize)
	return buf
}

// DecodeDataDescriptor decodes a data descriptor at the cursor position.
//
// The descriptor's signature is optional: the first 32-bit word is either
// the signature or the CRC-32 itself, disambiguated by value. A CRC that
// happens to equal the signature constant is indistinguishable from the
// signed form; the signed reading wins, matching the format's own rule.
func DecodeDataDescriptor(c *Cursor) (DataDescriptor, error) {
	first, err := c.Uint32()
	if err != nil {
		return DataDescriptor{}, fmt.Errorf("data descriptor: %w", err)
	}

	var d DataDescriptor
	if first == SigDataDescriptor {
		if d.CRC32, err = c.Uint32(); err != nil {
			return DataDescriptor{}, fmt.Errorf("data descriptor crc: %w", err)
		}
	} else {
		d.CRC32 = first
	}

	if d.CompressedSize, err = c.Uint32(); err != nil {
		return DataDescriptor{}, fmt.Errorf("data descriptor compressed size: %w", err)
	}
	if d.UncompressedSize, err = c.Uint32(); err != nil {
		return DataDescriptor{}, fmt.Errorf("data descriptor uncompressed size: %w", err)
	}

	return d, nil
}
