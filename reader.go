package ziparc

import (
	"fmt"

	"github.com/meigma/ziparc/internal/record"
)

// Decoder decodes a complete ZIP byte stream into an Archive.
//
// Two implementations exist: AnchoredDecoder for buffers with random
// access (the production path) and SequentialDecoder for input that was
// accumulated front-to-back. They accept the same archives except for
// entries with deferred sizes; see SequentialDecoder.
type Decoder interface {
	Decode(data []byte) (*Archive, error)
}

// Interface compliance.
var (
	_ Decoder = AnchoredDecoder{}
	_ Decoder = SequentialDecoder{}
)

// Read decodes data with the anchored strategy.
//
// Read fails with an error wrapping ErrSignature or ErrTruncated on any
// structural inconsistency; there is no partial archive. Archives whose
// end record carries a non-empty trailing comment are not located and fail
// with ErrSignature.
func Read(data []byte) (*Archive, error) {
	return AnchoredDecoder{}.Decode(data)
}

// AnchoredDecoder locates the end-of-central-directory record at the
// buffer tail, decodes the central directory it points at, then slices
// each entry's local header and payload by its recorded offset.
type AnchoredDecoder struct{}

// Decode implements Decoder.
func (AnchoredDecoder) Decode(data []byte) (*Archive, error) {
	if len(data) < record.EndRecordSize {
		return nil, fmt.Errorf("ziparc: buffer smaller than end record: %w", ErrTruncated)
	}

	// The end record is assumed to have an empty comment, placing it in
	// the final 22 bytes exactly.
	tail := record.NewCursor(data[len(data)-record.EndRecordSize:])
	end, err := record.DecodeEndOfCentralDirectory(tail)
	if err != nil {
		return nil, fmt.Errorf("ziparc: locate end record: %w", err)
	}

	cdStart := int(end.CentralDirOffset)
	cdEnd := cdStart + int(end.CentralDirSize)
	if cdEnd > len(data) {
		return nil, fmt.Errorf("ziparc: central directory extends past buffer: %w", ErrTruncated)
	}

	cur := record.NewCursor(data[cdStart:cdEnd])
	centrals := make([]record.CentralDirectoryHeader, 0, end.TotalEntries)
	for i := 0; i < int(end.TotalEntries); i++ {
		h, err := record.DecodeCentralDirectoryHeader(cur)
		if err != nil {
			return nil, fmt.Errorf("ziparc: central directory entry %d: %w", i, err)
		}
		centrals = append(centrals, h)
	}

	// The central directory promised each entry; a failure here is a
	// whole-archive decode failure, not a skippable entry.
	pending := make(map[string]pendingEntry, len(centrals))
	for i := range centrals {
		ch := &centrals[i]
		off := int(ch.LocalHeaderOffset)
		if off > len(data) {
			return nil, fmt.Errorf("ziparc: entry %q local header offset %d past buffer: %w", ch.Name, off, ErrTruncated)
		}

		lc := record.NewCursor(data[off:])
		lh, err := record.DecodeLocalFileHeader(lc)
		if err != nil {
			return nil, fmt.Errorf("ziparc: entry %q local header: %w", ch.Name, err)
		}

		// With deferred sizes the local header carries zeros; the central
		// directory values are authoritative either way.
		if lh.Flags&record.FlagDeferredSizes != 0 {
			lh.CRC32 = ch.CRC32
			lh.CompressedSize = ch.CompressedSize
			lh.UncompressedSize = ch.UncompressedSize
		}

		payload, err := lc.Bytes(int(ch.CompressedSize))
		if err != nil {
			return nil, fmt.Errorf("ziparc: entry %q payload: %w", ch.Name, err)
		}
		pending[ch.Name] = pendingEntry{header: lh, data: payload}
	}

	return &Archive{
		pending:   pending,
		extracted: make(map[string][]byte),
		centrals:  centrals,
		end:       end,
	}, nil
}

// SequentialDecoder reads records one signature at a time from the start
// of the buffer, requiring no random access to the tail.
//
// Entries that defer their sizes to a data descriptor (general-purpose
// bit 3) are handled only when the local header still declares the
// compressed size; the descriptor is then decoded after the payload and
// its values replace the header's. A deferred-size entry declaring zero
// sizes cannot be located without inflating as the scan goes, and fails
// the decode.
type SequentialDecoder struct{}

// Decode implements Decoder.
func (SequentialDecoder) Decode(data []byte) (*Archive, error) {
	cur := record.NewCursor(data)
	pending := make(map[string]pendingEntry)
	var centrals []record.CentralDirectoryHeader

	for {
		sig, err := cur.PeekUint32()
		if err != nil {
			return nil, fmt.Errorf("ziparc: end record not found before buffer end: %w", err)
		}

		switch sig {
		case record.SigLocalFile:
			lh, err := record.DecodeLocalFileHeader(cur)
			if err != nil {
				return nil, fmt.Errorf("ziparc: local entry: %w", err)
			}
			deferred := lh.Flags&record.FlagDeferredSizes != 0
			if deferred && lh.CompressedSize == 0 && lh.UncompressedSize == 0 {
				return nil, fmt.Errorf("ziparc: entry %q defers its sizes to a data descriptor; sequential decode cannot size the payload: %w", lh.Name, ErrTruncated)
			}
			payload, err := cur.Bytes(int(lh.CompressedSize))
			if err != nil {
				return nil, fmt.Errorf("ziparc: entry %q payload: %w", lh.Name, err)
			}
			if deferred {
				dd, err := record.DecodeDataDescriptor(cur)
				if err != nil {
					return nil, fmt.Errorf("ziparc: entry %q data descriptor: %w", lh.Name, err)
				}
				lh.CRC32 = dd.CRC32
				lh.CompressedSize = dd.CompressedSize
				lh.UncompressedSize = dd.UncompressedSize
			}
			pending[lh.Name] = pendingEntry{header: lh, data: payload}

		case record.SigCentralDir:
			ch, err := record.DecodeCentralDirectoryHeader(cur)
			if err != nil {
				return nil, fmt.Errorf("ziparc: central directory entry: %w", err)
			}
			centrals = append(centrals, ch)

		case record.SigEndCentralDir:
			end, err := record.DecodeEndOfCentralDirectory(cur)
			if err != nil {
				return nil, fmt.Errorf("ziparc: end record: %w", err)
			}
			return &Archive{
				pending:   pending,
				extracted: make(map[string][]byte),
				centrals:  centrals,
				end:       end,
			}, nil

		default:
			// The format has no resynchronization mechanism; an unknown
			// signature is fatal.
			return nil, fmt.Errorf("ziparc: unknown signature %#08x at offset %d: %w", sig, cur.Offset(), ErrSignature)
		}
	}
}
