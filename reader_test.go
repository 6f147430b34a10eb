package ziparc

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/ziparc/internal/codec"
	"github.com/meigma/ziparc/internal/record"
)

func testEntries() []Entry {
	return []Entry{
		TextEntry("docs/readme.txt", strings.Repeat("hello zip world ", 64)),
		RawEntry("data/blob.bin", bytes.Repeat([]byte{0xde, 0xad, 0xbe, 0xef}, 32)),
		TextEntry("empty.txt", ""),
	}
}

func TestDecodersAgree(t *testing.T) {
	t.Parallel()

	data := Build(testEntries())

	anchored, err := AnchoredDecoder{}.Decode(data)
	require.NoError(t, err)
	sequential, err := SequentialDecoder{}.Decode(data)
	require.NoError(t, err)

	require.Equal(t, anchored.Names(), sequential.Names())
	assert.Equal(t, anchored.End(), sequential.End())

	for _, name := range anchored.Names() {
		ah, apayload, ok := anchored.Pending(name)
		require.True(t, ok)
		sh, spayload, ok := sequential.Pending(name)
		require.True(t, ok)
		assert.Equal(t, ah, sh, name)
		assert.Equal(t, apayload, spayload, name)
	}
}

func TestReadRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	valid := Build(testEntries())

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty buffer", nil, ErrTruncated},
		{"shorter than end record", []byte("PK"), ErrTruncated},
		{"garbage tail", bytes.Repeat([]byte{0x42}, 100), ErrSignature},
		{"end record cut off", valid[:len(valid)-1], ErrSignature},
		{"central directory cut off", append(append([]byte(nil), valid[:10]...), valid[len(valid)-record.EndRecordSize:]...), ErrTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Read(tt.data)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSequentialDecoderRejectsUnknownSignature(t *testing.T) {
	t.Parallel()

	data := Build(testEntries())
	// A valid u32 where a record signature is required, but not one of the
	// three the format defines at top level.
	data[0] = 0x51

	_, err := SequentialDecoder{}.Decode(data)
	require.ErrorIs(t, err, ErrSignature)
}

func TestSequentialDecoderDataDescriptor(t *testing.T) {
	t.Parallel()

	content := []byte(strings.Repeat("descriptor test ", 32))
	payload, err := codec.Deflate(content)
	require.NoError(t, err)
	crc := codec.Checksum(content)

	for _, signed := range []bool{true, false} {
		name := "signed"
		if !signed {
			name = "unsigned"
		}
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			data := buildDeferredArchive(t, "streamed.txt", content, payload, crc, signed)

			archive, err := SequentialDecoder{}.Decode(data)
			require.NoError(t, err)

			lh, got, ok := archive.Pending("streamed.txt")
			require.True(t, ok)
			assert.Equal(t, payload, got)
			// The descriptor's values replace the header's deferred zeros.
			assert.Equal(t, crc, lh.CRC32)
			assert.Equal(t, uint32(len(content)), lh.UncompressedSize)
		})
	}
}

func TestSequentialDecoderRejectsUnsizedDeferredEntry(t *testing.T) {
	t.Parallel()

	lh := record.LocalFileHeader{
		VersionNeeded: 20,
		Flags:         record.FlagDeferredSizes,
		Method:        uint16(MethodDeflate),
		Name:          "unsized.bin",
	}
	_, err := SequentialDecoder{}.Decode(lh.Encode())
	require.ErrorIs(t, err, ErrTruncated)
}

func TestAnchoredDecoderUsesCentralSizesForDeferredEntries(t *testing.T) {
	t.Parallel()

	content := []byte(strings.Repeat("anchored deferred ", 24))
	payload, err := codec.Deflate(content)
	require.NoError(t, err)
	crc := codec.Checksum(content)

	data := buildDeferredArchive(t, "streamed.txt", content, payload, crc, true)

	archive, err := AnchoredDecoder{}.Decode(data)
	require.NoError(t, err)

	lh, got, ok := archive.Pending("streamed.txt")
	require.True(t, ok)
	assert.Equal(t, payload, got)
	assert.Equal(t, crc, lh.CRC32)
	assert.Equal(t, uint32(len(payload)), lh.CompressedSize)
}

// buildDeferredArchive assembles a one-entry archive whose local header
// sets general-purpose bit 3. The header still declares the compressed
// size (so a sequential scan can locate the payload) but defers the CRC
// and uncompressed size to the trailing descriptor.
func buildDeferredArchive(tb testing.TB, name string, content, payload []byte, crc uint32, signedDescriptor bool) []byte {
	tb.Helper()

	var buf bytes.Buffer

	lh := record.LocalFileHeader{
		VersionNeeded:  20,
		Flags:          record.FlagDeferredSizes,
		Method:         uint16(MethodDeflate),
		CompressedSize: uint32(len(payload)),
		Name:           name,
	}
	buf.Write(lh.Encode())
	buf.Write(payload)

	dd := record.DataDescriptor{
		CRC32:            crc,
		CompressedSize:   uint32(len(payload)),
		UncompressedSize: uint32(len(content)),
	}
	descriptor := dd.Encode()
	if !signedDescriptor {
		descriptor = descriptor[4:]
	}
	buf.Write(descriptor)

	cdOffset := buf.Len()
	ch := record.CentralDirectoryHeader{
		VersionMadeBy:    20,
		VersionNeeded:    20,
		Flags:            record.FlagDeferredSizes,
		Method:           uint16(MethodDeflate),
		CRC32:            crc,
		CompressedSize:   uint32(len(payload)),
		UncompressedSize: uint32(len(content)),
		Name:             name,
	}
	buf.Write(ch.Encode())

	end := record.EndOfCentralDirectory{
		EntriesOnDisk:    1,
		TotalEntries:     1,
		CentralDirSize:   uint32(buf.Len() - cdOffset),
		CentralDirOffset: uint32(cdOffset),
	}
	buf.Write(end.Encode())

	return buf.Bytes()
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	entries := testEntries()
	archive, err := Read(Build(entries))
	require.NoError(t, err)

	results := ExtractAll(ExtractConfig{
		MaxEntriesPerStep: 1,
		IsText: func(name string) bool {
			return strings.HasSuffix(name, ".txt")
		},
	}, archive, nil)
	require.Len(t, results, len(entries))

	byName := make(map[string]Content, len(results))
	for _, r := range results {
		byName[r.Name] = r.Content
	}

	for _, e := range entries {
		content, ok := byName[e.Name]
		require.True(t, ok, e.Name)
		if strings.HasSuffix(e.Name, ".txt") {
			assert.Equal(t, ContentText, content.Kind, e.Name)
			assert.Equal(t, string(e.Data), content.Text, e.Name)
		} else {
			assert.Equal(t, ContentBinary, content.Kind, e.Name)
			assert.Equal(t, e.Data, content.Data, e.Name)
		}
	}
}
