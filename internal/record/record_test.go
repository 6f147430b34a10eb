package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	h := LocalFileHeader{
		VersionNeeded:    20,
		Flags:            0,
		Method:           8,
		ModTime:          0x6b32,
		ModDate:          0x5a21,
		CRC32:            0xdeadbeef,
		CompressedSize:   42,
		UncompressedSize: 128,
		Name:             "dir/file.txt",
		Extra:            []byte{0x01, 0x00, 0x02, 0x00, 0xaa, 0xbb},
	}

	encoded := h.Encode()
	require.Len(t, encoded, h.EncodedSize())

	got, err := DecodeLocalFileHeader(NewCursor(encoded))
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestLocalFileHeaderDecodeErrors(t *testing.T) {
	t.Parallel()

	h := LocalFileHeader{Name: "a.txt", CompressedSize: 5, UncompressedSize: 5}
	encoded := h.Encode()

	t.Run("signature mismatch", func(t *testing.T) {
		t.Parallel()
		bad := append([]byte(nil), encoded...)
		bad[0] ^= 0xff
		_, err := DecodeLocalFileHeader(NewCursor(bad))
		require.ErrorIs(t, err, ErrSignature)
	})

	t.Run("truncated body", func(t *testing.T) {
		t.Parallel()
		_, err := DecodeLocalFileHeader(NewCursor(encoded[:10]))
		require.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("name longer than buffer", func(t *testing.T) {
		t.Parallel()
		// Keep the fixed body but cut into the variable name bytes.
		_, err := DecodeLocalFileHeader(NewCursor(encoded[:len(encoded)-2]))
		require.ErrorIs(t, err, ErrTruncated)
	})
}

func TestCentralDirectoryHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	h := CentralDirectoryHeader{
		VersionMadeBy:     20,
		VersionNeeded:     20,
		Flags:             FlagDeferredSizes,
		Method:            8,
		ModTime:           0x1234,
		ModDate:           0x4321,
		CRC32:             0xcafebabe,
		CompressedSize:    10,
		UncompressedSize:  99,
		DiskNumberStart:   0,
		InternalAttrs:     1,
		ExternalAttrs:     0x81a40000,
		LocalHeaderOffset: 1337,
		Name:              "nested/path/to/entry",
		Extra:             []byte{0x55, 0x54, 0x05, 0x00, 0x00},
		Comment:           "entry comment",
	}

	got, err := DecodeCentralDirectoryHeader(NewCursor(h.Encode()))
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestCentralDirectoryHeaderTruncatedComment(t *testing.T) {
	t.Parallel()

	h := CentralDirectoryHeader{Name: "x", Comment: "comment"}
	encoded := h.Encode()

	_, err := DecodeCentralDirectoryHeader(NewCursor(encoded[:len(encoded)-3]))
	require.ErrorIs(t, err, ErrTruncated)
}

func TestEndOfCentralDirectoryRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		end  EndOfCentralDirectory
	}{
		{
			name: "empty comment",
			end: EndOfCentralDirectory{
				EntriesOnDisk:    3,
				TotalEntries:     3,
				CentralDirSize:   210,
				CentralDirOffset: 4096,
			},
		},
		{
			name: "with comment",
			end: EndOfCentralDirectory{
				EntriesOnDisk:    1,
				TotalEntries:     1,
				CentralDirSize:   52,
				CentralDirOffset: 64,
				Comment:          "built by test",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			encoded := tt.end.Encode()
			require.Len(t, encoded, EndRecordSize+len(tt.end.Comment))

			got, err := DecodeEndOfCentralDirectory(NewCursor(encoded))
			require.NoError(t, err)
			assert.Equal(t, tt.end, got)
		})
	}
}

func TestDataDescriptorDecode(t *testing.T) {
	t.Parallel()

	d := DataDescriptor{CRC32: 0x11223344, CompressedSize: 100, UncompressedSize: 250}

	t.Run("signed form", func(t *testing.T) {
		t.Parallel()
		got, err := DecodeDataDescriptor(NewCursor(d.Encode()))
		require.NoError(t, err)
		assert.Equal(t, d, got)
	})

	t.Run("unsigned form", func(t *testing.T) {
		t.Parallel()
		// Drop the optional signature: the first word is the CRC itself.
		got, err := DecodeDataDescriptor(NewCursor(d.Encode()[4:]))
		require.NoError(t, err)
		assert.Equal(t, d, got)
	})

	t.Run("truncated", func(t *testing.T) {
		t.Parallel()
		_, err := DecodeDataDescriptor(NewCursor(d.Encode()[:9]))
		require.ErrorIs(t, err, ErrTruncated)
	})
}

func TestCursorExpectDoesNotAdvanceOnMismatch(t *testing.T) {
	t.Parallel()

	c := NewCursor([]byte{0x50, 0x4b, 0x03, 0x04})
	require.ErrorIs(t, c.Expect(SigCentralDir), ErrSignature)
	assert.Equal(t, 0, c.Offset())

	require.NoError(t, c.Expect(SigLocalFile))
	assert.Equal(t, 4, c.Offset())
}

func TestDOSTimeRoundTrip(t *testing.T) {
	t.Parallel()

	// Two-second resolution, so pick an even second.
	want := time.Date(2024, time.March, 15, 13, 45, 30, 0, time.Local)
	dosDate, dosTime := DOSTime(want)
	assert.Equal(t, want, TimeFromDOS(dosDate, dosTime))
}

func TestDOSTimeClampsPre1980(t *testing.T) {
	t.Parallel()

	dosDate, _ := DOSTime(time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 1980, int(dosDate>>9&0x7f)+1980)
}
