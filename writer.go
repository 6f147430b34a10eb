package ziparc

import (
	"bytes"
	"log/slog"
	"time"

	"github.com/meigma/ziparc/internal/codec"
	"github.com/meigma/ziparc/internal/record"
)

// Header constants emitted by the encoder. Decoders in this package read
// the attribute fields only for informational queries, never for
// correctness.
const (
	versionMadeBy = 20 // MS-DOS attribute semantics, format 2.0
	versionNeeded = 20
	externalAttrs = 0
)

// SkipCompressionFunc returns true when an entry should be stored
// uncompressed without attempting deflate.
type SkipCompressionFunc func(name string) bool

// BuildOption configures the encoder.
type BuildOption func(*buildConfig)

type buildConfig struct {
	storeOnly bool
	skip      SkipCompressionFunc
	modTime   time.Time
	comment   string
	logger    *slog.Logger
}

func (cfg *buildConfig) log() *slog.Logger {
	if cfg.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return cfg.logger
}

// BuildWithStoreOnly disables deflate; every entry is stored verbatim.
func BuildWithStoreOnly() BuildOption {
	return func(cfg *buildConfig) {
		cfg.storeOnly = true
	}
}

// BuildWithSkipCompression stores entries matched by fn without attempting
// deflate, e.g. names with known already-compressed extensions.
func BuildWithSkipCompression(fn SkipCompressionFunc) BuildOption {
	return func(cfg *buildConfig) {
		cfg.skip = fn
	}
}

// BuildWithModTime sets the modification time recorded in every header.
// When unset, headers carry the zero MS-DOS timestamp.
func BuildWithModTime(t time.Time) BuildOption {
	return func(cfg *buildConfig) {
		cfg.modTime = t
	}
}

// BuildWithComment sets the archive comment stored in the
// end-of-central-directory record. Note that Read cannot locate archives
// with a non-empty comment; see Read.
func BuildWithComment(comment string) BuildOption {
	return func(cfg *buildConfig) {
		cfg.comment = comment
	}
}

// BuildWithLogger attaches a logger for per-entry encoding decisions.
func BuildWithLogger(logger *slog.Logger) BuildOption {
	return func(cfg *buildConfig) {
		cfg.logger = logger
	}
}

// Encode compresses entries without assembling an archive.
//
// Each entry is deflated and the smaller of the raw and deflated forms is
// kept; ties keep the raw form with MethodStore. The returned files are in
// input order, which Build preserves as local-entry order.
func Encode(entries []Entry, opts ...BuildOption) []EncodedFile {
	cfg := buildConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return encodeFiles(entries, &cfg)
}

func encodeFiles(entries []Entry, cfg *buildConfig) []EncodedFile {
	files := make([]EncodedFile, 0, len(entries))
	for _, e := range entries {
		f := EncodedFile{
			Name:             e.Name,
			Payload:          e.Data,
			UncompressedSize: uint32(len(e.Data)),
			CompressedSize:   uint32(len(e.Data)),
			Method:           MethodStore,
			CRC32:            codec.Checksum(e.Data),
		}

		tryDeflate := !cfg.storeOnly && (cfg.skip == nil || !cfg.skip(e.Name))
		if tryDeflate {
			deflated, err := codec.Deflate(e.Data)
			switch {
			case err != nil:
				cfg.log().Warn("deflate failed, storing entry", "name", e.Name, "error", err)
			case len(deflated) < len(e.Data):
				f.Payload = deflated
				f.CompressedSize = uint32(len(deflated))
				f.Method = MethodDeflate
			}
		}

		cfg.log().Debug("encoded entry",
			"name", f.Name,
			"method", f.Method.String(),
			"uncompressed", f.UncompressedSize,
			"compressed", f.CompressedSize,
		)
		files = append(files, f)
	}
	return files
}

// Build serializes entries into a complete archive: all local headers and
// payloads, then the central directory, then the end record. Entry order
// is preserved.
func Build(entries []Entry, opts ...BuildOption) []byte {
	cfg := buildConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	files := encodeFiles(entries, &cfg)
	dosDate, dosTime := record.DOSTime(cfg.modTime)

	var buf bytes.Buffer

	// Local entries first. Each entry's central directory record points at
	// the bytes already emitted when its local header began, so the offset
	// is captured before writing.
	offsets := make([]uint32, len(files))
	for i := range files {
		offsets[i] = uint32(buf.Len())
		h := record.LocalFileHeader{
			VersionNeeded:    versionNeeded,
			Method:           uint16(files[i].Method),
			ModTime:          dosTime,
			ModDate:          dosDate,
			CRC32:            files[i].CRC32,
			CompressedSize:   files[i].CompressedSize,
			UncompressedSize: files[i].UncompressedSize,
			Name:             files[i].Name,
		}
		buf.Write(h.Encode())
		buf.Write(files[i].Payload)
	}

	cdOffset := buf.Len()
	for i := range files {
		h := record.CentralDirectoryHeader{
			VersionMadeBy:     versionMadeBy,
			VersionNeeded:     versionNeeded,
			Method:            uint16(files[i].Method),
			ModTime:           dosTime,
			ModDate:           dosDate,
			CRC32:             files[i].CRC32,
			CompressedSize:    files[i].CompressedSize,
			UncompressedSize:  files[i].UncompressedSize,
			ExternalAttrs:     externalAttrs,
			LocalHeaderOffset: offsets[i],
			Name:              files[i].Name,
		}
		buf.Write(h.Encode())
	}

	end := record.EndOfCentralDirectory{
		EntriesOnDisk:    uint16(len(files)),
		TotalEntries:     uint16(len(files)),
		CentralDirSize:   uint32(buf.Len() - cdOffset),
		CentralDirOffset: uint32(cdOffset),
		Comment:          cfg.comment,
	}
	buf.Write(end.Encode())

	return buf.Bytes()
}
