package ziparc

// Overview contains aggregate statistics about a decoded archive.
type Overview struct {
	// EntryCount is the number of entries named by the central directory.
	EntryCount int

	// ExtractedCount and PendingCount partition the entries still under
	// consideration by the extraction engine.
	ExtractedCount int
	PendingCount   int

	// Unsupported lists entries the extraction engine removed for using a
	// compression method other than store or deflate, and Failed lists
	// entries abandoned after repeated decompression failures. Both are
	// in removal order.
	Unsupported []string
	Failed      []string

	// TotalCompressedSize and TotalUncompressedSize sum the central
	// directory's declared sizes over all entries.
	TotalCompressedSize   uint64
	TotalUncompressedSize uint64

	// CompressionRatio is compressed over uncompressed size, or 1.0 for
	// an empty archive.
	CompressionRatio float64
}

// Inspect computes an Overview from the archive's current state.
//
// Inspect is a pure read-only query: calling it repeatedly without an
// intervening ExtractStep returns identical results.
func Inspect(a *Archive) Overview {
	o := Overview{
		EntryCount:     len(a.centrals),
		ExtractedCount: len(a.extracted),
		PendingCount:   len(a.pending),
	}
	if len(a.dropped) > 0 {
		o.Unsupported = append([]string(nil), a.dropped...)
	}
	if len(a.failed) > 0 {
		o.Failed = append([]string(nil), a.failed...)
	}

	for i := range a.centrals {
		o.TotalCompressedSize += uint64(a.centrals[i].CompressedSize)
		o.TotalUncompressedSize += uint64(a.centrals[i].UncompressedSize)
	}
	if o.TotalUncompressedSize > 0 {
		o.CompressionRatio = float64(o.TotalCompressedSize) / float64(o.TotalUncompressedSize)
	} else {
		o.CompressionRatio = 1.0
	}

	return o
}
