// Package ziparc encodes and decodes ZIP archives held entirely in memory.
//
// The encoder builds a valid archive byte stream from named entries,
// choosing store or deflate per entry by whichever is smaller. The decoder
// recovers the archive's structure either by anchoring on the
// end-of-central-directory record (random access, the production path) or
// by scanning records sequentially from the front (the streaming fallback).
//
// # Quick Start
//
// Build an archive and read it back:
//
//	data := ziparc.Build([]ziparc.Entry{
//	    ziparc.TextEntry("hello.txt", "hello world\n"),
//	})
//	archive, err := ziparc.Read(data)
//	if err != nil {
//	    return err
//	}
//
// # Incremental Extraction
//
// Decompression is a caller-driven state machine rather than an
// all-or-nothing call. Each ExtractStep does a bounded amount of work and
// returns immediately; the caller decides when to take the next step:
//
//	cfg := ziparc.ExtractConfig{MaxEntriesPerStep: 4}
//	for {
//	    step := ziparc.ExtractStep(cfg, archive)
//	    if step.Done {
//	        use(step.Results)
//	        break
//	    }
//	    // yield, render progress, etc.
//	}
//
// Per-entry failures are isolated: a corrupt deflate stream never aborts
// extraction of the remaining entries.
//
// Multi-disk archives, encryption, and Zip64 extensions are not supported.
package ziparc
