package ziparc

import (
	"github.com/meigma/ziparc/internal/record"
)

// pendingEntry is a decoded local header plus its still-compressed payload.
type pendingEntry struct {
	header record.LocalFileHeader
	data   []byte
}

// Archive is a decoded ZIP byte stream.
//
// Entries start out pending (possibly compressed) and are moved to the
// extracted set by the extraction engine; every entry named by the central
// directory lives in exactly one of the two sets, except entries the
// engine permanently removed for using an unsupported method. Duplicate
// names in the central directory collapse to the last occurrence. An
// Archive is owned by a single call chain; concurrent use is not
// supported.
type Archive struct {
	pending   map[string]pendingEntry
	extracted map[string][]byte
	dropped   []string // unsupported-method entries, removed from consideration
	failed    []string // entries abandoned after exhausting decompression retries
	centrals  []record.CentralDirectoryHeader
	end       record.EndOfCentralDirectory
}

// Len returns the number of entries named by the central directory.
func (a *Archive) Len() int { return len(a.centrals) }

// Names returns entry names in central directory order.
func (a *Archive) Names() []string {
	names := make([]string, len(a.centrals))
	for i := range a.centrals {
		names[i] = a.centrals[i].Name
	}
	return names
}

// Centrals returns the decoded central directory headers in stored order.
// The returned slice is shared; callers must not modify it.
func (a *Archive) Centrals() []CentralDirectoryHeader { return a.centrals }

// End returns the decoded end-of-central-directory record.
func (a *Archive) End() EndOfCentralDirectory { return a.end }

// Pending returns the local header and still-compressed payload for an
// entry not yet processed by the extraction engine.
func (a *Archive) Pending(name string) (LocalFileHeader, []byte, bool) {
	e, ok := a.pending[name]
	return e.header, e.data, ok
}

// Extracted returns the uncompressed bytes for a fully processed entry.
func (a *Archive) Extracted(name string) ([]byte, bool) {
	b, ok := a.extracted[name]
	return b, ok
}

// Progress reports current extraction counts.
type Progress struct {
	Extracted int // entries with uncompressed bytes available
	Pending   int // entries still awaiting processing
	Total     int // distinct entries, including removed ones
}

// Progress is a read-only query over current counts, for caller-side
// reporting between extraction steps. Total counts distinct entry names,
// so duplicate central directory records do not inflate it.
func (a *Archive) Progress() Progress {
	return Progress{
		Extracted: len(a.extracted),
		Pending:   len(a.pending),
		Total:     len(a.extracted) + len(a.pending) + len(a.dropped) + len(a.failed),
	}
}
