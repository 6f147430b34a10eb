package ziparc

import (
	"log/slog"
	"unicode/utf8"

	"github.com/meigma/ziparc/internal/codec"
)

// ExtractConfig bounds the work done by a single extraction step.
type ExtractConfig struct {
	// MaxEntriesPerStep limits how many deflate entries one step may
	// decompress. Zero or negative means no entry limit. Store entries
	// are moved for free and never count against the limit.
	MaxEntriesPerStep int

	// MaxBytesPerStep limits one step's decompression work by compressed
	// payload size. A deflate entry is eligible only while its compressed
	// size is below the step's remaining byte budget. Zero means no byte
	// limit.
	MaxBytesPerStep int64

	// IsText selects which entries are interpreted as UTF-8 text in the
	// final result. Nil treats every entry as binary.
	IsText func(name string) bool

	// Logger receives per-entry warnings for decompression failures and
	// unsupported methods. Nil discards them.
	Logger *slog.Logger
}

func (cfg *ExtractConfig) log() *slog.Logger {
	if cfg.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return cfg.Logger
}

// Step is the outcome of one extraction pass. When Done is false the
// archive still has pending entries and the caller should take another
// step; when Done is true, Results holds the final per-entry contents.
type Step struct {
	Done    bool
	Results []Extracted
}

// ExtractStep performs one bounded extraction pass over the archive and
// returns immediately. It is a cooperative, caller-driven state machine:
// no background work survives the call, and the caller decides when (or
// whether) to take the next step.
//
// Entries are visited in central directory order. Store entries move to
// the extracted set for free; deflate entries consume the configured
// quotas; entries with any other method are removed from consideration
// and never surface in the results. A deflate entry whose stream fails to
// decompress stays pending and is retried on later steps until a full
// sweep with quota to spare makes no progress, at which point the
// remaining failures are abandoned so extraction can finish. Entries whose
// compressed size is at least MaxBytesPerStep can never fit the budget and
// are abandoned the same way.
func ExtractStep(cfg ExtractConfig, a *Archive) Step {
	var (
		entriesUsed int
		bytesLeft   = cfg.MaxBytesPerStep
		quotaHit    bool
		progressed  bool
	)

	for i := range a.centrals {
		name := a.centrals[i].Name
		pe, ok := a.pending[name]
		if !ok {
			continue
		}

		switch Method(pe.header.Method) {
		case MethodStore:
			a.extracted[name] = pe.data
			delete(a.pending, name)
			progressed = true

		case MethodDeflate:
			if cfg.MaxEntriesPerStep > 0 && entriesUsed >= cfg.MaxEntriesPerStep {
				quotaHit = true
				continue
			}
			if cfg.MaxBytesPerStep > 0 && int64(len(pe.data)) >= bytesLeft {
				// An entry at least as large as the whole budget can never
				// become eligible in any step; that is not transient quota
				// pressure, so it is left for the abandonment sweep rather
				// than keeping the step loop alive forever.
				if int64(len(pe.data)) < cfg.MaxBytesPerStep {
					quotaHit = true
				}
				continue
			}
			out, err := codec.Inflate(pe.data)
			if err != nil {
				// Retryable: the entry stays pending and later entries are
				// still scanned.
				cfg.log().Warn("decompression failed", "name", name, "error", err)
				continue
			}
			a.extracted[name] = out
			delete(a.pending, name)
			entriesUsed++
			bytesLeft -= int64(len(pe.data))
			progressed = true

		default:
			cfg.log().Warn("unsupported compression method, dropping entry",
				"name", name, "method", pe.header.Method)
			delete(a.pending, name)
			a.dropped = append(a.dropped, name)
		}
	}

	// A sweep that attempted every pending entry without transient quota
	// pressure and moved nothing means the survivors can never resolve —
	// their streams are corrupt or their compressed size exceeds the whole
	// byte budget. Abandon them so the loop can terminate.
	if len(a.pending) > 0 && !progressed && !quotaHit {
		for i := range a.centrals {
			name := a.centrals[i].Name
			pe, ok := a.pending[name]
			if !ok {
				continue
			}
			reason := "repeated decompression failure"
			if cfg.MaxBytesPerStep > 0 && int64(len(pe.data)) >= cfg.MaxBytesPerStep {
				reason = "compressed size exceeds the step byte budget"
			}
			cfg.log().Warn("abandoning entry", "name", name, "reason", reason)
			delete(a.pending, name)
			a.failed = append(a.failed, name)
		}
	}

	if len(a.pending) > 0 {
		return Step{}
	}
	return Step{Done: true, Results: finalize(cfg, a)}
}

// finalize interprets all extracted bytes by the text predicate, in
// central directory order. Duplicate central directory names yield one
// result, matching the one map slot they collapsed into at decode time.
func finalize(cfg ExtractConfig, a *Archive) []Extracted {
	results := make([]Extracted, 0, len(a.extracted))
	seen := make(map[string]struct{}, len(a.extracted))
	for i := range a.centrals {
		name := a.centrals[i].Name
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		data, ok := a.extracted[name]
		if !ok {
			continue
		}

		var content Content
		switch {
		case cfg.IsText != nil && cfg.IsText(name):
			if utf8.Valid(data) {
				content = Content{Kind: ContentText, Text: string(data)}
			} else {
				// Text was requested but the bytes are not valid UTF-8;
				// hand the caller the raw bytes instead of failing.
				cfg.log().Warn("entry is not valid UTF-8", "name", name, "error", ErrTextDecode)
				content = Content{Kind: ContentFailed, Data: data}
			}
		default:
			content = Content{Kind: ContentBinary, Data: data}
		}
		results = append(results, Extracted{Name: name, Content: content})
	}
	return results
}

// ExtractAll drives ExtractStep until completion. onStep, when non-nil,
// observes progress after every pass, which is the hook callers use to
// interleave rendering or other work.
func ExtractAll(cfg ExtractConfig, a *Archive, onStep func(Progress)) []Extracted {
	for {
		step := ExtractStep(cfg, a)
		if onStep != nil {
			onStep(a.Progress())
		}
		if step.Done {
			return step.Results
		}
	}
}
