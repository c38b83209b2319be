package core

import "log/slog"

// JoinOptions controls Join.
type JoinOptions struct {
	// WorkHasName is true when the work input carries its own name column.
	// Output names then come from the work side.
	WorkHasName bool

	// NameFallback decides the output name when WorkHasName is false.
	// The zero value behaves as NameBlank.
	NameFallback NameFallback

	// Duplicates decides which master record owns a repeated key.
	// The zero value behaves as KeepFirst.
	Duplicates DuplicatePolicy

	Sink DiagnosticSink
}

// JoinResult is the outcome of Join.
type JoinResult struct {
	Records    []EnrichedRecord
	MatchCount int

	// Duplicates lists master keys seen more than once.
	Duplicates []DuplicateKey

	// Indexed is the number of distinct master keys.
	Indexed int

	// SkippedMaster counts master records with an empty key.
	SkippedMaster int
}

// Total returns the number of work records joined.
func (r *JoinResult) Total() int {
	return len(r.Records)
}

// MatchRate returns the match percentage, or 0 without work records.
func (r *JoinResult) MatchRate() float64 {
	if len(r.Records) == 0 {
		return 0
	}
	return float64(r.MatchCount) / float64(len(r.Records)) * 100
}

// Join indexes master records by normalized CPF and emits one EnrichedRecord
// per work record, in work order. The work record's CPF is copied with its
// original formatting. Email and Telefone come from the matched master
// record and are empty on a miss. MatchCount counts hits regardless of
// whether the matched fields are empty.
func Join(master []MasterRecord, work []WorkRecord, opts JoinOptions) *JoinResult {
	res := &JoinResult{Records: make([]EnrichedRecord, 0, len(work))}

	lookup := make(map[string]int, len(master))
	for i, m := range master {
		key := NormalizeCPF(m.CPF)
		if key == "" {
			res.SkippedMaster++
			continue
		}

		prev, exists := lookup[key]
		if !exists {
			lookup[key] = i
			continue
		}

		dup := DuplicateKey{Key: key, KeptRow: prev, DroppedRow: i}
		if opts.Duplicates == KeepLast {
			lookup[key] = i
			dup.KeptRow, dup.DroppedRow = i, prev
		}
		res.Duplicates = append(res.Duplicates, dup)
		emit(opts.Sink, slog.LevelWarn, ComponentJoin, "duplicate master key",
			"key", key,
			"kept_row", dup.KeptRow,
			"dropped_row", dup.DroppedRow,
		)
	}
	res.Indexed = len(lookup)

	for _, w := range work {
		out := EnrichedRecord{CPF: w.CPF}
		if opts.WorkHasName {
			out.Nome = w.Nome
		}

		if idx, ok := lookup[NormalizeCPF(w.CPF)]; ok {
			m := master[idx]
			out.Email = m.Email
			out.Telefone = m.Telefone
			out.Matched = true
			if !opts.WorkHasName && opts.NameFallback == NameFromMaster {
				out.Nome = m.Nome
			}
			res.MatchCount++
		}

		res.Records = append(res.Records, out)
	}

	emit(opts.Sink, slog.LevelInfo, ComponentJoin, "join complete",
		"master", len(master),
		"indexed", res.Indexed,
		"skipped_master", res.SkippedMaster,
		"work", len(work),
		"matches", res.MatchCount,
	)
	return res
}
