// Package ingest watches a drop directory and feeds documents into the
// import pipeline without anyone touching the web UI. Files placed under
// <root>/roster are treated as roster documents, files under
// <root>/attendance as attendance documents; eligible rows are committed
// automatically.
package ingest

import (
	"time"

	"github.com/google/uuid"
)

// Result describes the outcome of processing a single dropped file.
type Result struct {
	SourcePath   string
	SessionID    uuid.UUID
	Committed    bool
	Imported     int
	Skipped      int
	Deduplicated bool
	HashHex      string
	ProcessedAt  time.Time
	Err          string
}

// DirStats aggregates a directory sweep.
type DirStats struct {
	Scanned      int
	Matched      int
	Succeeded    int
	Failed       int
	Deduplicated int
}
