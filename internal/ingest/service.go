package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kpcollege/studentportal/constants"
	"github.com/kpcollege/studentportal/internal/importer"
)

const (
	rosterDir     = "roster"
	attendanceDir = "attendance"
)

// Service turns dropped files into committed import sessions. Files already
// processed in this run (by content hash) are skipped.
type Service struct {
	imports *importer.Service
	logger  *slog.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewService(imports *importer.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		imports: imports,
		logger:  logger,
		seen:    map[string]struct{}{},
	}
}

// ProcessPath runs one file through the matching import flow and commits
// the eligible rows. Sessions with nothing to import are cancelled.
func (s *Service) ProcessPath(ctx context.Context, root, path string) (Result, error) {
	out := Result{SourcePath: path, ProcessedAt: time.Now().UTC()}

	kind, ok := kindFor(root, path)
	if !ok {
		out.Err = "not under a roster or attendance directory"
		return out, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Error("ingest.read_failed", "path", path, "error", err)
		out.Err = err.Error()
		return out, err
	}

	sum := sha256.Sum256(data)
	out.HashHex = hex.EncodeToString(sum[:])
	s.mu.Lock()
	if _, dup := s.seen[out.HashHex]; dup {
		s.mu.Unlock()
		out.Deduplicated = true
		s.logger.Info("ingest.deduplicated", "path", path, "hash", out.HashHex)
		return out, nil
	}
	s.seen[out.HashHex] = struct{}{}
	s.mu.Unlock()

	var sess *importer.Session
	switch kind {
	case importer.KindRoster:
		sess, err = s.imports.StartRoster(ctx, filepath.Base(path), data, nil)
	case importer.KindAttendance:
		sess, err = s.imports.StartAttendance(ctx, filepath.Base(path), data)
	}
	if err != nil {
		if sess != nil {
			out.SessionID = sess.ID
		}
		s.logger.Warn("ingest.parse_failed", "path", path, "kind", kind, "error", err)
		out.Err = err.Error()
		return out, err
	}
	out.SessionID = sess.ID

	if sess.Summary.Eligible == 0 {
		if _, err := s.imports.Cancel(sess.ID); err != nil {
			out.Err = err.Error()
			return out, err
		}
		out.Skipped = sess.Summary.Skipped()
		s.logger.Info("ingest.nothing_eligible", "path", path, "session_id", sess.ID, "message", sess.Message)
		return out, nil
	}

	sess, err = s.imports.Commit(sess.ID)
	if err != nil {
		s.logger.Error("ingest.commit_failed", "path", path, "session_id", out.SessionID, "error", err)
		out.Err = err.Error()
		return out, err
	}
	out.Committed = true
	out.Imported = sess.Summary.Eligible
	out.Skipped = sess.Summary.Skipped()
	s.logger.Info("ingest.committed",
		"path", path,
		"kind", kind,
		"session_id", sess.ID,
		"imported", out.Imported,
		"skipped", out.Skipped)
	return out, nil
}

// ScanDirectory sweeps root once, processing every candidate file.
// Per-file failures are recorded, not fatal.
func (s *Service) ScanDirectory(ctx context.Context, root string) ([]Result, DirStats, error) {
	var results []Result
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			stats.Failed++
			results = append(results, Result{SourcePath: path, Err: walkErr.Error()})
			return nil
		}
		if d.IsDir() {
			if isHidden(path) && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		stats.Scanned++
		if isHidden(path) || !candidate(root, path) {
			return nil
		}
		stats.Matched++

		r, err := s.ProcessPath(ctx, root, path)
		results = append(results, r)
		if err != nil {
			stats.Failed++
			return nil
		}
		if r.Deduplicated {
			stats.Deduplicated++
		}
		stats.Succeeded++
		return nil
	})
	if err != nil {
		return results, stats, err
	}
	return results, stats, nil
}

// Run consumes watcher events until ctx is cancelled.
func (s *Service) Run(ctx context.Context, cfg WatchConfig) error {
	events, errs, err := StartWatcher(ctx, cfg, s.logger)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case path, ok := <-events:
			if !ok {
				return nil
			}
			if _, err := s.ProcessPath(ctx, cfg.Root, path); err != nil {
				s.logger.Warn("ingest.process_failed", "path", path, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			s.logger.Error("ingest.watch_error", "error", err)
		}
	}
}

// candidate reports whether path sits under a kind directory with an
// extension that kind accepts.
func candidate(root, path string) bool {
	_, ok := kindFor(root, path)
	return ok
}

func kindFor(root, path string) (importer.Kind, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return "", false
	}
	ext := constants.NormalizeExt(filepath.Ext(path))
	switch parts[0] {
	case rosterDir:
		if constants.AllowedForRoster(ext) {
			return importer.KindRoster, true
		}
	case attendanceDir:
		if constants.AllowedForAttendance(ext) {
			return importer.KindAttendance, true
		}
	}
	return "", false
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}
