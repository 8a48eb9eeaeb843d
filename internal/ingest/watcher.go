package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

type WatchConfig struct {
	Root        string        // drop directory (watched recursively)
	InitialScan bool          // if true, walk the root and emit existing files
	Debounce    time.Duration // coalesce rapid write/rename bursts
}

// StartWatcher emits paths of candidate documents appearing under cfg.Root.
// Both channels close when ctx is cancelled.
func StartWatcher(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, <-chan error, error) {
	if cfg.Root == "" {
		return nil, nil, errors.New("watch root is required")
	}
	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("ingest.watch.create_failed", "error", err)
		return nil, nil, err
	}

	// Watch the root and every existing subdirectory.
	err = filepath.WalkDir(cfg.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return w.Add(path)
		}
		if cfg.InitialScan && candidate(cfg.Root, path) {
			select {
			case evCh <- path:
			default:
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("ingest.watch.add_failed", "root", cfg.Root, "error", err)
		_ = w.Close()
		return nil, nil, err
	}

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer func() { _ = w.Close() }()

		// sendPending runs on the timer goroutine while the select loop
		// below keeps adding paths, so pending needs the mutex. The
		// stopped flag keeps a late-firing timer off the closed channel.
		var (
			mu      sync.Mutex
			timer   *time.Timer
			pending = map[string]struct{}{}
			stopped bool
		)
		defer func() {
			mu.Lock()
			stopped = true
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
		}()

		sendPending := func() {
			mu.Lock()
			defer mu.Unlock()
			if stopped {
				return
			}
			for p := range pending {
				select {
				case evCh <- p:
				default:
				}
				delete(pending, p)
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op&fsnotify.Create != 0 {
					// New subdirectories need their own watch; for
					// non-dirs Add fails and that is fine.
					_ = w.Add(e.Name)
				}
				if candidate(cfg.Root, e.Name) && e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
					mu.Lock()
					pending[e.Name] = struct{}{}
					if cfg.Debounce > 0 {
						if timer != nil {
							timer.Stop()
						}
						timer = time.AfterFunc(cfg.Debounce, sendPending)
					}
					mu.Unlock()
					if cfg.Debounce == 0 {
						sendPending()
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("ingest.watch.error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}
