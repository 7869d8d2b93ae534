package media

import (
	"os"
	"path/filepath"
	"time"
)

// StartOrphanSweeper launches a background goroutine that periodically prunes
// empty event directories left behind by interrupted uploads. Only
// directories older than minAge are touched, so a directory allocated by an
// in-flight request is never swept from under it. Best-effort: failures are
// logged and the loop keeps running.
func (s *Store) StartOrphanSweeper(interval, minAge time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if minAge <= 0 {
		minAge = time.Hour
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup.
			time.Sleep(interval)
			s.sweepOnce(minAge)
		}
	}()
}

func (s *Store) sweepOnce(minAge time.Duration) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		s.log.Warnf("orphan sweep: read root failed: %v", err)
		return
	}
	cutoff := time.Now().Add(-minAge)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		children, err := os.ReadDir(filepath.Join(s.root, e.Name()))
		if err != nil || len(children) != 0 {
			continue
		}
		if err := s.PruneIfEmpty(e.Name()); err != nil {
			s.log.Warnf("orphan sweep: prune %s failed: %v", e.Name(), err)
		}
	}
}
