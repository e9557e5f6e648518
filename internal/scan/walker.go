package scan

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/trovescan/trove/internal/classify"
	"github.com/trovescan/trove/internal/inventory"
)

// walker performs one sequential, depth-first traversal for a session. It
// suspends only at filesystem call boundaries and never fans out across
// sibling directories.
type walker struct {
	sess *Session
}

// walk visits one directory. Listing failures and timeouts abandon the
// branch as a single skip; they are never retried or surfaced.
func (w *walker) walk(dir string) {
	s := w.sess
	if s.aborted.Load() {
		return
	}
	s.offerProgress(dir)

	entries, err := readDirTimeout(dir, s.opts.ListTimeout)
	if err != nil {
		s.skipped.Add(1)
		return
	}

	for _, de := range entries {
		if s.aborted.Load() {
			return
		}
		if s.opts.Throttle > 0 {
			time.Sleep(s.opts.Throttle)
		}

		name := de.Name()

		// Dot entries are dropped before any other rule applies.
		if strings.HasPrefix(name, ".") {
			s.skipped.Add(1)
			continue
		}

		full := filepath.Join(dir, name)
		if de.IsDir() {
			w.enterDir(full, name)
		} else {
			w.visitFile(dir, full, name)
		}
	}
}

// enterDir decides whether to recurse into a subdirectory. When a time
// filter with a lower bound is active and the directory's own mtime
// predates it, the whole subtree is skipped; a stat failure fails open and
// recurses anyway.
func (w *walker) enterDir(full, name string) {
	s := w.sess
	if s.policy.Exclude(full, name) {
		s.skipped.Add(1)
		return
	}
	if s.filter != nil && !s.filter.from.IsZero() {
		info, err := statTimeout(full, s.opts.DirStatTimeout)
		if err == nil && info.ModTime().Before(s.filter.from) {
			s.skipped.Add(1)
			return
		}
	}
	w.walk(full)
}

// visitFile classifies, stats, and filters one file entry, appending a
// ScannedFile on a match. The time filter always uses the file's own
// modification time, never the parent directory's.
func (w *walker) visitFile(dir, full, name string) {
	s := w.sess
	s.scanned.Add(1)
	s.offerProgress(full)

	if s.policy.Exclude(full, name) {
		s.skipped.Add(1)
		return
	}

	ext := classify.Extension(name)
	kind, supported := classify.Classify(ext)
	if !supported {
		s.skipped.Add(1)
		return
	}

	info, err := statTimeout(full, s.opts.FileStatTimeout)
	if err != nil {
		s.skipped.Add(1)
		return
	}

	mod := info.ModTime()
	if s.filter != nil && !s.filter.contains(mod) {
		s.skipped.Add(1)
		return
	}

	f := inventory.ScannedFile{
		Path:       full,
		Name:       name,
		Extension:  ext,
		Size:       info.Size(),
		ModifiedAt: mod,
		CreatedAt:  createdAt(info),
		Kind:       kind,
		Origin:     classify.DetectOrigin(full),
		ParentPath: dir,
	}
	s.files = append(s.files, f)
	s.matched.Add(1)
	s.emitter.Add(f)
}
