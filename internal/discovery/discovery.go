// Package discovery finds the environment files of a worktree.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"sbwt/pkg/logging"
)

// Finder walks a directory tree, skipping dependency directories, and
// matches files against doublestar patterns.
type Finder struct {
	// IgnoreDirs are directory base names that are never entered.
	IgnoreDirs []string
	// ExcludeSuffixes drop any file whose name ends with one of them.
	ExcludeSuffixes []string
}

// New returns a Finder.
func New(ignoreDirs []string, excludeSuffixes ...string) *Finder {
	return &Finder{IgnoreDirs: ignoreDirs, ExcludeSuffixes: excludeSuffixes}
}

// FindFiles returns absolute, sorted, de-duplicated paths of regular files
// under root whose slash-separated path relative to root matches any pattern.
func (f *Finder) FindFiles(patterns []string, root string) ([]string, error) {
	patterns = normalizePatterns(patterns)
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid file pattern %q", p)
		}
	}
	if len(patterns) == 0 {
		return nil, nil
	}

	return f.walk(root, func(rel string) bool {
		return matchesAny(patterns, rel)
	})
}

// FindBySuffix returns files under root whose name ends with suffix. It
// ignores ExcludeSuffixes so it can locate backups.
func (f *Finder) FindBySuffix(root, suffix string) ([]string, error) {
	saved := f.ExcludeSuffixes
	f.ExcludeSuffixes = nil
	defer func() { f.ExcludeSuffixes = saved }()

	return f.walk(root, func(rel string) bool {
		return strings.HasSuffix(rel, suffix)
	})
}

func (f *Finder) walk(root string, match func(rel string) bool) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	ignored := make(map[string]struct{}, len(f.IgnoreDirs))
	for _, d := range f.IgnoreDirs {
		ignored[d] = struct{}{}
	}

	seen := make(map[string]struct{})
	var found []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrPermission) {
				logging.Debug("Discovery", "Skipping unreadable %s", path)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			return walkErr
		}
		if d.IsDir() {
			if _, skip := ignored[d.Name()]; skip && path != absRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		for _, suffix := range f.ExcludeSuffixes {
			if strings.HasSuffix(d.Name(), suffix) {
				return nil
			}
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		if !match(filepath.ToSlash(rel)) {
			return nil
		}
		if _, dup := seen[path]; !dup {
			seen[path] = struct{}{}
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", absRoot, err)
	}

	sort.Strings(found)
	logging.Debug("Discovery", "Found %d files under %s", len(found), absRoot)
	return found, nil
}

func normalizePatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, filepath.ToSlash(p))
	}
	return out
}

func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
