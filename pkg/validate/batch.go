package validate

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ValidateDir validates every file under dir whose extension matches,
// descending into subdirectories when recursive is set. Results are sorted
// by path. An unreadable file becomes a diagnostic in its own result; only
// a missing or unreadable dir is an error.
func (v *Validator) ValidateDir(ctx context.Context, dir string, recursive bool) ([]Result, error) {
	paths, err := v.collect(dir, recursive)
	if err != nil {
		return nil, err
	}
	v.log.Debug().Str("dir", dir).Int("files", len(paths)).Msg("collected documents")
	return v.run(ctx, paths)
}

// Matches reports whether path has one of the configured extensions,
// ignoring case.
func (v *Validator) Matches(path string) bool {
	ext := filepath.Ext(path)
	for _, want := range v.extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

func (v *Validator) collect(dir string, recursive bool) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("reading directory: %s is not a directory", dir)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			// Unreadable entries below the root surface as document errors.
			paths = append(paths, path)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return fs.SkipDir
			}
			return nil
		}
		if v.Matches(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// run validates paths on a bounded pool. Each worker writes only its own
// slot, so results need no locking and keep the input order.
func (v *Validator) run(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))
	if len(paths) == 0 {
		return results, nil
	}

	jobs := v.jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = v.ValidateFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
