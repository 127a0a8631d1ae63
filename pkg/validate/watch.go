package validate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch re-validates documents as they are written and passes each result
// to fn. A path may name a file or a directory; directories select files
// by extension. Watch blocks until ctx is cancelled.
func (v *Validator) Watch(ctx context.Context, paths []string, fn func(Result)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	files := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
		dir := p
		if info.IsDir() {
			dirs[filepath.Clean(p)] = true
		} else {
			// Editors often replace a file on save, so watch its directory.
			files[filepath.Clean(p)] = true
			dir = filepath.Dir(p)
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching directory %s: %w", dir, err)
		}
	}

	wanted := func(name string) bool {
		name = filepath.Clean(name)
		if files[name] {
			return true
		}
		return dirs[filepath.Dir(name)] && v.Matches(name)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !wanted(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			v.log.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("document changed")
			fn(v.ValidateFile(event.Name))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			v.log.Warn().Err(err).Msg("watch error")
		}
	}
}
