package generator

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce collapses the burst of events editors produce on save.
const debounce = 100 * time.Millisecond

// WatchEvent reports one watch-mode regeneration or removal.
type WatchEvent struct {
	Path    string
	Outputs []string
	Removed bool
	Err     error
}

// Watch generates once for patterns and then regenerates definition files
// as they change until ctx is cancelled. Removing a definition removes its
// artifacts. Failures are logged and reported through onEvent (which may
// be nil); they do not stop the watcher.
func (g *Generator) Watch(ctx context.Context, onEvent func(WatchEvent), patterns ...string) error {
	if err := g.Generate(patterns...); err != nil {
		g.opts.Logger.Warn("watch: initial generate failed", slog.String("error", err.Error()))
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, root := range watchRoots(patterns) {
		if err := addDirs(w, root.dir, root.recursive); err != nil {
			return err
		}
	}
	g.opts.Logger.Info("watch: started", slog.Any("patterns", patterns))

	emit := func(ev WatchEvent) {
		if onEvent != nil {
			onEvent(ev)
		}
	}

	pending := map[string]bool{}
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			g.opts.Logger.Info("watch: stopped")
			return nil

		case <-timer.C:
			for path := range pending {
				delete(pending, path)
				if _, err := os.Stat(path); err != nil {
					continue
				}
				outputs, err := g.GenerateFile(path)
				if err != nil {
					g.opts.Logger.Warn("watch: generate failed", slog.String("path", path), slog.String("error", err.Error()))
				}
				emit(WatchEvent{Path: path, Outputs: outputs, Err: err})
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !skipDir(info.Name()) {
					if err := addDirs(w, ev.Name, true); err != nil {
						g.opts.Logger.Warn("watch: add dir failed", slog.String("path", ev.Name), slog.String("error", err.Error()))
					}
					continue
				}
			}
			if !IsDefinition(ev.Name) {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				pending[ev.Name] = true
				timer.Reset(debounce)
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				delete(pending, ev.Name)
				err := g.cleanFile(ev.Name)
				if err != nil {
					g.opts.Logger.Warn("watch: clean failed", slog.String("path", ev.Name), slog.String("error", err.Error()))
				}
				emit(WatchEvent{Path: ev.Name, Removed: true, Err: err})
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			g.opts.Logger.Error("watch: error", slog.String("error", err.Error()))
		}
	}
}

type watchRoot struct {
	dir       string
	recursive bool
}

func watchRoots(patterns []string) []watchRoot {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	roots := make([]watchRoot, 0, len(patterns))
	for _, p := range patterns {
		if root, ok := strings.CutSuffix(p, "/..."); ok {
			if root == "" {
				root = "."
			}
			roots = append(roots, watchRoot{dir: root, recursive: true})
			continue
		}
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			p = filepath.Dir(p)
		}
		roots = append(roots, watchRoot{dir: p})
	}
	return roots
}

func addDirs(w *fsnotify.Watcher, root string, recursive bool) error {
	if !recursive {
		return w.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
