package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watcher re-runs a job whenever one of its sources changes. Events are
// debounced: a burst of writes triggers a single conversion once the inputs
// have been quiet for the debounce interval.
type watcher struct {
	fs       *fsnotify.Watcher
	job      *job
	debounce time.Duration
	log      *slog.Logger

	files  map[string]bool // file arguments, absolute
	roots  []string        // directory arguments, absolute
	output string          // absolute output path, never a trigger
	match  *matcher
}

func newWatcher(j *job, debounce time.Duration, log *slog.Logger) (*watcher, error) {
	m, err := newMatcher(j.sources)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("starting watcher: %w", err)
	}
	w := &watcher{
		fs:       fsw,
		job:      j,
		debounce: debounce,
		log:      log,
		files:    make(map[string]bool),
		match:    m,
	}
	if w.output, err = filepath.Abs(j.output); err != nil {
		fsw.Close()
		return nil, err
	}
	if err := w.addArgs(j.args); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *watcher) addArgs(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("--watch needs file or directory arguments")
	}
	dirs := make(map[string]bool)
	for _, arg := range args {
		if arg == stdinArg {
			return fmt.Errorf("cannot watch standard input")
		}
		abs, err := filepath.Abs(arg)
		if err != nil {
			return err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if info.IsDir() {
			w.roots = append(w.roots, abs)
			if err := w.addTree(abs); err != nil {
				return err
			}
			continue
		}
		w.files[abs] = true
		// Watch the directory, not the file: editors often replace files
		// by renaming over them.
		if dir := filepath.Dir(abs); !dirs[dir] {
			dirs[dir] = true
			if err := w.fs.Add(dir); err != nil {
				return fmt.Errorf("watching %s: %w", dir, err)
			}
		}
	}
	return nil
}

func (w *watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if rel, ok := w.relTo(path); ok && rel != "." && w.match.excluded(rel) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// relTo returns path relative to the directory argument containing it.
func (w *watcher) relTo(path string) (string, bool) {
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return filepath.ToSlash(rel), true
	}
	return "", false
}

// relevant reports whether an event on path should trigger a conversion.
func (w *watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	if ev.Name == w.output {
		return false
	}
	if w.files[ev.Name] {
		return true
	}
	rel, ok := w.relTo(ev.Name)
	return ok && w.match.selected(rel)
}

func (w *watcher) close() error { return w.fs.Close() }

// watch converts once, then again after every relevant change, until ctx is
// cancelled.
func watch(ctx context.Context, j *job, debounce time.Duration, log *slog.Logger) error {
	w, err := newWatcher(j, debounce, log)
	if err != nil {
		return err
	}
	defer w.close()

	w.convert()
	log.Info("watching for changes", "files", len(w.files), "dirs", len(w.roots), "output", j.output)
	return w.loop(ctx)
}

func (w *watcher) loop(ctx context.Context) error {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			w.log.Info("stopped watching")
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				w.watchNewDir(ev.Name)
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce)
			fire = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher error", "error", err)

		case <-fire:
			fire = nil
			w.convert()
		}
	}
}

// watchNewDir starts watching a directory created under a directory
// argument.
func (w *watcher) watchNewDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if _, ok := w.relTo(path); !ok {
		return
	}
	if err := w.addTree(path); err != nil {
		w.log.Warn("failed to watch new directory", "path", path, "error", err)
	}
}

func (w *watcher) convert() {
	start := time.Now()
	res, err := w.job.run()
	if err != nil {
		w.log.Error("conversion failed", "error", err)
		return
	}
	w.log.Info("converted",
		"output", w.job.output,
		"lines", len(res.Lines),
		"diagnostics", len(res.Diagnostics),
		"took", time.Since(start).Round(time.Millisecond))
}
