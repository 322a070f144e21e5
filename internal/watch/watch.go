// Package watch reports changes to deck sources.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce groups the bursts of events editors produce on save.
const DefaultDebounce = 200 * time.Millisecond

// Extensions of files that affect an assembled deck.
var sourceExts = map[string]bool{
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".css":      true,
}

// Watcher watches slide sources. Files are watched through their parent
// directory so editors that save by rename are still seen.
type Watcher struct {
	w        *fsnotify.Watcher
	files    map[string]bool // explicitly watched files
	dirs     map[string]bool // directories whose sources are all watched
	debounce time.Duration
	logger   *zap.Logger
}

// New starts watching paths, each a file or a directory.
func New(paths []string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		w:        fw,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		debounce: debounce,
		logger:   logger,
	}
	for _, p := range paths {
		if err := w.add(p); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	dir := abs
	if info.IsDir() {
		w.dirs[abs] = true
	} else {
		w.files[abs] = true
		dir = filepath.Dir(abs)
	}
	if err := w.w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	w.logger.Debug("watching", zap.String("path", abs))
	return nil
}

// relevant reports whether an event on name can change the deck.
func (w *Watcher) relevant(name string) bool {
	if w.files[name] {
		return true
	}
	if !w.dirs[filepath.Dir(name)] {
		return false
	}
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return sourceExts[strings.ToLower(filepath.Ext(base))]
}

// Run calls onChange after each burst of relevant events until ctx is
// done. It closes the watcher before returning.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	defer w.w.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-fire:
			fire = nil
			onChange()

		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !w.relevant(ev.Name) {
				continue
			}
			w.logger.Debug("source changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// Close stops watching without running.
func (w *Watcher) Close() error {
	return w.w.Close()
}
