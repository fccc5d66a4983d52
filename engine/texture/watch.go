package texture

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadDelay coalesces the burst of events image editors produce when saving a file.
const ReloadDelay = 200 * time.Millisecond

// Watcher reports projector image files that changed on disk. Directories of watched files are
// watched so files replaced by rename are seen. Changed paths are delivered on Changes, each
// once per burst of events.
type Watcher struct {
	mu      *sync.Mutex
	once    *sync.Once
	fs      *fsnotify.Watcher
	files   map[string]struct{}
	dirs    map[string]int
	changes chan string
	done    chan struct{}
}

// NewWatcher starts a watcher. The watch goroutine exits when ctx is done or Close is called.
//
// Parameters:
//   - ctx: cancels the watcher
//
// Returns:
//   - *Watcher: the watcher
//   - error: a wrapped error if the platform watcher could not be created
func NewWatcher(ctx context.Context) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("texture: watch: %w", err)
	}
	w := &Watcher{
		mu:      &sync.Mutex{},
		once:    &sync.Once{},
		fs:      fw,
		files:   make(map[string]struct{}),
		dirs:    make(map[string]int),
		changes: make(chan string, 16),
		done:    make(chan struct{}),
	}
	go w.run(ctx)
	return w, nil
}

// Add starts watching a file.
//
// Parameters:
//   - path: the image file
//
// Returns:
//   - error: a wrapped error if the directory could not be watched
func (w *Watcher) Add(path string) error {
	abs, err := canonical(path)
	if err != nil {
		return fmt.Errorf("texture: watch %s: %w", path, err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[abs]; ok {
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("texture: watch %s: %w", path, err)
		}
	}
	w.dirs[dir]++
	w.files[abs] = struct{}{}
	return nil
}

// Remove stops watching a file. Unknown paths are ignored.
//
// Parameters:
//   - path: the image file
func (w *Watcher) Remove(path string) {
	abs, err := canonical(path)
	if err != nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[abs]; !ok {
		return
	}
	delete(w.files, abs)
	dir := filepath.Dir(abs)
	if w.dirs[dir]--; w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		_ = w.fs.Remove(dir)
	}
}

// Changes delivers the canonical path of each changed file. The channel is closed when the
// watcher stops.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Close stops the watcher. Subsequent calls do nothing.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) watched(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[path]
	return ok
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.changes)

	pending := map[string]struct{}{}
	timer := time.NewTimer(ReloadDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Close()
			return
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			name := filepath.Clean(ev.Name)
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 || !w.watched(name) {
				continue
			}
			pending[name] = struct{}{}
			timer.Reset(ReloadDelay)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			slog.Warn("texture: watcher error", "error", err)
		case <-timer.C:
			for path := range pending {
				select {
				case w.changes <- path:
				case <-w.done:
					return
				case <-ctx.Done():
					w.Close()
					return
				}
			}
			clear(pending)
		}
	}
}

func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(dir, filepath.Base(abs))
	}
	return filepath.Clean(abs), nil
}
