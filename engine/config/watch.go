package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadDelay coalesces the burst of events editors produce when saving a file.
const ReloadDelay = 150 * time.Millisecond

// Watch reloads the settings file whenever it is written, created or renamed into place and
// passes the result to onChange. The parent directory is watched so replaced files are seen.
// onChange runs on the watcher goroutine, which exits when ctx is done.
//
// Parameters:
//   - ctx: cancels the watch
//   - path: the settings file
//   - onChange: receives the reloaded settings, or the load error
//
// Returns:
//   - error: a wrapped error if the watcher could not be started
func Watch(ctx context.Context, path string, onChange func(Config, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return fmt.Errorf("config: watch %s: %w", path, err)
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(dir, filepath.Base(abs))
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return fmt.Errorf("config: watch %s: %w", path, err)
	}

	go func() {
		defer w.Close()

		timer := time.NewTimer(ReloadDelay)
		timer.Stop()
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				timer.Reset(ReloadDelay)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("config: watcher error", "path", abs, "error", err)
			case <-timer.C:
				cfg, err := Load(abs)
				if err != nil {
					slog.Warn("config: reload failed", "path", abs, "error", err)
				} else {
					slog.Info("config: reloaded", "path", abs)
				}
				onChange(cfg, err)
			}
		}
	}()
	return nil
}
