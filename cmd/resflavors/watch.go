package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leofalp/resflavors/providers/observability"
)

// watchDebounce collapses the burst of events an editor save produces.
const watchDebounce = 100 * time.Millisecond

// watchDump parses path once, then again after every write, create or
// rename that touches it, until ctx is done. The parent directory is watched
// so that editors replacing the file are followed.
func (a *app) watchDump(ctx context.Context, path string) error {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	a.reparse(ctx, path)

	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			trigger = timer.C

		case <-trigger:
			trigger = nil
			a.reparse(ctx, path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.observer.Warn(ctx, "File watcher error",
				observability.String(observability.AttrSource, path),
				observability.Error(err),
			)
		}
	}
}

// reparse runs one parse in watch mode. Errors are logged rather than
// returned so that a half-written file does not end the watch.
func (a *app) reparse(ctx context.Context, path string) {
	if err := a.parseDump(ctx, path); err != nil {
		a.observer.Error(ctx, "Parse failed",
			observability.String(observability.AttrSource, path),
			observability.Error(err),
		)
	}
}
