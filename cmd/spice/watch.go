package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"spice/internal/buildpipeline"
	"spice/internal/project"
)

const watchDebounce = 150 * time.Millisecond

// watchAndRebuild builds once, then again after every change to a watched
// source or manifest, until ctx is canceled.
func watchAndRebuild(ctx context.Context, b *builder) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]bool)
	rebuild := func() {
		res, err := b.run(ctx)
		if err == nil && !b.settings.quiet {
			fmt.Fprintln(b.out, "build ok, watching for changes")
		}
		for _, dir := range watchDirs(b.settings, res) {
			if watched[dir] {
				continue
			}
			if err := watcher.Add(dir); err != nil {
				fmt.Fprintf(b.errOut, "watch %s: %v\n", dir, err)
				continue
			}
			watched[dir] = true
		}
	}
	rebuild()

	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			trigger = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(b.errOut, "watch: %v\n", err)
		case <-trigger:
			trigger = nil
			rebuild()
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	base := filepath.Base(ev.Name)
	return filepath.Ext(base) == project.Ext || base == project.ManifestName
}

// watchDirs returns the directories holding the build's sources, or the
// entry's directory when the build failed before loading them.
func watchDirs(s *settings, res buildpipeline.Result) []string {
	seen := make(map[string]bool)
	var dirs []string
	add := func(path string) {
		dir := filepath.Dir(path)
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	add(s.entry)
	if s.manifest != nil {
		add(s.manifest.Path)
	}
	if res.Compile != nil {
		for _, f := range res.Compile.Files {
			add(f.Path)
		}
	}
	return dirs
}
