package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"sumcore/interpreter-go/pkg/driver"
)

const watchDebounce = 150 * time.Millisecond

// watch runs the program, then runs it again after every change to one of
// its files until ctx is cancelled. It returns the exit code of the last run.
func (c *cli) watch(ctx context.Context, path string, opts runOptions) int {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(c.stderr, "watch: %v\n", err)
		return exitLoad
	}
	defer w.Close()

	watched := make(map[string]struct{})
	rewatch := func() {
		for _, dir := range watchDirs(path) {
			if _, ok := watched[dir]; ok {
				continue
			}
			if err := w.Add(dir); err != nil {
				fmt.Fprintf(c.stderr, "watch %s: %v\n", dir, err)
				continue
			}
			watched[dir] = struct{}{}
		}
	}

	code := c.execute(ctx, path, opts)
	rewatch()
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return code
		case ev, ok := <-w.Events:
			if !ok {
				return code
			}
			if relevantEvent(ev) {
				pending = time.After(watchDebounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return code
			}
			fmt.Fprintf(c.stderr, "watch: %v\n", err)
		case <-pending:
			pending = nil
			fmt.Fprintf(c.stderr, "-- change detected, re-running %s\n", path)
			code = c.execute(ctx, path, opts)
			rewatch()
		}
	}
}

// watchDirs lists the directories holding the program's files. When the
// program cannot be loaded, the directory of path itself is still watched.
func watchDirs(path string) []string {
	seen := map[string]struct{}{}
	add := func(p string) {
		if abs, err := filepath.Abs(p); err == nil {
			seen[abs] = struct{}{}
		}
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		add(path)
	} else {
		add(filepath.Dir(path))
	}
	if prog, err := driver.Load(path); err == nil {
		for _, f := range prog.Files {
			add(filepath.Dir(f))
		}
	}
	dirs := make([]string, 0, len(seen))
	for dir := range seen {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

func relevantEvent(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	ext := strings.ToLower(filepath.Ext(ev.Name))
	return ext == ".yml" || ext == ".yaml"
}
