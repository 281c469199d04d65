/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const rescanDelay = 500 * time.Millisecond

// watchLibrary rescans lib whenever files under its roots change, until ctx
// is cancelled. Bursts of events collapse into one rescan.
func watchLibrary(ctx context.Context, cfg *Config, lib *Library, errs chan<- error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Roots that do not exist yet are picked up once their parent sees them
	// created.
	pending := map[string]bool{}

	for _, side := range []Side{SideKimchi, SideNotKimchi} {
		root, _ := lib.Root(side)
		root = filepath.Clean(root)

		if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
			if err := watcher.Add(filepath.Dir(root)); err != nil {
				fmt.Printf("%s | WARNING: %s does not exist and its parent cannot be watched: %v\n", time.Now().Format(logDate), root, err)
				continue
			}
			pending[root] = true
			logf(cfg, "ASSET: Waiting for %s to be created", root)
			continue
		}

		if err := addTree(watcher, root); err != nil {
			logf(cfg, "ASSET: Not watching %s: %v", root, err)
		}
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)

	rescan := func() {
		if err := lib.Reload(); err != nil {
			errs <- err
			return
		}

		c := lib.Snapshot()
		logf(cfg, "ASSET: Rescanned, %d kimchi and %d non-kimchi cards", c.Kimchi.Size(), c.NotKimchi.Size())
	}

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				mu.Unlock()
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				// New category folders need watching too.
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						name := filepath.Clean(event.Name)
						if pending[name] {
							delete(pending, name)
							if err := addTree(watcher, name); err != nil {
								logf(cfg, "ASSET: Not watching %s: %v", name, err)
							}
						} else {
							_ = watcher.Add(name)
						}
					}
				}

				mu.Lock()
				if timer == nil {
					timer = time.AfterFunc(rescanDelay, rescan)
				} else {
					timer.Reset(rescanDelay)
				}
				mu.Unlock()

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logf(cfg, "ASSET: File watcher error: %v", err)
			}
		}
	}()

	return nil
}

// addTree watches root and its immediate subdirectories, matching the
// <category>/<image> layout.
func addTree(watcher *fsnotify.Watcher, root string) error {
	if err := watcher.Add(root); err != nil {
		return err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}

	var errs []error
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := watcher.Add(filepath.Join(root, entry.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
