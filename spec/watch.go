package spec

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watch calls onChange once a file below dir has been written, created, removed or renamed and no further
// change has followed for delay. New directories are watched as they appear. It returns when ctx is done.
func Watch(ctx context.Context, dir string, delay time.Duration, logger logrus.FieldLogger, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	var (
		timer   *time.Timer
		settled <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-settled:
			settled = nil
			onChange()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						logger.WithError(err).WithField("dir", event.Name).Warn("failed to watch new directory")
					}
				}
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			logger.WithFields(logrus.Fields{"file": event.Name, "op": event.Op.String()}).Debug("spec change")

			if delay <= 0 {
				onChange()
				continue
			}

			if timer == nil {
				timer = time.NewTimer(delay)
			} else {
				timer.Reset(delay)
			}
			settled = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.WithError(err).Warn("watcher error")
		}
	}
}
