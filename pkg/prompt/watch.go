package prompt

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads path into the catalog whenever it is written or replaced,
// until ctx is done. The parent directory is watched so editors that save by
// renaming are picked up. A reload that fails keeps the previous templates.
func (c *Catalog) Watch(ctx context.Context, path string, logger *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	logger.Info("watching prompt catalog", zap.String("path", path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if err := c.LoadFile(path); err != nil {
				logger.Error("failed to reload prompts", zap.String("path", path), zap.Error(err))
				continue
			}
			logger.Info("prompts reloaded", zap.String("path", path))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("prompt watcher error", zap.Error(err))
		}
	}
}
