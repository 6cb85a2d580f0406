package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/arloliu/ttfr/internal/logging"
)

// Watcher fires a trigger whenever a regular file appears in a directory. The
// reason is the file name without its extension, so
//
//	touch /run/ttfr/triggers/"suspicious login".now
//
// requests a flush with reason "suspicious login". The file is removed once the
// trigger has fired.
type Watcher struct {
	dir       string
	fsWatcher *fsnotify.Watcher
	logger    *slog.Logger
}

// NewWatcher starts watching dir, which must exist. A nil logger discards output.
func NewWatcher(dir string, logger *slog.Logger) (*Watcher, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve trigger directory: %w", err)
	}

	info, err := os.Stat(absDir)
	if err != nil {
		return nil, fmt.Errorf("trigger directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("trigger directory %s is not a directory", absDir)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsWatcher.Add(absDir); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("watch %s: %w", absDir, err)
	}

	if logger == nil {
		logger = logging.Discard()
	}

	return &Watcher{
		dir:       absDir,
		fsWatcher: fsWatcher,
		logger:    logger.With("trigger_dir", absDir),
	}, nil
}

// Dir returns the absolute path of the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Run calls fire for every trigger file until ctx is cancelled or the watcher is
// closed. It returns nil on cancellation. Run closes the watcher before returning.
func (w *Watcher) Run(ctx context.Context, fire func(reason string)) error {
	defer func() { _ = w.fsWatcher.Close() }()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			reason, ok := w.consume(ev.Name)
			if !ok {
				continue
			}
			w.logger.Info("trigger file received", "file", filepath.Base(ev.Name), "reason", reason)
			fire(reason)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.logger.Warn("trigger events dropped", "error", err)
				continue
			}
			return fmt.Errorf("watch trigger directory: %w", err)
		}
	}
}

// Close stops watching. Run returns once Close has been called.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

// consume removes a trigger file and returns its reason. Directories, hidden files
// and files already consumed are ignored.
func (w *Watcher) consume(path string) (string, bool) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return "", false
	}

	info, err := os.Lstat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	if err := os.Remove(path); err != nil {
		// Another event for the same file got here first.
		if errors.Is(err, os.ErrNotExist) {
			return "", false
		}
		w.logger.Warn("remove trigger file", "file", base, "error", err)
	}

	reason := strings.TrimSuffix(base, filepath.Ext(base))
	if reason == "" {
		reason = base
	}

	return reason, true
}
