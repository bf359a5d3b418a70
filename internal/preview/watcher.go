package preview

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes a source tree recursively and invokes a callback on every
// filesystem event. No event-type or extension filtering, and no debouncing:
// each event triggers the callback independently, and the callback runs
// synchronously on the watcher's dispatch goroutine.
type Watcher struct {
	dir     string
	onEvent func()
	logger  *slog.Logger

	fs   *fsnotify.Watcher
	stop chan struct{}
	done chan struct{}
}

// NewWatcher creates a watcher rooted at dir. onEvent is called for every
// observed change once Start has been called.
func NewWatcher(dir string, onEvent func(), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create filesystem watcher: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("resolve watch directory: %w", err)
	}
	if st, err := os.Stat(abs); err != nil || !st.IsDir() {
		_ = fs.Close()
		return nil, fmt.Errorf("watch directory not found or not a directory: %s", abs)
	}
	return &Watcher{
		dir:     abs,
		onEvent: onEvent,
		logger:  logger,
		fs:      fs,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}, nil
}

// Dir returns the resolved absolute directory under watch.
func (w *Watcher) Dir() string { return w.dir }

// Start registers the directory tree and launches the dispatch goroutine.
func (w *Watcher) Start() error {
	if err := w.addRecursive(w.dir); err != nil {
		_ = w.fs.Close()
		return err
	}
	go w.loop()
	return nil
}

// Stop halts observation and waits for the dispatch goroutine to exit, so no
// callback can fire after Stop returns.
func (w *Watcher) Stop() {
	close(w.stop)
	_ = w.fs.Close()
	<-w.done
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.stop:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			// New directories join the watch so descendants keep reporting.
			if ev.Op&fsnotify.Create == fsnotify.Create {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = w.addRecursive(ev.Name)
				}
			}
			w.logger.Debug("Filesystem change detected", "path", ev.Name, "op", ev.Op.String())
			w.onEvent()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.fs.Add(path); err != nil {
				w.logger.Warn("Failed to watch directory", "dir", path, "error", err)
			}
		}
		return nil
	})
}
