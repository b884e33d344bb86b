// Package watch fans filesystem changes from several directory trees into a
// single mpsc channel. Each root is watched by its own producer goroutine
// holding a cloned sender; the caller consumes changes from one receiver.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sourcegraph/conc"

	"github.com/Iron-Ham/mpsc/internal/errors"
	"github.com/Iron-Ham/mpsc/internal/logging"
	"github.com/Iron-Ham/mpsc/pkg/mpsc"
)

// Change is one debounced filesystem event.
type Change struct {
	Root string    // absolute root the change was observed under
	Path string    // slash-separated path relative to Root
	Op   string    // create, write, remove, rename or chmod
	Time time.Time // when the last coalesced event arrived
}

// Options configures a Watcher.
type Options struct {
	Include  []string
	Exclude  []string
	Debounce time.Duration
	Logger   *logging.Logger
	Channel  []mpsc.Option
}

// Watcher watches one or more directory trees.
type Watcher struct {
	filter   *Filter
	debounce time.Duration
	logger   *logging.Logger

	roots []*root
	tx    *mpsc.Sender[Change]
	rx    *mpsc.Receiver[Change]

	wg       conc.WaitGroup
	stopCh   chan struct{}
	startOne sync.Once
	stopOnce sync.Once
}

type root struct {
	path    string
	watcher *fsnotify.Watcher
}

// New prepares watchers for every root. Nothing is reported until Start.
func New(roots []string, opts Options) (*Watcher, error) {
	if len(roots) == 0 {
		return nil, errors.NewValidationError("at least one path is required").WithField("paths")
	}
	filter, err := NewFilter(opts.Include, opts.Exclude)
	if err != nil {
		return nil, errors.NewValidationError("invalid glob pattern").WithCause(err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	w := &Watcher{
		filter:   filter,
		debounce: opts.Debounce,
		logger:   logger.WithComponent("watch"),
		stopCh:   make(chan struct{}),
	}

	for _, p := range roots {
		r, err := w.addRoot(p)
		if err != nil {
			w.closeWatchers()
			return nil, err
		}
		w.roots = append(w.roots, r)
	}

	w.tx, w.rx = mpsc.Open[Change](opts.Channel...)
	return w, nil
}

func (w *Watcher) addRoot(p string) (*root, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.NewValidationError("not a directory").WithField("path").WithValue(p)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	r := &root{path: abs, watcher: fw}
	if err := w.watchTree(r, abs); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return r, nil
}

// watchTree adds dir and every non-excluded subdirectory to the root's watcher.
func (w *Watcher) watchTree(r *root, dir string) error {
	return filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries, continue walking
		}
		if !d.IsDir() {
			return nil
		}
		if p != r.path {
			if rel, ok := r.rel(p); ok && w.filter.Excluded(rel) {
				return filepath.SkipDir
			}
		}
		if err := r.watcher.Add(p); err != nil {
			if p == r.path {
				return err
			}
			w.logger.Warn("failed to watch directory", "path", p, "error", err)
		}
		return nil
	})
}

func (r *root) rel(p string) (string, bool) {
	rel, err := filepath.Rel(r.path, p)
	if err != nil || rel == "." {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Start launches one producer per root. Calling it more than once is a no-op.
func (w *Watcher) Start() {
	w.startOne.Do(func() {
		for _, r := range w.roots {
			tx, err := w.tx.Clone()
			if err != nil {
				w.logger.Error("failed to clone sender", "root", r.path, "error", err)
				continue
			}
			w.wg.Go(func() { w.produce(r, tx) })
		}
		// The producers' clones now keep the channel open.
		_ = w.tx.Close()
	})
}

// Next blocks until a change is available or ctx is done. After Stop it
// drains buffered changes and then returns mpsc.ErrDisconnected.
func (w *Watcher) Next(ctx context.Context) (Change, error) {
	return w.rx.RecvContext(ctx)
}

// TryNext returns a buffered change without waiting.
func (w *Watcher) TryNext() (Change, error) {
	return w.rx.TryRecv()
}

// Stats returns a snapshot of the underlying channel.
func (w *Watcher) Stats() mpsc.Stats {
	return w.rx.Stats()
}

// Stop halts every producer and waits for them to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.closeWatchers()
		// Start may never have run; make sure the original sender is gone.
		w.startOne.Do(func() { _ = w.tx.Close() })
		w.wg.Wait()
	})
}

// Close stops the watcher and releases the receiver.
func (w *Watcher) Close() error {
	w.Stop()
	return w.rx.Close()
}

func (w *Watcher) closeWatchers() {
	for _, r := range w.roots {
		_ = r.watcher.Close()
	}
}

// produce runs the event loop for one root, coalescing bursts of events for
// the same path within the debounce window.
func (w *Watcher) produce(r *root, tx *mpsc.Sender[Change]) {
	defer func() { _ = tx.Close() }()
	log := w.logger.With("root", r.path)

	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C // drain initial timer
	defer debounceTimer.Stop()

	pending := make(map[string]Change)

	flush := func() bool {
		for rel, c := range pending {
			delete(pending, rel)
			if err := tx.Send(c); err != nil {
				log.Debug("receiver gone, stopping producer", "error", err)
				return false
			}
		}
		return true
	}

	for {
		select {
		case <-w.stopCh:
			return

		case ev, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			rel, ok := r.rel(ev.Name)
			if !ok {
				continue
			}

			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !w.filter.Excluded(rel) {
					if err := w.watchTree(r, ev.Name); err != nil {
						log.Warn("failed to watch new directory", "path", rel, "error", err)
					}
				}
			}
			if !w.filter.Match(rel) {
				continue
			}

			pending[rel] = Change{Root: r.path, Path: rel, Op: opName(ev.Op), Time: time.Now()}
			if w.debounce <= 0 {
				if !flush() {
					return
				}
				continue
			}
			debounceTimer.Reset(w.debounce)

		case <-debounceTimer.C:
			if !flush() {
				return
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("watch error", "error", err)
		}
	}
}

func opName(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	case op.Has(fsnotify.Chmod):
		return "chmod"
	default:
		return "unknown"
	}
}
