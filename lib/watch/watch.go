/*package watch reports solution files as a running solver writes them.

The solver writes each snapshot with several system calls, so every file
produces a burst of events. A Watcher waits until a file has been quiet for
the debounce interval and then reports it once on Files.
*/
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/horses3d/hpost/lib/logger"
)

// DefaultDebounce is how long a file must be quiet before it is reported.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches one directory for files whose base names match any of a
// set of glob patterns.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	log      *zap.Logger
	dir      string
	patterns []string
	debounce time.Duration
	pending  map[string]time.Time
	files    chan string
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	stopped  bool
}

// New creates a Watcher for dir. patterns are matched against base names
// with filepath.Match. log may be nil.
func New(
	dir string, patterns []string, debounce time.Duration, log *zap.Logger,
) (*Watcher, error) {
	for _, p := range patterns {
		if _, err := filepath.Match(p, ""); err != nil {
			return nil, fmt.Errorf("The file pattern '%s' is not valid: %w",
				p, err)
		}
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:  fw,
		log:      logger.OrNop(log).With(zap.String("dir", dir)),
		dir:      dir,
		patterns: patterns,
		debounce: debounce,
		pending:  map[string]time.Time{},
		files:    make(chan string),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Files delivers settled files. It is closed when the Watcher stops.
func (w *Watcher) Files() <-chan string { return w.files }

// Start begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	} else if w.stopped {
		return fmt.Errorf("The watcher for %s has already been stopped.", w.dir)
	}

	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("The directory %s cannot be watched: %w", w.dir, err)
	}
	w.running = true
	w.log.Info("watching for new snapshots", zap.Strings("patterns", w.patterns))

	go w.run(ctx)
	return nil
}

// Stop stops the Watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	running := w.running
	w.mu.Unlock()

	close(w.stopCh)
	if running {
		<-w.doneCh
	} else {
		close(w.files)
	}

	if err := w.watcher.Close(); err != nil {
		w.log.Error("closing watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer close(w.files)

	tick := time.NewTicker(w.tickInterval())
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))

		case now := <-tick.C:
			for _, path := range w.settled(now) {
				select {
				case w.files <- path:
				case <-ctx.Done():
					return
				case <-w.stopCh:
					return
				}
			}
		}
	}
}

func (w *Watcher) tickInterval() time.Duration {
	d := w.debounce / 5
	if d < 10*time.Millisecond {
		d = 10 * time.Millisecond
	}
	return d
}

// handle records creates and writes of matching files.
func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	if !w.matches(ev.Name) {
		return
	}
	w.log.Debug("file event", zap.String("path", ev.Name),
		zap.Stringer("op", ev.Op))
	w.pending[ev.Name] = time.Now()
}

func (w *Watcher) matches(path string) bool {
	base := filepath.Base(path)
	for _, p := range w.patterns {
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
	}
	return false
}

// settled removes and returns, in name order, the pending files that have
// been quiet for the debounce interval.
func (w *Watcher) settled(now time.Time) []string {
	out := []string{}
	for path, t := range w.pending {
		if now.Sub(t) >= w.debounce {
			out = append(out, path)
			delete(w.pending, path)
		}
	}
	sort.Strings(out)
	return out
}
