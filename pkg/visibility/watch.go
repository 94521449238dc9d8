package visibility

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event is one change notification from the flag store. Flags is the
// freshly decoded, authoritative map for the owner at the time the change
// was observed; subscribers replace their cached copy with it rather than
// merging.
type Event struct {
	Owner Owner
	Flags Map
}

// Watch streams change events until ctx is cancelled. Bursts of writes to
// the same owner coalesce into a single event carrying the latest state, so
// a slow consumer can never observe flags older than the last event it
// received. The channel is closed once ctx is done.
func (s *Store) Watch(ctx context.Context) (<-chan Event, error) {
	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return nil, fmt.Errorf("visibility: ensure base path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("visibility: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				log.Printf("visibility: watcher close: %v", err)
			}
		})
	}

	dirs := []string{s.basePath}
	for _, kind := range []OwnerKind{OwnerActor, OwnerToken} {
		dir := filepath.Join(s.basePath, string(kind))
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("visibility: watch %s: %w", dir, err)
		}
	}

	events := make(chan Event, 16)

	go func() {
		defer close(events)
		defer closeWatcher()

		watched := make(map[string]struct{}, len(dirs))
		for _, dir := range dirs {
			watched[dir] = struct{}{}
		}

		// Coalesce per owner: the flush re-reads the store, so only the
		// latest state ever goes out.
		throttle := newOwnerThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		emit := func(owner Owner) {
			flags, err := s.Read(owner)
			if err != nil {
				log.Printf("visibility: re-read %s after change: %v", owner, err)
				return
			}
			select {
			case events <- Event{Owner: owner, Flags: flags}:
			case <-ctx.Done():
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("visibility: watcher: %v", err)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}

				if evt.Op&fsnotify.Create == fsnotify.Create {
					// First write for a new owner kind creates its
					// directory; start watching it for the files below.
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						absDir := filepath.Clean(evt.Name)
						if _, found := watched[absDir]; !found {
							if err := watcher.Add(absDir); err != nil {
								log.Printf("visibility: watch %s: %v", absDir, err)
							} else {
								watched[absDir] = struct{}{}
							}
						}
						continue
					}
				}

				owner, ok := s.ownerForPath(evt.Name)
				if !ok {
					continue
				}
				throttle.Enqueue(owner, emit)
			}
		}
	}()

	return events, nil
}

// ownerThrottle coalesces rapid change notifications per owner so an open
// inspection view redraws once per burst of writes instead of on every
// single one.
type ownerThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[Owner]struct{}
	delay   time.Duration
}

func newOwnerThrottle(delay time.Duration) *ownerThrottle {
	return &ownerThrottle{
		delay:   delay,
		pending: make(map[Owner]struct{}),
	}
}

func (t *ownerThrottle) Enqueue(owner Owner, emit func(Owner)) {
	t.mu.Lock()
	t.pending[owner] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(emit)
		})
	}
	t.mu.Unlock()
}

func (t *ownerThrottle) flush(emit func(Owner)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[Owner]struct{})
	t.timer = nil
	t.mu.Unlock()

	for owner := range pending {
		emit(owner)
	}
}

func (t *ownerThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
