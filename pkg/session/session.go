// Package session orchestrates one open inspection view: it resolves the
// system handler for the active ruleset, fetches the standardized snapshot,
// reads and writes the visibility overlay through the reconciler, and
// reacts to change notifications from the owning entity.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/ReAcTiOnN77/inspect-statblock/pkg/actor"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/settings"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/statblock"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/system"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/visibility"
)

var (
	// ErrNoHandler reports that no system handler is registered for the
	// active ruleset. Expected and user-visible, never fatal.
	ErrNoHandler = errors.New("no system handler registered for the active ruleset")

	// ErrNoActor reports that the inspected id resolved to nothing.
	ErrNoActor = errors.New("no such actor")

	// ErrNotRendered reports a toggle issued before the snapshot was
	// fetched. The operation aborts and a refresh runs instead of writing
	// flags derived from absent data.
	ErrNotRendered = errors.New("inspection not rendered yet")
)

// FlagStore is the persistence surface the session needs. *visibility.Store
// satisfies it; tests substitute memory fakes.
type FlagStore interface {
	Read(owner visibility.Owner) (visibility.Map, error)
	Write(owner visibility.Owner, m visibility.Map) error
	Watch(ctx context.Context) (<-chan visibility.Event, error)
}

// Config is the slice of settings the session consumes.
type Config interface {
	ActiveSystem() string
	FlagStorage() settings.StorageMode
	Redaction() string
	Show(settingKey string) bool
}

// Session is one open inspection. Configure the exported fields, then call
// Open. All methods are safe for concurrent use with the watch goroutine.
type Session struct {
	Registry *system.Registry
	Resolver actor.Resolver
	Flags    FlagStore
	Config   Config

	// ActorID or TokenID selects the inspected entity; TokenID wins when
	// both are set.
	ActorID string
	TokenID string

	// Privileged marks the GM view: hidden elements stay visible,
	// annotated, and toggles are permitted.
	Privileged bool

	// OnRender is invoked with every fresh snapshot, including
	// watch-driven refreshes. Optional.
	OnRender func(*statblock.Statblock)

	// Notify receives user-visible, non-fatal messages. Optional.
	Notify func(msg string)

	mu       sync.Mutex
	handler  system.Handler
	act      *actor.Actor
	tok      *actor.Token
	owner    visibility.Owner
	flags    visibility.Map
	snapshot *statblock.Statblock
	rendered bool
	cancel   context.CancelFunc
}

// Open resolves the session's entities, runs the gated
// default-initialization pass, fetches the first snapshot, and subscribes
// to change notifications. Lookup absences degrade the session instead of
// failing it: the returned error is non-nil only for storage failures.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.resolve(); err != nil {
		s.notify(err.Error())
		return nil
	}

	if err := s.ensureInitialized(); err != nil {
		return err
	}

	flags, err := s.Flags.Read(s.owner)
	if err != nil {
		return err
	}
	s.flags = flags

	s.fetchLocked(ctx)

	watchCtx, cancel := context.WithCancel(context.Background())
	ch, err := s.Flags.Watch(watchCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("session: subscribe: %w", err)
	}
	s.cancel = cancel
	go s.watch(ch)

	return nil
}

// resolve figures out the actor, token, handler, and flag owner. Callers
// hold the mutex.
func (s *Session) resolve() error {
	if s.TokenID != "" {
		tok, err := s.Resolver.Token(s.TokenID)
		if err != nil {
			return err
		}
		if tok == nil {
			return fmt.Errorf("%w: token %s", ErrNoActor, s.TokenID)
		}
		s.tok = tok
		s.ActorID = tok.ActorID
	}
	if s.ActorID == "" {
		return ErrNoActor
	}
	act, err := s.Resolver.Actor(s.ActorID)
	if err != nil {
		return err
	}
	if act == nil {
		return fmt.Errorf("%w: %s", ErrNoActor, s.ActorID)
	}
	s.act = act

	// The flag-storage mode selects the owning entity: per-token gives
	// every token instance its own map, per-actor shares the base actor's.
	if s.Config.FlagStorage() == settings.PerToken && s.tok != nil {
		s.owner = visibility.TokenOwner(s.tok.ID)
	} else {
		s.owner = visibility.ActorOwner(s.act.ID)
	}

	h, ok := s.Registry.Handler(s.Config.ActiveSystem())
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoHandler, s.Config.ActiveSystem())
	}
	s.handler = h
	return nil
}

// ensureInitialized runs the default-initialization pass exactly once per
// owner: any persisted flag at all means the pass already ran (or the user
// toggled by hand) and nothing happens.
func (s *Session) ensureInitialized() error {
	current, err := s.Flags.Read(s.owner)
	if err != nil {
		return err
	}
	if !current.Empty() {
		return nil
	}

	di, ok := s.handler.(system.DefaultInitializer)
	if !ok {
		return nil
	}
	initial := visibility.Initial(di.DefaultInitInputs(s.act), s.Config)
	if initial.Empty() {
		return nil
	}
	return s.Flags.Write(s.owner, initial)
}

// fetchLocked produces a fresh snapshot from the handler. Adapter failures
// degrade to an error placeholder; the session stays open. Callers hold the
// mutex.
func (s *Session) fetchLocked(ctx context.Context) {
	sb, err := s.handler.StandardizedActorData(ctx, system.Request{
		Actor:      s.act,
		Token:      s.tok,
		Hidden:     s.flags,
		Privileged: s.Privileged,
		Redaction:  s.Config.Redaction(),
	})
	if err != nil || sb == nil {
		log.Printf("session: adapter failure for %s: %v", s.ActorID, err)
		s.notify("failed to standardize actor data")
		s.snapshot = &statblock.Statblock{
			System:  s.Config.ActiveSystem(),
			ActorID: s.ActorID,
			Title:   "inspection unavailable",
		}
		s.rendered = false
		return
	}
	s.snapshot = sb
	s.rendered = true
	if s.OnRender != nil {
		s.OnRender(sb)
	}
}

// Snapshot returns the current snapshot, which may be the degraded
// placeholder. Nil before Open.
func (s *Session) Snapshot() *statblock.Statblock {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Owner returns the entity the flags are persisted on.
func (s *Session) Owner() visibility.Owner {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

// Refresh re-reads the flags and rebuilds the snapshot.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handler == nil {
		return ErrNoHandler
	}
	flags, err := s.Flags.Read(s.owner)
	if err != nil {
		return err
	}
	s.flags = flags
	s.fetchLocked(ctx)
	return nil
}

// Toggle flips one element, or a whole group when the key is a section or
// defense-category header. The mutation starts from a freshly read map so
// concurrent sessions never clobber each other with stale state.
func (s *Session) Toggle(ctx context.Context, key statblock.Key) error {
	s.mu.Lock()
	if s.handler == nil {
		s.mu.Unlock()
		return ErrNoHandler
	}
	if !s.rendered || s.snapshot == nil {
		s.mu.Unlock()
		s.notify("inspection data not loaded yet, refreshing")
		if err := s.Refresh(ctx); err != nil {
			log.Printf("session: refresh after stale toggle: %v", err)
		}
		return ErrNotRendered
	}

	fresh, err := s.Flags.Read(s.owner)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	var next visibility.Map
	if key.Group() {
		next = visibility.ToggleGroup(fresh, key, s.childrenLocked(key))
	} else {
		next = visibility.Toggle(fresh, key)
	}

	if err := s.Flags.Write(s.owner, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.flags = next
	s.fetchLocked(ctx)
	s.mu.Unlock()
	return nil
}

// HideAll hides every currently-valid element, replacing the persisted map
// wholesale so flags for deleted items drop out.
func (s *Session) HideAll(ctx context.Context) error {
	return s.setAll(ctx, true)
}

// ShowAll shows every currently-valid element, likewise replacing the map.
func (s *Session) ShowAll(ctx context.Context) error {
	return s.setAll(ctx, false)
}

func (s *Session) setAll(ctx context.Context, hidden bool) error {
	s.mu.Lock()
	if s.handler == nil {
		s.mu.Unlock()
		return ErrNoHandler
	}
	if !s.rendered || s.snapshot == nil {
		s.mu.Unlock()
		s.notify("inspection data not loaded yet, refreshing")
		if err := s.Refresh(ctx); err != nil {
			log.Printf("session: refresh after stale bulk toggle: %v", err)
		}
		return ErrNotRendered
	}

	keys := system.ToggleableKeys(s.handler, s.act, s.snapshot)
	next := visibility.SetAll(keys, hidden)
	if err := s.Flags.Write(s.owner, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.flags = next
	s.fetchLocked(ctx)
	s.mu.Unlock()
	return nil
}

// childrenLocked enumerates a group's children: defense categories from the
// current snapshot, sections through the handler's SectionItemLister with
// the snapshot as fallback. Callers hold the mutex.
func (s *Session) childrenLocked(key statblock.Key) []statblock.Key {
	switch key.Kind {
	case statblock.KindDefCategory:
		var out []statblock.Key
		for _, sec := range s.snapshot.Sections {
			for _, c := range sec.Categories {
				if c.ID != key.Category {
					continue
				}
				for _, t := range c.Tags {
					out = append(out, t.Key)
				}
			}
		}
		return out
	case statblock.KindSection:
		if sl, ok := s.handler.(system.SectionItemLister); ok {
			if keys := sl.SectionItemKeys(key.ID, s.act); len(keys) > 0 {
				return keys
			}
		}
		if sec := s.snapshot.Section(key.ID); sec != nil {
			var out []statblock.Key
			for _, r := range sec.Rows {
				if !r.Key.IsZero() {
					out = append(out, r.Key)
				}
			}
			return out
		}
	}
	return nil
}

// watch consumes change notifications. The event payload is authoritative:
// the cached map is replaced, never merged, and only an already-rendered
// session refreshes its view.
func (s *Session) watch(ch <-chan visibility.Event) {
	for ev := range ch {
		s.mu.Lock()
		if ev.Owner != s.owner {
			s.mu.Unlock()
			continue
		}
		s.flags = ev.Flags
		if s.rendered {
			s.fetchLocked(context.Background())
		}
		s.mu.Unlock()
	}
}

// Close unsubscribes the change-notification stream. The session must not
// act on a destroyed view.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.rendered = false
}

func (s *Session) notify(msg string) {
	if s.Notify != nil {
		s.Notify(msg)
	}
	log.Printf("session: %s", msg)
}
