package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ReAcTiOnN77/inspect-statblock/pkg/actor"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/settings"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/statblock"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/system"
	"github.com/ReAcTiOnN77/inspect-statblock/pkg/visibility"
)

// memFlags is an in-memory FlagStore with synchronous watch fan-out.
type memFlags struct {
	mu   sync.Mutex
	maps map[visibility.Owner]visibility.Map
	subs []memSub
}

type memSub struct {
	ctx context.Context
	ch  chan visibility.Event
}

func newMemFlags() *memFlags {
	return &memFlags{maps: make(map[visibility.Owner]visibility.Map)}
}

func (m *memFlags) Read(owner visibility.Owner) (visibility.Map, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.maps[owner]; ok {
		return cur.Clone(), nil
	}
	return visibility.Map{}, nil
}

func (m *memFlags) Write(owner visibility.Owner, flags visibility.Map) error {
	m.mu.Lock()
	m.maps[owner] = flags.Clone()
	subs := append([]memSub(nil), m.subs...)
	m.mu.Unlock()

	for _, sub := range subs {
		if sub.ctx.Err() != nil {
			continue
		}
		select {
		case sub.ch <- visibility.Event{Owner: owner, Flags: flags.Clone()}:
		default:
		}
	}
	return nil
}

func (m *memFlags) Watch(ctx context.Context) (<-chan visibility.Event, error) {
	ch := make(chan visibility.Event, 16)
	m.mu.Lock()
	m.subs = append(m.subs, memSub{ctx: ctx, ch: ch})
	m.mu.Unlock()
	return ch, nil
}

type memResolver struct {
	actors map[string]*actor.Actor
	tokens map[string]*actor.Token
}

func (r *memResolver) Actor(id string) (*actor.Actor, error) { return r.actors[id], nil }
func (r *memResolver) Token(id string) (*actor.Token, error) { return r.tokens[id], nil }

type memConfig struct {
	system  string
	storage settings.StorageMode
	hidden  map[string]bool
}

func (c memConfig) ActiveSystem() string { return c.system }
func (c memConfig) FlagStorage() settings.StorageMode {
	if c.storage == "" {
		return settings.PerActor
	}
	return c.storage
}
func (c memConfig) Redaction() string           { return "???" }
func (c memConfig) Show(settingKey string) bool { return !c.hidden[settingKey] }

// testHandler builds a snapshot with one effects section and one defenses
// category so group toggles have children to chew on.
type testHandler struct {
	fail bool
}

func (h testHandler) StandardizedActorData(ctx context.Context, req system.Request) (*statblock.Statblock, error) {
	if h.fail {
		return nil, errors.New("adapter exploded")
	}
	sb := &statblock.Statblock{System: "testsys", ActorID: req.Actor.ID, Title: req.Actor.Name}

	effects := statblock.Section{ID: "effects", Key: statblock.SectionKey("effects")}
	for _, e := range req.Actor.Effects {
		key := statblock.EffectKey(e.ID)
		hidden := req.Hidden.Hidden(key)
		if hidden && !req.Privileged {
			continue
		}
		effects.Rows = append(effects.Rows, statblock.Row{Key: key, Label: e.Name, Hidden: hidden})
	}
	if len(effects.Rows) > 0 {
		sb.Sections = append(sb.Sections, effects)
	}

	cat := statblock.Category{
		ID:  "resistances",
		Key: statblock.DefCategoryKey("resistances"),
		Tags: []statblock.Tag{
			{Key: statblock.DefTagKey("resistances", "fire"), Label: "fire", Hidden: req.Hidden.Hidden(statblock.DefTagKey("resistances", "fire"))},
			{Key: statblock.DefTagKey("resistances", "cold"), Label: "cold", Hidden: req.Hidden.Hidden(statblock.DefTagKey("resistances", "cold"))},
		},
	}
	sb.Sections = append(sb.Sections, statblock.Section{
		ID:         "defenses",
		Key:        statblock.SectionKey("defenses"),
		Categories: []statblock.Category{cat},
	})
	return sb, nil
}

func (h testHandler) AllToggleableKeys(a *actor.Actor, sb *statblock.Statblock) []statblock.Key {
	keys := []statblock.Key{
		statblock.SectionKey("effects"),
		statblock.SectionKey("defenses"),
		statblock.DefTagKey("resistances", "fire"),
		statblock.DefTagKey("resistances", "cold"),
	}
	for _, e := range a.Effects {
		keys = append(keys, statblock.EffectKey(e.ID))
	}
	return keys
}

// initHandler layers default-initialization inputs on top of testHandler.
type initHandler struct {
	testHandler
}

func (h initHandler) DefaultInitInputs(a *actor.Actor) visibility.InitInputs {
	return visibility.InitInputs{
		Sections: []statblock.SectionDefinition{
			{ID: "effects", Type: statblock.SectionSingle, KeyPattern: "effect-*", DefaultSettingKey: "show.effects"},
		},
		Effects: a.Effects,
	}
}

func testWorld() *memResolver {
	return &memResolver{
		actors: map[string]*actor.Actor{
			"a1": {
				ID: "a1", Name: "Owlbear", SystemID: "testsys",
				Effects: []actor.Effect{{ID: "e1", Name: "Bless"}},
			},
		},
		tokens: map[string]*actor.Token{
			"t1": {ID: "t1", ActorID: "a1"},
			"t2": {ID: "t2", ActorID: "a1"},
		},
	}
}

func newTestSession(flags FlagStore, h system.Handler) *Session {
	reg := system.NewRegistry()
	if h != nil {
		reg.Register("testsys", h)
	}
	return &Session{
		Registry:   reg,
		Resolver:   testWorld(),
		Flags:      flags,
		Config:     memConfig{system: "testsys"},
		ActorID:    "a1",
		Privileged: true,
	}
}

func TestOpenAndSnapshot(t *testing.T) {
	s := newTestSession(newMemFlags(), testHandler{})
	defer s.Close()

	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	sb := s.Snapshot()
	if sb == nil || sb.Title != "Owlbear" {
		t.Fatalf("snapshot: %+v", sb)
	}
	if s.Owner() != visibility.ActorOwner("a1") {
		t.Fatalf("owner: %v", s.Owner())
	}
}

func TestOpenDegradedWithoutHandler(t *testing.T) {
	var msgs []string
	s := newTestSession(newMemFlags(), nil)
	s.Notify = func(msg string) { msgs = append(msgs, msg) }
	defer s.Close()

	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("missing handler must not fail open: %v", err)
	}
	if len(msgs) == 0 {
		t.Fatal("user must see a message")
	}
	if err := s.Toggle(context.Background(), statblock.EffectKey("e1")); !errors.Is(err, ErrNoHandler) {
		t.Fatalf("toggle on degraded session: %v", err)
	}
}

func TestOpenDegradedUnknownActor(t *testing.T) {
	s := newTestSession(newMemFlags(), testHandler{})
	s.ActorID = "nope"
	defer s.Close()

	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("unknown actor must not fail open: %v", err)
	}
	if s.Snapshot() != nil {
		t.Fatal("no snapshot without an actor")
	}
}

func TestDefaultInitializationGated(t *testing.T) {
	flags := newMemFlags()
	s := newTestSession(flags, initHandler{})
	s.Config = memConfig{system: "testsys", hidden: map[string]bool{"show.effects": true}}
	defer s.Close()

	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}

	m, _ := flags.Read(visibility.ActorOwner("a1"))
	if !m["section-effects"] || !m["effect-e1"] {
		t.Fatalf("default init must hide the effects section and its keys: %v", m)
	}
	s.Close()

	// A map with any entry is never re-initialized.
	if err := flags.Write(visibility.ActorOwner("a1"), visibility.Map{"effect-e1": false}); err != nil {
		t.Fatalf("write: %v", err)
	}
	s2 := newTestSession(flags, initHandler{})
	s2.Config = s.Config
	defer s2.Close()
	if err := s2.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	m, _ = flags.Read(visibility.ActorOwner("a1"))
	if len(m) != 1 || m["effect-e1"] {
		t.Fatalf("re-initialization must be a no-op: %v", m)
	}
}

func TestToggleReadsFreshMap(t *testing.T) {
	flags := newMemFlags()
	s := newTestSession(flags, testHandler{})
	defer s.Close()
	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}

	// Another session wrote while we held a cached copy; the toggle must
	// preserve that entry.
	owner := visibility.ActorOwner("a1")
	if err := flags.Write(owner, visibility.Map{"def-tag-resistances-fire": true}); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := s.Toggle(context.Background(), statblock.EffectKey("e1")); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	m, _ := flags.Read(owner)
	if !m["effect-e1"] {
		t.Fatal("toggle must hide the effect")
	}
	if !m["def-tag-resistances-fire"] {
		t.Fatal("concurrent write lost: mutation did not start from a fresh read")
	}
}

func TestToggleGroupThroughSession(t *testing.T) {
	flags := newMemFlags()
	s := newTestSession(flags, testHandler{})
	defer s.Close()
	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}

	owner := visibility.ActorOwner("a1")
	if err := flags.Write(owner, visibility.Map{
		"def-tag-resistances-fire": true,
		"def-tag-resistances-cold": false,
	}); err != nil {
		t.Fatalf("write: %v", err)
	}

	// cold is visible, so clicking the category header hides everything.
	if err := s.Toggle(context.Background(), statblock.DefCategoryKey("resistances")); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	m, _ := flags.Read(owner)
	if !m["def-tag-resistances-fire"] || !m["def-tag-resistances-cold"] {
		t.Fatalf("majority rule violated: %v", m)
	}
}

func TestBulkReplacesWholesale(t *testing.T) {
	flags := newMemFlags()
	owner := visibility.ActorOwner("a1")
	if err := flags.Write(owner, visibility.Map{"effect-deleted-long-ago": true}); err != nil {
		t.Fatalf("write: %v", err)
	}

	s := newTestSession(flags, testHandler{})
	defer s.Close()
	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := s.HideAll(context.Background()); err != nil {
		t.Fatalf("hide all: %v", err)
	}
	m, _ := flags.Read(owner)
	if _, ok := m["effect-deleted-long-ago"]; ok {
		t.Fatalf("stale key survived bulk hide: %v", m)
	}
	if !m["effect-e1"] {
		t.Fatalf("hide-all must hide effect-e1: %v", m)
	}

	if err := s.ShowAll(context.Background()); err != nil {
		t.Fatalf("show all: %v", err)
	}
	m, _ = flags.Read(owner)
	for k, hidden := range m {
		if hidden {
			t.Fatalf("show-all left %s hidden", k)
		}
	}
}

func TestToggleBeforeRenderAborts(t *testing.T) {
	flags := newMemFlags()
	s := newTestSession(flags, testHandler{fail: true})
	defer s.Close()
	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}

	err := s.Toggle(context.Background(), statblock.EffectKey("e1"))
	if !errors.Is(err, ErrNotRendered) {
		t.Fatalf("stale toggle must abort: %v", err)
	}
	m, _ := flags.Read(visibility.ActorOwner("a1"))
	if len(m) != 0 {
		t.Fatalf("aborted toggle must not write flags: %v", m)
	}
}

func TestWatchPropagatesAcrossSessions(t *testing.T) {
	flags := newMemFlags()

	renders := make(chan *statblock.Statblock, 16)
	a := newTestSession(flags, testHandler{})
	defer a.Close()
	b := newTestSession(flags, testHandler{})
	b.TokenID = "t2"
	b.OnRender = func(sb *statblock.Statblock) { renders <- sb }
	defer b.Close()

	if err := a.Open(context.Background()); err != nil {
		t.Fatalf("open a: %v", err)
	}
	if err := b.Open(context.Background()); err != nil {
		t.Fatalf("open b: %v", err)
	}
	drain(renders)

	// Both sessions share the per-actor owner, so a toggle in one must
	// reach the other's view.
	if err := a.Toggle(context.Background(), statblock.EffectKey("e1")); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	select {
	case sb := <-renders:
		eff := sb.Section("effects")
		if eff == nil || len(eff.Rows) == 0 || !eff.Rows[0].Hidden {
			t.Fatalf("refreshed view must carry the new state: %+v", eff)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second session never refreshed")
	}
}

func TestCloseUnsubscribes(t *testing.T) {
	flags := newMemFlags()

	rendered := make(chan struct{}, 16)
	s := newTestSession(flags, testHandler{})
	s.OnRender = func(*statblock.Statblock) { rendered <- struct{}{} }
	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	drainStruct(rendered)

	s.Close()
	if err := flags.Write(visibility.ActorOwner("a1"), visibility.Map{"effect-e1": true}); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case <-rendered:
		t.Fatal("closed session must not act on notifications")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestPerTokenStorageMode(t *testing.T) {
	flags := newMemFlags()
	s := newTestSession(flags, testHandler{})
	s.Config = memConfig{system: "testsys", storage: settings.PerToken}
	s.TokenID = "t1"
	defer s.Close()

	if err := s.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.Owner() != visibility.TokenOwner("t1") {
		t.Fatalf("per-token mode must own flags on the token: %v", s.Owner())
	}
}

func drain(ch chan *statblock.Statblock) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

func drainStruct(ch chan struct{}) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
