// Package world is the entity-lookup collaborator: a diskv-backed
// directory of actor and token records, keyed by id.
package world

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"github.com/ReAcTiOnN77/inspect-statblock/pkg/actor"
)

// Persistence is the directory contract. Lookups return (nil, nil) for
// unknown ids; "no such actor" is a user-visible condition, not a failure.
type Persistence interface {
	actor.Resolver
	Actors(ctx context.Context) []*actor.Actor
	Tokens(ctx context.Context) []*actor.Token
	PutActor(a *actor.Actor) error
	PutToken(t *actor.Token) error
}

const (
	bucketActors = "actors"
	bucketTokens = "tokens"
)

// Load opens the directory rooted at basePath.
func Load(basePath string) Persistence {
	return &persistence{d: diskv.New(diskv.Options{
		BasePath:          filepath.Join(basePath, "world"),
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	})}
}

type persistence struct {
	d *diskv.Diskv
}

func keyToPathTransform(key string) *diskv.PathKey {
	bucket, id, _ := strings.Cut(key, "/")
	return &diskv.PathKey{Path: []string{bucket}, FileName: id + ".json"}
}

func pathToKeyTransform(pk *diskv.PathKey) string {
	if len(pk.Path) == 0 {
		return strings.TrimSuffix(pk.FileName, ".json")
	}
	return pk.Path[0] + "/" + strings.TrimSuffix(pk.FileName, ".json")
}

func (p *persistence) Actor(id string) (*actor.Actor, error) {
	val, err := p.d.Read(bucketActors + "/" + id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("world: read actor %s: %w", id, err)
	}
	a := &actor.Actor{}
	if err := json.Unmarshal(val, a); err != nil {
		return nil, fmt.Errorf("world: decode actor %s: %w", id, err)
	}
	return a, nil
}

func (p *persistence) Token(id string) (*actor.Token, error) {
	val, err := p.d.Read(bucketTokens + "/" + id)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("world: read token %s: %w", id, err)
	}
	t := &actor.Token{}
	if err := json.Unmarshal(val, t); err != nil {
		return nil, fmt.Errorf("world: decode token %s: %w", id, err)
	}
	return t, nil
}

func (p *persistence) Actors(ctx context.Context) []*actor.Actor {
	var all []*actor.Actor
	for key := range p.d.Keys(ctx.Done()) {
		if !strings.HasPrefix(key, bucketActors+"/") {
			continue
		}
		a, err := p.Actor(strings.TrimPrefix(key, bucketActors+"/"))
		if err != nil || a == nil {
			continue
		}
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

func (p *persistence) Tokens(ctx context.Context) []*actor.Token {
	var all []*actor.Token
	for key := range p.d.Keys(ctx.Done()) {
		if !strings.HasPrefix(key, bucketTokens+"/") {
			continue
		}
		t, err := p.Token(strings.TrimPrefix(key, bucketTokens+"/"))
		if err != nil || t == nil {
			continue
		}
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

func (p *persistence) PutActor(a *actor.Actor) error {
	if a.ID == "" {
		return errors.New("world: actor id required")
	}
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return p.d.Write(bucketActors+"/"+a.ID, data)
}

func (p *persistence) PutToken(t *actor.Token) error {
	if t.ID == "" {
		return errors.New("world: token id required")
	}
	if t.ActorID == "" {
		return errors.New("world: token actor id required")
	}
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return p.d.Write(bucketTokens+"/"+t.ID, data)
}

// Export is the JSON shape accepted by the load command.
type Export struct {
	Actors []*actor.Actor `json:"actors"`
	Tokens []*actor.Token `json:"tokens,omitempty"`
}

// Import stores every record of an export. The first failure stops the
// import; records stored so far stay stored.
func Import(p Persistence, ex *Export) error {
	for _, a := range ex.Actors {
		if err := p.PutActor(a); err != nil {
			return err
		}
	}
	for _, t := range ex.Tokens {
		if err := p.PutToken(t); err != nil {
			return err
		}
	}
	return nil
}
