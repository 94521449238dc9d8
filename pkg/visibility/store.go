package visibility

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

// OwnerKind selects which entity a hidden-elements map is persisted on.
type OwnerKind string

const (
	OwnerActor OwnerKind = "actor"
	OwnerToken OwnerKind = "token"
)

// Owner identifies the entity that owns one hidden-elements map, resolved
// per the flag-storage mode before any read or write.
type Owner struct {
	Kind OwnerKind
	ID   string
}

func ActorOwner(id string) Owner { return Owner{Kind: OwnerActor, ID: id} }
func TokenOwner(id string) Owner { return Owner{Kind: OwnerToken, ID: id} }

func (o Owner) String() string { return string(o.Kind) + "/" + o.ID }

// Store persists one JSON-encoded Map per owner under a diskv tree. Every
// mutation is expected to re-read the current map first; Write replaces the
// whole value.
type Store struct {
	d        *diskv.Diskv
	basePath string
}

// NewStore opens (or creates on first write) the flag store rooted at
// basePath.
func NewStore(basePath string) *Store {
	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: ownerToPathTransform,
			InverseTransform:  pathToOwnerTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		basePath: basePath,
	}
}

func ownerToPathTransform(key string) *diskv.PathKey {
	kind, id, _ := strings.Cut(key, "/")
	return &diskv.PathKey{Path: []string{kind}, FileName: id + ".json"}
}

func pathToOwnerTransform(pk *diskv.PathKey) string {
	if len(pk.Path) == 0 {
		return strings.TrimSuffix(pk.FileName, ".json")
	}
	return pk.Path[0] + "/" + strings.TrimSuffix(pk.FileName, ".json")
}

// Read returns the owner's persisted map, or an empty map when nothing has
// been written yet. Unknown keys in the stored data are preserved as-is.
func (s *Store) Read(owner Owner) (Map, error) {
	val, err := s.d.Read(owner.String())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Map{}, nil
		}
		return nil, fmt.Errorf("visibility: read %s: %w", owner, err)
	}
	m := Map{}
	if err := json.Unmarshal(val, &m); err != nil {
		return nil, fmt.Errorf("visibility: decode %s: %w", owner, err)
	}
	return m, nil
}

// Write replaces the owner's persisted map.
func (s *Store) Write(owner Owner, m Map) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := s.d.Write(owner.String(), data); err != nil {
		return fmt.Errorf("visibility: write %s: %w", owner, err)
	}
	return nil
}

// ownerForPath derives the owner from a file path inside the store tree.
func (s *Store) ownerForPath(path string) (Owner, bool) {
	rel, err := filepath.Rel(s.basePath, path)
	if err != nil || rel == "." {
		return Owner{}, false
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) != 2 || !strings.HasSuffix(parts[1], ".json") {
		return Owner{}, false
	}
	return Owner{Kind: OwnerKind(parts[0]), ID: strings.TrimSuffix(parts[1], ".json")}, true
}
