// Package load imports a world export (actors and tokens) into the
// directory store.
package load

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ReAcTiOnN77/inspect-statblock/pkg/world"
)

type Load struct {
	World world.Persistence
	Path  string
}

func (l *Load) Do(ctx context.Context) error {
	if l.World == nil {
		return errors.New("can not load, no persistence")
	}
	if l.Path == "" {
		return errors.New("can not load, no export file")
	}

	data, err := os.ReadFile(l.Path)
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}

	ex := &world.Export{}
	if err := json.Unmarshal(data, ex); err != nil {
		return fmt.Errorf("decode export: %w", err)
	}

	if err := world.Import(l.World, ex); err != nil {
		return err
	}

	fmt.Printf("imported %d actors, %d tokens\n", len(ex.Actors), len(ex.Tokens))
	return nil
}
