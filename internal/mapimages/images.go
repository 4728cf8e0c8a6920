// Package mapimages holds the static map image table, loaded once at startup.
package mapimages

import (
	_ "embed"
	"fmt"
	"maps"

	"github.com/goccy/go-yaml"

	"github.com/DoyleJ11/mapveto-backend/internal/engine"
)

//go:embed images.yaml
var imagesYAML []byte

// Table is read-only after Load; For hands out copies.
type Table struct {
	byGame map[engine.GameVariant]map[string]string
}

func Load() (*Table, error) {
	return parse(imagesYAML)
}

func parse(raw []byte) (*Table, error) {
	var decoded map[string]map[string]string
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode map images: %w", err)
	}
	byGame := make(map[engine.GameVariant]map[string]string, len(decoded)+1)
	for game, m := range decoded {
		byGame[engine.GameVariant(game)] = m
	}
	if _, ok := byGame[engine.GameCS2]; !ok {
		return nil, fmt.Errorf("map images: missing %s table", engine.GameCS2)
	}
	// legacy csgo shares the cs2 pool
	if _, ok := byGame[engine.GameCSGO]; !ok {
		byGame[engine.GameCSGO] = byGame[engine.GameCS2]
	}
	return &Table{byGame: byGame}, nil
}

// For returns the map -> image URL table of variant, or the cs2 table when
// the variant is unknown.
func (t *Table) For(variant engine.GameVariant) map[string]string {
	m, ok := t.byGame[variant]
	if !ok {
		m = t.byGame[engine.GameCS2]
	}
	return maps.Clone(m)
}

// Image looks up a single map. ok is false when the map has no image.
func (t *Table) Image(variant engine.GameVariant, mapName string) (string, bool) {
	m, ok := t.byGame[variant]
	if !ok {
		m = t.byGame[engine.GameCS2]
	}
	url, ok := m[mapName]
	return url, ok
}
