package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonCatalog = `{
  "version": "1",
  "rarities": {"Common": {"sell_multiplier": 0.75, "weight": 60}},
  "packs": [{"type": "basic", "name": "Basic Pack", "price": 100, "min_cards": 3, "max_cards": 5, "drops": {"Common": 100}}],
  "cards": [{"name": "Mudcrab", "rarity": "Common", "collection": "Beasts", "base_value": 60}]
}`

const yamlCatalog = `version: "1"
rarities:
  Common:
    sell_multiplier: 0.75
    weight: 60
packs:
  - type: basic
    name: Basic Pack
    price: 100
    min_cards: 3
    max_cards: 5
    drops:
      Common: 100
cards:
  - name: Mudcrab
    rarity: Common
    collection: Beasts
    base_value: 60
`

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadJSON(t *testing.T) {
	loader := NewLoader()

	cfg, err := loader.Load(writeTempFile(t, "catalog.json", jsonCatalog))
	require.NoError(t, err)
	require.NoError(t, loader.Validate(cfg))

	require.Len(t, cfg.Packs, 1)
	assert.Equal(t, "basic", cfg.Packs[0].Type)
	assert.Equal(t, 100, cfg.Packs[0].Price)
	require.Len(t, cfg.Cards, 1)
	assert.Equal(t, "Mudcrab", cfg.Cards[0].Name)
}

func TestLoadYAML(t *testing.T) {
	loader := NewLoader()

	cfg, err := loader.Load(writeTempFile(t, "catalog.yaml", yamlCatalog))
	require.NoError(t, err)
	require.NoError(t, loader.Validate(cfg))

	assert.Equal(t, 60, cfg.Cards[0].BaseValue)
	assert.Equal(t, 5, cfg.Packs[0].MaxCards)
}

func TestLoadMissingFile(t *testing.T) {
	loader := NewLoader()

	_, err := loader.Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadMalformedJSON(t *testing.T) {
	loader := NewLoader()

	_, err := loader.Load(writeTempFile(t, "bad.json", "{not json"))
	assert.Error(t, err)
}
