package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/cardtycoon/cardtycoon/internal/domain"
)

// Sentinel errors for catalog loading
var (
	ErrDuplicateCardName = errors.New("duplicate card name")
	ErrUnknownRarity     = errors.New("unknown rarity")
	ErrInvalidConfig     = errors.New("invalid catalog configuration")
)

// Config represents the catalog configuration file
type Config struct {
	Version  string                              `json:"version" yaml:"version"`
	Rarities map[domain.Rarity]domain.RarityMeta `json:"rarities" yaml:"rarities" validate:"required,min=1"`
	Packs    []PackDef                           `json:"packs" yaml:"packs" validate:"required,min=1,dive"`
	Cards    []CardDef                           `json:"cards" yaml:"cards" validate:"required,min=1,dive"`
}

// PackDef is a single pack definition in the config file
type PackDef struct {
	Type      string         `json:"type" yaml:"type" validate:"required"`
	Name      string         `json:"name" yaml:"name" validate:"required"`
	Price     int            `json:"price" yaml:"price" validate:"gt=0"`
	MinCards  int            `json:"min_cards" yaml:"min_cards" validate:"gt=0"`
	MaxCards  int            `json:"max_cards" yaml:"max_cards" validate:"gtefield=MinCards"`
	Drops     map[string]int `json:"drops" yaml:"drops" validate:"required,min=1"`
	EventOnly bool           `json:"event_only" yaml:"event_only"`
}

// CardDef is a single card definition in the config file
type CardDef struct {
	Name       string `json:"name" yaml:"name" validate:"required"`
	Rarity     string `json:"rarity" yaml:"rarity" validate:"required"`
	Collection string `json:"collection" yaml:"collection" validate:"required"`
	BaseValue  int    `json:"base_value" yaml:"base_value" validate:"gt=0"`
}

// Loader handles loading and validating catalog configuration
type Loader struct {
	validate *validator.Validate
}

// NewLoader creates a new catalog loader
func NewLoader() *Loader {
	return &Loader{validate: validator.New()}
}

// Load reads and parses a catalog file. The parser is chosen by extension:
// .yaml/.yml use YAML, everything else is treated as JSON.
func (l *Loader) Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks structural validity, rarity references and name uniqueness.
// Duplicate card names are rejected rather than silently merged.
func (l *Loader) Validate(cfg *Config) error {
	if err := l.validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	for r := range cfg.Rarities {
		if !r.Valid() {
			return fmt.Errorf("%w: %q in rarity table", ErrUnknownRarity, r)
		}
	}

	seen := make(map[string]bool, len(cfg.Cards))
	for _, c := range cfg.Cards {
		if !domain.Rarity(c.Rarity).Valid() {
			return fmt.Errorf("%w: card %q has rarity %q", ErrUnknownRarity, c.Name, c.Rarity)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateCardName, c.Name)
		}
		seen[c.Name] = true
	}

	packTypes := make(map[string]bool, len(cfg.Packs))
	for _, p := range cfg.Packs {
		if packTypes[p.Type] {
			return fmt.Errorf("%w: duplicate pack type %q", ErrInvalidConfig, p.Type)
		}
		packTypes[p.Type] = true
		for r := range p.Drops {
			if !domain.Rarity(r).Valid() {
				return fmt.Errorf("%w: pack %q drop table references %q", ErrUnknownRarity, p.Type, r)
			}
		}
	}

	return nil
}
