package catalog

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/cardtycoon/cardtycoon/internal/domain"
)

// Catalog holds the immutable card, pack and rarity definitions. The only
// runtime mutation is Reload, which swaps the whole snapshot atomically.
type Catalog struct {
	snap atomic.Pointer[snapshot]
}

type snapshot struct {
	rarities    map[domain.Rarity]domain.RarityMeta
	packs       map[string]domain.PackDefinition
	packOrder   []string
	cardsByID   map[int]domain.Card
	cardsByName map[string]domain.Card
	byRarity    map[domain.Rarity][]domain.Card // all cards of that rarity
	collections []string
}

// New builds a Catalog from a validated config. Card IDs are assigned in
// file order starting at 1 and stay stable for the life of the snapshot.
func New(cfg *Config) (*Catalog, error) {
	snap, err := buildSnapshot(cfg)
	if err != nil {
		return nil, err
	}
	c := &Catalog{}
	c.snap.Store(snap)
	return c, nil
}

// Reload replaces every definition in one atomic swap. Callers holding
// cards from a previous snapshot keep a consistent view.
func (c *Catalog) Reload(cfg *Config) error {
	snap, err := buildSnapshot(cfg)
	if err != nil {
		return err
	}
	c.snap.Store(snap)
	return nil
}

func buildSnapshot(cfg *Config) (*snapshot, error) {
	s := &snapshot{
		rarities:    make(map[domain.Rarity]domain.RarityMeta, len(cfg.Rarities)),
		packs:       make(map[string]domain.PackDefinition, len(cfg.Packs)),
		cardsByID:   make(map[int]domain.Card, len(cfg.Cards)),
		cardsByName: make(map[string]domain.Card, len(cfg.Cards)),
		byRarity:    make(map[domain.Rarity][]domain.Card),
	}

	for r, meta := range cfg.Rarities {
		s.rarities[r] = meta
	}

	for _, p := range cfg.Packs {
		drops := make(map[domain.Rarity]int, len(p.Drops))
		for r, w := range p.Drops {
			drops[domain.Rarity(r)] = w
		}
		s.packs[p.Type] = domain.PackDefinition{
			Type:      p.Type,
			Name:      p.Name,
			Price:     p.Price,
			MinCards:  p.MinCards,
			MaxCards:  p.MaxCards,
			Drops:     drops,
			EventOnly: p.EventOnly,
		}
		s.packOrder = append(s.packOrder, p.Type)
	}

	collSeen := make(map[string]bool)
	for i, def := range cfg.Cards {
		card := domain.Card{
			ID:         i + 1,
			Name:       def.Name,
			Rarity:     domain.Rarity(def.Rarity),
			Collection: def.Collection,
			BaseValue:  def.BaseValue,
		}
		if _, dup := s.cardsByName[card.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCardName, card.Name)
		}
		s.cardsByID[card.ID] = card
		s.cardsByName[card.Name] = card
		s.byRarity[card.Rarity] = append(s.byRarity[card.Rarity], card)
		if !collSeen[card.Collection] {
			collSeen[card.Collection] = true
			s.collections = append(s.collections, card.Collection)
		}
	}
	sort.Strings(s.collections)

	return s, nil
}

// Card returns the definition for a card ID.
func (c *Catalog) Card(id int) (domain.Card, bool) {
	card, ok := c.snap.Load().cardsByID[id]
	return card, ok
}

// CardByName returns the definition for a card name.
func (c *Catalog) CardByName(name string) (domain.Card, bool) {
	card, ok := c.snap.Load().cardsByName[name]
	return card, ok
}

// Pack returns a pack definition by type key.
func (c *Catalog) Pack(packType string) (domain.PackDefinition, bool) {
	p, ok := c.snap.Load().packs[packType]
	return p, ok
}

// Packs lists pack definitions in file order. Event-only packs are omitted
// unless includeEvent is true.
func (c *Catalog) Packs(includeEvent bool) []domain.PackDefinition {
	s := c.snap.Load()
	out := make([]domain.PackDefinition, 0, len(s.packOrder))
	for _, t := range s.packOrder {
		p := s.packs[t]
		if p.EventOnly && !includeEvent {
			continue
		}
		out = append(out, p)
	}
	return out
}

// CardsByRarity returns the draw pool for a rarity. Cards from the seasonal
// collection are excluded unless includeSeasonal is true.
func (c *Catalog) CardsByRarity(r domain.Rarity, includeSeasonal bool) []domain.Card {
	pool := c.snap.Load().byRarity[r]
	if includeSeasonal {
		out := make([]domain.Card, len(pool))
		copy(out, pool)
		return out
	}
	out := make([]domain.Card, 0, len(pool))
	for _, card := range pool {
		if card.Collection != domain.SeasonalCollection {
			out = append(out, card)
		}
	}
	return out
}

// RarityMeta returns the rarity attribute table.
func (c *Catalog) RarityMeta() map[domain.Rarity]domain.RarityMeta {
	src := c.snap.Load().rarities
	out := make(map[domain.Rarity]domain.RarityMeta, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// SellPrice computes the coin value of selling one instance of the card.
func (c *Catalog) SellPrice(card domain.Card) int {
	return card.SellPrice(c.snap.Load().rarities)
}

// Collections lists all collection tags in sorted order.
func (c *Catalog) Collections() []string {
	src := c.snap.Load().collections
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// CollectionSize returns how many distinct cards a collection contains.
func (c *Catalog) CollectionSize(collection string) int {
	n := 0
	for _, card := range c.snap.Load().cardsByID {
		if card.Collection == collection {
			n++
		}
	}
	return n
}

// TotalCards returns the number of card definitions.
func (c *Catalog) TotalCards() int {
	return len(c.snap.Load().cardsByID)
}

// AllCards lists every card definition ordered by ID.
func (c *Catalog) AllCards() []domain.Card {
	byID := c.snap.Load().cardsByID
	out := make([]domain.Card, 0, len(byID))
	for _, card := range byID {
		out = append(out, card)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
