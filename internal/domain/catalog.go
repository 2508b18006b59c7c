package domain

// Rarity is an ordered tier affecting draw weight and sell multiplier.
type Rarity string

const (
	RarityCommon    Rarity = "Common"
	RarityUncommon  Rarity = "Uncommon"
	RarityRare      Rarity = "Rare"
	RarityEpic      Rarity = "Epic"
	RarityLegendary Rarity = "Legendary"
)

// Rarities lists all tiers in ascending order.
var Rarities = []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary}

// rarityOrder maps each tier to its ascending position.
var rarityOrder = map[Rarity]int{
	RarityCommon:    0,
	RarityUncommon:  1,
	RarityRare:      2,
	RarityEpic:      3,
	RarityLegendary: 4,
}

// Valid reports whether r is a known rarity tier.
func (r Rarity) Valid() bool {
	_, ok := rarityOrder[r]
	return ok
}

// AtLeast reports whether r is the same tier as other or higher.
func (r Rarity) AtLeast(other Rarity) bool {
	return rarityOrder[r] >= rarityOrder[other]
}

// RarityMeta holds per-rarity presentation and pricing attributes.
// Weight is a reference draw weight only; packs carry their own drop tables.
type RarityMeta struct {
	Marker         string  `json:"marker" yaml:"marker"`
	Color          int     `json:"color" yaml:"color"`
	SellMultiplier float64 `json:"sell_multiplier" yaml:"sell_multiplier"`
	Weight         int     `json:"weight" yaml:"weight"`
}

// Card is an immutable catalog card definition.
type Card struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Rarity     Rarity `json:"rarity"`
	Collection string `json:"collection"`
	BaseValue  int    `json:"base_value"`
}

// SellPrice is the coin value of selling a card of this definition:
// floor of base value times the rarity sell multiplier.
func (c Card) SellPrice(meta map[Rarity]RarityMeta) int {
	m, ok := meta[c.Rarity]
	if !ok {
		return c.BaseValue
	}
	return int(float64(c.BaseValue) * m.SellMultiplier)
}

// PackDefinition is an immutable catalog pack definition.
// Drop weights are relative; they need not sum to 100.
type PackDefinition struct {
	Type      string         `json:"type"`
	Name      string         `json:"name"`
	Price     int            `json:"price"`
	MinCards  int            `json:"min_cards"`
	MaxCards  int            `json:"max_cards"`
	Drops     map[Rarity]int `json:"drops"`
	EventOnly bool           `json:"event_only"`
}

// SeasonalCollection is the collection tag excluded from draws outside the
// seasonal event window.
const SeasonalCollection = "Halloween"
