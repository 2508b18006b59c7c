package pack

import (
	"context"
	"errors"
	"fmt"

	"github.com/cardtycoon/cardtycoon/internal/catalog"
	"github.com/cardtycoon/cardtycoon/internal/domain"
	"github.com/cardtycoon/cardtycoon/internal/logger"
	"github.com/cardtycoon/cardtycoon/internal/utils"
)

// ErrEmptyPool is returned when neither the selected rarity pool nor the
// common fallback pool contains any card.
var ErrEmptyPool = errors.New("no cards available for draw")

// Engine rolls randomized card sets for pack openings.
type Engine struct {
	catalog   *catalog.Catalog
	randFloat func() float64 // rarity + card selection
	randInt   func(min, max int) int
}

// NewEngine creates a pack engine backed by the catalog.
func NewEngine(cat *catalog.Catalog) *Engine {
	return &Engine{
		catalog:   cat,
		randFloat: utils.RandomFloat,
		randInt:   utils.RandomInt,
	}
}

// Opening is one pack opening revealed draw by draw. A single opening is a
// finite, non-restartable sequence; callers that want the whole batch use
// Rest or the engine's Roll.
type Opening struct {
	PackType string
	Count    int

	drawn  int
	remain int
	draw   func() (domain.Card, error)
}

// Remaining reports how many draws are left in the opening.
func (o *Opening) Remaining() int {
	return o.remain
}

// Next reveals the next draw. ok is false when the opening is exhausted.
func (o *Opening) Next() (card domain.Card, ok bool, err error) {
	if o.remain == 0 {
		return domain.Card{}, false, nil
	}
	card, err = o.draw()
	if err != nil {
		return domain.Card{}, false, err
	}
	o.drawn++
	o.remain--
	return card, true, nil
}

// Rest drains the remaining draws into a batch.
func (o *Opening) Rest() ([]domain.Card, error) {
	out := make([]domain.Card, 0, o.remain)
	for {
		card, ok, err := o.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, card)
	}
}

// Open starts a pack opening. The draw count is uniform in
// [MinCards, MaxCards]; each draw is independent (duplicates allowed):
// a rarity is picked by weighted choice over the pack's drop table, then a
// card uniformly from that rarity's pool. Seasonal-collection cards are
// excluded unless seasonalActive; an empty pool after filtering falls back
// to the Common pool including seasonal cards so a draw never dies.
func (e *Engine) Open(ctx context.Context, packType string, seasonalActive bool) (*Opening, error) {
	def, ok := e.catalog.Pack(packType)
	if !ok {
		return nil, fmt.Errorf("%w: pack type %q", domain.ErrNotFound, packType)
	}

	drops := make(map[string]int, len(def.Drops))
	for r, w := range def.Drops {
		drops[string(r)] = w
	}
	choices := ChoicesFromMap(drops)

	count := e.randInt(def.MinCards, def.MaxCards)
	o := &Opening{
		PackType: packType,
		Count:    count,
		remain:   count,
	}
	o.draw = func() (domain.Card, error) {
		return e.drawOne(ctx, choices, seasonalActive)
	}
	return o, nil
}

// Roll opens a pack and returns all draws as one batch, in draw order.
func (e *Engine) Roll(ctx context.Context, packType string, seasonalActive bool) ([]domain.Card, error) {
	o, err := e.Open(ctx, packType, seasonalActive)
	if err != nil {
		return nil, err
	}
	return o.Rest()
}

func (e *Engine) drawOne(ctx context.Context, choices []WeightedChoice, seasonalActive bool) (domain.Card, error) {
	label, err := PickWeighted(choices, e.randFloat)
	if err != nil {
		return domain.Card{}, fmt.Errorf("failed to pick rarity: %w", err)
	}
	rarity := domain.Rarity(label)

	pool := e.catalog.CardsByRarity(rarity, seasonalActive)
	if len(pool) == 0 {
		// Fallback: common pool including seasonal cards
		logger.FromContext(ctx).Warn("empty draw pool, falling back to common", "rarity", rarity, "seasonal", seasonalActive)
		pool = e.catalog.CardsByRarity(domain.RarityCommon, true)
	}
	if len(pool) == 0 {
		return domain.Card{}, ErrEmptyPool
	}

	idx := int(e.randFloat() * float64(len(pool)))
	if idx >= len(pool) {
		idx = len(pool) - 1
	}
	return pool[idx], nil
}
