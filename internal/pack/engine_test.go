package pack

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtycoon/cardtycoon/internal/catalog"
	"github.com/cardtycoon/cardtycoon/internal/domain"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(&catalog.Config{
		Rarities: map[domain.Rarity]domain.RarityMeta{
			domain.RarityCommon: {SellMultiplier: 0.75},
			domain.RarityRare:   {SellMultiplier: 1.0},
		},
		Packs: []catalog.PackDef{
			{
				Type:     "basic",
				Name:     "Basic Pack",
				Price:    100,
				MinCards: 3,
				MaxCards: 5,
				Drops:    map[string]int{"Common": 90, "Rare": 10},
			},
			{
				Type:     "haunted",
				Name:     "Haunted Pack",
				Price:    200,
				MinCards: 2,
				MaxCards: 2,
				Drops:    map[string]int{"Rare": 100},
			},
		},
		Cards: []catalog.CardDef{
			{Name: "Mudcrab", Rarity: "Common", Collection: "Beasts", BaseValue: 60},
			{Name: "Sparrow", Rarity: "Common", Collection: "Beasts", BaseValue: 55},
			{Name: "Phantom", Rarity: "Rare", Collection: "Halloween", BaseValue: 220},
		},
	})
	require.NoError(t, err)
	return cat
}

// stubEngine fixes the draw count and feeds rolls from a queue.
func stubEngine(cat *catalog.Catalog, count int, rolls ...float64) *Engine {
	e := NewEngine(cat)
	e.randInt = func(min, max int) int { return count }
	i := 0
	e.randFloat = func() float64 {
		r := rolls[i%len(rolls)]
		i++
		return r
	}
	return e
}

func TestOpenUnknownPackType(t *testing.T) {
	e := NewEngine(testCatalog(t))

	_, err := e.Open(context.Background(), "mystery", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOpenDrawCountWithinBounds(t *testing.T) {
	e := NewEngine(testCatalog(t))

	for i := 0; i < 50; i++ {
		cards, err := e.Roll(context.Background(), "basic", false)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(cards), 3)
		assert.LessOrEqual(t, len(cards), 5)
	}
}

func TestOpeningRevealsDrawByDraw(t *testing.T) {
	e := stubEngine(testCatalog(t), 3, 0.0)

	opening, err := e.Open(context.Background(), "basic", false)
	require.NoError(t, err)
	assert.Equal(t, 3, opening.Count)
	assert.Equal(t, 3, opening.Remaining())

	card, ok, err := opening.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.RarityCommon, card.Rarity)
	assert.Equal(t, 2, opening.Remaining())

	rest, err := opening.Rest()
	require.NoError(t, err)
	assert.Len(t, rest, 2)

	_, ok, err = opening.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDrawExcludesSeasonalOffSeason(t *testing.T) {
	// The only rare card is seasonal; off-season draws must fall back to
	// the common pool instead of failing.
	e := stubEngine(testCatalog(t), 2, 0.99, 0.0)

	cards, err := e.Roll(context.Background(), "haunted", false)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	for _, card := range cards {
		assert.Equal(t, domain.RarityCommon, card.Rarity)
		assert.NotEqual(t, "Phantom", card.Name)
	}
}

func TestDrawIncludesSeasonalInSeason(t *testing.T) {
	e := stubEngine(testCatalog(t), 2, 0.5)

	cards, err := e.Roll(context.Background(), "haunted", true)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	for _, card := range cards {
		assert.Equal(t, "Phantom", card.Name)
	}
}

func TestDrawAllowsDuplicates(t *testing.T) {
	e := stubEngine(testCatalog(t), 4, 0.0)

	cards, err := e.Roll(context.Background(), "basic", false)
	require.NoError(t, err)
	require.Len(t, cards, 4)
	for _, card := range cards {
		assert.Equal(t, cards[0].Name, card.Name)
	}
}
