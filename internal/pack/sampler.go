package pack

import (
	"errors"
	"sort"
)

// ErrNoWeights is returned when a weighted pick has no positive weight to draw from.
var ErrNoWeights = errors.New("no positive weights to sample")

// WeightedChoice pairs a label with its relative weight. Weights need not
// sum to any particular total; selection probability is weight over the sum.
type WeightedChoice struct {
	Label  string
	Weight int
}

// ChoicesFromMap converts a weight map into a deterministic choice slice,
// sorted by label so the same roll value always lands on the same pick.
func ChoicesFromMap(weights map[string]int) []WeightedChoice {
	choices := make([]WeightedChoice, 0, len(weights))
	for label, w := range weights {
		choices = append(choices, WeightedChoice{Label: label, Weight: w})
	}
	sort.Slice(choices, func(i, j int) bool { return choices[i].Label < choices[j].Label })
	return choices
}

// PickWeighted selects one label at random, proportionally to its weight.
// rnd must return a float in [0.0, 1.0). Non-positive weights are skipped.
func PickWeighted(choices []WeightedChoice, rnd func() float64) (string, error) {
	total := 0
	for _, c := range choices {
		if c.Weight > 0 {
			total += c.Weight
		}
	}
	if total <= 0 {
		return "", ErrNoWeights
	}

	target := int(rnd() * float64(total))
	if target >= total {
		target = total - 1
	}
	for _, c := range choices {
		if c.Weight <= 0 {
			continue
		}
		if target < c.Weight {
			return c.Label, nil
		}
		target -= c.Weight
	}
	// Unreachable with a well-behaved rnd; keep the last positive choice as a guard.
	return choices[len(choices)-1].Label, nil
}
