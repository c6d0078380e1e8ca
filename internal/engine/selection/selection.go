// Package selection decides how a character moves on from its class: which
// mappings are candidates, whether the player chooses, and the weighted draw
package selection

import (
	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/rpg-advancement/internal/entities"
	"github.com/KirkDiggler/rpg-advancement/internal/errors"
)

// DefaultLateAwakeningLevel is the level from which awakening edges are also
// offered through the promotion branch
const DefaultLateAwakeningLevel int32 = 25

// Mode is the outcome of a selection decision
type Mode string

// Selection modes
const (
	ModeNone         Mode = "none"
	ModeAutomatic    Mode = "automatic"
	ModePlayerChoice Mode = "player_choice"
)

// Candidate is a mapping with its evaluation result
type Candidate struct {
	Mapping *entities.AdvancementMapping
	Passed  bool
	Missing *entities.MissingRequirements
}

// Decision is what Decide concluded
type Decision struct {
	Mode Mode
	// Passing holds the candidates that met every requirement
	Passing []Candidate
}

// Draw picks an index with probability proportional to its weight. It rolls
// r in [1, total] and returns the first index whose cumulative weight reaches
// r. When the total weight is not positive the pick is uniform.
func Draw(roller dice.Roller, weights []int32) (int, error) {
	if len(weights) == 0 {
		return 0, errors.InvalidArgument("nothing to draw from")
	}

	var total int64
	for _, w := range weights {
		if w > 0 {
			total += int64(w)
		}
	}
	if total <= 0 {
		return Uniform(roller, len(weights))
	}

	r, err := roller.Roll(int(total))
	if err != nil {
		return 0, errors.Wrap(err, "failed to roll weighted draw")
	}

	var cumulative int64
	for i, w := range weights {
		if w > 0 {
			cumulative += int64(w)
		}
		if cumulative >= int64(r) {
			return i, nil
		}
	}
	return len(weights) - 1, nil
}

// Uniform picks an index in [0, n) with equal probability
func Uniform(roller dice.Roller, n int) (int, error) {
	if n <= 0 {
		return 0, errors.InvalidArgument("nothing to draw from")
	}
	if n == 1 {
		return 0, nil
	}
	r, err := roller.Roll(n)
	if err != nil {
		return 0, errors.Wrap(err, "failed to roll uniform draw")
	}
	return r - 1, nil
}

// DrawMapping runs Draw over the mappings' weights
func DrawMapping(roller dice.Roller, mappings []*entities.AdvancementMapping) (*entities.AdvancementMapping, error) {
	weights := make([]int32, len(mappings))
	for i, m := range mappings {
		weights[i] = m.Weight
	}
	idx, err := Draw(roller, weights)
	if err != nil {
		return nil, err
	}
	return mappings[idx], nil
}

// AwakeningCandidates returns the awakening edges whose level threshold was
// crossed by moving from oldLevel to newLevel
func AwakeningCandidates(mappings []*entities.AdvancementMapping, oldLevel, newLevel int32) []*entities.AdvancementMapping {
	var out []*entities.AdvancementMapping
	for _, m := range mappings {
		if !m.IsAwakening {
			continue
		}
		if oldLevel < m.LevelRequired && newLevel >= m.LevelRequired {
			out = append(out, m)
		}
	}
	return out
}

// PromotionCandidates returns the mappings reachable at newLevel: regular
// edges, plus awakening edges gated at or above lateAwakeningLevel
func PromotionCandidates(mappings []*entities.AdvancementMapping, newLevel, lateAwakeningLevel int32) []*entities.AdvancementMapping {
	var out []*entities.AdvancementMapping
	for _, m := range mappings {
		if m.LevelRequired > newLevel {
			continue
		}
		if m.IsAwakening && m.LevelRequired < lateAwakeningLevel {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Decide keeps the passing candidates and picks the mode: nothing passes,
// a passing candidate lets the player choose, or an automatic draw
func Decide(candidates []Candidate) Decision {
	var passing []Candidate
	choice := false
	for _, c := range candidates {
		if !c.Passed {
			continue
		}
		passing = append(passing, c)
		if c.Mapping.AllowPlayerChoice {
			choice = true
		}
	}

	switch {
	case len(passing) == 0:
		return Decision{Mode: ModeNone}
	case choice:
		return Decision{Mode: ModePlayerChoice, Passing: passing}
	default:
		return Decision{Mode: ModeAutomatic, Passing: passing}
	}
}

// Mappings returns the mappings of the candidates in order
func Mappings(candidates []Candidate) []*entities.AdvancementMapping {
	out := make([]*entities.AdvancementMapping, len(candidates))
	for i, c := range candidates {
		out[i] = c.Mapping
	}
	return out
}
