package evolution

import (
	"math/rand"

	"github.com/pthm-cable/trophic/components"
	"github.com/pthm-cable/trophic/config"
)

// Mutator applies symmetric uniform noise to enabled traits.
type Mutator struct {
	ranges [NumTraits]float64
	floors [NumTraits]float64
	clamp  bool
}

// NewMutator creates a mutator from the mutation config.
func NewMutator(cfg config.MutationConfig) *Mutator {
	return &Mutator{
		ranges: valuesArray(cfg.Ranges),
		floors: valuesArray(cfg.Floors),
		clamp:  cfg.Clamp,
	}
}

// Mutate returns a copy of parent with each enabled trait shifted by a
// uniform draw in [-range, range). Disabled traits are copied untouched and
// draw no random numbers. With clamping on, mutated traits are held at or
// above their floor.
func (m *Mutator) Mutate(parent components.Traits, toggles Toggles, rng *rand.Rand) components.Traits {
	child := parent
	for _, t := range AllTraits() {
		if !toggles.Enabled(t) {
			continue
		}
		r := m.ranges[t]
		v := field(&child, t)
		*v += 2*r*rng.Float64() - r
		if m.clamp && *v < m.floors[t] {
			*v = m.floors[t]
		}
	}
	return child
}
