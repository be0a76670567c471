package evolution

import (
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/trophic/components"
	"github.com/pthm-cable/trophic/config"
	"github.com/pthm-cable/trophic/species"
)

// Candidate is one member of a finished trial considered for selection.
type Candidate struct {
	ID         uint32
	AliveTicks int32
	Traits     components.Traits
}

// SelectFittest returns the candidate with the greatest AliveTicks, alive or
// not. Ties go to the earliest candidate, so a population whose counts are
// all zero yields its first member. ok is false only for an empty slice.
func SelectFittest(cands []Candidate) (best Candidate, ok bool) {
	for i, c := range cands {
		if i == 0 || c.AliveTicks > best.AliveTicks {
			best = c
		}
	}
	return best, len(cands) > 0
}

// Brood is the next trial's population plan for one species.
type Brood struct {
	Species    uint8
	Parent     components.Traits
	Fittest    Candidate
	HasFittest bool // false when the species had no members to select from
	Children   []components.Traits
}

// Engine runs the rollover. It owns the live trait toggles.
type Engine struct {
	cfg     *config.Config
	mutator *Mutator
	toggles Toggles
	rng     *rand.Rand
}

// NewEngine creates an evolution engine with toggles seeded from config.
func NewEngine(cfg *config.Config, rng *rand.Rand) *Engine {
	return &Engine{
		cfg:     cfg,
		mutator: NewMutator(cfg.Mutation),
		toggles: TogglesFromConfig(cfg.Mutation.Enabled),
		rng:     rng,
	}
}

// SetToggle switches one trait. Takes effect at the next rollover.
func (e *Engine) SetToggle(t Trait, on bool) {
	if e.toggles.Enabled(t) == on {
		return
	}
	e.toggles.Set(t, on)
	slog.Info("toggle_changed", "trait", t.String(), "enabled", on)
}

// Toggles returns the current toggle state.
func (e *Engine) Toggles() Toggles {
	return e.toggles
}

// Founders plans the first trial: every species at its configured size with
// founder traits.
func (e *Engine) Founders(table *species.Table) []Brood {
	broods := make([]Brood, 0, table.Len())
	for _, d := range table.All() {
		n := e.cfg.PopulationOf(d.Name)
		children := make([]components.Traits, n)
		for i := range children {
			children[i] = d.Founder
		}
		broods = append(broods, Brood{Species: d.Index, Parent: d.Founder, Children: children})
	}
	return broods
}

// Rollover plans the next trial from the finished one. pools holds each
// species' members in stable id order. Producers are reset to founders.
// Each consumer species is rebuilt from its fittest member, mutating every
// child independently with the toggles as they stand now.
func (e *Engine) Rollover(table *species.Table, pools map[uint8][]Candidate) []Brood {
	broods := make([]Brood, 0, table.Len())
	for _, d := range table.All() {
		n := e.cfg.PopulationOf(d.Name)
		b := Brood{Species: d.Index, Parent: d.Founder, Children: make([]components.Traits, n)}

		if d.Producer() {
			for i := range b.Children {
				b.Children[i] = d.Founder
			}
			broods = append(broods, b)
			continue
		}

		if fit, ok := SelectFittest(pools[d.Index]); ok {
			b.Fittest = fit
			b.HasFittest = true
			b.Parent = fit.Traits
		}
		for i := range b.Children {
			b.Children[i] = e.mutator.Mutate(b.Parent, e.toggles, e.rng)
		}
		broods = append(broods, b)
	}
	return broods
}
