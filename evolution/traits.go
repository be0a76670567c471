// Package evolution implements the generational rollover: fittest selection,
// the trait mutation operator, and repopulation planning.
package evolution

import (
	"fmt"
	"strings"

	"github.com/pthm-cable/trophic/components"
	"github.com/pthm-cable/trophic/config"
)

// Trait identifies one heritable trait.
type Trait uint8

const (
	TraitSpeed Trait = iota
	TraitBurst
	TraitRecover
	TraitMass
	TraitVision

	NumTraits
)

var traitNames = [NumTraits]string{"speed", "burst", "recover", "mass", "vision"}

// String returns the trait's config key.
func (t Trait) String() string {
	if t >= NumTraits {
		return "unknown"
	}
	return traitNames[t]
}

// ParseTrait maps a config key (case-insensitive) to a Trait.
func ParseTrait(s string) (Trait, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range traitNames {
		if name == s {
			return Trait(i), nil
		}
	}
	return 0, fmt.Errorf("unknown trait %q", s)
}

// AllTraits lists every trait in operator order.
func AllTraits() []Trait {
	return []Trait{TraitSpeed, TraitBurst, TraitRecover, TraitMass, TraitVision}
}

// field returns a pointer to the trait's slot in tr.
func field(tr *components.Traits, t Trait) *float64 {
	switch t {
	case TraitSpeed:
		return &tr.Speed
	case TraitBurst:
		return &tr.Burst
	case TraitRecover:
		return &tr.Recover
	case TraitMass:
		return &tr.Mass
	default:
		return &tr.Vision
	}
}

// Value returns one trait of tr.
func Value(tr components.Traits, t Trait) float64 {
	return *field(&tr, t)
}

func valuesArray(v config.TraitValues) [NumTraits]float64 {
	return [NumTraits]float64{v.Speed, v.Burst, v.Recover, v.Mass, v.Vision}
}

// Toggles holds one mutation switch per trait.
type Toggles [NumTraits]bool

// TogglesFromConfig converts config flags.
func TogglesFromConfig(f config.TraitFlags) Toggles {
	return Toggles{f.Speed, f.Burst, f.Recover, f.Mass, f.Vision}
}

// Enabled reports whether mutation of t is switched on.
func (g Toggles) Enabled(t Trait) bool {
	return t < NumTraits && g[t]
}

// Set switches mutation of t.
func (g *Toggles) Set(t Trait, on bool) {
	if t < NumTraits {
		g[t] = on
	}
}

// Flags converts back to config form.
func (g Toggles) Flags() config.TraitFlags {
	return config.TraitFlags{
		Speed:   g[TraitSpeed],
		Burst:   g[TraitBurst],
		Recover: g[TraitRecover],
		Mass:    g[TraitMass],
		Vision:  g[TraitVision],
	}
}

// String lists the enabled traits, comma separated, or "none".
func (g Toggles) String() string {
	var on []string
	for _, t := range AllTraits() {
		if g[t] {
			on = append(on, t.String())
		}
	}
	if len(on) == 0 {
		return "none"
	}
	return strings.Join(on, ",")
}
