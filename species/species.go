// Package species holds the immutable descriptor table entities are stamped from.
package species

import (
	"fmt"

	"github.com/pthm-cable/trophic/components"
	"github.com/pthm-cable/trophic/config"
)

// Descriptor is the constant data shared by every member of a species.
type Descriptor struct {
	Index   uint8
	Name    string
	Color   components.Color
	Diet    []uint8 // indices of species this one may eat
	Tier    int     // 0 = producer
	PerMass float64 // initial energy per unit mass
	Founder components.Traits
}

// Producer reports whether the species sits at the bottom of the chain.
func (d *Descriptor) Producer() bool {
	return d.Tier == 0
}

// Eats reports whether idx is in the diet.
func (d *Descriptor) Eats(idx uint8) bool {
	for _, food := range d.Diet {
		if food == idx {
			return true
		}
	}
	return false
}

// InitialEnergy returns the starting energy for an individual of the given mass.
func (d *Descriptor) InitialEnergy(mass float64) float64 {
	return mass * d.PerMass
}

// Table is the ordered set of species.
type Table struct {
	entries []Descriptor
	byName  map[string]uint8
}

// FromConfig builds the table from the species section of cfg.
func FromConfig(cfg *config.Config) (*Table, error) {
	if len(cfg.Species) > 255 {
		return nil, fmt.Errorf("too many species: %d", len(cfg.Species))
	}

	t := &Table{
		entries: make([]Descriptor, len(cfg.Species)),
		byName:  make(map[string]uint8, len(cfg.Species)),
	}
	for i, sc := range cfg.Species {
		t.byName[sc.Name] = uint8(i)
	}

	for i, sc := range cfg.Species {
		diet := make([]uint8, 0, len(sc.Diet))
		for _, food := range sc.Diet {
			idx, ok := t.byName[food]
			if !ok {
				return nil, fmt.Errorf("species %q: %w: %q", sc.Name, config.ErrUnknownSpecies, food)
			}
			diet = append(diet, idx)
		}
		t.entries[i] = Descriptor{
			Index:   uint8(i),
			Name:    sc.Name,
			Color:   components.Color{R: sc.Color[0], G: sc.Color[1], B: sc.Color[2]},
			Diet:    diet,
			Tier:    sc.Tier,
			PerMass: cfg.Energy.PerMass,
			Founder: components.Traits{
				Speed:   sc.Traits.Speed,
				Burst:   sc.Traits.Burst,
				Recover: sc.Traits.Recover,
				Mass:    sc.Traits.Mass,
				Vision:  sc.Traits.Vision,
			},
		}
	}
	return t, nil
}

// Len returns the number of species.
func (t *Table) Len() int {
	return len(t.entries)
}

// Get returns the descriptor at idx.
func (t *Table) Get(idx uint8) *Descriptor {
	return &t.entries[idx]
}

// Lookup returns the descriptor with the given name.
func (t *Table) Lookup(name string) (*Descriptor, bool) {
	idx, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return &t.entries[idx], true
}

// All returns the descriptors in table order.
func (t *Table) All() []Descriptor {
	return t.entries
}
