package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pthm-cable/trophic/components"
	"github.com/pthm-cable/trophic/species"
)

// HallEntry is a trial's fittest representative kept for the record.
type HallEntry struct {
	Trial      int
	EntityID   uint32
	AliveTicks int32
	Meals      int
	Traits     components.Traits
}

// HallOfFame keeps the longest-surviving representatives of each species
// across every trial of a run, sorted by AliveTicks descending.
type HallOfFame struct {
	names   []string
	halls   [][]HallEntry
	maxSize int
}

// NewHallOfFame creates a hall with the given capacity per species.
func NewHallOfFame(table *species.Table, maxSize int) *HallOfFame {
	if maxSize < 1 {
		maxSize = 1
	}
	hof := &HallOfFame{
		names:   make([]string, table.Len()),
		halls:   make([][]HallEntry, table.Len()),
		maxSize: maxSize,
	}
	for _, d := range table.All() {
		hof.names[d.Index] = d.Name
		hof.halls[d.Index] = make([]HallEntry, 0, maxSize)
	}
	return hof
}

// Consider offers an entry for a species. Returns true if it was kept.
func (hof *HallOfFame) Consider(speciesIdx uint8, entry HallEntry) bool {
	if int(speciesIdx) >= len(hof.halls) {
		return false
	}
	hall := hof.halls[speciesIdx]

	// Insert after equal entries so earlier trials keep precedence
	idx := sort.Search(len(hall), func(i int) bool {
		return hall[i].AliveTicks < entry.AliveTicks
	})
	if idx >= hof.maxSize {
		return false
	}

	hall = append(hall, HallEntry{})
	copy(hall[idx+1:], hall[idx:])
	hall[idx] = entry
	if len(hall) > hof.maxSize {
		hall = hall[:hof.maxSize]
	}
	hof.halls[speciesIdx] = hall
	return true
}

// Top returns the best entry for a species.
func (hof *HallOfFame) Top(speciesIdx uint8) (HallEntry, bool) {
	if int(speciesIdx) >= len(hof.halls) || len(hof.halls[speciesIdx]) == 0 {
		return HallEntry{}, false
	}
	return hof.halls[speciesIdx][0], true
}

// Size returns the number of entries for a species.
func (hof *HallOfFame) Size(speciesIdx uint8) int {
	if int(speciesIdx) >= len(hof.halls) {
		return 0
	}
	return len(hof.halls[speciesIdx])
}

// hallEntryJSON is the JSON-serializable representation of a hall entry.
type hallEntryJSON struct {
	Trial      int        `json:"trial"`
	EntityID   uint32     `json:"entity_id"`
	AliveTicks int32      `json:"alive_ticks"`
	Meals      int        `json:"meals"`
	Traits     TraitsJSON `json:"traits"`
}

// MarshalJSON serializes the hall keyed by species name. Empty halls are
// omitted.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	export := make(map[string][]hallEntryJSON)
	for i, hall := range hof.halls {
		if len(hall) == 0 {
			continue
		}
		entries := make([]hallEntryJSON, len(hall))
		for j, e := range hall {
			entries[j] = hallEntryJSON{
				Trial:      e.Trial,
				EntityID:   e.EntityID,
				AliveTicks: e.AliveTicks,
				Meals:      e.Meals,
				Traits:     NewTraitsJSON(e.Traits),
			}
		}
		export[hof.names[i]] = entries
	}
	return json.MarshalIndent(export, "", "  ")
}

// LoadHallOfFameFromFile reads a hall of fame JSON file written by
// MarshalJSON. Unknown species names are rejected.
func LoadHallOfFameFromFile(path string, table *species.Table, maxSize int) (*HallOfFame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hall of fame: %w", err)
	}

	var raw map[string][]hallEntryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing hall of fame JSON: %w", err)
	}

	hof := NewHallOfFame(table, maxSize)
	for name, entries := range raw {
		d, ok := table.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("hall of fame: unknown species %q", name)
		}
		for _, ej := range entries {
			hof.Consider(d.Index, HallEntry{
				Trial:      ej.Trial,
				EntityID:   ej.EntityID,
				AliveTicks: ej.AliveTicks,
				Meals:      ej.Meals,
				Traits:     ej.Traits.Traits(),
			})
		}
	}
	return hof, nil
}
