package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/trophic/components"
	"github.com/pthm-cable/trophic/config"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot records a rollover: the trial that ended and the representatives
// the next trial is bred from.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	WorldWidth  float64 `json:"world_width"`
	WorldHeight float64 `json:"world_height"`

	Trial  int    `json:"trial"`
	Ticks  int64  `json:"ticks"`
	Reason string `json:"reason"`

	Toggles config.TraitFlags `json:"toggles"`

	Fittest []FittestState `json:"fittest"`
}

// FittestState holds one species' selected representative.
type FittestState struct {
	Species    string     `json:"species"`
	ID         uint32     `json:"id"`
	AliveTicks int32      `json:"alive_ticks"`
	Status     string     `json:"status"`
	Traits     TraitsJSON `json:"traits"`

	Lifetime *LifetimeStatsJSON `json:"lifetime,omitempty"`
}

// TraitsJSON is the JSON-serializable form of components.Traits.
type TraitsJSON struct {
	Speed   float64 `json:"speed"`
	Burst   float64 `json:"burst"`
	Recover float64 `json:"recover"`
	Mass    float64 `json:"mass"`
	Vision  float64 `json:"vision"`
}

// NewTraitsJSON converts traits to their JSON form.
func NewTraitsJSON(t components.Traits) TraitsJSON {
	return TraitsJSON{Speed: t.Speed, Burst: t.Burst, Recover: t.Recover, Mass: t.Mass, Vision: t.Vision}
}

// Traits converts back to the component form.
func (t TraitsJSON) Traits() components.Traits {
	return components.Traits{Speed: t.Speed, Burst: t.Burst, Recover: t.Recover, Mass: t.Mass, Vision: t.Vision}
}

// LifetimeStatsJSON is the JSON-serializable form of LifetimeStats.
type LifetimeStatsJSON struct {
	SpawnTick    int64   `json:"spawn_tick"`
	Meals        int     `json:"meals"`
	EnergyGained float64 `json:"energy_gained"`
	PeakEnergy   float64 `json:"peak_energy"`
}

// ToJSON converts LifetimeStats to its JSON form.
func (ls *LifetimeStats) ToJSON() *LifetimeStatsJSON {
	if ls == nil {
		return nil
	}
	return &LifetimeStatsJSON{
		SpawnTick:    ls.SpawnTick,
		Meals:        ls.Meals,
		EnergyGained: ls.EnergyGained,
		PeakEnergy:   ls.PeakEnergy,
	}
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("rollover_%04d.json", snapshot.Trial))

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
