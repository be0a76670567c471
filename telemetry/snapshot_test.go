package telemetry

import (
	"path/filepath"
	"testing"

	"github.com/pthm-cable/trophic/components"
	"github.com/pthm-cable/trophic/config"
)

func TestSnapshotSaveLoad(t *testing.T) {
	dir := t.TempDir()
	traits := components.Traits{Speed: 5.5, Burst: 8, Recover: 2, Mass: 15, Vision: 150}
	ls := &LifetimeStats{SpawnTick: 0, Meals: 2, EnergyGained: 200000, PeakEnergy: 210000}

	snapshot := &Snapshot{
		Version:     SnapshotVersion,
		RNGSeed:     42,
		WorldWidth:  800,
		WorldHeight: 600,
		Trial:       3,
		Ticks:       812,
		Reason:      "extinct",
		Toggles:     config.TraitFlags{Speed: true, Vision: true},
		Fittest: []FittestState{
			{
				Species:    "Secondary",
				ID:         11,
				AliveTicks: 95,
				Status:     components.StatusStarved.String(),
				Traits:     NewTraitsJSON(traits),
				Lifetime:   ls.ToJSON(),
			},
		},
	}

	path, err := SaveSnapshot(snapshot, filepath.Join(dir, "snapshots"))
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if filepath.Base(path) != "rollover_0003.json" {
		t.Errorf("file name = %s", filepath.Base(path))
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if loaded.Trial != 3 || loaded.Ticks != 812 || loaded.RNGSeed != 42 || loaded.Reason != "extinct" {
		t.Errorf("header mismatch: %+v", loaded)
	}
	if loaded.Toggles != snapshot.Toggles {
		t.Errorf("toggles = %+v, want %+v", loaded.Toggles, snapshot.Toggles)
	}
	if len(loaded.Fittest) != 1 {
		t.Fatalf("got %d fittest entries", len(loaded.Fittest))
	}
	f := loaded.Fittest[0]
	if f.ID != 11 || f.AliveTicks != 95 || f.Traits.Traits() != traits {
		t.Errorf("fittest = %+v", f)
	}
	if f.Lifetime == nil || f.Lifetime.Meals != 2 {
		t.Errorf("lifetime = %+v", f.Lifetime)
	}
}

func TestLoadSnapshotMissing(t *testing.T) {
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNilLifetimeToJSON(t *testing.T) {
	var ls *LifetimeStats
	if ls.ToJSON() != nil {
		t.Error("nil stats should convert to nil")
	}
}
