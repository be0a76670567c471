package telemetry

import (
	"testing"

	"github.com/pthm-cable/trophic/components"
)

func TestCollectorFlush(t *testing.T) {
	table := testTable(t)
	producer := mustIndex(t, table, "Producer")
	primary := mustIndex(t, table, "Primary")

	c := NewCollector(table)
	c.Record(NewMealEvent(3, 6, primary, 1, producer, 50000))
	c.Record(NewMealEvent(8, 6, primary, 2, producer, 50000))
	c.Record(NewStarvedEvent(10, 5, primary))

	if got := c.Meals(primary); got != 2 {
		t.Errorf("Meals = %d, want 2", got)
	}

	members := make([][]Member, table.Len())
	members[producer] = []Member{
		{ID: 1, Status: components.StatusEaten, Traits: table.Get(producer).Founder},
		{ID: 2, Status: components.StatusEaten, Traits: table.Get(producer).Founder},
		{ID: 3, Status: components.StatusAlive, Traits: table.Get(producer).Founder},
	}
	members[primary] = []Member{
		{ID: 5, AliveTicks: 10, Status: components.StatusStarved, Traits: components.Traits{Speed: 4}},
		{ID: 6, AliveTicks: 30, Status: components.StatusStarved, Traits: components.Traits{Speed: 6}},
		{ID: 7, AliveTicks: 30, Status: components.StatusStarved, Traits: components.Traits{Speed: 5}},
	}

	summary := c.Flush(TrialInfo{Trial: 4, Ticks: 31, Reason: "extinct"}, members)
	if summary.Trial != 4 || summary.Ticks != 31 || summary.Reason != "extinct" {
		t.Errorf("unexpected header: %+v", summary)
	}
	if len(summary.Species) != table.Len() {
		t.Fatalf("got %d species rows, want %d", len(summary.Species), table.Len())
	}

	p := summary.Species[producer]
	if p.Population != 3 || p.AliveAtEnd != 1 || p.Eaten != 2 {
		t.Errorf("producer row = %+v", p)
	}

	s := summary.Species[primary]
	if s.Species != "Primary" || s.Tier != 1 {
		t.Errorf("primary row identity = %q tier %d", s.Species, s.Tier)
	}
	if s.Meals != 2 || s.Starved != 1 || s.EnergyGained != 100000 {
		t.Errorf("primary counters = meals %d starved %d gained %v", s.Meals, s.Starved, s.EnergyGained)
	}
	if s.FittestID != 6 || s.FittestAliveTicks != 30 {
		t.Errorf("fittest = %d (%d ticks), want 6 (30 ticks)", s.FittestID, s.FittestAliveTicks)
	}
	if s.MedianAliveTicks != 30 {
		t.Errorf("median = %v, want 30", s.MedianAliveTicks)
	}
	if s.SpeedMean != 5 || s.Traits.Mean.Speed != 5 {
		t.Errorf("speed mean = %v, want 5", s.SpeedMean)
	}
	if s.AliveAtEnd != 0 {
		t.Errorf("AliveAtEnd = %d, want 0", s.AliveAtEnd)
	}
}

func TestCollectorFlushResets(t *testing.T) {
	table := testTable(t)
	primary := mustIndex(t, table, "Primary")

	c := NewCollector(table)
	c.Record(NewStarvedEvent(1, 9, primary))
	c.Flush(TrialInfo{Trial: 0}, nil)

	if got := c.Meals(primary); got != 0 {
		t.Errorf("Meals after flush = %d, want 0", got)
	}
	summary := c.Flush(TrialInfo{Trial: 1}, nil)
	if summary.Species[primary].Starved != 0 {
		t.Errorf("Starved after flush = %d, want 0", summary.Species[primary].Starved)
	}
	if summary.Species[primary].FittestID != 0 {
		t.Errorf("empty population should have no fittest")
	}
}

func TestLifetimeTracker(t *testing.T) {
	lt := NewLifetimeTracker()
	lt.Record(NewSpawnEvent(0, 1, 1))
	lt.Record(NewMealEvent(5, 1, 1, 9, 0, 50000))
	lt.Record(NewMealEvent(5, 2, 1, 9, 0, 50000)) // unknown eater
	lt.UpdateEnergy(1, 120000)
	lt.UpdateEnergy(1, 90000)

	s := lt.Get(1)
	if s == nil {
		t.Fatal("expected stats for entity 1")
	}
	if s.Meals != 1 || s.EnergyGained != 50000 || s.PeakEnergy != 120000 {
		t.Errorf("stats = %+v", s)
	}
	if lt.Get(2) != nil {
		t.Error("meal for unknown entity should not create stats")
	}

	lt.Reset()
	if lt.Count() != 0 {
		t.Errorf("Count after Reset = %d", lt.Count())
	}
}
