package telemetry

// LifetimeStats tracks per-entity statistics over its lifetime.
type LifetimeStats struct {
	SpawnTick    int64
	Species      uint8
	Meals        int
	EnergyGained float64
	PeakEnergy   float64
}

// LifetimeTracker manages per-entity lifetime statistics for the current trial.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Record applies an event to the entities it names.
func (lt *LifetimeTracker) Record(ev Event) {
	switch ev.Type {
	case EventSpawn:
		lt.stats[ev.EntityID] = &LifetimeStats{SpawnTick: ev.Tick, Species: ev.Species}
	case EventMeal:
		if s := lt.stats[ev.EntityID]; s != nil {
			s.Meals++
			s.EnergyGained += ev.Amount
		}
	}
}

// Get returns the lifetime stats for an entity, or nil if not found.
func (lt *LifetimeTracker) Get(entityID uint32) *LifetimeStats {
	return lt.stats[entityID]
}

// UpdateEnergy tracks peak energy.
func (lt *LifetimeTracker) UpdateEnergy(entityID uint32, energy float64) {
	if s := lt.stats[entityID]; s != nil && energy > s.PeakEnergy {
		s.PeakEnergy = energy
	}
}

// Reset forgets every entity. Called at rollover.
func (lt *LifetimeTracker) Reset() {
	clear(lt.stats)
}

// Count returns the number of tracked entities.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}
