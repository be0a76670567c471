// Package telemetry provides per-trial statistics, lineage records, bookmarks,
// and structured output.
package telemetry

// EventType identifies telemetry events.
type EventType uint8

const (
	EventSpawn EventType = iota
	EventMeal
	EventStarved
)

// Event represents a single telemetry event.
type Event struct {
	Type     EventType
	Tick     int64
	EntityID uint32
	Species  uint8

	// Meal only
	TargetID      uint32
	TargetSpecies uint8
	Amount        float64 // energy transferred
}

// NewSpawnEvent creates a spawn event.
func NewSpawnEvent(tick int64, id uint32, species uint8) Event {
	return Event{Type: EventSpawn, Tick: tick, EntityID: id, Species: species}
}

// NewMealEvent creates a meal event.
func NewMealEvent(tick int64, eaterID uint32, eaterSpecies uint8, targetID uint32, targetSpecies uint8, amount float64) Event {
	return Event{
		Type:          EventMeal,
		Tick:          tick,
		EntityID:      eaterID,
		Species:       eaterSpecies,
		TargetID:      targetID,
		TargetSpecies: targetSpecies,
		Amount:        amount,
	}
}

// NewStarvedEvent creates a starvation event.
func NewStarvedEvent(tick int64, id uint32, species uint8) Event {
	return Event{Type: EventStarved, Tick: tick, EntityID: id, Species: species}
}
