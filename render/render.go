// Package render defines the boundary between the simulation and its
// presenters: per-tick entity samples, the summary panel, and the commands a
// presenter may send back.
package render

import (
	"github.com/pthm-cable/trophic/components"
	"github.com/pthm-cable/trophic/evolution"
)

// Sample is one entity as presented for a tick.
type Sample struct {
	ID      uint32
	Species uint8
	X, Y    float64
	Radius  float64 // mass
	Color   components.Color
	Vision  float64 // 0 unless alive
	Status  components.Status
}

// SpeciesSummary is one row of the summary panel.
type SpeciesSummary struct {
	Name    string
	Tier    int
	Alive   int
	Total   int
	Longest int32 // greatest AliveTicks among all members, dead included
}

// Panel is the per-tick summary.
type Panel struct {
	Species []SpeciesSummary
}

// Frame is everything a presenter needs for one tick.
type Frame struct {
	Tick    int64 // ticks within the current trial
	Total   int64 // ticks since the run began
	Trial   int
	Started bool
	Paused  bool
	Steps   int // ticks per update
	Width   float64
	Height  float64
	Samples []Sample
	Panel   Panel
	Toggles evolution.Toggles
}

// Reset empties the frame for reuse, keeping capacity.
func (f *Frame) Reset() {
	f.Samples = f.Samples[:0]
	f.Panel.Species = f.Panel.Species[:0]
}

// Sink receives a frame after every tick. The frame is reused by the
// simulation; a sink that keeps it past the call must copy what it needs.
type Sink interface {
	Present(f *Frame)
}

// CommandKind identifies an input command.
type CommandKind uint8

const (
	CommandBegin CommandKind = iota
	CommandToggle
	CommandPause
	CommandSpeed
)

// String returns the display name for a CommandKind.
func (k CommandKind) String() string {
	switch k {
	case CommandBegin:
		return "begin"
	case CommandToggle:
		return "toggle"
	case CommandPause:
		return "pause"
	case CommandSpeed:
		return "speed"
	default:
		return "unknown"
	}
}

// Command is one input from a presenter.
type Command struct {
	Kind    CommandKind
	Trait   evolution.Trait // CommandToggle
	Enabled bool            // CommandToggle
	Steps   int             // CommandSpeed: ticks per update
}

// Controls accepts commands from a presenter.
type Controls interface {
	Apply(cmd Command) error
}
