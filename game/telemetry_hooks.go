package game

import (
	"log/slog"

	"github.com/pthm-cable/trophic/evolution"
	"github.com/pthm-cable/trophic/telemetry"
)

// recordEvent feeds an event to every telemetry consumer.
func (g *Game) recordEvent(ev telemetry.Event) {
	g.collector.Record(ev)
	g.lifetimeTracker.Record(ev)
}

// recordTrial logs and persists a finished trial: the summary row set,
// bookmarks, hall of fame entries and the rollover snapshot.
func (g *Game) recordTrial(summary telemetry.TrialSummary, broods []evolution.Brood) {
	if g.logStats || g.cfg.Telemetry.LogTrials {
		summary.LogStats()
	}
	if g.trialCallback != nil {
		g.trialCallback(summary)
	}
	if err := g.outputManager.WriteTrial(summary); err != nil {
		slog.Error("failed to write trial", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(summary) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}

	for _, b := range broods {
		if !b.HasFittest {
			continue
		}
		entry := telemetry.HallEntry{
			Trial:      g.trial,
			EntityID:   b.Fittest.ID,
			AliveTicks: b.Fittest.AliveTicks,
			Traits:     b.Fittest.Traits,
		}
		if ls := g.lifetimeTracker.Get(b.Fittest.ID); ls != nil {
			entry.Meals = ls.Meals
		}
		g.hallOfFame.Consider(b.Species, entry)
	}

	if dir := g.outputManager.SnapshotDir(); dir != "" {
		g.saveSnapshot(g.createSnapshot(summary, broods), dir)
	}
}

// saveSnapshot writes a snapshot to disk.
func (g *Game) saveSnapshot(snapshot *telemetry.Snapshot, dir string) {
	path, err := telemetry.SaveSnapshot(snapshot, dir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Debug("snapshot saved", "path", path, "trial", snapshot.Trial)
}

// createSnapshot records the fittest representatives the next trial is bred
// from.
func (g *Game) createSnapshot(summary telemetry.TrialSummary, broods []evolution.Brood) *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:     telemetry.SnapshotVersion,
		RNGSeed:     g.seed,
		WorldWidth:  g.width,
		WorldHeight: g.height,
		Trial:       summary.Trial,
		Ticks:       summary.Ticks,
		Reason:      summary.Reason,
		Toggles:     g.engine.Toggles().Flags(),
	}

	for _, b := range broods {
		if !b.HasFittest {
			continue
		}
		state := telemetry.FittestState{
			Species:    g.table.Get(b.Species).Name,
			ID:         b.Fittest.ID,
			AliveTicks: b.Fittest.AliveTicks,
			Traits:     telemetry.NewTraitsJSON(b.Fittest.Traits),
			Lifetime:   g.lifetimeTracker.Get(b.Fittest.ID).ToJSON(),
		}
		for i := range g.agents {
			if g.agents[i].Org.ID == b.Fittest.ID {
				state.Status = g.agents[i].Energy.Status.String()
				break
			}
		}
		snapshot.Fittest = append(snapshot.Fittest, state)
	}
	return snapshot
}

// flushPerf logs and writes phase timing once per perf window.
func (g *Game) flushPerf() {
	window := int64(g.cfg.Telemetry.PerfWindow)
	if window <= 0 || g.total%window != 0 {
		return
	}
	stats := g.perfCollector.Stats()
	if g.logStats {
		stats.LogStats()
	}
	if err := g.outputManager.WritePerf(stats, g.trial, g.total); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}
