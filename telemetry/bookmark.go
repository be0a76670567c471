package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkLongestTrial    BookmarkType = "longest_trial"
	BookmarkFlashExtinction BookmarkType = "flash_extinction"
	BookmarkSurvivalRecord  BookmarkType = "survival_record"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Trial       int          `csv:"trial"`
	Ticks       int64        `csv:"ticks"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"trial", b.Trial,
		"ticks", b.Ticks,
		"description", b.Description,
	)
}

// minHistory is the number of finished trials needed before comparisons.
const minHistory = 3

// BookmarkDetector flags notable trials against the run so far.
type BookmarkDetector struct {
	// Rolling history of trial lengths (circular buffer)
	history     []int64
	historySize int
	historyIdx  int
	historyFull bool

	seen        int
	longest     int64
	bestSurvive map[string]int32 // species -> greatest fittest alive ticks so far
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < minHistory {
		historySize = minHistory
	}
	return &BookmarkDetector{
		history:     make([]int64, historySize),
		historySize: historySize,
		bestSurvive: make(map[string]int32),
	}
}

// Check analyzes a finished trial and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(t TrialSummary) []Bookmark {
	var bookmarks []Bookmark

	if bd.seen >= minHistory {
		if b := bd.checkLongestTrial(t); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkFlashExtinction(t); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		bookmarks = append(bookmarks, bd.checkSurvivalRecords(t)...)
	}

	bd.addToHistory(t.Ticks)
	bd.seen++
	if t.Ticks > bd.longest {
		bd.longest = t.Ticks
	}
	for _, s := range t.Species {
		if s.Population > 0 && s.FittestAliveTicks > bd.bestSurvive[s.Species] {
			bd.bestSurvive[s.Species] = s.FittestAliveTicks
		}
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(ticks int64) {
	bd.history[bd.historyIdx] = ticks
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []int64 {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkLongestTrial(t TrialSummary) *Bookmark {
	if t.Ticks <= bd.longest {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkLongestTrial,
		Trial:       t.Trial,
		Ticks:       t.Ticks,
		Description: fmt.Sprintf("Trial lasted %d ticks, previous record %d", t.Ticks, bd.longest),
	}
}

func (bd *BookmarkDetector) checkFlashExtinction(t TrialSummary) *Bookmark {
	history := bd.getHistory()
	var total int64
	for _, h := range history {
		total += h
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 || float64(t.Ticks) >= avg*0.25 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkFlashExtinction,
		Trial:       t.Trial,
		Ticks:       t.Ticks,
		Description: fmt.Sprintf("Consumers died out after %d ticks, rolling average %.0f", t.Ticks, avg),
	}
}

func (bd *BookmarkDetector) checkSurvivalRecords(t TrialSummary) []Bookmark {
	var out []Bookmark
	for _, s := range t.Species {
		if s.Tier == 0 || s.Population == 0 {
			continue
		}
		prev, ok := bd.bestSurvive[s.Species]
		if !ok || s.FittestAliveTicks <= prev {
			continue
		}
		out = append(out, Bookmark{
			Type:        BookmarkSurvivalRecord,
			Trial:       t.Trial,
			Ticks:       t.Ticks,
			Description: fmt.Sprintf("%s survived %d ticks, previous best %d", s.Species, s.FittestAliveTicks, prev),
		})
	}
	return out
}
