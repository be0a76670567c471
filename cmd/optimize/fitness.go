package main

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/trophic/config"
	"github.com/pthm-cable/trophic/game"
	"github.com/pthm-cable/trophic/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params        *ParamVector
	trials        int
	maxTrialTicks int
	seeds         []int64
	jobs          int // concurrent seed runs (<= 0 = one per seed)
	baseConfig    *config.Config

	// Best run tracking
	mu             sync.Mutex
	bestFitness    float64
	bestHallOfFame *telemetry.HallOfFame
	lastSpread     float64 // stddev across seeds from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, trials, maxTrialTicks, jobs int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:        params,
		trials:        trials,
		maxTrialTicks: maxTrialTicks,
		seeds:         seeds,
		jobs:          jobs,
		baseConfig:    baseCfg,
		bestFitness:   math.Inf(1),
	}
}

// BestHallOfFame returns the hall of fame from the best evaluation.
func (fe *FitnessEvaluator) BestHallOfFame() *telemetry.HallOfFame {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestHallOfFame
}

// LastSpread returns the across-seed standard deviation of the most recent
// evaluation.
func (fe *FitnessEvaluator) LastSpread() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSpread
}

// runResult holds the results from a single simulation run.
type runResult struct {
	survival   float64 // mean consumer fittest alive ticks per trial
	hallOfFame *telemetry.HallOfFame
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the negated mean survival across seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	// Run seeds in parallel, at most fe.jobs at a time
	results := make([]runResult, len(fe.seeds))
	var eg errgroup.Group
	if fe.jobs > 0 {
		eg.SetLimit(fe.jobs)
	}
	for i, seed := range fe.seeds {
		eg.Go(func() error {
			r, err := fe.runSimulation(cfg, seed)
			results[i] = r
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		slog.Error("evaluation failed", "error", err)
		return math.Inf(1)
	}

	survival := make([]float64, len(results))
	best := 0
	for i, r := range results {
		survival[i] = r.survival
		if r.survival > results[best].survival {
			best = i
		}
	}
	mean, std := stat.MeanStdDev(survival, nil)
	if len(survival) < 2 {
		std = 0
	}
	fitness := -mean

	fe.mu.Lock()
	defer fe.mu.Unlock()
	fe.lastSpread = std
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
		fe.bestHallOfFame = results[best].hallOfFame
	}
	return fitness
}

// runSimulation runs one seed for the configured number of trials.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) (runResult, error) {
	var perTrial []float64
	g, err := game.NewGameWithOptions(game.Options{
		Config:         cfg,
		Seed:           seed,
		StepsPerUpdate: game.MaxStepsPerUpdate,
		MaxTrials:      fe.trials,
		TrialCallback: func(s telemetry.TrialSummary) {
			perTrial = append(perTrial, consumerSurvival(s))
		},
	})
	if err != nil {
		return runResult{}, fmt.Errorf("seed %d: %w", seed, err)
	}
	defer g.Unload()

	g.Begin()
	for !g.Done() {
		g.UpdateHeadless()
	}

	return runResult{
		survival:   stat.Mean(perTrial, nil),
		hallOfFame: g.HallOfFame(),
	}, nil
}

// consumerSurvival averages the fittest alive ticks of every consumer species
// that had members in the trial.
func consumerSurvival(s telemetry.TrialSummary) float64 {
	var sum float64
	var n int
	for _, sp := range s.Species {
		if sp.Tier == 0 || sp.Population == 0 {
			continue
		}
		sum += float64(sp.FittestAliveTicks)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// copyConfig returns a config that the evaluator may modify. Only scalar
// sections are tuned, so the shared species and population tables are safe
// to alias across goroutines.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	if fe.maxTrialTicks > 0 {
		cfg.Population.MaxTrialTicks = fe.maxTrialTicks
	}
	return &cfg
}
