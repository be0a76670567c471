// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Energy     EnergyConfig     `yaml:"energy"`
	Behavior   BehaviorConfig   `yaml:"behavior"`
	Metabolism MetabolismConfig `yaml:"metabolism"`
	Population PopulationConfig `yaml:"population"`
	Mutation   MutationConfig   `yaml:"mutation"`
	Species    []SpeciesConfig  `yaml:"species"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Server     ServerConfig     `yaml:"server"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for window mode.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds the toroidal plane dimensions.
// Window mode sizes the world from the screen when width/height are 0.
type WorldConfig struct {
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	SpawnMargin float64 `yaml:"spawn_margin"` // fresh entities spawn at least this far from the edges
}

// EnergyConfig holds energy economics shared by every species.
type EnergyConfig struct {
	PerMass   float64 `yaml:"per_mass"`   // initial energy = mass * per_mass (Joules)
	EatRadius float64 `yaml:"eat_radius"` // max Euclidean distance for a bite
}

// BehaviorConfig holds sensing and steering parameters.
type BehaviorConfig struct {
	HungerThreshold   float64 `yaml:"hunger_threshold"`   // forage/feed when energy <= this * initial
	JitterMargin      float64 `yaml:"jitter_margin"`      // radians, symmetric
	PursuitBlend      float64 `yaml:"pursuit_blend"`      // fraction of the bearing error closed per sighting
	StarvingFraction  float64 `yaml:"starving_fraction"`  // below this * initial, threats are ignored
	BurstMultiplier   float64 `yaml:"burst_multiplier"`   // speed factor while bursting
	RecoverMultiplier float64 `yaml:"recover_multiplier"` // speed factor while recovering
	GridCellSize      float64 `yaml:"grid_cell_size"`     // spatial index cell size
}

// MetabolismConfig holds the per-tick energy cost model.
type MetabolismConfig struct {
	MotionCoeff   float64 `yaml:"motion_coeff"` // cost = coeff * mass * (speed + offset)^2
	SpeedOffset   float64 `yaml:"speed_offset"`
	IdleThreshold float64 `yaml:"idle_threshold"` // speed at or below counts as still
	IdleCoeff     float64 `yaml:"idle_coeff"`     // idle cost = coeff * mass^2
}

// PopulationConfig holds per-trial population sizing.
type PopulationConfig struct {
	Counts        map[string]int `yaml:"counts"`          // species name -> individuals per trial
	MaxTrialTicks int            `yaml:"max_trial_ticks"` // force a rollover after N ticks (0 = unlimited)
}

// TraitValues holds one float per heritable trait.
type TraitValues struct {
	Speed   float64 `yaml:"speed"`
	Burst   float64 `yaml:"burst"`
	Recover float64 `yaml:"recover"`
	Mass    float64 `yaml:"mass"`
	Vision  float64 `yaml:"vision"`
}

// TraitFlags holds one switch per heritable trait.
type TraitFlags struct {
	Speed   bool `yaml:"speed"`
	Burst   bool `yaml:"burst"`
	Recover bool `yaml:"recover"`
	Mass    bool `yaml:"mass"`
	Vision  bool `yaml:"vision"`
}

// MutationConfig holds the mutation operator parameters.
type MutationConfig struct {
	Ranges  TraitValues `yaml:"ranges"`  // symmetric uniform noise half-widths
	Enabled TraitFlags  `yaml:"enabled"` // initial toggle state
	Clamp   bool        `yaml:"clamp"`   // apply Floors after mutation
	Floors  TraitValues `yaml:"floors"`
}

// SpeciesConfig describes one species of the food chain.
type SpeciesConfig struct {
	Name   string      `yaml:"name"`
	Color  [3]uint8    `yaml:"color,flow"`
	Diet   []string    `yaml:"diet,flow"`
	Tier   int         `yaml:"tier"`
	Traits TraitValues `yaml:"traits,flow"` // founder traits
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	LogTrials  bool `yaml:"log_trials"`
	PerfWindow int  `yaml:"perf_window"`
}

// ServerConfig holds the websocket render sink settings.
type ServerConfig struct {
	Addr          string `yaml:"addr"`
	Path          string `yaml:"path"`
	FrameInterval int    `yaml:"frame_interval"` // broadcast every Nth tick
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	WorldW       float64        // effective world width
	WorldH       float64        // effective world height
	SpeciesIndex map[string]int // name -> index into Species
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	// World dimensions default to screen size if not specified
	worldW := c.World.Width
	if worldW == 0 {
		worldW = c.Screen.Width
	}
	worldH := c.World.Height
	if worldH == 0 {
		worldH = c.Screen.Height
	}
	c.Derived.WorldW = float64(worldW)
	c.Derived.WorldH = float64(worldH)

	c.Derived.SpeciesIndex = make(map[string]int, len(c.Species))
	for i, sp := range c.Species {
		c.Derived.SpeciesIndex[sp.Name] = i
	}
}

// Validation errors.
var (
	ErrNoSpecies        = errors.New("no species defined")
	ErrDuplicateSpecies = errors.New("duplicate species name")
	ErrUnknownSpecies   = errors.New("unknown species")
	ErrBadWorld         = errors.New("world dimensions must be positive")
	ErrBadPopulation    = errors.New("population count must not be negative")
)

// Validate checks cross-references between sections.
func (c *Config) Validate() error {
	if len(c.Species) == 0 {
		return ErrNoSpecies
	}
	if c.Derived.WorldW <= 0 || c.Derived.WorldH <= 0 {
		return fmt.Errorf("%w: %vx%v", ErrBadWorld, c.Derived.WorldW, c.Derived.WorldH)
	}

	seen := make(map[string]bool, len(c.Species))
	for _, sp := range c.Species {
		if seen[sp.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateSpecies, sp.Name)
		}
		seen[sp.Name] = true
	}
	for _, sp := range c.Species {
		for _, food := range sp.Diet {
			if !seen[food] {
				return fmt.Errorf("%w: %q in diet of %q", ErrUnknownSpecies, food, sp.Name)
			}
		}
	}
	for name, n := range c.Population.Counts {
		if !seen[name] {
			return fmt.Errorf("%w: %q in population counts", ErrUnknownSpecies, name)
		}
		if n < 0 {
			return fmt.Errorf("%w: %q has %d", ErrBadPopulation, name, n)
		}
	}
	return nil
}

// PopulationOf returns the configured per-trial count for a species (0 if absent).
func (c *Config) PopulationOf(name string) int {
	return c.Population.Counts[name]
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
