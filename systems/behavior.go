package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/trophic/components"
	"github.com/pthm-cable/trophic/config"
	"github.com/pthm-cable/trophic/species"
)

// Agent bundles live component pointers for one entity during a tick.
// Pointers stay valid as long as no entity is created or removed, which the
// scheduler guarantees between rollovers.
type Agent struct {
	Org    *components.Organism
	Pos    *components.Position
	Motion *components.Motion
	Traits *components.Traits
	Energy *components.Energy
	Pace   *components.Pace
	Look   *components.Appearance
}

// Steering implements the sense-and-steer phase.
type Steering struct {
	table *species.Table
	rng   *rand.Rand

	hunger      float64
	jitter      float64
	blend       float64
	starving    float64
	burstMult   float64
	recoverMult float64

	seen []int // reused query buffer
}

// NewSteering creates the steering system from the behavior config.
func NewSteering(cfg *config.Config, table *species.Table, rng *rand.Rand) *Steering {
	b := cfg.Behavior
	return &Steering{
		table:       table,
		rng:         rng,
		hunger:      b.HungerThreshold,
		jitter:      b.JitterMargin,
		blend:       b.PursuitBlend,
		starving:    b.StarvingFraction,
		burstMult:   b.BurstMultiplier,
		recoverMult: b.RecoverMultiplier,
	}
}

// Check updates heading and speed for the agent at view index idx.
// Hungry agents turn toward visible food; non-starving agents flee visible
// higher-tier threats. Either stimulus starts a burst.
func (s *Steering) Check(idx int, a *Agent, view *View) {
	e := a.Energy
	if !e.Alive() {
		a.Motion.Speed = 0
		return
	}

	// Tick-parity random walk
	if e.AliveTicks%2 == 0 {
		a.Motion.Heading = NormalizeAngle(a.Motion.Heading + uniform(s.rng, s.jitter))
	}

	me := view.At(idx)
	desc := s.table.Get(me.Species)
	s.seen = view.Within(s.seen, me.X, me.Y, a.Traits.Vision, idx)

	burst := false

	if len(desc.Diet) > 0 && e.Value <= s.hunger*e.Initial {
		for _, j := range s.seen {
			food := view.At(j)
			if !desc.Eats(food.Species) || food.Status == components.StatusEaten {
				continue
			}
			bearing := AngleBetween(me.X, me.Y, food.X, food.Y)
			// Linear blend on [0, 2π): near the 0 seam this turns the long way.
			a.Motion.Heading = NormalizeAngle(a.Motion.Heading + (bearing-a.Motion.Heading)*s.blend)
			if food.Speed > 0 {
				burst = true
			}
		}
	}

	if e.Value > s.starving*e.Initial {
		var sum float64
		threats := 0
		for _, j := range s.seen {
			other := view.At(j)
			if other.Status != components.StatusAlive || other.Tier <= me.Tier {
				continue
			}
			sum += AngleBetween(me.X, me.Y, other.X, other.Y)
			threats++
		}
		if threats > 0 {
			a.Motion.Heading = NormalizeAngle(math.Pi - sum/float64(threats))
			burst = true
		}
	}

	s.advancePace(burst, a)
}

// advancePace runs one step of the cruise/burst/recover state machine and
// sets the tick's speed. A burst cannot start while recovering.
func (s *Steering) advancePace(trigger bool, a *Agent) {
	p := a.Pace
	base := a.Traits.Speed

	if trigger && p.Mode == components.PaceCruise {
		p.Mode = components.PaceBurst
	}

	switch p.Mode {
	case components.PaceBurst:
		a.Motion.Speed = base * s.burstMult
		p.BurstTicks++
		if float64(p.BurstTicks) > a.Traits.Burst {
			p.Mode = components.PaceRecover
		}
	case components.PaceRecover:
		a.Motion.Speed = base * s.recoverMult
		p.RecoverTicks++
		if float64(p.RecoverTicks) > a.Traits.Recover {
			p.BurstTicks = 0
			p.RecoverTicks = 0
			p.Mode = components.PaceCruise
			a.Motion.Speed = base
		}
	default:
		a.Motion.Speed = base
	}
}
