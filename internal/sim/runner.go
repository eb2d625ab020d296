package sim

import (
	"context"
	"math"
	"math/rand"

	"github.com/san-kum/argonmd/internal/box"
	"github.com/san-kum/argonmd/internal/forcefield"
	"github.com/san-kum/argonmd/internal/integrator"
	"github.com/san-kum/argonmd/internal/system"
	"github.com/san-kum/argonmd/internal/thermostat"
)

// Observer is notified after every completed step. Observers that also
// implement SnapshotObserver additionally receive each sampled snapshot as
// it is recorded.
type Observer interface {
	OnStep(step, total int, pe, temp float64)
}

// SnapshotObserver receives sampled snapshots in step order.
type SnapshotObserver interface {
	OnSnapshot(s Snapshot)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(step, total int, pe, temp float64)

func (f ObserverFunc) OnStep(step, total int, pe, temp float64) { f(step, total, pe, temp) }

// Runner owns the particle system for the duration of a run and drives the
// integrator strictly sequentially: each step completes, including the
// thermostat rescale, before the next begins.
type Runner struct {
	cfg       Config
	thermo    thermostat.Model
	observers []Observer
}

func NewRunner(cfg Config) *Runner {
	return &Runner{cfg: cfg}
}

func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// SetThermostat overrides the Berendsen thermostat built from the config,
// e.g. with thermostat.None for microcanonical runs.
func (r *Runner) SetThermostat(m thermostat.Model) { r.thermo = m }

// Run validates the config, builds a fresh randomized system, and integrates
// it for the configured number of steps. Configuration, placement, and
// numeric failures are all fatal and typed; on numeric failure the returned
// result still holds the snapshots recorded up to the last good step.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(r.cfg.Seed))
	sys, err := system.NewRandom(r.cfg.NumAtoms, box.New(r.cfg.BoxLength), r.cfg.TargetTemp, rng)
	if err != nil {
		return nil, err
	}

	return r.RunSystem(ctx, sys)
}

// RunSystem integrates a caller-prepared system. The runner takes exclusive
// ownership of sys for the duration of the call.
func (r *Runner) RunSystem(ctx context.Context, sys *system.System) (*Result, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}

	// A zero-step run is a valid no-op: no force evaluation, no snapshots.
	if r.cfg.TotalSteps == 0 {
		return &Result{Snapshots: []Snapshot{}}, nil
	}

	lj := forcefield.NewLennardJones()
	lj.Cutoff = r.cfg.Cutoff
	lj.Workers = r.cfg.Workers

	thermo := r.thermo
	if thermo == nil {
		thermo = thermostat.Berendsen{Target: r.cfg.TargetTemp, Tau: r.cfg.Tau}
	}

	vv := integrator.NewVelocityVerlet(lj, sys.Box, thermo)

	result := &Result{
		Snapshots: make([]Snapshot, 0, r.cfg.TotalSteps/r.cfg.SnapshotInterval+2),
	}

	pe := vv.Prime(sys)
	r.record(result, sys, 0, pe)

	for step := 1; step <= r.cfg.TotalSteps; step++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		pe, temp, err := vv.Step(sys, r.cfg.Dt)
		if err != nil {
			return result, &NumericError{LastGoodStep: step - 1}
		}
		result.StepsTaken++

		for _, o := range r.observers {
			o.OnStep(step, r.cfg.TotalSteps, pe, temp)
		}

		if step%r.cfg.SnapshotInterval == 0 || step == r.cfg.TotalSteps {
			r.record(result, sys, step, pe)
		}
	}

	first := result.Snapshots[0].TotalEnergy()
	last := result.Snapshots[len(result.Snapshots)-1].TotalEnergy()
	if first != 0 {
		result.EnergyDrift = math.Abs(last-first) / math.Abs(first)
	}

	return result, nil
}

func (r *Runner) record(result *Result, sys *system.System, step int, pe float64) {
	snap := Snapshot{
		Step:            step,
		Positions:       sys.Positions(),
		Velocities:      sys.Velocities(),
		PotentialEnergy: pe,
		KineticEnergy:   sys.KineticEnergy(),
		Temperature:     thermostat.Temperature(sys),
	}
	result.Snapshots = append(result.Snapshots, snap)

	for _, o := range r.observers {
		if so, ok := o.(SnapshotObserver); ok {
			so.OnSnapshot(snap)
		}
	}
}
