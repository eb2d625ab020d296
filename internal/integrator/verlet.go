// Package integrator advances the particle system in time with the
// velocity-Verlet scheme, coordinating the force field, the periodic box,
// and the thermostat each step.
package integrator

import (
	"errors"

	"github.com/san-kum/argonmd/internal/box"
	"github.com/san-kum/argonmd/internal/forcefield"
	"github.com/san-kum/argonmd/internal/system"
	"github.com/san-kum/argonmd/internal/thermostat"
	"github.com/san-kum/argonmd/internal/vec"
)

// ErrNotFinite is returned by Step when a position, velocity, or force
// becomes NaN or infinite, typically from particle overlap or a timestep
// too large for the configuration.
var ErrNotFinite = errors.New("non-finite state after integration step")

// VelocityVerlet drives the per-step cycle: position update with the cached
// forces F(t), boundary wrap, force recomputation at t+dt, velocity update
// with the average of both force evaluations, thermostat rescale. Forces
// from the end of one step are reused at the start of the next, so each
// step costs a single pair-loop evaluation.
type VelocityVerlet struct {
	pot    forcefield.Potential
	box    box.Box
	thermo thermostat.Model

	forces []vec.Vec3 // F(t); nil until primed
}

func NewVelocityVerlet(pot forcefield.Potential, b box.Box, thermo thermostat.Model) *VelocityVerlet {
	return &VelocityVerlet{pot: pot, box: b, thermo: thermo}
}

// Prime evaluates forces for the current configuration and caches them as
// F(t), returning the potential energy. Step calls it implicitly on first
// use; the runner calls it up front so the initial snapshot carries a
// potential energy.
func (vv *VelocityVerlet) Prime(s *system.System) float64 {
	var pe float64
	vv.forces, pe = vv.pot.Compute(s, vv.box)
	return pe
}

// Step advances the system by dt and returns the potential energy of the
// post-update configuration and the post-rescale temperature. A non-finite
// position, velocity, or force returns ErrNotFinite; the run cannot
// continue past it.
func (vv *VelocityVerlet) Step(s *system.System, dt float64) (pe, temp float64, err error) {
	if vv.forces == nil {
		vv.Prime(s)
	}

	invMass := 1 / s.Mass
	half := 0.5 * dt * dt * invMass

	for i := range s.Particles {
		p := &s.Particles[i]
		p.Pos = vv.box.Wrap(p.Pos.Add(p.Vel.Scale(dt)).Add(vv.forces[i].Scale(half)))
	}

	newForces, pe := vv.pot.Compute(s, vv.box)

	halfDt := 0.5 * dt * invMass
	for i := range s.Particles {
		p := &s.Particles[i]
		p.Vel = p.Vel.Add(vv.forces[i].Add(newForces[i]).Scale(halfDt))
	}

	if !finite(s, newForces) {
		return pe, 0, ErrNotFinite
	}

	// The rescale uses the pre-rescale temperature; the reported value is
	// what the system actually has afterwards.
	current := thermostat.Temperature(s)
	vv.thermo.Rescale(s, current, dt)
	temp = thermostat.Temperature(s)

	vv.forces = newForces
	return pe, temp, nil
}

func finite(s *system.System, forces []vec.Vec3) bool {
	if !s.IsValid() {
		return false
	}
	for i := range forces {
		if !forces[i].IsFinite() {
			return false
		}
	}
	return true
}
