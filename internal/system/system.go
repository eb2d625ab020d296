// Package system owns the particle arena: a fixed-size contiguous slice of
// particles inside a periodic box, plus the initialization and bookkeeping
// helpers that operate on it.
package system

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/argonmd/internal/box"
	"github.com/san-kum/argonmd/internal/vec"
)

// Physical constants in the reduced unit system of the simulation:
// Lennard-Jones sigma and epsilon are 1, lengths are in angstrom, the
// Boltzmann constant is in kJ/(mol K) and mass in g/mol.
const (
	MassArgon = 39.95
	Boltzmann = 0.0083144621

	// MinSeparation is the smallest allowed pair distance (one sigma) when
	// placing particles at initialization.
	MinSeparation = 1.0

	placementAttempts = 1000
)

// Particle is a point particle. Mass is uniform across the system and lives
// on System, not here, to keep the arena slice compact for the pair loop.
type Particle struct {
	Pos vec.Vec3
	Vel vec.Vec3
}

// System is the mutable simulation state: an ordered, fixed-count particle
// slice and the periodic box it lives in. The runner owns it exclusively;
// the integrator mutates it in place.
type System struct {
	Particles []Particle
	Box       box.Box
	Mass      float64
}

// PlacementError reports that random initialization could not find a
// non-overlapping position for a particle. It usually means the requested
// density is too high for the box.
type PlacementError struct {
	Index    int
	Attempts int
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("no non-overlapping position for particle %d after %d attempts (box too dense?)", e.Index, e.Attempts)
}

// New returns a system of n zero-valued particles in box b.
func New(n int, b box.Box) *System {
	return &System{
		Particles: make([]Particle, n),
		Box:       b,
		Mass:      MassArgon,
	}
}

// NewRandom builds a system of n argon atoms: positions drawn uniformly in
// the box, rejecting any candidate closer than MinSeparation to an already
// placed particle (minimum-image distance); velocities drawn from a
// zero-mean gaussian scaled to targetTemp, then shifted so the total
// momentum is exactly zero. The rng is injected so runs are reproducible.
func NewRandom(n int, b box.Box, targetTemp float64, rng *rand.Rand) (*System, error) {
	s := New(n, b)

	for i := range s.Particles {
		placed := false
		for attempt := 0; attempt < placementAttempts; attempt++ {
			cand := vec.Vec3{
				rng.Float64() * b.L,
				rng.Float64() * b.L,
				rng.Float64() * b.L,
			}
			if s.overlaps(cand, i, b) {
				continue
			}
			s.Particles[i].Pos = cand
			placed = true
			break
		}
		if !placed {
			return nil, &PlacementError{Index: i, Attempts: placementAttempts}
		}
	}

	scale := math.Sqrt(Boltzmann * targetTemp / s.Mass)
	for i := range s.Particles {
		s.Particles[i].Vel = vec.Vec3{
			rng.NormFloat64() * scale,
			rng.NormFloat64() * scale,
			rng.NormFloat64() * scale,
		}
	}
	s.ZeroMomentum()

	return s, nil
}

func (s *System) overlaps(cand vec.Vec3, upto int, b box.Box) bool {
	for j := 0; j < upto; j++ {
		if b.MinimumImage(cand, s.Particles[j].Pos).Norm() < MinSeparation {
			return true
		}
	}
	return false
}

func (s *System) N() int { return len(s.Particles) }

// KineticEnergy is sum over particles of m v^2 / 2.
func (s *System) KineticEnergy() float64 {
	ke := 0.0
	for i := range s.Particles {
		ke += 0.5 * s.Mass * s.Particles[i].Vel.Norm2()
	}
	return ke
}

// Momentum is the total linear momentum of the system.
func (s *System) Momentum() vec.Vec3 {
	var p vec.Vec3
	for i := range s.Particles {
		p = p.Add(s.Particles[i].Vel.Scale(s.Mass))
	}
	return p
}

// ZeroMomentum subtracts the mean velocity from every particle so the center
// of mass is at rest.
func (s *System) ZeroMomentum() {
	if len(s.Particles) == 0 {
		return
	}
	var mean vec.Vec3
	for i := range s.Particles {
		mean = mean.Add(s.Particles[i].Vel)
	}
	mean = mean.Scale(1 / float64(len(s.Particles)))
	for i := range s.Particles {
		s.Particles[i].Vel = s.Particles[i].Vel.Sub(mean)
	}
}

// IsValid reports whether every position and velocity is finite.
func (s *System) IsValid() bool {
	for i := range s.Particles {
		if !s.Particles[i].Pos.IsFinite() || !s.Particles[i].Vel.IsFinite() {
			return false
		}
	}
	return true
}

// Positions returns a copy of all particle positions in particle order.
func (s *System) Positions() []vec.Vec3 {
	out := make([]vec.Vec3, len(s.Particles))
	for i := range s.Particles {
		out[i] = s.Particles[i].Pos
	}
	return out
}

// Velocities returns a copy of all particle velocities in particle order.
func (s *System) Velocities() []vec.Vec3 {
	out := make([]vec.Vec3, len(s.Particles))
	for i := range s.Particles {
		out[i] = s.Particles[i].Vel
	}
	return out
}
