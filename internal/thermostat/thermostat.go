// Package thermostat controls the kinetic temperature of the particle
// system by velocity rescaling.
package thermostat

import (
	"math"

	"github.com/san-kum/argonmd/internal/system"
)

// Model rescales velocities toward a target temperature given the current
// instantaneous temperature and the timestep. Implementations mutate the
// system in place.
type Model interface {
	Rescale(s *system.System, current, dt float64)
}

// Temperature is the instantaneous kinetic temperature via equipartition,
// T = 2 KE / (3 N kB). The 3N degrees-of-freedom convention matches the
// reference trajectory generator; the three center-of-mass degrees removed
// at initialization are not subtracted.
func Temperature(s *system.System) float64 {
	n := s.N()
	if n == 0 {
		return 0
	}
	return 2 * s.KineticEnergy() / (3 * float64(n) * system.Boltzmann)
}

// Berendsen relaxes the temperature toward Target over the coupling time
// constant Tau by multiplying every velocity by
//
//	lambda = sqrt(1 + (dt/tau)(Target/current - 1))
type Berendsen struct {
	Target float64
	Tau    float64
}

func (b Berendsen) Rescale(s *system.System, current, dt float64) {
	// All velocities zero: lambda is undefined, leave the system at rest.
	if current == 0 {
		return
	}
	lambda := math.Sqrt(1 + dt/b.Tau*(b.Target/current-1))
	for i := range s.Particles {
		s.Particles[i].Vel = s.Particles[i].Vel.Scale(lambda)
	}
}

// None leaves velocities untouched (lambda forced to 1). Used for
// microcanonical runs and energy-conservation checks.
type None struct{}

func (None) Rescale(*system.System, float64, float64) {}
