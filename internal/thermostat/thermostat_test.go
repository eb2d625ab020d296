package thermostat

import (
	"math"
	"testing"

	"github.com/san-kum/argonmd/internal/box"
	"github.com/san-kum/argonmd/internal/system"
	"github.com/san-kum/argonmd/internal/vec"
)

func TestTemperatureKnownVelocities(t *testing.T) {
	s := system.New(2, box.New(10.0))
	s.Particles[0].Vel = vec.Vec3{1, 0, 0}
	s.Particles[1].Vel = vec.Vec3{-1, 0, 0}

	// KE = 2 * (m/2) = m, so T = 2m / (6 kB).
	want := 2 * system.MassArgon / (6 * system.Boltzmann)
	if got := Temperature(s); math.Abs(got-want) > 1e-9 {
		t.Errorf("Temperature = %g, want %g", got, want)
	}
}

func TestTemperatureEmptySystem(t *testing.T) {
	s := system.New(0, box.New(10.0))
	if got := Temperature(s); got != 0 {
		t.Errorf("Temperature = %g, want 0", got)
	}
}

func TestBerendsenAtTargetIsIdentity(t *testing.T) {
	s := system.New(2, box.New(10.0))
	s.Particles[0].Vel = vec.Vec3{0.3, -0.1, 0.2}
	s.Particles[1].Vel = vec.Vec3{-0.3, 0.1, -0.2}

	current := Temperature(s)
	before := s.Velocities()

	Berendsen{Target: current, Tau: 0.1}.Rescale(s, current, 0.001)

	for i, v := range s.Velocities() {
		for k := 0; k < 3; k++ {
			if math.Abs(v[k]-before[i][k]) > 1e-14 {
				t.Errorf("velocity %d changed at target temperature: %v -> %v", i, before[i], v)
			}
		}
	}
}

func TestBerendsenZeroTemperatureNoop(t *testing.T) {
	s := system.New(3, box.New(10.0))

	Berendsen{Target: 87.3, Tau: 0.1}.Rescale(s, 0, 0.001)

	for i, v := range s.Velocities() {
		if v != (vec.Vec3{}) {
			t.Errorf("velocity %d = %v, want zero (no-op at T=0)", i, v)
		}
	}
	if !s.IsValid() {
		t.Error("system invalid after zero-temperature rescale")
	}
}

func TestBerendsenMovesTowardTarget(t *testing.T) {
	// v = 0.1 on two atoms puts the system near 16 K.
	tests := []struct {
		name   string
		target float64
	}{
		{"heating", 200.0},
		{"cooling", 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := system.New(2, box.New(10.0))
			s.Particles[0].Vel = vec.Vec3{0.1, 0, 0}
			s.Particles[1].Vel = vec.Vec3{-0.1, 0, 0}

			before := Temperature(s)
			Berendsen{Target: tt.target, Tau: 0.1}.Rescale(s, before, 0.01)
			after := Temperature(s)

			if tt.target > before && after <= before {
				t.Errorf("T went %g -> %g, want increase toward %g", before, after, tt.target)
			}
			if tt.target < before && after >= before {
				t.Errorf("T went %g -> %g, want decrease toward %g", before, after, tt.target)
			}
			// Berendsen relaxes, never overshoots in a single step.
			if tt.target > before && after > tt.target {
				t.Errorf("overshot target: %g > %g", after, tt.target)
			}
			if tt.target < before && after < tt.target {
				t.Errorf("overshot target: %g < %g", after, tt.target)
			}
		})
	}
}

func TestNoneIsIdentity(t *testing.T) {
	s := system.New(1, box.New(10.0))
	s.Particles[0].Vel = vec.Vec3{1, 2, 3}

	None{}.Rescale(s, 50.0, 0.01)

	if s.Particles[0].Vel != (vec.Vec3{1, 2, 3}) {
		t.Errorf("None modified velocities: %v", s.Particles[0].Vel)
	}
}
