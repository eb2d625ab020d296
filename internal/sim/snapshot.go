package sim

import "github.com/san-kum/argonmd/internal/vec"

// Snapshot is a read-only capture of the system at one step. Positions and
// velocities are copies; a snapshot is never mutated after creation.
type Snapshot struct {
	Step            int        `json:"step"`
	Positions       []vec.Vec3 `json:"positions"`
	Velocities      []vec.Vec3 `json:"velocities"`
	PotentialEnergy float64    `json:"potential_energy"`
	KineticEnergy   float64    `json:"kinetic_energy"`
	Temperature     float64    `json:"temperature"`
}

// TotalEnergy is the sum of potential and kinetic energy.
func (s Snapshot) TotalEnergy() float64 {
	return s.PotentialEnergy + s.KineticEnergy
}

// Result collects the ordered snapshot sequence of a completed run.
type Result struct {
	Snapshots   []Snapshot
	StepsTaken  int
	EnergyDrift float64
}
