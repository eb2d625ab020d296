// Package forcefield evaluates pair potentials over the particle system.
// The only model implemented is Lennard-Jones; Potential is the seam for
// plugging in other pair physics without touching the integrator.
package forcefield

import (
	"github.com/san-kum/argonmd/internal/box"
	"github.com/san-kum/argonmd/internal/system"
	"github.com/san-kum/argonmd/internal/vec"
)

// Potential computes per-particle forces and the total potential energy for
// a system in a periodic box.
type Potential interface {
	Compute(s *system.System, b box.Box) (forces []vec.Vec3, potential float64)
}

// LennardJones is the 12-6 pair potential
//
//	V(r) = 4 eps [ (sigma/r)^12 - (sigma/r)^6 ]
//
// with force magnitude F(r) = 24 eps / r [ 2 (sigma/r)^12 - (sigma/r)^6 ]
// directed along the minimum-image displacement. Cutoff 0 disables the
// cutoff and evaluates the full O(N^2) pair set. Workers > 1 shards the
// pair loop across goroutines for systems of at least parallelThreshold
// particles.
type LennardJones struct {
	Epsilon float64
	Sigma   float64
	Cutoff  float64
	Workers int
}

const parallelThreshold = 64

// NewLennardJones returns the reduced-unit argon parameterization
// (sigma = 1, epsilon = 1, no cutoff, serial evaluation).
func NewLennardJones() *LennardJones {
	return &LennardJones{Epsilon: 1.0, Sigma: 1.0}
}

func (lj *LennardJones) Compute(s *system.System, b box.Box) ([]vec.Vec3, float64) {
	n := s.N()
	if lj.Workers > 1 && n >= parallelThreshold {
		return lj.computeParallel(s, b)
	}

	forces := make([]vec.Vec3, n)
	pe := lj.accumulate(s, b, 0, 1, forces)
	return forces, pe
}

// accumulate runs the i<j pair loop for rows i = start, start+stride, ...
// adding into forces (both i and j slots, Newton's third law) and returning
// the partial potential energy. Iterating every unordered pair exactly once
// keeps the summed force and energy independent of pair order up to
// floating-point associativity.
func (lj *LennardJones) accumulate(s *system.System, b box.Box, start, stride int, forces []vec.Vec3) float64 {
	n := s.N()
	sigma2 := lj.Sigma * lj.Sigma
	cutoff2 := lj.Cutoff * lj.Cutoff
	pe := 0.0

	for i := start; i < n; i += stride {
		pi := s.Particles[i].Pos
		for j := i + 1; j < n; j++ {
			d := b.MinimumImage(pi, s.Particles[j].Pos)
			r2 := d.Norm2()
			if lj.Cutoff > 0 && r2 > cutoff2 {
				continue
			}

			sr2 := sigma2 / r2
			sr6 := sr2 * sr2 * sr2
			sr12 := sr6 * sr6

			pe += 4 * lj.Epsilon * (sr12 - sr6)

			// F(r)/r, so the force vector is just f * d.
			f := 24 * lj.Epsilon * (2*sr12 - sr6) / r2
			fv := d.Scale(f)
			forces[i] = forces[i].Add(fv)
			forces[j] = forces[j].Sub(fv)
		}
	}

	return pe
}

// computeParallel shards rows of the triangular pair loop across workers by
// stride, each worker writing into its own force buffer and partial energy
// slot; buffers are merged after all workers finish, so there is no shared
// mutable state inside the loop.
func (lj *LennardJones) computeParallel(s *system.System, b box.Box) ([]vec.Vec3, float64) {
	n := s.N()
	workers := lj.Workers

	partials := make([][]vec.Vec3, workers)
	energies := make([]float64, workers)

	done := make(chan int, workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			buf := make([]vec.Vec3, n)
			energies[w] = lj.accumulate(s, b, w, workers, buf)
			partials[w] = buf
			done <- w
		}(w)
	}
	for w := 0; w < workers; w++ {
		<-done
	}

	forces := partials[0]
	pe := energies[0]
	for w := 1; w < workers; w++ {
		for i := range forces {
			forces[i] = forces[i].Add(partials[w][i])
		}
		pe += energies[w]
	}

	return forces, pe
}

// PairEnergy is the closed-form Lennard-Jones potential at separation r.
func (lj *LennardJones) PairEnergy(r float64) float64 {
	sr2 := lj.Sigma * lj.Sigma / (r * r)
	sr6 := sr2 * sr2 * sr2
	return 4 * lj.Epsilon * (sr6*sr6 - sr6)
}
