// Package box implements the periodic cubic cell: position wrapping and the
// minimum-image convention for pair displacements.
package box

import (
	"math"

	"github.com/san-kum/argonmd/internal/vec"
)

// Box is a cubic periodic cell with edge length L. The zero value is not
// usable; construct with New.
type Box struct {
	L float64
}

func New(l float64) Box {
	return Box{L: l}
}

// MinimumImage returns the displacement a-c adjusted to the nearest periodic
// image, so every component lies in (-L/2, L/2]. A separation of exactly
// half a box edge maps to +L/2.
func (b Box) MinimumImage(a, c vec.Vec3) vec.Vec3 {
	var d vec.Vec3
	for k := 0; k < 3; k++ {
		x := a[k] - c[k]
		d[k] = x - b.L*math.Ceil(x/b.L-0.5)
	}
	return d
}

// Wrap maps each coordinate into [0, L). Coordinates exactly on the upper
// boundary map to 0, and negative coordinates wrap around.
func (b Box) Wrap(p vec.Vec3) vec.Vec3 {
	var w vec.Vec3
	for k := 0; k < 3; k++ {
		x := math.Mod(p[k], b.L)
		if x < 0 {
			x += b.L
		}
		// Adding L to a tiny negative remainder can round up to exactly L.
		if x >= b.L {
			x = 0
		}
		w[k] = x
	}
	return w
}
