// Package export renders trajectories into formats external tools consume.
package export

import (
	"fmt"
	"io"

	"github.com/san-kum/argonmd/internal/sim"
)

// WriteXYZ writes one extended-XYZ frame per snapshot: the atom count, a
// comment line carrying the step and box edge, then one "Ar x y z" line per
// atom. VMD and OVITO both read the result directly.
func WriteXYZ(w io.Writer, snapshots []sim.Snapshot, boxLength float64) error {
	for _, snap := range snapshots {
		if _, err := fmt.Fprintf(w, "%d\n", len(snap.Positions)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "step=%d box=%.6f pe=%.6f ke=%.6f temp=%.6f\n",
			snap.Step, boxLength, snap.PotentialEnergy, snap.KineticEnergy, snap.Temperature); err != nil {
			return err
		}
		for _, p := range snap.Positions {
			if _, err := fmt.Fprintf(w, "Ar %.6f %.6f %.6f\n", p[0], p[1], p[2]); err != nil {
				return err
			}
		}
	}
	return nil
}
