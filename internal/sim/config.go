package sim

// Config holds the immutable parameters of one run. BoxLength is in
// angstrom; the remaining physical quantities are in the reduced unit
// system documented in package system.
type Config struct {
	BoxLength        float64
	NumAtoms         int
	Dt               float64
	TotalSteps       int
	SnapshotInterval int
	TargetTemp       float64
	Tau              float64
	Cutoff           float64
	Seed             int64
	Workers          int
}

const (
	DefaultTargetTemp = 87.3
	DefaultTau        = 0.1
)

// Validate checks every run parameter, returning a *ConfigError naming the
// first offending field. TotalSteps == 0 is allowed and runs as a no-op.
func (c Config) Validate() error {
	switch {
	case c.BoxLength <= 0:
		return &ConfigError{Field: "box length", Message: "must be positive"}
	case c.NumAtoms <= 0:
		return &ConfigError{Field: "atom count", Message: "must be positive"}
	case c.Dt <= 0:
		return &ConfigError{Field: "timestep", Message: "must be positive"}
	case c.TotalSteps < 0:
		return &ConfigError{Field: "total steps", Message: "must be non-negative"}
	case c.SnapshotInterval < 1:
		return &ConfigError{Field: "snapshot interval", Message: "must be at least 1"}
	case c.TargetTemp <= 0:
		return &ConfigError{Field: "target temperature", Message: "must be positive"}
	case c.Tau <= 0:
		return &ConfigError{Field: "coupling constant", Message: "must be positive"}
	case c.Cutoff < 0:
		return &ConfigError{Field: "cutoff", Message: "must be non-negative"}
	}
	return nil
}
