package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/argonmd/internal/box"
	"github.com/san-kum/argonmd/internal/forcefield"
	"github.com/san-kum/argonmd/internal/system"
	"github.com/san-kum/argonmd/internal/thermostat"
	"github.com/san-kum/argonmd/internal/vec"
)

func testConfig() Config {
	return Config{
		BoxLength:        10.0,
		NumAtoms:         8,
		Dt:               0.001,
		TotalSteps:       10,
		SnapshotInterval: 5,
		TargetTemp:       DefaultTargetTemp,
		Tau:              DefaultTau,
		Seed:             42,
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero box length", func(c *Config) { c.BoxLength = 0 }},
		{"negative box length", func(c *Config) { c.BoxLength = -1 }},
		{"zero atoms", func(c *Config) { c.NumAtoms = 0 }},
		{"negative atoms", func(c *Config) { c.NumAtoms = -3 }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative dt", func(c *Config) { c.Dt = -0.1 }},
		{"negative steps", func(c *Config) { c.TotalSteps = -1 }},
		{"zero snapshot interval", func(c *Config) { c.SnapshotInterval = 0 }},
		{"zero target temperature", func(c *Config) { c.TargetTemp = 0 }},
		{"zero tau", func(c *Config) { c.Tau = 0 }},
		{"negative cutoff", func(c *Config) { c.Cutoff = -2.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)

			_, err := NewRunner(cfg).Run(context.Background())

			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
		})
	}
}

func TestZeroStepsIsNoop(t *testing.T) {
	cfg := testConfig()
	cfg.TotalSteps = 0

	result, err := NewRunner(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("zero-step run failed: %v", err)
	}
	if len(result.Snapshots) != 0 {
		t.Errorf("got %d snapshots, want 0", len(result.Snapshots))
	}
	if result.StepsTaken != 0 {
		t.Errorf("StepsTaken = %d, want 0", result.StepsTaken)
	}
}

func TestSnapshotSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.TotalSteps = 12
	cfg.SnapshotInterval = 5

	result, err := NewRunner(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// Initial state, every multiple of the interval, and the final step.
	want := []int{0, 5, 10, 12}
	if len(result.Snapshots) != len(want) {
		t.Fatalf("got %d snapshots, want %d", len(result.Snapshots), len(want))
	}
	for i, snap := range result.Snapshots {
		if snap.Step != want[i] {
			t.Errorf("snapshot %d at step %d, want %d", i, snap.Step, want[i])
		}
	}
}

func TestFinalStepNotDuplicated(t *testing.T) {
	cfg := testConfig()
	cfg.TotalSteps = 10
	cfg.SnapshotInterval = 5

	result, err := NewRunner(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := []int{0, 5, 10}
	if len(result.Snapshots) != len(want) {
		t.Fatalf("got %d snapshots, want %d", len(result.Snapshots), len(want))
	}
}

func TestSeedReproducibility(t *testing.T) {
	cfg := testConfig()

	a, err := NewRunner(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	b, err := NewRunner(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	last := len(a.Snapshots) - 1
	for i := range a.Snapshots[last].Positions {
		if a.Snapshots[last].Positions[i] != b.Snapshots[last].Positions[i] {
			t.Fatalf("same seed diverged at particle %d", i)
		}
	}
}

func TestTwoBodyEndToEnd(t *testing.T) {
	cfg := Config{
		BoxLength:        10.0,
		NumAtoms:         2,
		Dt:               0.001,
		TotalSteps:       1,
		SnapshotInterval: 1,
		TargetTemp:       DefaultTargetTemp,
		Tau:              DefaultTau,
	}

	r0 := 1.5
	b := box.New(cfg.BoxLength)
	sys := system.New(2, b)
	sys.Particles[0].Pos = vec.Vec3{5 - r0/2, 5, 5}
	sys.Particles[1].Pos = vec.Vec3{5 + r0/2, 5, 5}

	runner := NewRunner(cfg)
	runner.SetThermostat(thermostat.None{})

	result, err := runner.RunSystem(context.Background(), sys)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Snapshots) != 2 {
		t.Fatalf("got %d snapshots, want 2 (initial + final)", len(result.Snapshots))
	}

	lj := forcefield.NewLennardJones()
	initial := result.Snapshots[0]
	if math.Abs(initial.PotentialEnergy-lj.PairEnergy(r0)) > 1e-12 {
		t.Errorf("initial potential %g, want closed form %g", initial.PotentialEnergy, lj.PairEnergy(r0))
	}
	if initial.KineticEnergy != 0 {
		t.Errorf("initial kinetic energy %g, want 0", initial.KineticEnergy)
	}

	// r0 > 2^(1/6): attraction, both particles move along x toward each
	// other and stay on the connecting line.
	final := result.Snapshots[1]
	if final.Positions[0][0] <= initial.Positions[0][0] {
		t.Error("particle 0 did not move toward the partner")
	}
	if final.Positions[1][0] >= initial.Positions[1][0] {
		t.Error("particle 1 did not move toward the partner")
	}
	for _, k := range []int{1, 2} {
		if final.Positions[0][k] != 5 || final.Positions[1][k] != 5 {
			t.Errorf("motion off the connecting line (component %d)", k)
		}
	}
}

func TestNumericFailureAborts(t *testing.T) {
	cfg := testConfig()
	cfg.NumAtoms = 2
	cfg.TotalSteps = 5

	sys := system.New(2, box.New(cfg.BoxLength))
	sys.Particles[0].Pos = vec.Vec3{5, 5, 5}
	sys.Particles[1].Pos = vec.Vec3{5, 5, 5} // overlap: r = 0

	_, err := NewRunner(cfg).RunSystem(context.Background(), sys)

	var ne *NumericError
	if !errors.As(err, &ne) {
		t.Fatalf("expected *NumericError, got %v", err)
	}
	if ne.LastGoodStep != 0 {
		t.Errorf("LastGoodStep = %d, want 0", ne.LastGoodStep)
	}
}

func TestPlacementFailurePropagates(t *testing.T) {
	cfg := testConfig()
	cfg.BoxLength = 2.0
	cfg.NumAtoms = 50

	_, err := NewRunner(cfg).Run(context.Background())

	var pe *system.PlacementError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *system.PlacementError, got %v", err)
	}
}

func TestObserversSeeEveryStep(t *testing.T) {
	cfg := testConfig()
	cfg.TotalSteps = 7
	cfg.SnapshotInterval = 3

	runner := NewRunner(cfg)
	steps := 0
	runner.AddObserver(ObserverFunc(func(step, total int, pe, temp float64) {
		steps++
		if total != 7 {
			t.Errorf("total = %d, want 7", total)
		}
	}))

	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if steps != 7 {
		t.Errorf("observer saw %d steps, want 7", steps)
	}
}

type snapshotCollector struct{ snaps []Snapshot }

func (c *snapshotCollector) OnStep(step, total int, pe, temp float64) {}
func (c *snapshotCollector) OnSnapshot(s Snapshot) { c.snaps = append(c.snaps, s) }

func TestSnapshotObserverStreamMatchesResult(t *testing.T) {
	cfg := testConfig()

	runner := NewRunner(cfg)
	col := &snapshotCollector{}
	runner.AddObserver(col)

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(col.snaps) != len(result.Snapshots) {
		t.Fatalf("streamed %d snapshots, result has %d", len(col.snaps), len(result.Snapshots))
	}
	for i := range col.snaps {
		if col.snaps[i].Step != result.Snapshots[i].Step {
			t.Errorf("stream step %d, result step %d", col.snaps[i].Step, result.Snapshots[i].Step)
		}
	}
}

func TestCancellationReturnsPartialResult(t *testing.T) {
	cfg := testConfig()
	cfg.TotalSteps = 1000

	ctx, cancel := context.WithCancel(context.Background())
	runner := NewRunner(cfg)
	runner.AddObserver(ObserverFunc(func(step, total int, pe, temp float64) {
		if step == 10 {
			cancel()
		}
	}))

	result, err := runner.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StepsTaken < 10 || result.StepsTaken >= 1000 {
		t.Errorf("expected a partial result, got %+v", result)
	}
}
