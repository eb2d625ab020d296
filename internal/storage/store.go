// Package storage persists completed runs. Each run gets its own directory
// under the base dir with metadata.json, trajectory.json (the format the
// external visualizer reads), and energies.csv for plotting.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/argonmd/internal/sim"
	"github.com/san-kum/argonmd/internal/vec"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID               string        `json:"id"`
	Timestamp        time.Time     `json:"timestamp"`
	Seed             int64         `json:"seed"`
	BoxLength        float64       `json:"box_length"`
	NumAtoms         int           `json:"num_atoms"`
	Timestep         float64       `json:"timestep"`
	TotalSteps       int           `json:"total_steps"`
	SnapshotInterval int           `json:"snapshot_interval"`
	StepsTaken       int           `json:"steps_taken"`
	EnergyDrift      float64       `json:"energy_drift"`
	WallTime         time.Duration `json:"wall_time_ns"`
}

// Trajectory is the on-disk trajectory file. The top-level fields and the
// positions-only `trajectory` array keep the shape downstream visualizers
// already parse; `snapshots` carries the full per-frame record (velocities,
// energies, temperature) alongside it.
type Trajectory struct {
	BoxLength        float64        `json:"box_length"`
	NumAtoms         int            `json:"num_atoms"`
	Timestep         float64        `json:"timestep"`
	TotalSteps       int            `json:"total_steps"`
	SnapshotInterval int            `json:"snapshot_interval"`
	Frames           [][]vec.Vec3   `json:"trajectory"`
	Snapshots        []sim.Snapshot `json:"snapshots"`
}

// Save writes one completed run and returns its generated id.
func (s *Store) Save(cfg sim.Config, result *sim.Result, wallTime time.Duration) (string, error) {
	runID := fmt.Sprintf("argon_%d", time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:               runID,
		Timestamp:        time.Now(),
		Seed:             cfg.Seed,
		BoxLength:        cfg.BoxLength,
		NumAtoms:         cfg.NumAtoms,
		Timestep:         cfg.Dt,
		TotalSteps:       cfg.TotalSteps,
		SnapshotInterval: cfg.SnapshotInterval,
		StepsTaken:       result.StepsTaken,
		EnergyDrift:      result.EnergyDrift,
		WallTime:         wallTime,
	}
	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}

	traj := Trajectory{
		BoxLength:        cfg.BoxLength,
		NumAtoms:         cfg.NumAtoms,
		Timestep:         cfg.Dt,
		TotalSteps:       cfg.TotalSteps,
		SnapshotInterval: cfg.SnapshotInterval,
		Frames:           make([][]vec.Vec3, 0, len(result.Snapshots)),
		Snapshots:        result.Snapshots,
	}
	for _, snap := range result.Snapshots {
		traj.Frames = append(traj.Frames, snap.Positions)
	}
	if err := writeJSON(filepath.Join(runDir, "trajectory.json"), traj); err != nil {
		return "", err
	}

	if err := s.writeEnergies(filepath.Join(runDir, "energies.csv"), result.Snapshots); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (s *Store) writeEnergies(path string, snapshots []sim.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"step", "potential", "kinetic", "total", "temperature"}); err != nil {
		return err
	}
	for _, snap := range snapshots {
		row := []string{
			strconv.Itoa(snap.Step),
			strconv.FormatFloat(snap.PotentialEnergy, 'f', 6, 64),
			strconv.FormatFloat(snap.KineticEnergy, 'f', 6, 64),
			strconv.FormatFloat(snap.TotalEnergy(), 'f', 6, 64),
			strconv.FormatFloat(snap.Temperature, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadTrajectory(runID string) (*Trajectory, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "trajectory.json"))
	if err != nil {
		return nil, err
	}
	var traj Trajectory
	if err := json.Unmarshal(data, &traj); err != nil {
		return nil, err
	}
	return &traj, nil
}

// LoadEnergies reads energies.csv back as one row of floats per snapshot:
// step, potential, kinetic, total, temperature.
func (s *Store) LoadEnergies(runID string) ([][]float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "energies.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]float64{}, nil
	}

	rows := make([][]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make([]float64, 0, len(record))
		for _, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("bad energies row: %w", err)
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
