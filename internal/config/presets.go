package config

import (
	"sort"

	"github.com/san-kum/argonmd/internal/sim"
)

var Presets = map[string]*Config{
	"dilute": {
		BoxLength: 20.0, NumAtoms: 32, Timestep: 0.001,
		TotalSteps: 20000, SnapshotInterval: 200,
		TargetTemp: sim.DefaultTargetTemp, Tau: sim.DefaultTau,
	},
	"liquid": {
		BoxLength: 8.0, NumAtoms: 100, Timestep: 0.0005,
		TotalSteps: 50000, SnapshotInterval: 500,
		TargetTemp: sim.DefaultTargetTemp, Tau: sim.DefaultTau,
		Cutoff: 2.5,
	},
	"dense": {
		BoxLength: 6.0, NumAtoms: 125, Timestep: 0.0002,
		TotalSteps: 50000, SnapshotInterval: 500,
		TargetTemp: sim.DefaultTargetTemp, Tau: sim.DefaultTau,
		Cutoff: 2.5, Workers: 4,
	},
	"twobody": {
		BoxLength: 10.0, NumAtoms: 2, Timestep: 0.001,
		TotalSteps: 1000, SnapshotInterval: 10,
		TargetTemp: sim.DefaultTargetTemp, Tau: sim.DefaultTau,
	},
}

func GetPreset(name string) *Config {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
