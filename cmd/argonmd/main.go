package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/argonmd/internal/box"
	"github.com/san-kum/argonmd/internal/config"
	"github.com/san-kum/argonmd/internal/export"
	"github.com/san-kum/argonmd/internal/server"
	"github.com/san-kum/argonmd/internal/sim"
	"github.com/san-kum/argonmd/internal/storage"
	"github.com/san-kum/argonmd/internal/system"
	"github.com/san-kum/argonmd/internal/tui"
	"github.com/san-kum/argonmd/internal/viz"
)

var (
	dataDir    string
	boxLength  float64
	numAtoms   int
	timestep   float64
	totalSteps int
	interval   int
	targetTemp float64
	tau        float64
	cutoff     float64
	seed       int64
	workers    int
	configFile string
	preset     string
	noProgress bool
	serveAddr  string
	outFile    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "argonmd",
		Short: "Lennard-Jones molecular dynamics of argon in a periodic box",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".argonmd", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [box_length num_atoms timestep total_steps snapshot_interval]",
		Short: "run a simulation and store the trajectory",
		Args:  cobra.RangeArgs(0, 5),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live terminal visualization",
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run energies and temperature",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportXYZCmd := &cobra.Command{
		Use:   "export-xyz [run_id]",
		Short: "export a stored trajectory as extended XYZ",
		Args:  cobra.ExactArgs(1),
		RunE:  exportXYZ,
	}
	exportXYZCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset configurations",
		RunE:  listPresets,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run a simulation and stream snapshots over websocket",
		RunE:  runServe,
	}
	addRunFlags(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8090", "listen address")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark step throughput",
		RunE:  benchRun,
	}
	benchCmd.Flags().IntVar(&workers, "workers", 4, "parallel force workers")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportJSONCmd, exportXYZCmd, presetsCmd, serveCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&boxLength, "box", config.DefaultBoxLength, "box edge length (angstrom)")
	cmd.Flags().IntVar(&numAtoms, "atoms", config.DefaultNumAtoms, "number of atoms")
	cmd.Flags().Float64Var(&timestep, "dt", config.DefaultTimestep, "timestep")
	cmd.Flags().IntVar(&totalSteps, "steps", config.DefaultTotalSteps, "total steps")
	cmd.Flags().IntVar(&interval, "interval", config.DefaultSnapshotInterval, "snapshot interval")
	cmd.Flags().Float64Var(&targetTemp, "temp", sim.DefaultTargetTemp, "target temperature (K)")
	cmd.Flags().Float64Var(&tau, "tau", sim.DefaultTau, "thermostat coupling constant")
	cmd.Flags().Float64Var(&cutoff, "cutoff", 0, "force cutoff radius (0 = none)")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel force workers (0 = serial)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// buildConfig resolves flags, an optional config file, an optional preset,
// and optional positional arguments into one resolved run file. Precedence
// is positional args > changed flags > config file > preset > defaults.
// The runner config is derived from it via ToSim.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	fileCfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		*fileCfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		*fileCfg = *loaded
	}

	if cmd.Flags().Changed("box") {
		fileCfg.BoxLength = boxLength
	}
	if cmd.Flags().Changed("atoms") {
		fileCfg.NumAtoms = numAtoms
	}
	if cmd.Flags().Changed("dt") {
		fileCfg.Timestep = timestep
	}
	if cmd.Flags().Changed("steps") {
		fileCfg.TotalSteps = totalSteps
	}
	if cmd.Flags().Changed("interval") {
		fileCfg.SnapshotInterval = interval
	}
	if cmd.Flags().Changed("temp") {
		fileCfg.TargetTemp = targetTemp
	}
	if cmd.Flags().Changed("tau") {
		fileCfg.Tau = tau
	}
	if cmd.Flags().Changed("cutoff") {
		fileCfg.Cutoff = cutoff
	}
	if cmd.Flags().Changed("workers") {
		fileCfg.Workers = workers
	}
	if fileCfg.Seed == 0 || cmd.Flags().Changed("seed") {
		fileCfg.Seed = seed
	}

	if len(args) > 0 {
		if len(args) != 5 {
			return nil, fmt.Errorf("expected 5 positional arguments (box_length num_atoms timestep total_steps snapshot_interval), got %d", len(args))
		}
		var err error
		if fileCfg.BoxLength, err = strconv.ParseFloat(args[0], 64); err != nil {
			return nil, fmt.Errorf("invalid box length %q", args[0])
		}
		if fileCfg.NumAtoms, err = strconv.Atoi(args[1]); err != nil {
			return nil, fmt.Errorf("invalid atom count %q", args[1])
		}
		if fileCfg.Timestep, err = strconv.ParseFloat(args[2], 64); err != nil {
			return nil, fmt.Errorf("invalid timestep %q", args[2])
		}
		if fileCfg.TotalSteps, err = strconv.Atoi(args[3]); err != nil {
			return nil, fmt.Errorf("invalid total steps %q", args[3])
		}
		if fileCfg.SnapshotInterval, err = strconv.Atoi(args[4]); err != nil {
			return nil, fmt.Errorf("invalid snapshot interval %q", args[4])
		}
	}

	return fileCfg, fileCfg.ToSim().Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	fileCfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	cfg := fileCfg.ToSim()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	runner := sim.NewRunner(cfg)
	var progress *tui.Progress
	if !noProgress {
		progress = tui.NewProgress(os.Stderr)
		runner.AddObserver(progress)
	}

	fmt.Printf("running %d argon atoms in a %.1f box for %d steps...\n", cfg.NumAtoms, cfg.BoxLength, cfg.TotalSteps)
	start := time.Now()

	result, err := runner.Run(context.Background())
	if progress != nil {
		progress.Finish(cfg.TotalSteps)
	}
	if err != nil {
		var ne *sim.NumericError
		if errors.As(err, &ne) {
			return fmt.Errorf("run aborted: %w", err)
		}
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result, elapsed)
	if err != nil {
		return err
	}
	// Keep the fully resolved parameters next to the trajectory so a run
	// can be repeated with --config.
	if err := config.Save(filepath.Join(dataDir, runID, "config.yaml"), fileCfg); err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("snapshots: %d\n", len(result.Snapshots))
	if len(result.Snapshots) > 0 {
		last := result.Snapshots[len(result.Snapshots)-1]
		fmt.Printf("final temperature: %.2f K\n", last.Temperature)
		fmt.Printf("final total energy: %.6f\n", last.TotalEnergy())
		fmt.Printf("energy drift: %.2e\n", result.EnergyDrift)
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	fileCfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	cfg := fileCfg.ToSim()

	rng := rand.New(rand.NewSource(cfg.Seed))
	sys, err := system.NewRandom(cfg.NumAtoms, box.New(cfg.BoxLength), cfg.TargetTemp, rng)
	if err != nil {
		return err
	}

	return viz.Run(cfg, sys)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tATOMS\tBOX\tDT\tSTEPS\tDRIFT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.1f\t%.4f\t%d\t%.2e\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.NumAtoms,
			run.BoxLength,
			run.Timestep,
			run.StepsTaken,
			run.EnergyDrift,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	rows, err := st.LoadEnergies(args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("atoms: %d, box: %.1f, dt: %.4f\n\n", meta.NumAtoms, meta.BoxLength, meta.Timestep)

	captions := []string{"potential energy", "kinetic energy", "total energy", "temperature (K)"}
	for col := 1; col <= 4; col++ {
		data := make([]float64, len(rows))
		for i, row := range rows {
			data[i] = row[col]
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(captions[col-1]),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportXYZ(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	traj, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	out := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return export.WriteXYZ(out, traj.Snapshots, traj.BoxLength)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tATOMS\tBOX\tDT\tSTEPS\tCUTOFF")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%.1f\t%.4f\t%d\t%.1f\n",
			name, p.NumAtoms, p.BoxLength, p.Timestep, p.TotalSteps, p.Cutoff)
	}
	return w.Flush()
}

func runServe(cmd *cobra.Command, args []string) error {
	fileCfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	cfg := fileCfg.ToSim()

	hub := server.NewHub()
	defer hub.Close()

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)

	srv := &http.Server{Addr: serveAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		}
	}()
	defer srv.Close()

	fmt.Printf("streaming snapshots on ws://%s/ws\n", serveAddr)

	runner := sim.NewRunner(cfg)
	runner.AddObserver(hub)

	result, err := runner.Run(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("run complete: %d snapshots streamed to %d client(s)\n", len(result.Snapshots), hub.ClientCount())
	return nil
}

func benchRun(cmd *cobra.Command, args []string) error {
	sizes := []int{32, 64, 128, 256}
	steps := 200

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ATOMS\tMODE\tSTEPS\tTIME\tSTEPS/SEC")

	for _, n := range sizes {
		for _, mode := range []struct {
			name    string
			workers int
		}{{"serial", 0}, {"parallel", workers}} {
			cfg := sim.Config{
				BoxLength:        float64(n) / 4,
				NumAtoms:         n,
				Dt:               0.001,
				TotalSteps:       steps,
				SnapshotInterval: steps,
				TargetTemp:       sim.DefaultTargetTemp,
				Tau:              sim.DefaultTau,
				Seed:             42,
				Workers:          mode.workers,
			}

			start := time.Now()
			if _, err := sim.NewRunner(cfg).Run(context.Background()); err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%d\t%s\t%d\t%v\t%.0f\n",
				n, mode.name, steps, elapsed.Round(time.Millisecond), float64(steps)/elapsed.Seconds())
		}
	}
	return w.Flush()
}
