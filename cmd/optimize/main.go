// Package main tunes one emitter of a preset with CMA-ES so that its live
// particle count settles at a target without starving.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/sparkles/config"
	"github.com/pthm-cable/sparkles/statefile"
)

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	preset := flag.String("preset", "", "Preset to tune (empty = use config)")
	emitter := flag.Int("emitter", 0, "Index of the emitter to tune")
	target := flag.Float64("target", 2000, "Target live particle count")
	maxFrames := flag.Int64("max-frames", 1800, "Frames per run")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if *target <= 0 {
		log.Fatal("--target must be positive")
	}

	// Runs log through the game; keep only warnings.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := *config.Cfg()
	baseCfg.State.Autosave = false
	if *preset != "" {
		baseCfg.Sandbox.Preset = *preset
	}

	st, err := baseCfg.InitialState()
	if err != nil {
		log.Fatalf("failed to build preset: %v", err)
	}
	if *emitter < 0 || *emitter >= len(st.Emitters) {
		log.Fatalf("preset %q has %d emitters, no index %d", baseCfg.Sandbox.Preset, len(st.Emitters), *emitter)
	}

	params := NewParamVector(&st.Emitters[*emitter])

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, &baseCfg, baseCfg.Sandbox.Preset, *emitter, *target, *maxFrames, evalSeeds)

	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector())

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // seeds already run in parallel
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	logPath := filepath.Join(*outputDir, "optimize_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()

	header := []string{"eval", "fitness", "live_mean", "live_cv", "starved_share"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	logWriter.Write(header)

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			// Values outside [0,1] are clamped; log what was actually run.
			clamped := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(clamped)
			summary := evaluator.LastSummary()
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
			}

			row := []string{
				strconv.Itoa(evalCount),
				fmt.Sprintf("%.6f", fitness),
				fmt.Sprintf("%.1f", summary.liveMean),
				fmt.Sprintf("%.4f", summary.liveCV),
				fmt.Sprintf("%.4f", summary.starvedShare),
			}
			for _, v := range clamped {
				row = append(row, fmt.Sprintf("%.6f", v))
			}
			logWriter.Write(row)
			logWriter.Flush()

			elapsed := time.Since(startTime)
			avgPerEval := elapsed / time.Duration(evalCount)
			remaining := time.Duration(*maxEvals-evalCount) * avgPerEval

			fmt.Printf("Eval %d/%d: live=%.0f cv=%.3f starved=%.3f fitness=%.4f (best=%.4f) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, summary.liveMean, summary.liveCV, summary.starvedShare,
				fitness, bestFitness, formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	fmt.Printf("Tuning emitter %d of preset %q toward %.0f live particles\n", *emitter, baseCfg.Sandbox.Preset, *target)
	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, frames per run: %d\n", *seeds, *maxFrames)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	if bestParams == nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}

	totalTime := time.Since(startTime)
	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(totalTime))
	fmt.Printf("Best fitness: %.4f\n", bestFitness)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Name, bestParams[i])
	}

	params.Apply(&st.Emitters[*emitter], bestParams)

	statePath := filepath.Join(*outputDir, "best.spkl")
	if err := statefile.Save(statePath, &st); err != nil {
		log.Printf("failed to write best state: %v", err)
	} else {
		fmt.Printf("\nBest state saved to: %s\n", statePath)
	}

	yamlPath := filepath.Join(*outputDir, "best.yaml")
	f, err := os.Create(yamlPath)
	if err != nil {
		log.Printf("failed to create %s: %v", yamlPath, err)
		return
	}
	defer f.Close()
	if err := statefile.WriteYAML(f, &st); err != nil {
		log.Printf("failed to write best state yaml: %v", err)
		return
	}
	fmt.Printf("Readable copy saved to: %s\n", yamlPath)
}
