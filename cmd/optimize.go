package cmd

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/factory-sim/factory-sim/sim"
	"github.com/factory-sim/factory-sim/sim/memory"
	"github.com/factory-sim/factory-sim/sim/policy"
	"github.com/factory-sim/factory-sim/sim/search"
)

var (
	// CLI flags for the optimizer
	method      string // Search method (ga or guided)
	generations int    // GA generation budget
	population  int    // GA population size
	iterations  int    // Guided search iteration budget
	workers     int    // Parallel fitness evaluations (0 = GOMAXPROCS)
	memoryPath  string // Strategy memory JSON file
	memoryTol   float64
)

// optimizeCmd searches the policy parameter space for the best strategy
var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Search for the best factory policy parameters",
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging()

		cfg := loadConfig()
		key := sim.NewSimulationKey(seed)
		engine := policy.NewEngine(cfg, policy.DefaultOptions())
		fn := search.StandardFitness(cfg, engine, nil, horizon)

		var store memory.Store
		var warmStarts []policy.Vector
		if memoryPath != "" {
			store = memory.NewFileStore(memoryPath)
			warmStarts = loadWarmStarts(store, cfg)
		}

		progress := func(iteration int, best float64) {
			logrus.Infof("iteration %d: best fitness %.2f", iteration, best)
		}

		startTime := time.Now()
		var result *search.Result
		var err error
		switch method {
		case "ga":
			gaCfg := search.DefaultGAConfig()
			gaCfg.PopulationSize = population
			gaCfg.Generations = generations
			gaCfg.Workers = workers
			result, err = search.RunGA(gaCfg, fn, engine, key, progress)
		case "guided":
			gCfg := search.DefaultGuidedConfig()
			gCfg.Iterations = iterations
			gCfg.Workers = workers
			result, err = search.RunGuided(gCfg, fn, engine, key, warmStarts, progress)
		default:
			logrus.Fatalf("Unknown search method %q (want ga or guided)", method)
		}
		if err != nil {
			logrus.Fatalf("Search failed: %v", err)
		}

		printResult(result, time.Since(startTime))

		if store != nil {
			rec := memory.Record{
				Fingerprint: cfg.Demand.Fingerprint(),
				Genes:       result.Best.Slice(),
				Fitness:     result.BestFitness,
				SavedAt:     time.Now(),
			}
			if err := store.Put(rec); err != nil {
				logrus.Warnf("Unable to save result to strategy memory: %v", err)
			}
		}
	},
}

// loadWarmStarts pulls remembered vectors for demand environments similar to
// the current one. Stale or malformed records are skipped, never fatal.
func loadWarmStarts(store memory.Store, cfg sim.Config) []policy.Vector {
	records, err := store.Similar(cfg.Demand.Fingerprint(), memoryTol)
	if err != nil {
		logrus.Warnf("Unable to read strategy memory: %v", err)
		return nil
	}
	var vectors []policy.Vector
	for _, rec := range records {
		v, err := policy.FromSlice(rec.Genes)
		if err != nil {
			logrus.Warnf("Skipping malformed memory record: %v", err)
			continue
		}
		vectors = append(vectors, v)
	}
	if len(vectors) > 0 {
		logrus.Infof("Warm starting from %d remembered strategies", len(vectors))
	}
	return vectors
}

func printResult(result *search.Result, elapsed time.Duration) {
	out := rootCmd.OutOrStdout()
	fmt.Fprintf(out, "best fitness: %.2f\n", result.BestFitness)
	fmt.Fprintf(out, "evaluated generations: %d\n", len(result.Convergence))
	fmt.Fprintf(out, "wall clock: %s\n", elapsed.Round(time.Millisecond))
	fmt.Fprintln(out, "best parameters:")
	for g := policy.Gene(0); g < policy.NumGenes; g++ {
		fmt.Fprintf(out, "  %-22s %.4f\n", g.String(), result.Best[g])
	}
}

func init() {
	optimizeCmd.Flags().StringVar(&method, "method", "ga", "Search method (ga or guided)")
	optimizeCmd.Flags().IntVar(&generations, "generations", 60, "GA generation budget")
	optimizeCmd.Flags().IntVar(&population, "population", 32, "GA population size")
	optimizeCmd.Flags().IntVar(&iterations, "iterations", 80, "Guided search iteration budget")
	optimizeCmd.Flags().IntVar(&workers, "workers", 0, "Parallel fitness evaluations (0 = all CPUs)")
	optimizeCmd.Flags().StringVar(&memoryPath, "memory", "", "Strategy memory JSON file for warm starts")
	optimizeCmd.Flags().Float64Var(&memoryTol, "memory-tolerance", 0.1, "Fingerprint similarity tolerance for warm starts")
}
