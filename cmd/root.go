package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/factory-sim/factory-sim/sim"
)

var (
	// CLI flags shared by the simulation subcommands
	seed         int64  // Seed for all stochastic subsystems
	horizon      int    // Simulated days (0 = config default)
	logLevel     string // Log verbosity level
	scenarioPath string // Optional market scenario YAML

	// Default strategy parameter overrides
	reorderPoint  int     // Raw material reorder trigger
	orderQuantity int     // Raw material order size
	batchSize     int     // Standard line batch size
	allocation    float64 // Initial machine/labor share for the custom line
	standardPrice float64 // Standard product list price
	overtimeHours float64 // Scheduled daily overtime
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "factory-sim",
	Short: "Day-by-day simulator and policy optimizer for a two-product factory",
}

// configureLogging parses the --log flag and applies it process-wide.
func configureLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// loadConfig builds the simulation configuration, applying a scenario file's
// demand model and horizon when one was given.
func loadConfig() sim.Config {
	cfg := sim.DefaultConfig()
	if scenarioPath != "" {
		spec, err := sim.LoadScenarioSpec(scenarioPath)
		if err != nil {
			logrus.Fatalf("Unable to load scenario: %v", err)
		}
		cfg.Demand = spec.Demand
		if spec.Horizon > 0 {
			cfg.Horizon = spec.Horizon
		}
		logrus.Infof("Loaded scenario %q", spec.Name)
	}
	return cfg
}

// flagStrategy builds the strategy for `run` and `validate` from CLI flags.
func flagStrategy(cfg sim.Config) *sim.Strategy {
	strategy := sim.DefaultStrategy(cfg)
	strategy.Params.ReorderPoint = reorderPoint
	strategy.Params.OrderQuantity = orderQuantity
	strategy.Params.BatchSize = batchSize
	strategy.Params.Allocation = allocation
	strategy.Params.StandardPrice = standardPrice
	strategy.Params.OvertimeHours = overtimeHours
	return strategy
}

// runCmd executes one simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the factory simulation once and print a summary",
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging()

		cfg := loadConfig()
		strategy := flagStrategy(cfg)

		logrus.Infof("Starting simulation: horizon=%d days, seed=%d", cfg.Horizon, seed)
		startTime := time.Now()

		res, err := sim.RunSimulation(cfg, strategy, sim.RunOptions{Horizon: horizon, Seed: seed})
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		summary := sim.Summarize(cfg, res.State)
		printSummary(res, summary, time.Since(startTime))

		logrus.Info("Simulation complete.")
	},
}

func printSummary(res *sim.RunResult, s sim.Summary, elapsed time.Duration) {
	out := rootCmd.OutOrStdout()
	p := func(format string, args ...any) {
		fmt.Fprintf(out, format+"\n", args...)
	}
	p("days simulated:        %d", s.Days)
	p("final cash:            %.2f", res.FinalCash)
	p("final debt:            %.2f", res.FinalDebt)
	p("final net worth:       %.2f", res.FinalNetWorth)
	p("fitness:               %.2f", res.Fitness)
	if res.Bankrupt {
		p("bankrupt:              yes")
	}
	p("mean delivery days:    %.2f", s.MeanDelivery)
	p("p95 delivery days:     %.2f", s.P95Delivery)
	p("on-time fraction:      %.2f", s.OnTimeFraction)
	p("mean utilization:      %.2f", s.MeanUtilization)
	p("rejected orders:       %d", s.TotalRejected)
	p("stockout days:         %d", s.StockoutDays)
	p("lost production days:  %d", s.LostProdDays)
	p("wall clock:            %s", elapsed.Round(time.Millisecond))
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	for _, c := range []*cobra.Command{runCmd, optimizeCmd, validateCmd} {
		c.Flags().Int64Var(&seed, "seed", 42, "Seed for all stochastic subsystems")
		c.Flags().IntVar(&horizon, "horizon", 0, "Simulated days (0 = configuration default)")
		c.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
		c.Flags().StringVar(&scenarioPath, "scenario", "", "Market scenario YAML file")
	}

	for _, c := range []*cobra.Command{runCmd, validateCmd} {
		c.Flags().IntVar(&reorderPoint, "reorder-point", 200, "Raw material reorder trigger")
		c.Flags().IntVar(&orderQuantity, "order-quantity", 500, "Raw material order size")
		c.Flags().IntVar(&batchSize, "batch-size", 60, "Standard line batch size")
		c.Flags().Float64Var(&allocation, "allocation", 0.5, "Custom line share of machines and labor")
		c.Flags().Float64Var(&standardPrice, "standard-price", 100, "Standard product price")
		c.Flags().Float64Var(&overtimeHours, "overtime-hours", 0, "Scheduled daily overtime hours")
	}

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(validateCmd)
}
