package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/factory-sim/factory-sim/sim"
	"github.com/factory-sim/factory-sim/sim/validate"
)

// validateCmd runs one simulation and grades it against the business rules
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the simulation and grade the outcome against business rules",
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging()

		cfg := loadConfig()
		strategy := flagStrategy(cfg)

		res, err := sim.RunSimulation(cfg, strategy, sim.RunOptions{Horizon: horizon, Seed: seed})
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		report := validate.Check(cfg, res.State, validate.DefaultThresholds())
		out := rootCmd.OutOrStdout()
		for _, v := range report.Violations {
			fmt.Fprintln(out, v)
		}
		if report.Valid() {
			fmt.Fprintf(out, "PASS: %d warnings, %d major findings, no critical violations\n",
				report.Count(validate.SeverityWarning), report.Count(validate.SeverityMajor))
			return
		}
		fmt.Fprintf(out, "FAIL: %d critical violations\n", report.Count(validate.SeverityCritical))
		os.Exit(1)
	},
}
