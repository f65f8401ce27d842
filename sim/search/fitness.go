// Package search explores the policy parameter space with a genetic
// algorithm and a guided random/local search. Both strategies are pluggable
// atop the same black-box fitness function and share the parallel
// evaluation pool; neither depends on the other's internals.
package search

import (
	"github.com/sirupsen/logrus"

	"github.com/factory-sim/factory-sim/sim"
	"github.com/factory-sim/factory-sim/sim/policy"
)

// FitnessFunc scores one candidate parameter vector. The seed keys the
// candidate's private random stream so a batch of evaluations is
// reproducible regardless of scheduling. Implementations must be
// side-effect-free on shared state.
type FitnessFunc func(v policy.Vector, seed int64) float64

// Progress is the coarse reporting callback long searches expose: iteration
// (or generation) index and best fitness so far. Individual simulations are
// short and bounded, so there is no finer-grained cancellation point.
type Progress func(iteration int, best float64)

// Result is the outcome common to both strategies: the best vector, its
// derived strategy and fitness, and one fitness value per iteration for
// diagnostic plotting.
type Result struct {
	Best        policy.Vector
	Strategy    *sim.Strategy
	BestFitness float64
	Convergence []float64
}

// StandardFitness builds the canonical fitness function: expand the vector
// through the policy engine, run the full simulation from a clone of the
// start state, and score the trajectory. A candidate whose expansion or run
// fails scores the bankruptcy sentinel; one bad candidate never aborts a
// generation.
func StandardFitness(cfg sim.Config, engine *policy.Engine, start *sim.SimulationState, horizon int) FitnessFunc {
	log := logrus.WithField("component", "search")
	return func(v policy.Vector, seed int64) float64 {
		strategy, err := engine.Expand(v, start, horizon)
		if err != nil {
			log.Warnf("candidate expansion failed, scoring sentinel: %v", err)
			return cfg.Finance.BankruptcyFitness
		}
		fitness, err := sim.EvaluateStrategy(cfg, strategy, sim.RunOptions{
			Horizon: horizon,
			Start:   start,
			Seed:    seed,
		})
		if err != nil {
			log.Warnf("candidate evaluation failed, scoring sentinel: %v", err)
			return cfg.Finance.BankruptcyFitness
		}
		return fitness
	}
}
