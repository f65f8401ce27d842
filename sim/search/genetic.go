package search

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/factory-sim/factory-sim/sim"
	"github.com/factory-sim/factory-sim/sim/policy"
)

// GAConfig parameterizes the genetic algorithm.
type GAConfig struct {
	PopulationSize int
	Generations    int
	EliteCount     int     // best individuals copied unchanged each generation
	TournamentSize int     // selection pressure for crossover parents
	CrossoverMix   float64 // per-gene coin-flip probability in uniform crossover
	MutationProb   float64 // per-gene mutation probability
	MutationStd    float64 // mutation std dev as a fraction of the gene's range

	// ConvergenceWindow generations with total improvement below
	// ConvergenceEpsilon terminate the search early.
	ConvergenceWindow  int
	ConvergenceEpsilon float64

	Workers int // 0 = GOMAXPROCS
}

// DefaultGAConfig returns a balanced configuration for the 15-gene space.
func DefaultGAConfig() GAConfig {
	return GAConfig{
		PopulationSize:     32,
		Generations:        60,
		EliteCount:         4,
		TournamentSize:     3,
		CrossoverMix:       0.5,
		MutationProb:       0.2,
		MutationStd:        0.15,
		ConvergenceWindow:  5,
		ConvergenceEpsilon: 1e-3,
		Workers:            0,
	}
}

// Validate fails fast on configurations the loop cannot run.
func (c GAConfig) Validate() error {
	if c.PopulationSize < 2 {
		return fmt.Errorf("search: population size must be >= 2, got %d", c.PopulationSize)
	}
	if c.Generations <= 0 {
		return fmt.Errorf("search: generations must be > 0, got %d", c.Generations)
	}
	if c.EliteCount < 0 || c.EliteCount >= c.PopulationSize {
		return fmt.Errorf("search: elite count must be in [0,%d), got %d", c.PopulationSize, c.EliteCount)
	}
	if c.TournamentSize < 1 {
		return fmt.Errorf("search: tournament size must be >= 1, got %d", c.TournamentSize)
	}
	return nil
}

// individual pairs a genome with its recorded fitness. Elites carry their
// fitness forward without re-evaluation, which is what makes elite fitness
// monotonically non-decreasing across generations.
type individual struct {
	vec     policy.Vector
	fitness float64
	scored  bool
}

// vectorSeed is one unit of parallel evaluation work.
type vectorSeed struct {
	vec  policy.Vector
	seed int64
}

// RunGA evolves a population of parameter vectors. Every candidate's fitness
// evaluation is independent; a generation's batch runs on the worker pool
// with a join barrier before selection. Population bookkeeping is touched
// only by this coordinating goroutine.
func RunGA(cfg GAConfig, fn FitnessFunc, engine *policy.Engine, key sim.SimulationKey, progress Progress) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logrus.WithField("component", "ga")
	rng := NewPartitionedSearchRNG(key)

	pop := make([]individual, cfg.PopulationSize)
	pop[0] = individual{vec: policy.DefaultVector()}
	for i := 1; i < cfg.PopulationSize; i++ {
		pop[i] = individual{vec: policy.RandomVector(rng)}
	}

	seedRNG := sim.NewPartitionedRNG(key)
	convergence := make([]float64, 0, cfg.Generations)
	candidate := 0

	for gen := 0; gen < cfg.Generations; gen++ {
		// evaluate everything not yet scored (elites keep recorded fitness)
		var batch []vectorSeed
		var batchIdx []int
		for i := range pop {
			if pop[i].scored {
				continue
			}
			batch = append(batch, vectorSeed{vec: pop[i].vec, seed: seedRNG.DeriveSeed(candidate)})
			batchIdx = append(batchIdx, i)
			candidate++
		}
		scores := evaluateAll(batch, fn, cfg.Workers)
		for j, i := range batchIdx {
			pop[i].fitness = scores[j]
			pop[i].scored = true
		}

		sort.SliceStable(pop, func(i, j int) bool { return pop[i].fitness > pop[j].fitness })

		best := pop[0].fitness
		convergence = append(convergence, best)
		if progress != nil {
			progress(gen, best)
		}
		log.Debugf("generation %d: best=%.2f median=%.2f", gen, best, pop[len(pop)/2].fitness)

		if converged(convergence, cfg.ConvergenceWindow, cfg.ConvergenceEpsilon) {
			log.Infof("converged after %d generations (improvement < %v over %d)",
				gen+1, cfg.ConvergenceEpsilon, cfg.ConvergenceWindow)
			break
		}
		if gen == cfg.Generations-1 {
			break
		}

		// next generation: elites unchanged, remainder bred
		next := make([]individual, 0, cfg.PopulationSize)
		next = append(next, pop[:cfg.EliteCount]...)
		for len(next) < cfg.PopulationSize {
			a := tournament(pop, cfg.TournamentSize, rng)
			b := tournament(pop, cfg.TournamentSize, rng)
			child := crossover(a.vec, b.vec, cfg.CrossoverMix, rng)
			mutate(&child, cfg.MutationProb, cfg.MutationStd, rng)
			child.Clamp()
			next = append(next, individual{vec: child})
		}
		pop = next
	}

	result := &Result{
		Best:        pop[0].vec,
		BestFitness: pop[0].fitness,
		Convergence: convergence,
	}
	if engine != nil {
		strategy, err := engine.Expand(result.Best, nil, 0)
		if err != nil {
			return nil, fmt.Errorf("search: expanding best vector: %w", err)
		}
		result.Strategy = strategy
	}
	return result, nil
}

// tournament picks the fittest of k uniformly sampled individuals.
func tournament(pop []individual, k int, rng *rand.Rand) individual {
	best := pop[rng.Intn(len(pop))]
	for i := 1; i < k; i++ {
		c := pop[rng.Intn(len(pop))]
		if c.fitness > best.fitness {
			best = c
		}
	}
	return best
}

// crossover builds a child gene-wise: each gene comes from parent a with
// probability mix, else from parent b.
func crossover(a, b policy.Vector, mix float64, rng *rand.Rand) policy.Vector {
	var child policy.Vector
	for g := policy.Gene(0); g < policy.NumGenes; g++ {
		if rng.Float64() < mix {
			child[g] = a[g]
		} else {
			child[g] = b[g]
		}
	}
	return child
}

// mutate perturbs each gene independently with the configured probability,
// Gaussian noise scaled to the gene's declared range.
func mutate(v *policy.Vector, prob, stdFrac float64, rng *rand.Rand) {
	for g := policy.Gene(0); g < policy.NumGenes; g++ {
		if rng.Float64() >= prob {
			continue
		}
		span := policy.GeneBounds[g].Max - policy.GeneBounds[g].Min
		v[g] += rng.NormFloat64() * stdFrac * span
	}
}

// converged reports whether total improvement over the trailing window fell
// below epsilon.
func converged(history []float64, window int, epsilon float64) bool {
	if window <= 0 || len(history) <= window {
		return false
	}
	improvement := history[len(history)-1] - history[len(history)-1-window]
	return math.Abs(improvement) < epsilon
}

// NewPartitionedSearchRNG returns the search subsystem's private stream for
// the given key. Selection, crossover, and mutation draws never perturb the
// candidates' own demand/workforce streams.
func NewPartitionedSearchRNG(key sim.SimulationKey) *rand.Rand {
	return sim.NewPartitionedRNG(key).ForSubsystem(sim.SubsystemSearch)
}
