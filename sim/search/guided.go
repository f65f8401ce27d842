package search

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/factory-sim/factory-sim/sim"
	"github.com/factory-sim/factory-sim/sim/policy"
)

// GuidedConfig parameterizes the guided random search.
type GuidedConfig struct {
	Iterations int
	BatchSize  int // candidates evaluated per iteration
	TopK       int // pool size the guided moves draw from

	ExploreIterations int // leading iterations of pure random sampling

	// move mix once exploration ends; remainder is fresh random draws
	PerturbProb   float64
	CrossoverProb float64

	MutationStd float64 // base perturbation std dev, fraction of gene range

	// StagnationWindow iterations without improvement widen the
	// perturbation by StagnationBoost per window.
	StagnationWindow int
	StagnationBoost  float64

	Workers int
}

// DefaultGuidedConfig returns a configuration suited to the 15-gene space.
func DefaultGuidedConfig() GuidedConfig {
	return GuidedConfig{
		Iterations:        80,
		BatchSize:         16,
		TopK:              8,
		ExploreIterations: 10,
		PerturbProb:       0.5,
		CrossoverProb:     0.3,
		MutationStd:       0.1,
		StagnationWindow:  8,
		StagnationBoost:   0.5,
		Workers:           0,
	}
}

// Validate fails fast on configurations the loop cannot run.
func (c GuidedConfig) Validate() error {
	if c.Iterations <= 0 {
		return fmt.Errorf("search: iterations must be > 0, got %d", c.Iterations)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("search: batch size must be > 0, got %d", c.BatchSize)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("search: top-k must be > 0, got %d", c.TopK)
	}
	if c.PerturbProb+c.CrossoverProb > 1 {
		return fmt.Errorf("search: perturb+crossover probability exceeds 1 (%v)", c.PerturbProb+c.CrossoverProb)
	}
	return nil
}

// RunGuided performs guided random search: an exploration phase of uniform
// sampling, then batches biased toward perturbations and recombinations of
// the best vectors seen so far. Warm-start vectors join the pool before the
// first batch so prior knowledge competes immediately.
func RunGuided(cfg GuidedConfig, fn FitnessFunc, engine *policy.Engine, key sim.SimulationKey, warmStarts []policy.Vector, progress Progress) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logrus.WithField("component", "guided")
	rng := NewPartitionedSearchRNG(key)
	seedRNG := sim.NewPartitionedRNG(key)

	pool := make([]individual, 0, cfg.TopK+cfg.BatchSize)
	convergence := make([]float64, 0, cfg.Iterations)
	candidate := 0
	stagnant := 0
	var bestVec policy.Vector
	bestSeen := 0.0
	haveBest := false

	// warm starts are evaluated as iteration zero's extra batch
	initial := make([]vectorSeed, 0, len(warmStarts))
	for _, v := range warmStarts {
		v.Clamp()
		initial = append(initial, vectorSeed{vec: v, seed: seedRNG.DeriveSeed(candidate)})
		candidate++
	}
	if len(initial) > 0 {
		scores := evaluateAll(initial, fn, cfg.Workers)
		for i, ws := range initial {
			pool = append(pool, individual{vec: ws.vec, fitness: scores[i], scored: true})
		}
		log.Infof("seeded pool with %d warm-start vectors", len(initial))
	}

	for iter := 0; iter < cfg.Iterations; iter++ {
		intensity := cfg.MutationStd * (1 + cfg.StagnationBoost*float64(stagnant/max(cfg.StagnationWindow, 1)))

		batch := make([]vectorSeed, 0, cfg.BatchSize)
		for i := 0; i < cfg.BatchSize; i++ {
			batch = append(batch, vectorSeed{
				vec:  proposeVector(cfg, pool, iter, intensity, rng),
				seed: seedRNG.DeriveSeed(candidate),
			})
			candidate++
		}
		scores := evaluateAll(batch, fn, cfg.Workers)
		for i, vs := range batch {
			pool = append(pool, individual{vec: vs.vec, fitness: scores[i], scored: true})
		}

		sort.SliceStable(pool, func(i, j int) bool { return pool[i].fitness > pool[j].fitness })
		if len(pool) > cfg.TopK {
			pool = pool[:cfg.TopK]
		}

		best := pool[0].fitness
		if !haveBest || best > bestSeen {
			bestSeen = best
			bestVec = pool[0].vec
			haveBest = true
			stagnant = 0
		} else {
			stagnant++
		}
		convergence = append(convergence, best)
		if progress != nil {
			progress(iter, best)
		}
		log.Debugf("iteration %d: best=%.2f pool=%d intensity=%.3f", iter, best, len(pool), intensity)

		// entire pool underwater means the guidance is poisoned; restart
		if pool[len(pool)-1].fitness < 0 && pool[0].fitness < 0 {
			log.Warn("all pooled candidates have negative fitness, restarting from random samples")
			pool = pool[:0]
			stagnant = 0
		}
	}

	if !haveBest {
		return nil, fmt.Errorf("search: no candidate evaluated in %d iterations", cfg.Iterations)
	}

	result := &Result{
		Best:        bestVec,
		BestFitness: bestSeen,
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

// proposeVector draws the next candidate. During exploration, or whenever
// the pool is empty, it samples uniformly; afterwards it perturbs or
// recombines pooled vectors per the configured mix.
func proposeVector(cfg GuidedConfig, pool []individual, iter int, intensity float64, rng *rand.Rand) policy.Vector {
	if iter < cfg.ExploreIterations || len(pool) == 0 {
		return policy.RandomVector(rng)
	}
	r := rng.Float64()
	switch {
	case r < cfg.PerturbProb:
		base := pool[rng.Intn(len(pool))].vec
		mutate(&base, 1.0, intensity, rng)
		base.Clamp()
		return base
	case r < cfg.PerturbProb+cfg.CrossoverProb && len(pool) >= 2:
		a := pool[rng.Intn(len(pool))].vec
		b := pool[rng.Intn(len(pool))].vec
		child := crossover(a, b, 0.5, rng)
		child.Clamp()
		return child
	default:
		return policy.RandomVector(rng)
	}
}
