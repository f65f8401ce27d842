package sim

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical strategy and
// starting state MUST produce bit-for-bit identical history series.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemDemand is the RNG subsystem for the stochastic demand model.
	SubsystemDemand = "demand"

	// SubsystemWorkforce is the RNG subsystem for overtime-driven quit rolls.
	SubsystemWorkforce = "workforce"

	// SubsystemSearch is the RNG subsystem used by the search strategies'
	// own bookkeeping (selection, crossover, mutation).
	SubsystemSearch = "search"
)

// SubsystemCandidate returns the subsystem name for fitness evaluation of
// candidate N. Used to shard seeds across parallel evaluations so that
// concurrent runs stay reproducible.
func SubsystemCandidate(id int) string {
	return fmt.Sprintf("candidate_%d", id)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula: masterSeed XOR fnv1a64(subsystemName). Draws made by one
// subsystem never shift another subsystem's stream, so adding a stochastic
// component does not invalidate recorded baselines for the others.
//
// Thread-safety: NOT thread-safe. Must be called from a single goroutine;
// parallel evaluations each derive their own PartitionedRNG.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	derivedSeed := int64(p.key) ^ fnv1a64(name)
	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// DeriveSeed returns the seed for candidate evaluation N under this key.
// The coordinator hands each parallel fitness task one derived seed so runs
// are independent streams, yet the whole batch is a pure function of the key.
func (p *PartitionedRNG) DeriveSeed(candidate int) int64 {
	return int64(p.key) ^ fnv1a64(SubsystemCandidate(candidate))
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}

// === NormalSource ===

// NormalSource produces standard normal variates via the Box-Muller transform
// over a subsystem stream. Two uniforms are consumed per pair of variates;
// the spare is cached so consumption order stays stable regardless of how
// callers interleave draws.
type NormalSource struct {
	rng      *rand.Rand
	spare    float64
	hasSpare bool
}

// NewNormalSource wraps a subsystem RNG in a Box-Muller generator.
func NewNormalSource(rng *rand.Rand) *NormalSource {
	return &NormalSource{rng: rng}
}

// Norm returns one standard normal variate.
func (n *NormalSource) Norm() float64 {
	if n.hasSpare {
		n.hasSpare = false
		return n.spare
	}
	var u1, u2 float64
	for {
		u1 = n.rng.Float64()
		if u1 > 0 {
			break
		}
	}
	u2 = n.rng.Float64()
	r := math.Sqrt(-2 * math.Log(u1))
	theta := 2 * math.Pi * u2
	n.spare = r * math.Sin(theta)
	n.hasSpare = true
	return r * math.Cos(theta)
}
