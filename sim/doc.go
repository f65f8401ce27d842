// Package sim provides the core discrete-time simulation engine for a
// two-product factory: a make-to-stock standard line and a make-to-order
// custom line sharing one machine stage and one labor pool.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - state.go: the typed business state (cash, debt, inventories, WIP, workforce) and Clone
//   - day.go: the day simulator and its fixed 14-step transaction order
//   - driver.go: full-run execution, fitness scoring, and run summaries
//
// # Architecture
//
// The sim package holds the state-transition model; separable layers live in
// sub-packages:
//   - sim/policy/: compact parameter vectors and their expansion into strategies
//   - sim/search/: genetic and guided-random policy search over the fitness function
//   - sim/validate/: post-hoc business-rule checking over completed trajectories
//   - sim/memory/: persisted high-fitness parameter vectors keyed by demand context
//
// # Determinism
//
// Every stochastic draw flows through a PartitionedRNG derived from a single
// seed (rng.go); runs with the same seed, strategy, and starting state
// produce byte-identical history series. Branching a trajectory requires
// cloning the state; no two runs ever alias mutable state.
package sim
