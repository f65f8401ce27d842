package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runFixture(t *testing.T, strategy *Strategy, horizon int, seed int64) *SimulationState {
	t.Helper()
	cfg := DefaultConfig()
	sim, err := NewSimulator(cfg, strategy, nil, seed)
	require.NoError(t, err)
	sim.Run(horizon)
	return sim.State()
}

// === Construction Tests ===

func TestNewSimulator_RejectsInvalidStrategy(t *testing.T) {
	cfg := DefaultConfig()
	bad := DefaultStrategy(cfg)
	bad.Params.BatchSize = -1

	_, err := NewSimulator(cfg, bad, nil, 1)

	assert.Error(t, err)
}

func TestNewSimulator_RejectsNilStrategy(t *testing.T) {
	_, err := NewSimulator(DefaultConfig(), nil, nil, 1)
	assert.Error(t, err)
}

func TestNewSimulator_ClonesStartState(t *testing.T) {
	cfg := DefaultConfig()
	start := NewInitialState(cfg)
	sim, err := NewSimulator(cfg, DefaultStrategy(cfg), start, 1)
	require.NoError(t, err)

	sim.Run(10)

	assert.Zero(t, start.CurrentDay, "caller's start state was mutated")
}

// === Determinism Tests ===

func TestRun_DeterministicForSeed(t *testing.T) {
	// BDD: Two runs with identical config, strategy, and seed produce
	// bit-for-bit identical history series
	strategy := DefaultStrategy(DefaultConfig())
	s1 := runFixture(t, strategy, 120, 42)
	s2 := runFixture(t, strategy, 120, 42)

	require.Equal(t, s1.History.Len(), s2.History.Len())
	for i := range s1.History.Days {
		d1, d2 := s1.History.Days[i], s2.History.Days[i]
		require.Equal(t, d1.Cash, d2.Cash, "day %d cash diverged", d1.Day)
		require.Equal(t, d1.Debt, d2.Debt, "day %d debt diverged", d1.Day)
		require.Equal(t, d1.CustomDemand, d2.CustomDemand, "day %d demand diverged", d1.Day)
		require.Equal(t, d1.Experts, d2.Experts, "day %d workforce diverged", d1.Day)
	}
}

func TestRun_SeedsDiverge(t *testing.T) {
	strategy := DefaultStrategy(DefaultConfig())
	s1 := runFixture(t, strategy, 60, 1)
	s2 := runFixture(t, strategy, 60, 2)

	diverged := false
	for i := range s1.History.Days {
		if s1.History.Days[i].CustomDemand != s2.History.Days[i].CustomDemand {
			diverged = true
			break
		}
	}
	assert.True(t, diverged, "different seeds produced identical demand series")
}

// === Invariant Tests ===

func TestRun_CashNeverNegative(t *testing.T) {
	// Starve the business with a tiny price and heavy overtime; the payment
	// primitive must still hold the floor at zero on every recorded day.
	cfg := DefaultConfig()
	strategy := DefaultStrategy(cfg)
	strategy.Params.StandardPrice = 251 // above 250 the standard line sells nothing
	strategy.Params.OvertimeHours = 4

	s := runFixture(t, strategy, 200, 7)

	for _, d := range s.History.Days {
		require.GreaterOrEqual(t, d.Cash, 0.0, "day %d", d.Day)
	}
}

func TestRun_DaysAreContiguous(t *testing.T) {
	s := runFixture(t, DefaultStrategy(DefaultConfig()), 50, 3)

	require.Equal(t, 50, s.History.Len())
	for i, d := range s.History.Days {
		require.Equal(t, i+1, d.Day)
	}
}

func TestRun_AllocationStaysInBounds(t *testing.T) {
	cfg := DefaultConfig()
	strategy := DefaultStrategy(cfg)
	strategy.Params.AllocationStep = 0.3 // aggressive nudging

	s := runFixture(t, strategy, 200, 11)

	for _, d := range s.History.Days {
		require.GreaterOrEqual(t, d.Allocation, cfg.Production.AllocationMin, "day %d", d.Day)
		require.LessOrEqual(t, d.Allocation, cfg.Production.AllocationMax, "day %d", d.Day)
	}
}

// === Scenario Tests ===

func TestRun_ReorderScenario(t *testing.T) {
	// Reorder point 200, quantity 500, starting cash 50k over 50 days: the
	// first trigger fires once inventory drains to the point, the order
	// charges cash immediately and arrives after the 4-day lead.
	cfg := DefaultConfig()
	strategy := DefaultStrategy(cfg)
	strategy.Params.ReorderPoint = 200
	strategy.Params.OrderQuantity = 500

	s := runFixture(t, strategy, 50, 42)

	ordered := false
	for _, d := range s.History.Days {
		if d.RawInventory > 200+500 {
			ordered = true // inventory above start level proves an arrival landed
		}
	}
	assert.True(t, ordered, "no replenishment arrived over 50 days")
	assert.Zero(t, s.Counters.RejectedMatOrders)
}

func TestRun_TimedActionsApply(t *testing.T) {
	cfg := DefaultConfig()
	strategy := DefaultStrategy(cfg)
	strategy.Actions = []Action{
		{Day: 5, Kind: ActionHire, Count: 2},
		{Day: 10, Kind: ActionBuyMachine, Count: 1},
		{Day: 20, Kind: ActionSetPrice, Amount: 120},
	}

	s := runFixture(t, strategy, 30, 9)

	day5 := s.History.Days[4]
	assert.Contains(t, day5.ActionsTaken, ActionHire)
	assert.Equal(t, 2, day5.Rookies)

	day10 := s.History.Days[9]
	assert.Equal(t, 3, day10.Machines)

	day20 := s.History.Days[19]
	assert.InDelta(t, 120, day20.StandardPrice, 1e-9)
	assert.InDelta(t, 100, s.History.Days[18].StandardPrice, 1e-9)
}

func TestRun_OvertimeCausesAttrition(t *testing.T) {
	// Sustained overtime past the 5-day trigger at 10% daily quit risk
	// should thin a 4-expert workforce well before day 200.
	cfg := DefaultConfig()
	strategy := DefaultStrategy(cfg)
	strategy.Params.OvertimeHours = 4

	s := runFixture(t, strategy, 200, 5)

	final := s.History.Last()
	assert.Less(t, final.Experts+final.Rookies, 4)
}
