package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/factory-sim/factory-sim/sim"
)

func engineFixture() *Engine {
	return NewEngine(sim.DefaultConfig(), DefaultOptions())
}

// === Bucket Classification Tests ===

func TestBucket(t *testing.T) {
	e := engineFixture()

	tests := []struct {
		name string
		cash float64
		want CashBucket
	}{
		{"deep low", 0, BucketLowCash},
		{"just under the low boundary", 19999, BucketLowCash},
		{"at low boundary", 20000, BucketMediumCash},
		{"medium", 50000, BucketMediumCash},
		{"at high boundary", 100000, BucketMediumCash},
		{"high", 150000, BucketHighCash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Bucket(tt.cash))
		})
	}
}

// === Expansion Tests ===

func TestExpand_ProducesValidStrategy(t *testing.T) {
	e := engineFixture()
	cfg := sim.DefaultConfig()

	strategy, err := e.Expand(DefaultVector(), nil, 0)

	require.NoError(t, err)
	require.NoError(t, strategy.Validate(cfg))
	assert.Equal(t, 60, strategy.Params.BatchSize)
	assert.InDelta(t, 100, strategy.Params.StandardPrice, 1e-9)
	assert.GreaterOrEqual(t, strategy.Params.ReorderPoint, 200, "safety stock must only widen the reorder point")
}

func TestExpand_SafetyStockWidensReorderPoint(t *testing.T) {
	e := engineFixture()
	base := DefaultVector()
	base[GeneSafetyStockDays] = 0
	widened := DefaultVector()
	widened[GeneSafetyStockDays] = 5

	sBase, err := e.Expand(base, nil, 0)
	require.NoError(t, err)
	sWide, err := e.Expand(widened, nil, 0)
	require.NoError(t, err)

	assert.Greater(t, sWide.Params.ReorderPoint, sBase.Params.ReorderPoint)
}

func TestExpand_SteersMachineCountOnDayOne(t *testing.T) {
	e := engineFixture()
	v := DefaultVector()
	v[GeneTargetMachines] = 4 // initial state has 2

	strategy, err := e.Expand(v, nil, 0)
	require.NoError(t, err)

	found := false
	for _, a := range strategy.Actions {
		if a.Day == 1 && a.Kind == sim.ActionBuyMachine {
			found = true
			assert.Equal(t, 2, a.Count)
		}
	}
	assert.True(t, found, "no day-1 machine purchase generated")
}

func TestExpand_HiresTowardTargetThrottled(t *testing.T) {
	// BDD: Hiring actions toward the expert target are spaced at least one
	// training period apart, in batches no larger than the hire-batch gene
	e := engineFixture()
	cfg := sim.DefaultConfig()
	v := DefaultVector()
	v[GeneTargetExperts] = 12
	v[GeneHireBatch] = 2

	strategy, err := e.Expand(v, nil, 300)
	require.NoError(t, err)

	var hireDays []int
	for _, a := range strategy.Actions {
		if a.Kind == sim.ActionHire {
			require.LessOrEqual(t, a.Count, 2)
			hireDays = append(hireDays, a.Day)
		}
	}
	require.NotEmpty(t, hireDays, "no hiring generated toward a target of 12")
	for i := 1; i < len(hireDays); i++ {
		require.GreaterOrEqual(t, hireDays[i]-hireDays[i-1], cfg.Workforce.TrainingDays)
	}
}

func TestExpand_TakesLoanBelowCashFloor(t *testing.T) {
	e := engineFixture()
	v := DefaultVector()
	v[GeneCashFloor] = 45000
	v[GeneLoanAmount] = 30000

	// a cash-starved start keeps the forward estimate under the floor
	start := sim.NewInitialState(sim.DefaultConfig())
	start.Cash = 1000

	strategy, err := e.Expand(v, start, 100)
	require.NoError(t, err)

	found := false
	for _, a := range strategy.Actions {
		if a.Kind == sim.ActionTakeLoan {
			found = true
			assert.InDelta(t, 30000, a.Amount, 1e-9)
			break
		}
	}
	assert.True(t, found, "no loan generated despite starting far below the floor")
}

func TestExpand_PaysDownDebtAboveLevel(t *testing.T) {
	e := engineFixture()
	v := DefaultVector()
	v[GenePaydownLevel] = 60000
	v[GenePaydownFraction] = 0.5

	start := sim.NewInitialState(sim.DefaultConfig())
	start.Cash = 100000
	start.Debt = 40000

	strategy, err := e.Expand(v, start, 60)
	require.NoError(t, err)

	found := false
	for _, a := range strategy.Actions {
		if a.Kind == sim.ActionPayDebt {
			found = true
			assert.Positive(t, a.Amount)
			break
		}
	}
	assert.True(t, found, "no debt paydown generated from a cash-rich, indebted start")
}

func TestExpandBuckets_RejectsMissingVariant(t *testing.T) {
	e := engineFixture()
	set := Uniform(DefaultVector())
	set[BucketMediumCash] = nil

	_, err := e.ExpandBuckets(set, nil, 0)

	assert.Error(t, err)
}

func TestExpandBuckets_RunsEndToEnd(t *testing.T) {
	// Expanded strategies must survive a full simulation run.
	e := engineFixture()
	cfg := sim.DefaultConfig()

	strategy, err := e.ExpandBuckets(Uniform(DefaultVector()), nil, 0)
	require.NoError(t, err)

	res, err := sim.RunSimulation(cfg, strategy, sim.RunOptions{Horizon: 120, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, 120, res.State.History.Len())
}

// === Weekly Schedule Tests ===

func TestExpandWeekly_ReissuesLeversPerSegment(t *testing.T) {
	e := engineFixture()
	w1 := DefaultVector()
	w2 := DefaultVector()
	w2[GeneStandardPrice] = 140

	strategy, err := e.ExpandWeekly([]Vector{w1, w2}, nil, 100)
	require.NoError(t, err)

	found := false
	for _, a := range strategy.Actions {
		if a.Kind == sim.ActionSetPrice && a.Day == 51 {
			found = true
			assert.InDelta(t, 140, a.Amount, 1e-9)
		}
	}
	assert.True(t, found, "segment boundary did not re-issue the price lever")
}

func TestExpandWeekly_RejectsEmptySchedule(t *testing.T) {
	e := engineFixture()
	_, err := e.ExpandWeekly(nil, nil, 100)
	assert.Error(t, err)
}

func TestExpandWeekly_RejectsTooManySegments(t *testing.T) {
	e := engineFixture()
	weeks := make([]Vector, 200)
	for i := range weeks {
		weeks[i] = DefaultVector()
	}
	_, err := e.ExpandWeekly(weeks, nil, 100)
	assert.Error(t, err)
}
