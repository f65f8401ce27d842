package policy

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/factory-sim/factory-sim/sim"
)

// Options tunes the expansion cadence and bucket thresholds.
type Options struct {
	DecisionInterval int     // days between rule evaluations (default 7)
	LowCashMax       float64 // estimated cash below this is the low bucket
	HighCashMin      float64 // estimated cash above this is the high bucket
}

// DefaultOptions matches the thresholds the business rules were written
// against.
func DefaultOptions() Options {
	return Options{
		DecisionInterval: 7,
		LowCashMax:       20000,
		HighCashMin:      100000,
	}
}

// Engine expands a compact parameter vector (or its bucket variants) into
// the complete day-indexed action stream the day simulator consumes.
//
// The engine runs a lightweight forward estimate of cash, debt, and
// headcount (financing and hiring effects with a flat revenue proxy, never
// a production simulation) purely to drive its own subsequent decisions
// during generation. The authoritative run is the day simulator's.
type Engine struct {
	cfg  sim.Config
	opts Options
	log  *logrus.Entry
}

// NewEngine builds an expansion engine for the given business configuration.
func NewEngine(cfg sim.Config, opts Options) *Engine {
	if opts.DecisionInterval <= 0 {
		opts.DecisionInterval = DefaultOptions().DecisionInterval
	}
	if opts.LowCashMax <= 0 {
		opts.LowCashMax = DefaultOptions().LowCashMax
	}
	if opts.HighCashMin <= opts.LowCashMax {
		opts.HighCashMin = DefaultOptions().HighCashMin
	}
	return &Engine{cfg: cfg, opts: opts, log: logrus.WithField("component", "policy")}
}

// Bucket classifies an estimated cash level.
func (e *Engine) Bucket(cash float64) CashBucket {
	switch {
	case cash < e.opts.LowCashMax:
		return BucketLowCash
	case cash > e.opts.HighCashMin:
		return BucketHighCash
	default:
		return BucketMediumCash
	}
}

// Expand converts a single vector into a Strategy, using the same parameters
// for every business-state bucket.
func (e *Engine) Expand(v Vector, start *sim.SimulationState, horizon int) (*sim.Strategy, error) {
	return e.ExpandBuckets(Uniform(v), start, horizon)
}

// ExpandBuckets converts a bucket variant table into a Strategy. The static
// levers come from the medium bucket; the generated action stream selects
// the variant matching the forward-estimated cash state at each decision
// point. Missing variants are fatal before any simulation day executes.
func (e *Engine) ExpandBuckets(set *BucketSet, start *sim.SimulationState, horizon int) (*sim.Strategy, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}
	if horizon <= 0 {
		horizon = e.cfg.Horizon
	}

	base := *set[BucketMediumCash]
	strategy := &sim.Strategy{Params: e.staticParams(base)}

	est := e.newEstimate(start)
	lastHireDay := -e.cfg.Workforce.TrainingDays

	// day 1: steer machine count toward the target before production starts
	targetMachines := int(math.Round(base[GeneTargetMachines]))
	if targetMachines > est.machines {
		strategy.Actions = append(strategy.Actions, sim.Action{
			Day: 1, Kind: sim.ActionBuyMachine, Count: targetMachines - est.machines,
		})
		est.cash -= float64(targetMachines-est.machines) * e.cfg.Production.MachinePrice
		est.machines = targetMachines
	} else if targetMachines < est.machines {
		strategy.Actions = append(strategy.Actions, sim.Action{
			Day: 1, Kind: sim.ActionSellMachine, Count: est.machines - targetMachines,
		})
		est.cash += float64(est.machines-targetMachines) * e.cfg.Production.MachineSalvage
		est.machines = targetMachines
	}

	for day := 1; day <= horizon; day++ {
		est.advance(e.cfg)

		if day%e.opts.DecisionInterval != 0 {
			continue
		}

		v := set[e.Bucket(est.cash)]

		// hiring toward the target, throttled to the training pipeline
		target := int(math.Round(v[GeneTargetExperts]))
		hireBatch := int(math.Round(v[GeneHireBatch]))
		if hireBatch > 0 && est.headcount() < target && day-lastHireDay >= e.cfg.Workforce.TrainingDays {
			n := target - est.headcount()
			if n > hireBatch {
				n = hireBatch
			}
			strategy.Actions = append(strategy.Actions, sim.Action{Day: day, Kind: sim.ActionHire, Count: n})
			est.hire(e.cfg, n)
			lastHireDay = day
		}

		// financing: keep estimated cash above the floor
		if est.cash < v[GeneCashFloor] {
			amount := v[GeneLoanAmount]
			strategy.Actions = append(strategy.Actions, sim.Action{Day: day, Kind: sim.ActionTakeLoan, Amount: amount})
			est.cash += amount * (1 - e.cfg.Finance.LoanCommission)
			est.debt += amount
		}

		// debt management: pay down from surplus cash
		if est.debt > 0 && est.cash > v[GenePaydownLevel] {
			amount := v[GenePaydownFraction] * (est.cash - v[GenePaydownLevel])
			if amount > est.debt {
				amount = est.debt
			}
			if amount > 0 {
				strategy.Actions = append(strategy.Actions, sim.Action{Day: day, Kind: sim.ActionPayDebt, Amount: amount})
				est.cash -= amount
				est.debt -= amount
			}
		}
	}

	return strategy, nil
}

// ExpandWeekly segments the horizon into len(weeks) equal spans and re-issues
// the adjustable levers (price, batch size, allocation) at each boundary from
// that segment's vector. An empty schedule is a fatal configuration error.
func (e *Engine) ExpandWeekly(weeks []Vector, start *sim.SimulationState, horizon int) (*sim.Strategy, error) {
	if len(weeks) == 0 {
		return nil, fmt.Errorf("policy: weekly schedule has no parameter vectors")
	}
	if horizon <= 0 {
		horizon = e.cfg.Horizon
	}

	strategy, err := e.Expand(weeks[0], start, horizon)
	if err != nil {
		return nil, err
	}
	span := horizon / len(weeks)
	if span == 0 {
		return nil, fmt.Errorf("policy: %d segments do not fit in a %d-day horizon", len(weeks), horizon)
	}
	for i := 1; i < len(weeks); i++ {
		day := i*span + 1
		v := weeks[i]
		strategy.Actions = append(strategy.Actions,
			sim.Action{Day: day, Kind: sim.ActionSetPrice, Amount: v[GeneStandardPrice]},
			sim.Action{Day: day, Kind: sim.ActionSetBatchSize, Count: int(math.Round(v[GeneBatchSize]))},
			sim.Action{Day: day, Kind: sim.ActionSetAllocation, Amount: v[GeneAllocation]},
		)
	}
	return strategy, nil
}

// staticParams maps the vector's lever genes onto the strategy's static
// parameter block. The safety-stock gene widens the effective reorder point
// by the expected daily material draw.
func (e *Engine) staticParams(v Vector) sim.PolicyParams {
	dailyDraw := v[GeneBatchSize] +
		e.cfg.Demand.Phase1Mean*float64(e.cfg.Production.MaterialPerCustom)
	reorder := v[GeneReorderPoint] + v[GeneSafetyStockDays]*dailyDraw

	return sim.PolicyParams{
		ReorderPoint:   int(math.Round(reorder)),
		OrderQuantity:  int(math.Round(v[GeneOrderQuantity])),
		BatchSize:      int(math.Round(v[GeneBatchSize])),
		Allocation:     v[GeneAllocation],
		AllocationStep: v[GeneAllocationStep],
		StandardPrice:  v[GeneStandardPrice],
		OvertimeHours:  v[GeneOvertimeHours],
	}
}

// estimate is the engine's lightweight forward state: financing and hiring
// effects plus a flat revenue proxy. Deliberately not a production model.
type estimate struct {
	cash     float64
	debt     float64
	experts  int
	rookies  int
	machines int
	pipeline []int // remaining training days per rookie in training
}

func (e *Engine) newEstimate(start *sim.SimulationState) *estimate {
	if start == nil {
		init := sim.NewInitialState(e.cfg)
		start = init
	}
	est := &estimate{
		cash:     start.Cash,
		debt:     start.Debt,
		experts:  start.Workforce.Experts,
		rookies:  start.Workforce.Rookies,
		machines: start.Machines,
	}
	for _, slot := range start.Workforce.InTraining {
		est.pipeline = append(est.pipeline, slot.DaysRemaining)
	}
	return est
}

func (est *estimate) headcount() int {
	return est.experts + est.rookies
}

func (est *estimate) hire(cfg sim.Config, n int) {
	est.rookies += n
	est.cash -= float64(n) * cfg.Workforce.HiringCost
	for i := 0; i < n; i++ {
		est.pipeline = append(est.pipeline, cfg.Workforce.TrainingDays)
	}
}

// advance rolls the estimate one day forward: training countdowns, salaries,
// interest, and the revenue proxy (expected custom demand at the base price).
func (est *estimate) advance(cfg sim.Config) {
	kept := est.pipeline[:0]
	for _, rem := range est.pipeline {
		rem--
		if rem <= 0 {
			est.rookies--
			est.experts++
			continue
		}
		kept = append(kept, rem)
	}
	est.pipeline = kept

	salaries := float64(est.experts)*cfg.Workforce.ExpertSalary + float64(est.rookies)*cfg.Workforce.RookieSalary
	interest := est.debt * cfg.Finance.DailyDebtRate
	revenue := cfg.Demand.Phase1Mean * cfg.Pricing.CustomBasePrice * 0.6 // flat proxy, haircut for ramp and rejection
	est.cash += revenue - salaries - interest
}
