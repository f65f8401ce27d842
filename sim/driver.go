package sim

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// RunResult bundles the outputs of one full simulation run. State carries
// the complete per-day history for reporting and validation.
type RunResult struct {
	FinalCash     float64
	FinalDebt     float64
	FinalNetWorth float64
	Fitness       float64
	Bankrupt      bool
	State         *SimulationState
}

// RunOptions parameterizes RunSimulation beyond the strategy itself.
type RunOptions struct {
	Horizon int              // 0 = config horizon
	Start   *SimulationState // nil = canonical initial state (cloned if set)
	Seed    int64
}

// RunSimulation executes a strategy over the day range and scores it.
// Deterministic given the seed: identical inputs produce byte-identical
// history series. Each call owns its state; nothing is shared across calls,
// so a batch of evaluations may run concurrently.
func RunSimulation(cfg Config, strategy *Strategy, opts RunOptions) (*RunResult, error) {
	horizon := opts.Horizon
	if horizon == 0 {
		horizon = cfg.Horizon
	}
	sim, err := NewSimulator(cfg, strategy, opts.Start, opts.Seed)
	if err != nil {
		return nil, err
	}
	sim.Run(horizon)

	s := sim.State()
	res := &RunResult{
		FinalCash:     s.Cash,
		FinalDebt:     s.Debt,
		FinalNetWorth: s.NetWorth(),
		State:         s,
	}
	res.Fitness, res.Bankrupt = Score(cfg, s)
	return res, nil
}

// EvaluateStrategy is the thin scalar wrapper for tight optimizer loops.
func EvaluateStrategy(cfg Config, strategy *Strategy, opts RunOptions) (float64, error) {
	res, err := RunSimulation(cfg, strategy, opts)
	if err != nil {
		return 0, err
	}
	return res.Fitness, nil
}

// Score computes the fitness of a completed trajectory:
//
//	netWorth - inventoryWriteOff - sum(penalties)
//
// where the write-off values all unsold inventory and WIP at cost (worthless
// at shutdown) and penalties are linear in the rejection, stockout, and
// lost-production counters. Terminal negative cash is catastrophic and maps
// to the sentinel fitness so the optimizer can still rank it.
func Score(cfg Config, s *SimulationState) (fitness float64, bankrupt bool) {
	if s.Cash < 0 {
		return cfg.Finance.BankruptcyFitness, true
	}
	writeOff := WriteOffValue(cfg.Production, s, cfg.Fitness.WriteOffUnitValue)
	penalties := float64(s.Counters.RejectedCustomOrders)*cfg.Fitness.RejectionPenalty +
		float64(s.Counters.StockoutDays)*cfg.Fitness.StockoutPenalty +
		float64(s.Counters.LostProductionDays)*cfg.Fitness.LostProdPenalty
	return s.NetWorth() - writeOff - penalties, false
}

// Summary condenses a completed run's history into the distribution metrics
// the CLI prints and the validator samples.
type Summary struct {
	Days            int
	FinalNetWorth   float64
	MeanDelivery    float64
	P95Delivery     float64
	MaxDelivery     float64
	OnTimeFraction  float64 // deliveries at or under the quoted lead
	MeanUtilization float64
	TotalRejected   int
	StockoutDays    int
	LostProdDays    int
}

// Summarize computes the run summary from history and counters.
func Summarize(cfg Config, s *SimulationState) Summary {
	sum := Summary{
		Days:          s.History.Len(),
		FinalNetWorth: s.NetWorth(),
		TotalRejected: s.Counters.RejectedCustomOrders,
		StockoutDays:  s.Counters.StockoutDays,
		LostProdDays:  s.Counters.LostProductionDays,
	}

	// per-day average delivery times, weighted implicitly by recording days
	deliveries := make([]float64, 0, s.History.Len())
	onTime, completed := 0, 0
	for _, d := range s.History.Days {
		if d.CustomCompleted > 0 {
			deliveries = append(deliveries, d.AvgDeliveryDays)
			completed += d.CustomCompleted
			if d.AvgDeliveryDays <= cfg.Pricing.QuotedLeadDays {
				onTime += d.CustomCompleted
			}
		}
	}
	if len(deliveries) > 0 {
		sum.MeanDelivery = stat.Mean(deliveries, nil)
		sorted := append([]float64(nil), deliveries...)
		sort.Float64s(sorted)
		sum.P95Delivery = stat.Quantile(0.95, stat.Empirical, sorted, nil)
		sum.MaxDelivery = sorted[len(sorted)-1]
	}
	if completed > 0 {
		sum.OnTimeFraction = float64(onTime) / float64(completed)
	}

	util := s.History.Series(func(d DayRecord) float64 { return d.Utilization })
	if len(util) > 0 {
		sum.MeanUtilization = stat.Mean(util, nil)
	}
	return sum
}
