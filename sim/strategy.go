package sim

import "fmt"

// PolicyParams is the static lever set a Strategy applies from day one.
// The optimizer never touches these directly; it mutates the compact
// parameter vector in sim/policy, which expands into a Strategy.
type PolicyParams struct {
	ReorderPoint  int
	OrderQuantity int
	BatchSize     int

	Allocation     float64 // initial mceAllocationCustom, nudged daily
	AllocationStep float64 // daily nudge magnitude

	StandardPrice float64
	OvertimeHours float64 // 0 disables overtime

	// quit-risk coefficients carried on the strategy so a run can model a
	// more or less loyal workforce than the config default; zero values
	// defer to the config
	OvertimeTriggerDays int
	QuitProbability     float64
}

// Strategy is the complete unit the optimizer mutates: static parameters
// plus a day-indexed stream of discrete actions. It has no behavior; the
// day simulator interprets it.
type Strategy struct {
	Params  PolicyParams
	Actions []Action

	// DemandOverride replaces the configured demand coefficients for this
	// run, e.g. to evaluate a strategy against a forecast scenario.
	DemandOverride *DemandConfig
}

// Validate fails fast on strategies the day simulator cannot interpret.
func (st *Strategy) Validate(cfg Config) error {
	p := st.Params
	if p.ReorderPoint < 0 {
		return fmt.Errorf("strategy: reorder point must be >= 0, got %d", p.ReorderPoint)
	}
	if p.OrderQuantity <= 0 {
		return fmt.Errorf("strategy: order quantity must be > 0, got %d", p.OrderQuantity)
	}
	if p.BatchSize <= 0 {
		return fmt.Errorf("strategy: batch size must be > 0, got %d", p.BatchSize)
	}
	if p.Allocation < cfg.Production.AllocationMin || p.Allocation > cfg.Production.AllocationMax {
		return fmt.Errorf("strategy: allocation %v outside [%v,%v]",
			p.Allocation, cfg.Production.AllocationMin, cfg.Production.AllocationMax)
	}
	if p.StandardPrice <= 0 {
		return fmt.Errorf("strategy: standard price must be > 0, got %v", p.StandardPrice)
	}
	if p.OvertimeHours < 0 || p.OvertimeHours > 8 {
		return fmt.Errorf("strategy: overtime hours must be in [0,8], got %v", p.OvertimeHours)
	}
	if p.QuitProbability < 0 || p.QuitProbability > 1 {
		return fmt.Errorf("strategy: quit probability must be in [0,1], got %v", p.QuitProbability)
	}
	for _, a := range st.Actions {
		if a.Day < 0 {
			return fmt.Errorf("strategy: action %s scheduled on negative day %d", a.Kind, a.Day)
		}
		if a.Kind < 0 || a.Kind >= numActionKinds {
			return fmt.Errorf("strategy: unknown action kind %d", a.Kind)
		}
	}
	if st.DemandOverride != nil {
		if err := st.DemandOverride.Validate(); err != nil {
			return fmt.Errorf("strategy: demand override: %w", err)
		}
	}
	return nil
}

// DefaultStrategy is a conservative baseline useful as a search seed and in
// tests: moderate inventory policy, even capacity split, no timed actions.
func DefaultStrategy(cfg Config) *Strategy {
	return &Strategy{
		Params: PolicyParams{
			ReorderPoint:   200,
			OrderQuantity:  500,
			BatchSize:      60,
			Allocation:     0.5,
			AllocationStep: 0.02,
			StandardPrice:  100,
			OvertimeHours:  0,
		},
	}
}
