package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Simulator executes one business trajectory day by day. It owns its
// SimulationState exclusively; branch a trajectory by cloning the state and
// building a new Simulator. Strictly sequential within one run.
type Simulator struct {
	cfg      Config
	strategy *Strategy
	state    *SimulationState

	fin    *Finance
	labor  *Labor
	stock  *Stock
	lines  *Lines
	demand *DemandModel
	rng    *PartitionedRNG
	log    *logrus.Entry

	// levers the action stream may adjust mid-run
	batchSize     int
	standardPrice float64
}

// NewSimulator validates configuration and strategy before any day executes
// (configuration errors are fatal here, never swallowed mid-run), then wires
// the subsystems around a cloned or fresh state.
func NewSimulator(cfg Config, strategy *Strategy, start *SimulationState, seed int64) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if strategy == nil {
		return nil, fmt.Errorf("simulator: strategy must not be nil")
	}
	if err := strategy.Validate(cfg); err != nil {
		return nil, err
	}

	if strategy.DemandOverride != nil {
		cfg.Demand = *strategy.DemandOverride
	}

	// strategy-level quit-risk coefficients override the config defaults
	if strategy.Params.OvertimeTriggerDays > 0 {
		cfg.Workforce.OvertimeTriggerDays = strategy.Params.OvertimeTriggerDays
	}
	if strategy.Params.QuitProbability > 0 {
		cfg.Workforce.QuitProbability = strategy.Params.QuitProbability
	}

	var state *SimulationState
	if start != nil {
		state = start.Clone()
	} else {
		state = NewInitialState(cfg)
	}
	state.Allocation = clamp(strategy.Params.Allocation, cfg.Production.AllocationMin, cfg.Production.AllocationMax)

	log := logrus.WithField("component", "simulator")
	rng := NewPartitionedRNG(NewSimulationKey(seed))
	fin := NewFinance(cfg.Finance, log)

	return &Simulator{
		cfg:           cfg,
		strategy:      strategy,
		state:         state,
		fin:           fin,
		labor:         NewLabor(cfg.Workforce, fin, log),
		stock:         NewStock(cfg.Inventory, fin, log),
		lines:         NewLines(cfg.Production, log),
		demand:        NewDemandModel(cfg.Demand, NewNormalSource(rng.ForSubsystem(SubsystemDemand))),
		rng:           rng,
		log:           log,
		batchSize:     strategy.Params.BatchSize,
		standardPrice: strategy.Params.StandardPrice,
	}, nil
}

// State exposes the owned state for inspection after (or between) runs.
func (sim *Simulator) State() *SimulationState {
	return sim.state
}

// Run advances the state day by day until the horizon day (inclusive). The
// horizon is the only exit condition; there is no mid-run cancellation.
func (sim *Simulator) Run(horizon int) {
	for sim.state.CurrentDay < horizon {
		sim.RunDay()
	}
	sim.log.Debugf("simulation ended at day %d: cash=%.2f debt=%.2f", sim.state.CurrentDay, sim.state.Cash, sim.state.Debt)
}

// RunDay executes one day in the fixed, business-mandated transaction order.
// The step sequence is a hard contract: downstream bookkeeping (interest on
// start-of-day balances, standard line priority on materials, price from
// realized delivery times) assumes exactly this ordering.
func (sim *Simulator) RunDay() {
	s := sim.state
	s.CurrentDay++
	day := s.CurrentDay
	startOfDayDebt := s.Debt
	sim.fin.ResetDay()

	// 1. timed and rule-engine actions, merged per kind
	actions := ActionsForDay(sim.strategy.Actions, day)
	taken := make([]ActionKind, 0, len(actions))
	for _, a := range actions {
		sim.execute(a)
		taken = append(taken, a.Kind)
	}

	// 2. receive materials ordered leadTime days ago
	sim.stock.ReceiveArrivals(s)

	// 3. training pipeline advances; promotions happen exactly at zero
	sim.labor.AdvanceTraining(s)

	// 4. salaries and overtime premium through the payment primitive
	ot := sim.strategy.Params.OvertimeHours
	sim.labor.PaySalaries(s, ot)

	// 5. overtime streaks and stochastic quit risk
	sim.labor.TrackOvertime(s, ot > 0, sim.rng.ForSubsystem(SubsystemWorkforce))

	// 6. debt interest on the start-of-day balance
	sim.fin.ApplyDebtInterest(s, startOfDayDebt)

	// 7. reorder trigger, immediate cash effect
	sim.stock.EvaluateReorder(s, sim.strategy.Params.ReorderPoint, sim.strategy.Params.OrderQuantity)

	// 8. today's demand for both products; custom acceptance against the
	// WIP ceiling happens here, so a line at the ceiling rejects everything
	stdDemand := sim.demand.StandardDemand(sim.standardPrice)
	customDemand := sim.demand.CustomDemand(day)
	accepted, rejected := sim.lines.AcceptCustomOrders(s, customDemand)

	// 9. split shared machine and labor capacity between the lines
	capacity := sim.lines.Allocate(s, sim.labor.Capacity(s, ot), sim.strategy.Params.AllocationStep, sim.batchSize)

	// 10. standard line first (documented material priority), then custom
	stdRes := sim.lines.RunStandard(s, &capacity, sim.batchSize)
	custRes := sim.lines.RunCustom(s, &capacity)

	// 11. prices: custom price follows realized average delivery time
	avgDelivery := s.AvgDeliveryDays(sim.cfg.Pricing.QuotedLeadDays)
	customPrice := CustomPrice(sim.cfg.Pricing, avgDelivery)

	// 12. sales against demand limits
	sold := stdDemand
	if sold > s.FinishedGoods {
		sold = s.FinishedGoods
	}
	s.FinishedGoods -= sold
	revenue := float64(sold)*sim.standardPrice + float64(custRes.Completed)*customPrice
	s.Cash += revenue

	// 13. cash interest on the end-of-day balance
	sim.fin.ApplyCashInterest(s)

	// 14. record the day's full metric set
	lost := stdRes.MaterialShort || custRes.MaterialShort
	stockout := sim.stock.NoteEndOfDay(s, lost)
	s.History.Append(DayRecord{
		Day:               day,
		Cash:              s.Cash,
		Debt:              s.Debt,
		NetWorth:          s.NetWorth(),
		RawInventory:      s.RawInventory,
		Experts:           s.Workforce.Experts,
		Rookies:           s.Workforce.Rookies,
		InTraining:        len(s.Workforce.InTraining),
		Machines:          s.Machines,
		StandardWIPUnits:  s.Standard.TotalUnits(),
		CustomWIPOrders:   len(s.Custom),
		FinishedGoods:     s.FinishedGoods,
		StandardStarted:   stdRes.Started,
		StandardCompleted: stdRes.Completed,
		CustomStarted:     custRes.Started,
		CustomCompleted:   custRes.Completed,
		StandardDemand:    stdDemand,
		StandardSold:      sold,
		CustomDemand:      customDemand,
		CustomAccepted:    accepted,
		CustomRejected:    rejected,
		StandardPrice:     sim.standardPrice,
		CustomPrice:       customPrice,
		AvgDeliveryDays:   avgDelivery,
		Allocation:        s.Allocation,
		OvertimeHours:     ot,
		Utilization:       capacity.Utilization(),
		Revenue:           revenue,
		Expenses:          sim.fin.DayExpenses(),
		Stockout:          stockout,
		LostProduction:    lost,
		ActionsTaken:      taken,
	})
}

// execute dispatches one merged action. This is the single dispatch site for
// the tagged variant; the switch is exhaustive over every ActionKind.
func (sim *Simulator) execute(a Action) {
	s := sim.state
	switch a.Kind {
	case ActionTakeLoan:
		sim.fin.TakeLoan(s, a.Amount, false)
	case ActionPayDebt:
		sim.fin.PayDebt(s, a.Amount)
	case ActionHire:
		sim.labor.Hire(s, a.Count)
	case ActionBuyMachine:
		sim.lines.BuyMachines(s, sim.fin, a.Count)
	case ActionSellMachine:
		sim.lines.SellMachines(s, a.Count)
	case ActionOrderMaterials:
		sim.stock.PlaceOrder(s, a.Count)
	case ActionSetBatchSize:
		if a.Count > 0 {
			sim.batchSize = a.Count
		}
	case ActionSetAllocation:
		s.Allocation = clamp(a.Amount, sim.cfg.Production.AllocationMin, sim.cfg.Production.AllocationMax)
	case ActionSetPrice:
		if a.Amount > 0 {
			sim.standardPrice = a.Amount
		}
	default:
		// Strategy.Validate rejects unknown kinds before day 0
		sim.log.Warnf("day %d: ignoring unknown action kind %d", s.CurrentDay, a.Kind)
	}
}
