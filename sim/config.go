package sim

import "fmt"

// FinanceConfig groups interest, commission, and bankruptcy parameters.
type FinanceConfig struct {
	DailyDebtRate        float64 // interest accrued on start-of-day debt
	DailyCashRate        float64 // interest earned on positive end-of-day cash
	LoanCommission       float64 // commission on ordinary loans, in [0,1)
	SalaryLoanCommission float64 // commission on emergency auto-loans, in [0,1)
	BankruptcyFitness    float64 // sentinel fitness for terminal negative cash
}

// WorkforceConfig groups hiring, training, pay, and attrition parameters.
type WorkforceConfig struct {
	TrainingDays        int     // rookie -> expert training duration
	ExpertRate          float64 // labor units per expert per regular day
	RookieFactor        float64 // rookie productivity as a fraction of expert
	ExpertSalary        float64 // per day
	RookieSalary        float64 // per day (paid during training too)
	OvertimePayFactor   float64 // multiplier on the overtime fraction of pay
	OvertimeTriggerDays int     // consecutive overtime days before quit risk
	QuitProbability     float64 // daily Bernoulli quit chance once triggered
	HiringCost          float64 // one-time cost per hire
}

// InventoryConfig groups raw-material ordering parameters.
type InventoryConfig struct {
	LeadTimeDays        int     // days between order placement and arrival
	UnitCost            float64 // raw material cost per unit, paid at order time
	MinOrderSpacingDays int     // minimum days between consecutive orders
}

// ProductionConfig groups shared-capacity and line parameters.
type ProductionConfig struct {
	MachineCapacity    float64 // units one machine can process per day
	MachinePrice       float64 // purchase price per machine
	MachineSalvage     float64 // sale proceeds per machine
	MinMachines        int     // floor on machine count after sell actions
	StationBatchDays   int     // hold duration at standard stations 2 and 3
	LaborPerStandard   float64 // labor units consumed per standard unit
	LaborPerCustomPass float64 // labor units consumed per custom order per pass
	MaterialPerCustom  int     // raw units consumed when a custom order starts
	CustomWIPCeiling   int     // hard cap on outstanding custom orders
	AllocationMin      float64 // lower bound on mceAllocationCustom
	AllocationMax      float64 // upper bound on mceAllocationCustom
}

// DemandConfig groups the phased stochastic custom-demand model and the
// price-elastic standard-demand line. These coefficients double as the
// demand-context fingerprint used by the strategy memory store.
type DemandConfig struct {
	StdIntercept float64 `yaml:"std_intercept"` // standard demand at price 0
	StdSlope     float64 `yaml:"std_slope"`     // units per currency unit (negative)

	Phase1Mean float64 `yaml:"phase1_mean"` // stable phase, days <= Phase1End
	Phase1Std  float64 `yaml:"phase1_std"`
	Phase3Mean float64 `yaml:"phase3_mean"` // stable phase, TransitionEnd < day <= Phase3End
	Phase3Std  float64 `yaml:"phase3_std"`

	Phase1End     int `yaml:"phase1_end"`     // last day of phase 1
	TransitionEnd int `yaml:"transition_end"` // last day of the linear blend
	Phase3End     int `yaml:"phase3_end"`     // last day before runoff

	RunoffDecay  float64 `yaml:"runoff_decay"`  // mean multiplier per runoff window
	RunoffWindow int     `yaml:"runoff_window"` // days per decay application
	RunoffFloor  float64 `yaml:"runoff_floor"`  // minimum runoff mean
}

// PricingConfig groups the delivery-time-sensitive custom price curve.
type PricingConfig struct {
	CustomBasePrice float64 // full price when deliveries meet the quoted lead
	CustomMinPrice  float64 // floor reached at the maximum lead time
	QuotedLeadDays  float64 // delivery time at or under which full price holds
	MaxLeadDays     float64 // delivery time at which price bottoms out
}

// FitnessConfig groups penalty coefficients applied to the raw net worth.
type FitnessConfig struct {
	RejectionPenalty  float64 // per rejected custom order
	StockoutPenalty   float64 // per zero-inventory day
	LostProdPenalty   float64 // per day production could not start on material
	WriteOffUnitValue float64 // cost basis used to write off unsold inventory
}

// Config is the complete static parameterization of one simulated business.
// Validate must pass before any simulation day executes.
type Config struct {
	Horizon    int // terminal day (inclusive)
	Finance    FinanceConfig
	Workforce  WorkforceConfig
	Inventory  InventoryConfig
	Production ProductionConfig
	Demand     DemandConfig
	Pricing    PricingConfig
	Fitness    FitnessConfig
}

// DefaultConfig returns the authoritative constant set. Where the business
// rules exist in conflicting revisions (overtime trigger 5 vs 10 days, quit
// probability 0.10 vs others) this picks one set; see DESIGN.md.
func DefaultConfig() Config {
	return Config{
		Horizon: 450,
		Finance: FinanceConfig{
			DailyDebtRate:        0.0004,
			DailyCashRate:        0.0001,
			LoanCommission:       0.02,
			SalaryLoanCommission: 0.05,
			BankruptcyFitness:    -1e12,
		},
		Workforce: WorkforceConfig{
			TrainingDays:        15,
			ExpertRate:          30,
			RookieFactor:        0.4,
			ExpertSalary:        150,
			RookieSalary:        90,
			OvertimePayFactor:   1.5,
			OvertimeTriggerDays: 5,
			QuitProbability:     0.10,
			HiringCost:          1000,
		},
		Inventory: InventoryConfig{
			LeadTimeDays:        4,
			UnitCost:            50,
			MinOrderSpacingDays: 2,
		},
		Production: ProductionConfig{
			MachineCapacity:    100,
			MachinePrice:       20000,
			MachineSalvage:     10000,
			MinMachines:        1,
			StationBatchDays:   2,
			LaborPerStandard:   1,
			LaborPerCustomPass: 2,
			MaterialPerCustom:  1,
			CustomWIPCeiling:   360,
			AllocationMin:      0.1,
			AllocationMax:      0.9,
		},
		Demand: DemandConfig{
			StdIntercept:  500,
			StdSlope:      -2,
			Phase1Mean:    25,
			Phase1Std:     5,
			Phase3Mean:    35,
			Phase3Std:     7,
			Phase1End:     172,
			TransitionEnd: 218,
			Phase3End:     400,
			RunoffDecay:   0.95,
			RunoffWindow:  30,
			RunoffFloor:   1,
		},
		Pricing: PricingConfig{
			CustomBasePrice: 225,
			CustomMinPrice:  90,
			QuotedLeadDays:  5,
			MaxLeadDays:     10,
		},
		Fitness: FitnessConfig{
			RejectionPenalty:  50,
			StockoutPenalty:   500,
			LostProdPenalty:   300,
			WriteOffUnitValue: 50,
		},
	}
}

// Validate fails fast on configurations that would make a simulation day
// silently undefined. Business-level rejections are not errors; these are.
func (c Config) Validate() error {
	if c.Horizon <= 0 {
		return fmt.Errorf("config: horizon must be > 0, got %d", c.Horizon)
	}
	if c.Finance.DailyDebtRate < 0 || c.Finance.DailyCashRate < 0 {
		return fmt.Errorf("config: daily interest rates must be >= 0, got debt=%v cash=%v",
			c.Finance.DailyDebtRate, c.Finance.DailyCashRate)
	}
	if c.Finance.LoanCommission < 0 || c.Finance.LoanCommission >= 1 {
		return fmt.Errorf("config: loan commission must be in [0,1), got %v", c.Finance.LoanCommission)
	}
	if c.Finance.SalaryLoanCommission < 0 || c.Finance.SalaryLoanCommission >= 1 {
		return fmt.Errorf("config: salary loan commission must be in [0,1), got %v", c.Finance.SalaryLoanCommission)
	}
	if c.Workforce.TrainingDays <= 0 {
		return fmt.Errorf("config: training days must be > 0, got %d", c.Workforce.TrainingDays)
	}
	if c.Workforce.QuitProbability < 0 || c.Workforce.QuitProbability > 1 {
		return fmt.Errorf("config: quit probability must be in [0,1], got %v", c.Workforce.QuitProbability)
	}
	if c.Inventory.LeadTimeDays <= 0 {
		return fmt.Errorf("config: lead time must be > 0, got %d", c.Inventory.LeadTimeDays)
	}
	if c.Production.CustomWIPCeiling <= 0 {
		return fmt.Errorf("config: custom WIP ceiling must be > 0, got %d", c.Production.CustomWIPCeiling)
	}
	if c.Production.AllocationMin < 0 || c.Production.AllocationMax > 1 ||
		c.Production.AllocationMin >= c.Production.AllocationMax {
		return fmt.Errorf("config: allocation bounds must satisfy 0 <= min < max <= 1, got [%v,%v]",
			c.Production.AllocationMin, c.Production.AllocationMax)
	}
	if c.Production.MachineCapacity <= 0 {
		return fmt.Errorf("config: machine capacity must be > 0, got %v", c.Production.MachineCapacity)
	}
	if err := c.Demand.Validate(); err != nil {
		return err
	}
	if c.Pricing.MaxLeadDays <= c.Pricing.QuotedLeadDays {
		return fmt.Errorf("config: max lead days must exceed quoted lead days, got %v <= %v",
			c.Pricing.MaxLeadDays, c.Pricing.QuotedLeadDays)
	}
	return nil
}

// Validate checks phase ordering and decay sanity of the demand model.
func (d DemandConfig) Validate() error {
	if d.Phase1End <= 0 || d.TransitionEnd <= d.Phase1End || d.Phase3End <= d.TransitionEnd {
		return fmt.Errorf("config: demand phases must satisfy 0 < phase1End < transitionEnd < phase3End, got %d/%d/%d",
			d.Phase1End, d.TransitionEnd, d.Phase3End)
	}
	if d.RunoffDecay <= 0 || d.RunoffDecay > 1 {
		return fmt.Errorf("config: runoff decay must be in (0,1], got %v", d.RunoffDecay)
	}
	if d.RunoffWindow <= 0 {
		return fmt.Errorf("config: runoff window must be > 0, got %d", d.RunoffWindow)
	}
	if d.Phase1Std < 0 || d.Phase3Std < 0 {
		return fmt.Errorf("config: demand std deviations must be >= 0, got %v/%v", d.Phase1Std, d.Phase3Std)
	}
	return nil
}

// Fingerprint returns the demand-context vector used by the strategy memory
// store to decide whether a recorded result is numerically similar to the
// current scenario.
func (d DemandConfig) Fingerprint() []float64 {
	return []float64{d.StdIntercept, d.StdSlope, d.Phase1Mean, d.Phase1Std, d.Phase3Mean, d.Phase3Std}
}
