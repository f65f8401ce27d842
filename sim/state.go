package sim

// Batch is one standard-line work-in-process batch. A batch is created when
// raw material is consumed at the line head and destroyed when it exits the
// final station into finished goods.
type Batch struct {
	Units            int
	StartDay         int
	BatchingDaysLeft int
}

// Standard-line station indices. Batches flow pre-stage -> stage 1 -> stage 2
// -> stage 3 -> finished goods. Stations 2 and 3 hold batches for a fixed
// number of batching days before releasing them.
const (
	StationPre = iota
	StationOne
	StationTwo
	StationThree
	NumStandardStations
)

// StandardWIP holds the four ordered station buffers of the standard line.
type StandardWIP struct {
	Stations [NumStandardStations][]Batch
}

// TotalUnits returns all units currently in the standard line.
func (w *StandardWIP) TotalUnits() int {
	total := 0
	for _, st := range w.Stations {
		for _, b := range st {
			total += b.Units
		}
	}
	return total
}

// CustomStation is the fixed station sequence of a make-to-order custom order.
type CustomStation int

const (
	CustomWaiting CustomStation = iota // accepted, material not yet committed
	CustomMachine                      // shared machine stage
	CustomLaborOne                     // first labor pass
	CustomLaborTwo                     // second labor pass / alternate stage
	CustomComplete
)

// String names the station for logs and history.
func (s CustomStation) String() string {
	switch s {
	case CustomWaiting:
		return "waiting"
	case CustomMachine:
		return "machine"
	case CustomLaborOne:
		return "labor-1"
	case CustomLaborTwo:
		return "labor-2"
	case CustomComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// CustomOrder is one individually tracked make-to-order unit of work.
type CustomOrder struct {
	ID               int
	StartDay         int
	DaysInProduction int
	Station          CustomStation
	DaysAtStation    int
}

// EmployeeType discriminates overtime tracking entries.
type EmployeeType int

const (
	EmployeeExpert EmployeeType = iota
	EmployeeRookie
)

// TrainingSlot tracks one rookie's countdown to promotion.
type TrainingSlot struct {
	HireDay       int
	DaysRemaining int
}

// OvertimeRecord tracks one employee's consecutive overtime streak, which
// drives stochastic attrition once it reaches the configured trigger.
type OvertimeRecord struct {
	Type            EmployeeType
	ConsecutiveDays int
}

// Workforce is the shared labor pool state.
type Workforce struct {
	Experts    int
	Rookies    int
	InTraining []TrainingSlot
	Overtime   []OvertimeRecord
}

// Headcount returns experts plus rookies (trainees are rookies).
func (w *Workforce) Headcount() int {
	return w.Experts + w.Rookies
}

// MaterialOrder is one in-flight raw-material purchase. Cash was charged at
// order time; arrival only increases inventory.
type MaterialOrder struct {
	OrderDay   int
	ArrivalDay int
	Units      int
}

// Counters aggregates the business-level rejection and shortage events that
// feed fitness penalties and validator checks. Rejections are counted, never
// raised as errors.
type Counters struct {
	RejectedCustomOrders int // demand beyond the WIP ceiling
	RejectedMatOrders    int // reorders with insufficient cash
	StockoutDays         int // days ending with zero raw inventory
	LostProductionDays   int // days production could not start on material
	ResidueCorrections   int // floating-point clamps in the payment primitive
}

// SimulationState is the mutable root of one simulated business. It is owned
// exclusively by one run; Clone is the only sanctioned way to branch.
type SimulationState struct {
	CurrentDay int

	Cash float64
	Debt float64

	RawInventory   int
	LastOrderDay   int // -1 until the first material order
	MaterialOrders []MaterialOrder

	Workforce Workforce
	Machines  int

	Standard      StandardWIP
	FinishedGoods int // completed standard units awaiting sale

	Custom       []CustomOrder
	NextOrderID  int
	RecentDelivs []float64 // delivery times of recent completions, bounded ring

	Allocation float64 // mceAllocationCustom, nudged within configured bounds

	Counters Counters
	History  History
}

// recentDeliveryCap bounds the delivery-time ring used for pricing.
const recentDeliveryCap = 50

// NewInitialState builds the canonical day-zero business.
func NewInitialState(cfg Config) *SimulationState {
	return &SimulationState{
		CurrentDay:   0,
		Cash:         50000,
		Debt:         0,
		RawInventory: 500,
		LastOrderDay: -1,
		Workforce: Workforce{
			Experts: 4,
			Rookies: 0,
			Overtime: []OvertimeRecord{
				{Type: EmployeeExpert},
				{Type: EmployeeExpert},
				{Type: EmployeeExpert},
				{Type: EmployeeExpert},
			},
		},
		Machines:    2,
		NextOrderID: 1,
		Allocation:  clamp(0.5, cfg.Production.AllocationMin, cfg.Production.AllocationMax),
	}
}

// Clone returns a deep structural copy of the state. No slice or map is
// shared with the receiver, so two trajectories never alias. This is an
// explicit value copy over the typed state graph, not a serialization
// round-trip.
func (s *SimulationState) Clone() *SimulationState {
	c := *s // copies all scalar fields

	for i := range s.Standard.Stations {
		c.Standard.Stations[i] = append([]Batch(nil), s.Standard.Stations[i]...)
	}
	c.Custom = append([]CustomOrder(nil), s.Custom...)
	c.MaterialOrders = append([]MaterialOrder(nil), s.MaterialOrders...)
	c.RecentDelivs = append([]float64(nil), s.RecentDelivs...)
	c.Workforce.InTraining = append([]TrainingSlot(nil), s.Workforce.InTraining...)
	c.Workforce.Overtime = append([]OvertimeRecord(nil), s.Workforce.Overtime...)
	c.History = s.History.Clone()

	return &c
}

// NetWorth is cash minus debt. Inventory write-off is applied by the fitness
// function, not here.
func (s *SimulationState) NetWorth() float64 {
	return s.Cash - s.Debt
}

// OutstandingCustom counts custom orders that have not completed.
func (s *SimulationState) OutstandingCustom() int {
	return len(s.Custom)
}

// recordDelivery pushes one completed order's delivery time into the bounded
// ring consumed by the pricing model.
func (s *SimulationState) recordDelivery(days float64) {
	s.RecentDelivs = append(s.RecentDelivs, days)
	if len(s.RecentDelivs) > recentDeliveryCap {
		s.RecentDelivs = s.RecentDelivs[len(s.RecentDelivs)-recentDeliveryCap:]
	}
}

// AvgDeliveryDays is the mean delivery time over the recent-completion ring.
// Returns the quoted lead time when nothing has completed yet, so pricing
// starts at full price.
func (s *SimulationState) AvgDeliveryDays(quoted float64) float64 {
	if len(s.RecentDelivs) == 0 {
		return quoted
	}
	sum := 0.0
	for _, d := range s.RecentDelivs {
		sum += d
	}
	return sum / float64(len(s.RecentDelivs))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
