package sim

import (
	"github.com/sirupsen/logrus"
)

// DayCapacity is the day's split of the shared machine stage and labor pool
// between the two lines. Labor is split in the same proportion as machine
// capacity so neither line can starve the other of labor while holding
// machine capacity.
type DayCapacity struct {
	MachineStandard float64
	MachineCustom   float64
	LaborStandard   float64
	LaborCustom     float64

	laborAvailable float64
	laborUsed      float64
}

// Utilization is consumed labor over available labor for the day.
func (c *DayCapacity) Utilization() float64 {
	if c.laborAvailable <= 0 {
		return 0
	}
	return c.laborUsed / c.laborAvailable
}

// CustomResult reports one day of custom-line production.
type CustomResult struct {
	Started       int
	Completed     int
	DeliveryDays  []float64 // one entry per completed order
	MaterialShort bool      // an order could not start for lack of material
}

// StandardResult reports one day of standard-line production.
type StandardResult struct {
	Started       int // units entering the pre-stage buffer
	Completed     int // units exiting station 3 into finished goods
	MaterialShort bool
}

// Lines owns both production lines and the shared-capacity allocation.
type Lines struct {
	cfg ProductionConfig
	log *logrus.Entry
}

// NewLines builds the production subsystem.
func NewLines(cfg ProductionConfig, log *logrus.Entry) *Lines {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Lines{cfg: cfg, log: log}
}

// Allocate nudges the machine-allocation fraction within its bounds based on
// queue pressure, then splits the day's machine and labor capacity between
// the lines in that proportion. Increase toward custom when its WIP
// approaches the ceiling; decrease when the standard line's finished-goods
// buffer is empty and its WIP is low.
func (p *Lines) Allocate(s *SimulationState, laborCapacity float64, nudgeStep float64, batchSize int) DayCapacity {
	if float64(s.OutstandingCustom()) >= 0.8*float64(p.cfg.CustomWIPCeiling) {
		s.Allocation += nudgeStep
	} else if s.FinishedGoods == 0 && s.Standard.TotalUnits() < 2*batchSize {
		s.Allocation -= nudgeStep
	}
	s.Allocation = clamp(s.Allocation, p.cfg.AllocationMin, p.cfg.AllocationMax)

	machineCapacity := float64(s.Machines) * p.cfg.MachineCapacity
	return DayCapacity{
		MachineStandard: machineCapacity * (1 - s.Allocation),
		MachineCustom:   machineCapacity * s.Allocation,
		LaborStandard:   laborCapacity * (1 - s.Allocation),
		LaborCustom:     laborCapacity * s.Allocation,
		laborAvailable:  laborCapacity,
	}
}

// RunStandard advances the make-to-stock line. The standard line runs first
// each day: it has documented priority on raw materials.
//
// Station pass order is reverse (3, 2, 1, pre, line head) so a batch advances
// at most one station per day and no unit is double-moved. Batches too large
// for the day's remaining capacity split: the processable front advances as
// its own batch, the remainder waits. Units are conserved across every move.
func (p *Lines) RunStandard(s *SimulationState, cap *DayCapacity, batchSize int) StandardResult {
	var res StandardResult
	w := &s.Standard

	// Station 3: release batches whose batching hold expired, bounded by the
	// standard share of labor.
	laborBudget := cap.LaborStandard
	var stay3 []Batch
	for _, b := range w.Stations[StationThree] {
		if b.BatchingDaysLeft > 0 {
			b.BatchingDaysLeft--
			stay3 = append(stay3, b)
			continue
		}
		processable := int(laborBudget / p.cfg.LaborPerStandard)
		if processable <= 0 {
			stay3 = append(stay3, b)
			continue
		}
		moved := min(b.Units, processable)
		laborBudget -= float64(moved) * p.cfg.LaborPerStandard
		cap.laborUsed += float64(moved) * p.cfg.LaborPerStandard
		s.FinishedGoods += moved
		res.Completed += moved
		if moved < b.Units {
			b.Units -= moved
			stay3 = append(stay3, b)
		}
	}
	w.Stations[StationThree] = stay3

	// Station 2: move expired holds into station 3, resetting the hold.
	var stay2 []Batch
	for _, b := range w.Stations[StationTwo] {
		if b.BatchingDaysLeft > 0 {
			b.BatchingDaysLeft--
			stay2 = append(stay2, b)
			continue
		}
		b.BatchingDaysLeft = p.cfg.StationBatchDays
		w.Stations[StationThree] = append(w.Stations[StationThree], b)
	}
	w.Stations[StationTwo] = stay2

	// Station 1 processes immediately: everything it holds enters station 2's
	// batching hold.
	for _, b := range w.Stations[StationOne] {
		b.BatchingDaysLeft = p.cfg.StationBatchDays
		w.Stations[StationTwo] = append(w.Stations[StationTwo], b)
	}
	w.Stations[StationOne] = nil

	// Pre-stage -> station 1 is the shared machine stage, bounded by the
	// standard share of machine capacity.
	machineBudget := cap.MachineStandard
	var stayPre []Batch
	for _, b := range w.Stations[StationPre] {
		processable := int(machineBudget)
		if processable <= 0 {
			stayPre = append(stayPre, b)
			continue
		}
		moved := min(b.Units, processable)
		machineBudget -= float64(moved)
		if moved == b.Units {
			w.Stations[StationOne] = append(w.Stations[StationOne], b)
		} else {
			w.Stations[StationOne] = append(w.Stations[StationOne], Batch{Units: moved, StartDay: b.StartDay})
			b.Units -= moved
			stayPre = append(stayPre, b)
		}
	}
	w.Stations[StationPre] = stayPre

	// Line head: create one batch per day by consuming raw material. The
	// batch is rejected wholesale when material cannot cover it; that is a
	// lost-production signal, not an error.
	if batchSize > 0 {
		if s.RawInventory >= batchSize {
			s.RawInventory -= batchSize
			w.Stations[StationPre] = append(w.Stations[StationPre], Batch{
				Units:    batchSize,
				StartDay: s.CurrentDay,
			})
			res.Started = batchSize
		} else {
			res.MaterialShort = true
		}
	}

	return res
}

// RunCustom advances the make-to-order line after the standard line has
// taken its share. Orders advance at most one station per day; capacity on
// the shared machine stage and the custom labor share bounds how many move.
func (p *Lines) RunCustom(s *SimulationState, cap *DayCapacity) CustomResult {
	var res CustomResult

	// age every open order
	for i := range s.Custom {
		s.Custom[i].DaysInProduction++
		s.Custom[i].DaysAtStation++
	}

	laborBudget := cap.LaborCustom
	machineBudget := cap.MachineCustom

	// Reverse pass: completions first so an order never crosses two stations
	// in one day.
	kept := s.Custom[:0]
	for _, o := range s.Custom {
		switch o.Station {
		case CustomLaborTwo:
			if laborBudget >= p.cfg.LaborPerCustomPass {
				laborBudget -= p.cfg.LaborPerCustomPass
				cap.laborUsed += p.cfg.LaborPerCustomPass
				res.Completed++
				delivery := float64(s.CurrentDay - o.StartDay + 1)
				res.DeliveryDays = append(res.DeliveryDays, delivery)
				s.recordDelivery(delivery)
				continue // order leaves the collection
			}
		case CustomLaborOne:
			if laborBudget >= p.cfg.LaborPerCustomPass {
				laborBudget -= p.cfg.LaborPerCustomPass
				cap.laborUsed += p.cfg.LaborPerCustomPass
				o.Station = CustomLaborTwo
				o.DaysAtStation = 0
			}
		case CustomMachine:
			// machine work happened on entry; the pass to labor is free
			o.Station = CustomLaborOne
			o.DaysAtStation = 0
		case CustomWaiting:
			if machineBudget >= 1 {
				if s.RawInventory >= p.cfg.MaterialPerCustom {
					s.RawInventory -= p.cfg.MaterialPerCustom
					machineBudget--
					o.Station = CustomMachine
					o.DaysAtStation = 0
					res.Started++
				} else {
					res.MaterialShort = true
				}
			}
		}
		kept = append(kept, o)
	}
	s.Custom = kept

	return res
}

// AcceptCustomOrders admits today's demand while total outstanding custom
// WIP stays below the hard ceiling. Demand beyond the ceiling is a counted
// rejection, not a queue.
func (p *Lines) AcceptCustomOrders(s *SimulationState, demand int) (accepted, rejected int) {
	for i := 0; i < demand; i++ {
		if len(s.Custom) >= p.cfg.CustomWIPCeiling {
			rejected++
			continue
		}
		s.Custom = append(s.Custom, CustomOrder{
			ID:       s.NextOrderID,
			StartDay: s.CurrentDay,
			Station:  CustomWaiting,
		})
		s.NextOrderID++
		accepted++
	}
	s.Counters.RejectedCustomOrders += rejected
	return accepted, rejected
}

// BuyMachines purchases count machines through the payment primitive.
func (p *Lines) BuyMachines(s *SimulationState, fin *Finance, count int) {
	if count <= 0 {
		return
	}
	fin.ProcessPayment(s, float64(count)*p.cfg.MachinePrice, "machine purchase")
	s.Machines += count
}

// SellMachines disposes of up to count machines at salvage value, never
// dropping below the configured floor.
func (p *Lines) SellMachines(s *SimulationState, count int) int {
	if count <= 0 {
		return 0
	}
	sellable := s.Machines - p.cfg.MinMachines
	if sellable <= 0 {
		return 0
	}
	sold := min(count, sellable)
	s.Machines -= sold
	s.Cash += float64(sold) * p.cfg.MachineSalvage
	return sold
}

// WriteOffValue values all unsold inventory and WIP at cost: it is worthless
// at shutdown, so the fitness function subtracts it from terminal net worth.
func WriteOffValue(cfg ProductionConfig, s *SimulationState, unitValue float64) float64 {
	units := s.RawInventory + s.FinishedGoods + s.Standard.TotalUnits()
	value := float64(units) * unitValue
	// open custom orders are written off at their committed material cost
	for _, o := range s.Custom {
		if o.Station != CustomWaiting {
			value += float64(cfg.MaterialPerCustom) * unitValue
		}
	}
	return value
}
