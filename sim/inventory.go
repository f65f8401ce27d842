package sim

import "github.com/sirupsen/logrus"

// Stock owns raw-material ordering with lead time, reorder-point triggers,
// and stockout bookkeeping.
type Stock struct {
	cfg InventoryConfig
	fin *Finance
	log *logrus.Entry
}

// NewStock builds the inventory subsystem around the shared Finance primitive.
func NewStock(cfg InventoryConfig, fin *Finance, log *logrus.Entry) *Stock {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Stock{cfg: cfg, fin: fin, log: log}
}

// ReceiveArrivals credits orders whose lead time elapsed. No cash effect;
// cost was charged when the order was placed. Returns units received.
func (st *Stock) ReceiveArrivals(s *SimulationState) int {
	received := 0
	remaining := s.MaterialOrders[:0]
	for _, o := range s.MaterialOrders {
		if o.ArrivalDay <= s.CurrentDay {
			s.RawInventory += o.Units
			received += o.Units
			continue
		}
		remaining = append(remaining, o)
	}
	s.MaterialOrders = remaining
	return received
}

// PlaceOrder buys units at the configured unit cost, charged to cash at
// order time. The order is rejected outright when cash cannot cover it; the
// rejection is counted and the reorder trigger will fire again on a later
// day. Returns whether the order was accepted.
func (st *Stock) PlaceOrder(s *SimulationState, units int) bool {
	if units <= 0 {
		return false
	}
	cost := float64(units) * st.cfg.UnitCost
	if s.Cash < cost {
		s.Counters.RejectedMatOrders++
		st.log.Debugf("day %d: material order of %d units rejected (cost %.2f > cash %.2f)",
			s.CurrentDay, units, cost, s.Cash)
		return false
	}
	// direct deduction: the rejection path above guarantees coverage, so this
	// never routes through the auto-loan
	st.fin.ProcessPayment(s, cost, "raw materials")
	s.MaterialOrders = append(s.MaterialOrders, MaterialOrder{
		OrderDay:   s.CurrentDay,
		ArrivalDay: s.CurrentDay + st.cfg.LeadTimeDays,
		Units:      units,
	})
	s.LastOrderDay = s.CurrentDay
	return true
}

// EvaluateReorder places a policy order when inventory has fallen to the
// reorder point and no order has been placed within the minimum spacing
// window. Returns whether an order was placed.
func (st *Stock) EvaluateReorder(s *SimulationState, reorderPoint, orderQty int) bool {
	if s.RawInventory > reorderPoint {
		return false
	}
	if s.LastOrderDay >= 0 && s.CurrentDay-s.LastOrderDay < st.cfg.MinOrderSpacingDays {
		return false
	}
	return st.PlaceOrder(s, orderQty)
}

// NoteEndOfDay records stockout and lost-production flags for the completed
// day. Both feed fitness penalties and the business-rule validator.
func (st *Stock) NoteEndOfDay(s *SimulationState, lostProduction bool) (stockout bool) {
	if s.RawInventory <= 0 {
		s.Counters.StockoutDays++
		stockout = true
	}
	if lostProduction {
		s.Counters.LostProductionDays++
	}
	return stockout
}
