package sim

// DayRecord is the full metric set written once at the end of each simulated
// day. Records are append-only and never mutated retroactively; the validator
// and reporting read them as an immutable time series.
type DayRecord struct {
	Day int

	Cash     float64
	Debt     float64
	NetWorth float64

	RawInventory int
	Experts      int
	Rookies      int
	InTraining   int
	Machines     int

	StandardWIPUnits  int
	CustomWIPOrders   int
	FinishedGoods     int
	StandardStarted   int
	StandardCompleted int
	CustomStarted     int
	CustomCompleted   int

	StandardDemand int
	StandardSold   int
	CustomDemand   int
	CustomAccepted int
	CustomRejected int

	StandardPrice   float64
	CustomPrice     float64
	AvgDeliveryDays float64
	Allocation      float64
	OvertimeHours   float64
	Utilization     float64 // labor capacity consumed / labor capacity available

	Revenue  float64
	Expenses float64

	Stockout       bool
	LostProduction bool

	ActionsTaken []ActionKind
}

// History is the per-run append-only series of day records.
type History struct {
	Days []DayRecord
}

// Append writes one completed day. Days must arrive in order.
func (h *History) Append(rec DayRecord) {
	h.Days = append(h.Days, rec)
}

// Len returns the number of recorded days.
func (h *History) Len() int {
	return len(h.Days)
}

// Last returns the most recent record, or a zero record if empty.
func (h *History) Last() DayRecord {
	if len(h.Days) == 0 {
		return DayRecord{}
	}
	return h.Days[len(h.Days)-1]
}

// Clone deep-copies the series, including each record's action list.
func (h History) Clone() History {
	days := make([]DayRecord, len(h.Days))
	copy(days, h.Days)
	for i := range days {
		days[i].ActionsTaken = append([]ActionKind(nil), days[i].ActionsTaken...)
	}
	return History{Days: days}
}

// Series extracts one float64 metric across all days. Used by the validator
// and by convergence diagnostics.
func (h History) Series(extract func(DayRecord) float64) []float64 {
	out := make([]float64, len(h.Days))
	for i, d := range h.Days {
		out[i] = extract(d)
	}
	return out
}
