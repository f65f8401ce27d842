package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInitialState(t *testing.T) {
	s := NewInitialState(DefaultConfig())

	assert.InDelta(t, 50000, s.Cash, 1e-9)
	assert.Zero(t, s.Debt)
	assert.Equal(t, 500, s.RawInventory)
	assert.Equal(t, 4, s.Workforce.Experts)
	assert.Equal(t, 2, s.Machines)
	assert.Equal(t, -1, s.LastOrderDay)
	assert.InDelta(t, 0.5, s.Allocation, 1e-9)
}

func TestClone_DeepCopies(t *testing.T) {
	// BDD: Mutating a clone never leaks into the original
	s := NewInitialState(DefaultConfig())
	s.Standard.Stations[StationTwo] = []Batch{{Units: 40, BatchingDaysLeft: 1}}
	s.Custom = []CustomOrder{{ID: 1, Station: CustomMachine}}
	s.MaterialOrders = []MaterialOrder{{OrderDay: 1, ArrivalDay: 5, Units: 100}}
	s.Workforce.InTraining = []TrainingSlot{{HireDay: 1, DaysRemaining: 10}}
	s.Workforce.Overtime = []OvertimeRecord{{Type: EmployeeRookie}}
	s.RecentDelivs = []float64{4, 5}
	s.History.Append(DayRecord{Day: 1, Cash: 123})

	c := s.Clone()
	c.Cash = 0
	c.Standard.Stations[StationTwo][0].Units = 999
	c.Custom[0].Station = CustomComplete
	c.MaterialOrders[0].Units = 0
	c.Workforce.InTraining[0].DaysRemaining = 0
	c.Workforce.Overtime[0].ConsecutiveDays = 9
	c.RecentDelivs[0] = 0
	c.History.Days[0].Cash = 0

	assert.InDelta(t, 50000, s.Cash, 1e-9)
	assert.Equal(t, 40, s.Standard.Stations[StationTwo][0].Units)
	assert.Equal(t, CustomMachine, s.Custom[0].Station)
	assert.Equal(t, 100, s.MaterialOrders[0].Units)
	assert.Equal(t, 10, s.Workforce.InTraining[0].DaysRemaining)
	assert.Zero(t, s.Workforce.Overtime[0].ConsecutiveDays)
	assert.InDelta(t, 4, s.RecentDelivs[0], 1e-9)
	assert.InDelta(t, 123, s.History.Days[0].Cash, 1e-9)
}

func TestNetWorth(t *testing.T) {
	s := NewInitialState(DefaultConfig())
	s.Cash = 80000
	s.Debt = 30000
	assert.InDelta(t, 50000, s.NetWorth(), 1e-9)
}

func TestAvgDeliveryDays(t *testing.T) {
	s := NewInitialState(DefaultConfig())

	// empty ring: pricing starts at the quoted lead (full price)
	assert.InDelta(t, 5, s.AvgDeliveryDays(5), 1e-9)

	s.recordDelivery(4)
	s.recordDelivery(8)
	assert.InDelta(t, 6, s.AvgDeliveryDays(5), 1e-9)
}

func TestRecordDelivery_RingIsBounded(t *testing.T) {
	s := NewInitialState(DefaultConfig())
	for i := 0; i < 120; i++ {
		s.recordDelivery(float64(i))
	}

	require.Len(t, s.RecentDelivs, recentDeliveryCap)
	// oldest retained entry is the 71st push
	assert.InDelta(t, 70, s.RecentDelivs[0], 1e-9)
}

func TestStandardWIP_TotalUnits(t *testing.T) {
	var w StandardWIP
	w.Stations[StationPre] = []Batch{{Units: 10}}
	w.Stations[StationTwo] = []Batch{{Units: 20}, {Units: 5}}
	assert.Equal(t, 35, w.TotalUnits())
}
