package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func laborFixture() (*Labor, *Finance, *SimulationState) {
	cfg := DefaultConfig()
	fin := NewFinance(cfg.Finance, nil)
	s := NewInitialState(cfg)
	return NewLabor(cfg.Workforce, fin, nil), fin, s
}

// === Hiring and Training Tests ===

func TestHire_OpensTrainingSlots(t *testing.T) {
	labor, _, s := laborFixture()
	cashBefore := s.Cash

	labor.Hire(s, 3)

	assert.Equal(t, 3, s.Workforce.Rookies)
	assert.Len(t, s.Workforce.InTraining, 3)
	assert.InDelta(t, cashBefore-3*1000, s.Cash, 1e-9)
}

func TestAdvanceTraining_PromotesAtExactDay(t *testing.T) {
	// BDD: A rookie hired on day D becomes an expert after exactly
	// TrainingDays calls, never earlier
	labor, _, s := laborFixture()
	labor.Hire(s, 1)
	expertsBefore := s.Workforce.Experts

	trainingDays := s.Workforce.InTraining[0].DaysRemaining
	for day := 1; day < trainingDays; day++ {
		promoted := labor.AdvanceTraining(s)
		require.Zero(t, promoted, "promoted on day %d, before training completed", day)
	}
	promoted := labor.AdvanceTraining(s)

	assert.Equal(t, 1, promoted)
	assert.Equal(t, expertsBefore+1, s.Workforce.Experts)
	assert.Zero(t, s.Workforce.Rookies)
	assert.Empty(t, s.Workforce.InTraining)
}

func TestAdvanceTraining_CountdownIsMonotonic(t *testing.T) {
	labor, _, s := laborFixture()
	labor.Hire(s, 1)

	prev := s.Workforce.InTraining[0].DaysRemaining
	for len(s.Workforce.InTraining) > 0 {
		labor.AdvanceTraining(s)
		if len(s.Workforce.InTraining) == 0 {
			break
		}
		cur := s.Workforce.InTraining[0].DaysRemaining
		require.Equal(t, prev-1, cur, "countdown must decrease by exactly 1")
		prev = cur
	}
}

func TestAdvanceTraining_PromotionKeepsOvertimeStreak(t *testing.T) {
	labor, _, s := laborFixture()
	s.Workforce = Workforce{} // isolate the single rookie
	labor.Hire(s, 1)
	s.Workforce.Overtime[0].ConsecutiveDays = 3
	s.Workforce.InTraining[0].DaysRemaining = 1

	labor.AdvanceTraining(s)

	require.Len(t, s.Workforce.Overtime, 1)
	assert.Equal(t, EmployeeExpert, s.Workforce.Overtime[0].Type)
	assert.Equal(t, 3, s.Workforce.Overtime[0].ConsecutiveDays)
}

// === Salary Tests ===

func TestPaySalaries(t *testing.T) {
	tests := []struct {
		name          string
		experts       int
		rookies       int
		overtimeHours float64
		want          float64
	}{
		{"base pay only", 4, 0, 0, 4 * 150},
		{"mixed workforce", 2, 3, 0, 2*150 + 3*90},
		{"with overtime", 4, 0, 2, 600 + 600*(2.0/8)*1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labor, _, s := laborFixture()
			s.Workforce = Workforce{Experts: tt.experts, Rookies: tt.rookies}

			got := labor.PaySalaries(s, tt.overtimeHours)

			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

// === Overtime and Attrition Tests ===

func TestTrackOvertime_StreakResetsOnNormalDay(t *testing.T) {
	labor, _, s := laborFixture()
	s.Workforce = Workforce{Experts: 1, Overtime: []OvertimeRecord{{Type: EmployeeExpert, ConsecutiveDays: 4}}}

	labor.TrackOvertime(s, false, rand.New(rand.NewSource(1)))

	assert.Zero(t, s.Workforce.Overtime[0].ConsecutiveDays)
}

func TestTrackOvertime_NoQuitsBeforeTrigger(t *testing.T) {
	// BDD: Quit rolls only happen at or beyond the consecutive-day trigger
	labor, _, s := laborFixture()
	s.Workforce = Workforce{Experts: 10}
	for i := 0; i < 10; i++ {
		s.Workforce.Overtime = append(s.Workforce.Overtime, OvertimeRecord{Type: EmployeeExpert})
	}

	rng := rand.New(rand.NewSource(1))
	for day := 0; day < 4; day++ {
		quits := labor.TrackOvertime(s, true, rng)
		require.Zero(t, quits, "quit on overtime day %d, before the 5-day trigger", day+1)
	}
	assert.Equal(t, 10, s.Workforce.Experts)
}

func TestTrackOvertime_QuitsAtTriggerEventually(t *testing.T) {
	labor, _, s := laborFixture()
	s.Workforce = Workforce{Experts: 50}
	for i := 0; i < 50; i++ {
		s.Workforce.Overtime = append(s.Workforce.Overtime, OvertimeRecord{Type: EmployeeExpert})
	}

	// 20 days past the trigger at 10% per day loses most of the pool
	rng := rand.New(rand.NewSource(42))
	for day := 0; day < 25; day++ {
		labor.TrackOvertime(s, true, rng)
	}

	assert.Less(t, s.Workforce.Experts, 50)
	assert.Len(t, s.Workforce.Overtime, s.Workforce.Experts)
}

func TestTrackOvertime_RookieQuitRemovesTrainingSlot(t *testing.T) {
	labor, _, s := laborFixture()
	s.Workforce = Workforce{}
	labor.Hire(s, 1)
	s.Workforce.Overtime[0].ConsecutiveDays = 5

	// quit probability 1 forces the roll
	labor.wf.QuitProbability = 1.0
	quits := labor.TrackOvertime(s, true, rand.New(rand.NewSource(1)))

	assert.Equal(t, 1, quits)
	assert.Zero(t, s.Workforce.Rookies)
	assert.Empty(t, s.Workforce.InTraining)
	assert.Empty(t, s.Workforce.Overtime)
}

// === Capacity Tests ===

func TestCapacity(t *testing.T) {
	tests := []struct {
		name          string
		experts       int
		rookies       int
		overtimeHours float64
		want          float64
	}{
		{"experts only", 4, 0, 0, 4 * 30},
		{"rookies at reduced rate", 0, 5, 0, 5 * 30 * 0.4},
		{"overtime scales linearly", 4, 0, 4, 4 * 30 * 1.5},
		{"empty workforce", 0, 0, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labor, _, s := laborFixture()
			s.Workforce = Workforce{Experts: tt.experts, Rookies: tt.rookies}

			assert.InDelta(t, tt.want, labor.Capacity(s, tt.overtimeHours), 1e-9)
		})
	}
}
