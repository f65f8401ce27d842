package sim

import (
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Labor owns hiring, the rookie training pipeline, salary cost, and the
// overtime-driven attrition model.
//
// Per-employee state machine: hired (rookie) -> training (TrainingDays) ->
// expert -> [quit], or hired (expert) -> [quit]. A rookie promotes exactly
// when its countdown reaches zero; a quitting employee leaves every structure
// atomically, including its training slot.
type Labor struct {
	wf  WorkforceConfig
	fin *Finance
	log *logrus.Entry
}

// NewLabor builds the workforce subsystem around the shared Finance primitive.
func NewLabor(wf WorkforceConfig, fin *Finance, log *logrus.Entry) *Labor {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Labor{wf: wf, fin: fin, log: log}
}

// Hire adds count rookies, opening one training slot per hire and charging
// the one-time hiring cost through the payment primitive.
func (l *Labor) Hire(s *SimulationState, count int) {
	if count <= 0 {
		return
	}
	for i := 0; i < count; i++ {
		s.Workforce.Rookies++
		s.Workforce.InTraining = append(s.Workforce.InTraining, TrainingSlot{
			HireDay:       s.CurrentDay,
			DaysRemaining: l.wf.TrainingDays,
		})
		s.Workforce.Overtime = append(s.Workforce.Overtime, OvertimeRecord{Type: EmployeeRookie})
	}
	l.fin.ProcessPayment(s, float64(count)*l.wf.HiringCost, "hiring cost")
	l.log.Debugf("day %d: hired %d rookies", s.CurrentDay, count)
}

// AdvanceTraining decrements every training countdown by exactly one and
// promotes rookies whose countdown reached zero. Returns promotions made.
func (l *Labor) AdvanceTraining(s *SimulationState) int {
	promoted := 0
	remaining := s.Workforce.InTraining[:0]
	for _, slot := range s.Workforce.InTraining {
		slot.DaysRemaining--
		if slot.DaysRemaining <= 0 {
			promoted++
			continue
		}
		remaining = append(remaining, slot)
	}
	s.Workforce.InTraining = remaining

	if promoted > 0 {
		s.Workforce.Rookies -= promoted
		s.Workforce.Experts += promoted
		// promotions convert the overtime record type, keeping the streak
		toConvert := promoted
		for i := range s.Workforce.Overtime {
			if toConvert == 0 {
				break
			}
			if s.Workforce.Overtime[i].Type == EmployeeRookie {
				s.Workforce.Overtime[i].Type = EmployeeExpert
				toConvert--
			}
		}
	}
	return promoted
}

// PaySalaries charges headcount-linear pay plus a uniform overtime multiplier
// applied to the overtime fraction of the day, through the payment primitive.
func (l *Labor) PaySalaries(s *SimulationState, overtimeHours float64) float64 {
	base := float64(s.Workforce.Experts)*l.wf.ExpertSalary + float64(s.Workforce.Rookies)*l.wf.RookieSalary
	total := base
	if overtimeHours > 0 {
		total += base * (overtimeHours / 8) * l.wf.OvertimePayFactor
	}
	l.fin.ProcessPayment(s, total, "salaries")
	return total
}

// TrackOvertime advances or resets every employee's consecutive-overtime
// streak, then rolls an independent Bernoulli quit for each employee whose
// streak has met the trigger. Quits remove the employee (and, for a rookie,
// its training slot) atomically. Returns the number of quits.
func (l *Labor) TrackOvertime(s *SimulationState, overtimeWorked bool, rng *rand.Rand) int {
	for i := range s.Workforce.Overtime {
		if overtimeWorked {
			s.Workforce.Overtime[i].ConsecutiveDays++
		} else {
			s.Workforce.Overtime[i].ConsecutiveDays = 0
		}
	}

	quits := 0
	kept := s.Workforce.Overtime[:0]
	for _, rec := range s.Workforce.Overtime {
		if rec.ConsecutiveDays >= l.wf.OvertimeTriggerDays && rng.Float64() < l.wf.QuitProbability {
			quits++
			l.removeEmployee(s, rec.Type)
			continue
		}
		kept = append(kept, rec)
	}
	s.Workforce.Overtime = kept

	if quits > 0 {
		l.log.Debugf("day %d: %d employees quit after overtime streaks", s.CurrentDay, quits)
	}
	return quits
}

// removeEmployee drops one employee of the given type from the headcount and,
// for rookies, from the training pipeline (newest slot first).
func (l *Labor) removeEmployee(s *SimulationState, t EmployeeType) {
	switch t {
	case EmployeeExpert:
		if s.Workforce.Experts > 0 {
			s.Workforce.Experts--
		}
	case EmployeeRookie:
		if s.Workforce.Rookies > 0 {
			s.Workforce.Rookies--
		}
		if n := len(s.Workforce.InTraining); n > 0 {
			s.Workforce.InTraining = s.Workforce.InTraining[:n-1]
		}
	}
}

// Capacity returns the labor pool's productive units for the day:
// experts*expertRate + rookies*expertRate*rookieFactor, scaled by
// (1 + overtimeHours/8) when overtime is active.
func (l *Labor) Capacity(s *SimulationState, overtimeHours float64) float64 {
	base := float64(s.Workforce.Experts)*l.wf.ExpertRate +
		float64(s.Workforce.Rookies)*l.wf.ExpertRate*l.wf.RookieFactor
	if overtimeHours > 0 {
		base *= 1 + overtimeHours/8
	}
	return base
}
