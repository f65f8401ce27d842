// Package validate checks a completed simulation run against business rules.
// Rules are graded: CRITICAL violations make the run invalid, MAJOR and
// WARNING violations are reported but do not fail it.
package validate

import (
	"fmt"

	"github.com/factory-sim/factory-sim/sim"
)

// Severity grades a rule violation.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityMajor
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "WARNING"
	case SeverityMajor:
		return "MAJOR"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Violation is one failed business rule.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s: %s", v.Severity, v.Rule, v.Message)
}

// Thresholds are the tunable limits the rules test against.
type Thresholds struct {
	MaxDeliveryDays        float64 // any custom order slower than this is CRITICAL
	MinOnTimeFraction      float64 // deliveries within the quoted lead time
	MaxConsecutiveStockout int
	MaxStockoutDays        int
	MinMeanUtilization     float64
	MinCashFloor           float64 // lowest end-of-day cash tolerated
	MaxRejectionRate       float64 // rejected / total custom demand
	MinCustomShare         float64 // custom revenue as a fraction of total
	MaxCustomShare         float64
}

// DefaultThresholds returns limits calibrated to the standard scenario.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxDeliveryDays:        10,
		MinOnTimeFraction:      0.85,
		MaxConsecutiveStockout: 5,
		MaxStockoutDays:        30,
		MinMeanUtilization:     0.3,
		MinCashFloor:           0,
		MaxRejectionRate:       0.05,
		MinCustomShare:         0.1,
		MaxCustomShare:         0.9,
	}
}

// Report collects every violation found in a run.
type Report struct {
	Violations []Violation
}

// Valid reports whether the run passed, meaning no CRITICAL violation.
func (r *Report) Valid() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityCritical {
			return false
		}
	}
	return true
}

// Count returns the number of violations at the given severity.
func (r *Report) Count(sev Severity) int {
	n := 0
	for _, v := range r.Violations {
		if v.Severity == sev {
			n++
		}
	}
	return n
}

func (r *Report) add(rule string, sev Severity, format string, args ...any) {
	r.Violations = append(r.Violations, Violation{
		Rule:     rule,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Check grades a completed run. The state must carry its full history.
func Check(cfg sim.Config, s *sim.SimulationState, th Thresholds) *Report {
	r := &Report{}
	days := s.History.Days

	if len(days) == 0 {
		r.add("history", SeverityCritical, "run produced no day records")
		return r
	}

	checkSolvency(r, s, days, th)
	checkDelivery(r, cfg, days, th)
	checkStockouts(r, days, th)
	checkUtilization(r, days, th)
	checkRejections(r, days, th)
	checkRevenueMix(r, days, th)

	return r
}

func checkSolvency(r *Report, s *sim.SimulationState, days []sim.DayRecord, th Thresholds) {
	if s.Cash < 0 {
		r.add("solvency", SeverityCritical, "final cash is negative: %.2f", s.Cash)
	}
	lowest := days[0].Cash
	lowestDay := days[0].Day
	for _, d := range days {
		if d.Cash < lowest {
			lowest = d.Cash
			lowestDay = d.Day
		}
	}
	if lowest < th.MinCashFloor {
		r.add("cash-floor", SeverityMajor,
			"end-of-day cash reached %.2f on day %d, floor is %.2f", lowest, lowestDay, th.MinCashFloor)
	}
	if s.Counters.ResidueCorrections > 0 {
		r.add("payment-residue", SeverityWarning,
			"%d payment residue corrections exceeded tolerance", s.Counters.ResidueCorrections)
	}
}

func checkDelivery(r *Report, cfg sim.Config, days []sim.DayRecord, th Thresholds) {
	worst := 0.0
	sum := 0.0
	n := 0
	onTime := 0
	quoted := cfg.Pricing.QuotedLeadDays
	for _, d := range days {
		if d.CustomCompleted == 0 {
			continue
		}
		n++
		sum += d.AvgDeliveryDays
		if d.AvgDeliveryDays > worst {
			worst = d.AvgDeliveryDays
		}
		if d.AvgDeliveryDays <= quoted {
			onTime++
		}
	}
	if n == 0 {
		r.add("delivery", SeverityMajor, "no custom orders were delivered")
		return
	}
	if worst > th.MaxDeliveryDays {
		r.add("delivery-worst", SeverityCritical,
			"rolling delivery time peaked at %.1f days, limit is %.1f", worst, th.MaxDeliveryDays)
	}
	frac := float64(onTime) / float64(n)
	if frac < th.MinOnTimeFraction {
		r.add("delivery-on-time", SeverityMajor,
			"only %.0f%% of delivery days met the %.0f-day quote, need %.0f%%",
			frac*100, quoted, th.MinOnTimeFraction*100)
	}
}

func checkStockouts(r *Report, days []sim.DayRecord, th Thresholds) {
	total := 0
	streak := 0
	worstStreak := 0
	for _, d := range days {
		if d.Stockout {
			total++
			streak++
			if streak > worstStreak {
				worstStreak = streak
			}
		} else {
			streak = 0
		}
	}
	if worstStreak > th.MaxConsecutiveStockout {
		r.add("stockout-streak", SeverityCritical,
			"%d consecutive stockout days, limit is %d", worstStreak, th.MaxConsecutiveStockout)
	}
	if total > th.MaxStockoutDays {
		r.add("stockout-total", SeverityMajor,
			"%d stockout days over the run, limit is %d", total, th.MaxStockoutDays)
	}
}

func checkUtilization(r *Report, days []sim.DayRecord, th Thresholds) {
	sum := 0.0
	for _, d := range days {
		sum += d.Utilization
	}
	mean := sum / float64(len(days))
	if mean < th.MinMeanUtilization {
		r.add("utilization", SeverityWarning,
			"mean labor utilization %.2f is below %.2f, capacity looks overbought", mean, th.MinMeanUtilization)
	}
}

func checkRejections(r *Report, days []sim.DayRecord, th Thresholds) {
	demand := 0
	rejected := 0
	for _, d := range days {
		demand += d.CustomDemand
		rejected += d.CustomRejected
	}
	if demand == 0 {
		return
	}
	rate := float64(rejected) / float64(demand)
	if rate > th.MaxRejectionRate {
		r.add("rejections", SeverityMajor,
			"rejected %.1f%% of custom demand (%d of %d), limit is %.1f%%",
			rate*100, rejected, demand, th.MaxRejectionRate*100)
	}
}

func checkRevenueMix(r *Report, days []sim.DayRecord, th Thresholds) {
	var std, custom float64
	for _, d := range days {
		std += float64(d.StandardSold) * d.StandardPrice
		custom += float64(d.CustomCompleted) * d.CustomPrice
	}
	total := std + custom
	if total <= 0 {
		r.add("revenue", SeverityCritical, "run generated no revenue")
		return
	}
	share := custom / total
	if share < th.MinCustomShare || share > th.MaxCustomShare {
		r.add("revenue-mix", SeverityWarning,
			"custom revenue share %.2f is outside [%.2f, %.2f]", share, th.MinCustomShare, th.MaxCustomShare)
	}
}
