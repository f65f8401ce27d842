package sim

import (
	"math"

	"github.com/sirupsen/logrus"
)

// cashEpsilon is the floating-point tolerance below which a negative cash
// residue is treated as rounding noise and clamped to zero.
const cashEpsilon = 1e-6

// PayResult reports the outcome of a debt payment attempt.
type PayResult struct {
	Paid   float64
	OK     bool
	Reason string
}

// Finance owns interest accrual, loan issuance, and the invariant-preserving
// payment primitive. Every salary, interest, and material payment routes
// through ProcessPayment so cash never goes negative by construction.
type Finance struct {
	cfg FinanceConfig
	log *logrus.Entry

	dayExpenses float64 // outflows routed through ProcessPayment since ResetDay
}

// NewFinance builds the finance subsystem with an injected logger entry.
func NewFinance(cfg FinanceConfig, log *logrus.Entry) *Finance {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Finance{cfg: cfg, log: log}
}

// TakeLoan credits net proceeds (gross minus commission) to cash and adds the
// gross amount to debt. Emergency salary loans carry a higher commission.
// Non-positive amounts are ignored.
func (f *Finance) TakeLoan(s *SimulationState, amount float64, salaryLoan bool) {
	if amount <= 0 {
		return
	}
	commission := f.cfg.LoanCommission
	if salaryLoan {
		commission = f.cfg.SalaryLoanCommission
	}
	proceeds := amount * (1 - commission)
	s.Cash += proceeds
	s.Debt += amount
	f.log.Debugf("day %d: loan gross=%.2f proceeds=%.2f salary=%v", s.CurrentDay, amount, proceeds, salaryLoan)
}

// PayDebt pays min(amount, debt, cash); it never overdraws. The structured
// result reports how much was paid and why it may have been limited.
func (f *Finance) PayDebt(s *SimulationState, amount float64) PayResult {
	if amount <= 0 {
		return PayResult{OK: false, Reason: "non-positive amount"}
	}
	if s.Debt <= 0 {
		return PayResult{OK: false, Reason: "no outstanding debt"}
	}
	pay := math.Min(amount, math.Min(s.Debt, s.Cash))
	if pay <= 0 {
		return PayResult{OK: false, Reason: "insufficient cash"}
	}
	s.Cash -= pay
	s.Debt -= pay
	f.clampResidue(s)
	return PayResult{Paid: pay, OK: true}
}

// ProcessPayment is the single choke point guaranteeing the cash invariant.
// If cash covers the amount it is deducted directly; otherwise the exact loan
// principal whose net proceeds cover the shortfall is borrowed first, leaving
// cash at zero or above. Only floating-point residue is forced to zero.
func (f *Finance) ProcessPayment(s *SimulationState, amount float64, description string) {
	if amount <= 0 {
		return
	}
	if s.Cash < amount {
		shortfall := amount - s.Cash
		principal := shortfall / (1 - f.cfg.SalaryLoanCommission)
		f.log.Debugf("day %d: auto-loan %.2f to cover %q shortfall %.2f", s.CurrentDay, principal, description, shortfall)
		f.TakeLoan(s, principal, true)
	}
	s.Cash -= amount
	f.dayExpenses += amount
	f.clampResidue(s)
}

// ResetDay clears the per-day expense accumulator. The day simulator calls
// it at the top of each day.
func (f *Finance) ResetDay() {
	f.dayExpenses = 0
}

// DayExpenses reports outflows routed through the payment primitive since
// the last ResetDay.
func (f *Finance) DayExpenses() float64 {
	return f.dayExpenses
}

// ApplyDebtInterest accrues interest on the given start-of-day debt balance,
// adds it to debt, and pays it through the payment primitive (which may
// itself trigger an automatic loan). The caller captures the balance before
// any of the day's loans so intraday borrowing is not charged.
func (f *Finance) ApplyDebtInterest(s *SimulationState, startOfDayDebt float64) float64 {
	if startOfDayDebt <= 0 {
		return 0
	}
	interest := startOfDayDebt * f.cfg.DailyDebtRate
	s.Debt += interest
	f.ProcessPayment(s, interest, "debt interest")
	s.Debt -= interest // the interest charge was settled, not capitalized
	return interest
}

// ApplyCashInterest earns interest only when end-of-day cash is positive.
func (f *Finance) ApplyCashInterest(s *SimulationState) float64 {
	if s.Cash <= 0 {
		return 0
	}
	earned := s.Cash * f.cfg.DailyCashRate
	s.Cash += earned
	return earned
}

// clampResidue forces tiny negative cash left by floating-point arithmetic
// to exactly zero. A residue beyond the tolerance means the payment primitive
// itself is broken and is worth a warning, not a silent fix.
func (f *Finance) clampResidue(s *SimulationState) {
	if s.Cash >= 0 {
		return
	}
	if s.Cash < -cashEpsilon {
		f.log.Warnf("day %d: cash residue %.9f exceeds tolerance; clamping", s.CurrentDay, s.Cash)
	}
	s.Counters.ResidueCorrections++
	s.Cash = 0
}
