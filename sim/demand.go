package sim

import "math"

// DemandModel evaluates the phased stochastic market demand for both
// products. All randomness flows through the injected NormalSource, so two
// models built from the same seed produce identical draws day for day.
type DemandModel struct {
	cfg    DemandConfig
	normal *NormalSource
}

// NewDemandModel builds the demand subsystem over a normal-variate source.
func NewDemandModel(cfg DemandConfig, normal *NormalSource) *DemandModel {
	return &DemandModel{cfg: cfg, normal: normal}
}

// StandardDemand is price-elastic: intercept + slope*price, slope negative.
// In most configurations the line does not bind and the standard product can
// sell everything produced; a caller-supplied intercept/slope can make it
// bind. Never negative.
func (d *DemandModel) StandardDemand(price float64) int {
	q := d.cfg.StdIntercept + d.cfg.StdSlope*price
	if q < 0 {
		return 0
	}
	return int(math.Round(q))
}

// phaseParams returns the custom-demand mean and std for the given day.
//
// Phase 1 (day <= Phase1End) and phase 3 (TransitionEnd < day <= Phase3End)
// are stable; the transition linearly interpolates both moments day by day;
// past Phase3End the mean decays geometrically toward plant shutdown,
// floored at a small positive minimum.
func (d *DemandModel) phaseParams(day int) (mean, std float64) {
	c := d.cfg
	switch {
	case day <= c.Phase1End:
		return c.Phase1Mean, c.Phase1Std
	case day <= c.TransitionEnd:
		span := float64(c.TransitionEnd - c.Phase1End)
		t := float64(day-c.Phase1End) / span
		mean = c.Phase1Mean + t*(c.Phase3Mean-c.Phase1Mean)
		std = c.Phase1Std + t*(c.Phase3Std-c.Phase1Std)
		return mean, std
	case day <= c.Phase3End:
		return c.Phase3Mean, c.Phase3Std
	default:
		windows := float64(day-c.Phase3End) / float64(c.RunoffWindow)
		mean = c.Phase3Mean * math.Pow(c.RunoffDecay, windows)
		if mean < c.RunoffFloor {
			mean = c.RunoffFloor
		}
		return mean, c.Phase3Std
	}
}

// CustomDemand draws the day's custom-product demand from the phase-specific
// normal distribution. Negative draws clamp to zero.
func (d *DemandModel) CustomDemand(day int) int {
	mean, std := d.phaseParams(day)
	q := d.normal.Norm()*std + mean
	if q < 0 {
		return 0
	}
	return int(math.Round(q))
}

// ExpectedCustomDemand returns the deterministic phase mean for the day.
// The policy engine's forward estimate uses this instead of consuming draws
// from the authoritative demand stream.
func (d *DemandModel) ExpectedCustomDemand(day int) float64 {
	mean, _ := d.phaseParams(day)
	return mean
}
