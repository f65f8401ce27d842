package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScenarioSpec is a YAML-loadable market scenario: a named demand
// configuration plus an optional horizon override. It lets operators
// evaluate the same strategy against alternative forecasts without
// recompiling.
type ScenarioSpec struct {
	Name    string       `yaml:"name"`
	Horizon int          `yaml:"horizon,omitempty"` // 0 = config default
	Demand  DemandConfig `yaml:"demand"`
}

// LoadScenarioSpec reads and validates a scenario YAML file.
func LoadScenarioSpec(path string) (*ScenarioSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}
	var spec ScenarioSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("scenario: parse %s: %w", path, err)
	}
	if err := spec.Demand.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", spec.Name, err)
	}
	return &spec, nil
}

// Built-in scenario presets for common market shapes. Each returns a valid
// spec ready to hand to RunSimulation as a demand override.

// ScenarioBaseline mirrors the default configuration's demand model.
func ScenarioBaseline() *ScenarioSpec {
	return &ScenarioSpec{Name: "baseline", Demand: DefaultConfig().Demand}
}

// ScenarioGrowthSurge front-loads a steep ramp: phase 3 demand well above
// phase 1, stressing the custom line's WIP ceiling and capacity allocation.
func ScenarioGrowthSurge() *ScenarioSpec {
	d := DefaultConfig().Demand
	d.Phase3Mean = d.Phase1Mean * 2.2
	d.Phase3Std = d.Phase1Std * 1.5
	return &ScenarioSpec{Name: "growth-surge", Demand: d}
}

// ScenarioSoftLanding declines into phase 3: demand shrinks ahead of the
// runoff, rewarding early capacity sell-down and inventory draw-down.
func ScenarioSoftLanding() *ScenarioSpec {
	d := DefaultConfig().Demand
	d.Phase3Mean = d.Phase1Mean * 0.6
	d.Phase3Std = d.Phase1Std * 0.8
	return &ScenarioSpec{Name: "soft-landing", Demand: d}
}

// ScenarioVolatile keeps means flat but doubles both phases' dispersion,
// stressing the reorder policy and the stockout penalties.
func ScenarioVolatile() *ScenarioSpec {
	d := DefaultConfig().Demand
	d.Phase1Std *= 2
	d.Phase3Std *= 2
	return &ScenarioSpec{Name: "volatile", Demand: d}
}
