package solver

import "github.com/samber/lo"

// Config carries the engine knobs. The fairness/preference ratio is a
// policy choice, so both weights are exposed rather than hard-coded.
// The weights are pointers because zero is a legal value: a nil weight
// means "use the default", an explicit 0 disables that term of the
// score.
type Config struct {
	TimeBudgetMS          int      `json:"timeBudgetMS"`
	FairnessWeight        *float64 `json:"fairnessWeight"`
	PreferenceWeight      *float64 `json:"preferenceWeight"`
	MinSupervisorsDefault int      `json:"minSupervisorsDefault"`
	Parallelism           int      `json:"parallelism"`
}

func DefaultConfig() Config {
	return Config{
		TimeBudgetMS:          5000,
		FairnessWeight:        lo.ToPtr(1.0),
		PreferenceWeight:      lo.ToPtr(1.0),
		MinSupervisorsDefault: 1,
		Parallelism:           1,
	}
}

// withDefaults fills unset values so partially-specified configs behave
// like DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.TimeBudgetMS <= 0 {
		c.TimeBudgetMS = def.TimeBudgetMS
	}
	if c.FairnessWeight == nil {
		c.FairnessWeight = def.FairnessWeight
	}
	if c.PreferenceWeight == nil {
		c.PreferenceWeight = def.PreferenceWeight
	}
	if c.MinSupervisorsDefault <= 0 {
		c.MinSupervisorsDefault = def.MinSupervisorsDefault
	}
	if c.Parallelism <= 0 {
		c.Parallelism = def.Parallelism
	}
	return c
}

// fairnessWeight and preferenceWeight resolve the effective weights
// after withDefaults; a nil pointer here would be a programming error.
func (c Config) fairnessWeight() float64   { return *c.FairnessWeight }
func (c Config) preferenceWeight() float64 { return *c.PreferenceWeight }
