package solver

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestConfigWithDefaultsFillsUnsetKnobs(t *testing.T) {
	cfg := Config{}.withDefaults()

	assert.Equal(t, 5000, cfg.TimeBudgetMS)
	assert.Equal(t, 1.0, cfg.fairnessWeight())
	assert.Equal(t, 1.0, cfg.preferenceWeight())
	assert.Equal(t, 1, cfg.MinSupervisorsDefault)
	assert.Equal(t, 1, cfg.Parallelism)
}

func TestConfigWithDefaultsKeepsExplicitZeroWeight(t *testing.T) {
	cfg := Config{
		FairnessWeight:   lo.ToPtr(0.0),
		PreferenceWeight: lo.ToPtr(0.0),
	}.withDefaults()

	assert.Equal(t, 0.0, cfg.fairnessWeight())
	assert.Equal(t, 0.0, cfg.preferenceWeight())
}
