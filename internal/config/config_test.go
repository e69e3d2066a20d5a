package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "postgres://localhost/surveillance")
	t.Setenv("EMAIL_FROM", "surveillances@univ.example")
	t.Setenv("EMAIL_SMTP_USERNAME", "mailer")
	t.Setenv("EMAIL_SMTP_PASSWORD", "secret")
	t.Setenv("EMAIL_SMTP_HOST", "smtp.univ.example")
	t.Setenv("RABBITMQ_DSN", "amqp://localhost")
	t.Setenv("REDIS_PASSWORD", "secret")
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 5000, cfg.Solver.TimeBudgetMS)
	assert.Equal(t, 1.0, cfg.Solver.FairnessWeight)
	assert.Equal(t, 1.0, cfg.Solver.PreferenceWeight)
	assert.Equal(t, 300, cfg.Redis.ReportExpiration)
}

func TestLoadConfigReportsMissingRequiredVariable(t *testing.T) {
	setRequiredEnv(t)
	// t.Setenv a déjà enregistré la restauration de la variable.
	os.Unsetenv("DATABASE_DSN")

	cfg, err := LoadConfig()
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadConfigRejectsMalformedValue(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SOLVER_TIME_BUDGET_MS", "beaucoup")

	// Quel que soit le type d'erreur renvoyé par env.Parse, une
	// configuration partiellement chargée ne doit jamais être retournée.
	cfg, err := LoadConfig()
	require.Error(t, err)
	assert.Nil(t, cfg)
}
