package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tansa")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "5200", cfg.Port)
	assert.Equal(t, int64(700), cfg.MembershipFeeCents)
	assert.Equal(t, "nzd", cfg.MembershipCurrency)
	assert.Equal(t, 10*time.Minute, cfg.ReconcileInterval)
	assert.Equal(t, 24*time.Hour, cfg.ReconcileLookback)
	assert.Equal(t, 64, cfg.NotifyQueueSize)
	assert.NoError(t, cfg.RequireDatabase())
	assert.False(t, cfg.R2Enabled())
}

func TestParseRejectsBadDuration(t *testing.T) {
	t.Setenv("RECONCILE_INTERVAL", "soon")

	_, err := Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestParseRejectsNonPositiveFee(t *testing.T) {
	t.Setenv("MEMBERSHIP_FEE_CENTS", "0")

	_, err := Parse()
	require.Error(t, err)
}

func TestRequireDatabase(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.RequireDatabase())
}

func TestOriginList(t *testing.T) {
	cfg := &Config{AllowedOrigins: " https://tansa.co.nz, ,http://localhost:3000 "}
	assert.Equal(t, []string{"https://tansa.co.nz", "http://localhost:3000"}, cfg.OriginList())
}

func TestSessionSecretFallsBackToPassword(t *testing.T) {
	cfg := &Config{ExecDashboardPassword: "hunter2"}
	assert.Equal(t, "hunter2", cfg.SessionSecret())

	cfg.ExecDashboardSecret = "signing-key"
	assert.Equal(t, "signing-key", cfg.SessionSecret())
}
