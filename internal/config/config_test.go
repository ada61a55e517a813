package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultEnv, cfg.Env)
	assert.Equal(t, int64(DefaultTokenPrice), cfg.TokenPriceNGN)
	assert.Equal(t, int64(DefaultInspectionFee), cfg.InspectionFeeNGN)
	assert.False(t, cfg.EnablePaymentSimulation)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_PRICE_NGN", "1500")
	t.Setenv("ENABLE_PAYMENT_SIMULATION", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, int64(1500), cfg.TokenPriceNGN)
	assert.True(t, cfg.EnablePaymentSimulation)
}

func TestLoad_ProductionRequiresWebhookSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("KORAPAY_WEBHOOK_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KORAPAY_WEBHOOK_SECRET")
}

func TestLoad_ProductionRejectsSimulation(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("KORAPAY_WEBHOOK_SECRET", "whsec")
	t.Setenv("ENABLE_PAYMENT_SIMULATION", "true")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENABLE_PAYMENT_SIMULATION")
}

func TestLoad_InvalidPricing(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TOKEN_PRICE_NGN", "-5")

	_, err := Load()
	assert.Error(t, err)
}
