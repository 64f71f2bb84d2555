package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"raydium"}, cfg.Discovery.AllowedDexes)
	assert.Equal(t, 50_000.0, cfg.Discovery.MinLiquidityUSD)
	assert.Equal(t, 25_000.0, cfg.Discovery.MinVolume24hUSD)
	assert.Equal(t, 5, cfg.Discovery.MinTxns5m)
	assert.Equal(t, 80, cfg.Discovery.MinTxns1h)
	assert.Equal(t, 10, cfg.Discovery.MaxCandidates)
	assert.Equal(t, 3, cfg.Discovery.FetchAttempts)
	assert.Equal(t, 2*time.Second, cfg.Discovery.RetryDelay)

	assert.Equal(t, []string{"raydium"}, cfg.Validation.AllowedDexes)
	assert.Equal(t, 5, cfg.Validation.MinTxns5m)
	assert.Equal(t, 80, cfg.Validation.MinTxns1h)
	assert.Equal(t, 10_000.0, cfg.Validation.MinVolume1hUSD)
	assert.Equal(t, 1_000.0, cfg.Validation.FallbackVolume1hUSD)
	assert.Equal(t, 0.5, cfg.Validation.MaxRiskScore)
	assert.Equal(t, 5*time.Minute, cfg.Validation.CacheTTL)
	assert.Equal(t, 1000.0, cfg.Validation.MaxPriceUSD)

	assert.Equal(t, 30*time.Minute, cfg.DCA.Cooldown)
	assert.Equal(t, 0.002, cfg.DCA.BuyIncrement)
	assert.Equal(t, 0.01, cfg.DCA.MaxAccumulated)
}

func TestLoadEnvOverridesDefault(t *testing.T) {
	t.Setenv("DISCOVERY_MIN_LIQUIDITY_USD", "75000")
	t.Setenv("DCA_COOLDOWN", "45m")
	t.Setenv("DISCOVERY_ALLOWED_DEXES", "raydium,orca")
	t.Setenv("VALIDATION_ALLOWED_DEXES", "raydium,orca")
	t.Setenv("VALIDATION_MIN_TXNS_1H", "120")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 75_000.0, cfg.Discovery.MinLiquidityUSD)
	assert.Equal(t, 45*time.Minute, cfg.DCA.Cooldown)
	assert.Equal(t, []string{"raydium", "orca"}, cfg.Discovery.AllowedDexes)
	assert.Equal(t, []string{"raydium", "orca"}, cfg.Validation.AllowedDexes)
	assert.Equal(t, 120, cfg.Validation.MinTxns1h)
}

func TestLoadMalformedEnvFallsBack(t *testing.T) {
	t.Setenv("DISCOVERY_MIN_LIQUIDITY_USD", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 50_000.0, cfg.Discovery.MinLiquidityUSD)
}

func TestLoadExplicitOverrideWinsOverEnv(t *testing.T) {
	t.Setenv("DISCOVERY_MIN_LIQUIDITY_USD", "75000")

	override := DiscoveryConfig{}
	base, err := Load("")
	require.NoError(t, err)
	override = base.Discovery
	override.MinLiquidityUSD = 90_000

	cfg, err := Load("", WithDiscovery(override))
	require.NoError(t, err)
	assert.Equal(t, 90_000.0, cfg.Discovery.MinLiquidityUSD)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scout.yaml")
	body := []byte("discovery:\n  min_liquidity_usd: 60000\nvalidation:\n  min_txns_24h: 60\n")
	require.NoError(t, os.WriteFile(path, body, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 60_000.0, cfg.Discovery.MinLiquidityUSD)
	assert.Equal(t, 60, cfg.Validation.MinTxns24h)
	// Untouched values keep their defaults.
	assert.Equal(t, 25_000.0, cfg.Discovery.MinVolume24hUSD)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("VALIDATION_MAX_RISK_SCORE", "3")
	_, err := Load("")
	assert.Error(t, err)
}
