package core

import (
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testMarket  = solana.MustPublicKeyFromBase58("BPFLoaderUpgradeab1e11111111111111111111111")
	testProgram = solana.MustPublicKeyFromBase58("Stake11111111111111111111111111111111111111")
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig("https://api.devnet.solana.com", testMarket, testProgram)

	assert.Equal(t, "https://api.devnet.solana.com", config.Endpoint)
	assert.Equal(t, testMarket, config.Market)
	assert.Equal(t, testProgram, config.ProgramID)
	assert.Equal(t, CommitmentProcessed, config.Commitment)
	assert.Equal(t, 10*time.Second, config.Timeout)
	assert.Equal(t, 600, config.RateLimitRequests)
	assert.Equal(t, time.Minute, config.RateLimitPeriod)
	assert.Equal(t, 30*time.Second, config.SupplyCacheTTL)
	assert.True(t, config.CircuitBreakerEnabled)

	require.NoError(t, config.Validate())
}

func TestConfig_Validate_MissingEndpoint(t *testing.T) {
	config := DefaultConfig("", testMarket, testProgram)
	assert.Error(t, config.Validate())
}

func TestConfig_Validate_BadEndpoint(t *testing.T) {
	config := DefaultConfig("not-a-url", testMarket, testProgram)
	assert.Error(t, config.Validate())
}

func TestConfig_Validate_MissingMarket(t *testing.T) {
	config := DefaultConfig("https://api.devnet.solana.com", solana.PublicKey{}, testProgram)
	err := config.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Market")
}

func TestConfig_Validate_MissingProgram(t *testing.T) {
	config := DefaultConfig("https://api.devnet.solana.com", testMarket, solana.PublicKey{})
	err := config.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ProgramID")
}

func TestConfig_Validate_BreakerThresholds(t *testing.T) {
	config := DefaultConfig("https://api.devnet.solana.com", testMarket, testProgram)
	config.CircuitBreakerFailThreshold = 0
	assert.Error(t, config.Validate())

	config.CircuitBreakerEnabled = false
	assert.NoError(t, config.Validate())
}

func TestConfig_Chaining(t *testing.T) {
	config := DefaultConfig("https://api.devnet.solana.com", testMarket, testProgram).
		WithWSEndpoint("wss://api.devnet.solana.com").
		WithCommitment(CommitmentFinalized).
		WithTimeout(5 * time.Second).
		WithRateLimit(100, time.Second).
		WithSupplyCache(time.Minute)

	assert.Equal(t, "wss://api.devnet.solana.com", config.WSEndpoint)
	assert.Equal(t, CommitmentFinalized, config.Commitment)
	assert.Equal(t, 5*time.Second, config.Timeout)
	assert.Equal(t, 100, config.RateLimitRequests)
	assert.Equal(t, time.Second, config.RateLimitPeriod)
	assert.Equal(t, time.Minute, config.SupplyCacheTTL)
	require.NoError(t, config.Validate())
}
