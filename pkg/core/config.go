package core

import (
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/go-playground/validator/v10"
)

// Config contains all configuration for a marketplace client.
// Endpoint, market address, and program identifier are loaded externally and
// required before any operation can run.
type Config struct {
	// Endpoint is the HTTP JSON-RPC endpoint of the ledger.
	Endpoint string `json:"endpoint" validate:"required,url"`
	// WSEndpoint is the pubsub endpoint; required only for Watch.
	WSEndpoint string `json:"ws_endpoint" validate:"omitempty,url"`
	// Market is the singleton marketplace address all listings are scoped to.
	Market solana.PublicKey `json:"market"`
	// ProgramID identifies the on-chain marketplace program.
	ProgramID solana.PublicKey `json:"program_id"`
	// Commitment is the confirmation level for reads and preflight.
	Commitment Commitment `json:"commitment"`

	// Timeout is the maximum duration for a single RPC request.
	Timeout      time.Duration `json:"timeout" validate:"min=1ms"`
	MaxRetries   int           `json:"max_retries" validate:"min=0"`
	RetryWaitMin time.Duration `json:"retry_wait_min" validate:"min=0"`
	RetryWaitMax time.Duration `json:"retry_wait_max" validate:"min=0"`

	RateLimitRequests int           `json:"rate_limit_requests" validate:"min=1"`
	RateLimitPeriod   time.Duration `json:"rate_limit_period" validate:"min=1ms"`

	// SupplyCacheTTL bounds staleness of cached mint supplies used by
	// classification. Zero disables the cache.
	SupplyCacheTTL time.Duration `json:"supply_cache_ttl" validate:"min=0"`

	CircuitBreakerEnabled          bool          `json:"circuit_breaker_enabled"`
	CircuitBreakerFailThreshold    int           `json:"circuit_breaker_fail_threshold"`
	CircuitBreakerSuccessThreshold int           `json:"circuit_breaker_success_threshold"`
	CircuitBreakerTimeout          time.Duration `json:"circuit_breaker_timeout"`

	LogLevel string `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns a Config with sensible defaults for the given
// endpoint, market, and program. Defaults: processed commitment, 10s timeout,
// 3 retries, 100ms-1s retry wait, 600 req/min rate limit, 30s supply cache,
// circuit breaker 5 failures / 2 successes / 30s.
func DefaultConfig(endpoint string, market, programID solana.PublicKey) *Config {
	return &Config{
		Endpoint:     endpoint,
		Market:       market,
		ProgramID:    programID,
		Commitment:   CommitmentProcessed,
		Timeout:      10 * time.Second,
		MaxRetries:   3,
		RetryWaitMin: 100 * time.Millisecond,
		RetryWaitMax: 1 * time.Second,

		RateLimitRequests: 600,
		RateLimitPeriod:   time.Minute,

		SupplyCacheTTL: 30 * time.Second,

		CircuitBreakerEnabled:          true,
		CircuitBreakerFailThreshold:    5,
		CircuitBreakerSuccessThreshold: 2,
		CircuitBreakerTimeout:          30 * time.Second,

		LogLevel: "info",
	}
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Market.IsZero() {
		return errors.New("Market address is required")
	}
	if c.ProgramID.IsZero() {
		return errors.New("ProgramID is required")
	}
	if c.CircuitBreakerEnabled {
		if c.CircuitBreakerFailThreshold <= 0 {
			return errors.New("CircuitBreakerFailThreshold must be positive when enabled")
		}
		if c.CircuitBreakerSuccessThreshold <= 0 {
			return errors.New("CircuitBreakerSuccessThreshold must be positive when enabled")
		}
		if c.CircuitBreakerTimeout <= 0 {
			return errors.New("CircuitBreakerTimeout must be positive when enabled")
		}
	}
	return nil
}

// WithWSEndpoint sets the pubsub endpoint and returns the config for chaining.
func (c *Config) WithWSEndpoint(endpoint string) *Config {
	c.WSEndpoint = endpoint
	return c
}

// WithCommitment sets the confirmation level and returns the config for chaining.
func (c *Config) WithCommitment(commitment Commitment) *Config {
	c.Commitment = commitment
	return c
}

// WithTimeout sets the request timeout and returns the config for chaining.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithRateLimit sets the rate limiting parameters and returns the config for chaining.
func (c *Config) WithRateLimit(requests int, period time.Duration) *Config {
	c.RateLimitRequests = requests
	c.RateLimitPeriod = period
	return c
}

// WithSupplyCache sets the mint supply cache TTL and returns the config for chaining.
func (c *Config) WithSupplyCache(ttl time.Duration) *Config {
	c.SupplyCacheTTL = ttl
	return c
}
