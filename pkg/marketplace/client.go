// Package marketplace implements the peer-to-peer NFT marketplace client:
// listing lifecycle, marketplace scanning, and wallet portfolio
// classification against a single on-chain program.
package marketplace

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"solmarket/internal/circuitbreaker"
	"solmarket/internal/keyring"
	"solmarket/internal/ratelimit"
	"solmarket/internal/rpc"
	"solmarket/pkg/core"
)

// Ledger is the read/submit surface the client needs from the chain.
// All reads are eventually consistent snapshots with no cross-call
// ordering guarantee.
type Ledger interface {
	GetProgramAccounts(ctx context.Context, programID solana.PublicKey) ([]rpc.ProgramAccount, error)
	GetAccountInfo(ctx context.Context, address solana.PublicKey) (*rpc.ProgramAccount, error)
	GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey) ([]core.TokenHolding, error)
	GetTokenSupply(ctx context.Context, mint solana.PublicKey) (uint64, error)
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

// Client is a marketplace client bound to one wallet, one market, and one
// program. It is safe for concurrent use.
type Client struct {
	config   *core.Config
	wallet   solana.PrivateKey
	ledger   Ledger
	limiter  *ratelimit.Limiter
	breaker  *circuitbreaker.Breaker
	keys     *keyring.Store
	supplies *supplyCache
	tracker  *Tracker
	logger   zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// Option is a functional option for configuring the Client.
type Option func(*Options)

// Options holds construction options for the Client.
type Options struct {
	Logger zerolog.Logger
	Ledger Ledger
}

// WithLogger returns an option that sets the client logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithLedger returns an option that injects a ledger implementation,
// replacing the default JSON-RPC client.
func WithLedger(l Ledger) Option {
	return func(o *Options) {
		o.Ledger = l
	}
}

// New creates a marketplace client for the given config and wallet key.
func New(config *core.Config, wallet solana.PrivateKey, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if wallet == nil {
		return nil, fmt.Errorf("wallet key is required")
	}

	options := &Options{
		Logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(options)
	}
	// Validate already vetted LogLevel against zerolog's level names; an
	// empty level leaves the injected logger's own level in charge.
	if config.LogLevel != "" {
		if level, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			options.Logger = options.Logger.Level(level)
		}
	}

	ledger := options.Ledger
	if ledger == nil {
		rpcClient, err := rpc.NewClient(&rpc.Config{
			Endpoint:     config.Endpoint,
			Timeout:      config.Timeout,
			MaxRetries:   config.MaxRetries,
			RetryWaitMin: config.RetryWaitMin,
			RetryWaitMax: config.RetryWaitMax,
			Commitment:   config.Commitment,
		}, options.Logger)
		if err != nil {
			return nil, fmt.Errorf("create rpc client: %w", err)
		}
		ledger = rpcClient
	}

	var limiter *ratelimit.Limiter
	if config.RateLimitRequests > 0 {
		limiter = ratelimit.New(config.RateLimitRequests, config.RateLimitPeriod)
	}

	var breaker *circuitbreaker.Breaker
	if config.CircuitBreakerEnabled {
		breaker = circuitbreaker.New(circuitbreaker.Config{
			FailThreshold:    config.CircuitBreakerFailThreshold,
			SuccessThreshold: config.CircuitBreakerSuccessThreshold,
			Timeout:          config.CircuitBreakerTimeout,
		})
	}

	return &Client{
		config:   config,
		wallet:   wallet,
		ledger:   ledger,
		limiter:  limiter,
		breaker:  breaker,
		keys:     keyring.New(),
		supplies: newSupplyCache(config.SupplyCacheTTL),
		tracker:  NewTracker(),
		logger:   options.Logger,
	}, nil
}

// Wallet returns the connected wallet's public key.
func (c *Client) Wallet() solana.PublicKey {
	return c.wallet.PublicKey()
}

// Keys returns the store retaining generated destination-account keys.
func (c *Client) Keys() *keyring.Store {
	return c.keys
}

// Tracker returns the snapshot state transition point.
func (c *Client) Tracker() *Tracker {
	return c.tracker
}

// Close releases the client's transport resources.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if closer, ok := c.ledger.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// throttle admits one ledger call through the rate limiter and breaker.
func (c *Client) throttle(ctx context.Context, op core.Operation) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return core.ErrClientClosed
	}

	if c.limiter != nil {
		if err := c.limiter.WaitOp(ctx, op); err != nil {
			return core.NewError(core.ErrorTypeRateLimit, core.ErrCodeRateLimit, op.String(), err.Error())
		}
	}
	if c.breaker != nil && !c.breaker.Allow() {
		return core.NewError(core.ErrorTypeRemote, core.ErrCodeCircuitOpen, op.String(),
			core.ErrCircuitBreakerOpen.Error())
	}
	return nil
}

// record feeds a call outcome into the breaker. Program rejections count
// as transport successes: the endpoint answered, only the instruction was
// refused.
func (c *Client) record(err error) {
	if c.breaker == nil {
		return
	}
	c.breaker.Record(err == nil || core.IsRejection(err))
}
