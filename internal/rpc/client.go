// Package rpc implements the JSON-RPC ledger interface the marketplace
// client reads from and submits to.
package rpc

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gagliardetto/solana-go"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"solmarket/pkg/core"
)

// Config holds transport configuration for the ledger client.
type Config struct {
	Endpoint     string        `validate:"required,url"`
	Timeout      time.Duration `validate:"min=1ms"`
	MaxRetries   int           `validate:"min=0"`
	RetryWaitMin time.Duration `validate:"min=0"`
	RetryWaitMax time.Duration `validate:"min=0"`
	Commitment   core.Commitment
}

// Client is a JSON-RPC client for the ledger. It is safe for concurrent use.
type Client struct {
	http       *resty.Client
	logger     zerolog.Logger
	commitment string
	nextID     atomic.Uint64
	mu         sync.RWMutex
	closed     bool
}

// NewClient creates a ledger client for the configured endpoint.
func NewClient(config *Config, logger zerolog.Logger) (*Client, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client := resty.New()
	client.SetBaseURL(config.Endpoint)
	client.SetTimeout(config.Timeout)
	client.SetRetryCount(config.MaxRetries)
	client.SetRetryWaitTime(config.RetryWaitMin)
	client.SetRetryMaxWaitTime(config.RetryWaitMax)
	client.SetHeader("Content-Type", "application/json")
	client.AddContentTypeEncoder("application/json", func(w io.Writer, v any) error {
		data, err := sonic.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})

	client.AddRequestMiddleware(func(_ *resty.Client, req *resty.Request) error {
		logger.Debug().
			Str("url", req.URL).
			Msg("rpc request")
		return nil
	})
	client.AddResponseMiddleware(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug().
			Int("status", resp.StatusCode()).
			Int("size", len(resp.Bytes())).
			Msg("rpc response")
		return nil
	})

	return &Client{
		http:       client,
		logger:     logger,
		commitment: config.Commitment.String(),
	}, nil
}

// Close releases the underlying transport. Subsequent calls fail with
// core.ErrClientClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.http.Close()
}

// call executes one JSON-RPC method and decodes its result into out.
func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return core.ErrClientClosed
	}

	body := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post("")
	if err != nil {
		c.logger.Error().Err(err).Str("method", method).Msg("rpc transport failure")
		return mapTransportError(method, err)
	}
	if resp.IsError() {
		return core.NewError(core.ErrorTypeRemote, core.ErrCodeRPC, method,
			fmt.Sprintf("http status %d", resp.StatusCode()))
	}

	var envelope rpcResponse
	if err := sonic.Unmarshal(resp.Bytes(), &envelope); err != nil {
		return core.NewError(core.ErrorTypeRemote, core.ErrCodeRPC, method,
			fmt.Sprintf("malformed response: %v", err))
	}
	if envelope.Error != nil {
		c.logger.Warn().
			Str("method", method).
			Int("code", envelope.Error.Code).
			Str("message", envelope.Error.Message).
			Msg("rpc error")
		return mapRPCError(method, envelope.Error)
	}

	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(envelope.Result, out); err != nil {
		return core.NewError(core.ErrorTypeRemote, core.ErrCodeRPC, method,
			fmt.Sprintf("malformed result: %v", err))
	}
	return nil
}

// GetProgramAccounts returns every account owned by the program in the
// ledger's return order. This is a single bulk query; if it fails, no
// partial result is produced.
func (c *Client) GetProgramAccounts(ctx context.Context, programID solana.PublicKey) ([]ProgramAccount, error) {
	params := []any{
		programID.String(),
		map[string]any{
			"encoding":   "base64",
			"commitment": c.commitment,
		},
	}

	var raw []keyedAccount
	if err := c.call(ctx, "getProgramAccounts", params, &raw); err != nil {
		return nil, err
	}

	accounts := make([]ProgramAccount, 0, len(raw))
	for _, entry := range raw {
		account, err := decodeKeyedAccount(entry)
		if err != nil {
			return nil, core.NewError(core.ErrorTypeRemote, core.ErrCodeRPC,
				"getProgramAccounts", err.Error())
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func decodeKeyedAccount(entry keyedAccount) (ProgramAccount, error) {
	pubkey, err := solana.PublicKeyFromBase58(entry.Pubkey)
	if err != nil {
		return ProgramAccount{}, fmt.Errorf("account pubkey %q: %w", entry.Pubkey, err)
	}
	owner, err := solana.PublicKeyFromBase58(entry.Account.Owner)
	if err != nil {
		return ProgramAccount{}, fmt.Errorf("account owner %q: %w", entry.Account.Owner, err)
	}
	var data []byte
	if len(entry.Account.Data) > 0 {
		data, err = base64.StdEncoding.DecodeString(entry.Account.Data[0])
		if err != nil {
			return ProgramAccount{}, fmt.Errorf("account data for %s: %w", entry.Pubkey, err)
		}
	}
	return ProgramAccount{
		Pubkey:   pubkey,
		Owner:    owner,
		Lamports: entry.Account.Lamports,
		Data:     data,
	}, nil
}

// GetTokenAccountsByOwner returns the wallet's token holdings in the
// ledger's return order.
func (c *Client) GetTokenAccountsByOwner(ctx context.Context, owner solana.PublicKey) ([]core.TokenHolding, error) {
	params := []any{
		owner.String(),
		map[string]any{"programId": solana.TokenProgramID.String()},
		map[string]any{
			"encoding":   "jsonParsed",
			"commitment": c.commitment,
		},
	}

	var result contextValue[[]parsedKeyedAccount]
	if err := c.call(ctx, "getTokenAccountsByOwner", params, &result); err != nil {
		return nil, err
	}

	holdings := make([]core.TokenHolding, 0, len(result.Value))
	for _, entry := range result.Value {
		account, err := solana.PublicKeyFromBase58(entry.Pubkey)
		if err != nil {
			return nil, core.NewError(core.ErrorTypeRemote, core.ErrCodeRPC,
				"getTokenAccountsByOwner", fmt.Sprintf("token account %q: %v", entry.Pubkey, err))
		}
		info := entry.Account.Data.Parsed.Info
		mint, err := solana.PublicKeyFromBase58(info.Mint)
		if err != nil {
			return nil, core.NewError(core.ErrorTypeRemote, core.ErrCodeRPC,
				"getTokenAccountsByOwner", fmt.Sprintf("mint %q: %v", info.Mint, err))
		}
		balance, err := strconv.ParseUint(info.TokenAmount.Amount, 10, 64)
		if err != nil {
			return nil, core.NewError(core.ErrorTypeRemote, core.ErrCodeRPC,
				"getTokenAccountsByOwner", fmt.Sprintf("token amount %q: %v", info.TokenAmount.Amount, err))
		}
		holdings = append(holdings, core.TokenHolding{
			Account:  account,
			Mint:     mint,
			Balance:  balance,
			Decimals: info.TokenAmount.Decimals,
		})
	}
	return holdings, nil
}

// GetTokenSupply returns the total supply of a mint in its smallest unit.
func (c *Client) GetTokenSupply(ctx context.Context, mint solana.PublicKey) (uint64, error) {
	params := []any{
		mint.String(),
		map[string]any{"commitment": c.commitment},
	}

	var result contextValue[tokenAmount]
	if err := c.call(ctx, "getTokenSupply", params, &result); err != nil {
		return 0, err
	}

	supply, err := strconv.ParseUint(result.Value.Amount, 10, 64)
	if err != nil {
		return 0, core.NewError(core.ErrorTypeRemote, core.ErrCodeRPC,
			"getTokenSupply", fmt.Sprintf("supply %q: %v", result.Value.Amount, err))
	}
	return supply, nil
}

// GetAccountInfo returns a single account, or nil if it does not exist.
func (c *Client) GetAccountInfo(ctx context.Context, address solana.PublicKey) (*ProgramAccount, error) {
	params := []any{
		address.String(),
		map[string]any{
			"encoding":   "base64",
			"commitment": c.commitment,
		},
	}

	var result contextValue[*accountInfo]
	if err := c.call(ctx, "getAccountInfo", params, &result); err != nil {
		return nil, err
	}
	if result.Value == nil {
		return nil, nil
	}

	account, err := decodeKeyedAccount(keyedAccount{Pubkey: address.String(), Account: *result.Value})
	if err != nil {
		return nil, core.NewError(core.ErrorTypeRemote, core.ErrCodeRPC,
			"getAccountInfo", err.Error())
	}
	return &account, nil
}

// GetLatestBlockhash returns a recent blockhash for transaction assembly.
func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	params := []any{
		map[string]any{"commitment": c.commitment},
	}

	var result contextValue[latestBlockhash]
	if err := c.call(ctx, "getLatestBlockhash", params, &result); err != nil {
		return solana.Hash{}, err
	}

	hash, err := solana.HashFromBase58(result.Value.Blockhash)
	if err != nil {
		return solana.Hash{}, core.NewError(core.ErrorTypeRemote, core.ErrCodeRPC,
			"getLatestBlockhash", fmt.Sprintf("blockhash %q: %v", result.Value.Blockhash, err))
	}
	return hash, nil
}

// SendTransaction submits a signed transaction. Program rejections surface
// as rejection errors with the ledger's message preserved verbatim; they
// are never retried here.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	wire, err := tx.MarshalBinary()
	if err != nil {
		return solana.Signature{}, fmt.Errorf("serialize transaction: %w", err)
	}

	params := []any{
		base64.StdEncoding.EncodeToString(wire),
		map[string]any{
			"encoding":            "base64",
			"preflightCommitment": c.commitment,
		},
	}

	var sigStr string
	if err := c.call(ctx, "sendTransaction", params, &sigStr); err != nil {
		return solana.Signature{}, err
	}

	sig, err := solana.SignatureFromBase58(sigStr)
	if err != nil {
		return solana.Signature{}, core.NewError(core.ErrorTypeRemote, core.ErrCodeRPC,
			"sendTransaction", fmt.Sprintf("signature %q: %v", sigStr, err))
	}
	return sig, nil
}
