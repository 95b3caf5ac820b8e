package rpc

import (
	"encoding/json"

	"github.com/gagliardetto/solana-go"
)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

// RPCError is the error object of a JSON-RPC response envelope.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
}

// contextValue wraps results the ledger scopes to the slot they were read at.
type contextValue[T any] struct {
	Context struct {
		Slot uint64 `json:"slot"`
	} `json:"context"`
	Value T `json:"value"`
}

// ProgramAccount is one entry of a bulk accounts-owned-by-program query.
type ProgramAccount struct {
	// Pubkey is the account address.
	Pubkey solana.PublicKey
	// Owner is the program owning the account.
	Owner solana.PublicKey
	// Lamports is the account balance funding its rent exemption.
	Lamports uint64
	// Data is the raw account data.
	Data []byte
}

type keyedAccount struct {
	Pubkey  string      `json:"pubkey"`
	Account accountInfo `json:"account"`
}

type accountInfo struct {
	// Data is a [payload, encoding] tuple under base64 encoding.
	Data     []string `json:"data"`
	Owner    string   `json:"owner"`
	Lamports uint64   `json:"lamports"`
}

type parsedKeyedAccount struct {
	Pubkey  string `json:"pubkey"`
	Account struct {
		Data struct {
			Parsed struct {
				Info struct {
					Mint        string `json:"mint"`
					TokenAmount struct {
						Amount   string `json:"amount"`
						Decimals uint8  `json:"decimals"`
					} `json:"tokenAmount"`
				} `json:"info"`
			} `json:"parsed"`
		} `json:"data"`
	} `json:"account"`
}

type tokenAmount struct {
	Amount   string `json:"amount"`
	Decimals uint8  `json:"decimals"`
}

type latestBlockhash struct {
	Blockhash            string `json:"blockhash"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}
