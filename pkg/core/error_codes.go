package core

import "errors"

// ErrorCode represents a stable machine-readable error identifier.
type ErrorCode string

// Error code constants define standardized identifiers across the client.
const (
	// ErrCodeNetwork indicates a transport connectivity failure.
	ErrCodeNetwork ErrorCode = "NETWORK_ERROR"
	// ErrCodeTimeout indicates the request exceeded its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimit indicates the client-side limiter denied a call.
	ErrCodeRateLimit ErrorCode = "RATE_LIMIT"
	// ErrCodeRPC indicates a ledger RPC error that is not a program rejection.
	ErrCodeRPC ErrorCode = "RPC_ERROR"
	// ErrCodeRejected indicates the program rejected the instruction.
	ErrCodeRejected ErrorCode = "PROGRAM_REJECTED"
	// ErrCodePreflight indicates the transaction failed preflight simulation.
	ErrCodePreflight ErrorCode = "PREFLIGHT_FAILURE"
	// ErrCodeNoBump indicates address derivation exhausted all 256 bumps.
	ErrCodeNoBump ErrorCode = "NO_BUMP"
	// ErrCodeBadSeed indicates a derivation seed violates the seed limits.
	ErrCodeBadSeed ErrorCode = "BAD_SEED"
	// ErrCodeNotListing indicates account data is not a listing record.
	ErrCodeNotListing ErrorCode = "NOT_LISTING"
	// ErrCodeInvalidAsk indicates a non-positive ask price.
	ErrCodeInvalidAsk ErrorCode = "INVALID_ASK"
	// ErrCodeInvalidConfig indicates the client configuration failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeClientClosed indicates the client was already closed.
	ErrCodeClientClosed ErrorCode = "CLIENT_CLOSED"
	// ErrCodeNotConnected indicates the subscription socket is down.
	ErrCodeNotConnected ErrorCode = "NOT_CONNECTED"
	// ErrCodeCircuitOpen indicates the circuit breaker refused the call.
	ErrCodeCircuitOpen ErrorCode = "CIRCUIT_BREAKER_OPEN"
	// ErrCodeSuperseded indicates a stale task result was discarded.
	ErrCodeSuperseded ErrorCode = "SUPERSEDED"
)

// IsErrorCode checks whether the error carries the specified code.
func IsErrorCode(err error, code ErrorCode) bool {
	var me *MarketError
	if errors.As(err, &me) {
		return me.Code == code
	}
	return false
}
