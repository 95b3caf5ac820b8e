package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of a marketplace client error.
type ErrorType int

// Error type constants categorize errors for handling decisions.
const (
	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeNetwork indicates a transport-level connectivity failure.
	ErrorTypeNetwork
	// ErrorTypeTimeout indicates the request exceeded its deadline.
	ErrorTypeTimeout
	// ErrorTypeRateLimit indicates the client-side rate limit denied the call.
	ErrorTypeRateLimit
	// ErrorTypeRemote indicates the ledger answered with a non-rejection error.
	ErrorTypeRemote
	// ErrorTypeDerivation indicates no valid off-curve bump exists for a seed set.
	ErrorTypeDerivation
	// ErrorTypeDecodeMismatch indicates an account does not carry a listing record.
	ErrorTypeDecodeMismatch
	// ErrorTypeRejection indicates the program rejected a submitted instruction.
	ErrorTypeRejection
	// ErrorTypeInvalidInput indicates a precondition failed before submission.
	ErrorTypeInvalidInput
)

// String returns the string representation of the error type.
func (t ErrorType) String() string {
	return [...]string{
		"UNKNOWN",
		"NETWORK",
		"TIMEOUT",
		"RATE_LIMIT",
		"REMOTE",
		"DERIVATION",
		"DECODE_MISMATCH",
		"REJECTION",
		"INVALID_INPUT",
	}[t]
}

// Sentinel errors for common conditions.
var (
	// ErrClientClosed is returned when using a closed client.
	ErrClientClosed = errors.New("client is closed")
	// ErrNotConnected is returned when the subscription socket is down.
	ErrNotConnected = errors.New("websocket not connected")
	// ErrCircuitBreakerOpen is returned when the circuit breaker refuses a call.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
	// ErrNotListing is returned when account data does not match the listing
	// layout. Scans skip it; everything else treats it as a real error.
	ErrNotListing = errors.New("account is not a listing")
	// ErrNoBump is returned when no bump in 0-255 lands off-curve.
	ErrNoBump = errors.New("no viable bump for seed set")
	// ErrSuperseded is returned when a newer scan or classification was
	// triggered before this one could apply its result.
	ErrSuperseded = errors.New("result superseded by a newer task")
)

// MarketError represents a structured error from a marketplace operation.
type MarketError struct {
	// Type categorizes the error for programmatic handling.
	Type ErrorType `json:"type"`
	// Code is a stable machine-readable identifier.
	Code ErrorCode `json:"code,omitempty"`
	// Op names the operation or ledger method that failed.
	Op string `json:"op"`
	// Message is the human-readable description. Program rejections carry
	// the ledger's message verbatim.
	Message string `json:"message"`
	// Raw contains the original error payload for debugging.
	Raw any `json:"raw,omitempty"`
	// Timestamp is when the error occurred.
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface for MarketError.
func (e *MarketError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s (%s): %s", e.Op, e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Op, e.Type, e.Message)
}

// WithRaw attaches the original error payload and returns the error.
func (e *MarketError) WithRaw(raw any) *MarketError {
	e.Raw = raw
	return e
}

// NewError creates a MarketError with the current timestamp.
func NewError(t ErrorType, code ErrorCode, op, message string) *MarketError {
	return &MarketError{
		Type:      t,
		Code:      code,
		Op:        op,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// IsDecodeMismatch returns true if the error marks account data that does
// not carry a listing record.
func IsDecodeMismatch(err error) bool {
	if errors.Is(err, ErrNotListing) {
		return true
	}
	var me *MarketError
	return errors.As(err, &me) && me.Type == ErrorTypeDecodeMismatch
}

// IsRejection returns true if the program rejected the instruction.
// Rejections are not locally recoverable and must not be retried blindly.
func IsRejection(err error) bool {
	var me *MarketError
	return errors.As(err, &me) && me.Type == ErrorTypeRejection
}

// IsRemote returns true for transport or ledger level failures, the class
// callers may retry after re-reading state.
func IsRemote(err error) bool {
	var me *MarketError
	if !errors.As(err, &me) {
		return false
	}
	return me.Type == ErrorTypeNetwork || me.Type == ErrorTypeTimeout || me.Type == ErrorTypeRemote
}

// IsDerivation returns true if address derivation exhausted all bumps.
func IsDerivation(err error) bool {
	if errors.Is(err, ErrNoBump) {
		return true
	}
	var me *MarketError
	return errors.As(err, &me) && me.Type == ErrorTypeDerivation
}

// IsTimeout returns true if the request exceeded its deadline.
func IsTimeout(err error) bool {
	var me *MarketError
	return errors.As(err, &me) && me.Type == ErrorTypeTimeout
}
