package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"solmarket/pkg/core"
)

// JSON-RPC error codes the ledger returns for failed submissions.
const (
	codeSendTransactionPreflightFailure = -32002
	codeTransactionSignatureVerify      = -32003
)

// mapTransportError classifies errors raised before a response envelope
// was received.
func mapTransportError(method string, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return core.NewError(core.ErrorTypeTimeout, core.ErrCodeTimeout, method, err.Error()).WithRaw(err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return core.NewError(core.ErrorTypeTimeout, core.ErrCodeTimeout, method, err.Error()).WithRaw(err)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return core.NewError(core.ErrorTypeNetwork, core.ErrCodeNetwork, method, err.Error()).WithRaw(err)
	}
}

// mapRPCError classifies a JSON-RPC error envelope. Instruction rejections
// by the program surface as rejection errors carrying the ledger's message
// verbatim; everything else is a remote failure.
func mapRPCError(method string, rpcErr *RPCError) error {
	msg := fmt.Sprintf("%s (code %d)", rpcErr.Message, rpcErr.Code)

	if isRejection(rpcErr) {
		code := core.ErrCodeRejected
		if rpcErr.Code == codeSendTransactionPreflightFailure {
			code = core.ErrCodePreflight
		}
		return core.NewError(core.ErrorTypeRejection, code, method, msg).WithRaw(rpcErr)
	}

	return core.NewError(core.ErrorTypeRemote, core.ErrCodeRPC, method, msg).WithRaw(rpcErr)
}

func isRejection(rpcErr *RPCError) bool {
	if rpcErr.Code == codeSendTransactionPreflightFailure ||
		rpcErr.Code == codeTransactionSignatureVerify {
		return true
	}
	return strings.Contains(rpcErr.Message, "custom program error") ||
		strings.Contains(rpcErr.Message, "Transaction simulation failed")
}
