package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrMethodUnavailable is returned when the deployed contract does not
	// implement a view method (empty return data).
	ErrMethodUnavailable = errors.New("contract method unavailable")

	// ErrReadOnly is returned by write operations when no owner key is configured.
	ErrReadOnly = errors.New("chain client has no signing key")
)

// RPCError wraps a transport or node failure for one operation.
type RPCError struct {
	Op      string
	Err     error
	Timeout bool
}

func (e *RPCError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("rpc %s: timed out: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("rpc %s: %v", e.Op, e.Err)
}

func (e *RPCError) Unwrap() error { return e.Err }

// TxRevertedError reports a transaction that was mined with failure status or
// rejected by the node during gas estimation. TxHash is zero in the latter case.
type TxRevertedError struct {
	TxHash common.Hash
	Method string
	Reason string
}

func (e *TxRevertedError) Error() string {
	var b strings.Builder
	b.WriteString("transaction reverted")
	if e.Method != "" {
		b.WriteString(" (")
		b.WriteString(e.Method)
		b.WriteString(")")
	}
	if e.TxHash != (common.Hash{}) {
		b.WriteString(" tx=")
		b.WriteString(e.TxHash.Hex())
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

// NewRPCError wraps err for op. Errors that already carry a chain
// classification are returned unchanged.
func NewRPCError(op string, err error) error {
	if err == nil {
		return nil
	}
	var rpcErr *RPCError
	var revertErr *TxRevertedError
	if errors.As(err, &rpcErr) || errors.As(err, &revertErr) || errors.Is(err, ErrMethodUnavailable) {
		return err
	}
	return &RPCError{
		Op:      op,
		Err:     err,
		Timeout: errors.Is(err, context.DeadlineExceeded),
	}
}

// IsExecutionReverted reports whether err is a node-side EVM revert.
func IsExecutionReverted(err error) bool {
	if err == nil {
		return false
	}
	var revertErr *TxRevertedError
	if errors.As(err, &revertErr) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "execution reverted")
}

// RevertReason extracts a human-readable reason from err, preferring the
// decoded revert string when one is present.
func RevertReason(err error) string {
	var revertErr *TxRevertedError
	if errors.As(err, &revertErr) && revertErr.Reason != "" {
		return revertErr.Reason
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
