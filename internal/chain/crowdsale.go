package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Crowdsale method names as declared in the contract ABI.
const (
	MethodIsWhitelisted  = "isWhitelisted"
	MethodAddToWhitelist = "addToWhitelist"
	MethodWeiRaised      = "weiRaised"
	MethodCap            = "cap"
	MethodSoftCap        = "softCap"
)

// Crowdsale is a typed facade over the generic Caller and Transactor.
type Crowdsale struct {
	caller     Caller
	transactor Transactor
}

var _ CrowdsaleClient = (*Crowdsale)(nil)

// NewCrowdsale builds the facade. transactor may be nil for read-only
// deployments, in which case writes fail with ErrReadOnly.
func NewCrowdsale(caller Caller, transactor Transactor) *Crowdsale {
	return &Crowdsale{caller: caller, transactor: transactor}
}

func (c *Crowdsale) IsWhitelisted(ctx context.Context, account common.Address) (bool, error) {
	out, err := c.caller.ReadCall(ctx, MethodIsWhitelisted, account)
	if err != nil {
		return false, err
	}
	if len(out) != 1 {
		return false, fmt.Errorf("%s: unexpected output count %d", MethodIsWhitelisted, len(out))
	}
	v, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("%s: unexpected output type %T", MethodIsWhitelisted, out[0])
	}
	return v, nil
}

func (c *Crowdsale) WeiRaised(ctx context.Context) (*big.Int, error) {
	return c.readUint(ctx, MethodWeiRaised)
}

func (c *Crowdsale) Cap(ctx context.Context) (*big.Int, error) {
	return c.readUint(ctx, MethodCap)
}

// SoftCap returns zero when the deployed contract has no softCap view.
func (c *Crowdsale) SoftCap(ctx context.Context) (*big.Int, error) {
	v, err := c.readUint(ctx, MethodSoftCap)
	if errors.Is(err, ErrMethodUnavailable) || IsExecutionReverted(err) {
		return new(big.Int), nil
	}
	return v, err
}

func (c *Crowdsale) AddToWhitelist(ctx context.Context, account common.Address) (*PendingTx, error) {
	if c.transactor == nil {
		return nil, ErrReadOnly
	}
	return c.transactor.WriteCall(ctx, MethodAddToWhitelist, account)
}

func (c *Crowdsale) AwaitFinality(ctx context.Context, tx *PendingTx) (*Receipt, error) {
	if c.transactor == nil {
		return nil, ErrReadOnly
	}
	return c.transactor.AwaitFinality(ctx, tx)
}

func (c *Crowdsale) readUint(ctx context.Context, method string) (*big.Int, error) {
	out, err := c.caller.ReadCall(ctx, method)
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%s: unexpected output count %d", method, len(out))
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected output type %T", method, out[0])
	}
	return v, nil
}
