package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCaller struct {
	outputs map[string][]any
	errs    map[string]error
	calls   []string
}

func (f *fakeCaller) ReadCall(_ context.Context, method string, _ ...any) ([]any, error) {
	f.calls = append(f.calls, method)
	if err, ok := f.errs[method]; ok {
		return nil, err
	}
	return f.outputs[method], nil
}

type fakeTransactor struct {
	sent []string
}

func (f *fakeTransactor) WriteCall(_ context.Context, method string, _ ...any) (*PendingTx, error) {
	f.sent = append(f.sent, method)
	return &PendingTx{Hash: common.HexToHash("0x01"), Method: method}, nil
}

func (f *fakeTransactor) AwaitFinality(_ context.Context, tx *PendingTx) (*Receipt, error) {
	return &Receipt{TxHash: tx.Hash, Status: 1}, nil
}

func TestCrowdsale_Reads(t *testing.T) {
	caller := &fakeCaller{outputs: map[string][]any{
		MethodIsWhitelisted: {true},
		MethodWeiRaised:     {big.NewInt(42)},
		MethodCap:           {big.NewInt(1000)},
		MethodSoftCap:       {big.NewInt(100)},
	}}
	c := NewCrowdsale(caller, nil)
	ctx := context.Background()

	ok, err := c.IsWhitelisted(ctx, common.HexToAddress("0xabc"))
	require.NoError(t, err)
	assert.True(t, ok)

	raised, err := c.WeiRaised(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), raised.Int64())

	capV, err := c.Cap(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), capV.Int64())

	soft, err := c.SoftCap(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100), soft.Int64())
}

func TestCrowdsale_SoftCapUnavailable(t *testing.T) {
	for name, readErr := range map[string]error{
		"empty output": fmt.Errorf("%w: softCap", ErrMethodUnavailable),
		"reverted":     errors.New("execution reverted"),
	} {
		t.Run(name, func(t *testing.T) {
			caller := &fakeCaller{errs: map[string]error{MethodSoftCap: readErr}}
			soft, err := NewCrowdsale(caller, nil).SoftCap(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 0, soft.Sign())
		})
	}
}

func TestCrowdsale_CapErrorPropagates(t *testing.T) {
	rpcErr := &RPCError{Op: MethodCap, Err: errors.New("connection refused")}
	caller := &fakeCaller{errs: map[string]error{MethodCap: rpcErr}}

	_, err := NewCrowdsale(caller, nil).Cap(context.Background())
	var got *RPCError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, MethodCap, got.Op)
}

func TestCrowdsale_UnexpectedOutputType(t *testing.T) {
	caller := &fakeCaller{outputs: map[string][]any{MethodIsWhitelisted: {"yes"}}}
	_, err := NewCrowdsale(caller, nil).IsWhitelisted(context.Background(), common.Address{})
	require.Error(t, err)
}

func TestCrowdsale_WritesRequireTransactor(t *testing.T) {
	c := NewCrowdsale(&fakeCaller{}, nil)
	_, err := c.AddToWhitelist(context.Background(), common.HexToAddress("0x01"))
	assert.ErrorIs(t, err, ErrReadOnly)

	tr := &fakeTransactor{}
	c = NewCrowdsale(&fakeCaller{}, tr)
	pending, err := c.AddToWhitelist(context.Background(), common.HexToAddress("0x01"))
	require.NoError(t, err)
	assert.Equal(t, MethodAddToWhitelist, pending.Method)
	assert.Equal(t, []string{MethodAddToWhitelist}, tr.sent)

	receipt, err := c.AwaitFinality(context.Background(), pending)
	require.NoError(t, err)
	assert.Equal(t, pending.Hash, receipt.TxHash)
}
