package evm

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// revertError mimics the JSON-RPC error a node returns for a reverted call.
type revertError struct {
	reason string
	data   string
}

func (e *revertError) Error() string          { return "execution reverted: " + e.reason }
func (e *revertError) ErrorCode() int         { return 3 }
func (e *revertError) ErrorData() interface{} { return e.data }

type fakeBackend struct {
	mu  sync.Mutex
	abi abi.ABI

	head         uint64
	chainID      *big.Int
	pendingNonce uint64
	nonceReads   int

	views      map[string][]any
	viewErrs   map[string]error
	emptyViews map[string]bool

	estimateErr    error
	sendErrs       []error
	sent           []*types.Transaction
	receiptStatus  uint64
	receiptMissing bool
	receipts       map[common.Hash]*types.Receipt
	replayErr      error

	logs        []types.Log
	filterCalls [][2]uint64
	filterErr   error
	headErr     error
	headCalls   int
}

func newFakeBackend() *fakeBackend {
	parsed, err := CrowdsaleABI()
	if err != nil {
		panic(err)
	}
	return &fakeBackend{
		abi:           parsed,
		head:          100,
		chainID:       big.NewInt(11155111),
		views:         make(map[string][]any),
		viewErrs:      make(map[string]error),
		emptyViews:    make(map[string]bool),
		receiptStatus: types.ReceiptStatusSuccessful,
		receipts:      make(map[common.Hash]*types.Receipt),
	}
}

func (f *fakeBackend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeBackend) PendingCodeAt(context.Context, common.Address) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeBackend) CallContract(_ context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if block != nil {
		return nil, f.replayErr
	}
	if len(msg.Data) < 4 {
		return nil, errors.New("short call data")
	}
	method, err := f.abi.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	if err := f.viewErrs[method.Name]; err != nil {
		return nil, err
	}
	if f.emptyViews[method.Name] {
		return []byte{}, nil
	}
	values, ok := f.views[method.Name]
	if !ok {
		return nil, fmt.Errorf("no fake output for %s", method.Name)
	}
	return method.Outputs.Pack(values...)
}

func (f *fakeBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &types.Header{Number: new(big.Int).SetUint64(f.head), BaseFee: big.NewInt(1_000_000_000)}, nil
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nonceReads++
	return f.pendingNonce, nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.estimateErr != nil {
		return 0, f.estimateErr
	}
	return 50_000, nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sendErrs) > 0 {
		err := f.sendErrs[0]
		f.sendErrs = f.sendErrs[1:]
		if err != nil {
			return err
		}
	}
	f.sent = append(f.sent, tx)
	f.pendingNonce = tx.Nonce() + 1
	if !f.receiptMissing {
		f.receipts[tx.Hash()] = &types.Receipt{
			TxHash:      tx.Hash(),
			Status:      f.receiptStatus,
			BlockNumber: new(big.Int).SetUint64(f.head),
			GasUsed:     40_000,
		}
	}
	return nil
}

func (f *fakeBackend) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.receipts[hash]; ok {
		return r, nil
	}
	return nil, ethereum.NotFound
}

func (f *fakeBackend) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	from, to := q.FromBlock.Uint64(), q.ToBlock.Uint64()
	f.filterCalls = append(f.filterCalls, [2]uint64{from, to})
	if f.filterErr != nil {
		return nil, f.filterErr
	}

	var out []types.Log
	for _, lg := range f.logs {
		if lg.BlockNumber >= from && lg.BlockNumber <= to {
			out = append(out, lg)
		}
	}
	return out, nil
}

func (f *fakeBackend) SubscribeFilterLogs(context.Context, ethereum.FilterQuery, chan<- types.Log) (ethereum.Subscription, error) {
	return nil, errors.New("notifications not supported")
}

func (f *fakeBackend) BlockNumber(context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.headCalls++
	if f.headErr != nil {
		return 0, f.headErr
	}
	return f.head, nil
}

func (f *fakeBackend) ChainID(context.Context) (*big.Int, error) {
	return f.chainID, nil
}

func (f *fakeBackend) sentNonces() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uint64, 0, len(f.sent))
	for _, tx := range f.sent {
		out = append(out, tx.Nonce())
	}
	return out
}
