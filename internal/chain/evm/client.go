package evm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/xoralabs/ftt-backend-ico/internal/chain"
	"github.com/xoralabs/ftt-backend-ico/internal/chain/circuitbreaker"
	"github.com/xoralabs/ftt-backend-ico/internal/chain/ratelimit"
)

const (
	defaultFinalityTimeout = 180 * time.Second
	defaultCallTimeout     = 30 * time.Second
	defaultBackfillChunk   = 2000
	defaultPollInterval    = 4 * time.Second
)

// Backend is the subset of *ethclient.Client the crowdsale client needs.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	BlockNumber(ctx context.Context) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

type Config struct {
	RPCURL          string
	ContractAddress string
	// PrivateKey is the hex owner key. Empty means read-only.
	PrivateKey      string
	ChainID         int64
	FinalityTimeout time.Duration
	CallTimeout     time.Duration
	BackfillChunk   uint64
	PollInterval    time.Duration
	// Streaming selects eth_subscribe over polling for live logs.
	Streaming bool
	Limiter   *ratelimit.Limiter
	// Breaker guards view calls. Nil disables it.
	Breaker *circuitbreaker.Breaker
}

// Client talks to the crowdsale contract over a go-ethereum backend. Writes
// are serialized so nonces are assigned strictly in submission order.
type Client struct {
	backend       Backend
	closer        func()
	abi           abi.ABI
	address       common.Address
	contract      *bind.BoundContract
	signer        *bind.TransactOpts
	purchaseTopic common.Hash
	cfg           Config
	logger        *slog.Logger
	nowFn         func() time.Time

	nonceMu sync.Mutex
	nonce   *uint64
}

var (
	_ chain.Caller         = (*Client)(nil)
	_ chain.Transactor     = (*Client)(nil)
	_ chain.PurchaseSource = (*Client)(nil)
)

// Dial connects to cfg.RPCURL and builds a Client on top of it.
func Dial(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	rpcClient, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	if !cfg.Streaming {
		cfg.Streaming = IsStreamingURL(cfg.RPCURL)
	}
	c, err := New(ctx, rpcClient, cfg, logger)
	if err != nil {
		rpcClient.Close()
		return nil, err
	}
	c.closer = rpcClient.Close
	return c, nil
}

// New builds a Client over an existing backend.
func New(ctx context.Context, backend Backend, cfg Config, logger *slog.Logger) (*Client, error) {
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", cfg.ContractAddress)
	}
	parsed, err := CrowdsaleABI()
	if err != nil {
		return nil, err
	}
	ev, ok := parsed.Events[EventTokensPurchased]
	if !ok {
		return nil, fmt.Errorf("abi has no %s event", EventTokensPurchased)
	}

	if cfg.FinalityTimeout <= 0 {
		cfg.FinalityTimeout = defaultFinalityTimeout
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	if cfg.BackfillChunk == 0 {
		cfg.BackfillChunk = defaultBackfillChunk
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	address := common.HexToAddress(cfg.ContractAddress)
	c := &Client{
		backend:       backend,
		abi:           parsed,
		address:       address,
		contract:      bind.NewBoundContract(address, parsed, backend, backend, backend),
		purchaseTopic: ev.ID,
		cfg:           cfg,
		logger:        logger.With("component", "chain_client", "contract", address.Hex()),
		nowFn:         time.Now,
	}

	if cfg.PrivateKey != "" {
		signer, err := newSigner(ctx, backend, cfg)
		if err != nil {
			return nil, err
		}
		c.signer = signer
		c.logger.Info("owner signer configured", "signer", signer.From.Hex())
	}
	return c, nil
}

func newSigner(ctx context.Context, backend Backend, cfg Config) (*bind.TransactOpts, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(cfg.PrivateKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse owner private key: %w", err)
	}

	var chainID *big.Int
	if cfg.ChainID > 0 {
		chainID = big.NewInt(cfg.ChainID)
	} else {
		chainID, err = backend.ChainID(ctx)
		if err != nil {
			return nil, chain.NewRPCError("eth_chainId", err)
		}
	}

	signer, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("build transactor: %w", err)
	}
	return signer, nil
}

// IsStreamingURL reports whether url supports eth_subscribe.
func IsStreamingURL(url string) bool {
	lower := strings.ToLower(url)
	return strings.HasPrefix(lower, "ws://") || strings.HasPrefix(lower, "wss://") || strings.HasSuffix(lower, ".ipc")
}

// ContractAddress returns the crowdsale address.
func (c *Client) ContractAddress() common.Address { return c.address }

// CanSign reports whether an owner key is configured.
func (c *Client) CanSign() bool { return c.signer != nil }

func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// ReadCall runs a view method against the latest block.
func (c *Client) ReadCall(ctx context.Context, method string, args ...any) ([]any, error) {
	input, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	if err := c.cfg.Breaker.Allow(); err != nil {
		return nil, chain.NewRPCError(method, err)
	}
	if err := c.cfg.Limiter.Wait(ctx); err != nil {
		return nil, chain.NewRPCError(method, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	output, err := c.backend.CallContract(callCtx, ethereum.CallMsg{To: &c.address, Data: input}, nil)
	ratelimit.RecordRPCCall(method, err)
	c.recordBreaker(ctx, err)
	if err != nil {
		return nil, chain.NewRPCError(method, err)
	}
	if len(output) == 0 {
		return nil, fmt.Errorf("%w: %s", chain.ErrMethodUnavailable, method)
	}

	out, err := c.abi.Unpack(method, output)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return out, nil
}

// recordBreaker counts node failures only. Reverts are answers from a healthy
// node, and a cancelled caller says nothing about the node.
func (c *Client) recordBreaker(ctx context.Context, err error) {
	switch {
	case err == nil, chain.IsExecutionReverted(err):
		c.cfg.Breaker.RecordSuccess()
	case ctx.Err() != nil:
	default:
		c.cfg.Breaker.RecordFailure()
	}
}

// WriteCall signs and submits method with the owner key. Only one write is in
// flight between nonce assignment and node acceptance at any time.
func (c *Client) WriteCall(ctx context.Context, method string, args ...any) (*chain.PendingTx, error) {
	if c.signer == nil {
		return nil, chain.ErrReadOnly
	}
	input, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	c.nonceMu.Lock()
	defer c.nonceMu.Unlock()

	if err := c.cfg.Limiter.Wait(ctx); err != nil {
		return nil, chain.NewRPCError(method, err)
	}

	nonce, err := c.nextNonce(ctx)
	if err != nil {
		return nil, chain.NewRPCError("eth_getTransactionCount", err)
	}

	gas, err := c.backend.EstimateGas(ctx, ethereum.CallMsg{
		From: c.signer.From,
		To:   &c.address,
		Data: input,
	})
	ratelimit.RecordRPCCall("eth_estimateGas", err)
	if err != nil {
		if chain.IsExecutionReverted(err) {
			return nil, &chain.TxRevertedError{Method: method, Reason: decodeRevert(err)}
		}
		return nil, chain.NewRPCError("eth_estimateGas", err)
	}

	opts := &bind.TransactOpts{
		From:     c.signer.From,
		Signer:   c.signer.Signer,
		Nonce:    new(big.Int).SetUint64(nonce),
		GasLimit: gas,
		Context:  ctx,
	}
	tx, err := c.contract.Transact(opts, method, args...)
	ratelimit.RecordRPCCall("eth_sendRawTransaction", err)
	if err != nil {
		// Re-read the pending nonce from the node on the next write.
		c.nonce = nil
		if chain.IsExecutionReverted(err) {
			return nil, &chain.TxRevertedError{Method: method, Reason: decodeRevert(err)}
		}
		return nil, chain.NewRPCError(method, err)
	}

	next := nonce + 1
	c.nonce = &next

	c.logger.Info("transaction submitted", "method", method, "tx_hash", tx.Hash().Hex(), "nonce", nonce)
	return &chain.PendingTx{
		Hash:        tx.Hash(),
		Nonce:       nonce,
		Method:      method,
		SubmittedAt: c.nowFn(),
		Tx:          tx,
	}, nil
}

func (c *Client) nextNonce(ctx context.Context) (uint64, error) {
	if c.nonce != nil {
		return *c.nonce, nil
	}
	n, err := c.backend.PendingNonceAt(ctx, c.signer.From)
	ratelimit.RecordRPCCall("eth_getTransactionCount", err)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// AwaitFinality waits for tx to be mined, bounded by the configured finality
// timeout. A mined failure is reported as *chain.TxRevertedError alongside
// the receipt.
func (c *Client) AwaitFinality(ctx context.Context, pending *chain.PendingTx) (*chain.Receipt, error) {
	if pending == nil || pending.Tx == nil {
		return nil, errors.New("await finality: no transaction")
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.cfg.FinalityTimeout)
	defer cancel()

	mined, err := bind.WaitMined(waitCtx, c.backend, pending.Tx)
	ratelimit.RecordRPCCall("eth_getTransactionReceipt", err)
	if err != nil {
		return nil, chain.NewRPCError("await_finality", err)
	}

	receipt := &chain.Receipt{
		TxHash:  mined.TxHash,
		GasUsed: mined.GasUsed,
		Status:  mined.Status,
	}
	if mined.BlockNumber != nil {
		receipt.BlockNumber = mined.BlockNumber.Uint64()
	}

	if mined.Status != types.ReceiptStatusSuccessful {
		reason := c.replayRevertReason(ctx, pending.Tx, mined.BlockNumber)
		c.logger.Warn("transaction reverted",
			"method", pending.Method,
			"tx_hash", pending.Hash.Hex(),
			"block", receipt.BlockNumber,
			"reason", reason,
		)
		return receipt, &chain.TxRevertedError{TxHash: pending.Hash, Method: pending.Method, Reason: reason}
	}
	return receipt, nil
}

// replayRevertReason re-executes a failed transaction as a call at the block
// it was mined in to recover the revert string.
func (c *Client) replayRevertReason(ctx context.Context, tx *types.Transaction, block *big.Int) string {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	var from common.Address
	if c.signer != nil {
		from = c.signer.From
	}
	_, err := c.backend.CallContract(callCtx, ethereum.CallMsg{
		From:  from,
		To:    tx.To(),
		Gas:   tx.Gas(),
		Value: tx.Value(),
		Data:  tx.Data(),
	}, block)
	if err == nil {
		return ""
	}
	return decodeRevert(err)
}

func decodeRevert(err error) string {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if hexData, ok := dataErr.ErrorData().(string); ok {
			if data, decErr := hexutil.Decode(hexData); decErr == nil {
				if reason, unpackErr := abi.UnpackRevert(data); unpackErr == nil {
					return reason
				}
			}
		}
	}
	msg := err.Error()
	if _, reason, ok := strings.Cut(msg, "execution reverted: "); ok {
		return reason
	}
	return msg
}
