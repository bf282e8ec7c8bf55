package evm

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	gethevent "github.com/ethereum/go-ethereum/event"

	"github.com/xoralabs/ftt-backend-ico/internal/chain"
	"github.com/xoralabs/ftt-backend-ico/internal/chain/ratelimit"
	"github.com/xoralabs/ftt-backend-ico/internal/domain/event"
)

var (
	errUnsubscribed       = errors.New("unsubscribed")
	errSubscriptionClosed = errors.New("log subscription closed by node")
)

// HeadBlock returns the latest block number.
func (c *Client) HeadBlock(ctx context.Context) (uint64, error) {
	if err := c.cfg.Limiter.Wait(ctx); err != nil {
		return 0, chain.NewRPCError("eth_blockNumber", err)
	}
	head, err := c.backend.BlockNumber(ctx)
	ratelimit.RecordRPCCall("eth_blockNumber", err)
	if err != nil {
		return 0, chain.NewRPCError("eth_blockNumber", err)
	}
	return head, nil
}

// SubscribePurchases backfills purchase logs from fromBlock to the current
// head in chunks, then follows new logs via eth_subscribe or polling.
// Removed (reorged) logs are skipped.
//
// The head read and, when streaming, eth_subscribe run before it returns, so
// an unreachable node fails here rather than on the subscription.
func (c *Client) SubscribePurchases(ctx context.Context, fromBlock uint64, sink chan<- event.TokensPurchased) (chain.Subscription, error) {
	var (
		live ethereum.Subscription
		logs chan types.Log
	)
	if c.cfg.Streaming {
		// Subscribe before reading the head so no block falls between the
		// backfill and the live feed.
		logs = make(chan types.Log, 128)
		var err error
		live, err = c.backend.SubscribeFilterLogs(ctx, c.purchaseQuery(nil, nil), logs)
		ratelimit.RecordRPCCall("eth_subscribe", err)
		if err != nil {
			return nil, chain.NewRPCError("eth_subscribe", err)
		}
	}

	head, err := c.HeadBlock(ctx)
	if err != nil {
		if live != nil {
			live.Unsubscribe()
		}
		return nil, err
	}

	return gethevent.NewSubscription(func(quit <-chan struct{}) error {
		if live != nil {
			defer live.Unsubscribe()
		}
		next, err := c.backfillRange(ctx, quit, fromBlock, head, sink)
		if err != nil {
			return err
		}
		if live != nil {
			return c.follow(ctx, quit, live, logs, sink)
		}
		return c.poll(ctx, quit, next, sink)
	}), nil
}

// backfill emits every purchase log in [from, head] and returns head+1.
func (c *Client) backfill(ctx context.Context, quit <-chan struct{}, from uint64, sink chan<- event.TokensPurchased) (uint64, error) {
	head, err := c.HeadBlock(ctx)
	if err != nil {
		return from, err
	}
	return c.backfillRange(ctx, quit, from, head, sink)
}

func (c *Client) backfillRange(ctx context.Context, quit <-chan struct{}, from, head uint64, sink chan<- event.TokensPurchased) (uint64, error) {
	if from > head {
		return from, nil
	}

	for start := from; ; {
		end := start + c.cfg.BackfillChunk - 1
		if end > head || end < start {
			end = head
		}
		logs, err := c.filterLogs(ctx, start, end)
		if err != nil {
			return start, err
		}
		for _, lg := range logs {
			if err := c.emit(ctx, quit, lg, sink); err != nil {
				return start, err
			}
		}
		if end == head {
			break
		}
		start = end + 1
	}
	return head + 1, nil
}

func (c *Client) poll(ctx context.Context, quit <-chan struct{}, next uint64, sink chan<- event.TokensPurchased) error {
	c.logger.Info("following purchases by polling", "from_block", next, "interval", c.cfg.PollInterval)
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			return errUnsubscribed
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := c.backfill(ctx, quit, next, sink)
			if err != nil {
				return err
			}
			next = n
		}
	}
}

func (c *Client) follow(ctx context.Context, quit <-chan struct{}, sub ethereum.Subscription, logs <-chan types.Log, sink chan<- event.TokensPurchased) error {
	c.logger.Info("following purchases by subscription")
	for {
		select {
		case lg := <-logs:
			if err := c.emit(ctx, quit, lg, sink); err != nil {
				return err
			}
		case err := <-sub.Err():
			if err == nil {
				err = errSubscriptionClosed
			}
			return chain.NewRPCError("eth_subscribe", err)
		case <-quit:
			return errUnsubscribed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) filterLogs(ctx context.Context, from, to uint64) ([]types.Log, error) {
	if err := c.cfg.Limiter.Wait(ctx); err != nil {
		return nil, chain.NewRPCError("eth_getLogs", err)
	}
	q := c.purchaseQuery(new(big.Int).SetUint64(from), new(big.Int).SetUint64(to))
	logs, err := c.backend.FilterLogs(ctx, q)
	ratelimit.RecordRPCCall("eth_getLogs", err)
	if err != nil {
		return nil, chain.NewRPCError("eth_getLogs", fmt.Errorf("blocks %d-%d: %w", from, to, err))
	}
	return logs, nil
}

func (c *Client) purchaseQuery(from, to *big.Int) ethereum.FilterQuery {
	return ethereum.FilterQuery{
		FromBlock: from,
		ToBlock:   to,
		Addresses: []common.Address{c.address},
		Topics:    [][]common.Hash{{c.purchaseTopic}},
	}
}

func (c *Client) emit(ctx context.Context, quit <-chan struct{}, lg types.Log, sink chan<- event.TokensPurchased) error {
	if lg.Removed {
		c.logger.Warn("skipping removed purchase log", "tx_hash", lg.TxHash.Hex(), "block", lg.BlockNumber)
		return nil
	}
	ev, err := c.decodePurchase(lg)
	if err != nil {
		c.logger.Warn("skipping undecodable purchase log", "tx_hash", lg.TxHash.Hex(), "error", err)
		return nil
	}
	select {
	case sink <- ev:
		return nil
	case <-quit:
		return errUnsubscribed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) decodePurchase(lg types.Log) (event.TokensPurchased, error) {
	if len(lg.Topics) != 3 || lg.Topics[0] != c.purchaseTopic {
		return event.TokensPurchased{}, fmt.Errorf("unexpected topics (%d)", len(lg.Topics))
	}
	values, err := c.abi.Unpack(EventTokensPurchased, lg.Data)
	if err != nil {
		return event.TokensPurchased{}, fmt.Errorf("unpack data: %w", err)
	}
	if len(values) != 2 {
		return event.TokensPurchased{}, fmt.Errorf("unexpected data field count %d", len(values))
	}
	value, ok := values[0].(*big.Int)
	if !ok {
		return event.TokensPurchased{}, fmt.Errorf("value: unexpected type %T", values[0])
	}
	amount, ok := values[1].(*big.Int)
	if !ok {
		return event.TokensPurchased{}, fmt.Errorf("amount: unexpected type %T", values[1])
	}

	return event.TokensPurchased{
		Purchaser:   common.BytesToAddress(lg.Topics[1].Bytes()),
		Beneficiary: common.BytesToAddress(lg.Topics[2].Bytes()),
		Value:       value,
		Amount:      amount,
		TxHash:      lg.TxHash,
		BlockNumber: lg.BlockNumber,
		LogIndex:    lg.Index,
	}, nil
}
