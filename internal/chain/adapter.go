package chain

//go:generate mockgen -source=adapter.go -destination=mocks/mock_adapter.go -package=mocks

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/xoralabs/ftt-backend-ico/internal/domain/event"
)

// Caller issues read-only contract calls. Results are the ABI-decoded outputs
// of method in declaration order.
type Caller interface {
	ReadCall(ctx context.Context, method string, args ...any) ([]any, error)
}

// Transactor submits state-changing contract calls signed by the owner key and
// waits for them to be mined.
type Transactor interface {
	WriteCall(ctx context.Context, method string, args ...any) (*PendingTx, error)
	AwaitFinality(ctx context.Context, tx *PendingTx) (*Receipt, error)
}

// PurchaseSource streams decoded TokensPurchased logs.
type PurchaseSource interface {
	// HeadBlock returns the latest block number known to the node.
	HeadBlock(ctx context.Context) (uint64, error)

	// SubscribePurchases delivers every purchase log from fromBlock (inclusive)
	// onwards into sink, first by backfill and then live. The subscription
	// reports a terminal failure on Err; callers must resubscribe.
	SubscribePurchases(ctx context.Context, fromBlock uint64, sink chan<- event.TokensPurchased) (Subscription, error)
}

// Subscription matches the go-ethereum event.Subscription contract.
type Subscription interface {
	Err() <-chan error
	Unsubscribe()
}

// CrowdsaleReader exposes the crowdsale's read-only views.
type CrowdsaleReader interface {
	IsWhitelisted(ctx context.Context, account common.Address) (bool, error)
	WeiRaised(ctx context.Context) (*big.Int, error)
	Cap(ctx context.Context) (*big.Int, error)
	SoftCap(ctx context.Context) (*big.Int, error)
}

// CrowdsaleWriter exposes owner-only crowdsale mutations.
type CrowdsaleWriter interface {
	AddToWhitelist(ctx context.Context, account common.Address) (*PendingTx, error)
	AwaitFinality(ctx context.Context, tx *PendingTx) (*Receipt, error)
}

// CrowdsaleClient is the full typed view of the crowdsale contract.
type CrowdsaleClient interface {
	CrowdsaleReader
	CrowdsaleWriter
}

// PendingTx is a transaction accepted by the node but not yet mined.
type PendingTx struct {
	Hash        common.Hash
	Nonce       uint64
	Method      string
	SubmittedAt time.Time
	Tx          *types.Transaction
}

// Receipt is the mined outcome of a PendingTx.
type Receipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
	Status      uint64
}
