package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xoralabs/ftt-backend-ico/internal/cache"
	"github.com/xoralabs/ftt-backend-ico/internal/chain"
	"github.com/xoralabs/ftt-backend-ico/internal/domain/model"
	"github.com/xoralabs/ftt-backend-ico/internal/metrics"
	"github.com/xoralabs/ftt-backend-ico/internal/store"
	"github.com/xoralabs/ftt-backend-ico/internal/tracing"
)

const (
	// LatestLimit is how many recent purchases the dashboard shows.
	LatestLimit = 5

	fieldWhitelistCount   = "whitelistCount"
	fieldTransactionCount = "transactionCount"
	fieldLatest           = "latestTransactions"
	fieldCap              = "cap"
	fieldSoftCap          = "softCap"
	fieldWeiRaised        = "weiRaised"
)

// AggregationError reports which stats field could not be produced.
type AggregationError struct {
	Field string
	Err   error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregate %s: %v", e.Field, e.Err)
}

func (e *AggregationError) Unwrap() error { return e.Err }

// TransactionSummary is the dashboard projection of a purchase.
type TransactionSummary struct {
	TxHash      string    `json:"txHash"`
	Address     string    `json:"address"`
	EthAmount   string    `json:"ethAmount"`
	TokenAmount string    `json:"tokenAmount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Stats is the admin dashboard snapshot.
type Stats struct {
	WhitelistCount     int64                `json:"whitelistCount"`
	TransactionCount   int64                `json:"transactionCount"`
	LatestTransactions []TransactionSummary `json:"latestTransactions"`
	HardcapEth         string               `json:"hardcapEth"`
	SoftcapEth         string               `json:"softcapEth"`
}

type Config struct {
	// Lenient turns off-chain read failures into zero values instead of errors.
	Lenient     bool
	CapCacheTTL time.Duration
}

// Aggregator combines ledger counts with on-chain crowdsale parameters.
type Aggregator struct {
	crowdsale chain.CrowdsaleReader
	purchases store.PurchaseRepository
	whitelist store.WhitelistRepository
	caps      *cache.Loader[string, *big.Int]
	cfg       Config
	logger    *slog.Logger
}

func NewAggregator(
	crowdsale chain.CrowdsaleReader,
	purchases store.PurchaseRepository,
	whitelist store.WhitelistRepository,
	cfg Config,
	logger *slog.Logger,
) *Aggregator {
	return &Aggregator{
		crowdsale: crowdsale,
		purchases: purchases,
		whitelist: whitelist,
		caps:      cache.NewLoader[string, *big.Int]("crowdsale_caps", 4, cfg.CapCacheTTL),
		cfg:       cfg,
		logger:    logger.With("component", "stats"),
	}
}

// ComputeStats reads all five fields concurrently. Any on-chain failure fails
// the whole call; off-chain failures do too unless the aggregator is lenient.
func (a *Aggregator) ComputeStats(ctx context.Context) (_ *Stats, err error) {
	ctx, span := tracing.Tracer("stats").Start(ctx, "stats.ComputeStats")
	defer func() {
		tracing.EndSpan(span, err)
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.StatsComputeTotal.WithLabelValues(status).Inc()
	}()

	out := &Stats{LatestTransactions: []TransactionSummary{}}
	var hardcap, softcap *big.Int

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := a.whitelist.Count(gctx)
		if err != nil {
			return a.degrade(fieldWhitelistCount, err)
		}
		out.WhitelistCount = n
		return nil
	})
	g.Go(func() error {
		n, err := a.purchases.Count(gctx)
		if err != nil {
			return a.degrade(fieldTransactionCount, err)
		}
		out.TransactionCount = n
		return nil
	})
	g.Go(func() error {
		rows, err := a.purchases.Latest(gctx, LatestLimit)
		if err != nil {
			return a.degrade(fieldLatest, err)
		}
		out.LatestTransactions = summarize(rows)
		return nil
	})
	g.Go(func() error {
		v, err := a.caps.Get(gctx, fieldCap, a.crowdsale.Cap)
		if err != nil {
			return &AggregationError{Field: fieldCap, Err: err}
		}
		hardcap = v
		return nil
	})
	g.Go(func() error {
		v, err := a.caps.Get(gctx, fieldSoftCap, a.softCap)
		if err != nil {
			return &AggregationError{Field: fieldSoftCap, Err: err}
		}
		softcap = v
		return nil
	})

	if err := g.Wait(); err != nil {
		a.logger.Warn("compute stats failed", "error", err)
		return nil, err
	}

	out.HardcapEth = model.FormatEther(hardcap)
	out.SoftcapEth = model.FormatEther(softcap)
	return out, nil
}

// softCap treats a contract without softCap() as a zero soft cap.
func (a *Aggregator) softCap(ctx context.Context) (*big.Int, error) {
	v, err := a.crowdsale.SoftCap(ctx)
	if errors.Is(err, chain.ErrMethodUnavailable) {
		return new(big.Int), nil
	}
	return v, err
}

func (a *Aggregator) degrade(field string, err error) error {
	if !a.cfg.Lenient {
		return &AggregationError{Field: field, Err: err}
	}
	metrics.StatsDegradedReadsTotal.WithLabelValues(field).Inc()
	a.logger.Warn("stats read failed, using default", "field", field, "error", err)
	return nil
}

// FundsRaised returns weiRaised() formatted in ETH.
func (a *Aggregator) FundsRaised(ctx context.Context) (string, error) {
	wei, err := a.crowdsale.WeiRaised(ctx)
	if err != nil {
		return "", &AggregationError{Field: fieldWeiRaised, Err: err}
	}
	return model.FormatEther(wei), nil
}

func summarize(rows []model.PurchaseEvent) []TransactionSummary {
	sorted := make([]model.PurchaseEvent, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > LatestLimit {
		sorted = sorted[:LatestLimit]
	}

	out := make([]TransactionSummary, 0, len(sorted))
	for _, p := range sorted {
		out = append(out, TransactionSummary{
			TxHash:      p.TxHash,
			Address:     p.UserAddress,
			EthAmount:   p.EthAmount,
			TokenAmount: p.TokenDisplay,
			CreatedAt:   p.CreatedAt,
		})
	}
	return out
}
