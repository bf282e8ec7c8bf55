package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/xoralabs/ftt-backend-ico/internal/alert"
	"github.com/xoralabs/ftt-backend-ico/internal/chain"
	"github.com/xoralabs/ftt-backend-ico/internal/domain/model"
	"github.com/xoralabs/ftt-backend-ico/internal/metrics"
	"github.com/xoralabs/ftt-backend-ico/internal/store"
	"github.com/xoralabs/ftt-backend-ico/internal/tracing"
)

// EnsureResult is the outcome of EnsureWhitelisted. TxHash is set only when
// this call (or a coalesced concurrent one) submitted addToWhitelist.
type EnsureResult struct {
	Account            string `json:"account"`
	AlreadyWhitelisted bool   `json:"alreadyWhitelisted"`
	TxHash             string `json:"txHash,omitempty"`
	// ReplicaStale is set when the chain accepted the account but the
	// replica write failed. The account is retried by the next Sweep.
	ReplicaStale bool `json:"replicaStale,omitempty"`
}

// Service keeps the whitelist replica in step with the crowdsale contract.
// The contract is the source of truth; the replica is a last-write-wins cache.
type Service struct {
	crowdsale chain.CrowdsaleClient
	replica   store.WhitelistRepository
	alerter   alert.Alerter
	logger    *slog.Logger
	nowFn     func() time.Time

	group singleflight.Group

	mu    sync.Mutex
	stale map[string]time.Time // account -> when the replica fell behind the chain
}

// NewService creates a new whitelist reconciliation service.
func NewService(
	crowdsale chain.CrowdsaleClient,
	replica store.WhitelistRepository,
	alerter alert.Alerter,
	logger *slog.Logger,
) *Service {
	if alerter == nil {
		alerter = &alert.NoopAlerter{}
	}
	return &Service{
		crowdsale: crowdsale,
		replica:   replica,
		alerter:   alerter,
		logger:    logger.With("component", "reconciliation"),
		nowFn:     time.Now,
		stale:     make(map[string]time.Time),
	}
}

// EnsureWhitelisted makes account whitelisted on chain, submitting at most one
// transaction per account at a time. Concurrent calls for the same account
// share the in-flight result.
//
// The shared work runs detached from ctx. A cancelled caller returns early
// with ctx.Err() while a submitted transaction is still awaited to finality.
func (s *Service) EnsureWhitelisted(ctx context.Context, account string) (*EnsureResult, error) {
	key, err := model.NormalizeAddress(account)
	if err != nil {
		metrics.WhitelistRequestsTotal.WithLabelValues("invalid_address").Inc()
		return nil, err
	}

	ctx, span := tracing.Tracer("reconciliation").Start(ctx, "reconciliation.EnsureWhitelisted",
		trace.WithAttributes(attribute.String("account", key)),
	)

	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		return s.ensure(detached, key)
	})

	select {
	case <-ctx.Done():
		tracing.EndSpan(span, ctx.Err())
		return nil, ctx.Err()
	case res := <-ch:
		span.SetAttributes(attribute.Bool("shared", res.Shared))
		tracing.EndSpan(span, res.Err)
		if res.Err != nil {
			return nil, res.Err
		}
		out := *res.Val.(*EnsureResult)
		return &out, nil
	}
}

func (s *Service) ensure(ctx context.Context, key string) (*EnsureResult, error) {
	addr := common.HexToAddress(key)

	onChain, err := s.crowdsale.IsWhitelisted(ctx, addr)
	if err != nil {
		metrics.WhitelistRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("check whitelist status: %w", err)
	}
	if onChain {
		metrics.WhitelistRequestsTotal.WithLabelValues("already_whitelisted").Inc()
		s.refreshReplica(ctx, key)
		return &EnsureResult{Account: key, AlreadyWhitelisted: true}, nil
	}

	pending, err := s.crowdsale.AddToWhitelist(ctx, addr)
	if err != nil {
		metrics.WhitelistRequestsTotal.WithLabelValues(failureOutcome(err)).Inc()
		s.logger.Warn("addToWhitelist rejected", "account", key, "error", err)
		return nil, fmt.Errorf("submit addToWhitelist: %w", err)
	}
	s.logger.Info("whitelist transaction submitted",
		"account", key,
		"tx_hash", pending.Hash.Hex(),
		"nonce", pending.Nonce,
	)

	receipt, err := s.crowdsale.AwaitFinality(ctx, pending)
	metrics.WhitelistTxDuration.Observe(s.nowFn().Sub(pending.SubmittedAt).Seconds())
	if err != nil {
		outcome := failureOutcome(err)
		metrics.WhitelistRequestsTotal.WithLabelValues(outcome).Inc()
		// Only a revert is final. Otherwise the broadcast transaction may
		// still be mined, so the sweep re-reads the account.
		pendingOnChain := outcome != "reverted"
		if pendingOnChain {
			s.markStale(key, s.nowFn().UTC())
		}
		s.logger.Warn("whitelist transaction failed",
			"account", key,
			"tx_hash", pending.Hash.Hex(),
			"queued_for_sweep", pendingOnChain,
			"error", err,
		)
		return nil, fmt.Errorf("await addToWhitelist %s: %w", pending.Hash.Hex(), err)
	}

	result := &EnsureResult{Account: key, TxHash: receipt.TxHash.Hex()}
	now := s.nowFn().UTC()
	if err := s.replica.Upsert(ctx, &model.WhitelistRecord{
		Address:              key,
		IsWhitelistedOnChain: true,
		WhitelistedAt:        now,
	}); err != nil {
		result.ReplicaStale = true
		s.markStale(key, now)
		metrics.WhitelistReplicaStaleTotal.Inc()
		s.logger.Error("whitelist replica update failed",
			"account", key,
			"tx_hash", result.TxHash,
			"replica_stale", true,
			"error", err,
		)
		s.sendAlert(ctx, alert.Alert{
			Type:    alert.AlertTypeReplicaStale,
			Subject: key,
			Title:   "Whitelist replica is stale",
			Message: "account was whitelisted on chain but the replica write failed",
			Fields: map[string]string{
				"account": key,
				"tx_hash": result.TxHash,
				"error":   err.Error(),
			},
		})
	}

	metrics.WhitelistRequestsTotal.WithLabelValues("whitelisted").Inc()
	s.logger.Info("account whitelisted",
		"account", key,
		"tx_hash", result.TxHash,
		"block_number", receipt.BlockNumber,
		"gas_used", receipt.GasUsed,
	)
	return result, nil
}

// refreshReplica records an account the chain already whitelisted. Rows that
// already agree keep their original timestamp. Failures are logged only.
func (s *Service) refreshReplica(ctx context.Context, key string) {
	rec, err := s.replica.Get(ctx, key)
	if err != nil {
		s.logger.Warn("read whitelist replica failed", "account", key, "error", err)
		return
	}
	if rec != nil && rec.IsWhitelistedOnChain {
		return
	}
	if err := s.replica.Upsert(ctx, &model.WhitelistRecord{
		Address:              key,
		IsWhitelistedOnChain: true,
		WhitelistedAt:        s.nowFn().UTC(),
	}); err != nil {
		s.logger.Warn("refresh whitelist replica failed", "account", key, "error", err)
	}
}

// CheckStatus reads the on-chain whitelist flag for account.
func (s *Service) CheckStatus(ctx context.Context, account string) (bool, error) {
	addr, err := model.ParseAddress(account)
	if err != nil {
		return false, err
	}
	ok, err := s.crowdsale.IsWhitelisted(ctx, addr)
	if err != nil {
		return false, fmt.Errorf("check whitelist status: %w", err)
	}
	return ok, nil
}

// StaleAccounts lists accounts the replica may lag the chain on: a failed
// replica write, or a transaction whose finality was not confirmed. They are
// cleared by the next successful Sweep.
func (s *Service) StaleAccounts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.stale))
	for k := range s.stale {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *Service) markStale(key string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stale[key]; !ok {
		s.stale[key] = at
	}
}

func (s *Service) clearStale(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stale, key)
}

func (s *Service) sendAlert(ctx context.Context, a alert.Alert) {
	if err := s.alerter.Send(ctx, a); err != nil {
		s.logger.Warn("send alert failed", "alert_type", a.Type, "error", err)
	}
}

func failureOutcome(err error) string {
	var revertErr *chain.TxRevertedError
	if errors.As(err, &revertErr) {
		return "reverted"
	}
	var rpcErr *chain.RPCError
	if errors.As(err, &rpcErr) && rpcErr.Timeout {
		return "timeout"
	}
	return "error"
}
