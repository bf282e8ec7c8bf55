package reconciliation

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xoralabs/ftt-backend-ico/internal/alert"
	"github.com/xoralabs/ftt-backend-ico/internal/domain/model"
	"github.com/xoralabs/ftt-backend-ico/internal/metrics"
)

// SweepResult aggregates one divergence sweep.
type SweepResult struct {
	Checked    int       `json:"checked"`
	Mismatched int       `json:"mismatched"`
	Repaired   int       `json:"repaired"`
	Retried    int       `json:"retried"`
	Errors     int       `json:"errors"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Sweep re-reads the on-chain flag for every replica row and every queued
// stale account, and rewrites diverging rows to match the chain.
func (s *Service) Sweep(ctx context.Context) (*SweepResult, error) {
	result := &SweepResult{StartedAt: s.nowFn()}

	rows, err := s.replica.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list whitelist replica: %w", err)
	}

	known := make(map[string]model.WhitelistRecord, len(rows))
	for _, r := range rows {
		known[r.Address] = r
	}
	stale := s.StaleAccounts()
	staleSet := make(map[string]bool, len(stale))
	accounts := make([]string, 0, len(known)+len(stale))
	for _, k := range stale {
		staleSet[k] = true
		accounts = append(accounts, k)
	}
	for k := range known {
		if !staleSet[k] {
			accounts = append(accounts, k)
		}
	}
	sort.Strings(accounts)

	for _, key := range accounts {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		result.Checked++

		onChain, err := s.crowdsale.IsWhitelisted(ctx, common.HexToAddress(key))
		if err != nil {
			result.Errors++
			s.logger.Warn("sweep on-chain read failed", "account", key, "error", err)
			continue
		}

		row, hasRow := known[key]
		retry := staleSet[key]
		if !retry && hasRow && row.IsWhitelistedOnChain == onChain {
			continue
		}
		if !retry {
			result.Mismatched++
			s.logger.Warn("whitelist replica diverged from chain",
				"account", key,
				"replica", row.IsWhitelistedOnChain,
				"on_chain", onChain,
			)
		}

		rec := &model.WhitelistRecord{
			Address:              key,
			IsWhitelistedOnChain: onChain,
			WhitelistedAt:        row.WhitelistedAt,
		}
		if onChain && (!hasRow || !row.IsWhitelistedOnChain) {
			rec.WhitelistedAt = s.nowFn().UTC()
		}
		if err := s.replica.Upsert(ctx, rec); err != nil {
			result.Errors++
			s.logger.Warn("sweep replica write failed", "account", key, "error", err)
			continue
		}
		if retry {
			result.Retried++
			s.clearStale(key)
		} else {
			result.Repaired++
		}
	}

	result.FinishedAt = s.nowFn()

	metrics.ReconciliationRunsTotal.Inc()
	if result.Mismatched > 0 {
		metrics.ReconciliationMismatchesTotal.Add(float64(result.Mismatched))
		s.sendAlert(ctx, alert.Alert{
			Type:    alert.AlertTypeReconcileMismatch,
			Subject: "whitelist",
			Title:   "Whitelist replica mismatch detected",
			Message: fmt.Sprintf("%d/%d accounts diverged from chain", result.Mismatched, result.Checked),
			Fields: map[string]string{
				"mismatched": strconv.Itoa(result.Mismatched),
				"repaired":   strconv.Itoa(result.Repaired),
				"errors":     strconv.Itoa(result.Errors),
			},
		})
	}
	if n := result.Repaired + result.Retried; n > 0 {
		metrics.ReconciliationRepairsTotal.Add(float64(n))
	}

	s.logger.Info("whitelist sweep completed",
		"checked", result.Checked,
		"mismatched", result.Mismatched,
		"repaired", result.Repaired,
		"retried", result.Retried,
		"errors", result.Errors,
	)
	return result, nil
}

// RunPeriodic runs Sweep at the given interval until ctx is cancelled.
// A non-positive interval disables the sweep.
func (s *Service) RunPeriodic(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		s.logger.Info("periodic whitelist sweep disabled")
		return nil
	}

	s.logger.Info("periodic whitelist sweep started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("periodic whitelist sweep stopping")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("periodic whitelist sweep failed", "error", err)
			}
		}
	}
}
