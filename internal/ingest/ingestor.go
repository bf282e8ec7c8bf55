package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xoralabs/ftt-backend-ico/internal/alert"
	"github.com/xoralabs/ftt-backend-ico/internal/chain"
	"github.com/xoralabs/ftt-backend-ico/internal/domain/event"
	"github.com/xoralabs/ftt-backend-ico/internal/domain/model"
	"github.com/xoralabs/ftt-backend-ico/internal/metrics"
	"github.com/xoralabs/ftt-backend-ico/internal/retry"
	"github.com/xoralabs/ftt-backend-ico/internal/store"
	redisstream "github.com/xoralabs/ftt-backend-ico/internal/store/redis"
)

const (
	defaultBufferSize           = 64
	defaultTokenDecimals        = 18
	defaultDisconnectAlertAfter = 5 * time.Minute
	defaultStableAfter          = 30 * time.Second
)

var errSubscriptionClosed = retry.Transient(errors.New("purchase subscription closed"))

type Config struct {
	// StartBlock is where an empty ledger starts. Zero means the current head.
	StartBlock           uint64
	BufferSize           int
	Backoff              retry.Backoff
	TokenDecimals        int32
	StreamName           string
	DisconnectAlertAfter time.Duration
	// StableAfter is the uptime after which a subscription that has not
	// delivered anything still counts as healthy.
	StableAfter time.Duration
}

// Ingestor mirrors TokensPurchased logs into the purchase ledger. It owns one
// subscription at a time and resubscribes from the ledger's high-water mark
// whenever the subscription drops.
type Ingestor struct {
	source    chain.PurchaseSource
	repo      store.PurchaseRepository
	transport redisstream.MessageTransport
	alerter   alert.Alerter
	cfg       Config
	logger    *slog.Logger
	health    *Health
	sleepFn   func(context.Context, time.Duration) error
	nowFn     func() time.Time

	deliveries atomic.Uint64
	delivered  chan struct{}
}

type Option func(*Ingestor)

// WithTransport publishes every newly recorded purchase to cfg.StreamName.
func WithTransport(t redisstream.MessageTransport) Option {
	return func(i *Ingestor) {
		i.transport = t
	}
}

func WithAlerter(a alert.Alerter) Option {
	return func(i *Ingestor) {
		i.alerter = a
	}
}

func WithSleepFunc(fn func(context.Context, time.Duration) error) Option {
	return func(i *Ingestor) {
		i.sleepFn = fn
	}
}

func WithClock(nowFn func() time.Time) Option {
	return func(i *Ingestor) {
		i.nowFn = nowFn
	}
}

func New(source chain.PurchaseSource, repo store.PurchaseRepository, cfg Config, logger *slog.Logger, opts ...Option) *Ingestor {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	if cfg.TokenDecimals <= 0 {
		cfg.TokenDecimals = defaultTokenDecimals
	}
	if cfg.DisconnectAlertAfter <= 0 {
		cfg.DisconnectAlertAfter = defaultDisconnectAlertAfter
	}
	if cfg.StableAfter <= 0 {
		cfg.StableAfter = defaultStableAfter
	}
	i := &Ingestor{
		source:  source,
		repo:    repo,
		alerter: &alert.NoopAlerter{},
		cfg:     cfg,
		logger:  logger.With("component", "ingestor"),
		sleepFn:   sleepContext,
		nowFn:     time.Now,
		delivered: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.health = NewHealth(i.nowFn)
	return i
}

func (i *Ingestor) State() State {
	return i.health.State()
}

func (i *Ingestor) Health() HealthSnapshot {
	return i.health.Snapshot()
}

// Run subscribes and persists until ctx is cancelled. Deliveries reach the
// persister through a buffered channel of cfg.BufferSize.
func (i *Ingestor) Run(ctx context.Context) error {
	sink := make(chan event.TokensPurchased, i.cfg.BufferSize)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(sink)
		return i.subscribeLoop(gctx, sink)
	})
	g.Go(func() error {
		return i.persistLoop(gctx, sink)
	})

	err := g.Wait()
	i.health.SetState(StateDisconnected)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (i *Ingestor) subscribeLoop(ctx context.Context, sink chan<- event.TokensPurchased) error {
	var (
		attempt     int
		downSince   time.Time
		downAlerted bool
	)

	for {
		if ctx.Err() != nil {
			return nil
		}

		i.health.SetState(StateConnecting)
		baseline := i.deliveries.Load()
		from, err := i.resumeBlock(ctx)
		var sub chain.Subscription
		if err == nil {
			sub, err = i.source.SubscribePurchases(ctx, from, sink)
		}
		if err == nil {
			i.health.SetState(StateSubscribed)
			i.logger.Info("purchase subscription established", "from_block", from)

			// Backoff and outage tracking reset only once the subscription
			// proves healthy; one that fails straight away keeps backing off.
			err = i.await(ctx, sub, baseline, func() {
				attempt = 0
				i.health.MarkHealthy()
				if downAlerted {
					i.sendAlert(ctx, alert.Alert{
						Type:    alert.AlertTypeSubscriptionRecovered,
						Subject: "ingestor",
						Title:   "Purchase subscription recovered",
						Message: fmt.Sprintf("resubscribed from block %d after %s", from, i.nowFn().Sub(downSince).Round(time.Second)),
					})
				}
				downSince, downAlerted = time.Time{}, false
			})
		}

		i.health.SetState(StateDisconnected)
		if ctx.Err() != nil {
			return nil
		}

		if downSince.IsZero() {
			downSince = i.nowFn()
		}
		failures := i.health.RecordFailure(err)

		decision := retry.Classify(err)
		delay := i.cfg.Backoff.Delay(attempt)
		if !decision.IsTransient() {
			// Terminal errors keep retrying at the ceiling delay.
			delay = i.cfg.Backoff.Ceiling()
		}
		attempt++
		metrics.IngestReconnectsTotal.WithLabelValues(string(decision.Class)).Inc()
		i.logger.Warn("purchase subscription lost, reconnecting",
			"error", err,
			"class", decision.Class,
			"reason", decision.Reason,
			"attempt", attempt,
			"consecutive_failures", failures,
			"delay", delay,
		)

		if !downAlerted && i.nowFn().Sub(downSince) >= i.cfg.DisconnectAlertAfter {
			downAlerted = true
			i.sendAlert(ctx, alert.Alert{
				Type:    alert.AlertTypeSubscriptionDown,
				Subject: "ingestor",
				Title:   "Purchase subscription down",
				Message: fmt.Sprintf("disconnected since %s", downSince.UTC().Format(time.RFC3339)),
				Fields: map[string]string{
					"consecutive_failures": strconv.Itoa(failures),
					"last_error":           errString(err),
				},
			})
		}

		if err := i.sleepFn(ctx, delay); err != nil {
			return nil
		}
	}
}

// await blocks until the subscription fails or ctx ends, and always
// unsubscribes before returning. onHealthy runs at most once: when a purchase
// arrives after baseline or the subscription has been up for StableAfter.
func (i *Ingestor) await(ctx context.Context, sub chain.Subscription, baseline uint64, onHealthy func()) error {
	defer sub.Unsubscribe()

	stable := time.NewTimer(i.cfg.StableAfter)
	defer stable.Stop()

	healthy := false
	markHealthy := func() {
		if !healthy {
			healthy = true
			onHealthy()
		}
	}
	delivered := i.delivered
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			if i.deliveries.Load() > baseline {
				markHealthy()
			}
			if err == nil {
				return errSubscriptionClosed
			}
			return err
		case <-delivered:
			if i.deliveries.Load() > baseline {
				markHealthy()
				delivered = nil
			}
		case <-stable.C:
			markHealthy()
		}
	}
}

// resumeBlock is inclusive of the highest recorded block so a partially
// persisted block replays; the tx hash key absorbs the duplicates.
func (i *Ingestor) resumeBlock(ctx context.Context) (uint64, error) {
	maxBlock, ok, err := i.repo.MaxBlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("load resume block: %w", err)
	}
	if ok {
		return maxBlock, nil
	}
	if i.cfg.StartBlock > 0 {
		return i.cfg.StartBlock, nil
	}
	head, err := i.source.HeadBlock(ctx)
	if err != nil {
		return 0, fmt.Errorf("load head block: %w", err)
	}
	return head, nil
}

func (i *Ingestor) persistLoop(ctx context.Context, sink <-chan event.TokensPurchased) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sink:
			if !ok {
				return nil
			}
			i.noteDelivery()
			i.persist(ctx, ev)
		}
	}
}

// persist never returns an error: a failed insert is logged and counted and
// the loop moves on to the next delivery.
func (i *Ingestor) persist(ctx context.Context, ev event.TokensPurchased) {
	rec := Normalize(ev, i.cfg.TokenDecimals, i.nowFn())

	start := time.Now()
	inserted, err := i.repo.InsertIfAbsent(ctx, rec)
	metrics.IngestPersistLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.IngestEventsTotal.WithLabelValues("persist_error").Inc()
		i.logger.Error("persist purchase failed",
			"tx_hash", rec.TxHash,
			"block_number", rec.BlockNumber,
			"error", err,
		)
		return
	}
	if !inserted {
		metrics.IngestEventsTotal.WithLabelValues("duplicate").Inc()
		i.logger.Debug("duplicate purchase skipped", "tx_hash", rec.TxHash)
		return
	}

	metrics.IngestEventsTotal.WithLabelValues("inserted").Inc()
	i.health.RecordEvent(ev.BlockNumber)
	i.logger.Info("purchase recorded",
		"tx_hash", rec.TxHash,
		"purchaser", rec.UserAddress,
		"eth_amount", rec.EthAmount,
		"token_amount", rec.TokenDisplay,
		"block_number", rec.BlockNumber,
	)
	i.publish(ctx, rec)
}

func (i *Ingestor) noteDelivery() {
	i.deliveries.Add(1)
	select {
	case i.delivered <- struct{}{}:
	default:
	}
}

func (i *Ingestor) publish(ctx context.Context, rec *model.PurchaseEvent) {
	if i.transport == nil || i.cfg.StreamName == "" {
		return
	}
	_, err := i.transport.Publish(ctx, i.cfg.StreamName, map[string]any{
		"tx_hash":             rec.TxHash,
		"user_address":        rec.UserAddress,
		"beneficiary_address": rec.BeneficiaryAddress,
		"wei_amount":          rec.WeiAmount,
		"token_amount":        rec.TokenAmount,
		"eth_amount":          rec.EthAmount,
		"token_display":       rec.TokenDisplay,
		"block_number":        rec.BlockNumber,
		"log_index":           rec.LogIndex,
	})
	if err != nil {
		metrics.StreamPublishTotal.WithLabelValues("error").Inc()
		i.logger.Warn("publish purchase failed", "tx_hash", rec.TxHash, "stream", i.cfg.StreamName, "error", err)
		return
	}
	metrics.StreamPublishTotal.WithLabelValues("ok").Inc()
}

func (i *Ingestor) sendAlert(ctx context.Context, a alert.Alert) {
	if err := i.alerter.Send(ctx, a); err != nil {
		i.logger.Warn("send alert failed", "alert_type", a.Type, "error", err)
	}
}

// Normalize projects a decoded log onto a ledger row. Addresses and the hash
// are lower-cased hex; amounts keep full precision.
func Normalize(ev event.TokensPurchased, tokenDecimals int32, observedAt time.Time) *model.PurchaseEvent {
	wei := "0"
	if ev.Value != nil {
		wei = ev.Value.String()
	}
	tokens := "0"
	if ev.Amount != nil {
		tokens = ev.Amount.String()
	}
	return &model.PurchaseEvent{
		TxHash:             strings.ToLower(ev.TxHash.Hex()),
		UserAddress:        strings.ToLower(ev.Purchaser.Hex()),
		BeneficiaryAddress: strings.ToLower(ev.Beneficiary.Hex()),
		WeiAmount:          wei,
		TokenAmount:        tokens,
		EthAmount:          model.FormatEther(ev.Value),
		TokenDisplay:       model.FormatUnits(ev.Amount, tokenDecimals),
		BlockNumber:        int64(ev.BlockNumber),
		LogIndex:           int32(ev.LogIndex),
		CreatedAt:          observedAt.UTC(),
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
