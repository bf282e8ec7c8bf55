package evm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/xoralabs/ftt-backend-ico/internal/alert"
	"github.com/xoralabs/ftt-backend-ico/internal/chain"
	"github.com/xoralabs/ftt-backend-ico/internal/domain/event"
	"github.com/xoralabs/ftt-backend-ico/internal/ingest"
	"github.com/xoralabs/ftt-backend-ico/internal/retry"
	storemocks "github.com/xoralabs/ftt-backend-ico/internal/store/mocks"
)

type alertLog struct {
	mu    sync.Mutex
	types []alert.AlertType
}

func (a *alertLog) Send(_ context.Context, al alert.Alert) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.types = append(a.types, al.Type)
	return nil
}

func TestSubscribePurchases_UnreachableNodeFailsUpFront(t *testing.T) {
	backend := newFakeBackend()
	backend.headErr = errors.New("dial tcp 127.0.0.1:8545: connect: connection refused")
	c := newTestClient(t, backend, false)

	sub, err := c.SubscribePurchases(context.Background(), 1, make(chan event.TokensPurchased, 1))
	require.Error(t, err)
	assert.Nil(t, sub)

	var rpcErr *chain.RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, "eth_blockNumber", rpcErr.Op)
	assert.True(t, retry.Classify(err).IsTransient())
}

func TestIngestor_BacksOffWhileNodeIsDown(t *testing.T) {
	refused := errors.New("dial tcp 127.0.0.1:8545: connect: connection refused")
	tests := []struct {
		name  string
		setup func(b *fakeBackend)
	}{
		{name: "head read fails", setup: func(b *fakeBackend) { b.headErr = refused }},
		{name: "log query fails after subscribing", setup: func(b *fakeBackend) { b.filterErr = refused }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFakeBackend()
			tt.setup(backend)
			c := newTestClient(t, backend, false)

			ctrl := gomock.NewController(t)
			repo := storemocks.NewMockPurchaseRepository(ctrl)
			repo.EXPECT().MaxBlockNumber(gomock.Any()).Return(uint64(50), true, nil).AnyTimes()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			var delays []time.Duration
			alerts := &alertLog{}

			ing := ingest.New(c, repo, ingest.Config{
				Backoff:              retry.Backoff{Initial: time.Second, Max: time.Minute},
				DisconnectAlertAfter: 5 * time.Minute,
				StableAfter:          time.Hour,
			}, testLogger(),
				ingest.WithAlerter(alerts),
				ingest.WithClock(func() time.Time { return now }),
				ingest.WithSleepFunc(func(ctx context.Context, d time.Duration) error {
					delays = append(delays, d)
					now = now.Add(time.Minute)
					if len(delays) == 8 {
						cancel()
					}
					return ctx.Err()
				}),
			)
			require.NoError(t, ing.Run(ctx))

			assert.Equal(t, []time.Duration{
				time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second,
				16 * time.Second, 32 * time.Second, time.Minute, time.Minute,
			}, delays)
			assert.Equal(t, []alert.AlertType{alert.AlertTypeSubscriptionDown}, alerts.types)
			assert.Equal(t, 8, ing.Health().ConsecutiveFailures)
		})
	}
}
