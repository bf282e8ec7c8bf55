package ingest

import (
	"sync"
	"time"

	"github.com/xoralabs/ftt-backend-ico/internal/metrics"
)

// State is the purchase subscription lifecycle. There is no terminal state:
// a disconnected ingestor keeps retrying until its context ends.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateSubscribed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateSubscribed:
		return "SUBSCRIBED"
	default:
		return "UNKNOWN"
	}
}

// Health tracks the ingestor's subscription state for /healthz.
type Health struct {
	mu                  sync.RWMutex
	state               State
	stateSince          time.Time
	consecutiveFailures int
	reconnects          int64
	lastBlock           uint64
	lastEventAt         *time.Time
	lastError           string
	nowFn               func() time.Time
}

func NewHealth(nowFn func() time.Time) *Health {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Health{state: StateDisconnected, stateSince: nowFn(), nowFn: nowFn}
}

// SetState moves to s. Re-entering the current state keeps stateSince.
func (h *Health) SetState(s State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != s {
		h.state = s
		h.stateSince = h.nowFn()
	}
	metrics.IngestSubscriptionState.Set(float64(s))
}

// MarkHealthy clears the failure streak once a subscription has delivered or
// stayed up long enough to be trusted.
func (h *Health) MarkHealthy() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.consecutiveFailures = 0
	h.lastError = ""
}

func (h *Health) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// RecordFailure notes a failed or dropped subscription and returns the
// number of failures since the last healthy subscription.
func (h *Health) RecordFailure(err error) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.consecutiveFailures++
	h.reconnects++
	if err != nil {
		h.lastError = err.Error()
	}
	return h.consecutiveFailures
}

func (h *Health) RecordEvent(block uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.nowFn()
	h.lastEventAt = &now
	if block > h.lastBlock {
		h.lastBlock = block
		metrics.IngestLastBlock.Set(float64(block))
	}
}

// Snapshot returns the current health state.
func (h *Health) Snapshot() HealthSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return HealthSnapshot{
		State:               h.state.String(),
		StateSince:          h.stateSince,
		ConsecutiveFailures: h.consecutiveFailures,
		Reconnects:          h.reconnects,
		LastBlock:           h.lastBlock,
		LastEventAt:         h.lastEventAt,
		LastError:           h.lastError,
	}
}

// HealthSnapshot is a point-in-time view of ingestor health (JSON-safe).
type HealthSnapshot struct {
	State               string     `json:"state"`
	StateSince          time.Time  `json:"state_since"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	Reconnects          int64      `json:"reconnects"`
	LastBlock           uint64     `json:"last_block"`
	LastEventAt         *time.Time `json:"last_event_at,omitempty"`
	LastError           string     `json:"last_error,omitempty"`
}
