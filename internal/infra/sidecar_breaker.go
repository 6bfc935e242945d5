package infra

import (
	"errors"
	"sync"
	"time"
)

// The ML sidecar is the only remote dependency on the optimization path.
// SidecarBreaker fast-fails predictions while the sidecar is down, so
// interactive optimize calls and queued fleet jobs degrade to the heuristic
// scorer immediately instead of stacking up HTTP timeouts.
//
// Lifecycle: TripAfter consecutive prediction failures open the breaker;
// after Cooldown it goes half-open and admits trial calls, and
// SuccessesToClose consecutive successes close it again. A half-open
// failure reopens it.

// BreakerState names the breaker's position in its lifecycle.
type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerOpen     BreakerState = "open"
	BreakerHalfOpen BreakerState = "half-open"
)

// ErrSidecarDown is returned while the breaker is open and no prediction
// is attempted. Callers treat it like any other prediction failure.
var ErrSidecarDown = errors.New("ml sidecar circuit open")

// BreakerConfig tunes the trip and recovery behavior.
type BreakerConfig struct {
	TripAfter        int
	Cooldown         time.Duration
	SuccessesToClose int
}

// DefaultBreakerConfig is sized for advisory predictions: they are cheap to
// skip, so the breaker trips fast and retries the sidecar soon.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		TripAfter:        3,
		Cooldown:         30 * time.Second,
		SuccessesToClose: 2,
	}
}

// SidecarBreaker is safe for concurrent use; one instance guards every path
// to the sidecar (HTTP handlers, queued jobs, the health endpoint).
type SidecarBreaker struct {
	mu       sync.Mutex
	cfg      BreakerConfig
	state    BreakerState
	failures int // consecutive failures while closed
	recovers int // consecutive successes while half-open
	openedAt time.Time
	lastErr  error

	now func() time.Time
}

func NewSidecarBreaker(cfg BreakerConfig) *SidecarBreaker {
	if cfg.TripAfter <= 0 {
		cfg.TripAfter = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.SuccessesToClose <= 0 {
		cfg.SuccessesToClose = 2
	}
	return &SidecarBreaker{cfg: cfg, state: BreakerClosed, now: time.Now}
}

// Execute runs one prediction attempt through the breaker. While open it
// returns ErrSidecarDown without invoking fn.
func (b *SidecarBreaker) Execute(fn func() error) error {
	if !b.admit() {
		return ErrSidecarDown
	}

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.recordFailure(err)
		return err
	}
	b.recordSuccess()
	return nil
}

// State reports the breaker position, advancing open → half-open when the
// cooldown has elapsed.
func (b *SidecarBreaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()
	return b.state
}

// BreakerSnapshot is the health-endpoint view of the breaker.
type BreakerSnapshot struct {
	State    BreakerState `json:"state"`
	Failures int          `json:"failures"`
	LastErr  string       `json:"lastError,omitempty"`
}

func (b *SidecarBreaker) Snapshot() BreakerSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()
	snap := BreakerSnapshot{State: b.state, Failures: b.failures}
	if b.lastErr != nil {
		snap.LastErr = b.lastErr.Error()
	}
	return snap
}

// admit decides whether a call may go through right now.
func (b *SidecarBreaker) admit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()
	return b.state != BreakerOpen
}

// advance moves open → half-open once the cooldown has elapsed. Caller holds mu.
func (b *SidecarBreaker) advance() {
	if b.state == BreakerOpen && b.now().Sub(b.openedAt) >= b.cfg.Cooldown {
		b.state = BreakerHalfOpen
		b.recovers = 0
	}
}

// recordFailure counts a failed prediction. Caller holds mu.
func (b *SidecarBreaker) recordFailure(err error) {
	b.lastErr = err
	switch b.state {
	case BreakerClosed:
		b.failures++
		if b.failures >= b.cfg.TripAfter {
			b.trip()
		}
	case BreakerHalfOpen:
		// The sidecar is still unhealthy — start another cooldown.
		b.trip()
	}
}

// recordSuccess counts a healthy prediction. Caller holds mu.
func (b *SidecarBreaker) recordSuccess() {
	switch b.state {
	case BreakerClosed:
		b.failures = 0
	case BreakerHalfOpen:
		b.recovers++
		if b.recovers >= b.cfg.SuccessesToClose {
			b.state = BreakerClosed
			b.failures = 0
			b.lastErr = nil
		}
	}
}

func (b *SidecarBreaker) trip() {
	b.state = BreakerOpen
	b.openedAt = b.now()
	b.failures = 0
	b.recovers = 0
}
