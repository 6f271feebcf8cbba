package pipeline

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// ErrHostSuspended is returned when fetches to a host are skipped because
// it has failed repeatedly and its cooldown has not elapsed.
var ErrHostSuspended = eris.New("pipeline: host suspended after repeated failures")

const (
	breakerFailureThreshold = 5
	breakerCooldown         = 30 * time.Second
)

// hostBreaker tracks consecutive network failures for a single upstream
// host. After the threshold trips, fetches are skipped until the cooldown
// passes; the next attempt acts as a probe.
type hostBreaker struct {
	mu                  sync.Mutex
	consecutiveFailures int
	lastFailure         time.Time

	// nowFunc allows test injection of time.
	nowFunc func() time.Time
}

func newHostBreaker() *hostBreaker {
	return &hostBreaker{nowFunc: time.Now}
}

// allow reports whether a fetch may proceed. During cooldown a single
// goroutine's request still goes through once the cooldown elapses.
func (b *hostBreaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.consecutiveFailures < breakerFailureThreshold {
		return true
	}
	return b.nowFunc().Sub(b.lastFailure) >= breakerCooldown
}

// record updates the failure counter from a fetch outcome. Any definite
// answer from the host, success or error status, resets the counter.
func (b *hostBreaker) record(networkFailure bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !networkFailure {
		b.consecutiveFailures = 0
		return
	}
	b.consecutiveFailures++
	b.lastFailure = b.nowFunc()
}

// hostBreakers is a lazily populated per-host breaker registry.
type hostBreakers struct {
	mu       sync.RWMutex
	breakers map[string]*hostBreaker
}

func newHostBreakers() *hostBreakers {
	return &hostBreakers{breakers: make(map[string]*hostBreaker)}
}

func (hb *hostBreakers) get(host string) *hostBreaker {
	hb.mu.RLock()
	b, ok := hb.breakers[host]
	hb.mu.RUnlock()
	if ok {
		return b
	}

	hb.mu.Lock()
	defer hb.mu.Unlock()
	if b, ok = hb.breakers[host]; ok {
		return b
	}
	b = newHostBreaker()
	hb.breakers[host] = b
	return b
}
