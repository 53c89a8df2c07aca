package realtime

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	DefaultBaseDelay   = 1000 * time.Millisecond
	DefaultMaxAttempts = 5
	defaultFactor      = 2.0
)

// ReconnectPolicy is exponential backoff without jitter: attempt n waits
// BaseDelay * Factor^n, and at most MaxAttempts reconnects are tried in a row.
type ReconnectPolicy struct {
	BaseDelay   time.Duration
	Factor      float64
	MaxAttempts int
}

// DefaultPolicy waits 1s, 2s, 4s, 8s, 16s and then gives up.
func DefaultPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		BaseDelay:   DefaultBaseDelay,
		Factor:      defaultFactor,
		MaxAttempts: DefaultMaxAttempts,
	}
}

func (p ReconnectPolicy) withDefaults() ReconnectPolicy {
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.Factor < 1 {
		p.Factor = defaultFactor
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	return p
}

func (p ReconnectPolicy) backOff() *backoff.ExponentialBackOff {
	p = p.withDefaults()
	maxInterval := p.BaseDelay
	for i := 0; i < p.MaxAttempts; i++ {
		maxInterval = time.Duration(float64(maxInterval) * p.Factor)
	}
	b := &backoff.ExponentialBackOff{
		InitialInterval:     p.BaseDelay,
		RandomizationFactor: 0,
		Multiplier:          p.Factor,
		MaxInterval:         maxInterval,
	}
	b.Reset()
	return b
}

// Delay returns the wait before reconnect attempt n (0-based).
func (p ReconnectPolicy) Delay(attempt int) time.Duration {
	b := p.backOff()
	d := b.NextBackOff()
	for i := 0; i < attempt; i++ {
		d = b.NextBackOff()
	}
	return d
}

// Schedule lists every delay the policy will use, in order.
func (p ReconnectPolicy) Schedule() []time.Duration {
	p = p.withDefaults()
	b := p.backOff()
	out := make([]time.Duration, p.MaxAttempts)
	for i := range out {
		out[i] = b.NextBackOff()
	}
	return out
}
