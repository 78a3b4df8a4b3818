package worker

import (
	"math"
	"time"

	"nestflow/internal/config"
)

// RetryPolicy is exponential backoff for ledger tasks: the n-th retry waits
// BaseDelay*Factor^(n-1), capped at MaxDelay.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Factor     float64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 5, BaseDelay: 2 * time.Second, MaxDelay: time.Minute, Factor: 2}
}

// RetryPolicyFromConfig parses the ledger section. Unset or unparsable
// fields take the default.
func RetryPolicyFromConfig(cfg config.LedgerConfig) RetryPolicy {
	p := RetryPolicy{MaxRetries: cfg.MaxRetries, Factor: cfg.Factor}
	if d, err := time.ParseDuration(cfg.BaseDelay); err == nil {
		p.BaseDelay = d
	}
	if d, err := time.ParseDuration(cfg.MaxDelay); err == nil {
		p.MaxDelay = d
	}
	return p.withDefaults()
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.MaxRetries <= 0 {
		p.MaxRetries = def.MaxRetries
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = def.BaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = def.MaxDelay
	}
	if p.Factor < 1 {
		p.Factor = def.Factor
	}
	return p
}

// Exhausted reports whether the given 1-based attempt was the last one.
func (p RetryPolicy) Exhausted(attempt int) bool {
	return attempt >= p.MaxRetries
}

// Backoff is the wait before retrying after the given 1-based attempt.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := time.Duration(float64(p.BaseDelay) * math.Pow(p.Factor, float64(attempt-1)))
	if d <= 0 || d > p.MaxDelay {
		// переполнение тоже упирается в потолок
		return p.MaxDelay
	}
	return d
}
