package helpdesk

import (
	"time"

	"opsdesk/internal/shared/config"
)

// PacingPolicy consolidates every delay and concurrency knob used against
// the upstream API: the page loop, the retry backoff and the enrichment
// fan-out all read from one value so the whole pacing strategy is tunable
// and testable as a unit. There is no server-side token bucket; client-side
// self-throttling plus reactive backoff on 429 is the only enforcement.
type PacingPolicy struct {
	// PageDelay is the fixed pause between sequential page requests.
	PageDelay time.Duration
	// BackoffBase is the initial retry delay after a 429; it doubles per
	// attempt up to BackoffCap.
	BackoffBase time.Duration
	BackoffCap  time.Duration
	// MaxRetries bounds 429 retries per request.
	MaxRetries int
	// Concurrency bounds parallel per-ticket activity fetches.
	Concurrency int
	// Stagger delays each request within a chunk so a burst of Concurrency
	// requests does not arrive as a simultaneous spike.
	Stagger time.Duration
	// ChunkPause is the pause between enrichment chunks.
	ChunkPause time.Duration
	// ProgressEvery controls how often the page loop reports liveness.
	ProgressEvery int
}

// DefaultPacingPolicy returns the pacing used in production: tuned for a
// fixed hourly request budget on the remote side.
func DefaultPacingPolicy() PacingPolicy {
	return PacingPolicy{
		PageDelay:     1200 * time.Millisecond,
		BackoffBase:   2 * time.Second,
		BackoffCap:    60 * time.Second,
		MaxRetries:    5,
		Concurrency:   4,
		Stagger:       250 * time.Millisecond,
		ChunkPause:    1500 * time.Millisecond,
		ProgressEvery: 5,
	}
}

// PacingFromConfig builds a policy from configuration, filling zero values
// from the defaults.
func PacingFromConfig(cfg *config.HelpdeskConfig) PacingPolicy {
	p := DefaultPacingPolicy()
	if cfg == nil {
		return p
	}
	if cfg.PageDelayMs > 0 {
		p.PageDelay = time.Duration(cfg.PageDelayMs) * time.Millisecond
	}
	if cfg.BackoffBaseMs > 0 {
		p.BackoffBase = time.Duration(cfg.BackoffBaseMs) * time.Millisecond
	}
	if cfg.BackoffCapMs > 0 {
		p.BackoffCap = time.Duration(cfg.BackoffCapMs) * time.Millisecond
	}
	if cfg.MaxRetries > 0 {
		p.MaxRetries = cfg.MaxRetries
	}
	if cfg.Concurrency > 0 {
		p.Concurrency = cfg.Concurrency
	}
	if cfg.StaggerMs > 0 {
		p.Stagger = time.Duration(cfg.StaggerMs) * time.Millisecond
	}
	if cfg.ChunkPauseMs > 0 {
		p.ChunkPause = time.Duration(cfg.ChunkPauseMs) * time.Millisecond
	}
	return p
}

// BackoffDelay returns the delay before the given retry attempt
// (0-based), doubling from BackoffBase and capped at BackoffCap.
func (p PacingPolicy) BackoffDelay(attempt int) time.Duration {
	d := p.BackoffBase
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= p.BackoffCap {
			return p.BackoffCap
		}
	}
	if d > p.BackoffCap {
		return p.BackoffCap
	}
	return d
}
