package server

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper drops state that has been idle for longer than maxIdle
type Sweeper interface {
	Sweep(maxIdle time.Duration)
}

// SweeperFunc adapts a function to Sweeper
type SweeperFunc func(maxIdle time.Duration)

// Sweep calls f
func (f SweeperFunc) Sweep(maxIdle time.Duration) { f(maxIdle) }

// Janitor periodically sweeps per-scope state
type Janitor struct {
	interval time.Duration
	maxIdle  time.Duration
	sweepers []Sweeper
	logger   *slog.Logger
}

// NewJanitor creates a janitor that sweeps every interval
func NewJanitor(interval, maxIdle time.Duration, logger *slog.Logger, sweepers ...Sweeper) *Janitor {
	return &Janitor{
		interval: interval,
		maxIdle:  maxIdle,
		sweepers: sweepers,
		logger:   logger.With(slog.String("component", "janitor")),
	}
}

// Run sweeps until ctx is cancelled
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Debug("janitor stopped")
			return
		case <-ticker.C:
			j.SweepOnce()
		}
	}
}

// SweepOnce runs every sweeper once
func (j *Janitor) SweepOnce() {
	for _, s := range j.sweepers {
		s.Sweep(j.maxIdle)
	}
}
