package service

import (
    "context"
    "log"
    "time"

    "github.com/robfig/cron/v3"

    "github.com/MM-miles16/MMMILES/internal/repository"
)

// Sweeper runs the lock reconciliation on a schedule: expired leases are
// flipped to the expired status, then terminal rows past retention are
// purged, along with stale OTP events.  Every run is best-effort; a
// failed pass is logged and retried on the next tick, and foreground
// Acquire/Query/Release calls are never blocked by it.
type Sweeper struct {
    mgr  *LockManager
    otps *repository.OTPRepo // optional; nil skips OTP cleanup
    cron *cron.Cron
    spec string
}

// NewSweeper builds a sweeper that fires on the given cron spec
// (standard five-field syntax, e.g. "*/5 * * * *").
func NewSweeper(mgr *LockManager, otps *repository.OTPRepo, spec string) *Sweeper {
    if mgr == nil {
        panic("nil manager passed to NewSweeper")
    }
    return &Sweeper{mgr: mgr, otps: otps, cron: cron.New(), spec: spec}
}

// Start registers the job and starts the scheduler.  One pass runs
// immediately so a restart does not leave expired locks sitting in the
// active state until the first tick.
func (s *Sweeper) Start() error {
    if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
        return err
    }
    s.cron.Start()
    go s.RunOnce()
    log.Printf("sweeper: started (schedule %q)", s.spec)
    return nil
}

// Stop halts the scheduler and waits for an in-flight pass to finish.
func (s *Sweeper) Stop() {
    ctx := s.cron.Stop()
    <-ctx.Done()
    log.Printf("sweeper: stopped")
}

// RunOnce performs a single sweep-then-purge pass.  Also invoked by the
// operational cleanup endpoint.
func (s *Sweeper) RunOnce() {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    swept, err := s.mgr.Sweep(ctx)
    if err != nil {
        log.Printf("sweeper: sweep failed: %v", err)
        return
    }
    purged, err := s.mgr.Purge(ctx)
    if err != nil {
        // Purge is housekeeping; a failure must not mask the sweep.
        log.Printf("sweeper: purge failed: %v", err)
    }
    var otps int64
    if s.otps != nil {
        if n, err := s.otps.DeleteExpired(ctx, time.Now().UTC()); err != nil {
            log.Printf("sweeper: otp cleanup failed: %v", err)
        } else {
            otps = n
        }
    }
    if swept > 0 || purged > 0 || otps > 0 {
        log.Printf("sweeper: swept=%d purged=%d otps_removed=%d", swept, purged, otps)
    }
}
