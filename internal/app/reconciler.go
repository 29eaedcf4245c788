package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const maxBackoff = 5 * time.Minute

// Syncer refreshes a store from the server and reports whether it worked.
type Syncer interface {
	Sync(ctx context.Context) error
}

// StartReconciler launches a background goroutine that calls syncer every
// interval until ctx is cancelled. Consecutive failures back off
// exponentially up to maxBackoff; one success restores the interval. A
// non-positive interval disables it. It returns immediately.
func StartReconciler(ctx context.Context, syncer Syncer, interval time.Duration, logger logrus.FieldLogger) {
	if interval <= 0 {
		return
	}
	go reconcile(ctx, syncer, interval, logger.WithField("component", "reconciler"))
}

func reconcile(ctx context.Context, syncer Syncer, interval time.Duration, log logrus.FieldLogger) {
	timer := time.NewTimer(interval)
	defer timer.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if err := syncer.Sync(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			wait := calculateBackoff(failures, interval)
			log.WithError(err).WithFields(logrus.Fields{
				"failures": failures,
				"retry_in": wait.String(),
			}).Warn("background refresh failed")
			timer.Reset(wait)
			continue
		}

		if failures > 0 {
			log.WithField("failures", failures).Info("background refresh recovered")
		}
		failures = 0
		timer.Reset(interval)
	}
}

// calculateBackoff doubles base once per failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}
