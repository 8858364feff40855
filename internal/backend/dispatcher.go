package backend

import (
	"context"
	"time"

	"github.com/duhman/volterra-call-intelligence-sub001/internal/logging"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/prometheus"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

const (
	outcomeSent     = "sent"
	outcomeFailed   = "failed"
	outcomeRejected = "rejected"
)

// Dispatcher runs notifications on a bounded worker pool, detached from the
// request that triggered them.
type Dispatcher struct {
	Notifier  Notifier
	Pool      *ants.Pool
	Timeout   time.Duration
	Transport string
}

// NewDispatcher creates a non blocking pool of poolSize workers.
func NewDispatcher(notifier Notifier, transport string, poolSize int, timeout time.Duration) (*Dispatcher, error) {
	pool, err := ants.NewPool(poolSize, ants.WithPreAlloc(true), ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}

	return &Dispatcher{
		Notifier:  notifier,
		Pool:      pool,
		Timeout:   timeout,
		Transport: transport,
	}, nil
}

// Dispatch queues a notification for callID and returns without waiting for it.
// The error reports only a rejected submission.
func (dispatcher *Dispatcher) Dispatch(ctx context.Context, callID string) error {
	detached := context.WithoutCancel(ctx)

	err := dispatcher.Pool.Submit(func() {
		notifyCtx, cancel := context.WithTimeout(detached, dispatcher.Timeout)
		defer cancel()

		err := dispatcher.Notifier.Notify(notifyCtx, callID)
		if err != nil {
			prometheus.NotificationTotal.WithLabelValues(dispatcher.Transport, outcomeFailed).Inc()
			logging.Logger.Error("[Dispatch] Processing backend notification failed",
				zap.String("call_id", callID),
				zap.String("transport", dispatcher.Transport),
				zap.String("error", err.Error()),
			)

			return
		}

		prometheus.NotificationTotal.WithLabelValues(dispatcher.Transport, outcomeSent).Inc()
		logging.Logger.Info("[Dispatch] Processing backend notified",
			zap.String("call_id", callID),
			zap.String("transport", dispatcher.Transport),
		)
	})
	if err != nil {
		prometheus.NotificationTotal.WithLabelValues(dispatcher.Transport, outcomeRejected).Inc()

		return err
	}

	return nil
}

// Release waits up to timeout for queued notifications before stopping the pool.
func (dispatcher *Dispatcher) Release(timeout time.Duration) {
	logging.Logger.Info("[Release] Releasing notification pool...",
		zap.Int("running_workers", dispatcher.Pool.Running()),
	)

	err := dispatcher.Pool.ReleaseTimeout(timeout)
	if err != nil {
		logging.Logger.Warn("[Release] Notification pool did not drain in time", zap.String("error", err.Error()))
	}
}
