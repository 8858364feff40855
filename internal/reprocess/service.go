// Package reprocess resets a call to pending and either completes it with a
// deterministic mock transcription or asks the processing backend to redo it.
package reprocess

import (
	"context"

	"github.com/duhman/volterra-call-intelligence-sub001/internal/apperror"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/call"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/database"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/logging"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/prometheus"
	"go.uber.org/zap"
)

type CallUpdater interface {
	UpdateCall(ctx context.Context, callID string, updates map[string]any) error
}

// Strategy finishes a reprocess after the call has been reset to pending.
type Strategy interface {
	Mode() string
	Run(ctx context.Context, callID string) error
}

type ReprocessService struct {
	Calls    CallUpdater
	TestMode Strategy
	// Backend is nil when no processing backend is configured.
	Backend Strategy
}

func NewService(calls CallUpdater, testMode Strategy, backend Strategy) *ReprocessService {
	return &ReprocessService{
		Calls:    calls,
		TestMode: testMode,
		Backend:  backend,
	}
}

func (reprocessService *ReprocessService) Reprocess(ctx context.Context, callID string, testMode bool) error {
	strategy := reprocessService.TestMode
	if !testMode {
		strategy = reprocessService.Backend
	}

	if strategy == nil {
		logging.Logger.Error("[Reprocess] Processing backend is not configured", zap.String("call_id", callID))
		return apperror.Configuration("processing backend")
	}

	err := reprocessService.Calls.UpdateCall(ctx, callID, map[string]any{
		"status":            string(call.StatusPending),
		"hubspot_call_id":   nil,
		"hubspot_synced_at": nil,
	})
	if err != nil {
		logging.Logger.Error("[Reprocess] Failed to reset call",
			zap.String("call_id", callID),
			zap.String("error", err.Error()),
		)

		if database.IsRecordNotFound(err) {
			err = apperror.NotFound(apperror.ResourceCall)
		}

		return apperror.Persistence("reset call", err)
	}

	prometheus.ReprocessTotal.WithLabelValues(strategy.Mode()).Inc()

	logging.Logger.Info("[Reprocess] Call reset to pending",
		zap.String("call_id", callID),
		zap.String("mode", strategy.Mode()),
	)

	return strategy.Run(ctx, callID)
}
