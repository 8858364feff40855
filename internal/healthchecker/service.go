package healthchecker

import (
	"context"
	"time"

	"github.com/duhman/volterra-call-intelligence-sub001/internal/circuitbreak"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/config"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/logging"
	"go.uber.org/zap"
)

type CheckFunc func(ctx context.Context) error

type Healthchecker struct {
	CtxCancelFunc context.CancelFunc
	ErrorService  string
	Checks        map[string]CheckFunc
	Interval      time.Duration
}

func NewService(ctxCancelFunc context.CancelFunc) *Healthchecker {
	return &Healthchecker{
		CtxCancelFunc: ctxCancelFunc,
		Checks: map[string]CheckFunc{
			circuitbreak.DBService:                CheckDB,
			circuitbreak.CompletionService:        CheckCompletion,
			circuitbreak.ProcessingBackendService: CheckProcessingBackend,
		},
		Interval: time.Duration(config.Conf.HealthCheckerMonitorInterval) * time.Second,
	}
}

// Monitor cancels the app context on the first reported circuit break.
func (h *Healthchecker) Monitor(ctx context.Context) {
	logging.Logger.Info("health checker monitor start successfully")

	select {
	case serviceName := <-circuitbreak.CircuitBreakChan:
		logging.Logger.Info("circuit break happened", zap.String("service", serviceName))
		h.ErrorService = serviceName
		h.CtxCancelFunc()
	case <-ctx.Done():
	}
}

// Check blocks until the failed service passes its check again. It returns at once
// when no service failed.
func (h *Healthchecker) Check() {
	if h.ErrorService == "" {
		logging.Logger.Info("healthchecker has no failed service to wait for")
		return
	}

	ticker := time.NewTicker(h.Interval)
	defer ticker.Stop()

	for {
		<-ticker.C

		ok := h.checkErrorService()
		if ok {
			return
		}
	}
}

func (h *Healthchecker) checkErrorService() bool {
	check, ok := h.Checks[h.ErrorService]
	if !ok {
		logging.Logger.Warn("Unknown service in checkErrorService", zap.String("service", h.ErrorService))
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.Interval)
	defer cancel()

	err := check(ctx)
	if err != nil {
		logging.Logger.Warn(h.ErrorService+" service still unhealthy", zap.String("error", err.Error()))
		return false
	}

	logging.Logger.Info(h.ErrorService + " service back healthy")

	return true
}
