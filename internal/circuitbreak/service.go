package circuitbreak

import (
	"github.com/duhman/volterra-call-intelligence-sub001/internal/logging"
	"go.uber.org/zap"
)

var CircuitBreakChan chan string

const (
	DBService                = "database"
	CompletionService        = "completion"
	ProcessingBackendService = "processing_backend"
)

const circuitBreakBuffer = 8

func Init() {
	CircuitBreakChan = make(chan string, circuitBreakBuffer)
}

// TriggerError reports an opened breaker to the health checker. It never blocks the
// request path: a report is dropped when nobody listens or the buffer is full.
func TriggerError(service string) {
	if CircuitBreakChan == nil {
		logging.Logger.Warn("circuit break reported before app start", zap.String("service", service))
		return
	}

	select {
	case CircuitBreakChan <- service:
	default:
		logging.Logger.Warn("circuit break report dropped", zap.String("service", service))
	}
}
