package healthchecker

import (
	"context"

	"github.com/duhman/volterra-call-intelligence-sub001/internal/config"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/kafka"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/logging"
	"go.uber.org/zap"
)

// CheckProcessingBackend reconnects the reprocess producer. Only the Kafka
// transport has a breaker, so any other transport is reported healthy.
func CheckProcessingBackend(_ context.Context) error {
	if config.Conf.ProcessingBackendTransport != config.TransportKafka {
		return nil
	}

	kafkaProducer, err := kafka.NewProducer()
	if err != nil {
		logging.Logger.Error("failed to create new kafka producer client", zap.String("error", err.Error()))
		return err
	}

	return kafkaProducer.Close()
}
