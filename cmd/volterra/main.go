package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/duhman/volterra-call-intelligence-sub001/internal/logging"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/prometheus"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/volterra"
	"go.uber.org/zap"
)

func main() {
	go prometheus.Run()

	stopCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		ctx, cancel := context.WithCancel(stopCtx)

		app, err := volterra.NewApp(cancel)
		if err != nil {
			logging.Logger.Fatal("failed to create volterra app", zap.String("error", err.Error()))
		}

		err = app.Run(ctx)
		if err != nil {
			logging.Logger.Fatal("volterra app stopped", zap.String("error", err.Error()))
		}

		cancel()

		if stopCtx.Err() != nil {
			logging.Logger.Info("shutdown signal received, exiting")
			return
		}

		app.HealthCheckerService.Check()
	}
}
