package httpapi

import (
	"net/http"
	"time"

	"github.com/duhman/volterra-call-intelligence-sub001/internal/config"
)

func NewServer(handler http.Handler) *http.Server {
	timeout := time.Duration(config.Conf.HTTPTimeout) * time.Second

	return &http.Server{
		Addr:              ":" + config.Conf.HTTPPort,
		Handler:           handler,
		ReadTimeout:       timeout,
		ReadHeaderTimeout: timeout,
		WriteTimeout:      timeout + time.Second,
		IdleTimeout:       timeout,
	}
}
