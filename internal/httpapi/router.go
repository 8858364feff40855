package httpapi

import (
	"net/http"
	"time"

	"github.com/duhman/volterra-call-intelligence-sub001/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type RouterConfig struct {
	JWTSecret      []byte
	JWTIssuer      string
	RequestTimeout time.Duration
}

func NewRouter(handler *Handler, cfg RouterConfig) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(cfg.RequestTimeout))

	router.Get("/healthz", Healthz)

	router.Route("/api", func(api chi.Router) {
		api.Use(AdminOnly(cfg.JWTSecret, cfg.JWTIssuer))

		api.Get("/calls", handler.ListCalls)
		api.Get("/calls/{id}", handler.GetCall)
		api.Post("/calls/{id}/summary", handler.GenerateSummary)
		api.Post("/calls/{id}/reprocess", handler.Reprocess)

		api.Get("/settings/{key}", handler.GetSetting)
		api.Put("/settings/{key}", handler.PutSetting)
	})

	return router
}

func requestLogger(next http.Handler) http.Handler {
	logger := logging.Logger.Named(logging.HTTPLoggerName)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(wrapped, r)

		logger.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapped.Status()),
			zap.Int("bytes", wrapped.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
