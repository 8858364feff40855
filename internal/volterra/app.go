package volterra

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/duhman/volterra-call-intelligence-sub001/internal/backend"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/call"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/circuitbreak"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/completion"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/config"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/database"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/healthchecker"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/heuristic"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/httpapi"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/kafka"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/logging"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/reprocess"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/session"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/setting"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/summary"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/transcription"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

type Volterra struct {
	DBConn               *gorm.DB
	KafkaProducer        *kafka.Producer
	Dispatcher           *backend.Dispatcher
	SummaryService       *summary.SummaryService
	ReprocessService     *reprocess.ReprocessService
	Server               *http.Server
	HealthCheckerService *healthchecker.Healthchecker
}

func NewApp(ctxCancelFun context.CancelFunc) (*Volterra, error) {
	logging.Logger.Info("[NewApp] Initializing Volterra application...")

	healthcheckerService := healthchecker.NewService(ctxCancelFun)

	dbConn, err := database.NewDatabase()
	if err != nil {
		logging.Logger.Error("[NewApp] Failed to initialize database", zap.Error(err))
		return nil, err
	}

	logging.Logger.Info("[NewApp] Database connection established")

	callRepository := call.NewCallRepository(dbConn)
	sessionRepository := session.NewSessionRepository(dbConn)
	transcriptionRepository := transcription.NewTranscriptionRepository(dbConn)
	settingRepository := setting.NewSettingRepository(dbConn)

	summaryService := summary.NewService(
		callRepository,
		sessionRepository,
		transcriptionRepository,
		settingRepository,
		heuristic.NewAnalyzer(),
		newCompleter(),
	)

	kafkaProducer, dispatcher, err := initializeDispatcher()
	if err != nil {
		return nil, err
	}

	var backendStrategy reprocess.Strategy
	if dispatcher != nil {
		backendStrategy = reprocess.NewBackendStrategy(dispatcher)
	}

	reprocessService := reprocess.NewService(
		callRepository,
		reprocess.NewTestModeStrategy(callRepository, transcriptionRepository),
		backendStrategy,
	)

	handler := httpapi.NewHandler(
		summaryService,
		reprocessService,
		callRepository,
		settingRepository,
		config.Conf.E2ETestMode,
	)

	router := httpapi.NewRouter(handler, httpapi.RouterConfig{
		JWTSecret:      []byte(config.Conf.AdminJWTSecret),
		JWTIssuer:      config.Conf.AdminJWTIssuer,
		RequestTimeout: time.Duration(config.Conf.HTTPTimeout) * time.Second,
	})

	logging.Logger.Info("[NewApp] Initializing circuit breakers...")
	circuitbreak.Init()

	return &Volterra{
		DBConn:               dbConn,
		KafkaProducer:        kafkaProducer,
		Dispatcher:           dispatcher,
		SummaryService:       summaryService,
		ReprocessService:     reprocessService,
		Server:               httpapi.NewServer(router),
		HealthCheckerService: healthcheckerService,
	}, nil
}

// newCompleter returns nil without an AI credential, which selects the heuristic summary.
func newCompleter() summary.Completer {
	if !config.Conf.AICredentialConfigured() {
		logging.Logger.Warn("[NewApp] No OpenAI API key configured, summaries use the heuristic analyzer")
		return nil
	}

	logging.Logger.Info("[NewApp] Completion client created", zap.String("model", config.Conf.OpenAIModel))

	return completion.NewClient()
}

func initializeDispatcher() (*kafka.Producer, *backend.Dispatcher, error) {
	if !config.Conf.ProcessingBackendConfigured() {
		logging.Logger.Warn("[NewApp] Processing backend not configured, production reprocessing is disabled",
			zap.String("transport", config.Conf.ProcessingBackendTransport),
		)

		return nil, nil, nil
	}

	var (
		notifier      backend.Notifier
		kafkaProducer *kafka.Producer
	)

	switch config.Conf.ProcessingBackendTransport {
	case config.TransportKafka:
		logging.Logger.Info("[NewApp] Creating Kafka producer...")

		var err error

		kafkaProducer, err = kafka.NewProducer()
		if err != nil {
			logging.Logger.Error("[NewApp] Failed to create Kafka producer", zap.Error(err))
			return nil, nil, err
		}

		notifier = backend.NewKafkaNotifier(kafkaProducer, config.Conf.KafkaReprocessTopic)
	default:
		notifier = backend.NewHTTPNotifier(config.Conf.ProcessingBackendURL, config.Conf.ProcessingBackendToken)
	}

	logging.Logger.Info("[NewApp] Creating notification pool",
		zap.Int("pool_size", config.Conf.NotifyPoolSize),
		zap.String("transport", config.Conf.ProcessingBackendTransport),
	)

	dispatcher, err := backend.NewDispatcher(
		notifier,
		config.Conf.ProcessingBackendTransport,
		config.Conf.NotifyPoolSize,
		time.Duration(config.Conf.ProcessingBackendTimeout)*time.Second,
	)
	if err != nil {
		logging.Logger.Error("[NewApp] Failed to create notification pool", zap.Error(err))
		return nil, nil, err
	}

	return kafkaProducer, dispatcher, nil
}

// Run serves the API until ctx is canceled, then shuts the app down.
func (app *Volterra) Run(ctx context.Context) error {
	logging.Logger.Info("[Run] Starting health checker monitor goroutine")

	go app.HealthCheckerService.Monitor(ctx)

	serveErr := make(chan error, 1)

	go func() {
		logging.Logger.Info("[Run] Starting HTTP server", zap.String("addr", app.Server.Addr))

		err := app.Server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}

		close(serveErr)
	}()

	var err error

	select {
	case <-ctx.Done():
		logging.Logger.Warn("[Run] Context canceled, beginning shutdown...")
	case err = <-serveErr:
		logging.Logger.Error("[Run] HTTP server returned error", zap.Error(err))
	}

	app.shutdown()

	return err
}

func (app *Volterra) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := app.Server.Shutdown(shutdownCtx)
	if err != nil {
		logging.Logger.Error("[Run] Failed to shut down HTTP server", zap.String("error", err.Error()))
	}

	if app.Dispatcher != nil {
		app.Dispatcher.Release(shutdownTimeout)
	}

	if app.KafkaProducer != nil {
		_ = app.KafkaProducer.Close()
	}

	sqlDB, err := app.DBConn.DB()
	if err == nil {
		err = sqlDB.Close()
	}

	if err != nil {
		logging.Logger.Error("[Run] Failed to close database", zap.String("error", err.Error()))
	}

	logging.Logger.Info("[Run] ===== App shutdown complete =====")
}
