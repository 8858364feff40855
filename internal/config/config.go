package config

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	TransportHTTP  = "http"
	TransportKafka = "kafka"
)

type Config struct {
	HTTPPort       string `mapstructure:"http_port"        validate:"required"`
	HTTPTimeout    int    `mapstructure:"http_timeout"     validate:"gt=0"`
	AdminJWTSecret string `mapstructure:"admin_jwt_secret"`
	AdminJWTIssuer string `mapstructure:"admin_jwt_issuer"`

	PostgresHost            string `mapstructure:"postgres_host"              validate:"required"`
	PostgresUsername        string `mapstructure:"postgres_username"          validate:"required"`
	PostgresPassword        string `mapstructure:"postgres_password"`
	PostgresPort            string `mapstructure:"postgres_port"              validate:"required"`
	PostgresDatabase        string `mapstructure:"postgres_database"          validate:"required"`
	DBIntervalCB            uint32 `mapstructure:"db_interval_cb"`
	DBConsecutiveFailuresCB uint32 `mapstructure:"db_consecutive_failures_cb"`
	DBConnectRetryAttempts  uint   `mapstructure:"db_connect_retry_attempts"`

	// An empty OpenAIAPIKey selects the heuristic summary path.
	OpenAIAPIKey                string `mapstructure:"openai_api_key"`
	OpenAIBaseURL               string `mapstructure:"openai_base_url"                validate:"required,url"`
	OpenAIModel                 string `mapstructure:"openai_model"                   validate:"required"`
	OpenAITimeout               int    `mapstructure:"openai_timeout"                 validate:"gt=0"`
	OpenAIIntervalCB            uint32 `mapstructure:"openai_interval_cb"`
	OpenAIConsecutiveFailuresCB uint32 `mapstructure:"openai_consecutive_failures_cb"`

	E2ETestMode bool `mapstructure:"e2e_test_mode"`

	ProcessingBackendTransport string `mapstructure:"processing_backend_transport" validate:"oneof=http kafka"`
	ProcessingBackendURL       string `mapstructure:"processing_backend_url"`
	ProcessingBackendToken     string `mapstructure:"processing_backend_token"`
	ProcessingBackendTimeout   int    `mapstructure:"processing_backend_timeout"   validate:"gt=0"`
	NotifyPoolSize             int    `mapstructure:"notify_pool_size"             validate:"gt=0"`

	KafkaBootstrapServer       string `mapstructure:"kafka_bootstrap_server"`
	KafkaUsername              string `mapstructure:"kafka_username"`
	KafkaPassword              string `mapstructure:"kafka_password"`
	KafkaReprocessTopic        string `mapstructure:"kafka_reprocess_topic"`
	KafkaIntervalCB            uint32 `mapstructure:"kafka_interval_cb"`
	KafkaConsecutiveFailuresCB uint32 `mapstructure:"kafka_consecutive_failures_cb"`

	LogLevel      string `mapstructure:"log_level"`
	LogFilePath   string `mapstructure:"log_file_path"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxAgeDays int    `mapstructure:"log_max_age_days"`

	HealthCheckerMonitorInterval int `mapstructure:"health_checker_monitor_interval"`

	PrometheusPort    string `mapstructure:"prometheus_port"`
	PrometheusTimeout int    `mapstructure:"prometheus_timeout"`
}

var Conf Config

func init() {
	err := loadEnvConfig(&Conf)
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.String("error", err.Error()))
	}
}

// AICredentialConfigured reports whether summaries go through the completion service.
func (cfg *Config) AICredentialConfigured() bool {
	return strings.TrimSpace(cfg.OpenAIAPIKey) != ""
}

// ProcessingBackendConfigured reports whether production reprocessing has somewhere to notify.
func (cfg *Config) ProcessingBackendConfigured() bool {
	switch cfg.ProcessingBackendTransport {
	case TransportKafka:
		return cfg.KafkaBootstrapServer != "" && cfg.KafkaReprocessTopic != ""
	default:
		return cfg.ProcessingBackendURL != ""
	}
}

func loadEnvConfig(cfg *Config) error {
	viper.AutomaticEnv()
	viper.AllowEmptyEnv(true)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setupDefaults()

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	err := viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError

		ok := errors.As(err, &configFileNotFoundError)
		if !ok {
			return err
		}
	}

	err = viper.Unmarshal(cfg)
	if err != nil {
		return err
	}

	err = validator.New().Struct(cfg)
	if err != nil {
		return err
	}

	return nil
}

func setupDefaults() {
	confType := reflect.TypeOf(Conf)
	for i := range confType.NumField() {
		field := confType.Field(i)
		viper.SetDefault(field.Tag.Get("mapstructure"), "")
	}

	viper.SetDefault("HTTP_PORT", "8080")
	viper.SetDefault("HTTP_TIMEOUT", "60")
	viper.SetDefault("ADMIN_JWT_ISSUER", "volterra-dashboard")
	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", "5432")
	viper.SetDefault("POSTGRES_USERNAME", "volterra")
	viper.SetDefault("POSTGRES_DATABASE", "volterra")
	viper.SetDefault("DB_INTERVAL_CB", "30")
	viper.SetDefault("DB_CONSECUTIVE_FAILURES_CB", "3")
	viper.SetDefault("DB_CONNECT_RETRY_ATTEMPTS", "5")
	viper.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1/")
	viper.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	viper.SetDefault("OPENAI_TIMEOUT", "30")
	viper.SetDefault("OPENAI_INTERVAL_CB", "30")
	viper.SetDefault("OPENAI_CONSECUTIVE_FAILURES_CB", "3")
	viper.SetDefault("E2E_TEST_MODE", "false")
	viper.SetDefault("PROCESSING_BACKEND_TRANSPORT", TransportHTTP)
	viper.SetDefault("PROCESSING_BACKEND_TIMEOUT", "10")
	viper.SetDefault("NOTIFY_POOL_SIZE", "8")
	viper.SetDefault("KAFKA_REPROCESS_TOPIC", "call-reprocess")
	viper.SetDefault("KAFKA_INTERVAL_CB", "30")
	viper.SetDefault("KAFKA_CONSECUTIVE_FAILURES_CB", "5")
	viper.SetDefault("LOG_LEVEL", "INFO")
	viper.SetDefault("LOG_FILE_PATH", "./access.log")
	viper.SetDefault("LOG_MAX_SIZE_MB", "100")
	viper.SetDefault("LOG_MAX_AGE_DAYS", "28")
	viper.SetDefault("HEALTH_CHECKER_MONITOR_INTERVAL", "60")
	viper.SetDefault("PROMETHEUS_PORT", "2112")
	viper.SetDefault("PROMETHEUS_TIMEOUT", "60")
}
