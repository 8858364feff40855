package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadEnvConfigDefaults(t *testing.T) {
	var cfg Config

	require.NoError(t, loadEnvConfig(&cfg))

	require.Equal(t, "8080", cfg.HTTPPort)
	require.Equal(t, TransportHTTP, cfg.ProcessingBackendTransport)
	require.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	require.Equal(t, 10, cfg.ProcessingBackendTimeout)
	require.False(t, cfg.E2ETestMode)
}

func TestLoadEnvConfigFromEnvironment(t *testing.T) {
	t.Setenv("E2E_TEST_MODE", "true")
	t.Setenv("OPENAI_MODEL", "gpt-4.1")
	t.Setenv("PROCESSING_BACKEND_TRANSPORT", TransportKafka)

	var cfg Config

	require.NoError(t, loadEnvConfig(&cfg))

	require.True(t, cfg.E2ETestMode)
	require.Equal(t, "gpt-4.1", cfg.OpenAIModel)
	require.Equal(t, TransportKafka, cfg.ProcessingBackendTransport)
}

func TestLoadEnvConfigRejectsUnknownTransport(t *testing.T) {
	t.Setenv("PROCESSING_BACKEND_TRANSPORT", "smtp")

	var cfg Config

	require.Error(t, loadEnvConfig(&cfg))
}

func TestProcessingBackendConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{name: "http without url", cfg: Config{ProcessingBackendTransport: TransportHTTP}, want: false},
		{
			name: "http with url",
			cfg:  Config{ProcessingBackendTransport: TransportHTTP, ProcessingBackendURL: "http://backend/process"},
			want: true,
		},
		{
			name: "kafka without topic",
			cfg:  Config{ProcessingBackendTransport: TransportKafka, KafkaBootstrapServer: "kafka:9092"},
			want: false,
		},
		{
			name: "kafka with topic",
			cfg: Config{
				ProcessingBackendTransport: TransportKafka,
				KafkaBootstrapServer:       "kafka:9092",
				KafkaReprocessTopic:        "call-reprocess",
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.cfg.ProcessingBackendConfigured())
		})
	}
}

func TestAICredentialConfigured(t *testing.T) {
	require.False(t, (&Config{OpenAIAPIKey: "  "}).AICredentialConfigured())
	require.True(t, (&Config{OpenAIAPIKey: "sk-test"}).AICredentialConfigured())
}
