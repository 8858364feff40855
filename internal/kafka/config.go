package kafka

import (
	"github.com/IBM/sarama"
	"github.com/duhman/volterra-call-intelligence-sub001/internal/config"
)

// newProducerConfig builds the sarama config for the reprocess producer. SASL
// SCRAM-SHA-512 is enabled whenever a username is configured.
func newProducerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_8_0_0
	cfg.ClientID = "volterra-call-intelligence"

	if config.Conf.KafkaUsername != "" {
		cfg.Net.SASL.Enable = true
		cfg.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA512
		cfg.Net.SASL.User = config.Conf.KafkaUsername
		cfg.Net.SASL.Password = config.Conf.KafkaPassword
		cfg.Net.SASL.Handshake = true
		cfg.Net.SASL.SCRAMClientGeneratorFunc = func() sarama.SCRAMClient {
			return &XDGSCRAMClient{}
		}
	}

	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Partitioner = sarama.NewHashPartitioner

	return cfg
}

func mechanism(cfg *sarama.Config) string {
	if !cfg.Net.SASL.Enable {
		return "PLAINTEXT"
	}

	return string(cfg.Net.SASL.Mechanism)
}
