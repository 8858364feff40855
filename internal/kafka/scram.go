package kafka

import (
	"github.com/xdg-go/scram"
)

// XDGSCRAMClient adapts xdg-go/scram to sarama.SCRAMClient. A nil HashGenerator
// means SHA-512.
type XDGSCRAMClient struct {
	*scram.Client
	*scram.ClientConversation

	HashGenerator scram.HashGeneratorFcn
}

func (scramClient *XDGSCRAMClient) Begin(userName, password, authzID string) error {
	hashGenerator := scramClient.HashGenerator
	if hashGenerator == nil {
		hashGenerator = scram.SHA512
	}

	client, err := hashGenerator.NewClient(userName, password, authzID)
	if err != nil {
		return err
	}

	scramClient.Client = client
	scramClient.ClientConversation = client.NewConversation()

	return nil
}

func (scramClient *XDGSCRAMClient) Step(challenge string) (string, error) {
	return scramClient.ClientConversation.Step(challenge)
}

func (scramClient *XDGSCRAMClient) Done() bool {
	return scramClient.ClientConversation.Done()
}
